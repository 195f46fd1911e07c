package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/shared/apperr"
)

// mockActiveChecker is a mock implementation of the ActiveChecker interface.
type mockActiveChecker struct {
	CheckActiveFunc  func(ctx context.Context) (PassResult, error)
	CheckActiveCalls int
}

func (m *mockActiveChecker) CheckActive(ctx context.Context) (PassResult, error) {
	m.CheckActiveCalls++
	if m.CheckActiveFunc != nil {
		return m.CheckActiveFunc(ctx)
	}
	return PassResult{}, nil
}

func TestReportUsecase_Report(t *testing.T) {
	now := time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC)

	win := buyTrade(1, "BTC/USD", now.Add(-2*time.Hour))
	win.Status, win.Outcome, win.PnLPercent = entity.StatusTP2Hit, entity.OutcomeWin, 21
	loss := sellTrade(2, "ETH/USD", now.Add(-23*time.Hour))
	loss.Status, loss.Outcome, loss.PnLPercent = entity.StatusSLHit, entity.OutcomeLoss, -6
	old := buyTrade(3, "SOL/USD", now.Add(-24*time.Hour-time.Second))
	old.Status, old.Outcome, old.PnLPercent = entity.StatusTP1Hit, entity.OutcomeWin, 10
	open := buyTrade(4, "SOL/USD", now.Add(-time.Hour))

	tests := []struct {
		name        string
		trades      []entity.Trade
		wantCount   int
		wantWins    int
		wantLosses  int
		wantNet     float64
		wantMessage string
	}{
		{name: "no trades", trades: nil, wantMessage: "No trades in last 24h."},
		{name: "only trades older than the window", trades: []entity.Trade{old}, wantMessage: "No trades in last 24h."},
		{
			name:        "mixed outcomes inside the window",
			trades:      []entity.Trade{win, loss, old, open},
			wantCount:   3,
			wantWins:    1,
			wantLosses:  1,
			wantNet:     15,
			wantMessage: "Net PnL: 🟢 +15.00%",
		},
		{
			name:        "negative net",
			trades:      []entity.Trade{loss},
			wantCount:   1,
			wantLosses:  1,
			wantNet:     -6,
			wantMessage: "Net PnL: 🔴 -6.00%",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, _ := seedLedger(tt.trades...)
			checker := &mockActiveChecker{}
			n := &mockNotifier{}
			n.On("Send", mock.Anything, contains(tt.wantMessage)).Return(nil).Once()

			s, err := NewReportUsecase(checker, l, n).Report(context.Background(), now)

			require.NoError(t, err)
			assert.Equal(t, 1, checker.CheckActiveCalls, "report forces a monitor pass first")
			assert.Equal(t, tt.wantCount, s.Count)
			assert.Equal(t, tt.wantWins, s.Wins)
			assert.Equal(t, tt.wantLosses, s.Losses)
			assert.InDelta(t, tt.wantNet, s.NetPnL, 1e-9)
			assert.Equal(t, now.Add(-24*time.Hour), s.WindowStart)
			n.AssertExpectations(t)
		})
	}
}

func TestReportUsecase_Report_SeesResolutionsFromForcedPass(t *testing.T) {
	now := time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC)
	l, _ := seedLedger(buyTrade(1, "BTC/USD", now.Add(-time.Hour)))
	n := &mockNotifier{}
	n.On("Send", mock.Anything, contains("UPDATE")).Return(nil).Once()
	n.On("Send", mock.Anything, contains("Wins: 1")).Return(nil).Once()
	monitor := NewMonitorUsecase(priceMarket(map[string]float64{"BTC/USD": 121}), l, n, &mockRateLimiter{})

	s, err := NewReportUsecase(monitor, l, n).Report(context.Background(), now)

	require.NoError(t, err)
	assert.Equal(t, 1, s.Wins)
	assert.InDelta(t, 21.0, s.NetPnL, 1e-9)
	n.AssertExpectations(t)
}

func TestReportUsecase_Report_MonitorFailure(t *testing.T) {
	now := time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC)

	t.Run("non-cancel failure still reports", func(t *testing.T) {
		l, _ := seedLedger()
		checker := &mockActiveChecker{CheckActiveFunc: func(ctx context.Context) (PassResult, error) {
			return PassResult{}, errors.New("boom")
		}}
		n := &mockNotifier{}
		n.On("Send", mock.Anything, mock.Anything).Return(nil).Once()

		_, err := NewReportUsecase(checker, l, n).Report(context.Background(), now)
		require.NoError(t, err)
		n.AssertExpectations(t)
	})

	t.Run("cancellation aborts the report", func(t *testing.T) {
		l, _ := seedLedger()
		checker := &mockActiveChecker{CheckActiveFunc: func(ctx context.Context) (PassResult, error) {
			return PassResult{}, context.Canceled
		}}
		n := &mockNotifier{}

		_, err := NewReportUsecase(checker, l, n).Report(context.Background(), now)
		assert.ErrorIs(t, err, context.Canceled)
		n.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
	})
}

func TestReportUsecase_Report_NotificationFailure(t *testing.T) {
	l, _ := seedLedger()
	n := &mockNotifier{}
	n.On("Send", mock.Anything, mock.Anything).Return(errors.New("telegram down")).Once()

	_, err := NewReportUsecase(&mockActiveChecker{}, l, n).Report(context.Background(), time.Now())

	assert.ErrorIs(t, err, apperr.ErrNotification)
}

func TestReportUsecase_Summary_DoesNotForcePass(t *testing.T) {
	now := time.Date(2025, 8, 2, 9, 0, 0, 0, time.UTC)
	l, _ := seedLedger(buyTrade(1, "BTC/USD", now.Add(-30*time.Hour)), buyTrade(2, "BTC/USD", now.Add(-time.Hour)))
	checker := &mockActiveChecker{}

	s := NewReportUsecase(checker, l, &mockNotifier{}).Summary(now, 48*time.Hour)

	assert.Equal(t, 2, s.Count)
	assert.Zero(t, checker.CheckActiveCalls)
}
