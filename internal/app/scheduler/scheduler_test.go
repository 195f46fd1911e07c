package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	analysis "signal_backend/internal/feature/analysis/domain/entity"
	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/usecase"
	"signal_backend/internal/shared/apperr"
)

type mockAnalyzer struct {
	mu             sync.Mutex
	analyzed       []string
	AnalyzeFunc    func(ctx context.Context, symbol string) (analysis.Signal, error)
	AnalyzeAllFunc func(ctx context.Context, symbols []string) ([]analysis.Signal, error)
}

func (m *mockAnalyzer) Analyze(ctx context.Context, symbol string) (analysis.Signal, error) {
	m.mu.Lock()
	m.analyzed = append(m.analyzed, symbol)
	m.mu.Unlock()
	if m.AnalyzeFunc != nil {
		return m.AnalyzeFunc(ctx, symbol)
	}
	return analysis.Signal{Symbol: symbol, Type: analysis.Wait}, nil
}

func (m *mockAnalyzer) AnalyzeAll(ctx context.Context, symbols []string) ([]analysis.Signal, error) {
	return m.AnalyzeAllFunc(ctx, symbols)
}

type mockMonitor struct {
	calls int
	err   error
}

func (m *mockMonitor) CheckActive(ctx context.Context) (usecase.PassResult, error) {
	m.calls++
	return usecase.PassResult{Checked: 1}, m.err
}

type mockReporter struct {
	nows []time.Time
}

func (m *mockReporter) Report(ctx context.Context, now time.Time) (domain.Summary, error) {
	m.nows = append(m.nows, now)
	return domain.Summary{}, nil
}

func defaultConfig() Config {
	return Config{
		Analysis: "0 */2 * * *",
		Monitor:  "15,30,45 * * * *",
		Report:   "0 9 * * *",
		Symbols:  []string{"BTC/USD", "ETH/USD", "SOL/USD"},
	}
}

func TestNew_RegistersJobs(t *testing.T) {
	t.Parallel()

	s, err := New(defaultConfig(), &mockAnalyzer{}, &mockMonitor{}, &mockReporter{})
	require.NoError(t, err)
	assert.Len(t, s.cron.Entries(), 3)
}

func TestNew_InvalidSpec(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"analysis", func(c *Config) { c.Analysis = "every two hours" }, "analysis"},
		{"monitor", func(c *Config) { c.Monitor = "61 * * * *" }, "monitor"},
		{"report", func(c *Config) { c.Report = "" }, "report"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := defaultConfig()
			tt.mutate(&cfg)
			_, err := New(cfg, &mockAnalyzer{}, &mockMonitor{}, &mockReporter{})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestScheduler_Jobs(t *testing.T) {
	t.Parallel()

	var gotSymbols []string
	var gotCtx context.Context
	an := &mockAnalyzer{AnalyzeAllFunc: func(ctx context.Context, symbols []string) ([]analysis.Signal, error) {
		gotSymbols = symbols
		gotCtx = ctx
		return nil, nil
	}}
	mon := &mockMonitor{}
	rep := &mockReporter{}
	s, err := New(defaultConfig(), an, mon, rep)
	require.NoError(t, err)

	fixed := time.Date(2025, 8, 2, 18, 0, 0, 0, time.FixedZone("JST", 9*3600))
	s.now = func() time.Time { return fixed }
	type key struct{}
	s.ctx = context.WithValue(context.Background(), key{}, "job")

	s.runAnalysis()
	s.runMonitor()
	s.runReport()

	assert.Equal(t, []string{"BTC/USD", "ETH/USD", "SOL/USD"}, gotSymbols)
	assert.Equal(t, "job", gotCtx.Value(key{}))
	assert.Equal(t, 1, mon.calls)
	require.Len(t, rep.nows, 1)
	assert.Equal(t, time.UTC, rep.nows[0].Location())
	assert.True(t, rep.nows[0].Equal(fixed))
}

func TestScheduler_JobErrorsAreContained(t *testing.T) {
	t.Parallel()

	an := &mockAnalyzer{AnalyzeAllFunc: func(ctx context.Context, symbols []string) ([]analysis.Signal, error) {
		return nil, context.Canceled
	}}
	s, err := New(defaultConfig(), an, &mockMonitor{err: errors.New("ledger down")}, &mockReporter{})
	require.NoError(t, err)

	assert.NotPanics(t, func() {
		s.runAnalysis()
		s.runMonitor()
	})
}

func TestScheduler_RunStartup(t *testing.T) {
	t.Parallel()

	an := &mockAnalyzer{AnalyzeFunc: func(ctx context.Context, symbol string) (analysis.Signal, error) {
		if symbol == "ETH/USD" {
			return analysis.Signal{}, fmt.Errorf("%w: no candles", apperr.ErrDataUnavailable)
		}
		return analysis.Signal{Symbol: symbol, Type: analysis.Wait}, nil
	}}
	s, err := New(defaultConfig(), an, &mockMonitor{}, &mockReporter{})
	require.NoError(t, err)

	require.NoError(t, s.RunStartup(context.Background()))

	got := append([]string(nil), an.analyzed...)
	sort.Strings(got)
	assert.Equal(t, []string{"BTC/USD", "ETH/USD", "SOL/USD"}, got)
}

func TestScheduler_RunStartup_Canceled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	an := &mockAnalyzer{AnalyzeFunc: func(ctx context.Context, symbol string) (analysis.Signal, error) {
		return analysis.Signal{}, ctx.Err()
	}}
	s, err := New(defaultConfig(), an, &mockMonitor{}, &mockReporter{})
	require.NoError(t, err)

	assert.ErrorIs(t, s.RunStartup(ctx), context.Canceled)
}

func TestScheduler_StartStop(t *testing.T) {
	t.Parallel()

	s, err := New(defaultConfig(), &mockAnalyzer{}, &mockMonitor{}, &mockReporter{})
	require.NoError(t, err)

	s.Start(context.Background())
	select {
	case <-s.Stop().Done():
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
}
