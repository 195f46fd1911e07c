package usecase

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	candle "signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/feature/trades/ledger"
)

var ErrMarketAPI = errors.New("market API error")

// mockMarketRepository is a mock implementation of the MarketRepository interface.
type mockMarketRepository struct {
	mu                 sync.Mutex
	GetTimeSeriesFunc  func(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error)
	GetTimeSeriesCalls map[string]int
}

func (m *mockMarketRepository) GetTimeSeries(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error) {
	m.mu.Lock()
	if m.GetTimeSeriesCalls == nil {
		m.GetTimeSeriesCalls = map[string]int{}
	}
	m.GetTimeSeriesCalls[symbol]++
	m.mu.Unlock()
	if m.GetTimeSeriesFunc != nil {
		return m.GetTimeSeriesFunc(ctx, symbol, interval, outputsize)
	}
	return nil, errors.New("GetTimeSeriesFunc is not implemented")
}

// priceMarket returns a market whose last 1h close is prices[symbol].
func priceMarket(prices map[string]float64) *mockMarketRepository {
	return &mockMarketRepository{
		GetTimeSeriesFunc: func(ctx context.Context, symbol, interval string, outputsize int) ([]candle.Candle, error) {
			p, ok := prices[symbol]
			if !ok {
				return nil, ErrMarketAPI
			}
			at := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
			return []candle.Candle{
				{Symbol: symbol, Interval: interval, Time: at, Close: p * 0.99},
				{Symbol: symbol, Interval: interval, Time: at.Add(time.Hour), Close: p},
			}, nil
		},
	}
}

// mockRateLimiter is a mock implementation of the RateLimiterInterface.
type mockRateLimiter struct {
	WaitCalls int
}

func (m *mockRateLimiter) Wait(ctx context.Context) error {
	m.WaitCalls++
	return ctx.Err()
}

// mockNotifier records outgoing messages.
type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, text string) error {
	args := m.Called(ctx, text)
	return args.Error(0)
}

// memStore is an in-memory ledger.Store.
type memStore struct {
	SaveAllFunc  func(trades []entity.Trade) error
	SaveAllCalls int
	trades       []entity.Trade
}

var _ ledger.Store = (*memStore)(nil)

func (s *memStore) LoadAll(ctx context.Context) ([]entity.Trade, error) {
	return append([]entity.Trade(nil), s.trades...), nil
}

func (s *memStore) SaveAll(ctx context.Context, trades []entity.Trade) error {
	s.SaveAllCalls++
	if s.SaveAllFunc != nil {
		if err := s.SaveAllFunc(trades); err != nil {
			return err
		}
	}
	s.trades = trades
	return nil
}

// seedLedger loads the given trades into a fresh ledger.
func seedLedger(trades ...entity.Trade) (*ledger.Ledger, *memStore) {
	store := &memStore{trades: trades}
	l := ledger.New(store)
	if err := l.Load(context.Background()); err != nil {
		panic(err)
	}
	return l, store
}

func buyTrade(id int, symbol string, created time.Time) entity.Trade {
	return entity.Trade{ID: id, Symbol: symbol, Signal: "STRONG_BUY", Entry: 100, TP1: 110, TP2: 120, SL: 95, CreatedAt: created, Status: entity.StatusActive}
}

func sellTrade(id int, symbol string, created time.Time) entity.Trade {
	return entity.Trade{ID: id, Symbol: symbol, Signal: "STRONG_SELL", Entry: 100, TP1: 90, TP2: 80, SL: 105, CreatedAt: created, Status: entity.StatusActive}
}
