// Package ledger owns the trade collection shared by the signal and monitor usecases.
package ledger

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"signal_backend/internal/feature/trades/domain"
	"signal_backend/internal/feature/trades/domain/entity"
	"signal_backend/internal/shared/apperr"
)

// Store abstracts durable storage of the whole trade collection.
// Following Go convention: interfaces are defined by the consumer, not the adapters.
type Store interface {
	// LoadAll returns every persisted trade ordered by id.
	LoadAll(ctx context.Context) ([]entity.Trade, error)
	// SaveAll rewrites storage with the given trades.
	SaveAll(ctx context.Context, trades []entity.Trade) error
}

// Ledger keeps trades in memory and mirrors them to a Store.
// All mutations are serialized by one mutex; memory stays authoritative when a write fails.
type Ledger struct {
	mu     sync.RWMutex
	store  Store
	trades []entity.Trade
	dirty  bool
}

// New creates an empty ledger backed by store.
func New(store Store) *Ledger {
	return &Ledger{store: store}
}

// Load replaces the in-memory collection with the persisted one.
func (l *Ledger) Load(ctx context.Context) error {
	trades, err := l.store.LoadAll(ctx)
	if err != nil {
		return fmt.Errorf("load trades: %w", err)
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.trades = trades
	l.dirty = false
	log.Info().Int("count", len(trades)).Msg("trade history loaded")
	return nil
}

// Record appends a new ACTIVE trade and persists the ledger.
// On a write failure the trade is kept and the error wraps apperr.ErrPersistence.
func (l *Ledger) Record(ctx context.Context, nt entity.NewTrade) (entity.Trade, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	t := entity.Trade{
		ID:        l.nextID(),
		Symbol:    nt.Symbol,
		Signal:    nt.Signal,
		Entry:     nt.Entry,
		TP1:       nt.TP1,
		TP2:       nt.TP2,
		SL:        nt.SL,
		CreatedAt: nt.CreatedAt,
		Status:    entity.StatusActive,
		Outcome:   entity.OutcomeNone,
	}
	l.trades = append(l.trades, t)

	if err := l.persist(ctx); err != nil {
		return t, err
	}
	return t, nil
}

// Apply sets the terminal fields of every resolution whose trade is still ACTIVE and
// persists once if anything changed. It returns the resolutions that were applied.
func (l *Ledger) Apply(ctx context.Context, rs []entity.Resolution) ([]entity.Resolution, error) {
	if len(rs) == 0 {
		return nil, nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	index := make(map[int]int, len(l.trades))
	for i, t := range l.trades {
		index[t.ID] = i
	}

	applied := make([]entity.Resolution, 0, len(rs))
	for _, r := range rs {
		i, ok := index[r.TradeID]
		if !ok || !l.trades[i].IsActive() {
			continue
		}
		l.trades[i] = domain.Apply(l.trades[i], r)
		applied = append(applied, r)
	}
	if len(applied) == 0 {
		return nil, nil
	}
	return applied, l.persist(ctx)
}

// Flush retries a write that failed earlier. It is a no-op when storage is current.
func (l *Ledger) Flush(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.dirty {
		return nil
	}
	return l.persist(ctx)
}

// Get returns the trade with the given id.
func (l *Ledger) Get(id int) (entity.Trade, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, t := range l.trades {
		if t.ID == id {
			return t, true
		}
	}
	return entity.Trade{}, false
}

// Active returns a copy of all ACTIVE trades.
func (l *Ledger) Active() []entity.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]entity.Trade, 0)
	for _, t := range l.trades {
		if t.IsActive() {
			out = append(out, t)
		}
	}
	return out
}

// All returns a copy of every trade in id order.
func (l *Ledger) All() []entity.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]entity.Trade(nil), l.trades...)
}

// Since returns a copy of the trades created at or after t.
func (l *Ledger) Since(t time.Time) []entity.Trade {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]entity.Trade, 0)
	for _, tr := range l.trades {
		if !tr.CreatedAt.Before(t) {
			out = append(out, tr)
		}
	}
	return out
}

// Totals returns all-time counts for the status page.
func (l *Ledger) Totals() domain.Totals {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return domain.Tally(l.trades)
}

// nextID must be called with mu held.
func (l *Ledger) nextID() int {
	maxID := 0
	for _, t := range l.trades {
		if t.ID > maxID {
			maxID = t.ID
		}
	}
	return maxID + 1
}

// persist must be called with mu held.
func (l *Ledger) persist(ctx context.Context) error {
	snapshot := append([]entity.Trade(nil), l.trades...)
	if err := l.store.SaveAll(ctx, snapshot); err != nil {
		l.dirty = true
		log.Error().Err(err).Int("count", len(snapshot)).Msg("save trade history failed")
		return fmt.Errorf("%w: %w", apperr.ErrPersistence, err)
	}
	l.dirty = false
	return nil
}
