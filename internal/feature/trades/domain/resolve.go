// Package domain holds the trade outcome rules.
package domain

import "signal_backend/internal/feature/trades/domain/entity"

// Evaluate checks an active trade against one price sample.
// Thresholds are tested tp2, tp1, then sl so the best outcome wins when several are crossed.
// It returns false when the trade stays active.
func Evaluate(t entity.Trade, price float64) (entity.Resolution, bool) {
	if !t.IsActive() || t.Entry == 0 {
		return entity.Resolution{}, false
	}

	buy := t.Direction() == entity.Buy
	var status entity.Status
	var outcome entity.Outcome
	if buy {
		switch {
		case price >= t.TP2:
			status, outcome = entity.StatusTP2Hit, entity.OutcomeWin
		case price >= t.TP1:
			status, outcome = entity.StatusTP1Hit, entity.OutcomeWin
		case price <= t.SL:
			status, outcome = entity.StatusSLHit, entity.OutcomeLoss
		}
	} else {
		switch {
		case price <= t.TP2:
			status, outcome = entity.StatusTP2Hit, entity.OutcomeWin
		case price <= t.TP1:
			status, outcome = entity.StatusTP1Hit, entity.OutcomeWin
		case price >= t.SL:
			status, outcome = entity.StatusSLHit, entity.OutcomeLoss
		}
	}
	if status == "" {
		return entity.Resolution{}, false
	}

	return entity.Resolution{
		TradeID:    t.ID,
		Status:     status,
		Outcome:    outcome,
		Price:      price,
		PnLPercent: PnLPercent(t.Direction(), t.Entry, price),
	}, true
}

// PnLPercent is the percentage move from entry to price, positive when the move favored the direction.
func PnLPercent(d entity.Direction, entry, price float64) float64 {
	pct := (price - entry) / entry * 100
	if d == entity.Sell {
		return -pct
	}
	return pct
}

// Apply returns t with the resolution's terminal fields set.
func Apply(t entity.Trade, r entity.Resolution) entity.Trade {
	t.Status = r.Status
	t.Outcome = r.Outcome
	t.PnLPercent = r.PnLPercent
	return t
}
