// Package entity defines the domain models for the trades feature.
package entity

import (
	"strings"
	"time"
)

// Direction of a trade, derived from the signal that opened it.
type Direction string

const (
	Buy  Direction = "BUY"
	Sell Direction = "SELL"
)

// Status of a trade. Every status except ACTIVE is terminal.
type Status string

const (
	StatusActive Status = "ACTIVE"
	StatusTP1Hit Status = "TP1_HIT"
	StatusTP2Hit Status = "TP2_HIT"
	StatusSLHit  Status = "SL_HIT"
)

// Outcome of a resolved trade. Empty while the trade is active.
type Outcome string

const (
	OutcomeNone Outcome = ""
	OutcomeWin  Outcome = "WIN"
	OutcomeLoss Outcome = "LOSS"
)

// Trade is the persisted record of one directional signal and its result.
// Entry, targets, stop and CreatedAt never change after creation.
type Trade struct {
	ID         int       `json:"id"`
	Symbol     string    `json:"symbol"`
	Signal     string    `json:"signal"`
	Entry      float64   `json:"entry"`
	TP1        float64   `json:"tp1"`
	TP2        float64   `json:"tp2"`
	SL         float64   `json:"sl"`
	CreatedAt  time.Time `json:"timestamp"`
	Status     Status    `json:"status"`
	Outcome    Outcome   `json:"outcome"`
	PnLPercent float64   `json:"pnl_percent"`
}

// NewTrade carries the fields fixed at creation time.
type NewTrade struct {
	Symbol    string
	Signal    string
	Entry     float64
	TP1       float64
	TP2       float64
	SL        float64
	CreatedAt time.Time
}

// Direction reads the direction from the signal name, falling back to level geometry
// for records whose signal text carries neither side.
func (t Trade) Direction() Direction {
	s := strings.ToUpper(t.Signal)
	switch {
	case strings.Contains(s, "BUY"):
		return Buy
	case strings.Contains(s, "SELL"):
		return Sell
	case t.TP1 < t.Entry:
		return Sell
	}
	return Buy
}

// IsActive reports whether the trade still awaits resolution.
func (t Trade) IsActive() bool {
	return t.Status == StatusActive
}

// Resolution is the terminal transition computed for one active trade.
type Resolution struct {
	TradeID    int
	Status     Status
	Outcome    Outcome
	Price      float64
	PnLPercent float64
}
