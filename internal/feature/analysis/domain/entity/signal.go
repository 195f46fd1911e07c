package entity

import "time"

// SignalType is the outcome of one evaluation of an asset.
type SignalType string

const (
	StrongBuy  SignalType = "STRONG_BUY"
	StrongSell SignalType = "STRONG_SELL"
	Wait       SignalType = "WAIT"
)

// IsDirectional reports whether the signal should spawn a trade.
func (t SignalType) IsDirectional() bool {
	return t == StrongBuy || t == StrongSell
}

// Signal is produced per (asset, evaluation instant). It is never persisted itself.
type Signal struct {
	Type        SignalType  `json:"type"`
	Symbol      string      `json:"symbol"`
	Price       float64     `json:"price"`
	Trend4h     Trend       `json:"trend_4h"`
	Trend1h     Trend       `json:"trend_1h"`
	Pivots      PivotLevels `json:"pivots"`
	TP1         float64     `json:"tp1,omitempty"` // zero unless directional
	TP2         float64     `json:"tp2,omitempty"`
	SL          float64     `json:"sl,omitempty"`
	EvaluatedAt time.Time   `json:"evaluated_at"`
	Reason      string      `json:"reason,omitempty"` // why the call is WAIT
}
