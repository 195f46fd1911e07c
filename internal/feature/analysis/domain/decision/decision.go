// Package decision holds the master signal rule. It is a pure function of its inputs.
package decision

import (
	"time"

	"signal_backend/internal/feature/analysis/domain/entity"
)

// ReasonNoConfluence and ReasonTargetsCrossed explain a WAIT decision.
const (
	ReasonNoConfluence   = "no trend/pivot confluence"
	ReasonTargetsCrossed = "targets already crossed"
)

// Input is everything the rule looks at for one asset.
type Input struct {
	Symbol string
	Price  float64
	H4     entity.IndicatorSnapshot
	H1     entity.IndicatorSnapshot
	Pivots entity.PivotLevels
	At     time.Time
}

// Decide applies the confluence rule:
// both trends bullish and price above PP is a STRONG_BUY, both bearish and price below PP
// is a STRONG_SELL, anything else is WAIT.
func Decide(in Input) entity.Signal {
	sig := entity.Signal{
		Type:        entity.Wait,
		Symbol:      in.Symbol,
		Price:       in.Price,
		Trend4h:     in.H4.Trend,
		Trend1h:     in.H1.Trend,
		Pivots:      in.Pivots,
		EvaluatedAt: in.At,
		Reason:      ReasonNoConfluence,
	}

	low, high := in.Pivots.CentralBand()
	switch {
	case in.H4.Trend == entity.Bullish && in.H1.Trend == entity.Bullish && in.Price > in.Pivots.PP:
		sig.Type = entity.StrongBuy
		sig.TP1, sig.TP2, sig.SL = in.Pivots.R1, in.Pivots.R2, low
	case in.H4.Trend == entity.Bearish && in.H1.Trend == entity.Bearish && in.Price < in.Pivots.PP:
		sig.Type = entity.StrongSell
		sig.TP1, sig.TP2, sig.SL = in.Pivots.S1, in.Pivots.S2, high
	default:
		return sig
	}

	if !ordered(sig) {
		return entity.Signal{
			Type:        entity.Wait,
			Symbol:      in.Symbol,
			Price:       in.Price,
			Trend4h:     in.H4.Trend,
			Trend1h:     in.H1.Trend,
			Pivots:      in.Pivots,
			EvaluatedAt: in.At,
			Reason:      ReasonTargetsCrossed,
		}
	}
	sig.Reason = ""
	return sig
}

// ordered checks sl < price < tp1 < tp2 for a buy, mirrored for a sell.
func ordered(s entity.Signal) bool {
	if s.Type == entity.StrongBuy {
		return s.SL < s.Price && s.Price < s.TP1 && s.TP1 < s.TP2
	}
	return s.SL > s.Price && s.Price > s.TP1 && s.TP1 > s.TP2
}
