// Package pivot derives daily pivot, support and resistance levels.
package pivot

import (
	"fmt"

	"signal_backend/internal/feature/analysis/domain/entity"
	candle "signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/shared/apperr"
)

// Calculate computes CPR levels from the last closed day of a chronological daily series.
// The final element is treated as the still-open current day and ignored.
func Calculate(daily []candle.Candle) (entity.PivotLevels, error) {
	if len(daily) < 2 {
		return entity.PivotLevels{}, fmt.Errorf("pivot needs 2 daily candles, got %d: %w",
			len(daily), apperr.ErrDataUnavailable)
	}
	prev := daily[len(daily)-2]
	return FromHLC(prev.High, prev.Low, prev.Close), nil
}

// FromHLC computes the levels for one day's high, low and close.
func FromHLC(h, l, c float64) entity.PivotLevels {
	pp := (h + l + c) / 3.0
	bc := (h + l) / 2.0
	tc := pp + (pp - bc)
	return entity.PivotLevels{
		PP: pp,
		TC: tc,
		BC: bc,
		R1: 2*pp - l,
		S1: 2*pp - h,
		R2: pp + (h - l),
		S2: pp - (h - l),
	}
}
