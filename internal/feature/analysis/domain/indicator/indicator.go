// Package indicator derives trend indicators from a candle series.
package indicator

import (
	"fmt"

	"signal_backend/internal/feature/analysis/domain/entity"
	candle "signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/shared/apperr"
)

const (
	FastWindow = 9
	SlowWindow = 20
)

// SMA returns the simple moving average of the last n values.
func SMA(values []float64, n int) (float64, error) {
	if n <= 0 {
		return 0, fmt.Errorf("sma window must be positive, got %d", n)
	}
	if len(values) < n {
		return 0, fmt.Errorf("sma(%d) needs %d values, got %d: %w", n, n, len(values), apperr.ErrDataUnavailable)
	}
	sum := 0.0
	for _, v := range values[len(values)-n:] {
		sum += v
	}
	return sum / float64(n), nil
}

// Snapshot computes SMA(9) and SMA(20) over the valid closes of a chronological series
// and classifies the trend. Equal averages classify as BEARISH.
func Snapshot(candles []candle.Candle) (entity.IndicatorSnapshot, error) {
	closes := make([]float64, 0, len(candles))
	for _, c := range candles {
		if c.HasValidClose() {
			closes = append(closes, c.Close)
		}
	}
	if len(closes) < SlowWindow {
		return entity.IndicatorSnapshot{}, fmt.Errorf("indicator needs %d closes, got %d: %w",
			SlowWindow, len(closes), apperr.ErrDataUnavailable)
	}

	fast, err := SMA(closes, FastWindow)
	if err != nil {
		return entity.IndicatorSnapshot{}, err
	}
	slow, err := SMA(closes, SlowWindow)
	if err != nil {
		return entity.IndicatorSnapshot{}, err
	}

	trend := entity.Bearish
	if fast > slow {
		trend = entity.Bullish
	}
	return entity.IndicatorSnapshot{Fast: fast, Slow: slow, Trend: trend}, nil
}
