package pivot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	candle "signal_backend/internal/feature/candles/domain/entity"
	"signal_backend/internal/shared/apperr"
)

func day(offset int, h, l, c float64) candle.Candle {
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	return candle.Candle{Interval: candle.IntervalDay, Time: base.AddDate(0, 0, offset), High: h, Low: l, Close: c}
}

func TestCalculate_UsesLastClosedDay(t *testing.T) {
	t.Parallel()

	daily := []candle.Candle{
		day(0, 500, 400, 450),
		day(1, 110, 90, 100), // last closed day
		day(2, 999, 1, 500),  // still forming, ignored
	}

	got, err := Calculate(daily)
	require.NoError(t, err)

	assert.InDelta(t, 100.0, got.PP, 1e-9)
	assert.InDelta(t, 100.0, got.BC, 1e-9)
	assert.InDelta(t, 100.0, got.TC, 1e-9)
	assert.InDelta(t, 110.0, got.R1, 1e-9)
	assert.InDelta(t, 90.0, got.S1, 1e-9)
	assert.InDelta(t, 120.0, got.R2, 1e-9)
	assert.InDelta(t, 80.0, got.S2, 1e-9)
}

func TestCalculate_InsufficientData(t *testing.T) {
	t.Parallel()

	_, err := Calculate(nil)
	assert.ErrorIs(t, err, apperr.ErrDataUnavailable)

	_, err = Calculate([]candle.Candle{day(0, 110, 90, 100)})
	assert.ErrorIs(t, err, apperr.ErrDataUnavailable)
}

func TestFromHLC_Properties(t *testing.T) {
	t.Parallel()

	triples := [][3]float64{
		{110, 90, 100},
		{105, 95, 104},
		{64250.5, 62010.25, 62100},
		{1.2, 1.2, 1.2},
		{0.0031, 0.0027, 0.0030},
	}
	for _, hlc := range triples {
		h, l, c := hlc[0], hlc[1], hlc[2]
		p := FromHLC(h, l, c)

		assert.InDelta(t, (h+l+c)/3, p.PP, 1e-9)
		assert.InDelta(t, p.PP-p.BC, p.TC-p.PP, 1e-9, "band must be symmetric around PP")
		assert.InDelta(t, 2*p.PP-l, p.R1, 1e-9)
		assert.InDelta(t, 2*p.PP-h, p.S1, 1e-9)
		assert.InDelta(t, p.PP+(h-l), p.R2, 1e-9)
		assert.InDelta(t, p.PP-(h-l), p.S2, 1e-9)

		low, high := p.CentralBand()
		assert.LessOrEqual(t, low, high)
	}
}
