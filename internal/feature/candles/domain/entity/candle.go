// Package entity defines the domain models for the candles feature.
package entity

import (
	"math"
	"time"
)

// Intervals used by the signal engine. Values follow the market-data API naming.
const (
	Interval1h  = "1h"   // entry timeframe, also used for trade monitoring
	Interval4h  = "4h"   // major trend timeframe
	IntervalDay = "1day" // pivot timeframe
)

// Candle represents OHLCV (Open, High, Low, Close, Volume) candlestick data
// for a traded pair at a specific time interval.
type Candle struct {
	Symbol   string    // Pair symbol (e.g., "BTC/USD")
	Interval string    // Time interval (e.g., "1h", "4h", "1day")
	Time     time.Time // Timestamp for the start of this candle period
	Open     float64   // Opening price
	High     float64   // Highest price during this period
	Low      float64   // Lowest price during this period
	Close    float64   // Closing price
	Volume   float64   // Traded volume (fractional for crypto)
}

// HasValidClose reports whether the close can be used for indicator math.
func (c Candle) HasValidClose() bool {
	return c.Close > 0 && !math.IsNaN(c.Close) && !math.IsInf(c.Close, 0)
}

// IntervalDuration returns the bucket length of an interval, or 0 if unknown.
func IntervalDuration(interval string) time.Duration {
	switch interval {
	case Interval1h:
		return time.Hour
	case Interval4h:
		return 4 * time.Hour
	case IntervalDay:
		return 24 * time.Hour
	}
	return 0
}

// Completed drops a trailing candle whose period has not ended at now.
// The input must be chronological; it is not modified.
func Completed(candles []Candle, interval string, now time.Time) []Candle {
	d := IntervalDuration(interval)
	if d == 0 || len(candles) == 0 {
		return candles
	}
	last := candles[len(candles)-1]
	if last.Time.Add(d).After(now) {
		return candles[:len(candles)-1]
	}
	return candles
}

// LastClose returns the close of the most recent candle.
func LastClose(candles []Candle) (float64, bool) {
	if len(candles) == 0 {
		return 0, false
	}
	c := candles[len(candles)-1]
	if !c.HasValidClose() {
		return 0, false
	}
	return c.Close, true
}
