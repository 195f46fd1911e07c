// Package entity defines the domain models for the analysis feature.
package entity

// Trend is the direction implied by the fast/slow moving-average relation.
type Trend string

const (
	Bullish Trend = "BULLISH"
	Bearish Trend = "BEARISH"
)

// IndicatorSnapshot holds the moving averages at the latest fully formed bar.
type IndicatorSnapshot struct {
	Fast  float64 // SMA(9) of closes
	Slow  float64 // SMA(20) of closes
	Trend Trend
}
