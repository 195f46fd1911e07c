package entity

import "math"

// PivotLevels are the classical daily pivot (CPR) levels derived from the prior closed day.
type PivotLevels struct {
	PP float64 `json:"pp"`
	TC float64 `json:"tc"`
	BC float64 `json:"bc"`
	R1 float64 `json:"r1"`
	R2 float64 `json:"r2"`
	S1 float64 `json:"s1"`
	S2 float64 `json:"s2"`
}

// CentralBand returns the lower and upper edge of the TC/BC band.
func (p PivotLevels) CentralBand() (low, high float64) {
	return math.Min(p.BC, p.TC), math.Max(p.BC, p.TC)
}
