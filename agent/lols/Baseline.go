package lols

import "fmt"

// Baseline estimates the expected loss of an episode. BanditLOLS
// subtracts it from its cost estimates to reduce their variance.
type Baseline interface {
	Value() float64
	Update(loss float64)
}

// EWMA is a Baseline which tracks an exponentially weighted moving
// average of the observed losses
type EWMA struct {
	rate  float64
	value float64
}

// NewEWMA returns a new EWMA with the given initial value. Each update
// moves the average a fraction rate of the way to the observed loss.
func NewEWMA(rate, initial float64) *EWMA {
	if rate <= 0 || rate > 1 {
		panic(fmt.Sprintf("newEWMA: rate must be in (0, 1], got %v", rate))
	}
	return &EWMA{rate: rate, value: initial}
}

// Value returns the current average
func (e *EWMA) Value() float64 {
	return e.value
}

// Update moves the average towards loss
func (e *EWMA) Update(loss float64) {
	e.value = (1-e.rate)*e.value + e.rate*loss
}
