package application

import (
	"math/rand"
	"time"
)

// Pace is a uniform random wait window. Waits between remote calls are
// randomized so batch traffic does not land at a fixed cadence.
type Pace struct {
	MinSeconds float64
	MaxSeconds float64
}

func (p Pace) Duration() time.Duration {
	low, high := p.MinSeconds, p.MaxSeconds
	if low < 0 {
		low = 0
	}
	if high < low {
		high = low
	}

	seconds := low
	if span := high - low; span > 0 {
		seconds += rand.Float64() * span
	}

	return time.Duration(seconds * float64(time.Second))
}

// PacingPolicy bundles the wait windows used across batch flows.
type PacingPolicy struct {
	// Attempt paces the internal loop of repeatable operations.
	Attempt Pace
	// Account paces between accounts in a batch run.
	Account Pace
	// Validate paces between login probes during account validation.
	Validate Pace
}
