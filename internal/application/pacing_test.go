package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPaceDurationStaysWithinWindow(t *testing.T) {
	pace := Pace{MinSeconds: 1.5, MaxSeconds: 3.5}

	for i := 0; i < 100; i++ {
		d := pace.Duration()
		assert.GreaterOrEqual(t, d, 1500*time.Millisecond)
		assert.LessOrEqual(t, d, 3500*time.Millisecond)
	}
}

func TestPaceDegenerateWindows(t *testing.T) {
	assert.Equal(t, 2*time.Second, Pace{MinSeconds: 2, MaxSeconds: 2}.Duration())
	assert.Equal(t, 3*time.Second, Pace{MinSeconds: 3, MaxSeconds: 1}.Duration(), "an inverted window collapses to its lower bound")
	assert.Equal(t, time.Duration(0), Pace{MinSeconds: -1, MaxSeconds: 0}.Duration())
}
