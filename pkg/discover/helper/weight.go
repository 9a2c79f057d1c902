package helper

import (
	"math"
	"time"
)

// DefaultWeight derives the default election weight from wall-clock time
// (§3): take seconds-since-epoch and repeatedly divide by ten until the
// magnitude is below one, then negate. This keeps default weights
// clustered just below zero so any user-supplied positive weight
// dominates, while still giving two defaults a deterministic tie-break.
func DefaultWeight(now time.Time) float64 {
	v := float64(now.Unix())
	for math.Abs(v) >= 1 {
		v /= 10
	}
	return -v
}
