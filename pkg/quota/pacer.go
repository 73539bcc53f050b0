package quota

import (
	"math/rand"
	"time"
)

// Pacer sizes the sleep after each action so that actions spread evenly
// across the hourly budget, jittered by a multiplicative deviation so the
// cadence is not a fixed signature.
type Pacer struct {
	// PerHour is the hourly action budget the base interval is derived from
	PerHour int
	// Deviation is the multiplicative jitter factor (0.2 means up to +20%)
	Deviation float64
}

// Interval returns the next pacing sleep: 1 hour / PerHour, jittered.
func (p Pacer) Interval() time.Duration {
	if p.PerHour <= 0 {
		return 0
	}
	base := time.Hour / time.Duration(p.PerHour)
	return Jitter(base, p.Deviation)
}

// Jitter scales d by a random factor in [1, 1+deviation).
func Jitter(d time.Duration, deviation float64) time.Duration {
	if deviation <= 0 {
		return d
	}
	return time.Duration(float64(d) * (1 + rand.Float64()*deviation))
}

// Between returns a random duration in [min, max).
func Between(min, max time.Duration) time.Duration {
	if max <= min {
		return min
	}
	return min + time.Duration(rand.Int63n(int64(max-min)))
}
