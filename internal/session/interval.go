package session

import (
	"math"
	"time"
)

// Interval is a repeating timer driven by simulated time. A session owns one
// per timer-driven source and advances them all by the step's dt.
type Interval struct {
	rate    float64
	period  time.Duration
	elapsed time.Duration
	armed   bool
}

// PeriodForRate converts a rate in events per second to the period between
// events. A non-positive rate has no period.
func PeriodForRate(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}
	return time.Duration(math.Round(float64(time.Second) / rate))
}

// Arm starts the timer with the given period, discarding any schedule in
// progress. A non-positive period disarms it.
func (iv *Interval) Arm(period time.Duration) {
	iv.elapsed = 0
	iv.period = period
	iv.armed = period > 0
	if !iv.armed {
		iv.rate = 0
	}
}

// Disarm stops the timer.
func (iv *Interval) Disarm() {
	iv.armed = false
	iv.rate = 0
	iv.period = 0
	iv.elapsed = 0
}

// Armed reports whether the timer is running.
func (iv *Interval) Armed() bool { return iv.armed }

// Period returns the current period, or 0 when disarmed.
func (iv *Interval) Period() time.Duration { return iv.period }

// SetRate re-arms the timer at rate events per second, but only when the
// rate differs from the current one; an unchanged rate keeps its schedule.
// A non-positive rate disarms. It reports whether the schedule was reset.
func (iv *Interval) SetRate(rate float64) bool {
	if rate <= 0 {
		if !iv.armed {
			return false
		}
		iv.Disarm()
		return true
	}
	if iv.armed && rate == iv.rate {
		return false
	}
	iv.Arm(PeriodForRate(rate))
	iv.rate = rate
	return true
}

// Advance moves the timer forward by dt and returns how many times it fired.
func (iv *Interval) Advance(dt time.Duration) int {
	if !iv.armed || dt <= 0 {
		return 0
	}
	iv.elapsed += dt
	n := int(iv.elapsed / iv.period)
	iv.elapsed -= time.Duration(n) * iv.period
	return n
}
