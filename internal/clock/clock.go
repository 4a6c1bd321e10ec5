// Package clock abstracts timer scheduling so that the gameplay state machines
// can be driven by virtual time in tests instead of wall-clock timers.
package clock

import "time"

// Timer is a pending callback that can be cancelled.
type Timer interface {
	// Stop cancels the timer. It reports whether the call prevented the
	// callback from firing.
	Stop() bool
}

// Clock schedules callbacks. Implementations must be safe for concurrent use.
type Clock interface {
	Now() time.Time
	// AfterFunc runs f on its own goroutine after duration d unless the
	// returned timer is stopped first.
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

// System returns a Clock backed by the time package.
func System() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
