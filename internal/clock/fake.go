package clock

import (
	"sync"
	"time"
)

// Fake is a Clock controlled by tests. Time only moves when Advance is called,
// and due callbacks run synchronously on the advancing goroutine in deadline
// order, so tests observe every intermediate state deterministically.
type Fake struct {
	mu     sync.Mutex
	now    time.Time
	seq    int
	timers []*fakeTimer
}

type fakeTimer struct {
	clock    *Fake
	deadline time.Time
	seq      int
	f        func()
	stopped  bool
	fired    bool
}

// NewFake returns a Fake starting at an arbitrary fixed instant.
func NewFake() *Fake {
	return &Fake{now: time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)}
}

func (c *Fake) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *Fake) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	timer := &fakeTimer{
		clock:    c,
		deadline: c.now.Add(d),
		seq:      c.seq,
		f:        f,
	}
	c.timers = append(c.timers, timer)
	return timer
}

// Advance moves the clock forward by d, firing every timer whose deadline is
// reached. Callbacks may schedule further timers; those also fire if they fall
// within the advanced window.
func (c *Fake) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		timer := c.popDue(target)
		if timer == nil {
			return
		}
		timer.f()
	}
}

// popDue removes and returns the next timer due at or before target, moving
// the clock to its deadline. When no timer is due the clock lands on target.
func (c *Fake) popDue(target time.Time) *fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()

	var next *fakeTimer
	for _, timer := range c.timers {
		if timer.stopped || timer.fired || timer.deadline.After(target) {
			continue
		}
		if next == nil || timer.deadline.Before(next.deadline) ||
			(timer.deadline.Equal(next.deadline) && timer.seq < next.seq) {
			next = timer
		}
	}
	if next == nil {
		c.now = target
		return nil
	}

	next.fired = true
	if next.deadline.After(c.now) {
		c.now = next.deadline
	}
	return next
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}
