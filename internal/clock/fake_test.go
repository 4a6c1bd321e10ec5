package clock_test

import (
	"github.com/myrjola/spotfake/internal/clock"
	"github.com/stretchr/testify/require"
	"testing"
	"time"
)

func TestFake_firesInDeadlineOrder(t *testing.T) {
	c := clock.NewFake()

	var fired []string
	c.AfterFunc(3*time.Second, func() { fired = append(fired, "third") })
	c.AfterFunc(1*time.Second, func() { fired = append(fired, "first") })
	c.AfterFunc(2*time.Second, func() { fired = append(fired, "second") })

	c.Advance(10 * time.Second)

	require.Equal(t, []string{"first", "second", "third"}, fired)
}

func TestFake_stopPreventsFiring(t *testing.T) {
	c := clock.NewFake()

	fired := false
	timer := c.AfterFunc(time.Second, func() { fired = true })
	require.True(t, timer.Stop())

	c.Advance(5 * time.Second)

	require.False(t, fired, "stopped timer should not fire")
	require.False(t, timer.Stop(), "second stop reports timer already inert")
}

func TestFake_callbackSchedulesFollowup(t *testing.T) {
	c := clock.NewFake()

	var fired []time.Time
	var tick func()
	tick = func() {
		fired = append(fired, c.Now())
		c.AfterFunc(time.Second, tick)
	}
	c.AfterFunc(time.Second, tick)

	c.Advance(3 * time.Second)

	require.Len(t, fired, 3, "a rescheduling callback fires once per second")
	require.Equal(t, 2*time.Second, fired[2].Sub(fired[0]))
}

func TestFake_advancePastNothing(t *testing.T) {
	c := clock.NewFake()
	start := c.Now()

	c.Advance(time.Minute)

	require.Equal(t, time.Minute, c.Now().Sub(start))
}
