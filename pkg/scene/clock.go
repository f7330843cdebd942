package scene

import "time"

// Clock measures frame time for the driving loop.
type Clock struct {
	now   func() time.Time
	start time.Time
	last  time.Time
}

// NewClock returns a clock started now.
func NewClock() *Clock {
	return newClockAt(time.Now)
}

func newClockAt(now func() time.Time) *Clock {
	t := now()
	return &Clock{now: now, start: t, last: t}
}

// Delta returns the seconds since the previous Delta call, or since the
// clock started.
func (c *Clock) Delta() float64 {
	t := c.now()
	d := t.Sub(c.last).Seconds()
	c.last = t
	return d
}

// Elapsed returns the seconds since the clock started.
func (c *Clock) Elapsed() float64 {
	return c.now().Sub(c.start).Seconds()
}
