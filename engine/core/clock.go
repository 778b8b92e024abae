package core

import "time"

// Clock measures wall time for the frame loop. The zero value is a stopped
// clock.
type Clock struct {
	startTime time.Time
	lastMark  time.Time
	elapsed   time.Duration
	now       func() time.Time
}

func NewClock() *Clock {
	return &Clock{now: time.Now}
}

// Updates the provided clock. Should be called just before checking elapsed time.
// Has no effect on non-started clocks.
func (c *Clock) Update() {
	if !c.startTime.IsZero() {
		c.elapsed = c.now().Sub(c.startTime)
	}
}

// Starts the provided clock. Resets elapsed time.
func (c *Clock) Start() {
	if c.now == nil {
		c.now = time.Now
	}
	c.startTime = c.now()
	c.lastMark = c.startTime
	c.elapsed = 0
}

// Stops the provided clock. Does not reset elapsed time.
func (c *Clock) Stop() {
	c.startTime = time.Time{}
}

// Elapsed returns the time in seconds since Start, as of the last Update.
func (c *Clock) Elapsed() float64 {
	return c.elapsed.Seconds()
}

// Mark returns the seconds passed since the previous Mark (or Start) and
// moves the mark to now.
func (c *Clock) Mark() float32 {
	if c.startTime.IsZero() {
		return 0
	}
	now := c.now()
	dt := now.Sub(c.lastMark)
	c.lastMark = now
	return float32(dt.Seconds())
}

// Peek returns the seconds passed since the previous Mark without moving it.
func (c *Clock) Peek() float32 {
	if c.startTime.IsZero() {
		return 0
	}
	return float32(c.now().Sub(c.lastMark).Seconds())
}
