package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockMark(t *testing.T) {
	base := time.Unix(1000, 0)
	current := base
	c := &Clock{now: func() time.Time { return current }}

	assert.Zero(t, c.Mark(), "stopped clock")

	c.Start()
	current = base.Add(250 * time.Millisecond)
	assert.InDelta(t, 0.25, c.Peek(), 1e-6)
	assert.InDelta(t, 0.25, c.Mark(), 1e-6)

	current = base.Add(time.Second)
	assert.InDelta(t, 0.75, c.Mark(), 1e-6)

	c.Update()
	assert.InDelta(t, 1.0, c.Elapsed(), 1e-9)

	c.Stop()
	current = base.Add(5 * time.Second)
	c.Update()
	assert.InDelta(t, 1.0, c.Elapsed(), 1e-9)
}
