package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/orrery/engine/core"
)

func TestInputProcessKey(t *testing.T) {
	bus := core.NewEventBus()
	in := core.NewInput(bus)

	var pressed, released []core.KeyCode
	bus.Register(core.EVENT_CODE_KEY_PRESSED, t, func(ctx core.EventContext) bool {
		pressed = append(pressed, ctx.Data.(*core.KeyEvent).KeyCode)
		return true
	})
	bus.Register(core.EVENT_CODE_KEY_RELEASED, t, func(ctx core.EventContext) bool {
		released = append(released, ctx.Data.(*core.KeyEvent).KeyCode)
		return true
	})

	in.ProcessKey(core.KEY_ESCAPE, true)
	in.ProcessKey(core.KEY_ESCAPE, true)
	assert.True(t, in.IsKeyDown(core.KEY_ESCAPE))
	assert.False(t, in.WasKeyDown(core.KEY_ESCAPE))

	in.Update()
	assert.True(t, in.WasKeyDown(core.KEY_ESCAPE))

	in.ProcessKey(core.KEY_ESCAPE, false)
	assert.False(t, in.IsKeyDown(core.KEY_ESCAPE))
	assert.Equal(t, []core.KeyCode{core.KEY_ESCAPE}, pressed)
	assert.Equal(t, []core.KeyCode{core.KEY_ESCAPE}, released)

	in.ProcessKey(core.KEYS_MAX_KEYS, true)
	assert.False(t, in.IsKeyDown(core.KEYS_MAX_KEYS))
}
