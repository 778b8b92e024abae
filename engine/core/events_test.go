package core_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/spaghettifunk/orrery/engine/core"
)

func TestEventBusFire(t *testing.T) {
	bus := core.NewEventBus()

	var got []uint32
	first, second := new(int), new(int)
	assert.True(t, bus.Register(core.EVENT_CODE_RESIZED, first, func(ctx core.EventContext) bool {
		got = append(got, ctx.Data.(*core.SystemEvent).WindowWidth)
		return false
	}))
	assert.False(t, bus.Register(core.EVENT_CODE_RESIZED, first, func(core.EventContext) bool { return true }))
	assert.True(t, bus.Register(core.EVENT_CODE_RESIZED, second, func(core.EventContext) bool { return true }))

	handled := bus.Fire(core.EventContext{
		Type: core.EVENT_CODE_RESIZED,
		Data: &core.SystemEvent{WindowWidth: 640, WindowHeight: 480},
	})
	assert.True(t, handled)
	assert.Equal(t, []uint32{640}, got)

	assert.True(t, bus.Unregister(core.EVENT_CODE_RESIZED, second))
	assert.False(t, bus.Unregister(core.EVENT_CODE_RESIZED, second))
	assert.False(t, bus.Fire(core.EventContext{Type: core.EVENT_CODE_RESIZED, Data: &core.SystemEvent{}}))
	assert.False(t, bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT}))
}
