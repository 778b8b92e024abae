package engine

import (
	"github.com/spaghettifunk/orrery/engine/assets"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

// Game is the application driven by the engine. The engine fills Config,
// Input, Graphics, Assets and Shaders before FnInitialize is called.
type Game struct {
	Config   *core.Config
	Input    *core.Input
	Graphics *renderer.Graphics
	Assets   *assets.AssetManager
	Shaders  *shader.Library
	State    interface{}

	FnInitialize Initialize
	FnUpdate     Update
	FnRender     Render
	FnOnResize   OnResize
	FnShutdown   Shutdown
}

type Initialize func() error
type Update func(deltaTime float32) error

// Render records the frame's draws. Errors that are not fatal according to
// renderer.IsFatal are logged and the frame goes on.
type Render func(gfx *renderer.Graphics) error
type OnResize func(width uint32, height uint32) error
type Shutdown func() error
