package testbed

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/components"
	"github.com/spaghettifunk/orrery/engine/renderer/drawable"
)

const (
	nearClip = 0.5
	farClip  = 40.0

	turnSpeed float32 = 1.0
	moveSpeed float32 = 8.0
)

type TestGame struct {
	*engine.Game
}

type gameState struct {
	camera     *components.Camera
	projection math.Mat4

	registry  *drawable.Registry
	drawables []drawable.Renderable
}

func NewTestGame() *TestGame {
	tg := &TestGame{
		Game: &engine.Game{
			State: &gameState{
				camera:     components.NewCamera(),
				projection: math.NewMat4PerspectiveLH(1.0, 0.75, nearClip, farClip),
			},
		},
	}

	tg.FnInitialize = tg.Initialize
	tg.FnUpdate = tg.Update
	tg.FnRender = tg.Render
	tg.FnOnResize = tg.OnResize
	tg.FnShutdown = tg.Shutdown

	return tg
}

func (g *TestGame) Initialize() error {
	core.LogDebug("TestGame Initialize fn....")

	if g.Graphics == nil {
		return fmt.Errorf("the engine did not provide a graphics device: %w", core.ErrNotInitialized)
	}
	state := g.State.(*gameState)
	scene := g.Config.Scene

	classes := make([]drawable.GeometryClass, 0, len(scene.Classes))
	for _, name := range scene.Classes {
		class, err := drawable.ParseClass(name)
		if err != nil {
			return err
		}
		classes = append(classes, class)
	}

	state.registry = drawable.NewRegistry()
	res := &drawable.Resources{
		Registry:     state.registry,
		Programs:     g.Shaders,
		Images:       g.Assets,
		SheetTexture: scene.SheetTexture,
		CubeTexture:  scene.CubeTexture,
	}
	factory, err := drawable.NewFactory(g.Graphics, res, scene.Seed, classes)
	if err != nil {
		return err
	}
	state.drawables, err = factory.Populate(scene.ObjectCount)
	if err != nil {
		return err
	}
	return nil
}

func (g *TestGame) Update(deltaTime float32) error {
	state := g.State.(*gameState)
	if g.Input != nil {
		g.moveCamera(state.camera, deltaTime)
		// Holding space freezes the orbits.
		if g.Input.IsKeyDown(core.KEY_SPACE) {
			return nil
		}
	}
	for _, d := range state.drawables {
		d.Update(deltaTime)
	}
	return nil
}

// Render draws every object. Warnings from single draws are logged and the
// rest of the scene is still drawn.
func (g *TestGame) Render(gfx *renderer.Graphics) error {
	state := g.State.(*gameState)
	gfx.SetProjection(state.camera.ViewProjection(state.projection))
	for _, d := range state.drawables {
		if err := d.Draw(gfx); err != nil {
			if renderer.IsFatal(err) {
				return err
			}
			core.LogWarn("%s: %s", d.Class(), err)
		}
	}
	return nil
}

// OnResize keeps the aspect ratio of the projection in step with the window.
func (g *TestGame) OnResize(width uint32, height uint32) error {
	if width == 0 || height == 0 {
		return nil
	}
	state := g.State.(*gameState)
	aspect := float32(height) / float32(width)
	state.projection = math.NewMat4PerspectiveLH(1.0, aspect, nearClip, farClip)
	return nil
}

func (g *TestGame) moveCamera(camera *components.Camera, deltaTime float32) {
	if g.Input.IsKeyDown(core.KEY_LEFT) || g.Input.IsKeyDown(core.KEY_A) {
		camera.Yaw(-turnSpeed * deltaTime)
	}
	if g.Input.IsKeyDown(core.KEY_RIGHT) || g.Input.IsKeyDown(core.KEY_D) {
		camera.Yaw(turnSpeed * deltaTime)
	}
	if g.Input.IsKeyDown(core.KEY_UP) {
		camera.Pitch(-turnSpeed * deltaTime)
	}
	if g.Input.IsKeyDown(core.KEY_DOWN) {
		camera.Pitch(turnSpeed * deltaTime)
	}
	if g.Input.IsKeyDown(core.KEY_W) {
		camera.MoveForward(moveSpeed * deltaTime)
	}
	if g.Input.IsKeyDown(core.KEY_S) {
		camera.MoveBackward(moveSpeed * deltaTime)
	}
	// Back to the starting view.
	if !g.Input.IsKeyDown(core.KEY_R) && g.Input.WasKeyDown(core.KEY_R) {
		camera.Reset()
	}
}

func (g *TestGame) Shutdown() error {
	state := g.State.(*gameState)
	for _, d := range state.drawables {
		d.Release(g.Graphics)
	}
	state.drawables = nil
	if state.registry != nil {
		state.registry.Release(g.Graphics)
	}
	return nil
}
