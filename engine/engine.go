package engine

import (
	"errors"
	"fmt"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/spaghettifunk/orrery/engine/assets"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/platform"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

type Stage uint8

const (
	// Engine is in an uninitialized state
	EngineStageUninitialized Stage = iota
	// Engine is currently initializing
	EngineStageInitializing
	// Engine initialization is complete
	EngineStageInitialized
	// Engine is currently running
	EngineStageRunning
	// Engine released everything it owned
	EngineStageShutdown
)

// occludedSleepMS is how long the loop idles when the surface cannot be
// presented to.
const occludedSleepMS = 10.0

type Engine struct {
	currentStage Stage
	gameInstance *Game
	config       *core.Config

	bus          *core.EventBus
	input        *core.Input
	platform     *platform.Platform
	backend      renderer.RendererBackend
	assetManager *assets.AssetManager
	jobs         *core.JobSystem
	graphics     *renderer.Graphics

	clock   *core.Clock
	metrics *core.Metrics

	// Target back buffer size, updated by resize events.
	width  uint32
	height uint32

	quit atomic.Bool
}

// New creates an engine for g with the backend named in cfg.
func New(g *Game, cfg *core.Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	bus := core.NewEventBus()
	input := core.NewInput(bus)
	backend, p, err := newBackend(cfg, bus, input)
	if err != nil {
		return nil, err
	}
	e := newEngine(g, cfg, bus, input, backend)
	e.platform = p
	return e, nil
}

// NewWithBackend creates a windowless engine drawing through backend.
func NewWithBackend(g *Game, cfg *core.Config, backend renderer.RendererBackend) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if backend == nil {
		return nil, fmt.Errorf("nil renderer backend: %w", core.ErrPreconditionViolation)
	}
	bus := core.NewEventBus()
	return newEngine(g, cfg, bus, core.NewInput(bus), backend), nil
}

func newEngine(g *Game, cfg *core.Config, bus *core.EventBus, input *core.Input, backend renderer.RendererBackend) *Engine {
	g.Config = cfg
	g.Input = input
	return &Engine{
		currentStage: EngineStageUninitialized,
		gameInstance: g,
		config:       cfg,
		bus:          bus,
		input:        input,
		backend:      backend,
		clock:        core.NewClock(),
		metrics:      core.NewMetrics(),
		width:        cfg.Application.StartWidth,
		height:       cfg.Application.StartHeight,
	}
}

// Initialize brings up the window, the asset manager, the shader library and
// the graphics device, then initializes the game. On failure everything
// already created is released.
func (e *Engine) Initialize() error {
	if e.currentStage != EngineStageUninitialized {
		return fmt.Errorf("engine initialize: %w", core.ErrPreconditionViolation)
	}
	e.currentStage = EngineStageInitializing

	if err := e.initialize(); err != nil {
		if serr := e.release(); serr != nil {
			core.LogError("failed to release the engine after a failed initialization: %s", serr)
		}
		return err
	}

	e.currentStage = EngineStageInitialized
	return nil
}

func (e *Engine) initialize() error {
	app := e.config.Application

	e.bus.Register(core.EVENT_CODE_APPLICATION_QUIT, e, e.onEvent)
	e.bus.Register(core.EVENT_CODE_KEY_PRESSED, e, e.onKey)
	e.bus.Register(core.EVENT_CODE_KEY_RELEASED, e, e.onKey)
	e.bus.Register(core.EVENT_CODE_RESIZED, e, e.onResized)
	e.bus.Register(core.EVENT_CODE_ASSET_CHANGED, e, e.onAssetChanged)

	if e.platform != nil {
		if err := e.platform.Startup(app.Name, app.StartPosX, app.StartPosY, app.StartWidth, app.StartHeight); err != nil {
			return err
		}
		e.width, e.height = e.platform.FramebufferSize()
	}

	e.assetManager = assets.NewAssetManager(e.config.Assets.Directory, e.bus)
	if err := e.assetManager.Initialize(e.config.Assets.Watch); err != nil {
		return err
	}

	jobs, err := core.NewJobSystem(runtime.NumCPU(), 2*runtime.NumCPU())
	if err != nil {
		return err
	}
	e.jobs = jobs

	// Every program is compiled up front so a broken shader stops the start
	// instead of the first frame that uses it.
	library := shader.NewLibrary(e.assetManager)
	if programs := e.assetManager.ShaderPrograms(); len(programs) > 0 {
		if err := library.Preload(e.jobs, programs); err != nil {
			return fmt.Errorf("failed to compile shaders: %w", err)
		}
		core.LogInfo("compiled %d shader programs", library.Len())
	}

	gfx, err := renderer.NewGraphics(e.backend, app.Name, e.width, e.height)
	if err != nil {
		return err
	}
	e.graphics = gfx

	g := e.gameInstance
	g.Graphics = gfx
	g.Assets = e.assetManager
	g.Shaders = library

	if g.FnInitialize != nil {
		if err := g.FnInitialize(); err != nil {
			return fmt.Errorf("game initialize failed: %w", err)
		}
	}
	if g.FnOnResize != nil {
		if err := g.FnOnResize(e.width, e.height); err != nil {
			return err
		}
	}
	return nil
}

// Run drives the frame loop until quit, a fatal error or the configured
// frame limit. Everything the engine owns is released before it returns.
func (e *Engine) Run() (err error) {
	if e.currentStage != EngineStageInitialized {
		return fmt.Errorf("engine run: %w", core.ErrNotInitialized)
	}
	e.currentStage = EngineStageRunning

	defer func() {
		if serr := e.release(); serr != nil && err == nil {
			err = serr
		}
	}()

	var targetFrameSeconds float64
	if e.config.Renderer.TargetFPS > 0 {
		targetFrameSeconds = 1.0 / e.config.Renderer.TargetFPS
	}
	clearColour := e.config.Renderer.ClearColour
	maxFrames := e.config.Renderer.MaxFrames
	var sinceReport float32

	e.clock.Start()
	for !e.quit.Load() {
		if e.platform != nil && !e.platform.PumpMessages() {
			break
		}

		dt := e.clock.Mark()
		sinceReport += dt

		ok, ferr := e.graphics.BeginFrame(e.width, e.height)
		if err := e.check(ferr); err != nil {
			return err
		}
		if !ok {
			e.metrics.Skip()
			e.sleep(occludedSleepMS)
			continue
		}

		if err := e.check(e.graphics.ClearBuffer(clearColour[0], clearColour[1], clearColour[2])); err != nil {
			return err
		}
		if e.gameInstance.FnUpdate != nil {
			if err := e.gameInstance.FnUpdate(dt); err != nil {
				core.LogError("game update failed, shutting down: %s", err)
				return err
			}
		}
		if e.gameInstance.FnRender != nil {
			if err := e.check(e.gameInstance.FnRender(e.graphics)); err != nil {
				return err
			}
		}
		if err := e.check(e.graphics.EndFrame()); err != nil {
			return err
		}

		// Input state copying happens after everything that reads this
		// frame's input.
		e.input.Update()

		frameSeconds := float64(e.clock.Peek())
		e.metrics.Update(frameSeconds)
		if sinceReport >= 1 {
			fps, avg := e.metrics.Frame()
			core.LogDebug("fps %.0f, frame %.3fms, skipped %d", fps, avg, e.metrics.SkippedFrames)
			sinceReport = 0
		}

		if maxFrames > 0 && e.metrics.TotalFrames >= maxFrames {
			core.LogInfo("presented %d frames, stopping", e.metrics.TotalFrames)
			break
		}

		if remaining := targetFrameSeconds - frameSeconds; remaining > 0 {
			e.sleep(remaining * 1000)
		}
	}
	return nil
}

// Shutdown asks the loop to stop. It only sets a flag, so it is safe from any
// goroutine and any number of times. The loop releases resources on its way
// out.
func (e *Engine) Shutdown() {
	if !e.quit.Swap(true) {
		core.LogInfo("engine shutdown requested")
	}
}

// Metrics returns the frame counters.
func (e *Engine) Metrics() *core.Metrics {
	return e.metrics
}

// GetFramebufferSize returns the width and height (in this order) of the
// target back buffer.
func (e *Engine) GetFramebufferSize() (uint32, uint32) {
	return e.width, e.height
}

// check logs err and returns it when it must stop the loop.
func (e *Engine) check(err error) error {
	if err == nil {
		return nil
	}
	if !renderer.IsFatal(err) {
		core.LogWarn("%s", err)
		return nil
	}
	if renderer.IsDeviceRemoved(err) {
		core.LogError("graphics device removed: %s", err)
	} else {
		core.LogError("%s", err)
	}
	return err
}

func (e *Engine) sleep(ms float64) {
	if e.platform != nil {
		e.platform.Sleep(ms)
		return
	}
	time.Sleep(time.Duration(ms * float64(time.Millisecond)))
}

// release tears down in reverse creation order. It runs once.
func (e *Engine) release() error {
	if e.currentStage == EngineStageShutdown {
		return nil
	}
	e.currentStage = EngineStageShutdown
	e.quit.Store(true)

	var errs []error
	if e.gameInstance.FnShutdown != nil && e.graphics != nil {
		if err := e.gameInstance.FnShutdown(); err != nil {
			errs = append(errs, fmt.Errorf("game shutdown failed: %w", err))
		}
	}
	if e.graphics != nil {
		if err := e.graphics.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	if e.jobs != nil {
		if err := e.jobs.Shutdown(); err != nil && !errors.Is(err, core.ErrAlreadyShutdown) {
			errs = append(errs, err)
		}
	}
	if e.assetManager != nil {
		if err := e.assetManager.Shutdown(); err != nil && !errors.Is(err, core.ErrAlreadyShutdown) {
			errs = append(errs, err)
		}
	}
	e.bus.Shutdown()
	if e.platform != nil {
		if err := e.platform.Shutdown(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (e *Engine) onEvent(context core.EventContext) bool {
	switch context.Type {
	case core.EVENT_CODE_APPLICATION_QUIT:
		core.LogInfo("EVENT_CODE_APPLICATION_QUIT received, shutting down.")
		e.Shutdown()
		return true
	}
	return false
}

func (e *Engine) onKey(context core.EventContext) bool {
	ke, ok := context.Data.(*core.KeyEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	if context.Type == core.EVENT_CODE_KEY_PRESSED && ke.KeyCode == core.KEY_ESCAPE {
		// NOTE: Technically firing an event to itself, but there may be other listeners.
		e.bus.Fire(core.EventContext{Type: core.EVENT_CODE_APPLICATION_QUIT})
		// Block anything else from processing this.
		return true
	}
	return false
}

func (e *Engine) onResized(context core.EventContext) bool {
	se, ok := context.Data.(*core.SystemEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}

	width, height := se.WindowWidth, se.WindowHeight
	if width == e.width && height == e.height {
		return false
	}
	core.LogDebug("Window resize: %d, %d", width, height)
	// A minimized window reports zero; the target size is kept so the back
	// buffer is not resized to nothing.
	if width == 0 || height == 0 {
		core.LogInfo("Window minimized, frames are skipped until it is restored.")
		return false
	}
	e.width, e.height = width, height
	if e.gameInstance.FnOnResize != nil {
		if err := e.gameInstance.FnOnResize(width, height); err != nil {
			core.LogError("game resize failed: %s", err)
		}
	}
	return false
}

func (e *Engine) onAssetChanged(context core.EventContext) bool {
	ae, ok := context.Data.(*core.AssetEvent)
	if !ok {
		core.LogError("wrong event associated with the event type `%d`", context.Type)
		return false
	}
	if ae.Removed {
		core.LogWarn("asset %s was removed", ae.Path)
	} else {
		core.LogDebug("asset %s changed", ae.Path)
	}
	return false
}
