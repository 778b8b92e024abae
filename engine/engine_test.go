package engine

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/headless"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

type testGame struct {
	updates  int
	renders  int
	resizes  [][2]uint32
	shutdown int

	onUpdate func(frame int) error
	onRender func(gfx *renderer.Graphics) error
}

func (tg *testGame) game() *Game {
	return &Game{
		State:        tg,
		FnInitialize: func() error { return nil },
		FnUpdate: func(dt float32) error {
			tg.updates++
			if tg.onUpdate != nil {
				return tg.onUpdate(tg.updates)
			}
			return nil
		},
		FnRender: func(gfx *renderer.Graphics) error {
			tg.renders++
			if tg.onRender != nil {
				return tg.onRender(gfx)
			}
			return nil
		},
		FnOnResize: func(width, height uint32) error {
			tg.resizes = append(tg.resizes, [2]uint32{width, height})
			return nil
		},
		FnShutdown: func() error {
			tg.shutdown++
			return nil
		},
	}
}

func testConfig(t *testing.T, maxFrames uint64) *core.Config {
	t.Helper()
	cfg := core.DefaultConfig()
	cfg.Renderer.Backend = core.BackendHeadless
	cfg.Renderer.MaxFrames = maxFrames
	cfg.Renderer.TargetFPS = 0
	cfg.Assets.Directory = t.TempDir()
	cfg.Assets.Watch = false
	return cfg
}

func writeShader(t *testing.T, root, name, source string) {
	t.Helper()
	dir := filepath.Join(root, "shaders")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(source), 0o644))
}

func newTestEngine(t *testing.T, tg *testGame, maxFrames uint64) (*Engine, *headless.Backend) {
	t.Helper()
	backend := headless.New(64)
	e, err := NewWithBackend(tg.game(), testConfig(t, maxFrames), backend)
	require.NoError(t, err)
	require.NoError(t, e.Initialize())
	return e, backend
}

func TestInitializeFillsGame(t *testing.T) {
	tg := &testGame{}
	e, backend := newTestEngine(t, tg, 1)

	g := e.gameInstance
	assert.NotNil(t, g.Config)
	assert.NotNil(t, g.Graphics)
	assert.NotNil(t, g.Assets)
	assert.NotNil(t, g.Shaders)
	assert.True(t, backend.Initialized())
	assert.Equal(t, [][2]uint32{{800, 600}}, tg.resizes)
}

func TestRunStopsAtMaxFrames(t *testing.T) {
	tg := &testGame{}
	e, backend := newTestEngine(t, tg, 3)

	require.NoError(t, e.Run())

	assert.Equal(t, 3, tg.updates)
	assert.Equal(t, 3, tg.renders)
	assert.Equal(t, 3, backend.CallCount(headless.OpClearBuffer))
	assert.Equal(t, uint64(3), backend.Frames())
	assert.Equal(t, uint64(3), e.Metrics().TotalFrames)
	assert.Equal(t, [4]float32{0.07, 0.0, 0.12, 1.0}, backend.ClearColour())

	// Everything is released on the way out.
	assert.Equal(t, 1, tg.shutdown)
	assert.False(t, backend.Initialized())
}

func TestOccludedFramesSkipTheBody(t *testing.T) {
	tg := &testGame{}
	e, backend := newTestEngine(t, tg, 0)
	backend.SetOccluded(true)

	go func() {
		time.Sleep(50 * time.Millisecond)
		e.Shutdown()
	}()
	require.NoError(t, e.Run())

	assert.Zero(t, tg.updates)
	assert.Zero(t, tg.renders)
	assert.Zero(t, backend.CallCount(headless.OpClearBuffer))
	assert.Zero(t, backend.CallCount(headless.OpPresent))
	assert.Positive(t, e.Metrics().SkippedFrames)
}

func TestEscapeQuits(t *testing.T) {
	tg := &testGame{}
	e, _ := newTestEngine(t, tg, 0)
	tg.onUpdate = func(frame int) error {
		e.bus.Fire(core.EventContext{
			Type: core.EVENT_CODE_KEY_PRESSED,
			Data: &core.KeyEvent{KeyCode: core.KEY_ESCAPE},
		})
		return nil
	}

	require.NoError(t, e.Run())
	assert.Equal(t, 1, tg.updates)
}

func TestResizeEventResizesOnNextFrame(t *testing.T) {
	tg := &testGame{}
	e, backend := newTestEngine(t, tg, 3)
	tg.onUpdate = func(frame int) error {
		if frame == 1 {
			e.bus.Fire(core.EventContext{
				Type: core.EVENT_CODE_RESIZED,
				Data: &core.SystemEvent{WindowWidth: 640, WindowHeight: 480},
			})
		}
		return nil
	}

	require.NoError(t, e.Run())

	assert.Equal(t, 1, backend.CallCount(headless.OpResize))
	assert.Equal(t, [][2]uint32{{800, 600}, {640, 480}}, tg.resizes)
	w, h := e.GetFramebufferSize()
	assert.Equal(t, uint32(640), w)
	assert.Equal(t, uint32(480), h)
}

func TestMinimizedWindowKeepsTargetSize(t *testing.T) {
	tg := &testGame{}
	e, backend := newTestEngine(t, tg, 2)
	tg.onUpdate = func(frame int) error {
		e.bus.Fire(core.EventContext{
			Type: core.EVENT_CODE_RESIZED,
			Data: &core.SystemEvent{},
		})
		return nil
	}

	require.NoError(t, e.Run())
	assert.Zero(t, backend.CallCount(headless.OpResize))
}

func TestRenderWarningsDoNotStopTheLoop(t *testing.T) {
	tg := &testGame{
		onRender: func(gfx *renderer.Graphics) error {
			return &renderer.DiagnosticOnlyWarning{Op: "DrawIndexed", Messages: []string{"slot 3 is not supported"}}
		},
	}
	e, backend := newTestEngine(t, tg, 2)

	require.NoError(t, e.Run())
	assert.Equal(t, uint64(2), backend.Frames())
}

func TestFatalRenderErrorStopsTheLoop(t *testing.T) {
	boom := errors.New("boom")
	tg := &testGame{
		onRender: func(gfx *renderer.Graphics) error { return boom },
	}
	e, backend := newTestEngine(t, tg, 5)

	err := e.Run()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, 1, tg.renders)
	assert.Zero(t, backend.CallCount(headless.OpPresent))
	assert.False(t, backend.Initialized())
}

func TestDeviceRemovalStopsTheLoop(t *testing.T) {
	tg := &testGame{}
	e, backend := newTestEngine(t, tg, 5)
	tg.onUpdate = func(frame int) error {
		backend.RemoveDevice(metadata.ResultDeviceHung)
		return nil
	}

	err := e.Run()
	require.Error(t, err)
	assert.True(t, renderer.IsDeviceRemoved(err))

	var dre *renderer.DeviceRemovedError
	require.ErrorAs(t, err, &dre)
	assert.Equal(t, metadata.ResultDeviceHung, dre.Reason)
	assert.Equal(t, 1, tg.updates)
}

func TestShutdownIsIdempotent(t *testing.T) {
	tg := &testGame{}
	e, _ := newTestEngine(t, tg, 0)

	e.Shutdown()
	e.Shutdown()
	require.NoError(t, e.Run())
	assert.Zero(t, tg.updates)
	assert.Equal(t, 1, tg.shutdown)
}

func TestRunBeforeInitialize(t *testing.T) {
	tg := &testGame{}
	e, err := NewWithBackend(tg.game(), testConfig(t, 1), headless.New(8))
	require.NoError(t, err)

	assert.ErrorIs(t, e.Run(), core.ErrNotInitialized)
}

func TestNewRejectsUnknownBackend(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Renderer.Backend = "d3d9"

	_, err := New((&testGame{}).game(), cfg)
	assert.ErrorIs(t, err, core.ErrInvalidConfig)
}

func TestInitializeFailsOnMissingAssetDirectory(t *testing.T) {
	cfg := testConfig(t, 1)
	cfg.Assets.Directory = cfg.Assets.Directory + "/missing"
	backend := headless.New(8)

	e, err := NewWithBackend((&testGame{}).game(), cfg, backend)
	require.NoError(t, err)
	require.Error(t, e.Initialize())
	assert.False(t, backend.Initialized())
}

func TestInitializeRejectsBrokenShaders(t *testing.T) {
	cfg := testConfig(t, 1)
	writeShader(t, cfg.Assets.Directory, "broken.vert.wgsl", "fn nothing() {}")
	backend := headless.New(8)

	e, err := NewWithBackend((&testGame{}).game(), cfg, backend)
	require.NoError(t, err)
	err = e.Initialize()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to compile shaders")
	assert.False(t, backend.Initialized())
}
