package assets

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testShader = `@vertex
fn main(@location(0) pos: vec3<f32>) -> @builtin(position) vec4<f32> {
	return vec4<f32>(pos, 1.0);
}
`

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func writePNG(t *testing.T, path string) {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.Set(0, 0, color.NRGBA{R: 255, A: 255})
	img.Set(1, 0, color.NRGBA{B: 255, A: 128})

	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func newTestManager(t *testing.T, watch bool, bus *core.EventBus) (*AssetManager, string) {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "shaders", "plain.vert.wgsl"), []byte(testShader))
	writeFile(t, filepath.Join(root, "notes.txt"), []byte("ignored"))
	writePNG(t, filepath.Join(root, "images", "dots.png"))

	am := NewAssetManager(root, bus)
	require.NoError(t, am.Initialize(watch))
	t.Cleanup(func() { _ = am.Shutdown() })
	return am, root
}

func TestIndexesKnownAssetTypes(t *testing.T) {
	am, _ := newTestManager(t, false, nil)

	assert.Equal(t, 2, am.Count())
	info, ok := am.Lookup("shaders/plain.vert.wgsl")
	require.True(t, ok)
	assert.Equal(t, metadata.ResourceTypeShader, info.Type)
	info, ok = am.Lookup("images/dots.png")
	require.True(t, ok)
	assert.Equal(t, metadata.ResourceTypeImage, info.Type)
	_, ok = am.Lookup("notes.txt")
	assert.False(t, ok)
}

func TestNamesAndShaderPrograms(t *testing.T) {
	am, root := newTestManager(t, false, nil)
	writeFile(t, filepath.Join(root, "shaders", "plain.frag.wgsl"), []byte(testShader))
	writeFile(t, filepath.Join(root, "shaders", "texture.frag.wgsl"), []byte(testShader))
	writeFile(t, filepath.Join(root, "shaders", "old", "legacy.vert.wgsl"), []byte(testShader))
	require.NoError(t, am.watchRecursive(root))

	assert.Equal(t, []string{"images/dots.png"}, am.Names(metadata.ResourceTypeImage))
	assert.Equal(t, []string{
		"shaders/old/legacy.vert.wgsl",
		"shaders/plain.frag.wgsl",
		"shaders/plain.vert.wgsl",
		"shaders/texture.frag.wgsl",
	}, am.Names(metadata.ResourceTypeShader))
	assert.Equal(t, []string{"plain", "texture"}, am.ShaderPrograms())
}

func TestShaderSource(t *testing.T) {
	am, _ := newTestManager(t, false, nil)

	src, err := am.ShaderSource("plain.vert.wgsl")
	require.NoError(t, err)
	assert.Equal(t, testShader, src)

	_, err = am.ShaderSource("missing.frag.wgsl")
	assert.Error(t, err)
}

func TestImageDecodesToSurface(t *testing.T) {
	am, _ := newTestManager(t, false, nil)

	surface, err := am.Image("images/dots.png")
	require.NoError(t, err)
	require.Equal(t, uint32(2), surface.Width)
	require.Equal(t, uint32(1), surface.Height)
	assert.Equal(t, uint8(255), surface.GetPixel(0, 0).R)
	assert.Equal(t, uint8(255), surface.GetPixel(1, 0).B)
	assert.Equal(t, uint8(128), surface.GetPixel(1, 0).A)
}

func TestLoadAssetRejectsWrongType(t *testing.T) {
	am, _ := newTestManager(t, false, nil)

	_, err := am.LoadAsset("images/dots.png", metadata.ResourceTypeShader)
	assert.Error(t, err)
}

func TestInitializeMissingDirectory(t *testing.T) {
	am := NewAssetManager(filepath.Join(t.TempDir(), "nope"), nil)
	assert.Error(t, am.Initialize(false))
}

func TestShutdownTwice(t *testing.T) {
	am := NewAssetManager(t.TempDir(), nil)
	require.NoError(t, am.Initialize(true))
	require.NoError(t, am.Shutdown())
	assert.ErrorIs(t, am.Shutdown(), core.ErrAlreadyShutdown)
}

func TestWatchIndexesNewFilesAndFiresEvents(t *testing.T) {
	bus := core.NewEventBus()
	var changed atomic.Int32
	listener := &struct{}{}
	bus.Register(core.EVENT_CODE_ASSET_CHANGED, listener, func(ctx core.EventContext) bool {
		if ev, ok := ctx.Data.(*core.AssetEvent); ok && ev.Path == "shaders/late.frag.wgsl" && !ev.Removed {
			changed.Add(1)
		}
		return true
	})

	am, root := newTestManager(t, true, bus)
	writeFile(t, filepath.Join(root, "shaders", "late.frag.wgsl"), []byte(testShader))

	assert.Eventually(t, func() bool {
		_, ok := am.Lookup("shaders/late.frag.wgsl")
		return ok && changed.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	require.NoError(t, os.Remove(filepath.Join(root, "shaders", "late.frag.wgsl")))
	assert.Eventually(t, func() bool {
		_, ok := am.Lookup("shaders/late.frag.wgsl")
		return !ok
	}, 2*time.Second, 10*time.Millisecond)
}
