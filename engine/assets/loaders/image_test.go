package loaders

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToSurfaceConvertsPaletted(t *testing.T) {
	palette := color.Palette{color.NRGBA{A: 255}, color.NRGBA{G: 200, A: 255}}
	img := image.NewPaletted(image.Rect(0, 0, 1, 2), palette)
	img.SetColorIndex(0, 1, 1)

	s := ToSurface(img, false)
	require.NoError(t, s.Validate())
	assert.Equal(t, uint8(0), s.GetPixel(0, 0).G)
	assert.Equal(t, uint8(200), s.GetPixel(0, 1).G)
}

func TestToSurfaceFlipY(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 2))
	img.Set(0, 0, color.NRGBA{R: 10, A: 255})
	img.Set(0, 1, color.NRGBA{R: 20, A: 255})

	s := ToSurface(img, true)
	assert.Equal(t, uint8(20), s.GetPixel(0, 0).R)
	assert.Equal(t, uint8(10), s.GetPixel(0, 1).R)
}

func TestToSurfaceHonoursBoundsOrigin(t *testing.T) {
	img := image.NewNRGBA(image.Rect(5, 5, 7, 6))
	img.Set(6, 5, color.NRGBA{B: 99, A: 255})

	s := ToSurface(img, false)
	require.Equal(t, uint32(2), s.Width)
	assert.Equal(t, uint8(99), s.GetPixel(1, 0).B)
}
