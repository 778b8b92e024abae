package loaders

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"

	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// ImageLoader decodes png, jpeg, bmp and tiff files into an RGBA8 surface.
type ImageLoader struct {
	// FlipY stores the rows bottom-up.
	FlipY bool
}

func (il *ImageLoader) Load(path string) (*metadata.Resource, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, format, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	surface := ToSurface(img, il.FlipY)
	if err := surface.Validate(); err != nil {
		return nil, fmt.Errorf("image %s (%s): %w", path, format, err)
	}
	return &metadata.Resource{
		Name:     filepath.Base(path),
		FullPath: path,
		DataSize: uint64(len(surface.Pixels) * 4),
		Data:     surface,
	}, nil
}

func (il *ImageLoader) Unload(r *metadata.Resource) error {
	r.Data = nil
	r.DataSize = 0
	return nil
}

// ToSurface converts any decoded image to non-premultiplied RGBA8.
func ToSurface(img image.Image, flipY bool) *metadata.Surface {
	bounds := img.Bounds()
	rgba := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, bounds.Min, draw.Src)

	width, height := uint32(bounds.Dx()), uint32(bounds.Dy())
	surface := metadata.NewSurface(width, height)
	for y := uint32(0); y < height; y++ {
		row := y
		if flipY {
			row = height - 1 - y
		}
		for x := uint32(0); x < width; x++ {
			i := rgba.PixOffset(int(x), int(y))
			surface.PutPixel(x, row, math.Colour{
				R: rgba.Pix[i],
				G: rgba.Pix[i+1],
				B: rgba.Pix[i+2],
				A: rgba.Pix[i+3],
			})
		}
	}
	return surface
}
