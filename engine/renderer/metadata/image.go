package metadata

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/math"
)

/**
 * @brief A decoded image: tightly packed RGBA8 pixels, row by row from the
 * top-left corner.
 */
type Surface struct {
	Width  uint32
	Height uint32
	Pixels []math.Colour
}

// NewSurface allocates a width x height surface cleared to transparent black.
func NewSurface(width, height uint32) *Surface {
	return &Surface{
		Width:  width,
		Height: height,
		Pixels: make([]math.Colour, int(width)*int(height)),
	}
}

// NewCheckerSurface builds a checkerboard of cell-sized squares. It stands in
// for textures that are not available on disk.
func NewCheckerSurface(width, height, cell uint32, a, b math.Colour) *Surface {
	if cell == 0 {
		cell = 1
	}
	s := NewSurface(width, height)
	for y := uint32(0); y < height; y++ {
		for x := uint32(0); x < width; x++ {
			c := a
			if (x/cell+y/cell)%2 == 1 {
				c = b
			}
			s.PutPixel(x, y, c)
		}
	}
	return s
}

func (s *Surface) PutPixel(x, y uint32, c math.Colour) {
	s.Pixels[y*s.Width+x] = c
}

func (s *Surface) GetPixel(x, y uint32) math.Colour {
	return s.Pixels[y*s.Width+x]
}

// Bytes returns the pixels as RGBA8 bytes.
func (s *Surface) Bytes() []byte {
	out := make([]byte, 0, len(s.Pixels)*4)
	for _, p := range s.Pixels {
		out = append(out, p.R, p.G, p.B, p.A)
	}
	return out
}

// Validate checks the pixel count against the dimensions.
func (s *Surface) Validate() error {
	if s.Width == 0 || s.Height == 0 {
		return fmt.Errorf("surface has zero size %dx%d", s.Width, s.Height)
	}
	if len(s.Pixels) != int(s.Width)*int(s.Height) {
		return fmt.Errorf("surface %dx%d holds %d pixels", s.Width, s.Height, len(s.Pixels))
	}
	return nil
}
