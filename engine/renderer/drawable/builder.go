package drawable

import (
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

var (
	missingTextureA = math.Colour{R: 255, G: 0, B: 255, A: 255}
	missingTextureB = math.Colour{R: 0, G: 0, B: 0, A: 255}
)

const (
	programSolidFace  = "solid_face"
	programColorBlend = "color_blend"
	programTexture    = "texture"
)

// ProgramLibrary hands out compiled shader programs by name.
type ProgramLibrary interface {
	Program(name string, stage metadata.Stage) (*shader.Program, error)
}

// ImageSource hands out decoded images by name.
type ImageSource interface {
	Image(name string) (*metadata.Surface, error)
}

// Resources is what drawables are built from.
type Resources struct {
	Registry *Registry
	Programs ProgramLibrary
	Images   ImageSource

	SheetTexture string
	CubeTexture  string
}

// staticBuilder adds the static set of one class to the registry.
type staticBuilder struct {
	gfx   *renderer.Graphics
	res   *Resources
	class GeometryClass
}

func (s staticBuilder) add(b bindable.Bindable, err error) error {
	if err != nil {
		return err
	}
	return s.share(b)
}

// share hands b to the registry. A rejected bindable is released here since
// nothing else owns it.
func (s staticBuilder) share(b bindable.Bindable) error {
	if err := s.res.Registry.AddSharedResource(s.class, b); err != nil {
		b.Release(s.gfx)
		return err
	}
	return nil
}

func (s staticBuilder) indices(indices []uint16) error {
	ib, err := bindable.NewIndexBuffer(s.gfx, indices)
	if err != nil {
		return err
	}
	if err := s.res.Registry.AddSharedIndexBuffer(s.class, ib); err != nil {
		ib.Release(s.gfx)
		return err
	}
	return nil
}

// program adds the shader pair of name and the input layout checked against
// its vertex program.
func (s staticBuilder) program(name string, layout []metadata.VertexElement) error {
	vs, err := newVertexShader(s.gfx, s.res.Programs, name)
	if err != nil {
		return err
	}
	if err := s.share(vs); err != nil {
		return err
	}

	psProgram, err := s.res.Programs.Program(name, metadata.StagePixel)
	if err != nil {
		return err
	}
	if err := s.add(bindable.NewPixelShader(s.gfx, psProgram)); err != nil {
		return err
	}

	return s.add(bindable.NewInputLayout(s.gfx, layout, vs))
}

// texture adds the named texture and a wrapping linear sampler. A missing
// image is replaced with a checkerboard.
func (s staticBuilder) texture(name string) error {
	surface, err := s.res.Images.Image(name)
	if err != nil {
		core.LogWarn("texture %s for %s unavailable, using a checkerboard: %s", name, s.class, err.Error())
		surface = metadata.NewCheckerSurface(64, 64, 8, missingTextureA, missingTextureB)
	}
	if err := s.add(bindable.NewTexture(s.gfx, surface, 0)); err != nil {
		return err
	}
	return s.add(bindable.NewSampler(s.gfx, metadata.SamplerDesc{
		Filter:      metadata.FilterLinear,
		AddressMode: metadata.AddressModeWrap,
	}, 0))
}

func (s staticBuilder) triangleList() error {
	return s.share(bindable.NewTopology(metadata.TopologyTriangleList))
}

func newVertexShader(gfx *renderer.Graphics, programs ProgramLibrary, name string) (*bindable.VertexShader, error) {
	p, err := programs.Program(name, metadata.StageVertex)
	if err != nil {
		return nil, err
	}
	return bindable.NewVertexShader(gfx, p)
}
