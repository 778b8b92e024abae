package drawable

import (
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

// Pyramid is a four sided cone with a colour gradient from base to tip.
type Pyramid struct {
	Drawable
	Orbit
}

func NewPyramid(gfx *renderer.Graphics, res *Resources, orbit Orbit) (*Pyramid, error) {
	p := &Pyramid{
		Drawable: newDrawable(ClassPyramid, res.Registry),
		Orbit:    orbit,
	}
	if err := p.attach(gfx, func() error { return buildPyramid(gfx, res) }); err != nil {
		return nil, err
	}
	if err := p.addTransform(gfx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func buildPyramid(gfx *renderer.Graphics, res *Resources) error {
	s := staticBuilder{gfx: gfx, res: res, class: ClassPyramid}

	mesh, err := geometry.Cone[colourVertex](4)
	if err != nil {
		return err
	}
	// ring vertices first, then the base centre, then the tip
	n := len(mesh.Vertices)
	for i := range mesh.Vertices {
		switch i {
		case n - 1:
			mesh.Vertices[i].Colour = math.NewVec4(1.0, 0.9, 0.2, 1.0)
		case n - 2:
			mesh.Vertices[i].Colour = math.NewVec4(0.1, 0.1, 0.6, 1.0)
		default:
			mesh.Vertices[i].Colour = math.NewVec4(0.3, 0.1, 0.9, 1.0)
		}
	}
	mesh.Transform(math.NewMat4Scale(math.NewVec3(1.0, 1.0, 0.7)))

	if err := s.add(bindable.NewVertexBuffer(gfx, mesh.Vertices)); err != nil {
		return err
	}
	if err := s.indices(mesh.Indices); err != nil {
		return err
	}
	if err := s.program(programColorBlend, colourLayout); err != nil {
		return err
	}
	return s.triangleList()
}
