package drawable

import (
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

const cylinderDivisions = 24

type Cylinder struct {
	Drawable
	Orbit
}

func NewCylinder(gfx *renderer.Graphics, res *Resources, orbit Orbit) (*Cylinder, error) {
	c := &Cylinder{
		Drawable: newDrawable(ClassCylinder, res.Registry),
		Orbit:    orbit,
	}
	if err := c.attach(gfx, func() error { return buildCylinder(gfx, res) }); err != nil {
		return nil, err
	}
	if err := c.addTransform(gfx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func buildCylinder(gfx *renderer.Graphics, res *Resources) error {
	s := staticBuilder{gfx: gfx, res: res, class: ClassCylinder}

	mesh, err := geometry.Prism[colourVertex](cylinderDivisions)
	if err != nil {
		return err
	}
	// near end is green, far end is blue
	for i, v := range mesh.Vertices {
		if v.Pos.Z < 0 {
			mesh.Vertices[i].Colour = math.NewVec4(0.2, 0.8, 0.3, 1.0)
		} else {
			mesh.Vertices[i].Colour = math.NewVec4(0.1, 0.3, 0.9, 1.0)
		}
	}

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
