package drawable

import (
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

// Sheet is a textured unit plane.
type Sheet struct {
	Drawable
	Orbit
}

func NewSheet(gfx *renderer.Graphics, res *Resources, orbit Orbit) (*Sheet, error) {
	s := &Sheet{
		Drawable: newDrawable(ClassSheet, res.Registry),
		Orbit:    orbit,
	}
	if err := s.attach(gfx, func() error { return buildSheet(gfx, res) }); err != nil {
		return nil, err
	}
	if err := s.addTransform(gfx, s); err != nil {
		return nil, err
	}
	return s, nil
}

func buildSheet(gfx *renderer.Graphics, res *Resources) error {
	s := staticBuilder{gfx: gfx, res: res, class: ClassSheet}

	mesh, err := geometry.TexturedPlane[texturedVertex](1, 1)
	if err != nil {
		return err
	}
	mesh.Transform(math.NewMat4Scale(math.NewVec3(2.0, 2.0, 1.0)))

	if err := s.add(bindable.NewVertexBuffer(gfx, mesh.Vertices)); err != nil {
		return err
	}
	if err := s.indices(mesh.Indices); err != nil {
		return err
	}
	if err := s.texture(res.SheetTexture); err != nil {
		return err
	}
	if err := s.program(programTexture, texturedLayout); err != nil {
		return err
	}
	return s.triangleList()
}
