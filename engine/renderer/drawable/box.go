package drawable

import (
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

// Box is a cube with one solid colour per face.
type Box struct {
	Drawable
	Orbit
}

func NewBox(gfx *renderer.Graphics, res *Resources, orbit Orbit) (*Box, error) {
	b := &Box{
		Drawable: newDrawable(ClassBox, res.Registry),
		Orbit:    orbit,
	}
	if err := b.attach(gfx, func() error { return buildBox(gfx, res) }); err != nil {
		return nil, err
	}
	if err := b.addTransform(gfx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func buildBox(gfx *renderer.Graphics, res *Resources) error {
	s := staticBuilder{gfx: gfx, res: res, class: ClassBox}

	mesh := geometry.CubeIndependentFaces[faceVertex]()
	for i := range mesh.Vertices {
		mesh.Vertices[i].Face = float32(i / 4)
	}

	if err := s.add(bindable.NewVertexBuffer(gfx, mesh.Vertices)); err != nil {
		return err
	}
	if err := s.indices(mesh.Indices); err != nil {
		return err
	}
	if err := s.program(programSolidFace, faceLayout); err != nil {
		return err
	}
	if err := s.add(bindable.NewPixelConstantBuffer(gfx, 0, defaultFaceColours)); err != nil {
		return err
	}
	return s.triangleList()
}
