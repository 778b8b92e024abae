package drawable

import (
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

// Melon is a sphere with a tessellation of its own. Its vertex and index
// buffers are instance binds; only the shader state is shared.
type Melon struct {
	Drawable
	Orbit

	latDiv, longDiv int
}

func NewMelon(gfx *renderer.Graphics, res *Resources, orbit Orbit, latDiv, longDiv int) (*Melon, error) {
	m := &Melon{
		Drawable: newDrawable(ClassMelon, res.Registry),
		Orbit:    orbit,
		latDiv:   latDiv,
		longDiv:  longDiv,
	}

	mesh, err := geometry.Sphere[faceVertex](latDiv, longDiv)
	if err != nil {
		return nil, err
	}
	// stripes along the longitude
	for i := range mesh.Vertices {
		mesh.Vertices[i].Face = float32(i % len(defaultFaceColours.Colours))
	}

	vb, err := bindable.NewVertexBuffer(gfx, mesh.Vertices)
	if err != nil {
		return nil, err
	}
	if err := m.AddInstanceBind(vb); err != nil {
		return nil, err
	}
	ib, err := bindable.NewIndexBuffer(gfx, mesh.Indices)
	if err != nil {
		m.Release(gfx)
		return nil, err
	}
	if err := m.AddInstanceIndexBuffer(ib); err != nil {
		return nil, err
	}

	if err := m.attach(gfx, func() error { return buildMelon(gfx, res) }); err != nil {
		m.Release(gfx)
		return nil, err
	}
	if err := m.addTransform(gfx, m); err != nil {
		m.Release(gfx)
		return nil, err
	}
	return m, nil
}

// Tessellation returns the latitude and longitude divisions.
func (m *Melon) Tessellation() (int, int) {
	return m.latDiv, m.longDiv
}

func buildMelon(gfx *renderer.Graphics, res *Resources) error {
	s := staticBuilder{gfx: gfx, res: res, class: ClassMelon}

	if err := s.program(programSolidFace, faceLayout); err != nil {
		return err
	}
	if err := s.add(bindable.NewPixelConstantBuffer(gfx, 0, defaultFaceColours)); err != nil {
		return err
	}
	return s.triangleList()
}
