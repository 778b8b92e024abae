package drawable

import (
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/bindable"
	"github.com/spaghettifunk/orrery/engine/renderer/geometry"
)

// SkinnedBox is a cube wrapped in one texture.
type SkinnedBox struct {
	Drawable
	Orbit
}

func NewSkinnedBox(gfx *renderer.Graphics, res *Resources, orbit Orbit) (*SkinnedBox, error) {
	b := &SkinnedBox{
		Drawable: newDrawable(ClassSkinnedBox, res.Registry),
		Orbit:    orbit,
	}
	if err := b.attach(gfx, func() error { return buildSkinnedBox(gfx, res) }); err != nil {
		return nil, err
	}
	if err := b.addTransform(gfx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func buildSkinnedBox(gfx *renderer.Graphics, res *Resources) error {
	s := staticBuilder{gfx: gfx, res: res, class: ClassSkinnedBox}

	mesh := geometry.SkinnedCube[texturedVertex]()

	if err := s.add(bindable.NewVertexBuffer(gfx, mesh.Vertices)); err != nil {
		return err
	}
	if err := s.indices(mesh.Indices); err != nil {
		return err
	}
	if err := s.texture(res.CubeTexture); err != nil {
		return err
	}
	if err := s.program(programTexture, texturedLayout); err != nil {
		return err
	}
	return s.triangleList()
}
