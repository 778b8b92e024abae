package bindable

import (
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

type Topology struct {
	topology metadata.Topology
}

func NewTopology(t metadata.Topology) *Topology {
	return &Topology{topology: t}
}

func (t *Topology) Kind() ResourceKind { return KindTopology }

func (t *Topology) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetTopology", func() {
		gfx.Context().SetTopology(t.topology)
	})
}

func (t *Topology) Release(*renderer.Graphics) {}

type Sampler struct {
	handle metadata.Handle
	slot   uint32
}

func NewSampler(gfx *renderer.Graphics, desc metadata.SamplerDesc, slot uint32) (*Sampler, error) {
	h, err := gfx.CreateSampler(desc)
	if err != nil {
		return nil, err
	}
	return &Sampler{handle: h, slot: slot}, nil
}

func (s *Sampler) Kind() ResourceKind { return KindSampler }

func (s *Sampler) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetSampler", func() {
		gfx.Context().SetSampler(s.slot, s.handle)
	})
}

func (s *Sampler) Release(gfx *renderer.Graphics) {
	gfx.Release(s.handle)
}

type Texture struct {
	handle        metadata.Handle
	slot          uint32
	width, height uint32
}

// NewTexture uploads a decoded image to the pixel stage texture slot.
func NewTexture(gfx *renderer.Graphics, surface *metadata.Surface, slot uint32) (*Texture, error) {
	h, err := gfx.CreateTexture(surface)
	if err != nil {
		return nil, err
	}
	return &Texture{handle: h, slot: slot, width: surface.Width, height: surface.Height}, nil
}

func (t *Texture) Kind() ResourceKind { return KindTexture }

func (t *Texture) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetTexture", func() {
		gfx.Context().SetTexture(t.slot, t.handle)
	})
}

func (t *Texture) Release(gfx *renderer.Graphics) {
	gfx.Release(t.handle)
}

func (t *Texture) Size() (uint32, uint32) { return t.width, t.height }
