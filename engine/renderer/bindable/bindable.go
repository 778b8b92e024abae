// Package bindable holds the pipeline resources a drawable is assembled
// from. Each resource is created on the device by its constructor and
// attaches itself to exactly one pipeline slot when bound.
package bindable

import (
	"fmt"

	"github.com/spaghettifunk/orrery/engine/renderer"
)

type ResourceKind uint8

const (
	KindVertexBuffer ResourceKind = iota
	KindIndexBuffer
	KindVertexShader
	KindPixelShader
	KindInputLayout
	KindTopology
	KindSampler
	KindTexture
	KindVertexConstantBuffer
	KindPixelConstantBuffer
	KindTransform
)

func (k ResourceKind) String() string {
	switch k {
	case KindVertexBuffer:
		return "vertex-buffer"
	case KindIndexBuffer:
		return "index-buffer"
	case KindVertexShader:
		return "vertex-shader"
	case KindPixelShader:
		return "pixel-shader"
	case KindInputLayout:
		return "input-layout"
	case KindTopology:
		return "topology"
	case KindSampler:
		return "sampler"
	case KindTexture:
		return "texture"
	case KindVertexConstantBuffer:
		return "vertex-constant-buffer"
	case KindPixelConstantBuffer:
		return "pixel-constant-buffer"
	case KindTransform:
		return "transform"
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Bindable is a pipeline resource. Bind must touch only the slot the
// resource owns.
type Bindable interface {
	Kind() ResourceKind
	Bind(gfx *renderer.Graphics) error
	// Release frees the device object. Resources shared with other owners
	// leave it alive.
	Release(gfx *renderer.Graphics)
}

// AsIndexBuffer returns b as an index buffer when it is one.
func AsIndexBuffer(b Bindable) (*IndexBuffer, bool) {
	if b.Kind() != KindIndexBuffer {
		return nil, false
	}
	ib, ok := b.(*IndexBuffer)
	return ib, ok
}
