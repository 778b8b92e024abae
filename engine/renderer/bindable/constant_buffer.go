package bindable

import (
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// constantBuffer is a dynamic uniform buffer holding one T. Its size is
// rounded up to 16 bytes.
type constantBuffer[T any] struct {
	handle metadata.Handle
	stage  metadata.Stage
	slot   uint32
	size   uint32
}

func newConstantBuffer[T any](gfx *renderer.Graphics, stage metadata.Stage, slot uint32, initial T) (*constantBuffer[T], error) {
	n := binary.Size(initial)
	if n <= 0 {
		return nil, fmt.Errorf("%w: constant buffer type %T has no fixed size", core.ErrPreconditionViolation, initial)
	}
	size := uint32(n+15) &^ 15

	data, err := encodePadded(initial, size)
	if err != nil {
		return nil, err
	}
	h, err := gfx.CreateBuffer(metadata.BufferDesc{
		Kind:    metadata.BufferKindConstant,
		Size:    size,
		Dynamic: true,
	}, data)
	if err != nil {
		return nil, err
	}
	return &constantBuffer[T]{handle: h, stage: stage, slot: slot, size: size}, nil
}

// Update overwrites the buffer contents.
func (cb *constantBuffer[T]) Update(gfx *renderer.Graphics, value T) error {
	data, err := encodePadded(value, cb.size)
	if err != nil {
		return err
	}
	return gfx.UpdateBuffer(cb.handle, data)
}

func (cb *constantBuffer[T]) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetConstantBuffer", func() {
		gfx.Context().SetConstantBuffer(cb.stage, cb.slot, cb.handle)
	})
}

func (cb *constantBuffer[T]) Release(gfx *renderer.Graphics) {
	gfx.Release(cb.handle)
}

func (cb *constantBuffer[T]) Handle() metadata.Handle { return cb.handle }

type VertexConstantBuffer[T any] struct {
	*constantBuffer[T]
}

func NewVertexConstantBuffer[T any](gfx *renderer.Graphics, slot uint32, initial T) (*VertexConstantBuffer[T], error) {
	cb, err := newConstantBuffer(gfx, metadata.StageVertex, slot, initial)
	if err != nil {
		return nil, err
	}
	return &VertexConstantBuffer[T]{cb}, nil
}

func (cb *VertexConstantBuffer[T]) Kind() ResourceKind { return KindVertexConstantBuffer }

type PixelConstantBuffer[T any] struct {
	*constantBuffer[T]
}

func NewPixelConstantBuffer[T any](gfx *renderer.Graphics, slot uint32, initial T) (*PixelConstantBuffer[T], error) {
	cb, err := newConstantBuffer(gfx, metadata.StagePixel, slot, initial)
	if err != nil {
		return nil, err
	}
	return &PixelConstantBuffer[T]{cb}, nil
}

func (cb *PixelConstantBuffer[T]) Kind() ResourceKind { return KindPixelConstantBuffer }

func encodePadded(v interface{}, size uint32) ([]byte, error) {
	data, err := encode(v)
	if err != nil {
		return nil, err
	}
	if uint32(len(data)) < size {
		data = append(data, make([]byte, size-uint32(len(data)))...)
	}
	return data, nil
}
