package bindable

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

type VertexBuffer struct {
	handle metadata.Handle
	stride uint32
	count  uint32
}

// NewVertexBuffer uploads vertices to an immutable vertex buffer. V must be
// a fixed size value.
func NewVertexBuffer[V any](gfx *renderer.Graphics, vertices []V) (*VertexBuffer, error) {
	if len(vertices) == 0 {
		return nil, fmt.Errorf("%w: vertex buffer needs at least one vertex", core.ErrPreconditionViolation)
	}
	stride := binary.Size(vertices[0])
	if stride <= 0 {
		return nil, fmt.Errorf("%w: vertex type %T has no fixed size", core.ErrPreconditionViolation, vertices[0])
	}
	data, err := encode(vertices)
	if err != nil {
		return nil, err
	}

	h, err := gfx.CreateBuffer(metadata.BufferDesc{
		Kind:   metadata.BufferKindVertex,
		Size:   uint32(len(data)),
		Stride: uint32(stride),
	}, data)
	if err != nil {
		return nil, err
	}
	return &VertexBuffer{handle: h, stride: uint32(stride), count: uint32(len(vertices))}, nil
}

func (vb *VertexBuffer) Kind() ResourceKind { return KindVertexBuffer }

func (vb *VertexBuffer) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetVertexBuffer", func() {
		gfx.Context().SetVertexBuffer(vb.handle, vb.stride)
	})
}

func (vb *VertexBuffer) Release(gfx *renderer.Graphics) {
	gfx.Release(vb.handle)
}

func (vb *VertexBuffer) Handle() metadata.Handle { return vb.handle }

func (vb *VertexBuffer) Stride() uint32 { return vb.stride }

// Len returns the number of vertices in the buffer.
func (vb *VertexBuffer) Len() uint32 { return vb.count }

// IndexBuffer holds 16 bit triangle indices. Its count is the draw count of
// every drawable that resolves it.
type IndexBuffer struct {
	handle metadata.Handle
	count  uint32
}

func NewIndexBuffer(gfx *renderer.Graphics, indices []uint16) (*IndexBuffer, error) {
	if len(indices) == 0 {
		return nil, fmt.Errorf("%w: index buffer needs at least one index", core.ErrPreconditionViolation)
	}
	data, err := encode(indices)
	if err != nil {
		return nil, err
	}
	h, err := gfx.CreateBuffer(metadata.BufferDesc{
		Kind:   metadata.BufferKindIndex,
		Size:   uint32(len(data)),
		Stride: metadata.IndexSize,
	}, data)
	if err != nil {
		return nil, err
	}
	return &IndexBuffer{handle: h, count: uint32(len(indices))}, nil
}

func (ib *IndexBuffer) Kind() ResourceKind { return KindIndexBuffer }

func (ib *IndexBuffer) Bind(gfx *renderer.Graphics) error {
	return gfx.InfoOnly("SetIndexBuffer", func() {
		gfx.Context().SetIndexBuffer(ib.handle)
	})
}

func (ib *IndexBuffer) Release(gfx *renderer.Graphics) {
	gfx.Release(ib.handle)
}

func (ib *IndexBuffer) Handle() metadata.Handle { return ib.handle }

func (ib *IndexBuffer) Count() uint32 { return ib.count }

func encode(v interface{}) ([]byte, error) {
	var buf bytes.Buffer
	if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
		return nil, fmt.Errorf("failed to encode %T: %w", v, err)
	}
	return buf.Bytes(), nil
}
