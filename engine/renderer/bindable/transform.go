package bindable

import (
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/renderer"
)

// TransformSlot is the vertex stage constant buffer slot of the transform.
const TransformSlot = 0

// Transformable is anything with a model transform.
type Transformable interface {
	Transform() math.Mat4
}

// SharedTransform owns the one transform buffer every TransformCbuf writes
// to. The buffer is rewritten before every draw, so draws through it must be
// issued one after the other on the render thread.
type SharedTransform struct {
	buffer  *VertexConstantBuffer[math.Mat4]
	creates int
}

func NewSharedTransform() *SharedTransform {
	return &SharedTransform{}
}

func (s *SharedTransform) acquire(gfx *renderer.Graphics) (*VertexConstantBuffer[math.Mat4], error) {
	if s.buffer != nil {
		return s.buffer, nil
	}
	cb, err := NewVertexConstantBuffer(gfx, TransformSlot, math.NewMat4Identity())
	if err != nil {
		return nil, err
	}
	s.buffer = cb
	s.creates++
	core.LogDebug("shared transform buffer created")
	return cb, nil
}

// Created returns how many times the buffer was created.
func (s *SharedTransform) Created() int {
	return s.creates
}

// Release frees the shared buffer. Call it once, after every drawable is
// gone.
func (s *SharedTransform) Release(gfx *renderer.Graphics) {
	if s.buffer == nil {
		return
	}
	s.buffer.constantBuffer.Release(gfx)
	s.buffer = nil
}

// TransformCbuf uploads transpose(model × projection) of its owner to the
// shared transform buffer and binds it to the vertex stage.
type TransformCbuf struct {
	owner  Transformable
	buffer *VertexConstantBuffer[math.Mat4]
}

func NewTransformCbuf(gfx *renderer.Graphics, owner Transformable, shared *SharedTransform) (*TransformCbuf, error) {
	cb, err := shared.acquire(gfx)
	if err != nil {
		return nil, err
	}
	return &TransformCbuf{owner: owner, buffer: cb}, nil
}

func (t *TransformCbuf) Kind() ResourceKind { return KindTransform }

func (t *TransformCbuf) Bind(gfx *renderer.Graphics) error {
	m := t.owner.Transform().Mul(gfx.Projection()).Transposed()
	if err := t.buffer.Update(gfx, m); err != nil {
		return err
	}
	return t.buffer.Bind(gfx)
}

// Release leaves the shared buffer alive.
func (t *TransformCbuf) Release(*renderer.Graphics) {}
