package headless

import (
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

type commandContext struct {
	b *Backend
}

func (c *commandContext) SetVertexBuffer(h metadata.Handle, stride uint32) {
	c.b.call(Call{Op: OpSetVertexBuffer, Handle: h, Value: stride})
	c.b.bound.VertexBuffer = h
	c.b.bound.VertexStride = stride
}

func (c *commandContext) SetIndexBuffer(h metadata.Handle) {
	c.b.call(Call{Op: OpSetIndexBuffer, Handle: h})
	c.b.bound.IndexBuffer = h
}

func (c *commandContext) SetShader(stage metadata.Stage, h metadata.Handle) {
	c.b.call(Call{Op: OpSetShader, Stage: stage, Handle: h})
	if stage == metadata.StagePixel {
		c.b.bound.PixelShader = h
	} else {
		c.b.bound.VertexShader = h
	}
}

func (c *commandContext) SetInputLayout(h metadata.Handle) {
	c.b.call(Call{Op: OpSetInputLayout, Handle: h})
	c.b.bound.InputLayout = h
}

func (c *commandContext) SetTopology(t metadata.Topology) {
	c.b.call(Call{Op: OpSetTopology, Value: uint32(t)})
	c.b.bound.Topology = t
}

func (c *commandContext) SetConstantBuffer(stage metadata.Stage, slot uint32, h metadata.Handle) {
	c.b.call(Call{Op: OpSetConstantBuffer, Stage: stage, Slot: slot, Handle: h})
	if stage == metadata.StagePixel {
		c.b.bound.PixelConstants[slot] = h
	} else {
		c.b.bound.VertexConstants[slot] = h
	}
}

func (c *commandContext) SetTexture(slot uint32, h metadata.Handle) {
	c.b.call(Call{Op: OpSetTexture, Slot: slot, Handle: h})
	c.b.bound.Textures[slot] = h
}

func (c *commandContext) SetSampler(slot uint32, h metadata.Handle) {
	c.b.call(Call{Op: OpSetSampler, Slot: slot, Handle: h})
	c.b.bound.Samplers[slot] = h
}

// DrawIndexed never fails. Invalid state is reported through the message
// queue and the draw is still recorded.
func (c *commandContext) DrawIndexed(indexCount uint32) {
	b := c.b
	b.call(Call{Op: OpDrawIndexed, Value: indexCount})

	bound := b.bound
	if ib, ok := b.live(bound.IndexBuffer, kindBuffer); !ok || ib.buffer.Kind != metadata.BufferKindIndex {
		b.emit(diagnostics.SeverityError, "DrawIndexed: no index buffer bound")
	} else if indexCount*metadata.IndexSize > ib.buffer.Size {
		b.emit(diagnostics.SeverityError, "DrawIndexed: %d indices read past the end of a %d byte index buffer", indexCount, ib.buffer.Size)
	}
	if _, ok := b.live(bound.VertexBuffer, kindBuffer); !ok {
		b.emit(diagnostics.SeverityError, "DrawIndexed: no vertex buffer bound")
	}
	if _, ok := b.live(bound.VertexShader, kindShader); !ok {
		b.emit(diagnostics.SeverityError, "DrawIndexed: no vertex shader bound")
	}
	if _, ok := b.live(bound.PixelShader, kindShader); !ok {
		b.emit(diagnostics.SeverityError, "DrawIndexed: no pixel shader bound")
	}
	if _, ok := b.live(bound.InputLayout, kindInputLayout); !ok {
		b.emit(diagnostics.SeverityError, "DrawIndexed: no input layout bound")
	}

	b.draws = append(b.draws, Draw{
		IndexCount:      indexCount,
		Bound:           bound.clone(),
		VertexConstants: b.snapshot(bound.VertexConstants),
		PixelConstants:  b.snapshot(bound.PixelConstants),
	})
}

func (b *Backend) live(h metadata.Handle, kind objectKind) (*object, bool) {
	obj, ok := b.objects[h]
	if !ok || obj.kind != kind {
		return nil, false
	}
	return obj, true
}

func (b *Backend) snapshot(slots map[uint32]metadata.Handle) map[uint32][]byte {
	out := make(map[uint32][]byte, len(slots))
	for slot, h := range slots {
		if obj, ok := b.live(h, kindBuffer); ok {
			out[slot] = append([]byte(nil), obj.data...)
		}
	}
	return out
}
