package vulkan

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// boundState mirrors the pipeline slots. Only slot 0 exists for constant
// buffers, textures and samplers.
type boundState struct {
	vertexBuffer    metadata.Handle
	stride          uint32
	indexBuffer     metadata.Handle
	vertexShader    metadata.Handle
	pixelShader     metadata.Handle
	inputLayout     metadata.Handle
	topology        metadata.Topology
	vertexConstants metadata.Handle
	pixelConstants  metadata.Handle
	texture         metadata.Handle
	sampler         metadata.Handle
}

type commandContext struct {
	vr    *VulkanRenderer
	bound boundState
}

func (c *commandContext) SetVertexBuffer(h metadata.Handle, stride uint32) {
	c.bound.vertexBuffer = h
	c.bound.stride = stride
}

func (c *commandContext) SetIndexBuffer(h metadata.Handle) {
	c.bound.indexBuffer = h
}

func (c *commandContext) SetShader(stage metadata.Stage, h metadata.Handle) {
	if stage == metadata.StagePixel {
		c.bound.pixelShader = h
	} else {
		c.bound.vertexShader = h
	}
}

func (c *commandContext) SetInputLayout(h metadata.Handle) {
	c.bound.inputLayout = h
}

func (c *commandContext) SetTopology(t metadata.Topology) {
	c.bound.topology = t
}

func (c *commandContext) SetConstantBuffer(stage metadata.Stage, slot uint32, h metadata.Handle) {
	if slot != 0 {
		c.vr.emit(diagnostics.SeverityWarning, "SetConstantBuffer: %s slot %d is not supported", stage, slot)
		return
	}
	if stage == metadata.StagePixel {
		c.bound.pixelConstants = h
	} else {
		c.bound.vertexConstants = h
	}
}

func (c *commandContext) SetTexture(slot uint32, h metadata.Handle) {
	if slot != 0 {
		c.vr.emit(diagnostics.SeverityWarning, "SetTexture: slot %d is not supported", slot)
		return
	}
	c.bound.texture = h
}

func (c *commandContext) SetSampler(slot uint32, h metadata.Handle) {
	if slot != 0 {
		c.vr.emit(diagnostics.SeverityWarning, "SetSampler: slot %d is not supported", slot)
		return
	}
	c.bound.sampler = h
}

// DrawIndexed records the draw into the frame's command buffer. Invalid
// state is reported through the message queue and the draw is skipped.
// The bound constant buffers are copied at this point, so later updates do
// not reach draws already recorded.
func (c *commandContext) DrawIndexed(indexCount uint32) {
	vr := c.vr
	if !vr.frameBegun {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: no frame is recording")
		return
	}

	bound := c.bound
	valid := true
	ib, ok := vr.live(bound.indexBuffer, kindBuffer)
	if !ok || ib.desc.Kind != metadata.BufferKindIndex {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: no index buffer bound")
		valid = false
	} else if indexCount*metadata.IndexSize > ib.desc.Size {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: %d indices read past the end of a %d byte index buffer", indexCount, ib.desc.Size)
		valid = false
	}
	vb, ok := vr.live(bound.vertexBuffer, kindBuffer)
	if !ok || vb.desc.Kind != metadata.BufferKindVertex {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: no vertex buffer bound")
		valid = false
	}
	vs, ok := vr.live(bound.vertexShader, kindShader)
	if !ok || vs.stage.Program.Stage != metadata.StageVertex {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: no vertex shader bound")
		valid = false
	}
	ps, ok := vr.live(bound.pixelShader, kindShader)
	if !ok || ps.stage.Program.Stage != metadata.StagePixel {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: no pixel shader bound")
		valid = false
	}
	layout, ok := vr.live(bound.inputLayout, kindInputLayout)
	if !ok {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: no input layout bound")
		valid = false
	}
	if !valid {
		return
	}

	context := vr.context
	if !vr.passBegun {
		vr.beginPass()
	}

	key := pipelineKey{
		vertexShader: bound.vertexShader,
		pixelShader:  bound.pixelShader,
		inputLayout:  bound.inputLayout,
		topology:     bound.topology,
		stride:       bound.stride,
	}
	pipeline, err := vr.pipelines.get(context, key, func() (*VulkanPipelineConfig, error) {
		return &VulkanPipelineConfig{
			Renderpass: context.MainRenderpass,
			Stride:     bound.stride,
			Attributes: layout.attributes,
			Stages:     []vk.PipelineShaderStageCreateInfo{vs.stage.StageCreateInfo(), ps.stage.StageCreateInfo()},
			Topology:   toVulkanTopology(bound.topology),
		}, nil
	})
	if err != nil {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: %s", err)
		return
	}

	frame := context.Frame()
	vsOffset, err := frame.uniforms.push(context, c.constants(bound.vertexConstants))
	if err != nil {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: %s", err)
		return
	}
	psOffset, err := frame.uniforms.push(context, c.constants(bound.pixelConstants))
	if err != nil {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: %s", err)
		return
	}

	setKey := descriptorKey{frame: context.CurrentFrame}
	view := vr.whiteTexture.View
	if tex, ok := vr.live(bound.texture, kindTexture); ok {
		setKey.texture = bound.texture
		view = tex.image.View
	}
	sampler := vr.defaultSampler
	if smp, ok := vr.live(bound.sampler, kindSampler); ok {
		setKey.sampler = bound.sampler
		sampler = smp.sampler
	}
	set, err := vr.descriptors.Set(context, setKey, frame.uniforms.buffer.Handle, view, sampler)
	if err != nil {
		vr.emit(diagnostics.SeverityError, "DrawIndexed: %s", err)
		return
	}

	cb := frame.CommandBuffer.Handle
	vk.CmdBindPipeline(cb, vk.PipelineBindPointGraphics, pipeline)
	vk.CmdBindVertexBuffers(cb, 0, 1, []vk.Buffer{vb.buffer.Handle}, []vk.DeviceSize{0})
	vk.CmdBindIndexBuffer(cb, ib.buffer.Handle, 0, vk.IndexTypeUint16)
	vk.CmdBindDescriptorSets(cb, vk.PipelineBindPointGraphics, vr.pipelines.layout, 0, 1, []vk.DescriptorSet{set}, 2, []uint32{vsOffset, psOffset})
	vk.CmdDrawIndexed(cb, indexCount, 1, 0, 0, 0)
}

// constants returns the shadow copy of a bound constant buffer, or nothing
// when the slot is empty.
func (c *commandContext) constants(h metadata.Handle) []byte {
	obj, ok := c.vr.live(h, kindBuffer)
	if !ok || obj.desc.Kind != metadata.BufferKindConstant {
		return nil
	}
	return obj.shadow
}
