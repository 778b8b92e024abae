package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// pipelineKey is the draw state baked into a graphics pipeline.
type pipelineKey struct {
	vertexShader metadata.Handle
	pixelShader  metadata.Handle
	inputLayout  metadata.Handle
	topology     metadata.Topology
	stride       uint32
}

func (k pipelineKey) references(h metadata.Handle) bool {
	return k.vertexShader == h || k.pixelShader == h || k.inputLayout == h
}

type VulkanPipelineConfig struct {
	Renderpass *VulkanRenderpass
	Layout     vk.PipelineLayout
	// The stride of one vertex in the bound vertex buffer.
	Stride     uint32
	Attributes []vk.VertexInputAttributeDescription
	Stages     []vk.PipelineShaderStageCreateInfo
	Topology   vk.PrimitiveTopology
}

// NewPipelineLayout creates the layout shared by every pipeline: one
// descriptor set and no push constants.
func NewPipelineLayout(context *VulkanContext, setLayout vk.DescriptorSetLayout) (vk.PipelineLayout, error) {
	createInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: 1,
		PSetLayouts:    []vk.DescriptorSetLayout{setLayout},
	}
	var layout vk.PipelineLayout
	if res := vk.CreatePipelineLayout(context.Device.LogicalDevice, &createInfo, context.Allocator, &layout); res != vk.Success {
		return nil, fmt.Errorf("vkCreatePipelineLayout failed with %s", VulkanResultString(res))
	}
	return layout, nil
}

func NewGraphicsPipeline(context *VulkanContext, config *VulkanPipelineConfig) (vk.Pipeline, error) {
	// Viewport and scissor are dynamic, so only the counts matter here.
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	rasterizerCreateInfo := vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		// Geometry is generated with both windings; nothing is culled.
		CullMode:        vk.CullModeFlags(vk.CullModeNone),
		FrontFace:       vk.FrontFaceClockwise,
		DepthBiasEnable: vk.False,
	}

	multisamplingCreateInfo := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
		MinSampleShading:     1.0,
	}

	depthStencil := vk.PipelineDepthStencilStateCreateInfo{
		SType:            vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:  vk.True,
		DepthWriteEnable: vk.True,
		DepthCompareOp:   vk.CompareOpLess,
	}

	colorBlendAttachmentState := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vk.False,
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	colorBlendStateCreateInfo := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{colorBlendAttachmentState},
	}

	dynamicStates := []vk.DynamicState{
		vk.DynamicStateViewport,
		vk.DynamicStateScissor,
	}
	dynamicStateCreateInfo := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(dynamicStates)),
		PDynamicStates:    dynamicStates,
	}

	bindingDescription := vk.VertexInputBindingDescription{
		Binding:   0,
		Stride:    config.Stride,
		InputRate: vk.VertexInputRateVertex,
	}
	vertexInputInfo := vk.PipelineVertexInputStateCreateInfo{
		SType:                           vk.StructureTypePipelineVertexInputStateCreateInfo,
		VertexBindingDescriptionCount:   1,
		PVertexBindingDescriptions:      []vk.VertexInputBindingDescription{bindingDescription},
		VertexAttributeDescriptionCount: uint32(len(config.Attributes)),
		PVertexAttributeDescriptions:    config.Attributes,
	}

	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               config.Topology,
		PrimitiveRestartEnable: vk.False,
	}

	pipelineCreateInfo := vk.GraphicsPipelineCreateInfo{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		StageCount:          uint32(len(config.Stages)),
		PStages:             config.Stages,
		PVertexInputState:   &vertexInputInfo,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizerCreateInfo,
		PMultisampleState:   &multisamplingCreateInfo,
		PDepthStencilState:  &depthStencil,
		PColorBlendState:    &colorBlendStateCreateInfo,
		PDynamicState:       &dynamicStateCreateInfo,
		Layout:              config.Layout,
		RenderPass:          config.Renderpass.Handle,
		Subpass:             0,
		BasePipelineHandle:  vk.NullPipeline,
		BasePipelineIndex:   -1,
	}

	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(
		context.Device.LogicalDevice,
		vk.NullPipelineCache,
		1,
		[]vk.GraphicsPipelineCreateInfo{pipelineCreateInfo},
		context.Allocator,
		pipelines)
	if !VulkanResultIsSuccess(res) {
		return vk.NullPipeline, fmt.Errorf("vkCreateGraphicsPipelines failed with %s", VulkanResultString(res))
	}

	core.LogDebug("Graphics pipeline created.")
	return pipelines[0], nil
}

// pipelineCache builds pipelines lazily, one per distinct draw state.
type pipelineCache struct {
	layout    vk.PipelineLayout
	pipelines map[pipelineKey]vk.Pipeline
}

func newPipelineCache(layout vk.PipelineLayout) *pipelineCache {
	return &pipelineCache{
		layout:    layout,
		pipelines: make(map[pipelineKey]vk.Pipeline),
	}
}

func (c *pipelineCache) get(context *VulkanContext, key pipelineKey, build func() (*VulkanPipelineConfig, error)) (vk.Pipeline, error) {
	if p, ok := c.pipelines[key]; ok {
		return p, nil
	}
	config, err := build()
	if err != nil {
		return vk.NullPipeline, err
	}
	config.Layout = c.layout
	p, err := NewGraphicsPipeline(context, config)
	if err != nil {
		return vk.NullPipeline, err
	}
	c.pipelines[key] = p
	return p, nil
}

// forget destroys the pipelines built from h. The device must be idle.
func (c *pipelineCache) forget(context *VulkanContext, h metadata.Handle) {
	for key, p := range c.pipelines {
		if key.references(h) {
			vk.DestroyPipeline(context.Device.LogicalDevice, p, context.Allocator)
			delete(c.pipelines, key)
		}
	}
}

func (c *pipelineCache) destroy(context *VulkanContext) {
	for key, p := range c.pipelines {
		vk.DestroyPipeline(context.Device.LogicalDevice, p, context.Allocator)
		delete(c.pipelines, key)
	}
	if c.layout != vk.NullPipelineLayout {
		vk.DestroyPipelineLayout(context.Device.LogicalDevice, c.layout, context.Allocator)
		c.layout = vk.NullPipelineLayout
	}
}
