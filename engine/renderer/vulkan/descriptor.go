package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
)

// descriptorKey identifies a descriptor set by the frame whose uniform
// arena it points at and the texture and sampler it samples.
type descriptorKey struct {
	frame   uint32
	texture metadata.Handle
	sampler metadata.Handle
}

// VulkanDescriptors owns the single set layout every pipeline uses and a
// cache of the sets built for it. Constant buffers are dynamic uniform
// descriptors, so one set per (frame, texture, sampler) serves every draw.
type VulkanDescriptors struct {
	Layout vk.DescriptorSetLayout
	Pool   vk.DescriptorPool

	sets map[descriptorKey]vk.DescriptorSet
}

func NewDescriptors(context *VulkanContext) (*VulkanDescriptors, error) {
	device := context.Device.LogicalDevice
	d := &VulkanDescriptors{sets: make(map[descriptorKey]vk.DescriptorSet)}

	bindings := []vk.DescriptorSetLayoutBinding{
		{
			Binding:         bindingVertexConstants,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit),
		},
		{
			Binding:         bindingPixelConstants,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         bindingTexture,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
		{
			Binding:         bindingSampler,
			DescriptorType:  vk.DescriptorTypeSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if res := vk.CreateDescriptorSetLayout(device, &layoutInfo, context.Allocator, &layout); res != vk.Success {
		return nil, fmt.Errorf("vkCreateDescriptorSetLayout failed with %s", VulkanResultString(res))
	}
	d.Layout = layout

	sets := uint32(maxDescriptorSets * maxFramesInFlight)
	poolSizes := []vk.DescriptorPoolSize{
		{Type: vk.DescriptorTypeUniformBufferDynamic, DescriptorCount: 2 * sets},
		{Type: vk.DescriptorTypeSampledImage, DescriptorCount: sets},
		{Type: vk.DescriptorTypeSampler, DescriptorCount: sets},
	}
	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		Flags:         vk.DescriptorPoolCreateFlags(vk.DescriptorPoolCreateFreeDescriptorSetBit),
		MaxSets:       sets,
		PoolSizeCount: uint32(len(poolSizes)),
		PPoolSizes:    poolSizes,
	}
	var pool vk.DescriptorPool
	if res := vk.CreateDescriptorPool(device, &poolInfo, context.Allocator, &pool); res != vk.Success {
		vk.DestroyDescriptorSetLayout(device, layout, context.Allocator)
		return nil, fmt.Errorf("vkCreateDescriptorPool failed with %s", VulkanResultString(res))
	}
	d.Pool = pool
	return d, nil
}

// Set returns the descriptor set for key, writing a new one on first use.
func (d *VulkanDescriptors) Set(context *VulkanContext, key descriptorKey, uniforms vk.Buffer, view vk.ImageView, sampler vk.Sampler) (vk.DescriptorSet, error) {
	if set, ok := d.sets[key]; ok {
		return set, nil
	}

	allocateInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     d.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{d.Layout},
	}
	var set vk.DescriptorSet
	if res := vk.AllocateDescriptorSets(context.Device.LogicalDevice, &allocateInfo, &set); res != vk.Success {
		return nil, fmt.Errorf("vkAllocateDescriptorSets failed with %s", VulkanResultString(res))
	}

	uniformInfo := []vk.DescriptorBufferInfo{{
		Buffer: uniforms,
		Offset: 0,
		Range:  vk.DeviceSize(maxConstantBufferSize),
	}}
	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingVertexConstants,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			PBufferInfo:     uniformInfo,
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingPixelConstants,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			PBufferInfo:     uniformInfo,
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingTexture,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeSampledImage,
			PImageInfo: []vk.DescriptorImageInfo{{
				ImageView:   view,
				ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
			}},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      bindingSampler,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeSampler,
			PImageInfo: []vk.DescriptorImageInfo{{
				Sampler: sampler,
			}},
		},
	}
	vk.UpdateDescriptorSets(context.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)

	d.sets[key] = set
	return set, nil
}

// Forget frees every set that references h. The device must be idle.
func (d *VulkanDescriptors) Forget(context *VulkanContext, h metadata.Handle) {
	for key, set := range d.sets {
		if key.texture == h || key.sampler == h {
			vk.FreeDescriptorSets(context.Device.LogicalDevice, d.Pool, 1, []vk.DescriptorSet{set})
			delete(d.sets, key)
		}
	}
}

func (d *VulkanDescriptors) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if d.Pool != nil {
		// Destroying the pool frees its sets.
		vk.DestroyDescriptorPool(device, d.Pool, context.Allocator)
		d.Pool = nil
	}
	if d.Layout != nil {
		vk.DestroyDescriptorSetLayout(device, d.Layout, context.Allocator)
		d.Layout = nil
	}
	d.sets = make(map[descriptorKey]vk.DescriptorSet)
}
