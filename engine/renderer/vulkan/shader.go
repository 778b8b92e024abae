package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

// VulkanShaderStage is a compiled program loaded into a shader module.
type VulkanShaderStage struct {
	Program *shader.Program
	Module  vk.ShaderModule
}

func NewShaderStage(context *VulkanContext, program *shader.Program) (*VulkanShaderStage, error) {
	words := program.Words()
	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(words) * 4),
		PCode:    words,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(context.Device.LogicalDevice, &createInfo, context.Allocator, &module); res != vk.Success {
		return nil, fmt.Errorf("vkCreateShaderModule for %s failed with %s", program.Name, VulkanResultString(res))
	}
	return &VulkanShaderStage{Program: program, Module: module}, nil
}

// StageCreateInfo describes the stage for pipeline creation.
func (s *VulkanShaderStage) StageCreateInfo() vk.PipelineShaderStageCreateInfo {
	stage := vk.ShaderStageVertexBit
	if s.Program.Stage == metadata.StagePixel {
		stage = vk.ShaderStageFragmentBit
	}
	return vk.PipelineShaderStageCreateInfo{
		SType:  vk.StructureTypePipelineShaderStageCreateInfo,
		Stage:  stage,
		Module: s.Module,
		PName:  VulkanSafeString(s.Program.Entry),
	}
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Module != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Module, context.Allocator)
		s.Module = vk.NullShaderModule
	}
}
