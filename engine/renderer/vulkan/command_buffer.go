package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	State  VulkanCommandBufferState
}

func NewVulkanCommandBuffer(context *VulkanContext, pool vk.CommandPool, isPrimary bool) (*VulkanCommandBuffer, error) {
	level := vk.CommandBufferLevelSecondary
	if isPrimary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: 1,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, 1)
	if res := vk.AllocateCommandBuffers(context.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
		return nil, fmt.Errorf("vkAllocateCommandBuffers failed with %s", VulkanResultString(res))
	}
	return &VulkanCommandBuffer{
		Handle: handles[0],
		State:  COMMAND_BUFFER_STATE_READY,
	}, nil
}

func (v *VulkanCommandBuffer) Free(context *VulkanContext, pool vk.CommandPool) {
	if v.Handle != nil {
		vk.FreeCommandBuffers(context.Device.LogicalDevice, pool, 1, []vk.CommandBuffer{v.Handle})
	}
	v.Handle = nil
	v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
}

func (v *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		return fmt.Errorf("vkBeginCommandBuffer failed with %s", VulkanResultString(res))
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		return fmt.Errorf("vkEndCommandBuffer failed with %s", VulkanResultString(res))
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Reset() error {
	if res := vk.ResetCommandBuffer(v.Handle, 0); res != vk.Success {
		return fmt.Errorf("vkResetCommandBuffer failed with %s", VulkanResultString(res))
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return nil
}

// RunSingleUse records fn into a one-time command buffer, submits it to the
// graphics queue and waits for the queue to drain.
func RunSingleUse(context *VulkanContext, fn func(cb *VulkanCommandBuffer) error) error {
	pool := context.Device.GraphicsCommandPool
	cb, err := NewVulkanCommandBuffer(context, pool, true)
	if err != nil {
		return err
	}
	defer cb.Free(context, pool)

	if err := cb.Begin(true, false, false); err != nil {
		return err
	}
	if err := fn(cb); err != nil {
		return err
	}
	if err := cb.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{cb.Handle},
	}
	queue := context.Device.GraphicsQueue
	if res := vk.QueueSubmit(queue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
		return fmt.Errorf("vkQueueSubmit failed with %s", VulkanResultString(res))
	}
	if res := vk.QueueWaitIdle(queue); res != vk.Success {
		return fmt.Errorf("vkQueueWaitIdle failed with %s", VulkanResultString(res))
	}
	cb.UpdateSubmitted()
	return nil
}

// VulkanFrame holds what one frame in flight records into and waits on.
type VulkanFrame struct {
	CommandBuffer  *VulkanCommandBuffer
	ImageAvailable vk.Semaphore
	QueueComplete  vk.Semaphore
	InFlight       vk.Fence

	uniforms *uniformArena
}

func NewVulkanFrame(context *VulkanContext) (*VulkanFrame, error) {
	device := context.Device.LogicalDevice
	frame := &VulkanFrame{}

	cb, err := NewVulkanCommandBuffer(context, context.Device.GraphicsCommandPool, true)
	if err != nil {
		return nil, err
	}
	frame.CommandBuffer = cb

	semaphoreCreateInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var imageAvailable, queueComplete vk.Semaphore
	if res := vk.CreateSemaphore(device, &semaphoreCreateInfo, context.Allocator, &imageAvailable); res != vk.Success {
		frame.Destroy(context)
		return nil, fmt.Errorf("vkCreateSemaphore failed with %s", VulkanResultString(res))
	}
	frame.ImageAvailable = imageAvailable
	if res := vk.CreateSemaphore(device, &semaphoreCreateInfo, context.Allocator, &queueComplete); res != vk.Success {
		frame.Destroy(context)
		return nil, fmt.Errorf("vkCreateSemaphore failed with %s", VulkanResultString(res))
	}
	frame.QueueComplete = queueComplete

	// Created signaled so the first wait on it returns immediately.
	fenceCreateInfo := vk.FenceCreateInfo{
		SType: vk.StructureTypeFenceCreateInfo,
		Flags: vk.FenceCreateFlags(vk.FenceCreateSignaledBit),
	}
	var fence vk.Fence
	if res := vk.CreateFence(device, &fenceCreateInfo, context.Allocator, &fence); res != vk.Success {
		frame.Destroy(context)
		return nil, fmt.Errorf("vkCreateFence failed with %s", VulkanResultString(res))
	}
	frame.InFlight = fence

	arena, err := newUniformArena(context)
	if err != nil {
		frame.Destroy(context)
		return nil, err
	}
	frame.uniforms = arena
	return frame, nil
}

// Wait blocks until the GPU has finished the previous use of this frame.
func (f *VulkanFrame) Wait(context *VulkanContext) vk.Result {
	return vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{f.InFlight}, vk.True, frameTimeout)
}

func (f *VulkanFrame) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if f.uniforms != nil {
		f.uniforms.destroy(context)
		f.uniforms = nil
	}
	if f.InFlight != vk.NullFence {
		vk.DestroyFence(device, f.InFlight, context.Allocator)
		f.InFlight = vk.NullFence
	}
	if f.QueueComplete != vk.NullSemaphore {
		vk.DestroySemaphore(device, f.QueueComplete, context.Allocator)
		f.QueueComplete = vk.NullSemaphore
	}
	if f.ImageAvailable != vk.NullSemaphore {
		vk.DestroySemaphore(device, f.ImageAvailable, context.Allocator)
		f.ImageAvailable = vk.NullSemaphore
	}
	if f.CommandBuffer != nil {
		f.CommandBuffer.Free(context, context.Device.GraphicsCommandPool)
		f.CommandBuffer = nil
	}
}
