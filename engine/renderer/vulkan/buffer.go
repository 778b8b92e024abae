package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	Size   uint64
	Usage  vk.BufferUsageFlags

	// mapped is set while the memory is persistently mapped.
	mapped unsafe.Pointer
}

func NewBuffer(context *VulkanContext, size uint64, usage vk.BufferUsageFlags, memoryFlags vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	buffer := &VulkanBuffer{Size: size, Usage: usage}
	device := context.Device.LogicalDevice

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        vk.DeviceSize(size),
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive,
	}
	var handle vk.Buffer
	if res := vk.CreateBuffer(device, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateBuffer failed with %s", VulkanResultString(res))
	}
	buffer.Handle = handle

	var memoryRequirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(device, handle, &memoryRequirements)
	memoryRequirements.Deref()

	memoryType, err := context.FindMemoryIndex(memoryRequirements.MemoryTypeBits, memoryFlags)
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  memoryRequirements.Size,
		MemoryTypeIndex: memoryType,
	}
	var memory vk.DeviceMemory
	if res := vk.AllocateMemory(device, &allocateInfo, context.Allocator, &memory); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("vkAllocateMemory for buffer failed with %s", VulkanResultString(res))
	}
	buffer.Memory = memory

	if res := vk.BindBufferMemory(device, handle, memory, 0); res != vk.Success {
		buffer.Destroy(context)
		return nil, fmt.Errorf("vkBindBufferMemory failed with %s", VulkanResultString(res))
	}
	return buffer, nil
}

// LoadData copies data into host visible memory at offset.
func (vb *VulkanBuffer) LoadData(context *VulkanContext, offset uint64, data []byte) error {
	if len(data) == 0 {
		return nil
	}
	if offset+uint64(len(data)) > vb.Size {
		return fmt.Errorf("%d bytes at offset %d overflow a %d byte buffer", len(data), offset, vb.Size)
	}
	if vb.mapped != nil {
		vk.Memcopy(unsafe.Add(vb.mapped, offset), data)
		return nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, vk.DeviceSize(offset), vk.DeviceSize(len(data)), 0, &ptr); res != vk.Success {
		return fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res))
	}
	vk.Memcopy(ptr, data)
	vk.UnmapMemory(context.Device.LogicalDevice, vb.Memory)
	return nil
}

// Map keeps the whole buffer mapped until Destroy.
func (vb *VulkanBuffer) Map(context *VulkanContext) error {
	if vb.mapped != nil {
		return nil
	}
	var ptr unsafe.Pointer
	if res := vk.MapMemory(context.Device.LogicalDevice, vb.Memory, 0, vk.DeviceSize(vb.Size), 0, &ptr); res != vk.Success {
		return fmt.Errorf("vkMapMemory failed with %s", VulkanResultString(res))
	}
	vb.mapped = ptr
	return nil
}

func (vb *VulkanBuffer) Destroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	if vb.mapped != nil {
		vk.UnmapMemory(device, vb.Memory)
		vb.mapped = nil
	}
	if vb.Handle != vk.NullBuffer {
		vk.DestroyBuffer(device, vb.Handle, context.Allocator)
		vb.Handle = vk.NullBuffer
	}
	if vb.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, vb.Memory, context.Allocator)
		vb.Memory = vk.NullDeviceMemory
	}
}

// NewDeviceLocalBuffer creates a device local buffer holding data, uploaded
// through a staging buffer.
func NewDeviceLocalBuffer(context *VulkanContext, usage vk.BufferUsageFlags, size uint64, data []byte) (*VulkanBuffer, error) {
	buffer, err := NewBuffer(context, size,
		usage|vk.BufferUsageFlags(vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return buffer, nil
	}

	staging, err := NewBuffer(context, uint64(len(data)),
		vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	defer staging.Destroy(context)

	if err := staging.LoadData(context, 0, data); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	err = RunSingleUse(context, func(cb *VulkanCommandBuffer) error {
		region := vk.BufferCopy{Size: vk.DeviceSize(len(data))}
		vk.CmdCopyBuffer(cb.Handle, staging.Handle, buffer.Handle, 1, []vk.BufferCopy{region})
		return nil
	})
	if err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return buffer, nil
}

// uniformArena is a persistently mapped buffer that receives a copy of every
// bound constant buffer at draw time. Each frame in flight owns one, so a
// draw reads the contents its constant buffers had when it was recorded.
type uniformArena struct {
	buffer *VulkanBuffer
	offset uint64
}

func newUniformArena(context *VulkanContext) (*uniformArena, error) {
	buffer, err := NewBuffer(context, uniformArenaSize,
		vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	if err := buffer.Map(context); err != nil {
		buffer.Destroy(context)
		return nil, err
	}
	return &uniformArena{buffer: buffer}, nil
}

func (a *uniformArena) reset() {
	a.offset = 0
}

// push copies data into the arena and returns its offset. Every slice is
// followed by at least maxConstantBufferSize bytes so the descriptor range
// stays inside the buffer.
func (a *uniformArena) push(context *VulkanContext, data []byte) (uint32, error) {
	offset := alignUp(a.offset, uniformAlignment)
	if offset+maxConstantBufferSize > a.buffer.Size {
		return 0, fmt.Errorf("uniform arena exhausted after %d bytes", a.offset)
	}
	if err := a.buffer.LoadData(context, offset, data); err != nil {
		return 0, err
	}
	a.offset = offset + uint64(len(data))
	return uint32(offset), nil
}

func (a *uniformArena) destroy(context *VulkanContext) {
	a.buffer.Destroy(context)
}
