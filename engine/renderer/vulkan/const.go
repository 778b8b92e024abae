package vulkan

// Number of frames the CPU may record ahead of the GPU.
const maxFramesInFlight = 2

// Descriptor bindings of set 0. Shaders declare their resources at these
// @group(0) @binding indices.
const (
	bindingVertexConstants uint32 = iota
	bindingPixelConstants
	bindingTexture
	bindingSampler
	bindingCount
)

const (
	// uniformAlignment covers minUniformBufferOffsetAlignment on every
	// known device.
	uniformAlignment = 256
	// maxConstantBufferSize is the range bound for each constant buffer
	// descriptor.
	maxConstantBufferSize = 256
	// uniformArenaSize is the per-frame space for constant buffer snapshots.
	uniformArenaSize = 4 << 20

	// maxDescriptorSets bounds the (texture, sampler) combinations alive at
	// once, per frame in flight.
	maxDescriptorSets = 256

	// Fence and acquire timeouts in nanoseconds.
	frameTimeout = uint64(5_000_000_000)
)
