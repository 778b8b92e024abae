package vulkan

import (
	"fmt"
	"runtime"
	"unsafe"

	"github.com/go-gl/glfw/v3.3/glfw"
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/orrery/engine/core"
	"github.com/spaghettifunk/orrery/engine/math"
	"github.com/spaghettifunk/orrery/engine/platform"
	"github.com/spaghettifunk/orrery/engine/renderer/diagnostics"
	"github.com/spaghettifunk/orrery/engine/renderer/metadata"
	"github.com/spaghettifunk/orrery/engine/renderer/shader"
)

const (
	validationLayer = "VK_LAYER_KHRONOS_validation"
	messageSource   = "vulkan"
)

type objectKind uint8

const (
	kindBuffer objectKind = iota
	kindShader
	kindInputLayout
	kindTexture
	kindSampler
)

type object struct {
	kind objectKind

	desc metadata.BufferDesc
	// buffer backs vertex and index buffers. Constant buffers only live in
	// shadow and are copied into the frame's uniform arena at draw time.
	buffer *VulkanBuffer
	shadow []byte

	stage      *VulkanShaderStage
	attributes []vk.VertexInputAttributeDescription
	image      *VulkanImage
	sampler    vk.Sampler
}

type VulkanRenderer struct {
	platform    *platform.Platform
	FrameNumber uint64
	context     *VulkanContext
	queue       *diagnostics.Queue
	ctx         *commandContext

	descriptors *VulkanDescriptors
	pipelines   *pipelineCache
	// Bound in place of an unset texture or sampler slot.
	whiteTexture   *VulkanImage
	defaultSampler vk.Sampler

	next    metadata.Handle
	objects map[metadata.Handle]*object
	// Objects released while a frame was recording. They are destroyed once
	// the frame has been submitted and the device is idle.
	graveyard []*object

	initialized   bool
	frameBegun    bool
	passBegun     bool
	recreate      bool
	removedReason metadata.Result

	debug bool
}

// New returns a renderer presenting to the window of p. With debug set the
// validation layer is enabled and its reports are pushed to the message
// queue.
func New(p *platform.Platform, debug bool, queueSize int) *VulkanRenderer {
	vr := &VulkanRenderer{
		platform: p,
		context:  &VulkanContext{},
		queue:    diagnostics.NewQueue(queueSize),
		objects:  make(map[metadata.Handle]*object),
		debug:    debug,
	}
	vr.ctx = &commandContext{vr: vr}
	return vr
}

func (vr *VulkanRenderer) Initialize(appName string, appWidth, appHeight uint32) metadata.Result {
	procAddr := glfw.GetVulkanGetInstanceProcAddress()
	if procAddr == nil {
		core.LogError("GetInstanceProcAddress is nil")
		return metadata.ResultUnsupported
	}
	vk.SetGetInstanceProcAddr(procAddr)

	if err := vk.Init(); err != nil {
		core.LogError("failed to initialize vk: %s", err)
		return metadata.ResultUnsupported
	}

	vr.context.FramebufferWidth = appWidth
	vr.context.FramebufferHeight = appHeight

	if res := vr.createInstance(appName); res.Failed() {
		return res
	}

	if vr.debug {
		core.LogDebug("Creating Vulkan debugger...")
		debugCreateInfo := vk.DebugReportCallbackCreateInfo{
			SType:       vk.StructureTypeDebugReportCallbackCreateInfo,
			Flags:       vk.DebugReportFlags(vk.DebugReportErrorBit | vk.DebugReportWarningBit | vk.DebugReportPerformanceWarningBit | vk.DebugReportInformationBit),
			PfnCallback: vr.debugCallback,
		}
		var dbg vk.DebugReportCallback
		if res := vk.CreateDebugReportCallback(vr.context.Instance, &debugCreateInfo, vr.context.Allocator, &dbg); res != vk.Success {
			core.LogError("vkCreateDebugReportCallbackEXT failed with %s", VulkanResultString(res))
			return toResult(res)
		}
		vr.context.debugReport = dbg
		core.LogDebug("Vulkan debugger created.")
	}

	core.LogDebug("Creating Vulkan surface...")
	surface, err := vr.platform.CreateWindowSurface(vr.context.Instance)
	if err != nil {
		core.LogError("Vulkan surface creation failed: %s", err)
		return metadata.ResultDriverInternalError
	}
	vr.context.Surface = vk.SurfaceFromPointer(surface)
	core.LogDebug("Vulkan surface created.")

	requirements := &VulkanPhysicalDeviceRequirements{PreferDiscreteGPU: true}
	if err := DeviceCreate(vr.context, requirements); err != nil {
		core.LogError("Failed to create device: %s", err)
		return metadata.ResultUnsupported
	}

	sc, err := SwapchainCreate(vr.context, appWidth, appHeight, vk.NullSwapchain)
	if err != nil {
		core.LogError("Failed to create swapchain: %s", err)
		return metadata.ResultDriverInternalError
	}
	vr.context.Swapchain = sc

	rp, err := RenderpassCreate(vr.context, sc.ImageFormat.Format, [4]float32{0, 0, 0, 1})
	if err != nil {
		core.LogError("%s", err)
		return metadata.ResultDriverInternalError
	}
	vr.context.MainRenderpass = rp

	if err := sc.RegenerateFramebuffers(vr.context, rp); err != nil {
		core.LogError("%s", err)
		return metadata.ResultDriverInternalError
	}
	vr.context.FramebufferWidth = sc.Extent.Width
	vr.context.FramebufferHeight = sc.Extent.Height
	vr.context.ImagesInFlight = make([]vk.Fence, len(sc.Images))

	for i := range vr.context.Frames {
		frame, err := NewVulkanFrame(vr.context)
		if err != nil {
			core.LogError("%s", err)
			return metadata.ResultOutOfMemory
		}
		vr.context.Frames[i] = frame
	}

	descriptors, err := NewDescriptors(vr.context)
	if err != nil {
		core.LogError("%s", err)
		return metadata.ResultOutOfMemory
	}
	vr.descriptors = descriptors

	layout, err := NewPipelineLayout(vr.context, descriptors.Layout)
	if err != nil {
		core.LogError("%s", err)
		return metadata.ResultOutOfMemory
	}
	vr.pipelines = newPipelineCache(layout)

	white := metadata.NewSurface(1, 1)
	white.PutPixel(0, 0, math.Colour{R: 255, G: 255, B: 255, A: 255})
	if vr.whiteTexture, err = NewTexture(vr.context, white); err != nil {
		core.LogError("%s", err)
		return metadata.ResultOutOfMemory
	}
	if vr.defaultSampler, err = vr.newSampler(metadata.SamplerDesc{}); err != nil {
		core.LogError("%s", err)
		return metadata.ResultOutOfMemory
	}

	vr.initialized = true
	core.LogInfo("Vulkan renderer initialized successfully.")
	return metadata.ResultSuccess
}

func (vr *VulkanRenderer) createInstance(appName string) metadata.Result {
	appInfo := &vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		ApiVersion:         uint32(vk.MakeVersion(1, 1, 0)),
		ApplicationVersion: uint32(vk.MakeVersion(1, 0, 0)),
		PApplicationName:   VulkanSafeString(appName),
		PEngineName:        VulkanSafeString("Orrery"),
	}
	createInfo := vk.InstanceCreateInfo{
		SType:            vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo: appInfo,
	}

	extensions := vr.platform.GetRequiredExtensionNames()
	if runtime.GOOS == "darwin" {
		extensions = append(extensions,
			"VK_KHR_portability_enumeration",
			"VK_KHR_get_physical_device_properties2",
		)
		// VK_INSTANCE_CREATE_ENUMERATE_PORTABILITY_BIT_KHR
		createInfo.Flags |= 1
	}

	var layers []string
	if vr.debug {
		extensions = append(extensions, vk.ExtDebugReportExtensionName)
		if vr.layerAvailable(validationLayer) {
			layers = append(layers, validationLayer)
			core.LogInfo("Validation layers enabled.")
		} else {
			core.LogWarn("Validation layer %s is missing, device messages are limited to the renderer's own checks.", validationLayer)
		}
	}
	for _, ext := range extensions {
		core.LogDebug("Required extension: %s", ext)
	}

	createInfo.EnabledExtensionCount = uint32(len(extensions))
	createInfo.PpEnabledExtensionNames = VulkanSafeStrings(extensions)
	createInfo.EnabledLayerCount = uint32(len(layers))
	createInfo.PpEnabledLayerNames = VulkanSafeStrings(layers)

	if res := vk.CreateInstance(&createInfo, vr.context.Allocator, &vr.context.Instance); res != vk.Success {
		core.LogError("failed in creating the Vulkan Instance with error `%s`", VulkanResultString(res))
		return toResult(res)
	}
	if err := vk.InitInstance(vr.context.Instance); err != nil {
		core.LogError("%s", err)
		return metadata.ResultDriverInternalError
	}
	core.LogInfo("Vulkan Instance created.")
	return metadata.ResultSuccess
}

func (vr *VulkanRenderer) layerAvailable(name string) bool {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return false
	}
	available := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, available); res != vk.Success {
		return false
	}
	for i := range available {
		available[i].Deref()
		if cString(available[i].LayerName[:]) == name {
			return true
		}
	}
	return false
}

func (vr *VulkanRenderer) Shutdown() error {
	if !vr.initialized {
		return fmt.Errorf("vulkan backend shut down before initialization: %w", core.ErrNotInitialized)
	}
	vr.initialized = false
	context := vr.context
	device := context.Device.LogicalDevice
	vk.DeviceWaitIdle(device)

	// Destroy in the opposite order of creation.
	for h, obj := range vr.objects {
		vr.destroyObject(obj)
		delete(vr.objects, h)
	}
	vr.flushGraveyard()

	if vr.defaultSampler != nil {
		vk.DestroySampler(device, vr.defaultSampler, context.Allocator)
		vr.defaultSampler = nil
	}
	if vr.whiteTexture != nil {
		vr.whiteTexture.ImageDestroy(context)
		vr.whiteTexture = nil
	}
	if vr.pipelines != nil {
		vr.pipelines.destroy(context)
	}
	if vr.descriptors != nil {
		vr.descriptors.Destroy(context)
	}

	for i, frame := range context.Frames {
		if frame != nil {
			frame.Destroy(context)
			context.Frames[i] = nil
		}
	}
	context.ImagesInFlight = nil

	if context.MainRenderpass != nil {
		context.MainRenderpass.RenderpassDestroy(context)
	}
	if context.Swapchain != nil {
		context.Swapchain.SwapchainDestroy(context)
	}

	core.LogDebug("Destroying Vulkan device...")
	DeviceDestroy(context)

	core.LogDebug("Destroying Vulkan surface...")
	if context.Surface != vk.NullSurface {
		vk.DestroySurface(context.Instance, context.Surface, context.Allocator)
		context.Surface = vk.NullSurface
	}

	if context.debugReport != vk.NullDebugReportCallback {
		core.LogDebug("Destroying Vulkan debugger...")
		vk.DestroyDebugReportCallback(context.Instance, context.debugReport, context.Allocator)
		context.debugReport = vk.NullDebugReportCallback
	}

	core.LogDebug("Destroying Vulkan instance...")
	vk.DestroyInstance(context.Instance, context.Allocator)
	return nil
}

// Occluded reports a minimized window or a zero sized framebuffer.
func (vr *VulkanRenderer) Occluded() bool {
	if vr.platform.Iconified() {
		return true
	}
	w, h := vr.platform.FramebufferSize()
	return w == 0 || h == 0
}

func (vr *VulkanRenderer) BackBufferSize() (uint32, uint32) {
	return vr.context.FramebufferWidth, vr.context.FramebufferHeight
}

func (vr *VulkanRenderer) Resize(width, height uint32) metadata.Result {
	if width == 0 || height == 0 {
		vr.emit(diagnostics.SeverityError, "Resize: zero sized back buffer %dx%d", width, height)
		return metadata.ResultInvalidArgument
	}
	if vr.frameBegun {
		vr.emit(diagnostics.SeverityError, "Resize: called while a frame is recording")
		return metadata.ResultInvalidCall
	}
	if err := vr.recreateSwapchain(width, height); err != nil {
		core.LogError("failed to recreate the swapchain: %s", err)
		return metadata.ResultDriverInternalError
	}
	core.LogInfo("Vulkan renderer backend resized: %dx%d", vr.context.FramebufferWidth, vr.context.FramebufferHeight)
	return metadata.ResultSuccess
}

func (vr *VulkanRenderer) recreateSwapchain(width, height uint32) error {
	context := vr.context
	vk.DeviceWaitIdle(context.Device.LogicalDevice)

	old := context.Swapchain
	sc, err := SwapchainCreate(context, width, height, old.Handle)
	if err != nil {
		return err
	}
	old.SwapchainDestroy(context)
	context.Swapchain = sc

	if err := sc.RegenerateFramebuffers(context, context.MainRenderpass); err != nil {
		return err
	}
	context.FramebufferWidth = sc.Extent.Width
	context.FramebufferHeight = sc.Extent.Height
	context.ImagesInFlight = make([]vk.Fence, len(sc.Images))
	vr.recreate = false
	return nil
}

func (vr *VulkanRenderer) BeginFrame() metadata.Result {
	if vr.removedReason != metadata.ResultSuccess {
		return metadata.ResultDeviceRemoved
	}
	if vr.frameBegun {
		vr.emit(diagnostics.SeverityError, "BeginFrame: previous frame was not presented")
		return metadata.ResultInvalidCall
	}
	if vr.Occluded() {
		return metadata.ResultOccluded
	}

	context := vr.context
	frame := context.Frame()
	if res := frame.Wait(context); res != vk.Success {
		return vr.fail("vkWaitForFences", res)
	}

	imageIndex, res := context.Swapchain.SwapchainAcquireNextImageIndex(context, frame.ImageAvailable)
	switch {
	case res == vk.ErrorOutOfDate:
		w, h := vr.platform.FramebufferSize()
		if err := vr.recreateSwapchain(w, h); err != nil {
			core.LogWarn("failed to recreate the swapchain: %s", err)
		}
		return metadata.ResultOccluded
	case res == vk.Suboptimal:
		vr.recreate = true
	case !VulkanResultIsSuccess(res):
		return vr.fail("vkAcquireNextImageKHR", res)
	}
	context.ImageIndex = imageIndex

	// Make sure the previous frame is not using this image.
	if fence := context.ImagesInFlight[imageIndex]; fence != vk.NullFence && fence != frame.InFlight {
		if res := vk.WaitForFences(context.Device.LogicalDevice, 1, []vk.Fence{fence}, vk.True, frameTimeout); res != vk.Success {
			return vr.fail("vkWaitForFences", res)
		}
	}
	context.ImagesInFlight[imageIndex] = frame.InFlight

	cb := frame.CommandBuffer
	if err := cb.Reset(); err != nil {
		core.LogError("%s", err)
		return metadata.ResultDriverInternalError
	}
	if err := cb.Begin(true, false, false); err != nil {
		core.LogError("%s", err)
		return metadata.ResultDriverInternalError
	}
	frame.uniforms.reset()

	// Flip Y so clip space points up as it does on the other backends.
	viewport := vk.Viewport{
		X:        0.0,
		Y:        float32(context.FramebufferHeight),
		Width:    float32(context.FramebufferWidth),
		Height:   -float32(context.FramebufferHeight),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	scissor := vk.Rect2D{
		Extent: vk.Extent2D{
			Width:  context.FramebufferWidth,
			Height: context.FramebufferHeight,
		},
	}
	vk.CmdSetViewport(cb.Handle, 0, 1, []vk.Viewport{viewport})
	vk.CmdSetScissor(cb.Handle, 0, 1, []vk.Rect2D{scissor})

	vr.frameBegun = true
	vr.passBegun = false
	return metadata.ResultSuccess
}

// ClearBuffer sets the colour the pass starts with. Once the pass is
// running the attachments are cleared in place.
func (vr *VulkanRenderer) ClearBuffer(rgba [4]float32) {
	if !vr.frameBegun {
		vr.emit(diagnostics.SeverityWarning, "ClearBuffer: no frame is recording")
		return
	}
	vr.context.MainRenderpass.ClearColour = rgba
	if vr.passBegun {
		vr.context.MainRenderpass.Clear(vr.context.Frame().CommandBuffer)
		return
	}
	vr.beginPass()
}

func (vr *VulkanRenderer) beginPass() {
	context := vr.context
	context.MainRenderpass.RenderpassBegin(context.Frame().CommandBuffer, context.Swapchain.Framebuffers[context.ImageIndex])
	vr.passBegun = true
}

func (vr *VulkanRenderer) Present() metadata.Result {
	if vr.removedReason != metadata.ResultSuccess {
		return metadata.ResultDeviceRemoved
	}
	if !vr.frameBegun {
		vr.emit(diagnostics.SeverityError, "Present: no frame is recording")
		return metadata.ResultInvalidCall
	}
	context := vr.context
	frame := context.Frame()
	cb := frame.CommandBuffer

	// The pass moves the image into the present layout.
	if !vr.passBegun {
		vr.beginPass()
	}
	context.MainRenderpass.RenderpassEnd(cb)
	vr.passBegun = false
	vr.frameBegun = false
	if err := cb.End(); err != nil {
		core.LogError("%s", err)
		return metadata.ResultDriverInternalError
	}

	if res := vk.ResetFences(context.Device.LogicalDevice, 1, []vk.Fence{frame.InFlight}); res != vk.Success {
		return vr.fail("vkResetFences", res)
	}
	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{frame.ImageAvailable},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{cb.Handle},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{frame.QueueComplete},
	}
	if res := vk.QueueSubmit(context.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, frame.InFlight); res != vk.Success {
		return vr.fail("vkQueueSubmit", res)
	}
	cb.UpdateSubmitted()

	res := context.Swapchain.SwapchainPresent(context, frame.QueueComplete, context.ImageIndex)
	context.CurrentFrame = (context.CurrentFrame + 1) % maxFramesInFlight
	vr.FrameNumber++

	if len(vr.graveyard) > 0 {
		vk.DeviceWaitIdle(context.Device.LogicalDevice)
		vr.flushGraveyard()
	}

	switch {
	case res == vk.ErrorOutOfDate || res == vk.Suboptimal || vr.recreate:
		if w, h := vr.platform.FramebufferSize(); w != 0 && h != 0 {
			if err := vr.recreateSwapchain(w, h); err != nil {
				core.LogWarn("failed to recreate the swapchain: %s", err)
			}
		}
		if res == vk.ErrorOutOfDate {
			return metadata.ResultOccluded
		}
	case !VulkanResultIsSuccess(res):
		return vr.fail("vkQueuePresentKHR", res)
	}
	return metadata.ResultSuccess
}

func (vr *VulkanRenderer) DeviceRemovedReason() metadata.Result {
	return vr.removedReason
}

// fail reports a failed device call. Losing the device is sticky.
func (vr *VulkanRenderer) fail(op string, res vk.Result) metadata.Result {
	result := toResult(res)
	if result == metadata.ResultDeviceRemoved || result == metadata.ResultDeviceHung {
		vr.removedReason = result
	}
	vr.emit(diagnostics.SeverityError, "%s failed with %s", op, VulkanResultString(res))
	return result
}

func (vr *VulkanRenderer) CreateBuffer(desc metadata.BufferDesc, data []byte) (metadata.Handle, metadata.Result) {
	switch {
	case desc.Size == 0:
		vr.emit(diagnostics.SeverityError, "CreateBuffer: zero sized %s buffer", desc.Kind)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	case desc.Kind == metadata.BufferKindIndex && desc.Size%metadata.IndexSize != 0:
		vr.emit(diagnostics.SeverityError, "CreateBuffer: index buffer size %d is not a multiple of %d", desc.Size, metadata.IndexSize)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	case desc.Kind == metadata.BufferKindConstant && desc.Size%16 != 0:
		vr.emit(diagnostics.SeverityError, "CreateBuffer: constant buffer size %d is not a multiple of 16", desc.Size)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	case desc.Kind == metadata.BufferKindConstant && desc.Size > maxConstantBufferSize:
		vr.emit(diagnostics.SeverityError, "CreateBuffer: constant buffer size %d exceeds %d", desc.Size, maxConstantBufferSize)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	case uint32(len(data)) > desc.Size:
		vr.emit(diagnostics.SeverityError, "CreateBuffer: %d bytes of initial data for a %d byte buffer", len(data), desc.Size)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}

	obj := &object{kind: kindBuffer, desc: desc}
	if desc.Kind == metadata.BufferKindConstant {
		obj.shadow = make([]byte, desc.Size)
		copy(obj.shadow, data)
		return vr.add(obj), metadata.ResultSuccess
	}

	usage := vk.BufferUsageFlags(vk.BufferUsageVertexBufferBit)
	if desc.Kind == metadata.BufferKindIndex {
		usage = vk.BufferUsageFlags(vk.BufferUsageIndexBufferBit)
	}
	var (
		buffer *VulkanBuffer
		err    error
	)
	if desc.Dynamic {
		buffer, err = vr.newDynamicBuffer(usage, desc.Size, data)
	} else {
		buffer, err = NewDeviceLocalBuffer(vr.context, usage, uint64(desc.Size), data)
	}
	if err != nil {
		vr.emit(diagnostics.SeverityError, "CreateBuffer: %s", err)
		return metadata.InvalidHandle, metadata.ResultOutOfMemory
	}
	obj.buffer = buffer
	return vr.add(obj), metadata.ResultSuccess
}

func (vr *VulkanRenderer) newDynamicBuffer(usage vk.BufferUsageFlags, size uint32, data []byte) (*VulkanBuffer, error) {
	buffer, err := NewBuffer(vr.context, uint64(size), usage,
		vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit|vk.MemoryPropertyHostCoherentBit))
	if err != nil {
		return nil, err
	}
	if err := buffer.Map(vr.context); err != nil {
		buffer.Destroy(vr.context)
		return nil, err
	}
	if err := buffer.LoadData(vr.context, 0, data); err != nil {
		buffer.Destroy(vr.context)
		return nil, err
	}
	return buffer, nil
}

func (vr *VulkanRenderer) UpdateBuffer(h metadata.Handle, data []byte) metadata.Result {
	obj, ok := vr.live(h, kindBuffer)
	if !ok {
		vr.emit(diagnostics.SeverityError, "UpdateBuffer: %d is not a live buffer", h)
		return metadata.ResultInvalidCall
	}
	if !obj.desc.Dynamic {
		vr.emit(diagnostics.SeverityError, "UpdateBuffer: %s buffer %d is immutable", obj.desc.Kind, h)
		return metadata.ResultInvalidCall
	}
	if uint32(len(data)) > obj.desc.Size {
		vr.emit(diagnostics.SeverityError, "UpdateBuffer: %d bytes written to a %d byte buffer", len(data), obj.desc.Size)
		return metadata.ResultInvalidArgument
	}
	if obj.shadow != nil {
		copy(obj.shadow, data)
		return metadata.ResultSuccess
	}
	if err := obj.buffer.LoadData(vr.context, 0, data); err != nil {
		vr.emit(diagnostics.SeverityError, "UpdateBuffer: %s", err)
		return metadata.ResultDriverInternalError
	}
	return metadata.ResultSuccess
}

func (vr *VulkanRenderer) CreateShader(program *shader.Program) (metadata.Handle, metadata.Result) {
	stage, err := NewShaderStage(vr.context, program)
	if err != nil {
		vr.emit(diagnostics.SeverityError, "CreateShader: %s", err)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	return vr.add(&object{kind: kindShader, stage: stage}), metadata.ResultSuccess
}

// CreateInputLayout maps elements to vertex attributes of binding 0. Every
// input of the vertex program must be fed by an element at its location.
func (vr *VulkanRenderer) CreateInputLayout(elements []metadata.VertexElement, vs metadata.Handle) (metadata.Handle, metadata.Result) {
	obj, ok := vr.live(vs, kindShader)
	if !ok || obj.stage.Program.Stage != metadata.StageVertex {
		vr.emit(diagnostics.SeverityError, "CreateInputLayout: %d is not a vertex shader", vs)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	if len(elements) == 0 {
		vr.emit(diagnostics.SeverityError, "CreateInputLayout: no elements")
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}

	byLocation := make(map[uint32]metadata.VertexElement, len(elements))
	attributes := make([]vk.VertexInputAttributeDescription, 0, len(elements))
	for _, e := range elements {
		format, ok := toVulkanFormat(e.Format)
		if !ok {
			vr.emit(diagnostics.SeverityError, "CreateInputLayout: element %s has an unsupported format", e.SemanticName)
			return metadata.InvalidHandle, metadata.ResultInvalidArgument
		}
		if _, dup := byLocation[e.Location]; dup {
			vr.emit(diagnostics.SeverityError, "CreateInputLayout: location %d is used twice", e.Location)
			return metadata.InvalidHandle, metadata.ResultInvalidArgument
		}
		byLocation[e.Location] = e
		attributes = append(attributes, vk.VertexInputAttributeDescription{
			Location: e.Location,
			Binding:  0,
			Format:   format,
			Offset:   e.Offset,
		})
	}
	for _, in := range obj.stage.Program.Inputs {
		e, ok := byLocation[in.Location]
		if !ok {
			vr.emit(diagnostics.SeverityError, "CreateInputLayout: vertex input %s at location %d has no element", in.Name, in.Location)
			return metadata.InvalidHandle, metadata.ResultInvalidArgument
		}
		if in.Format != metadata.FormatUnknown && in.Format != e.Format {
			vr.emit(diagnostics.SeverityWarning, "CreateInputLayout: element %s does not match the type of vertex input %s", e.SemanticName, in.Name)
		}
	}
	return vr.add(&object{kind: kindInputLayout, attributes: attributes}), metadata.ResultSuccess
}

func (vr *VulkanRenderer) CreateTexture(surface *metadata.Surface) (metadata.Handle, metadata.Result) {
	if err := surface.Validate(); err != nil {
		vr.emit(diagnostics.SeverityError, "CreateTexture: %s", err)
		return metadata.InvalidHandle, metadata.ResultInvalidArgument
	}
	image, err := NewTexture(vr.context, surface)
	if err != nil {
		vr.emit(diagnostics.SeverityError, "CreateTexture: %s", err)
		return metadata.InvalidHandle, metadata.ResultOutOfMemory
	}
	return vr.add(&object{kind: kindTexture, image: image}), metadata.ResultSuccess
}

func (vr *VulkanRenderer) CreateSampler(desc metadata.SamplerDesc) (metadata.Handle, metadata.Result) {
	sampler, err := vr.newSampler(desc)
	if err != nil {
		vr.emit(diagnostics.SeverityError, "CreateSampler: %s", err)
		return metadata.InvalidHandle, metadata.ResultOutOfMemory
	}
	return vr.add(&object{kind: kindSampler, sampler: sampler}), metadata.ResultSuccess
}

func (vr *VulkanRenderer) newSampler(desc metadata.SamplerDesc) (vk.Sampler, error) {
	filter, mipmap := toVulkanFilter(desc.Filter)
	address := toVulkanAddressMode(desc.AddressMode)
	createInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               filter,
		MinFilter:               filter,
		MipmapMode:              mipmap,
		AddressModeU:            address,
		AddressModeV:            address,
		AddressModeW:            address,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(vr.context.Device.LogicalDevice, &createInfo, vr.context.Allocator, &sampler); res != vk.Success {
		return nil, fmt.Errorf("vkCreateSampler failed with %s", VulkanResultString(res))
	}
	return sampler, nil
}

// Release destroys the object behind h. Objects released while a frame is
// recording are kept alive until that frame has been submitted.
func (vr *VulkanRenderer) Release(h metadata.Handle) {
	obj, ok := vr.objects[h]
	if !ok {
		vr.emit(diagnostics.SeverityWarning, "Release: %d is not a live object", h)
		return
	}
	delete(vr.objects, h)

	switch obj.kind {
	case kindTexture, kindSampler:
		vr.descriptors.Forget(vr.context, h)
	case kindShader, kindInputLayout:
		vr.pipelines.forget(vr.context, h)
	}

	if vr.frameBegun {
		vr.graveyard = append(vr.graveyard, obj)
		return
	}
	vk.DeviceWaitIdle(vr.context.Device.LogicalDevice)
	vr.destroyObject(obj)
}

func (vr *VulkanRenderer) destroyObject(obj *object) {
	context := vr.context
	switch obj.kind {
	case kindBuffer:
		if obj.buffer != nil {
			obj.buffer.Destroy(context)
		}
	case kindShader:
		obj.stage.Destroy(context)
	case kindTexture:
		obj.image.ImageDestroy(context)
	case kindSampler:
		vk.DestroySampler(context.Device.LogicalDevice, obj.sampler, context.Allocator)
	}
}

func (vr *VulkanRenderer) flushGraveyard() {
	for _, obj := range vr.graveyard {
		vr.destroyObject(obj)
	}
	vr.graveyard = nil
}

func (vr *VulkanRenderer) Messages() *diagnostics.Queue {
	return vr.queue
}

func (vr *VulkanRenderer) Context() metadata.CommandContext {
	return vr.ctx
}

func (vr *VulkanRenderer) add(obj *object) metadata.Handle {
	vr.next++
	vr.objects[vr.next] = obj
	return vr.next
}

func (vr *VulkanRenderer) live(h metadata.Handle, kind objectKind) (*object, bool) {
	obj, ok := vr.objects[h]
	if !ok || obj.kind != kind {
		return nil, false
	}
	return obj, true
}

func (vr *VulkanRenderer) emit(severity diagnostics.Severity, format string, args ...interface{}) {
	vr.queue.Push(diagnostics.Message{
		Severity: severity,
		Source:   messageSource,
		Text:     fmt.Sprintf(format, args...),
	})
}

// debugCallback forwards validation layer reports to the message queue. It
// may run on a driver thread.
func (vr *VulkanRenderer) debugCallback(flags vk.DebugReportFlags, objectType vk.DebugReportObjectType, objectHandle uint64, location uint64, messageCode int32, pLayerPrefix string, pMessage string, pUserData unsafe.Pointer) vk.Bool32 {
	severity := diagnostics.SeverityInfo
	switch {
	case flags&vk.DebugReportFlags(vk.DebugReportErrorBit) != 0:
		severity = diagnostics.SeverityError
	case flags&vk.DebugReportFlags(vk.DebugReportWarningBit|vk.DebugReportPerformanceWarningBit) != 0:
		severity = diagnostics.SeverityWarning
	}
	core.LogDebug("[%s] Code %d : %s", pLayerPrefix, messageCode, pMessage)
	vr.queue.Push(diagnostics.Message{
		Severity: severity,
		Source:   pLayerPrefix,
		ID:       messageCode,
		Text:     pMessage,
	})
	return vk.Bool32(vk.False)
}
