package vulkan

import (
	"fmt"
	"math"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/orrery/engine/core"
	"golang.org/x/exp/constraints"
)

type VulkanSwapchain struct {
	ImageFormat vk.SurfaceFormat
	Handle      vk.Swapchain
	Extent      vk.Extent2D
	Images      []vk.Image
	Views       []vk.ImageView

	DepthAttachment *VulkanImage

	// Framebuffers used for on-screen rendering, one per image.
	Framebuffers []vk.Framebuffer
}

type VulkanSwapchainSupportInfo struct {
	Capabilities vk.SurfaceCapabilities
	Formats      []vk.SurfaceFormat
	PresentModes []vk.PresentMode
}

func clamp[T constraints.Ordered](v, lo, hi T) T {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// SwapchainCreate builds the swapchain, its views, the depth attachment and
// one framebuffer per image for renderpass.
func SwapchainCreate(context *VulkanContext, width, height uint32, old vk.Swapchain) (*VulkanSwapchain, error) {
	support, err := DeviceQuerySwapchainSupport(context.Device.PhysicalDevice, context.Surface)
	if err != nil {
		return nil, err
	}
	context.Device.SwapchainSupport = support
	capabilities := support.Capabilities

	swapchain := &VulkanSwapchain{ImageFormat: support.Formats[0]}
	for _, format := range support.Formats {
		// Preferred format.
		if format.Format == vk.FormatB8g8r8a8Unorm && format.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			swapchain.ImageFormat = format
			break
		}
	}

	presentMode := vk.PresentModeFifo
	for _, mode := range support.PresentModes {
		if mode == vk.PresentModeMailbox {
			presentMode = mode
			break
		}
	}

	extent := vk.Extent2D{Width: width, Height: height}
	if capabilities.CurrentExtent.Width != math.MaxUint32 {
		extent = capabilities.CurrentExtent
	}
	// Clamp to the value allowed by the GPU.
	extent.Width = clamp(extent.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	extent.Height = clamp(extent.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)
	if extent.Width == 0 || extent.Height == 0 {
		return nil, fmt.Errorf("surface extent is %dx%d", extent.Width, extent.Height)
	}
	swapchain.Extent = extent

	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && imageCount > capabilities.MaxImageCount {
		imageCount = capabilities.MaxImageCount
	}

	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          context.Surface,
		MinImageCount:    imageCount,
		ImageFormat:      swapchain.ImageFormat.Format,
		ImageColorSpace:  swapchain.ImageFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     capabilities.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      presentMode,
		Clipped:          vk.True,
		OldSwapchain:     old,
	}
	if context.Device.GraphicsQueueIndex != context.Device.PresentQueueIndex {
		createInfo.ImageSharingMode = vk.SharingModeConcurrent
		createInfo.QueueFamilyIndexCount = 2
		createInfo.PQueueFamilyIndices = []uint32{
			context.Device.GraphicsQueueIndex,
			context.Device.PresentQueueIndex,
		}
	}

	device := context.Device.LogicalDevice
	var handle vk.Swapchain
	if res := vk.CreateSwapchain(device, &createInfo, context.Allocator, &handle); res != vk.Success {
		return nil, fmt.Errorf("vkCreateSwapchainKHR failed with %s", VulkanResultString(res))
	}
	swapchain.Handle = handle

	var count uint32
	if res := vk.GetSwapchainImages(device, handle, &count, nil); res != vk.Success {
		swapchain.SwapchainDestroy(context)
		return nil, fmt.Errorf("vkGetSwapchainImagesKHR failed with %s", VulkanResultString(res))
	}
	swapchain.Images = make([]vk.Image, count)
	if res := vk.GetSwapchainImages(device, handle, &count, swapchain.Images); res != vk.Success {
		swapchain.SwapchainDestroy(context)
		return nil, fmt.Errorf("vkGetSwapchainImagesKHR failed with %s", VulkanResultString(res))
	}

	swapchain.Views = make([]vk.ImageView, count)
	for i, image := range swapchain.Images {
		viewInfo := vk.ImageViewCreateInfo{
			SType:    vk.StructureTypeImageViewCreateInfo,
			Image:    image,
			ViewType: vk.ImageViewType2d,
			Format:   swapchain.ImageFormat.Format,
			SubresourceRange: vk.ImageSubresourceRange{
				AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
				LevelCount: 1,
				LayerCount: 1,
			},
		}
		if res := vk.CreateImageView(device, &viewInfo, context.Allocator, &swapchain.Views[i]); res != vk.Success {
			swapchain.SwapchainDestroy(context)
			return nil, fmt.Errorf("vkCreateImageView failed with %s", VulkanResultString(res))
		}
	}

	depth, err := ImageCreate(
		context,
		extent.Width,
		extent.Height,
		context.Device.DepthFormat,
		vk.ImageTilingOptimal,
		vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit),
		true,
		vk.ImageAspectFlags(vk.ImageAspectDepthBit))
	if err != nil {
		swapchain.SwapchainDestroy(context)
		return nil, err
	}
	swapchain.DepthAttachment = depth

	core.LogInfo("Swapchain created: %d images of %dx%d.", count, extent.Width, extent.Height)
	return swapchain, nil
}

// RegenerateFramebuffers creates one framebuffer per swapchain image.
func (vs *VulkanSwapchain) RegenerateFramebuffers(context *VulkanContext, renderpass *VulkanRenderpass) error {
	vs.destroyFramebuffers(context)
	vs.Framebuffers = make([]vk.Framebuffer, len(vs.Views))
	for i, view := range vs.Views {
		attachments := []vk.ImageView{view, vs.DepthAttachment.View}
		createInfo := vk.FramebufferCreateInfo{
			SType:           vk.StructureTypeFramebufferCreateInfo,
			RenderPass:      renderpass.Handle,
			AttachmentCount: uint32(len(attachments)),
			PAttachments:    attachments,
			Width:           vs.Extent.Width,
			Height:          vs.Extent.Height,
			Layers:          1,
		}
		if res := vk.CreateFramebuffer(context.Device.LogicalDevice, &createInfo, context.Allocator, &vs.Framebuffers[i]); res != vk.Success {
			return fmt.Errorf("vkCreateFramebuffer failed with %s", VulkanResultString(res))
		}
	}
	renderpass.W = vs.Extent.Width
	renderpass.H = vs.Extent.Height
	return nil
}

func (vs *VulkanSwapchain) destroyFramebuffers(context *VulkanContext) {
	for _, fb := range vs.Framebuffers {
		if fb != vk.NullFramebuffer {
			vk.DestroyFramebuffer(context.Device.LogicalDevice, fb, context.Allocator)
		}
	}
	vs.Framebuffers = nil
}

// SwapchainAcquireNextImageIndex returns the next image to render into.
// vk.ErrorOutOfDate is passed through for the caller to recreate.
func (vs *VulkanSwapchain) SwapchainAcquireNextImageIndex(context *VulkanContext, imageAvailable vk.Semaphore) (uint32, vk.Result) {
	var index uint32
	res := vk.AcquireNextImage(context.Device.LogicalDevice, vs.Handle, frameTimeout, imageAvailable, vk.NullFence, &index)
	return index, res
}

// SwapchainPresent gives imageIndex back to the swapchain once
// renderComplete is signaled.
func (vs *VulkanSwapchain) SwapchainPresent(context *VulkanContext, renderComplete vk.Semaphore, imageIndex uint32) vk.Result {
	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{renderComplete},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{vs.Handle},
		PImageIndices:      []uint32{imageIndex},
	}
	return vk.QueuePresent(context.Device.PresentQueue, &presentInfo)
}

func (vs *VulkanSwapchain) SwapchainDestroy(context *VulkanContext) {
	device := context.Device.LogicalDevice
	vs.destroyFramebuffers(context)
	if vs.DepthAttachment != nil {
		vs.DepthAttachment.ImageDestroy(context)
		vs.DepthAttachment = nil
	}
	// Only destroy the views, the images are owned by the swapchain.
	for _, view := range vs.Views {
		if view != vk.NullImageView {
			vk.DestroyImageView(device, view, context.Allocator)
		}
	}
	vs.Views = nil
	if vs.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, vs.Handle, context.Allocator)
		vs.Handle = vk.NullSwapchain
	}
}
