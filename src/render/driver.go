package render

// Driver is the GPU API surface the presentation core is written against.
// Every method maps onto one Vulkan entry point; the vkdriver package
// provides the production implementation.
type Driver interface {
	Results

	InstanceLayers() ([]string, Result)
	CreateInstance(info InstanceInfo) (Instance, Result)
	DestroyInstance(instance Instance)
	DestroySurface(instance Instance, surface Surface)

	EnumeratePhysicalDevices(instance Instance) ([]PhysicalDevice, Result)
	PhysicalDeviceProperties(gpu PhysicalDevice) PhysicalDeviceProperties
	QueueFamilies(gpu PhysicalDevice) []QueueFamilyProperties
	SurfaceSupport(gpu PhysicalDevice, family uint32, surface Surface) (bool, Result)
	SurfaceCapabilities(gpu PhysicalDevice, surface Surface) (SurfaceCapabilities, Result)
	SurfaceFormats(gpu PhysicalDevice, surface Surface) ([]SurfaceFormat, Result)
	PresentModes(gpu PhysicalDevice, surface Surface) ([]PresentMode, Result)

	CreateDevice(gpu PhysicalDevice, info DeviceInfo) (Device, Result)
	DestroyDevice(device Device)
	DeviceQueue(device Device, family uint32) Queue
	DeviceWaitIdle(device Device) Result

	CreateSwapchain(device Device, info SwapchainInfo) (Swapchain, Result)
	DestroySwapchain(device Device, swapchain Swapchain)
	SwapchainImages(device Device, swapchain Swapchain) ([]Image, Result)
	CreateImageView(device Device, image Image, format Format) (ImageView, Result)
	DestroyImageView(device Device, view ImageView)

	CreateCommandPool(device Device, family uint32) (CommandPool, Result)
	DestroyCommandPool(device Device, pool CommandPool)
	AllocateCommandBuffers(device Device, pool CommandPool, count uint32) ([]CommandBuffer, Result)
	FreeCommandBuffers(device Device, pool CommandPool, buffers []CommandBuffer)

	CreateSemaphore(device Device) (Semaphore, Result)
	DestroySemaphore(device Device, semaphore Semaphore)
	CreateFence(device Device, signaled bool) (Fence, Result)
	DestroyFence(device Device, fence Fence)
	WaitForFence(device Device, fence Fence, timeout uint64) Result
	ResetFence(device Device, fence Fence) Result

	AcquireNextImage(device Device, swapchain Swapchain, timeout uint64, signal Semaphore) (uint32, Result)
	QueueSubmit(queue Queue, info SubmitInfo, fence Fence) Result
	QueuePresent(queue Queue, info PresentInfo) Result

	ResetCommandBuffer(cmd CommandBuffer) Result
	BeginCommandBuffer(cmd CommandBuffer) Result
	EndCommandBuffer(cmd CommandBuffer) Result
	CmdImageBarrier(cmd CommandBuffer, barrier ImageBarrier)
	CmdBeginRendering(cmd CommandBuffer, info RenderingInfo)
	CmdEndRendering(cmd CommandBuffer)
	CmdSetViewport(cmd CommandBuffer, extent Extent2D)
	CmdSetScissor(cmd CommandBuffer, extent Extent2D)
}

type InstanceInfo struct {
	AppName    string
	APIVersion uint32
	Extensions []string
	Layers     []string
}

// DeviceInfo describes the single-queue logical device the renderer opens.
type DeviceInfo struct {
	QueueFamily      uint32
	Extensions       []string
	DynamicRendering bool
}

type SwapchainInfo struct {
	Surface      Surface
	MinImages    uint32
	Format       SurfaceFormat
	Extent       Extent2D
	PresentMode  PresentMode
	PreTransform uint32
	OldSwapchain Swapchain
}

// ImageBarrier is a single-mip, single-layer colour image layout transition.
type ImageBarrier struct {
	Image     Image
	OldLayout ImageLayout
	NewLayout ImageLayout
	SrcStage  PipelineStage
	DstStage  PipelineStage
	SrcAccess Access
	DstAccess Access
}

// RenderingInfo describes a dynamic rendering pass over one colour view
// that is cleared on load and stored on exit.
type RenderingInfo struct {
	View       ImageView
	Extent     Extent2D
	ClearColor [4]float32
}

type SubmitInfo struct {
	Wait      Semaphore
	WaitStage PipelineStage
	Command   CommandBuffer
	Signal    Semaphore
}

type PresentInfo struct {
	Wait      Semaphore
	Swapchain Swapchain
	Index     uint32
}

// SwapchainExtension is the device extension name required for presentation.
const SwapchainExtension = "VK_KHR_swapchain"

// ValidationLayer is enabled when Config.Validation is set and the loader
// reports it.
const ValidationLayer = "VK_LAYER_KHRONOS_validation"

// MakeVersion packs a Vulkan API version.
func MakeVersion(major, minor, patch uint32) uint32 {
	return major<<22 | minor<<12 | patch
}
