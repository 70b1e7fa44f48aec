// Package vkdriver implements render.Driver on top of github.com/vulkan-go/vulkan.
package vkdriver

import (
	"unsafe"

	"sandbox/src/render"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Driver talks to the Vulkan loader through vulkan-go. It serves a single
// instance and a single device at a time.
type Driver struct {
	gipa      unsafe.Pointer
	instance  vk.Instance
	rendering renderingProcs
}

// New initialises vulkan-go from the loader entry point, usually the one
// reported by the windowing library.
func New(getInstanceProcAddr unsafe.Pointer) (*Driver, error) {
	if getInstanceProcAddr == nil {
		return nil, errors.New("vkGetInstanceProcAddr is not available")
	}
	vk.SetGetInstanceProcAddr(getInstanceProcAddr)
	if err := vk.Init(); err != nil {
		return nil, errors.Wrap(err, "init vulkan")
	}
	return &Driver{gipa: getInstanceProcAddr}, nil
}

var _ render.Driver = (*Driver)(nil)

// Results names results with vulkan.Error for code that has no Driver at
// hand, such as layers creating their own pipeline objects.
var Results render.Results = results{}

type results struct{}

func (results) ResultError(r render.Result) error {
	return vk.Error(vk.Result(r))
}

func (d *Driver) ResultError(r render.Result) error {
	return vk.Error(vk.Result(r))
}

func (d *Driver) InstanceLayers() ([]string, render.Result) {
	var count uint32
	if res := vk.EnumerateInstanceLayerProperties(&count, nil); res != vk.Success {
		return nil, render.Result(res)
	}
	props := make([]vk.LayerProperties, count)
	if res := vk.EnumerateInstanceLayerProperties(&count, props); res != vk.Success {
		return nil, render.Result(res)
	}
	names := make([]string, 0, count)
	for _, p := range props[:count] {
		p.Deref()
		names = append(names, vk.ToString(p.LayerName[:]))
	}
	return names, render.Success
}

func (d *Driver) CreateInstance(info render.InstanceInfo) (render.Instance, render.Result) {
	appInfo := vk.ApplicationInfo{
		SType:              vk.StructureTypeApplicationInfo,
		PApplicationName:   safeString(info.AppName),
		ApplicationVersion: vk.MakeVersion(1, 0, 0),
		PEngineName:        safeString(info.AppName),
		EngineVersion:      vk.MakeVersion(1, 0, 0),
		ApiVersion:         info.APIVersion,
	}
	createInfo := vk.InstanceCreateInfo{
		SType:                   vk.StructureTypeInstanceCreateInfo,
		PApplicationInfo:        &appInfo,
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
		EnabledLayerCount:       uint32(len(info.Layers)),
		PpEnabledLayerNames:     safeStrings(info.Layers),
	}

	var instance vk.Instance
	if res := vk.CreateInstance(&createInfo, nil, &instance); res != vk.Success {
		return 0, render.Result(res)
	}
	if err := vk.InitInstance(instance); err != nil {
		vk.DestroyInstance(instance, nil)
		return 0, initFailed("load instance entry points", err)
	}
	d.instance = instance
	return fromInstance(instance), render.Success
}

// initFailed reports err, which a Result cannot carry, and stands in the
// generic initialization failure for it.
func initFailed(step string, err error) render.Result {
	render.Logger().Error(step+" failed", "err", err)
	return render.ErrorInitializationFailed
}

func (d *Driver) DestroyInstance(instance render.Instance) {
	vk.DestroyInstance(VkInstance(instance), nil)
	d.instance = nil
}

func (d *Driver) DestroySurface(instance render.Instance, surface render.Surface) {
	vk.DestroySurface(VkInstance(instance), VkSurface(surface), nil)
}

func (d *Driver) EnumeratePhysicalDevices(instance render.Instance) ([]render.PhysicalDevice, render.Result) {
	var count uint32
	if res := vk.EnumeratePhysicalDevices(VkInstance(instance), &count, nil); res != vk.Success {
		return nil, render.Result(res)
	}
	gpus := make([]vk.PhysicalDevice, count)
	if res := vk.EnumeratePhysicalDevices(VkInstance(instance), &count, gpus); res != vk.Success {
		return nil, render.Result(res)
	}
	out := make([]render.PhysicalDevice, count)
	for i := range out {
		out[i] = fromPhysicalDevice(gpus[i])
	}
	return out, render.Success
}

func (d *Driver) PhysicalDeviceProperties(gpu render.PhysicalDevice) render.PhysicalDeviceProperties {
	var props vk.PhysicalDeviceProperties
	vk.GetPhysicalDeviceProperties(VkPhysicalDevice(gpu), &props)
	props.Deref()
	return render.PhysicalDeviceProperties{
		Name:       vk.ToString(props.DeviceName[:]),
		Type:       render.PhysicalDeviceType(props.DeviceType),
		APIVersion: props.ApiVersion,
	}
}

func (d *Driver) QueueFamilies(gpu render.PhysicalDevice) []render.QueueFamilyProperties {
	var count uint32
	vk.GetPhysicalDeviceQueueFamilyProperties(VkPhysicalDevice(gpu), &count, nil)
	families := make([]vk.QueueFamilyProperties, count)
	vk.GetPhysicalDeviceQueueFamilyProperties(VkPhysicalDevice(gpu), &count, families)

	out := make([]render.QueueFamilyProperties, count)
	for i := range out {
		families[i].Deref()
		out[i] = render.QueueFamilyProperties{
			Flags: render.QueueFlags(families[i].QueueFlags),
			Count: families[i].QueueCount,
		}
	}
	return out
}

func (d *Driver) SurfaceSupport(gpu render.PhysicalDevice, family uint32, surface render.Surface) (bool, render.Result) {
	var supported vk.Bool32
	res := vk.GetPhysicalDeviceSurfaceSupport(VkPhysicalDevice(gpu), family, VkSurface(surface), &supported)
	return supported.B(), render.Result(res)
}

func (d *Driver) SurfaceCapabilities(gpu render.PhysicalDevice, surface render.Surface) (render.SurfaceCapabilities, render.Result) {
	var caps vk.SurfaceCapabilities
	res := vk.GetPhysicalDeviceSurfaceCapabilities(VkPhysicalDevice(gpu), VkSurface(surface), &caps)
	if res != vk.Success {
		return render.SurfaceCapabilities{}, render.Result(res)
	}
	caps.Deref()
	caps.CurrentExtent.Deref()
	caps.MinImageExtent.Deref()
	caps.MaxImageExtent.Deref()
	return render.SurfaceCapabilities{
		MinImageCount:    caps.MinImageCount,
		MaxImageCount:    caps.MaxImageCount,
		CurrentExtent:    extent(caps.CurrentExtent),
		MinImageExtent:   extent(caps.MinImageExtent),
		MaxImageExtent:   extent(caps.MaxImageExtent),
		CurrentTransform: uint32(caps.CurrentTransform),
	}, render.Success
}

func (d *Driver) SurfaceFormats(gpu render.PhysicalDevice, surface render.Surface) ([]render.SurfaceFormat, render.Result) {
	var count uint32
	res := vk.GetPhysicalDeviceSurfaceFormats(VkPhysicalDevice(gpu), VkSurface(surface), &count, nil)
	if res != vk.Success {
		return nil, render.Result(res)
	}
	formats := make([]vk.SurfaceFormat, count)
	res = vk.GetPhysicalDeviceSurfaceFormats(VkPhysicalDevice(gpu), VkSurface(surface), &count, formats)
	if res != vk.Success {
		return nil, render.Result(res)
	}
	out := make([]render.SurfaceFormat, count)
	for i := range out {
		formats[i].Deref()
		out[i] = render.SurfaceFormat{
			Format:     render.Format(formats[i].Format),
			ColorSpace: render.ColorSpace(formats[i].ColorSpace),
		}
	}
	return out, render.Success
}

func (d *Driver) PresentModes(gpu render.PhysicalDevice, surface render.Surface) ([]render.PresentMode, render.Result) {
	var count uint32
	res := vk.GetPhysicalDeviceSurfacePresentModes(VkPhysicalDevice(gpu), VkSurface(surface), &count, nil)
	if res != vk.Success {
		return nil, render.Result(res)
	}
	modes := make([]vk.PresentMode, count)
	res = vk.GetPhysicalDeviceSurfacePresentModes(VkPhysicalDevice(gpu), VkSurface(surface), &count, modes)
	if res != vk.Success {
		return nil, render.Result(res)
	}
	out := make([]render.PresentMode, count)
	for i, m := range modes {
		out[i] = render.PresentMode(m)
	}
	return out, render.Success
}

func (d *Driver) CreateDevice(gpu render.PhysicalDevice, info render.DeviceInfo) (render.Device, render.Result) {
	createInfo := vk.DeviceCreateInfo{
		SType:                vk.StructureTypeDeviceCreateInfo,
		QueueCreateInfoCount: 1,
		PQueueCreateInfos: []vk.DeviceQueueCreateInfo{{
			SType:            vk.StructureTypeDeviceQueueCreateInfo,
			QueueFamilyIndex: info.QueueFamily,
			QueueCount:       1,
			PQueuePriorities: []float32{1.0},
		}},
		EnabledExtensionCount:   uint32(len(info.Extensions)),
		PpEnabledExtensionNames: safeStrings(info.Extensions),
	}
	if info.DynamicRendering {
		next, free := dynamicRenderingFeatures()
		defer free()
		createInfo.PNext = next
	}

	var device vk.Device
	if res := vk.CreateDevice(VkPhysicalDevice(gpu), &createInfo, nil, &device); res != vk.Success {
		return 0, render.Result(res)
	}

	if info.DynamicRendering {
		procs, ok := loadRenderingProcs(d.gipa, unsafe.Pointer(d.instance), unsafe.Pointer(device))
		if !ok {
			vk.DestroyDevice(device, nil)
			return 0, render.ErrorExtensionNotPresent
		}
		d.rendering = procs
	}
	return fromDevice(device), render.Success
}

func (d *Driver) DestroyDevice(device render.Device) {
	vk.DestroyDevice(VkDevice(device), nil)
	d.rendering = renderingProcs{}
}

func (d *Driver) DeviceQueue(device render.Device, family uint32) render.Queue {
	var queue vk.Queue
	vk.GetDeviceQueue(VkDevice(device), family, 0, &queue)
	return fromQueue(queue)
}

func (d *Driver) DeviceWaitIdle(device render.Device) render.Result {
	return render.Result(vk.DeviceWaitIdle(VkDevice(device)))
}

func (d *Driver) CreateSwapchain(device render.Device, info render.SwapchainInfo) (render.Swapchain, render.Result) {
	createInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          VkSurface(info.Surface),
		MinImageCount:    info.MinImages,
		ImageFormat:      vk.Format(info.Format.Format),
		ImageColorSpace:  vk.ColorSpace(info.Format.ColorSpace),
		ImageExtent:      vk.Extent2D{Width: info.Extent.Width, Height: info.Extent.Height},
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		ImageSharingMode: vk.SharingModeExclusive,
		PreTransform:     vk.SurfaceTransformFlagBits(info.PreTransform),
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      vk.PresentMode(info.PresentMode),
		Clipped:          vk.True,
		OldSwapchain:     VkSwapchain(info.OldSwapchain),
	}
	var swapchain vk.Swapchain
	if res := vk.CreateSwapchain(VkDevice(device), &createInfo, nil, &swapchain); res != vk.Success {
		return 0, render.Result(res)
	}
	return fromSwapchain(swapchain), render.Success
}

func (d *Driver) DestroySwapchain(device render.Device, swapchain render.Swapchain) {
	vk.DestroySwapchain(VkDevice(device), VkSwapchain(swapchain), nil)
}

func (d *Driver) SwapchainImages(device render.Device, swapchain render.Swapchain) ([]render.Image, render.Result) {
	var count uint32
	if res := vk.GetSwapchainImages(VkDevice(device), VkSwapchain(swapchain), &count, nil); res != vk.Success {
		return nil, render.Result(res)
	}
	images := make([]vk.Image, count)
	if res := vk.GetSwapchainImages(VkDevice(device), VkSwapchain(swapchain), &count, images); res != vk.Success {
		return nil, render.Result(res)
	}
	out := make([]render.Image, count)
	for i := range out {
		out[i] = fromImage(images[i])
	}
	return out, render.Success
}

func (d *Driver) CreateImageView(device render.Device, image render.Image, format render.Format) (render.ImageView, render.Result) {
	createInfo := vk.ImageViewCreateInfo{
		SType:    vk.StructureTypeImageViewCreateInfo,
		Image:    VkImage(image),
		ViewType: vk.ImageViewType2d,
		Format:   vk.Format(format),
		Components: vk.ComponentMapping{
			R: vk.ComponentSwizzleIdentity,
			G: vk.ComponentSwizzleIdentity,
			B: vk.ComponentSwizzleIdentity,
			A: vk.ComponentSwizzleIdentity,
		},
		SubresourceRange: colorRange,
	}
	var view vk.ImageView
	if res := vk.CreateImageView(VkDevice(device), &createInfo, nil, &view); res != vk.Success {
		return 0, render.Result(res)
	}
	return fromImageView(view), render.Success
}

func (d *Driver) DestroyImageView(device render.Device, view render.ImageView) {
	vk.DestroyImageView(VkDevice(device), VkImageView(view), nil)
}

func (d *Driver) CreateCommandPool(device render.Device, family uint32) (render.CommandPool, render.Result) {
	createInfo := vk.CommandPoolCreateInfo{
		SType:            vk.StructureTypeCommandPoolCreateInfo,
		Flags:            vk.CommandPoolCreateFlags(vk.CommandPoolCreateResetCommandBufferBit),
		QueueFamilyIndex: family,
	}
	var pool vk.CommandPool
	if res := vk.CreateCommandPool(VkDevice(device), &createInfo, nil, &pool); res != vk.Success {
		return 0, render.Result(res)
	}
	return fromCommandPool(pool), render.Success
}

func (d *Driver) DestroyCommandPool(device render.Device, pool render.CommandPool) {
	vk.DestroyCommandPool(VkDevice(device), VkCommandPool(pool), nil)
}

func (d *Driver) AllocateCommandBuffers(device render.Device, pool render.CommandPool, count uint32) ([]render.CommandBuffer, render.Result) {
	if count == 0 {
		return nil, render.Success
	}
	allocInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        VkCommandPool(pool),
		Level:              vk.CommandBufferLevelPrimary,
		CommandBufferCount: count,
	}
	buffers := make([]vk.CommandBuffer, count)
	if res := vk.AllocateCommandBuffers(VkDevice(device), &allocInfo, buffers); res != vk.Success {
		return nil, render.Result(res)
	}
	out := make([]render.CommandBuffer, count)
	for i := range out {
		out[i] = fromCommandBuffer(buffers[i])
	}
	return out, render.Success
}

func (d *Driver) FreeCommandBuffers(device render.Device, pool render.CommandPool, buffers []render.CommandBuffer) {
	if len(buffers) == 0 {
		return
	}
	vkBuffers := make([]vk.CommandBuffer, len(buffers))
	for i, b := range buffers {
		vkBuffers[i] = VkCommandBuffer(b)
	}
	vk.FreeCommandBuffers(VkDevice(device), VkCommandPool(pool), uint32(len(vkBuffers)), vkBuffers)
}

func (d *Driver) CreateSemaphore(device render.Device) (render.Semaphore, render.Result) {
	createInfo := vk.SemaphoreCreateInfo{SType: vk.StructureTypeSemaphoreCreateInfo}
	var semaphore vk.Semaphore
	if res := vk.CreateSemaphore(VkDevice(device), &createInfo, nil, &semaphore); res != vk.Success {
		return 0, render.Result(res)
	}
	return fromSemaphore(semaphore), render.Success
}

func (d *Driver) DestroySemaphore(device render.Device, semaphore render.Semaphore) {
	vk.DestroySemaphore(VkDevice(device), VkSemaphore(semaphore), nil)
}

func (d *Driver) CreateFence(device render.Device, signaled bool) (render.Fence, render.Result) {
	createInfo := vk.FenceCreateInfo{SType: vk.StructureTypeFenceCreateInfo}
	if signaled {
		createInfo.Flags = vk.FenceCreateFlags(vk.FenceCreateSignaledBit)
	}
	var fence vk.Fence
	if res := vk.CreateFence(VkDevice(device), &createInfo, nil, &fence); res != vk.Success {
		return 0, render.Result(res)
	}
	return fromFence(fence), render.Success
}

func (d *Driver) DestroyFence(device render.Device, fence render.Fence) {
	vk.DestroyFence(VkDevice(device), VkFence(fence), nil)
}

func (d *Driver) WaitForFence(device render.Device, fence render.Fence, timeout uint64) render.Result {
	return render.Result(vk.WaitForFences(VkDevice(device), 1, []vk.Fence{VkFence(fence)}, vk.True, timeout))
}

func (d *Driver) ResetFence(device render.Device, fence render.Fence) render.Result {
	return render.Result(vk.ResetFences(VkDevice(device), 1, []vk.Fence{VkFence(fence)}))
}

func (d *Driver) AcquireNextImage(device render.Device, swapchain render.Swapchain, timeout uint64, signal render.Semaphore) (uint32, render.Result) {
	var index uint32
	res := vk.AcquireNextImage(VkDevice(device), VkSwapchain(swapchain), timeout,
		VkSemaphore(signal), vk.Fence(vk.NullHandle), &index)
	return index, render.Result(res)
}

func (d *Driver) QueueSubmit(queue render.Queue, info render.SubmitInfo, fence render.Fence) render.Result {
	submit := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{VkSemaphore(info.Wait)},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(info.WaitStage)},
		CommandBufferCount:   1,
		PCommandBuffers:      []vk.CommandBuffer{VkCommandBuffer(info.Command)},
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{VkSemaphore(info.Signal)},
	}
	return render.Result(vk.QueueSubmit(VkQueue(queue), 1, []vk.SubmitInfo{submit}, VkFence(fence)))
}

func (d *Driver) QueuePresent(queue render.Queue, info render.PresentInfo) render.Result {
	present := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{VkSemaphore(info.Wait)},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{VkSwapchain(info.Swapchain)},
		PImageIndices:      []uint32{info.Index},
	}
	return render.Result(vk.QueuePresent(VkQueue(queue), &present))
}

func (d *Driver) ResetCommandBuffer(cmd render.CommandBuffer) render.Result {
	return render.Result(vk.ResetCommandBuffer(VkCommandBuffer(cmd), 0))
}

func (d *Driver) BeginCommandBuffer(cmd render.CommandBuffer) render.Result {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit),
	}
	return render.Result(vk.BeginCommandBuffer(VkCommandBuffer(cmd), &beginInfo))
}

func (d *Driver) EndCommandBuffer(cmd render.CommandBuffer) render.Result {
	return render.Result(vk.EndCommandBuffer(VkCommandBuffer(cmd)))
}

func (d *Driver) CmdImageBarrier(cmd render.CommandBuffer, b render.ImageBarrier) {
	barrier := vk.ImageMemoryBarrier{
		SType:               vk.StructureTypeImageMemoryBarrier,
		SrcAccessMask:       vk.AccessFlags(b.SrcAccess),
		DstAccessMask:       vk.AccessFlags(b.DstAccess),
		OldLayout:           vk.ImageLayout(b.OldLayout),
		NewLayout:           vk.ImageLayout(b.NewLayout),
		SrcQueueFamilyIndex: vk.QueueFamilyIgnored,
		DstQueueFamilyIndex: vk.QueueFamilyIgnored,
		Image:               VkImage(b.Image),
		SubresourceRange:    colorRange,
	}
	vk.CmdPipelineBarrier(VkCommandBuffer(cmd),
		vk.PipelineStageFlags(b.SrcStage), vk.PipelineStageFlags(b.DstStage), 0,
		0, nil, 0, nil, 1, []vk.ImageMemoryBarrier{barrier})
}

func (d *Driver) CmdBeginRendering(cmd render.CommandBuffer, info render.RenderingInfo) {
	d.rendering.beginRendering(unsafe.Pointer(VkCommandBuffer(cmd)), unsafe.Pointer(VkImageView(info.View)), info)
}

func (d *Driver) CmdEndRendering(cmd render.CommandBuffer) {
	d.rendering.endRendering(unsafe.Pointer(VkCommandBuffer(cmd)))
}

func (d *Driver) CmdSetViewport(cmd render.CommandBuffer, e render.Extent2D) {
	viewport := vk.Viewport{
		Width:    float32(e.Width),
		Height:   float32(e.Height),
		MinDepth: 0,
		MaxDepth: 1,
	}
	vk.CmdSetViewport(VkCommandBuffer(cmd), 0, 1, []vk.Viewport{viewport})
}

func (d *Driver) CmdSetScissor(cmd render.CommandBuffer, e render.Extent2D) {
	scissor := vk.Rect2D{Extent: vk.Extent2D{Width: e.Width, Height: e.Height}}
	vk.CmdSetScissor(VkCommandBuffer(cmd), 0, 1, []vk.Rect2D{scissor})
}

var colorRange = vk.ImageSubresourceRange{
	AspectMask: vk.ImageAspectFlags(vk.ImageAspectColorBit),
	LevelCount: 1,
	LayerCount: 1,
}

func extent(e vk.Extent2D) render.Extent2D {
	return render.Extent2D{Width: e.Width, Height: e.Height}
}
