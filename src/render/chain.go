package render

import (
	"slices"

	"github.com/pkg/errors"
)

// imageSlot is one presentable chain image and everything recorded against it.
type imageSlot struct {
	Image          Image
	View           OwnedImageView
	CommandBuffer  OwnedCommandBuffer
	RenderFinished OwnedSemaphore
	// Initialized is false until the image has been transitioned once, so
	// the first barrier can discard the undefined contents.
	Initialized bool
}

func (s *imageSlot) release() {
	s.CommandBuffer.Release()
	s.RenderFinished.Release()
	s.View.Release()
}

// ChainConfig is the outcome of the chain policy for one build.
type ChainConfig struct {
	Format       SurfaceFormat
	PresentMode  PresentMode
	Extent       Extent2D
	ImageCount   uint32
	PreTransform uint32
}

// SelectSurfaceFormat prefers 8-bit BGRA UNORM in the sRGB non-linear
// colour space and otherwise takes the first offered format.
func SelectSurfaceFormat(formats []SurfaceFormat) (SurfaceFormat, error) {
	if len(formats) == 0 {
		return SurfaceFormat{}, errors.WithStack(ErrNoSurfaceFormat)
	}
	preferred := SurfaceFormat{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}
	if slices.Contains(formats, preferred) {
		return preferred, nil
	}
	return formats[0], nil
}

// SelectPresentMode takes mailbox when offered. FIFO is always available.
func SelectPresentMode(modes []PresentMode) PresentMode {
	if slices.Contains(modes, PresentModeMailbox) {
		return PresentModeMailbox
	}
	return PresentModeFifo
}

// SelectExtent uses the surface's current extent unless the surface leaves
// it to the application, in which case the framebuffer size is clamped to
// the supported range.
func SelectExtent(caps SurfaceCapabilities, width, height int) Extent2D {
	if caps.CurrentExtent.Width != UndefinedExtent {
		return caps.CurrentExtent
	}
	return Extent2D{
		Width:  clamp(uint32(max(width, 0)), caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: clamp(uint32(max(height, 0)), caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// SelectImageCount asks for one image above the minimum. A maximum of zero
// means unbounded.
func SelectImageCount(caps SurfaceCapabilities) uint32 {
	count := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && count > caps.MaxImageCount {
		count = caps.MaxImageCount
	}
	return count
}

// SelectChainConfig applies the full chain policy.
func SelectChainConfig(caps SurfaceCapabilities, formats []SurfaceFormat, modes []PresentMode, width, height int) (ChainConfig, error) {
	format, err := SelectSurfaceFormat(formats)
	if err != nil {
		return ChainConfig{}, err
	}
	return ChainConfig{
		Format:       format,
		PresentMode:  SelectPresentMode(modes),
		Extent:       SelectExtent(caps, width, height),
		ImageCount:   SelectImageCount(caps),
		PreTransform: caps.CurrentTransform,
	}, nil
}

func clamp(v, lo, hi uint32) uint32 {
	return max(lo, min(v, hi))
}

// chain owns the swapchain and its per-image slots. The command pool the
// slot buffers come from is owned by the renderer.
type chain struct {
	drv     Driver
	win     Window
	gpu     PhysicalDevice
	device  Device
	surface Surface
	pool    CommandPool

	swapchain OwnedSwapchain
	config    ChainConfig
	slots     []imageSlot
}

func (c *chain) queryConfig() (ChainConfig, error) {
	caps, res := c.drv.SurfaceCapabilities(c.gpu, c.surface)
	if err := NewError(c.drv, "vkGetPhysicalDeviceSurfaceCapabilitiesKHR", res); err != nil {
		return ChainConfig{}, err
	}
	formats, res := c.drv.SurfaceFormats(c.gpu, c.surface)
	if err := NewError(c.drv, "vkGetPhysicalDeviceSurfaceFormatsKHR", res); err != nil {
		return ChainConfig{}, err
	}
	modes, res := c.drv.PresentModes(c.gpu, c.surface)
	if err := NewError(c.drv, "vkGetPhysicalDeviceSurfacePresentModesKHR", res); err != nil {
		return ChainConfig{}, err
	}
	width, height := c.win.FramebufferSize()
	return SelectChainConfig(caps, formats, modes, width, height)
}

// build creates a swapchain, handing the current one over as the old chain,
// and one view per image. The old swapchain is destroyed once the new one
// exists. Slots must already be released.
func (c *chain) build() error {
	cfg, err := c.queryConfig()
	if err != nil {
		return err
	}

	old := c.swapchain.Take()
	defer old.Release()

	swapchain, res := c.drv.CreateSwapchain(c.device, SwapchainInfo{
		Surface:      c.surface,
		MinImages:    cfg.ImageCount,
		Format:       cfg.Format,
		Extent:       cfg.Extent,
		PresentMode:  cfg.PresentMode,
		PreTransform: cfg.PreTransform,
		OldSwapchain: old.Get(),
	})
	if err := NewError(c.drv, "vkCreateSwapchainKHR", res); err != nil {
		return err
	}
	c.swapchain = Own(c.device, swapchain, c.drv.DestroySwapchain)
	c.config = cfg

	images, res := c.drv.SwapchainImages(c.device, swapchain)
	if err := NewError(c.drv, "vkGetSwapchainImagesKHR", res); err != nil {
		return err
	}
	c.slots = make([]imageSlot, len(images))
	for i, image := range images {
		c.slots[i].Image = image
		view, res := c.drv.CreateImageView(c.device, image, cfg.Format.Format)
		if err := NewError(c.drv, "vkCreateImageView", res); err != nil {
			return err
		}
		c.slots[i].View = Own(c.device, view, c.drv.DestroyImageView)
	}

	Logger().Info("swapchain built",
		"width", cfg.Extent.Width,
		"height", cfg.Extent.Height,
		"images", len(images),
		"format", int32(cfg.Format.Format),
		"present", cfg.PresentMode.String())
	return nil
}

// allocate gives every slot a primary command buffer from the pool and its
// own render-finished semaphore.
func (c *chain) allocate() error {
	buffers, res := c.drv.AllocateCommandBuffers(c.device, c.pool, uint32(len(c.slots)))
	if err := NewError(c.drv, "vkAllocateCommandBuffers", res); err != nil {
		return err
	}
	pool := c.pool
	free := func(device Device, cmd CommandBuffer) {
		c.drv.FreeCommandBuffers(device, pool, []CommandBuffer{cmd})
	}
	for i := range c.slots {
		c.slots[i].CommandBuffer = Own(c.device, buffers[i], free)
	}

	for i := range c.slots {
		semaphore, res := c.drv.CreateSemaphore(c.device)
		if err := NewError(c.drv, "vkCreateSemaphore", res); err != nil {
			return err
		}
		c.slots[i].RenderFinished = Own(c.device, semaphore, c.drv.DestroySemaphore)
	}
	return nil
}

func (c *chain) releaseCommandBuffers() {
	for i := range c.slots {
		c.slots[i].CommandBuffer.Release()
	}
}

func (c *chain) releaseSlots() {
	for i := range c.slots {
		c.slots[i].release()
	}
	c.slots = nil
}

func (c *chain) destroy() {
	c.releaseSlots()
	c.swapchain.Release()
}

func (c *chain) extent() Extent2D {
	return c.config.Extent
}
