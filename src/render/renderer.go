package render

import (
	"github.com/pkg/errors"
)

// Renderer owns the Vulkan device, the presentation chain and the frame
// synchronization objects for one window. It is not safe for concurrent use
// and must be driven from the thread that owns the window.
type Renderer struct {
	drv Driver
	win Window
	cfg Config

	instance OwnedInstance
	surface  OwnedSurface
	gpu      PhysicalDevice
	gpuProps PhysicalDeviceProperties
	device   OwnedDevice
	family   uint32
	queue    Queue

	chain         *chain
	pool          OwnedCommandPool
	imageAcquired OwnedSemaphore
	inFlight      OwnedFence

	layers   []Layer
	stats    FrameStats
	teardown teardown
	closed   bool
}

// NewRenderer brings up an instance, a surface for win, a logical device
// and a presentation chain sized to the window. On failure every object
// created so far is destroyed before the error is returned.
func NewRenderer(drv Driver, win Window, cfg Config) (_ *Renderer, err error) {
	r := &Renderer{
		drv: drv,
		win: win,
		cfg: cfg.withDefaults(),
	}
	defer func() {
		if err != nil {
			r.teardown.unwind()
		}
	}()

	if err := r.initInstanceAndSurface(); err != nil {
		return nil, errors.Wrap(err, "init instance")
	}
	if err := r.initDeviceAndChain(); err != nil {
		return nil, errors.Wrap(err, "init device")
	}
	if err := r.initCommandsAndSync(); err != nil {
		return nil, errors.Wrap(err, "init frame resources")
	}
	return r, nil
}

// Context returns a snapshot of the device objects layers build against.
func (r *Renderer) Context() Context {
	return Context{
		Instance:       r.instance.Get(),
		PhysicalDevice: r.gpu,
		Device:         r.device.Get(),
		Queue:          r.queue,
		QueueFamily:    r.family,
		Format:         r.chain.config.Format.Format,
		ImageCount:     uint32(len(r.chain.slots)),
	}
}

func (r *Renderer) SwapchainDimensions() SwapchainDimensions {
	extent := r.chain.extent()
	return SwapchainDimensions{
		Width:  extent.Width,
		Height: extent.Height,
		Format: r.chain.config.Format.Format,
	}
}

// PhysicalDeviceProperties describes the selected GPU.
func (r *Renderer) PhysicalDeviceProperties() PhysicalDeviceProperties {
	return r.gpuProps
}

func (r *Renderer) Stats() FrameStats {
	return r.stats
}

// AddLayer appends l to the layers recorded each frame.
func (r *Renderer) AddLayer(l Layer) {
	r.layers = append(r.layers, l)
}

// WaitIdle blocks until the device has finished all submitted work. Layers
// call it before destroying objects a recorded frame may still use.
func (r *Renderer) WaitIdle() error {
	if r.closed {
		return errors.WithStack(ErrClosed)
	}
	return NewError(r.drv, "vkDeviceWaitIdle", r.drv.DeviceWaitIdle(r.device.Get()))
}

// Close waits for the device to go idle and destroys everything the
// renderer created, in reverse creation order. It is safe to call twice.
func (r *Renderer) Close() {
	if r.closed {
		return
	}
	r.closed = true
	if r.device.Valid() {
		if res := r.drv.DeviceWaitIdle(r.device.Get()); IsError(res) {
			Logger().Warn("device wait idle failed during close", "err", r.drv.ResultError(res))
		}
	}
	r.teardown.unwind()
}
