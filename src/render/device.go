package render

import (
	"slices"

	"github.com/pkg/errors"
)

// SelectPhysicalDevice returns the index of the first discrete GPU in props,
// falling back to the first device. props must not be empty.
func SelectPhysicalDevice(props []PhysicalDeviceProperties) int {
	for i, p := range props {
		if p.Type == PhysicalDeviceTypeDiscreteGPU {
			return i
		}
	}
	return 0
}

// SelectQueueFamily returns the first family that has graphics capability
// and for which presents reports presentation support.
func SelectQueueFamily(families []QueueFamilyProperties, presents func(family uint32) (bool, error)) (uint32, error) {
	for i, family := range families {
		ok, err := presents(uint32(i))
		if err != nil {
			return 0, err
		}
		if family.Flags&QueueGraphics != 0 && ok {
			return uint32(i), nil
		}
	}
	return 0, errors.WithStack(ErrNoQueueFamily)
}

func (r *Renderer) instanceLayers() []string {
	if !r.cfg.Validation {
		return nil
	}
	available, res := r.drv.InstanceLayers()
	if IsError(res) || !slices.Contains(available, ValidationLayer) {
		Logger().Warn("validation layer requested but not available", "layer", ValidationLayer)
		return nil
	}
	return []string{ValidationLayer}
}

func (r *Renderer) initInstanceAndSurface() error {
	instance, res := r.drv.CreateInstance(InstanceInfo{
		AppName:    r.cfg.AppName,
		APIVersion: r.cfg.APIVersion,
		Extensions: r.win.RequiredInstanceExtensions(),
		Layers:     r.instanceLayers(),
	})
	if err := NewError(r.drv, "vkCreateInstance", res); err != nil {
		return err
	}
	r.instance = Own(NoParent{}, instance, func(_ NoParent, i Instance) {
		r.drv.DestroyInstance(i)
	})
	r.teardown.push(r.instance.Release)

	surface, err := r.win.CreateSurface(instance)
	if err != nil {
		return errors.Wrap(err, "create window surface")
	}
	r.surface = Own(instance, surface, r.drv.DestroySurface)
	r.teardown.push(r.surface.Release)
	return nil
}

func (r *Renderer) initDeviceAndChain() error {
	gpus, res := r.drv.EnumeratePhysicalDevices(r.instance.Get())
	if err := NewError(r.drv, "vkEnumeratePhysicalDevices", res); err != nil {
		return err
	}
	if len(gpus) == 0 {
		return errors.WithStack(ErrNoDevice)
	}

	props := make([]PhysicalDeviceProperties, len(gpus))
	for i, gpu := range gpus {
		props[i] = r.drv.PhysicalDeviceProperties(gpu)
	}
	selected := SelectPhysicalDevice(props)
	r.gpu = gpus[selected]
	r.gpuProps = props[selected]
	Logger().Info("GPU selected",
		"name", r.gpuProps.Name,
		"type", r.gpuProps.Type.String(),
		"candidates", len(gpus))

	surface := r.surface.Get()
	family, err := SelectQueueFamily(r.drv.QueueFamilies(r.gpu), func(i uint32) (bool, error) {
		ok, res := r.drv.SurfaceSupport(r.gpu, i, surface)
		return ok, NewError(r.drv, "vkGetPhysicalDeviceSurfaceSupportKHR", res)
	})
	if err != nil {
		return err
	}
	r.family = family

	device, res := r.drv.CreateDevice(r.gpu, DeviceInfo{
		QueueFamily:      family,
		Extensions:       []string{SwapchainExtension},
		DynamicRendering: true,
	})
	if err := NewError(r.drv, "vkCreateDevice", res); err != nil {
		return err
	}
	r.device = Own(NoParent{}, device, func(_ NoParent, d Device) {
		r.drv.DestroyDevice(d)
	})
	r.teardown.push(r.device.Release)
	r.queue = r.drv.DeviceQueue(device, family)

	r.chain = &chain{
		drv:     r.drv,
		win:     r.win,
		gpu:     r.gpu,
		device:  device,
		surface: surface,
	}
	r.teardown.push(r.chain.destroy)
	return r.chain.build()
}

func (r *Renderer) initCommandsAndSync() error {
	device := r.device.Get()

	pool, res := r.drv.CreateCommandPool(device, r.family)
	if err := NewError(r.drv, "vkCreateCommandPool", res); err != nil {
		return err
	}
	r.pool = Own(device, pool, r.drv.DestroyCommandPool)
	r.chain.pool = pool
	r.teardown.push(func() {
		r.chain.releaseCommandBuffers()
		r.pool.Release()
	})

	semaphore, res := r.drv.CreateSemaphore(device)
	if err := NewError(r.drv, "vkCreateSemaphore", res); err != nil {
		return err
	}
	r.imageAcquired = Own(device, semaphore, r.drv.DestroySemaphore)
	r.teardown.push(r.imageAcquired.Release)

	fence, res := r.drv.CreateFence(device, true)
	if err := NewError(r.drv, "vkCreateFence", res); err != nil {
		return err
	}
	r.inFlight = Own(device, fence, r.drv.DestroyFence)
	r.teardown.push(r.inFlight.Release)

	return r.chain.allocate()
}
