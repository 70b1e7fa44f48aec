package render

import (
	"fmt"
	"sort"

	"github.com/pkg/errors"
)

type injected struct {
	nth int
	res Result
}

// fakeDriver is an in-memory Driver. It hands out unique handles, tracks
// which objects are alive, flags destroys of dead or foreign handles, and
// completes submitted work immediately unless the fence is told to hang.
type fakeDriver struct {
	next   uintptr
	live   map[uintptr]string
	calls  []string
	counts map[string]int
	fail   map[string]injected

	// misuse collects every destroy of an unknown or already dead handle,
	// and every parent destroyed while its children are alive.
	misuse []string

	layers   []string
	gpus     []PhysicalDeviceProperties
	families []QueueFamilyProperties
	present  func(family uint32) bool
	caps     SurfaceCapabilities
	formats  []SurfaceFormat
	modes    []PresentMode

	images     map[Swapchain][]Image
	swapchains []SwapchainInfo
	instance   InstanceInfo
	device     DeviceInfo

	fences    map[Fence]bool
	hangFence bool

	acquire  []Result
	presents []Result
	acquired uint32

	submits  []SubmitInfo
	barriers []ImageBarrier
	rendered []RenderingInfo
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		live:   map[uintptr]string{},
		counts: map[string]int{},
		fail:   map[string]injected{},
		gpus: []PhysicalDeviceProperties{
			{Name: "llvmpipe", Type: PhysicalDeviceTypeCPU, APIVersion: MakeVersion(1, 3, 0)},
			{Name: "fake discrete", Type: PhysicalDeviceTypeDiscreteGPU, APIVersion: MakeVersion(1, 3, 0)},
		},
		families: []QueueFamilyProperties{
			{Flags: QueueTransfer, Count: 1},
			{Flags: QueueGraphics | QueueCompute | QueueTransfer, Count: 1},
		},
		present: func(uint32) bool { return true },
		caps: SurfaceCapabilities{
			MinImageCount:  2,
			MaxImageCount:  8,
			CurrentExtent:  Extent2D{Width: UndefinedExtent, Height: UndefinedExtent},
			MinImageExtent: Extent2D{Width: 1, Height: 1},
			MaxImageExtent: Extent2D{Width: 4096, Height: 4096},
		},
		formats: []SurfaceFormat{
			{Format: FormatB8G8R8A8Srgb, ColorSpace: ColorSpaceSrgbNonlinear},
			{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear},
		},
		modes:  []PresentMode{PresentModeFifo, PresentModeMailbox},
		images: map[Swapchain][]Image{},
		fences: map[Fence]bool{},
	}
}

// failOn makes the nth call (1-based) of op return res. nth of zero fails
// every call.
func (d *fakeDriver) failOn(op string, nth int, res Result) {
	d.fail[op] = injected{nth: nth, res: res}
}

func (d *fakeDriver) enter(op string) Result {
	d.calls = append(d.calls, op)
	d.counts[op]++
	if f, ok := d.fail[op]; ok && (f.nth == 0 || f.nth == d.counts[op]) {
		return f.res
	}
	return Success
}

func (d *fakeDriver) alloc(kind string) uintptr {
	d.next++
	d.live[d.next] = kind
	return d.next
}

func (d *fakeDriver) free(kind string, h uintptr) {
	got, ok := d.live[h]
	switch {
	case !ok:
		d.misuse = append(d.misuse, fmt.Sprintf("destroy of dead %s %d", kind, h))
		return
	case got != kind:
		d.misuse = append(d.misuse, fmt.Sprintf("destroy of %s %d as %s", got, h, kind))
	}
	delete(d.live, h)
}

func (d *fakeDriver) liveKinds() []string {
	var kinds []string
	for _, kind := range d.live {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}

func (d *fakeDriver) count(op string) int {
	n := 0
	for _, c := range d.calls {
		if c == op {
			n++
		}
	}
	return n
}

// ResultError is not recorded as a call; it names a result, it does not
// touch the device.
func (d *fakeDriver) ResultError(r Result) error {
	return errors.Errorf("fake result %d", int32(r))
}

func (d *fakeDriver) InstanceLayers() ([]string, Result) {
	return d.layers, d.enter("InstanceLayers")
}

func (d *fakeDriver) CreateInstance(info InstanceInfo) (Instance, Result) {
	if res := d.enter("CreateInstance"); res != Success {
		return 0, res
	}
	d.instance = info
	return Instance(d.alloc("instance")), Success
}

func (d *fakeDriver) DestroyInstance(instance Instance) {
	d.enter("DestroyInstance")
	if len(d.live) > 1 {
		d.misuse = append(d.misuse, fmt.Sprintf("instance destroyed with live %v", d.liveKinds()))
	}
	d.free("instance", uintptr(instance))
}

func (d *fakeDriver) DestroySurface(_ Instance, surface Surface) {
	d.enter("DestroySurface")
	d.free("surface", uintptr(surface))
}

func (d *fakeDriver) EnumeratePhysicalDevices(Instance) ([]PhysicalDevice, Result) {
	if res := d.enter("EnumeratePhysicalDevices"); res != Success {
		return nil, res
	}
	gpus := make([]PhysicalDevice, len(d.gpus))
	for i := range d.gpus {
		gpus[i] = PhysicalDevice(1000 + i)
	}
	return gpus, Success
}

func (d *fakeDriver) PhysicalDeviceProperties(gpu PhysicalDevice) PhysicalDeviceProperties {
	d.enter("PhysicalDeviceProperties")
	return d.gpus[gpu-1000]
}

func (d *fakeDriver) QueueFamilies(PhysicalDevice) []QueueFamilyProperties {
	d.enter("QueueFamilies")
	return d.families
}

func (d *fakeDriver) SurfaceSupport(_ PhysicalDevice, family uint32, _ Surface) (bool, Result) {
	if res := d.enter("SurfaceSupport"); res != Success {
		return false, res
	}
	return d.present(family), Success
}

func (d *fakeDriver) SurfaceCapabilities(PhysicalDevice, Surface) (SurfaceCapabilities, Result) {
	return d.caps, d.enter("SurfaceCapabilities")
}

func (d *fakeDriver) SurfaceFormats(PhysicalDevice, Surface) ([]SurfaceFormat, Result) {
	return d.formats, d.enter("SurfaceFormats")
}

func (d *fakeDriver) PresentModes(PhysicalDevice, Surface) ([]PresentMode, Result) {
	return d.modes, d.enter("PresentModes")
}

func (d *fakeDriver) CreateDevice(_ PhysicalDevice, info DeviceInfo) (Device, Result) {
	if res := d.enter("CreateDevice"); res != Success {
		return 0, res
	}
	d.device = info
	return Device(d.alloc("device")), Success
}

func (d *fakeDriver) DestroyDevice(device Device) {
	d.enter("DestroyDevice")
	for _, kind := range d.live {
		if kind != "instance" && kind != "surface" && kind != "device" {
			d.misuse = append(d.misuse, fmt.Sprintf("device destroyed with live %v", d.liveKinds()))
			break
		}
	}
	d.free("device", uintptr(device))
}

func (d *fakeDriver) DeviceQueue(Device, uint32) Queue {
	d.enter("DeviceQueue")
	return Queue(900)
}

func (d *fakeDriver) DeviceWaitIdle(Device) Result {
	return d.enter("DeviceWaitIdle")
}

func (d *fakeDriver) CreateSwapchain(_ Device, info SwapchainInfo) (Swapchain, Result) {
	if res := d.enter("CreateSwapchain"); res != Success {
		return 0, res
	}
	d.swapchains = append(d.swapchains, info)
	sc := Swapchain(d.alloc("swapchain"))
	images := make([]Image, info.MinImages)
	for i := range images {
		d.next++
		images[i] = Image(d.next)
	}
	d.images[sc] = images
	return sc, Success
}

func (d *fakeDriver) DestroySwapchain(_ Device, swapchain Swapchain) {
	d.enter("DestroySwapchain")
	delete(d.images, swapchain)
	d.free("swapchain", uintptr(swapchain))
}

func (d *fakeDriver) SwapchainImages(_ Device, swapchain Swapchain) ([]Image, Result) {
	if res := d.enter("SwapchainImages"); res != Success {
		return nil, res
	}
	return d.images[swapchain], Success
}

func (d *fakeDriver) CreateImageView(Device, Image, Format) (ImageView, Result) {
	if res := d.enter("CreateImageView"); res != Success {
		return 0, res
	}
	return ImageView(d.alloc("view")), Success
}

func (d *fakeDriver) DestroyImageView(_ Device, view ImageView) {
	d.enter("DestroyImageView")
	d.free("view", uintptr(view))
}

func (d *fakeDriver) CreateCommandPool(Device, uint32) (CommandPool, Result) {
	if res := d.enter("CreateCommandPool"); res != Success {
		return 0, res
	}
	return CommandPool(d.alloc("pool")), Success
}

func (d *fakeDriver) DestroyCommandPool(_ Device, pool CommandPool) {
	d.enter("DestroyCommandPool")
	for _, kind := range d.live {
		if kind == "cmd" {
			d.misuse = append(d.misuse, "pool destroyed with live command buffers")
			break
		}
	}
	d.free("pool", uintptr(pool))
}

func (d *fakeDriver) AllocateCommandBuffers(_ Device, _ CommandPool, count uint32) ([]CommandBuffer, Result) {
	if res := d.enter("AllocateCommandBuffers"); res != Success {
		return nil, res
	}
	buffers := make([]CommandBuffer, count)
	for i := range buffers {
		buffers[i] = CommandBuffer(d.alloc("cmd"))
	}
	return buffers, Success
}

func (d *fakeDriver) FreeCommandBuffers(_ Device, _ CommandPool, buffers []CommandBuffer) {
	d.enter("FreeCommandBuffers")
	for _, b := range buffers {
		d.free("cmd", uintptr(b))
	}
}

func (d *fakeDriver) CreateSemaphore(Device) (Semaphore, Result) {
	if res := d.enter("CreateSemaphore"); res != Success {
		return 0, res
	}
	return Semaphore(d.alloc("semaphore")), Success
}

func (d *fakeDriver) DestroySemaphore(_ Device, semaphore Semaphore) {
	d.enter("DestroySemaphore")
	d.free("semaphore", uintptr(semaphore))
}

func (d *fakeDriver) CreateFence(_ Device, signaled bool) (Fence, Result) {
	if res := d.enter("CreateFence"); res != Success {
		return 0, res
	}
	fence := Fence(d.alloc("fence"))
	d.fences[fence] = signaled
	return fence, Success
}

func (d *fakeDriver) DestroyFence(_ Device, fence Fence) {
	d.enter("DestroyFence")
	delete(d.fences, fence)
	d.free("fence", uintptr(fence))
}

func (d *fakeDriver) WaitForFence(_ Device, fence Fence, _ uint64) Result {
	if res := d.enter("WaitForFence"); res != Success {
		return res
	}
	if !d.fences[fence] {
		return Timeout
	}
	return Success
}

func (d *fakeDriver) ResetFence(_ Device, fence Fence) Result {
	if res := d.enter("ResetFence"); res != Success {
		return res
	}
	d.fences[fence] = false
	return Success
}

func (d *fakeDriver) AcquireNextImage(_ Device, swapchain Swapchain, _ uint64, _ Semaphore) (uint32, Result) {
	res := d.enter("AcquireNextImage")
	if len(d.acquire) > 0 {
		res, d.acquire = d.acquire[0], d.acquire[1:]
	}
	if res != Success && res != Suboptimal {
		return 0, res
	}
	index := d.acquired % uint32(len(d.images[swapchain]))
	d.acquired++
	return index, res
}

func (d *fakeDriver) QueueSubmit(_ Queue, info SubmitInfo, fence Fence) Result {
	if res := d.enter("QueueSubmit"); res != Success {
		return res
	}
	d.submits = append(d.submits, info)
	if !d.hangFence {
		d.fences[fence] = true
	}
	return Success
}

func (d *fakeDriver) QueuePresent(Queue, PresentInfo) Result {
	res := d.enter("QueuePresent")
	if len(d.presents) > 0 {
		res, d.presents = d.presents[0], d.presents[1:]
	}
	return res
}

func (d *fakeDriver) ResetCommandBuffer(CommandBuffer) Result { return d.enter("ResetCommandBuffer") }
func (d *fakeDriver) BeginCommandBuffer(CommandBuffer) Result { return d.enter("BeginCommandBuffer") }
func (d *fakeDriver) EndCommandBuffer(CommandBuffer) Result   { return d.enter("EndCommandBuffer") }

func (d *fakeDriver) CmdImageBarrier(_ CommandBuffer, barrier ImageBarrier) {
	d.enter("CmdImageBarrier")
	d.barriers = append(d.barriers, barrier)
}

func (d *fakeDriver) CmdBeginRendering(_ CommandBuffer, info RenderingInfo) {
	d.enter("CmdBeginRendering")
	d.rendered = append(d.rendered, info)
}

func (d *fakeDriver) CmdEndRendering(CommandBuffer)          { d.enter("CmdEndRendering") }
func (d *fakeDriver) CmdSetViewport(CommandBuffer, Extent2D) { d.enter("CmdSetViewport") }
func (d *fakeDriver) CmdSetScissor(CommandBuffer, Extent2D)  { d.enter("CmdSetScissor") }

type fakeWindow struct {
	drv        *fakeDriver
	width      int
	height     int
	extensions []string
	surfaceErr error
}

func newFakeWindow(drv *fakeDriver, width, height int) *fakeWindow {
	return &fakeWindow{
		drv:        drv,
		width:      width,
		height:     height,
		extensions: []string{"VK_KHR_surface", "VK_KHR_xcb_surface"},
	}
}

func (w *fakeWindow) FramebufferSize() (int, int) {
	return w.width, w.height
}

func (w *fakeWindow) RequiredInstanceExtensions() []string {
	return w.extensions
}

func (w *fakeWindow) CreateSurface(Instance) (Surface, error) {
	w.drv.calls = append(w.drv.calls, "CreateSurface")
	if w.surfaceErr != nil {
		return 0, w.surfaceErr
	}
	return Surface(w.drv.alloc("surface")), nil
}

func (w *fakeWindow) resize(width, height int) {
	w.width, w.height = width, height
}

var errNoDisplay = errors.New("no display")
