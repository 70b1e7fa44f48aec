// Package platform provides the GLFW window the renderer presents to.
//
// GLFW must be driven from the main thread. Callers lock it with
// runtime.LockOSThread in an init function.
package platform

import (
	"unsafe"

	"sandbox/src/render"
	"sandbox/src/render/vkdriver"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

// Init starts GLFW and checks that it can reach a Vulkan loader.
func Init() error {
	if err := glfw.Init(); err != nil {
		return errors.Wrap(err, "init glfw")
	}
	if !glfw.VulkanSupported() {
		glfw.Terminate()
		return errors.New("glfw: vulkan loader not found")
	}
	return nil
}

func Terminate() {
	glfw.Terminate()
}

// ProcAddr returns vkGetInstanceProcAddr as resolved by GLFW.
func ProcAddr() unsafe.Pointer {
	return glfw.GetVulkanGetInstanceProcAddress()
}

// Window is a resizable GLFW window without a client API.
type Window struct {
	win    *glfw.Window
	events eventQueue
}

var _ render.Window = (*Window)(nil)

func NewWindow(width, height int, title string) (*Window, error) {
	glfw.WindowHint(glfw.ClientAPI, glfw.NoAPI)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	win, err := glfw.CreateWindow(width, height, title, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create window")
	}

	w := &Window{win: win}
	win.SetFramebufferSizeCallback(func(_ *glfw.Window, width, height int) {
		w.events.push(Event{Kind: EventResize, Width: width, Height: height})
	})
	win.SetCloseCallback(func(*glfw.Window) {
		w.events.push(Event{Kind: EventQuit})
	})
	return w, nil
}

func (w *Window) FramebufferSize() (width, height int) {
	return w.win.GetFramebufferSize()
}

func (w *Window) RequiredInstanceExtensions() []string {
	return w.win.GetRequiredInstanceExtensions()
}

func (w *Window) CreateSurface(instance render.Instance) (render.Surface, error) {
	ptr, err := w.win.CreateWindowSurface(vkdriver.VkInstance(instance), nil)
	if err != nil {
		return 0, errors.Wrap(err, "create window surface")
	}
	return vkdriver.FromSurface(vk.SurfaceFromPointer(ptr)), nil
}

// PollEvents processes pending window events without blocking.
func (w *Window) PollEvents() []Event {
	glfw.PollEvents()
	return w.events.drain()
}

// WaitEvents blocks until at least one window event arrives. Used while
// minimized so the loop does not spin.
func (w *Window) WaitEvents() []Event {
	glfw.WaitEvents()
	return w.events.drain()
}

func (w *Window) ShouldClose() bool {
	return w.win.ShouldClose()
}

func (w *Window) Destroy() {
	w.win.Destroy()
}
