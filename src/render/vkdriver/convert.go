package vkdriver

import (
	"unsafe"

	"sandbox/src/render"

	vk "github.com/vulkan-go/vulkan"
)

// Handles cross the render boundary as uintptr. Both sides are one machine
// word on the 64-bit targets this package builds for, so conversion is a
// plain reinterpretation of the bits.
func cast[To, From any](h From) To {
	return *(*To)(unsafe.Pointer(&h))
}

func VkInstance(h render.Instance) vk.Instance { return cast[vk.Instance](h) }
func VkSurface(h render.Surface) vk.Surface { return cast[vk.Surface](h) }
func VkPhysicalDevice(h render.PhysicalDevice) vk.PhysicalDevice { return cast[vk.PhysicalDevice](h) }
func VkDevice(h render.Device) vk.Device { return cast[vk.Device](h) }
func VkQueue(h render.Queue) vk.Queue { return cast[vk.Queue](h) }
func VkSwapchain(h render.Swapchain) vk.Swapchain { return cast[vk.Swapchain](h) }
func VkImage(h render.Image) vk.Image { return cast[vk.Image](h) }
func VkImageView(h render.ImageView) vk.ImageView { return cast[vk.ImageView](h) }
func VkCommandPool(h render.CommandPool) vk.CommandPool { return cast[vk.CommandPool](h) }
func VkCommandBuffer(h render.CommandBuffer) vk.CommandBuffer { return cast[vk.CommandBuffer](h) }
func VkSemaphore(h render.Semaphore) vk.Semaphore { return cast[vk.Semaphore](h) }
func VkFence(h render.Fence) vk.Fence { return cast[vk.Fence](h) }

// FromSurface wraps a surface created outside the driver, such as by the
// windowing layer.
func FromSurface(s vk.Surface) render.Surface { return cast[render.Surface](s) }

func fromInstance(h vk.Instance) render.Instance { return cast[render.Instance](h) }
func fromPhysicalDevice(h vk.PhysicalDevice) render.PhysicalDevice { return cast[render.PhysicalDevice](h) }
func fromDevice(h vk.Device) render.Device { return cast[render.Device](h) }
func fromQueue(h vk.Queue) render.Queue { return cast[render.Queue](h) }
func fromSwapchain(h vk.Swapchain) render.Swapchain { return cast[render.Swapchain](h) }
func fromImage(h vk.Image) render.Image { return cast[render.Image](h) }
func fromImageView(h vk.ImageView) render.ImageView { return cast[render.ImageView](h) }
func fromCommandPool(h vk.CommandPool) render.CommandPool { return cast[render.CommandPool](h) }
func fromCommandBuffer(h vk.CommandBuffer) render.CommandBuffer { return cast[render.CommandBuffer](h) }
func fromSemaphore(h vk.Semaphore) render.Semaphore { return cast[render.Semaphore](h) }
func fromFence(h vk.Fence) render.Fence { return cast[render.Fence](h) }

// safeStrings null-terminates every name for the C side.
func safeStrings(list []string) []string {
	out := make([]string, len(list))
	for i, s := range list {
		out[i] = safeString(s)
	}
	return out
}

func safeString(s string) string {
	if len(s) > 0 && s[len(s)-1] == 0 {
		return s
	}
	return s + "\x00"
}
