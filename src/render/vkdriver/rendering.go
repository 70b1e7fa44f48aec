package vkdriver

/*
#cgo CFLAGS: -DVK_NO_PROTOTYPES
#include <stdlib.h>
#include <vulkan/vulkan.h>

static PFN_vkVoidFunction loadDeviceProc(void* gipa, VkInstance instance, VkDevice device, const char* name) {
	PFN_vkGetDeviceProcAddr gdpa =
		(PFN_vkGetDeviceProcAddr)((PFN_vkGetInstanceProcAddr)gipa)(instance, "vkGetDeviceProcAddr");
	if (gdpa == NULL) {
		return NULL;
	}
	return gdpa(device, name);
}

static void cmdBeginRendering(PFN_vkVoidFunction fn, VkCommandBuffer cmd, VkImageView view,
	uint32_t width, uint32_t height, float r, float g, float b, float a) {
	VkRenderingAttachmentInfo color = {0};
	color.sType = VK_STRUCTURE_TYPE_RENDERING_ATTACHMENT_INFO;
	color.imageView = view;
	color.imageLayout = VK_IMAGE_LAYOUT_COLOR_ATTACHMENT_OPTIMAL;
	color.resolveMode = VK_RESOLVE_MODE_NONE;
	color.loadOp = VK_ATTACHMENT_LOAD_OP_CLEAR;
	color.storeOp = VK_ATTACHMENT_STORE_OP_STORE;
	color.clearValue.color.float32[0] = r;
	color.clearValue.color.float32[1] = g;
	color.clearValue.color.float32[2] = b;
	color.clearValue.color.float32[3] = a;

	VkRenderingInfo info = {0};
	info.sType = VK_STRUCTURE_TYPE_RENDERING_INFO;
	info.renderArea.extent.width = width;
	info.renderArea.extent.height = height;
	info.layerCount = 1;
	info.colorAttachmentCount = 1;
	info.pColorAttachments = &color;

	((PFN_vkCmdBeginRendering)fn)(cmd, &info);
}

static void cmdEndRendering(PFN_vkVoidFunction fn, VkCommandBuffer cmd) {
	((PFN_vkCmdEndRendering)fn)(cmd);
}

static VkPhysicalDeviceDynamicRenderingFeatures* newDynamicRenderingFeatures(void) {
	VkPhysicalDeviceDynamicRenderingFeatures* f = calloc(1, sizeof(VkPhysicalDeviceDynamicRenderingFeatures));
	f->sType = VK_STRUCTURE_TYPE_PHYSICAL_DEVICE_DYNAMIC_RENDERING_FEATURES;
	f->dynamicRendering = VK_TRUE;
	return f;
}

static VkPipelineRenderingCreateInfo* newPipelineRendering(VkFormat format) {
	VkPipelineRenderingCreateInfo* info = calloc(1, sizeof(VkPipelineRenderingCreateInfo) + sizeof(VkFormat));
	VkFormat* formats = (VkFormat*)(info + 1);
	formats[0] = format;
	info->sType = VK_STRUCTURE_TYPE_PIPELINE_RENDERING_CREATE_INFO;
	info->colorAttachmentCount = 1;
	info->pColorAttachmentFormats = formats;
	return info;
}
*/
import "C"

import (
	"unsafe"

	"sandbox/src/render"
)

// renderingProcs are the dynamic rendering entry points of one device.
type renderingProcs struct {
	begin C.PFN_vkVoidFunction
	end   C.PFN_vkVoidFunction
}

func loadRenderingProcs(gipa unsafe.Pointer, instance, device unsafe.Pointer) (renderingProcs, bool) {
	load := func(name string) C.PFN_vkVoidFunction {
		cname := C.CString(name)
		defer C.free(unsafe.Pointer(cname))
		return C.loadDeviceProc(gipa, C.VkInstance(instance), C.VkDevice(device), cname)
	}

	procs := renderingProcs{
		begin: load("vkCmdBeginRendering"),
		end:   load("vkCmdEndRendering"),
	}
	if procs.begin == nil || procs.end == nil {
		procs.begin = load("vkCmdBeginRenderingKHR")
		procs.end = load("vkCmdEndRenderingKHR")
	}
	return procs, procs.begin != nil && procs.end != nil
}

func (p renderingProcs) beginRendering(cmd, view unsafe.Pointer, info render.RenderingInfo) {
	c := info.ClearColor
	C.cmdBeginRendering(p.begin, C.VkCommandBuffer(cmd), C.VkImageView(view),
		C.uint32_t(info.Extent.Width), C.uint32_t(info.Extent.Height),
		C.float(c[0]), C.float(c[1]), C.float(c[2]), C.float(c[3]))
}

func (p renderingProcs) endRendering(cmd unsafe.Pointer) {
	C.cmdEndRendering(p.end, C.VkCommandBuffer(cmd))
}

// dynamicRenderingFeatures returns a device create pNext chain that turns
// dynamic rendering on. The caller frees it once the device exists.
func dynamicRenderingFeatures() (unsafe.Pointer, func()) {
	f := C.newDynamicRenderingFeatures()
	return unsafe.Pointer(f), func() { C.free(unsafe.Pointer(f)) }
}

// PipelineRendering returns the pNext a graphics pipeline needs to be used
// inside a dynamic rendering pass with one colour attachment of format.
// Call free after the pipeline has been created.
func PipelineRendering(format render.Format) (next unsafe.Pointer, free func()) {
	info := C.newPipelineRendering(C.VkFormat(format))
	return unsafe.Pointer(info), func() { C.free(unsafe.Pointer(info)) }
}
