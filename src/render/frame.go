package render

import (
	"math"
	"time"

	"github.com/loov/hrtime"
	"github.com/pkg/errors"
)

// FrameStatus says how far a RenderFrame call got.
type FrameStatus int

const (
	// FrameMinimized means the window has no area and nothing was touched.
	FrameMinimized FrameStatus = iota
	// FrameOutOfDate means acquire found the chain stale. It was rebuilt and
	// nothing was submitted.
	FrameOutOfDate
	// FramePresented means the frame was submitted and queued for present.
	FramePresented
	// FramePresentedStale means the frame was presented but the chain no
	// longer matches the surface and has been rebuilt.
	FramePresentedStale
)

func (s FrameStatus) String() string {
	switch s {
	case FrameMinimized:
		return "minimized"
	case FrameOutOfDate:
		return "out-of-date"
	case FramePresented:
		return "presented"
	case FramePresentedStale:
		return "presented-stale"
	}
	return "unknown"
}

// FrameStats are running counters kept by the renderer.
type FrameStats struct {
	Presented uint64
	Skipped   uint64
	Rebuilds  uint64
	// LastFrame is the CPU time of the most recent presented frame, from the
	// fence wait to the present call.
	LastFrame time.Duration
}

// RenderFrame runs one frame: wait for the previous submission, acquire an
// image, record the layers into that image's command buffer, submit and
// present. Errors other than ErrClosed are fatal to the renderer.
func (r *Renderer) RenderFrame() (FrameStatus, error) {
	if r.closed {
		return FrameMinimized, errors.WithStack(ErrClosed)
	}
	if width, height := r.win.FramebufferSize(); width == 0 || height == 0 {
		r.stats.Skipped++
		return FrameMinimized, nil
	}

	start := hrtime.Now()
	device := r.device.Get()
	fence := r.inFlight.Get()

	switch res := r.drv.WaitForFence(device, fence, r.cfg.FenceTimeout); {
	case res == Timeout:
		return FrameMinimized, errors.WithStack(ErrFenceTimeout)
	case IsError(res):
		return FrameMinimized, NewError(r.drv, "vkWaitForFences", res)
	}

	index, res := r.drv.AcquireNextImage(device, r.chain.swapchain.Get(), math.MaxUint64, r.imageAcquired.Get())
	switch {
	case res == ErrorOutOfDate:
		Logger().Debug("swapchain out of date on acquire")
		return FrameOutOfDate, r.Recreate()
	case res != Success && res != Suboptimal:
		return FrameMinimized, NewError(r.drv, "vkAcquireNextImageKHR", res)
	}

	if err := NewError(r.drv, "vkResetFences", r.drv.ResetFence(device, fence)); err != nil {
		return FrameMinimized, err
	}

	slot := &r.chain.slots[index]
	if err := r.record(slot, r.chain.extent()); err != nil {
		return FrameMinimized, err
	}

	res = r.drv.QueueSubmit(r.queue, SubmitInfo{
		Wait:      r.imageAcquired.Get(),
		WaitStage: PipelineStageColorAttachmentOutput,
		Command:   slot.CommandBuffer.Get(),
		Signal:    slot.RenderFinished.Get(),
	}, fence)
	if err := NewError(r.drv, "vkQueueSubmit", res); err != nil {
		return FrameMinimized, err
	}

	res = r.drv.QueuePresent(r.queue, PresentInfo{
		Wait:      slot.RenderFinished.Get(),
		Swapchain: r.chain.swapchain.Get(),
		Index:     index,
	})
	if IsError(res) && !IsStale(res) {
		return FrameMinimized, NewError(r.drv, "vkQueuePresentKHR", res)
	}
	r.stats.Presented++
	r.stats.LastFrame = hrtime.Since(start)

	if IsStale(res) {
		Logger().Debug("swapchain stale on present", "result", r.drv.ResultError(res))
		return FramePresentedStale, r.Recreate()
	}
	Logger().Debug("frame presented", "image", index, "cpu", r.stats.LastFrame)
	return FramePresented, nil
}

// record fills slot's command buffer for one frame. A panicking layer is
// reported as an error.
func (r *Renderer) record(slot *imageSlot, extent Extent2D) (err error) {
	defer CheckError(&err)

	cmd := slot.CommandBuffer.Get()
	if err := NewError(r.drv, "vkResetCommandBuffer", r.drv.ResetCommandBuffer(cmd)); err != nil {
		return err
	}
	if err := NewError(r.drv, "vkBeginCommandBuffer", r.drv.BeginCommandBuffer(cmd)); err != nil {
		return err
	}

	from := ImageLayoutUndefined
	if slot.Initialized {
		from = ImageLayoutPresentSrc
	}
	r.drv.CmdImageBarrier(cmd, ImageBarrier{
		Image:     slot.Image,
		OldLayout: from,
		NewLayout: ImageLayoutColorAttachmentOptimal,
		SrcStage:  PipelineStageTopOfPipe,
		DstStage:  PipelineStageColorAttachmentOutput,
		DstAccess: AccessColorAttachmentWrite,
	})
	slot.Initialized = true

	r.drv.CmdBeginRendering(cmd, RenderingInfo{
		View:       slot.View.Get(),
		Extent:     extent,
		ClearColor: [4]float32(*r.cfg.ClearColor),
	})
	r.drv.CmdSetViewport(cmd, extent)
	r.drv.CmdSetScissor(cmd, extent)

	for _, layer := range r.layers {
		layer.Record(cmd, extent)
	}

	r.drv.CmdEndRendering(cmd)
	r.drv.CmdImageBarrier(cmd, ImageBarrier{
		Image:     slot.Image,
		OldLayout: ImageLayoutColorAttachmentOptimal,
		NewLayout: ImageLayoutPresentSrc,
		SrcStage:  PipelineStageColorAttachmentOutput,
		DstStage:  PipelineStageBottomOfPipe,
		SrcAccess: AccessColorAttachmentWrite,
	})

	return NewError(r.drv, "vkEndCommandBuffer", r.drv.EndCommandBuffer(cmd))
}

// Recreate rebuilds the chain against the current window size. It does
// nothing while the window has no area, so callers may call it from a
// resize handler unconditionally.
func (r *Renderer) Recreate() error {
	if r.closed {
		return errors.WithStack(ErrClosed)
	}
	if width, height := r.win.FramebufferSize(); width == 0 || height == 0 {
		return nil
	}
	if err := NewError(r.drv, "vkDeviceWaitIdle", r.drv.DeviceWaitIdle(r.device.Get())); err != nil {
		return err
	}

	r.chain.releaseSlots()
	if err := r.chain.build(); err != nil {
		return errors.Wrap(err, "rebuild swapchain")
	}
	if err := r.chain.allocate(); err != nil {
		return errors.Wrap(err, "rebuild swapchain")
	}
	r.stats.Rebuilds++
	return nil
}
