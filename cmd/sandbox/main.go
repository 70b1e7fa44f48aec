// Command sandbox opens a window and presents frames with the Vulkan
// presentation core until the window is closed.
package main

import (
	"flag"
	"log/slog"
	"os"
	"runtime"

	"sandbox/src/platform"
	"sandbox/src/render"
	"sandbox/src/render/layers"
	"sandbox/src/render/vkdriver"

	"github.com/pkg/errors"
	"github.com/xlab/closer"
)

func init() {
	// GLFW and the presentation queue must stay on the main thread.
	runtime.LockOSThread()
}

var args struct {
	width      int
	height     int
	title      string
	validation bool
	shaders    string
	logLevel   string
}

func main() {
	flag.IntVar(&args.width, "width", 1280, "initial window width")
	flag.IntVar(&args.height, "height", 720, "initial window height")
	flag.StringVar(&args.title, "title", "Vulkan Sandbox", "window title")
	flag.BoolVar(&args.validation, "validation", false, "enable VK_LAYER_KHRONOS_validation when available")
	flag.StringVar(&args.shaders, "shaders", "", "directory with triangle.vert.spv and triangle.frag.spv; empty draws only the clear colour")
	flag.StringVar(&args.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	flag.Parse()

	var level slog.Level
	if err := level.UnmarshalText([]byte(args.logLevel)); err != nil {
		closer.Fatalln("invalid -log-level:", err)
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	render.SetLogger(logger)

	closer.Bind(func() {
		slog.Info("bye")
	})
	defer closer.Close()
	closer.Checked(run, true)
}

func run() (err error) {
	defer render.CheckError(&err)

	if err := platform.Init(); err != nil {
		return err
	}
	defer platform.Terminate()

	win, err := platform.NewWindow(args.width, args.height, args.title)
	if err != nil {
		return err
	}
	defer win.Destroy()

	drv, err := vkdriver.New(platform.ProcAddr())
	if err != nil {
		return err
	}
	r, err := render.NewRenderer(drv, win, render.Config{
		AppName:    args.title,
		Validation: args.validation,
	})
	if err != nil {
		return errors.Wrap(err, "create renderer")
	}
	defer r.Close()

	dim := r.SwapchainDimensions()
	slog.Info("renderer ready",
		"gpu", r.PhysicalDeviceProperties().Name,
		"width", dim.Width,
		"height", dim.Height,
		"images", r.Context().ImageCount)

	if args.shaders != "" {
		tri, err := layers.NewTriangle(r.Context(), os.DirFS(args.shaders))
		if err != nil {
			return errors.Wrap(err, "create triangle layer")
		}
		defer func() {
			if err := r.WaitIdle(); err != nil {
				slog.Warn("wait idle before layer teardown", "err", err)
			}
			tri.Close()
		}()
		r.AddLayer(tri)
	}

	return loop(win, r)
}

func loop(win *platform.Window, r *render.Renderer) error {
	events := win.PollEvents()
	for {
		for _, ev := range events {
			switch ev.Kind {
			case platform.EventQuit:
				logStats(r)
				return nil
			case platform.EventResize:
				slog.Debug("window resized", "width", ev.Width, "height", ev.Height)
				if err := r.Recreate(); err != nil {
					return err
				}
			}
		}
		if win.ShouldClose() {
			logStats(r)
			return nil
		}

		status, err := r.RenderFrame()
		if err != nil {
			return errors.Wrap(err, "render frame")
		}
		if status == render.FrameMinimized {
			events = win.WaitEvents()
			continue
		}
		events = win.PollEvents()
	}
}

func logStats(r *render.Renderer) {
	stats := r.Stats()
	slog.Info("frame loop finished",
		"presented", stats.Presented,
		"skipped", stats.Skipped,
		"rebuilds", stats.Rebuilds,
		"last_frame", stats.LastFrame)
}
