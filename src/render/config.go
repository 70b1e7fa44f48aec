package render

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Config tunes renderer construction. The zero value is usable.
type Config struct {
	// AppName is reported to the driver in the application info.
	AppName string
	// APIVersion is the Vulkan API version requested from the instance.
	// Dynamic rendering needs 1.3 or the KHR extension.
	APIVersion uint32
	// Validation enables VK_LAYER_KHRONOS_validation when the loader has it.
	Validation bool
	// ClearColor is loaded into the colour attachment at the start of every
	// frame. Nil selects DefaultClearColor.
	ClearColor *mgl32.Vec4
	// FenceTimeout bounds the wait on the in-flight fence, in nanoseconds.
	// Zero means no bound.
	FenceTimeout uint64
}

var DefaultClearColor = mgl32.Vec4{0.08, 0.09, 0.11, 1.0}

func (c Config) withDefaults() Config {
	if c.AppName == "" {
		c.AppName = "sandbox"
	}
	if c.APIVersion == 0 {
		c.APIVersion = MakeVersion(1, 3, 0)
	}
	color := DefaultClearColor
	if c.ClearColor != nil {
		color = *c.ClearColor
	}
	c.ClearColor = &color
	if c.FenceTimeout == 0 {
		c.FenceTimeout = math.MaxUint64
	}
	return c
}
