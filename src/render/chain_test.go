package render

import (
	"fmt"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

func TestSelectSurfaceFormat(t *testing.T) {
	unorm := SurfaceFormat{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}
	srgb := SurfaceFormat{Format: FormatB8G8R8A8Srgb, ColorSpace: ColorSpaceSrgbNonlinear}
	rgba := SurfaceFormat{Format: FormatR8G8B8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}
	// Preferred format in a non-sRGB colour space does not count.
	unormOther := SurfaceFormat{Format: FormatB8G8R8A8Unorm, ColorSpace: 1000104001}

	for idx, tc := range []struct {
		formats []SurfaceFormat
		want    SurfaceFormat
	}{
		{[]SurfaceFormat{unorm}, unorm},
		{[]SurfaceFormat{srgb, unorm}, unorm},
		{[]SurfaceFormat{rgba, srgb}, rgba},
		{[]SurfaceFormat{unormOther, srgb}, unormOther},
	} {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			got, err := SelectSurfaceFormat(tc.formats)
			require.NoError(t, err)
			require.Equal(t, tc.want, got)
		})
	}

	_, err := SelectSurfaceFormat(nil)
	require.True(t, errors.Is(err, ErrNoSurfaceFormat))
}

func TestSelectPresentMode(t *testing.T) {
	require.Equal(t, PresentModeMailbox, SelectPresentMode([]PresentMode{PresentModeFifo, PresentModeMailbox}))
	require.Equal(t, PresentModeFifo, SelectPresentMode([]PresentMode{PresentModeImmediate, PresentModeFifo}))
	require.Equal(t, PresentModeFifo, SelectPresentMode(nil))
}

func TestSelectExtent(t *testing.T) {
	bounded := SurfaceCapabilities{
		CurrentExtent:  Extent2D{Width: UndefinedExtent, Height: UndefinedExtent},
		MinImageExtent: Extent2D{Width: 64, Height: 64},
		MaxImageExtent: Extent2D{Width: 1920, Height: 1080},
	}
	fixed := bounded
	fixed.CurrentExtent = Extent2D{Width: 1024, Height: 768}

	for idx, tc := range []struct {
		caps          SurfaceCapabilities
		width, height int
		want          Extent2D
	}{
		{fixed, 1280, 720, Extent2D{1024, 768}},
		{bounded, 1280, 720, Extent2D{1280, 720}},
		{bounded, 4000, 3000, Extent2D{1920, 1080}},
		{bounded, 10, 2000, Extent2D{64, 1080}},
		{bounded, -5, 0, Extent2D{64, 64}},
	} {
		t.Run(fmt.Sprintf("%d/%dx%d", idx, tc.width, tc.height), func(t *testing.T) {
			require.Equal(t, tc.want, SelectExtent(tc.caps, tc.width, tc.height))
		})
	}
}

func TestSelectImageCount(t *testing.T) {
	for idx, tc := range []struct {
		min, max uint32
		want     uint32
	}{
		{2, 8, 3},
		{2, 0, 3},
		{3, 3, 3},
		{1, 2, 2},
	} {
		t.Run(fmt.Sprint(idx), func(t *testing.T) {
			caps := SurfaceCapabilities{MinImageCount: tc.min, MaxImageCount: tc.max}
			require.Equal(t, tc.want, SelectImageCount(caps))
		})
	}
}

func TestSelectChainConfig(t *testing.T) {
	caps := SurfaceCapabilities{
		MinImageCount:    2,
		MaxImageCount:    4,
		CurrentExtent:    Extent2D{Width: 800, Height: 600},
		CurrentTransform: 1,
	}
	cfg, err := SelectChainConfig(caps,
		[]SurfaceFormat{{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear}},
		[]PresentMode{PresentModeFifo}, 1, 1)
	require.NoError(t, err)
	require.Equal(t, ChainConfig{
		Format:       SurfaceFormat{Format: FormatB8G8R8A8Unorm, ColorSpace: ColorSpaceSrgbNonlinear},
		PresentMode:  PresentModeFifo,
		Extent:       Extent2D{Width: 800, Height: 600},
		ImageCount:   3,
		PreTransform: 1,
	}, cfg)
}

func TestChainBuildHandsOverOldSwapchain(t *testing.T) {
	drv := newFakeDriver()
	win := newFakeWindow(drv, 640, 480)
	r, err := NewRenderer(drv, win, Config{})
	require.NoError(t, err)
	defer r.Close()

	first := r.chain.swapchain.Get()
	win.resize(800, 600)
	require.NoError(t, r.Recreate())

	require.Len(t, drv.swapchains, 2)
	require.Equal(t, first, drv.swapchains[1].OldSwapchain)
	require.NotContains(t, drv.live, uintptr(first), "old swapchain is destroyed after the hand-off")
	require.Empty(t, drv.misuse)
}
