// Package layers holds the built-in render layers.
package layers

import (
	"io/fs"

	"sandbox/src/render"
	"sandbox/src/render/shader"
	"sandbox/src/render/vkdriver"

	"github.com/pkg/errors"
	vk "github.com/vulkan-go/vulkan"
)

//go:generate glslc shaders/triangle.vert -o shaders/triangle.vert.spv
//go:generate glslc shaders/triangle.frag -o shaders/triangle.frag.spv

const (
	TriangleVertexShader   = "triangle.vert.spv"
	TriangleFragmentShader = "triangle.frag.spv"
)

// Triangle draws a single hard-coded triangle. The vertex positions and
// colours live in the vertex shader, so no buffers are bound.
type Triangle struct {
	layout   render.Scoped[vk.Device, vk.PipelineLayout]
	pipeline render.Scoped[vk.Device, vk.Pipeline]
}

var _ render.Layer = (*Triangle)(nil)

// NewTriangle builds the triangle pipeline against ctx. The compiled
// shaders are read from shaders.
func NewTriangle(ctx render.Context, shaders fs.FS) (_ *Triangle, err error) {
	vertCode, err := shader.LoadFS(shaders, TriangleVertexShader)
	if err != nil {
		return nil, err
	}
	fragCode, err := shader.LoadFS(shaders, TriangleFragmentShader)
	if err != nil {
		return nil, err
	}

	device := vkdriver.VkDevice(ctx.Device)
	t := &Triangle{}
	defer func() {
		if err != nil {
			t.Close()
		}
	}()

	vert, err := newShaderModule(device, vertCode)
	if err != nil {
		return nil, errors.Wrap(err, "vertex shader")
	}
	defer vert.Release()
	frag, err := newShaderModule(device, fragCode)
	if err != nil {
		return nil, errors.Wrap(err, "fragment shader")
	}
	defer frag.Release()

	layoutInfo := vk.PipelineLayoutCreateInfo{
		SType: vk.StructureTypePipelineLayoutCreateInfo,
	}
	var layout vk.PipelineLayout
	if err := render.NewError(vkdriver.Results, "vkCreatePipelineLayout", render.Result(vk.CreatePipelineLayout(device, &layoutInfo, nil, &layout))); err != nil {
		return nil, err
	}
	t.layout = render.Own(device, layout, func(d vk.Device, l vk.PipelineLayout) {
		vk.DestroyPipelineLayout(d, l, nil)
	})

	stages := []vk.PipelineShaderStageCreateInfo{
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageVertexBit,
			Module: vert.Get(),
			PName:  "main\x00",
		},
		{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  vk.ShaderStageFragmentBit,
			Module: frag.Get(),
			PName:  "main\x00",
		},
	}
	vertexInput := vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	inputAssembly := vk.PipelineInputAssemblyStateCreateInfo{
		SType:    vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology: vk.PrimitiveTopologyTriangleList,
	}
	viewportState := vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}
	rasterizer := vk.PipelineRasterizationStateCreateInfo{
		SType:       vk.StructureTypePipelineRasterizationStateCreateInfo,
		PolygonMode: vk.PolygonModeFill,
		CullMode:    vk.CullModeFlags(vk.CullModeNone),
		FrontFace:   vk.FrontFaceCounterClockwise,
		LineWidth:   1,
	}
	multisample := vk.PipelineMultisampleStateCreateInfo{
		SType:                vk.StructureTypePipelineMultisampleStateCreateInfo,
		RasterizationSamples: vk.SampleCount1Bit,
	}
	colorBlend := vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		AttachmentCount: 1,
		PAttachments: []vk.PipelineColorBlendAttachmentState{{
			ColorWriteMask: vk.ColorComponentFlags(
				vk.ColorComponentRBit | vk.ColorComponentGBit |
					vk.ColorComponentBBit | vk.ColorComponentABit,
			),
		}},
	}
	dynamicState := vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: 2,
		PDynamicStates:    []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}

	rendering, free := vkdriver.PipelineRendering(ctx.Format)
	defer free()

	pipelineInfo := []vk.GraphicsPipelineCreateInfo{{
		SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
		PNext:               rendering,
		StageCount:          uint32(len(stages)),
		PStages:             stages,
		PVertexInputState:   &vertexInput,
		PInputAssemblyState: &inputAssembly,
		PViewportState:      &viewportState,
		PRasterizationState: &rasterizer,
		PMultisampleState:   &multisample,
		PColorBlendState:    &colorBlend,
		PDynamicState:       &dynamicState,
		Layout:              layout,
	}}
	pipelines := make([]vk.Pipeline, 1)
	res := vk.CreateGraphicsPipelines(device, vk.PipelineCache(vk.NullHandle), 1, pipelineInfo, nil, pipelines)
	if err := render.NewError(vkdriver.Results, "vkCreateGraphicsPipelines", render.Result(res)); err != nil {
		return nil, err
	}
	t.pipeline = render.Own(device, pipelines[0], func(d vk.Device, p vk.Pipeline) {
		vk.DestroyPipeline(d, p, nil)
	})

	render.Logger().Info("triangle pipeline built", "format", int32(ctx.Format))
	return t, nil
}

func (t *Triangle) Record(cmd render.CommandBuffer, _ render.Extent2D) {
	c := vkdriver.VkCommandBuffer(cmd)
	vk.CmdBindPipeline(c, vk.PipelineBindPointGraphics, t.pipeline.Get())
	vk.CmdDraw(c, 3, 1, 0, 0)
}

// Close destroys the pipeline. The device must be idle.
func (t *Triangle) Close() {
	t.pipeline.Release()
	t.layout.Release()
}

func newShaderModule(device vk.Device, code []uint32) (render.Scoped[vk.Device, vk.ShaderModule], error) {
	info := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if err := render.NewError(vkdriver.Results, "vkCreateShaderModule", render.Result(vk.CreateShaderModule(device, &info, nil, &module))); err != nil {
		return render.Scoped[vk.Device, vk.ShaderModule]{}, err
	}
	return render.Own(device, module, func(d vk.Device, m vk.ShaderModule) {
		vk.DestroyShaderModule(d, m, nil)
	}), nil
}
