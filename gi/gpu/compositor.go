package gpu

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight/gi/shaders"
)

// Compositor blends the floor, walls and objects layers with the filtered
// irradiance target into the swapchain surface.
type Compositor struct {
	pipeline  *wgpu.RenderPipeline
	layout    *wgpu.BindGroupLayout
	bindGroup *wgpu.BindGroup
	paramsBuf *wgpu.Buffer

	Exposure float32
	Gamma    float32
}

func NewCompositor(device *wgpu.Device, surfaceFormat wgpu.TextureFormat) (*Compositor, error) {
	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "post-processing",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.PostProcessing},
	})
	if err != nil {
		return nil, fmt.Errorf("compile post processing: %w", err)
	}
	defer module.Release()

	c := &Compositor{Exposure: 1.0, Gamma: 2.2}

	layerTexture := wgpu.TextureBindingLayout{
		SampleType:    wgpu.TextureSampleTypeFloat,
		ViewDimension: wgpu.TextureViewDimension2D,
	}
	c.layout, err = device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "post-processing",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageFragment, Texture: layerTexture},
			{Binding: 1, Visibility: wgpu.ShaderStageFragment, Texture: layerTexture},
			{Binding: 2, Visibility: wgpu.ShaderStageFragment, Texture: layerTexture},
			{Binding: 3, Visibility: wgpu.ShaderStageFragment, Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}},
			{Binding: 4, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}},
			{Binding: 5, Visibility: wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			}},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("post processing layout: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "post-processing",
		BindGroupLayouts: []*wgpu.BindGroupLayout{c.layout},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("post processing pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	c.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "post-processing",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology: wgpu.PrimitiveTopologyTriangleList,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("post processing pipeline: %w", err)
	}

	c.paramsBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "post-processing-params",
		Size:  16,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		c.Release()
		return nil, fmt.Errorf("post processing params: %w", err)
	}
	return c, nil
}

// Rebind points the compositor at the current layer and irradiance targets.
// Called after every target recreation.
func (c *Compositor) Rebind(device *wgpu.Device, layers *LayerTargets, targets *Targets) error {
	if c.bindGroup != nil {
		c.bindGroup.Release()
		c.bindGroup = nil
	}
	bg, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "post-processing",
		Layout: c.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: layers.FloorView},
			{Binding: 1, TextureView: layers.WallsView},
			{Binding: 2, TextureView: layers.ObjectsView},
			{Binding: 3, TextureView: targets.FilterView},
			{Binding: 4, Sampler: layers.Sampler},
			{Binding: 5, Buffer: c.paramsBuf, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		return fmt.Errorf("post processing bind group: %w", err)
	}
	c.bindGroup = bg
	return nil
}

// WriteParams uploads the tonemap parameters.
func (c *Compositor) WriteParams(queue *wgpu.Queue) {
	var buf [16]byte
	binary.LittleEndian.PutUint32(buf[0:], math.Float32bits(c.Exposure))
	binary.LittleEndian.PutUint32(buf[4:], math.Float32bits(c.Gamma))
	queue.WriteBuffer(c.paramsBuf, 0, buf[:])
}

// Encode draws the composite pass into the given surface view.
func (c *Compositor) Encode(encoder *wgpu.CommandEncoder, view *wgpu.TextureView) bool {
	if c.bindGroup == nil {
		return false
	}
	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "post-processing",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(c.pipeline)
	pass.SetBindGroup(0, c.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	return true
}

func (c *Compositor) Release() {
	if c.bindGroup != nil {
		c.bindGroup.Release()
	}
	if c.paramsBuf != nil {
		c.paramsBuf.Release()
	}
	if c.pipeline != nil {
		c.pipeline.Release()
	}
	if c.layout != nil {
		c.layout.Release()
	}
	*c = Compositor{}
}
