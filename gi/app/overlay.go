package app

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight/gi/core"
	"github.com/sschneiders/magiclight/gi/shaders"
)

const overlayFontSize = 14

// textOverlay draws debug text on top of the composited frame from a glyph
// atlas rasterized at startup.
type textOverlay struct {
	queue *wgpu.Queue
	atlas *core.GlyphAtlas

	pipeline  *wgpu.RenderPipeline
	bindGroup *wgpu.BindGroup
	paramsBuf *wgpu.Buffer
	texture   *wgpu.Texture
	view      *wgpu.TextureView
	sampler   *wgpu.Sampler

	vertexBuf *wgpu.Buffer
	vertices  []float32
}

func newTextOverlay(device *wgpu.Device, queue *wgpu.Queue, surfaceFormat wgpu.TextureFormat, fontPath string) (*textOverlay, error) {
	atlas, err := core.NewGlyphAtlas(fontPath, overlayFontSize)
	if err != nil {
		return nil, err
	}
	o := &textOverlay{queue: queue, atlas: atlas}

	o.texture, err = device.CreateTexture(&wgpu.TextureDescriptor{
		Label:         "overlay-atlas",
		Size:          wgpu.Extent3D{Width: core.AtlasSize, Height: core.AtlasSize, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     wgpu.TextureDimension2D,
		Format:        wgpu.TextureFormatR8Unorm,
		Usage:         wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("overlay atlas texture: %w", err)
	}
	queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  o.texture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		atlas.Image.Pix,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  uint32(atlas.Image.Stride),
			RowsPerImage: core.AtlasSize,
		},
		&wgpu.Extent3D{Width: core.AtlasSize, Height: core.AtlasSize, DepthOrArrayLayers: 1},
	)
	o.view, err = o.texture.CreateView(nil)
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay atlas view: %w", err)
	}
	o.sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "overlay-sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay sampler: %w", err)
	}

	o.paramsBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "overlay-params",
		Size:  32,
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay params: %w", err)
	}

	module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "overlay-text",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: shaders.TextOverlay},
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("compile overlay shader: %w", err)
	}
	defer module.Release()

	layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "overlay-text",
		Entries: []wgpu.BindGroupLayoutEntry{
			{Binding: 0, Visibility: wgpu.ShaderStageVertex | wgpu.ShaderStageFragment, Buffer: wgpu.BufferBindingLayout{
				Type: wgpu.BufferBindingTypeUniform,
			}},
			{Binding: 1, Visibility: wgpu.ShaderStageFragment, Texture: wgpu.TextureBindingLayout{
				SampleType:    wgpu.TextureSampleTypeFloat,
				ViewDimension: wgpu.TextureViewDimension2D,
			}},
			{Binding: 2, Visibility: wgpu.ShaderStageFragment, Sampler: wgpu.SamplerBindingLayout{
				Type: wgpu.SamplerBindingTypeFiltering,
			}},
		},
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay layout: %w", err)
	}
	defer layout.Release()

	o.bindGroup, err = device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "overlay-text",
		Layout: layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, Buffer: o.paramsBuf, Size: wgpu.WholeSize},
			{Binding: 1, TextureView: o.view},
			{Binding: 2, Sampler: o.sampler},
		},
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay bind group: %w", err)
	}

	pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "overlay-text",
		BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay pipeline layout: %w", err)
	}
	defer pipelineLayout.Release()

	o.pipeline, err = device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "overlay-text",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
			Buffers: []wgpu.VertexBufferLayout{{
				ArrayStride: 16,
				StepMode:    wgpu.VertexStepModeVertex,
				Attributes: []wgpu.VertexAttribute{
					{Format: wgpu.VertexFormatFloat32x2, Offset: 0, ShaderLocation: 0},
					{Format: wgpu.VertexFormatFloat32x2, Offset: 8, ShaderLocation: 1},
				},
			}},
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    surfaceFormat,
				Blend: &wgpu.BlendState{
					Color: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorSrcAlpha,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
					},
					Alpha: wgpu.BlendComponent{
						Operation: wgpu.BlendOperationAdd,
						SrcFactor: wgpu.BlendFactorOne,
						DstFactor: wgpu.BlendFactorOneMinusSrcAlpha,
					},
				},
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
		o.release()
		return nil, fmt.Errorf("overlay pipeline: %w", err)
	}

	o.vertexBuf, err = device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "overlay-vertices",
		Size:  64 * 1024,
		Usage: wgpu.BufferUsageVertex | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		o.release()
		return nil, fmt.Errorf("overlay vertex buffer: %w", err)
	}
	return o, nil
}

func (o *textOverlay) draw(encoder *wgpu.CommandEncoder, view *wgpu.TextureView, text string, sizes core.ComputedTargetSizes) {
	o.vertices = o.atlas.AppendQuads(o.vertices[:0], text, 8, 8)
	if len(o.vertices) == 0 {
		return
	}
	raw := make([]byte, len(o.vertices)*4)
	for i, v := range o.vertices {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	if uint64(len(raw)) > o.vertexBuf.GetSize() {
		raw = raw[:o.vertexBuf.GetSize()]
	}
	o.queue.WriteBuffer(o.vertexBuf, 0, raw)

	var params [32]byte
	binary.LittleEndian.PutUint32(params[0:], math.Float32bits(float32(sizes.Window[0])))
	binary.LittleEndian.PutUint32(params[4:], math.Float32bits(float32(sizes.Window[1])))
	// color rgba at offset 16
	for i, c := range []float32{1, 1, 1, 1} {
		binary.LittleEndian.PutUint32(params[16+i*4:], math.Float32bits(c))
	}
	o.queue.WriteBuffer(o.paramsBuf, 0, params[:])

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		Label: "overlay-text",
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:    view,
			LoadOp:  wgpu.LoadOpLoad,
			StoreOp: wgpu.StoreOpStore,
		}},
	})
	pass.SetPipeline(o.pipeline)
	pass.SetBindGroup(0, o.bindGroup, nil)
	pass.SetVertexBuffer(0, o.vertexBuf, 0, uint64(len(raw)))
	pass.Draw(uint32(len(raw)/16), 1, 0, 0)
	pass.End()
}

func (o *textOverlay) release() {
	if o.vertexBuf != nil {
		o.vertexBuf.Release()
	}
	if o.pipeline != nil {
		o.pipeline.Release()
	}
	if o.bindGroup != nil {
		o.bindGroup.Release()
	}
	if o.paramsBuf != nil {
		o.paramsBuf.Release()
	}
	if o.sampler != nil {
		o.sampler.Release()
	}
	if o.view != nil {
		o.view.Release()
	}
	if o.texture != nil {
		o.texture.Release()
	}
	*o = textOverlay{}
}
