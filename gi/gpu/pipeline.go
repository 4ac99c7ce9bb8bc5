package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight/gi/shaders"
)

// resource names a pipeline input a stage can bind.
type resource int

const (
	resCameraParams resource = iota
	resPassParams
	resLights
	resOccluders
	resMasks
	resProbePoses
	resSDFRead
	resSDFSampler
	resSDFWrite
	resProbeRead
	resProbeWrite
	resBounceRead
	resBounceWrite
	resBlendRead
	resBlendWrite
	resFilterRead
	resFilterWrite
	resPoseWrite
)

type bindingKind int

const (
	bindUniform bindingKind = iota
	bindStorageRead
	bindTexture
	bindSampler
	bindStorageTexture
)

type stageBinding struct {
	res    resource
	kind   bindingKind
	format wgpu.TextureFormat
}

type computeStage struct {
	name     string
	source   string
	bindings []stageBinding
}

// lightStages declares the five passes of the light pipeline in dispatch
// order, with their bind group layouts. Binding indices are positional and
// must match the @binding declarations of each shader.
var lightStages = []computeStage{
	{
		name:   "gi-sdf",
		source: shaders.SDF,
		bindings: []stageBinding{
			{res: resCameraParams, kind: bindUniform},
			{res: resOccluders, kind: bindStorageRead},
			{res: resSDFWrite, kind: bindStorageTexture, format: SDFFormat},
		},
	},
	{
		name:   "gi-ss-probe",
		source: shaders.Probe,
		bindings: []stageBinding{
			{res: resCameraParams, kind: bindUniform},
			{res: resPassParams, kind: bindUniform},
			{res: resLights, kind: bindStorageRead},
			{res: resMasks, kind: bindStorageRead},
			{res: resSDFRead, kind: bindTexture},
			{res: resSDFSampler, kind: bindSampler},
			{res: resProbeWrite, kind: bindStorageTexture, format: ProbeFormat},
		},
	},
	{
		name:   "gi-ss-bounce",
		source: shaders.Bounce,
		bindings: []stageBinding{
			{res: resCameraParams, kind: bindUniform},
			{res: resPassParams, kind: bindUniform},
			{res: resProbeRead, kind: bindTexture},
			{res: resSDFRead, kind: bindTexture},
			{res: resSDFSampler, kind: bindSampler},
			{res: resBounceWrite, kind: bindStorageTexture, format: BounceFormat},
		},
	},
	{
		name:   "gi-ss-blend",
		source: shaders.Blend,
		bindings: []stageBinding{
			{res: resCameraParams, kind: bindUniform},
			{res: resPassParams, kind: bindUniform},
			{res: resProbePoses, kind: bindStorageRead},
			{res: resBounceRead, kind: bindTexture},
			{res: resFilterRead, kind: bindTexture},
			{res: resBlendWrite, kind: bindStorageTexture, format: BlendFormat},
		},
	},
	{
		name:   "gi-ss-filter",
		source: shaders.Filter,
		bindings: []stageBinding{
			{res: resCameraParams, kind: bindUniform},
			{res: resPassParams, kind: bindUniform},
			{res: resBlendRead, kind: bindTexture},
			{res: resFilterWrite, kind: bindStorageTexture, format: FilterFormat},
			{res: resPoseWrite, kind: bindStorageTexture, format: PoseFormat},
		},
	},
}

// LightPipelines holds the compiled compute pipelines and their layouts.
// Pipelines survive resizes; only bind groups are rebuilt.
type LightPipelines struct {
	pipelines []*wgpu.ComputePipeline
	layouts   []*wgpu.BindGroupLayout
}

// BindGroups holds one bind group per stage, in dispatch order. They are
// rebuilt whenever a buffer or target is recreated.
type BindGroups struct {
	groups []*wgpu.BindGroup
}

// CreateLightPipelines compiles all compute stages.
func CreateLightPipelines(device *wgpu.Device) (*LightPipelines, error) {
	lp := &LightPipelines{}
	for _, stage := range lightStages {
		module, err := device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
			Label:          stage.name,
			WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: stage.source},
		})
		if err != nil {
			lp.Release()
			return nil, fmt.Errorf("compile %s: %w", stage.name, err)
		}

		entries := make([]wgpu.BindGroupLayoutEntry, len(stage.bindings))
		for i, b := range stage.bindings {
			entries[i] = layoutEntry(uint32(i), b)
		}
		layout, err := device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
			Label:   stage.name,
			Entries: entries,
		})
		if err != nil {
			module.Release()
			lp.Release()
			return nil, fmt.Errorf("layout %s: %w", stage.name, err)
		}

		pipelineLayout, err := device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
			Label:            stage.name,
			BindGroupLayouts: []*wgpu.BindGroupLayout{layout},
		})
		if err != nil {
			module.Release()
			layout.Release()
			lp.Release()
			return nil, fmt.Errorf("pipeline layout %s: %w", stage.name, err)
		}

		pipeline, err := device.CreateComputePipeline(&wgpu.ComputePipelineDescriptor{
			Label:  stage.name,
			Layout: pipelineLayout,
			Compute: wgpu.ProgrammableStageDescriptor{
				Module:     module,
				EntryPoint: "main",
			},
		})
		pipelineLayout.Release()
		module.Release()
		if err != nil {
			layout.Release()
			lp.Release()
			return nil, fmt.Errorf("pipeline %s: %w", stage.name, err)
		}

		lp.layouts = append(lp.layouts, layout)
		lp.pipelines = append(lp.pipelines, pipeline)
	}
	return lp, nil
}

// CreateBindGroups resolves every stage's bindings against the current
// buffers and targets.
func (lp *LightPipelines) CreateBindGroups(device *wgpu.Device, assets *PipelineAssets, targets *Targets) (*BindGroups, error) {
	bg := &BindGroups{}
	for si, stage := range lightStages {
		entries := make([]wgpu.BindGroupEntry, len(stage.bindings))
		for i, b := range stage.bindings {
			entry, err := bindEntry(uint32(i), b.res, assets, targets)
			if err != nil {
				bg.Release()
				return nil, fmt.Errorf("bind %s: %w", stage.name, err)
			}
			entries[i] = entry
		}
		group, err := device.CreateBindGroup(&wgpu.BindGroupDescriptor{
			Label:   stage.name,
			Layout:  lp.layouts[si],
			Entries: entries,
		})
		if err != nil {
			bg.Release()
			return nil, fmt.Errorf("bind group %s: %w", stage.name, err)
		}
		bg.groups = append(bg.groups, group)
	}
	return bg, nil
}

func layoutEntry(binding uint32, b stageBinding) wgpu.BindGroupLayoutEntry {
	e := wgpu.BindGroupLayoutEntry{
		Binding:    binding,
		Visibility: wgpu.ShaderStageCompute,
	}
	switch b.kind {
	case bindUniform:
		e.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform}
	case bindStorageRead:
		e.Buffer = wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeReadOnlyStorage}
	case bindTexture:
		e.Texture = wgpu.TextureBindingLayout{
			SampleType:    wgpu.TextureSampleTypeUnfilterableFloat,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	case bindSampler:
		e.Sampler = wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeNonFiltering}
	case bindStorageTexture:
		e.StorageTexture = wgpu.StorageTextureBindingLayout{
			Access:        wgpu.StorageTextureAccessWriteOnly,
			Format:        b.format,
			ViewDimension: wgpu.TextureViewDimension2D,
		}
	}
	return e
}

func bindEntry(binding uint32, res resource, assets *PipelineAssets, targets *Targets) (wgpu.BindGroupEntry, error) {
	e := wgpu.BindGroupEntry{Binding: binding, Size: wgpu.WholeSize}
	switch res {
	case resCameraParams:
		e.Buffer = assets.CameraBuf
	case resPassParams:
		e.Buffer = assets.ParamsBuf
	case resLights:
		e.Buffer = assets.LightsBuf
	case resOccluders:
		e.Buffer = assets.OccludersBuf
	case resMasks:
		e.Buffer = assets.MasksBuf
	case resProbePoses:
		e.Buffer = assets.ProbesBuf
	case resSDFRead, resSDFWrite:
		e.TextureView = targets.SDFView
	case resSDFSampler:
		e.Sampler = targets.SDFSampler
	case resProbeRead, resProbeWrite:
		e.TextureView = targets.ProbeView
	case resBounceRead, resBounceWrite:
		e.TextureView = targets.BounceView
	case resBlendRead, resBlendWrite:
		e.TextureView = targets.BlendView
	case resFilterRead, resFilterWrite:
		e.TextureView = targets.FilterView
	case resPoseWrite:
		e.TextureView = targets.PoseView
	default:
		return e, fmt.Errorf("unknown resource %d", res)
	}
	if e.Buffer == nil && e.TextureView == nil && e.Sampler == nil {
		return e, fmt.Errorf("resource %d not ready", res)
	}
	return e, nil
}

func (lp *LightPipelines) Release() {
	for _, p := range lp.pipelines {
		if p != nil {
			p.Release()
		}
	}
	for _, l := range lp.layouts {
		if l != nil {
			l.Release()
		}
	}
	lp.pipelines = nil
	lp.layouts = nil
}

func (bg *BindGroups) Release() {
	for _, g := range bg.groups {
		if g != nil {
			g.Release()
		}
	}
	bg.groups = nil
}
