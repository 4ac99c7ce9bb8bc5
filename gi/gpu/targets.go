package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight/gi/core"
)

// Texture formats of the intermediate targets. The SDF uses r32float because
// storage textures cannot be written in half precision; it is sampled with a
// nearest sampler as an unfilterable float.
const (
	SDFFormat    = wgpu.TextureFormatR32Float
	ProbeFormat  = wgpu.TextureFormatRGBA16Float
	BounceFormat = wgpu.TextureFormatRGBA32Float
	BlendFormat  = wgpu.TextureFormatRGBA32Float
	FilterFormat = wgpu.TextureFormatRGBA32Float
	PoseFormat   = wgpu.TextureFormatRG32Float
)

// Targets owns the intermediate textures of the light pipeline. All targets
// are recreated together on resize.
type Targets struct {
	Sizes core.ComputedTargetSizes

	SDF    *wgpu.Texture
	Probe  *wgpu.Texture
	Bounce *wgpu.Texture
	Blend  *wgpu.Texture
	Filter *wgpu.Texture
	Pose   *wgpu.Texture

	SDFView    *wgpu.TextureView
	ProbeView  *wgpu.TextureView
	BounceView *wgpu.TextureView
	BlendView  *wgpu.TextureView
	FilterView *wgpu.TextureView
	PoseView   *wgpu.TextureView

	// SDFSampler is nearest-filtered; r32float is not filterable.
	SDFSampler *wgpu.Sampler
}

// CreateTargets allocates every intermediate target for the given sizes.
// Sizes must be valid; callers gate on IsValid first.
func CreateTargets(device *wgpu.Device, sizes core.ComputedTargetSizes) (*Targets, error) {
	if !sizes.IsValid() {
		return nil, fmt.Errorf("create targets: degenerate sizes %v", sizes)
	}

	t := &Targets{Sizes: sizes}
	usage := wgpu.TextureUsageStorageBinding | wgpu.TextureUsageTextureBinding

	var err error
	create := func(name string, size [2]uint32, format wgpu.TextureFormat) (*wgpu.Texture, *wgpu.TextureView) {
		if err != nil {
			return nil, nil
		}
		var tex *wgpu.Texture
		tex, err = device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         name,
			Size:          wgpu.Extent3D{Width: size[0], Height: size[1], DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         usage,
		})
		if err != nil {
			err = fmt.Errorf("create target %s: %w", name, err)
			return nil, nil
		}
		view, verr := tex.CreateView(nil)
		if verr != nil {
			err = fmt.Errorf("create target view %s: %w", name, verr)
			return tex, nil
		}
		return tex, view
	}

	t.SDF, t.SDFView = create("gi-sdf", sizes.SDF, SDFFormat)
	t.Probe, t.ProbeView = create("gi-ss-probe", sizes.ProbeGrid, ProbeFormat)
	t.Bounce, t.BounceView = create("gi-ss-bounce", sizes.ProbeGrid, BounceFormat)
	t.Blend, t.BlendView = create("gi-ss-blend", sizes.ProbeGrid, BlendFormat)
	t.Filter, t.FilterView = create("gi-ss-filter", sizes.Primary, FilterFormat)
	t.Pose, t.PoseView = create("gi-ss-pose", sizes.Primary, PoseFormat)
	if err != nil {
		t.Release()
		return nil, err
	}

	t.SDFSampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "gi-sdf-sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeNearest,
		MinFilter:     wgpu.FilterModeNearest,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		t.Release()
		return nil, fmt.Errorf("create sdf sampler: %w", err)
	}
	return t, nil
}

func (t *Targets) Release() {
	views := []*wgpu.TextureView{t.SDFView, t.ProbeView, t.BounceView, t.BlendView, t.FilterView, t.PoseView}
	for _, v := range views {
		if v != nil {
			v.Release()
		}
	}
	texs := []*wgpu.Texture{t.SDF, t.Probe, t.Bounce, t.Blend, t.Filter, t.Pose}
	for _, tex := range texs {
		if tex != nil {
			tex.Release()
		}
	}
	if t.SDFSampler != nil {
		t.SDFSampler.Release()
	}
	*t = Targets{}
}

// LayerTargets are the render layers the game draws into before composition.
type LayerTargets struct {
	Sizes core.ComputedTargetSizes

	Floor   *wgpu.Texture
	Walls   *wgpu.Texture
	Objects *wgpu.Texture

	FloorView   *wgpu.TextureView
	WallsView   *wgpu.TextureView
	ObjectsView *wgpu.TextureView

	Sampler *wgpu.Sampler
	Format  wgpu.TextureFormat
}

// CreateLayerTargets allocates the floor, walls and objects layers at the
// primary target size.
func CreateLayerTargets(device *wgpu.Device, sizes core.ComputedTargetSizes, format wgpu.TextureFormat) (*LayerTargets, error) {
	if !sizes.IsValid() {
		return nil, fmt.Errorf("create layer targets: degenerate sizes %v", sizes)
	}

	lt := &LayerTargets{Sizes: sizes, Format: format}
	var err error
	create := func(name string) (*wgpu.Texture, *wgpu.TextureView) {
		if err != nil {
			return nil, nil
		}
		var tex *wgpu.Texture
		tex, err = device.CreateTexture(&wgpu.TextureDescriptor{
			Label:         name,
			Size:          wgpu.Extent3D{Width: sizes.Primary[0], Height: sizes.Primary[1], DepthOrArrayLayers: 1},
			MipLevelCount: 1,
			SampleCount:   1,
			Dimension:     wgpu.TextureDimension2D,
			Format:        format,
			Usage:         wgpu.TextureUsageRenderAttachment | wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		})
		if err != nil {
			err = fmt.Errorf("create layer %s: %w", name, err)
			return nil, nil
		}
		view, verr := tex.CreateView(nil)
		if verr != nil {
			err = fmt.Errorf("create layer view %s: %w", name, verr)
			return tex, nil
		}
		return tex, view
	}

	lt.Floor, lt.FloorView = create("layer-floor")
	lt.Walls, lt.WallsView = create("layer-walls")
	lt.Objects, lt.ObjectsView = create("layer-objects")
	if err != nil {
		lt.Release()
		return nil, err
	}

	lt.Sampler, err = device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "layer-sampler",
		AddressModeU:  wgpu.AddressModeClampToEdge,
		AddressModeV:  wgpu.AddressModeClampToEdge,
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     wgpu.FilterModeLinear,
		MinFilter:     wgpu.FilterModeLinear,
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		MaxAnisotropy: 1,
	})
	if err != nil {
		lt.Release()
		return nil, fmt.Errorf("create layer sampler: %w", err)
	}
	return lt, nil
}

func (lt *LayerTargets) Release() {
	for _, v := range []*wgpu.TextureView{lt.FloorView, lt.WallsView, lt.ObjectsView} {
		if v != nil {
			v.Release()
		}
	}
	for _, tex := range []*wgpu.Texture{lt.Floor, lt.Walls, lt.Objects} {
		if tex != nil {
			tex.Release()
		}
	}
	if lt.Sampler != nil {
		lt.Sampler.Release()
	}
	*lt = LayerTargets{}
}
