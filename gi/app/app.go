// Package app orchestrates the 2D global illumination pipeline: snapshot
// extraction, GPU upload, the five compute stages and final composition.
package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/cogentcore/webgpu/wgpuglfw"
	"github.com/go-gl/glfw/v3.3/glfw"

	"github.com/sschneiders/magiclight/gi/core"
	"github.com/sschneiders/magiclight/gi/gpu"
)

// Config selects the pipeline tunables of one App instance.
type Config struct {
	Pass    core.PassConfig
	Scaling core.TargetScalingParams
	// Seed initializes the jitter generator. Zero means time-based.
	Seed int64

	// Overlay enables the debug text overlay; FontPath must point to a
	// TTF or OTF file when set.
	Overlay  bool
	FontPath string

	Exposure float32
	Gamma    float32

	// Temporal reset threshold overrides. Zero keeps the tracker default.
	MovementThreshold   float32
	ScaleThreshold      float32
	ProjectionThreshold float32
}

func DefaultConfig() Config {
	return Config{
		Pass:     core.DefaultPassConfig(),
		Scaling:  core.DefaultTargetScaling(),
		Exposure: 1.0,
		Gamma:    2.2,
	}
}

// App owns the GPU side of the light pipeline for one window.
type App struct {
	log core.Logger
	cfg Config

	window        *glfw.Window
	instance      *wgpu.Instance
	surface       *wgpu.Surface
	adapter       *wgpu.Adapter
	device        *wgpu.Device
	queue         *wgpu.Queue
	surfaceConfig *wgpu.SurfaceConfiguration

	// Scene is repopulated by the caller before each Update.
	Scene     *core.Scene
	extractor *core.Extractor
	snapshot  core.FrameSnapshot

	sizes      core.ComputedTargetSizes
	assets     *gpu.PipelineAssets
	targets    *gpu.Targets
	layers     *gpu.LayerTargets
	pipelines  *gpu.LightPipelines
	groups     *gpu.BindGroups
	compositor *gpu.Compositor
	overlay    *textOverlay

	groupsDirty bool

	pendingResize    [2]int
	hasPendingResize bool

	frameCount  uint64
	lastFPSTime time.Time
	fpsFrames   int
	fps         float64
}

func New(window *glfw.Window, cfg Config, log core.Logger) *App {
	if log == nil {
		log = core.NewNopLogger()
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	extractor := core.NewExtractor(seed)
	if cfg.MovementThreshold > 0 {
		extractor.Tracker.MovementThreshold = cfg.MovementThreshold
	}
	if cfg.ScaleThreshold > 0 {
		extractor.Tracker.ScaleThreshold = cfg.ScaleThreshold
	}
	if cfg.ProjectionThreshold > 0 {
		extractor.Tracker.ProjectionThreshold = cfg.ProjectionThreshold
	}
	return &App{
		log:       log,
		cfg:       cfg,
		window:    window,
		Scene:     core.NewScene(),
		extractor: extractor,
	}
}

// Init brings up the device, compiles the pipelines and allocates targets
// for the current framebuffer size.
func (a *App) Init() error {
	a.instance = wgpu.CreateInstance(nil)
	a.surface = a.instance.CreateSurface(wgpuglfw.GetSurfaceDescriptor(a.window))

	adapter, err := a.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		CompatibleSurface: a.surface,
		PowerPreference:   wgpu.PowerPreferenceHighPerformance,
	})
	if err != nil {
		return fmt.Errorf("request adapter: %w", err)
	}
	a.adapter = adapter

	a.device, err = adapter.RequestDevice(nil)
	if err != nil {
		return fmt.Errorf("request device: %w", err)
	}
	a.queue = a.device.GetQueue()

	width, height := a.window.GetFramebufferSize()
	caps := a.surface.GetCapabilities(adapter)
	a.surfaceConfig = &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      caps.Formats[0],
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: wgpu.PresentModeFifo,
		AlphaMode:   caps.AlphaModes[0],
	}
	a.surface.Configure(a.adapter, a.device, a.surfaceConfig)

	a.pipelines, err = gpu.CreateLightPipelines(a.device)
	if err != nil {
		return err
	}
	a.compositor, err = gpu.NewCompositor(a.device, a.surfaceConfig.Format)
	if err != nil {
		return err
	}
	a.compositor.Exposure = a.cfg.Exposure
	a.compositor.Gamma = a.cfg.Gamma

	a.assets = gpu.NewPipelineAssets(a.device, a.queue)

	if a.cfg.Overlay && a.cfg.FontPath != "" {
		a.overlay, err = newTextOverlay(a.device, a.queue, a.surfaceConfig.Format, a.cfg.FontPath)
		if err != nil {
			a.log.Warnf("debug overlay disabled: %v", err)
			a.overlay = nil
		}
	}

	a.window.SetFramebufferSizeCallback(func(_ *glfw.Window, w, h int) {
		a.Resize(w, h)
	})

	a.lastFPSTime = time.Now()
	a.applyResize(width, height)
	return nil
}

// Resize records a framebuffer size change. The change is applied at the
// start of the next frame so targets are never swapped mid-encode.
func (a *App) Resize(w, h int) {
	a.pendingResize = [2]int{w, h}
	a.hasPendingResize = true
}

func (a *App) applyResize(w, h int) {
	sizes := core.ComputeTargetSizes(w, h, a.cfg.Scaling)
	a.sizes = sizes

	if a.groups != nil {
		a.groups.Release()
		a.groups = nil
	}
	if a.targets != nil {
		a.targets.Release()
		a.targets = nil
	}
	if a.layers != nil {
		a.layers.Release()
		a.layers = nil
	}

	if !sizes.IsValid() {
		// Minimized or degenerate window. Rendering is suspended until
		// a valid size arrives.
		a.log.Debugf("suspending light pass for %dx%d framebuffer", w, h)
		return
	}

	if w > 0 && h > 0 {
		a.surfaceConfig.Width = uint32(w)
		a.surfaceConfig.Height = uint32(h)
		a.surface.Configure(a.adapter, a.device, a.surfaceConfig)
	}

	var err error
	a.targets, err = gpu.CreateTargets(a.device, sizes)
	if err != nil {
		a.log.Errorf("recreate targets: %v", err)
		return
	}
	a.layers, err = gpu.CreateLayerTargets(a.device, sizes, a.surfaceConfig.Format)
	if err != nil {
		a.log.Errorf("recreate layer targets: %v", err)
		return
	}
	if err := a.compositor.Rebind(a.device, a.layers, a.targets); err != nil {
		a.log.Errorf("rebind compositor: %v", err)
	}
	a.groupsDirty = true
	a.log.Debugf("targets resized: primary=%v sdf=%v probes=%v", sizes.Primary, sizes.SDF, sizes.ProbeGrid)
}

// LayerViews exposes the floor, walls and objects render layers. Update
// clears them, so callers draw sprites after Update and before Render; the
// composite pass then samples whatever was drawn.
func (a *App) LayerViews() (floor, walls, objects *wgpu.TextureView) {
	if a.layers == nil {
		return nil, nil, nil
	}
	return a.layers.FloorView, a.layers.WallsView, a.layers.ObjectsView
}

// Update extracts the scene into a snapshot, uploads it and clears the
// render layers for this frame's sprite draws.
func (a *App) Update() error {
	if a.hasPendingResize {
		a.hasPendingResize = false
		a.applyResize(a.pendingResize[0], a.pendingResize[1])
	}
	if !a.sizes.IsValid() {
		return nil
	}

	a.extractor.Extract(&a.snapshot, a.Scene, a.sizes, a.cfg.Scaling, a.cfg.Pass)
	if !a.snapshot.CameraOK {
		a.log.Warnf("expected exactly one floor camera, found %d; lighting uses neutral camera", a.snapshot.CameraCount)
	}
	if a.snapshot.ResetCause != core.ResetNone {
		a.log.Debugf("temporal reset: %s", a.snapshot.ResetCause)
	}

	recreated, err := a.assets.WriteFrame(&a.snapshot)
	if err != nil {
		return fmt.Errorf("upload frame: %w", err)
	}
	if (recreated || a.groupsDirty) && a.targets != nil {
		groups, err := a.pipelines.CreateBindGroups(a.device, a.assets, a.targets)
		if err != nil {
			return fmt.Errorf("rebuild bind groups: %w", err)
		}
		if a.groups != nil {
			a.groups.Release()
		}
		a.groups = groups
		a.groupsDirty = false
	}

	// Layers are cleared here, not in Render, so sprites drawn between
	// Update and Render survive until the composite pass samples them.
	a.clearLayers()
	return nil
}

// Render encodes and submits one frame. Frames hitting a not-ready resource
// or a degenerate window are skipped silently.
func (a *App) Render() error {
	if !a.sizes.IsValid() {
		return nil
	}
	if err := gpu.CheckReady(a.assets, a.targets, a.pipelines, a.groups); err != nil {
		var nr *gpu.NotReadyError
		if errors.As(err, &nr) {
			a.log.Debugf("skipping frame: %v", nr)
			return nil
		}
		return err
	}

	next, err := a.surface.GetCurrentTexture()
	if err != nil {
		a.log.Errorf("acquire surface texture: %v", err)
		return nil
	}
	defer next.Release()
	view, err := next.CreateView(nil)
	if err != nil {
		return fmt.Errorf("surface view: %w", err)
	}
	defer view.Release()

	encoder, err := a.device.CreateCommandEncoder(nil)
	if err != nil {
		return fmt.Errorf("command encoder: %w", err)
	}
	defer encoder.Release()

	gpu.EncodeLightPass(encoder, a.pipelines, a.groups, a.sizes)
	a.compositor.WriteParams(a.queue)
	a.compositor.Encode(encoder, view)

	if a.overlay != nil {
		a.overlay.draw(encoder, view, a.overlayText(), a.sizes)
	}

	cmd, err := encoder.Finish(nil)
	if err != nil {
		return fmt.Errorf("finish encoder: %w", err)
	}
	defer cmd.Release()
	a.queue.Submit(cmd)
	a.surface.Present()

	a.frameCount++
	a.fpsFrames++
	if since := time.Since(a.lastFPSTime); since >= time.Second {
		a.fps = float64(a.fpsFrames) / since.Seconds()
		a.fpsFrames = 0
		a.lastFPSTime = time.Now()
	}
	return nil
}

// clearLayers resets the render layers and submits the clears immediately.
// Running inside Update keeps the queue order clear, caller sprites, light
// pass; clearing in Render would erase sprites submitted in between.
func (a *App) clearLayers() {
	if a.layers == nil {
		return
	}
	encoder, err := a.device.CreateCommandEncoder(nil)
	if err != nil {
		a.log.Errorf("clear layers: %v", err)
		return
	}
	defer encoder.Release()

	clearPass := func(view *wgpu.TextureView, c wgpu.Color) {
		pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
			ColorAttachments: []wgpu.RenderPassColorAttachment{{
				View:       view,
				LoadOp:     wgpu.LoadOpClear,
				StoreOp:    wgpu.StoreOpStore,
				ClearValue: c,
			}},
		})
		pass.End()
	}
	clearPass(a.layers.FloorView, wgpu.Color{R: 0.35, G: 0.35, B: 0.38, A: 1})
	clearPass(a.layers.WallsView, wgpu.Color{A: 0})
	clearPass(a.layers.ObjectsView, wgpu.Color{A: 0})

	cmd, err := encoder.Finish(nil)
	if err != nil {
		a.log.Errorf("clear layers: %v", err)
		return
	}
	defer cmd.Release()
	a.queue.Submit(cmd)
}

func (a *App) overlayText() string {
	return fmt.Sprintf("fps %.0f\nframe %d\nlights %d occluders %d\nreset %s",
		a.fps, a.snapshot.Params.FrameCounter, a.snapshot.LightCount, a.snapshot.OccluderCount, a.snapshot.ResetCause)
}

// FPS returns the frame rate measured over the last second.
func (a *App) FPS() float64 { return a.fps }

func (a *App) Release() {
	if a.overlay != nil {
		a.overlay.release()
	}
	if a.groups != nil {
		a.groups.Release()
	}
	if a.compositor != nil {
		a.compositor.Release()
	}
	if a.pipelines != nil {
		a.pipelines.Release()
	}
	if a.layers != nil {
		a.layers.Release()
	}
	if a.targets != nil {
		a.targets.Release()
	}
	if a.assets != nil {
		a.assets.Release()
	}
	if a.device != nil {
		a.device.Release()
	}
	if a.adapter != nil {
		a.adapter.Release()
	}
	if a.surface != nil {
		a.surface.Release()
	}
	if a.instance != nil {
		a.instance.Release()
	}
}
