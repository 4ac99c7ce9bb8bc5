package core

import (
	"math/rand"

	"github.com/go-gl/mathgl/mgl32"
)

// FrameSnapshot is the fully encoded GPU input for one frame. Buffers are
// reused between frames; Extract overwrites every field.
type FrameSnapshot struct {
	Camera CameraParams
	Params LightPassParams

	CameraBytes []byte
	ParamsBytes []byte
	Lights      []byte
	Occluders   []byte
	Masks       []byte
	Probes      []byte

	LightCount    int
	OccluderCount int
	MaskCount     int

	// CameraOK is false when the scene had no usable camera and neutral
	// parameters were substituted.
	CameraOK    bool
	CameraCount int
	ResetCause  ResetCause
}

// Extractor builds frame snapshots from a scene. It owns the cross-frame
// state of the pipeline: the temporal tracker, the frame counter and the
// probe pose reservoir.
type Extractor struct {
	Tracker   *ProjectionTracker
	reservoir ProbeReservoir
	frame     int32
	rng       *rand.Rand
}

func NewExtractor(seed int64) *Extractor {
	return &Extractor{
		Tracker: NewProjectionTracker(),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// FrameCounter returns the counter value the next Extract call will stamp
// into the light pass uniform, assuming no temporal reset.
func (e *Extractor) FrameCounter() int32 {
	return e.frame
}

// Extract encodes the scene into snap. Invisible lights and occluders are
// skipped, light jitter is applied, and the camera is observed for temporal
// resets. Scene contents are copied; the caller may reuse the scene
// immediately.
func (e *Extractor) Extract(snap *FrameSnapshot, scene *Scene, sizes ComputedTargetSizes, scaling TargetScalingParams, cfg PassConfig) {
	snap.Lights = NewStorageHeader(snap.Lights[:0], 0)
	snap.LightCount = 0
	for i := range scene.Lights {
		l := &scene.Lights[i]
		if !l.Visible {
			continue
		}
		pos := l.Position
		intensity := l.Intensity
		if !cfg.JitterDisabled {
			if l.JitterTranslation > 0 {
				pos = pos.Add(mgl32.Vec2{
					e.jitter(l.JitterTranslation),
					e.jitter(l.JitterTranslation),
				})
			}
			if l.JitterIntensity > 0 {
				intensity += e.jitter(l.JitterIntensity)
			}
		}
		snap.Lights = AppendLight(snap.Lights, pos, l.Color, intensity, l.Falloff)
		snap.LightCount++
	}
	PutStorageHeader(snap.Lights, uint32(snap.LightCount))

	snap.Occluders = NewStorageHeader(snap.Occluders[:0], 0)
	snap.OccluderCount = 0
	for i := range scene.Occluders {
		o := &scene.Occluders[i]
		if !o.Visible {
			continue
		}
		snap.Occluders = AppendOccluder(snap.Occluders, *o)
		snap.OccluderCount++
	}
	PutStorageHeader(snap.Occluders, uint32(snap.OccluderCount))

	snap.Masks = NewStorageHeader(snap.Masks[:0], 0)
	snap.MaskCount = len(scene.Masks)
	for i := range scene.Masks {
		snap.Masks = AppendMask(snap.Masks, scene.Masks[i])
	}
	PutStorageHeader(snap.Masks, uint32(snap.MaskCount))

	snap.CameraCount = len(scene.Cameras)
	snap.CameraOK = snap.CameraCount == 1
	snap.ResetCause = ResetNone

	screen := sizes.PrimaryVec()
	cam := CameraParams{
		ViewProj:    mgl32.Ident4(),
		InvViewProj: mgl32.Ident4(),
		ScreenSize:  screen,
		ScreenSizeInv: mgl32.Vec2{
			safeInv(screen.X()),
			safeInv(screen.Y()),
		},
		SDFScale:    mgl32.Vec2{scaling.SDFScale, scaling.SDFScale},
		InvSDFScale: mgl32.Vec2{safeInv(scaling.SDFScale), safeInv(scaling.SDFScale)},
	}

	if snap.CameraOK {
		c := scene.Cameras[0]
		proj := c.Projection(screen.X(), screen.Y())
		view := c.View()
		cam.ViewProj = proj.Mul4(view.Inv())
		cam.InvViewProj = view.Mul4(proj.Inv())

		snap.ResetCause = e.Tracker.Observe(proj, cam.ViewProj, c.Position)
		if snap.ResetCause != ResetNone {
			cam.TemporalReset = 1.0
			e.frame = 0
		}
		e.reservoir.SetPose(e.frame, c.Position)
	} else {
		// No usable camera. Neutral parameters keep the pass well
		// defined without touching temporal history.
		e.reservoir.SetPose(e.frame, mgl32.Vec2{})
	}

	snap.Camera = cam
	snap.Params = LightPassParams{
		FrameCounter:   e.frame,
		ProbeSize:      ProbeSize,
		ProbeAtlasCols: int32(sizes.ProbeGrid[0]),
		ProbeAtlasRows: int32(sizes.ProbeGrid[1]),
		Config:         cfg,
	}
	snap.Params.Config.SkylightColor = scene.SkylightColor()

	snap.CameraBytes = snap.Camera.Encode(snap.CameraBytes)
	snap.ParamsBytes = snap.Params.Encode(snap.ParamsBytes)
	snap.Probes = e.reservoir.Encode(snap.Probes)

	e.frame = (e.frame + 1) % ReservoirSlots
}

// jitter returns a uniform sample in [-amplitude, amplitude].
func (e *Extractor) jitter(amplitude float32) float32 {
	return (e.rng.Float32()*2 - 1) * amplitude
}

func safeInv(v float32) float32 {
	if v == 0 {
		return 0
	}
	return 1.0 / v
}
