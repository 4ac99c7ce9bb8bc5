package core

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScene() *Scene {
	s := NewScene()
	s.Cameras = append(s.Cameras, Camera{Scale: 1.0})
	s.Lights = append(s.Lights,
		LightSource{Position: mgl32.Vec2{0, 0}, Color: mgl32.Vec3{1, 1, 1}, Intensity: 10, Falloff: mgl32.Vec3{1, 0, 0.1}, Visible: true},
		LightSource{Position: mgl32.Vec2{50, 0}, Color: mgl32.Vec3{1, 0, 0}, Intensity: 5, Falloff: mgl32.Vec3{1, 0, 0.1}, Visible: false},
	)
	s.Occluders = append(s.Occluders,
		Occluder{Center: mgl32.Vec2{10, 10}, HalfExtent: mgl32.Vec2{4, 4}, Visible: true},
		Occluder{Center: mgl32.Vec2{-10, 10}, HalfExtent: mgl32.Vec2{4, 4}, Visible: false},
		Occluder{Center: mgl32.Vec2{0, -10}, HalfExtent: mgl32.Vec2{2, 8}, Visible: true},
	)
	s.Masks = append(s.Masks, SkylightMask{Center: mgl32.Vec2{0, 0}, HalfExtent: mgl32.Vec2{100, 100}})
	return s
}

func extract(e *Extractor, snap *FrameSnapshot, s *Scene) {
	sizes := ComputeTargetSizes(1280, 720, DefaultTargetScaling())
	e.Extract(snap, s, sizes, DefaultTargetScaling(), DefaultPassConfig())
}

func TestExtractFiltersInvisible(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	extract(e, &snap, testScene())

	assert.Equal(t, 1, snap.LightCount)
	assert.Equal(t, 2, snap.OccluderCount)
	assert.Equal(t, 1, snap.MaskCount)
	assert.Equal(t, uint32(1), u32At(snap.Lights, 0))
	assert.Equal(t, uint32(2), u32At(snap.Occluders, 0))
	assert.Len(t, snap.Lights, StorageHeaderSize+GpuLightSize)
	assert.Len(t, snap.Occluders, StorageHeaderSize+2*GpuOccluderSize)
}

func TestExtractReusesBuffers(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()
	extract(e, &snap, s)

	// Shrinking the scene must shrink the encoded buffers too.
	s.Lights = s.Lights[:0]
	extract(e, &snap, s)
	assert.Equal(t, 0, snap.LightCount)
	assert.Equal(t, uint32(0), u32At(snap.Lights, 0))
	assert.Len(t, snap.Lights, StorageHeaderSize)
}

func TestExtractFrameCounterAdvancesAndWraps(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()

	for i := 0; i < ReservoirSlots+5; i++ {
		extract(e, &snap, s)
		assert.Equal(t, int32(i%ReservoirSlots), snap.Params.FrameCounter)
		assert.GreaterOrEqual(t, snap.Params.FrameCounter, int32(0))
		assert.Less(t, snap.Params.FrameCounter, int32(ReservoirSlots))
	}
}

func TestExtractFirstFrameDoesNotReset(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	extract(e, &snap, testScene())

	assert.Equal(t, ResetNone, snap.ResetCause)
	assert.Equal(t, float32(0), snap.Camera.TemporalReset)
}

func TestExtractResetZeroesFrameCounter(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()

	for i := 0; i < 10; i++ {
		extract(e, &snap, s)
	}
	require.Equal(t, int32(9), snap.Params.FrameCounter)

	// Large camera jump. The counter restarts on the same frame the
	// reset flag is raised.
	s.Cameras[0].Position = mgl32.Vec2{100, 100}
	extract(e, &snap, s)
	assert.Equal(t, ResetMovement, snap.ResetCause)
	assert.Equal(t, float32(1), snap.Camera.TemporalReset)
	assert.Equal(t, int32(0), snap.Params.FrameCounter)

	extract(e, &snap, s)
	assert.Equal(t, ResetNone, snap.ResetCause)
	assert.Equal(t, int32(1), snap.Params.FrameCounter)
}

func TestExtractMissingCamera(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()
	s.Cameras = nil
	extract(e, &snap, s)

	assert.False(t, snap.CameraOK)
	assert.Equal(t, 0, snap.CameraCount)
	assert.Equal(t, float32(0), snap.Camera.TemporalReset)
	assert.Equal(t, mgl32.Ident4(), snap.Camera.ViewProj)

	// The tracker must not have been seeded by the fallback frame.
	s = testScene()
	extract(e, &snap, s)
	assert.Equal(t, ResetNone, snap.ResetCause)
}

func TestExtractMultipleCameras(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()
	s.Cameras = append(s.Cameras, Camera{Scale: 2.0})
	extract(e, &snap, s)

	assert.False(t, snap.CameraOK)
	assert.Equal(t, 2, snap.CameraCount)
	assert.Equal(t, mgl32.Ident4(), snap.Camera.ViewProj)
}

func TestExtractJitterBounded(t *testing.T) {
	e := NewExtractor(42)
	var snap FrameSnapshot
	s := NewScene()
	s.Cameras = append(s.Cameras, Camera{Scale: 1.0})
	s.Lights = append(s.Lights, LightSource{
		Position:          mgl32.Vec2{100, 200},
		Color:             mgl32.Vec3{1, 1, 1},
		Intensity:         10,
		Falloff:           mgl32.Vec3{1, 0, 0},
		JitterIntensity:   0.5,
		JitterTranslation: 2.0,
		Visible:           true,
	})

	moved := false
	for i := 0; i < 20; i++ {
		extract(e, &snap, s)
		x := f32At(snap.Lights, StorageHeaderSize)
		y := f32At(snap.Lights, StorageHeaderSize+4)
		intensity := f32At(snap.Lights, StorageHeaderSize+8)

		assert.LessOrEqual(t, math32.Abs(x-100), float32(2.0))
		assert.LessOrEqual(t, math32.Abs(y-200), float32(2.0))
		assert.LessOrEqual(t, math32.Abs(intensity-10), float32(0.5))
		if x != 100 || y != 200 {
			moved = true
		}
	}
	assert.True(t, moved)
}

func TestExtractJitterDisabled(t *testing.T) {
	e := NewExtractor(42)
	var snap FrameSnapshot
	s := NewScene()
	s.Cameras = append(s.Cameras, Camera{Scale: 1.0})
	s.Lights = append(s.Lights, LightSource{
		Position:          mgl32.Vec2{100, 200},
		Intensity:         10,
		JitterIntensity:   0.5,
		JitterTranslation: 2.0,
		Visible:           true,
	})

	sizes := ComputeTargetSizes(1280, 720, DefaultTargetScaling())
	cfg := DefaultPassConfig()
	cfg.JitterDisabled = true
	e.Extract(&snap, s, sizes, DefaultTargetScaling(), cfg)

	assert.Equal(t, float32(100), f32At(snap.Lights, StorageHeaderSize))
	assert.Equal(t, float32(200), f32At(snap.Lights, StorageHeaderSize+4))
	assert.Equal(t, float32(10), f32At(snap.Lights, StorageHeaderSize+8))
}

func TestExtractUnchangedSceneByteIdentical(t *testing.T) {
	e := NewExtractor(42)
	s := testScene()
	sizes := ComputeTargetSizes(1280, 720, DefaultTargetScaling())
	cfg := DefaultPassConfig()
	cfg.JitterDisabled = true

	var first, second FrameSnapshot
	e.Extract(&first, s, sizes, DefaultTargetScaling(), cfg)
	e.Extract(&second, s, sizes, DefaultTargetScaling(), cfg)

	// With jitter off, re-extracting an unchanged scene is deterministic
	// down to the encoded bytes. Only the frame counter moves on.
	assert.Equal(t, first.Lights, second.Lights)
	assert.Equal(t, first.Occluders, second.Occluders)
	assert.Equal(t, first.Masks, second.Masks)
	assert.Equal(t, first.CameraBytes, second.CameraBytes)
	assert.NotEqual(t, first.Params.FrameCounter, second.Params.FrameCounter)
}

func TestExtractSkylightAccumulates(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()
	s.Skylights = append(s.Skylights,
		Skylight{Color: mgl32.Vec3{1, 0, 0}, Intensity: 0.5},
		Skylight{Color: mgl32.Vec3{0, 1, 0}, Intensity: 0.25},
	)
	extract(e, &snap, s)

	assert.Equal(t, mgl32.Vec3{0.5, 0.25, 0}, snap.Params.Config.SkylightColor)
}

func TestExtractProbePoseFollowsCamera(t *testing.T) {
	e := NewExtractor(1)
	var snap FrameSnapshot
	s := testScene()
	s.Cameras[0].Position = mgl32.Vec2{12, -7}
	extract(e, &snap, s)

	// Frame 0's pose slot carries the camera position.
	assert.Equal(t, float32(12), f32At(snap.Probes, 0))
	assert.Equal(t, float32(-7), f32At(snap.Probes, 4))
}
