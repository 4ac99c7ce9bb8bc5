package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// LightSource is an omnidirectional 2D light. Falloff holds the constant,
// linear and quadratic attenuation coefficients. Jitter amplitudes are in
// intensity units and world units respectively; zero disables jitter.
type LightSource struct {
	Position          mgl32.Vec2
	Color             mgl32.Vec3
	Intensity         float32
	Falloff           mgl32.Vec3
	JitterIntensity   float32
	JitterTranslation float32
	Visible           bool
}

// Occluder is a rotated rectangle that blocks light. Rotation is radians
// counter-clockwise around the center.
type Occluder struct {
	Center     mgl32.Vec2
	Rotation   float32
	HalfExtent mgl32.Vec2
	Visible    bool
}

// SkylightMask is an axis-aligned region excluded from ambient sky light.
type SkylightMask struct {
	Center     mgl32.Vec2
	HalfExtent mgl32.Vec2
}

// Skylight is the global ambient term applied everywhere outside skylight
// masks. Multiple skylights accumulate additively.
type Skylight struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Scene is the per-frame input to snapshot extraction. The owner repopulates
// it each frame from whatever entity store it keeps; extraction never retains
// references into it.
type Scene struct {
	Lights    []LightSource
	Occluders []Occluder
	Masks     []SkylightMask
	Skylights []Skylight
	Cameras   []Camera
}

func NewScene() *Scene {
	return &Scene{}
}

// Reset clears all registries keeping allocated capacity.
func (s *Scene) Reset() {
	s.Lights = s.Lights[:0]
	s.Occluders = s.Occluders[:0]
	s.Masks = s.Masks[:0]
	s.Skylights = s.Skylights[:0]
	s.Cameras = s.Cameras[:0]
}

// SkylightColor sums all skylight contributions into one premultiplied color.
func (s *Scene) SkylightColor() mgl32.Vec3 {
	var out mgl32.Vec3
	for _, sky := range s.Skylights {
		out = out.Add(sky.Color.Mul(sky.Intensity))
	}
	return out
}
