package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

const (
	// ProbeSize is the edge length in pixels of one screen-space probe cell.
	// The probe reservoir holds ProbeSize*ProbeSize history slots, one per
	// frame of a full probe rotation.
	ProbeSize = 8

	// WorkgroupSize matches @workgroup_size in every compute kernel.
	WorkgroupSize = 8

	// ReservoirSlots is the length of the probe pose arena.
	ReservoirSlots = ProbeSize * ProbeSize
)

// TargetScalingParams controls the resolution of intermediate render targets
// relative to the window framebuffer.
type TargetScalingParams struct {
	// PrimaryScale divides the window size to get the primary target size.
	PrimaryScale float32 `toml:"primary_scale" json:"primary_scale"`
	// SDFScale divides the primary size to get the SDF target size.
	SDFScale float32 `toml:"sdf_scale" json:"sdf_scale"`
}

func DefaultTargetScaling() TargetScalingParams {
	return TargetScalingParams{
		PrimaryScale: 1.0,
		SDFScale:     2.0,
	}
}

// ComputedTargetSizes holds the derived sizes of every intermediate target
// for the current window size. All integer sizes are in texels.
type ComputedTargetSizes struct {
	Window  [2]uint32
	Primary [2]uint32
	// AlignedPrimary is Primary rounded up to a WorkgroupSize multiple.
	// The filter pass dispatches over this grid.
	AlignedPrimary [2]uint32
	SDF            [2]uint32
	// ProbeGrid is one texel per probe cell of the primary target.
	ProbeGrid [2]uint32
}

// ComputeTargetSizes derives all target sizes from the window framebuffer
// size. Degenerate windows produce zero sizes; callers must check IsValid
// before creating textures or dispatching work.
func ComputeTargetSizes(windowW, windowH int, p TargetScalingParams) ComputedTargetSizes {
	var out ComputedTargetSizes
	if windowW <= 0 || windowH <= 0 {
		return out
	}
	primaryScale := p.PrimaryScale
	if primaryScale <= 0 {
		primaryScale = 1.0
	}
	sdfScale := p.SDFScale
	if sdfScale <= 0 {
		sdfScale = 1.0
	}

	out.Window = [2]uint32{uint32(windowW), uint32(windowH)}
	pw := uint32(math32.Ceil(float32(windowW) / primaryScale))
	ph := uint32(math32.Ceil(float32(windowH) / primaryScale))
	out.Primary = [2]uint32{pw, ph}
	out.AlignedPrimary = [2]uint32{
		alignUp(pw, WorkgroupSize),
		alignUp(ph, WorkgroupSize),
	}
	out.SDF = [2]uint32{
		uint32(math32.Ceil(float32(pw) / sdfScale)),
		uint32(math32.Ceil(float32(ph) / sdfScale)),
	}
	out.ProbeGrid = [2]uint32{
		alignUp(pw, ProbeSize) / ProbeSize,
		alignUp(ph, ProbeSize) / ProbeSize,
	}
	return out
}

// IsValid reports whether every target has a non-zero extent. Minimized
// windows and zero-size framebuffers fail this check.
func (t ComputedTargetSizes) IsValid() bool {
	return t.Primary[0] > 0 && t.Primary[1] > 0 &&
		t.SDF[0] > 0 && t.SDF[1] > 0 &&
		t.ProbeGrid[0] > 0 && t.ProbeGrid[1] > 0
}

// PrimaryVec returns the primary target size as floats for uniform upload.
func (t ComputedTargetSizes) PrimaryVec() mgl32.Vec2 {
	return mgl32.Vec2{float32(t.Primary[0]), float32(t.Primary[1])}
}

// DispatchGrid returns the workgroup counts covering a w by h texel area.
func DispatchGrid(w, h uint32) (uint32, uint32) {
	return (w + WorkgroupSize - 1) / WorkgroupSize, (h + WorkgroupSize - 1) / WorkgroupSize
}

func alignUp(v, to uint32) uint32 {
	return (v + to - 1) / to * to
}
