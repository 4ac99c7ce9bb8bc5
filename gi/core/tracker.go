package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// ResetCause identifies which camera change invalidated temporal history.
type ResetCause int

const (
	ResetNone ResetCause = iota
	ResetMovement
	ResetScale
	ResetProjection
)

func (c ResetCause) String() string {
	switch c {
	case ResetMovement:
		return "movement"
	case ResetScale:
		return "scale"
	case ResetProjection:
		return "projection"
	default:
		return "none"
	}
}

// ProjectionTracker detects camera changes large enough to make accumulated
// probe history unusable. It compares the current camera against the last
// observed frame on three axes, checked in order: translation, zoom, and any
// other view-projection change (rotation, aspect, window resize).
type ProjectionTracker struct {
	// MovementThreshold is squared world distance.
	MovementThreshold float32
	// ScaleThreshold is the allowed drift of the projection's first
	// diagonal element.
	ScaleThreshold float32
	// ProjectionThreshold is the allowed max element-wise difference
	// between consecutive view-projection matrices.
	ProjectionThreshold float32

	initialized  bool
	prevViewProj mgl32.Mat4
	prevPosition mgl32.Vec2
	prevScale    float32
}

func NewProjectionTracker() *ProjectionTracker {
	return &ProjectionTracker{
		MovementThreshold:   0.01,
		ScaleThreshold:      0.001,
		ProjectionThreshold: 0.01,
	}
}

// Observe records the camera state for this frame and reports whether the
// change since the previous frame requires a temporal reset. The first
// observation only seeds the tracker and never reports a reset.
func (t *ProjectionTracker) Observe(proj, viewProj mgl32.Mat4, position mgl32.Vec2) ResetCause {
	scale := proj.At(0, 0)
	if !t.initialized {
		t.initialized = true
		t.prevViewProj = viewProj
		t.prevPosition = position
		t.prevScale = scale
		return ResetNone
	}

	cause := ResetNone
	delta := position.Sub(t.prevPosition)
	if delta.Dot(delta) > t.MovementThreshold {
		cause = ResetMovement
	} else if math32.Abs(scale-t.prevScale) > t.ScaleThreshold {
		cause = ResetScale
	} else if maxElemDiff(viewProj, t.prevViewProj) > t.ProjectionThreshold {
		cause = ResetProjection
	}

	t.prevViewProj = viewProj
	t.prevPosition = position
	t.prevScale = scale
	return cause
}

func maxElemDiff(a, b mgl32.Mat4) float32 {
	var max float32
	for i := 0; i < 16; i++ {
		d := math32.Abs(a[i] - b[i])
		if d > max {
			max = d
		}
	}
	return max
}
