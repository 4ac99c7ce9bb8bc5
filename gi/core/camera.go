package core

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a 2D orthographic camera. Scale is world units per screen pixel,
// so a larger scale means a wider view of the world.
type Camera struct {
	Position mgl32.Vec2
	Scale    float32
}

func NewCamera() Camera {
	return Camera{Scale: 1.0}
}

// Projection maps world extents around the origin to clip space. The first
// diagonal element encodes the horizontal zoom, which the temporal tracker
// watches for scale changes.
func (c Camera) Projection(screenW, screenH float32) mgl32.Mat4 {
	if screenW <= 0 || screenH <= 0 {
		return mgl32.Ident4()
	}
	hw := screenW * c.Scale * 0.5
	hh := screenH * c.Scale * 0.5
	return mgl32.Ortho(-hw, hw, -hh, hh, -1000.0, 1000.0)
}

// View is the camera's world transform. The view-projection matrix uses its
// inverse so that world coordinates end up camera-relative.
func (c Camera) View() mgl32.Mat4 {
	return mgl32.Translate3D(c.Position.X(), c.Position.Y(), 0)
}

func (c Camera) ViewProjection(screenW, screenH float32) mgl32.Mat4 {
	return c.Projection(screenW, screenH).Mul4(c.View().Inv())
}
