package core

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCameraProjectionScale(t *testing.T) {
	cam := Camera{Scale: 1.0}
	proj := cam.Projection(640, 360)
	assert.InDelta(t, 2.0/640.0, proj.At(0, 0), 1e-7)

	// Zooming out shrinks the first diagonal element.
	cam.Scale = 2.0
	proj = cam.Projection(640, 360)
	assert.InDelta(t, 2.0/1280.0, proj.At(0, 0), 1e-7)
}

func TestCameraProjectionDegenerate(t *testing.T) {
	cam := Camera{Scale: 1.0}
	assert.Equal(t, mgl32.Ident4(), cam.Projection(0, 360))
	assert.Equal(t, mgl32.Ident4(), cam.Projection(640, 0))
}

func TestCameraViewProjectionRoundTrip(t *testing.T) {
	cam := Camera{Position: mgl32.Vec2{37, -12}, Scale: 0.5}
	vp := cam.ViewProjection(640, 360)
	inv := cam.View().Mul4(cam.Projection(640, 360).Inv())

	world := mgl32.Vec4{37 + 10, -12 + 5, 0, 1}
	clip := vp.Mul4x1(world)
	back := inv.Mul4x1(clip)

	assert.InDelta(t, world.X(), back.X(), 1e-3)
	assert.InDelta(t, world.Y(), back.Y(), 1e-3)
}

func TestCameraCenterMapsToClipOrigin(t *testing.T) {
	cam := Camera{Position: mgl32.Vec2{100, 50}, Scale: 1.0}
	vp := cam.ViewProjection(640, 360)
	clip := vp.Mul4x1(mgl32.Vec4{100, 50, 0, 1})

	assert.InDelta(t, 0, clip.X(), 1e-5)
	assert.InDelta(t, 0, clip.Y(), 1e-5)
}
