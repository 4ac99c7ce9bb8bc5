package core

import (
	"encoding/binary"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func f32At(buf []byte, off int) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(buf[off:]))
}

func u32At(buf []byte, off int) uint32 {
	return binary.LittleEndian.Uint32(buf[off:])
}

func TestCameraParamsEncode(t *testing.T) {
	p := CameraParams{
		ViewProj:      mgl32.Ident4(),
		InvViewProj:   mgl32.Ident4(),
		ScreenSize:    mgl32.Vec2{1280, 720},
		ScreenSizeInv: mgl32.Vec2{1.0 / 1280, 1.0 / 720},
		SDFScale:      mgl32.Vec2{2, 2},
		InvSDFScale:   mgl32.Vec2{0.5, 0.5},
		TemporalReset: 1,
	}
	buf := p.Encode(nil)

	require.Len(t, buf, CameraParamsSize)
	assert.Equal(t, float32(1), f32At(buf, 0))   // view_proj[0][0]
	assert.Equal(t, float32(1), f32At(buf, 64))  // inverse_view_proj[0][0]
	assert.Equal(t, float32(1280), f32At(buf, 128))
	assert.Equal(t, float32(720), f32At(buf, 132))
	assert.Equal(t, float32(2), f32At(buf, 144))
	assert.Equal(t, float32(0.5), f32At(buf, 152))
	assert.Equal(t, float32(1), f32At(buf, 160))
}

func TestLightPassParamsEncode(t *testing.T) {
	p := LightPassParams{
		FrameCounter:   17,
		ProbeSize:      ProbeSize,
		ProbeAtlasCols: 160,
		ProbeAtlasRows: 90,
		Config:         DefaultPassConfig(),
	}
	p.Config.SkylightColor = mgl32.Vec3{0.1, 0.2, 0.3}
	buf := p.Encode(nil)

	require.Len(t, buf, LightPassParamsSize)
	assert.Equal(t, uint32(17), u32At(buf, 0))
	assert.Equal(t, uint32(8), u32At(buf, 4))
	assert.Equal(t, uint32(160), u32At(buf, 8))
	assert.Equal(t, uint32(90), u32At(buf, 12))
	assert.Equal(t, uint32(16), u32At(buf, 16))
	assert.Equal(t, float32(0.2), f32At(buf, 28))
	assert.Equal(t, float32(0.8), f32At(buf, 32))
	assert.Equal(t, float32(0.1), f32At(buf, 48))
	assert.Equal(t, float32(0.3), f32At(buf, 56))
}

func TestAppendLightLayout(t *testing.T) {
	buf := NewStorageHeader(nil, 0)
	buf = AppendLight(buf, mgl32.Vec2{3, 4}, mgl32.Vec3{1, 0.5, 0.25}, 7, mgl32.Vec3{1, 2, 3})
	buf = AppendLight(buf, mgl32.Vec2{-1, -2}, mgl32.Vec3{0, 1, 0}, 1, mgl32.Vec3{1, 0, 0})
	PutStorageHeader(buf, 2)

	require.Len(t, buf, StorageHeaderSize+2*GpuLightSize)
	assert.Equal(t, uint32(2), u32At(buf, 0))

	base := StorageHeaderSize
	assert.Equal(t, float32(3), f32At(buf, base))
	assert.Equal(t, float32(4), f32At(buf, base+4))
	assert.Equal(t, float32(7), f32At(buf, base+8))
	assert.Equal(t, float32(1), f32At(buf, base+16))
	assert.Equal(t, float32(0.25), f32At(buf, base+24))
	assert.Equal(t, float32(3), f32At(buf, base+40))

	second := base + GpuLightSize
	assert.Equal(t, float32(-1), f32At(buf, second))
	assert.Equal(t, float32(-2), f32At(buf, second+4))
}

func TestAppendOccluderStoresInverseRotation(t *testing.T) {
	buf := NewStorageHeader(nil, 1)
	buf = AppendOccluder(buf, Occluder{
		Center:     mgl32.Vec2{10, 20},
		HalfExtent: mgl32.Vec2{4, 2},
		Rotation:   math.Pi / 2,
		Visible:    true,
	})

	require.Len(t, buf, StorageHeaderSize+GpuOccluderSize)
	base := StorageHeaderSize
	assert.Equal(t, float32(10), f32At(buf, base))
	assert.Equal(t, float32(4), f32At(buf, base+8))

	// Inverse of a +90 degree rotation about Z.
	want := mgl32.QuatRotate(-math.Pi/2, mgl32.Vec3{0, 0, 1})
	assert.InDelta(t, want.V.Z(), f32At(buf, base+24), 1e-6)
	assert.InDelta(t, want.W, f32At(buf, base+28), 1e-6)
}

func TestAppendOccluderIdentityRotation(t *testing.T) {
	buf := AppendOccluder(nil, Occluder{HalfExtent: mgl32.Vec2{1, 1}})

	assert.Equal(t, float32(0), f32At(buf, 16))
	assert.Equal(t, float32(0), f32At(buf, 20))
	assert.Equal(t, float32(0), f32At(buf, 24))
	assert.InDelta(t, 1.0, f32At(buf, 28), 1e-6)
}

func TestProbeReservoirEncode(t *testing.T) {
	var r ProbeReservoir
	r.SetPose(0, mgl32.Vec2{1, 2})
	r.SetPose(63, mgl32.Vec2{-5, 9})
	// Slots wrap modulo the arena size.
	r.SetPose(64, mgl32.Vec2{7, 7})

	buf := r.Encode(nil)
	require.Len(t, buf, ProbeBufferSize)

	assert.Equal(t, float32(7), f32At(buf, 0))
	assert.Equal(t, float32(7), f32At(buf, 4))
	assert.Equal(t, float32(-5), f32At(buf, 63*GpuProbeSlotSize))
	assert.Equal(t, float32(9), f32At(buf, 63*GpuProbeSlotSize+4))
}
