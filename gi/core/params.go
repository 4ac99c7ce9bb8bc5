package core

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Byte sizes of the GPU-side layouts. These must match the WGSL struct
// declarations in gi/shaders; every vec3 is padded to 16 bytes and runtime
// arrays start 16 bytes in, after the count word.
const (
	CameraParamsSize    = 176
	LightPassParamsSize = 64
	GpuLightSize        = 48
	GpuOccluderSize     = 32
	GpuMaskSize         = 16
	GpuProbeSlotSize    = 16
	StorageHeaderSize   = 16
	ProbeBufferSize     = ReservoirSlots * GpuProbeSlotSize
)

// CameraParams is the per-frame camera uniform shared by every pass.
type CameraParams struct {
	ViewProj      mgl32.Mat4
	InvViewProj   mgl32.Mat4
	ScreenSize    mgl32.Vec2
	ScreenSizeInv mgl32.Vec2
	SDFScale      mgl32.Vec2
	InvSDFScale   mgl32.Vec2
	// TemporalReset is 1.0 on frames where probe history must be dropped,
	// 0.0 otherwise.
	TemporalReset float32
}

func (p *CameraParams) Encode(dst []byte) []byte {
	w := packer{buf: ensureLen(dst, CameraParamsSize)}
	w.mat4(p.ViewProj)
	w.mat4(p.InvViewProj)
	w.vec2(p.ScreenSize)
	w.vec2(p.ScreenSizeInv)
	w.vec2(p.SDFScale)
	w.vec2(p.InvSDFScale)
	w.f32(p.TemporalReset)
	w.pad(12)
	return w.buf
}

// PassConfig holds the user-tunable light pass parameters. Values are
// uploaded verbatim into the light pass uniform each frame.
type PassConfig struct {
	ReservoirSize            int32      `toml:"reservoir_size" json:"reservoir_size"`
	SmoothKernelSize         [2]int32   `toml:"smooth_kernel_size" json:"smooth_kernel_size"`
	DirectLightContrib       float32    `toml:"direct_light_contrib" json:"direct_light_contrib"`
	IndirectLightContrib     float32    `toml:"indirect_light_contrib" json:"indirect_light_contrib"`
	IndirectRaysPerSample    int32      `toml:"indirect_rays_per_sample" json:"indirect_rays_per_sample"`
	IndirectRaysRadiusFactor float32    `toml:"indirect_rays_radius_factor" json:"indirect_rays_radius_factor"`
	JitterDisabled           bool       `toml:"jitter_disabled" json:"jitter_disabled"`
	SkylightColor            mgl32.Vec3 `toml:"-" json:"-"`
}

func DefaultPassConfig() PassConfig {
	return PassConfig{
		ReservoirSize:            16,
		SmoothKernelSize:         [2]int32{2, 1},
		DirectLightContrib:       0.2,
		IndirectLightContrib:     0.8,
		IndirectRaysPerSample:    32,
		IndirectRaysRadiusFactor: 3.5,
	}
}

// LightPassParams is the per-frame light pass uniform.
type LightPassParams struct {
	FrameCounter   int32
	ProbeSize      int32
	ProbeAtlasCols int32
	ProbeAtlasRows int32
	Config         PassConfig
}

func (p *LightPassParams) Encode(dst []byte) []byte {
	w := packer{buf: ensureLen(dst, LightPassParamsSize)}
	w.i32(p.FrameCounter)
	w.i32(p.ProbeSize)
	w.i32(p.ProbeAtlasCols)
	w.i32(p.ProbeAtlasRows)
	w.i32(p.Config.ReservoirSize)
	w.i32(p.Config.SmoothKernelSize[0])
	w.i32(p.Config.SmoothKernelSize[1])
	w.f32(p.Config.DirectLightContrib)
	w.f32(p.Config.IndirectLightContrib)
	w.i32(p.Config.IndirectRaysPerSample)
	w.f32(p.Config.IndirectRaysRadiusFactor)
	w.pad(4)
	w.vec3(p.Config.SkylightColor)
	w.pad(4)
	return w.buf
}

// AppendLight encodes one light source in the storage buffer element layout.
func AppendLight(dst []byte, position mgl32.Vec2, color mgl32.Vec3, intensity float32, falloff mgl32.Vec3) []byte {
	w := packer{buf: dst}
	w.grow(GpuLightSize)
	w.vec2(position)
	w.f32(intensity)
	w.pad(4)
	w.vec3(color)
	w.pad(4)
	w.vec3(falloff)
	w.pad(4)
	return w.buf
}

// AppendOccluder encodes one occluder. Rotation is stored as the inverse
// rotation quaternion so shaders transform rays into occluder space with a
// single multiply.
func AppendOccluder(dst []byte, o Occluder) []byte {
	q := mgl32.QuatRotate(o.Rotation, mgl32.Vec3{0, 0, 1}).Inverse()
	w := packer{buf: dst}
	w.grow(GpuOccluderSize)
	w.vec2(o.Center)
	w.vec2(o.HalfExtent)
	w.f32(q.V.X())
	w.f32(q.V.Y())
	w.f32(q.V.Z())
	w.f32(q.W)
	return w.buf
}

// AppendMask encodes one skylight mask.
func AppendMask(dst []byte, m SkylightMask) []byte {
	w := packer{buf: dst}
	w.grow(GpuMaskSize)
	w.vec2(m.Center)
	w.vec2(m.HalfExtent)
	return w.buf
}

// PutStorageHeader writes the element count word of a storage buffer. The
// header occupies StorageHeaderSize bytes so the runtime array that follows
// starts on a 16 byte boundary.
func PutStorageHeader(dst []byte, count uint32) {
	binary.LittleEndian.PutUint32(dst[0:4], count)
	for i := 4; i < StorageHeaderSize; i++ {
		dst[i] = 0
	}
}

// NewStorageHeader returns a buffer prefix ready to append elements to.
func NewStorageHeader(dst []byte, count uint32) []byte {
	dst = ensureLen(dst, StorageHeaderSize)
	PutStorageHeader(dst, count)
	return dst
}

// ProbeReservoir is the CPU mirror of the probe pose arena. One slot per
// frame counter value records the camera pose the probes of that frame were
// anchored to.
type ProbeReservoir struct {
	poses [ReservoirSlots]mgl32.Vec2
}

func (r *ProbeReservoir) SetPose(slot int32, pose mgl32.Vec2) {
	r.poses[slot%ReservoirSlots] = pose
}

func (r *ProbeReservoir) Pose(slot int32) mgl32.Vec2 {
	return r.poses[slot%ReservoirSlots]
}

func (r *ProbeReservoir) Encode(dst []byte) []byte {
	w := packer{buf: ensureLen(dst, ProbeBufferSize)}
	for i := range r.poses {
		w.vec2(r.poses[i])
		w.pad(8)
	}
	return w.buf
}

// packer writes little-endian scalars at a running offset.
type packer struct {
	buf []byte
	off int
}

func (p *packer) grow(n int) {
	p.off = len(p.buf)
	p.buf = append(p.buf, make([]byte, n)...)
}

func (p *packer) f32(v float32) {
	binary.LittleEndian.PutUint32(p.buf[p.off:], math.Float32bits(v))
	p.off += 4
}

func (p *packer) i32(v int32) {
	binary.LittleEndian.PutUint32(p.buf[p.off:], uint32(v))
	p.off += 4
}

func (p *packer) vec2(v mgl32.Vec2) {
	p.f32(v.X())
	p.f32(v.Y())
}

func (p *packer) vec3(v mgl32.Vec3) {
	p.f32(v.X())
	p.f32(v.Y())
	p.f32(v.Z())
}

func (p *packer) mat4(m mgl32.Mat4) {
	for i := 0; i < 16; i++ {
		p.f32(m[i])
	}
}

func (p *packer) pad(n int) {
	for i := 0; i < n; i++ {
		p.buf[p.off] = 0
		p.off++
	}
}

func ensureLen(dst []byte, n int) []byte {
	if cap(dst) < n {
		return make([]byte, n)
	}
	dst = dst[:n]
	for i := range dst {
		dst[i] = 0
	}
	return dst
}
