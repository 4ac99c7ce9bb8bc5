package gpu

import (
	"fmt"

	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight/gi/core"
)

// storageHeadroom is extra capacity allocated when a storage buffer grows,
// so steadily growing scenes do not recreate buffers every frame.
const storageHeadroom = 4096

// PipelineAssets owns the GPU buffers fed by frame snapshots. Uniform
// buffers are fixed size; storage buffers grow with the scene and are
// recreated with headroom when they overflow.
type PipelineAssets struct {
	device *wgpu.Device
	queue  *wgpu.Queue

	CameraBuf    *wgpu.Buffer
	ParamsBuf    *wgpu.Buffer
	LightsBuf    *wgpu.Buffer
	OccludersBuf *wgpu.Buffer
	MasksBuf     *wgpu.Buffer
	ProbesBuf    *wgpu.Buffer
}

func NewPipelineAssets(device *wgpu.Device, queue *wgpu.Queue) *PipelineAssets {
	return &PipelineAssets{device: device, queue: queue}
}

// WriteFrame uploads a snapshot. It reports whether any buffer was
// recreated, in which case bind groups referencing them must be rebuilt.
func (a *PipelineAssets) WriteFrame(snap *core.FrameSnapshot) (recreated bool, err error) {
	up := func(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) {
		if err != nil {
			return
		}
		var r bool
		r, err = a.ensureBuffer(name, buf, data, usage)
		recreated = recreated || r
	}

	uniform := wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst
	storage := wgpu.BufferUsageStorage | wgpu.BufferUsageCopyDst

	up("gi-camera-params", &a.CameraBuf, snap.CameraBytes, uniform)
	up("gi-light-pass-params", &a.ParamsBuf, snap.ParamsBytes, uniform)
	up("gi-lights", &a.LightsBuf, snap.Lights, storage)
	up("gi-occluders", &a.OccludersBuf, snap.Occluders, storage)
	up("gi-skylight-masks", &a.MasksBuf, snap.Masks, storage)
	up("gi-probe-poses", &a.ProbesBuf, snap.Probes, storage)
	return recreated, err
}

// ensureBuffer writes data into *buf, recreating it when missing or too
// small. Storage buffers get headroom on growth; uniform buffers are
// allocated exactly.
func (a *PipelineAssets) ensureBuffer(name string, buf **wgpu.Buffer, data []byte, usage wgpu.BufferUsage) (bool, error) {
	size := uint64(len(data))
	if *buf != nil && (*buf).GetSize() >= size {
		a.queue.WriteBuffer(*buf, 0, data)
		return false, nil
	}

	if *buf != nil {
		(*buf).Release()
		*buf = nil
	}
	alloc := size
	if usage&wgpu.BufferUsageStorage != 0 {
		alloc += storageHeadroom
	}
	nb, err := a.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: name,
		Size:  alloc,
		Usage: usage,
	})
	if err != nil {
		return false, fmt.Errorf("create buffer %s: %w", name, err)
	}
	a.queue.WriteBuffer(nb, 0, data)
	*buf = nb
	return true, nil
}

func (a *PipelineAssets) Release() {
	for _, buf := range []*wgpu.Buffer{a.CameraBuf, a.ParamsBuf, a.LightsBuf, a.OccludersBuf, a.MasksBuf, a.ProbesBuf} {
		if buf != nil {
			buf.Release()
		}
	}
	a.CameraBuf, a.ParamsBuf, a.LightsBuf = nil, nil, nil
	a.OccludersBuf, a.MasksBuf, a.ProbesBuf = nil, nil, nil
}
