package gpu

import (
	"github.com/cogentcore/webgpu/wgpu"

	"github.com/sschneiders/magiclight/gi/core"
)

// stageGrid returns the texel area each stage dispatches over.
func stageGrid(stage int, sizes core.ComputedTargetSizes) [2]uint32 {
	switch lightStages[stage].name {
	case "gi-sdf":
		return sizes.SDF
	case "gi-ss-probe", "gi-ss-bounce", "gi-ss-blend":
		return sizes.ProbeGrid
	default: // gi-ss-filter covers every primary pixel
		return sizes.AlignedPrimary
	}
}

// EncodeLightPass records all five compute stages into one compute pass.
// Degenerate target sizes short-circuit without recording anything.
func EncodeLightPass(encoder *wgpu.CommandEncoder, pipelines *LightPipelines, groups *BindGroups, sizes core.ComputedTargetSizes) bool {
	if !sizes.IsValid() {
		return false
	}

	pass := encoder.BeginComputePass(nil)
	defer pass.End()

	for i, pipeline := range pipelines.pipelines {
		grid := stageGrid(i, sizes)
		x, y := core.DispatchGrid(grid[0], grid[1])
		if x == 0 || y == 0 {
			continue
		}
		pass.SetPipeline(pipeline)
		pass.SetBindGroup(0, groups.groups[i], nil)
		pass.DispatchWorkgroups(x, y, 1)
	}
	return true
}
