package gpu

import "fmt"

// NotReadyError reports that a pipeline input is not available yet. Frames
// hitting this are skipped without being treated as failures; startup and
// resizes produce a few of them.
type NotReadyError struct {
	Resource string
}

func (e *NotReadyError) Error() string {
	return fmt.Sprintf("light pipeline not ready: missing %s", e.Resource)
}

// CheckReady verifies every buffer, target and pipeline the dispatch needs.
// It returns nil when a frame can run, or a NotReadyError naming the first
// missing resource.
func CheckReady(assets *PipelineAssets, targets *Targets, pipelines *LightPipelines, groups *BindGroups) error {
	missing := func(name string) error {
		return &NotReadyError{Resource: name}
	}

	if assets == nil {
		return missing("pipeline assets")
	}
	buffers := []struct {
		name string
		ok   bool
	}{
		{"camera params buffer", assets.CameraBuf != nil},
		{"light pass params buffer", assets.ParamsBuf != nil},
		{"lights buffer", assets.LightsBuf != nil},
		{"occluders buffer", assets.OccludersBuf != nil},
		{"skylight masks buffer", assets.MasksBuf != nil},
		{"probe poses buffer", assets.ProbesBuf != nil},
	}
	for _, b := range buffers {
		if !b.ok {
			return missing(b.name)
		}
	}

	if targets == nil {
		return missing("render targets")
	}
	views := []struct {
		name string
		ok   bool
	}{
		{"sdf target", targets.SDFView != nil},
		{"probe target", targets.ProbeView != nil},
		{"bounce target", targets.BounceView != nil},
		{"blend target", targets.BlendView != nil},
		{"filter target", targets.FilterView != nil},
		{"pose target", targets.PoseView != nil},
		{"sdf sampler", targets.SDFSampler != nil},
	}
	for _, v := range views {
		if !v.ok {
			return missing(v.name)
		}
	}

	if pipelines == nil || len(pipelines.pipelines) != len(lightStages) {
		return missing("compute pipelines")
	}
	if groups == nil || len(groups.groups) != len(lightStages) {
		return missing("bind groups")
	}
	return nil
}
