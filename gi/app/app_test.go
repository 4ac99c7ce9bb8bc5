package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sschneiders/magiclight/gi/core"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, core.DefaultPassConfig(), cfg.Pass)
	assert.Equal(t, core.DefaultTargetScaling(), cfg.Scaling)
	assert.Equal(t, float32(1.0), cfg.Exposure)
	assert.Equal(t, float32(2.2), cfg.Gamma)
}

func suspendedApp() *App {
	return &App{
		log:       core.NewNopLogger(),
		cfg:       DefaultConfig(),
		Scene:     core.NewScene(),
		extractor: core.NewExtractor(1),
	}
}

// A zero framebuffer suspends the whole frame: no extraction, no uploads, no
// layer clears, no dispatch. Nothing here may touch the device.
func TestFrameSuspendedOnDegenerateSize(t *testing.T) {
	a := suspendedApp()
	require.False(t, a.sizes.IsValid())

	assert.NoError(t, a.Update())
	assert.NoError(t, a.Render())

	floor, walls, objects := a.LayerViews()
	assert.Nil(t, floor)
	assert.Nil(t, walls)
	assert.Nil(t, objects)
}

// clearLayers is a no-op until targets exist; Update may run while resized to
// zero and must not reach for the device.
func TestClearLayersWithoutLayers(t *testing.T) {
	a := suspendedApp()
	assert.NotPanics(t, func() { a.clearLayers() })
}

func TestThresholdOverrides(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MovementThreshold = 0.5
	cfg.ProjectionThreshold = 0.25

	a := New(nil, cfg, nil)
	assert.Equal(t, float32(0.5), a.extractor.Tracker.MovementThreshold)
	assert.Equal(t, float32(0.25), a.extractor.Tracker.ProjectionThreshold)
	// Unset thresholds keep the tracker defaults.
	assert.Equal(t, core.NewProjectionTracker().ScaleThreshold, a.extractor.Tracker.ScaleThreshold)
}

func TestOverlayText(t *testing.T) {
	a := suspendedApp()
	a.snapshot.Params.FrameCounter = 12
	a.snapshot.LightCount = 3
	a.snapshot.OccluderCount = 2
	a.snapshot.ResetCause = core.ResetMovement

	text := a.overlayText()
	assert.Contains(t, text, "frame 12")
	assert.Contains(t, text, "lights 3 occluders 2")
	assert.Contains(t, text, core.ResetMovement.String())
}
