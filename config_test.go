package magiclight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSettingsValid(t *testing.T) {
	require.NoError(t, DefaultSettings().Validate())
}

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magiclight.toml")
	content := `
debug = true
exposure = 1.5

[light_pass]
reservoir_size = 8
direct_light_contrib = 0.5
indirect_light_contrib = 0.5
indirect_rays_per_sample = 16
indirect_rays_radius_factor = 2.0
smooth_kernel_size = [1, 1]

[target_scaling]
primary_scale = 2.0
sdf_scale = 4.0

[tracker]
movement_threshold = 0.5
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := LoadSettings(path)
	require.NoError(t, err)

	assert.True(t, s.Debug)
	assert.Equal(t, float32(1.5), s.Exposure)
	assert.Equal(t, int32(8), s.Pass.ReservoirSize)
	assert.Equal(t, int32(16), s.Pass.IndirectRaysPerSample)
	assert.Equal(t, float32(2.0), s.Scaling.PrimaryScale)
	assert.Equal(t, float32(4.0), s.Scaling.SDFScale)
	assert.Equal(t, float32(0.5), s.Tracker.MovementThreshold)
	// Untouched keys keep their defaults.
	assert.Equal(t, float32(2.2), s.Gamma)
}

func TestLoadSettingsRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "magiclight.toml")
	content := `
[light_pass]
reservoir_size = 0
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, err := LoadSettings(path)
	assert.Error(t, err)
}

func TestLoadSettingsMissingFile(t *testing.T) {
	_, err := LoadSettings(filepath.Join(t.TempDir(), "nope.toml"))
	assert.Error(t, err)
}

func TestGIConfigThresholdOverrides(t *testing.T) {
	s := DefaultSettings()
	s.Tracker.MovementThreshold = 0.25

	cfg := s.GIConfig()
	assert.Equal(t, float32(0.25), cfg.MovementThreshold)
	assert.Zero(t, cfg.ScaleThreshold)
	assert.Equal(t, s.Pass, cfg.Pass)
}
