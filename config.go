package magiclight

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"

	giapp "github.com/sschneiders/magiclight/gi/app"
	"github.com/sschneiders/magiclight/gi/core"
)

// TrackerSettings overrides the temporal reset thresholds. Zero values keep
// the defaults.
type TrackerSettings struct {
	MovementThreshold   float32 `toml:"movement_threshold"`
	ScaleThreshold      float32 `toml:"scale_threshold"`
	ProjectionThreshold float32 `toml:"projection_threshold"`
}

// Settings is the serializable configuration of the light renderer.
type Settings struct {
	Debug    bool    `toml:"debug"`
	Overlay  bool    `toml:"overlay"`
	FontPath string  `toml:"font_path"`
	Exposure float32 `toml:"exposure"`
	Gamma    float32 `toml:"gamma"`

	Pass    core.PassConfig          `toml:"light_pass"`
	Scaling core.TargetScalingParams `toml:"target_scaling"`
	Tracker TrackerSettings          `toml:"tracker"`
}

func DefaultSettings() *Settings {
	return &Settings{
		Exposure: 1.0,
		Gamma:    2.2,
		Pass:     core.DefaultPassConfig(),
		Scaling:  core.DefaultTargetScaling(),
	}
}

// LoadSettings reads a TOML file over the defaults.
func LoadSettings(path string) (*Settings, error) {
	s := DefaultSettings()
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}
	if err := toml.Unmarshal(raw, s); err != nil {
		return nil, fmt.Errorf("parse settings %s: %w", path, err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Settings) Validate() error {
	if s.Scaling.PrimaryScale < 0 || s.Scaling.SDFScale < 0 {
		return fmt.Errorf("target scaling must not be negative: %+v", s.Scaling)
	}
	if s.Pass.ReservoirSize <= 0 {
		return fmt.Errorf("reservoir size must be positive, got %d", s.Pass.ReservoirSize)
	}
	if s.Pass.IndirectRaysPerSample <= 0 {
		return fmt.Errorf("indirect rays per sample must be positive, got %d", s.Pass.IndirectRaysPerSample)
	}
	if s.Pass.SmoothKernelSize[0] < 0 || s.Pass.SmoothKernelSize[1] < 0 {
		return fmt.Errorf("smooth kernel size must not be negative: %v", s.Pass.SmoothKernelSize)
	}
	return nil
}

// GIConfig maps the settings onto the pipeline config.
func (s *Settings) GIConfig() giapp.Config {
	cfg := giapp.DefaultConfig()
	cfg.Pass = s.Pass
	cfg.Scaling = s.Scaling
	cfg.Overlay = s.Overlay
	cfg.FontPath = s.FontPath
	if s.Exposure > 0 {
		cfg.Exposure = s.Exposure
	}
	if s.Gamma > 0 {
		cfg.Gamma = s.Gamma
	}
	cfg.MovementThreshold = s.Tracker.MovementThreshold
	cfg.ScaleThreshold = s.Tracker.ScaleThreshold
	cfg.ProjectionThreshold = s.Tracker.ProjectionThreshold
	return cfg
}
