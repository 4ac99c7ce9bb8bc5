package magiclight

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPresetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	w := populatedWorld()
	lightId := firstLightId(w)

	require.NoError(t, SavePreset(w, "krypta", path))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	assert.Equal(t, "krypta", p.Name)

	loaded := NewWorld()
	p.Apply(loaded)

	require.Len(t, loaded.Lights, 1)
	require.Contains(t, loaded.Lights, lightId, "ids survive the round trip")
	assert.Equal(t, w.Lights[lightId].Light, loaded.Lights[lightId].Light)
	assert.Equal(t, w.Lights[lightId].Transform, loaded.Lights[lightId].Transform)
	assert.Len(t, loaded.Occluders, 1)
	assert.Len(t, loaded.Cameras, 2)
}

func TestLoadPresetRegeneratesBadIds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	content := `{
  "name": "hand-edited",
  "world": {
    "lights": {
      "my-light": {
        "transform": {"position": [1, 2], "rotation": 0},
        "visibility": {"hierarchy": true, "view": true},
        "light": {"color": [1, 1, 1], "intensity": 3, "falloff": [1, 0, 0]}
      }
    }
  }
}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)
	require.Len(t, p.World.Lights, 1)
	for id, e := range p.World.Lights {
		assert.NotEqual(t, EntityId("my-light"), id, "non-uuid ids are replaced")
		assert.Equal(t, mgl32.Vec2{1, 2}, e.Transform.Position)
		assert.Equal(t, float32(3), e.Light.Intensity)
	}
}

func TestLoadPresetMissingSections(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"name":"empty"}`), 0o644))

	p, err := LoadPreset(path)
	require.NoError(t, err)

	w := NewWorld()
	p.Apply(w)
	assert.NotNil(t, w.Lights)
	assert.NotNil(t, w.Cameras)
	assert.Empty(t, w.Lights)
}

func firstLightId(w *World) EntityId {
	for id := range w.Lights {
		return id
	}
	return ""
}
