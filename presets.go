package magiclight

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Preset is a serializable snapshot of a World, used to save and restore
// authored scenes.
type Preset struct {
	Name  string `json:"name"`
	World *World `json:"world"`
}

// SavePreset writes the world as indented JSON.
func SavePreset(world *World, name, path string) error {
	raw, err := json.MarshalIndent(&Preset{Name: name, World: world}, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preset: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		return fmt.Errorf("write preset: %w", err)
	}
	return nil
}

// LoadPreset reads a preset file. Entities with missing or malformed ids get
// fresh ones so hand-edited files stay loadable.
func LoadPreset(path string) (*Preset, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read preset: %w", err)
	}
	p := &Preset{World: NewWorld()}
	if err := json.Unmarshal(raw, p); err != nil {
		return nil, fmt.Errorf("parse preset %s: %w", path, err)
	}
	if p.World == nil {
		p.World = NewWorld()
	}
	normalizeIds(p.World)
	return p, nil
}

// Apply replaces the contents of dst with the preset's entities.
func (p *Preset) Apply(dst *World) {
	*dst = *p.World
	if dst.Lights == nil {
		dst.Lights = map[EntityId]*LightEntity{}
	}
	if dst.Occluders == nil {
		dst.Occluders = map[EntityId]*OccluderEntity{}
	}
	if dst.Masks == nil {
		dst.Masks = map[EntityId]*MaskEntity{}
	}
	if dst.Skylights == nil {
		dst.Skylights = map[EntityId]*SkylightEntity{}
	}
	if dst.Cameras == nil {
		dst.Cameras = map[EntityId]*CameraEntity{}
	}
}

func normalizeIds(w *World) {
	rekeyLight := map[EntityId]*LightEntity{}
	for id, e := range w.Lights {
		rekeyLight[validId(id)] = e
	}
	w.Lights = rekeyLight

	rekeyOccluder := map[EntityId]*OccluderEntity{}
	for id, e := range w.Occluders {
		rekeyOccluder[validId(id)] = e
	}
	w.Occluders = rekeyOccluder

	rekeyMask := map[EntityId]*MaskEntity{}
	for id, e := range w.Masks {
		rekeyMask[validId(id)] = e
	}
	w.Masks = rekeyMask

	rekeySkylight := map[EntityId]*SkylightEntity{}
	for id, e := range w.Skylights {
		rekeySkylight[validId(id)] = e
	}
	w.Skylights = rekeySkylight

	rekeyCamera := map[EntityId]*CameraEntity{}
	for id, e := range w.Cameras {
		rekeyCamera[validId(id)] = e
	}
	w.Cameras = rekeyCamera
}

func validId(id EntityId) EntityId {
	if _, err := uuid.Parse(string(id)); err != nil {
		return newEntityId()
	}
	return id
}
