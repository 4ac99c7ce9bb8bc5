package magiclight

import (
	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"

	"github.com/sschneiders/magiclight/gi/core"
)

// EntityId identifies an entity in a World. Ids are stable across preset
// save and load.
type EntityId string

func newEntityId() EntityId {
	return EntityId(uuid.NewString())
}

// Transform2D places an entity in world space.
type Transform2D struct {
	Position mgl32.Vec2 `json:"position"`
	Rotation float32    `json:"rotation"`
}

// Visibility combines the hierarchy flag set by the owner with the view
// culling flag. An entity contributes to lighting only when both hold.
type Visibility struct {
	Hierarchy bool `json:"hierarchy"`
	View      bool `json:"view"`
}

func VisibleEverywhere() Visibility {
	return Visibility{Hierarchy: true, View: true}
}

func (v Visibility) Visible() bool {
	return v.Hierarchy && v.View
}

// LightSource2D is an omnidirectional light component.
type LightSource2D struct {
	Color             mgl32.Vec3 `json:"color"`
	Intensity         float32    `json:"intensity"`
	Falloff           mgl32.Vec3 `json:"falloff"`
	JitterIntensity   float32    `json:"jitter_intensity"`
	JitterTranslation float32    `json:"jitter_translation"`
}

// LightOccluder2D blocks light within a rotated rectangle around the
// entity's transform.
type LightOccluder2D struct {
	HalfExtent mgl32.Vec2 `json:"h_extent"`
}

// SkylightMask2D excludes ambient sky light inside its rectangle.
type SkylightMask2D struct {
	HalfExtent mgl32.Vec2 `json:"h_extent"`
}

// SkylightLight2D is a global ambient light; multiple instances accumulate.
type SkylightLight2D struct {
	Color     mgl32.Vec3 `json:"color"`
	Intensity float32    `json:"intensity"`
}

type LightEntity struct {
	Transform  Transform2D   `json:"transform"`
	Visibility Visibility    `json:"visibility"`
	Light      LightSource2D `json:"light"`
}

type OccluderEntity struct {
	Transform  Transform2D     `json:"transform"`
	Visibility Visibility      `json:"visibility"`
	Occluder   LightOccluder2D `json:"occluder"`
}

type MaskEntity struct {
	Transform Transform2D    `json:"transform"`
	Mask      SkylightMask2D `json:"mask"`
}

type SkylightEntity struct {
	Skylight SkylightLight2D `json:"skylight"`
}

type CameraEntity struct {
	Camera core.Camera `json:"camera"`
	// Floor marks the camera driving the light pass. Exactly one floor
	// camera must be visible for lighting to run.
	Floor bool `json:"floor"`
}

// World is the entity registry the light pass reads from. It is not an ECS;
// entities are typed records the game mutates directly.
type World struct {
	Lights    map[EntityId]*LightEntity    `json:"lights"`
	Occluders map[EntityId]*OccluderEntity `json:"occluders"`
	Masks     map[EntityId]*MaskEntity     `json:"masks"`
	Skylights map[EntityId]*SkylightEntity `json:"skylights"`
	Cameras   map[EntityId]*CameraEntity   `json:"cameras"`
}

func NewWorld() *World {
	return &World{
		Lights:    map[EntityId]*LightEntity{},
		Occluders: map[EntityId]*OccluderEntity{},
		Masks:     map[EntityId]*MaskEntity{},
		Skylights: map[EntityId]*SkylightEntity{},
		Cameras:   map[EntityId]*CameraEntity{},
	}
}

func (w *World) SpawnLight(t Transform2D, l LightSource2D) EntityId {
	id := newEntityId()
	w.Lights[id] = &LightEntity{Transform: t, Visibility: VisibleEverywhere(), Light: l}
	return id
}

func (w *World) SpawnOccluder(t Transform2D, o LightOccluder2D) EntityId {
	id := newEntityId()
	w.Occluders[id] = &OccluderEntity{Transform: t, Visibility: VisibleEverywhere(), Occluder: o}
	return id
}

func (w *World) SpawnMask(t Transform2D, m SkylightMask2D) EntityId {
	id := newEntityId()
	w.Masks[id] = &MaskEntity{Transform: t, Mask: m}
	return id
}

func (w *World) SpawnSkylight(s SkylightLight2D) EntityId {
	id := newEntityId()
	w.Skylights[id] = &SkylightEntity{Skylight: s}
	return id
}

func (w *World) SpawnCamera(cam core.Camera, floor bool) EntityId {
	id := newEntityId()
	w.Cameras[id] = &CameraEntity{Camera: cam, Floor: floor}
	return id
}

// Despawn removes an entity of any kind. Unknown ids are ignored.
func (w *World) Despawn(id EntityId) {
	delete(w.Lights, id)
	delete(w.Occluders, id)
	delete(w.Masks, id)
	delete(w.Skylights, id)
	delete(w.Cameras, id)
}

// Sync repopulates the extraction scene from the world. Invisible entities
// are carried with their flags so extraction can count and filter them.
func (w *World) Sync(scene *core.Scene) {
	scene.Reset()
	for _, e := range w.Lights {
		scene.Lights = append(scene.Lights, core.LightSource{
			Position:          e.Transform.Position,
			Color:             e.Light.Color,
			Intensity:         e.Light.Intensity,
			Falloff:           e.Light.Falloff,
			JitterIntensity:   e.Light.JitterIntensity,
			JitterTranslation: e.Light.JitterTranslation,
			Visible:           e.Visibility.Visible(),
		})
	}
	for _, e := range w.Occluders {
		scene.Occluders = append(scene.Occluders, core.Occluder{
			Center:     e.Transform.Position,
			Rotation:   e.Transform.Rotation,
			HalfExtent: e.Occluder.HalfExtent,
			Visible:    e.Visibility.Visible(),
		})
	}
	for _, e := range w.Masks {
		scene.Masks = append(scene.Masks, core.SkylightMask{
			Center:     e.Transform.Position,
			HalfExtent: e.Mask.HalfExtent,
		})
	}
	for _, e := range w.Skylights {
		scene.Skylights = append(scene.Skylights, core.Skylight{
			Color:     e.Skylight.Color,
			Intensity: e.Skylight.Intensity,
		})
	}
	for _, e := range w.Cameras {
		if e.Floor {
			scene.Cameras = append(scene.Cameras, e.Camera)
		}
	}
}
