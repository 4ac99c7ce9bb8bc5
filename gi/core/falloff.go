package core

import (
	"github.com/chewxy/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Attenuation evaluates the light falloff term at the given distance. This
// is the CPU mirror of the attenuation used by the probe kernel; falloff
// holds the constant, linear and quadratic coefficients.
func Attenuation(dist float32, falloff mgl32.Vec3) float32 {
	denom := falloff.X() + falloff.Y()*dist + falloff.Z()*dist*dist
	if denom <= 0 {
		return 0
	}
	return 1.0 / denom
}

// LightRadiance returns the unoccluded contribution of a light at a world
// position. CPU reference for the probe kernel's direct term.
func LightRadiance(l LightSource, at mgl32.Vec2) mgl32.Vec3 {
	d := at.Sub(l.Position)
	dist := math32.Sqrt(d.Dot(d))
	return l.Color.Mul(l.Intensity * Attenuation(dist, l.Falloff))
}

// SkylightFactor returns the ambient skylight weight at a world position:
// 0 inside any mask, 1 elsewhere. CPU reference for the probe kernel's
// skylight term.
func SkylightFactor(at mgl32.Vec2, masks []SkylightMask) float32 {
	for i := range masks {
		d := at.Sub(masks[i].Center)
		if math32.Abs(d.X()) <= masks[i].HalfExtent.X() &&
			math32.Abs(d.Y()) <= masks[i].HalfExtent.Y() {
			return 0
		}
	}
	return 1
}

// EffectiveRadius estimates the distance at which a light's contribution
// falls below cutoff. CPU reference bounding the kernel's ray march; the
// bounce kernel derives its own bound from the probe cell size.
func EffectiveRadius(l LightSource, cutoff float32) float32 {
	if cutoff <= 0 {
		cutoff = 1e-3
	}
	a := l.Falloff.Z()
	b := l.Falloff.Y()
	c := l.Falloff.X() - l.Intensity/cutoff
	if a == 0 {
		if b == 0 {
			return 0
		}
		return math32.Max(0, -c/b)
	}
	disc := b*b - 4*a*c
	if disc < 0 {
		return 0
	}
	return math32.Max(0, (-b+math32.Sqrt(disc))/(2*a))
}
