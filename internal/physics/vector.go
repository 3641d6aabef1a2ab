// Package physics implements the layered 2.5D simulator: rectangular bodies
// with an XY footprint and a synthetic depth axis (Z), SAT collision between
// footprints, ground snapping onto upper surfaces and ramps, and a force
// model with gravity and friction.
//
// The package has no rendering or terminal dependencies. Callers construct
// bodies, call Simulator.Update once per fixed tick and read positions and
// collisions back afterwards.
package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// lengthEpsilon is the length below which a vector is treated as zero.
const lengthEpsilon = 1e-9

// normalize2 returns v scaled to unit length, or the zero vector when v has
// no meaningful length. mgl64's Normalize divides by zero in that case.
func normalize2(v mgl64.Vec2) mgl64.Vec2 {
	l := v.Len()
	if l < lengthEpsilon || !isFinite(l) {
		return mgl64.Vec2{}
	}
	return v.Mul(1 / l)
}

// normalize3 is normalize2 for three components.
func normalize3(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < lengthEpsilon || !isFinite(l) {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// rotateAbout rotates p around pivot by angle radians.
func rotateAbout(p, pivot mgl64.Vec2, angle float64) mgl64.Vec2 {
	if angle == 0 {
		return p
	}
	return pivot.Add(mgl64.Rotate2D(angle).Mul2x1(p.Sub(pivot)))
}

// horizontal drops the depth component of v.
func horizontal(v mgl64.Vec3) mgl64.Vec2 {
	return mgl64.Vec2{v[0], v[1]}
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}

func finite3(v mgl64.Vec3) bool {
	return isFinite(v[0]) && isFinite(v[1]) && isFinite(v[2])
}

func clampF(val, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, val))
}
