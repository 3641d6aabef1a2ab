package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CollisionData is the result of a narrow-phase test between two shapes.
// Axis points from Recipient towards Sender, so Axis*Overlap is the
// translation that separates Sender from Recipient.
type CollisionData struct {
	Sender       *Shape
	Recipient    *Shape
	Axis         mgl64.Vec2
	Overlap      float64
	HasCollision bool
}

// MTV returns the minimum translation vector for the sender.
// It is zero when there is no collision.
func (c CollisionData) MTV() mgl64.Vec2 {
	if !c.HasCollision {
		return mgl64.Vec2{}
	}
	return c.Axis.Mul(c.Overlap)
}

// BroadPhase reports whether two bodies are close enough in the XY plane to
// be worth a narrow-phase test.
func BroadPhase(a, b *Body) bool {
	reach := math.Max(a.Shape.Width(), a.Shape.Height()) + math.Max(b.Shape.Width(), b.Shape.Height())
	return a.LayeredPosition().Sub(b.LayeredPosition()).Len() < reach
}

// NarrowPhase runs the separating axis test on the XY footprints of a and b.
// Both shapes contribute their two edge normals. Any axis without positive
// overlap separates the shapes; otherwise the axis of least overlap wins.
func NarrowPhase(a, b *Shape) CollisionData {
	data := CollisionData{Sender: a, Recipient: b}

	axesA, axesB := a.Axes(), b.Axes()
	axes := [4]mgl64.Vec2{axesA[0], axesA[1], axesB[0], axesB[1]}

	var best mgl64.Vec2
	minOverlap := math.MaxFloat64
	for _, axis := range axes {
		if axis == (mgl64.Vec2{}) {
			continue
		}
		pa, pb := a.Project(axis), b.Project(axis)
		overlap := math.Min(pa[1], pb[1]) - math.Max(pa[0], pb[0])
		if overlap <= 0 {
			return data
		}
		if overlap < minOverlap {
			minOverlap = overlap
			best = axis
		}
	}
	if best == (mgl64.Vec2{}) {
		return data
	}

	// Coincident centroids keep the axis as found.
	if a.LayeredPosition().Sub(b.LayeredPosition()).Dot(best) < 0 {
		best = best.Mul(-1)
	}

	data.Axis = best
	data.Overlap = minOverlap
	data.HasCollision = true
	return data
}
