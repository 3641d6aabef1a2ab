package physics

import (
	"fmt"
	"math"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

// Body couples a shape with kinematic state. It holds no physics logic
// beyond integrating its velocity; every decision lives in the Simulator.
type Body struct {
	Name string

	Shape    *Shape
	Velocity mgl64.Vec3
	Mass     float64
	Friction float64

	// MaxVelocity caps horizontal speed when positive.
	MaxVelocity float64

	// IsStatic bodies never move and always have zero velocity.
	IsStatic bool
	// IsImmaterial bodies report collisions but never push, get pushed, or
	// land on anything.
	IsImmaterial bool

	sim        *Simulator
	collisions []*Body
}

// NewBody creates a body with a uniform shape of the given size at the world
// origin. A non-positive mass falls back to 1. sim may be nil; the body is
// not added to it until AddToSimulator or Simulator.AddBody is called.
func NewBody(width, height, depth, mass, friction float64, sim *Simulator) *Body {
	if mass <= 0 {
		mass = 1
	}
	return &Body{
		Shape:    NewShape(width, height, depth),
		Mass:     mass,
		Friction: friction,
		sim:      sim,
	}
}

// Simulator returns the simulator this body forwards forces to.
func (b *Body) Simulator() *Simulator { return b.sim }

// SetSimulator changes the simulator reference without adding the body.
func (b *Body) SetSimulator(sim *Simulator) { b.sim = sim }

// Position returns the centroid of the body's shape.
func (b *Body) Position() mgl64.Vec3 { return b.Shape.Position }

// SetPosition moves the body's shape.
func (b *Body) SetPosition(p mgl64.Vec3) { b.Shape.Position = p }

// LayeredPosition returns the XY projection of the position.
func (b *Body) LayeredPosition() mgl64.Vec2 { return b.Shape.LayeredPosition() }

// Update integrates velocity into position. Static bodies only have their
// velocity reset.
func (b *Body) Update() {
	if b.IsStatic {
		b.Velocity = mgl64.Vec3{}
		return
	}
	if b.Shape == nil {
		return
	}
	if b.MaxVelocity > 0 {
		h := horizontal(b.Velocity)
		if speed := h.Len(); speed > b.MaxVelocity {
			h = h.Mul(b.MaxVelocity / speed)
			b.Velocity[0], b.Velocity[1] = h[0], h[1]
		}
	}
	b.Shape.Position = b.Shape.Position.Add(b.Velocity)
}

// AddForce queues a velocity change on the owning simulator.
func (b *Body) AddForce(velocity mgl64.Vec3) {
	if b.sim == nil {
		log.Warn("force dropped: body has no simulator", "body", b.label())
		return
	}
	b.sim.AddForce(Force{Target: b, Velocity: velocity})
}

// AddToSimulator adds the body to its simulator.
func (b *Body) AddToSimulator() {
	if b.sim == nil {
		log.Warn("cannot add body: no simulator", "body", b.label())
		return
	}
	b.sim.AddBody(b)
}

// RemoveFromSimulator removes the body from its simulator.
func (b *Body) RemoveFromSimulator() {
	if b.sim == nil {
		return
	}
	b.sim.RemoveBody(b)
}

// AddCollision records other as touched this tick.
func (b *Body) AddCollision(other *Body) {
	if other == nil || other == b || b.CollidesWith(other) {
		return
	}
	b.collisions = append(b.collisions, other)
}

// ClearCollisions forgets last tick's collisions.
func (b *Body) ClearCollisions() {
	b.collisions = b.collisions[:0]
}

// Collisions returns the bodies touched during the last Update.
func (b *Body) Collisions() []*Body {
	out := make([]*Body, len(b.collisions))
	copy(out, b.collisions)
	return out
}

// CollidesWith reports whether other was touched during the last Update.
func (b *Body) CollidesWith(other *Body) bool {
	return indexOf(b.collisions, other) >= 0
}

// Speed is the horizontal speed.
func (b *Body) Speed() float64 {
	return math.Hypot(b.Velocity[0], b.Velocity[1])
}

func (b *Body) label() string {
	if b == nil {
		return "<nil>"
	}
	if b.Name != "" {
		return b.Name
	}
	return fmt.Sprintf("%p", b)
}
