package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BodyState is a copy of one body's observable state.
type BodyState struct {
	Name       string
	Position   mgl64.Vec3
	Velocity   mgl64.Vec3
	Static     bool
	Immaterial bool
	Collisions int
}

// Snapshot is the observable state of the simulator after a tick.
type Snapshot struct {
	Tick   uint64
	Bodies []BodyState
}

// Snapshot captures the current body states in simulation order.
func (s *Simulator) Snapshot() Snapshot {
	items := s.bodies.Items()
	snap := Snapshot{Tick: s.tick, Bodies: make([]BodyState, 0, len(items))}
	for _, b := range items {
		st := BodyState{
			Name:       b.Name,
			Velocity:   b.Velocity,
			Static:     b.IsStatic,
			Immaterial: b.IsImmaterial,
			Collisions: len(b.collisions),
		}
		if b.Shape != nil {
			st.Position = b.Shape.Position
		}
		snap.Bodies = append(snap.Bodies, st)
	}
	return snap
}

// Find returns the state of the first body with the given name.
func (s Snapshot) Find(name string) (BodyState, bool) {
	for _, b := range s.Bodies {
		if b.Name == name {
			return b, true
		}
	}
	return BodyState{}, false
}

// Hash returns a deterministic digest of the snapshot, used to compare runs.
func (s Snapshot) Hash() uint64 {
	h := s.Tick
	for _, b := range s.Bodies {
		for _, r := range b.Name {
			h = h*31 + uint64(r)
		}
		for _, v := range [...]float64{
			b.Position[0], b.Position[1], b.Position[2],
			b.Velocity[0], b.Velocity[1], b.Velocity[2],
		} {
			h = h*31 + math.Float64bits(v)
		}
		h = h*31 + uint64(b.Collisions)
		if b.Static {
			h = h*31 + 1
		}
		if b.Immaterial {
			h = h*31 + 2
		}
	}
	return h
}
