package scene

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/tui-layers/internal/config"
	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/scene/formats"
)

// World is a scene instantiated into a running simulator.
type World struct {
	Scene   *Scene
	Config  config.PhysicsConfig
	Sim     *physics.Simulator
	Bodies  []*physics.Body
	Player  *physics.Body
	byName  map[string]*physics.Body
	spawned int
}

// Resolve applies the scene's overrides to base.
func (s *Scene) Resolve(base config.PhysicsConfig) config.PhysicsConfig {
	o := s.Physics
	apply := func(dst *float64, v *float64) {
		if v != nil {
			*dst = *v
		}
	}
	apply(&base.Gravity, o.Gravity)
	apply(&base.EnergyDecrease, o.EnergyDecrease)
	apply(&base.GroundTolerance, o.GroundTolerance)
	apply(&base.LayerBand, o.LayerBand)
	apply(&base.StepAllowance, o.StepAllowance)
	apply(&base.MaxVelocity, o.MaxVelocity)
	return base
}

// Build creates a simulator populated with the scene's bodies. The bodies
// are queued and become active on the first Update. Extra options are
// applied after the configuration, so a caller can swap the logger.
func (s *Scene) Build(base config.PhysicsConfig, opts ...physics.Option) (*World, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	cfg := s.Resolve(base)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", s.ID, err)
	}

	sim := physics.NewSimulator(append(cfg.Options(), opts...)...)
	w := &World{
		Scene:  s,
		Config: cfg,
		Sim:    sim,
		byName: make(map[string]*physics.Body),
	}
	for _, def := range s.Bodies {
		b := newBody(def, cfg, sim)
		w.add(b)
		if def.Player {
			w.Player = b
		}
	}
	return w, nil
}

func newBody(def formats.YAMLBody, cfg config.PhysicsConfig, sim *physics.Simulator) *physics.Body {
	b := physics.NewBody(def.Size[0], def.Size[1], def.Size[2], def.Mass, def.Friction, sim)
	b.Name = def.Name
	b.SetPosition(vec3(def.Position))
	b.Velocity = vec3(def.Velocity)
	b.IsStatic = def.Static
	b.IsImmaterial = def.Immaterial

	b.MaxVelocity = def.MaxVelocity
	if b.MaxVelocity == 0 {
		b.MaxVelocity = cfg.MaxVelocity
	}

	dist, _ := physics.ParseDepthDistribution(def.Distribution)
	b.Shape.Distribution = dist
	b.Shape.StepAllowance = cfg.StepAllowance
	b.Shape.Rotation = def.Rotation * math.Pi / 180
	return b
}

func vec3(v []float64) mgl64.Vec3 {
	if len(v) != 3 {
		return mgl64.Vec3{}
	}
	return mgl64.Vec3{v[0], v[1], v[2]}
}

func (w *World) add(b *physics.Body) {
	w.Bodies = append(w.Bodies, b)
	if b.Name != "" {
		w.byName[b.Name] = b
	}
	w.Sim.AddBody(b)
}

// Body returns the body with the given name, or nil.
func (w *World) Body(name string) *physics.Body {
	return w.byName[name]
}

// Spawn adds a dynamic crate at pos. It becomes active on the next tick.
func (w *World) Spawn(pos mgl64.Vec3, size float64) *physics.Body {
	w.spawned++
	b := physics.NewBody(size, size, size, 1, 0.2, w.Sim)
	b.Name = fmt.Sprintf("spawn-%d", w.spawned)
	b.SetPosition(pos)
	b.MaxVelocity = w.Config.MaxVelocity
	w.add(b)
	return b
}

// Remove takes a body out of the world.
func (w *World) Remove(b *physics.Body) {
	for i, existing := range w.Bodies {
		if existing == b {
			w.Bodies = append(w.Bodies[:i], w.Bodies[i+1:]...)
			break
		}
	}
	if b.Name != "" && w.byName[b.Name] == b {
		delete(w.byName, b.Name)
	}
	if w.Player == b {
		w.Player = nil
	}
	w.Sim.RemoveBody(b)
}

// DepthRange returns the lowest bottom and highest top of all bodies.
func (w *World) DepthRange() (float64, float64) {
	if len(w.Bodies) == 0 {
		return 0, 0
	}
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, b := range w.Bodies {
		lo = math.Min(lo, b.Shape.BottomDepth())
		hi = math.Max(hi, b.Shape.TopDepth())
	}
	return lo, hi
}

// Center returns the midpoint of the XY bounding box of all bodies.
func (w *World) Center() mgl64.Vec2 {
	if len(w.Bodies) == 0 {
		return mgl64.Vec2{}
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, b := range w.Bodies {
		lo, hi := b.Shape.Bounds()
		minX, minY = math.Min(minX, lo[0]), math.Min(minY, lo[1])
		maxX, maxY = math.Max(maxX, hi[0]), math.Max(maxY, hi[1])
	}
	return mgl64.Vec2{(minX + maxX) / 2, (minY + maxY) / 2}
}
