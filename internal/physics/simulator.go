package physics

import (
	"math"
	"slices"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"
)

// Default world parameters, tuned for one Update per 1/60 s.
const (
	DefaultGravity         = 0.3
	DefaultEnergyDecrease  = 0.5
	DefaultGroundTolerance = 2.0
	DefaultLayerBand       = 3.0
)

// layerEpsilon absorbs rounding when two bodies overlap by exactly the band.
const layerEpsilon = 1e-9

// Tuning holds the contact thresholds of the simulator.
type Tuning struct {
	// GroundTolerance is the vertical gap, in either direction, within which
	// a body is snapped onto the surface below it.
	GroundTolerance float64
	// LayerBand is the minimum vertical overlap two bodies need before their
	// footprints are allowed to collide.
	LayerBand float64
}

// DefaultTuning returns the standard contact thresholds.
func DefaultTuning() Tuning {
	return Tuning{
		GroundTolerance: DefaultGroundTolerance,
		LayerBand:       DefaultLayerBand,
	}
}

// CollisionFunc is called once for every mutual collision recorded during a
// tick. It runs inside Update; structural changes it makes (AddBody,
// RemoveBody, AddForce) take effect on the next tick.
type CollisionFunc func(a, b *Body)

// Option configures a Simulator.
type Option func(*Simulator)

// WithLogger sets the logger used for diagnostics.
func WithLogger(l *log.Logger) Option {
	return func(s *Simulator) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithGravity sets the downward acceleration per tick.
func WithGravity(g float64) Option {
	return func(s *Simulator) { s.Gravity = g }
}

// WithEnergyDecrease sets the damping applied by Knockback.
func WithEnergyDecrease(e float64) Option {
	return func(s *Simulator) { s.EnergyDecrease = e }
}

// WithTuning overrides the contact thresholds.
func WithTuning(t Tuning) Option {
	return func(s *Simulator) { s.Tuning = t }
}

// Simulator owns the bodies of one scene and advances them one discrete step
// per Update call. It does not look at wall-clock time; the caller provides
// the fixed-rate loop.
//
// A Simulator is not safe for concurrent use.
type Simulator struct {
	Gravity        float64
	EnergyDecrease float64
	Tuning         Tuning

	bodies   BufferedList[*Body]
	forces   BufferedList[Force]
	grounded map[*Body]bool
	hooks    []*collisionHook
	logger   *log.Logger
	tick     uint64
}

// NewSimulator creates an empty simulator.
func NewSimulator(opts ...Option) *Simulator {
	s := &Simulator{
		Gravity:        DefaultGravity,
		EnergyDecrease: DefaultEnergyDecrease,
		Tuning:         DefaultTuning(),
		grounded:       make(map[*Body]bool),
		logger:         log.Default().WithPrefix("physics"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Logger returns the simulator's logger.
func (s *Simulator) Logger() *log.Logger { return s.logger }

// Tick returns the number of completed Update calls.
func (s *Simulator) Tick() uint64 { return s.tick }

// AddBody adds b at the start of the next tick. Adding a body twice is a
// no-op. A body without a simulator reference adopts this one.
func (s *Simulator) AddBody(b *Body) {
	if b == nil {
		s.logger.Warn("ignoring nil body")
		return
	}
	if !s.bodies.Add(b) {
		s.logger.Debug("body already added", "body", b.label())
		return
	}
	if b.sim == nil {
		b.sim = s
	}
}

// RemoveBody removes b at the start of the next tick. The body itself stays
// valid and may be added again later.
func (s *Simulator) RemoveBody(b *Body) {
	if b == nil {
		return
	}
	s.bodies.Remove(b)
}

// Contains reports whether b is, or will be after the next flush, simulated.
func (s *Simulator) Contains(b *Body) bool {
	return s.bodies.Contains(b)
}

// Bodies returns the bodies simulated during the last tick, in order.
func (s *Simulator) Bodies() []*Body {
	items := s.bodies.Items()
	out := make([]*Body, len(items))
	copy(out, items)
	return out
}

// AddForce queues f for the next tick. Forces are not deduplicated.
func (s *Simulator) AddForce(f Force) {
	if f.Target == nil {
		s.logger.Warn("ignoring force without target")
		return
	}
	if !finite3(f.Velocity) {
		s.logger.Warn("ignoring non-finite force", "body", f.Target.label())
		return
	}
	s.forces.Append(f)
}

// GetForces returns every queued force aimed at b.
func (s *Simulator) GetForces(b *Body) []Force {
	var out []Force
	for _, list := range [][]Force{s.forces.Items(), s.forces.Pending()} {
		for _, f := range list {
			if f.Target == b {
				out = append(out, f)
			}
		}
	}
	return out
}

// IsGrounded reports whether b stood on a surface during the last tick.
func (s *Simulator) IsGrounded(b *Body) bool {
	return s.grounded[b]
}

type collisionHook struct {
	fn CollisionFunc
}

// OnCollision registers fn to be called for every recorded collision. The
// returned function unregisters it; calling it more than once is harmless.
func (s *Simulator) OnCollision(fn CollisionFunc) (remove func()) {
	if fn == nil {
		return func() {}
	}
	h := &collisionHook{fn: fn}
	s.hooks = append(s.hooks, h)
	return func() {
		// Copy so a recordCollision loop already ranging over hooks is unaffected.
		s.hooks = slices.DeleteFunc(slices.Clone(s.hooks), func(o *collisionHook) bool { return o == h })
	}
}

// Knockback queues an impulse on target along dir, damped by EnergyDecrease.
// A zero direction queues nothing.
func (s *Simulator) Knockback(target *Body, dir mgl64.Vec3, magnitude float64) {
	if target == nil {
		return
	}
	unit := normalize3(dir)
	if unit == (mgl64.Vec3{}) {
		return
	}
	s.AddForce(Force{Target: target, Velocity: unit.Mul(magnitude * (1 - s.EnergyDecrease))})
}

// Update advances the simulation by one tick. Failures are logged and never
// escape: a bad body is skipped and the rest of the scene keeps running.
func (s *Simulator) Update() {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("tick aborted", "tick", s.tick, "panic", r)
		}
		s.forces.Clear()
		s.tick++
	}()

	s.bodies.Flush()
	s.forces.Flush()
	clear(s.grounded)

	bodies := s.bodies.Items()
	for _, b := range bodies {
		b.ClearCollisions()
	}
	for i := range bodies {
		s.stepBody(i, bodies)
	}
}

// stepBody resolves every pair (bodies[i], bodies[j>i]) and then moves
// bodies[i]. Pairs with earlier bodies were handled on their turn, so all of
// this body's contacts are known before gravity is decided.
func (s *Simulator) stepBody(i int, bodies []*Body) {
	b1 := bodies[i]
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("body step failed", "tick", s.tick, "body", b1.label(), "panic", r)
		}
	}()

	if b1.Shape == nil {
		s.logger.Warn("skipping body", "body", b1.label(), "error", ErrNilShape)
		return
	}

	for _, b2 := range bodies[i+1:] {
		if b2.Shape == nil {
			continue
		}
		s.resolvePair(b1, b2)
	}

	if b1.IsStatic {
		b1.Update()
		return
	}

	before := b1.Shape.Position
	if !s.grounded[b1] && !b1.IsImmaterial {
		b1.Velocity[2] -= s.Gravity
	}
	s.applyFriction(b1)
	b1.Velocity = b1.Velocity.Add(sumForces(s.forces.Items(), b1))
	b1.Update()

	if !finite3(b1.Shape.Position) || !finite3(b1.Velocity) {
		s.logger.Warn("non-finite state reset", "tick", s.tick, "body", b1.label())
		b1.Shape.Position = before
		b1.Velocity = mgl64.Vec3{}
	}
}

// resolvePair runs broad phase, narrow phase, ground check, layer gate and
// push-apart for one pair.
func (s *Simulator) resolvePair(b1, b2 *Body) {
	if b1 == b2 || (b1.IsStatic && b2.IsStatic) {
		return
	}
	if !BroadPhase(b1, b2) {
		return
	}
	data := NarrowPhase(b1.Shape, b2.Shape)
	if !data.HasCollision {
		return
	}

	if s.groundHit(b1, b2) || s.groundHit(b2, b1) {
		s.recordCollision(b1, b2)
		return
	}
	if !s.layersOverlap(b1, b2) {
		return
	}
	if !b1.IsImmaterial && !b2.IsImmaterial {
		s.pushApart(b1, b2, data)
	}
	s.recordCollision(b1, b2)
}

// groundHit checks whether a is landing on (or resting on) b's upper surface
// and snaps it there. The downward velocity is used as a look-ahead so a fast
// fall cannot skip over a thin platform between ticks.
func (s *Simulator) groundHit(a, b *Body) bool {
	if a.IsStatic || a.IsImmaterial || b.IsImmaterial {
		return false
	}

	surface := b.Shape.TopDepthAt(a.LayeredPosition())
	gap := a.Shape.BottomDepth() - surface
	budget := math.Max(-a.Velocity[2]+s.Gravity, 0)

	// Sinking below the surface is tolerated only down to half of b's
	// depth, so a thin neighbour on the same floor is not mistaken for ground.
	landing := gap >= 0 && gap <= budget
	sink := math.Min(s.Tuning.GroundTolerance, b.Shape.Depth()/2)
	if !landing && (gap > s.Tuning.GroundTolerance || gap < -sink) {
		return false
	}

	a.Shape.Position[2] = surface + a.Shape.Depth()/2 + s.Gravity/2
	a.Velocity[2] = 0
	if b.Shape.Distribution != DistributionUniform {
		a.Velocity[0], a.Velocity[1] = 0, 0
	}
	s.grounded[a] = true
	return true
}

// layersOverlap rejects footprint collisions between bodies that pass over or
// under each other. Each body's top is sampled at the other's position so
// ramps are taken into account.
func (s *Simulator) layersOverlap(b1, b2 *Body) bool {
	top1 := b1.Shape.TopDepthAt(b2.LayeredPosition())
	top2 := b2.Shape.TopDepthAt(b1.LayeredPosition())
	overlap := math.Min(top1, top2) - math.Max(b1.Shape.BottomDepth(), b2.Shape.BottomDepth())

	band := math.Min(s.Tuning.LayerBand, math.Min(b1.Shape.Depth(), b2.Shape.Depth()))
	return overlap >= band-layerEpsilon
}

// pushApart separates the pair along the MTV and stops both bodies.
// The displacement is shared in inverse proportion to mass; a static body
// takes none of it.
func (s *Simulator) pushApart(b1, b2 *Body, data CollisionData) {
	mtv := data.MTV()
	share1, share2 := pushShares(b1, b2)

	b1.Shape.Position = b1.Shape.Position.Add(mtv.Mul(share1).Vec3(0))
	b2.Shape.Position = b2.Shape.Position.Sub(mtv.Mul(share2).Vec3(0))
	b1.Velocity = mgl64.Vec3{}
	b2.Velocity = mgl64.Vec3{}
}

func pushShares(b1, b2 *Body) (float64, float64) {
	switch {
	case b1.IsStatic:
		return 0, 1
	case b2.IsStatic:
		return 1, 0
	}
	total := b1.Mass + b2.Mass
	if total <= 0 || !isFinite(total) {
		return 0.5, 0.5
	}
	return b2.Mass / total, b1.Mass / total
}

// applyFriction opposes the full velocity with friction*mass*gravity per
// tick. Only the horizontal components are damped: friction can bring them
// to rest but never reverses them, and the vertical component is kept as is.
func (s *Simulator) applyFriction(b *Body) {
	dir := normalize3(b.Velocity)
	if dir == (mgl64.Vec3{}) {
		return
	}
	friction := dir.Mul(-b.Friction * b.Mass * s.Gravity)
	b.Velocity = frictionClamp(b.Velocity, horizontal(friction))
}

func frictionClamp(v mgl64.Vec3, friction mgl64.Vec2) mgl64.Vec3 {
	out := v
	for i := range 2 {
		damped := v[i] + friction[i]
		switch {
		case v[i] > 0:
			out[i] = clampF(damped, 0, v[i])
		case v[i] < 0:
			out[i] = clampF(damped, v[i], 0)
		}
	}
	return out
}

func (s *Simulator) recordCollision(b1, b2 *Body) {
	b1.AddCollision(b2)
	b2.AddCollision(b1)
	for _, h := range s.hooks {
		h.fn(b1, b2)
	}
}
