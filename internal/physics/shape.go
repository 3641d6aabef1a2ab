package physics

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// DefaultStepAllowance shortens the run of every ramp so that a climbing
// body reaches the full ramp height slightly before the high edge. Without it
// a body standing at the top of a ramp would be blocked by the platform the
// ramp leads onto.
const DefaultStepAllowance = 5.0

// sliceThickness is the depth of shapes returned by LayeredShape.
const sliceThickness = 1.0

// minSliceExtent keeps sliced footprints from collapsing to zero size.
const minSliceExtent = 1e-3

var (
	// ErrDepthOutOfRange is returned by LayeredShape when the requested height
	// lies outside the shape's occupied depth range.
	ErrDepthOutOfRange = errors.New("physics: depth out of range")

	// ErrNilShape is reported when a body without a shape reaches the simulator.
	ErrNilShape = errors.New("physics: body has no shape")
)

// DepthDistribution describes how a shape's occupied height varies across its
// footprint. Uniform is a plain box. The directional values turn the box into
// a ramp that reaches its full depth at the named edge and drops to zero at
// the opposite edge.
type DepthDistribution int

const (
	DistributionUniform DepthDistribution = iota
	DistributionTop
	DistributionBottom
	DistributionLeft
	DistributionRight
)

// String returns the lowercase name used in scene files.
func (d DepthDistribution) String() string {
	switch d {
	case DistributionUniform:
		return "uniform"
	case DistributionTop:
		return "top"
	case DistributionBottom:
		return "bottom"
	case DistributionLeft:
		return "left"
	case DistributionRight:
		return "right"
	default:
		return "unknown"
	}
}

// ParseDepthDistribution parses a distribution name. An empty string is
// Uniform.
func ParseDepthDistribution(s string) (DepthDistribution, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "uniform":
		return DistributionUniform, true
	case "top":
		return DistributionTop, true
	case "bottom":
		return DistributionBottom, true
	case "left":
		return DistributionLeft, true
	case "right":
		return DistributionRight, true
	}
	return DistributionUniform, false
}

// Shape is a rectangular volume. Width and height span the XY footprint,
// depth spans Z. Position is the centroid in world space.
// Y grows downwards, so "top" is the edge with the smaller Y.
type Shape struct {
	Position      mgl64.Vec3
	Rotation      float64 // radians about Z
	Distribution  DepthDistribution
	StepAllowance float64

	width  float64
	height float64
	depth  float64
	origin mgl64.Vec2
}

// NewShape creates a uniform, unrotated shape at the world origin.
func NewShape(width, height, depth float64) *Shape {
	s := &Shape{StepAllowance: DefaultStepAllowance}
	s.SetSize(width, height, depth)
	return s
}

// SetSize changes the dimensions and recomputes the origin.
func (s *Shape) SetSize(width, height, depth float64) {
	s.width = width
	s.height = height
	s.depth = depth
	s.origin = mgl64.Vec2{width / 2, height / 2}
}

func (s *Shape) Width() float64  { return s.width }
func (s *Shape) Height() float64 { return s.height }
func (s *Shape) Depth() float64  { return s.depth }

// Origin is the rotation pivot relative to the top-left corner.
func (s *Shape) Origin() mgl64.Vec2 { return s.origin }

// LayeredPosition is the XY projection of the centroid.
func (s *Shape) LayeredPosition() mgl64.Vec2 {
	return horizontal(s.Position)
}

// BottomDepth is the lowest occupied Z.
func (s *Shape) BottomDepth() float64 {
	return s.Position[2] - s.depth/2
}

// TopDepth is the highest occupied Z anywhere on the footprint.
func (s *Shape) TopDepth() float64 {
	return s.Position[2] + s.depth/2
}

// Bounds returns the unrotated XY bounding box as (min, max).
func (s *Shape) Bounds() (mgl64.Vec2, mgl64.Vec2) {
	c := s.LayeredPosition()
	return c.Sub(s.origin), c.Add(s.origin)
}

// Intersects is a cheap AABB test in the XY plane. Rotation and depth are
// ignored; use NarrowPhase for the real answer.
func (s *Shape) Intersects(other *Shape) bool {
	aMin, aMax := s.Bounds()
	bMin, bMax := other.Bounds()
	if aMin[0] >= bMax[0] || bMin[0] >= aMax[0] {
		return false
	}
	if aMin[1] >= bMax[1] || bMin[1] >= aMax[1] {
		return false
	}
	return true
}

// corner returns the corner at the given offset from the top-left corner,
// rotated about the centroid.
func (s *Shape) corner(offset mgl64.Vec2) mgl64.Vec2 {
	c := s.LayeredPosition()
	p := c.Sub(s.origin).Add(offset)
	return rotateAbout(p, c, s.Rotation)
}

func (s *Shape) TopLeft() mgl64.Vec2     { return s.corner(mgl64.Vec2{0, 0}) }
func (s *Shape) TopRight() mgl64.Vec2    { return s.corner(mgl64.Vec2{s.width, 0}) }
func (s *Shape) BottomRight() mgl64.Vec2 { return s.corner(mgl64.Vec2{s.width, s.height}) }
func (s *Shape) BottomLeft() mgl64.Vec2  { return s.corner(mgl64.Vec2{0, s.height}) }

// Vertices returns the corners clockwise starting at the top-left.
func (s *Shape) Vertices() [4]mgl64.Vec2 {
	return [4]mgl64.Vec2{s.TopLeft(), s.TopRight(), s.BottomRight(), s.BottomLeft()}
}

// Axes returns the two unique edge normals. Opposite edges share a normal,
// so a rectangle only has two. A degenerate edge yields a zero axis.
func (s *Shape) Axes() [2]mgl64.Vec2 {
	v := s.Vertices()
	var axes [2]mgl64.Vec2
	for i := range axes {
		edge := v[i+1].Sub(v[i])
		axes[i] = normalize2(mgl64.Vec2{-edge[1], edge[0]})
	}
	return axes
}

// Project returns the [min, max] interval of the vertices along axis.
// axis must already be normalized.
func (s *Shape) Project(axis mgl64.Vec2) mgl64.Vec2 {
	v := s.Vertices()
	lo := axis.Dot(v[0])
	hi := lo
	for _, p := range v[1:] {
		d := axis.Dot(p)
		lo = math.Min(lo, d)
		hi = math.Max(hi, d)
	}
	return mgl64.Vec2{lo, hi}
}

// toLocal maps a world XY point into the unrotated frame whose origin is the
// top-left corner, so the footprint spans [0,width]x[0,height].
func (s *Shape) toLocal(p mgl64.Vec2) mgl64.Vec2 {
	c := s.LayeredPosition()
	p = rotateAbout(p, c, -s.Rotation)
	return p.Sub(c.Sub(s.origin))
}

// ContainsPoint reports whether the XY point p lies on the footprint.
func (s *Shape) ContainsPoint(p mgl64.Vec2) bool {
	l := s.toLocal(p)
	return l[0] >= 0 && l[0] <= s.width && l[1] >= 0 && l[1] <= s.height
}

// rampAxis returns how far p lies from the low edge and the span of the ramp
// along its slope direction.
func (s *Shape) rampAxis(local mgl64.Vec2) (along, span float64) {
	switch s.Distribution {
	case DistributionRight:
		return local[0], s.width
	case DistributionLeft:
		return s.width - local[0], s.width
	case DistributionBottom:
		return local[1], s.height
	case DistributionTop:
		return s.height - local[1], s.height
	}
	return 0, 0
}

// rampRun is the horizontal distance over which a ramp climbs its full depth.
func (s *Shape) rampRun(span float64) float64 {
	run := span - s.StepAllowance
	if run <= 0 {
		return span
	}
	return run
}

// TopDepthAt returns the height of the upper surface at the XY point p.
// Points off the footprint are clamped to the nearest ramp height.
func (s *Shape) TopDepthAt(p mgl64.Vec2) float64 {
	if s.Distribution == DistributionUniform {
		return s.TopDepth()
	}
	along, span := s.rampAxis(s.toLocal(p))
	if span <= 0 {
		return s.TopDepth()
	}
	rise := clampF(along/s.rampRun(span)*s.depth, 0, s.depth)
	return s.BottomDepth() + rise
}

// LayeredShape slices the shape at world height z and returns a thin uniform
// shape covering the footprint that is occupied at that height. For a ramp
// the slice narrows towards the high edge as z rises.
func (s *Shape) LayeredShape(z float64) (*Shape, error) {
	bottom, top := s.BottomDepth(), s.TopDepth()
	if math.IsNaN(z) || z < bottom || z > top {
		return nil, fmt.Errorf("%w: z=%.2f outside [%.2f, %.2f]", ErrDepthOutOfRange, z, bottom, top)
	}

	slice := &Shape{
		Rotation:      s.Rotation,
		Distribution:  DistributionUniform,
		StepAllowance: s.StepAllowance,
	}
	width, height := s.width, s.height
	var shift mgl64.Vec2

	if s.Distribution != DistributionUniform && s.depth > 0 {
		_, span := s.rampAxis(mgl64.Vec2{})
		cut := math.Min((z-bottom)/s.depth*s.rampRun(span), span)
		remaining := math.Max(span-cut, minSliceExtent)
		cut = span - remaining

		switch s.Distribution {
		case DistributionRight:
			width = remaining
			shift = mgl64.Vec2{cut / 2, 0}
		case DistributionLeft:
			width = remaining
			shift = mgl64.Vec2{-cut / 2, 0}
		case DistributionBottom:
			height = remaining
			shift = mgl64.Vec2{0, cut / 2}
		case DistributionTop:
			height = remaining
			shift = mgl64.Vec2{0, -cut / 2}
		}
	}

	center := rotateAbout(s.LayeredPosition().Add(shift), s.LayeredPosition(), s.Rotation)
	slice.SetSize(width, height, sliceThickness)
	slice.Position = mgl64.Vec3{center[0], center[1], z}
	return slice, nil
}

// Clone returns an independent copy.
func (s *Shape) Clone() *Shape {
	c := *s
	return &c
}
