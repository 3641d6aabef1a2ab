package tui

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/tui-layers/internal/core"
	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/scene"
)

// rampRunes shade a ramp cell by how far up the slope it is.
var rampRunes = []rune("▁▂▃▄▅▆▇█")

const (
	runeStatic     = '█'
	runeDynamic    = '▓'
	runeImmaterial = '░'
	runeShadow     = '·'
	runePlayer     = '@'
)

// DrawOptions control how a world is drawn.
type DrawOptions struct {
	// Slice draws only what occupies the height SliceZ. Bodies entirely
	// below it are drawn as shadows; bodies above it are hidden.
	Slice  bool
	SliceZ float64
}

// DrawWorld renders the top-down view of w into s. Bodies are painted in
// order of their top height, so higher layers cover lower ones.
func DrawWorld(s *core.Screen, w *scene.World, view core.Viewport, opts DrawOptions) {
	s.Clear()
	lo, hi := w.DepthRange()

	bodies := slices.Clone(w.Bodies)
	slices.SortStableFunc(bodies, func(a, b *physics.Body) int {
		return cmp.Compare(a.Shape.TopDepth(), b.Shape.TopDepth())
	})

	for _, b := range bodies {
		if !opts.Slice {
			drawBody(s, view, b, b.Shape, lo, hi, b == w.Player)
			continue
		}
		if b.Shape.TopDepth() < opts.SliceZ {
			drawShadow(s, view, b.Shape)
			continue
		}
		slice, err := b.Shape.LayeredShape(opts.SliceZ)
		if err != nil {
			continue
		}
		drawBody(s, view, b, slice, lo, hi, b == w.Player)
	}

	if opts.Slice {
		s.DrawText(0, s.Height()-1, fmt.Sprintf("z=%.1f", opts.SliceZ), core.ColorYellow)
	}
}

// drawBody fills every cell whose centre lies on shape's footprint. The
// height used for coloring is sampled from the full body shape.
func drawBody(s *core.Screen, view core.Viewport, b *physics.Body, shape *physics.Shape, lo, hi float64, player bool) {
	drawn := forEachCell(s, view, shape, func(col, row int, p mgl64.Vec2) {
		top := b.Shape.TopDepthAt(p)
		color := core.DepthColor(top, lo, hi)
		if player {
			color = core.ColorBrightWhite
		}
		s.SetCell(col, row, core.Cell{Rune: bodyRune(b, top), Color: color})
	})

	center := shape.LayeredPosition()
	col, row := view.ToCell(center[0], center[1])
	if player {
		s.SetCell(col, row, core.Cell{Rune: runePlayer, Color: core.ColorBrightWhite})
	} else if drawn == 0 {
		// Smaller than a cell: still mark where it is.
		s.SetCell(col, row, core.Cell{Rune: bodyRune(b, b.Shape.TopDepth()), Color: core.DepthColor(b.Shape.TopDepth(), lo, hi)})
	}
}

func drawShadow(s *core.Screen, view core.Viewport, shape *physics.Shape) {
	forEachCell(s, view, shape, func(col, row int, _ mgl64.Vec2) {
		s.SetCell(col, row, core.Cell{Rune: runeShadow, Color: core.ColorGray})
	})
}

// forEachCell calls fn for every on-screen cell covered by shape and returns
// how many there were.
func forEachCell(s *core.Screen, view core.Viewport, shape *physics.Shape, fn func(col, row int, p mgl64.Vec2)) int {
	lo, hi := shape.Bounds()
	r := view.RectFor(lo[0], lo[1], hi[0]-lo[0], hi[1]-lo[1]).Intersect(s.Bounds())
	n := 0
	for row := r.Y; row < r.Bottom(); row++ {
		for col := r.X; col < r.Right(); col++ {
			x, y := view.ToWorld(col, row)
			p := mgl64.Vec2{x, y}
			if !shape.ContainsPoint(p) {
				continue
			}
			fn(col, row, p)
			n++
		}
	}
	return n
}

func bodyRune(b *physics.Body, top float64) rune {
	switch {
	case b.IsImmaterial:
		return runeImmaterial
	case b.Shape.Distribution != physics.DistributionUniform:
		depth := b.Shape.Depth()
		if depth <= 0 {
			return rampRunes[len(rampRunes)-1]
		}
		t := core.ClampF((top-b.Shape.BottomDepth())/depth, 0, 1)
		return rampRunes[int(t*float64(len(rampRunes)-1)+0.5)]
	case b.IsStatic:
		return runeStatic
	}
	return runeDynamic
}
