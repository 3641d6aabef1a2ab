// Package core provides the terminal-side primitives shared by the viewer and
// the CLI: cell rectangles, a colored character canvas, the world-to-cell
// viewport and semantic input actions. It has no Bubble Tea dependency so
// rendering can be tested without a terminal.
package core

import "math"

// Rect is an axis-aligned rectangle in terminal cells.
type Rect struct {
	X, Y int // top-left cell
	W, H int
}

// NewRect creates a new rectangle with the given position and dimensions.
func NewRect(x, y, w, h int) Rect {
	return Rect{X: x, Y: y, W: w, H: h}
}

// Right returns the exclusive x-coordinate of the right edge.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the exclusive y-coordinate of the bottom edge.
func (r Rect) Bottom() int { return r.Y + r.H }

// Empty reports whether the rectangle covers no cells.
func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

// Intersect returns the overlap of two rectangles. The result is Empty when
// they do not overlap.
func (r Rect) Intersect(other Rect) Rect {
	x0, y0 := max(r.X, other.X), max(r.Y, other.Y)
	x1, y1 := min(r.Right(), other.Right()), min(r.Bottom(), other.Bottom())
	if x1 <= x0 || y1 <= y0 {
		return Rect{X: x0, Y: y0}
	}
	return Rect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// Contains returns true if the cell (x, y) is inside this rectangle.
func (r Rect) Contains(x, y int) bool {
	return x >= r.X && x < r.Right() && y >= r.Y && y < r.Bottom()
}

// Viewport maps world XY coordinates onto terminal cells.
// Terminal cells are roughly twice as tall as they are wide, so one row
// covers two columns worth of world units.
type Viewport struct {
	CenterX, CenterY float64 // world point shown in the middle of the canvas
	CellSize         float64 // world units per column
	Width, Height    int     // canvas size in cells
}

// rowScale is the height of a cell relative to its width.
const rowScale = 2.0

// ToCell converts a world point to the cell containing it.
func (v Viewport) ToCell(x, y float64) (int, int) {
	cs := v.cellSize()
	cx := (x-v.CenterX)/cs + float64(v.Width)/2
	cy := (y-v.CenterY)/(cs*rowScale) + float64(v.Height)/2
	return int(math.Floor(cx)), int(math.Floor(cy))
}

// ToWorld returns the world point at the centre of a cell.
func (v Viewport) ToWorld(col, row int) (float64, float64) {
	cs := v.cellSize()
	x := (float64(col)+0.5-float64(v.Width)/2)*cs + v.CenterX
	y := (float64(row)+0.5-float64(v.Height)/2)*cs*rowScale + v.CenterY
	return x, y
}

// RectFor returns the cells covered by a world-space box given by its
// minimum corner and size.
func (v Viewport) RectFor(minX, minY, w, h float64) Rect {
	x0, y0 := v.ToCell(minX, minY)
	x1, y1 := v.ToCell(minX+w, minY+h)
	// Always draw at least one cell so small bodies stay visible.
	return Rect{X: x0, Y: y0, W: max(x1-x0, 1), H: max(y1-y0, 1)}
}

// Zoom scales the cell size by factor, keeping it within sane bounds.
func (v *Viewport) Zoom(factor float64) {
	v.CellSize = ClampF(v.cellSize()*factor, 0.25, 64)
}

func (v Viewport) cellSize() float64 {
	if v.CellSize <= 0 {
		return 1
	}
	return v.CellSize
}

// ClampF restricts a float64 value to be within [lo, hi].
func ClampF(val, lo, hi float64) float64 {
	if val < lo {
		return lo
	}
	if val > hi {
		return hi
	}
	return val
}
