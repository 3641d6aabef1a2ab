package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func boxAt(x, y, z, w, h, d float64) *Shape {
	s := NewShape(w, h, d)
	s.Position = mgl64.Vec3{x, y, z}
	return s
}

func TestNarrowPhase(t *testing.T) {
	tests := []struct {
		name        string
		a, b        *Shape
		collides    bool
		overlap     float64
		axis        mgl64.Vec2
		checkResult bool
	}{
		{
			name:     "separated on x",
			a:        boxAt(0, 0, 0, 10, 10, 1),
			b:        boxAt(20, 0, 0, 10, 10, 1),
			collides: false,
		},
		{
			name:     "touching edges",
			a:        boxAt(0, 0, 0, 10, 10, 1),
			b:        boxAt(10, 0, 0, 10, 10, 1),
			collides: false,
		},
		{
			name:        "overlap on x, a left of b",
			a:           boxAt(0, 0, 0, 10, 10, 1),
			b:           boxAt(8, 0, 0, 10, 10, 1),
			collides:    true,
			overlap:     2,
			axis:        mgl64.Vec2{-1, 0},
			checkResult: true,
		},
		{
			name:        "overlap on y, a below b",
			a:           boxAt(0, 7, 0, 10, 10, 1),
			b:           boxAt(1, 0, 0, 10, 10, 1),
			collides:    true,
			overlap:     3,
			axis:        mgl64.Vec2{0, 1},
			checkResult: true,
		},
		{
			name:     "depth does not matter",
			a:        boxAt(0, 0, 0, 10, 10, 1),
			b:        boxAt(5, 0, 100, 10, 10, 1),
			collides: true,
			overlap:  5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := NarrowPhase(tt.a, tt.b)
			if data.HasCollision != tt.collides {
				t.Fatalf("HasCollision = %v, expected %v", data.HasCollision, tt.collides)
			}
			if data.Sender != tt.a || data.Recipient != tt.b {
				t.Error("Sender/Recipient not set to the arguments")
			}
			if !tt.collides {
				if data.MTV() != (mgl64.Vec2{}) {
					t.Errorf("MTV() = %v, expected zero without collision", data.MTV())
				}
				return
			}
			if !near(data.Overlap, tt.overlap) {
				t.Errorf("Overlap = %v, expected %v", data.Overlap, tt.overlap)
			}
			if tt.checkResult {
				if !near(data.Axis[0], tt.axis[0]) || !near(data.Axis[1], tt.axis[1]) {
					t.Errorf("Axis = %v, expected %v", data.Axis, tt.axis)
				}
			}
		})
	}
}

func TestNarrowPhaseMTVSeparates(t *testing.T) {
	a := boxAt(3, 2, 0, 10, 6, 1)
	b := boxAt(9, 4, 0, 8, 8, 1)

	data := NarrowPhase(a, b)
	if !data.HasCollision {
		t.Fatal("expected collision")
	}
	a.Position = a.Position.Add(data.MTV().Vec3(0))
	if again := NarrowPhase(a, b); again.HasCollision {
		t.Errorf("still colliding after applying MTV, overlap %v", again.Overlap)
	}
}

func TestNarrowPhaseRotated(t *testing.T) {
	a := boxAt(0, 0, 0, 10, 10, 1)
	b := boxAt(12, 0, 0, 10, 10, 1)

	if NarrowPhase(a, b).HasCollision {
		t.Fatal("unrotated boxes 12 apart should not collide")
	}
	// A 45 degree turn reaches out to 5*sqrt(2) from the centre.
	b.Rotation = math.Pi / 4
	if !NarrowPhase(a, b).HasCollision {
		t.Error("rotated box should reach the other box")
	}
}

func TestNarrowPhaseCoincidentCentroids(t *testing.T) {
	a := boxAt(0, 0, 0, 10, 10, 1)
	b := boxAt(0, 0, 0, 10, 10, 1)

	data := NarrowPhase(a, b)
	if !data.HasCollision {
		t.Fatal("expected collision")
	}
	if !near(data.Axis.Len(), 1) {
		t.Errorf("Axis length = %v, expected 1", data.Axis.Len())
	}
	if !near(data.Overlap, 10) {
		t.Errorf("Overlap = %v, expected 10", data.Overlap)
	}
}

func TestBroadPhase(t *testing.T) {
	a := NewBody(10, 10, 10, 1, 0, nil)
	b := NewBody(10, 4, 10, 1, 0, nil)

	tests := []struct {
		x        float64
		expected bool
	}{
		{0, true},
		{19.9, true},
		{20, false},
		{100, false},
	}
	for _, tt := range tests {
		b.SetPosition(mgl64.Vec3{tt.x, 0, 0})
		if got := BroadPhase(a, b); got != tt.expected {
			t.Errorf("BroadPhase() at x=%v = %v, expected %v", tt.x, got, tt.expected)
		}
	}
}
