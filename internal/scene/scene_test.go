package scene

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/tui-layers/internal/config"
	"github.com/vovakirdan/tui-layers/internal/physics"
)

func quiet() physics.Option {
	return physics.WithLogger(log.New(io.Discard))
}

func TestLoaderLoadAll(t *testing.T) {
	loader := NewLoader("testdata")

	scenes, err := loader.LoadAll()
	if err != nil {
		t.Fatalf("LoadAll failed: %v", err)
	}

	// broken.yaml is skipped, notes.txt is ignored.
	if len(scenes) != 2 {
		t.Fatalf("expected 2 scenes, got %d", len(scenes))
	}
	if scenes[0].ID != "drop" || scenes[1].ID != "row" {
		t.Errorf("scenes not sorted by ID: %s, %s", scenes[0].ID, scenes[1].ID)
	}
	if want := filepath.Join("testdata", "nested", "row.yml"); scenes[1].FilePath != want {
		t.Errorf("FilePath = %q, expected %q", scenes[1].FilePath, want)
	}
}

func TestLoaderLoadByID(t *testing.T) {
	loader := NewLoader("testdata")

	s, err := loader.LoadByID("drop")
	if err != nil {
		t.Fatalf("LoadByID failed: %v", err)
	}
	if s.Name != "Drop Test" || s.Ticks != 120 {
		t.Errorf("scene = %q/%d, expected Drop Test/120", s.Name, s.Ticks)
	}
	if len(s.Bodies) != 2 {
		t.Errorf("expected 2 bodies, got %d", len(s.Bodies))
	}

	if _, err := loader.LoadByID("missing"); err == nil {
		t.Error("LoadByID(missing) should fail")
	}
}

func TestLoaderListIDs(t *testing.T) {
	ids, err := NewLoader("testdata").ListIDs()
	if err != nil {
		t.Fatal(err)
	}
	if len(ids) != 2 || ids[0] != "drop" || ids[1] != "row" {
		t.Errorf("ListIDs() = %v, expected [drop row]", ids)
	}
}

func TestLoaderBrokenFile(t *testing.T) {
	_, err := NewLoader("testdata").LoadFile("broken.yaml")
	var verr ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("LoadFile(broken) error = %v, expected ValidationError", err)
	}
	if verr.Code != CodeBadVector {
		t.Errorf("Code = %s, expected %s", verr.Code, CodeBadVector)
	}
}

func TestFSLoader(t *testing.T) {
	fsys := fstest.MapFS{
		"a.yaml": {Data: []byte("id: a\nbodies:\n  - size: [1, 1, 1]\n    position: [0, 0, 0]\n")},
	}
	scenes, err := NewFSLoader(fsys).LoadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(scenes) != 1 || scenes[0].Name != "a" {
		t.Errorf("LoadAll() = %+v, expected one scene named after its id", scenes)
	}
}

func TestRepeatExpansion(t *testing.T) {
	s, err := NewLoader("testdata").LoadByID("row")
	if err != nil {
		t.Fatal(err)
	}
	if len(s.Bodies) != 4 {
		t.Fatalf("expected 4 bodies after repeat, got %d", len(s.Bodies))
	}
	last := s.Bodies[3]
	if last.Name != "crate-3" {
		t.Errorf("last name = %q, expected crate-3", last.Name)
	}
	if last.Position[0] != 20 {
		t.Errorf("last x = %v, expected 20", last.Position[0])
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		code string
	}{
		{"missing id", "bodies:\n  - size: [1,1,1]\n    position: [0,0,0]\n", CodeMissingID},
		{"no bodies", "id: x\n", CodeNoBodies},
		{"zero size", "id: x\nbodies:\n  - size: [0,1,1]\n    position: [0,0,0]\n", CodeBadSize},
		{"bad distribution", "id: x\nbodies:\n  - size: [1,1,1]\n    position: [0,0,0]\n    distribution: up\n", CodeBadDistribution},
		{"negative mass", "id: x\nbodies:\n  - size: [1,1,1]\n    position: [0,0,0]\n    mass: -1\n", CodeBadMass},
		{"short velocity", "id: x\nbodies:\n  - size: [1,1,1]\n    position: [0,0,0]\n    velocity: [1]\n", CodeBadVector},
		{"duplicate names", "id: x\nbodies:\n  - {name: a, size: [1,1,1], position: [0,0,0]}\n  - {name: a, size: [1,1,1], position: [5,0,0]}\n", CodeDuplicateName},
		{"two players", "id: x\nbodies:\n  - {player: true, size: [1,1,1], position: [0,0,0]}\n  - {player: true, size: [1,1,1], position: [5,0,0]}\n", CodeMultiplePlayers},
		{"static player", "id: x\nbodies:\n  - {player: true, static: true, size: [1,1,1], position: [0,0,0]}\n", CodeStaticPlayer},
		{"negative gravity", "id: x\nphysics:\n  gravity: -1\nbodies:\n  - {size: [1,1,1], position: [0,0,0]}\n", CodeBadPhysics},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			var verr ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Parse() error = %v, expected ValidationError", err)
			}
			if verr.Code != tt.code {
				t.Errorf("Code = %s, expected %s", verr.Code, tt.code)
			}
		})
	}
}

func TestParseBadYAML(t *testing.T) {
	if _, err := Parse([]byte("id: [unclosed")); err == nil {
		t.Error("Parse() of malformed YAML should fail")
	}
	if _, err := Parse([]byte("id: x\nbodies:\n  - {size: [1,1,1], position: [0,0,0], repeat: {count: 0, step: [1,0,0]}}\n")); err == nil {
		t.Error("Parse() should reject a zero repeat count")
	}
}

func TestResolveOverrides(t *testing.T) {
	s, err := NewLoader("testdata").LoadByID("drop")
	if err != nil {
		t.Fatal(err)
	}
	base := config.DefaultPhysics()
	base.Gravity = 9
	base.LayerBand = 1

	cfg := s.Resolve(base)
	if cfg.Gravity != 0.3 {
		t.Errorf("Gravity = %v, expected scene override 0.3", cfg.Gravity)
	}
	if cfg.LayerBand != 1 {
		t.Errorf("LayerBand = %v, expected base value 1", cfg.LayerBand)
	}
}

func TestBuildAndRun(t *testing.T) {
	s, err := NewLoader("testdata").LoadByID("drop")
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Build(config.DefaultPhysics(), quiet())
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}

	if w.Player == nil || w.Player.Name != "crate" {
		t.Fatalf("Player = %v, expected crate", w.Player)
	}
	floor := w.Body("floor")
	if floor == nil || !floor.IsStatic {
		t.Fatal("floor missing or not static")
	}
	if w.Player.Mass != 2 {
		t.Errorf("crate mass = %v, expected 2", w.Player.Mass)
	}

	for i := 0; i < s.Ticks; i++ {
		w.Sim.Update()
	}
	if got := w.Player.Shape.BottomDepth(); math.Abs(got-5.15) > 1e-9 {
		t.Errorf("crate bottom = %v, expected 5.15", got)
	}
}

func TestBuildAppliesShapeFields(t *testing.T) {
	s, err := NewLoader("testdata").LoadByID("row")
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Build(config.DefaultPhysics(), quiet())
	if err != nil {
		t.Fatal(err)
	}

	ramp := w.Body("ramp")
	if ramp.Shape.Distribution != physics.DistributionRight {
		t.Errorf("Distribution = %v, expected right", ramp.Shape.Distribution)
	}
	if math.Abs(ramp.Shape.Rotation-math.Pi/2) > 1e-12 {
		t.Errorf("Rotation = %v, expected pi/2", ramp.Shape.Rotation)
	}
	if c := w.Body("crate-2"); c == nil || c.Velocity != (mgl64.Vec3{1, 0, 0}) {
		t.Errorf("crate-2 = %+v, expected velocity (1,0,0)", c)
	}
	if w.Player != nil {
		t.Error("row scene has no player")
	}
}

func TestWorldSpawnAndRemove(t *testing.T) {
	s, err := Parse([]byte("id: x\nbodies:\n  - {name: a, size: [2,2,2], position: [0,0,0], player: true}\n"))
	if err != nil {
		t.Fatal(err)
	}
	w, err := s.Build(config.DefaultPhysics(), quiet())
	if err != nil {
		t.Fatal(err)
	}

	b := w.Spawn(mgl64.Vec3{10, 0, 40}, 3)
	if b.Name != "spawn-1" || w.Body("spawn-1") != b {
		t.Errorf("spawned body name = %q", b.Name)
	}
	w.Sim.Update()
	if len(w.Sim.Bodies()) != 2 {
		t.Errorf("simulator bodies = %d, expected 2", len(w.Sim.Bodies()))
	}

	// Both bodies fell one tick of gravity.
	lo, hi := w.DepthRange()
	if math.Abs(lo-(-1.3)) > 1e-9 || math.Abs(hi-41.2) > 1e-9 {
		t.Errorf("DepthRange() = %v, %v, expected -1.3, 41.2", lo, hi)
	}

	w.Remove(w.Player)
	if w.Player != nil || w.Body("a") != nil {
		t.Error("Remove() left the player behind")
	}
	w.Sim.Update()
	if len(w.Sim.Bodies()) != 1 {
		t.Errorf("simulator bodies = %d, expected 1", len(w.Sim.Bodies()))
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	s, err := NewLoader("testdata").LoadByID("drop")
	if err != nil {
		t.Fatal(err)
	}
	data, err := s.Marshal()
	if err != nil {
		t.Fatal(err)
	}

	path := filepath.Join(t.TempDir(), "copy.yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
	again, err := LoadPath(path)
	if err != nil {
		t.Fatalf("LoadPath() error = %v", err)
	}
	if again.ID != s.ID || len(again.Bodies) != len(s.Bodies) || *again.Physics.Gravity != 0.3 {
		t.Errorf("round trip mismatch: %+v", again)
	}
}
