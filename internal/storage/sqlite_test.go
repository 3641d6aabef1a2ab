package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/tui-layers/internal/physics"
)

func openTemp(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreOpenClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "nested", "dir", "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("Database file was not created")
	}
}

func TestStoreReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := Open(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	id, err := store.SaveRun(Run{SceneID: "falling", Ticks: 10, FinalHash: 1}, nil)
	if err != nil {
		t.Fatal(err)
	}
	store.Close()

	// Migrations must be idempotent.
	store, err = Open(dbPath)
	if err != nil {
		t.Fatalf("second Open() failed: %v", err)
	}
	defer store.Close()
	if _, err := store.RunByID(id); err != nil {
		t.Errorf("RunByID() after reopen: %v", err)
	}
}

func TestSaveAndLoadRun(t *testing.T) {
	store := openTemp(t)

	bodies := []physics.BodyState{
		{Name: "floor", Position: mgl64.Vec3{0, 0, 0}, Static: true, Collisions: 1},
		{Name: "crate", Position: mgl64.Vec3{1.5, -2, 10.15}, Velocity: mgl64.Vec3{0.25, 0, 0}, Collisions: 1},
	}
	run := Run{
		SceneID:       "falling",
		Ticks:         180,
		Collisions:    164,
		PeakContacts:  1,
		GroundedTicks: 164,
		Elapsed:       1500 * time.Millisecond,
		FinalHash:     0xfedcba9876543210,
		Source:        "viewer",
	}

	id, err := store.SaveRun(run, bodies)
	if err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}
	if len(id) != 36 {
		t.Errorf("run ID %q is not a UUID", id)
	}

	got, err := store.RunByID(id)
	if err != nil {
		t.Fatalf("RunByID() failed: %v", err)
	}
	if got.SceneID != "falling" || got.Ticks != 180 || got.Collisions != 164 || got.Source != "viewer" {
		t.Errorf("RunByID() = %+v", got)
	}
	if got.FinalHash != run.FinalHash {
		t.Errorf("FinalHash = %x, expected %x", got.FinalHash, run.FinalHash)
	}
	if got.Elapsed != run.Elapsed {
		t.Errorf("Elapsed = %v, expected %v", got.Elapsed, run.Elapsed)
	}
	if got.CreatedAt.IsZero() {
		t.Error("CreatedAt not set")
	}

	states, err := store.BodyStates(id)
	if err != nil {
		t.Fatalf("BodyStates() failed: %v", err)
	}
	if len(states) != 2 {
		t.Fatalf("expected 2 body states, got %d", len(states))
	}
	if states[0].Name != "floor" || !states[0].Static {
		t.Errorf("first state = %+v", states[0])
	}
	if states[1].Position != bodies[1].Position || states[1].Velocity != bodies[1].Velocity {
		t.Errorf("crate state = %+v, expected %+v", states[1], bodies[1])
	}
}

func TestRunByIDNotFound(t *testing.T) {
	store := openTemp(t)

	if _, err := store.RunByID("missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("RunByID(missing) error = %v, expected ErrNotFound", err)
	}
}

func TestRecentRuns(t *testing.T) {
	store := openTemp(t)

	for i, sceneID := range []string{"falling", "ramp", "falling", "stack"} {
		if _, err := store.SaveRun(Run{SceneID: sceneID, Ticks: uint64(100 * (i + 1))}, nil); err != nil {
			t.Fatal(err)
		}
	}

	all, err := store.RecentRuns("", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 runs, got %d", len(all))
	}
	if all[0].SceneID != "stack" || all[0].Ticks != 400 {
		t.Errorf("newest run = %+v, expected stack/400", all[0])
	}

	falling, err := store.RecentRuns("falling", 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(falling) != 1 || falling[0].Ticks != 300 {
		t.Errorf("RecentRuns(falling, 1) = %+v, expected the 300 tick run", falling)
	}
}

func TestSceneStats(t *testing.T) {
	store := openTemp(t)

	runs := []Run{
		{SceneID: "falling", Ticks: 100, Collisions: 10},
		{SceneID: "falling", Ticks: 300, Collisions: 30},
		{SceneID: "ramp", Ticks: 50, Collisions: 0},
	}
	for _, r := range runs {
		if _, err := store.SaveRun(r, nil); err != nil {
			t.Fatal(err)
		}
	}

	stats, err := store.SceneStats()
	if err != nil {
		t.Fatalf("SceneStats() failed: %v", err)
	}
	f := stats["falling"]
	if f == nil {
		t.Fatal("no stats for falling")
	}
	if f.Runs != 2 || f.TotalTicks != 400 || f.TotalCollisions != 40 || f.AvgTicks != 200 {
		t.Errorf("falling stats = %+v", f)
	}
	if stats["ramp"] == nil || stats["ramp"].Runs != 1 {
		t.Errorf("ramp stats = %+v", stats["ramp"])
	}
}

func TestDeleteRun(t *testing.T) {
	store := openTemp(t)

	id, err := store.SaveRun(Run{SceneID: "x", Ticks: 1}, []physics.BodyState{{Name: "a"}})
	if err != nil {
		t.Fatal(err)
	}
	if err := store.DeleteRun(id); err != nil {
		t.Fatalf("DeleteRun() failed: %v", err)
	}
	if _, err := store.RunByID(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("run still present after delete: %v", err)
	}
	states, err := store.BodyStates(id)
	if err != nil || len(states) != 0 {
		t.Errorf("BodyStates() after delete = %v, %v", states, err)
	}
	if err := store.DeleteRun(id); !errors.Is(err, ErrNotFound) {
		t.Errorf("second DeleteRun() error = %v, expected ErrNotFound", err)
	}
}

func TestSaveRunKeepsGivenID(t *testing.T) {
	store := openTemp(t)

	id, err := store.SaveRun(Run{ID: "fixed-id", SceneID: "x"}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if id != "fixed-id" {
		t.Errorf("SaveRun() id = %q, expected fixed-id", id)
	}
	if _, err := store.SaveRun(Run{ID: "fixed-id", SceneID: "x"}, nil); err == nil {
		t.Error("duplicate run ID should be rejected")
	}
}
