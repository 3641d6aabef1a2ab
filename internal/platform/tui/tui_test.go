package tui

import (
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/tui-layers/internal/config"
	"github.com/vovakirdan/tui-layers/internal/core"
	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/scene"
	_ "github.com/vovakirdan/tui-layers/internal/scenes"
	"github.com/vovakirdan/tui-layers/internal/storage"
)

const dropScene = `
id: drop
ticks: 500
bodies:
  - {name: platform, size: [100, 100, 10], position: [0, 0, 0], static: true}
  - {name: crate, size: [10, 10, 10], position: [0, 0, 50], player: true}
`

const blastScene = `
id: blast
physics: {gravity: 0}
bodies:
  - {name: hero, size: [6, 6, 6], position: [0, 0, 0], player: true}
  - {name: box, size: [6, 6, 6], position: [20, 0, 0]}
  - {name: far, size: [6, 6, 6], position: [100, 0, 0]}
`

func parseScene(t *testing.T, src string) *scene.Scene {
	t.Helper()
	s, err := scene.Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse() failed: %v", err)
	}
	return s
}

func runeKey(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newViewer(t *testing.T, src string, store *storage.Store) ViewerModel {
	t.Helper()
	cfg := core.RuntimeConfig{ScreenW: 40, ScreenH: 22, TickRate: 60, Seed: 1}
	m, err := NewViewerModel(parseScene(t, src), cfg, ViewerOptions{Config: config.Default(), Store: store})
	if err != nil {
		t.Fatalf("NewViewerModel() failed: %v", err)
	}
	return m
}

func send(t *testing.T, m ViewerModel, msgs ...tea.Msg) ViewerModel {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		vm, ok := next.(ViewerModel)
		if !ok {
			t.Fatalf("Update() returned %T", next)
		}
		m = vm
	}
	return m
}

func TestKeyMapperMapKey(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg      tea.KeyMsg
		expected core.Action
		quit     bool
	}{
		{runeKey("w"), core.ActionUp, false},
		{tea.KeyMsg{Type: tea.KeyDown}, core.ActionDown, false},
		{runeKey("a"), core.ActionLeft, false},
		{tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, core.ActionJump, false},
		{runeKey("x"), core.ActionShockwave, false},
		{runeKey("]"), core.ActionLayerUp, false},
		{runeKey("+"), core.ActionZoomIn, false},
		{tea.KeyMsg{Type: tea.KeyEsc}, core.ActionBack, false},
		{runeKey("q"), core.ActionQuit, true},
		{tea.KeyMsg{Type: tea.KeyCtrlC}, core.ActionQuit, true},
		{runeKey("z"), core.ActionNone, false},
	}
	for _, tt := range tests {
		action, quit := km.MapKey(tt.msg)
		if action != tt.expected || quit != tt.quit {
			t.Errorf("MapKey(%q) = %v, %v, expected %v, %v", tt.msg.String(), action, quit, tt.expected, tt.quit)
		}
	}
}

func TestMapKeyToMenuAction(t *testing.T) {
	km := NewKeyMapper()
	tests := []struct {
		msg      tea.KeyMsg
		expected MenuAction
	}{
		{runeKey("k"), MenuActionUp},
		{tea.KeyMsg{Type: tea.KeyDown}, MenuActionDown},
		{tea.KeyMsg{Type: tea.KeyEnter}, MenuActionSelect},
		{tea.KeyMsg{Type: tea.KeyTab}, MenuActionRuns},
		{runeKey("q"), MenuActionQuit},
		{runeKey("z"), MenuActionNone},
	}
	for _, tt := range tests {
		if got := km.MapKeyToMenuAction(tt.msg); got != tt.expected {
			t.Errorf("MapKeyToMenuAction(%q) = %v, expected %v", tt.msg.String(), got, tt.expected)
		}
	}
}

func dropWorld(t *testing.T) (*scene.World, core.Viewport, *core.Screen) {
	t.Helper()
	w, err := parseScene(t, dropScene).Build(config.DefaultPhysics())
	if err != nil {
		t.Fatal(err)
	}
	view := core.Viewport{CellSize: 4, Width: 40, Height: 20}
	return w, view, core.NewScreen(40, 20)
}

func TestDrawWorld(t *testing.T) {
	w, view, s := dropWorld(t)
	DrawWorld(s, w, view, DrawOptions{})

	tests := []struct {
		x, y     int
		expected rune
	}{
		{20, 10, runePlayer},  // crate centre
		{19, 10, runeDynamic}, // rest of the crate
		{25, 5, runeStatic},   // platform only
		{2, 10, ' '},          // off the platform
		{20, 0, ' '},
	}
	for _, tt := range tests {
		if got := s.Get(tt.x, tt.y); got != tt.expected {
			t.Errorf("cell (%d,%d) = %q, expected %q", tt.x, tt.y, got, tt.expected)
		}
	}
	if got := s.GetCell(20, 10).Color; got != core.ColorBrightWhite {
		t.Errorf("player color = %v, expected bright white", got)
	}
}

func TestDrawWorldSlice(t *testing.T) {
	w, view, s := dropWorld(t)

	DrawWorld(s, w, view, DrawOptions{Slice: true, SliceZ: 50})
	if got := s.Get(25, 5); got != runeShadow {
		t.Errorf("platform below slice = %q, expected shadow", got)
	}
	if got := s.Get(20, 10); got != runePlayer {
		t.Errorf("crate in slice = %q, expected player marker", got)
	}
	if got := s.Row(19)[:6]; got != "z=50.0" {
		t.Errorf("slice label = %q, expected z=50.0", got)
	}

	// Between the two bodies nothing is cut.
	DrawWorld(s, w, view, DrawOptions{Slice: true, SliceZ: 20})
	if got := s.Get(20, 10); got != runeShadow {
		t.Errorf("cell under hidden crate = %q, expected platform shadow", got)
	}
}

func TestBodyRuneRamp(t *testing.T) {
	b := physics.NewBody(40, 20, 20, 1, 0, nil)
	b.Shape.Distribution = physics.DistributionRight
	b.IsStatic = true

	if got := bodyRune(b, b.Shape.BottomDepth()); got != rampRunes[0] {
		t.Errorf("ramp foot rune = %q, expected %q", got, rampRunes[0])
	}
	if got := bodyRune(b, b.Shape.TopDepth()); got != rampRunes[len(rampRunes)-1] {
		t.Errorf("ramp top rune = %q, expected %q", got, rampRunes[len(rampRunes)-1])
	}

	b.Shape.Distribution = physics.DistributionUniform
	if got := bodyRune(b, 0); got != runeStatic {
		t.Errorf("static rune = %q, expected %q", got, runeStatic)
	}
	b.IsImmaterial = true
	if got := bodyRune(b, 0); got != runeImmaterial {
		t.Errorf("immaterial rune = %q, expected %q", got, runeImmaterial)
	}
}

func TestRenderScreen(t *testing.T) {
	s := core.NewScreen(3, 2)
	s.DrawText(0, 0, "ab", core.ColorRed)
	out := RenderScreen(s)
	if strings.Count(out, "\n") != 1 {
		t.Errorf("RenderScreen() should produce 2 lines, got %q", out)
	}
	if !strings.Contains(out, "ab") {
		t.Errorf("RenderScreen() lost text: %q", out)
	}
}

func TestViewerTicks(t *testing.T) {
	m := newViewer(t, dropScene, nil)
	m = send(t, m, TickMsg{}, TickMsg{})
	if got := m.State().Tick; got != 2 {
		t.Errorf("Tick = %d, expected 2", got)
	}

	m = send(t, m, runeKey("p"), TickMsg{})
	if !m.State().Paused || m.State().Tick != 2 {
		t.Errorf("paused state = %+v, expected paused at tick 2", m.State())
	}
	m = send(t, m, runeKey("."))
	if got := m.State().Tick; got != 3 {
		t.Errorf("Tick after step = %d, expected 3", got)
	}

	if !strings.Contains(m.View(), "PAUSED") {
		t.Error("View() should show the paused state")
	}
}

func TestViewerJumpNeedsGround(t *testing.T) {
	m := newViewer(t, dropScene, nil)
	crate := m.World().Player

	// Jumping in mid-air does nothing.
	m = send(t, m, TickMsg{})
	vz := crate.Velocity[2]
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, TickMsg{})
	if crate.Velocity[2] > vz {
		t.Errorf("airborne jump changed velocity from %v to %v", vz, crate.Velocity[2])
	}

	for i := 0; i < 200 && !m.World().Sim.IsGrounded(crate); i++ {
		m = send(t, m, TickMsg{})
	}
	if !m.World().Sim.IsGrounded(crate) {
		t.Fatal("crate never landed")
	}

	before := crate.Position()[2]
	m = send(t, m, tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}, TickMsg{})
	if crate.Position()[2] < before+1 {
		t.Errorf("jump moved crate from z=%v to z=%v", before, crate.Position()[2])
	}
}

func TestViewerPushAndShockwave(t *testing.T) {
	m := newViewer(t, blastScene, nil)
	hero := m.World().Player
	box := m.World().Body("box")
	far := m.World().Body("far")

	m = send(t, m, TickMsg{}, runeKey("d"), TickMsg{})
	if hero.Velocity[0] <= 0 {
		t.Errorf("hero velocity = %v, expected a push along +X", hero.Velocity)
	}

	m = send(t, m, runeKey("x"), TickMsg{})
	if box.Velocity[0] <= 0 || box.Velocity[2] <= 0 {
		t.Errorf("box velocity = %v, expected pushed away and up", box.Velocity)
	}
	if far.Velocity != (mgl64.Vec3{}) {
		t.Errorf("far body velocity = %v, expected untouched", far.Velocity)
	}
}

func TestViewerSpawnAndRestart(t *testing.T) {
	m := newViewer(t, dropScene, nil)
	m = send(t, m, runeKey("n"), TickMsg{})
	if got := m.State().Bodies; got != 3 {
		t.Errorf("Bodies after spawn = %d, expected 3", got)
	}
	if m.World().Body("spawn-1") == nil {
		t.Error("spawned body not found")
	}

	m = send(t, m, runeKey("r"))
	if got := len(m.World().Bodies); got != 2 {
		t.Errorf("Bodies after restart = %d, expected 2", got)
	}
	if m.World().Sim.Tick() != 0 {
		t.Errorf("Tick after restart = %d, expected 0", m.World().Sim.Tick())
	}
}

func TestViewerSliceAndZoom(t *testing.T) {
	m := newViewer(t, dropScene, nil)
	m = send(t, m, runeKey("l"), runeKey("]"), runeKey("-"))
	if !m.slice {
		t.Error("slice mode not enabled")
	}
	if m.sliceZ != 26 {
		t.Errorf("sliceZ = %v, expected 26", m.sliceZ)
	}
	if m.view.CellSize != 8 {
		t.Errorf("CellSize = %v, expected 8", m.view.CellSize)
	}
	if !strings.Contains(m.statusLine(), "slice z=26.0") {
		t.Errorf("statusLine() = %q", m.statusLine())
	}
}

func TestViewerSavesRunOnQuit(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	m := newViewer(t, dropScene, store)
	m = send(t, m, TickMsg{}, TickMsg{}, TickMsg{}, runeKey("q"))
	if !m.IsQuitting() {
		t.Fatal("viewer should be quitting")
	}
	if m.SavedRunID() == "" {
		t.Fatal("run was not saved")
	}

	run, err := store.RunByID(m.SavedRunID())
	if err != nil {
		t.Fatal(err)
	}
	if run.SceneID != "drop" || run.Ticks != 3 || run.Source != "viewer" || !run.Interrupted {
		t.Errorf("saved run = %+v", run)
	}
	states, err := store.BodyStates(run.ID)
	if err != nil || len(states) != 2 {
		t.Errorf("BodyStates() = %v, %v, expected 2 states", states, err)
	}
}

func TestViewerBack(t *testing.T) {
	m := newViewer(t, dropScene, nil)
	m = send(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !m.BackToMenu() || m.IsQuitting() {
		t.Error("esc should return to the menu")
	}
}

func TestMenuSelect(t *testing.T) {
	m := NewMenuModel(core.RuntimeConfig{ScreenW: 80, ScreenH: 24})
	if len(m.items) < 2 {
		t.Fatalf("expected built-in scenes, got %d", len(m.items))
	}

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	next, cmd := next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	menu := next.(MenuModel)
	if cmd == nil {
		t.Error("selecting should end the menu")
	}
	if menu.Selected() == nil || menu.Selected().ID != m.items[1].ID {
		t.Errorf("Selected() = %v, expected %s", menu.Selected(), m.items[1].ID)
	}
	if r := menu.result(); r.SceneID != m.items[1].ID || r.Quit {
		t.Errorf("result() = %+v", r)
	}
	if !strings.Contains(m.View(), "L A Y E R S") {
		t.Error("View() missing title")
	}
}

func TestMenuRunsAndQuit(t *testing.T) {
	m := NewMenuModel(core.RuntimeConfig{ScreenW: 80, ScreenH: 24})

	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if r := next.(MenuModel).result(); !r.WantsRuns {
		t.Errorf("tab result = %+v, expected WantsRuns", r)
	}

	next, _ = m.Update(runeKey("q"))
	if r := next.(MenuModel).result(); !r.Quit {
		t.Errorf("q result = %+v, expected Quit", r)
	}
}

func TestRunboard(t *testing.T) {
	store, err := storage.Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	for _, id := range []string{"falling", "ramp", "falling"} {
		if _, err := store.SaveRun(storage.Run{SceneID: id, Ticks: 10}, nil); err != nil {
			t.Fatal(err)
		}
	}

	m := NewRunboardModel(store, 100, 30)
	if got := len(m.Runs()); got != 3 {
		t.Fatalf("all scenes lists %d runs, expected 3", got)
	}

	// Cycle to the "falling" entry.
	for m.currentScene() != "falling" {
		next, _ := m.Update(tea.KeyMsg{Type: tea.KeyTab})
		m = next.(RunboardModel)
	}
	if got := len(m.Runs()); got != 2 {
		t.Errorf("falling lists %d runs, expected 2", got)
	}

	next, _ := m.Update(runeKey("x"))
	m = next.(RunboardModel)
	if got := len(m.Runs()); got != 1 {
		t.Errorf("after delete %d runs, expected 1", got)
	}
	if !strings.Contains(m.View(), "RUN HISTORY - falling") {
		t.Error("View() missing title")
	}
}

func TestRunboardWithoutStore(t *testing.T) {
	m := NewRunboardModel(nil, 60, 20)
	if len(m.Runs()) != 0 {
		t.Error("expected no runs without a store")
	}
	if !strings.Contains(m.View(), "No runs recorded yet") {
		t.Error("View() should show the empty message")
	}
}

func TestSessionFlow(t *testing.T) {
	cfg := core.RuntimeConfig{ScreenW: 80, ScreenH: 24, TickRate: 60, Seed: 1}
	var m tea.Model = NewSessionModel(cfg, ViewerOptions{Config: config.Default(), Source: "ssh"})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if got := m.(SessionModel).screen; got != screenViewer {
		t.Fatalf("screen after enter = %v, expected viewer", got)
	}

	m, _ = m.Update(TickMsg{})
	if got := m.(SessionModel).viewer.State().Tick; got != 1 {
		t.Errorf("viewer tick = %d, expected 1", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if got := m.(SessionModel).screen; got != screenMenu {
		t.Errorf("screen after esc = %v, expected menu", got)
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	if got := m.(SessionModel).screen; got != screenRuns {
		t.Errorf("screen after tab = %v, expected runs", got)
	}

	m, cmd := m.Update(runeKey("q"))
	if !m.(SessionModel).quitting || cmd == nil {
		t.Error("q should end the session")
	}
}
