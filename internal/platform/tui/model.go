package tui

import (
	"fmt"
	"io"
	"math"
	"math/rand/v2"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/go-gl/mathgl/mgl64"

	"github.com/vovakirdan/tui-layers/internal/config"
	"github.com/vovakirdan/tui-layers/internal/core"
	"github.com/vovakirdan/tui-layers/internal/physics"
	"github.com/vovakirdan/tui-layers/internal/scene"
	"github.com/vovakirdan/tui-layers/internal/storage"
)

// chromeRows is the number of rows below the canvas: status and help.
const chromeRows = 2

// spawnSize is the edge length of crates dropped by the spawn action.
const spawnSize = 6

// ViewerOptions configure a viewer session.
type ViewerOptions struct {
	Config config.Config
	Store  *storage.Store // may be nil
	Source string         // recorded with the run, e.g. "viewer" or "ssh"
	Logger *log.Logger    // simulator diagnostics, nil = discarded
}

// ViewerModel is the Bubble Tea model for watching and poking a scene.
type ViewerModel struct {
	scene  *scene.Scene
	world  *scene.World
	opts   ViewerOptions
	screen *core.Screen
	view   core.Viewport
	config core.RuntimeConfig
	keys   *KeyMapper
	help   help.Model
	rng    *rand.Rand

	inputFrame core.InputFrame
	state      core.SessionState
	slice      bool
	sliceZ     float64

	// run statistics since the last (re)start
	started       time.Time
	collisions    int
	peakContacts  int
	groundedTicks int
	savedRunID    string

	quitting   bool
	backToMenu bool
	err        error
}

// NewViewerModel builds a world from s and wraps it in a viewer.
func NewViewerModel(s *scene.Scene, cfg core.RuntimeConfig, opts ViewerOptions) (ViewerModel, error) {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	if opts.Source == "" {
		opts.Source = "viewer"
	}

	m := ViewerModel{
		scene:      s,
		opts:       opts,
		screen:     core.NewScreen(cfg.ScreenW, max(cfg.ScreenH-chromeRows, 1)),
		config:     cfg,
		keys:       NewKeyMapper(),
		help:       help.New(),
		rng:        rand.New(rand.NewPCG(uint64(cfg.Seed), 0)),
		inputFrame: core.NewInputFrame(),
	}
	m.help.Width = cfg.ScreenW
	if err := m.rebuild(); err != nil {
		return ViewerModel{}, err
	}
	return m, nil
}

// rebuild creates a fresh world from the scene and resets the camera.
func (m *ViewerModel) rebuild() error {
	w, err := m.scene.Build(m.opts.Config.Physics, physics.WithLogger(m.opts.Logger))
	if err != nil {
		return err
	}
	m.world = w

	center := w.Center()
	m.view = core.Viewport{
		CenterX:  center[0],
		CenterY:  center[1],
		CellSize: m.opts.Config.Viewer.CellSize,
		Width:    m.screen.Width(),
		Height:   m.screen.Height(),
	}
	lo, hi := w.DepthRange()
	m.sliceZ = (lo + hi) / 2

	m.state = core.SessionState{Bodies: len(w.Bodies)}
	m.started = time.Now()
	m.collisions, m.peakContacts, m.groundedTicks = 0, 0, 0
	m.savedRunID = ""
	return nil
}

// Init starts the tick loop.
func (m ViewerModel) Init() tea.Cmd {
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m ViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.config.ScreenW = msg.Width
		m.config.ScreenH = msg.Height
		m.screen.Resize(msg.Width, max(msg.Height-chromeRows, 1))
		m.view.Width, m.view.Height = m.screen.Width(), m.screen.Height()
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		return m.handleTick()
	}
	return m, nil
}

// handleKey applies view actions at once and queues body actions for the
// next tick.
func (m ViewerModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	action, isQuit := m.keys.MapKey(msg)
	if isQuit {
		m.quitting = true
		m.saveRun()
		return m, tea.Quit
	}
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	switch action {
	case core.ActionBack:
		m.backToMenu = true
		m.saveRun()
	case core.ActionPause:
		m.state.Paused = !m.state.Paused
	case core.ActionStep:
		if m.state.Paused {
			m.step()
		}
	case core.ActionRestart:
		m.saveRun()
		if err := m.rebuild(); err != nil {
			m.err = err
		}
	case core.ActionSlice:
		m.slice = !m.slice
	case core.ActionLayerUp:
		m.moveSlice(1)
	case core.ActionLayerDown:
		m.moveSlice(-1)
	case core.ActionZoomIn:
		m.view.Zoom(0.5)
	case core.ActionZoomOut:
		m.view.Zoom(2)
	case core.ActionNone:
	default:
		m.inputFrame.Set(action)
	}
	return m, nil
}

func (m *ViewerModel) moveSlice(dir float64) {
	lo, hi := m.world.DepthRange()
	m.sliceZ = core.ClampF(m.sliceZ+dir, lo, hi)
}

// handleTick processes simulation ticks.
func (m ViewerModel) handleTick() (tea.Model, tea.Cmd) {
	if m.quitting || m.backToMenu {
		return m, nil
	}
	if !m.state.Paused {
		m.step()
	}
	return m, tickCmd(m.config.TickRate)
}

// step applies pending input, advances the world one tick and refreshes the
// statistics.
func (m *ViewerModel) step() {
	m.applyInput()
	m.inputFrame.Clear()

	if every := m.opts.Config.Viewer.SpawnEvery; every > 0 && m.world.Sim.Tick()%uint64(every) == 0 {
		m.spawn()
	}

	m.world.Sim.Update()

	contacts := 0
	for _, b := range m.world.Sim.Bodies() {
		contacts += len(b.Collisions())
	}
	contacts /= 2
	m.collisions += contacts
	m.peakContacts = max(m.peakContacts, contacts)
	if p := m.world.Player; p != nil && m.world.Sim.IsGrounded(p) {
		m.groundedTicks++
	}

	m.state.Tick = m.world.Sim.Tick()
	m.state.Bodies = len(m.world.Bodies)
	m.state.Collisions = contacts

	if p := m.world.Player; p != nil {
		m.view.CenterX, m.view.CenterY = p.Position()[0], p.Position()[1]
	}
}

func (m *ViewerModel) applyInput() {
	if m.inputFrame.Has(core.ActionSpawn) {
		m.spawn()
	}

	p := m.world.Player
	if p == nil {
		return
	}
	v := m.opts.Config.Viewer

	var push mgl64.Vec3
	if m.inputFrame.Has(core.ActionUp) {
		push[1]--
	}
	if m.inputFrame.Has(core.ActionDown) {
		push[1]++
	}
	if m.inputFrame.Has(core.ActionLeft) {
		push[0]--
	}
	if m.inputFrame.Has(core.ActionRight) {
		push[0]++
	}
	if push != (mgl64.Vec3{}) {
		p.AddForce(push.Normalize().Mul(v.PushSpeed))
	}

	if m.inputFrame.Has(core.ActionJump) && m.world.Sim.IsGrounded(p) {
		p.AddForce(mgl64.Vec3{0, 0, v.JumpSpeed})
	}
	if m.inputFrame.Has(core.ActionShockwave) {
		m.shockwave()
	}
}

// shockwave knocks every dynamic body within the configured radius away from
// the player. Returns how many bodies were hit.
func (m *ViewerModel) shockwave() int {
	p := m.world.Player
	if p == nil {
		return 0
	}
	v := m.opts.Config.Viewer
	origin := p.Position()

	hit := 0
	for _, b := range m.world.Sim.Bodies() {
		if b == p || b.IsStatic {
			continue
		}
		d := b.Position().Sub(origin)
		dist := d.Len()
		if dist == 0 || dist > v.ShockwaveRadius {
			continue
		}
		// A slight lift keeps bodies from grinding along the ground.
		dir := mgl64.Vec3{0, 0, 1}
		if d[0] != 0 || d[1] != 0 {
			dir = mgl64.Vec3{d[0], d[1], 0}.Normalize().Add(mgl64.Vec3{0, 0, 0.5})
		}
		falloff := 1 - dist/v.ShockwaveRadius
		m.world.Sim.Knockback(b, dir, v.ShockwaveMagnitude*falloff)
		hit++
	}
	return hit
}

// spawn drops a crate above the player, or above the view centre when the
// scene has no player.
func (m *ViewerModel) spawn() *physics.Body {
	_, hi := m.world.DepthRange()
	x, y := m.view.CenterX, m.view.CenterY
	if p := m.world.Player; p != nil {
		x, y = p.Position()[0], p.Position()[1]
	}
	jitter := func() float64 { return (m.rng.Float64()*2 - 1) * spawnSize }
	pos := mgl64.Vec3{x + jitter(), y + jitter(), math.Max(hi, 0) + 3*spawnSize}
	return m.world.Spawn(pos, spawnSize)
}

// saveRun records the current run once. Errors are kept for the status line.
func (m *ViewerModel) saveRun() {
	if m.opts.Store == nil || m.savedRunID != "" || m.world.Sim.Tick() == 0 {
		return
	}
	snap := m.world.Sim.Snapshot()
	run := storage.Run{
		SceneID:       m.scene.ID,
		Ticks:         snap.Tick,
		Collisions:    m.collisions,
		PeakContacts:  m.peakContacts,
		GroundedTicks: m.groundedTicks,
		Elapsed:       time.Since(m.started),
		Interrupted:   m.scene.Ticks > 0 && snap.Tick < uint64(m.scene.Ticks),
		FinalHash:     snap.Hash(),
		Source:        m.opts.Source,
	}
	id, err := m.opts.Store.SaveRun(run, snap.Bodies)
	if err != nil {
		m.err = err
		return
	}
	m.savedRunID = id
}

// saveScreenshot saves the current canvas to a text file.
func (m *ViewerModel) saveScreenshot() {
	m.render()

	dir := filepath.Join(config.UserDir(), "screenshots")
	//nolint:errcheck // Best-effort directory creation
	os.MkdirAll(dir, 0o755)

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.scene.ID, timestamp))
	//nolint:errcheck // Best-effort save, the viewer continues regardless
	os.WriteFile(path, []byte(m.screen.String()), 0o600)
}

func (m *ViewerModel) render() {
	DrawWorld(m.screen, m.world, m.view, DrawOptions{Slice: m.slice, SliceZ: m.sliceZ})
}

// statusLine summarizes the session for the bar below the canvas.
func (m ViewerModel) statusLine() string {
	line := ""
	if m.state.Paused {
		line = " PAUSED |"
	}
	line += fmt.Sprintf(" %s | tick %d | bodies %d | contacts %d | zoom %.2f",
		m.scene.ID, m.state.Tick, m.state.Bodies, m.state.Collisions, m.view.CellSize)
	if p := m.world.Player; p != nil {
		pos := p.Position()
		line += fmt.Sprintf(" | player %.1f,%.1f,%.1f", pos[0], pos[1], pos[2])
		if m.world.Sim.IsGrounded(p) {
			line += " grounded"
		}
	}
	if m.slice {
		line += fmt.Sprintf(" | slice z=%.1f", m.sliceZ)
	}
	if m.err != nil {
		line += " | error: " + m.err.Error()
	}
	return line
}

// View renders the canvas, status bar and help line.
func (m ViewerModel) View() string {
	if m.quitting {
		return ""
	}
	m.render()
	return RenderScreen(m.screen) + "\n" +
		renderStatus(m.statusLine(), m.config.ScreenW, m.state.Paused) + "\n" +
		helpStyle.Render(m.help.View(m.keys.Keys))
}

// State returns the status data of the session.
func (m ViewerModel) State() core.SessionState { return m.state }

// World returns the running world.
func (m ViewerModel) World() *scene.World { return m.world }

// SavedRunID returns the ID of the recorded run, or "".
func (m ViewerModel) SavedRunID() string { return m.savedRunID }

// IsQuitting returns true if user requested to quit entirely.
func (m ViewerModel) IsQuitting() bool { return m.quitting }

// BackToMenu returns true if user requested to go back to menu.
func (m ViewerModel) BackToMenu() bool { return m.backToMenu }

// Run opens the viewer for s in the alternate screen and blocks until the
// user leaves. The returned model reports how it was left.
func Run(s *scene.Scene, cfg core.RuntimeConfig, opts ViewerOptions) (ViewerModel, error) {
	model, err := NewViewerModel(s, cfg, opts)
	if err != nil {
		return ViewerModel{}, err
	}

	p := tea.NewProgram(model, tea.WithAltScreen())
	final, err := p.Run()
	if err != nil {
		return model, err
	}
	if vm, ok := final.(ViewerModel); ok {
		return vm, nil
	}
	return model, nil
}
