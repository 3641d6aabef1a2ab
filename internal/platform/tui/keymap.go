package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tui-layers/internal/core"
)

// ViewerKeyMap defines the key bindings of the scene viewer.
type ViewerKeyMap struct {
	Up        key.Binding
	Down      key.Binding
	Left      key.Binding
	Right     key.Binding
	Jump      key.Binding
	Shockwave key.Binding
	Spawn     key.Binding
	Slice     key.Binding
	LayerUp   key.Binding
	LayerDown key.Binding
	ZoomIn    key.Binding
	ZoomOut   key.Binding
	Pause     key.Binding
	Step      key.Binding
	Restart   key.Binding
	Back      key.Binding
	Quit      key.Binding
}

// ShortHelp returns key bindings for the short help view.
func (k ViewerKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Jump, k.Shockwave, k.Spawn, k.Slice, k.Pause, k.Back, k.Quit}
}

// FullHelp returns key bindings for the full help view.
func (k ViewerKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Left, k.Right, k.Jump},
		{k.Shockwave, k.Spawn, k.Restart},
		{k.Slice, k.LayerUp, k.LayerDown, k.ZoomIn, k.ZoomOut},
		{k.Pause, k.Step, k.Back, k.Quit},
	}
}

// DefaultViewerKeyMap returns default key bindings.
func DefaultViewerKeyMap() ViewerKeyMap {
	return ViewerKeyMap{
		Up:        key.NewBinding(key.WithKeys("w", "up"), key.WithHelp("wasd", "push")),
		Down:      key.NewBinding(key.WithKeys("s", "down"), key.WithHelp("s/down", "push down")),
		Left:      key.NewBinding(key.WithKeys("a", "left"), key.WithHelp("a/left", "push left")),
		Right:     key.NewBinding(key.WithKeys("d", "right"), key.WithHelp("d/right", "push right")),
		Jump:      key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "jump")),
		Shockwave: key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "shockwave")),
		Spawn:     key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "spawn")),
		Slice:     key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "slice")),
		LayerUp:   key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "slice up")),
		LayerDown: key.NewBinding(key.WithKeys("["), key.WithHelp("[", "slice down")),
		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "zoom in")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "zoom out")),
		Pause:     key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pause")),
		Step:      key.NewBinding(key.WithKeys("."), key.WithHelp(".", "step")),
		Restart:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "restart")),
		Back:      key.NewBinding(key.WithKeys("esc", "b"), key.WithHelp("esc/b", "back")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// KeyMapper translates Bubble Tea key messages to viewer actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct {
	Keys     ViewerKeyMap
	bindings []actionBinding
}

type actionBinding struct {
	binding *key.Binding
	action  core.Action
}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	km := &KeyMapper{Keys: DefaultViewerKeyMap()}
	k := &km.Keys
	km.bindings = []actionBinding{
		{&k.Quit, core.ActionQuit},
		{&k.Up, core.ActionUp},
		{&k.Down, core.ActionDown},
		{&k.Left, core.ActionLeft},
		{&k.Right, core.ActionRight},
		{&k.Jump, core.ActionJump},
		{&k.Shockwave, core.ActionShockwave},
		{&k.Spawn, core.ActionSpawn},
		{&k.Slice, core.ActionSlice},
		{&k.LayerUp, core.ActionLayerUp},
		{&k.LayerDown, core.ActionLayerDown},
		{&k.ZoomIn, core.ActionZoomIn},
		{&k.ZoomOut, core.ActionZoomOut},
		{&k.Pause, core.ActionPause},
		{&k.Step, core.ActionStep},
		{&k.Restart, core.ActionRestart},
		{&k.Back, core.ActionBack},
	}
	return km
}

// MapKey translates a key message to a viewer action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	for _, b := range km.bindings {
		if key.Matches(msg, *b.binding) {
			return b.action, b.action == core.ActionQuit
		}
	}
	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionRuns
	MenuActionQuit
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionRuns
	}
	return MenuActionNone
}
