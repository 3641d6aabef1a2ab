package core

// Action represents a semantic viewer action, abstracted from physical key
// presses.
type Action int

const (
	ActionNone      Action = iota
	ActionUp               // W, Up arrow - push player up (-Y)
	ActionDown             // S, Down arrow - push player down (+Y)
	ActionLeft             // A, Left arrow
	ActionRight            // D, Right arrow
	ActionJump             // Space - vertical impulse
	ActionShockwave        // X - knock nearby bodies away from the player
	ActionSpawn            // N - drop a crate above the player
	ActionLayerUp          // ] - raise the slice height
	ActionLayerDown        // [ - lower the slice height
	ActionSlice            // L - toggle layer-slice mode
	ActionZoomIn           // +
	ActionZoomOut          // -
	ActionBack             // Esc, B - back to menu
	ActionRestart          // R - rebuild the scene
	ActionQuit             // Q, Ctrl+C
	ActionPause            // P
	ActionStep             // . - advance one tick while paused
)

var actionNames = map[Action]string{
	ActionNone:      "None",
	ActionUp:        "Up",
	ActionDown:      "Down",
	ActionLeft:      "Left",
	ActionRight:     "Right",
	ActionJump:      "Jump",
	ActionShockwave: "Shockwave",
	ActionSpawn:     "Spawn",
	ActionLayerUp:   "LayerUp",
	ActionLayerDown: "LayerDown",
	ActionSlice:     "Slice",
	ActionZoomIn:    "ZoomIn",
	ActionZoomOut:   "ZoomOut",
	ActionBack:      "Back",
	ActionRestart:   "Restart",
	ActionQuit:      "Quit",
	ActionPause:     "Pause",
	ActionStep:      "Step",
}

// String returns a human-readable name for the action.
func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "Unknown"
}

// InputFrame is the set of actions triggered during one tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{Actions: make(map[Action]bool)}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	return f.Actions[a]
}

// Empty reports whether no action was triggered.
func (f InputFrame) Empty() bool {
	return len(f.Actions) == 0
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	clear(f.Actions)
}
