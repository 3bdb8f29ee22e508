package core

// Action represents a semantic player action, abstracted from physical key presses.
// Front ends map their input to actions and drive a match from them.
type Action int

const (
	ActionNone       Action = iota
	ActionLeft              // A, Left arrow - move cursor left
	ActionRight             // D, Right arrow - move cursor right
	ActionUp                // W, Up arrow - move cursor up
	ActionDown              // S, Down arrow - move cursor down
	ActionPlace             // Enter, X - place the current piece at the cursor
	ActionRotate            // E - rotate clockwise
	ActionRotateBack        // Q - rotate anticlockwise
	ActionSwap              // Space, R - swap current and following
	ActionRestart           // N - new match after game over
	ActionHelp              // ? - toggle full help
	ActionQuit              // Esc, Ctrl+C - leave the match
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionPlace:
		return "Place"
	case ActionRotate:
		return "Rotate"
	case ActionRotateBack:
		return "RotateBack"
	case ActionSwap:
		return "Swap"
	case ActionRestart:
		return "Restart"
	case ActionHelp:
		return "Help"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Delta returns the cursor movement for a directional action.
func (a Action) Delta() (dx, dy int) {
	switch a {
	case ActionLeft:
		return -1, 0
	case ActionRight:
		return 1, 0
	case ActionUp:
		return 0, -1
	case ActionDown:
		return 0, 1
	}
	return 0, 0
}

// IsMove reports whether the action moves the cursor.
func (a Action) IsMove() bool {
	dx, dy := a.Delta()
	return dx != 0 || dy != 0
}
