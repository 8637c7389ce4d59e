// Package game runs the terminal hub: it turns key presses into manager
// commands and redraws after every change.
package game

// State is the input mode of the hub.
type State int

const (
	// StateMenu reads a numbered action from the main menu.
	StateMenu State = iota
	// StatePickRole reads which staff role to hire.
	StatePickRole
	// StatePickFighter reads which roster fighter to train.
	StatePickFighter
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateMenu:
		return "menu"
	case StatePickRole:
		return "pick-role"
	case StatePickFighter:
		return "pick-fighter"
	default:
		return "unknown"
	}
}
