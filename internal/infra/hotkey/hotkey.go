// Package hotkey binds global keyboard shortcuts and dispatches presses to
// the dictation controller.
package hotkey

// Action identifies which binding fired.
type Action int

const (
	ActionToggle Action = iota + 1
	ActionCancel
)

func (a Action) String() string {
	switch a {
	case ActionToggle:
		return "toggle"
	case ActionCancel:
		return "cancel"
	default:
		return "unknown"
	}
}
