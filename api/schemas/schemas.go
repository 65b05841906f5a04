package schemas

import "fmt"

// WorkflowState is the stage a single task execution currently occupies.
// States advance strictly linearly; Failed is reachable from any state.
type WorkflowState int

const (
	StateIdle WorkflowState = iota
	StateAuthenticating
	StateNavigating
	StateSearching
	StateSelectingRecord
	StateUploading
	StateSaving
	StateDone
	StateFailed
)

var stateNames = map[WorkflowState]string{
	StateIdle:            "IDLE",
	StateAuthenticating:  "AUTHENTICATING",
	StateNavigating:      "NAVIGATING",
	StateSearching:       "SEARCHING",
	StateSelectingRecord: "SELECTING_RECORD",
	StateUploading:       "UPLOADING",
	StateSaving:          "SAVING",
	StateDone:            "DONE",
	StateFailed:          "FAILED",
}

func (s WorkflowState) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("WorkflowState(%d)", int(s))
}

// Terminal reports whether no further transition is possible.
func (s WorkflowState) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// Next returns the state that follows s on the success path.
// Terminal states return themselves.
func (s WorkflowState) Next() WorkflowState {
	if s.Terminal() {
		return s
	}
	return s + 1
}

// CanTransition validates a move between two states. Besides the linear
// successor, any non-terminal state may fail, and any state may restart at
// Authenticating after the session is reinitialized.
func CanTransition(from, to WorkflowState) bool {
	switch {
	case to == StateFailed:
		return !from.Terminal()
	case to == StateAuthenticating && from != StateIdle:
		return true
	default:
		return !from.Terminal() && from.Next() == to
	}
}
