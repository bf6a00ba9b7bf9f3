package conversation

// State is a step of processing one user message
type State int

const (
	AwaitingUser State = iota
	ModelRequested
	ToolPending
	ModelRequested2
	Done
)

func (s State) String() string {
	switch s {
	case AwaitingUser:
		return "awaiting_user"
	case ModelRequested:
		return "model_requested"
	case ToolPending:
		return "tool_pending"
	case ModelRequested2:
		return "model_requested_2"
	case Done:
		return "done"
	default:
		return "unknown"
	}
}

// validTransition reports whether from → to is a legal transition. There are no
// cycles: a message reaches Done after at most one tool round-trip.
func validTransition(from, to State) bool {
	switch from {
	case AwaitingUser:
		return to == ModelRequested
	case ModelRequested:
		return to == Done || to == ToolPending
	case ToolPending:
		return to == ModelRequested2
	case ModelRequested2:
		return to == Done
	default:
		return false
	}
}
