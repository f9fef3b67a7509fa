package pipeline

// State is the position of the orchestrator in a request cycle.
type State int

const (
	Idle State = iota
	Resolving
	Fetching
	Done
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Resolving:
		return "resolving"
	case Fetching:
		return "fetching"
	case Done:
		return "done"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Transition is emitted every time the orchestrator changes state.
type Transition struct {
	RequestID string
	From      State
	To        State
}
