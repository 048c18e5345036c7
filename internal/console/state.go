package console

// State is the session's position in Idle → Submitting → Polling →
// {WaitingForInput, Completed, Failed}. Completed and Failed behave like Idle
// for new submissions; they only record how the last task ended.
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StatePolling
	StateWaitingForInput
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StatePolling:
		return "polling"
	case StateWaitingForInput:
		return "waiting_for_input"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Busy reports whether a task id is held (or being obtained), which blocks
// new submissions.
func (s State) Busy() bool {
	return s == StateSubmitting || s == StatePolling || s == StateWaitingForInput
}

// Polling reports whether status ticks are live.
func (s State) Polling() bool {
	return s == StatePolling || s == StateWaitingForInput
}
