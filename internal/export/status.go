package export

// Status is the lifecycle of one export as seen by its caller:
// idle -> generating -> done | failed. A finished export may be started again.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusGenerating Status = "generating"
	StatusDone       Status = "done"
	StatusFailed     Status = "failed"
)

// CanTransition reports whether moving from s to next is allowed. The zero
// value behaves as idle.
func (s Status) CanTransition(next Status) bool {
	switch s {
	case "", StatusIdle, StatusDone, StatusFailed:
		return next == StatusGenerating
	case StatusGenerating:
		return next == StatusDone || next == StatusFailed
	default:
		return false
	}
}

// Finished reports whether s is a terminal state of a single run.
func (s Status) Finished() bool {
	return s == StatusDone || s == StatusFailed
}
