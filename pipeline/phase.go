package pipeline

// Phase names a point in the processing of a message where hooks run.
type Phase string

// The phases a message goes through, in order.
const (
	// PhaseData runs when the message data starts arriving. Only the
	// envelope is known at this point.
	PhaseData Phase = "data"

	// PhaseDataPost runs once the whole message has been received and parsed,
	// before anything decides what to do with it.
	PhaseDataPost Phase = "data_post"

	// PhaseQueue runs last, when the message is handed on.
	PhaseQueue Phase = "queue"
)

// Phases lists every phase in the order they run.
var Phases = []Phase{PhaseData, PhaseDataPost, PhaseQueue}

// String returns the name of the phase.
func (p Phase) String() string {
	return string(p)
}

// Result is the completion signal a hook returns to the pipeline.
type Result int

// These are the results a hook may return.
const (
	// Continue passes control to the next hook in the phase.
	Continue Result = iota

	// OK accepts the message for this phase. No further hooks in the
	// phase run, but processing moves on to the next phase.
	OK

	// Deny rejects the message permanently.
	Deny

	// DenySoft rejects the message temporarily. The sender may try again.
	DenySoft
)

// String returns the conventional name of the result.
func (r Result) String() string {
	switch r {
	case Continue:
		return "CONTINUE"
	case OK:
		return "OK"
	case Deny:
		return "DENY"
	case DenySoft:
		return "DENYSOFT"
	default:
		return "UNKNOWN"
	}
}

// Rejected returns true for results that stop processing of the message.
func (r Result) Rejected() bool {
	return r == Deny || r == DenySoft
}
