package session

// Phase is the lifecycle state of a session.
type Phase int

const (
	// PhaseIdle means no session has been started.
	PhaseIdle Phase = iota

	// PhaseLoading means an article fetch is in flight.
	PhaseLoading

	// PhasePlaying means an article is displayed and the player may navigate.
	PhasePlaying

	// PhaseWon is terminal until the next start.
	PhaseWon

	// PhaseError means the last fetch failed. The player may retry or cancel.
	PhaseError
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseLoading:
		return "loading"
	case PhasePlaying:
		return "playing"
	case PhaseWon:
		return "won"
	case PhaseError:
		return "error"
	default:
		return "idle"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

// Active reports whether the phase belongs to a running session.
func (p Phase) Active() bool {
	return p == PhaseLoading || p == PhasePlaying || p == PhaseError
}

// timing reports whether elapsed time accumulates in the phase.
func (p Phase) timing() bool {
	return p == PhaseLoading || p == PhasePlaying
}
