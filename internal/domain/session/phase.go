package session

// Phase is a stage of the experience lifecycle.
type Phase int

const (
	// Idle waits for an experiencer.
	Idle Phase = iota
	// Possessed runs the timed experience.
	Possessed
	// Cooldown holds the engine before it resets to Idle.
	Cooldown
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	switch p {
	case Idle:
		return "IDLE"
	case Possessed:
		return "POSSESSED"
	case Cooldown:
		return "COOLDOWN"
	default:
		return "UNKNOWN"
	}
}
