package session

import "time"

// Status is an immutable snapshot of the bridge after one tick, shared with
// the operator control service and the debug monitor.
type Status struct {
	// UpdatedAt is when the tick that produced the snapshot ran.
	UpdatedAt time.Time `json:"updated_at"`
	// Phase is the phase name.
	Phase string `json:"phase"`
	// Progress is the fraction of the phase elapsed.
	Progress float64 `json:"progress"`
	// Elapsed is the time spent in the phase.
	Elapsed time.Duration `json:"elapsed"`
	// Energy is the live experiencer's motion energy.
	Energy float64 `json:"energy"`
	// Tick counts loop iterations since start.
	Tick uint64 `json:"tick"`
	// Ghosts is the number of replayable ghosts.
	Ghosts int `json:"ghosts"`
	// Recording is the number of samples in the current take.
	Recording int `json:"recording"`
	// BodyDetected reports whether the last frame carried a body.
	BodyDetected bool `json:"body_detected"`
	// Debug reports whether debug mode is on.
	Debug bool `json:"debug"`
}
