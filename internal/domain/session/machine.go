package session

import (
	"time"
)

const (
	// DefaultDuration is the length of the POSSESSED phase, one playthrough of the track.
	DefaultDuration = 68 * time.Second
	// CooldownDuration is how long COOLDOWN lasts before the machine resets.
	CooldownDuration = 5 * time.Second
)

// Event names a lifecycle transition passed to a Notifier.
type Event string

const (
	// EventStarted fires when a session enters POSSESSED.
	EventStarted Event = "started"
	// EventFinished fires when a session enters COOLDOWN.
	EventFinished Event = "finished"
	// EventExpired fires when POSSESSED ran out of time, right before EventFinished.
	EventExpired Event = "expired"
	// EventReset fires when the machine returns to IDLE.
	EventReset Event = "reset"
)

// Notifier receives lifecycle notices. It is called synchronously.
type Notifier func(event Event, phase Phase)

// Option configures a Machine.
type Option func(*Machine)

// WithClock replaces the system clock.
func WithClock(clock Clock) Option {
	return func(m *Machine) {
		if clock != nil {
			m.clock = clock
		}
	}
}

// WithDuration sets the POSSESSED duration. Non-positive values are ignored.
func WithDuration(d time.Duration) Option {
	return func(m *Machine) {
		if d > 0 {
			m.duration = d
		}
	}
}

// WithNotifier registers a lifecycle callback.
func WithNotifier(n Notifier) Option {
	return func(m *Machine) {
		m.notify = n
	}
}

// Machine owns the current phase and the clock reading captured at phase entry.
// It is not safe for concurrent use; the tick loop is its only caller.
type Machine struct {
	// clock supplies timestamps for elapsed computation.
	clock Clock
	// notify receives lifecycle notices, may be nil.
	notify Notifier
	// startedAt is the clock reading at the last phase entry.
	startedAt time.Time
	// duration is the POSSESSED length.
	duration time.Duration
	// phase is the active phase.
	phase Phase
	// running is set by Start and cleared by Reset.
	running bool
}

// NewMachine returns a Machine in IDLE.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		clock:    SystemClock,
		duration: DefaultDuration,
		phase:    Idle,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// Phase returns the active phase.
func (m *Machine) Phase() Phase {
	return m.phase
}

// Running reports whether a session has been started and not yet reset.
func (m *Machine) Running() bool {
	return m.running
}

// Duration returns the configured POSSESSED length.
func (m *Machine) Duration() time.Duration {
	return m.duration
}

// Start enters POSSESSED and restarts the clock. Callers only start from IDLE.
func (m *Machine) Start() {
	m.startedAt = m.clock.Now()
	m.running = true
	m.phase = Possessed
	m.emit(EventStarted)
}

// ForceFinish enters COOLDOWN from POSSESSED. In IDLE or COOLDOWN it does nothing.
func (m *Machine) ForceFinish() {
	if m.phase != Possessed {
		return
	}

	m.phase = Cooldown
	m.startedAt = m.clock.Now()
	m.emit(EventFinished)
}

// Reset returns to IDLE unconditionally.
func (m *Machine) Reset() {
	m.running = false
	m.phase = Idle
	m.emit(EventReset)
}

// Update advances the machine and returns the phase with the time spent in it.
// A tick that crosses a phase boundary reports the new phase with zero elapsed.
// Session expiry uses >= while cooldown expiry uses >.
func (m *Machine) Update() (Phase, time.Duration) {
	if m.phase == Idle {
		return Idle, 0
	}

	elapsed := m.clock.Now().Sub(m.startedAt)

	switch m.phase {
	case Possessed:
		if elapsed >= m.duration {
			m.emit(EventExpired)
			m.ForceFinish()

			return m.phase, 0
		}
	case Cooldown:
		if elapsed > CooldownDuration {
			m.Reset()

			return Idle, 0
		}
	case Idle:
	}

	return m.phase, elapsed
}

// Progress converts elapsed time in phase to a fraction of the phase length
// clamped to [0,1]. IDLE always reports 0.
func (m *Machine) Progress(phase Phase, elapsed time.Duration) float64 {
	var total time.Duration

	switch phase {
	case Possessed:
		total = m.duration
	case Cooldown:
		total = CooldownDuration
	case Idle:
		return 0
	}

	if total <= 0 || elapsed <= 0 {
		return 0
	}

	return min(float64(elapsed)/float64(total), 1)
}

// emit forwards a lifecycle notice to the notifier if one is registered.
func (m *Machine) emit(event Event) {
	if m.notify != nil {
		m.notify(event, m.phase)
	}
}
