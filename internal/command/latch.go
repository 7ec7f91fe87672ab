package command

import "sync/atomic"

// Command is an operator command token.
type Command string

// Known command tokens.
const (
	Quit      Command = "quit"
	Restart   Command = "restart"
	Debug     Command = "debug"
	Save      Command = "save"
	ForceSend Command = "force_send"
)

// Parse maps a token to a Command. Unknown tokens return false.
func Parse(token string) (Command, bool) {
	switch cmd := Command(token); cmd {
	case Quit, Restart, Debug, Save, ForceSend:
		return cmd, true
	default:
		return "", false
	}
}

// Latches is the set of pending commands shared between receivers and the
// tick loop. Any number of receivers may set a latch; each latch must have a
// single consumer calling its Check method.
type Latches struct {
	quit        atomic.Bool
	restart     atomic.Bool
	debugToggle atomic.Bool
	save        atomic.Bool
	forceSend   atomic.Bool
}

// Set raises the latch for cmd. Setting an already raised latch is a no-op,
// so repeated commands before a drain collapse into one.
func (l *Latches) Set(cmd Command) bool {
	switch cmd {
	case Quit:
		l.quit.Store(true)
	case Restart:
		l.restart.Store(true)
	case Debug:
		l.debugToggle.Store(true)
	case Save:
		l.save.Store(true)
	case ForceSend:
		l.forceSend.Store(true)
	default:
		return false
	}

	return true
}

// CheckQuit reports and clears a pending quit.
func (l *Latches) CheckQuit() bool {
	return l.quit.CompareAndSwap(true, false)
}

// CheckRestart reports and clears a pending restart.
func (l *Latches) CheckRestart() bool {
	return l.restart.CompareAndSwap(true, false)
}

// CheckDebugToggle reports and clears a pending debug toggle.
func (l *Latches) CheckDebugToggle() bool {
	return l.debugToggle.CompareAndSwap(true, false)
}

// CheckSave reports and clears a pending save.
func (l *Latches) CheckSave() bool {
	return l.save.CompareAndSwap(true, false)
}

// CheckForceSend reports and clears a pending parameter resend.
func (l *Latches) CheckForceSend() bool {
	return l.forceSend.CompareAndSwap(true, false)
}
