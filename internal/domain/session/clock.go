package session

import "time"

// Clock supplies monotonic timestamps to the state machine.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function into the Clock interface.
type ClockFunc func() time.Time

// Now implements Clock for ClockFunc.
func (f ClockFunc) Now() time.Time {
	return f()
}

// SystemClock reads time.Now, which carries a monotonic reading.
//
//nolint:gochecknoglobals // Stateless default.
var SystemClock Clock = ClockFunc(time.Now)
