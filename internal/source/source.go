package source

import (
	"sync"
	"time"

	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
)

// Source yields the newest sensor frame without blocking. The boolean result
// reports whether the frame arrived after the previous call.
type Source interface {
	Latest() (pose.Frame, bool)
}

// latest is a single-slot frame buffer shared by the sources.
type latest struct {
	// frame is the newest accepted frame.
	frame pose.Frame
	// read is the sequence of the frame returned by the last Latest call.
	read uint64
	// mu guards frame and read.
	mu sync.Mutex
}

// store replaces the buffered frame and assigns it the next sequence number.
func (l *latest) store(landmarks []pose.Landmark, at time.Time) uint64 {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.frame = pose.Frame{
		Landmarks:  landmarks,
		Sequence:   l.frame.Sequence + 1,
		ReceivedAt: at,
	}

	return l.frame.Sequence
}

// Latest implements Source.
func (l *latest) Latest() (pose.Frame, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fresh := l.frame.Sequence > l.read
	l.read = l.frame.Sequence

	return l.frame, fresh
}

// Static is an in-process source fed by Push. It serves tests and dry runs.
type Static struct {
	latest
}

// NewStatic returns an empty static source.
func NewStatic() *Static {
	return new(Static)
}

// Push makes landmarks the newest frame. Nil landmarks mean no body.
func (s *Static) Push(landmarks []pose.Landmark) {
	s.store(landmarks, time.Now())
}
