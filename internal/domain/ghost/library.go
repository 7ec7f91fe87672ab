package ghost

import (
	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
)

const (
	// DefaultSlots matches the 4x4 ghost grid of the rendering engine minus the live player.
	DefaultSlots = 15
	// DefaultMaxSamples caps a single take: two minutes at 30 frames per second.
	DefaultMaxSamples = 2 * 60 * 30
)

// Sample is one recorded frame of a take.
type Sample struct {
	// Landmarks are the recorded body points.
	Landmarks []pose.Landmark
	// Energy is the motion energy computed for the frame.
	Energy float64
}

// Frame is the sample a ghost plays on the current tick.
type Frame struct {
	Sample

	// PlayerID is the telemetry player id, always >= 1.
	PlayerID int
}

// replay is a committed take with its playback cursor.
type replay struct {
	// samples are the recorded frames.
	samples []Sample
	// cursor is the index of the next sample to play.
	cursor int
}

// Library holds the take being recorded and the committed ghosts.
// It is not safe for concurrent use.
type Library struct {
	// slots are the ghost positions, nil when empty.
	slots []*replay
	// recording is the take of the current session.
	recording []Sample
	// next is the slot the following commit writes to.
	next int
	// maxSamples caps the recording length.
	maxSamples int
}

// NewLibrary creates a library with the given number of ghost slots.
// Non-positive arguments fall back to the defaults.
func NewLibrary(slots, maxSamples int) *Library {
	if slots <= 0 {
		slots = DefaultSlots
	}

	if maxSamples <= 0 {
		maxSamples = DefaultMaxSamples
	}

	return &Library{
		slots:      make([]*replay, slots),
		maxSamples: maxSamples,
	}
}

// Record appends a live frame to the current take. Frames without a body
// are skipped and frames beyond the cap are dropped.
func (l *Library) Record(landmarks []pose.Landmark, energy float64) {
	if len(landmarks) == 0 || len(l.recording) >= l.maxSamples {
		return
	}

	l.recording = append(l.recording, Sample{
		Landmarks: pose.Clone(landmarks),
		Energy:    energy,
	})
}

// Recording returns the number of samples in the current take.
func (l *Library) Recording() int {
	return len(l.recording)
}

// Commit turns the current take into a ghost, replacing the oldest one when
// every slot is taken. It returns the player id of the new ghost, or 0 when
// the take was empty.
func (l *Library) Commit() int {
	if len(l.recording) == 0 {
		return 0
	}

	slot := l.next
	l.slots[slot] = &replay{samples: l.recording}
	l.recording = nil
	l.next = (l.next + 1) % len(l.slots)

	return slot + 1
}

// Discard drops the current take.
func (l *Library) Discard() {
	l.recording = nil
}

// Len returns the number of committed ghosts.
func (l *Library) Len() int {
	n := 0

	for _, r := range l.slots {
		if r != nil {
			n++
		}
	}

	return n
}

// Next advances every ghost by one sample and returns what each plays now.
// Playback loops at the end of a take.
func (l *Library) Next() []Frame {
	frames := make([]Frame, 0, len(l.slots))

	for i, r := range l.slots {
		if r == nil || len(r.samples) == 0 {
			continue
		}

		frames = append(frames, Frame{
			Sample:   r.samples[r.cursor],
			PlayerID: i + 1,
		})

		r.cursor = (r.cursor + 1) % len(r.samples)
	}

	return frames
}
