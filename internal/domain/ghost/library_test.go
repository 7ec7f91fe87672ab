package ghost

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
)

func point(x float64) []pose.Landmark {
	return []pose.Landmark{{X: x, Visibility: 1}}
}

// TestLibrary_RecordCommitReplay records a take and loops it back.
func TestLibrary_RecordCommitReplay(t *testing.T) {
	t.Parallel()

	l := NewLibrary(2, 10)
	require.Empty(t, l.Next())
	require.Zero(t, l.Commit())

	l.Record(point(1), 0.1)
	l.Record(nil, 0)
	l.Record(point(2), 0.2)
	require.Equal(t, 2, l.Recording())

	require.Equal(t, 1, l.Commit())
	require.Equal(t, 1, l.Len())
	require.Zero(t, l.Recording())

	var xs []float64

	for range 3 {
		frames := l.Next()
		require.Len(t, frames, 1)
		require.Equal(t, 1, frames[0].PlayerID)
		xs = append(xs, frames[0].Landmarks[0].X)
	}

	require.Equal(t, []float64{1, 2, 1}, xs)
}

// TestLibrary_EvictsOldestSlot checks that commits reuse slots round robin.
func TestLibrary_EvictsOldestSlot(t *testing.T) {
	t.Parallel()

	l := NewLibrary(2, 10)

	for i := range 3 {
		l.Record(point(float64(i)), 0)
		l.Commit()
	}

	require.Equal(t, 2, l.Len())

	frames := l.Next()
	require.Len(t, frames, 2)
	require.Equal(t, 1, frames[0].PlayerID)
	require.InDelta(t, 2.0, frames[0].Landmarks[0].X, 1e-9)
	require.Equal(t, 2, frames[1].PlayerID)
	require.InDelta(t, 1.0, frames[1].Landmarks[0].X, 1e-9)
}

// TestLibrary_CapAndDiscard verifies the sample cap and that Discard drops the take.
func TestLibrary_CapAndDiscard(t *testing.T) {
	t.Parallel()

	l := NewLibrary(0, 2)

	landmarks := point(1)
	l.Record(landmarks, 0)
	l.Record(point(2), 0)
	l.Record(point(3), 0)
	require.Equal(t, 2, l.Recording())

	// Recorded landmarks are copies.
	landmarks[0].X = 99
	l.Discard()
	require.Zero(t, l.Recording())
	require.Zero(t, l.Commit())
	require.Len(t, l.slots, DefaultSlots)
}
