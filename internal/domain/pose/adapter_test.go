package pose

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// detectorPoint mimics a detector result type exposing getters.
type detectorPoint struct {
	x, y, z, v float64
}

func (p detectorPoint) GetX() float64          { return p.x }
func (p detectorPoint) GetY() float64          { return p.y }
func (p detectorPoint) GetZ() float64          { return p.z }
func (p detectorPoint) GetVisibility() float64 { return p.v }

// TestAdapt_Shapes verifies each supported landmark shape resolves to the same value.
func TestAdapt_Shapes(t *testing.T) {
	t.Parallel()

	want := Landmark{X: 0.5, Y: 0.25, Z: -0.1, Visibility: 0.9}

	shapes := map[string]any{
		"landmark":     want,
		"pointer":      &want,
		"getters":      detectorPoint{0.5, 0.25, -0.1, 0.9},
		"float map":    map[string]float64{"x": 0.5, "y": 0.25, "z": -0.1, "v": 0.9},
		"any map":      map[string]any{"x": 0.5, "y": 0.25, "z": -0.1, "visibility": 0.9},
		"array":        [4]float64{0.5, 0.25, -0.1, 0.9},
		"slice":        []float64{0.5, 0.25, -0.1, 0.9, 42},
		"untyped list": []any{0.5, 0.25, -0.1, 0.9},
	}

	for name, shape := range shapes {
		got, ok := Adapt(shape)
		require.True(t, ok, name)
		require.Equal(t, want, got, name)
	}
}

// TestAdapt_Rejects verifies malformed entries are reported as unrecognised.
func TestAdapt_Rejects(t *testing.T) {
	t.Parallel()

	for _, entry := range []any{
		nil,
		"0.1,0.2",
		[]float64{1, 2, 3},
		[]any{1.0, "y", 3.0, 4.0},
		map[string]any{"x": 1.0, "y": 2.0},
		(*Landmark)(nil),
	} {
		_, ok := Adapt(entry)
		require.False(t, ok, "%#v", entry)
	}
}

// TestAdaptAll_SubstitutesZero checks bad entries become zero landmarks in place.
func TestAdaptAll_SubstitutesZero(t *testing.T) {
	t.Parallel()

	require.Nil(t, AdaptAll(nil))

	got := AdaptAll([]any{
		[]float64{1, 2, 3, 1},
		"garbage",
		map[string]float64{"x": 4, "y": 5, "z": 6, "v": 0.5},
	})

	require.Equal(t, []Landmark{
		{X: 1, Y: 2, Z: 3, Visibility: 1},
		{},
		{X: 4, Y: 5, Z: 6, Visibility: 0.5},
	}, got)
}
