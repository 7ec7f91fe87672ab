package pose

import "time"

// Landmark is a single tracked body point in normalized sensor coordinates.
type Landmark struct {
	// X is the horizontal coordinate.
	X float64 `json:"x"`
	// Y is the vertical coordinate.
	Y float64 `json:"y"`
	// Z is the depth relative to the hips.
	Z float64 `json:"z"`
	// Visibility is the detector confidence in [0,1].
	Visibility float64 `json:"v"`
}

// Values returns the landmark as an ordered 4-tuple.
func (l Landmark) Values() [4]float64 {
	return [4]float64{l.X, l.Y, l.Z, l.Visibility}
}

// Frame is one sensor snapshot. Nil Landmarks means no body was detected.
type Frame struct {
	// Landmarks holds the tracked points in detector order.
	Landmarks []Landmark
	// Sequence increases by one for every frame accepted by a source.
	Sequence uint64
	// ReceivedAt is when the source accepted the frame.
	ReceivedAt time.Time
}

// Detected reports whether the frame carries a body.
func (f Frame) Detected() bool {
	return len(f.Landmarks) > 0
}

// Present reports whether the body in the frame is visible enough to count as
// a live experiencer: the mean visibility of the tracked joints must reach
// threshold.
func (f Frame) Present(threshold float64) bool {
	if !f.Detected() {
		return false
	}

	var (
		sum   float64
		count int
	)

	for _, i := range trackedJoints {
		if i >= len(f.Landmarks) {
			continue
		}

		sum += f.Landmarks[i].Visibility
		count++
	}

	if count == 0 {
		return false
	}

	return sum/float64(count) >= threshold
}

// Clone returns a deep copy of the landmark slice.
func Clone(landmarks []Landmark) []Landmark {
	if landmarks == nil {
		return nil
	}

	cloned := make([]Landmark, len(landmarks))
	copy(cloned, landmarks)

	return cloned
}
