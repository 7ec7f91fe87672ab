package pose

import "math"

// Joint indices in the 33-point body topology.
const (
	LeftShoulder  = 11
	RightShoulder = 12
	LeftWrist     = 15
	RightWrist    = 16
	LeftHip       = 23
	RightHip      = 24
	LeftAnkle     = 27
	RightAnkle    = 28
)

// trackedJoints are the joints whose displacement makes up motion energy.
//
//nolint:gochecknoglobals // Fixed topology table.
var trackedJoints = [...]int{
	LeftShoulder, RightShoulder,
	LeftWrist, RightWrist,
	LeftHip, RightHip,
	LeftAnkle, RightAnkle,
}

// Energy sums the 3D displacement of the tracked joints between two frames.
// It returns 0 when either frame is empty and skips joints missing from
// either side. The sum is not normalized.
func Energy(current, previous []Landmark) float64 {
	if len(current) == 0 || len(previous) == 0 {
		return 0
	}

	var energy float64

	for _, i := range trackedJoints {
		if i >= len(current) || i >= len(previous) {
			continue
		}

		c, p := current[i], previous[i]
		energy += math.Sqrt((c.X-p.X)*(c.X-p.X) + (c.Y-p.Y)*(c.Y-p.Y) + (c.Z-p.Z)*(c.Z-p.Z))
	}

	return energy
}
