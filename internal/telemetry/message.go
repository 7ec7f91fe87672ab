package telemetry

import (
	"github.com/hypebeast/go-osc/osc"

	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
)

// OSC addresses understood by the rendering engine.
const (
	AddressPose  = "/pose"
	AddressState = "/state"
	AddressParam = "/param"
)

// Message is an outbound telemetry message: Pose, State or Param.
type Message interface {
	// OSC encodes the message. Numbers are coerced to OSC float32,
	// except the player id which is an OSC int32.
	OSC() *osc.Message
}

// Pose carries one player's skeleton and motion energy.
type Pose struct {
	// Landmarks are the body points in detector order.
	Landmarks []pose.Landmark
	// PlayerID is 0 for the live experiencer and >= 1 for ghosts.
	PlayerID int
	// Energy is the motion energy of the frame.
	Energy float64
}

// OSC flattens the pose to [id, energy, x0, y0, z0, v0, x1, ...].
func (p Pose) OSC() *osc.Message {
	args := make([]any, 0, 2+4*len(p.Landmarks))
	args = append(args, int32(p.PlayerID), float32(p.Energy))

	for _, lm := range p.Landmarks {
		for _, v := range lm.Values() {
			args = append(args, float32(v))
		}
	}

	return osc.NewMessage(AddressPose, args...)
}

// State carries the lifecycle phase and its progress.
type State struct {
	// Phase is the phase name, e.g. POSSESSED.
	Phase string
	// Progress is the fraction of the phase elapsed, in [0,1].
	Progress float64
}

// OSC encodes the state as [phase, progress].
func (s State) OSC() *osc.Message {
	return osc.NewMessage(AddressState, s.Phase, float32(s.Progress))
}

// Param carries one named engine parameter.
type Param struct {
	// Name is the parameter name, e.g. swayAmount.
	Name string
	// Value is the parameter value.
	Value float64
}

// OSC encodes the parameter as [name, value].
func (p Param) OSC() *osc.Message {
	return osc.NewMessage(AddressParam, p.Name, float32(p.Value))
}
