package telemetry

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync/atomic"

	"github.com/hypebeast/go-osc/osc"

	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
)

// Sender transmits an OSC packet. *osc.Client satisfies it.
type Sender interface {
	Send(packet osc.Packet) error
}

// errAddressRequired is returned when no telemetry endpoint is given.
var errAddressRequired = errors.New("telemetry address must be provided")

// Publisher sends telemetry messages over a Sender.
// It is safe for concurrent use as long as the Sender is.
type Publisher struct {
	// sender delivers the encoded packets.
	sender Sender
	// closer releases the transport opened by Dial, nil otherwise.
	closer io.Closer
	// sent counts messages handed to the transport successfully.
	sent atomic.Uint64
	// failed counts messages the transport rejected.
	failed atomic.Uint64
}

// NewPublisher wraps an existing sender.
func NewPublisher(sender Sender) *Publisher {
	return &Publisher{sender: sender}
}

// Dial creates a publisher writing UDP datagrams to address (host:port)
// over a single connected socket. An empty host means the local system.
func Dial(address string) (*Publisher, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	udpAddr, err := net.ResolveUDPAddr("udp", address)
	if err != nil {
		return nil, fmt.Errorf("resolve telemetry address: %w", err)
	}

	conn, err := net.DialUDP("udp", nil, udpAddr)
	if err != nil {
		return nil, fmt.Errorf("dial telemetry address: %w", err)
	}

	p := NewPublisher(&udpSender{conn: conn})
	p.closer = conn

	return p, nil
}

// Close releases the socket opened by Dial.
func (p *Publisher) Close() error {
	if p.closer == nil {
		return nil
	}

	return p.closer.Close()
}

// udpSender writes encoded packets to a connected UDP socket.
type udpSender struct {
	// conn is the socket connected to the engine.
	conn *net.UDPConn
}

// Send implements Sender.
func (s *udpSender) Send(packet osc.Packet) error {
	data, err := packet.MarshalBinary()
	if err != nil {
		return fmt.Errorf("encode packet: %w", err)
	}

	_, err = s.conn.Write(data)

	return err
}

// SendPose publishes a skeleton for the given player.
func (p *Publisher) SendPose(landmarks []pose.Landmark, energy float64, playerID int) error {
	return p.Send(Pose{Landmarks: landmarks, Energy: energy, PlayerID: playerID})
}

// SendState publishes the lifecycle phase and progress.
func (p *Publisher) SendState(phase string, progress float64) error {
	return p.Send(State{Phase: phase, Progress: progress})
}

// SendParam publishes a named parameter.
func (p *Publisher) SendParam(name string, value float64) error {
	return p.Send(Param{Name: name, Value: value})
}

// Send encodes and transmits any telemetry message.
func (p *Publisher) Send(msg Message) error {
	packet := msg.OSC()

	if err := p.sender.Send(packet); err != nil {
		p.failed.Add(1)

		return fmt.Errorf("send %s: %w", packet.Address, err)
	}

	p.sent.Add(1)

	return nil
}

// Stats returns the number of sent and failed messages.
func (p *Publisher) Stats() (sent, failed uint64) {
	return p.sent.Load(), p.failed.Load()
}
