package source

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
	"github.com/Valley1051/VL2025.12.19/internal/logger"
)

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

var (
	// errAddressRequired is returned when no listen address is given.
	errAddressRequired = errors.New("sensor address must be provided")
	// errInvalidJSON is returned for datagrams that are not JSON.
	errInvalidJSON = errors.New("invalid json")
	// errNoLandmarks is returned when the landmarks field is missing or not a list.
	errNoLandmarks = errors.New("landmarks must be a list or null")
)

// UDPSource receives JSON frames from the vision process:
//
//	{"landmarks": [{"x":0.5,"y":0.4,"z":-0.1,"v":0.99}, [0.5,0.6,0.0,0.97], ...]}
//
// Entries may be objects or 4-element arrays; unrecognised entries become
// zero landmarks. "landmarks": null means no body was detected.
type UDPSource struct {
	latest

	// conn is the bound UDP socket.
	conn net.PacketConn
	// done is closed when the receive goroutine exits.
	done chan struct{}
	// dropped counts datagrams that failed to parse.
	dropped atomic.Uint64
	// startOnce guards Start.
	startOnce sync.Once
	// stopOnce guards Stop.
	stopOnce sync.Once
	// started reports whether the receive goroutine was launched.
	started atomic.Bool
}

// Listen binds address for incoming frames.
func Listen(ctx context.Context, address string) (*UDPSource, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	lc := net.ListenConfig{}

	conn, err := lc.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	return &UDPSource{
		conn: conn,
		done: make(chan struct{}),
	}, nil
}

// Addr returns the bound local address.
func (s *UDPSource) Addr() net.Addr {
	return s.conn.LocalAddr()
}

// Start launches the receive goroutine. The source stops when ctx is canceled.
func (s *UDPSource) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		s.started.Store(true)

		go s.receive(ctx)

		go func() {
			select {
			case <-ctx.Done():
				_ = s.Stop()
			case <-s.done:
			}
		}()

		logger.InfoKV(ctx, "Sensor source listening", "address", s.Addr().String())
	})
}

// Stop closes the socket and waits for the receive goroutine.
func (s *UDPSource) Stop() error {
	var err error

	s.stopOnce.Do(func() {
		err = s.conn.Close()

		if s.started.Load() {
			<-s.done
		}
	})

	return err
}

// Dropped returns the number of datagrams rejected so far.
func (s *UDPSource) Dropped() uint64 {
	return s.dropped.Load()
}

// Ingest parses one datagram and stores it as the newest frame.
func (s *UDPSource) Ingest(data []byte) error {
	landmarks, err := ParseFrame(data)
	if err != nil {
		s.dropped.Add(1)
		return err
	}

	s.store(landmarks, time.Now())

	return nil
}

// receive reads datagrams until the socket is closed.
func (s *UDPSource) receive(ctx context.Context) {
	defer close(s.done)

	buf := make([]byte, maxDatagram)

	for {
		n, from, err := s.conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logger.WarnKV(ctx, "Sensor receiver stopped", "error", err)
			}

			return
		}

		if err = s.Ingest(buf[:n]); err != nil {
			logger.DebugKV(ctx, "Dropping sensor datagram", "from", from.String(), "error", err)
		}
	}
}

// ParseFrame decodes a frame datagram into landmarks. A null landmarks field
// yields nil landmarks and no error.
func ParseFrame(data []byte) ([]pose.Landmark, error) {
	if !gjson.ValidBytes(data) {
		return nil, errInvalidJSON
	}

	field := gjson.GetBytes(data, "landmarks")

	switch {
	case field.Type == gjson.Null:
		if !field.Exists() {
			return nil, errNoLandmarks
		}

		return nil, nil
	case !field.IsArray():
		return nil, errNoLandmarks
	}

	entries := field.Array()
	values := make([]any, len(entries))

	for i, entry := range entries {
		values[i] = entry.Value()
	}

	return pose.AdaptAll(values), nil
}
