package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"

	"github.com/hypebeast/go-osc/osc"

	"github.com/Valley1051/VL2025.12.19/internal/logger"
)

// Address is the OSC address carrying command tokens.
const Address = "/unity/command"

var (
	// errAddressRequired is returned when no listen address is given.
	errAddressRequired = errors.New("command address must be provided")
	// errUndecodable marks a datagram that is neither an OSC message nor a bundle.
	errUndecodable = errors.New("not an osc packet")
)

// Channel listens for OSC command datagrams and raises latches.
type Channel struct {
	*Latches

	// conn is the bound UDP socket.
	conn net.PacketConn
	// dispatcher routes decoded messages to the handler.
	dispatcher *osc.StandardDispatcher
	// dropped counts datagrams that failed to decode.
	dropped atomic.Uint64
	// done is closed when the receive goroutine exits.
	done chan struct{}
	// startOnce guards Start.
	startOnce sync.Once
	// stopOnce guards Stop.
	stopOnce sync.Once
	// started reports whether the receive goroutine was launched.
	started bool
	// mu guards started.
	mu sync.Mutex
}

// Listen binds address (host:port) and prepares a channel that raises the
// given latches. A nil latches argument allocates a private set.
func Listen(ctx context.Context, address string, latches *Latches) (*Channel, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	if latches == nil {
		latches = new(Latches)
	}

	lc := net.ListenConfig{}

	conn, err := lc.ListenPacket(ctx, "udp", address)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", address, err)
	}

	c := &Channel{
		Latches: latches,
		conn:    conn,
		done:    make(chan struct{}),
	}

	dispatcher := osc.NewStandardDispatcher()
	if err = dispatcher.AddMsgHandler(Address, func(msg *osc.Message) {
		c.handle(ctx, msg)
	}); err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("register command handler: %w", err)
	}

	c.dispatcher = dispatcher

	return c, nil
}

// Addr returns the bound local address.
func (c *Channel) Addr() net.Addr {
	return c.conn.LocalAddr()
}

// Start launches the receive goroutine. The channel stops on its own when
// ctx is canceled.
func (c *Channel) Start(ctx context.Context) {
	c.startOnce.Do(func() {
		c.mu.Lock()
		c.started = true
		c.mu.Unlock()

		go func() {
			defer close(c.done)

			c.receive(ctx)
		}()

		go func() {
			select {
			case <-ctx.Done():
				_ = c.Stop()
			case <-c.done:
			}
		}()

		logger.InfoKV(ctx, "Command channel listening", "address", c.Addr().String(), "osc_address", Address)
	})
}

// Stop closes the socket and waits for the receive goroutine to exit.
// It is safe to call more than once and before Start.
func (c *Channel) Stop() error {
	var err error

	c.stopOnce.Do(func() {
		err = c.conn.Close()

		c.mu.Lock()
		started := c.started
		c.mu.Unlock()

		if started {
			<-c.done
		}
	})

	return err
}

// maxDatagram is the largest UDP payload.
const maxDatagram = 65535

// receive reads datagrams until the socket is closed. Undecodable datagrams
// are dropped without stopping the loop.
func (c *Channel) receive(ctx context.Context) {
	buf := make([]byte, maxDatagram)

	for {
		n, from, err := c.conn.ReadFrom(buf)
		if err != nil {
			if !errors.Is(err, net.ErrClosed) {
				logger.WarnKV(ctx, "Command receiver stopped", "error", err)
			}

			return
		}

		packet, err := osc.ParsePacket(string(buf[:n]))
		if err == nil && packet == nil {
			err = errUndecodable
		}

		if err != nil {
			c.dropped.Add(1)
			logger.DebugKV(ctx, "Dropping malformed command datagram", "from", from.String(), "error", err)

			continue
		}

		c.deliver(packet)
	}
}

// deliver dispatches every message of packet on the calling goroutine.
// Bundle timetags are ignored: commands apply on the next tick, and a
// delayed dispatch would outlive Stop.
func (c *Channel) deliver(packet osc.Packet) {
	switch p := packet.(type) {
	case *osc.Message:
		c.dispatcher.Dispatch(p)
	case *osc.Bundle:
		for _, msg := range p.Messages {
			c.dispatcher.Dispatch(msg)
		}

		for _, nested := range p.Bundles {
			c.deliver(nested)
		}
	}
}

// Dropped returns the number of undecodable datagrams received so far.
func (c *Channel) Dropped() uint64 {
	return c.dropped.Load()
}

// handle turns one OSC message into a latch. Messages without arguments,
// non-string tokens and unknown tokens are ignored.
func (c *Channel) handle(ctx context.Context, msg *osc.Message) {
	if msg == nil || len(msg.Arguments) == 0 {
		return
	}

	token, ok := msg.Arguments[0].(string)
	if !ok {
		logger.DebugKV(ctx, "Ignoring non-string command", "argument", msg.Arguments[0])
		return
	}

	cmd, ok := Parse(token)
	if !ok {
		logger.DebugKV(ctx, "Ignoring unknown command", "token", token)
		return
	}

	c.Set(cmd)
	logger.InfoKV(ctx, "Command received", "command", string(cmd))
}
