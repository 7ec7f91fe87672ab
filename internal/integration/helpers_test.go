package integration

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/require"

	"github.com/Valley1051/VL2025.12.19/internal/config"
	"github.com/Valley1051/VL2025.12.19/internal/service/bridge"
)

// reserveTCP returns a free loopback TCP address.
func reserveTCP(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	require.NoError(t, l.Close())

	return addr
}

// reserveUDP returns a free loopback UDP address.
func reserveUDP(t *testing.T) string {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())

	return addr
}

// engine plays the rendering engine: it receives telemetry and sends commands.
type engine struct {
	// conn receives telemetry datagrams.
	conn net.PacketConn
	// messages are the decoded OSC messages.
	messages chan *osc.Message
	// commands sends /unity/command messages to the bridge.
	commands *osc.Client
}

// newEngine binds the telemetry socket and prepares a command client.
func newEngine(t *testing.T, commandAddr string) *engine {
	t.Helper()

	conn, err := net.ListenPacket("udp", "127.0.0.1:0")
	require.NoError(t, err)

	udpAddr, err := net.ResolveUDPAddr("udp", commandAddr)
	require.NoError(t, err)

	e := &engine{
		conn:     conn,
		messages: make(chan *osc.Message, 4096),
		commands: osc.NewClient(udpAddr.IP.String(), udpAddr.Port),
	}

	go e.receive()

	t.Cleanup(func() {
		_ = conn.Close()
	})

	return e
}

func (e *engine) receive() {
	buf := make([]byte, 65535)

	for {
		n, _, err := e.conn.ReadFrom(buf)
		if err != nil {
			return
		}

		packet, err := osc.ParsePacket(string(buf[:n]))
		if err != nil {
			continue
		}

		if msg, ok := packet.(*osc.Message); ok {
			select {
			case e.messages <- msg:
			default:
			}
		}
	}
}

// send queues a command token on the bridge.
func (e *engine) send(t *testing.T, token string) {
	t.Helper()

	msg := osc.NewMessage("/unity/command")
	msg.Append(token)
	require.NoError(t, e.commands.Send(msg))
}

// await returns the first message accepted by match, failing after timeout.
func (e *engine) await(t *testing.T, timeout time.Duration, match func(*osc.Message) bool) *osc.Message {
	t.Helper()

	deadline := time.After(timeout)

	for {
		select {
		case msg := <-e.messages:
			if match(msg) {
				return msg
			}
		case <-deadline:
			require.FailNow(t, "telemetry message not received")
			return nil
		}
	}
}

// stateIs matches a /state message with the given phase.
func stateIs(phase string) func(*osc.Message) bool {
	return func(msg *osc.Message) bool {
		return msg.Address == "/state" && len(msg.Arguments) == 2 && msg.Arguments[0] == phase
	}
}

// poseOf matches a /pose message for the given player.
func poseOf(playerID int32) func(*osc.Message) bool {
	return func(msg *osc.Message) bool {
		return msg.Address == "/pose" && len(msg.Arguments) > 2 && msg.Arguments[0] == playerID
	}
}

// bodyJSON renders a fully visible 33 point body as a sensor datagram,
// mixing object and array entries like the vision process does.
func bodyJSON(x float64) []byte {
	entries := make([]string, 33)
	for i := range entries {
		if i%2 == 0 {
			entries[i] = fmt.Sprintf(`{"x":%g,"y":0.5,"z":0,"v":0.99}`, x)
		} else {
			entries[i] = fmt.Sprintf(`[%g,0.5,0,0.99]`, x)
		}
	}

	return []byte(`{"landmarks":[` + strings.Join(entries, ",") + `]}`)
}

// sendFrame delivers one sensor datagram.
func sendFrame(t *testing.T, sensorAddr string, payload []byte) {
	t.Helper()

	conn, err := net.Dial("udp", sensorAddr)
	require.NoError(t, err)

	defer func() {
		_ = conn.Close()
	}()

	_, err = conn.Write(payload)
	require.NoError(t, err)
}

// installation is a running bridge with its endpoints.
type installation struct {
	cfg        *config.Config
	configPath string
	engine     *engine
	done       chan error
	cancel     context.CancelFunc
}

// startBridge writes a settings file pointing at fresh loopback ports and runs the bridge.
func startBridge(t *testing.T, mutate func(*config.Config)) *installation {
	t.Helper()

	cfg := config.Default()
	cfg.CommandAddress = reserveUDP(t)
	cfg.SensorAddress = reserveUDP(t)
	cfg.ControlAddress = reserveTCP(t)

	eng := newEngine(t, cfg.CommandAddress)
	cfg.TelemetryAddress = eng.conn.LocalAddr().String()

	if mutate != nil {
		mutate(cfg)
	}

	configPath := filepath.Join(t.TempDir(), "possession-bridge.yaml")
	require.NoError(t, config.Save(configPath, cfg))

	ctx, cancel := context.WithCancel(context.Background())
	inst := &installation{
		cfg:        cfg,
		configPath: configPath,
		engine:     eng,
		done:       make(chan error, 1),
		cancel:     cancel,
	}

	go func() {
		inst.done <- bridge.Run(ctx, &bridge.Options{ConfigPath: configPath})
	}()

	t.Cleanup(func() {
		cancel()

		select {
		case <-inst.done:
		case <-time.After(5 * time.Second):
			t.Error("bridge did not stop")
		}
	})

	// Parameters are sent once the loop starts, so they mark readiness.
	eng.await(t, 5*time.Second, func(msg *osc.Message) bool {
		return msg.Address == "/param"
	})

	return inst
}

// wait blocks until the bridge exits on its own.
func (i *installation) wait(t *testing.T) error {
	t.Helper()

	select {
	case err := <-i.done:
		i.done <- err

		return err
	case <-time.After(5 * time.Second):
		require.FailNow(t, "bridge did not exit")
		return nil
	}
}

// appendMarker adds a comment line to the settings file so a rewrite is detectable.
func appendMarker(t *testing.T, path string) {
	t.Helper()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	require.NoError(t, err)

	_, err = f.WriteString("# marker\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())
}
