package integration

import (
	"bytes"
	"os"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/require"

	"github.com/Valley1051/VL2025.12.19/internal/config"
)

// TestBridge_SessionOverLoopback drives a session from a sensor datagram to
// telemetry and ends the process with the engine's quit command.
func TestBridge_SessionOverLoopback(t *testing.T) {
	t.Parallel()

	inst := startBridge(t, func(cfg *config.Config) {
		cfg.SessionDuration = 500 * time.Millisecond
	})

	inst.engine.await(t, 2*time.Second, stateIs("IDLE"))

	sendFrame(t, inst.cfg.SensorAddress, bodyJSON(0.4))

	live := inst.engine.await(t, 2*time.Second, poseOf(0))
	require.Len(t, live.Arguments, 2+33*4)
	require.IsType(t, float32(0), live.Arguments[1])
	require.InDelta(t, 0.4, live.Arguments[2], 1e-6)
	require.InDelta(t, 0.99, live.Arguments[5], 1e-6)

	inst.engine.await(t, 2*time.Second, stateIs("POSSESSED"))
	inst.engine.await(t, 3*time.Second, stateIs("COOLDOWN"))

	ghost := inst.engine.await(t, 2*time.Second, poseOf(1))
	require.Len(t, ghost.Arguments, 2+33*4)

	inst.engine.send(t, "quit")
	require.NoError(t, inst.wait(t))
}

// TestBridge_EngineCommands checks restart, force_send and save from the engine.
func TestBridge_EngineCommands(t *testing.T) {
	t.Parallel()

	inst := startBridge(t, nil)

	sendFrame(t, inst.cfg.SensorAddress, bodyJSON(0.2))
	inst.engine.await(t, 2*time.Second, stateIs("POSSESSED"))

	inst.engine.send(t, "restart")
	inst.engine.await(t, 2*time.Second, stateIs("IDLE"))

	inst.engine.send(t, "force_send")
	param := inst.engine.await(t, 2*time.Second, func(msg *osc.Message) bool {
		return msg.Address == "/param" && msg.Arguments[0] == "swayAmount"
	})
	require.InDelta(t, 0.5, param.Arguments[1], 1e-6)

	appendMarker(t, inst.configPath)
	inst.engine.send(t, "save")

	require.Eventually(t, func() bool {
		contents, err := os.ReadFile(inst.configPath)
		return err == nil && len(contents) > 0 && !bytes.Contains(contents, []byte("# marker"))
	}, 3*time.Second, 20*time.Millisecond)

	saved, err := config.Load(inst.configPath)
	require.NoError(t, err)
	require.Equal(t, inst.cfg.CommandAddress, saved.CommandAddress)
}

// TestBridge_IgnoresMalformedTraffic keeps running through garbage on both inputs.
func TestBridge_IgnoresMalformedTraffic(t *testing.T) {
	t.Parallel()

	inst := startBridge(t, nil)

	sendFrame(t, inst.cfg.SensorAddress, []byte("not json"))
	sendFrame(t, inst.cfg.SensorAddress, []byte(`{"landmarks":null}`))
	sendFrame(t, inst.cfg.CommandAddress, []byte("garbage"))
	inst.engine.send(t, "dance")

	inst.engine.await(t, 2*time.Second, stateIs("IDLE"))

	sendFrame(t, inst.cfg.SensorAddress, bodyJSON(0.6))
	inst.engine.await(t, 2*time.Second, stateIs("POSSESSED"))
}
