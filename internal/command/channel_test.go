package command

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/hypebeast/go-osc/osc"
	"github.com/stretchr/testify/require"
)

// startChannel binds a channel on a random loopback port.
func startChannel(t *testing.T) (*Channel, *osc.Client) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	c, err := Listen(ctx, "127.0.0.1:0", nil)
	require.NoError(t, err)

	c.Start(ctx)
	t.Cleanup(func() {
		_ = c.Stop()
	})

	addr, ok := c.Addr().(*net.UDPAddr)
	require.True(t, ok)

	return c, osc.NewClient("127.0.0.1", addr.Port)
}

// send delivers one command token.
func send(t *testing.T, client *osc.Client, args ...any) {
	t.Helper()

	require.NoError(t, client.Send(osc.NewMessage(Address, args...)))
}

// TestChannel_DeliversCommands checks that datagrams raise the matching latches.
func TestChannel_DeliversCommands(t *testing.T) {
	t.Parallel()

	c, client := startChannel(t)

	send(t, client, "quit")
	require.Eventually(t, c.CheckQuit, 2*time.Second, 5*time.Millisecond)
	require.False(t, c.CheckQuit())

	send(t, client, "force_send")
	require.Eventually(t, c.CheckForceSend, 2*time.Second, 5*time.Millisecond)
}

// TestChannel_BundlesApplyImmediately checks that bundled commands raise
// their latches on receipt whatever the timetag, nested bundles included.
func TestChannel_BundlesApplyImmediately(t *testing.T) {
	t.Parallel()

	c, client := startChannel(t)

	nested := osc.NewBundle(time.Now().Add(24 * time.Hour))
	require.NoError(t, nested.Append(osc.NewMessage(Address, "save")))

	bundle := osc.NewBundle(time.Now().Add(time.Hour))
	require.NoError(t, bundle.Append(osc.NewMessage(Address, "quit")))
	require.NoError(t, bundle.Append(nested))
	require.NoError(t, client.Send(bundle))

	require.Eventually(t, c.CheckQuit, 2*time.Second, 5*time.Millisecond)
	require.True(t, c.CheckSave())
}

// TestChannel_NoLatchAfterStop checks that a delayed bundle cannot raise a
// latch once the channel has stopped.
func TestChannel_NoLatchAfterStop(t *testing.T) {
	t.Parallel()

	c, client := startChannel(t)

	bundle := osc.NewBundle(time.Now().Add(200 * time.Millisecond))
	require.NoError(t, bundle.Append(osc.NewMessage(Address, "restart")))
	require.NoError(t, client.Send(bundle))

	require.Eventually(t, c.CheckRestart, 2*time.Second, 5*time.Millisecond)
	require.NoError(t, c.Stop())

	time.Sleep(400 * time.Millisecond)
	require.False(t, c.CheckRestart())
}

// TestChannel_RestartTwiceDrainsOnce covers two restarts arriving before one drain.
func TestChannel_RestartTwiceDrainsOnce(t *testing.T) {
	t.Parallel()

	c, client := startChannel(t)

	send(t, client, "restart")
	send(t, client, "restart")
	// A sentinel command tells us both restarts were processed.
	send(t, client, "save")

	require.Eventually(t, c.CheckSave, 2*time.Second, 5*time.Millisecond)
	require.True(t, c.CheckRestart())
	require.False(t, c.CheckRestart())
}

// TestChannel_IgnoresNoise verifies unknown tokens, empty messages, other addresses
// and garbage datagrams neither set latches nor stop the receiver.
func TestChannel_IgnoresNoise(t *testing.T) {
	t.Parallel()

	c, client := startChannel(t)

	send(t, client, "reboot")
	send(t, client)
	send(t, client, int32(1))
	require.NoError(t, client.Send(osc.NewMessage("/other", "quit")))

	raw, err := net.Dial("udp", c.Addr().String())
	require.NoError(t, err)

	_, err = raw.Write([]byte("not osc at all"))
	require.NoError(t, err)
	require.NoError(t, raw.Close())

	send(t, client, "debug")
	require.Eventually(t, c.CheckDebugToggle, 2*time.Second, 5*time.Millisecond)

	require.False(t, c.CheckQuit())
	require.False(t, c.CheckRestart())
	require.False(t, c.CheckSave())
	require.False(t, c.CheckForceSend())
	require.Equal(t, uint64(1), c.Dropped())
}

// TestChannel_StopDoesNotHang checks Stop returns promptly, twice, and before Start.
func TestChannel_StopDoesNotHang(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	idle, err := Listen(ctx, "127.0.0.1:0", nil)
	require.NoError(t, err)
	require.NoError(t, idle.Stop())

	c, err := Listen(ctx, "127.0.0.1:0", new(Latches))
	require.NoError(t, err)
	c.Start(ctx)

	stopped := make(chan struct{})

	go func() {
		_ = c.Stop()
		_ = c.Stop()

		close(stopped)
	}()

	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
}

// TestChannel_StopsOnContextCancel verifies cancellation releases the socket.
func TestChannel_StopsOnContextCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())

	c, err := Listen(ctx, "127.0.0.1:0", nil)
	require.NoError(t, err)
	c.Start(ctx)
	cancel()

	require.Eventually(t, func() bool {
		select {
		case <-c.done:
			return true
		default:
			return false
		}
	}, 2*time.Second, 5*time.Millisecond)
}

// TestListen_ValidatesAddress rejects an empty address.
func TestListen_ValidatesAddress(t *testing.T) {
	t.Parallel()

	_, err := Listen(context.Background(), "", nil)
	require.Error(t, err)
}
