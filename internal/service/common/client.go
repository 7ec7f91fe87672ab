//nolint:revive,nolintlint // Package name "common" is intentional for shared helpers.
package common

import (
	"context"
	"errors"
	"fmt"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/Valley1051/VL2025.12.19/internal/api/grpc/control"
)

// DefaultCallTimeout bounds a single control call.
const DefaultCallTimeout = 3 * time.Second

// Client wraps the gRPC ControlService client with convenience helpers.
type Client struct {
	// conn is the underlying gRPC connection to the bridge.
	conn *grpc.ClientConn
	// api is the control service client.
	api control.ControlClient

	// callTimeout is the default timeout for individual RPC calls.
	callTimeout time.Duration
}

// Option configures client behaviour.
type Option func(*Client)

// WithCallTimeout sets a default timeout for service calls.
func WithCallTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		if timeout > 0 {
			c.callTimeout = timeout
		}
	}
}

var (
	// errAddressRequired is returned when a required address value is missing.
	errAddressRequired = errors.New("address must be provided")
	// errCommandRequired is returned when an empty command token is sent.
	errCommandRequired = errors.New("command must be provided")
)

// Dial prepares a gRPC connection to the bridge control endpoint. The
// control API is bound to loopback, so transport credentials are insecure.
func Dial(_ context.Context, address string, opts ...Option) (*Client, error) {
	if address == "" {
		return nil, errAddressRequired
	}

	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("dial bridge: %w", err)
	}

	client := &Client{
		conn:        conn,
		api:         control.NewControlClient(conn),
		callTimeout: DefaultCallTimeout,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}

	return c.conn.Close()
}

// SendCommand queues a command token on the bridge.
func (c *Client) SendCommand(ctx context.Context, token string) error {
	if token == "" {
		return errCommandRequired
	}

	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	if _, err := c.api.SendCommand(callCtx, wrapperspb.String(token)); err != nil {
		return fmt.Errorf("send command %q: %w", token, err)
	}

	return nil
}

// GetStatus retrieves the snapshot of the bridge's last tick.
func (c *Client) GetStatus(ctx context.Context) (*structpb.Struct, error) {
	callCtx, cancel := c.callContext(ctx)
	defer cancel()

	resp, err := c.api.GetStatus(callCtx, new(emptypb.Empty))
	if err != nil {
		return nil, fmt.Errorf("get status: %w", err)
	}

	return resp, nil
}

// callContext returns a context with the client's call timeout if configured,
// otherwise a cancellable child context without a deadline.
func (c *Client) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}

	return context.WithTimeout(ctx, c.callTimeout)
}
