package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Valley1051/VL2025.12.19/internal/config"
	"github.com/Valley1051/VL2025.12.19/internal/logger"
	"github.com/Valley1051/VL2025.12.19/internal/service/common"
)

// StatusCommand is the pseudo-command that prints the bridge status.
const StatusCommand = "status"

// Options configures a single possession-ctl invocation.
type Options struct {
	// ConfigPath to YAML settings file, defaults to standard filename if empty.
	ConfigPath string
	// ControlAddress overrides the control address from config when specified.
	ControlAddress string
	// Command is a bridge command token or StatusCommand.
	Command string
	// Wait keeps retrying while the bridge is unreachable.
	Wait bool
	// Timeout bounds each call. Zero uses the client default.
	Timeout time.Duration
	// Output receives the status JSON. Defaults to stdout.
	Output io.Writer
}

// defaultRetryInterval is the delay between attempts while waiting for the bridge.
const defaultRetryInterval = 1 * time.Second

// errNoControlAddress is returned when neither config nor flags name an endpoint.
var errNoControlAddress = errors.New("no control address configured")

// Run performs the requested operation, retrying while the bridge is
// unavailable if Wait is set.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "possession-ctl")

	address, err := resolveAddress(opts)
	if err != nil {
		return err
	}

	client, err := common.Dial(ctx, address, common.WithCallTimeout(opts.Timeout))
	if err != nil {
		return err
	}

	// Close connection on function exit.
	defer func() {
		_ = client.Close()
	}()

	logger.DebugKV(ctx, "Contacting bridge", "control_address", address, "command", opts.Command)

	// attempt tries once, returns (completed, error).
	attempt := func() (bool, error) {
		err := execute(ctx, client, opts)
		switch {
		case err == nil:
			return true, nil
		case opts.Wait && retryable(err):
			logger.WarnKV(ctx, "Bridge unavailable, retrying", "error", err)
			return false, nil
		default:
			return false, err
		}
	}

	if done, err := attempt(); err != nil || done {
		return err
	}

	ticker := time.NewTicker(defaultRetryInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			done, err := attempt()
			if err != nil || done {
				return err
			}
		}
	}
}

// retryable reports whether err means the bridge is not up yet.
func retryable(err error) bool {
	switch status.Code(err) {
	case codes.Unavailable, codes.DeadlineExceeded:
		return true
	default:
		return false
	}
}

// resolveAddress picks the flag override or the configured control address.
func resolveAddress(opts *Options) (string, error) {
	if opts.ControlAddress != "" {
		return opts.ControlAddress, nil
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return "", fmt.Errorf("load settings: %w", err)
	}

	if cfg.ControlAddress == "" {
		return "", errNoControlAddress
	}

	return cfg.ControlAddress, nil
}

// execute sends the command or prints the status.
func execute(ctx context.Context, client *common.Client, opts *Options) error {
	if opts.Command != StatusCommand {
		if err := client.SendCommand(ctx, opts.Command); err != nil {
			return err
		}

		logger.InfoKV(ctx, "Command queued", "command", opts.Command)

		return nil
	}

	result, err := client.GetStatus(ctx)
	if err != nil {
		return err
	}

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}

	return writeStatus(out, result)
}

// writeStatus renders the status Struct as indented JSON.
func writeStatus(out io.Writer, result *structpb.Struct) error {
	data, err := protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(result)
	if err != nil {
		return fmt.Errorf("render status: %w", err)
	}

	if _, err = fmt.Fprintln(out, string(data)); err != nil {
		return fmt.Errorf("write status: %w", err)
	}

	return nil
}
