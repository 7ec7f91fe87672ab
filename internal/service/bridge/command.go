package bridge

import (
	"context"
	"errors"
	"fmt"
	"net"

	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/Valley1051/VL2025.12.19/internal/api/grpc/control"
	"github.com/Valley1051/VL2025.12.19/internal/command"
	"github.com/Valley1051/VL2025.12.19/internal/config"
	"github.com/Valley1051/VL2025.12.19/internal/domain/session"
	"github.com/Valley1051/VL2025.12.19/internal/logger"
	"github.com/Valley1051/VL2025.12.19/internal/monitor"
	"github.com/Valley1051/VL2025.12.19/internal/service/common"
	"github.com/Valley1051/VL2025.12.19/internal/source"
	"github.com/Valley1051/VL2025.12.19/internal/telemetry"
	"github.com/Valley1051/VL2025.12.19/internal/version"
)

// Options controls the possession-bridge process.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file, also the target of save.
	ConfigPath string
	// Debug starts the bridge in debug mode.
	Debug bool
	// SingleInstance refuses to start when another bridge process is running.
	SingleInstance bool
}

// Run loads the configuration, binds every endpoint and runs the tick loop
// until ctx is canceled or a quit command arrives. Only startup failures
// are returned; per-tick problems are logged.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "possession-bridge")

	configPath := opts.ConfigPath
	if configPath == "" {
		configPath = config.DefaultConfigFilename
	}

	fileCfg, err := config.LoadFile(configPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	cfg, err := config.Resolve(fileCfg)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(cfg.LogLevel); ok {
		logger.SetLevel(level)
	}

	logger.InfoKV(ctx, "Starting bridge",
		append(version.KV(), "config", configPath, "log_level", logger.Level().String())...)

	if opts.SingleInstance {
		if err = common.EnsureSingleInstance(); err != nil {
			return err
		}
	}

	publisher, err := telemetry.Dial(cfg.TelemetryAddress)
	if err != nil {
		return fmt.Errorf("initialise telemetry: %w", err)
	}

	defer func() {
		_ = publisher.Close()
	}()

	latches := new(command.Latches)

	channel, err := command.Listen(ctx, cfg.CommandAddress, latches)
	if err != nil {
		return fmt.Errorf("initialise command channel: %w", err)
	}

	defer func() {
		_ = channel.Stop()
	}()

	deps := Deps{
		Publisher:  publisher,
		Commands:   latches,
		FileConfig: fileCfg,
	}

	var sensor *source.UDPSource

	if cfg.SensorAddress != "" {
		sensor, err = source.Listen(ctx, cfg.SensorAddress)
		if err != nil {
			return fmt.Errorf("initialise sensor source: %w", err)
		}

		defer func() {
			_ = sensor.Stop()
		}()

		deps.Source = sensor
	} else {
		logger.Warn(ctx, "No sensor address configured, the bridge will stay idle")

		deps.Source = source.NewStatic()
	}

	var hub *monitor.Hub

	if cfg.MonitorAddress != "" {
		hub = monitor.NewHub()
		deps.Mirror = hub
	}

	orchestrator := NewOrchestrator(ctx, cfg, configPath, deps)

	if opts.Debug {
		latches.Set(command.Debug)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)

	channel.Start(groupCtx)

	if sensor != nil {
		sensor.Start(groupCtx)
	}

	group.Go(func() error {
		// A quit command ends the loop; the other members follow.
		defer cancel()

		return orchestrator.Run(groupCtx)
	})

	if cfg.ControlAddress != "" {
		group.Go(func() error {
			return serveControl(groupCtx, cfg.ControlAddress, &controlService{
				latches:      latches,
				orchestrator: orchestrator,
			})
		})
	}

	if hub != nil {
		group.Go(func() error {
			return hub.Serve(groupCtx, cfg.MonitorAddress)
		})
	}

	err = group.Wait()

	sent, failed := publisher.Stats()
	logger.InfoKV(ctx, "Bridge stopped",
		"telemetry_sent", sent,
		"telemetry_failed", failed,
		"commands_dropped", channel.Dropped(),
		"ticks", orchestrator.Status().Tick,
	)

	return err
}

// serveControl runs the gRPC control server until ctx is canceled.
func serveControl(ctx context.Context, address string, svc control.Service) error {
	ctx = logger.WithName(ctx, "control")

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", address, err)
	}

	grpcServer := grpc.NewServer()
	control.RegisterControlServer(grpcServer, control.NewServer(svc))

	logger.InfoKV(ctx, "Control server listening", "listen_address", lis.Addr().String())

	// Done channel is closed after GracefulStop finishes to ensure we block
	// until the server fully stops before returning.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// controlService adapts the bridge to the control transport.
type controlService struct {
	// latches receive operator commands.
	latches *command.Latches
	// orchestrator provides the status snapshot.
	orchestrator *Orchestrator
}

// Submit raises the latch for cmd; the next tick applies it.
func (s *controlService) Submit(ctx context.Context, cmd command.Command) {
	s.latches.Set(cmd)
	logger.InfoKV(ctx, "Operator command queued", "command", string(cmd))
}

// Status returns the last tick snapshot.
func (s *controlService) Status() session.Status {
	return s.orchestrator.Status()
}
