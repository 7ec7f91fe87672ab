package bridge

import (
	"context"
	"slices"
	"sync/atomic"
	"time"

	"github.com/Valley1051/VL2025.12.19/internal/config"
	"github.com/Valley1051/VL2025.12.19/internal/domain/ghost"
	"github.com/Valley1051/VL2025.12.19/internal/domain/pose"
	"github.com/Valley1051/VL2025.12.19/internal/domain/session"
	"github.com/Valley1051/VL2025.12.19/internal/logger"
	"github.com/Valley1051/VL2025.12.19/internal/source"
)

// Publisher sends telemetry to the rendering engine.
type Publisher interface {
	SendPose(landmarks []pose.Landmark, energy float64, playerID int) error
	SendState(phase string, progress float64) error
	SendParam(name string, value float64) error
}

// Commands exposes the read-and-clear command latches.
type Commands interface {
	CheckQuit() bool
	CheckRestart() bool
	CheckDebugToggle() bool
	CheckSave() bool
	CheckForceSend() bool
}

// Mirror receives status snapshots while debug mode is on.
type Mirror interface {
	Broadcast(v any)
}

// Deps are the collaborators of the orchestrator.
type Deps struct {
	// Source yields sensor frames.
	Source source.Source
	// Publisher sends telemetry.
	Publisher Publisher
	// Commands are drained once per tick.
	Commands Commands
	// Clock drives the session machine. Defaults to the system clock.
	Clock session.Clock
	// Mirror optionally receives status snapshots in debug mode.
	Mirror Mirror
	// FileConfig is the file-only configuration written on save, free of
	// environment overrides. Defaults to a copy of the active configuration.
	FileConfig *config.Config
	// SaveConfig persists the configuration. Defaults to config.Save.
	SaveConfig func(path string, cfg *config.Config) error
	// ToggleDebug flips debug logging and reports the new state. Defaults to logger.ToggleDebug.
	ToggleDebug func() bool
}

// Orchestrator runs the per-tick control loop. All methods except Status
// must be called from a single goroutine.
type Orchestrator struct {
	// deps are the injected collaborators.
	deps Deps
	// cfg is the active configuration.
	cfg *config.Config
	// configPath is where save writes the configuration.
	configPath string
	// machine owns the session lifecycle.
	machine *session.Machine
	// ghosts records and replays sessions.
	ghosts *ghost.Library
	// previous is the last fresh frame, the baseline for energy.
	previous []pose.Landmark
	// status is the snapshot published after each tick.
	status atomic.Pointer[session.Status]
	// tick counts loop iterations.
	tick uint64
	// failing is true while telemetry sends keep failing.
	failing bool
	// debug mirrors the debug mode toggled by commands.
	debug bool
}

// NewOrchestrator wires the loop. cfg must already be validated.
func NewOrchestrator(ctx context.Context, cfg *config.Config, configPath string, deps Deps) *Orchestrator {
	if deps.Clock == nil {
		deps.Clock = session.SystemClock
	}

	if deps.SaveConfig == nil {
		deps.SaveConfig = config.Save
	}

	if deps.ToggleDebug == nil {
		deps.ToggleDebug = logger.ToggleDebug
	}

	if deps.FileConfig == nil {
		deps.FileConfig = cfg.Clone()
	}

	o := &Orchestrator{
		deps:       deps,
		cfg:        cfg,
		configPath: configPath,
		ghosts:     ghost.NewLibrary(cfg.MaxGhosts, recordingCap(cfg)),
	}

	o.machine = session.NewMachine(
		session.WithClock(deps.Clock),
		session.WithDuration(cfg.SessionDuration),
		session.WithNotifier(func(event session.Event, phase session.Phase) {
			logger.InfoKV(ctx, "Session "+string(event), "phase", phase.String())
		}),
	)

	o.status.Store(&session.Status{Phase: session.Idle.String()})

	return o
}

// recordingCap sizes a take to one full session plus slack for late ticks.
func recordingCap(cfg *config.Config) int {
	return int(cfg.SessionDuration.Seconds()*float64(cfg.TickRate)) + cfg.TickRate
}

// Status returns the snapshot of the last tick. Safe for concurrent use.
func (o *Orchestrator) Status() session.Status {
	return *o.status.Load()
}

// Run ticks at the configured rate until ctx is canceled or a quit command
// arrives. Parameters are sent once on start so the engine begins in sync.
func (o *Orchestrator) Run(ctx context.Context) error {
	ctx = logger.WithKV(logger.WithName(ctx, "orchestrator"), "tick_rate", o.cfg.TickRate)

	o.sendParams(ctx)

	ticker := time.NewTicker(o.cfg.TickInterval())
	defer ticker.Stop()

	logger.InfoKV(ctx, "Tick loop started", "session_duration", o.machine.Duration().String())

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case <-ticker.C:
			if o.Tick(ctx) {
				logger.Info(ctx, "Quit requested, exiting")
				return nil
			}
		}
	}
}

// Tick runs one iteration: read the sensor, compute energy, advance the
// session, publish telemetry and apply pending commands. It reports whether
// a quit command was received.
func (o *Orchestrator) Tick(ctx context.Context) bool {
	o.tick++

	frame, fresh := o.deps.Source.Latest()

	var (
		landmarks []pose.Landmark
		energy    float64
	)

	if fresh {
		landmarks = frame.Landmarks
		energy = pose.Energy(landmarks, o.previous)
		o.previous = landmarks
	}

	if o.machine.Phase() == session.Idle && fresh && frame.Present(o.cfg.PresenceVisibility) {
		o.ghosts.Discard()
		o.machine.Start()
	}

	before := o.machine.Phase()
	phase, elapsed := o.machine.Update()

	switch {
	case phase == session.Possessed:
		o.ghosts.Record(landmarks, energy)
	case before == session.Possessed && phase == session.Cooldown:
		if id := o.ghosts.Commit(); id > 0 {
			logger.InfoKV(ctx, "Session committed as ghost", "player_id", id, "ghosts", o.ghosts.Len())
		}
	}

	progress := o.machine.Progress(phase, elapsed)
	o.publish(ctx, landmarks, energy, phase, progress)

	quit := o.drainCommands(ctx)

	// A restart applied above leaves the machine in a new phase with a fresh clock.
	if current := o.machine.Phase(); current != phase {
		phase, elapsed, progress = current, 0, 0
	}

	status := &session.Status{
		UpdatedAt:    o.deps.Clock.Now(),
		Phase:        phase.String(),
		Progress:     progress,
		Elapsed:      elapsed,
		Energy:       energy,
		Tick:         o.tick,
		Ghosts:       o.ghosts.Len(),
		Recording:    o.ghosts.Recording(),
		BodyDetected: frame.Detected(),
		Debug:        o.debug,
	}
	o.status.Store(status)

	if o.debug && o.deps.Mirror != nil {
		o.deps.Mirror.Broadcast(status)
	}

	return quit
}

// publish sends the live pose, the session state and every ghost pose.
func (o *Orchestrator) publish(
	ctx context.Context,
	landmarks []pose.Landmark,
	energy float64,
	phase session.Phase,
	progress float64,
) {
	var errs []error

	if len(landmarks) > 0 {
		errs = append(errs, o.deps.Publisher.SendPose(landmarks, energy, 0))
	}

	errs = append(errs, o.deps.Publisher.SendState(phase.String(), progress))

	for _, g := range o.ghosts.Next() {
		errs = append(errs, o.deps.Publisher.SendPose(g.Landmarks, g.Energy, g.PlayerID))
	}

	o.reportSend(ctx, slices.DeleteFunc(errs, func(err error) bool { return err == nil }))
}

// reportSend logs the first failure of a streak and the recovery, so a dead
// engine does not flood the log at tick rate.
func (o *Orchestrator) reportSend(ctx context.Context, errs []error) {
	switch {
	case len(errs) > 0 && !o.failing:
		o.failing = true
		logger.WarnKV(ctx, "Telemetry send failed", "error", errs[0], "failures", len(errs))
	case len(errs) > 0:
		logger.DebugKV(ctx, "Telemetry send still failing", "error", errs[0])
	case o.failing:
		o.failing = false
		logger.Info(ctx, "Telemetry send recovered")
	}
}

// drainCommands applies every pending command once and reports quit.
func (o *Orchestrator) drainCommands(ctx context.Context) bool {
	quit := o.deps.Commands.CheckQuit()

	if o.deps.Commands.CheckRestart() {
		o.machine.Reset()
		o.previous = nil
		o.ghosts.Discard()
		logger.Info(ctx, "Session restarted by command")
	}

	if o.deps.Commands.CheckDebugToggle() {
		o.debug = o.deps.ToggleDebug()
		logger.InfoKV(ctx, "Debug mode toggled", "debug", o.debug)
	}

	if o.deps.Commands.CheckSave() {
		if err := o.deps.SaveConfig(o.configPath, o.deps.FileConfig); err != nil {
			logger.ErrorKV(ctx, "Failed to save settings", "path", o.configPath, "error", err)
		} else {
			logger.InfoKV(ctx, "Settings saved", "path", o.configPath)
		}
	}

	if o.deps.Commands.CheckForceSend() {
		o.sendParams(ctx)
	}

	return quit
}

// sendParams publishes every configured parameter in name order.
func (o *Orchestrator) sendParams(ctx context.Context) {
	names := make([]string, 0, len(o.cfg.Params))
	for name := range o.cfg.Params {
		names = append(names, name)
	}

	slices.Sort(names)

	var failed int

	for _, name := range names {
		if err := o.deps.Publisher.SendParam(name, o.cfg.Params[name]); err != nil {
			failed++

			logger.DebugKV(ctx, "Param send failed", "name", name, "error", err)
		}
	}

	if failed > 0 {
		logger.WarnKV(ctx, "Some params were not sent", "failed", failed, "total", len(names))
		return
	}

	logger.DebugKV(ctx, "Params sent", "count", len(names))
}
