package config

import (
	"errors"
	"fmt"
	"maps"
	"net"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/Valley1051/VL2025.12.19/internal/logger"
)

// Config holds the endpoints, timing and tunable parameters of the bridge.
type Config struct {
	// TelemetryAddress is where pose, state and param messages are sent.
	TelemetryAddress string `yaml:"telemetry_addr" env:"TELEMETRY_ADDR"`
	// CommandAddress is the UDP endpoint receiving engine commands.
	CommandAddress string `yaml:"command_addr" env:"COMMAND_ADDR"`
	// SensorAddress is the UDP endpoint receiving landmark frames from the vision process.
	SensorAddress string `yaml:"sensor_addr" env:"SENSOR_ADDR"`
	// ControlAddress is the gRPC listen address for operator tools. Empty disables it.
	ControlAddress string `yaml:"control_addr" env:"CONTROL_ADDR"`
	// MonitorAddress is the HTTP listen address of the debug monitor. Empty disables it.
	MonitorAddress string `yaml:"monitor_addr" env:"MONITOR_ADDR"`
	// LogLevel is the configured zap level name.
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL"`
	// Params are the engine parameters sent on demand over /param.
	Params map[string]float64 `yaml:"params" env:"PARAMS" envSeparator:","`
	// SessionDuration is the length of the POSSESSED phase.
	SessionDuration time.Duration `yaml:"session_duration" env:"SESSION_DURATION"`
	// PresenceVisibility is the mean joint visibility that starts a session.
	PresenceVisibility float64 `yaml:"presence_visibility" env:"PRESENCE_VISIBILITY"`
	// TickRate is the number of orchestrator ticks per second.
	TickRate int `yaml:"tick_rate" env:"TICK_RATE"`
	// MaxGhosts is the number of replay slots.
	MaxGhosts int `yaml:"max_ghosts" env:"MAX_GHOSTS"`
}

const (
	// DefaultConfigFilename is the default filename for bridge settings.
	DefaultConfigFilename = "possession-bridge.yaml"

	// DefaultTelemetryAddress is the rendering engine endpoint.
	DefaultTelemetryAddress = "127.0.0.1:5005"
	// DefaultCommandAddress is where the rendering engine sends commands.
	DefaultCommandAddress = "127.0.0.1:7001"
	// DefaultSensorAddress is where the vision process sends frames.
	DefaultSensorAddress = "127.0.0.1:5006"
	// DefaultControlAddress is the operator gRPC endpoint.
	DefaultControlAddress = "127.0.0.1:7002"

	// DefaultSessionDuration is the length of one possession.
	DefaultSessionDuration = 68 * time.Second
	// DefaultTickRate matches the sensor frame rate.
	DefaultTickRate = 30
	// MaxTickRate bounds the orchestrator loop frequency.
	MaxTickRate = 240
	// DefaultMaxGhosts is the number of ghost replay slots.
	DefaultMaxGhosts = 15
	// DefaultPresenceVisibility is the visibility needed to start a session.
	DefaultPresenceVisibility = 0.5

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	// envPrefix namespaces environment overrides.
	envPrefix = "POSSESSION_"
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errTelemetryAddressRequired is returned when the telemetry endpoint is missing.
	errTelemetryAddressRequired = errors.New("telemetry address must be provided")
	// errCommandAddressRequired is returned when the command endpoint is missing.
	errCommandAddressRequired = errors.New("command address must be provided")
	// errInvalidTickRate is returned for a tick rate outside (0, MaxTickRate].
	errInvalidTickRate = errors.New("tick rate out of range")
	// errInvalidVisibility is returned for a presence threshold outside [0,1].
	errInvalidVisibility = errors.New("presence visibility must be within [0,1]")
	// errInvalidLogLevel is returned for an unknown log level name.
	errInvalidLogLevel = errors.New("unknown log level")
)

// DefaultParams are the engine parameters known to the rendering side.
func DefaultParams() map[string]float64 {
	return map[string]float64{
		"boneRotation":         0,
		"ghostFadeSpeed":       1,
		"ghostScaleMultiplier": 1,
		"swayAmount":           0.5,
		"spotlightAnimEnabled": 1,
	}
}

// Default returns a configuration with every field at its default.
func Default() *Config {
	return &Config{
		TelemetryAddress:   DefaultTelemetryAddress,
		CommandAddress:     DefaultCommandAddress,
		SensorAddress:      DefaultSensorAddress,
		ControlAddress:     DefaultControlAddress,
		LogLevel:           "info",
		Params:             DefaultParams(),
		SessionDuration:    DefaultSessionDuration,
		PresenceVisibility: DefaultPresenceVisibility,
		TickRate:           DefaultTickRate,
		MaxGhosts:          DefaultMaxGhosts,
	}
}

// Load reads configuration from path, applies environment overrides and
// validates the result. A missing file is not an error: the defaults are used
// so the installation comes up on a fresh machine.
func Load(path string) (*Config, error) {
	file, err := LoadFile(path)
	if err != nil {
		return nil, err
	}

	return Resolve(file)
}

// LoadFile reads the defaults overlaid with the settings file at path,
// without environment overrides. This is the configuration written back on
// save, so overrides never leak into the file.
func LoadFile(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	cfg := Default()

	contents, err := os.ReadFile(filepath.Clean(path))
	switch {
	case err == nil:
		if err = yaml.Unmarshal(contents, cfg); err != nil {
			return nil, fmt.Errorf("unmarshal settings: %w", err)
		}
	case errors.Is(err, os.ErrNotExist):
		logger.Logger().Infow("Settings file not found, using defaults", "path", path)
	default:
		return nil, fmt.Errorf("read settings: %w", err)
	}

	return cfg, nil
}

// Resolve returns a validated copy of file with POSSESSION_* environment
// overrides applied. file itself is left untouched.
func Resolve(file *Config) (*Config, error) {
	if file == nil {
		return nil, errConfigIsNotSet
	}

	cfg := file.Clone()

	if err := env.ParseWithOptions(cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks addresses and ranges and fills zero values with defaults.
//
//nolint:cyclop // A flat list of independent checks.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.TelemetryAddress == "" {
		return errTelemetryAddressRequired
	}

	if cfg.CommandAddress == "" {
		return errCommandAddressRequired
	}

	for _, addr := range []string{cfg.TelemetryAddress, cfg.CommandAddress, cfg.SensorAddress} {
		if addr == "" {
			continue
		}

		if _, err := net.ResolveUDPAddr("udp", addr); err != nil {
			return fmt.Errorf("invalid udp address %q: %w", addr, err)
		}
	}

	for _, addr := range []string{cfg.ControlAddress, cfg.MonitorAddress} {
		if addr == "" {
			continue
		}

		if _, err := net.ResolveTCPAddr("tcp", addr); err != nil {
			return fmt.Errorf("invalid tcp address %q: %w", addr, err)
		}
	}

	if cfg.TickRate == 0 {
		cfg.TickRate = DefaultTickRate
	}

	if cfg.TickRate < 0 || cfg.TickRate > MaxTickRate {
		return fmt.Errorf("%w: %d", errInvalidTickRate, cfg.TickRate)
	}

	if cfg.SessionDuration <= 0 {
		cfg.SessionDuration = DefaultSessionDuration
	}

	if cfg.MaxGhosts <= 0 {
		cfg.MaxGhosts = DefaultMaxGhosts
	}

	if cfg.PresenceVisibility < 0 || cfg.PresenceVisibility > 1 {
		return errInvalidVisibility
	}

	if _, ok := logger.ParseLogLevel(cfg.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errInvalidLogLevel, cfg.LogLevel)
	}

	if cfg.Params == nil {
		cfg.Params = DefaultParams()
	}

	return nil
}

// TickInterval returns the period of the orchestrator loop.
func (c *Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TickRate)
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	cloned := *c
	cloned.Params = maps.Clone(c.Params)

	return &cloned
}
