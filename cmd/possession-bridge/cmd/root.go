package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Valley1051/VL2025.12.19/internal/config"
	"github.com/Valley1051/VL2025.12.19/internal/logger"
	"github.com/Valley1051/VL2025.12.19/internal/service/bridge"
	"github.com/Valley1051/VL2025.12.19/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// debug starts the bridge with debug logging and the monitor mirror on.
	debug bool
	// allowMultiple skips the duplicate process check.
	allowMultiple bool

	// rootCmd represents the base command for running the bridge.
	rootCmd = &cobra.Command{
		Use:   "possession-bridge",
		Short: "Run the possession installation bridge.",
		Long: `Runs the session loop between the vision process and the rendering engine.

Landmark frames arrive as JSON over UDP, session state and poses leave as OSC
messages, and the rendering engine steers the bridge with /unity/command
messages (quit, restart, debug, save, force_send). Operators can send the same
commands with possession-ctl over gRPC.

Settings come from the YAML file, then POSSESSION_* environment variables.
A missing file is not an error: defaults are used.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			err := bridge.Run(ctx, &bridge.Options{
				ConfigPath:     configPath,
				Debug:          debug,
				SingleInstance: !allowMultiple,
			})
			if err != nil {
				logger.Errorf(ctx, "Bridge failed: %v", err)
			}

			return err
		},
	}
)

// Execute runs the possession-bridge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.SilenceUsage = true

	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().BoolVarP(&debug, "debug", "d", false, "start in debug mode")
	rootCmd.Flags().BoolVar(&allowMultiple, "allow-multiple", false, "skip the duplicate process check")
}
