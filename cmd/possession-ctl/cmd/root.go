package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Valley1051/VL2025.12.19/internal/command"
	"github.com/Valley1051/VL2025.12.19/internal/config"
	"github.com/Valley1051/VL2025.12.19/internal/service/client"
	"github.com/Valley1051/VL2025.12.19/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// address overrides the control address from config.
	address string
	// wait keeps retrying until the bridge answers.
	wait bool
	// timeout bounds each control call.
	timeout time.Duration

	// rootCmd represents the base command for steering a running bridge.
	rootCmd = &cobra.Command{
		Use:   "possession-ctl <quit|restart|debug|save|force_send|status>",
		Short: "Send a command to a running possession bridge.",
		Long: `Queues one command on a running bridge through its gRPC control endpoint.

Commands are applied on the bridge's next tick exactly as if the rendering
engine had sent them. "status" prints the last tick snapshot as JSON.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: validArgs(),
		RunE: func(_ *cobra.Command, args []string) error {
			if _, ok := command.Parse(args[0]); !ok && args[0] != client.StatusCommand {
				return fmt.Errorf("unknown command %q", args[0])
			}

			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return client.Run(ctx, &client.Options{
				ConfigPath:     cfgPath,
				ControlAddress: address,
				Command:        args[0],
				Wait:           wait,
				Timeout:        timeout,
				Output:         os.Stdout,
			})
		},
	}
)

// validArgs lists the accepted tokens for shell completion.
func validArgs() []string {
	return []string{
		string(command.Quit),
		string(command.Restart),
		string(command.Debug),
		string(command.Save),
		string(command.ForceSend),
		client.StatusCommand,
	}
}

// Execute runs the possession-ctl CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.SilenceUsage = true

	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&address, "address", "a", "", "control address, overrides the config file")
	rootCmd.Flags().BoolVarP(&wait, "wait", "w", false, "retry until the bridge answers")
	rootCmd.Flags().DurationVarP(&timeout, "timeout", "t", 0, "timeout for each call")
}
