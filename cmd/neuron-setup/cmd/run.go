package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neurondownloader/neuron-setup/internal/service/bootstrap"
)

// runCmd executes the environment bootstrap.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Bootstrap the remote environment (no-op outside it)",
	Long: "Install the bot's Python dependency manifest and make sure ffmpeg is available. " +
		"Runs only when NEURON_REMOTE is exactly \"true\"; any other value exits " +
		"successfully without touching anything.",
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return bootstrap.Run(ctx, &bootstrap.Options{
			SettingsPath: settingsPath,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(runCmd)
}
