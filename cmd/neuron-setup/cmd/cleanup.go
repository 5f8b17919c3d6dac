package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neurondownloader/neuron-setup/internal/service/cleanup"
)

// loopCleanup keeps sweeping every CLEANUP_INTERVAL_SECONDS.
var loopCleanup bool

// cleanupCmd prunes stale files from the data directory.
var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Delete stale files from the bot's data directory",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return cleanup.Run(ctx, &cleanup.Options{
			SettingsPath: settingsPath,
			Loop:         loopCleanup,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	cleanupCmd.Flags().BoolVar(&loopCleanup, "loop", false,
		"keep sweeping every CLEANUP_INTERVAL_SECONDS until interrupted")
	rootCmd.AddCommand(cleanupCmd)
}
