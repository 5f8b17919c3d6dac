package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neurondownloader/neuron-setup/internal/service/doctor"
)

// doctorCmd runs the environment preflight.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the deployment: binaries, data directory, cookies",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return doctor.Run(ctx, &doctor.Options{
			SettingsPath: settingsPath,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(doctorCmd)
}
