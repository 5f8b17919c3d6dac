package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neurondownloader/neuron-setup/internal/service/cookies"
)

// watchCookies keeps the command running and re-checks the jar on change.
var watchCookies bool

// cookiesCmd inspects the yt-dlp cookie jar.
var cookiesCmd = &cobra.Command{
	Use:   "cookies",
	Short: "Check whether the yt-dlp cookie jar is still usable",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		return cookies.Run(ctx, &cookies.Options{
			SettingsPath: settingsPath,
			Watch:        watchCookies,
		})
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	cookiesCmd.Flags().BoolVarP(&watchCookies, "watch", "w", false,
		"keep running and re-check whenever the jar changes")
	rootCmd.AddCommand(cookiesCmd)
}
