package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/neurondownloader/neuron-setup/internal/config"
	"github.com/neurondownloader/neuron-setup/internal/logger"
	"github.com/neurondownloader/neuron-setup/internal/version"
)

var (
	// settingsPath is the path to the optional settings overlay YAML file.
	settingsPath string

	// logLevel overrides the LOG_LEVEL environment variable.
	logLevel string

	// rootCmd represents the base command for the bot environment toolbox.
	rootCmd = &cobra.Command{
		Use:   "neuron-setup",
		Short: "Prepare and maintain the bot's execution environment",
		Long: "neuron-setup bootstraps a remote environment for the NeuronDownloader bot " +
			"(Python dependencies and ffmpeg) and carries maintenance helpers for the same " +
			"deployment: a preflight doctor, cookie health checks and data cleanup.",
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogging()
		},
	}
)

// Execute runs the neuron-setup CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// configureLogging applies the --log-level flag or the LOG_LEVEL variable.
func configureLogging() {
	raw := logLevel
	if raw == "" {
		raw = os.Getenv(config.EnvLogLevel)
	}

	if level, ok := logger.ParseLogLevel(raw); ok {
		logger.SetLevel(level)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&settingsPath, "settings", "s",
		config.DefaultSettingsFilename, "path to the settings overlay file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l",
		"", "log level (overrides LOG_LEVEL)")
}
