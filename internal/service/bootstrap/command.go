package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/neurondownloader/neuron-setup/internal/config"
	"github.com/neurondownloader/neuron-setup/internal/logger"
)

var errBootstrapAlreadyRunning = errors.New("the bootstrap is already running")

// Options are inputs accepted by the bootstrap entry point.
type Options struct {
	// SettingsPath is the optional path to the settings overlay YAML file.
	SettingsPath string
}

// runner holds the state and helpers for a single bootstrap execution.
// It is intentionally unexported - call Run(ctx, Options) from callers.
type runner struct {
	cfg  *config.Config // Environment and overlay configuration.
	exec commandRunner  // Process execution, swappable in tests.
}

// Run executes the bootstrap and is the public entry point for the CLI.
// Outside the designated remote environment it is a complete no-op: the gate
// is checked before anything is read, written or executed.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "bootstrap")

	// Gate first: no side effects of any kind when this is not the remote
	// environment. Exact match only - "1" and "TRUE" do not count.
	if os.Getenv(config.EnvRemote) != config.RemoteSentinel {
		logger.Infof(ctx, "%s is not %q, nothing to do",
			config.EnvRemote, config.RemoteSentinel)

		return nil
	}

	cfg, err := config.FromEnv(opts.SettingsPath)
	if err != nil {
		return err
	}

	b := &runner{cfg: cfg, exec: systemRunner{}}

	return b.run(ctx)
}

// run executes the bootstrap workflow:
// 1) Switch into the project root.
// 2) Guard against a concurrent bootstrap via a marker file.
// 3) Upgrade the packaging tools (best effort).
// 4) Install the dependency manifest (fatal on failure).
// 5) Ensure ffmpeg is resolvable (fatal on failure).
func (b *runner) run(ctx context.Context) error {
	if err := b.enterProjectRoot(ctx); err != nil {
		return err
	}

	if isBootstrapRunningNow(ctx) {
		return errBootstrapAlreadyRunning
	}

	marker, err := os.Create(MarkerFilename)
	if err != nil {
		return fmt.Errorf("create bootstrap marker: %w", err)
	}

	if err = marker.Close(); err != nil {
		return fmt.Errorf("close bootstrap marker: %w", err)
	}

	defer b.removeMarker(ctx)

	b.upgradePackagingTools(ctx)

	if err = b.installManifest(ctx); err != nil {
		return err
	}

	if err = b.ensureFFmpeg(ctx); err != nil {
		return err
	}

	logger.Info(ctx, "Bootstrap completed")

	return nil
}

// enterProjectRoot switches the working directory to the configured project
// root. All later file-relative operations depend on it, so failure is fatal.
func (b *runner) enterProjectRoot(ctx context.Context) error {
	if b.cfg.ProjectRoot == "" {
		return config.ErrProjectRootNotSet
	}

	if err := os.Chdir(b.cfg.ProjectRoot); err != nil {
		return fmt.Errorf("enter project root: %w", err)
	}

	logger.InfoKV(ctx, "Working directory set", "path", b.cfg.ProjectRoot)

	return nil
}

// removeMarker deletes the bootstrap marker, logging instead of failing.
func (b *runner) removeMarker(ctx context.Context) {
	if err := os.Remove(MarkerFilename); err != nil {
		logger.Warnf(ctx, "Unable to remove bootstrap marker: %v", err)
	}
}
