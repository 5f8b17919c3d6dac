package bootstrap

import (
	"context"
	"fmt"

	"github.com/neurondownloader/neuron-setup/internal/logger"
)

// packagingTools are upgraded before the manifest install so source
// distributions in the manifest can build.
var packagingTools = []string{"pip", "setuptools"} //nolint:gochecknoglobals // Fixed tool list.

// upgradePackagingTools force-reinstalls the latest pip and setuptools.
// Some environments pre-provide adequate versions and the manifest install
// may succeed regardless, so failure here is swallowed and the installer's
// output is discarded.
func (b *runner) upgradePackagingTools(ctx context.Context) {
	logger.Info(ctx, "Upgrading packaging tools")

	args := append([]string{
		"install", "--upgrade", "--force-reinstall", "--break-system-packages",
	}, packagingTools...)

	if err := b.exec.RunQuiet(ctx, b.cfg.PipExecutable(), args...); err != nil {
		logger.Debugf(ctx, "Packaging tools upgrade failed, continuing: %v", err)
	}
}

// installManifest installs every dependency listed in the requirements
// manifest. The bot cannot function without them, so failure is fatal.
func (b *runner) installManifest(ctx context.Context) error {
	manifest := b.cfg.ManifestPath()

	logger.InfoKV(ctx, "Installing the dependency manifest", "manifest", manifest)

	err := b.exec.Run(ctx, b.cfg.PipExecutable(),
		"install", "--break-system-packages", "-r", manifest)
	if err != nil {
		return fmt.Errorf("install manifest %s: %w", manifest, err)
	}

	return nil
}
