package cleanup

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/neurondownloader/neuron-setup/internal/config"
	"github.com/neurondownloader/neuron-setup/internal/logger"
)

// Options are inputs accepted by the cleanup entry point.
type Options struct {
	// SettingsPath is the optional path to the settings overlay YAML file.
	SettingsPath string
	// Loop keeps sweeping every CleanupInterval until the context is canceled.
	Loop bool
}

// Result summarizes one sweep over the data directory.
type Result struct {
	// Removed is the number of deleted files.
	Removed int
	// Reclaimed is the total size of deleted files in bytes.
	Reclaimed uint64
}

// Run deletes stale files from the bot's data directory: everything older
// than the configured age except the database and log files.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "cleanup")

	cfg, err := config.FromEnv(opts.SettingsPath)
	if err != nil {
		return err
	}

	result, err := Sweep(ctx, cfg.DataDir, cfg.DBFilename, cfg.CleanupMaxAge, time.Now())
	if err != nil {
		return err
	}

	logResult(ctx, result)

	if !opts.Loop {
		return nil
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()

	logger.InfoKV(ctx, "Sweeping periodically", "interval", cfg.CleanupInterval.String())

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case now := <-ticker.C:
			result, err = Sweep(ctx, cfg.DataDir, cfg.DBFilename, cfg.CleanupMaxAge, now)
			if err != nil {
				logger.ErrorKV(ctx, "Sweep failed", "error", err)
				continue
			}

			logResult(ctx, result)
		}
	}
}

// Sweep walks dataDir once and removes files whose modification time is older
// than maxAge relative to now. The database file and log files are kept
// regardless of age. Files vanishing mid-walk are not an error: the bot may
// be deleting its own temporaries concurrently.
func Sweep(ctx context.Context, dataDir, dbFilename string, maxAge time.Duration, now time.Time) (*Result, error) {
	cutoff := now.Add(-maxAge)
	result := &Result{}

	err := filepath.WalkDir(dataDir, func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if entry.IsDir() || isProtected(entry.Name(), dbFilename) {
			return nil
		}

		info, infoErr := entry.Info()
		if infoErr != nil {
			if errors.Is(infoErr, fs.ErrNotExist) {
				return nil
			}

			return infoErr
		}

		if !info.ModTime().Before(cutoff) {
			return nil
		}

		if removeErr := os.Remove(path); removeErr != nil {
			if errors.Is(removeErr, fs.ErrNotExist) {
				return nil
			}

			logger.WarnKV(ctx, "Unable to remove stale file", "path", path, "error", removeErr)

			return nil
		}

		result.Removed++
		result.Reclaimed += uint64(info.Size())

		logger.DebugKV(ctx, "Removed stale file",
			"path", path, "size", humanize.Bytes(uint64(info.Size())))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// isProtected reports whether the filename must survive every sweep.
func isProtected(name, dbFilename string) bool {
	return name == dbFilename ||
		strings.HasSuffix(name, ".log") ||
		strings.HasSuffix(name, ".log.1")
}

// logResult reports a sweep outcome in humanized units.
func logResult(ctx context.Context, result *Result) {
	logger.InfoKV(ctx, "Sweep finished",
		"removed", result.Removed, "reclaimed", humanize.Bytes(result.Reclaimed))
}
