package cookies

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/neurondownloader/neuron-setup/internal/logger"
)

// watch re-inspects the jar whenever it changes on disk, logging only
// transitions. The parent directory is watched rather than the file itself
// so atomic replace (write temp + rename) keeps being observed.
func watch(ctx context.Context, path string, last *Report) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}

	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(path)
	if err = watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	target := filepath.Clean(path)

	logger.InfoKV(ctx, "Watching cookie jar", "path", target)

	for {
		select {
		case <-ctx.Done():
			logger.Info(ctx, "Context canceled, exiting")
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}

			if filepath.Clean(event.Name) != target {
				continue
			}

			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}

			report, inspectErr := Inspect(target, time.Now())
			if inspectErr != nil {
				logger.ErrorKV(ctx, "Cookie jar inspection failed", "error", inspectErr)
				continue
			}

			if report.Equal(last) {
				continue
			}

			last = report

			logReport(ctx, target, report)
		case watchErr, ok := <-watcher.Errors:
			if !ok {
				return nil
			}

			logger.ErrorKV(ctx, "Watcher error", "error", watchErr)
		}
	}
}
