package bootstrap

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/neurondownloader/neuron-setup/internal/logger"
)

const (
	// MarkerFilename marks that a bootstrap is running right now to avoid
	// parallel execution against the same package database.
	MarkerFilename = "neuron-setup-marker.bin"

	// markerLifetime is the period after which a stale marker is ignored.
	// Manifest installs can legitimately take minutes on a cold cache.
	markerLifetime = 10 * time.Minute

	// selfExecutable is the process name killed during stale-marker recovery.
	selfExecutable = "neuron-setup"
)

// isBootstrapRunningNow checks presence of a marker file and attempts
// recovery if it looks stale.
func isBootstrapRunningNow(ctx context.Context) bool {
	logger.Debug(ctx, "Checking for the presence of a bootstrap marker")

	fileInfo, err := os.Stat(MarkerFilename)
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The bootstrap marker is too old, attempting cleanup")

		if err = terminateProcessByName(selfExecutable); err != nil {
			return true
		}

		if err = os.Remove(MarkerFilename); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		return false
	}

	logger.Infof(ctx, "Unable to read bootstrap marker: %v", err)

	return false
}

// terminateProcessByName tries to kill processes with the provided executable
// name, skipping the current one.
func terminateProcessByName(processName string) error {
	processList, err := ps.Processes()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != processName {
			continue
		}

		var runningProcess *os.Process

		runningProcess, err = os.FindProcess(process.Pid())
		if err != nil {
			return err
		}

		if err = runningProcess.Kill(); err != nil {
			return err
		}
	}

	return nil
}
