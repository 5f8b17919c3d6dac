package bootstrap

import (
	"context"
	"io"
	"os"
	"os/exec"
)

// commandRunner abstracts process execution and PATH resolution so tests can
// substitute a recorder. The real installer commands print their own
// diagnostics; this tool adds no output layer of its own around them.
type commandRunner interface {
	// LookPath resolves an executable on the search path.
	LookPath(file string) (string, error)
	// Run executes a command inheriting this process's stdout/stderr.
	Run(ctx context.Context, name string, args ...string) error
	// RunQuiet executes a command with all output discarded.
	RunQuiet(ctx context.Context, name string, args ...string) error
}

// systemRunner executes commands against the real operating system.
type systemRunner struct{}

func (systemRunner) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (systemRunner) Run(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

func (systemRunner) RunQuiet(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = io.Discard
	cmd.Stderr = io.Discard

	return cmd.Run()
}
