package doctor

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/neurondownloader/neuron-setup/internal/config"
	"github.com/neurondownloader/neuron-setup/internal/logger"
	"github.com/neurondownloader/neuron-setup/internal/service/cookies"
)

// Options are inputs accepted by the doctor entry point.
type Options struct {
	// SettingsPath is the optional path to the settings overlay YAML file.
	SettingsPath string
}

// Check is one verified fact about the environment.
type Check struct {
	// Name identifies the check in the report.
	Name string
	// Required marks checks whose failure fails the whole doctor run.
	Required bool
	// OK is the outcome.
	OK bool
	// Detail is a resolved path or a failure explanation.
	Detail string
}

// ErrUnhealthy is returned when at least one required check failed.
var ErrUnhealthy = errors.New("environment is not healthy")

// lookPathFunc resolves a binary on the search path; swappable in tests.
type lookPathFunc func(file string) (string, error)

// Run verifies the deployment the bot is about to start in: required and
// optional binaries, the data directory, and cookie health. It writes
// nothing except a short-lived writability probe.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "doctor")

	cfg, err := config.FromEnv(opts.SettingsPath)
	if err != nil {
		return err
	}

	checks := diagnose(cfg, exec.LookPath, time.Now())

	healthy := true

	for _, check := range checks {
		switch {
		case check.OK:
			logger.InfoKV(ctx, "Check passed", "check", check.Name, "detail", check.Detail)
		case check.Required:
			healthy = false

			logger.ErrorKV(ctx, "Required check failed", "check", check.Name, "detail", check.Detail)
		default:
			logger.WarnKV(ctx, "Optional check failed", "check", check.Name, "detail", check.Detail)
		}
	}

	if !healthy {
		return ErrUnhealthy
	}

	logger.Info(ctx, "Environment is healthy")

	return nil
}

// diagnose runs every check and returns the full report.
func diagnose(cfg *config.Config, lookPath lookPathFunc, now time.Time) []Check {
	required := []string{"python3", cfg.PipExecutable(), "ffmpeg", "ffprobe"}
	optional := []string{"yt-dlp", cfg.AptExecutable()}

	checks := make([]Check, 0, len(required)+len(optional)+2)

	for _, binary := range required {
		checks = append(checks, binaryCheck(binary, true, lookPath))
	}

	for _, binary := range optional {
		checks = append(checks, binaryCheck(binary, false, lookPath))
	}

	checks = append(checks,
		dataDirCheck(cfg.DataDir),
		cookiesCheck(cfg.CookiesFile, now))

	return checks
}

// binaryCheck resolves one executable on the search path.
func binaryCheck(name string, required bool, lookPath lookPathFunc) Check {
	path, err := lookPath(name)
	if err != nil {
		return Check{Name: name, Required: required, Detail: "not found on PATH"}
	}

	return Check{Name: name, Required: required, OK: true, Detail: path}
}

// dataDirCheck verifies the data directory exists and is writable.
func dataDirCheck(dataDir string) Check {
	check := Check{Name: "data directory", Required: true, Detail: dataDir}

	info, err := os.Stat(dataDir)
	if err != nil || !info.IsDir() {
		check.Detail = fmt.Sprintf("%s is not a directory", dataDir)
		return check
	}

	probe := filepath.Join(dataDir, ".neuron-setup-probe")

	if err = os.WriteFile(probe, nil, 0o600); err != nil {
		check.Detail = fmt.Sprintf("%s is not writable: %v", dataDir, err)
		return check
	}

	_ = os.Remove(probe)
	check.OK = true

	return check
}

// cookiesCheck reports jar presence and Instagram session health.
// Cookie problems degrade downloads but do not prevent the bot from starting,
// so the check is optional.
func cookiesCheck(path string, now time.Time) Check {
	check := Check{Name: "cookie jar", Detail: path}

	report, err := cookies.Inspect(path, now)
	if err != nil {
		check.Detail = err.Error()
		return check
	}

	if !report.JarPresent {
		check.Detail = fmt.Sprintf("%s does not exist", path)
		return check
	}

	check.OK = report.InstagramSession != cookies.SessionExpired
	check.Detail = fmt.Sprintf("instagram session %s, youtube cookies present: %t",
		report.InstagramSession, report.YouTubePresent)

	return check
}
