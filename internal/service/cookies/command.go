package cookies

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/neurondownloader/neuron-setup/internal/config"
	"github.com/neurondownloader/neuron-setup/internal/cookiejar"
	"github.com/neurondownloader/neuron-setup/internal/logger"
)

// SessionStatus describes the Instagram sessionid cookie state.
type SessionStatus int

const (
	// SessionMissing means the jar holds no sessionid cookie at all.
	SessionMissing SessionStatus = iota
	// SessionValid means the sessionid cookie exists and has not expired.
	SessionValid
	// SessionExpired means the sessionid cookie exists but is past its expiry.
	SessionExpired
)

// String returns a short human-readable status name.
func (s SessionStatus) String() string {
	switch s {
	case SessionValid:
		return "valid"
	case SessionExpired:
		return "expired"
	default:
		return "missing"
	}
}

// instagramDomain and youtubeDomain are the domain parts the bot's
// downloads depend on.
const (
	instagramDomain = ".instagram.com"
	youtubeDomain   = "youtube.com"
	sessionCookie   = "sessionid"
)

// Report is the outcome of a single jar inspection.
type Report struct {
	// JarPresent is false when the cookie file does not exist.
	JarPresent bool
	// InstagramSession is the sessionid state; meaningless when !JarPresent.
	InstagramSession SessionStatus
	// YouTubePresent reports whether any youtube.com cookie exists.
	YouTubePresent bool
}

// Equal reports whether two inspections observed the same state.
func (r *Report) Equal(other *Report) bool {
	return other != nil &&
		r.JarPresent == other.JarPresent &&
		r.InstagramSession == other.InstagramSession &&
		r.YouTubePresent == other.YouTubePresent
}

// Options are inputs accepted by the cookies entry point.
type Options struct {
	// SettingsPath is the optional path to the settings overlay YAML file.
	SettingsPath string
	// Watch keeps the command running, re-inspecting the jar on file changes.
	Watch bool
}

// Inspect parses the jar at path and evaluates cookie health at the provided
// instant. A missing jar is a valid (if unhealthy) observation, not an error.
func Inspect(path string, now time.Time) (*Report, error) {
	cookies, err := cookiejar.Load(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Report{}, nil
		}

		return nil, err
	}

	report := &Report{
		JarPresent:     true,
		YouTubePresent: cookiejar.AnyForDomain(cookies, youtubeDomain),
	}

	if session, found := cookiejar.Find(cookies, instagramDomain, sessionCookie); found {
		report.InstagramSession = SessionValid
		if session.Expired(now) {
			report.InstagramSession = SessionExpired
		}
	}

	return report, nil
}

// Run inspects the cookie jar once, or continuously when watching.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "cookies")

	cfg, err := config.FromEnv(opts.SettingsPath)
	if err != nil {
		return err
	}

	report, err := Inspect(cfg.CookiesFile, time.Now())
	if err != nil {
		return err
	}

	logReport(ctx, cfg.CookiesFile, report)

	if !opts.Watch {
		return nil
	}

	return watch(ctx, cfg.CookiesFile, report)
}

// logReport writes one line per observed fact, warnings for unhealthy state.
func logReport(ctx context.Context, path string, report *Report) {
	if !report.JarPresent {
		logger.WarnKV(ctx, "Cookie jar not found", "path", path)
		return
	}

	switch report.InstagramSession {
	case SessionValid:
		logger.Info(ctx, "Instagram session cookie is valid")
	case SessionExpired:
		logger.Warn(ctx, "Instagram session cookie has expired, downloads will require a fresh login")
	case SessionMissing:
		logger.Warn(ctx, "No Instagram session cookie in the jar")
	}

	if report.YouTubePresent {
		logger.Info(ctx, "YouTube cookies are present")
	} else {
		logger.Warn(ctx, "No YouTube cookies in the jar")
	}
}
