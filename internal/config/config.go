package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment variable names consumed by the tool. The names without the
// NEURON_ prefix are shared with the bot itself and keep its spelling.
const (
	// EnvRemote gates the bootstrap: it runs only when the value is exactly
	// RemoteSentinel.
	EnvRemote = "NEURON_REMOTE"
	// EnvProjectRoot is the directory the bootstrap switches into before
	// installing anything.
	EnvProjectRoot = "NEURON_PROJECT_ROOT"
	// EnvDataDir is the bot's data directory holding downloads, logs and the database.
	EnvDataDir = "DATA_DIR"
	// EnvDBFilename is the bot database filename inside the data directory.
	EnvDBFilename = "DB_FILENAME"
	// EnvCookiesFile is the path to the Netscape-format cookie jar used by yt-dlp.
	EnvCookiesFile = "COOKIES_FILE"
	// EnvCleanupInterval is the pause between cleanup passes, in seconds.
	EnvCleanupInterval = "CLEANUP_INTERVAL_SECONDS"
	// EnvCleanupMaxAge is the age after which data files are deleted, in seconds.
	EnvCleanupMaxAge = "CLEANUP_MAX_AGE_SECONDS"
	// EnvLogLevel sets the logging level for all commands.
	EnvLogLevel = "LOG_LEVEL"
)

const (
	// RemoteSentinel is the exact gate value that enables the bootstrap.
	// Deliberately not a loose boolean parse: "1", "TRUE" and friends must
	// keep being treated as "not the remote environment".
	RemoteSentinel = "true"

	// DefaultSettingsFilename is the default filename for optional overrides.
	DefaultSettingsFilename = "neuron-setup-settings.yaml"

	// DefaultManifestFilename is the pip requirements manifest, relative to
	// the project root.
	DefaultManifestFilename = "requirements.txt"

	// DefaultDataDir mirrors the bot's default data directory.
	DefaultDataDir = "/workspace/NeuronDownloader/data"

	// DefaultDBFilename mirrors the bot's default database filename.
	DefaultDBFilename = "bot.db"

	// DefaultCookiesFilename mirrors the bot's default cookie jar path.
	DefaultCookiesFilename = "cookies.txt"

	// DefaultCleanupInterval is the default pause between cleanup passes.
	DefaultCleanupInterval = 600 * time.Second

	// DefaultCleanupMaxAge is the default age cutoff for data files.
	DefaultCleanupMaxAge = 18000 * time.Second

	// DefaultPipExecutable installs the Python dependency manifest.
	DefaultPipExecutable = "pip3"

	// DefaultAptExecutable installs system packages providing ffmpeg.
	DefaultAptExecutable = "apt-get"

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errSettingsNotSet is returned when a nil settings struct is provided.
	errSettingsNotSet = errors.New("settings are not set")
	// ErrProjectRootNotSet is returned when the project root variable is missing.
	ErrProjectRootNotSet = errors.New(EnvProjectRoot + " is not set")
)

// Config holds everything the subcommands read from the process environment,
// plus the optional YAML settings overlay.
type Config struct {
	// RemoteFlag is the raw value of the gate variable.
	RemoteFlag string
	// ProjectRoot is the bot checkout directory; required by the bootstrap only.
	ProjectRoot string
	// DataDir is the bot data directory.
	DataDir string
	// DBFilename is the bot database filename inside DataDir.
	DBFilename string
	// CookiesFile is the cookie jar path.
	CookiesFile string
	// CleanupInterval is the pause between cleanup passes.
	CleanupInterval time.Duration
	// CleanupMaxAge is the age cutoff for data files.
	CleanupMaxAge time.Duration
	// LogLevel is the raw LOG_LEVEL value.
	LogLevel string
	// Settings are the optional YAML overrides.
	Settings Settings
}

// Settings are optional installer overrides loaded from YAML. The zero value
// means "use defaults" for every field.
type Settings struct {
	// ManifestPath overrides the requirements manifest path, relative to the
	// project root unless absolute.
	ManifestPath string `yaml:"manifest_path"`
	// PipExecutable overrides the pip binary name.
	PipExecutable string `yaml:"pip_executable"`
	// AptExecutable overrides the apt binary name.
	AptExecutable string `yaml:"apt_executable"`
	// ExtraAptPackages are installed alongside ffmpeg when it is absent.
	ExtraAptPackages []string `yaml:"extra_apt_packages"`
	// FFmpegFallbackURL points at a static ffmpeg binary used when apt is
	// unavailable. Empty disables the fallback.
	FFmpegFallbackURL string `yaml:"ffmpeg_fallback_url"`
	// FFmpegFallbackChecksum is the base64-encoded SHA-512 checksum of the
	// fallback binary. Empty skips verification.
	FFmpegFallbackChecksum string `yaml:"ffmpeg_fallback_checksum"`
	// FFmpegInstallDir is where the fallback binary is placed.
	FFmpegInstallDir string `yaml:"ffmpeg_install_dir"`
}

// FromEnv reads the process environment into a Config and loads the optional
// settings overlay from settingsPath (empty means the default filename).
func FromEnv(settingsPath string) (*Config, error) {
	cleanupInterval, err := secondsFromEnv(EnvCleanupInterval, DefaultCleanupInterval)
	if err != nil {
		return nil, err
	}

	cleanupMaxAge, err := secondsFromEnv(EnvCleanupMaxAge, DefaultCleanupMaxAge)
	if err != nil {
		return nil, err
	}

	settings, err := LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	return &Config{
		RemoteFlag:      os.Getenv(EnvRemote),
		ProjectRoot:     os.Getenv(EnvProjectRoot),
		DataDir:         envOrDefault(EnvDataDir, DefaultDataDir),
		DBFilename:      envOrDefault(EnvDBFilename, DefaultDBFilename),
		CookiesFile:     envOrDefault(EnvCookiesFile, DefaultCookiesFilename),
		CleanupInterval: cleanupInterval,
		CleanupMaxAge:   cleanupMaxAge,
		LogLevel:        os.Getenv(EnvLogLevel),
		Settings:        *settings,
	}, nil
}

// IsRemote reports whether the gate variable carries the exact sentinel.
func (c *Config) IsRemote() bool {
	return c.RemoteFlag == RemoteSentinel
}

// ManifestPath returns the effective requirements manifest path.
func (c *Config) ManifestPath() string {
	if c.Settings.ManifestPath != "" {
		return c.Settings.ManifestPath
	}

	return DefaultManifestFilename
}

// PipExecutable returns the effective pip binary name.
func (c *Config) PipExecutable() string {
	if c.Settings.PipExecutable != "" {
		return c.Settings.PipExecutable
	}

	return DefaultPipExecutable
}

// AptExecutable returns the effective apt binary name.
func (c *Config) AptExecutable() string {
	if c.Settings.AptExecutable != "" {
		return c.Settings.AptExecutable
	}

	return DefaultAptExecutable
}

// LoadSettings reads the YAML overlay from the provided path and validates it.
// A missing file is not an error: defaults apply. An unreadable or invalid
// file is.
func LoadSettings(path string) (*Settings, error) {
	if path == "" {
		path = DefaultSettingsFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Settings{}, nil
		}

		return nil, fmt.Errorf("read settings: %w", err)
	}

	var settings Settings
	if err := yaml.Unmarshal(contents, &settings); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&settings); err != nil {
		return nil, err
	}

	return &settings, nil
}

// SaveSettings writes the settings overlay to the provided path.
func SaveSettings(path string, settings *Settings) error {
	if settings == nil {
		return errSettingsNotSet
	}

	if path == "" {
		path = DefaultSettingsFilename
	}

	if err := Validate(settings); err != nil {
		return err
	}

	data, err := yaml.Marshal(settings)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings overlay for well-formed optional fields.
func Validate(settings *Settings) error {
	if settings == nil {
		return errSettingsNotSet
	}

	if settings.FFmpegFallbackURL != "" {
		if _, err := url.ParseRequestURI(settings.FFmpegFallbackURL); err != nil {
			return fmt.Errorf("invalid ffmpeg fallback URL: %w", err)
		}
	}

	if settings.FFmpegFallbackChecksum != "" {
		if _, err := base64.StdEncoding.DecodeString(settings.FFmpegFallbackChecksum); err != nil {
			return fmt.Errorf("invalid ffmpeg fallback checksum: %w", err)
		}
	}

	return nil
}

// envOrDefault returns the variable's value or fallback when unset or blank.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}

	return fallback
}

// secondsFromEnv parses an integer-seconds variable into a duration.
func secondsFromEnv(name string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback, nil
	}

	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", name, err)
	}

	return time.Duration(seconds) * time.Second, nil
}
