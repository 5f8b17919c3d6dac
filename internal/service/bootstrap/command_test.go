package bootstrap

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/neurondownloader/neuron-setup/internal/config"
)

// fakeRunner records invocations instead of executing anything.
type fakeRunner struct {
	// paths maps executable names to resolved paths; absent names fail LookPath.
	paths map[string]string
	// failPrefixes maps joined command prefixes to forced errors.
	failPrefixes map[string]error
	// quiet and loud record RunQuiet and Run invocations in order.
	quiet [][]string
	loud  [][]string
}

var errLookPathMiss = errors.New("executable not found")

func (f *fakeRunner) LookPath(file string) (string, error) {
	if path, ok := f.paths[file]; ok {
		return path, nil
	}

	return "", errLookPathMiss
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) error {
	command := append([]string{name}, args...)
	f.loud = append(f.loud, command)

	return f.forcedError(command)
}

func (f *fakeRunner) RunQuiet(_ context.Context, name string, args ...string) error {
	command := append([]string{name}, args...)
	f.quiet = append(f.quiet, command)

	return f.forcedError(command)
}

func (f *fakeRunner) forcedError(command []string) error {
	joined := strings.Join(command, " ")
	for prefix, err := range f.failPrefixes {
		if strings.HasPrefix(joined, prefix) {
			return err
		}
	}

	return nil
}

// newTestRunner builds a runner rooted in a temp project directory.
func newTestRunner(t *testing.T, fake *fakeRunner) *runner {
	t.Helper()

	root := t.TempDir()

	// Restore the working directory the test started in; run() chdirs away.
	previous, err := os.Getwd()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, os.Chdir(previous))
	})

	return &runner{
		cfg:  &config.Config{ProjectRoot: root},
		exec: fake,
	}
}

// TestRunGateClosed checks that any value other than the exact sentinel makes
// the whole command a no-op even when the rest of the environment is broken.
func TestRunGateClosed(t *testing.T) {
	for _, value := range []string{"", "TRUE", "True", "1", "yes", " true"} {
		t.Setenv(config.EnvRemote, value)
		t.Setenv(config.EnvProjectRoot, "")

		require.NoError(t, Run(context.Background(), &Options{}), "gate value %q", value)
	}
}

// TestRunMissingProjectRoot checks that the gate being open without a project
// root is fatal.
func TestRunMissingProjectRoot(t *testing.T) {
	t.Setenv(config.EnvRemote, config.RemoteSentinel)
	t.Setenv(config.EnvProjectRoot, "")

	err := Run(context.Background(), &Options{
		SettingsPath: filepath.Join(t.TempDir(), "absent.yaml"),
	})
	require.ErrorIs(t, err, config.ErrProjectRootNotSet)
}

// TestWorkflowHappyPath checks command order with ffmpeg already present:
// quiet packaging upgrade, manifest install, no apt commands at all.
func TestWorkflowHappyPath(t *testing.T) {
	fake := &fakeRunner{
		paths: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
	}
	b := newTestRunner(t, fake)

	require.NoError(t, b.run(context.Background()))

	require.Len(t, fake.quiet, 1)
	require.Equal(t,
		[]string{"pip3", "install", "--upgrade", "--force-reinstall", "--break-system-packages", "pip", "setuptools"},
		fake.quiet[0])

	require.Len(t, fake.loud, 1)
	require.Equal(t,
		[]string{"pip3", "install", "--break-system-packages", "-r", "requirements.txt"},
		fake.loud[0])

	// Marker is removed after the run.
	_, err := os.Stat(filepath.Join(b.cfg.ProjectRoot, MarkerFilename))
	require.ErrorIs(t, err, os.ErrNotExist)
}

// TestUpgradeFailureIsSwallowed checks that a failed packaging-tool upgrade
// still proceeds to the manifest install.
func TestUpgradeFailureIsSwallowed(t *testing.T) {
	fake := &fakeRunner{
		paths:        map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
		failPrefixes: map[string]error{"pip3 install --upgrade": errors.New("network down")},
	}
	b := newTestRunner(t, fake)

	require.NoError(t, b.run(context.Background()))
	require.Len(t, fake.loud, 1, "manifest install must still run")
}

// TestManifestFailureAborts checks that a failed manifest install is fatal
// and the binary-ensure step never runs.
func TestManifestFailureAborts(t *testing.T) {
	installError := errors.New("bad manifest entry")
	fake := &fakeRunner{
		paths:        map[string]string{"ffmpeg": "/usr/bin/ffmpeg", "apt-get": "/usr/bin/apt-get"},
		failPrefixes: map[string]error{"pip3 install --break-system-packages": installError},
	}
	b := newTestRunner(t, fake)

	require.ErrorIs(t, b.run(context.Background()), installError)

	for _, command := range fake.loud {
		require.NotEqual(t, "apt-get", command[0], "binary-ensure must not run")
	}
}

// TestFFmpegInstallViaApt checks the index refresh and quiet install when
// ffmpeg is absent but apt is available.
func TestFFmpegInstallViaApt(t *testing.T) {
	fake := &fakeRunner{
		paths: map[string]string{"apt-get": "/usr/bin/apt-get"},
	}
	b := newTestRunner(t, fake)
	b.cfg.Settings.ExtraAptPackages = []string{"ffmpeg-doc"}

	require.NoError(t, b.run(context.Background()))

	require.Len(t, fake.loud, 3)
	require.Equal(t, []string{"apt-get", "update", "-qq"}, fake.loud[1])
	require.Equal(t, []string{"apt-get", "install", "-qq", "-y", "ffmpeg", "ffmpeg-doc"}, fake.loud[2])
}

// TestFFmpegIdempotence checks that a second run with ffmpeg resolvable
// issues no apt commands.
func TestFFmpegIdempotence(t *testing.T) {
	fake := &fakeRunner{
		paths: map[string]string{"ffmpeg": "/usr/bin/ffmpeg", "apt-get": "/usr/bin/apt-get"},
	}
	b := newTestRunner(t, fake)

	require.NoError(t, b.run(context.Background()))
	require.NoError(t, b.run(context.Background()))

	for _, command := range fake.loud {
		require.NotEqual(t, "apt-get", command[0])
	}
}

// TestMarkerBlocksConcurrentRun checks that a fresh marker refuses a second
// bootstrap against the same project root.
func TestMarkerBlocksConcurrentRun(t *testing.T) {
	fake := &fakeRunner{
		paths: map[string]string{"ffmpeg": "/usr/bin/ffmpeg"},
	}
	b := newTestRunner(t, fake)

	require.NoError(t, os.WriteFile(
		filepath.Join(b.cfg.ProjectRoot, MarkerFilename), nil, 0o600))

	require.ErrorIs(t, b.run(context.Background()), errBootstrapAlreadyRunning)
	require.Empty(t, fake.quiet)
	require.Empty(t, fake.loud)
}

// TestFFmpegFallback checks the static-binary path: no ffmpeg, no apt, a
// configured fallback URL with a matching checksum installs the binary.
func TestFFmpegFallback(t *testing.T) {
	payload := []byte("#!/bin/sh\nexit 0\n")

	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write(payload)
		}))
	defer server.Close()

	digest := sha512.Sum512(payload)
	installDir := t.TempDir()

	fake := &fakeRunner{}
	b := newTestRunner(t, fake)
	b.cfg.Settings.FFmpegFallbackURL = server.URL
	b.cfg.Settings.FFmpegFallbackChecksum = base64.StdEncoding.EncodeToString(digest[:])
	b.cfg.Settings.FFmpegInstallDir = installDir

	require.NoError(t, b.run(context.Background()))

	installed, err := os.ReadFile(filepath.Join(installDir, "ffmpeg"))
	require.NoError(t, err)
	require.Equal(t, payload, installed)
}

// TestFFmpegFallbackChecksumMismatch checks that a corrupted download is fatal.
func TestFFmpegFallbackChecksumMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(
		func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("tampered"))
		}))
	defer server.Close()

	digest := sha512.Sum512([]byte("expected"))

	fake := &fakeRunner{}
	b := newTestRunner(t, fake)
	b.cfg.Settings.FFmpegFallbackURL = server.URL
	b.cfg.Settings.FFmpegFallbackChecksum = base64.StdEncoding.EncodeToString(digest[:])
	b.cfg.Settings.FFmpegInstallDir = t.TempDir()

	require.Error(t, b.run(context.Background()))
}
