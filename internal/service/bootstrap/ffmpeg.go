package bootstrap

import (
	"context"
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/neurondownloader/neuron-setup/internal/logger"

	// Ensure SHA512 is available for fallback checksum verification.
	_ "crypto/sha512"
)

const (
	// ffmpegBinary is the binary the bot's media splitting depends on.
	ffmpegBinary = "ffmpeg"

	// ffmpegPackage is the apt package providing ffmpeg and ffprobe.
	ffmpegPackage = "ffmpeg"

	// fallbackFileMode is the permission set on a fallback-installed binary.
	fallbackFileMode os.FileMode = 0o755

	// fallbackChecksumFunction verifies fallback downloads.
	fallbackChecksumFunction crypto.Hash = crypto.SHA512
)

var (
	errBadHTTPStatus    = errors.New("unexpected http status")
	errNoFallback       = errors.New("apt unavailable and no ffmpeg fallback configured")
	errHashUnavailable  = errors.New("hash function unavailable")
	errEmptyFallbackURL = errors.New("ffmpeg fallback URL is empty")
)

// ensureFFmpeg makes the ffmpeg binary resolvable. Present on PATH means no
// work and no network access. Otherwise the apt package index is refreshed
// quietly and the package installed non-interactively; when apt itself is
// missing, a configured static binary is downloaded and applied instead.
func (b *runner) ensureFFmpeg(ctx context.Context) error {
	if path, err := b.exec.LookPath(ffmpegBinary); err == nil {
		logger.InfoKV(ctx, "ffmpeg already present, skipping install", "path", path)
		return nil
	}

	if _, err := b.exec.LookPath(b.cfg.AptExecutable()); err != nil {
		logger.Warnf(ctx, "%s not found on PATH, trying static fallback", b.cfg.AptExecutable())
		return b.installFallbackFFmpeg(ctx)
	}

	logger.Info(ctx, "Refreshing the package index")

	if err := b.exec.Run(ctx, b.cfg.AptExecutable(), "update", "-qq"); err != nil {
		return fmt.Errorf("apt update: %w", err)
	}

	packages := append([]string{ffmpegPackage}, b.cfg.Settings.ExtraAptPackages...)
	args := append([]string{"install", "-qq", "-y"}, packages...)

	logger.InfoKV(ctx, "Installing system packages", "packages", packages)

	if err := b.exec.Run(ctx, b.cfg.AptExecutable(), args...); err != nil {
		return fmt.Errorf("apt install: %w", err)
	}

	return nil
}

// installFallbackFFmpeg downloads a static ffmpeg binary and applies it with
// optional checksum verification.
func (b *runner) installFallbackFFmpeg(ctx context.Context) error {
	settings := b.cfg.Settings
	if settings.FFmpegFallbackURL == "" {
		return errNoFallback
	}

	if !fallbackChecksumFunction.Available() {
		return errHashUnavailable
	}

	body, err := fetchFallbackBinary(ctx, settings.FFmpegFallbackURL)
	if body != nil {
		defer func() {
			_ = body.Close()
			_ = os.Remove(body.Name())
		}()
	}

	if err != nil {
		return err
	}

	installDir := settings.FFmpegInstallDir
	if installDir == "" {
		installDir = "/usr/local/bin"
	}

	targetPath := filepath.Join(installDir, ffmpegBinary)

	// go-update expects the target to exist before applying.
	if _, statErr := os.Stat(targetPath); statErr != nil && os.IsNotExist(statErr) {
		if _, createErr := os.Create(targetPath); createErr != nil {
			return fmt.Errorf("create fallback target: %w", createErr)
		}
	}

	options := goupdate.Options{
		TargetPath: targetPath,
		TargetMode: fallbackFileMode,
		Hash:       fallbackChecksumFunction,
	}

	if settings.FFmpegFallbackChecksum != "" {
		checksum, decodeErr := base64.StdEncoding.DecodeString(settings.FFmpegFallbackChecksum)
		if decodeErr != nil {
			return fmt.Errorf("decode fallback checksum: %w", decodeErr)
		}

		options.Checksum = checksum
	}

	logger.InfoKV(ctx, "Installing static ffmpeg build",
		"url", settings.FFmpegFallbackURL, "target", targetPath)

	if err = goupdate.Apply(body, options); err != nil {
		return fmt.Errorf("apply ffmpeg fallback: %w", err)
	}

	return nil
}

// fetchFallbackBinary downloads the fallback binary and returns its body reader.
func fetchFallbackBinary(ctx context.Context, rawURL string) (*os.File, error) {
	if rawURL == "" {
		return nil, errEmptyFallbackURL
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("build fallback request: %w", err)
	}

	response, err := http.DefaultClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("download fallback: %w", err)
	}

	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: %s: %s", errBadHTTPStatus, rawURL, response.Status)
	}

	// Spool to a temp file so go-update reads a seekable stream and a broken
	// connection surfaces here instead of mid-apply.
	tempFile, err := os.CreateTemp("", "neuron-setup-ffmpeg-")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	if _, err = tempFile.ReadFrom(response.Body); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())

		return nil, fmt.Errorf("save fallback: %w", err)
	}

	if _, err = tempFile.Seek(0, 0); err != nil {
		_ = tempFile.Close()
		_ = os.Remove(tempFile.Name())

		return nil, fmt.Errorf("rewind fallback: %w", err)
	}

	return tempFile, nil
}
