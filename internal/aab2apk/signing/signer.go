package signing

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/fsutil"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/logging"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/runner"
)

var (
	ErrSignerNotFound  = errors.New("apksigner not found. Please install Android SDK Build Tools or add it to PATH")
	ErrAPKMissing      = errors.New("APK file does not exist")
	ErrSigningFailed   = errors.New("APK signing failed")
	ErrApksUnsupported = errors.New("signing .apks files requires extraction; please sign individual APKs")
)

// Locator finds the apksigner executable.
type Locator interface {
	FindApksigner() (string, bool)
}

// Signer signs APKs in place with apksigner.
type Signer struct {
	runner  runner.Runner
	locator Locator
	logger  *logging.Logger
}

func New(r runner.Runner, locator Locator, logger *logging.Logger) *Signer {
	return &Signer{runner: r, locator: locator, logger: logger}
}

// BuildSignArgs returns the apksigner argument vector. Passwords are passed
// inline with apksigner's pass: syntax.
func BuildSignArgs(apkPath string, cfg domain.SigningConfig) []string {
	return []string{
		"sign",
		"--ks", cfg.KeystorePath,
		"--ks-pass", "pass:" + cfg.KeystorePassword,
		"--key-pass", "pass:" + cfg.KeyPassword,
		"--ks-key-alias", cfg.KeyAlias,
		apkPath,
	}
}

// SignAPK signs a single APK.
func (s *Signer) SignAPK(ctx context.Context, apkPath string, cfg domain.SigningConfig) error {
	apksigner, ok := s.locator.FindApksigner()
	if !ok {
		return ErrSignerNotFound
	}
	return s.sign(ctx, apksigner, apkPath, cfg)
}

// SignAPKs signs every *.apk directly inside a directory. All of them are
// attempted and every failure is returned, joined. An .apks archive is refused
// without running the signer, and any other path is signed as a single APK.
func (s *Signer) SignAPKs(ctx context.Context, target string, cfg domain.SigningConfig) error {
	if filepath.Ext(target) == ".apks" {
		s.logger.Warn("Refusing to sign APK set", map[string]string{"path": target})
		return fmt.Errorf("%w: %s", ErrApksUnsupported, target)
	}

	if !fsutil.IsDirectory(target) {
		return s.SignAPK(ctx, target, cfg)
	}

	entries, err := os.ReadDir(target)
	if err != nil {
		return fmt.Errorf("read %s: %w", target, err)
	}

	apksigner, ok := s.locator.FindApksigner()
	if !ok {
		return ErrSignerNotFound
	}

	var failures []error
	for _, e := range entries {
		if !e.Type().IsRegular() || filepath.Ext(e.Name()) != ".apk" {
			continue
		}
		if err := s.sign(ctx, apksigner, filepath.Join(target, e.Name()), cfg); err != nil {
			s.logger.Error("Failed to sign APK", err)
			failures = append(failures, err)
		}
	}

	if len(failures) > 0 {
		return fmt.Errorf("%d APK(s) failed to sign:\n%w", len(failures), stderrors.Join(failures...))
	}
	return nil
}

func (s *Signer) sign(ctx context.Context, apksigner, apkPath string, cfg domain.SigningConfig) error {
	if !fsutil.FileExists(apkPath) {
		return fmt.Errorf("%w: %s", ErrAPKMissing, apkPath)
	}

	s.logger.Debug("Signing APK", map[string]string{"apk": apkPath, "apksigner": apksigner})
	res := s.runner.Run(ctx, runner.Command{
		Path: apksigner,
		Args: BuildSignArgs(apkPath, cfg),
	})

	if !ClassifyResult(res) {
		detail := strings.TrimSpace(res.Stderr)
		if detail == "" {
			return fmt.Errorf("%w: %s (exit code %d)", ErrSigningFailed, filepath.Base(apkPath), res.ExitCode)
		}
		return fmt.Errorf("%w: %s: %s", ErrSigningFailed, filepath.Base(apkPath), detail)
	}
	return nil
}
