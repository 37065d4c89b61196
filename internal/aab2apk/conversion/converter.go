package conversion

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/extract"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/fsutil"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/logging"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/platform"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/runner"
)

var (
	ErrOutputDir         = errors.New("failed to create output directory")
	ErrBundletoolMissing = errors.New("bundletool.jar not found")
	ErrBundletoolFailed  = errors.New("bundletool execution failed")
	ErrArchiveMissing    = errors.New("bundletool did not generate output file")
	ErrExtractFailed     = errors.New("failed to extract APKs from .apks file")
	ErrNoAPKs            = errors.New("no APK files found in extracted .apks file")
)

// ToolError reports a non-zero exit from an external tool along with its diagnostics.
type ToolError struct {
	Err      error
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("%v (exit code %d)", e.Err, e.ExitCode)
	if e.Stderr != "" {
		msg += "\n" + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error { return e.Err }

// APKSigner is the part of signing.Signer the converter needs.
type APKSigner interface {
	SignAPK(ctx context.Context, apkPath string, cfg domain.SigningConfig) error
	SignAPKs(ctx context.Context, target string, cfg domain.SigningConfig) error
}

// Reporter receives progress as the conversion moves through its steps.
type Reporter interface {
	StepStarted(step domain.Step)
	StepFinished(step domain.Step, err error)
}

type NopReporter struct{}

func (NopReporter) StepStarted(domain.Step)         {}
func (NopReporter) StepFinished(domain.Step, error) {}

// Converter turns one .aab into APKs by driving bundletool.
type Converter struct {
	runner    runner.Runner
	extractor extract.Extractor
	signer    APKSigner
	tempRoot  string
	logger    *logging.Logger
	reporter  Reporter
}

type Option func(*Converter)

func WithReporter(r Reporter) Option {
	return func(c *Converter) { c.reporter = r }
}

func WithLogger(l *logging.Logger) Option {
	return func(c *Converter) { c.logger = l }
}

// WithTempRoot sets where the per-conversion workspace is created. The
// default is the OS temp directory.
func WithTempRoot(dir string) Option {
	return func(c *Converter) { c.tempRoot = dir }
}

func New(r runner.Runner, e extract.Extractor, s APKSigner, opts ...Option) *Converter {
	c := &Converter{
		runner:    r,
		extractor: e,
		signer:    s,
		tempRoot:  platform.Current().TempRoot(platform.OSEnv{}),
		reporter:  NopReporter{},
		logger:    logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Convert runs a whole conversion. The temporary workspace it creates is
// removed before Convert returns, whatever the outcome.
func (c *Converter) Convert(ctx context.Context, cfg domain.Config) (*domain.Result, error) {
	var tempDir string
	err := c.step(domain.StepPrepare, func() error {
		if err := fsutil.CreateDirectories(cfg.OutputDir); err != nil {
			return fmt.Errorf("%w %s: %w", ErrOutputDir, cfg.OutputDir, err)
		}
		dir, err := fsutil.CreateTempDirectory(c.tempRoot)
		if err != nil {
			return err
		}
		tempDir = dir
		return nil
	})
	if err != nil {
		return nil, err
	}
	defer fsutil.RemoveTempDirectory(tempDir)

	c.logger.Debug("Created workspace", map[string]string{"dir": tempDir})

	var apks []string
	switch cfg.Mode {
	case domain.ModeUniversal:
		apks, err = c.convertUniversal(ctx, cfg, tempDir)
	case domain.ModeSplit:
		apks, err = c.convertSplit(ctx, cfg, tempDir)
	default:
		err = fmt.Errorf("unsupported mode: %s", cfg.Mode)
	}
	if err != nil {
		return nil, err
	}

	if cfg.Signing != nil {
		err = c.step(domain.StepSign, func() error {
			if cfg.Mode == domain.ModeUniversal {
				return c.signer.SignAPK(ctx, apks[0], *cfg.Signing)
			}
			return c.signer.SignAPKs(ctx, cfg.OutputDir, *cfg.Signing)
		})
		if err != nil {
			return nil, err
		}
	}

	c.logger.Info("Conversion finished", map[string]any{"output_dir": cfg.OutputDir, "apks": len(apks)})
	return &domain.Result{OutputDir: cfg.OutputDir, APKs: apks}, nil
}

// UniversalAPKPath is where universal mode places its single APK.
func UniversalAPKPath(cfg domain.Config) string {
	base := filepath.Base(cfg.InputAAB)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(cfg.OutputDir, stem+".apk")
}

func (c *Converter) convertUniversal(ctx context.Context, cfg domain.Config, tempDir string) ([]string, error) {
	extracted, err := c.buildAndExtract(ctx, cfg, tempDir)
	if err != nil {
		return nil, err
	}

	dest := UniversalAPKPath(cfg)
	err = c.step(domain.StepCollect, func() error {
		found, err := fsutil.FindFiles(extracted, ".apk")
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return ErrNoAPKs
		}
		if err := fsutil.MoveFile(found[0], dest); err != nil {
			return fmt.Errorf("failed to move APK to output directory: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return []string{dest}, nil
}

func (c *Converter) convertSplit(ctx context.Context, cfg domain.Config, tempDir string) ([]string, error) {
	extracted, err := c.buildAndExtract(ctx, cfg, tempDir)
	if err != nil {
		return nil, err
	}

	var copied []string
	err = c.step(domain.StepCollect, func() error {
		found, err := fsutil.FindFiles(extracted, ".apk")
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return ErrNoAPKs
		}

		seen := make(map[string]bool)
		for _, src := range found {
			dest := filepath.Join(cfg.OutputDir, filepath.Base(src))
			if err := fsutil.CopyFile(src, dest); err != nil {
				return fmt.Errorf("failed to copy APK %s: %w", filepath.Base(src), err)
			}
			if !seen[dest] {
				seen[dest] = true
				copied = append(copied, dest)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return copied, nil
}

// buildAndExtract runs bundletool into the workspace and unpacks the result,
// returning the extraction directory.
func (c *Converter) buildAndExtract(ctx context.Context, cfg domain.Config, tempDir string) (string, error) {
	apksPath := filepath.Join(tempDir, ApksFileName)

	err := c.step(domain.StepBuildApks, func() error {
		if !fsutil.FileExists(cfg.BundletoolPath) {
			return fmt.Errorf("%w: %s", ErrBundletoolMissing, cfg.BundletoolPath)
		}

		args, err := BuildApksArgs(fsutil.AbsolutePath(cfg.InputAAB), apksPath, cfg.Mode)
		if err != nil {
			return err
		}

		res := runner.RunJava(ctx, c.runner, cfg.JavaPath, cfg.BundletoolPath, args, tempDir)
		if !res.Success() {
			return &ToolError{Err: ErrBundletoolFailed, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(res.Stderr)}
		}
		if !fsutil.FileExists(apksPath) {
			return ErrArchiveMissing
		}
		return nil
	})
	if err != nil {
		return "", err
	}

	extractDir := filepath.Join(tempDir, "extracted")
	err = c.step(domain.StepExtract, func() error {
		if err := fsutil.CreateDirectories(extractDir); err != nil {
			return fmt.Errorf("failed to create extraction directory: %w", err)
		}
		if err := c.extractor.Extract(ctx, apksPath, extractDir); err != nil {
			return fmt.Errorf("%w (%s): %w", ErrExtractFailed, c.extractor.Name(), err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return extractDir, nil
}

func (c *Converter) step(step domain.Step, fn func() error) error {
	c.reporter.StepStarted(step)
	err := fn()
	c.reporter.StepFinished(step, err)
	if err != nil {
		c.logger.Error(string(step)+" failed", err)
	}
	return err
}
