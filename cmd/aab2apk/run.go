package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/apkinfo"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/bundle"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/config"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/conversion"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/discovery"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/extract"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/logging"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/report"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/runner"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/signing"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/ui"
)

func run(ctx context.Context, cmd *cobra.Command, flags *config.Flags) error {
	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	finder := discovery.New()

	cfg, err := config.Load(cmd.Flags(), flags, finder.Env, finder)
	if err != nil {
		if flags.JSON {
			_ = report.WriteJSON(stdout, report.NewConversion(nil, err, 0, nil))
			return errReported
		}
		return err
	}

	printer := &report.Printer{Out: stdout, Err: stderr, Quiet: cfg.Quiet}

	switch {
	case cfg.ListTools:
		return listTools(cfg, finder, printer, stdout)
	case cfg.Check:
		return check(cfg, printer, stdout)
	}
	return convert(ctx, cfg, finder, printer, stdout, stderr)
}

func listTools(cfg *config.AppConfig, finder *discovery.Finder, printer *report.Printer, stdout io.Writer) error {
	tools := finder.Tools()
	if cfg.JavaPath != "" {
		tools.Java = cfg.JavaPath
	}
	if cfg.BundletoolPath != "" {
		tools.Bundletool = cfg.BundletoolPath
	}

	if cfg.JSON {
		return report.WriteJSON(stdout, report.NewTools(tools))
	}
	printer.Tools(tools)
	return nil
}

func check(cfg *config.AppConfig, printer *report.Printer, stdout io.Writer) error {
	manifest, err := bundle.ReadManifest(cfg.InputAAB)
	v := report.NewValidation(cfg.Config, manifest, err)

	if cfg.JSON {
		if err := report.WriteJSON(stdout, v); err != nil {
			return err
		}
	} else {
		printer.Validation(v)
	}

	if !v.OK() {
		return errReported
	}
	return nil
}

func convert(ctx context.Context, cfg *config.AppConfig, finder *discovery.Finder, printer *report.Printer, stdout, stderr io.Writer) error {
	var cancel context.CancelFunc
	if cfg.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
	} else {
		ctx, cancel = context.WithCancel(ctx)
	}
	defer cancel()

	useTUI := !cfg.NoTUI && !cfg.Verbose && !cfg.Quiet && isTerminal(stdout)

	// Structured logs are only useful while debugging a run.
	logger := logging.Discard()
	if cfg.Verbose {
		logger = logging.New(stderr, true)
	}
	logger.Debug("Configuration loaded", map[string]any{
		"input":      cfg.InputAAB,
		"output":     cfg.OutputDir,
		"mode":       cfg.Mode,
		"java":       cfg.JavaPath,
		"bundletool": cfg.BundletoolPath,
		"signing":    cfg.Signing != nil,
	})

	if cfg.Verbose {
		if m, err := bundle.ReadManifest(cfg.InputAAB); err == nil {
			logger.Debug("Bundle manifest", m)
		} else {
			logger.Warn("Could not read bundle manifest", err)
		}
	}

	r := runner.New(logger)
	extractor := extract.Select(cfg.Extractor, finder.Platform, r, exec.LookPath)
	logger.Debug("Selected extractor", extractor.Name())
	signer := signing.New(r, finder, logger)

	newConverter := func(rep conversion.Reporter) *conversion.Converter {
		return conversion.New(r, extractor, signer,
			conversion.WithLogger(logger),
			conversion.WithReporter(rep),
			conversion.WithTempRoot(finder.Platform.TempRoot(finder.Env)),
		)
	}

	start := time.Now()
	var (
		result *domain.Result
		err    error
	)
	if useTUI {
		title := fmt.Sprintf("aab2apk · %s (%s)", filepath.Base(cfg.InputAAB), cfg.Mode)
		result, err = ui.Run(ctx, cancel, stdout, title, ui.Steps(cfg.Signing != nil), func(rep conversion.Reporter) (*domain.Result, error) {
			return newConverter(rep).Convert(ctx, cfg.Config)
		})
	} else {
		rep := &report.LineReporter{Out: stdout, Mode: cfg.Mode, Verbose: cfg.Verbose, Quiet: cfg.Quiet}
		result, err = newConverter(rep).Convert(ctx, cfg.Config)
	}
	elapsed := time.Since(start)

	if err != nil && ctx.Err() != nil {
		err = fmt.Errorf("conversion interrupted: %w", err)
	}

	var info *apkinfo.Info
	if err == nil && cfg.Mode == domain.ModeUniversal && (cfg.JSON || cfg.Verbose) {
		if i, ierr := apkinfo.Inspect(result.APKs[0]); ierr == nil {
			info = i
		} else {
			logger.Warn("Could not inspect APK", ierr)
		}
	}

	if cfg.JSON {
		if werr := report.WriteJSON(stdout, report.NewConversion(result, err, elapsed, info)); werr != nil {
			return werr
		}
		if err != nil {
			return errReported
		}
		return nil
	}

	if cfg.ShowTiming {
		printer.Timing(elapsed)
	}
	if err != nil {
		printer.Error(err)
		return errReported
	}
	if info != nil && !cfg.Quiet {
		fmt.Fprintf(stdout, "Package: %s %s (%d)\n", info.PackageName, info.VersionName, info.VersionCode)
	}
	printer.Success(result)
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
