package extract

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/fsutil"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/runner"
)

// UnzipExtractor shells out to Info-ZIP unzip.
type UnzipExtractor struct {
	Runner runner.Runner
}

func (e *UnzipExtractor) Name() string { return "unzip" }

func (e *UnzipExtractor) tool() string { return "unzip" }

func (e *UnzipExtractor) Extract(ctx context.Context, archive, destDir string) error {
	res := e.Runner.Run(ctx, runner.Command{
		Path: "unzip",
		Args: []string{"-q", archive, "-d", destDir},
		Dir:  filepath.Dir(archive),
	})
	if !res.Success() {
		return errors.Errorf("unzip exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// PowerShellExtractor uses Expand-Archive, which only accepts a .zip extension,
// so the archive is copied next to itself first.
type PowerShellExtractor struct {
	Runner runner.Runner
}

func (e *PowerShellExtractor) Name() string { return "powershell" }

func (e *PowerShellExtractor) tool() string { return "powershell.exe" }

func (e *PowerShellExtractor) Extract(ctx context.Context, archive, destDir string) error {
	zipCopy := strings.TrimSuffix(archive, filepath.Ext(archive)) + ".zip"
	if err := fsutil.CopyFile(archive, zipCopy); err != nil {
		return errors.Wrap(err, "failed to copy .apks file")
	}
	defer os.Remove(zipCopy)

	script := "Expand-Archive -Path " + psQuote(zipCopy) + " -DestinationPath " + psQuote(destDir) + " -Force"
	res := e.Runner.Run(ctx, runner.Command{
		Path: "powershell.exe",
		Args: []string{"-NoProfile", "-NonInteractive", "-Command", script},
		Dir:  filepath.Dir(archive),
	})
	if !res.Success() {
		return errors.Errorf("Expand-Archive exited with code %d: %s", res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return nil
}

// psQuote wraps s in single quotes, PowerShell's literal string form.
func psQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}
