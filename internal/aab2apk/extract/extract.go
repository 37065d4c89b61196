package extract

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/platform"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/runner"
)

// Extractor unpacks a zip archive (an .apks set) into a directory.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, archive, destDir string) error
}

// Kind selects the extractor implementation.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindSystem Kind = "system"
	KindNative Kind = "native"
)

func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(s)); k {
	case KindAuto, KindSystem, KindNative:
		return k, nil
	case "":
		return KindAuto, nil
	default:
		return "", fmt.Errorf("invalid extractor %q: must be auto, system or native", s)
	}
}

// Select picks the extractor once at startup. Auto prefers the platform's own
// unzip tool when it is on PATH and otherwise extracts in-process.
func Select(kind Kind, p platform.Platform, r runner.Runner, lookPath func(string) (string, error)) Extractor {
	if lookPath == nil {
		lookPath = exec.LookPath
	}

	system := systemExtractor(p, r)
	switch kind {
	case KindNative:
		return NativeExtractor{}
	case KindSystem:
		return system
	}

	if _, err := lookPath(system.tool()); err == nil {
		return system
	}
	return NativeExtractor{}
}

type toolExtractor interface {
	Extractor
	tool() string
}

func systemExtractor(p platform.Platform, r runner.Runner) toolExtractor {
	if p.IsWindows() {
		return &PowerShellExtractor{Runner: r}
	}
	return &UnzipExtractor{Runner: r}
}
