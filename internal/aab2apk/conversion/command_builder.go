package conversion

import (
	"fmt"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

// ApksFileName is the intermediate archive bundletool writes into the workspace.
const ApksFileName = "output.apks"

// BuildApksArgs constructs the bundletool arguments for a build-apks run.
func BuildApksArgs(bundlePath, outputPath string, mode domain.OutputMode) ([]string, error) {
	if bundlePath == "" {
		return nil, fmt.Errorf("bundle path is required")
	}
	if outputPath == "" {
		return nil, fmt.Errorf("output path is required")
	}

	var toolMode string
	switch mode {
	case domain.ModeUniversal:
		toolMode = "universal"
	case domain.ModeSplit:
		toolMode = "default"
	default:
		return nil, fmt.Errorf("unsupported mode: %s", mode)
	}

	return []string{
		"build-apks",
		"--bundle=" + bundlePath,
		"--output=" + outputPath,
		"--mode=" + toolMode,
	}, nil
}
