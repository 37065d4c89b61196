package domain

import (
	"fmt"
	"strings"
)

// OutputMode selects the layout of the produced APKs
type OutputMode string

const (
	ModeUniversal OutputMode = "universal"
	ModeSplit     OutputMode = "split"
)

// ParseOutputMode accepts "universal" or "split" in any case.
func ParseOutputMode(s string) (OutputMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "universal":
		return ModeUniversal, nil
	case "split":
		return ModeSplit, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be 'universal' or 'split'", s)
	}
}

// SigningConfig holds the keystore triple handed to apksigner
type SigningConfig struct {
	KeystorePath     string
	KeystorePassword string
	KeyAlias         string
	KeyPassword      string
}

// Config is the validated conversion request. A nil Signing means the APKs are left unsigned.
type Config struct {
	InputAAB       string
	OutputDir      string
	Mode           OutputMode
	Signing        *SigningConfig
	BundletoolPath string
	JavaPath       string
	Verbose        bool
	Quiet          bool
}

// ProcessResult is what a single subprocess invocation produced
type ProcessResult struct {
	ExitCode int
	Stdout   string
	Stderr   string
}

func (r ProcessResult) Success() bool {
	return r.ExitCode == 0
}

// Result describes the files a conversion placed in the output directory
type Result struct {
	OutputDir string
	APKs      []string
}

// Step is one stage of a conversion
type Step string

const (
	StepPrepare   Step = "Preparing workspace"
	StepBuildApks Step = "Running bundletool"
	StepExtract   Step = "Extracting APK set"
	StepCollect   Step = "Collecting APKs"
	StepSign      Step = "Signing APKs"
)

// StepStatus represents the state of a conversion step
type StepStatus string

const (
	StatusPending StepStatus = "Pending"
	StatusRunning StepStatus = "Running"
	StatusSuccess StepStatus = "Success"
	StatusFailed  StepStatus = "Failed"
)
