// Package report renders conversion outcomes for humans and for scripts.
package report

import (
	"encoding/json"
	"io"
	"time"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/apkinfo"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/bundle"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/discovery"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Conversion is the JSON record for a conversion run.
type Conversion struct {
	Status        string        `json:"status"`
	Error         string        `json:"error,omitempty"`
	ExecutionTime float64       `json:"execution_time"`
	OutputDir     string        `json:"output_dir,omitempty"`
	APKs          []string      `json:"apks,omitempty"`
	Package       *apkinfo.Info `json:"package,omitempty"`
}

// NewConversion builds the record from the converter's outcome. info may be nil.
func NewConversion(result *domain.Result, err error, elapsed time.Duration, info *apkinfo.Info) Conversion {
	c := Conversion{
		Status:        StatusSuccess,
		ExecutionTime: Seconds(elapsed),
	}
	if err != nil {
		c.Status = StatusFailure
		c.Error = err.Error()
		return c
	}
	if result != nil {
		c.OutputDir = result.OutputDir
		c.APKs = result.APKs
	}
	c.Package = info
	return c
}

// Tools is the JSON record for --list-tools. Missing tools encode as null.
type Tools struct {
	Status string     `json:"status"`
	Tools  ToolsPaths `json:"tools"`
}

type ToolsPaths struct {
	Java       *string `json:"java"`
	Bundletool *string `json:"bundletool"`
	Apksigner  *string `json:"apksigner"`
}

func NewTools(t discovery.Tools) Tools {
	return Tools{
		Status: StatusSuccess,
		Tools: ToolsPaths{
			Java:       optional(t.Java),
			Bundletool: optional(t.Bundletool),
			Apksigner:  optional(t.Apksigner),
		},
	}
}

// Validation is the JSON record for --check.
type Validation struct {
	Status     string          `json:"status"`
	Error      string          `json:"error,omitempty"`
	Validation ValidationCheck `json:"validation"`
}

type ValidationCheck struct {
	InputAAB       string  `json:"input_aab"`
	Java           *string `json:"java"`
	Bundletool     *string `json:"bundletool"`
	SigningEnabled bool    `json:"signing_enabled"`
	Keystore       string  `json:"keystore,omitempty"`
	Package        string  `json:"package,omitempty"`
	VersionName    string  `json:"version,omitempty"`
	MinSDK         string  `json:"min_sdk,omitempty"`
	ManifestError  string  `json:"manifest_error,omitempty"`
}

// NewValidation summarizes a loaded config. manifest may be nil when the
// bundle manifest could not be read, which is reported but does not fail the
// check. A missing tool does.
func NewValidation(cfg domain.Config, manifest *bundle.Manifest, manifestErr error) Validation {
	v := Validation{
		Status: StatusSuccess,
		Validation: ValidationCheck{
			InputAAB:       cfg.InputAAB,
			Java:           optional(cfg.JavaPath),
			Bundletool:     optional(cfg.BundletoolPath),
			SigningEnabled: cfg.Signing != nil,
		},
	}
	if cfg.Signing != nil {
		v.Validation.Keystore = cfg.Signing.KeystorePath
	}
	if manifestErr != nil {
		v.Validation.ManifestError = manifestErr.Error()
	}
	if manifest != nil {
		v.Validation.Package = manifest.Package
		v.Validation.VersionName = manifest.VersionName
		v.Validation.MinSDK = manifest.MinSDK
	}

	switch {
	case cfg.JavaPath == "":
		v.Status, v.Error = StatusFailure, "Java executable not found"
	case cfg.BundletoolPath == "":
		v.Status, v.Error = StatusFailure, "bundletool.jar not found"
	}
	return v
}

// OK reports whether the check passed.
func (v Validation) OK() bool {
	return v.Status == StatusSuccess
}

// WriteJSON encodes v as indented JSON followed by a newline.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Seconds rounds d to milliseconds, as printed by --show-timing.
func Seconds(d time.Duration) float64 {
	return float64(d.Milliseconds()) / 1000
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
