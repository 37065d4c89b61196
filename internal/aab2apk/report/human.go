package report

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/discovery"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
)

var (
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	labelStyle   = lipgloss.NewStyle().Bold(true)
)

// Printer writes human-readable status lines. Errors always go to Err;
// everything else is suppressed when Quiet is set.
type Printer struct {
	Out   io.Writer
	Err   io.Writer
	Quiet bool
}

func (p *Printer) Error(err error) {
	fmt.Fprintln(p.Err, errorStyle.Render("Error: "+err.Error()))
}

func (p *Printer) Success(result *domain.Result) {
	if p.Quiet || result == nil {
		return
	}
	fmt.Fprintln(p.Out, successStyle.Render("Successfully converted AAB to APK(s) in: "+result.OutputDir))
}

// Timing is printed whenever it was asked for, quiet or not.
func (p *Printer) Timing(elapsed time.Duration) {
	fmt.Fprintf(p.Out, "\nConversion completed in %.3f seconds\n", Seconds(elapsed))
}

func (p *Printer) Tools(t discovery.Tools) {
	fmt.Fprintln(p.Out, labelStyle.Render("Detected tools:"))
	fmt.Fprintln(p.Out)
	fmt.Fprintf(p.Out, "Java: %s\n", orNotFound(t.Java))
	fmt.Fprintf(p.Out, "bundletool: %s\n", orNotFound(t.Bundletool))
	fmt.Fprintf(p.Out, "apksigner: %s\n", orNotFound(t.Apksigner))
}

func (p *Printer) Validation(v Validation) {
	c := v.Validation
	if !v.OK() {
		p.Error(fmt.Errorf("validation failed: %s", v.Error))
	} else {
		fmt.Fprintln(p.Out, successStyle.Render("Validation successful:"))
	}
	fmt.Fprintf(p.Out, "  Input AAB: %s\n", c.InputAAB)
	if c.Package != "" {
		fmt.Fprintf(p.Out, "  Package: %s %s\n", c.Package, c.VersionName)
	}
	if c.ManifestError != "" {
		fmt.Fprintf(p.Out, "  Manifest: unreadable (%s)\n", c.ManifestError)
	}
	fmt.Fprintf(p.Out, "  Java: %s\n", orNotFound(deref(c.Java)))
	fmt.Fprintf(p.Out, "  bundletool: %s\n", orNotFound(deref(c.Bundletool)))
	if c.SigningEnabled {
		fmt.Fprintf(p.Out, "  Signing: Enabled (keystore: %s)\n", c.Keystore)
	} else {
		fmt.Fprintln(p.Out, "  Signing: Disabled")
	}
	if v.OK() {
		fmt.Fprintln(p.Out, "\nAll checks passed. Ready for conversion.")
	}
}

// LineReporter prints conversion progress one line at a time for
// non-interactive terminals.
type LineReporter struct {
	Out     io.Writer
	Mode    domain.OutputMode
	Verbose bool
	Quiet   bool
}

func (r *LineReporter) StepStarted(step domain.Step) {
	if r.Quiet {
		return
	}
	switch {
	case step == domain.StepBuildApks && r.Mode == domain.ModeSplit:
		fmt.Fprintln(r.Out, "Converting AAB to split APKs...")
	case step == domain.StepBuildApks:
		fmt.Fprintln(r.Out, "Converting AAB to universal APK...")
	case step == domain.StepSign:
		fmt.Fprintln(r.Out, "Signing APKs...")
	case r.Verbose:
		fmt.Fprintln(r.Out, mutedStyle.Render(string(step)+"..."))
	}
}

func (r *LineReporter) StepFinished(step domain.Step, err error) {
	if r.Quiet || !r.Verbose {
		return
	}
	if err != nil {
		fmt.Fprintln(r.Out, errorStyle.Render(string(step)+" failed"))
		return
	}
	fmt.Fprintln(r.Out, mutedStyle.Render(string(step)+" done"))
}

func orNotFound(s string) string {
	if s == "" {
		return "Not found"
	}
	return s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
