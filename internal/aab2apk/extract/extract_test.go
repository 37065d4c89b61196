package extract

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/platform"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/runner"
)

func writeZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create zip: %v", err)
	}
	defer f.Close()

	w := zip.NewWriter(f)
	for name, body := range entries {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("create entry: %v", err)
		}
		fw.Write([]byte(body))
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
}

type fakeRunner struct {
	calls  []runner.Command
	result domain.ProcessResult
	onRun  func(c runner.Command)
}

func (f *fakeRunner) Run(_ context.Context, c runner.Command) domain.ProcessResult {
	f.calls = append(f.calls, c)
	if f.onRun != nil {
		f.onRun(c)
	}
	return f.result
}

func TestNativeExtractor(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "output.apks")
	writeZip(t, archive, map[string]string{
		"toc.pb":                 "toc",
		"splits/base-master.apk": "master",
		"splits/base-arm64.apk":  "arm64",
	})

	dest := filepath.Join(tmpDir, "extracted")
	if err := (NativeExtractor{}).Extract(context.Background(), archive, dest); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dest, "splits", "base-master.apk"))
	if err != nil || string(got) != "master" {
		t.Errorf("Expected master split content, got %q (%v)", got, err)
	}
	if _, err := os.Stat(filepath.Join(dest, "toc.pb")); err != nil {
		t.Errorf("Expected toc.pb to be extracted: %v", err)
	}
}

func TestNativeExtractor_RejectsTraversal(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "evil.apks")
	writeZip(t, archive, map[string]string{"../outside.apk": "x"})

	err := (NativeExtractor{}).Extract(context.Background(), archive, filepath.Join(tmpDir, "out"))
	if err == nil || !strings.Contains(err.Error(), "escapes") {
		t.Errorf("Expected traversal error, got %v", err)
	}
	if _, statErr := os.Stat(filepath.Join(tmpDir, "outside.apk")); statErr == nil {
		t.Error("Entry was written outside the destination")
	}
}

func TestNativeExtractor_NotAZip(t *testing.T) {
	archive := filepath.Join(t.TempDir(), "broken.apks")
	os.WriteFile(archive, []byte("not a zip"), 0644)
	if err := (NativeExtractor{}).Extract(context.Background(), archive, t.TempDir()); err == nil {
		t.Error("Expected error for a non-zip archive")
	}
}

func TestUnzipExtractor_Command(t *testing.T) {
	fr := &fakeRunner{}
	e := &UnzipExtractor{Runner: fr}
	if err := e.Extract(context.Background(), "/w/output.apks", "/w/extracted"); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	want := []string{"-q", "/w/output.apks", "-d", "/w/extracted"}
	got := fr.calls[0]
	if got.Path != "unzip" || strings.Join(got.Args, " ") != strings.Join(want, " ") {
		t.Errorf("Unexpected command: %+v", got)
	}

	fr.result = domain.ProcessResult{ExitCode: 9, Stderr: "cannot find zipfile"}
	err := e.Extract(context.Background(), "/w/output.apks", "/w/extracted")
	if err == nil || !strings.Contains(err.Error(), "cannot find zipfile") {
		t.Errorf("Expected failure carrying stderr, got %v", err)
	}
}

func TestPowerShellExtractor_CopiesToZip(t *testing.T) {
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "output.apks")
	os.WriteFile(archive, []byte("PK"), 0644)
	zipCopy := filepath.Join(tmpDir, "output.zip")

	var copyExisted bool
	fr := &fakeRunner{onRun: func(c runner.Command) {
		_, err := os.Stat(zipCopy)
		copyExisted = err == nil
	}}
	e := &PowerShellExtractor{Runner: fr}
	if err := e.Extract(context.Background(), archive, filepath.Join(tmpDir, "it's here")); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if !copyExisted {
		t.Error("Expected .zip copy to exist while powershell runs")
	}
	if _, err := os.Stat(zipCopy); err == nil {
		t.Error("Expected .zip copy to be removed afterwards")
	}
	script := fr.calls[0].Args[len(fr.calls[0].Args)-1]
	if !strings.Contains(script, "Expand-Archive -Path '"+zipCopy+"'") || !strings.Contains(script, "it''s here") {
		t.Errorf("Unexpected script: %s", script)
	}
}

func TestSelect(t *testing.T) {
	found := func(string) (string, error) { return "/usr/bin/unzip", nil }
	missing := func(string) (string, error) { return "", errors.New("not found") }

	tests := []struct {
		name     string
		kind     Kind
		platform platform.Platform
		lookPath func(string) (string, error)
		want     string
	}{
		{"Auto Unix With Unzip", KindAuto, platform.Unix(), found, "unzip"},
		{"Auto Unix Without Unzip", KindAuto, platform.Unix(), missing, "native"},
		{"Auto Windows", KindAuto, platform.Windows(), found, "powershell"},
		{"Forced Native", KindNative, platform.Unix(), found, "native"},
		{"Forced System", KindSystem, platform.Unix(), missing, "unzip"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Select(tt.kind, tt.platform, &fakeRunner{}, tt.lookPath)
			if got.Name() != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got.Name())
			}
		})
	}
}

func TestParseKind(t *testing.T) {
	if k, err := ParseKind(""); err != nil || k != KindAuto {
		t.Errorf("Expected empty to mean auto, got %s %v", k, err)
	}
	if k, err := ParseKind("NATIVE"); err != nil || k != KindNative {
		t.Errorf("Expected native, got %s %v", k, err)
	}
	if _, err := ParseKind("7zip"); err == nil {
		t.Error("Expected error for unknown extractor")
	}
}

func TestUnzipExtractor_Real(t *testing.T) {
	if _, err := exec.LookPath("unzip"); err != nil {
		t.Skip("unzip not installed")
	}
	tmpDir := t.TempDir()
	archive := filepath.Join(tmpDir, "output.apks")
	writeZip(t, archive, map[string]string{"universal.apk": "u"})

	dest := filepath.Join(tmpDir, "extracted")
	os.Mkdir(dest, 0755)
	e := &UnzipExtractor{Runner: runner.New(nil)}
	if err := e.Extract(context.Background(), archive, dest); err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "universal.apk")); err != nil {
		t.Errorf("Expected universal.apk: %v", err)
	}
}
