package runner

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/logging"
)

func TestRun_Success(t *testing.T) {
	r := New(logging.Discard())
	// Use 'echo' as a portable command
	res := r.Run(context.Background(), Command{Path: "echo", Args: []string{"hello"}})
	if !res.Success() {
		t.Fatalf("Run failed: %+v", res)
	}
	if !strings.Contains(res.Stdout, "hello") {
		t.Errorf("Expected 'hello' in output, got: %q", res.Stdout)
	}
}

func TestRun_ExitCodeAndStderr(t *testing.T) {
	r := New(logging.Discard())
	res := r.Run(context.Background(), Command{Path: "sh", Args: []string{"-c", "echo oops >&2; exit 3"}})
	if res.ExitCode != 3 {
		t.Errorf("Expected exit code 3, got %d", res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "oops") {
		t.Errorf("Expected stderr to be captured, got %q", res.Stderr)
	}
}

func TestRun_LiteralArguments(t *testing.T) {
	r := New(logging.Discard())
	arg := "it's a $HOME `test`"
	res := r.Run(context.Background(), Command{Path: "printf", Args: []string{"%s", arg}})
	if res.Stdout != arg {
		t.Errorf("Expected argument passed verbatim, got %q", res.Stdout)
	}
}

func TestRun_WorkingDirAndEnv(t *testing.T) {
	dir := t.TempDir()
	r := New(logging.Discard())
	res := r.Run(context.Background(), Command{
		Path: "sh",
		Args: []string{"-c", "pwd; echo $AAB2APK_TEST"},
		Dir:  dir,
		Env:  []string{"AAB2APK_TEST=marker"},
	})
	if !res.Success() {
		t.Fatalf("Run failed: %+v", res)
	}
	resolved, _ := filepath.EvalSymlinks(dir)
	if !strings.Contains(res.Stdout, resolved) && !strings.Contains(res.Stdout, dir) {
		t.Errorf("Expected working dir %s in output, got %q", dir, res.Stdout)
	}
	if !strings.Contains(res.Stdout, "marker") {
		t.Errorf("Expected env var in output, got %q", res.Stdout)
	}
}

func TestRun_SpawnFailure(t *testing.T) {
	r := New(logging.Discard())
	res := r.Run(context.Background(), Command{Path: filepath.Join(os.TempDir(), "no-such-binary-999")})
	if res.ExitCode != ExitSpawnFailure {
		t.Errorf("Expected exit code %d, got %d", ExitSpawnFailure, res.ExitCode)
	}
	if !strings.Contains(res.Stderr, "Failed to create process") {
		t.Errorf("Expected explanatory stderr, got %q", res.Stderr)
	}
}

func TestRun_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	r := New(logging.Discard())
	res := r.Run(ctx, Command{Path: "sleep", Args: []string{"5"}})
	if res.Success() {
		t.Error("Expected timeout failure, got success")
	}
	if res.ExitCode != ExitSpawnFailure {
		t.Errorf("Expected exit code %d, got %d", ExitSpawnFailure, res.ExitCode)
	}
}

func TestJavaCommand(t *testing.T) {
	c := JavaCommand("/usr/bin/java", "/opt/bundletool.jar", []string{"build-apks", "--mode=universal"}, "/tmp/w")
	want := []string{"-jar", "/opt/bundletool.jar", "build-apks", "--mode=universal"}
	if c.Path != "/usr/bin/java" || c.Dir != "/tmp/w" {
		t.Errorf("Unexpected command: %+v", c)
	}
	if len(c.Args) != len(want) {
		t.Fatalf("Args length mismatch: got %d, want %d", len(c.Args), len(want))
	}
	for i, v := range c.Args {
		if v != want[i] {
			t.Errorf("Arg[%d] mismatch: got %s, want %s", i, v, want[i])
		}
	}
}

func TestCommandString_MasksPasswords(t *testing.T) {
	c := Command{Path: "apksigner", Args: []string{"sign", "--ks-pass", "pass:hunter2", "my app.apk"}}
	s := c.String()
	if strings.Contains(s, "hunter2") {
		t.Errorf("Expected password to be masked, got %s", s)
	}
	if !strings.Contains(s, "'my app.apk'") {
		t.Errorf("Expected shell quoting, got %s", s)
	}
	if c.Args[2] != "pass:hunter2" {
		t.Error("String must not mutate the argument vector")
	}
}

type recordingRunner struct {
	got Command
}

func (r *recordingRunner) Run(_ context.Context, c Command) domain.ProcessResult {
	r.got = c
	return domain.ProcessResult{}
}

func TestRunJava_Delegates(t *testing.T) {
	rec := &recordingRunner{}
	RunJava(context.Background(), rec, "java", "bt.jar", []string{"version"}, "")
	if rec.got.Path != "java" || len(rec.got.Args) != 3 || rec.got.Args[2] != "version" {
		t.Errorf("Unexpected delegated command: %+v", rec.got)
	}
}
