package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	shellquote "github.com/kballard/go-shellquote"

	"github.com/blaziumdev/abb2apk/internal/aab2apk/domain"
	"github.com/blaziumdev/abb2apk/internal/aab2apk/logging"
)

// ExitSpawnFailure is reported when the process could not be started or was killed.
const ExitSpawnFailure = -1

// Command is a single invocation: a literal argv, never re-parsed by a shell.
type Command struct {
	Path string
	Args []string
	// Dir is the working directory; empty means inherit.
	Dir string
	// Env entries (KEY=VALUE) are appended to the current environment.
	Env []string
}

// String renders the command line with secrets masked, for logs.
func (c Command) String() string {
	argv := append([]string{c.Path}, c.Args...)
	for i, a := range argv {
		if strings.HasPrefix(a, "pass:") {
			argv[i] = "pass:***"
		}
	}
	return shellquote.Join(argv...)
}

// Runner executes commands synchronously.
type Runner interface {
	Run(ctx context.Context, c Command) domain.ProcessResult
}

// ExecRunner runs commands with os/exec and captures stdout/stderr.
type ExecRunner struct {
	Logger *logging.Logger
}

func New(logger *logging.Logger) *ExecRunner {
	return &ExecRunner{Logger: logger}
}

func (r *ExecRunner) Run(ctx context.Context, c Command) domain.ProcessResult {
	r.Logger.Debug("Running command", map[string]string{"command": c.String(), "dir": c.Dir})

	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	cmd.Dir = c.Dir
	if len(c.Env) > 0 {
		cmd.Env = append(os.Environ(), c.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := domain.ProcessResult{
		ExitCode: 0,
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
	}
	if err == nil {
		return result
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
	} else {
		result.ExitCode = ExitSpawnFailure
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("Failed to create process: %v", err))
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		result.ExitCode = ExitSpawnFailure
		result.Stderr = appendLine(result.Stderr, fmt.Sprintf("Process interrupted: %v", ctxErr))
	}

	r.Logger.Debug("Command failed", map[string]any{"command": c.Path, "exit_code": result.ExitCode})
	return result
}

// JavaCommand builds `java -jar <jar> args...`.
func JavaCommand(javaPath, jarPath string, javaArgs []string, dir string) Command {
	args := make([]string, 0, len(javaArgs)+2)
	args = append(args, "-jar", jarPath)
	args = append(args, javaArgs...)
	return Command{Path: javaPath, Args: args, Dir: dir}
}

// RunJava runs a jar with the given java executable.
func RunJava(ctx context.Context, r Runner, javaPath, jarPath string, javaArgs []string, dir string) domain.ProcessResult {
	return r.Run(ctx, JavaCommand(javaPath, jarPath, javaArgs, dir))
}

func appendLine(s, line string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s + line
	}
	return s + "\n" + line
}
