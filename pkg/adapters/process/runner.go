package process

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"time"
)

// Runner implements ports.Executor by running command lines through a POSIX shell.
// The command strings it receives are built with every user value quoted.
type Runner struct {
	shell   string
	baseDir string
	env     []string
	echo    io.Writer
	logger  *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithShell sets the shell used to interpret command lines. Defaults to /bin/sh.
func WithShell(shell string) RunnerOption {
	return func(r *Runner) {
		r.shell = shell
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithEnv adds KEY=VALUE pairs to the inherited environment.
func WithEnv(kv ...string) RunnerOption {
	return func(r *Runner) {
		r.env = append(r.env, kv...)
	}
}

// WithEcho mirrors the tool's output to w while it runs (e.g. os.Stderr for verbose CLI runs).
func WithEcho(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.echo = w
	}
}

// WithLogger sets the logger used for command tracing.
func WithLogger(l *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = l
	}
}

// NewRunner creates a new Process Runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		shell:  "/bin/sh",
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// ExitError is returned when the command cannot start or exits non-zero.
// Output holds everything the command printed.
type ExitError struct {
	Command  string
	Output   string
	ExitCode int // -1 if the process did not run to completion
	Err      error
}

func (e *ExitError) Error() string {
	out := strings.TrimSpace(e.Output)
	if out == "" {
		return fmt.Sprintf("command failed (exit code %d): %v", e.ExitCode, e.Err)
	}
	return fmt.Sprintf("command failed (exit code %d): %s", e.ExitCode, out)
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

// Execute runs command and returns its combined stdout and stderr.
// An in-flight command is not cancelled with ctx: it always runs to completion.
func (r *Runner) Execute(ctx context.Context, command string) (string, error) {
	cmd := exec.CommandContext(context.WithoutCancel(ctx), r.shell, "-c", command)
	cmd.Dir = r.baseDir
	if len(r.env) > 0 {
		cmd.Env = append(os.Environ(), r.env...)
	}

	var out bytes.Buffer
	var w io.Writer = &out
	if r.echo != nil {
		w = io.MultiWriter(&out, r.echo)
	}
	cmd.Stdout = w
	cmd.Stderr = w

	start := time.Now()
	r.logger.DebugContext(ctx, "executing command", "command", command)

	err := cmd.Run()
	output := out.String()

	if err != nil {
		code := -1
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			code = exitErr.ExitCode()
		}
		r.logger.DebugContext(ctx, "command failed", "command", command, "exit_code", code, "duration", time.Since(start))
		return output, &ExitError{Command: command, Output: output, ExitCode: code, Err: err}
	}

	r.logger.DebugContext(ctx, "command finished", "command", command, "duration", time.Since(start))
	return output, nil
}
