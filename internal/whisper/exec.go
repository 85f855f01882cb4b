package whisper

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Result holds the captured output of a finished process.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// runFn is the function type for running a command and capturing its output.
type runFn func(ctx context.Context, path string, args []string) (Result, error)

// Executor runs whisper.cpp commands with injectable dependencies.
type Executor struct {
	run runFn
}

// ExecutorOption configures an Executor.
type ExecutorOption func(*Executor)

// WithRun sets a custom run function (for testing).
func WithRun(fn runFn) ExecutorOption {
	return func(e *Executor) { e.run = fn }
}

// NewExecutor creates an Executor with the given options.
func NewExecutor(opts ...ExecutorOption) *Executor {
	e := &Executor{
		run: defaultRun,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run executes the binary and captures stdout, stderr and exit code.
// A non-zero exit is reported in Result.ExitCode, not as an error: callers
// decide from the produced files whether the run succeeded.
// The error is non-nil only when the process could not run or ctx was canceled.
func (e *Executor) Run(ctx context.Context, binPath string, args []string) (Result, error) {
	return e.run(ctx, binPath, args)
}

// defaultRun is the production implementation.
func defaultRun(ctx context.Context, binPath string, args []string) (Result, error) {
	cmd := exec.CommandContext(ctx, binPath, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return res, ctxErr
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
		return res, nil
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	default:
		return res, fmt.Errorf("run %s: %w", binPath, err)
	}
}

// CommandLine renders a command for diagnostics, quoting arguments with spaces.
func CommandLine(binPath string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{binPath}, args...) {
		if a == "" || strings.ContainsAny(a, " \t\"'") {
			a = strconv.Quote(a)
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
