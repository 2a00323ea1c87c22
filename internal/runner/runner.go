// Package runner wraps external process execution behind a small interface so
// that services talking to the synchronization engine, remote shells, and
// copy utilities can be tested against a mock instead of real binaries.
package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os/exec"
)

//go:generate mockgen -source=runner.go -destination=../mock/runner_mock.go -package=mock

// Result captures a finished command invocation.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// Handle controls a long-lived streaming process started with Start.
type Handle interface {
	// Stdout is the process's standard output stream.
	Stdout() io.Reader

	// Stop terminates the process. Safe to call repeatedly and on a process
	// that has already exited.
	Stop()

	// Wait blocks until the process exits.
	Wait() error
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args and waits for completion. A missing binary
	// is reported as ErrBinaryNotFound; a non-zero exit is reported as an
	// error wrapping ErrNonZeroExit, with the Result still populated.
	Run(ctx context.Context, name string, args ...string) (Result, error)

	// Start launches name with args without waiting, for streaming
	// consumers.
	Start(ctx context.Context, name string, args ...string) (Handle, error)
}

type osRunner struct{}

// New returns a Runner backed by os/exec.
func New() Runner {
	return &osRunner{}
}

func (r *osRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}

	if err == nil {
		res.ExitCode = 0
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, newExitError(name, res)
	}
	if errors.Is(err, exec.ErrNotFound) {
		return res, newNotFoundError(name, err)
	}
	return res, err
}

func (r *osRunner) Start(ctx context.Context, name string, args ...string) (Handle, error) {
	cmd := exec.CommandContext(ctx, name, args...)

	out, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	cmd.Stderr = io.Discard

	if err = cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, newNotFoundError(name, err)
		}
		return nil, err
	}

	return &processHandle{cmd: cmd, stdout: out}, nil
}

type processHandle struct {
	cmd    *exec.Cmd
	stdout io.Reader
}

func (h *processHandle) Stdout() io.Reader { return h.stdout }

func (h *processHandle) Stop() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}

func (h *processHandle) Wait() error { return h.cmd.Wait() }
