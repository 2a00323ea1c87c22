package runner

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrBinaryNotFound indicates the command binary could not be located in
	// PATH. Callers treat this differently from a command that ran and
	// failed.
	ErrBinaryNotFound = errors.New("binary not found")

	// ErrNonZeroExit indicates the command ran but exited with a non-zero
	// status. The wrapping error carries the stderr text.
	ErrNonZeroExit = errors.New("command exited with non-zero status")
)

func newNotFoundError(name string, cause error) error {
	return fmt.Errorf("%q: %w: %v", name, ErrBinaryNotFound, cause)
}

func newExitError(name string, res Result) error {
	msg := strings.TrimSpace(res.Stderr)
	if msg == "" {
		msg = strings.TrimSpace(res.Stdout)
	}
	return fmt.Errorf("%q exit %d: %w: %s", name, res.ExitCode, ErrNonZeroExit, msg)
}
