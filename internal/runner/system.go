package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// Command describes one process invocation.
type Command struct {
	Name    string
	Args    []string
	Dir     string
	Timeout time.Duration
	// Capture collects stdout into Result.Stdout instead of streaming it.
	Capture bool
}

// Result is the outcome of a process that ran to completion.
type Result struct {
	ExitCode int
	Stdout   []byte
}

// System abstracts process execution so backends can be tested without docker.
// Run returns an error only when the process could not be started or was
// killed by its timeout; a non-zero exit is reported through Result.ExitCode.
type System interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// RealSystem runs commands with os/exec, streaming their output.
type RealSystem struct {
	Stdout io.Writer
	Stderr io.Writer
}

// ErrTimeout reports a command killed after exceeding its timeout.
var ErrTimeout = errors.New("command timed out")

// Run starts cmd and waits for it to finish.
func (s RealSystem) Run(ctx context.Context, cmd Command) (Result, error) {
	if cmd.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cmd.Timeout)
		defer cancel()
	}
	proc := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	proc.Dir = cmd.Dir
	proc.Stderr = s.stderr()

	var captured bytes.Buffer
	if cmd.Capture {
		proc.Stdout = &captured
	} else {
		proc.Stdout = s.stdout()
	}

	err := proc.Run()
	if ctx.Err() != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{}, fmt.Errorf("%s after %s: %w", cmd.Name, cmd.Timeout, ErrTimeout)
		}
		return Result{}, ctx.Err()
	}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return Result{ExitCode: exitErr.ExitCode(), Stdout: captured.Bytes()}, nil
		}
		return Result{}, err
	}
	return Result{Stdout: captured.Bytes()}, nil
}

func (s RealSystem) stdout() io.Writer {
	if s.Stdout == nil {
		return os.Stdout
	}
	return s.Stdout
}

func (s RealSystem) stderr() io.Writer {
	if s.Stderr == nil {
		return os.Stderr
	}
	return s.Stderr
}
