// Package runner installs a candidate manifest into a test environment and
// runs the project's test suite against it.
package runner

import (
	"context"
	"errors"
	"fmt"
)

// TestRunner runs the test suite against the manifest currently on disk.
//
// RunTests returns false for a failing suite (including a manifest that cannot
// be installed). It returns an error only when the environment itself failed:
// the container could not be started, a command could not be launched, or a
// command exceeded its timeout.
type TestRunner interface {
	RunTests(ctx context.Context) (bool, error)
}

// Error is an infrastructure failure of the test environment.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "runner: " + e.Op
	}
	return fmt.Sprintf("runner: %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsError reports whether err is (or wraps) a runner Error.
func IsError(err error) bool {
	var runErr *Error
	return errors.As(err, &runErr)
}
