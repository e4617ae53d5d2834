package runner

import (
	"context"
	"log/slog"
	"time"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// LocalOptions configures the local shell backend.
type LocalOptions struct {
	Dir            string
	InstallCommand string
	TestCommand    string
	Timeout        time.Duration
	Logger         *slog.Logger
}

// Local runs the install and test commands through sh in the working directory.
type Local struct {
	opts   LocalOptions
	sys    System
	logger *slog.Logger
}

// NewLocal returns a local backend.
func NewLocal(opts LocalOptions, sys System) *Local {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Local{opts: opts, sys: sys, logger: logger}
}

// RunTests installs the manifest and runs the test command.
func (l *Local) RunTests(ctx context.Context) (bool, error) {
	if l.opts.InstallCommand != "" {
		l.logger.Info("local: install requirements", slog.String("command", l.opts.InstallCommand))
		res, err := l.shell(ctx, l.opts.InstallCommand)
		if err != nil {
			return false, &Error{Op: messages.RunnerOpInstall, Err: err}
		}
		if res.ExitCode != 0 {
			l.logger.Error("local: failed to install requirements", slog.Int("code", res.ExitCode))
			return false, nil
		}
	}
	l.logger.Info("local: start tests", slog.String("command", l.opts.TestCommand))
	res, err := l.shell(ctx, l.opts.TestCommand)
	if err != nil {
		return false, &Error{Op: messages.RunnerOpTest, Err: err}
	}
	l.logger.Info("local: tests done", slog.Int("code", res.ExitCode))
	return res.ExitCode == 0, nil
}

func (l *Local) shell(ctx context.Context, command string) (Result, error) {
	return l.sys.Run(ctx, Command{
		Name:    "sh",
		Args:    []string{"-c", command},
		Dir:     l.opts.Dir,
		Timeout: l.opts.Timeout,
	})
}
