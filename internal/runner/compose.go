package runner

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// daemonSleepSeconds keeps the helper container alive for a long run.
const daemonSleepSeconds = 60 * 60 * 10

// ComposeOptions configures the compose backend.
type ComposeOptions struct {
	// ComposeCommand is the compose executable and leading args, e.g. ["docker", "compose"].
	ComposeCommand []string
	ProjectDir     string
	Service        string
	// WorkDir is the working directory inside the container; empty keeps the image default.
	WorkDir string
	// RequirementsFile is the manifest path as seen from inside the container.
	RequirementsFile string
	TestCommand      []string
	UpTimeout        time.Duration
	ExecTimeout      time.Duration
	Logger           *slog.Logger
}

// Compose runs tests inside a long-lived container started from a compose service.
type Compose struct {
	opts   ComposeOptions
	sys    System
	daemon string
	logger *slog.Logger
}

// NewCompose returns a compose backend. The container is started by Start or
// lazily by the first RunTests.
func NewCompose(opts ComposeOptions, sys System) *Compose {
	if len(opts.ComposeCommand) == 0 {
		opts.ComposeCommand = []string{"docker-compose"}
	}
	opts.RequirementsFile = strings.ReplaceAll(opts.RequirementsFile, `\`, "/")
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Compose{
		opts:   opts,
		sys:    sys,
		daemon: opts.Service + "_upgrade",
		logger: logger.With(slog.String("container", opts.Service+"_upgrade")),
	}
}

// Start replaces any stale helper container with a fresh one.
func (c *Compose) Start(ctx context.Context) error {
	return c.up(ctx)
}

// RunTests installs the manifest in the container and runs the test command.
func (c *Compose) RunTests(ctx context.Context) (bool, error) {
	if err := c.ensureDaemon(ctx); err != nil {
		return false, err
	}
	c.logger.Info("docker: install requirements", slog.String("file", c.opts.RequirementsFile))
	install, err := c.docker(ctx, false, "exec", c.daemon, "pip", "install", "-r", c.opts.RequirementsFile)
	if err != nil {
		return false, &Error{Op: messages.RunnerOpInstall, Err: err}
	}
	c.logger.Info("docker: install finished", slog.Int("code", install.ExitCode))
	if install.ExitCode != 0 {
		c.logger.Error("docker: failed to install requirements")
		return false, nil
	}

	if err := c.ensureDaemon(ctx); err != nil {
		return false, err
	}
	c.logger.Info("docker: start tests")
	args := append([]string{"exec", c.daemon}, c.opts.TestCommand...)
	tests, err := c.docker(ctx, false, args...)
	if err != nil {
		return false, &Error{Op: messages.RunnerOpTest, Err: err}
	}
	c.logger.Info("docker: tests done", slog.Int("code", tests.ExitCode))
	return tests.ExitCode == 0, nil
}

// Close removes the helper container.
func (c *Compose) Close(ctx context.Context) error {
	if _, err := c.docker(ctx, true, "rm", c.daemon, "-f"); err != nil {
		return &Error{Op: messages.RunnerOpRemove, Err: err}
	}
	return nil
}

func (c *Compose) up(ctx context.Context) error {
	if _, err := c.docker(ctx, true, "rm", c.daemon, "-f"); err != nil {
		return &Error{Op: messages.RunnerOpRemove, Err: err}
	}
	options := []string{"-d", "--name", c.daemon}
	if c.opts.WorkDir != "" {
		options = append(options, "-w", c.opts.WorkDir)
	}
	args := append([]string{}, c.opts.ComposeCommand[1:]...)
	if c.opts.ProjectDir != "" {
		args = append(args, "--project-directory", c.opts.ProjectDir)
	}
	args = append(args, "run")
	args = append(args, options...)
	args = append(args, c.opts.Service, "sleep", strconv.Itoa(daemonSleepSeconds))

	c.logger.Info("docker: start container", slog.String("command", c.opts.ComposeCommand[0]+" "+strings.Join(args, " ")))
	res, err := c.sys.Run(ctx, Command{
		Name:    c.opts.ComposeCommand[0],
		Args:    args,
		Dir:     c.opts.ProjectDir,
		Timeout: c.opts.UpTimeout,
	})
	if err != nil {
		return &Error{Op: messages.RunnerOpUp, Err: err}
	}
	c.logger.Info("docker: up", slog.Int("code", res.ExitCode))
	if res.ExitCode != 0 {
		return &Error{Op: messages.RunnerOpUp, Err: fmt.Errorf(messages.RunnerExitCodeFmt, res.ExitCode)}
	}
	return nil
}

func (c *Compose) daemonRunning(ctx context.Context) (bool, error) {
	res, err := c.docker(ctx, true, "ps", "-f", "name="+c.daemon)
	if err != nil {
		return false, err
	}
	return bytes.Contains(res.Stdout, []byte(c.daemon)), nil
}

// ensureDaemon restarts the helper container once if it is gone.
func (c *Compose) ensureDaemon(ctx context.Context) error {
	running, err := c.daemonRunning(ctx)
	if err != nil {
		return &Error{Op: messages.RunnerOpCheck, Err: err}
	}
	if running {
		return nil
	}
	c.logger.Info("docker: check container: stopped, restart")
	if err := c.up(ctx); err != nil {
		return err
	}
	running, err = c.daemonRunning(ctx)
	if err != nil {
		return &Error{Op: messages.RunnerOpCheck, Err: err}
	}
	if !running {
		c.logger.Error("docker: container is stopped after restart")
		return &Error{Op: messages.RunnerOpCheck, Err: fmt.Errorf(messages.RunnerContainerStoppedFmt, c.daemon)}
	}
	return nil
}

func (c *Compose) docker(ctx context.Context, capture bool, args ...string) (Result, error) {
	c.logger.Debug("docker: run", slog.String("args", strings.Join(args, " ")))
	return c.sys.Run(ctx, Command{
		Name:    "docker",
		Args:    args,
		Timeout: c.opts.ExecTimeout,
		Capture: capture,
	})
}
