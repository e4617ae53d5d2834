package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/google/shlex"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/safepip/safe-pip-upgrade/internal/config"
	"github.com/safepip/safe-pip-upgrade/internal/logging"
	"github.com/safepip/safe-pip-upgrade/internal/manifest"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
	"github.com/safepip/safe-pip-upgrade/internal/registry"
	"github.com/safepip/safe-pip-upgrade/internal/runner"
	"github.com/safepip/safe-pip-upgrade/internal/terminal"
	"github.com/safepip/safe-pip-upgrade/internal/upgrade"
)

var errEmptyCommand = errors.New("empty command")

// Test seams.
var (
	newRegistrySource = func(cfg *config.Config, logger *slog.Logger) registry.Source {
		return registry.NewPyPI(registry.PyPIOptions{
			URLPattern:        cfg.Registry.URLPattern,
			Timeout:           cfg.Timeouts().Registry,
			Retries:           cfg.Registry.Retries,
			RequestsPerSecond: cfg.Registry.RequestsPerSecond,
			Logger:            logger,
		})
	}
	newSystem = func(stderr io.Writer) runner.System {
		return runner.RealSystem{Stdout: stderr, Stderr: stderr}
	}
	newRunID = func() string { return uuid.NewString() }
)

func newUpgradeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   messages.UpgradeUse,
		Short: messages.UpgradeShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUpgrade(cmd, opts)
		},
	}
}

// closer stops a test runner backend once the run is over.
type closer interface {
	Close(ctx context.Context) error
}

func runUpgrade(cmd *cobra.Command, opts *rootOptions) (err error) {
	cfg, source, err := opts.loadConfig()
	if err != nil {
		return err
	}
	if err := cfg.Validate(source); err != nil {
		return err
	}
	paths, err := cfg.ResolvePaths()
	if err != nil {
		return err
	}
	level, err := config.ParseLogLevel(cfg.Main.LogLevel)
	if err != nil {
		return err
	}

	runID := newRunID()
	logger, logCloser, err := logging.New(logging.Options{
		Level:   level,
		File:    paths.LogFile,
		Console: cmd.ErrOrStderr(),
		RunID:   runID,
	})
	if err != nil {
		return fmt.Errorf(messages.CLILoggerFailedFmt, err)
	}
	defer logging.CloseQuietly(logCloser, &err)

	file := manifest.New(paths.RequirementsFile)
	if _, statErr := os.Stat(file.Path()); statErr != nil {
		return fmt.Errorf(messages.CLIManifestFailedFmt, file.Path(), statErr)
	}
	lock, err := file.Lock()
	if err != nil {
		return err
	}
	defer func() { _ = lock.Release() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tests, err := buildRunner(ctx, cfg, paths, logger, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if c, ok := tests.(closer); ok {
		defer func() {
			if cerr := c.Close(context.WithoutCancel(ctx)); cerr != nil {
				logger.Warn("runner cleanup failed", slog.String("error", cerr.Error()))
			}
		}()
	}

	cache := registry.NewCache(newRegistrySource(cfg, logger))
	orchestrator := upgrade.New(file, tests, cache, upgrade.Options{
		IgnorePrefixes:      cfg.Main.IgnoreLineStarts,
		Logger:              logger,
		RunID:               runID,
		PrefetchConcurrency: cfg.Registry.PrefetchConcurrency,
	})

	logger.Info("upgrade started",
		slog.String("requirements", paths.RequirementsFile),
		slog.String("runner", cfg.Main.Runner))
	report, runErr := orchestrator.Run(ctx)

	out := cmd.OutOrStdout()
	color.NoColor = !terminal.SupportsColor(out)
	if renderErr := upgrade.Render(out, report, filepath.Base(paths.RequirementsFile)); renderErr != nil && runErr == nil {
		return fmt.Errorf(messages.CLIReportFailedFmt, renderErr)
	}
	return runErr
}

// buildRunner creates the configured test runner backend. The compose
// container is started here so provisioning failures stop the run before the
// first requirement is touched.
func buildRunner(ctx context.Context, cfg *config.Config, paths config.Paths, logger *slog.Logger, stderr io.Writer) (runner.TestRunner, error) {
	timeouts := cfg.Timeouts()
	sys := newSystem(stderr)
	switch cfg.Main.Runner {
	case config.RunnerLocal:
		install := expandInstallCommand(cfg.Local.InstallCommand, paths.RequirementsFile)
		return runner.NewLocal(runner.LocalOptions{
			Dir:            paths.WorkingDirectory,
			InstallCommand: install,
			TestCommand:    cfg.Main.TestCommand,
			Timeout:        timeouts.LocalExecution,
			Logger:         logger,
		}, sys), nil
	case config.RunnerCompose:
		testCommand, err := splitCommand(cfg.Main.TestCommand)
		if err != nil {
			return nil, err
		}
		compose := runner.NewCompose(runner.ComposeOptions{
			ComposeCommand:   cfg.Compose.Command,
			ProjectDir:       paths.ComposeProject,
			Service:          cfg.Compose.Service,
			WorkDir:          cfg.Compose.WorkDir,
			RequirementsFile: paths.ComposeRequirements,
			TestCommand:      testCommand,
			UpTimeout:        timeouts.ComposeUp,
			ExecTimeout:      timeouts.ComposeExec,
			Logger:           logger,
		}, sys)
		if err := compose.Start(ctx); err != nil {
			return nil, fmt.Errorf(messages.CLIRunnerStartFailedFmt, err)
		}
		return compose, nil
	default:
		return nil, fmt.Errorf(messages.CLIUnknownRunnerFmt, cfg.Main.Runner)
	}
}

// expandInstallCommand substitutes the requirements path into the install
// command as a single-quoted shell word.
func expandInstallCommand(template string, requirementsFile string) string {
	return strings.ReplaceAll(template, "{requirements}", shellQuote(requirementsFile))
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

func splitCommand(command string) ([]string, error) {
	parts, err := shlex.Split(command)
	if err != nil {
		return nil, fmt.Errorf(messages.CLICommandInvalidFmt, command, err)
	}
	if len(parts) == 0 {
		return nil, fmt.Errorf(messages.CLICommandInvalidFmt, command, errEmptyCommand)
	}
	return parts, nil
}
