package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

var validRunners = map[string]struct{}{
	RunnerCompose: {},
	RunnerLocal:   {},
}

// Validate ensures the config is complete and consistent. source names the
// config in error messages.
func (c *Config) Validate(source string) error {
	if err := c.validate(source); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigValidation, err)
	}
	return nil
}

func (c *Config) validate(source string) error {
	if strings.TrimSpace(c.Main.RequirementsFile) == "" {
		return fmt.Errorf(messages.ConfigRequirementsFileRequiredFmt, source)
	}
	if strings.TrimSpace(c.Main.TestCommand) == "" {
		return fmt.Errorf(messages.ConfigTestCommandRequiredFmt, source)
	}
	if _, ok := validRunners[c.Main.Runner]; !ok {
		return fmt.Errorf(messages.ConfigRunnerInvalidFmt, source, c.Main.Runner)
	}
	if _, err := ParseLogLevel(c.Main.LogLevel); err != nil {
		return fmt.Errorf(messages.ConfigLogLevelInvalidFmt, source, c.Main.LogLevel)
	}

	if !strings.Contains(c.Registry.URLPattern, "{package}") {
		return fmt.Errorf(messages.ConfigRegistryURLInvalidFmt, source)
	}
	if c.Registry.TimeoutSeconds <= 0 {
		return fmt.Errorf(messages.ConfigRegistryTimeoutInvalidFmt, source)
	}
	if c.Registry.Retries < 0 {
		return fmt.Errorf(messages.ConfigRegistryRetriesInvalidFmt, source)
	}
	if c.Registry.RequestsPerSecond < 0 {
		return fmt.Errorf(messages.ConfigRegistryRateInvalidFmt, source)
	}
	if c.Registry.PrefetchConcurrency < 0 {
		return fmt.Errorf(messages.ConfigRegistryPrefetchInvalidFmt, source)
	}

	switch c.Main.Runner {
	case RunnerCompose:
		if strings.TrimSpace(c.Compose.Service) == "" {
			return fmt.Errorf(messages.ConfigComposeServiceRequiredFmt, source)
		}
		if len(c.Compose.Command) == 0 || strings.TrimSpace(c.Compose.Command[0]) == "" {
			return fmt.Errorf(messages.ConfigComposeCommandRequiredFmt, source)
		}
		if c.Compose.UpTimeoutSeconds <= 0 || c.Compose.ExecTimeoutSeconds <= 0 {
			return fmt.Errorf(messages.ConfigComposeTimeoutInvalidFmt, source)
		}
	case RunnerLocal:
		if c.Local.TimeoutSeconds <= 0 {
			return fmt.Errorf(messages.ConfigLocalTimeoutInvalidFmt, source)
		}
	}
	return nil
}

// ParseLogLevel converts a config log level into a slog level.
func ParseLogLevel(level string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(level))); err != nil {
		return slog.LevelInfo, err
	}
	return l, nil
}
