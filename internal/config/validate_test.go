package config

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestValidateDefaults(t *testing.T) {
	if err := Default().Validate("defaults"); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"requirements", func(c *Config) { c.Main.RequirementsFile = " " }, "main.requirements_file is required"},
		{"test command", func(c *Config) { c.Main.TestCommand = "" }, "main.test_command is required"},
		{"runner", func(c *Config) { c.Main.Runner = "kubernetes" }, "main.runner must be one of"},
		{"log level", func(c *Config) { c.Main.LogLevel = "loud" }, "main.log_level must be one of"},
		{"url pattern", func(c *Config) { c.Registry.URLPattern = "https://pypi.org/pypi/json" }, "must contain {package}"},
		{"registry timeout", func(c *Config) { c.Registry.TimeoutSeconds = 0 }, "registry.timeout_seconds"},
		{"retries", func(c *Config) { c.Registry.Retries = -1 }, "registry.retries"},
		{"rate", func(c *Config) { c.Registry.RequestsPerSecond = -2 }, "registry.requests_per_second"},
		{"prefetch", func(c *Config) { c.Registry.PrefetchConcurrency = -1 }, "registry.prefetch_concurrency"},
		{"service", func(c *Config) { c.Compose.Service = "" }, "compose.service is required"},
		{"compose command", func(c *Config) { c.Compose.Command = nil }, "compose.command is required"},
		{"compose timeout", func(c *Config) { c.Compose.UpTimeoutSeconds = 0 }, "compose.up_timeout_seconds"},
		{"local timeout", func(c *Config) {
			c.Main.Runner = RunnerLocal
			c.Local.TimeoutSeconds = -1
		}, "local.timeout_seconds"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate("pip_upgrade.toml")
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, ErrConfigValidation) {
				t.Fatalf("expected ErrConfigValidation, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected %q in %q", tt.want, err.Error())
			}
		})
	}
}

func TestValidateLocalIgnoresComposeSettings(t *testing.T) {
	cfg := Default()
	cfg.Main.Runner = RunnerLocal
	cfg.Compose.Service = ""
	if err := cfg.Validate("pip_upgrade.toml"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestParseLogLevel(t *testing.T) {
	level, err := ParseLogLevel("debug")
	if err != nil || level != slog.LevelDebug {
		t.Fatalf("unexpected level %v err %v", level, err)
	}
	level, err = ParseLogLevel(" WARN ")
	if err != nil || level != slog.LevelWarn {
		t.Fatalf("unexpected level %v err %v", level, err)
	}
	if _, err := ParseLogLevel("chatty"); err == nil {
		t.Fatalf("expected error")
	}
}
