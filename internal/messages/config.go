package messages

// Config messages for configuration loading and validation.
const (
	// ConfigMissingFileFmt formats missing config file errors.
	ConfigMissingFileFmt      = "missing config file %s: %w"
	ConfigInvalidConfigFmt    = "invalid config %s: %w"
	ConfigUnrecognizedKeysFmt = "%s: unrecognized config keys: %v"
	ConfigValidationGuidance  = "(run `pip-upgrade config --output example.toml` to see every supported key)"
	ConfigExpandPathFmt       = "expand path %q: %w"
	ConfigResolvePathFmt      = "resolve path %q: %w"

	ConfigRequirementsFileRequiredFmt = "%s: main.requirements_file is required"
	ConfigTestCommandRequiredFmt      = "%s: main.test_command is required"
	ConfigRunnerInvalidFmt            = "%s: main.runner must be one of compose, local (got %q)"
	ConfigLogLevelInvalidFmt          = "%s: main.log_level must be one of debug, info, warn, error (got %q)"
	ConfigRegistryURLInvalidFmt       = "%s: registry.url_pattern must contain {package}"
	ConfigRegistryTimeoutInvalidFmt   = "%s: registry.timeout_seconds must be positive"
	ConfigRegistryRetriesInvalidFmt   = "%s: registry.retries must not be negative"
	ConfigRegistryRateInvalidFmt      = "%s: registry.requests_per_second must not be negative"
	ConfigRegistryPrefetchInvalidFmt  = "%s: registry.prefetch_concurrency must not be negative"
	ConfigComposeServiceRequiredFmt   = "%s: compose.service is required for the compose runner"
	ConfigComposeCommandRequiredFmt   = "%s: compose.command is required for the compose runner"
	ConfigComposeTimeoutInvalidFmt    = "%s: compose.up_timeout_seconds and compose.exec_timeout_seconds must be positive"
	ConfigLocalTimeoutInvalidFmt      = "%s: local.timeout_seconds must be positive"
)
