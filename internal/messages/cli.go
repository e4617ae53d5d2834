package messages

// CLI messages for user-facing commands and flags.
const (
	// RootUse is the CLI command name.
	RootUse = "pip-upgrade"
	// RootShort is the short description for the root command.
	RootShort = "Safely upgrade pinned requirements while the tests pass"
	RootLong  = `pip-upgrade gradually upgrades the requirements in a pip requirements file.

Each requirement is advanced to the newest release for which the project's
test command still succeeds. The first attempt jumps to the newest release;
when it fails, the releases in between are bisected. Progress is written into
the requirements file after every attempt, so an interrupted run resumes where
it stopped.`
	RootVersionFlag = "Print version and exit"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt     = "commit %s"
	VersionBuildFmt      = "built %s"
	VersionFullFmt       = "%s (%s)"
	VersionTemplate      = "{{.Version}}\n"
	VersionRequired      = "version is required"
	VersionInvalidFmt    = "invalid version %q: %w"
	VersionSyntaxInvalid = "not a valid index version"

	// FlagConfigFile describes the --config flag.
	FlagConfigFile         = "Config file (default: pip_upgrade.toml in the current directory)"
	FlagWorkingDirectory   = "Working directory (default: current directory)"
	FlagRequirementsFile   = "Requirements file to upgrade (default: requirements.txt)"
	FlagRunner             = "Test runner backend: compose or local"
	FlagTestCommand        = "Test command run after every install"
	FlagComposeProjectDir  = "Compose project directory (default: working directory)"
	FlagComposeRequirement = "Requirements file path inside the container (default: the requirements file)"
	FlagComposeService     = "Compose service to run tests in (default: django)"
	FlagComposeWorkDir     = "Working directory inside the container (default: image working directory)"
	FlagLogLevel           = "Log level: debug, info, warn, or error"

	// UpgradeUse is the upgrade command name.
	UpgradeUse   = "upgrade"
	UpgradeShort = "Upgrade the requirements file"

	// ConfigUse is the config command name.
	ConfigUse              = "config"
	ConfigShort            = "Write an example config file"
	ConfigFlagOutput       = "Path to write (default: the --config path)"
	ConfigFlagForce        = "Overwrite an existing config file"
	ConfigFlagInteractive  = "Ask for the main settings before writing"
	ConfigExistsFmt        = "config file %s already exists; use --force to overwrite"
	ConfigWrittenFmt       = "Wrote example config to %s\n"
	ConfigWriteFailedFmt   = "write config %s: %w"
	ConfigMarshalFailedFmt = "encode config: %w"

	// CLIRunnerStartFailedFmt formats runner provisioning failures before the first entry.
	CLIRunnerStartFailedFmt = "start test runner: %w"
	CLILoggerFailedFmt      = "configure logging: %w"
	CLIUnknownRunnerFmt     = "unknown runner %q (supported: compose, local)"
	CLICommandInvalidFmt    = "parse command %q: %w"
	CLIManifestFailedFmt    = "open requirements %s: %w"
	CLIReportFailedFmt      = "render report: %w"
	CLIWizardFailedFmt      = "config wizard: %w"
)
