package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor"
	DoctorShort = "Check the config, requirements file, test runner tools, and package index"

	DoctorHealthCheckFmt = "Checking pip-upgrade setup in %s...\n"

	DoctorCheckNameConfig   = "Config"
	DoctorCheckNameManifest = "Manifest"
	DoctorCheckNameRunner   = "Runner"
	DoctorCheckNameRegistry = "Registry"

	DoctorConfigLoadFailedFmt = "Failed to load configuration: %v"
	DoctorConfigLoadRecommend = "Fix the config file or run `pip-upgrade config --force` to write a fresh one."
	DoctorConfigInvalidFmt    = "Configuration is invalid: %v"
	DoctorConfigInvalidHint   = "Correct the reported setting in the config file or on the command line."
	DoctorConfigLoadedFmt     = "Configuration loaded from %s"
	DoctorConfigDefaults      = "No config file found; using built-in defaults"

	DoctorManifestMissingFmt       = "Requirements file not readable: %v"
	DoctorManifestMissingRecommend = "Point --requirement or main.requirements_file at an existing file."
	DoctorManifestSummaryFmt       = "%d requirements to check, %d lines ignored"
	DoctorManifestFinishedFmt      = "%d requirements already at their latest working version"
	DoctorManifestLineFmt          = "Line %d will be skipped: %v"
	DoctorManifestLineRecommend    = "Fix the line or add its prefix to main.ignore_line_starts."
	DoctorManifestEmpty            = "No requirements found"

	DoctorToolMissingFmt       = "%s not found on PATH"
	DoctorToolMissingRecommend = "Install it or switch main.runner."
	DoctorToolFoundFmt         = "%s found at %s"

	DoctorRegistryFailedFmt       = "Release lookup for %s failed: %v"
	DoctorRegistryFailedRecommend = "Check network access and registry.url_pattern."
	DoctorRegistryOKFmt           = "Index answered for %s (%d releases)"
	DoctorRegistryNothing         = "No requirement to look up"

	DoctorFailureSummary = "Some checks failed. Please address the items above."
	DoctorWarnSummary    = "Checks passed with warnings."
	DoctorSuccessSummary = "All systems go. pip-upgrade is ready."

	DoctorStatusOKLabel   = "[OK]  "
	DoctorStatusWarnLabel = "[WARN]"
	DoctorStatusFailLabel = "[FAIL]"

	DoctorResultLineFmt        = "%s %-10s %s\n"
	DoctorRecommendationPrefix = "       hint: "
)
