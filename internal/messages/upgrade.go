package messages

// Upgrade run, registry, runner, and manifest messages.
const (
	// UpgradeRunAborted is the sentinel text for a run stopped by an infrastructure failure.
	UpgradeRunAborted = "upgrade run aborted"

	ReportUpgradedFmt  = "upgraded  %s %s -> %s (%d probes)"
	ReportUnchangedFmt = "unchanged %s %s (%d probes)"
	ReportSkippedFmt   = "skipped   line %d: %v"
	ReportFatalFmt     = "halted    line %d %s: %v"
	ReportSummaryFmt   = "%d upgraded, %d unchanged, %d skipped, %d probes"
	ReportBackupFmt    = "Original requirements saved to %s\n"
	ReportAbortedFmt   = "Run aborted at %s; progress so far is saved (%s). Fix the environment and run again to resume."
	ReportDoneFmt      = "All done! %s"

	// RegistryPackageRequired indicates an empty package name.
	RegistryPackageRequired     = "package name is required"
	RegistryCreateRequestErrFmt = "create releases request: %w"
	RegistryFetchErrFmt         = "fetch releases: %w"
	RegistryFetchStatusFmt      = "fetch releases: unexpected status %s"
	RegistryDecodeErrFmt        = "decode releases: %w"
	RegistryMissingReleases     = "response has no releases"

	// RunnerOpInstall names the install step in runner errors.
	RunnerOpInstall           = "install requirements"
	RunnerOpTest              = "run tests"
	RunnerOpRemove            = "remove container"
	RunnerOpUp                = "start container"
	RunnerOpCheck             = "check container"
	RunnerExitCodeFmt         = "exited with code %d"
	RunnerContainerStoppedFmt = "container %s is stopped after restart"

	// ManifestReadFailedFmt formats manifest read failures.
	ManifestReadFailedFmt  = "read requirements %s: %w"
	ManifestWriteFailedFmt = "write requirements %s: %w"
	ManifestStatFailedFmt  = "stat %s: %w"
	ManifestCopyFailedFmt  = "copy %s to %s: %w"
	ManifestOpenLockFmt    = "open lock %s: %w"
	ManifestLockFmt        = "lock %s: %w"
	ManifestLockTimeoutFmt = "another upgrade is running on this file (waited %s)"
)
