package messages

// Wizard prompts and errors for interactive config creation.
const (
	// WizardRequiresTerminal is returned when a prompt runs without a TTY.
	WizardRequiresTerminal = "config wizard requires an interactive terminal"
	WizardCancelled        = "config wizard cancelled"

	WizardRunnerTitle           = "Where should the tests run?"
	WizardRunnerCompose         = "compose"
	WizardRunnerLocal           = "local"
	WizardRequirementsTitle     = "Requirements file to upgrade"
	WizardTestCommandTitle      = "Test command (exit code 0 means the upgrade works)"
	WizardComposeServiceTitle   = "Compose service the tests run in"
	WizardComposeCommandTitle   = "Compose executable (e.g. docker-compose or docker compose)"
	WizardComposeWorkDirTitle   = "Working directory inside the container (empty keeps the image default)"
	WizardLocalInstallTitle     = "Install command ({requirements} is replaced by the quoted requirements path)"
	WizardLogLevelTitle         = "Log level"
	WizardExitTitle             = "Leave the config wizard?"
	WizardConfirmTitleFmt       = "Write config to %s?"
	WizardValueRequiredFmt      = "%s is required"
	WizardSummaryTitle          = "Summary"
	WizardSummaryRunnerFmt      = "Runner: %s"
	WizardSummaryRequirementFmt = "Requirements: %s"
	WizardSummaryTestFmt        = "Tests: %s"
	WizardSummaryServiceFmt     = "Compose service: %s"
	WizardSummaryInstallFmt     = "Install: %s"
	WizardSummaryLogLevelFmt    = "Log level: %s"
)
