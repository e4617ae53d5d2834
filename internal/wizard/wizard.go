// Package wizard asks for the main settings of a new config file.
package wizard

import (
	"errors"
	"fmt"
	"strings"

	"github.com/safepip/safe-pip-upgrade/internal/config"
	"github.com/safepip/safe-pip-upgrade/internal/messages"
)

// ErrCancelled is returned when the user leaves the wizard without writing.
var ErrCancelled = errors.New(messages.WizardCancelled)

var errBack = errors.New("wizard back requested")

var logLevels = []string{"debug", "info", "warn", "error"}

type step int

const (
	stepRunner step = iota
	stepRequirements
	stepTestCommand
	stepBackend
	stepLogLevel
	stepConfirm
)

// Run walks the prompts and updates cfg in place. Esc returns to the
// previous prompt; on the first prompt it asks whether to leave. cfg is left
// untouched unless Run returns nil.
func Run(ui UI, cfg *config.Config, target string) error {
	draft := *cfg
	draft.Main.IgnoreLineStarts = append([]string(nil), cfg.Main.IgnoreLineStarts...)
	draft.Compose.Command = append([]string(nil), cfg.Compose.Command...)

	current := stepRunner
	for current <= stepConfirm {
		snapshot := draft
		err := prompt(ui, current, &draft, target)
		if err == nil {
			current++
			continue
		}
		if !errors.Is(err, errBack) {
			return err
		}
		draft = snapshot
		if current > stepRunner {
			current--
			continue
		}
		leave := false
		if err := ui.Confirm(messages.WizardExitTitle, &leave); err != nil && !errors.Is(err, errBack) {
			return err
		}
		if leave {
			return ErrCancelled
		}
	}
	*cfg = draft
	return nil
}

func prompt(ui UI, s step, cfg *config.Config, target string) error {
	switch s {
	case stepRunner:
		return ui.Select(messages.WizardRunnerTitle, []string{messages.WizardRunnerCompose, messages.WizardRunnerLocal}, &cfg.Main.Runner)
	case stepRequirements:
		return requiredInput(ui, messages.WizardRequirementsTitle, &cfg.Main.RequirementsFile)
	case stepTestCommand:
		return requiredInput(ui, messages.WizardTestCommandTitle, &cfg.Main.TestCommand)
	case stepBackend:
		if cfg.Main.Runner == config.RunnerLocal {
			return requiredInput(ui, messages.WizardLocalInstallTitle, &cfg.Local.InstallCommand)
		}
		return promptCompose(ui, cfg)
	case stepLogLevel:
		return ui.Select(messages.WizardLogLevelTitle, logLevels, &cfg.Main.LogLevel)
	case stepConfirm:
		if err := ui.Note(messages.WizardSummaryTitle, summary(cfg)); err != nil {
			return err
		}
		write := true
		if err := ui.Confirm(fmt.Sprintf(messages.WizardConfirmTitleFmt, target), &write); err != nil {
			return err
		}
		if !write {
			return ErrCancelled
		}
	}
	return nil
}

func promptCompose(ui UI, cfg *config.Config) error {
	if err := requiredInput(ui, messages.WizardComposeServiceTitle, &cfg.Compose.Service); err != nil {
		return err
	}
	command := strings.Join(cfg.Compose.Command, " ")
	if err := requiredInput(ui, messages.WizardComposeCommandTitle, &command); err != nil {
		return err
	}
	cfg.Compose.Command = strings.Fields(command)
	return ui.Input(messages.WizardComposeWorkDirTitle, &cfg.Compose.WorkDir)
}

// requiredInput re-asks until a non-blank value is entered.
func requiredInput(ui UI, title string, value *string) error {
	for {
		if err := ui.Input(title, value); err != nil {
			return err
		}
		*value = strings.TrimSpace(*value)
		if *value != "" {
			return nil
		}
		if err := ui.Note(title, fmt.Sprintf(messages.WizardValueRequiredFmt, title)); err != nil {
			return err
		}
	}
}

func summary(cfg *config.Config) string {
	lines := []string{
		fmt.Sprintf(messages.WizardSummaryRunnerFmt, cfg.Main.Runner),
		fmt.Sprintf(messages.WizardSummaryRequirementFmt, cfg.Main.RequirementsFile),
		fmt.Sprintf(messages.WizardSummaryTestFmt, cfg.Main.TestCommand),
	}
	if cfg.Main.Runner == config.RunnerLocal {
		lines = append(lines, fmt.Sprintf(messages.WizardSummaryInstallFmt, cfg.Local.InstallCommand))
	} else {
		lines = append(lines, fmt.Sprintf(messages.WizardSummaryServiceFmt, cfg.Compose.Service))
	}
	lines = append(lines, fmt.Sprintf(messages.WizardSummaryLogLevelFmt, cfg.Main.LogLevel))
	return strings.Join(lines, "\n")
}
