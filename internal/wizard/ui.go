package wizard

import (
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/safepip/safe-pip-upgrade/internal/messages"
	"github.com/safepip/safe-pip-upgrade/internal/terminal"
)

// UI asks the questions that build a config file.
type UI interface {
	Select(title string, options []string, current *string) error
	Confirm(title string, value *bool) error
	Input(title string, value *string) error
	Note(title string, body string) error
}

// HuhUI prompts on the terminal with huh forms, one field per form.
type HuhUI struct {
	isTerminal  func() bool
	interrupted bool
}

var runFormFunc = func(form *huh.Form) error { return form.Run() }

// NewHuhUI returns a HuhUI bound to the process terminal.
func NewHuhUI() *HuhUI {
	return &HuhUI{isTerminal: terminal.IsInteractive}
}

func (ui *HuhUI) requireTerminal() error {
	isTerminal := ui.isTerminal
	if isTerminal == nil {
		isTerminal = terminal.IsInteractive
	}
	if !isTerminal() {
		return errors.New(messages.WizardRequiresTerminal)
	}
	return nil
}

// promptKeyMap makes Esc step back to the previous question and Ctrl+C leave
// the wizard. huh reports both as ErrUserAborted.
func promptKeyMap() *huh.KeyMap {
	km := huh.NewDefaultKeyMap()
	km.Quit = key.NewBinding(key.WithKeys("ctrl+c", "esc"))

	back := key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back"))
	km.Select.Prev = back
	km.Confirm.Prev = back
	km.Input.Prev = back
	km.Note.Prev = back

	// Runner and log level lists are short; "/" filtering would swallow Esc.
	km.Select.Filter.SetEnabled(false)
	km.Select.SetFilter.SetEnabled(false)
	km.Select.ClearFilter.SetEnabled(false)
	return km
}

// interruptFilter records Ctrl+C so an abort can be told apart from Esc, and
// turns SIGINT into a plain quit.
func (ui *HuhUI) interruptFilter(_ tea.Model, msg tea.Msg) tea.Msg {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			ui.interrupted = true
		}
	case tea.InterruptMsg:
		ui.interrupted = true
		return tea.QuitMsg{}
	}
	return msg
}

// prompt shows field on stderr, keeping stdout for the command's own output.
// It returns errBack for Esc and ErrCancelled for Ctrl+C.
func (ui *HuhUI) prompt(field huh.Field) error {
	if err := ui.requireTerminal(); err != nil {
		return err
	}
	ui.interrupted = false
	form := huh.NewForm(huh.NewGroup(field)).
		WithKeyMap(promptKeyMap()).
		WithProgramOptions(tea.WithOutput(os.Stderr), tea.WithFilter(ui.interruptFilter))

	err := runFormFunc(form)
	switch {
	case !errors.Is(err, huh.ErrUserAborted):
		return err
	case ui.interrupted:
		return ErrCancelled
	default:
		return errBack
	}
}

func (ui *HuhUI) Select(title string, options []string, current *string) error {
	return ui.prompt(huh.NewSelect[string]().
		Title(title).
		Options(huh.NewOptions(options...)...).
		Value(current))
}

func (ui *HuhUI) Confirm(title string, value *bool) error {
	return ui.prompt(huh.NewConfirm().Title(title).Value(value))
}

// Input prompts for text, prefilled with *value.
func (ui *HuhUI) Input(title string, value *string) error {
	return ui.prompt(huh.NewInput().Title(title).Value(value))
}

func (ui *HuhUI) Note(title string, body string) error {
	return ui.prompt(huh.NewNote().Title(title).Description(body))
}
