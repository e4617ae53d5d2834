package wizard

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewHuhUI(t *testing.T) {
	ui := NewHuhUI()
	assert.NotNil(t, ui)
	assert.NotNil(t, ui.isTerminal)
}

func TestHuhUI_NoTTY(t *testing.T) {
	ui := &HuhUI{isTerminal: func() bool { return false }}

	var s string
	var b bool
	for name, call := range map[string]func() error{
		"Select":  func() error { return ui.Select("Title", []string{"A", "B"}, &s) },
		"Confirm": func() error { return ui.Confirm("Title", &b) },
		"Input":   func() error { return ui.Input("Title", &s) },
		"Note":    func() error { return ui.Note("Title", "Body") },
	} {
		t.Run(name, func(t *testing.T) {
			err := call()
			require.Error(t, err)
			assert.Contains(t, err.Error(), "interactive terminal")
		})
	}
}

func TestHuhUI_RunFormMapsAborts(t *testing.T) {
	orig := runFormFunc
	t.Cleanup(func() { runFormFunc = orig })

	ui := &HuhUI{isTerminal: func() bool { return true }}

	runFormFunc = func(*huh.Form) error { return huh.ErrUserAborted }
	var s string
	assert.ErrorIs(t, ui.Input("Title", &s), errBack)

	runFormFunc = func(*huh.Form) error {
		ui.interrupted = true
		return huh.ErrUserAborted
	}
	assert.ErrorIs(t, ui.Input("Title", &s), ErrCancelled)

	runFormFunc = func(*huh.Form) error { return nil }
	assert.NoError(t, ui.Input("Title", &s))
}

func TestPromptKeyMap(t *testing.T) {
	km := promptKeyMap()
	assert.Equal(t, []string{"ctrl+c", "esc"}, km.Quit.Keys())
	assert.Equal(t, []string{"esc"}, km.Input.Prev.Keys())
	assert.False(t, km.Select.Filter.Enabled())
}

func TestInterruptFilter(t *testing.T) {
	ui := &HuhUI{}

	esc := tea.KeyMsg{Type: tea.KeyEsc}
	assert.Equal(t, esc, ui.interruptFilter(nil, esc))
	assert.False(t, ui.interrupted)

	ctrlC := tea.KeyMsg{Type: tea.KeyCtrlC}
	assert.Equal(t, ctrlC, ui.interruptFilter(nil, ctrlC))
	assert.True(t, ui.interrupted)

	ui.interrupted = false
	assert.Equal(t, tea.QuitMsg{}, ui.interruptFilter(nil, tea.InterruptMsg{}))
	assert.True(t, ui.interrupted)
}

func TestPromptResetsInterrupt(t *testing.T) {
	orig := runFormFunc
	t.Cleanup(func() { runFormFunc = orig })

	ui := &HuhUI{isTerminal: func() bool { return true }, interrupted: true}
	runFormFunc = func(*huh.Form) error { return huh.ErrUserAborted }

	var ok bool
	assert.ErrorIs(t, ui.Confirm("Title", &ok), errBack)
}
