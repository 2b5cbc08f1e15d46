package prompt

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	messageStyle  = lipgloss.NewStyle().Bold(true)
	cursorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("212"))
	dimStyle      = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
)

// Terminal is a Prompter rendered with bubbletea.
type Terminal struct{}

func (Terminal) Confirm(message string, def bool) (bool, error) {
	m := confirmModel{message: message, value: def}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return false, err
	}
	final := out.(confirmModel)
	if final.aborted {
		return false, ErrAborted
	}
	return final.value, nil
}

func (Terminal) Select(message string, options []string, cursor int) (string, error) {
	if cursor < 0 || cursor >= len(options) {
		cursor = 0
	}
	m := selectModel{message: message, options: options, cursor: cursor}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	final := out.(selectModel)
	if final.aborted {
		return "", ErrAborted
	}
	return final.options[final.cursor], nil
}

func (Terminal) Input(message, def string, suggestions []string) (string, error) {
	ti := textinput.New()
	ti.Placeholder = def
	if len(suggestions) > 0 {
		ti.ShowSuggestions = true
		ti.SetSuggestions(suggestions)
	}
	ti.Focus()

	m := inputModel{message: message, def: def, input: ti}
	out, err := tea.NewProgram(m).Run()
	if err != nil {
		return "", err
	}
	final := out.(inputModel)
	if final.aborted {
		return "", ErrAborted
	}
	value := strings.TrimSpace(final.input.Value())
	if value == "" {
		value = def
	}
	return value, nil
}

type confirmModel struct {
	message string
	value   bool
	done    bool
	aborted bool
}

func (m confirmModel) Init() tea.Cmd { return nil }

func (m confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.value = true
		m.done = true
		return m, tea.Quit
	case "n", "N":
		m.value = false
		m.done = true
		return m, tea.Quit
	case "left", "right", "tab":
		m.value = !m.value
		return m, nil
	case "enter":
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m confirmModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	hint := "y/N"
	if m.value {
		hint = "Y/n"
	}
	return fmt.Sprintf("%s %s\n", messageStyle.Render(m.message), dimStyle.Render("("+hint+")"))
}

type selectModel struct {
	message string
	options []string
	cursor  int
	done    bool
	aborted bool
}

func (m selectModel) Init() tea.Cmd { return nil }

func (m selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.options)-1 {
			m.cursor++
		}
	case "enter":
		m.done = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.aborted = true
		return m, tea.Quit
	}
	return m, nil
}

func (m selectModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	var b strings.Builder
	b.WriteString(messageStyle.Render(m.message))
	b.WriteString("\n")
	for i, option := range m.options {
		if i == m.cursor {
			b.WriteString(cursorStyle.Render("> "))
			b.WriteString(selectedStyle.Render(option))
		} else {
			b.WriteString("  ")
			b.WriteString(option)
		}
		b.WriteString("\n")
	}
	return b.String()
}

type inputModel struct {
	message string
	def     string
	input   textinput.Model
	done    bool
	aborted bool
}

func (m inputModel) Init() tea.Cmd { return textinput.Blink }

func (m inputModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "enter":
			m.done = true
			return m, tea.Quit
		case "ctrl+c", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m inputModel) View() string {
	if m.done || m.aborted {
		return ""
	}
	return fmt.Sprintf("%s\n%s\n", messageStyle.Render(m.message), m.input.View())
}
