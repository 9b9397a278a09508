package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wippyai/candid-go/export"
	"github.com/wippyai/candid-go/values"
)

type interactiveModel struct {
	err      error
	msg      *message
	st       styles
	result   string
	input    textinput.Model
	selected int
	state    modelState
}

type modelState int

const (
	stateSelectArg modelState = iota
	stateInputFormat
	stateShowResult
)

func newInteractiveModel(msg *message) *interactiveModel {
	return &interactiveModel{
		msg:   msg,
		st:    colorStyles(),
		state: stateSelectArg,
	}
}

type exportedMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return nil
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "q":
			if m.state != stateInputFormat {
				return m, tea.Quit
			}

		case "up", "k":
			if m.state == stateSelectArg && m.selected > 0 {
				m.selected--
			}

		case "down", "j":
			if m.state == stateSelectArg && m.selected < len(m.msg.args)-1 {
				m.selected++
			}

		case "enter":
			switch m.state {
			case stateSelectArg:
				if len(m.msg.args) == 0 {
					return m, nil
				}
				m.prepareInput()
				m.state = stateInputFormat
				return m, nil

			case stateInputFormat:
				return m, m.exportArg

			case stateShowResult:
				m.reset()
				return m, nil
			}

		case "esc":
			if m.state != stateSelectArg {
				m.reset()
				return m, nil
			}
		}

	case exportedMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
	}

	if m.state == stateInputFormat {
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) reset() {
	m.state = stateSelectArg
	m.result = ""
	m.err = nil
}

func (m *interactiveModel) prepareInput() {
	ti := textinput.New()
	ti.Placeholder = "text | " + strings.Join(export.Formats, " | ")
	ti.Prompt = "format: "
	ti.Width = 40
	ti.Focus()
	m.input = ti
}

func (m *interactiveModel) exportArg() tea.Msg {
	v := m.msg.values[m.selected]
	format := strings.TrimSpace(m.input.Value())
	if format == "" || format == "text" {
		return exportedMsg{result: v.String()}
	}
	out, err := render(v, format)
	return exportedMsg{result: out, err: err}
}

// render exports v, showing binary formats as hex.
func render(v values.Value, format string) (string, error) {
	exp, err := export.New(format)
	if err != nil {
		return "", err
	}
	out, err := exp.Export(v)
	if err != nil {
		return "", err
	}
	if format == "json" {
		return string(out), nil
	}
	return fmt.Sprintf("%x", out), nil
}

func (m *interactiveModel) View() string {
	var b strings.Builder

	b.WriteString(m.st.title.Render("DIDL"))
	b.WriteString(" ")
	b.WriteString(m.msg.summary())
	b.WriteString("\n\n")

	switch m.state {
	case stateSelectArg:
		if len(m.msg.args) == 0 {
			b.WriteString("The message has no arguments.\n\n")
			b.WriteString(m.st.help.Render("q quit"))
			break
		}
		b.WriteString("Select an argument:\n\n")
		for i := range m.msg.args {
			line := m.formatArg(i)
			if i == m.selected {
				b.WriteString(m.st.title.Render("> " + line))
			} else {
				b.WriteString("  " + line)
			}
			b.WriteString("\n")
		}
		b.WriteString("\n")
		b.WriteString(m.st.help.Render("↑/↓ select • enter export • q quit"))

	case stateInputFormat:
		fmt.Fprintf(&b, "Exporting %s\n\n", m.st.label.Render(fmt.Sprintf("arg%d", m.selected)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(m.st.help.Render("enter export • esc back"))

	case stateShowResult:
		fmt.Fprintf(&b, "%s:\n\n", m.st.label.Render(fmt.Sprintf("arg%d", m.selected)))
		if m.err != nil {
			b.WriteString(m.st.err.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(m.st.value.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(m.st.help.Render("enter continue • q quit"))
	}

	return b.String()
}

func (m *interactiveModel) formatArg(i int) string {
	return m.st.label.Render(fmt.Sprintf("arg%d", i)) + " : " + m.st.typ.Render(m.msg.args[i].String())
}

func runInteractive(msg *message) error {
	p := tea.NewProgram(newInteractiveModel(msg), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
