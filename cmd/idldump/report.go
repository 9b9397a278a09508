package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	candid "github.com/wippyai/candid-go"
	"github.com/wippyai/candid-go/types"
	"github.com/wippyai/candid-go/values"
)

// message is a fully decoded message.
type message struct {
	size   int
	table  []types.Type
	args   []types.Type
	values []values.Value
}

// inspect decodes every argument of data under its wire type.
func inspect(data []byte, cfg candid.Config) (*message, error) {
	d, err := candid.NewDecoderWithConfig(data, cfg)
	if err != nil {
		return nil, err
	}
	msg := &message{
		size:  len(data),
		table: d.Table().Entries(),
		args:  d.WireTypes(),
	}
	for range d.Len() {
		v, err := d.DecodeAny()
		if err != nil {
			return nil, err
		}
		msg.values = append(msg.values, v)
	}
	if err := d.Done(); err != nil {
		return nil, err
	}
	return msg, nil
}

type styles struct {
	title lipgloss.Style
	label lipgloss.Style
	typ   lipgloss.Style
	value lipgloss.Style
	err   lipgloss.Style
	help  lipgloss.Style
}

func plainStyles() styles {
	s := lipgloss.NewStyle()
	return styles{title: s, label: s, typ: s, value: s, err: s, help: s}
}

func colorStyles() styles {
	return styles{
		title: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1),
		label: lipgloss.NewStyle().Foreground(lipgloss.Color("#98FB98")),
		typ:   lipgloss.NewStyle().Foreground(lipgloss.Color("#87CEEB")),
		value: lipgloss.NewStyle().Foreground(lipgloss.Color("#90EE90")),
		err:   lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B")),
		help:  lipgloss.NewStyle().Foreground(lipgloss.Color("#666666")),
	}
}

func (m *message) summary() string {
	return fmt.Sprintf("%d bytes, %d table entries, %d arguments", m.size, len(m.table), len(m.args))
}

func (m *message) report(st styles) string {
	var b strings.Builder
	b.WriteString(st.title.Render("DIDL"))
	b.WriteString(" ")
	b.WriteString(m.summary())
	b.WriteString("\n")

	if len(m.table) > 0 {
		b.WriteString("\nType table:\n")
		for i, t := range m.table {
			fmt.Fprintf(&b, "  %s = %s\n", st.label.Render(types.Ref{Index: i}.String()), st.typ.Render(t.String()))
		}
	}

	b.WriteString("\nArguments:\n")
	for i, t := range m.args {
		fmt.Fprintf(&b, "  %s : %s\n", st.label.Render(fmt.Sprintf("arg%d", i)), st.typ.Render(t.String()))
		fmt.Fprintf(&b, "    %s\n", st.value.Render(m.values[i].String()))
	}
	return b.String()
}
