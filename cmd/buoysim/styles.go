package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#00ccff"))

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888899")).
			Width(24)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ffffff")).
			Bold(true)

	goodStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ff88")).Bold(true)
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444")).Bold(true)
	errorStyle = badStyle

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444466")).
			Padding(0, 1)
)

type field struct {
	label string
	value string
}

func kv(label, format string, args ...any) field {
	return field{label: label, value: fmt.Sprintf(format, args...)}
}

// signed colours a power or energy figure by sign.
func signed(label, format string, v float64) field {
	style := goodStyle
	if v < 0 {
		style = badStyle
	}
	return field{label: label, value: style.Render(fmt.Sprintf(format, v))}
}

// panel renders a titled block of label/value lines.
func panel(title string, fields ...field) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(title))
	for _, f := range fields {
		b.WriteString("\n")
		b.WriteString(labelStyle.Render(f.label))
		b.WriteString(valueStyle.Render(f.value))
	}
	return panelStyle.Render(b.String())
}
