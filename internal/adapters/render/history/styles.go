package history

import "github.com/charmbracelet/lipgloss"

type styles struct {
	title     lipgloss.Style
	header    lipgloss.Style
	day       lipgloss.Style
	timestamp lipgloss.Style
	operation lipgloss.Style
	detail    lipgloss.Style
	success   lipgloss.Style
	failure   lipgloss.Style
	section   lipgloss.Style
	empty     lipgloss.Style
	meta      lipgloss.Style
}

func newStyles() styles {
	return styles{
		title:     lipgloss.NewStyle().Bold(true),
		header:    lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		day:       lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("39")),
		timestamp: lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
		operation: lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		detail:    lipgloss.NewStyle().Foreground(lipgloss.Color("250")),
		success:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42")),
		failure:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203")),
		section:   lipgloss.NewStyle().MarginTop(1),
		empty:     lipgloss.NewStyle().Faint(true),
		meta:      lipgloss.NewStyle().Foreground(lipgloss.Color("245")),
	}
}
