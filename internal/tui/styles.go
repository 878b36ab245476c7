package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpcalc/internal/ui"
)

// styles are the lipgloss styles of the dashboard, derived from the ui theme.
type styles struct {
	Title          lipgloss.Style
	Muted          lipgloss.Style
	TableHeader    lipgloss.Style
	Selected       lipgloss.Style
	Name           lipgloss.Style
	Duration       lipgloss.Style
	Value          lipgloss.Style
	Success        lipgloss.Style
	Error          lipgloss.Style
	Running        lipgloss.Style
	ProgressFilled lipgloss.Style
	ProgressEmpty  lipgloss.Style
}

// newStyles builds the styles of the active ui theme. The no-color theme
// yields styles that render their input unchanged.
func newStyles() styles {
	t := ui.GetCurrentTheme()
	fg := func(color string) lipgloss.Style {
		if t.Name == ui.NoColorTheme.Name {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	return styles{
		Title:          fg(t.Warning).Bold(true),
		Muted:          fg(t.Muted),
		TableHeader:    fg(t.Muted).Underline(true),
		Selected:       fg(t.Accent).Bold(true),
		Name:           fg(t.Accent),
		Duration:       fg(t.Warning),
		Value:          fg(t.Success),
		Success:        fg(t.Success),
		Error:          fg(t.Error),
		Running:        fg(t.Info),
		ProgressFilled: fg(t.Accent),
		ProgressEmpty:  fg(t.Muted),
	}
}
