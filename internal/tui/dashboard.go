package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/mpcalc/internal/format"
	"github.com/agbru/mpcalc/internal/mp"
)

// Column widths for the strategy table (shared between header and rows).
const (
	colWidthCursor   = 2
	colWidthRank     = 3
	colWidthName     = 12
	colWidthProgress = 30
	colWidthPct      = 7
	colWidthDur      = 12
	colWidthStatus   = 6
)

const (
	// valueLimit is the number of digits shown before the value is cut.
	valueLimit = 60
	// valueEdges is the number of digits kept on each side of a cut value.
	valueEdges = 25
)

// tableWidth returns the width of one table row.
func tableWidth() int {
	return colWidthCursor + colWidthRank + 1 + colWidthName + 1 + colWidthProgress + 1 + colWidthPct + 1 + colWidthDur + 1 + colWidthStatus
}

// View renders the dashboard.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")
	b.WriteString(m.renderTable())
	b.WriteString("\n")
	b.WriteString(m.renderResults())
	b.WriteString("\n\n")
	b.WriteString(m.help.View(m.keys))
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderHeader() string {
	title := m.styles.Title.Render("mpcalc exptmod comparison")
	if m.opts.Version != "" {
		title += " " + m.styles.Muted.Render(m.opts.Version)
	}
	bits := 0
	if m.in.P != nil {
		bits = m.in.P.CountBits()
	}
	return fmt.Sprintf("%s\n%s",
		title,
		m.styles.Muted.Render(fmt.Sprintf("modulus %d bits · %d strategies · elapsed %s · cpu %.0f%% · mem %.0f%%",
			bits, len(m.rows), format.FormatExecutionDuration(m.elapsed), m.sys.CPUPercent, m.sys.MemPercent)))
}

func (m Model) renderTable() string {
	var b strings.Builder
	colRank := lipgloss.NewStyle().Width(colWidthRank)
	colName := lipgloss.NewStyle().Width(colWidthName)
	colProgress := lipgloss.NewStyle().Width(colWidthProgress)
	colPct := lipgloss.NewStyle().Width(colWidthPct).Align(lipgloss.Right)
	colDur := lipgloss.NewStyle().Width(colWidthDur).Align(lipgloss.Right)
	colStatus := lipgloss.NewStyle().Width(colWidthStatus).Align(lipgloss.Center)

	header := lipgloss.JoinHorizontal(lipgloss.Top,
		strings.Repeat(" ", colWidthCursor),
		colRank.Render("#"), " ",
		colName.Render("Strategy"), " ",
		colProgress.Render("Progress"), " ",
		colPct.Render("%"), " ",
		colDur.Render("Duration"), " ",
		colStatus.Render("Status"),
	)
	b.WriteString(m.styles.TableHeader.Render(header))
	b.WriteString("\n")
	b.WriteString(m.styles.Muted.Render(strings.Repeat("─", tableWidth())))
	b.WriteString("\n")
	for i := range m.rows {
		b.WriteString(m.renderRow(i))
		b.WriteString("\n")
	}
	if m.cursor < len(m.rows) {
		if row := m.rows[m.cursor]; row.err != nil {
			b.WriteString(m.styles.Error.Render(fmt.Sprintf("  %s: %s (%v)", row.name, mp.ErrorToString(mp.CodeOf(row.err)), row.err)))
			b.WriteString("\n")
		}
	}
	return b.String()
}

func (m Model) renderRow(idx int) string {
	row := m.rows[idx]
	colRank := lipgloss.NewStyle().Width(colWidthRank)
	colName := lipgloss.NewStyle().Width(colWidthName)
	colPct := lipgloss.NewStyle().Width(colWidthPct).Align(lipgloss.Right)
	colDur := lipgloss.NewStyle().Width(colWidthDur).Align(lipgloss.Right)
	colStatus := lipgloss.NewStyle().Width(colWidthStatus).Align(lipgloss.Center)

	cursor := strings.Repeat(" ", colWidthCursor)
	nameStyle := colName.Inherit(m.styles.Name)
	if idx == m.cursor {
		cursor = "› "
		nameStyle = colName.Inherit(m.styles.Selected)
	}

	// Rank by position in the sorted results once they are in.
	rank := "-"
	for pos, res := range m.results {
		if res.Name == row.name && res.Err == nil {
			rank = fmt.Sprintf("%d", pos+1)
			break
		}
	}

	dur := "..."
	switch row.status {
	case StatusComplete, StatusError:
		dur = format.FormatExecutionDuration(row.duration)
	case StatusIdle:
		dur = "-"
	}

	var status string
	statusStyle := colStatus
	switch row.status {
	case StatusIdle:
		status, statusStyle = "IDLE", colStatus.Inherit(m.styles.Muted)
	case StatusRunning:
		status, statusStyle = "RUN", colStatus.Inherit(m.styles.Running)
	case StatusComplete:
		status, statusStyle = "OK", colStatus.Inherit(m.styles.Success)
	case StatusError:
		status, statusStyle = "ERR", colStatus.Inherit(m.styles.Error)
	}

	return lipgloss.JoinHorizontal(lipgloss.Top,
		cursor,
		colRank.Render(rank), " ",
		nameStyle.Render(truncateString(row.name, colWidthName)), " ",
		m.renderProgressBar(row.progress, colWidthProgress), " ",
		colPct.Render(fmt.Sprintf("%.0f%%", row.progress*100)), " ",
		colDur.Inherit(m.styles.Duration).Render(dur), " ",
		statusStyle.Render(status),
	)
}

func (m Model) renderResults() string {
	switch {
	case m.runErr != nil && m.final == nil:
		return m.styles.Error.Bold(true).Render("Global Status: Failure. ") +
			m.styles.Error.Render(errorText(m.runErr))
	case m.results == nil:
		return m.styles.Muted.Render("Running...")
	case !m.consistent:
		return m.styles.Error.Bold(true).Render("Global Status: CRITICAL ERROR! ") +
			m.styles.Error.Render("Inconsistency detected between results.")
	case m.final == nil:
		return m.styles.Muted.Render("Checking results...")
	}

	radix := m.opts.Radix
	if radix == 0 {
		radix = 10
	}
	value, err := m.final.Result.ToRadix(radix)
	if err != nil {
		return m.styles.Error.Render("Cannot render result: " + mp.ErrorToString(mp.CodeOf(err)))
	}
	if !m.showFull {
		value = format.TruncateDigits(value, valueLimit, valueEdges)
	}
	if m.width > 4 {
		value = lipgloss.NewStyle().Width(m.width - 4).Render(value)
	}

	var b strings.Builder
	b.WriteString(m.styles.Success.Bold(true).Render("Global Status: Success. "))
	b.WriteString(m.styles.Success.Render("All valid results are consistent."))
	fmt.Fprintf(&b, "\nFastest: %s (%s)",
		m.styles.Name.Render(m.final.Name), m.styles.Duration.Render(format.FormatExecutionDuration(m.final.Duration)))
	fmt.Fprintf(&b, "\nBits:    %d", m.final.Result.CountBits())
	fmt.Fprintf(&b, "\nValue:   %s", m.styles.Value.Render(value))
	return b.String()
}

// errorText describes err with its engine result code when it has one.
func errorText(err error) string {
	var mpErr *mp.Error
	if errors.As(err, &mpErr) {
		return mp.ErrorToString(mpErr.Code)
	}
	return err.Error()
}

// renderProgressBar renders a progress bar of exactly width cells.
func (m Model) renderProgressBar(progress float64, width int) string {
	filled := min(max(int(progress*float64(width)), 0), width)
	return m.styles.ProgressFilled.Render(strings.Repeat("█", filled)) +
		m.styles.ProgressEmpty.Render(strings.Repeat("░", width-filled))
}

// truncateString truncates a string to maxLen characters, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
