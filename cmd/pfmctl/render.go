package main

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

// Flexoki Dark
var (
	colorBorder = lipgloss.Color("#575653")
	colorText   = lipgloss.Color("#FFFCF0")
	colorAccent = lipgloss.Color("#3AA99F")
	colorGreen  = lipgloss.Color("#879A39")
)

// styles are bound to one writer so colors follow that writer's terminal
// profile and plain text is written to pipes and files.
type styles struct {
	border lipgloss.Style
	header lipgloss.Style
	cell   lipgloss.Style
	done   lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	cell := r.NewStyle().Foreground(colorText).Padding(0, 1)
	return styles{
		border: r.NewStyle().Foreground(colorBorder),
		header: r.NewStyle().Bold(true).Foreground(colorAccent).Padding(0, 1),
		cell:   cell,
		done:   cell.Foreground(colorGreen),
	}
}

// renderTable draws a rounded table. Rows for which done reports true are
// highlighted; done may be nil.
func renderTable(w io.Writer, headers []string, rows [][]string, done func(row int) bool) string {
	st := newStyles(w)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(st.border).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return st.header
			case done != nil && done(row):
				return st.done
			default:
				return st.cell
			}
		}).
		String()
}
