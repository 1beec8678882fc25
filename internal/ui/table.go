package ui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// TableColumn defines a table column with name and minimum width.
type TableColumn struct {
	Title string
	Width int
}

// NewTable creates a Bubbles table with the CLI styling. Columns keep the
// widths given.
func NewTable(columns []TableColumn, rows []table.Row) table.Model {
	cols := make([]table.Column, len(columns))
	for i, c := range columns {
		cols[i] = table.Column{Title: c.Title, Width: c.Width}
	}

	t := table.New(
		table.WithColumns(cols),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1), // +1 for header
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(ColorMuted).
		BorderBottom(true).
		Bold(true).
		Foreground(ColorPrimary)
	s.Cell = s.Cell.Foreground(ColorPrimary)
	// Nothing is focused in printed output; a selected row must look like the rest.
	s.Selected = s.Cell

	t.SetStyles(s)
	return t
}

// RenderSimpleTable renders rows as a static table for plain (non-TUI)
// output. Columns grow to fit their widest cell so nothing is truncated.
func RenderSimpleTable(columns []TableColumn, rows [][]string) string {
	if len(rows) == 0 {
		return ""
	}

	tableRows := make([]table.Row, len(rows))
	for i, row := range rows {
		tableRows[i] = table.Row(row)
	}
	return NewTable(fitColumns(columns, rows), tableRows).View()
}

// fitColumns widens each column to its title and widest cell.
func fitColumns(columns []TableColumn, rows [][]string) []TableColumn {
	fitted := make([]TableColumn, len(columns))
	copy(fitted, columns)
	for i := range fitted {
		fitted[i].Width = max(fitted[i].Width, lipgloss.Width(fitted[i].Title))
		for _, row := range rows {
			if i < len(row) {
				fitted[i].Width = max(fitted[i].Width, lipgloss.Width(row[i]))
			}
		}
	}
	return fitted
}
