package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Column describes one table column. Numeric columns render
// right-aligned so prices and quantities line up.
type Column struct {
	Name    string
	Numeric bool
}

// SimpleTable renders static tabular data (cart lines, order items).
type SimpleTable struct {
	Title   string
	Columns []Column
	Rows    [][]string
}

// NewSimpleTable creates a table with the given title and columns.
func NewSimpleTable(title string, cols ...Column) *SimpleTable {
	return &SimpleTable{
		Title:   title,
		Columns: cols,
		Rows:    make([][]string, 0),
	}
}

// AddRow adds a row to the table.
func (t *SimpleTable) AddRow(row ...string) {
	t.Rows = append(t.Rows, row)
}

// View renders the table using the provided styles.
func (t *SimpleTable) View(styles Styles) string {
	if len(t.Rows) == 0 {
		return ""
	}

	var sb strings.Builder

	if t.Title != "" {
		sb.WriteString(styles.Title.Render(t.Title))
		sb.WriteString("\n")
	}

	colWidths := make([]int, len(t.Columns))
	for i, c := range t.Columns {
		colWidths[i] = lipgloss.Width(c.Name)
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < len(colWidths) {
				if w := lipgloss.Width(cell); w > colWidths[i] {
					colWidths[i] = w
				}
			}
		}
	}
	for i := range colWidths {
		colWidths[i] += 2
	}

	cell := func(base lipgloss.Style, i int) lipgloss.Style {
		s := base.Padding(0, 1).Width(colWidths[i])
		if t.Columns[i].Numeric {
			s = s.Align(lipgloss.Right)
		}
		return s
	}
	sepStyle := styles.Muted

	for i, c := range t.Columns {
		sb.WriteString(cell(styles.Bold, i).Render(c.Name))
		if i < len(t.Columns)-1 {
			sb.WriteString(sepStyle.Render("|"))
		}
	}
	sb.WriteString("\n")

	totalWidth := len(t.Columns) - 1
	for _, w := range colWidths {
		totalWidth += w
	}
	sb.WriteString(sepStyle.Render(strings.Repeat("-", totalWidth)) + "\n")

	for _, row := range t.Rows {
		for i, c := range row {
			if i < len(colWidths) {
				sb.WriteString(cell(styles.Body, i).Render(c))
				if i < len(row)-1 {
					sb.WriteString(sepStyle.Render("|"))
				}
			}
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\n")

	return sb.String()
}
