package pretty

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const columnGap = "  "

// Table is a simple column-aligned table. Alignment uses the rendered cell
// width, so styled cells line up.
type Table struct {
	styles  *Styles
	headers []string
	numeric []bool
	rows    [][]string
}

// NewTable creates a table with the given headers. Columns whose index is
// listed in numeric are right-aligned.
func (s *Styles) NewTable(headers []string, numeric ...int) *Table {
	t := &Table{styles: s, headers: headers, numeric: make([]bool, len(headers))}
	for _, col := range numeric {
		if col >= 0 && col < len(headers) {
			t.numeric[col] = true
		}
	}
	return t
}

// AddRow appends a row. Missing cells are blank; extra cells are dropped.
func (t *Table) AddRow(cells ...string) {
	row := make([]string, len(t.headers))
	copy(row, cells)
	t.rows = append(t.rows, row)
}

// Len returns the number of rows.
func (t *Table) Len() int { return len(t.rows) }

// String renders the header, a separator and every row.
func (t *Table) String() string {
	widths := make([]int, len(t.headers))
	for col, header := range t.headers {
		widths[col] = lipgloss.Width(header)
	}
	for _, row := range t.rows {
		for col, cell := range row {
			widths[col] = max(widths[col], lipgloss.Width(cell))
		}
	}

	var b strings.Builder

	headers := make([]string, len(t.headers))
	for col, header := range t.headers {
		headers[col] = t.styles.TableHeader.Render(t.pad(header, col, widths[col]))
	}
	b.WriteString(strings.TrimRight(strings.Join(headers, columnGap), " "))
	b.WriteByte('\n')

	total := len(columnGap) * (len(widths) - 1)
	for _, w := range widths {
		total += w
	}
	b.WriteString(t.styles.TableSeparator.Render(strings.Repeat("─", total)))
	b.WriteByte('\n')

	for _, row := range t.rows {
		cells := make([]string, len(row))
		for col, cell := range row {
			cells[col] = t.pad(cell, col, widths[col])
		}
		b.WriteString(strings.TrimRight(strings.Join(cells, columnGap), " "))
		b.WriteByte('\n')
	}

	return b.String()
}

func (t *Table) pad(cell string, col, width int) string {
	gap := width - lipgloss.Width(cell)
	if gap <= 0 {
		return cell
	}
	if t.numeric[col] {
		return strings.Repeat(" ", gap) + cell
	}
	return cell + strings.Repeat(" ", gap)
}
