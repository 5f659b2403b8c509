package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Table renders left-aligned columns with a colored header.
type Table struct {
	writer  io.Writer
	headers []string
	rows    [][]string
	noColor bool
}

// NewTable creates a new table with the given headers
func NewTable(w io.Writer, noColor bool, headers ...string) *Table {
	return &Table{writer: w, headers: headers, noColor: noColor}
}

// AddRow adds a row; missing cells render empty.
func (t *Table) AddRow(cells ...string) {
	t.rows = append(t.rows, cells)
}

func (t *Table) Render() {
	if len(t.headers) == 0 {
		return
	}
	widths := make([]int, len(t.headers))
	for i, h := range t.headers {
		widths[i] = len(h)
	}
	for _, row := range t.rows {
		for i := 0; i < len(row) && i < len(widths); i++ {
			widths[i] = max(widths[i], len(row[i]))
		}
	}

	head := color.New(color.Bold, color.FgCyan)
	if t.noColor {
		head.DisableColor()
	}
	cells := make([]string, len(t.headers))
	for i, h := range t.headers {
		cells[i] = head.Sprint(pad(h, widths[i], i == len(widths)-1))
	}
	fmt.Fprintln(t.writer, strings.Join(cells, "  "))

	for _, row := range t.rows {
		for i := range cells {
			v := ""
			if i < len(row) {
				v = row[i]
			}
			cells[i] = pad(v, widths[i], i == len(widths)-1)
		}
		fmt.Fprintln(t.writer, strings.Join(cells, "  "))
	}
}

func pad(s string, width int, last bool) string {
	if last || len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
