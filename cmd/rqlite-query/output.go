package main

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"

	"github.com/tarmac-project/rqlite"
)

func palette(noColor bool) (header, dim *color.Color) {
	header = color.New(color.FgCyan, color.Bold)
	dim = color.New(color.Faint)
	if noColor {
		header.DisableColor()
		dim.DisableColor()
	}
	return header, dim
}

// printTable writes rs as an aligned table followed by a row count.
func printTable(w io.Writer, rs rqlite.ResultSet, noColor bool) error {
	header, dim := palette(noColor)

	cells := make([][]string, len(rs.Values))
	widths := make([]int, len(rs.Columns))
	for i, col := range rs.Columns {
		widths[i] = utf8.RuneCountInString(col)
	}
	for r, row := range rs.Values {
		cells[r] = make([]string, len(rs.Columns))
		for i := range rs.Columns {
			if i < len(row) {
				cells[r][i] = cellText(row[i])
			}
			widths[i] = max(widths[i], utf8.RuneCountInString(cells[r][i]))
		}
	}

	// The last column is left unpadded.
	if n := len(widths); n > 0 {
		widths[n-1] = 0
	}

	var b strings.Builder
	for i, col := range rs.Columns {
		if i > 0 {
			b.WriteString("  ")
		}
		b.WriteString(header.Sprint(pad(col, widths[i])))
	}
	b.WriteByte('\n')

	for _, row := range cells {
		for i, cell := range row {
			if i > 0 {
				b.WriteString("  ")
			}
			b.WriteString(pad(cell, widths[i]))
		}
		b.WriteByte('\n')
	}

	noun := "rows"
	if len(cells) == 1 {
		noun = "row"
	}
	b.WriteString(dim.Sprintf("(%d %s)", len(cells), noun))
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}

func printExec(w io.Writer, res rqlite.ExecResult, noColor bool) error {
	header, _ := palette(noColor)
	_, err := fmt.Fprintf(w, "%s %d\n%s %d\n",
		header.Sprint("last insert id:"), res.LastInsertID,
		header.Sprint("rows affected:"), res.RowsAffected)
	return err
}

func cellText(v rqlite.Value) string {
	if s, ok := v.Text(); ok {
		return s
	}
	return v.String()
}

// pad right-pads s with spaces to width runes.
func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
