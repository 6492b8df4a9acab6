package selector

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/uniseg"

	"github.com/five82/twitchwatch/internal/twitch"
)

const gutter = "   "

func (p *Prompter) render(rows [][]twitch.Field) {
	checkShape(rows)

	widths := columnWidths(rows)
	for i, field := range rows[0] {
		widths[i] = max(widths[i], displayWidth(field.Label))
	}

	numWidth := len(strconv.Itoa(len(rows)))
	indent := strings.Repeat(" ", numWidth+2)

	labels := make([]string, len(rows[0]))
	for i, field := range rows[0] {
		labels[i] = field.Label
	}
	fmt.Fprintln(p.out, indent+p.header.Render(joinCells(labels, widths)))

	for i, row := range rows {
		values := make([]string, len(row))
		for j, field := range row {
			values[j] = field.Value
		}
		num := strconv.Itoa(i + 1)
		pad := strings.Repeat(" ", numWidth-len(num))
		fmt.Fprintf(p.out, "%s%s %s\n", pad, p.index.Render(num+")"), joinCells(values, widths))
	}
}

// columnWidths returns, per column, the widest value measured in grapheme
// clusters.
func columnWidths(rows [][]twitch.Field) []int {
	if len(rows) == 0 {
		return nil
	}
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, field := range row {
			widths[i] = max(widths[i], displayWidth(field.Value))
		}
	}
	return widths
}

func joinCells(cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		b.WriteString(padRight(cell, widths[i]))
		b.WriteString(gutter)
	}
	return strings.TrimRight(b.String(), " ")
}

// checkShape panics when rows disagree on their labels. Entities of one
// batch always share a shape, so a mismatch is a bug in the caller.
func checkShape(rows [][]twitch.Field) {
	first := rows[0]
	for i, row := range rows[1:] {
		if len(row) != len(first) {
			panic(fmt.Sprintf("selector: row %d has %d fields, want %d", i+2, len(row), len(first)))
		}
		for j := range row {
			if row[j].Label != first[j].Label {
				panic(fmt.Sprintf("selector: row %d column %d is %q, want %q", i+2, j, row[j].Label, first[j].Label))
			}
		}
	}
}

func displayWidth(s string) int {
	return uniseg.GraphemeClusterCount(s)
}

// padRight pads a string with spaces to the given display width.
func padRight(s string, width int) string {
	n := displayWidth(s)
	if n >= width {
		return s
	}
	return s + strings.Repeat(" ", width-n)
}
