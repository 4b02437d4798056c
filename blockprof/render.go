package blockprof

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

type column struct {
	header string
	align  lipgloss.Position
}

func (rep *Report) columns() []column {
	cols := []column{
		{header: "Nr", align: lipgloss.Right},
		{header: "Proc Time", align: lipgloss.Right},
	}
	if rep.opts.Cumulative {
		cols = append(cols, column{header: "Proc Time Total", align: lipgloss.Right})
	}
	return append(cols,
		column{header: "Memo diff.", align: lipgloss.Right},
		column{header: "Peak mem", align: lipgloss.Right},
		column{header: "Title", align: lipgloss.Left},
	)
}

// cells returns the text of each column of row, painted with its severity
// when colours are enabled.
func (rep *Report) cells(row Row) []string {
	paint := func(s Severity, text string) string {
		return s.paint(text, rep.opts.Colors)
	}

	cells := []string{
		strconv.Itoa(row.Number),
		paint(row.TimeSeverity, fmt.Sprintf("%dms (%d%%)", row.DurationMs, row.TimePercent)),
	}
	if rep.opts.Cumulative {
		cells = append(cells, fmt.Sprintf("%dms", row.CumulativeMs))
	}
	return append(cells,
		paint(row.MemorySeverity, fmt.Sprintf("%s (%d%%)", formatMB(float64(row.MemoryDiff)), row.MemoryPercent)),
		formatMB(float64(row.PeakMemory)),
		paint(row.NameSeverity, row.Name),
	)
}

// String renders the report: the summary line, one "+ key: value" line per
// metadata entry and a bordered table with one row per block.
func (rep *Report) String() string {
	var b strings.Builder

	b.WriteString("\n\n")
	b.WriteString(rep.summary())
	b.WriteString("\n")
	for _, md := range rep.Metadata {
		b.WriteString(fmt.Sprintf("+ %s: %s\n", md.Key, md.Value))
	}
	b.WriteString("\n")

	b.WriteString(rep.table().String())
	b.WriteString("\n")

	return b.String()
}

func (rep *Report) table() *table.Table {
	cols := rep.columns()

	headers := make([]string, len(cols))
	for i, col := range cols {
		headers[i] = col.header
	}

	t := table.New().
		Border(lipgloss.ASCIIBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			return lipgloss.NewStyle().Padding(0, 1).Align(cols[col].align)
		})

	for _, row := range rep.Rows {
		t.Row(rep.cells(row)...)
	}

	return t
}
