package blockprof

import (
	"io"
	"regexp"
	"unicode/utf8"

	"github.com/fatih/color"
	"github.com/rodaine/table"
)

var ansiCodes = regexp.MustCompile("\x1b\\[[0-9;]*m")

// displayWidth ignores colour codes so that coloured cells stay aligned.
func displayWidth(s string) int {
	return utf8.RuneCountInString(ansiCodes.ReplaceAllString(s, ""))
}

// Print prints the report as a compact coloured table on standard output.
// Colours follow the terminal detection of [color.NoColor].
func (rep *Report) Print() {
	rep.Fprint(color.Output)
}

// Fprint is equivalent to [Report.Print] but writes to w.
func (rep *Report) Fprint(w io.Writer) {
	colors := !color.NoColor
	headerFmt := color.New(color.FgYellow, color.Underline).SprintfFunc()
	title := color.New(color.FgYellow).Add(color.Bold)
	if colors {
		title.EnableColor()
	} else {
		title.DisableColor()
	}

	columns := []interface{}{"nr", "proc time"}
	if rep.opts.Cumulative {
		columns = append(columns, "proc time total")
	}
	columns = append(columns, "memo diff.", "peak mem", "title")

	tbl := table.New(columns...)
	tbl.WithHeaderFormatter(headerFmt)
	tbl.WithWriter(w)
	tbl.WithWidthFunc(displayWidth)

	for _, row := range rep.Rows {
		cells := rep.cells(row)
		vals := make([]interface{}, 0, len(cells))
		for _, c := range cells {
			vals = append(vals, c.severity.paint(c.text, colors))
		}
		tbl.AddRow(vals...)
	}

	name := rep.Title
	if name == "" {
		name = "run"
	}
	title.Fprintf(w, "\n\u24c5 Profile %s\n", name)
	io.WriteString(w, rep.summary()+"\n")
	for _, md := range rep.Metadata {
		io.WriteString(w, "+ "+md.Key+": "+md.Value+"\n")
	}
	tbl.Print()
}
