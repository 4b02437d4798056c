package blockprof

import (
	"bytes"
	"fmt"
	"math"
	"time"

	"github.com/fatih/color"
)

// ExternalPrefix is prepended to the title of external blocks.
const ExternalPrefix = "EXT: "

// Severity classifies a percentage against [Thresholds].
type Severity int

const (
	SeverityNone Severity = iota
	SeverityYellow
	SeverityBrown
	SeverityRed
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "none"
	case SeverityYellow:
		return "yellow"
	case SeverityBrown:
		return "brown"
	case SeverityRed:
		return "red"
	}
	return "unknown"
}

func (s Severity) color() *color.Color {
	switch s {
	case SeverityRed:
		return color.New(color.FgRed)
	case SeverityBrown:
		return color.New(color.FgYellow)
	case SeverityYellow:
		return color.New(color.FgHiYellow)
	}
	return nil
}

func (s Severity) paint(text string, enabled bool) string {
	c := s.color()
	if !enabled || c == nil {
		return text
	}
	c.EnableColor()
	return c.Sprint(text)
}

// Thresholds are the percentages a block must exceed, strictly, to be
// flagged with each severity.
type Thresholds struct {
	Red    int64
	Brown  int64
	Yellow int64
}

// Classify returns the severity of pct.
func (t Thresholds) Classify(pct int64) Severity {
	switch {
	case pct > t.Red:
		return SeverityRed
	case pct > t.Brown:
		return SeverityBrown
	case pct > t.Yellow:
		return SeverityYellow
	}
	return SeverityNone
}

// ReportOptions controls the aggregation and rendering of a [Report].
type ReportOptions struct {
	// Colors wraps flagged cells of the rendered text in ANSI colour codes.
	Colors bool
	// NameWidth is the number of characters of a title kept in the report.
	NameWidth int
	// Cumulative adds a "Proc Time Total" column with the running total.
	Cumulative bool
	Thresholds Thresholds
}

// DefaultReportOptions returns options with no colours, titles cut at 69
// characters and the 40/20/10 thresholds.
func DefaultReportOptions() ReportOptions {
	return ReportOptions{
		Colors:     false,
		NameWidth:  69,
		Cumulative: false,
		Thresholds: Thresholds{Red: 40, Brown: 20, Yellow: 10},
	}
}

func (o ReportOptions) withDefaults() ReportOptions {
	def := DefaultReportOptions()
	if o.NameWidth <= 0 {
		o.NameWidth = def.NameWidth
	}
	if o.Thresholds == (Thresholds{}) {
		o.Thresholds = def.Thresholds
	}
	return o
}

// # Row
//
// The derived statistics of one reported block.
type Row struct {
	Number   int
	Name     string
	External bool

	Duration      time.Duration
	DurationMs    int64
	TimePercent   int64
	CumulativeMs  int64
	MemoryDiff    int64
	MemoryPercent int64
	PeakMemory    uint64

	TimeSeverity   Severity
	MemorySeverity Severity
	// NameSeverity is the severity of the larger of the two percentages.
	NameSeverity Severity
}

// # Report
//
// The aggregated statistics of a finalized run.
// Reports are built by [NewReport] or [Recorder.Report] and never change
// afterwards.
type Report struct {
	Title    string
	Metadata []MetadataEntry
	Queries  int

	TotalTime    time.Duration
	ExternalTime time.Duration
	PeakMemory   uint64

	Rows []Row

	opts ReportOptions
}

// NewReport aggregates snap. Start and end markers are accounted for in the
// totals but get no row. Rows keep the order in which blocks were opened.
//
// Memory peaks are process-wide, so a block whose peak reading grew past the
// one of the previous block is charged up to that peak.
func NewReport(snap Snapshot, opts ReportOptions) *Report {
	opts = opts.withDefaults()

	rep := &Report{
		Title:    snap.Title,
		Metadata: append([]MetadataEntry(nil), snap.Metadata...),
		Queries:  snap.Queries,
		opts:     opts,
	}

	if len(snap.Blocks) == 0 {
		return rep
	}

	first, last := snap.Blocks[0], snap.Blocks[len(snap.Blocks)-1]
	if last.Closed && last.End.After(first.Start) {
		rep.TotalTime = last.End.Sub(first.Start)
	}
	rep.PeakMemory = last.PeakMemory

	var prevPeak uint64
	var cumulative time.Duration
	for _, b := range snap.Blocks {
		d := b.Duration()
		if b.External {
			rep.ExternalTime += d
		}

		memEnd := b.EndMemory
		if b.PeakMemory > prevPeak {
			memEnd = max(b.EndMemory, b.PeakMemory)
		}
		prevPeak = b.PeakMemory

		if b.IsSentinel() {
			continue
		}

		cumulative += d
		diff := int64(memEnd) - int64(b.StartMemory)
		row := Row{
			Number:        b.Number,
			Name:          displayName(b, opts.NameWidth),
			External:      b.External,
			Duration:      d,
			DurationMs:    milliseconds(d),
			TimePercent:   percent(float64(d), float64(rep.TotalTime)),
			CumulativeMs:  milliseconds(cumulative),
			MemoryDiff:    diff,
			MemoryPercent: percent(float64(diff), float64(rep.PeakMemory)),
			PeakMemory:    b.PeakMemory,
		}
		row.TimeSeverity = opts.Thresholds.Classify(row.TimePercent)
		row.MemorySeverity = opts.Thresholds.Classify(row.MemoryPercent)
		row.NameSeverity = opts.Thresholds.Classify(max(row.TimePercent, row.MemoryPercent))

		rep.Rows = append(rep.Rows, row)
	}

	return rep
}

// Options returns the options the report was built with.
func (rep *Report) Options() ReportOptions {
	return rep.opts
}

func (rep *Report) summary() string {
	var b bytes.Buffer

	b.WriteString("Profiling finished")
	if rep.Title != "" {
		b.WriteString(fmt.Sprintf(" (%s)", rep.Title))
	}
	b.WriteString(fmt.Sprintf(": %.2fs total, %.2fs external, %s",
		rep.TotalTime.Seconds(), rep.ExternalTime.Seconds(), formatMB(float64(rep.PeakMemory))))
	if rep.Queries > 0 {
		b.WriteString(fmt.Sprintf(", %d queries", rep.Queries))
	}

	return b.String()
}

func displayName(b Block, width int) string {
	name := b.Name
	if b.External {
		name = ExternalPrefix + name
	}

	r := []rune(name)
	if len(r) > width {
		return string(r[:width])
	}
	return name
}

func milliseconds(d time.Duration) int64 {
	return int64(math.Round(float64(d) / float64(time.Millisecond)))
}

func percent(part, total float64) int64 {
	if total == 0 {
		return 0
	}
	return int64(math.Round(part / total * 100))
}

func formatMB(n float64) string {
	mb := math.Round(n/(1024*1024)*100) / 100
	if mb == 0 {
		// no "-0.00MB"
		mb = 0
	}
	return fmt.Sprintf("%.2fMB", mb)
}
