package blockprof

import (
	"context"
	"fmt"
	"io"
	"strings"

	"golang.org/x/exp/slog"
)

// Sink consumes a rendered report one line at a time.
type Sink func(line string)

// Log renders the report and hands it to sink line by line, top to bottom.
// Blank lines are passed on as empty strings.
func (rep *Report) Log(sink Sink) {
	text := strings.TrimSuffix(rep.String(), "\n")
	for _, line := range strings.Split(text, "\n") {
		sink(line)
	}
}

// LogReport aggregates snap and hands the rendered report to sink.
func LogReport(snap Snapshot, opts ReportOptions, sink Sink) {
	NewReport(snap, opts).Log(sink)
}

// SlogSink returns a sink logging each line as a message of level lvl.
func SlogSink(l *slog.Logger, lvl slog.Level) Sink {
	return func(line string) {
		l.Log(context.Background(), lvl, line)
	}
}

// WriterSink returns a sink writing each line to w, followed by a newline.
func WriterSink(w io.Writer) Sink {
	return func(line string) {
		fmt.Fprintln(w, line)
	}
}
