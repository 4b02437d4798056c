// Package blockprof provides functionalities for profiling a single run of a
// program as a flat sequence of named blocks.
//
// A [Recorder] snapshots wall-clock time and memory at each block boundary.
// Once the run is over the recorder is finalized and its [Snapshot] is turned
// into a [Report] which lists the blocks in the order they were opened:
//
//	Nr  Proc Time     Memo diff.     Peak mem  Title
//	 1  100ms (67%)   1.00MB (50%)   12.00MB   parse
//	 2   50ms (33%)   0.50MB (25%)   12.50MB   render
//
// Blocks are never nested: opening a block closes the one currently open.
// Statistics are presented in a tabular manner.
package blockprof

import (
	"os"

	"golang.org/x/exp/slog"
)

var default_title = "Auto start"

func init() {
	logLevel = new(slog.LevelVar)
	h := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})
	logger = slog.New(h)
}

var (
	logger   *slog.Logger
	logLevel *slog.LevelVar
)

// SetLogger set the logger used by blockprof.
// [SetLogLevel] will not be enforced if a custom logger is used.
func SetLogger(newlogger *slog.Logger) {
	logger = newlogger
}

// SetLogLevel sets the level for blockprof messages unless [SetLogger] has been called.
// The default log level is the zero value of [slog.LevelVar].
func SetLogLevel(level slog.Level) {
	logLevel.Set(level)
}

// SetDefaultTitle sets the title given to recorders which are started
// implicitly by [Recorder.StartBlock] or [Recorder.StartExternalBlock].
// The default value is "Auto start".
func SetDefaultTitle(title string) {
	if title == "" {
		logger.Error("invalid default title", slog.String("title", title))
		return
	}
	default_title = title
}
