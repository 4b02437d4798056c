// Package cli provides the command-line interface for blockprof.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/exp/slog"

	"github.com/onegii/go-blockprof/blockprof"
)

// Version is set at build time.
var Version = "dev"

// app holds the state shared by the commands.
type app struct {
	logger   *slog.Logger
	logLevel string
	noColor  bool
	toLog    bool
}

// NewRootCmd builds the blockprof command tree.
func NewRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "blockprof",
		Short: "blockprof - profile a run block by block",
		Long: `blockprof records wall-clock time and memory at the boundaries of the
blocks of a run and prints a report annotated with each block's share of the
total time and memory.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger, err := newLogger(cmd.ErrOrStderr(), a.logLevel)
			if err != nil {
				return err
			}
			a.logger = logger
			blockprof.SetLogger(logger)

			if a.noColor {
				color.NoColor = true
			}
			return nil
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "disable colours")
	root.PersistentFlags().BoolVar(&a.toLog, "log", false, "write the report to the log instead of standard output")

	root.AddCommand(newRunCmd(a))
	root.AddCommand(newDemoCmd(a))
	root.AddCommand(newVersionCmd())

	return root
}

// Execute runs the root command. An interrupt cancels the context of the
// running command.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		return fmt.Errorf("command failed: %w", err)
	}
	return nil
}

func newLogger(w io.Writer, level string) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(strings.ToUpper(level))); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	h := slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	return slog.New(h), nil
}

// emit writes rep to the output of cmd, or line by line to the logger when
// --log is set.
func (a *app) emit(cmd *cobra.Command, rep *blockprof.Report) {
	if a.toLog {
		rep.Log(blockprof.SlogSink(a.logger, slog.LevelInfo))
		return
	}
	rep.Fprint(cmd.OutOrStdout())
}

func (a *app) reportOptions(opts blockprof.ReportOptions) blockprof.ReportOptions {
	if a.noColor {
		opts.Colors = false
	}
	return opts
}
