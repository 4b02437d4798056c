package cli

import (
	"github.com/spf13/cobra"

	"github.com/onegii/go-blockprof/blockprof"
	"github.com/onegii/go-blockprof/internal/runner"
)

func newDemoCmd(a *app) *cobra.Command {
	opts := runner.DefaultDemoOptions()
	var cumulative bool

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Profile a synthetic workload",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			rec := blockprof.NewRecorderBuilder().WithTitle("demo").NewRecorder()
			if err := runner.Demo(cmd.Context(), rec, opts); err != nil {
				return err
			}

			ropts := a.reportOptions(blockprof.DefaultReportOptions())
			ropts.Cumulative = cumulative

			a.emit(cmd, rec.Report(ropts))
			return nil
		},
	}

	cmd.Flags().IntVar(&opts.Blocks, "blocks", opts.Blocks, "number of blocks")
	cmd.Flags().IntVar(&opts.AllocMB, "alloc-mb", opts.AllocMB, "megabytes retained by each allocating block")
	cmd.Flags().DurationVar(&opts.Sleep, "sleep", opts.Sleep, "time spent in each waiting block")
	cmd.Flags().BoolVar(&cumulative, "cumulative", false, "add the running total column")

	return cmd
}
