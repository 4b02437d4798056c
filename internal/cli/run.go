package cli

import (
	"github.com/spf13/cobra"

	"github.com/onegii/go-blockprof/blockprof"
	"github.com/onegii/go-blockprof/internal/config"
	"github.com/onegii/go-blockprof/internal/runner"
)

func newRunCmd(a *app) *cobra.Command {
	var (
		planPath   string
		cumulative bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the steps of a plan and report on each of them",
		Long: `Run executes the commands listed in a YAML plan, one block per step.
Steps marked external are reported as time spent waiting on other systems.
The report is printed even when a step fails.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			plan, err := config.Load(planPath)
			if err != nil {
				return err
			}

			opts := a.reportOptions(plan.ReportOptions())
			if cumulative {
				opts.Cumulative = true
			}

			rec := blockprof.NewRecorderBuilder().WithTitle(plan.Title).NewRecorder()
			runErr := runner.New(rec, a.logger, cmd.OutOrStdout(), cmd.ErrOrStderr()).
				Run(cmd.Context(), plan)

			a.emit(cmd, rec.Report(opts))
			return runErr
		},
	}

	cmd.Flags().StringVarP(&planPath, "config", "c", "blockprof.yaml", "path to the plan file")
	cmd.Flags().BoolVar(&cumulative, "cumulative", false, "add the running total column")

	return cmd
}
