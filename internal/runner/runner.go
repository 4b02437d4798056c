// Package runner executes run plans and demo workloads through a
// blockprof.Recorder.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sort"

	"golang.org/x/exp/slog"

	"github.com/onegii/go-blockprof/blockprof"
	"github.com/onegii/go-blockprof/internal/config"
)

// Runner runs the steps of a plan, one block per step.
type Runner struct {
	rec    *blockprof.Recorder
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

// New creates a runner recording into rec. Step output is copied to stdout
// and stderr.
func New(rec *blockprof.Recorder, logger *slog.Logger, stdout, stderr io.Writer) *Runner {
	return &Runner{
		rec:    rec,
		logger: logger,
		stdout: stdout,
		stderr: stderr,
	}
}

// Run records the metadata of plan and runs its steps in order. It stops at
// the first failing step; the block of that step is closed before returning.
func (r *Runner) Run(ctx context.Context, plan *config.Plan) error {
	for _, k := range plan.MetadataKeys() {
		r.rec.SetMetadataValue(k, plan.Metadata[k])
	}

	for i, step := range plan.Steps {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("run interrupted before step %q: %w", step.Name, err)
		}

		r.logger.Debug("running step",
			slog.Int("step", i+1),
			slog.String("name", step.Name),
			slog.Bool("external", step.External))

		if step.External {
			r.rec.StartExternalBlock(step.Name)
		} else {
			r.rec.StartBlock(step.Name)
		}

		err := r.runStep(ctx, step)

		if endErr := r.rec.EndBlock(); endErr != nil {
			r.logger.Warn("failed to end block",
				slog.String("name", step.Name),
				slog.String("error", endErr.Error()))
		}

		if err != nil {
			return fmt.Errorf("step %q failed: %w", step.Name, err)
		}
	}

	return nil
}

func (r *Runner) runStep(ctx context.Context, step config.Step) error {
	if step.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, step.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, step.Command[0], step.Command[1:]...)
	cmd.Dir = step.Dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr
	if len(step.Env) > 0 {
		cmd.Env = append(os.Environ(), envList(step.Env)...)
	}

	return cmd.Run()
}

func envList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	list := make([]string, 0, len(keys))
	for _, k := range keys {
		list = append(list, k+"="+env[k])
	}
	return list
}
