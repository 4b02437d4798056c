package runner

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/onegii/go-blockprof/blockprof"
)

// DemoOptions shapes the synthetic workload run by [Demo].
type DemoOptions struct {
	// Blocks is the number of blocks to record.
	Blocks int
	// AllocMB is the memory retained by each odd block, in megabytes.
	AllocMB int
	// Sleep is the time spent in each even block, reported as external.
	Sleep time.Duration
}

// DefaultDemoOptions returns a four block workload.
func DefaultDemoOptions() DemoOptions {
	return DemoOptions{
		Blocks:  4,
		AllocMB: 8,
		Sleep:   50 * time.Millisecond,
	}
}

// Demo alternates waiting blocks, recorded as external, with allocating
// blocks. The memory allocated is kept until Demo returns so that it shows
// up in the report.
func Demo(ctx context.Context, rec *blockprof.Recorder, opts DemoOptions) error {
	if opts.Blocks <= 0 {
		return fmt.Errorf("demo needs at least one block, got %d", opts.Blocks)
	}
	if opts.AllocMB < 0 {
		return fmt.Errorf("demo allocation must not be negative, got %dMB", opts.AllocMB)
	}
	if opts.Sleep < 0 {
		return fmt.Errorf("demo sleep must not be negative, got %s", opts.Sleep)
	}

	rec.SetMetadataValue("blocks", fmt.Sprint(opts.Blocks))
	rec.SetMetadataValue("alloc", fmt.Sprintf("%dMB", opts.AllocMB))
	rec.SetMetadataValue("sleep", opts.Sleep.String())

	var retained [][]byte
	for i := 0; i < opts.Blocks; i++ {
		if i%2 == 0 {
			rec.StartExternalBlock(fmt.Sprintf("wait #%d", i/2+1))
			if err := sleep(ctx, opts.Sleep); err != nil {
				return err
			}
			continue
		}

		rec.StartBlock(fmt.Sprintf("allocate #%d", i/2+1))
		buf := make([]byte, opts.AllocMB<<20)
		for j := range buf {
			buf[j] = byte(j)
		}
		retained = append(retained, buf)
	}

	if err := rec.EndBlock(); err != nil {
		return fmt.Errorf("failed to end last block: %w", err)
	}

	runtime.KeepAlive(retained)
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
