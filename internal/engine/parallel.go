package engine

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/featwalk/featwalk/internal/powerset"
)

// runParallel dispatches up to opts.Workers combinations concurrently.
// FailFast here means "stop scheduling new dispatches once any in-flight
// dispatch fails"; combinations already handed to a worker run to completion
// and are recorded. Outcomes are reordered back into enumeration order before
// recording, so the report is identical in shape to a serial run.
func runParallel(ctx context.Context, enum *powerset.Enumerator, runner Runner, tracker *Tracker, opts Options, log *slog.Logger) (halted bool) {
	type job struct {
		idx   int
		combo powerset.Combination
	}
	type done struct {
		idx     int
		outcome Outcome
	}

	jobs := make(chan job)
	results := make(chan done)
	var stop atomic.Bool

	// Feeder: the enumerator is consumed from this one goroutine only.
	go func() {
		defer close(jobs)
		for idx := 0; ; idx++ {
			if stop.Load() || ctx.Err() != nil {
				stop.Store(true)
				return
			}
			combo, ok := enum.Next()
			if !ok {
				return
			}
			jobs <- job{idx: idx, combo: combo}
		}
	}()

	var wg sync.WaitGroup
	for i := 0; i < opts.Workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := range jobs {
				outcome := dispatch(ctx, runner, j.combo)
				if opts.Policy == FailFast && outcome.Status == StatusFailed {
					stop.Store(true)
				}
				log.Debug("combination attempted",
					"features", j.combo.String(),
					"status", string(outcome.Status),
					"exit_code", outcome.ExitCode,
					"duration", outcome.Duration)
				results <- done{idx: j.idx, outcome: outcome}
			}
		}()
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	// Collector: buffer out-of-order completions, record in index order.
	pending := map[int]Outcome{}
	next := 0
	for d := range results {
		pending[d.idx] = d.outcome
		for {
			o, ok := pending[next]
			if !ok {
				break
			}
			tracker.Record(o)
			delete(pending, next)
			next++
		}
	}

	return stop.Load()
}
