package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/google/uuid"

	"github.com/featwalk/featwalk/internal/catalog"
	fwerrors "github.com/featwalk/featwalk/internal/errors"
	"github.com/featwalk/featwalk/internal/powerset"
)

// Policy controls how the orchestrator reacts to a failing combination.
type Policy int

const (
	// ContinueOnFailure attempts every enumerated combination regardless
	// of prior failures.
	ContinueOnFailure Policy = iota
	// FailFast stops enumerating and dispatching after the first failing
	// combination. The report still reflects everything attempted before
	// the stop.
	FailFast
)

func (p Policy) String() string {
	if p == FailFast {
		return "fail-fast"
	}
	return "continue-on-failure"
}

// synthetic exit status recorded when a dispatch could not launch at all.
const launchFailureExit = -1

// Options configures one orchestration pass.
type Options struct {
	Policy Policy

	// Workers > 1 enables bounded parallel dispatch. Each runner
	// invocation must then use an isolated output location; the report
	// stays in enumeration order either way.
	Workers int

	// Enum tunes the combination enumerator.
	Enum powerset.Options

	Logger *slog.Logger
}

// Run orchestrates one pass: enumerate feasible combinations, dispatch each
// through the runner, classify and track outcomes, and aggregate the report.
//
// Configuration problems (bad depth) surface as an error before any dispatch
// happens. Dispatch launch errors never abort the run; they are recorded as
// failed outcomes with a synthetic exit status. The report is produced even
// when FailFast halts early.
func Run(ctx context.Context, cat *catalog.Catalog, maxDepth int, runner Runner, opts Options) (*Report, error) {
	enum, err := powerset.New(cat, maxDepth, opts.Enum)
	if err != nil {
		return nil, err
	}

	log := opts.Logger
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	tracker := NewTracker()
	var halted bool
	if opts.Workers > 1 {
		halted = runParallel(ctx, enum, runner, tracker, opts, log)
	} else {
		halted = runSerial(ctx, enum, runner, tracker, opts, log)
	}

	sum := tracker.Summary()
	report := &Report{
		RunID:      uuid.New().String(),
		Outcomes:   tracker.Outcomes(),
		Attempted:  sum.Attempted,
		Succeeded:  sum.Succeeded,
		Failed:     sum.Failed,
		Skipped:    sum.Skipped,
		Halted:     halted,
		Filtered:   enum.Filtered(),
		Candidates: enum.Candidates(),
	}
	log.Info("run complete",
		"run_id", report.RunID,
		"attempted", report.Attempted,
		"succeeded", report.Succeeded,
		"failed", report.Failed,
		"skipped", report.Skipped,
		"halted", report.Halted)
	return report, nil
}

func runSerial(ctx context.Context, enum *powerset.Enumerator, runner Runner, tracker *Tracker, opts Options, log *slog.Logger) (halted bool) {
	for {
		if ctx.Err() != nil {
			return true
		}
		combo, ok := enum.Next()
		if !ok {
			return false
		}
		outcome := dispatch(ctx, runner, combo)
		tracker.Record(outcome)
		log.Debug("combination attempted",
			"features", combo.String(),
			"status", string(outcome.Status),
			"exit_code", outcome.ExitCode,
			"duration", outcome.Duration)
		if opts.Policy == FailFast && outcome.Status == StatusFailed {
			log.Warn("halting on first failure", "features", combo.String())
			return true
		}
	}
}

// dispatch invokes the runner for one combination and classifies the result.
// Runner errors are normalized into a DispatchError so the synthetic failed
// outcome always carries the affected combination.
func dispatch(ctx context.Context, runner Runner, combo powerset.Combination) Outcome {
	res, err := runner.Execute(ctx, combo)
	if err != nil {
		var de *fwerrors.DispatchError
		if !errors.As(err, &de) {
			de = &fwerrors.DispatchError{Features: combo, Message: err.Error(), Err: err}
		}
		return Outcome{
			Combination: combo,
			Status:      StatusFailed,
			ExitCode:    launchFailureExit,
			Stderr:      de.Error(),
		}
	}

	o := Outcome{
		Combination: combo,
		ExitCode:    res.ExitCode,
		Stdout:      string(res.Stdout),
		Stderr:      string(res.Stderr),
		Duration:    res.Duration,
	}
	switch {
	case res.Skipped:
		o.Status = StatusSkipped
	case res.ExitCode == 0:
		o.Status = StatusSucceeded
	default:
		o.Status = StatusFailed
	}
	return o
}
