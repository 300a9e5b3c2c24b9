package engine

import (
	"context"
	"time"
)

// ExecResult is what a command runner reports for one combination.
// Skipped marks an infrastructure-level skip (the build tool is unavailable);
// it is counted separately from failure.
type ExecResult struct {
	ExitCode int
	Stdout   []byte
	Stderr   []byte
	Duration time.Duration
	Skipped  bool
}

// Runner dispatches one external build/test invocation for a feature
// combination. Implementations must be safe to invoke repeatedly with
// different combinations without cross-invocation interference, and must not
// mutate orchestrator state.
//
// A non-nil error means the command could not be launched at all (no exit
// code exists); the orchestrator records that as a failed outcome with a
// synthetic status and moves on. Non-zero exit codes are reported through
// ExecResult, not the error.
type Runner interface {
	Execute(ctx context.Context, features []string) (*ExecResult, error)
}
