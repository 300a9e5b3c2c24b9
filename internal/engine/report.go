package engine

import (
	"time"

	"github.com/featwalk/featwalk/internal/powerset"
)

// Status classifies one dispatch attempt.
type Status string

const (
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome is the immutable record of one attempted combination.
type Outcome struct {
	Combination powerset.Combination `json:"combination"`
	Status      Status               `json:"status"`
	ExitCode    int                  `json:"exit_code"`
	Stdout      string               `json:"stdout,omitempty"`
	Stderr      string               `json:"stderr,omitempty"`
	Duration    time.Duration        `json:"duration_ns"`
}

// Report is the aggregated result of one orchestration pass. It is scoped to
// a single Run call; the engine keeps no state across runs.
type Report struct {
	RunID    string    `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`

	Attempted int `json:"attempted"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Skipped   int `json:"skipped"`

	// Halted is true when FailFast (or context cancellation) stopped the
	// run before the enumeration was exhausted.
	Halted bool `json:"halted"`

	// Filtered and Candidates carry the enumerator's accounting:
	// Attempted + Filtered == Candidates.
	Filtered   int `json:"filtered"`
	Candidates int `json:"candidates"`
}

// Failing returns the outcomes classified as failed, in attempt order.
func (r *Report) Failing() []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == StatusFailed {
			out = append(out, o)
		}
	}
	return out
}

// AllSucceeded reports whether every attempted combination succeeded.
// Skipped combinations count against it: a skip means the combination was
// never verified, so a run with skips is not fully successful and the CLI
// maps it to a non-zero exit.
func (r *Report) AllSucceeded() bool {
	return r.Failed == 0 && r.Skipped == 0
}
