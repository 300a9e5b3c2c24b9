package engine

import (
	"fmt"
	"sync"

	"github.com/featwalk/featwalk/internal/powerset"
)

// Tracker accumulates outcomes in insertion order. Record is safe for
// concurrent callers; the parallel orchestrator serializes on it.
type Tracker struct {
	mu       sync.Mutex
	outcomes []Outcome
	seen     map[string]bool
}

func NewTracker() *Tracker {
	return &Tracker{seen: map[string]bool{}}
}

// Record appends one outcome. Recording the same combination twice in a run
// is a contract violation by the caller, not a user-facing error.
func (t *Tracker) Record(o Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	key := o.Combination.Key()
	if t.seen[key] {
		panic(fmt.Sprintf("engine: combination %q recorded twice", o.Combination))
	}
	t.seen[key] = true
	t.outcomes = append(t.outcomes, o)
}

// Summary holds the aggregate counts and the failing combinations.
type Summary struct {
	Attempted int
	Succeeded int
	Failed    int
	Skipped   int
	Failing   []powerset.Combination
}

// Summary computes aggregates over everything recorded so far.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	s := Summary{Attempted: len(t.outcomes)}
	for _, o := range t.outcomes {
		switch o.Status {
		case StatusSucceeded:
			s.Succeeded++
		case StatusFailed:
			s.Failed++
			s.Failing = append(s.Failing, o.Combination)
		case StatusSkipped:
			s.Skipped++
		}
	}
	return s
}

// Outcomes returns a copy of the recorded outcomes in insertion order.
func (t *Tracker) Outcomes() []Outcome {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Outcome, len(t.outcomes))
	copy(out, t.outcomes)
	return out
}
