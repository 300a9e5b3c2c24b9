package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featwalk/featwalk/internal/powerset"
)

func TestTrackerPreservesInsertionOrder(t *testing.T) {
	tr := NewTracker()
	tr.Record(Outcome{Combination: powerset.Combination{}, Status: StatusSucceeded})
	tr.Record(Outcome{Combination: powerset.Combination{"a"}, Status: StatusFailed, ExitCode: 1})
	tr.Record(Outcome{Combination: powerset.Combination{"b"}, Status: StatusSkipped})

	outcomes := tr.Outcomes()
	require.Len(t, outcomes, 3)
	assert.Equal(t, "", outcomes[0].Combination.Key())
	assert.Equal(t, "a", outcomes[1].Combination.Key())
	assert.Equal(t, "b", outcomes[2].Combination.Key())
}

func TestTrackerSummary(t *testing.T) {
	tr := NewTracker()
	tr.Record(Outcome{Combination: powerset.Combination{}, Status: StatusSucceeded})
	tr.Record(Outcome{Combination: powerset.Combination{"a"}, Status: StatusFailed, ExitCode: 2})
	tr.Record(Outcome{Combination: powerset.Combination{"a", "b"}, Status: StatusFailed, ExitCode: 1})
	tr.Record(Outcome{Combination: powerset.Combination{"c"}, Status: StatusSkipped})

	s := tr.Summary()
	assert.Equal(t, 4, s.Attempted)
	assert.Equal(t, 1, s.Succeeded)
	assert.Equal(t, 2, s.Failed)
	assert.Equal(t, 1, s.Skipped)
	assert.Equal(t, s.Attempted, s.Succeeded+s.Failed+s.Skipped)

	require.Len(t, s.Failing, 2)
	assert.Equal(t, "a", s.Failing[0].Key())
	assert.Equal(t, "a,b", s.Failing[1].Key())
}

func TestTrackerDuplicateRecordPanics(t *testing.T) {
	tr := NewTracker()
	tr.Record(Outcome{Combination: powerset.Combination{"a"}, Status: StatusSucceeded})
	assert.Panics(t, func() {
		tr.Record(Outcome{Combination: powerset.Combination{"a"}, Status: StatusFailed})
	})
}

func TestTrackerOutcomesReturnsCopy(t *testing.T) {
	tr := NewTracker()
	tr.Record(Outcome{Combination: powerset.Combination{"a"}, Status: StatusSucceeded})
	out := tr.Outcomes()
	out[0].Status = StatusFailed
	assert.Equal(t, StatusSucceeded, tr.Outcomes()[0].Status)
}
