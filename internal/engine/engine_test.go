package engine

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/featwalk/featwalk/internal/catalog"
	fwerrors "github.com/featwalk/featwalk/internal/errors"
	"github.com/featwalk/featwalk/internal/powerset"
)

// fakeRunner scripts results per combination key and records call order.
type fakeRunner struct {
	mu           sync.Mutex
	calls        []string
	exitFor      map[string]int
	skipFor      map[string]bool
	errFor       map[string]error
	delayFor     map[string]time.Duration
	defaultDelay time.Duration
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		exitFor:  map[string]int{},
		skipFor:  map[string]bool{},
		errFor:   map[string]error{},
		delayFor: map[string]time.Duration{},
	}
}

func (f *fakeRunner) Execute(ctx context.Context, features []string) (*ExecResult, error) {
	key := strings.Join(features, ",")
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()
	delay := f.defaultDelay
	if d, ok := f.delayFor[key]; ok {
		delay = d
	}
	if delay > 0 {
		time.Sleep(delay)
	}
	if err := f.errFor[key]; err != nil {
		return nil, err
	}
	if f.skipFor[key] {
		return &ExecResult{Skipped: true, Stderr: []byte("tool unavailable")}, nil
	}
	return &ExecResult{
		ExitCode: f.exitFor[key],
		Stdout:   []byte("out:" + key),
		Duration: time.Millisecond,
	}, nil
}

func (f *fakeRunner) callOrder() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

func simpleCatalog(t *testing.T, names ...string) *catalog.Catalog {
	t.Helper()
	features := make([]catalog.Feature, len(names))
	for i, n := range names {
		features[i] = catalog.Feature{Name: n}
	}
	cat, err := catalog.Build(features)
	require.NoError(t, err)
	return cat
}

func outcomeKeys(outcomes []Outcome) []string {
	out := make([]string, len(outcomes))
	for i, o := range outcomes {
		out[i] = o.Combination.Key()
	}
	return out
}

func TestRunAllSucceed(t *testing.T) {
	cat := simpleCatalog(t, "a", "b")
	runner := newFakeRunner()

	report, err := Run(context.Background(), cat, 2, runner, Options{})
	require.NoError(t, err)

	assert.Equal(t, 4, report.Attempted)
	assert.Equal(t, 4, report.Succeeded)
	assert.Zero(t, report.Failed)
	assert.Zero(t, report.Skipped)
	assert.False(t, report.Halted)
	assert.True(t, report.AllSucceeded())
	assert.NotEmpty(t, report.RunID)
	assert.Equal(t, []string{"", "a", "b", "a,b"}, outcomeKeys(report.Outcomes))
}

func TestRunContinueOnFailureCountsAndIdentifiesFailures(t *testing.T) {
	// Exit codes [0, 1, 0] over three combinations.
	cat := simpleCatalog(t, "a", "b")
	runner := newFakeRunner()
	runner.exitFor["a"] = 1

	report, err := Run(context.Background(), cat, 1, runner, Options{})
	require.NoError(t, err)

	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, report.Attempted, report.Succeeded+report.Failed+report.Skipped)

	failing := report.Failing()
	require.Len(t, failing, 1)
	assert.Equal(t, "a", failing[0].Combination.Key())
	assert.Equal(t, 1, failing[0].ExitCode)
	assert.False(t, report.Halted)
}

func TestRunFailFastIsStrictPrefix(t *testing.T) {
	cat := simpleCatalog(t, "a", "b", "c")
	full := newFakeRunner()
	full.exitFor["b"] = 1
	reference, err := Run(context.Background(), cat, 3, full, Options{Policy: ContinueOnFailure})
	require.NoError(t, err)

	halting := newFakeRunner()
	halting.exitFor["b"] = 1
	report, err := Run(context.Background(), cat, 3, halting, Options{Policy: FailFast})
	require.NoError(t, err)

	assert.True(t, report.Halted)
	refKeys := outcomeKeys(reference.Outcomes)
	gotKeys := outcomeKeys(report.Outcomes)
	require.Less(t, len(gotKeys), len(refKeys))
	assert.Equal(t, refKeys[:len(gotKeys)], gotKeys, "fail-fast output must be a prefix")
	assert.Equal(t, StatusFailed, report.Outcomes[len(report.Outcomes)-1].Status,
		"prefix ends at the first failure")
	assert.Equal(t, []string{"", "a", "b"}, gotKeys)
}

func TestRunFailFastStillProducesReport(t *testing.T) {
	cat := simpleCatalog(t, "a")
	runner := newFakeRunner()
	runner.exitFor[""] = 9 // baseline fails immediately

	report, err := Run(context.Background(), cat, 1, runner, Options{Policy: FailFast})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Attempted)
	assert.Equal(t, 1, report.Failed)
	assert.True(t, report.Halted)
	assert.Equal(t, []string{""}, runner.callOrder(), "no dispatch after the halt")
}

func TestRunDispatchErrorIsFailedOutcomeOnly(t *testing.T) {
	cat := simpleCatalog(t, "a", "b")
	runner := newFakeRunner()
	runner.errFor["a"] = errors.New("could not launch build tool")

	report, err := Run(context.Background(), cat, 1, runner, Options{})
	require.NoError(t, err, "a dispatch error must not abort the run")

	assert.Equal(t, 3, report.Attempted)
	assert.Equal(t, 1, report.Failed)
	failing := report.Failing()
	require.Len(t, failing, 1)
	assert.Negative(t, failing[0].ExitCode, "synthetic non-zero status")
	assert.Contains(t, failing[0].Stderr, "could not launch")
	assert.Contains(t, failing[0].Stderr, "[a]",
		"a bare runner error is normalized into a DispatchError naming the combination")
}

func TestRunPreservesTypedDispatchError(t *testing.T) {
	cat := simpleCatalog(t, "a")
	runner := newFakeRunner()
	runner.errFor["a"] = &fwerrors.DispatchError{
		Features: []string{"a"},
		Message:  "build tool crashed before exec",
	}

	report, err := Run(context.Background(), cat, 1, runner, Options{})
	require.NoError(t, err)

	failing := report.Failing()
	require.Len(t, failing, 1)
	assert.Equal(t, launchFailureExit, failing[0].ExitCode)
	assert.Contains(t, failing[0].Stderr, "build tool crashed before exec")
}

func TestRunSkipCountedSeparately(t *testing.T) {
	cat := simpleCatalog(t, "a")
	runner := newFakeRunner()
	runner.skipFor["a"] = true

	report, err := Run(context.Background(), cat, 1, runner, Options{Policy: FailFast})
	require.NoError(t, err)

	assert.Equal(t, 2, report.Attempted)
	assert.Equal(t, 1, report.Succeeded)
	assert.Equal(t, 1, report.Skipped)
	assert.Zero(t, report.Failed)
	assert.False(t, report.Halted, "a skip does not trigger fail-fast")
	assert.False(t, report.AllSucceeded())
}

func TestRunFilteredAccounting(t *testing.T) {
	cat, err := catalog.Build([]catalog.Feature{
		{Name: "a"},
		{Name: "b", Conflicts: []string{"c"}},
		{Name: "c"},
	})
	require.NoError(t, err)
	runner := newFakeRunner()

	report, err := Run(context.Background(), cat, 2, runner, Options{})
	require.NoError(t, err)

	assert.Equal(t, 6, report.Attempted)
	assert.Equal(t, 1, report.Filtered)
	assert.Equal(t, 7, report.Candidates)
	assert.Equal(t, report.Candidates, report.Attempted+report.Filtered)
}

func TestRunInvalidDepthFailsBeforeDispatch(t *testing.T) {
	cat := simpleCatalog(t, "a")
	runner := newFakeRunner()

	report, err := Run(context.Background(), cat, -2, runner, Options{})
	require.Error(t, err)
	assert.Nil(t, report, "no partial report on config errors")
	assert.Empty(t, runner.callOrder())
}

func TestRunExcludeNoDefaultOption(t *testing.T) {
	cat, err := catalog.Build([]catalog.Feature{
		{Name: "a", Default: true},
		{Name: "b"},
	})
	require.NoError(t, err)
	runner := newFakeRunner()

	report, err := Run(context.Background(), cat, 2, runner, Options{
		Enum: powerset.Options{ExcludeNoDefault: true},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "a,b"}, outcomeKeys(report.Outcomes))
}

func TestRunParallelPreservesEnumerationOrder(t *testing.T) {
	cat := simpleCatalog(t, "a", "b", "c")
	runner := newFakeRunner()
	// Stagger completions so out-of-order arrival is likely.
	runner.delayFor[""] = 30 * time.Millisecond
	runner.delayFor["a"] = 10 * time.Millisecond

	report, err := Run(context.Background(), cat, 3, runner, Options{Workers: 4})
	require.NoError(t, err)

	assert.Equal(t, 8, report.Attempted)
	assert.Equal(t,
		[]string{"", "a", "b", "c", "a,b", "a,c", "b,c", "a,b,c"},
		outcomeKeys(report.Outcomes))
}

func TestRunParallelFailFastStopsScheduling(t *testing.T) {
	cat := simpleCatalog(t, "a", "b", "c")
	runner := newFakeRunner()
	runner.exitFor[""] = 1
	runner.defaultDelay = 50 * time.Millisecond
	runner.delayFor[""] = 0 // the failing baseline returns immediately

	report, err := Run(context.Background(), cat, 3, runner, Options{
		Policy:  FailFast,
		Workers: 2,
	})
	require.NoError(t, err)

	assert.True(t, report.Halted)
	assert.Less(t, report.Attempted, 8, "scheduling stopped after the failure")
	assert.GreaterOrEqual(t, report.Failed, 1)
	// In-flight dispatches were recorded, not killed.
	assert.Equal(t, report.Attempted, report.Succeeded+report.Failed+report.Skipped)
}

func TestRunCancelledContextHalts(t *testing.T) {
	cat := simpleCatalog(t, "a")
	runner := newFakeRunner()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Run(ctx, cat, 1, runner, Options{})
	require.NoError(t, err)
	assert.True(t, report.Halted)
	assert.Zero(t, report.Attempted)
}
