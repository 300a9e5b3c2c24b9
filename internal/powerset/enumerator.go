package powerset

import (
	"fmt"
	"sort"

	"github.com/featwalk/featwalk/internal/catalog"
	fwerrors "github.com/featwalk/featwalk/internal/errors"
)

// Options tunes enumeration beyond the depth bound.
type Options struct {
	// ExcludeNoDefault drops combinations that contain none of the
	// catalog's default-marked features (the empty combination included).
	// It has no effect when the catalog marks no defaults.
	ExcludeNoDefault bool
}

// Enumerator lazily yields the feasible feature combinations of a catalog,
// ascending by size and lexicographic within each size. It follows the
// Next/Reset convention: call Next until it reports false.
//
// Candidate subsets that violate a conflict relation are filtered before
// emission. A candidate missing a required feature is auto-completed with its
// requires closure; if the closure exceeds the depth bound, introduces a
// conflict, or duplicates an already-yielded combination, the candidate is
// filtered instead. Enumeration is deterministic and restartable: two
// enumerators over the same inputs yield identical sequences.
type Enumerator struct {
	cat      *catalog.Catalog
	maxDepth int
	opts     Options

	names []string

	size    int   // subset size currently being generated
	idx     []int // indices into names for the current subset, nil before first
	started bool
	done    bool

	seen       map[string]bool
	candidates int
	filtered   int
}

// New builds an enumerator over the catalog, bounded by maxDepth.
// maxDepth 0 yields exactly the empty combination; maxDepth >= the catalog
// size yields the full feasible powerset. A negative maxDepth is a
// configuration error.
func New(cat *catalog.Catalog, maxDepth int, opts Options) (*Enumerator, error) {
	if maxDepth < 0 {
		return nil, fwerrors.NewConfigError(fwerrors.InvalidDepth,
			fmt.Sprintf("max depth must be >= 0, got %d", maxDepth), "")
	}
	e := &Enumerator{
		cat:      cat,
		maxDepth: maxDepth,
		opts:     opts,
		names:    cat.Names(),
	}
	e.Reset()
	return e, nil
}

// Reset rewinds the enumerator to the start of the sequence.
func (e *Enumerator) Reset() {
	e.size = 0
	e.idx = nil
	e.started = false
	e.done = false
	e.seen = map[string]bool{}
	e.candidates = 0
	e.filtered = 0
}

// Candidates returns how many raw subsets have been considered so far.
// After the sequence is exhausted it equals sum of C(n, k) for k in
// 0..min(maxDepth, n).
func (e *Enumerator) Candidates() int { return e.candidates }

// Filtered returns how many considered subsets were not yielded. At any
// point, Candidates() == yielded + Filtered().
func (e *Enumerator) Filtered() int { return e.filtered }

// Next returns the next feasible combination. The second return value is
// false once the sequence is exhausted.
func (e *Enumerator) Next() (Combination, bool) {
	for {
		cand, ok := e.nextCandidate()
		if !ok {
			return nil, false
		}
		e.candidates++

		if e.violatesConflict(cand) {
			e.filtered++
			continue
		}

		full := e.requiresClosure(cand)
		if len(full) > e.maxDepth {
			// Auto-completion is not allowed to exceed the requested
			// depth: the candidate is infeasible at this depth.
			e.filtered++
			continue
		}
		if e.violatesConflict(full) {
			e.filtered++
			continue
		}
		if e.opts.ExcludeNoDefault && e.cat.HasDefaults() && !e.containsDefault(full) {
			e.filtered++
			continue
		}

		key := full.Key()
		if e.seen[key] {
			e.filtered++
			continue
		}
		e.seen[key] = true
		return full, true
	}
}

// nextCandidate advances through subsets of e.names: ascending size, then
// lexicographic within a size (the names slice is sorted).
func (e *Enumerator) nextCandidate() (Combination, bool) {
	if e.done {
		return nil, false
	}
	if !e.started {
		e.started = true
		return Combination{}, true // size 0 baseline
	}

	limit := e.maxDepth
	if limit > len(e.names) {
		limit = len(e.names)
	}

	for {
		if e.idx == nil {
			e.size++
			if e.size > limit {
				e.done = true
				return nil, false
			}
			e.idx = make([]int, e.size)
			for i := range e.idx {
				e.idx[i] = i
			}
			return e.current(), true
		}

		// Advance the rightmost index that still has room.
		i := e.size - 1
		for i >= 0 && e.idx[i] == len(e.names)-e.size+i {
			i--
		}
		if i < 0 {
			e.idx = nil // size exhausted, move to the next one
			continue
		}
		e.idx[i]++
		for j := i + 1; j < e.size; j++ {
			e.idx[j] = e.idx[j-1] + 1
		}
		return e.current(), true
	}
}

func (e *Enumerator) current() Combination {
	out := make(Combination, e.size)
	for i, ix := range e.idx {
		out[i] = e.names[ix]
	}
	return out
}

func (e *Enumerator) violatesConflict(c Combination) bool {
	for i := 0; i < len(c); i++ {
		for j := i + 1; j < len(c); j++ {
			if e.cat.Conflicts(c[i], c[j]) {
				return true
			}
		}
	}
	return false
}

// requiresClosure returns the candidate extended with the transitive closure
// of its requires relations, sorted and deduplicated.
func (e *Enumerator) requiresClosure(c Combination) Combination {
	in := map[string]bool{}
	queue := make([]string, 0, len(c))
	for _, f := range c {
		in[f] = true
		queue = append(queue, f)
	}
	for len(queue) > 0 {
		f := queue[0]
		queue = queue[1:]
		for _, req := range e.cat.Requires(f) {
			if !in[req] {
				in[req] = true
				queue = append(queue, req)
			}
		}
	}
	if len(in) == len(c) {
		return c
	}
	out := make(Combination, 0, len(in))
	for f := range in {
		out = append(out, f)
	}
	sort.Strings(out)
	return out
}

func (e *Enumerator) containsDefault(c Combination) bool {
	for _, f := range c {
		if e.cat.IsDefault(f) {
			return true
		}
	}
	return false
}

// Collect drains the enumerator into a slice. Intended for small catalogs
// and tests; large catalogs should consume Next directly.
func (e *Enumerator) Collect() []Combination {
	var out []Combination
	for {
		c, ok := e.Next()
		if !ok {
			return out
		}
		out = append(out, c)
	}
}
