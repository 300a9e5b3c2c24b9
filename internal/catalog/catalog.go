package catalog

import (
	"fmt"
	"sort"

	fwerrors "github.com/featwalk/featwalk/internal/errors"
)

// Feature is a named optional capability of the target project's build.
// Conflicts lists features that can never co-occur with this one;
// Requires lists features that must be enabled alongside it.
type Feature struct {
	Name      string
	Default   bool
	Conflicts []string
	Requires  []string
}

// Catalog is a validated, immutable set of features. Conflict relations are
// stored symmetrically regardless of which side declared them.
type Catalog struct {
	names     []string // sorted, unique
	defaults  map[string]bool
	conflicts map[string]map[string]bool
	requires  map[string][]string // sorted values
}

// Build validates the feature set and constructs a Catalog.
//
// It fails with DuplicateFeature when a name repeats, UnknownFeatureReference
// when a conflict/requires relation names a feature outside the set, and
// ContradictoryConstraint when a feature both conflicts with and requires the
// same other feature (or conflicts with itself).
func Build(features []Feature) (*Catalog, error) {
	c := &Catalog{
		defaults:  map[string]bool{},
		conflicts: map[string]map[string]bool{},
		requires:  map[string][]string{},
	}

	seen := map[string]bool{}
	for _, f := range features {
		if f.Name == "" {
			return nil, fwerrors.NewConfigError(fwerrors.InvalidManifest,
				"feature with empty name", "")
		}
		if seen[f.Name] {
			return nil, fwerrors.NewConfigError(fwerrors.DuplicateFeature,
				fmt.Sprintf("feature %q declared more than once", f.Name), "")
		}
		seen[f.Name] = true
		c.names = append(c.names, f.Name)
		if f.Default {
			c.defaults[f.Name] = true
		}
	}
	sort.Strings(c.names)

	for _, f := range features {
		for _, other := range f.Conflicts {
			if !seen[other] {
				return nil, fwerrors.NewConfigError(fwerrors.UnknownFeatureReference,
					fmt.Sprintf("feature %q conflicts with unknown feature %q", f.Name, other), "")
			}
			if other == f.Name {
				return nil, fwerrors.NewConfigError(fwerrors.ContradictoryConstraint,
					fmt.Sprintf("feature %q conflicts with itself", f.Name), "")
			}
			c.addConflict(f.Name, other)
		}
		reqSet := map[string]bool{}
		for _, other := range f.Requires {
			if !seen[other] {
				return nil, fwerrors.NewConfigError(fwerrors.UnknownFeatureReference,
					fmt.Sprintf("feature %q requires unknown feature %q", f.Name, other), "")
			}
			if other == f.Name {
				continue
			}
			reqSet[other] = true
		}
		if len(reqSet) > 0 {
			reqs := make([]string, 0, len(reqSet))
			for name := range reqSet {
				reqs = append(reqs, name)
			}
			sort.Strings(reqs)
			c.requires[f.Name] = reqs
		}
	}

	// A feature must not require something it conflicts with.
	for name, reqs := range c.requires {
		for _, req := range reqs {
			if c.Conflicts(name, req) {
				return nil, fwerrors.NewConfigError(fwerrors.ContradictoryConstraint,
					fmt.Sprintf("feature %q both requires and conflicts with %q", name, req), "")
			}
		}
	}

	return c, nil
}

func (c *Catalog) addConflict(a, b string) {
	if c.conflicts[a] == nil {
		c.conflicts[a] = map[string]bool{}
	}
	if c.conflicts[b] == nil {
		c.conflicts[b] = map[string]bool{}
	}
	c.conflicts[a][b] = true
	c.conflicts[b][a] = true
}

// Len returns the number of features.
func (c *Catalog) Len() int { return len(c.names) }

// Names returns the feature identifiers in sorted order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Has reports whether the catalog contains the named feature.
func (c *Catalog) Has(name string) bool {
	i := sort.SearchStrings(c.names, name)
	return i < len(c.names) && c.names[i] == name
}

// Conflicts reports whether two features can never co-occur.
func (c *Catalog) Conflicts(a, b string) bool {
	return c.conflicts[a][b]
}

// Requires returns the features the named feature requires, sorted.
func (c *Catalog) Requires(name string) []string {
	return c.requires[name]
}

// IsDefault reports whether the feature is part of the default set.
func (c *Catalog) IsDefault(name string) bool {
	return c.defaults[name]
}

// HasDefaults reports whether any feature is marked default.
func (c *Catalog) HasDefaults() bool { return len(c.defaults) > 0 }
