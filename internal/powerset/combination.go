package powerset

import "strings"

// Combination is one build configuration: a sorted, deduplicated subset of
// feature identifiers. The empty combination is the no-optional-features
// baseline build.
type Combination []string

// Key returns a canonical string identity for the combination.
func (c Combination) Key() string {
	return strings.Join(c, ",")
}

// String renders the combination for logs and reports.
func (c Combination) String() string {
	if len(c) == 0 {
		return "(none)"
	}
	return strings.Join(c, "+")
}

// Contains reports whether the combination includes the named feature.
func (c Combination) Contains(name string) bool {
	for _, f := range c {
		if f == name {
			return true
		}
	}
	return false
}
