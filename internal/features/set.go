package features

import (
	"sort"
	"strings"
)

// StringSet is an unordered set of normalized strings
type StringSet map[string]struct{}

// NewStringSet builds a set from the given values, skipping blanks
func NewStringSet(values ...string) StringSet {
	set := make(StringSet, len(values))
	for _, v := range values {
		set.Add(v)
	}
	return set
}

// NormalizedSet trims and lowercases every value before adding it
func NormalizedSet(values []string) StringSet {
	set := make(StringSet, len(values))
	for _, v := range values {
		set.Add(strings.ToLower(strings.TrimSpace(v)))
	}
	return set
}

// Add inserts a value; empty strings are ignored
func (s StringSet) Add(v string) {
	if v == "" {
		return
	}
	s[v] = struct{}{}
}

// Has reports whether v is a member
func (s StringSet) Has(v string) bool {
	_, ok := s[v]
	return ok
}

// Len returns the number of members
func (s StringSet) Len() int {
	return len(s)
}

// Union adds every member of other into s
func (s StringSet) Union(other StringSet) {
	for v := range other {
		s[v] = struct{}{}
	}
}

// Intersects reports whether the two sets share at least one member
func (s StringSet) Intersects(other StringSet) bool {
	small, large := s, other
	if len(small) > len(large) {
		small, large = large, small
	}
	for v := range small {
		if large.Has(v) {
			return true
		}
	}
	return false
}

// Sorted returns the members in lexicographic order
func (s StringSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Jaccard returns |a∩b| / |a∪b|. An empty union yields 0.
func Jaccard(a, b StringSet) float64 {
	inter := 0
	for v := range a {
		if b.Has(v) {
			inter++
		}
	}
	union := len(a) + len(b) - inter
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
