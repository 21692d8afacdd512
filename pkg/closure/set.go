package closure

import (
	"maps"
	"slices"
	"strings"
)

// Set is a set of dependency identities.
type Set map[string]struct{}

// Add inserts s. Adding an existing member is a no-op.
func (set Set) Add(s string) { set[s] = struct{}{} }

// Has reports whether s is a member.
func (set Set) Has(s string) bool {
	_, ok := set[s]
	return ok
}

// Len returns the number of members.
func (set Set) Len() int { return len(set) }

// Sorted returns the members in lexical order.
func (set Set) Sorted() []string { return slices.Sorted(maps.Keys(set)) }

// Filter returns the sorted members containing substr. An empty substr
// returns every member.
func (set Set) Filter(substr string) []string {
	out := make([]string, 0, len(set))
	for _, s := range set.Sorted() {
		if strings.Contains(s, substr) {
			out = append(out, s)
		}
	}
	return out
}
