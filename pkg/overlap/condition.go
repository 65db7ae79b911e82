// Package overlap checks candidate roots against an ordered chain of
// shared-prefix conditions. Prefixes counted for one condition are claimed
// and cannot count again for a later condition of the same candidate, so each
// matched prefix ends up in exactly one region of the puzzle.
package overlap

import (
	"sort"

	"github.com/bastiangx/vennroots/pkg/rootindex"
)

// Condition asks a candidate to share at least MinShared unclaimed prefixes
// with every root in Roots at once.
type Condition struct {
	Roots     []rootindex.RootEntry
	MinShared int
}

// Match is the outcome of one condition for one candidate.
type Match struct {
	Roots            []string
	PrefixesInCommon []string
	Count            int
	MinShared        int
	Satisfied        bool
}

// Candidate is a root that passed a whole condition chain.
type Candidate struct {
	Entry   rootindex.RootEntry
	Matches []Match
}

// Check folds the condition chain over entry in order, growing the set of
// claimed prefixes as it goes. It reports every condition's outcome and
// whether all of them held.
func Check(entry rootindex.RootEntry, conditions []Condition) ([]Match, bool) {
	claimed := make(map[string]struct{})
	matches := make([]Match, 0, len(conditions))
	ok := true

	for _, cond := range conditions {
		common := Intersect(entry, cond.Roots, claimed)
		for _, p := range common {
			claimed[p] = struct{}{}
		}
		satisfied := len(common) >= cond.MinShared
		if !satisfied {
			ok = false
		}
		matches = append(matches, Match{
			Roots:            rootNames(cond.Roots),
			PrefixesInCommon: common,
			Count:            len(common),
			MinShared:        cond.MinShared,
			Satisfied:        satisfied,
		})
	}
	return matches, ok
}

// Intersect returns the distinct prefixes of entry that every root in group
// also has, skipping anything in exclude, in sorted order. Entries from
// rootindex.Build are already sorted; hand-built ones are sorted on a copy.
func Intersect(entry rootindex.RootEntry, group []rootindex.RootEntry, exclude map[string]struct{}) []string {
	entry = sortedEntry(entry)
	group = sortedGroup(group)
	common := []string{}
	for i, p := range entry.Prefixes {
		// prefixes are sorted, so duplicates sit next to each other
		if i > 0 && entry.Prefixes[i-1] == p {
			continue
		}
		if _, taken := exclude[p]; taken {
			continue
		}
		if sharedByAll(p, group) {
			common = append(common, p)
		}
	}
	return common
}

// sortedEntry returns e, or a copy with sorted prefixes when e's are not.
func sortedEntry(e rootindex.RootEntry) rootindex.RootEntry {
	if sort.StringsAreSorted(e.Prefixes) {
		return e
	}
	e.Prefixes = append([]string(nil), e.Prefixes...)
	sort.Strings(e.Prefixes)
	return e
}

// sortedGroup leaves group untouched unless one of its entries is unsorted.
func sortedGroup(group []rootindex.RootEntry) []rootindex.RootEntry {
	for i, r := range group {
		if sort.StringsAreSorted(r.Prefixes) {
			continue
		}
		out := append([]rootindex.RootEntry(nil), group...)
		for j := i; j < len(out); j++ {
			out[j] = sortedEntry(out[j])
		}
		return out
	}
	return group
}

func sharedByAll(p string, group []rootindex.RootEntry) bool {
	for _, r := range group {
		if !r.HasPrefix(p) {
			return false
		}
	}
	return true
}

func rootNames(entries []rootindex.RootEntry) []string {
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Root
	}
	return names
}
