package rootindex

import (
	"sort"
)

// Default thresholds for Build.
const (
	DefaultMinRootLength   = 2
	DefaultMaxPrefixLength = 3
	DefaultMinPrefixCount  = 6
)

// Options controls which split lengths are used and which roots are kept.
type Options struct {
	MinRootLength   int
	MaxPrefixLength int
	MinPrefixCount  int
}

// DefaultOptions returns the thresholds used by the puzzle generator.
func DefaultOptions() Options {
	return Options{
		MinRootLength:   DefaultMinRootLength,
		MaxPrefixLength: DefaultMaxPrefixLength,
		MinPrefixCount:  DefaultMinPrefixCount,
	}
}

// RootEntry is one distinct root and every prefix observed in front of it.
// Prefixes keeps duplicates and is sorted.
type RootEntry struct {
	Root        string
	Prefixes    []string
	PrefixCount int
}

// HasPrefix reports whether p is one of the entry's prefixes. It binary
// searches, so Prefixes must be sorted as Build leaves them.
func (e RootEntry) HasPrefix(p string) bool {
	i := sort.SearchStrings(e.Prefixes, p)
	return i < len(e.Prefixes) && e.Prefixes[i] == p
}

// Words rebuilds the corpus words behind the entry, in prefix order.
func (e RootEntry) Words() []string {
	words := make([]string, len(e.Prefixes))
	for i, p := range e.Prefixes {
		words[i] = p + e.Root
	}
	return words
}

// Index is the filtered, ranked list of root entries built from one corpus.
// It is never modified after Build and may be shared between goroutines.
type Index struct {
	entries []RootEntry
	byRoot  map[string]int
	opts    Options
}

// Build splits words at every prefix length from 1 to MaxPrefixLength, groups
// the pairs by root, drops roots that are too short or have too few prefixes,
// and ranks the rest by prefix count, highest first. Roots with equal counts
// keep the order in which they were first seen.
func Build(words []string, opts Options) *Index {
	var pairs []SplitWord
	for k := 1; k <= opts.MaxPrefixLength; k++ {
		pairs = append(pairs, Split(words, k)...)
	}

	var order []string
	grouped := make(map[string][]string)
	for _, pair := range pairs {
		if _, seen := grouped[pair.Root]; !seen {
			order = append(order, pair.Root)
		}
		grouped[pair.Root] = append(grouped[pair.Root], pair.Prefix)
	}

	entries := make([]RootEntry, 0, len(order))
	for _, root := range order {
		prefixes := grouped[root]
		if len(prefixes) < opts.MinPrefixCount || len(root) < opts.MinRootLength {
			continue
		}
		sort.Strings(prefixes)
		entries = append(entries, RootEntry{
			Root:        root,
			Prefixes:    prefixes,
			PrefixCount: len(prefixes),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PrefixCount > entries[j].PrefixCount
	})

	byRoot := make(map[string]int, len(entries))
	for i, e := range entries {
		byRoot[e.Root] = i
	}
	return &Index{entries: entries, byRoot: byRoot, opts: opts}
}

// Entries returns the ranked entries. Callers must not modify the result.
func (ix *Index) Entries() []RootEntry {
	return ix.entries
}

// Len returns the number of retained roots.
func (ix *Index) Len() int {
	return len(ix.entries)
}

// Lookup finds the entry for root.
func (ix *Index) Lookup(root string) (RootEntry, bool) {
	i, ok := ix.byRoot[root]
	if !ok {
		return RootEntry{}, false
	}
	return ix.entries[i], true
}

// Options returns the thresholds the index was built with.
func (ix *Index) Options() Options {
	return ix.opts
}
