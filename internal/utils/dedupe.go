package utils

import (
	"strings"
)

// WordFilter drops repeated words, ignoring case. The first spelling seen wins.
type WordFilter struct {
	seenWords map[string]bool
}

// NewWordFilter creates an empty filter.
func NewWordFilter() *WordFilter {
	return &WordFilter{seenWords: make(map[string]bool)}
}

// ShouldInclude checks if a word should be kept (not a duplicate)
// Returns true the first time a word is seen, false afterwards
func (f *WordFilter) ShouldInclude(word string) bool {
	lowerWord := strings.ToLower(word)
	if f.seenWords[lowerWord] {
		return false
	}
	f.seenWords[lowerWord] = true
	return true
}

// Seen returns how many distinct words passed the filter.
func (f *WordFilter) Seen() int {
	return len(f.seenWords)
}
