// Package rootindex splits corpus words into (prefix, root) pairs and groups
// them into ranked root entries, each carrying the multiset of prefixes that
// rebuild a corpus word when joined with the root.
package rootindex

// SplitWord is a word cut at a fixed offset.
type SplitWord struct {
	Prefix string
	Root   string
}

// Split cuts every word longer than prefixLength into its leading prefix and
// the remaining root. Shorter words would yield an empty root and are skipped.
func Split(words []string, prefixLength int) []SplitWord {
	if prefixLength < 1 {
		return []SplitWord{}
	}
	pairs := make([]SplitWord, 0, len(words))
	for _, word := range words {
		if len(word) <= prefixLength {
			continue
		}
		pairs = append(pairs, SplitWord{
			Prefix: word[:prefixLength],
			Root:   word[prefixLength:],
		})
	}
	return pairs
}
