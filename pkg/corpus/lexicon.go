package corpus

import (
	"sort"

	"github.com/tchap/go-patricia/v2/patricia"
)

// Lexicon answers membership and prefix queries over a loaded corpus.
// Items stored in the trie are the word ranks.
type Lexicon struct {
	trie  *patricia.Trie
	count int
}

// NewLexicon indexes words; the rank of a word is its 1-based position.
// Repeated words keep their first rank.
func NewLexicon(words []string) *Lexicon {
	lx := &Lexicon{trie: patricia.NewTrie()}
	for i, word := range words {
		if word == "" {
			continue
		}
		if lx.trie.Insert(patricia.Prefix(word), i+1) {
			lx.count++
		}
	}
	return lx
}

// Len returns the number of distinct words.
func (lx *Lexicon) Len() int {
	return lx.count
}

// Contains reports whether word is in the corpus.
func (lx *Lexicon) Contains(word string) bool {
	return lx.trie.Match(patricia.Prefix(word))
}

// Rank returns the corpus rank of word, or 0 when it is absent.
func (lx *Lexicon) Rank(word string) int {
	if rank, ok := lx.trie.Get(patricia.Prefix(word)).(int); ok {
		return rank
	}
	return 0
}

// WithPrefix returns up to limit words starting with prefix, most popular
// first. A limit of 0 returns all of them.
func (lx *Lexicon) WithPrefix(prefix string, limit int) []string {
	type hit struct {
		word string
		rank int
	}
	var hits []hit
	_ = lx.trie.VisitSubtree(patricia.Prefix(prefix), func(p patricia.Prefix, item patricia.Item) error {
		if rank, ok := item.(int); ok {
			hits = append(hits, hit{word: string(p), rank: rank})
		}
		return nil
	})
	sort.Slice(hits, func(i, j int) bool { return hits[i].rank < hits[j].rank })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	words := make([]string, len(hits))
	for i, h := range hits {
		words[i] = h.word
	}
	return words
}
