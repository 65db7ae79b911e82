package rootindex

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var toyCorpus = strings.Fields(`
	bat cat hat mat sat pat
	bing cing fing sing ping king
	bed fed hed red sed wed
	ber cer fer her mer rer`)

// a loose sample of common words, enough to produce a handful of roots
var sampleCorpus = strings.Fields(`
	the that then than this they there these those other
	and band hand land sand stand brand grand
	ate bate date fate gate hate late mate rate sate
	bit fit hit kit lit pit sit wit quit spit split
	ring bring string spring sing king wing ding
	old bold cold fold gold hold mold sold told
	ill bill dill fill gill hill kill mill pill sill till will
	ear bear dear fear gear hear near pear rear sear tear wear year
	all ball call fall hall mall tall wall stall small
	ight light might night right sight tight fight eight`)

func TestSplit(t *testing.T) {
	tests := []struct {
		name   string
		words  []string
		length int
		want   []SplitWord
	}{
		{"one letter", []string{"bat"}, 1, []SplitWord{{"b", "at"}}},
		{"two letters", []string{"bring"}, 2, []SplitWord{{"br", "ing"}}},
		{"three letters", []string{"string"}, 3, []SplitWord{{"str", "ing"}}},
		{"too short", []string{"at", "a", ""}, 2, []SplitWord{}},
		{"mixed", []string{"be", "bed", "b"}, 1, []SplitWord{{"b", "e"}, {"b", "ed"}}},
		{"invalid length", []string{"bat"}, 0, []SplitWord{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Split(tt.words, tt.length)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitRebuildsWord(t *testing.T) {
	for k := 1; k <= 3; k++ {
		for _, w := range sampleCorpus {
			pairs := Split([]string{w}, k)
			if len(w) <= k {
				assert.Empty(t, pairs, "word %q at %d", w, k)
				continue
			}
			require.Len(t, pairs, 1)
			assert.Equal(t, w[:k], pairs[0].Prefix)
			assert.Equal(t, w[k:], pairs[0].Root)
			assert.Equal(t, w, pairs[0].Prefix+pairs[0].Root)
		}
	}
}

func TestBuildToyCorpus(t *testing.T) {
	ix := Build(toyCorpus, DefaultOptions())

	var roots []string
	for _, e := range ix.Entries() {
		roots = append(roots, e.Root)
	}
	assert.Equal(t, []string{"at", "ing", "ed", "er", "ng"}, roots)

	at, ok := ix.Lookup("at")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "c", "h", "m", "p", "s"}, at.Prefixes)
	assert.Equal(t, 6, at.PrefixCount)
	assert.Equal(t, []string{"bat", "cat", "hat", "mat", "pat", "sat"}, at.Words())

	ng, ok := ix.Lookup("ng")
	require.True(t, ok)
	assert.Equal(t, []string{"bi", "ci", "fi", "ki", "pi", "si"}, ng.Prefixes)

	_, ok = ix.Lookup("t")
	assert.False(t, ok, "single letter roots are dropped")
}

func TestBuildIsDeterministic(t *testing.T) {
	first := Build(sampleCorpus, DefaultOptions())
	second := Build(sampleCorpus, DefaultOptions())
	if diff := cmp.Diff(first.Entries(), second.Entries()); diff != "" {
		t.Errorf("index differs between builds (-first +second):\n%s", diff)
	}
}

func TestBuildInvariants(t *testing.T) {
	opts := DefaultOptions()
	ix := Build(sampleCorpus, opts)
	require.NotZero(t, ix.Len())

	prev := -1
	for i, e := range ix.Entries() {
		assert.GreaterOrEqual(t, e.PrefixCount, opts.MinPrefixCount, e.Root)
		assert.GreaterOrEqual(t, len(e.Root), opts.MinRootLength, e.Root)
		assert.Equal(t, len(e.Prefixes), e.PrefixCount, e.Root)
		assert.IsNonDecreasing(t, e.Prefixes, e.Root)
		if i > 0 {
			assert.LessOrEqual(t, e.PrefixCount, prev, "entry %d (%s) breaks ranking", i, e.Root)
		}
		prev = e.PrefixCount
	}
}

func TestBuildKeepsDuplicatePrefixes(t *testing.T) {
	words := []string{"bat", "bat", "cat", "hat", "mat", "sat"}
	ix := Build(words, DefaultOptions())
	at, ok := ix.Lookup("at")
	require.True(t, ok)
	assert.Equal(t, []string{"b", "b", "c", "h", "m", "s"}, at.Prefixes)
	assert.True(t, at.HasPrefix("b"))
	assert.False(t, at.HasPrefix("z"))
}

func TestBuildOptions(t *testing.T) {
	t.Run("lower prefix threshold keeps more roots", func(t *testing.T) {
		strict := Build(sampleCorpus, DefaultOptions())
		loose := Build(sampleCorpus, Options{MinRootLength: 2, MaxPrefixLength: 3, MinPrefixCount: 2})
		assert.Greater(t, loose.Len(), strict.Len())
	})

	t.Run("single prefix length", func(t *testing.T) {
		ix := Build(toyCorpus, Options{MinRootLength: 2, MaxPrefixLength: 1, MinPrefixCount: 6})
		_, ok := ix.Lookup("ng")
		assert.False(t, ok, "ng only appears with two letter prefixes")
		assert.Equal(t, 4, ix.Len())
	})

	t.Run("longer roots only", func(t *testing.T) {
		ix := Build(toyCorpus, Options{MinRootLength: 3, MaxPrefixLength: 3, MinPrefixCount: 6})
		require.Equal(t, 1, ix.Len())
		assert.Equal(t, "ing", ix.Entries()[0].Root)
	})

	t.Run("empty corpus", func(t *testing.T) {
		ix := Build(nil, DefaultOptions())
		assert.Zero(t, ix.Len())
		assert.Empty(t, ix.Entries())
	})
}

func TestBuildRanksByPrefixCount(t *testing.T) {
	// "ill" collects eleven prefixes, "old" eight
	ix := Build(sampleCorpus, DefaultOptions())
	ill, ok := ix.Lookup("ill")
	require.True(t, ok)
	old, ok := ix.Lookup("old")
	require.True(t, ok)
	require.Greater(t, ill.PrefixCount, old.PrefixCount)

	pos := func(root string) int {
		for i, e := range ix.Entries() {
			if e.Root == root {
				return i
			}
		}
		return -1
	}
	assert.Less(t, pos("ill"), pos("old"))
}
