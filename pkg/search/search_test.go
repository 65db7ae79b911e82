package search

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// at, ing, ed and er each take six one-letter prefixes laid out so that every
// region of a four-circle diagram gets exactly one prefix.
var toyCorpus = strings.Fields(`
	bat cat hat mat sat pat
	bing cing fing sing ping king
	bed fed hed red sed wed
	ber cer fer her mer rer`)

func countOrdered(combos []Combination, roots ...string) int {
	n := 0
	for _, c := range combos {
		if cmp.Equal(c.Roots(), roots) {
			n++
		}
	}
	return n
}

func newSearcher(t *testing.T, opts Options) *Searcher {
	t.Helper()
	s, err := New(opts)
	require.NoError(t, err)
	return s
}

func TestSearchToyCorpus(t *testing.T) {
	res, err := newSearcher(t, DefaultOptions()).Search(context.Background(), toyCorpus)
	require.NoError(t, err)

	assert.Equal(t, 1, countOrdered(res.Combinations, "at", "ing", "ed", "er"))
	// the layout is symmetric, so the mirrored walk is found too
	assert.Equal(t, 1, countOrdered(res.Combinations, "er", "ed", "ing", "at"))
	assert.Len(t, res.Combinations, 2)

	var combo Combination
	for _, c := range res.Combinations {
		if c.Slots[0].Entry.Root == "at" {
			combo = c
		}
	}
	require.Len(t, combo.Slots, 4)
	for i, slot := range combo.Slots {
		assert.Equal(t, i+1, slot.Position)
	}
	assert.Empty(t, combo.Slots[0].Matches)
	assert.Len(t, combo.Slots[1].Matches, 1)
	assert.Len(t, combo.Slots[2].Matches, 2)
	require.Len(t, combo.Slots[3].Matches, 6)

	// er's six prefixes each land in a different region
	var claimed []string
	for _, m := range combo.Slots[3].Matches {
		assert.True(t, m.Satisfied)
		require.Len(t, m.PrefixesInCommon, 1)
		claimed = append(claimed, m.PrefixesInCommon...)
	}
	assert.Equal(t, []string{"b", "c", "f", "h", "m", "r"}, claimed)
}

func TestSearchPerturbedCorpus(t *testing.T) {
	// ged instead of sed leaves at, ing and ed with only one shared prefix
	words := make([]string, len(toyCorpus))
	copy(words, toyCorpus)
	for i, w := range words {
		if w == "sed" {
			words[i] = "ged"
		}
	}

	res, err := newSearcher(t, DefaultOptions()).Search(context.Background(), words)
	require.NoError(t, err)
	for _, c := range res.Combinations {
		assert.NotEqual(t, []string{"at", "ing", "ed"}, c.Roots()[:3])
	}
	assert.Empty(t, res.Combinations)
}

func TestSearchPrunesDeadFirstRoots(t *testing.T) {
	res, err := newSearcher(t, DefaultOptions()).Search(context.Background(), toyCorpus)
	require.NoError(t, err)

	// ng only has two-letter prefixes, so nothing overlaps it
	_, ok := res.Index.Lookup("ng")
	require.True(t, ok)
	for _, c := range res.Combinations {
		assert.NotEqual(t, "ng", c.Slots[0].Entry.Root)
	}
	assert.Equal(t, 5, res.Stats.FirstRoots)
	assert.Equal(t, 2, res.Stats.Combinations)
	assert.GreaterOrEqual(t, res.Stats.Pruned[0], 1)
}

func TestSearchParallelMatchesSequential(t *testing.T) {
	corpus := append(strings.Fields(`
		bill dill fill gill hill kill mill pill sill till will
		ball call fall hall mall tall wall
		bell cell dell fell hell sell tell well
		bat cat fat hat mat pat rat sat vat
		bit fit hit kit lit pit sit wit`), toyCorpus...)

	seq, err := newSearcher(t, DefaultOptions()).Search(context.Background(), corpus)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Workers = 4
	par, err := newSearcher(t, opts).Search(context.Background(), corpus)
	require.NoError(t, err)

	require.NotEmpty(t, seq.Combinations)
	if diff := cmp.Diff(seq.Combinations, par.Combinations); diff != "" {
		t.Errorf("parallel search differs (-sequential +parallel):\n%s", diff)
	}
	assert.Equal(t, seq.Stats.Evaluations, par.Stats.Evaluations)
	assert.Equal(t, seq.Stats.Pruned, par.Stats.Pruned)
}

func TestSearchRebuildMatchesShared(t *testing.T) {
	shared, err := newSearcher(t, DefaultOptions()).Search(context.Background(), toyCorpus)
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.RebuildIndex = true
	rebuilt, err := newSearcher(t, opts).Search(context.Background(), toyCorpus)
	require.NoError(t, err)

	if diff := cmp.Diff(shared.Combinations, rebuilt.Combinations); diff != "" {
		t.Errorf("rebuilding search differs (-shared +rebuilt):\n%s", diff)
	}
}

func TestSearchIndex(t *testing.T) {
	ix := rootindex.Build(toyCorpus, rootindex.DefaultOptions())
	res, err := newSearcher(t, DefaultOptions()).SearchIndex(context.Background(), ix)
	require.NoError(t, err)
	assert.Same(t, ix, res.Index)
	assert.Len(t, res.Combinations, 2)
}

func TestSearchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	opts := DefaultOptions()
	opts.Workers = 2
	_, err := newSearcher(t, opts).Search(ctx, toyCorpus)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestSearchCustomStages(t *testing.T) {
	opts := DefaultOptions()
	opts.Stages = []Stage{
		{Conditions: []GroupCondition{{Positions: []int{1}, MinShared: 4}}},
	}
	res, err := newSearcher(t, opts).Search(context.Background(), toyCorpus)
	require.NoError(t, err)

	var pairs []string
	for _, c := range res.Combinations {
		require.Len(t, c.Slots, 2)
		pairs = append(pairs, strings.Join(c.Roots(), "+"))
	}
	assert.Equal(t, []string{"at+ing", "at+er", "ing+at", "ed+er", "er+at", "er+ed"}, pairs)
}

func TestValidateStages(t *testing.T) {
	require.NoError(t, ValidateStages(DefaultStages()))

	tests := []struct {
		name   string
		stages []Stage
	}{
		{"empty", nil},
		{"no conditions", []Stage{{}}},
		{"empty group", []Stage{{Conditions: []GroupCondition{{MinShared: 1}}}}},
		{"future position", []Stage{{Conditions: []GroupCondition{{Positions: []int{2}, MinShared: 1}}}}},
		{"zero position", []Stage{{Conditions: []GroupCondition{{Positions: []int{0}, MinShared: 1}}}}},
		{"negative threshold", []Stage{{Conditions: []GroupCondition{{Positions: []int{1}, MinShared: -1}}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStages(tt.stages)
			assert.ErrorIs(t, err, ErrInvalidStage)
			_, err = New(Options{Stages: tt.stages})
			assert.ErrorIs(t, err, ErrInvalidStage)
		})
	}
}
