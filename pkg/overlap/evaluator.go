package overlap

import (
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/charmbracelet/log"
)

// Evaluator filters the root index down to the candidates that satisfy a
// condition chain. It is safe for concurrent use.
type Evaluator struct {
	pool    func() *rootindex.Index
	rebuild bool
}

// NewEvaluator evaluates candidates from a shared, already built index.
func NewEvaluator(ix *rootindex.Index) *Evaluator {
	return &Evaluator{
		pool: func() *rootindex.Index { return ix },
	}
}

// NewRebuildingEvaluator rebuilds the index from words on every Evaluate call.
// The pool and its order are the same as with NewEvaluator on an index built
// from the same words and options; only the cost differs.
func NewRebuildingEvaluator(words []string, opts rootindex.Options) *Evaluator {
	return &Evaluator{
		pool: func() *rootindex.Index {
			return rootindex.Build(words, opts)
		},
		rebuild: true,
	}
}

// Rebuilds reports whether the evaluator rebuilds its index per call.
func (e *Evaluator) Rebuilds() bool {
	return e.rebuild
}

// Evaluate returns, in index order, every root not already in previous that
// passes all conditions. An empty result means the branch is dead.
func (e *Evaluator) Evaluate(previous []rootindex.RootEntry, conditions []Condition) []Candidate {
	ix := e.pool()

	used := make(map[string]struct{}, len(previous))
	for _, p := range previous {
		used[p.Root] = struct{}{}
	}

	var candidates []Candidate
	for _, entry := range ix.Entries() {
		if _, skip := used[entry.Root]; skip {
			continue
		}
		matches, ok := Check(entry, conditions)
		if !ok {
			continue
		}
		candidates = append(candidates, Candidate{Entry: entry, Matches: matches})
	}

	if len(candidates) == 0 {
		log.Debug("no candidates", "previous", rootNames(previous), "conditions", len(conditions))
	}
	return candidates
}
