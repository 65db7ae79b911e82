// Package search runs the staged backtracking search for root combinations.
//
// The first root walks the whole index in rank order. Each following root is
// drawn from the candidates that satisfy its stage's condition chain against
// the roots already placed; a stage with no candidates prunes the branch.
package search

import (
	"context"
	"fmt"
	"time"

	"github.com/bastiangx/vennroots/internal/logger"
	"github.com/bastiangx/vennroots/pkg/overlap"
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"golang.org/x/sync/errgroup"
)

// Slot is a root placed at a position (1-based) of a combination, together
// with the condition outcomes that admitted it. The first slot has none.
type Slot struct {
	Entry    rootindex.RootEntry
	Position int
	Matches  []overlap.Match
}

// Combination is one full path through the search.
type Combination struct {
	Slots []Slot
}

// Roots lists the combination's roots by position.
func (c Combination) Roots() []string {
	roots := make([]string, len(c.Slots))
	for i, s := range c.Slots {
		roots[i] = s.Entry.Root
	}
	return roots
}

// Options configures a Searcher.
type Options struct {
	Index        rootindex.Options
	Stages       []Stage
	Workers      int
	RebuildIndex bool
}

// DefaultOptions returns sequential search with the default thresholds.
func DefaultOptions() Options {
	return Options{
		Index:   rootindex.DefaultOptions(),
		Stages:  DefaultStages(),
		Workers: 1,
	}
}

// Stats counts the work done by one search.
type Stats struct {
	FirstRoots   int
	Evaluations  int
	Pruned       []int // dead branches per stage
	Combinations int
	Elapsed      time.Duration
}

func (s *Stats) add(o Stats) {
	s.FirstRoots += o.FirstRoots
	s.Evaluations += o.Evaluations
	s.Combinations += o.Combinations
	for i := range o.Pruned {
		s.Pruned[i] += o.Pruned[i]
	}
}

// Result is everything a search produced.
type Result struct {
	Index        *rootindex.Index
	Combinations []Combination
	Stats        Stats
}

// Searcher finds root combinations in a corpus.
type Searcher struct {
	opts Options
}

// New validates opts and returns a Searcher.
func New(opts Options) (*Searcher, error) {
	if err := ValidateStages(opts.Stages); err != nil {
		return nil, err
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	return &Searcher{opts: opts}, nil
}

// Search builds the root index from words and runs the search over it.
func (s *Searcher) Search(ctx context.Context, words []string) (*Result, error) {
	ix := rootindex.Build(words, s.opts.Index)

	eval := overlap.NewEvaluator(ix)
	if s.opts.RebuildIndex {
		eval = overlap.NewRebuildingEvaluator(words, s.opts.Index)
	}
	return s.run(ctx, ix, eval)
}

// SearchIndex runs the search over an index that was built elsewhere.
func (s *Searcher) SearchIndex(ctx context.Context, ix *rootindex.Index) (*Result, error) {
	return s.run(ctx, ix, overlap.NewEvaluator(ix))
}

func (s *Searcher) run(ctx context.Context, ix *rootindex.Index, eval *overlap.Evaluator) (*Result, error) {
	lg := logger.New("search")
	start := time.Now()
	entries := ix.Entries()

	lg.Debug("starting", "roots", len(entries), "stages", len(s.opts.Stages),
		"workers", s.opts.Workers, "rebuild", eval.Rebuilds())

	branches := make([][]Combination, len(entries))
	branchStats := make([]Stats, len(entries))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.Workers)
	for i, root1 := range entries {
		if gctx.Err() != nil {
			break
		}
		i, root1 := i, root1
		g.Go(func() error {
			st := Stats{Pruned: make([]int, len(s.opts.Stages))}
			first := []Slot{{Entry: root1, Position: 1}}
			combos, err := s.extend(gctx, eval, first, &st)
			if err != nil {
				return err
			}
			st.FirstRoots = 1
			branches[i] = combos
			branchStats[i] = st
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("search stopped: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("search stopped: %w", err)
	}

	res := &Result{
		Index: ix,
		Stats: Stats{Pruned: make([]int, len(s.opts.Stages))},
	}
	for i := range branches {
		res.Combinations = append(res.Combinations, branches[i]...)
		res.Stats.add(branchStats[i])
	}
	res.Stats.Elapsed = time.Since(start)

	lg.Debug("done", "combinations", res.Stats.Combinations, "evaluations", res.Stats.Evaluations,
		"pruned", res.Stats.Pruned, "took", res.Stats.Elapsed)
	return res, nil
}

// extend places the next root on path, recursing until every stage is done.
func (s *Searcher) extend(ctx context.Context, eval *overlap.Evaluator, path []Slot, st *Stats) ([]Combination, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stageIdx := len(path) - 1
	if stageIdx == len(s.opts.Stages) {
		slots := make([]Slot, len(path))
		copy(slots, path)
		st.Combinations++
		return []Combination{{Slots: slots}}, nil
	}

	previous := make([]rootindex.RootEntry, len(path))
	for i, slot := range path {
		previous[i] = slot.Entry
	}

	stage := s.opts.Stages[stageIdx]
	st.Evaluations++
	candidates := eval.Evaluate(previous, stage.resolve(path))
	if len(candidates) == 0 {
		st.Pruned[stageIdx]++
		return nil, nil
	}

	var found []Combination
	for _, c := range candidates {
		next := append(path[:len(path):len(path)], Slot{
			Entry:    c.Entry,
			Position: len(path) + 1,
			Matches:  c.Matches,
		})
		combos, err := s.extend(ctx, eval, next, st)
		if err != nil {
			return nil, err
		}
		found = append(found, combos...)
	}
	return found, nil
}
