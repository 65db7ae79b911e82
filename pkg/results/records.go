package results

import (
	"time"

	"github.com/bastiangx/vennroots/pkg/overlap"
	"github.com/bastiangx/vennroots/pkg/rootindex"
	"github.com/bastiangx/vennroots/pkg/search"
)

// IndexRecord is one root of the index. Prefixes is nil in compact output.
type IndexRecord struct {
	Root        string   `json:"root" msgpack:"root" yaml:"root"`
	PrefixCount int      `json:"prefix_count" msgpack:"prefix_count" yaml:"prefix_count"`
	Prefixes    []string `json:"prefixes,omitempty" msgpack:"prefixes,omitempty" yaml:"prefixes,omitempty"`
}

// MatchRecord is one condition outcome for a placed root.
type MatchRecord struct {
	Roots            []string `json:"roots" msgpack:"roots" yaml:"roots"`
	PrefixesInCommon []string `json:"prefixes_in_common" msgpack:"prefixes_in_common" yaml:"prefixes_in_common"`
	Count            int      `json:"count" msgpack:"count" yaml:"count"`
	MinShared        int      `json:"min_shared" msgpack:"min_shared" yaml:"min_shared"`
	Satisfied        bool     `json:"satisfied" msgpack:"satisfied" yaml:"satisfied"`
}

// RootRecord is a root placed in a combination.
type RootRecord struct {
	Root             string        `json:"root" msgpack:"root" yaml:"root"`
	RootNumber       int           `json:"root_number" msgpack:"root_number" yaml:"root_number"`
	PrefixCount      int           `json:"prefix_count" msgpack:"prefix_count" yaml:"prefix_count"`
	Prefixes         []string      `json:"prefixes" msgpack:"prefixes" yaml:"prefixes"`
	Words            []string      `json:"words" msgpack:"words" yaml:"words"`
	ConditionMatches []MatchRecord `json:"condition_matches" msgpack:"condition_matches" yaml:"condition_matches"`
}

// CombinationRecord holds the placed roots of one combination in order.
type CombinationRecord struct {
	Roots []RootRecord `json:"roots" msgpack:"roots" yaml:"roots"`
}

// Report is the combinations artifact of one run.
type Report struct {
	RunID        string              `json:"run_id" msgpack:"run_id" yaml:"run_id"`
	CreatedAt    time.Time           `json:"created_at" msgpack:"created_at" yaml:"created_at"`
	CorpusWords  int                 `json:"corpus_words" msgpack:"corpus_words" yaml:"corpus_words"`
	IndexedRoots int                 `json:"indexed_roots" msgpack:"indexed_roots" yaml:"indexed_roots"`
	Count        int                 `json:"count" msgpack:"count" yaml:"count"`
	Combinations []CombinationRecord `json:"combinations" msgpack:"combinations" yaml:"combinations"`
}

// NewIndexRecords converts an index, optionally dropping prefix lists.
func NewIndexRecords(ix *rootindex.Index, compact bool) []IndexRecord {
	records := make([]IndexRecord, 0, ix.Len())
	for _, e := range ix.Entries() {
		rec := IndexRecord{Root: e.Root, PrefixCount: e.PrefixCount}
		if !compact {
			rec.Prefixes = e.Prefixes
		}
		records = append(records, rec)
	}
	return records
}

// NewCombinationRecord converts a search combination.
func NewCombinationRecord(c search.Combination) CombinationRecord {
	rec := CombinationRecord{Roots: make([]RootRecord, len(c.Slots))}
	for i, slot := range c.Slots {
		rec.Roots[i] = RootRecord{
			Root:             slot.Entry.Root,
			RootNumber:       slot.Position,
			PrefixCount:      slot.Entry.PrefixCount,
			Prefixes:         slot.Entry.Prefixes,
			Words:            slot.Entry.Words(),
			ConditionMatches: newMatchRecords(slot.Matches),
		}
	}
	return rec
}

func newMatchRecords(matches []overlap.Match) []MatchRecord {
	records := make([]MatchRecord, len(matches))
	for i, m := range matches {
		records[i] = MatchRecord{
			Roots:            m.Roots,
			PrefixesInCommon: m.PrefixesInCommon,
			Count:            m.Count,
			MinShared:        m.MinShared,
			Satisfied:        m.Satisfied,
		}
	}
	return records
}

// NewReport assembles the combinations artifact for a finished search.
func NewReport(runID string, corpusWords int, res *search.Result) *Report {
	report := &Report{
		RunID:        runID,
		CreatedAt:    time.Now().UTC().Truncate(time.Second),
		CorpusWords:  corpusWords,
		IndexedRoots: res.Index.Len(),
		Count:        len(res.Combinations),
		Combinations: make([]CombinationRecord, len(res.Combinations)),
	}
	for i, c := range res.Combinations {
		report.Combinations[i] = NewCombinationRecord(c)
	}
	return report
}
