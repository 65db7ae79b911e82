package search

import (
	"errors"
	"fmt"

	"github.com/bastiangx/vennroots/pkg/overlap"
	"github.com/bastiangx/vennroots/pkg/rootindex"
)

// ErrInvalidStage is returned when a stage refers to a position that has not
// been chosen yet or is otherwise malformed.
var ErrInvalidStage = errors.New("invalid search stage")

// GroupCondition is a condition written against positions (1-based) of roots
// already placed in the combination.
type GroupCondition struct {
	Positions []int
	MinShared int
}

// Stage picks the root for one position. Stage i of a plan fills position i+2.
type Stage struct {
	Conditions []GroupCondition
}

// DefaultStages is the chain for a four-circle puzzle:
//
//	root2: {1}:4
//	root3: {1,2}:2 {2}:1
//	root4: {1,2,3}:1 {1,2}:1 {2,3}:1 {1,3}:1 {1}:1 {3}:1
func DefaultStages() []Stage {
	return []Stage{
		{Conditions: []GroupCondition{
			{Positions: []int{1}, MinShared: 4},
		}},
		{Conditions: []GroupCondition{
			{Positions: []int{1, 2}, MinShared: 2},
			{Positions: []int{2}, MinShared: 1},
		}},
		{Conditions: []GroupCondition{
			{Positions: []int{1, 2, 3}, MinShared: 1},
			{Positions: []int{1, 2}, MinShared: 1},
			{Positions: []int{2, 3}, MinShared: 1},
			{Positions: []int{1, 3}, MinShared: 1},
			{Positions: []int{1}, MinShared: 1},
			{Positions: []int{3}, MinShared: 1},
		}},
	}
}

// ValidateStages checks that every condition only names positions filled by
// earlier stages.
func ValidateStages(stages []Stage) error {
	if len(stages) == 0 {
		return fmt.Errorf("%w: no stages", ErrInvalidStage)
	}
	for i, st := range stages {
		placed := i + 1
		if len(st.Conditions) == 0 {
			return fmt.Errorf("%w: stage for root%d has no conditions", ErrInvalidStage, placed+1)
		}
		for j, c := range st.Conditions {
			if len(c.Positions) == 0 {
				return fmt.Errorf("%w: root%d condition %d has an empty group", ErrInvalidStage, placed+1, j+1)
			}
			if c.MinShared < 0 {
				return fmt.Errorf("%w: root%d condition %d has negative min_shared %d", ErrInvalidStage, placed+1, j+1, c.MinShared)
			}
			for _, pos := range c.Positions {
				if pos < 1 || pos > placed {
					return fmt.Errorf("%w: root%d condition %d refers to root%d", ErrInvalidStage, placed+1, j+1, pos)
				}
			}
		}
	}
	return nil
}

// resolve turns positional conditions into entry conditions for the roots
// placed so far.
func (st Stage) resolve(path []Slot) []overlap.Condition {
	conds := make([]overlap.Condition, len(st.Conditions))
	for i, c := range st.Conditions {
		roots := make([]rootindex.RootEntry, len(c.Positions))
		for j, pos := range c.Positions {
			roots[j] = path[pos-1].Entry
		}
		conds[i] = overlap.Condition{Roots: roots, MinShared: c.MinShared}
	}
	return conds
}
