package dpll

import (
	"slices"

	"github.com/spjmurray/go-util/pkg/set"
)

// PureLiterals returns one literal per variable that occurs with a single
// polarity throughout the formula. Fixing a pure variable to the value
// satisfying its sole polarity can never falsify a clause it appears in, so
// doing it before search begins is always safe. Results are in encounter
// order, one per variable.
func (f Formula) PureLiterals() []Lit {
	pos := set.New[Var]()
	neg := set.New[Var]()
	for l := range f.Lits() {
		if l.neg {
			neg.Add(l.v)
		} else {
			pos.Add(l.v)
		}
	}

	emitted := set.New[Var]()
	var pure []Lit
	for l := range f.Lits() {
		if emitted.Contains(l.v) {
			continue
		}
		if pos.Contains(l.v) && neg.Contains(l.v) {
			continue
		}
		emitted.Add(l.v)
		pure = append(pure, l)
	}
	return pure
}

// MOM ranks the variables occurring in the formula's minimum-size clauses
// by their total occurrence count across the whole formula, in either
// polarity, and returns the top k. Small clauses are the closest to
// becoming unit or empty, so branching on their most frequent variables
// tends to trigger the longest propagation cascades. Ties keep encounter
// order, making the ranking deterministic.
func (f Formula) MOM(k int) []Var {
	if len(f.clauses) == 0 || k <= 0 {
		return nil
	}

	counts := map[Var]int{}
	for l := range f.Lits() {
		counts[l.v]++
	}

	// The size ordering puts the minimum-size clauses first.
	minSize := f.clauses[0].Len()
	seen := set.New[Var]()
	var candidates []Var
	for _, c := range f.clauses {
		if c.Len() != minSize {
			break
		}
		for _, l := range c.lits {
			if seen.Contains(l.v) {
				continue
			}
			seen.Add(l.v)
			candidates = append(candidates, l.v)
		}
	}

	slices.SortStableFunc(candidates, func(a, b Var) int {
		return counts[b] - counts[a]
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}
	return candidates
}
