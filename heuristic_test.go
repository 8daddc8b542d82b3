package dpll

import (
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// mixedProblem is satisfiable, needs real search, and carries two pure
// variables (6 and 7, both positive-only).
var mixedProblem = [][]int{
	{-1, 2},
	{-1, 3, 5},
	{-2, 4},
	{-3, -4},
	{1, 5, -2},
	{2, 3},
	{2, -3, 7},
	{6, -5},
}

func TestPureLiterals(t *testing.T) {
	f := FromClauses(mixedProblem)
	got := f.PureLiterals()
	want := []Lit{IntVar(6).Pos(), IntVar(7).Pos()}
	if !slices.Equal(got, want) {
		t.Errorf("PureLiterals() = %v; want %v", got, want)
	}

	allMixed := FromClauses([][]int{{1, 2}, {-1, -2}})
	if got := allMixed.PureLiterals(); len(got) != 0 {
		t.Errorf("PureLiterals() = %v; want none", got)
	}
}

func TestMOM(t *testing.T) {
	// Occurrence counts: a=3, b=2, c=3, d=1. The minimum-size clauses are
	// the three binary ones, so d is never a candidate; a and c tie and a
	// is encountered first.
	f := NewFormula(
		NewClause(Var("a").Pos(), Var("b").Pos()),
		NewClause(Var("a").Neg(), Var("c").Pos()),
		NewClause(Var("b").Neg(), Var("c").Neg()),
		NewClause(Var("a").Pos(), Var("c").Pos(), Var("d").Pos()),
	)

	for _, tt := range []struct {
		k    int
		want []Var
	}{
		{1, []Var{"a"}},
		{2, []Var{"a", "c"}},
		{10, []Var{"a", "c", "b"}},
		{0, nil},
	} {
		if diff := cmp.Diff(tt.want, f.MOM(tt.k)); diff != "" {
			t.Errorf("MOM(%d) mismatch (-want +got):\n%s", tt.k, diff)
		}
	}

	if got := NewFormula().MOM(3); got != nil {
		t.Errorf("MOM on empty formula = %v; want nil", got)
	}
}
