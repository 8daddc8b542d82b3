package dpll

import (
	"iter"
	"slices"
	"sort"
	"strconv"
	"strings"

	"github.com/spjmurray/go-util/pkg/set"
)

// Var is a propositional variable, identified by name. Literals over the
// same name refer to the same variable.
type Var string

// Pos returns the positive literal of v.
func (v Var) Pos() Lit { return Lit{v: v} }

// Neg returns the negated literal of v.
func (v Var) Neg() Lit { return Lit{v: v, neg: true} }

// Lit is a variable tagged with a polarity.
type Lit struct {
	v   Var
	neg bool
}

// Var returns the literal's variable.
func (l Lit) Var() Var { return l.v }

// Negated returns true if the literal is negative.
func (l Lit) Negated() bool { return l.neg }

// Not returns the complementary literal.
func (l Lit) Not() Lit { return Lit{v: l.v, neg: !l.neg} }

// Eval looks up the literal's variable in the assignment (Unassigned when
// absent) and inverts the value for a negative literal.
func (l Lit) Eval(a Assignment) Truth {
	value := a.Value(l.v)
	if l.neg {
		return value.Not()
	}
	return value
}

// String implements the Stringer interface.
func (l Lit) String() string {
	if l.neg {
		return "¬" + string(l.v)
	}
	return string(l.v)
}

// compareLits orders literals by variable name, positive before negative.
// The order itself is arbitrary; clauses only need a canonical one so that
// equal literal sets have equal representations.
func compareLits(a, b Lit) int {
	if c := strings.Compare(string(a.v), string(b.v)); c != 0 {
		return c
	}
	switch {
	case a.neg == b.neg:
		return 0
	case a.neg:
		return 1
	default:
		return -1
	}
}

// Clause is a disjunction of literals, stored as a set: literal order is
// irrelevant and duplicates collapse. A clause is immutable once built;
// evaluation produces new clause values and never changes the receiver.
type Clause struct {
	lits []Lit
}

// NewClause builds a clause from the given literals, collapsing duplicates.
func NewClause(lits ...Lit) Clause {
	canon := slices.Clone(lits)
	slices.SortFunc(canon, compareLits)
	canon = slices.Compact(canon)
	return Clause{lits: canon}
}

// Len returns the number of distinct literals in the clause.
func (c Clause) Len() int { return len(c.lits) }

// Lits iterates over the clause's literals in canonical order.
func (c Clause) Lits() iter.Seq[Lit] {
	return func(yield func(Lit) bool) {
		for _, l := range c.lits {
			if !yield(l) {
				return
			}
		}
	}
}

// Equal reports whether two clauses contain the same literal set.
func (c Clause) Equal(o Clause) bool {
	return slices.Equal(c.lits, o.lits)
}

// Eval evaluates the clause under a partial assignment. It returns True as
// soon as any literal is true, False when every literal is false, and
// otherwise Unassigned together with the residual clause holding only the
// literals not yet falsified. An empty clause evaluates to False.
func (c Clause) Eval(a Assignment) (Truth, Clause) {
	open := make([]Lit, 0, len(c.lits))
	for _, l := range c.lits {
		switch l.Eval(a) {
		case True:
			return True, Clause{}
		case Unassigned:
			open = append(open, l)
		}
	}
	if len(open) == 0 {
		return False, Clause{}
	}
	if len(open) == len(c.lits) {
		// Nothing was falsified; share the existing literal storage.
		return Unassigned, c
	}
	return Unassigned, Clause{lits: open}
}

// Unit returns the clause's sole literal if the clause contains exactly one.
func (c Clause) Unit() (Lit, bool) {
	if len(c.lits) == 1 {
		return c.lits[0], true
	}
	return Lit{}, false
}

// String implements the Stringer interface.
func (c Clause) String() string {
	s := make([]string, len(c.lits))
	for i, l := range c.lits {
		s[i] = l.String()
	}
	return "(" + strings.Join(s, " ∨ ") + ")"
}

// Formula is a conjunction of clauses kept sorted by ascending clause size,
// so the most constrained clauses are scanned first by propagation and
// heuristics. Formula values are persistent: Add and Eval build new values
// and never mutate the receiver, which makes a formula safe to share across
// concurrently exploring search branches.
type Formula struct {
	clauses []Clause
}

// NewFormula builds a formula from the given clauses.
func NewFormula(clauses ...Clause) Formula {
	var f Formula
	for _, c := range clauses {
		f = f.Add(c)
	}
	return f
}

// FromClauses builds a formula from integer clauses, where the magnitude of
// each integer is a variable index and the sign its polarity. A zero
// literal is a programming error in the caller and panics.
func FromClauses(problem [][]int) Formula {
	var f Formula
	for _, cls := range problem {
		lits := make([]Lit, 0, len(cls))
		for _, v := range cls {
			if v == 0 {
				panic("dpll: zero literal in clause")
			}
			if v < 0 {
				lits = append(lits, IntVar(-v).Neg())
			} else {
				lits = append(lits, IntVar(v).Pos())
			}
		}
		f = f.Add(NewClause(lits...))
	}
	return f
}

// IntVar returns the variable for a positive DIMACS-style index.
func IntVar(n int) Var { return Var(strconv.Itoa(n)) }

// Add returns a new formula with c inserted, preserving the size ordering.
// Clauses of equal size keep their insertion order.
func (f Formula) Add(c Clause) Formula {
	i := sort.Search(len(f.clauses), func(i int) bool {
		return f.clauses[i].Len() > c.Len()
	})
	clauses := make([]Clause, 0, len(f.clauses)+1)
	clauses = append(clauses, f.clauses[:i]...)
	clauses = append(clauses, c)
	clauses = append(clauses, f.clauses[i:]...)
	return Formula{clauses: clauses}
}

// NumClauses returns the number of clauses in the formula.
func (f Formula) NumClauses() int { return len(f.clauses) }

// Clauses iterates over the clauses in ascending size order.
func (f Formula) Clauses() iter.Seq[Clause] {
	return func(yield func(Clause) bool) {
		for _, c := range f.clauses {
			if !yield(c) {
				return
			}
		}
	}
}

// Lits iterates over every literal occurrence in the formula.
func (f Formula) Lits() iter.Seq[Lit] {
	return func(yield func(Lit) bool) {
		for _, c := range f.clauses {
			for _, l := range c.lits {
				if !yield(l) {
					return
				}
			}
		}
	}
}

// Eval evaluates the formula under a partial assignment. It returns UNSAT
// if any clause is false, SAT if every clause is true, and otherwise
// Unknown together with the residual formula of the undetermined clauses,
// each reduced to its unfalsified literals. A formula with no clauses is
// SAT.
func (f Formula) Eval(a Assignment) (Satisfiability, Formula) {
	open := make([]Clause, 0, len(f.clauses))
	changed := false
	for _, c := range f.clauses {
		t, residual := c.Eval(a)
		switch t {
		case False:
			return UNSAT, Formula{}
		case True:
			changed = true
		default:
			if residual.Len() != c.Len() {
				changed = true
			}
			open = append(open, residual)
		}
	}
	if len(open) == 0 {
		return SAT, Formula{}
	}
	if !changed {
		return Unknown, f
	}
	// Reduced clauses may have shrunk past their neighbors.
	slices.SortStableFunc(open, func(a, b Clause) int { return a.Len() - b.Len() })
	return Unknown, Formula{clauses: open}
}

// unit returns the literal of a unit clause, if the formula has one. The
// size ordering puts unit clauses first.
func (f Formula) unit() (Lit, bool) {
	if len(f.clauses) > 0 {
		return f.clauses[0].Unit()
	}
	return Lit{}, false
}

// UnassignedVars returns the set of variables still unassigned under a.
func (f Formula) UnassignedVars(a Assignment) set.Set[Var] {
	vars := set.New[Var]()
	for l := range f.Lits() {
		if l.Eval(a) == Unassigned {
			vars.Add(l.v)
		}
	}
	return vars
}

// distinctLits returns the formula's distinct literals in encounter order.
func (f Formula) distinctLits() []Lit {
	seen := set.New[Lit]()
	var lits []Lit
	for l := range f.Lits() {
		if seen.Contains(l) {
			continue
		}
		seen.Add(l)
		lits = append(lits, l)
	}
	return lits
}

// String implements the Stringer interface.
func (f Formula) String() string {
	s := make([]string, len(f.clauses))
	for i, c := range f.clauses {
		s[i] = c.String()
	}
	return strings.Join(s, " ∧ ")
}
