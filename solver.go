// Package dpll decides satisfiability of boolean formulas in conjunctive
// normal form using the Davis-Putnam-Logemann-Loveland backtracking search:
// unit propagation, pure-literal elimination, and branching guided by the
// "maximum occurrences in clauses of minimum size" heuristic. A parallel
// engine explores decision branches concurrently on top of the same
// immutable formula model.
package dpll

import (
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"
)

// Config carries optional solver settings. The zero value (or a nil
// pointer) selects sane defaults.
type Config struct {
	// Logger receives debug-level traces of propagation and decisions.
	// Defaults to the standard logrus logger.
	Logger logrus.FieldLogger
	// Seed for the decision fallback's random source. Zero seeds from the
	// clock; set it for reproducible runs.
	Seed int64
	// MOMCandidates is the k handed to the MOM heuristic. Defaults to 1.
	MOMCandidates int
}

func (c *Config) withDefaults() Config {
	var out Config
	if c != nil {
		out = *c
	}
	if out.Logger == nil {
		out.Logger = logrus.StandardLogger()
	}
	if out.Seed == 0 {
		out.Seed = time.Now().UnixNano()
	}
	if out.MOMCandidates <= 0 {
		out.MOMCandidates = 1
	}
	return out
}

// Stats counts the work a solve performed. Purely informational.
type Stats struct {
	Decisions    int64
	Propagations int64
	PureLiterals int64
}

// Solver is the sequential search engine. A Solver is good for one Solve
// per formula and is not safe for concurrent use; the formula itself may be
// freely shared.
type Solver struct {
	formula Formula
	log     logrus.FieldLogger
	rng     *rand.Rand
	momK    int
	stats   Stats
}

// New returns a sequential solver for f. cfg may be nil.
func New(f Formula, cfg *Config) *Solver {
	c := cfg.withDefaults()
	return &Solver{
		formula: f,
		log:     c.Logger,
		rng:     rand.New(rand.NewSource(c.Seed)),
		momK:    c.MOMCandidates,
	}
}

// Solve determines whether a boolean formula is satisfiable.
//
// The input is in CNF form where each slice in problem is a clause. Each
// literal is a nonzero integer whose sign selects the polarity and whose
// magnitude names the variable.
func Solve(problem [][]int) Satisfiability {
	return New(FromClauses(problem), nil).Solve()
}

// Solve runs the search and returns SAT or UNSAT.
func (s *Solver) Solve() Satisfiability {
	m := NewAssignment()
	for _, l := range s.formula.PureLiterals() {
		value := True
		if l.Negated() {
			value = False
		}
		s.stats.PureLiterals++
		s.log.WithFields(logrus.Fields{"literal": l.String(), "value": value}).
			Debug("pure literal elimination")
		m.Assign(l.Var(), value)
	}
	return s.solve(s.formula, m)
}

// Stats returns the counters accumulated by Solve.
func (s *Solver) Stats() Stats { return s.stats }

// solve is one node of the search. f is the residual formula along the
// current path and m holds only this node's new bindings: evaluation folds
// them in and produces the child's residual, so backtracking is just
// returning. Each recursion eliminates at least one variable, bounding the
// depth by the variable count.
func (s *Solver) solve(f Formula, m Assignment) Satisfiability {
	verdict, residual := f.Eval(m)
	if verdict != Unknown {
		return verdict
	}

	// A unit clause forces its literal; re-enter with the single binding.
	if l, ok := residual.unit(); ok {
		value := True
		if l.Negated() {
			value = False
		}
		s.stats.Propagations++
		s.log.WithFields(logrus.Fields{"literal": l.String(), "value": value}).
			Debug("unit propagation")
		return s.solve(residual, NewAssignment().Assign(l.Var(), value))
	}

	p := s.decide(residual)
	s.stats.Decisions++
	s.log.WithField("var", string(p)).Debug("decision")
	if s.solve(residual, NewAssignment().Assign(p, True)) == SAT {
		return SAT
	}
	return s.solve(residual, NewAssignment().Assign(p, False))
}

// decide picks the branching variable: the MOM heuristic's top candidate,
// or a uniformly random unassigned literal's variable when the heuristic
// comes up empty.
func (s *Solver) decide(f Formula) Var {
	if vars := f.MOM(s.momK); len(vars) > 0 {
		return vars[0]
	}
	lits := f.distinctLits()
	return lits[s.rng.Intn(len(lits))].Var()
}
