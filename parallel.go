package dpll

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"runtime"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/semaphore"
)

// FanOutPolicy selects how a parallel decision node spreads work.
type FanOutPolicy uint8

const (
	// FanOutPolarity explores the two truth values of one chosen variable
	// as two concurrent tasks.
	FanOutPolarity = FanOutPolicy(0)
	// FanOutVariables explores up to Factor distinct candidate variables
	// concurrently; each task tries True first, then False, sequentially.
	FanOutVariables = FanOutPolicy(1)
)

// String implements the Stringer interface.
func (p FanOutPolicy) String() string {
	if p == FanOutVariables {
		return "variables"
	}
	return "polarity"
}

// ParallelConfig configures the parallel engine.
type ParallelConfig struct {
	Config

	// Depth is the number of decision levels that fan out concurrently.
	// Propagation never spends budget. Zero degrades to a fully sequential
	// search.
	Depth int
	// Factor bounds the fan-out width under FanOutVariables. Defaults to 2.
	Factor int
	// MaxWorkers caps the branch goroutines running at once. Defaults to
	// GOMAXPROCS. When the pool is saturated a branch runs inline on its
	// parent's goroutine instead of waiting, so joins cannot deadlock.
	MaxWorkers int
	// Policy selects the fan-out shape. Defaults to FanOutPolarity.
	Policy FanOutPolicy
}

// ParallelSolver runs the same search as Solver but explores decision
// branches concurrently. Tasks are pure functions of an immutable formula
// snapshot plus one new binding, so branches share the clause storage
// without locks.
type ParallelSolver struct {
	formula Formula
	log     logrus.FieldLogger
	seed    int64
	momK    int
	depth   int
	factor  int
	policy  FanOutPolicy
	sem     *semaphore.Weighted

	decisions    atomic.Int64
	propagations atomic.Int64
	pureLiterals atomic.Int64
}

// NewParallel returns a parallel solver for f. cfg may be nil.
func NewParallel(f Formula, cfg *ParallelConfig) *ParallelSolver {
	var pc ParallelConfig
	if cfg != nil {
		pc = *cfg
	}
	c := pc.Config.withDefaults()
	if pc.Factor <= 0 {
		pc.Factor = 2
	}
	if pc.MaxWorkers <= 0 {
		pc.MaxWorkers = runtime.GOMAXPROCS(0)
	}
	return &ParallelSolver{
		formula: f,
		log:     c.Logger,
		seed:    c.Seed,
		momK:    c.MOMCandidates,
		depth:   pc.Depth,
		factor:  pc.Factor,
		policy:  pc.Policy,
		sem:     semaphore.NewWeighted(int64(pc.MaxWorkers)),
	}
}

// SolveParallel determines satisfiability of integer clauses using the
// parallel engine with the given decision fan-out depth.
func SolveParallel(ctx context.Context, problem [][]int, depth int) (Satisfiability, error) {
	return NewParallel(FromClauses(problem), &ParallelConfig{Depth: depth}).Solve(ctx)
}

// Solve runs the search. It returns Unknown with an error if ctx is
// cancelled before a verdict is reached.
func (s *ParallelSolver) Solve(ctx context.Context) (Satisfiability, error) {
	m := NewAssignment()
	for _, l := range s.formula.PureLiterals() {
		value := True
		if l.Negated() {
			value = False
		}
		s.pureLiterals.Add(1)
		s.log.WithFields(logrus.Fields{"literal": l.String(), "value": value}).
			Debug("pure literal elimination")
		m.Assign(l.Var(), value)
	}

	verdict := s.solve(ctx, s.formula, m, s.depth, rand.New(rand.NewSource(s.seed)))
	if verdict == Unknown {
		if err := ctx.Err(); err != nil {
			return Unknown, fmt.Errorf("search interrupted: %w", err)
		}
		return Unknown, errors.New("search interrupted")
	}
	return verdict, nil
}

// Stats returns a snapshot of the counters accumulated so far.
func (s *ParallelSolver) Stats() Stats {
	return Stats{
		Decisions:    s.decisions.Load(),
		Propagations: s.propagations.Load(),
		PureLiterals: s.pureLiterals.Load(),
	}
}

// task explores one decision branch to a verdict. Unknown means the branch
// was abandoned by cancellation, never a verdict.
type task func(context.Context) Satisfiability

func (s *ParallelSolver) solve(ctx context.Context, f Formula, m Assignment, depth int, rng *rand.Rand) Satisfiability {
	if ctx.Err() != nil {
		return Unknown
	}

	verdict, residual := f.Eval(m)
	if verdict != Unknown {
		return verdict
	}

	// Forced bindings are cheap and typically few; propagation always runs
	// inline and keeps the fan-out budget intact.
	if l, ok := residual.unit(); ok {
		value := True
		if l.Negated() {
			value = False
		}
		s.propagations.Add(1)
		s.log.WithFields(logrus.Fields{"literal": l.String(), "value": value}).
			Debug("unit propagation")
		return s.solve(ctx, residual, NewAssignment().Assign(l.Var(), value), depth, rng)
	}

	if depth <= 0 {
		return s.branchSequential(ctx, residual, rng)
	}

	var tasks []task
	switch s.policy {
	case FanOutVariables:
		tasks = s.variableTasks(residual, depth, rng)
	default:
		tasks = s.polarityTasks(residual, depth, rng)
	}
	return s.join(ctx, tasks)
}

// branchSequential is the plain True-then-False branch below the parallel
// depth budget.
func (s *ParallelSolver) branchSequential(ctx context.Context, f Formula, rng *rand.Rand) Satisfiability {
	p := s.decide(f, rng)
	s.decisions.Add(1)
	if res := s.solve(ctx, f, NewAssignment().Assign(p, True), 0, rng); res == SAT {
		return SAT
	}
	if ctx.Err() != nil {
		return Unknown
	}
	return s.solve(ctx, f, NewAssignment().Assign(p, False), 0, rng)
}

// polarityTasks fans a single decision variable out over its two truth
// values.
func (s *ParallelSolver) polarityTasks(f Formula, depth int, rng *rand.Rand) []task {
	p := s.decide(f, rng)
	s.decisions.Add(1)
	s.log.WithFields(logrus.Fields{"var": string(p), "depth": depth}).Debug("parallel decision")

	tasks := make([]task, 0, 2)
	for _, value := range []Truth{True, False} {
		m := NewAssignment().Assign(p, value)
		seed := rng.Int63()
		tasks = append(tasks, func(ctx context.Context) Satisfiability {
			return s.solve(ctx, f, m, depth-1, rand.New(rand.NewSource(seed)))
		})
	}
	return tasks
}

// variableTasks fans out over distinct candidate variables; every task is a
// complete two-sided search on its own variable, biased True first.
func (s *ParallelSolver) variableTasks(f Formula, depth int, rng *rand.Rand) []task {
	vars := f.MOM(s.factor)
	if len(vars) == 0 {
		lits := f.distinctLits()
		vars = []Var{lits[rng.Intn(len(lits))].Var()}
	}
	s.log.WithFields(logrus.Fields{"vars": len(vars), "depth": depth}).Debug("parallel decision")

	tasks := make([]task, 0, len(vars))
	for _, p := range vars {
		s.decisions.Add(1)
		seed := rng.Int63()
		tasks = append(tasks, func(ctx context.Context) Satisfiability {
			rng := rand.New(rand.NewSource(seed))
			if res := s.solve(ctx, f, NewAssignment().Assign(p, True), depth-1, rng); res == SAT {
				return SAT
			}
			if ctx.Err() != nil {
				return Unknown
			}
			return s.solve(ctx, f, NewAssignment().Assign(p, False), depth-1, rng)
		})
	}
	return tasks
}

// join runs the tasks and combines their verdicts: the first SAT wins and
// cancels the remaining siblings best-effort; UNSAT requires every task to
// report UNSAT. Tasks beyond the worker budget run inline on the calling
// goroutine.
func (s *ParallelSolver) join(parent context.Context, tasks []task) Satisfiability {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	results := make(chan Satisfiability, len(tasks))
	pending := 0
	sawUnknown := false
	for _, t := range tasks {
		if s.sem.TryAcquire(1) {
			pending++
			go func(t task) {
				defer s.sem.Release(1)
				results <- t(ctx)
			}(t)
			continue
		}
		switch t(ctx) {
		case SAT:
			return SAT
		case Unknown:
			sawUnknown = true
		}
	}
	for ; pending > 0; pending-- {
		switch <-results {
		case SAT:
			// Late siblings write into the buffered channel and exit; their
			// verdicts are discarded.
			return SAT
		case Unknown:
			sawUnknown = true
		}
	}
	if sawUnknown {
		return Unknown
	}
	return UNSAT
}

func (s *ParallelSolver) decide(f Formula, rng *rand.Rand) Var {
	if vars := f.MOM(s.momK); len(vars) > 0 {
		return vars[0]
	}
	lits := f.distinctLits()
	return lits[rng.Intn(len(lits))].Var()
}
