package dpll

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParallelScenarios(t *testing.T) {
	for _, tt := range scenarios {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SolveParallel(context.Background(), tt.problem, 3)
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

// TestParallelAgreement cross-checks the parallel engine against the
// sequential one across depths, policies, and fan-out widths on random
// instances. The verdict must not depend on scheduling.
func TestParallelAgreement(t *testing.T) {
	for _, policy := range []FanOutPolicy{FanOutPolarity, FanOutVariables} {
		for depth := 0; depth <= 3; depth++ {
			t.Run(fmt.Sprintf("%s/depth=%d", policy, depth), func(t *testing.T) {
				for seed := int64(0); seed < 50; seed++ {
					problem := makeRandom(seed, 6, 14)
					want := New(FromClauses(problem), &Config{Seed: 1}).Solve()

					s := NewParallel(FromClauses(problem), &ParallelConfig{
						Config: Config{Seed: seed + 1},
						Depth:  depth,
						Factor: 3,
						Policy: policy,
					})
					got, err := s.Solve(context.Background())
					require.NoError(t, err, "seed %d", seed)
					require.Equal(t, want, got, "seed %d:\n%s", seed, dimacsText(problem))
				}
			})
		}
	}
}

func TestParallelWorkerCap(t *testing.T) {
	// A one-worker pool forces every overflow branch to run inline on its
	// parent. The search must still complete and agree.
	problem := makeRandomSat(7, 10, 30)
	s := NewParallel(FromClauses(problem), &ParallelConfig{
		Config:     Config{Seed: 1},
		Depth:      4,
		Factor:     3,
		Policy:     FanOutVariables,
		MaxWorkers: 1,
	})
	got, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, SAT, got)
}

func TestParallelCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := NewParallel(FromClauses(mixedProblem), &ParallelConfig{
		Config: Config{Seed: 1},
		Depth:  2,
	})
	got, err := s.Solve(ctx)
	require.Error(t, err)
	require.True(t, errors.Is(err, context.Canceled), "err = %v", err)
	require.Equal(t, Unknown, got)
}

func TestParallelStats(t *testing.T) {
	s := NewParallel(FromClauses(mixedProblem), &ParallelConfig{
		Config: Config{Seed: 1},
		Depth:  2,
	})
	got, err := s.Solve(context.Background())
	require.NoError(t, err)
	require.Equal(t, SAT, got)

	stats := s.Stats()
	require.EqualValues(t, 2, stats.PureLiterals)
	require.Positive(t, stats.Propagations)
}
