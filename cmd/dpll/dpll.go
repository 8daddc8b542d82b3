// Command dpll decides satisfiability of DIMACS CNF files.
//
// Each argument is a .cnf file or a directory scanned for *.cnf files. The
// verdict for every input is printed on its own line; --depth greater than
// zero selects the parallel engine.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kr/pretty"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/prabhpreet/dpll"
)

type options struct {
	depth   int
	factor  int
	policy  string
	jobs    int
	seed    int64
	timeout time.Duration
	verbose bool
}

func main() {
	var opts options

	cmd := &cobra.Command{
		Use:           "dpll [file.cnf | dir]...",
		Short:         "A DPLL SAT solver",
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), &opts, args)
		},
	}
	cmd.Flags().IntVarP(&opts.depth, "depth", "d", 0, "parallel decision depth (0 = sequential)")
	cmd.Flags().IntVar(&opts.factor, "factor", 2, "fan-out width for the variables policy")
	cmd.Flags().StringVar(&opts.policy, "policy", "polarity", "parallel fan-out policy: polarity or variables")
	cmd.Flags().IntVarP(&opts.jobs, "jobs", "j", 1, "number of files to solve concurrently")
	cmd.Flags().Int64Var(&opts.seed, "seed", 0, "random seed for decision fallback (0 = from clock)")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0, "give up after this long (0 = no limit)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false, "enable debug tracing and stats")

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		logrus.Fatal(err)
	}
}

func run(ctx context.Context, opts *options, args []string) error {
	if opts.verbose {
		logrus.SetLevel(logrus.DebugLevel)
	}
	policy, err := parsePolicy(opts.policy)
	if err != nil {
		return err
	}
	files, err := discover(args)
	if err != nil {
		return err
	}
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	lines := make([]string, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.jobs)
	for i, file := range files {
		g.Go(func() error {
			verdict, stats, elapsed, err := solveFile(ctx, file, opts, policy)
			if err != nil {
				return fmt.Errorf("%s: %w", file, err)
			}
			lines[i] = fmt.Sprintf("%s: %s (%s)", file, verdict, elapsed.Round(time.Microsecond))
			if opts.verbose {
				logrus.WithField("file", file).Debug(pretty.Sprintf("stats: %v", stats))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, line := range lines {
		fmt.Println(line)
	}
	return nil
}

func solveFile(ctx context.Context, path string, opts *options, policy dpll.FanOutPolicy) (dpll.Satisfiability, dpll.Stats, time.Duration, error) {
	problem, err := readCNF(path)
	if err != nil {
		return dpll.Unknown, dpll.Stats{}, 0, err
	}
	formula := dpll.FromClauses(problem)

	start := time.Now()
	if opts.depth <= 0 {
		s := dpll.New(formula, &dpll.Config{Seed: opts.seed})
		verdict := s.Solve()
		return verdict, s.Stats(), time.Since(start), nil
	}
	s := dpll.NewParallel(formula, &dpll.ParallelConfig{
		Config: dpll.Config{Seed: opts.seed},
		Depth:  opts.depth,
		Factor: opts.factor,
		Policy: policy,
	})
	verdict, err := s.Solve(ctx)
	return verdict, s.Stats(), time.Since(start), err
}

func parsePolicy(name string) (dpll.FanOutPolicy, error) {
	switch name {
	case "polarity":
		return dpll.FanOutPolarity, nil
	case "variables":
		return dpll.FanOutVariables, nil
	default:
		return 0, fmt.Errorf("unknown policy %q (want polarity or variables)", name)
	}
}

// discover expands the arguments into CNF files, scanning directories for
// *.cnf entries.
func discover(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		fs, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !fs.IsDir() {
			files = append(files, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.cnf"))
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no .cnf files in %s", arg)
		}
		files = append(files, matches...)
	}
	return files, nil
}

func readCNF(path string) ([][]int, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return dpll.ParseDIMACS(f)
}
