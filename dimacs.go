package dpll

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseDIMACS parses text in the DIMACS CNF format into integer clauses
// suitable for FromClauses or Solve.
//
// A few non-standard variations seen in published benchmark files are
// accepted:
//
//   - Comments (lines beginning with 'c') may appear anywhere, not just in
//     the preamble.
//   - The problem line may be missing.
//   - A line holding a single '%' ends the formula; anything after it is
//     ignored.
func ParseDIMACS(r io.Reader) ([][]int, error) {
	var header struct {
		present bool
		vars    int
		clauses int
	}
	var clauses [][]int
	var clause []int

	s := bufio.NewScanner(r)
	for s.Scan() {
		line := s.Text()
		if len(line) == 0 || line[0] == 'c' {
			continue
		}
		if line == "%" {
			break
		}
		if line[0] == 'p' {
			if len(clauses) > 0 || len(clause) > 0 {
				return nil, errors.New("problem line appears after clauses")
			}
			if header.present {
				return nil, errors.New("multiple problem lines")
			}
			var err error
			header.vars, header.clauses, err = parseProblemLine(line)
			if err != nil {
				return nil, err
			}
			header.present = true
			continue
		}
		for _, field := range strings.Fields(line) {
			n, err := strconv.Atoi(field)
			if err != nil {
				return nil, fmt.Errorf("invalid literal: %s", err)
			}
			if n == 0 {
				clauses = append(clauses, clause)
				clause = nil
			} else {
				clause = append(clause, n)
			}
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(clause) > 0 {
		clauses = append(clauses, clause)
	}

	if header.present {
		if err := checkHeader(clauses, header.vars, header.clauses); err != nil {
			return nil, err
		}
	}
	return clauses, nil
}

func parseProblemLine(line string) (vars, clauses int, err error) {
	fields := strings.Fields(line)
	if len(fields) != 4 || fields[0] != "p" {
		return 0, 0, fmt.Errorf("malformed problem line %q", line)
	}
	if fields[1] != "cnf" {
		return 0, 0, fmt.Errorf("only cnf supported; got %q", fields[1])
	}
	if vars, err = strconv.Atoi(fields[2]); err != nil {
		return 0, 0, fmt.Errorf("malformed #vars in problem line: %s", err)
	}
	if clauses, err = strconv.Atoi(fields[3]); err != nil {
		return 0, 0, fmt.Errorf("malformed #clauses in problem line: %s", err)
	}
	if vars < 0 {
		return 0, 0, fmt.Errorf("invalid #vars %d", vars)
	}
	if clauses < 0 {
		return 0, 0, fmt.Errorf("invalid #clauses %d", clauses)
	}
	return vars, clauses, nil
}

func checkHeader(clauses [][]int, numVars, numClauses int) error {
	vars := make(map[int]struct{})
	for _, clause := range clauses {
		for _, v := range clause {
			if v < 0 {
				v = -v
			}
			if v > numVars {
				return fmt.Errorf("formula contains var %d, but problem line asserts %d vars (only vars in [1, %d] expected)",
					v, numVars, numVars)
			}
			vars[v] = struct{}{}
		}
	}
	// Allow some vars to be missing.
	if len(vars) > numVars {
		return fmt.Errorf("problem line specifies %d vars, but there are %d", numVars, len(vars))
	}
	if len(clauses) != numClauses {
		return fmt.Errorf("problem line specifies %d clauses, but there are %d", numClauses, len(clauses))
	}
	return nil
}

// WriteDIMACS writes integer clauses in the DIMACS CNF format, including a
// problem line derived from the largest variable index present.
func WriteDIMACS(w io.Writer, problem [][]int) error {
	maxVar := 0
	for _, clause := range problem {
		for _, v := range clause {
			if v < 0 {
				v = -v
			}
			if v > maxVar {
				maxVar = v
			}
		}
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "p cnf %d %d\n", maxVar, len(problem))
	for _, clause := range problem {
		for _, v := range clause {
			fmt.Fprintf(bw, "%d ", v)
		}
		fmt.Fprintln(bw, "0")
	}
	return bw.Flush()
}
