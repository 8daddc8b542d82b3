package dpll

// Truth is a boolean value with an additional "unassigned" state. Negation
// swaps True and False and leaves Unassigned fixed.
type Truth uint8

const (
	Unassigned = Truth(0)
	True       = Truth(1)
	False      = Truth(2)
)

// Not negates a truth value.
func (t Truth) Not() Truth {
	switch t {
	case True:
		return False
	case False:
		return True
	default:
		return Unassigned
	}
}

// String implements the Stringer interface.
func (t Truth) String() string {
	switch t {
	case True:
		return "true"
	case False:
		return "false"
	default:
		return "unassigned"
	}
}

// Satisfiability is the verdict of a search: SAT, UNSAT, or Unknown while
// the formula is still open.
type Satisfiability uint8

const (
	Unknown = Satisfiability(0)
	SAT     = Satisfiability(1)
	UNSAT   = Satisfiability(2)
)

// String implements the Stringer interface.
func (s Satisfiability) String() string {
	switch s {
	case SAT:
		return "SAT"
	case UNSAT:
		return "UNSAT"
	default:
		return "UNKNOWN"
	}
}
