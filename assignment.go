package dpll

import (
	"maps"
	"slices"
	"strings"
)

// Assignment is a partial mapping from variables to truth values. Only True
// and False are ever stored; an absent variable is Unassigned. The search
// engines pass each recursion level a fresh assignment holding exactly the
// level's new binding, because the residual formula already reflects every
// earlier one.
type Assignment map[Var]Truth

// NewAssignment returns an empty assignment.
func NewAssignment() Assignment {
	return Assignment{}
}

// Assign binds v to value and returns the assignment for chaining. Binding
// a variable to Unassigned is a programming error and panics.
func (a Assignment) Assign(v Var, value Truth) Assignment {
	if value == Unassigned {
		panic("dpll: cannot assign Unassigned")
	}
	a[v] = value
	return a
}

// Value returns v's truth value, Unassigned when unbound.
func (a Assignment) Value(v Var) Truth {
	return a[v]
}

// Extend returns a copy of the assignment with one additional binding,
// leaving the receiver untouched.
func (a Assignment) Extend(v Var, value Truth) Assignment {
	out := maps.Clone(a)
	if out == nil {
		out = Assignment{}
	}
	return out.Assign(v, value)
}

// Len returns the number of bound variables.
func (a Assignment) Len() int { return len(a) }

// String implements the Stringer interface.
func (a Assignment) String() string {
	vars := slices.Sorted(maps.Keys(a))
	s := make([]string, len(vars))
	for i, v := range vars {
		s[i] = string(v) + "=" + a[v].String()
	}
	return "{" + strings.Join(s, " ") + "}"
}
