// Package termination chooses, for each recursive group of function
// declarations, an argument position that provably shrinks on every
// recursive call, so the group can be emitted as a structurally recursive
// Coq Fixpoint. For each candidate tuple of argument indices it verifies,
// by syntactic structural descent over case-expression scrutinees, that
// every recursive call in every member's body passes a strictly smaller
// subterm of the chosen variable in that position.
package termination

import (
	"fmt"

	"github.com/freecoq/fcc/internal/ir"
)

// MaxDecreasingArgTuples bounds the tuple enumeration: a defensive backstop
// against pathological high-arity recursive groups, not expected to be hit
// by any realistic program.
const MaxDecreasingArgTuples = 1_000_000

// Member is one function in a recursive SCC, as seen by the analyzer.
type Member struct {
	Name string
	Args []string // value-argument binder names, in declaration order
	Body ir.Expr
}

// Result is the outcome of a successful analysis: one decreasing-argument
// index per member, keyed by member name.
type Result struct {
	DecArgIndex map[string]int
}

// Error reports that no decreasing-argument tuple satisfies every member's
// body; Decl names the first declaration in the group, which is where the
// diagnostic should point.
type Error struct {
	Decl string
}

func (e *Error) Error() string {
	return fmt.Sprintf("cannot determine a decreasing argument for recursive group starting at %s", e.Decl)
}

// Analyze finds the lowest-index argument tuple, in lexicographic order,
// for which every recursive call in every member's body is structurally
// decreasing on that member's chosen argument.
func Analyze(members []Member) (*Result, error) {
	index := map[string]int{}
	for i, m := range members {
		index[m.Name] = i
	}

	arities := make([]int, len(members))
	for i, m := range members {
		arities[i] = len(m.Args)
		if arities[i] == 0 {
			// A nullary member can never have a decreasing argument; it
			// cannot itself recurse structurally, so only a tuple where
			// its "index" is vacuous (0) is considered — it simply must
			// not call back into the SCC at all for the tuple to pass,
			// which the generic check below already enforces (len(args)
			// <= idx rejects any call).
			arities[i] = 1
		}
	}

	tuple := make([]int, len(members))
	count := 0
	var tryTuple func(pos int) (*Result, bool)
	tryTuple = func(pos int) (*Result, bool) {
		if pos == len(members) {
			count++
			if count > MaxDecreasingArgTuples {
				return nil, false
			}
			if verifyTuple(members, index, tuple) {
				res := &Result{DecArgIndex: map[string]int{}}
				for i, m := range members {
					res.DecArgIndex[m.Name] = tuple[i]
				}
				return res, true
			}
			return nil, false
		}
		for i := 0; i < arities[pos]; i++ {
			tuple[pos] = i
			if res, ok := tryTuple(pos + 1); ok {
				return res, true
			}
			if count > MaxDecreasingArgTuples {
				return nil, false
			}
		}
		return nil, false
	}

	if res, ok := tryTuple(0); ok {
		return res, nil
	}
	return nil, &Error{Decl: members[0].Name}
}

func verifyTuple(members []Member, index map[string]int, tuple []int) bool {
	for i, m := range members {
		decIdx := tuple[i]
		if decIdx >= len(m.Args) {
			return false
		}
		x := m.Args[decIdx]
		if !checkDescent(m.Body, members, index, tuple, x, map[string]bool{}) {
			return false
		}
	}
	return true
}

// checkDescent is the structural-decrease predicate.
func checkDescent(e ir.Expr, members []Member, index map[string]int, tuple []int, x string, smaller map[string]bool) bool {
	if e == nil {
		return true
	}
	switch ex := e.(type) {
	case *ir.Var, *ir.Con, *ir.IntLiteral, *ir.Undefined:
		return true

	case *ir.ErrorExpr:
		return checkDescent(ex.Message, members, index, tuple, x, smaller)

	case *ir.App:
		head, args := flattenApp(ex)
		if v, ok := head.(*ir.Var); ok {
			if mi, isMember := index[v.Name.Text]; isMember {
				decIdx := tuple[mi]
				if decIdx >= len(args) {
					return false
				}
				arg := args[decIdx]
				av, isVar := arg.(*ir.Var)
				if !isVar || !smaller[av.Name.Text] {
					return false
				}
			}
		}
		if !checkDescent(head, members, index, tuple, x, smaller) {
			return false
		}
		for _, a := range args {
			if !checkDescent(a, members, index, tuple, x, smaller) {
				return false
			}
		}
		return true

	case *ir.If:
		return checkDescent(ex.Cond, members, index, tuple, x, smaller) &&
			checkDescent(ex.Then, members, index, tuple, x, smaller) &&
			checkDescent(ex.Else, members, index, tuple, x, smaller)

	case *ir.Case:
		if !checkDescent(ex.Scrutinee, members, index, tuple, x, smaller) {
			return false
		}
		extends := false
		if sv, ok := ex.Scrutinee.(*ir.Var); ok {
			if sv.Name.Text == x || smaller[sv.Name.Text] {
				extends = true
			}
		}
		for _, alt := range ex.Alts {
			altSmaller := smaller
			if extends {
				altSmaller = extend(smaller, alt.Pat.FieldNames())
			}
			if !checkDescent(alt.Body, members, index, tuple, x, altSmaller) {
				return false
			}
		}
		return true

	case *ir.Lambda:
		bound := ex.BoundVars()
		newSmaller := remove(smaller, bound)
		newX := x
		for _, b := range bound {
			if b == x {
				newX = "" // decreasing variable shadowed; no longer tracked
			}
		}
		return checkDescent(ex.Body, members, index, tuple, newX, newSmaller)

	default:
		return true
	}
}

func flattenApp(e *ir.App) (ir.Expr, []ir.Expr) {
	var args []ir.Expr
	var cur ir.Expr = e
	for {
		app, ok := cur.(*ir.App)
		if !ok {
			break
		}
		args = append(args, app.Arg)
		cur = app.Fun
	}
	for i, j := 0, len(args)-1; i < j; i, j = i+1, j-1 {
		args[i], args[j] = args[j], args[i]
	}
	return cur, args
}

func extend(smaller map[string]bool, names []string) map[string]bool {
	out := make(map[string]bool, len(smaller)+len(names))
	for k := range smaller {
		out[k] = true
	}
	for _, n := range names {
		out[n] = true
	}
	return out
}

func remove(smaller map[string]bool, shadowed []string) map[string]bool {
	shadow := map[string]bool{}
	for _, s := range shadowed {
		shadow[s] = true
	}
	out := make(map[string]bool, len(smaller))
	for k := range smaller {
		if !shadow[k] {
			out[k] = true
		}
	}
	return out
}
