// Package recursion rewrites a recursive function body so that the single
// piece of it which actually needs Coq's structural-recursion guard --- the
// case split on the decreasing argument --- is pulled out into its own
// helper function, leaving the original name bound to a small, manifestly
// non-recursive wrapper.
//
// A function `f x1 .. xn = e` with decreasing argument index d produces one
// helper per outermost `case xd of ...` sub-expression of e that isn't
// shadowed by an inner rebinding of xd, plus a rewritten driver body in
// which each such sub-expression has been replaced by a call to its helper.
// The helper's parameters are exactly the free variables in scope at the
// extraction site (which always includes xd itself, since the case
// scrutinizes it), so the call that replaces the sub-expression supplies
// precisely those variables in their original names.
package recursion

import (
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/ir"
)

// Helper is one extracted case-on-the-decreasing-argument site.
type Helper struct {
	Name        string   // fresh target identifier, minted via env.Fresh(env.HelperPrefix)
	FreeVars    []string // captured variables, in first-occurrence order
	DecArgIndex int      // index into FreeVars of the function's own decreasing argument
	Case        *ir.Case // the original case expression, to become the helper's body
}

// Result is the outcome of extracting one function's recursive call sites.
type Result struct {
	Driver  ir.Expr // body with extraction sites replaced by helper calls
	Helpers []Helper
}

// Extract locates every outermost `case decArgName of ...` sub-expression of
// body not shadowed by an inner rebinding of decArgName, replaces each with
// a call to a freshly named helper, and returns both the rewritten driver
// body and the extracted helpers. A function whose body contains no such
// case (e.g. it is non-recursive, or the decreasing argument is never
// scrutinized directly) yields a Result with no helpers and an unchanged
// driver; the caller then emits a single Definition rather than a Fixpoint.
func Extract(e *env.Env, body ir.Expr, decArgName string) Result {
	ex := &extractor{env: e, decArgName: decArgName}
	driver := ex.walk(body, false)
	return Result{Driver: driver, Helpers: ex.helpers}
}

type extractor struct {
	env        *env.Env
	decArgName string
	helpers    []Helper
}

func (x *extractor) walk(e ir.Expr, shadowed bool) ir.Expr {
	switch ex := e.(type) {
	case *ir.Case:
		if !shadowed {
			if v, ok := ex.Scrutinee.(*ir.Var); ok && v.Name.Text == x.decArgName {
				return x.extract(ex)
			}
		}
		newScrut := x.walk(ex.Scrutinee, shadowed)
		newAlts := make([]ir.Alt, len(ex.Alts))
		for i, alt := range ex.Alts {
			altShadowed := shadowed
			for _, f := range alt.Pat.FieldNames() {
				if f == x.decArgName {
					altShadowed = true
				}
			}
			newAlts[i] = ir.Alt{Pat: alt.Pat, Body: x.walk(alt.Body, altShadowed)}
		}
		return ir.NewCase(ex.Span(), newScrut, newAlts)

	case *ir.If:
		return ir.NewIf(ex.Span(),
			x.walk(ex.Cond, shadowed),
			x.walk(ex.Then, shadowed),
			x.walk(ex.Else, shadowed))

	case *ir.App:
		return ir.NewApp(ex.Span(), x.walk(ex.Fun, shadowed), x.walk(ex.Arg, shadowed))

	case *ir.Lambda:
		bodyShadowed := shadowed
		for _, n := range ex.BoundVars() {
			if n == x.decArgName {
				bodyShadowed = true
			}
		}
		return ir.NewLambda(ex.Span(), ex.Args, x.walk(ex.Body, bodyShadowed))

	case *ir.ErrorExpr:
		return ir.NewErrorExpr(ex.Span(), x.walk(ex.Message, shadowed))

	default:
		// Var, Con, IntLiteral, Undefined carry no sub-expressions to
		// descend into.
		return e
	}
}

// extract turns one outermost case-on-decArgName into a helper, returning
// the call expression that replaces it in the driver body.
func (x *extractor) extract(c *ir.Case) ir.Expr {
	freeVars := localFreeVars(x.env, c)
	decIdx := -1
	for i, n := range freeVars {
		if n == x.decArgName {
			decIdx = i
		}
	}
	name := x.env.Fresh(env.HelperPrefix)
	x.helpers = append(x.helpers, Helper{
		Name:        name,
		FreeVars:    freeVars,
		DecArgIndex: decIdx,
		Case:        c,
	})
	return callExpr(c.Span(), name, freeVars)
}

// localFreeVars returns the names referenced inside c that are not bound by
// one of c's own sub-binders (a Case alternative's fields, a Lambda's
// arguments) and resolve to a locally bound value (an *env.VarEntry), in
// first-occurrence order. References to top-level functions or
// constructors are excluded: they remain ordinary global names and need not
// be captured as arguments. Unlike the package-level FreeVarRefs helper,
// this walk tracks shadowing so that a Cons arm's own field names (e.g. the
// tail of a list) are never mistaken for variables captured from outside.
func localFreeVars(e *env.Env, c *ir.Case) []string {
	seen := map[string]bool{}
	var out []string
	bound := map[string]int{}
	add := func(name string) {
		if bound[name] > 0 {
			return
		}
		entry, ok := e.LookupValue(ir.Unqualified(name))
		if !ok {
			return
		}
		if _, isVar := entry.(*env.VarEntry); !isVar {
			return
		}
		if seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	walkFreeVars(c, bound, add)
	return out
}

func walkFreeVars(e ir.Expr, bound map[string]int, add func(string)) {
	switch ex := e.(type) {
	case *ir.Var:
		add(ex.Name.Text)
	case *ir.Con:
		// never captured as an argument
	case *ir.App:
		walkFreeVars(ex.Fun, bound, add)
		walkFreeVars(ex.Arg, bound, add)
	case *ir.If:
		walkFreeVars(ex.Cond, bound, add)
		walkFreeVars(ex.Then, bound, add)
		walkFreeVars(ex.Else, bound, add)
	case *ir.Case:
		walkFreeVars(ex.Scrutinee, bound, add)
		for _, alt := range ex.Alts {
			for _, f := range alt.Pat.FieldNames() {
				bound[f]++
			}
			walkFreeVars(alt.Body, bound, add)
			for _, f := range alt.Pat.FieldNames() {
				bound[f]--
			}
		}
	case *ir.Lambda:
		for _, n := range ex.BoundVars() {
			bound[n]++
		}
		walkFreeVars(ex.Body, bound, add)
		for _, n := range ex.BoundVars() {
			bound[n]--
		}
	case *ir.ErrorExpr:
		walkFreeVars(ex.Message, bound, add)
	}
}

func callExpr(span ir.Span, name string, args []string) ir.Expr {
	var result ir.Expr = ir.NewVar(span, ir.Unqualified(name))
	for _, a := range args {
		result = ir.NewApp(span, result, ir.NewVar(span, ir.Unqualified(a)))
	}
	return result
}
