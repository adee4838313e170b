package lift

import (
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
)

// PartialInstIdent is the fixed name given to a partial function's `Partial`
// typeclass-instance binder; every call to another partial function forwards
// this same identifier, so a caller that is itself partial simply passes
// along the instance it already declared in its own binder list.
const PartialInstIdent = "partial_inst"

// Converter is the lifting context threaded through one function body: the
// renaming environment (for resolving references and minting fresh scoped
// binders) and whether the enclosing function is itself partial.
type Converter struct {
	Env       *env.Env
	IsPartial bool
}

// New creates a Converter for lifting one function body.
func New(e *env.Env, isPartial bool) *Converter {
	return &Converter{Env: e, IsPartial: isPartial}
}

// Expr lifts a source expression into a Gallina term of type
// `Free Shape Pos τ*` for the expression's type.
func Expr(e ir.Expr, c *Converter) gallina.Term {
	switch ex := e.(type) {
	case *ir.IntLiteral:
		return gallina.Pure(gallina.NewNum(ex.Value))

	case *ir.Undefined:
		return partialCall(c, "undefined", nil)

	case *ir.ErrorExpr:
		msg := Expr(ex.Message, c)
		return partialCall(c, "error", []gallina.Term{msg})

	case *ir.Var:
		return liftReference(ex.Name, c)

	case *ir.Con:
		return liftReference(ex.Name, c)

	case *ir.If:
		cond := Expr(ex.Cond, c)
		thenTerm := Expr(ex.Then, c)
		elseTerm := Expr(ex.Else, c)
		return shortCircuitBind(c, cond, "c", func(v gallina.Term) gallina.Term {
			return gallina.NewMatch(v, []gallina.MatchArm{
				{Con: "true", Body: thenTerm},
				{Con: "false", Body: elseTerm},
			})
		})

	case *ir.Case:
		return liftCase(ex, c)

	case *ir.Lambda:
		return liftLambda(ex, c)

	case *ir.App:
		return liftApp(ex, c)

	default:
		return gallina.NewRaw("(* unsupported expression *)")
	}
}

// partialCall builds a call to a Base-library partial operation
// (`undefined`/`error`), forwarding the enclosing function's Partial
// instance binder.
func partialCall(c *Converter, name string, extra []gallina.Term) gallina.Term {
	terms := []gallina.Term{gallina.NewIdent(ShapeIdent), gallina.NewIdent(PosIdent)}
	if c.IsPartial {
		terms = append(terms, gallina.NewIdent(PartialInstIdent))
	}
	terms = append(terms, extra...)
	return gallina.NewApp(gallina.NewRaw(name), terms...)
}

// liftReference lifts a bare (unapplied) Var/Con occurrence, per the
// per-kind translation table: a known function or constructor is eta-
// expanded to full arity with zero supplied arguments; a bound variable is
// returned as-is or `pure`-wrapped depending on whether it is the pure
// decreasing-argument binder.
func liftReference(name ir.Name, c *Converter) gallina.Term {
	entry, ok := c.Env.LookupValue(name)
	if !ok {
		return gallina.NewIdent(name.Text)
	}
	switch en := entry.(type) {
	case *env.FuncEntry:
		return liftKnownFuncCall(en.TargetIdent(), en.Arity, en.IsPartial, nil, c)
	case *env.ConEntry:
		return knownCall(en.SmartTargetIdent, en.Arity, false, nil, c)
	case *env.VarEntry:
		if en.IsPureVar {
			return gallina.Pure(gallina.NewIdent(en.TargetIdent()))
		}
		return gallina.NewIdent(en.TargetIdent())
	default:
		return gallina.NewIdent(entry.TargetIdent())
	}
}

// knownCall builds a saturated or eta-expanded call to a statically known
// function or smart constructor. suppliedArgs are already-lifted actual
// arguments; any arity shortfall is closed with freshly bound lambda
// parameters wrapping a single fully-applied call, so a partial application
// of a known function or constructor always eta-expands to full arity.
func knownCall(targetIdent string, arity int, isPartial bool, suppliedArgs []gallina.Term, c *Converter) gallina.Term {
	head := []gallina.Term{gallina.NewIdent(ShapeIdent), gallina.NewIdent(PosIdent)}
	if isPartial {
		head = append(head, gallina.NewIdent(PartialInstIdent))
	}
	headTerm := gallina.NewApp(gallina.NewIdent(targetIdent), head...)

	if len(suppliedArgs) >= arity {
		return gallina.NewApp(headTerm, suppliedArgs...)
	}

	missing := arity - len(suppliedArgs)
	names := make([]string, missing)
	for i := range names {
		names[i] = c.Env.Fresh(env.AnonArgPrefix)
	}
	allArgs := append(append([]gallina.Term{}, suppliedArgs...), identTerms(names)...)
	full := gallina.NewApp(headTerm, allArgs...)

	body := full
	for i := len(names) - 1; i >= 0; i-- {
		body = gallina.Pure(gallina.NewFun([]string{names[i]}, body))
	}
	return body
}

func identTerms(names []string) []gallina.Term {
	out := make([]gallina.Term, len(names))
	for i, n := range names {
		out[i] = gallina.NewIdent(n)
	}
	return out
}

// liftKnownFuncCall builds a call to a statically known function, applying
// the recursive-helper call handling rule: if targetIdent is a recursive
// helper (registered via env.SetDecArgIndex), its decreasing-argument binder
// is declared at its bare, not-yet-lifted type, while every argument this
// call site has in hand is already the ordinary monadic `Free Shape Pos`
// term every other binder expects — including the decreasing argument
// itself, since it always arrives here either as another function's
// already-lifted parameter or as a pattern-bound field of an Inductive
// (whose fields are themselves `Dagger`-typed). That one argument is
// therefore bind-opened to its bare value before the call is applied; every
// other argument passes through unchanged.
func liftKnownFuncCall(targetIdent string, arity int, isPartial bool, args []gallina.Term, c *Converter) gallina.Term {
	decIdx, ok := c.Env.DecArgIndex(targetIdent)
	if !ok || decIdx >= len(args) {
		return knownCall(targetIdent, arity, isPartial, args, c)
	}
	return shortCircuitBind(c, args[decIdx], "d", func(opened gallina.Term) gallina.Term {
		openedArgs := append([]gallina.Term{}, args...)
		openedArgs[decIdx] = opened
		return knownCall(targetIdent, arity, isPartial, openedArgs, c)
	})
}

// liftApp flattens an application spine: if the head resolves to a known
// top-level function/constructor, it becomes a direct (non-bind) saturated
// or eta-expanded call; otherwise the general bind-per-application rule
// applies, matching the source's own curried structure.
func liftApp(top *ir.App, c *Converter) gallina.Term {
	head, args := flattenApp(top)
	if v, ok := head.(*ir.Var); ok {
		if entry, ok := c.Env.LookupValue(v.Name); ok {
			liftedArgs := make([]gallina.Term, len(args))
			for i, a := range args {
				liftedArgs[i] = Expr(a, c)
			}
			switch en := entry.(type) {
			case *env.FuncEntry:
				return liftKnownFuncCall(en.TargetIdent(), en.Arity, en.IsPartial, liftedArgs, c)
			case *env.ConEntry:
				return knownCall(en.SmartTargetIdent, en.Arity, false, liftedArgs, c)
			}
		}
	}
	if con, ok := head.(*ir.Con); ok {
		if entry, ok := c.Env.LookupValue(con.Name); ok {
			if en, ok := entry.(*env.ConEntry); ok {
				liftedArgs := make([]gallina.Term, len(args))
				for i, a := range args {
					liftedArgs[i] = Expr(a, c)
				}
				return knownCall(en.SmartTargetIdent, en.Arity, false, liftedArgs, c)
			}
		}
	}

	// General case: head is itself a monadic function value (e.g. a
	// lambda- or pattern-bound variable); apply one argument at a time via
	// bind, following the source's own curried grouping.
	result := Expr(head, c)
	for _, a := range args {
		argTerm := Expr(a, c)
		result = shortCircuitBind(c, result, "f", func(f gallina.Term) gallina.Term {
			return gallina.NewApp(f, argTerm)
		})
	}
	return result
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

func liftLambda(ex *ir.Lambda, c *Converter) gallina.Term {
	c.Env.PushValueScope()
	names := make([]string, len(ex.Args))
	for i, p := range ex.Args {
		entry := c.Env.RenameAndDefine(env.ValueScope, p.Ident.Name, p.Ident.Span, func(target string) env.Entry {
			return env.NewVarEntry(p.Ident.Name, target, false)
		})
		names[i] = entry.TargetIdent()
	}
	body := Expr(ex.Body, c)
	c.Env.PopValueScope()

	result := body
	for i := len(names) - 1; i >= 0; i-- {
		result = gallina.Pure(gallina.NewFun([]string{names[i]}, result))
	}
	return result
}

func liftCase(ex *ir.Case, c *Converter) gallina.Term {
	scrut := Expr(ex.Scrutinee, c)
	return shortCircuitBind(c, scrut, "v", func(v gallina.Term) gallina.Term {
		arms := make([]gallina.MatchArm, len(ex.Alts))
		for i, alt := range ex.Alts {
			conEntry, _ := c.Env.LookupValue(alt.Pat.Con)
			ce, _ := conEntry.(*env.ConEntry)
			conTarget := alt.Pat.Con.Text
			if ce != nil {
				conTarget = ce.TargetIdent()
			}

			c.Env.PushValueScope()
			varNames := make([]string, len(alt.Pat.Fields))
			for j, f := range alt.Pat.Fields {
				entry := c.Env.RenameAndDefine(env.ValueScope, f.Ident.Name, f.Ident.Span, func(target string) env.Entry {
					return env.NewVarEntry(f.Ident.Name, target, false)
				})
				varNames[j] = entry.TargetIdent()
			}
			body := Expr(alt.Body, c)
			c.Env.PopValueScope()

			arms[i] = gallina.MatchArm{Con: conTarget, Vars: varNames, Body: body}
		}
		return gallina.NewMatch(v, arms)
	})
}

// shortCircuitBind opens a monadic value for use by a pure continuation: if
// m is itself `pure x`, k is applied directly to x and no bind is emitted;
// otherwise a freshly bound variable (named from prefix) carries the
// opened value and a real `bind` is emitted.
func shortCircuitBind(c *Converter, m gallina.Term, prefix string, k func(gallina.Term) gallina.Term) gallina.Term {
	if inner, ok := pureInner(m); ok {
		return k(inner)
	}
	v := c.Env.Fresh(prefix)
	return gallina.Bind(m, gallina.NewFun([]string{v}, k(gallina.NewIdent(v))))
}

func pureInner(t gallina.Term) (gallina.Term, bool) {
	app, ok := t.(*gallina.App)
	if !ok || len(app.Args) != 1 {
		return nil, false
	}
	raw, ok := app.Fun.(*gallina.Raw)
	if !ok || raw.Text != "pure" {
		return nil, false
	}
	return app.Args[0], true
}
