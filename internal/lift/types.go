// Package lift translates IR types and expressions into Gallina terms under
// the `Free Shape Pos` encoding: type lifting inserts the two monad
// parameters and wraps every function argument/result in `Free Shape Pos`;
// expression lifting inserts `pure`/`bind` so every emitted term has the
// corresponding monadic type.
package lift

import (
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
)

// ShapeIdent and PosIdent are the two monad parameters threaded through
// every polymorphic construct.
const (
	ShapeIdent = "Shape"
	PosIdent   = "Pos"
)

func shapePos() []gallina.Term { return []gallina.Term{gallina.NewIdent(ShapeIdent), gallina.NewIdent(PosIdent)} }

// Dagger computes τ†, the fully lifted form of a source type:
// `Free Shape Pos τ*`.
func Dagger(t ir.Type, e *env.Env) gallina.Term {
	return gallina.NewApp(gallina.NewRaw("Free"), append(shapePos(), Star(t, e))...)
}

// Star computes τ*, the generic-parameter-threaded but not-yet-lifted form
// of a source type. A reference to a type synonym is expanded eagerly here,
// at every use site, rather than left as a reference to the synonym's own
// Definition: a recursive data declaration's field can mention a synonym
// built from the very types in its own mutually-recursive group, and Coq's
// positivity checker only accepts that when the synonym's body appears
// inline, not behind a separately-defined name.
func Star(t ir.Type, e *env.Env) gallina.Term {
	switch tt := t.(type) {
	case *ir.TypeVar:
		entry, ok := e.LookupType(ir.Unqualified(tt.Ident))
		if !ok {
			return gallina.NewIdent(tt.Ident)
		}
		return gallina.NewIdent(entry.TargetIdent())

	case *ir.TypeFunc:
		return gallina.NewArrow(Dagger(tt.From, e), Dagger(tt.To, e))

	default:
		head, args, ok := ir.AppliedArgs(t)
		if !ok {
			return gallina.NewIdent("?")
		}
		if entry, ok := e.LookupType(head); ok {
			if syn, ok := entry.(*env.TypeSynEntry); ok {
				return Star(expandSynonym(syn, args), e)
			}
		}
		target := head.Text
		if entry, ok := e.LookupType(head); ok {
			target = entry.TargetIdent()
		}
		terms := append([]gallina.Term{gallina.NewIdent(target)}, shapePos()...)
		for _, a := range args {
			terms = append(terms, Star(a, e))
		}
		return gallina.NewApp(terms[0], terms[1:]...)
	}
}

// expandSynonym substitutes a type synonym's declared type-argument names
// with the actually-supplied arguments throughout its body.
func expandSynonym(syn *env.TypeSynEntry, args []ir.Type) ir.Type {
	bindings := map[string]ir.Type{}
	for i, v := range syn.TypeArgs {
		if i < len(args) {
			bindings[v] = args[i]
		}
	}
	return substituteTypeVars(syn.Body, bindings)
}

func substituteTypeVars(t ir.Type, bindings map[string]ir.Type) ir.Type {
	switch tt := t.(type) {
	case *ir.TypeVar:
		if replacement, ok := bindings[tt.Ident]; ok {
			return replacement
		}
		return tt
	case *ir.TypeApp:
		return ir.NewTypeApp(tt.Span(), substituteTypeVars(tt.Fun, bindings), substituteTypeVars(tt.Arg, bindings))
	case *ir.TypeFunc:
		return ir.NewTypeFunc(tt.Span(), substituteTypeVars(tt.From, bindings), substituteTypeVars(tt.To, bindings))
	default:
		return t
	}
}

// Schema lifts a TypeSchema's body and returns the implicit type-variable
// binders that should precede the value binders in the emitted signature.
func Schema(s ir.TypeSchema, e *env.Env) (binders []gallina.Binder, bodyDagger gallina.Term) {
	for _, v := range s.Vars {
		entry, ok := e.LookupType(ir.Unqualified(v))
		name := v
		if ok {
			name = entry.TargetIdent()
		}
		binders = append(binders, gallina.Binder{Names: []string{name}, Type: gallina.NewIdent("Type"), Implicit: true})
	}
	return binders, Dagger(s.Body, e)
}
