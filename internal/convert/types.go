package convert

import (
	"fmt"

	"github.com/freecoq/fcc/internal/depgraph"
	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
	"github.com/freecoq/fcc/internal/lift"
)

// Types converts a module's type declarations to Gallina sentences, in
// dependency order: each strongly connected component's members are
// registered in the environment together (so mutual references within a
// recursive group resolve), then emitted as one `Inductive … with … .` block
// per group of data declarations, or one `Definition` per type synonym. A
// synonym-only cycle is rejected before any sentence is produced, since Coq
// has no recursive notion of "definition" the way it does of "inductive
// type".
func Types(mod *ir.Module, e *env.Env) []gallina.Sentence {
	g := depgraph.BuildTypeGraph(mod.TypeDecls)
	sccs := g.SCCs()

	if bad := depgraph.RejectSynonymCycles(mod.TypeDecls, sccs); bad != nil {
		span := ir.Span{}
		for _, d := range mod.TypeDecls {
			if d.TypeName().Name.Text == bad[0] {
				span = d.TypeName().Span
				break
			}
		}
		e.Reporter.Errorf(diagnostics.CodeSynonymCycle, span,
			"mutually recursive type synonyms: %v", bad)
		return nil
	}

	byName := map[string]ir.TypeDecl{}
	for _, d := range mod.TypeDecls {
		if _, dup := byName[d.TypeName().Name.Text]; dup {
			e.Reporter.Errorf(diagnostics.CodeDuplicateDecl, d.TypeName().Span,
				"duplicate declaration of type %q", d.TypeName().Name.Text)
			continue
		}
		byName[d.TypeName().Name.Text] = d
	}

	var out []gallina.Sentence
	for _, scc := range sccs {
		out = append(out, convertTypeSCC(scc, byName, e)...)
	}
	return out
}

// convertTypeSCC registers every member's type-scope entry before converting
// any of them, then emits one Inductive block for the group's data
// declarations (if any) and one Definition per type synonym in the group.
func convertTypeSCC(scc depgraph.SCC, byName map[string]ir.TypeDecl, e *env.Env) []gallina.Sentence {
	decls := make([]ir.TypeDecl, 0, len(scc.Members))
	for _, name := range scc.Members {
		d := byName[name]
		decls = append(decls, d)
		switch td := d.(type) {
		case *ir.DataDecl:
			e.RenameAndDefine(env.TypeScope, td.Ident.Name, td.Ident.Span, func(target string) env.Entry {
				return env.NewDataEntry(td.Ident.Name, target, len(td.Args))
			})
		case *ir.TypeSynDecl:
			argNames := make([]string, len(td.Args))
			for i, a := range td.Args {
				argNames[i] = a.Name.Text
			}
			e.RenameAndDefine(env.TypeScope, td.Ident.Name, td.Ident.Span, func(target string) env.Entry {
				return env.NewTypeSynEntry(td.Ident.Name, target, len(td.Args), argNames, td.Body)
			})
		}
	}

	var out []gallina.Sentence
	var dataDecls []*ir.DataDecl
	for _, d := range decls {
		switch td := d.(type) {
		case *ir.DataDecl:
			dataDecls = append(dataDecls, td)
		case *ir.TypeSynDecl:
			out = append(out, convertTypeSynonym(td, e))
		}
	}
	if len(dataDecls) > 0 {
		out = append(out, convertDataGroup(dataDecls, e)...)
	}
	return out
}

// convertTypeSynonym emits the `Definition` parameterized by Shape, Pos, and
// its own type arguments, whose body is the synonym's translated τ*. Kept
// for documentation parity with a hand-written Gallina library even though,
// after Star's eager-expansion rule, no generated reference ever names this
// Definition again.
func convertTypeSynonym(td *ir.TypeSynDecl, e *env.Env) gallina.Sentence {
	e.PushTypeScope()
	argTargets := make([]string, len(td.Args))
	for i, a := range td.Args {
		entry := e.RenameAndDefine(env.TypeScope, a.Name, a.Span, func(target string) env.Entry {
			return env.NewTypeVarEntry(a.Name, target)
		})
		argTargets[i] = entry.TargetIdent()
	}
	body := lift.Star(td.Body, e)
	e.PopTypeScope()

	entry, _ := e.LookupType(td.Ident.Name)

	binders := shapePosBinders()
	for _, t := range argTargets {
		binders = append(binders, gallina.Binder{Names: []string{t}, Type: gallina.NewIdent("Type")})
	}
	return &gallina.Definition{
		Name:       entry.TargetIdent(),
		Binders:    binders,
		ReturnType: gallina.NewIdent("Type"),
		Body:       body,
	}
}

// convertDataGroup emits one Inductive block (a single body, or a `with`
// block for a mutually-recursive group) plus, for every constructor, one
// Arguments sentence and one smart-constructor Definition.
func convertDataGroup(decls []*ir.DataDecl, e *env.Env) []gallina.Sentence {
	var bodies []gallina.InductiveBody
	var extra []gallina.Sentence

	for _, d := range decls {
		e.PushTypeScope()
		argTargets := make([]string, len(d.Args))
		for i, a := range d.Args {
			entry := e.RenameAndDefine(env.TypeScope, a.Name, a.Span, func(target string) env.Entry {
				return env.NewTypeVarEntry(a.Name, target)
			})
			argTargets[i] = entry.TargetIdent()
		}

		dataEntry, _ := e.LookupType(d.Ident.Name)
		targetName := dataEntry.TargetIdent()

		binders := shapePosBinders()
		for _, t := range argTargets {
			binders = append(binders, gallina.Binder{Names: []string{t}, Type: gallina.NewIdent("Type")})
		}

		selfType := selfTypeTerm(targetName, argTargets)

		cons := make([]gallina.InductiveCon, len(d.Cons))
		for ci, cd := range d.Cons {
			fields := make([]gallina.Term, len(cd.Fields))
			for i, f := range cd.Fields {
				fields[i] = lift.Dagger(f, e)
			}

			returnType := dataRefType(d, d.Args)

			var smartTarget string
			conEntry := e.RenameAndDefine(env.ValueScope, cd.Ident.Name, cd.Ident.Span, func(target string) env.Entry {
				smartTarget = e.Fresh("pure_" + target)
				return env.NewConEntry(cd.Ident.Name, target, smartTarget, len(cd.Fields), cd.Fields, returnType)
			})
			rawTarget := conEntry.TargetIdent()

			cons[ci] = gallina.InductiveCon{Name: rawTarget, Fields: fields, Self: selfType}

			implicitSpecs := append([]string{lift.ShapeIdent, lift.PosIdent}, argTargets...)
			extra = append(extra, &gallina.Arguments{Name: rawTarget, Specs: implicitSpecs})
			extra = append(extra, smartConstructorDef(rawTarget, smartTarget, argTargets, fields, selfType))
		}

		bodies = append(bodies, gallina.InductiveBody{
			Name:         targetName,
			Binders:      binders,
			ResultType:   gallina.NewIdent("Type"),
			Constructors: cons,
		})
		e.PopTypeScope()
	}

	out := []gallina.Sentence{&gallina.Inductive{Bodies: bodies}}
	return append(out, extra...)
}

// smartConstructorDef builds the Definition that wraps a raw constructor in
// `pure`, bypassing implicit-argument inference via an `@`-prefixed call so
// every generic parameter is supplied positionally in the Inductive's own
// binder order (Shape, Pos, then type variables). selfType is the bare
// applied type (e.g. `List Shape Pos a`, not yet wrapped in `Free`).
func smartConstructorDef(rawTarget, smartTarget string, typeVars []string, fieldDaggers []gallina.Term, selfType gallina.Term) *gallina.Definition {
	binders := shapePosBinders()
	if len(typeVars) > 0 {
		binders = append(binders, gallina.Binder{Names: typeVars, Type: gallina.NewIdent("Type"), Implicit: true})
	}

	args := []gallina.Term{gallina.NewIdent(lift.ShapeIdent), gallina.NewIdent(lift.PosIdent)}
	for _, t := range typeVars {
		args = append(args, gallina.NewIdent(t))
	}
	for i, f := range fieldDaggers {
		name := fmt.Sprintf("x%d", i+1)
		binders = append(binders, gallina.Binder{Names: []string{name}, Type: f})
		args = append(args, gallina.NewIdent(name))
	}

	body := gallina.Pure(gallina.NewApp(gallina.NewRaw("@"+rawTarget), args...))
	return &gallina.Definition{
		Name:       smartTarget,
		Binders:    binders,
		ReturnType: gallina.NewApp(gallina.NewRaw("Free"), gallina.NewIdent(lift.ShapeIdent), gallina.NewIdent(lift.PosIdent), selfType),
		Body:       body,
	}
}

func shapePosBinders() []gallina.Binder {
	return []gallina.Binder{
		{Names: []string{lift.ShapeIdent}, Type: gallina.NewIdent("Type")},
		{Names: []string{lift.PosIdent}, Type: gallina.NewArrow(gallina.NewIdent(lift.ShapeIdent), gallina.NewIdent("Type"))},
	}
}

// selfTypeTerm builds `Name Shape Pos a1 … an`, a data type applied to its
// own monad parameters and type variables, already in target-identifier
// form (used directly as a Gallina term, bypassing the IR).
func selfTypeTerm(targetName string, argTargets []string) gallina.Term {
	args := []gallina.Term{gallina.NewIdent(lift.ShapeIdent), gallina.NewIdent(lift.PosIdent)}
	for _, t := range argTargets {
		args = append(args, gallina.NewIdent(t))
	}
	return gallina.NewApp(gallina.NewIdent(targetName), args...)
}

// dataRefType builds the IR type `Name a1 … an` referencing a data
// declaration applied to its own declared type arguments, for storing in a
// ConEntry's ReturnType.
func dataRefType(d *ir.DataDecl, args []ir.DeclIdent) ir.Type {
	var t ir.Type = ir.NewTypeCon(d.Ident.Span, d.Ident.Name)
	for _, a := range args {
		t = ir.NewTypeApp(d.Ident.Span, t, ir.NewTypeVar(a.Span, a.Name.Text))
	}
	return t
}
