package convert

import (
	"github.com/freecoq/fcc/internal/depgraph"
	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
	"github.com/freecoq/fcc/internal/lift"
	"github.com/freecoq/fcc/internal/recursion"
	"github.com/freecoq/fcc/internal/termination"
)

// Funcs converts a module's function declarations to Gallina sentences: pass
// 1 registers every function's signature (and a first-cut, not-yet-final
// partiality flag) before any body is converted, so forward and mutually
// recursive references resolve; pass 2 walks value-level SCCs in dependency
// order, finalizing each group's partiality by fixed point and emitting
// either a plain Definition (non-recursive member) or a shared Fixpoint of
// extracted helpers plus one driver Definition per member (recursive SCC).
func Funcs(mod *ir.Module, e *env.Env) []gallina.Sentence {
	registerFuncSignatures(mod, e)

	g := depgraph.BuildValueGraph(mod.Funcs)
	sccs := g.SCCs()

	byName := map[string]*ir.FuncDecl{}
	for i := range mod.Funcs {
		byName[mod.Funcs[i].Ident.Name.Text] = &mod.Funcs[i]
	}

	var out []gallina.Sentence
	for _, scc := range sccs {
		resolvePartiality(scc, byName, e)
		out = append(out, convertValueSCC(scc, byName, e)...)
	}
	return out
}

// registerFuncSignatures is pass 1: every function's arity, type-argument
// list, argument types, and return type are entered into the environment
// (partiality starts false and is corrected by resolvePartiality once the
// value-level SCCs are known). A function with no declared signature is a
// fatal error; it is skipped rather than given a guessed type, since there
// is nothing principled to guess from in a Hindley-Milner-free pipeline.
func registerFuncSignatures(mod *ir.Module, e *env.Env) {
	seen := map[string]bool{}
	for i := range mod.Funcs {
		f := &mod.Funcs[i]
		if seen[f.Ident.Name.Text] {
			e.Reporter.Errorf(diagnostics.CodeDuplicateDecl, f.Ident.Span,
				"duplicate declaration of function %q", f.Ident.Name.Text)
			continue
		}
		seen[f.Ident.Name.Text] = true
		schema, ok := mod.FuncSig(f.Ident.Name.Text)
		if !ok {
			e.Reporter.Errorf(diagnostics.CodeMissingSig, f.Ident.Span,
				"function %q has no type signature", f.Ident.Name.Text)
			continue
		}
		arity := len(f.ValueArgs)
		argTypes := ir.ArgTypes(schema.Body, arity)
		returnType := ir.ResultType(schema.Body, arity)
		e.RenameAndDefine(env.ValueScope, f.Ident.Name, f.Ident.Span, func(target string) env.Entry {
			return env.NewFuncEntry(f.Ident.Name, target, arity, schema.Vars, argTypes, returnType, false)
		})
	}
}

// resolvePartiality finalizes the partiality flag of every member of one
// value-level SCC by fixed point: a member is partial if its own body
// mentions `undefined`/`error` directly, or if it calls a function (a
// fellow SCC member or an already-converted external one) that is partial.
func resolvePartiality(scc depgraph.SCC, byName map[string]*ir.FuncDecl, e *env.Env) {
	direct := map[string]bool{}
	for _, name := range scc.Members {
		if f, ok := byName[name]; ok {
			direct[name] = containsPartialOp(f.Body)
		}
	}

	partial := map[string]bool{}
	for changed := true; changed; {
		changed = false
		for _, name := range scc.Members {
			if partial[name] {
				continue
			}
			f, ok := byName[name]
			if !ok {
				continue
			}
			if direct[name] || callsPartial(f.Body, scc.Members, partial, e) {
				partial[name] = true
				changed = true
			}
		}
	}

	for _, name := range scc.Members {
		if !partial[name] {
			continue
		}
		entry, ok := e.LookupValue(ir.Unqualified(name))
		if !ok {
			continue
		}
		fe := entry.(*env.FuncEntry)
		updated := env.NewFuncEntry(fe.SourceName(), fe.TargetIdent(), fe.Arity, fe.TypeArgs, fe.ArgTypes, fe.ReturnType, true)
		e.DefineValueOverride(ir.Unqualified(name), updated)
	}
}

func containsPartialOp(e ir.Expr) bool {
	switch ex := e.(type) {
	case *ir.Undefined:
		return true
	case *ir.ErrorExpr:
		return true
	case *ir.If:
		return containsPartialOp(ex.Cond) || containsPartialOp(ex.Then) || containsPartialOp(ex.Else)
	case *ir.App:
		return containsPartialOp(ex.Fun) || containsPartialOp(ex.Arg)
	case *ir.Case:
		if containsPartialOp(ex.Scrutinee) {
			return true
		}
		for _, alt := range ex.Alts {
			if containsPartialOp(alt.Body) {
				return true
			}
		}
		return false
	case *ir.Lambda:
		return containsPartialOp(ex.Body)
	default:
		return false
	}
}

func callsPartial(body ir.Expr, members []string, partial map[string]bool, e *env.Env) bool {
	memberSet := map[string]bool{}
	for _, m := range members {
		memberSet[m] = true
	}
	for _, ref := range ir.FreeVarRefs(body) {
		if memberSet[ref.Text] {
			if partial[ref.Text] {
				return true
			}
			continue
		}
		if entry, ok := e.LookupValue(ref); ok {
			if fe, ok := entry.(*env.FuncEntry); ok && fe.IsPartial {
				return true
			}
		}
	}
	return false
}

func convertValueSCC(scc depgraph.SCC, byName map[string]*ir.FuncDecl, e *env.Env) []gallina.Sentence {
	if !scc.Recursive {
		f, ok := byName[scc.Members[0]]
		if !ok {
			return nil
		}
		return []gallina.Sentence{convertPlainFunc(f, e)}
	}
	return convertRecursiveSCC(scc, byName, e)
}

// convertPlainFunc emits a non-recursive function as a single Definition:
// every value argument is an ordinary (non-pure) τ† binder, since nothing
// here needs Coq's structural-recursion guard.
func convertPlainFunc(f *ir.FuncDecl, e *env.Env) *gallina.Definition {
	entry, ok := e.LookupValue(f.Ident.Name)
	if !ok {
		return nil
	}
	fe := entry.(*env.FuncEntry)

	e.PushTypeScope()
	typeVarTargets := registerSchemaTypeVars(fe.TypeArgs, f.Ident.Span, e)
	returnDagger := lift.Dagger(fe.ReturnType, e)

	e.PushValueScope()
	binders := functionBinderPrefix(fe.IsPartial, typeVarTargets)
	for i, vp := range f.ValueArgs {
		argType := argTypeAt(fe.ArgTypes, i)
		ve := e.RenameAndDefine(env.ValueScope, vp.Ident.Name, vp.Ident.Span, func(target string) env.Entry {
			return env.NewVarEntry(vp.Ident.Name, target, false)
		})
		binders = append(binders, gallina.Binder{Names: []string{ve.TargetIdent()}, Type: lift.Dagger(argType, e)})
	}

	conv := lift.New(e, fe.IsPartial)
	body := lift.Expr(f.Body, conv)

	e.PopValueScope()
	e.PopTypeScope()

	return &gallina.Definition{
		Name:       fe.TargetIdent(),
		Binders:    binders,
		ReturnType: returnDagger,
		Body:       body,
	}
}

// convertRecursiveSCC emits one shared Fixpoint block (one FixBody per
// extracted helper, across every member of the group) followed by one
// driver Definition per member, in declaration order.
func convertRecursiveSCC(scc depgraph.SCC, byName map[string]*ir.FuncDecl, e *env.Env) []gallina.Sentence {
	members := make([]termination.Member, 0, len(scc.Members))
	for _, name := range scc.Members {
		f, ok := byName[name]
		if !ok {
			continue
		}
		args := make([]string, len(f.ValueArgs))
		for j, vp := range f.ValueArgs {
			args[j] = vp.Ident.Name.Text
		}
		members = append(members, termination.Member{Name: name, Args: args, Body: f.Body})
	}

	result, err := termination.Analyze(members)
	if err != nil {
		first, _ := byName[scc.Members[0]]
		span := ir.Span{}
		if first != nil {
			span = first.Ident.Span
		}
		e.Reporter.Errorf(diagnostics.CodeNoDecreasingArg, span, "%s", err.Error())
		return nil
	}

	type extracted struct {
		f      *ir.FuncDecl
		decIdx int
		r      recursion.Result
	}
	exs := make([]extracted, 0, len(scc.Members))
	for _, name := range scc.Members {
		f, ok := byName[name]
		if !ok {
			continue
		}
		decIdx := result.DecArgIndex[name]
		decName := f.ValueArgs[decIdx].Ident.Name.Text
		var r recursion.Result
		withArgsRegistered(e, f, decIdx, func() {
			r = recursion.Extract(e, f.Body, decName)
		})
		exs = append(exs, extracted{f: f, decIdx: decIdx, r: r})
	}

	// Register every extracted helper under its own synthetic name, and
	// remember each member's first helper: the redirect target used when
	// a fellow member's own helper body calls back into this member (see
	// internal/recursion's doc comment for why "first helper" is exact
	// for this compiler's accepted single-case-site shape).
	firstHelper := map[string]string{}
	for _, x := range exs {
		entry, ok := e.LookupValue(x.f.Ident.Name)
		if !ok {
			continue
		}
		fentry := entry.(*env.FuncEntry)
		for hi, h := range x.r.Helpers {
			if hi == 0 {
				firstHelper[x.f.Ident.Name.Text] = h.Name
			}
			e.DefineValueOverride(ir.Unqualified(h.Name), env.NewFuncEntry(
				ir.Unqualified(h.Name), h.Name, len(h.FreeVars), fentry.TypeArgs, nil, nil, fentry.IsPartial))
			if h.DecArgIndex >= 0 {
				e.SetDecArgIndex(h.Name, h.DecArgIndex)
			}
		}
	}

	var fixBodies []gallina.FixBody
	var driverSentences []gallina.Sentence

	for _, x := range exs {
		f := x.f
		entry, ok := e.LookupValue(f.Ident.Name)
		if !ok {
			continue
		}
		fentry := entry.(*env.FuncEntry)

		e.PushTypeScope()
		typeVarTargets := registerSchemaTypeVars(fentry.TypeArgs, f.Ident.Span, e)
		returnDagger := lift.Dagger(fentry.ReturnType, e)

		for _, h := range x.r.Helpers {
			body, binders, structName := convertHelperBody(h, x.decIdx, f, fentry, typeVarTargets, scc.Members, firstHelper, e)
			fixBodies = append(fixBodies, gallina.FixBody{
				Name:       h.Name,
				Binders:    binders,
				Struct:     structName,
				ReturnType: returnDagger,
				Body:       body,
			})
		}

		driverBinders, driverBody := convertDriverBody(f, fentry, x.r.Driver, typeVarTargets, e)
		driverSentences = append(driverSentences, &gallina.Definition{
			Name:       fentry.TargetIdent(),
			Binders:    driverBinders,
			ReturnType: returnDagger,
			Body:       driverBody,
		})

		e.PopTypeScope()
	}

	out := []gallina.Sentence{&gallina.Fixpoint{Bodies: fixBodies}}
	return append(out, driverSentences...)
}

// convertHelperBody lifts one extracted helper's case into a Fixpoint body:
// every captured free variable is an ordinary τ† binder except the
// decreasing argument itself, which keeps its un-lifted τ* type and is
// tagged IsPureVar so every reference to it inside the body is wrapped in
// `pure` to restore the uniform τ† shape everything else already has.
func convertHelperBody(h recursion.Helper, decIdx int, f *ir.FuncDecl, fentry *env.FuncEntry, typeVarTargets []string, sccMembers []string, firstHelper map[string]string, e *env.Env) (gallina.Term, []gallina.Binder, string) {
	decType := argTypeAt(fentry.ArgTypes, decIdx)

	e.PushValueScope()
	for _, m := range sccMembers {
		if hn, ok := firstHelper[m]; ok {
			if target, ok := e.LookupValue(ir.Unqualified(hn)); ok {
				e.DefineValueOverride(ir.Unqualified(m), target)
			}
		}
	}

	binders := functionBinderPrefix(fentry.IsPartial, typeVarTargets)
	structName := ""
	for i, fv := range h.FreeVars {
		argType := argTypeForCapturedName(fv, f, fentry, decType)
		isDecArg := i == h.DecArgIndex
		var gType gallina.Term
		if isDecArg {
			gType = lift.Star(argType, e)
		} else {
			gType = lift.Dagger(argType, e)
		}
		ve := e.RenameAndDefine(env.ValueScope, ir.Unqualified(fv), f.Ident.Span, func(target string) env.Entry {
			return env.NewVarEntry(ir.Unqualified(fv), target, isDecArg)
		})
		binders = append(binders, gallina.Binder{Names: []string{ve.TargetIdent()}, Type: gType})
		if isDecArg {
			structName = ve.TargetIdent()
		}
	}

	conv := lift.New(e, fentry.IsPartial)
	body := lift.Expr(h.Case, conv)

	e.PopValueScope()
	return body, binders, structName
}

// convertDriverBody lifts the non-recursive driver body left after
// extraction: every value argument is an ordinary τ† binder (no pure
// variable here — the driver itself is never a Fixpoint), and the body is
// typically just a saturated call into the member's own first helper.
func convertDriverBody(f *ir.FuncDecl, fentry *env.FuncEntry, driverBody ir.Expr, typeVarTargets []string, e *env.Env) ([]gallina.Binder, gallina.Term) {
	e.PushValueScope()
	binders := functionBinderPrefix(fentry.IsPartial, typeVarTargets)
	for i, vp := range f.ValueArgs {
		argType := argTypeAt(fentry.ArgTypes, i)
		ve := e.RenameAndDefine(env.ValueScope, vp.Ident.Name, vp.Ident.Span, func(target string) env.Entry {
			return env.NewVarEntry(vp.Ident.Name, target, false)
		})
		binders = append(binders, gallina.Binder{Names: []string{ve.TargetIdent()}, Type: lift.Dagger(argType, e)})
	}

	conv := lift.New(e, fentry.IsPartial)
	body := lift.Expr(driverBody, conv)
	e.PopValueScope()
	return binders, body
}

// argTypeForCapturedName maps a helper's captured free-variable name back
// to the owning function's own declared argument type, by name match
// against the original ValueArgs; a captured name with no such match (not
// expected for this compiler's accepted single-case-site shape, where every
// capture is either the decreasing argument or another top-level argument)
// falls back to the decreasing argument's own type.
func argTypeForCapturedName(name string, f *ir.FuncDecl, fentry *env.FuncEntry, decType ir.Type) ir.Type {
	for i, vp := range f.ValueArgs {
		if vp.Ident.Name.Text == name {
			return argTypeAt(fentry.ArgTypes, i)
		}
	}
	return decType
}

// withArgsRegistered pushes a throwaway value-scope frame registering a
// function's own value arguments as VarEntries (the decreasing one tagged
// IsPureVar) via DefineValueOverride, which never consumes an identifier
// from the taken pool, runs fn, then pops the frame. recursion.Extract's
// capture analysis only treats a name as a capturable local variable if it
// already resolves to a *env.VarEntry, so this registration must happen
// before Extract runs; the real, taken-pool-consuming binder names are
// minted afterward, in convertHelperBody/convertDriverBody.
func withArgsRegistered(e *env.Env, f *ir.FuncDecl, decIdx int, fn func()) {
	e.PushValueScope()
	for i, vp := range f.ValueArgs {
		name := vp.Ident.Name
		e.DefineValueOverride(name, env.NewVarEntry(name, name.Text, i == decIdx))
	}
	fn()
	e.PopValueScope()
}

func argTypeAt(argTypes []ir.Type, i int) ir.Type {
	if i < 0 || i >= len(argTypes) {
		return nil
	}
	return argTypes[i]
}

// registerSchemaTypeVars defines a function's schema type variables as
// TypeVarEntry bindings in the currently pushed type scope and returns their
// target identifiers, in schema order.
func registerSchemaTypeVars(vars []string, span ir.Span, e *env.Env) []string {
	targets := make([]string, len(vars))
	for i, v := range vars {
		entry := e.RenameAndDefine(env.TypeScope, ir.Unqualified(v), span, func(target string) env.Entry {
			return env.NewTypeVarEntry(ir.Unqualified(v), target)
		})
		targets[i] = entry.TargetIdent()
	}
	return targets
}

// functionBinderPrefix builds the Shape/Pos binders every function carries,
// followed by the Partial instance binder if the function is partial,
// followed by its implicit type-variable binders — the fixed prefix that
// precedes every function's own value-argument binders.
func functionBinderPrefix(isPartial bool, typeVarTargets []string) []gallina.Binder {
	binders := shapePosBinders()
	if isPartial {
		binders = append(binders, partialBinder())
	}
	if len(typeVarTargets) > 0 {
		binders = append(binders, gallina.Binder{Names: typeVarTargets, Type: gallina.NewIdent("Type"), Implicit: true})
	}
	return binders
}

func partialBinder() gallina.Binder {
	return gallina.Binder{Names: []string{lift.PartialInstIdent}, Type: gallina.NewIdent("Partial")}
}
