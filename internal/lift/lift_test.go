package lift

import (
	"testing"

	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
)

func newTestEnv(t *testing.T) *env.Env {
	t.Helper()
	e := env.New(diagnostics.New())
	e.Init(nil)
	return e
}

func TestLiftIntLiteralIsPure(t *testing.T) {
	e := newTestEnv(t)
	c := New(e, false)
	out := Expr(ir.NewIntLiteral(ir.Span{}, 3), c)
	if _, ok := pureInner(out); !ok {
		t.Fatalf("expected pure-wrapped literal, got %#v", out)
	}
}

func TestLiftVarPureDecreasingArg(t *testing.T) {
	e := newTestEnv(t)
	entry := e.RenameAndDefine(env.ValueScope, ir.Unqualified("x"), ir.Span{}, func(target string) env.Entry {
		return env.NewVarEntry(ir.Unqualified("x"), target, true)
	})
	c := New(e, false)
	out := Expr(ir.NewVar(ir.Span{}, ir.Unqualified("x")), c)
	inner, ok := pureInner(out)
	if !ok {
		t.Fatalf("expected pure-wrapped pure variable, got %#v", out)
	}
	id, ok := inner.(*gallina.Ident)
	if !ok || id.Name != entry.TargetIdent() {
		t.Fatalf("expected %s, got %#v", entry.TargetIdent(), inner)
	}
}

func TestLiftLambdaNestsPureFun(t *testing.T) {
	e := newTestEnv(t)
	c := New(e, false)
	body := ir.NewVar(ir.Span{}, ir.Unqualified("x"))
	xp := ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified("x")})
	lam := ir.NewLambda(ir.Span{}, []*ir.VarPat{xp}, body)
	out := Expr(lam, c)
	fun, ok := pureInner(out)
	if !ok {
		t.Fatalf("expected outer pure, got %#v", out)
	}
	if _, ok := fun.(*gallina.Fun); !ok {
		t.Fatalf("expected Fun inside pure, got %#v", fun)
	}
}

func TestLiftIfBuildsBindAndMatch(t *testing.T) {
	e := newTestEnv(t)
	c := New(e, false)
	cond := ir.NewVar(ir.Span{}, ir.Unqualified("x"))
	e.RenameAndDefine(env.ValueScope, ir.Unqualified("x"), ir.Span{}, func(target string) env.Entry {
		return env.NewVarEntry(ir.Unqualified("x"), target, false)
	})
	ifExpr := ir.NewIf(ir.Span{}, cond, ir.NewIntLiteral(ir.Span{}, 1), ir.NewIntLiteral(ir.Span{}, 2))
	out := Expr(ifExpr, c)
	app, ok := out.(*gallina.App)
	if !ok {
		t.Fatalf("expected bind application, got %#v", out)
	}
	raw, ok := app.Fun.(*gallina.Raw)
	if !ok || raw.Text != "bind" {
		t.Fatalf("expected bind call, got %#v", app.Fun)
	}
}

// A recursive helper's decreasing-argument binder is declared at its bare
// (Star) type, while the value in hand at a self-call site is already
// ordinary monadic (Dagger) — a pattern-bound Cons field, here. liftApp must
// bind-open that argument before applying the call, never pass it straight
// through.
func TestLiftAppBindOpensDecreasingArgOfRecursiveCall(t *testing.T) {
	e := newTestEnv(t)
	e.SetDecArgIndex("helper", 0)
	e.DefineValueOverride(ir.Unqualified("length"), env.NewFuncEntry(ir.Unqualified("length"), "helper", 1, nil, nil, nil, false))
	tailEntry := e.RenameAndDefine(env.ValueScope, ir.Unqualified("tail"), ir.Span{}, func(target string) env.Entry {
		return env.NewVarEntry(ir.Unqualified("tail"), target, false)
	})

	c := New(e, false)
	call := ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("length")), ir.NewVar(ir.Span{}, ir.Unqualified("tail")))
	out := Expr(call, c)

	app, ok := out.(*gallina.App)
	if !ok {
		t.Fatalf("expected a bind application wrapping the call, got %#v", out)
	}
	raw, ok := app.Fun.(*gallina.Raw)
	if !ok || raw.Text != "bind" {
		t.Fatalf("expected the recursive call to be bind-opened, got %#v", out)
	}
	if len(app.Args) != 2 {
		t.Fatalf("expected bind applied to the monadic value and a continuation, got %#v", app.Args)
	}
	m, ok := app.Args[0].(*gallina.Ident)
	if !ok || m.Name != tailEntry.TargetIdent() {
		t.Fatalf("expected %s to be the opened monadic value, got %#v", tailEntry.TargetIdent(), app.Args[0])
	}
	if _, ok := app.Args[1].(*gallina.Fun); !ok {
		t.Fatalf("expected a continuation lambda as bind's second argument, got %#v", app.Args[1])
	}
}

func TestStarAndDaggerOfFunctionType(t *testing.T) {
	e := newTestEnv(t)
	intType := ir.NewTypeCon(ir.Span{}, ir.Unqualified("Integer"))
	ft := ir.NewTypeFunc(ir.Span{}, intType, intType)
	d := Dagger(ft, e)
	app, ok := d.(*gallina.App)
	if !ok {
		t.Fatalf("expected Free application, got %#v", d)
	}
	raw, ok := app.Fun.(*gallina.Raw)
	if !ok || raw.Text != "Free" {
		t.Fatalf("expected Free wrapper, got %#v", app.Fun)
	}
}
