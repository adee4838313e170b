package env

import (
	"testing"

	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/ir"
)

func newTestEnv(t *testing.T) *Env {
	t.Helper()
	e := New(diagnostics.New())
	e.Init(nil)
	return e
}

func TestInitLoadsBuiltins(t *testing.T) {
	e := newTestEnv(t)
	entry, ok := e.LookupType(ir.Unqualified("Bool"))
	if !ok {
		t.Fatalf("expected Bool to be predefined")
	}
	if entry.TargetIdent() != "boolT" {
		t.Fatalf("target = %s", entry.TargetIdent())
	}
	fn, ok := e.LookupValue(ir.Unqualified("undefined"))
	if !ok {
		t.Fatalf("expected undefined to be predefined")
	}
	if fe, ok := fn.(*FuncEntry); !ok || !fe.IsPartial {
		t.Fatalf("expected undefined to be a partial FuncEntry, got %#v", fn)
	}
}

func TestRenameAndDefineSanitizesOperators(t *testing.T) {
	e := newTestEnv(t)
	name := ir.Name{Text: "+++", Symbol: true}
	entry := e.RenameAndDefine(ValueScope, name, ir.Span{}, func(target string) Entry {
		return NewFuncEntry(name, target, 2, nil, nil, nil, false)
	})
	if entry.TargetIdent() == "" {
		t.Fatalf("expected a non-empty target identifier")
	}
	got, ok := e.LookupValue(name)
	if !ok || got.TargetIdent() != entry.TargetIdent() {
		t.Fatalf("lookup mismatch: %#v", got)
	}
}

func TestRenameAndDefineDeterministicCollisionSuffix(t *testing.T) {
	e := newTestEnv(t)
	n1 := ir.Unqualified("foo")
	n2 := ir.Name{Module: "Other", Text: "foo"} // same Key()

	e.PushValueScope()
	defer e.PopValueScope()

	first := e.RenameAndDefine(ValueScope, n1, ir.Span{}, func(target string) Entry {
		return NewVarEntry(n1, target, false)
	})
	if first.TargetIdent() != "foo" {
		t.Fatalf("first target = %s", first.TargetIdent())
	}

	// Simulate a second distinct source entity that happens to sanitize to
	// the same candidate identifier; RenameAndDefine must not collide.
	e.taken["foo"] = true // already true via first, but exercise re-entrancy safety
	second := e.RenameAndDefine(ValueScope, ir.Name{Text: "foo"}, ir.Span{}, func(target string) Entry {
		return NewVarEntry(n2, target, false)
	})
	if second.TargetIdent() == first.TargetIdent() {
		t.Fatalf("expected distinct target identifiers, got %s twice", first.TargetIdent())
	}
}

func TestFreshIsInjective(t *testing.T) {
	e := newTestEnv(t)
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		id := e.Fresh(AnonArgPrefix)
		if seen[id] {
			t.Fatalf("Fresh produced a duplicate identifier %s", id)
		}
		seen[id] = true
	}
}

func TestScopePushPopShadowing(t *testing.T) {
	e := newTestEnv(t)
	outer := ir.Unqualified("x")
	e.values.define(outer.Key(), NewVarEntry(outer, "x_outer", false))

	e.PushValueScope()
	e.values.define(outer.Key(), NewVarEntry(outer, "x_inner", false))
	inner, _ := e.LookupValue(outer)
	if inner.TargetIdent() != "x_inner" {
		t.Fatalf("expected shadowed lookup, got %s", inner.TargetIdent())
	}
	e.PopValueScope()

	restored, _ := e.LookupValue(outer)
	if restored.TargetIdent() != "x_outer" {
		t.Fatalf("expected outer binding restored, got %s", restored.TargetIdent())
	}
}

func TestDefinedInCurrentDetectsDuplicates(t *testing.T) {
	e := newTestEnv(t)
	name := ir.Unqualified("dup")
	if e.DefinedInCurrentValue(name) {
		t.Fatalf("unexpected pre-existing binding")
	}
	e.values.define(name.Key(), NewVarEntry(name, "dup", false))
	if !e.DefinedInCurrentValue(name) {
		t.Fatalf("expected binding to be detected in current frame")
	}
}

func TestModuleCacheRoundTrip(t *testing.T) {
	e := newTestEnv(t)
	iface := NewModuleInterface("Data.List")
	fn := NewFuncEntry(ir.Unqualified("map"), "map_", 2, nil, nil, nil, false)
	iface.Export("map", fn)
	e.RegisterModule(iface)

	got, ok := e.LookupModule("Data.List")
	if !ok {
		t.Fatalf("expected module interface to be registered")
	}
	if got.Functions["map"].TargetIdent() != "map_" {
		t.Fatalf("unexpected export: %#v", got.Functions["map"])
	}
}
