package convert

import (
	"strings"
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

// data Tree a = Leaf | Node a (Tree a) (Tree a)
func buildTreeDecl() *ir.DataDecl {
	aArg := ir.DeclIdent{Name: ir.Unqualified("a")}
	treeName := ir.DeclIdent{Name: ir.Unqualified("Tree")}
	selfRef := ir.NewTypeApp(ir.Span{}, ir.NewTypeCon(ir.Span{}, ir.Unqualified("Tree")), ir.NewTypeVar(ir.Span{}, "a"))
	return &ir.DataDecl{
		Ident: treeName,
		Args:  []ir.DeclIdent{aArg},
		Cons: []ir.ConDecl{
			{Ident: ir.DeclIdent{Name: ir.Unqualified("Leaf")}, Fields: nil},
			{Ident: ir.DeclIdent{Name: ir.Unqualified("Node")}, Fields: []ir.Type{
				ir.NewTypeVar(ir.Span{}, "a"), selfRef, selfRef,
			}},
		},
	}
}

func TestTypesEmitsInductiveWithSmartConstructors(t *testing.T) {
	e := newTestEnv(t)
	mod := &ir.Module{TypeDecls: []ir.TypeDecl{buildTreeDecl()}}

	sentences := Types(mod, e)
	if e.Reporter.Fatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", e.Reporter.Reports())
	}

	m := &gallina.Module{Name: "Main", Sentences: sentences}
	text := m.Render()

	if !strings.Contains(text, "Inductive Tree") {
		t.Fatalf("expected an Inductive Tree block, got:\n%s", text)
	}
	if !strings.Contains(text, "(Shape : Type) (Pos : (Shape -> Type)) (a : Type)") {
		t.Fatalf("expected Shape/Pos/a binders in declaration order, got:\n%s", text)
	}
	if !strings.Contains(text, "Arguments Leaf {Shape Pos a}.") {
		t.Fatalf("expected an Arguments sentence for Leaf, got:\n%s", text)
	}
	if !strings.Contains(text, "Definition pure_Node") {
		t.Fatalf("expected a smart constructor for Node, got:\n%s", text)
	}
}

// type Forest a = [a], a synonym converted beside the Tree data declaration,
// confirming the synonym still gets its own Definition even though lift.Star
// expands synonyms at every use site.
func TestTypesKeepsSynonymDefinition(t *testing.T) {
	e := newTestEnv(t)
	treeDecl := buildTreeDecl()
	forestDecl := &ir.TypeSynDecl{
		Ident: ir.DeclIdent{Name: ir.Unqualified("Forest")},
		Args:  []ir.DeclIdent{{Name: ir.Unqualified("a")}},
		Body:  ir.NewTypeApp(ir.Span{}, ir.NewTypeCon(ir.Span{}, ir.Unqualified("[]")), ir.NewTypeVar(ir.Span{}, "a")),
	}
	mod := &ir.Module{TypeDecls: []ir.TypeDecl{treeDecl, forestDecl}}

	sentences := Types(mod, e)
	if e.Reporter.Fatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", e.Reporter.Reports())
	}
	m := &gallina.Module{Name: "Main", Sentences: sentences}
	text := m.Render()

	if !strings.Contains(text, "Definition Forest") {
		t.Fatalf("expected a Forest Definition kept for documentation parity, got:\n%s", text)
	}
}
