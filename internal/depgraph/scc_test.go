package depgraph

import (
	"reflect"
	"testing"

	"github.com/freecoq/fcc/internal/ir"
)

func vp(name string) *ir.VarPat {
	return ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified(name)})
}

func decl(name string, line int, args []string, body ir.Expr) ir.FuncDecl {
	var argPats []*ir.VarPat
	for _, a := range args {
		argPats = append(argPats, vp(a))
	}
	return ir.FuncDecl{
		Ident:     ir.DeclIdent{Name: ir.Unqualified(name), Span: ir.Span{Start: ir.Pos{Line: line}}},
		ValueArgs: argPats,
		Body:      body,
	}
}

func TestSCCsNonRecursiveSingleton(t *testing.T) {
	// const x y = x  (no self reference)
	body := ir.NewVar(ir.Span{}, ir.Unqualified("x"))
	funcs := []ir.FuncDecl{decl("const", 1, []string{"x", "y"}, body)}
	g := BuildValueGraph(funcs)
	sccs := g.SCCs()
	if len(sccs) != 1 || sccs[0].Recursive {
		t.Fatalf("expected one non-recursive SCC, got %+v", sccs)
	}
}

func TestSCCsSelfRecursiveSingleton(t *testing.T) {
	// loop x = loop x
	call := ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("loop")), ir.NewVar(ir.Span{}, ir.Unqualified("x")))
	funcs := []ir.FuncDecl{decl("loop", 1, []string{"x"}, call)}
	g := BuildValueGraph(funcs)
	sccs := g.SCCs()
	if len(sccs) != 1 || !sccs[0].Recursive {
		t.Fatalf("expected one recursive SCC, got %+v", sccs)
	}
}

func TestSCCsMutualRecursionEvenOdd(t *testing.T) {
	evenBody := ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("odd")), ir.NewVar(ir.Span{}, ir.Unqualified("n")))
	oddBody := ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("even")), ir.NewVar(ir.Span{}, ir.Unqualified("n")))
	funcs := []ir.FuncDecl{
		decl("even", 1, []string{"n"}, evenBody),
		decl("odd", 2, []string{"n"}, oddBody),
	}
	g := BuildValueGraph(funcs)
	sccs := g.SCCs()
	if len(sccs) != 1 || !sccs[0].Recursive || len(sccs[0].Members) != 2 {
		t.Fatalf("expected one recursive 2-member SCC, got %+v", sccs)
	}
	if !reflect.DeepEqual(sccs[0].Members, []string{"even", "odd"}) {
		t.Fatalf("expected source-order members, got %v", sccs[0].Members)
	}
}

func TestSCCsOrderingDependenciesFirst(t *testing.T) {
	// f depends on g; g is independent.
	fBody := ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("g")), ir.NewVar(ir.Span{}, ir.Unqualified("x")))
	gBody := ir.NewVar(ir.Span{}, ir.Unqualified("x"))
	funcs := []ir.FuncDecl{
		decl("f", 1, []string{"x"}, fBody),
		decl("g", 2, []string{"x"}, gBody),
	}
	g := BuildValueGraph(funcs)
	sccs := g.SCCs()
	if len(sccs) != 2 {
		t.Fatalf("expected 2 SCCs, got %+v", sccs)
	}
	if sccs[0].Members[0] != "g" || sccs[1].Members[0] != "f" {
		t.Fatalf("expected g before f (dependency-first order), got %+v", sccs)
	}
}

func TestRejectSynonymCyclesDetectsCycle(t *testing.T) {
	// type A = B ; type B = A
	a := &ir.TypeSynDecl{
		Ident: ir.DeclIdent{Name: ir.Unqualified("A")},
		Body:  ir.NewTypeCon(ir.Span{}, ir.Unqualified("B")),
	}
	b := &ir.TypeSynDecl{
		Ident: ir.DeclIdent{Name: ir.Unqualified("B")},
		Body:  ir.NewTypeCon(ir.Span{}, ir.Unqualified("A")),
	}
	decls := []ir.TypeDecl{a, b}
	g := BuildTypeGraph(decls)
	sccs := g.SCCs()
	cycle := RejectSynonymCycles(decls, sccs)
	if cycle == nil {
		t.Fatalf("expected a rejected synonym cycle")
	}
}

func TestRejectSynonymCyclesAllowsRecursiveData(t *testing.T) {
	// data Tree a = Leaf | Branch (Tree a) -- allowed, not a synonym cycle
	tree := &ir.DataDecl{
		Ident: ir.DeclIdent{Name: ir.Unqualified("Tree")},
		Cons: []ir.ConDecl{
			{Ident: ir.DeclIdent{Name: ir.Unqualified("Branch")}, Fields: []ir.Type{
				ir.NewTypeCon(ir.Span{}, ir.Unqualified("Tree")),
			}},
		},
	}
	decls := []ir.TypeDecl{tree}
	g := BuildTypeGraph(decls)
	sccs := g.SCCs()
	if cycle := RejectSynonymCycles(decls, sccs); cycle != nil {
		t.Fatalf("recursive data declarations must not be rejected, got %v", cycle)
	}
}
