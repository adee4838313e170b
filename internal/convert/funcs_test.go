package convert

import (
	"regexp"
	"strings"
	"testing"

	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
)

// id :: a -> a
// id x = x
func buildIdModule() *ir.Module {
	xIdent := ir.DeclIdent{Name: ir.Unqualified("x")}
	return &ir.Module{
		TypeSigs: []ir.TypeSig{{
			Ident:  ir.DeclIdent{Name: ir.Unqualified("id")},
			Schema: ir.TypeSchema{Vars: []string{"a"}, Body: ir.NewTypeFunc(ir.Span{}, ir.NewTypeVar(ir.Span{}, "a"), ir.NewTypeVar(ir.Span{}, "a"))},
		}},
		Funcs: []ir.FuncDecl{{
			Ident:     ir.DeclIdent{Name: ir.Unqualified("id")},
			TypeArgs:  []string{"a"},
			ValueArgs: []*ir.VarPat{ir.NewVarPat(ir.Span{}, xIdent)},
			Body:      ir.NewVar(ir.Span{}, ir.Unqualified("x")),
		}},
	}
}

func TestFuncsPlainIdentity(t *testing.T) {
	e := newTestEnv(t)
	mod := buildIdModule()

	sentences := Funcs(mod, e)
	if e.Reporter.Fatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", e.Reporter.Reports())
	}
	m := &gallina.Module{Name: "Main", Sentences: sentences}
	text := m.Render()

	if !strings.Contains(text, "Definition id (Shape : Type) (Pos : (Shape -> Type)) {a : Type} (x : (Free Shape Pos a))") {
		t.Fatalf("unexpected binder order/shape for id, got:\n%s", text)
	}
	if !strings.Contains(text, ":=\n    x.") {
		t.Fatalf("expected id's body to be the bare parameter x, got:\n%s", text)
	}
}

// length :: [a] -> Integer
// length xs = case xs of { [] -> 0 ; (x:xs') -> length xs' }
func buildLengthModule() *ir.Module {
	xsIdent := ir.DeclIdent{Name: ir.Unqualified("xs")}
	listA := ir.NewTypeApp(ir.Span{}, ir.NewTypeCon(ir.Span{}, ir.Unqualified("[]")), ir.NewTypeVar(ir.Span{}, "a"))
	schema := ir.TypeSchema{Vars: []string{"a"}, Body: ir.NewTypeFunc(ir.Span{}, listA, ir.NewTypeCon(ir.Span{}, ir.Unqualified("Integer")))}

	nilPat := ir.NewConPat(ir.Span{}, ir.Unqualified("[]"), nil)
	xPat := ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified("x")})
	xsTailPat := ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified("xs'")})
	consPat := ir.NewConPat(ir.Span{}, ir.Unqualified(":"), []*ir.VarPat{xPat, xsTailPat})

	recCall := ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("length")), ir.NewVar(ir.Span{}, ir.Unqualified("xs'")))
	body := ir.NewCase(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("xs")), []ir.Alt{
		{Pat: nilPat, Body: ir.NewIntLiteral(ir.Span{}, 0)},
		{Pat: consPat, Body: recCall},
	})

	return &ir.Module{
		TypeSigs: []ir.TypeSig{{Ident: ir.DeclIdent{Name: ir.Unqualified("length")}, Schema: schema}},
		Funcs: []ir.FuncDecl{{
			Ident:     ir.DeclIdent{Name: ir.Unqualified("length")},
			TypeArgs:  []string{"a"},
			ValueArgs: []*ir.VarPat{ir.NewVarPat(ir.Span{}, xsIdent)},
			Body:      body,
		}},
	}
}

func TestFuncsRecursiveLengthEmitsFixpointAndDriver(t *testing.T) {
	e := newTestEnv(t)
	mod := buildLengthModule()

	sentences := Funcs(mod, e)
	if e.Reporter.Fatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", e.Reporter.Reports())
	}
	m := &gallina.Module{Name: "Main", Sentences: sentences}
	text := m.Render()

	if !strings.Contains(text, "Fixpoint ") {
		t.Fatalf("expected a Fixpoint block for recursive length, got:\n%s", text)
	}
	if !strings.Contains(text, "{struct xs}") {
		t.Fatalf("expected the helper's decreasing argument xs to be the struct annotation, got:\n%s", text)
	}
	if !strings.Contains(text, "Definition length ") {
		t.Fatalf("expected a non-recursive driver Definition for length, got:\n%s", text)
	}
	if strings.Count(text, "Fixpoint ") != 1 {
		t.Fatalf("expected exactly one Fixpoint block, got:\n%s", text)
	}

	// The recursive call on xs' (sanitized to xs_, a Cons field and so
	// already Dagger-typed) must be bind-opened before it is passed into the
	// helper's bare-typed decreasing-argument position: `length xs'` becomes
	// `bind xs_ (fun d => helper Shape Pos d)`, not a direct call passing
	// xs_ straight through.
	recCall := regexp.MustCompile(`\(bind xs_ \(fun d => \(\(\w+ Shape Pos\) d\)\)\)`)
	if !recCall.MatchString(text) {
		t.Fatalf("expected the recursive call on xs_ to be bind-opened before the helper call, got:\n%s", text)
	}
	directPass := regexp.MustCompile(`\(\w+ Shape Pos\) xs_\)`)
	if directPass.MatchString(text) {
		t.Fatalf("recursive call passed xs_ directly into the helper without bind-opening it first, got:\n%s", text)
	}
}

// even/odd mutual recursion over a Peano-style Nat = Zero | Succ Nat, the
// shape this compiler's structural-descent checker actually recognizes:
// even Zero = True; even (Succ n') = odd n'
// odd Zero = False; odd (Succ n') = even n'
func buildEvenOddModule() *ir.Module {
	natSchema := ir.TypeSchema{Body: ir.NewTypeFunc(ir.Span{}, ir.NewTypeCon(ir.Span{}, ir.Unqualified("Nat")), ir.NewTypeCon(ir.Span{}, ir.Unqualified("Bool")))}

	mkBody := func(zeroResult string, otherCall string) ir.Expr {
		zeroPat := ir.NewConPat(ir.Span{}, ir.Unqualified("Zero"), nil)
		succPat := ir.NewConPat(ir.Span{}, ir.Unqualified("Succ"), []*ir.VarPat{
			ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified("n'")}),
		})
		return ir.NewCase(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified("n")), []ir.Alt{
			{Pat: zeroPat, Body: ir.NewVar(ir.Span{}, ir.Unqualified(zeroResult))},
			{Pat: succPat, Body: ir.NewApp(ir.Span{}, ir.NewVar(ir.Span{}, ir.Unqualified(otherCall)), ir.NewVar(ir.Span{}, ir.Unqualified("n'")))},
		})
	}

	evenBody := mkBody("True", "odd")
	oddBody := mkBody("False", "even")

	return &ir.Module{
		TypeSigs: []ir.TypeSig{
			{Ident: ir.DeclIdent{Name: ir.Unqualified("even")}, Schema: natSchema},
			{Ident: ir.DeclIdent{Name: ir.Unqualified("odd")}, Schema: natSchema},
		},
		Funcs: []ir.FuncDecl{
			{Ident: ir.DeclIdent{Name: ir.Unqualified("even")}, ValueArgs: []*ir.VarPat{ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified("n")})}, Body: evenBody},
			{Ident: ir.DeclIdent{Name: ir.Unqualified("odd")}, ValueArgs: []*ir.VarPat{ir.NewVarPat(ir.Span{}, ir.DeclIdent{Name: ir.Unqualified("n")})}, Body: oddBody},
		},
	}
}

func TestFuncsMutualRecursionSharesOneFixpointBlock(t *testing.T) {
	e := newTestEnv(t)
	mod := buildEvenOddModule()

	sentences := Funcs(mod, e)
	if e.Reporter.Fatal() {
		t.Fatalf("unexpected fatal diagnostics: %v", e.Reporter.Reports())
	}
	m := &gallina.Module{Name: "Main", Sentences: sentences}
	text := m.Render()

	if strings.Count(text, "Fixpoint ") != 1 {
		t.Fatalf("expected even/odd to share a single Fixpoint block, got:\n%s", text)
	}
	if !strings.Contains(text, "with ") {
		t.Fatalf("expected a `with` join between even's and odd's helpers, got:\n%s", text)
	}
	if !strings.Contains(text, "Definition even ") || !strings.Contains(text, "Definition odd ") {
		t.Fatalf("expected driver Definitions for both even and odd, got:\n%s", text)
	}

	// Every call into a recursive helper here is bind-opened: each member's
	// own driver calling into its first helper, plus each member's Succ arm
	// calling the other member's helper. Bound-variable and continuation
	// names collide and get distinct disambiguating suffixes per member
	// (this compiler's global, never-released taken-identifier pool), so
	// match the shape generically rather than any one fixed name.
	helperCall := regexp.MustCompile(`\(bind \w+ \(fun \w+ => \(\(\w+ Shape Pos\) \w+\)\)\)`)
	if got := len(helperCall.FindAllString(text, -1)); got != 4 {
		t.Fatalf("expected 4 bind-opened helper calls (2 drivers + 2 cross-calls), got %d in:\n%s", got, text)
	}
	// Every occurrence of a helper being applied to its decreasing argument
	// must be inside one of the 4 bind-opened calls above; a direct,
	// un-opened application would add a 5th "helper(_2)? Shape Pos) <ident>"
	// occurrence without a matching bind.
	applied := regexp.MustCompile(`\w+ Shape Pos\) \w+\)`)
	if got := len(applied.FindAllString(text, -1)); got != 4 {
		t.Fatalf("expected exactly 4 applied helper calls, all bind-opened, got %d in:\n%s", got, text)
	}
}
