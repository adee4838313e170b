package parser

import (
	"testing"

	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/ir"
)

func parseOK(t *testing.T, src string) *ir.Module {
	t.Helper()
	rep := diagnostics.New()
	mod := Parse(src, "test.hs", rep)
	if rep.Fatal() {
		t.Fatalf("unexpected parse errors: %v", rep.Reports())
	}
	return mod
}

func TestParseIdentity(t *testing.T) {
	mod := parseOK(t, `module Main where {
  id :: a -> a;
  id x = x;
}`)
	if len(mod.Funcs) != 1 || mod.Funcs[0].Ident.Name.Text != "id" {
		t.Fatalf("expected one function id, got %+v", mod.Funcs)
	}
	if len(mod.Funcs[0].ValueArgs) != 1 || mod.Funcs[0].ValueArgs[0].Ident.Name.Text != "x" {
		t.Fatalf("expected one value arg x, got %+v", mod.Funcs[0].ValueArgs)
	}
	if _, ok := mod.Funcs[0].Body.(*ir.Var); !ok {
		t.Fatalf("expected body to be a bare Var, got %T", mod.Funcs[0].Body)
	}
	if len(mod.Funcs[0].TypeArgs) != 1 || mod.Funcs[0].TypeArgs[0] != "a" {
		t.Fatalf("expected TypeArgs [a] backfilled from the signature, got %v", mod.Funcs[0].TypeArgs)
	}
}

func TestParseRecursiveLength(t *testing.T) {
	mod := parseOK(t, `module Main where {
  length :: [a] -> Integer;
  length xs = case xs of { [] -> 0; (x:xs') -> 1 + length xs' };
}`)
	if len(mod.Funcs) != 1 {
		t.Fatalf("expected one function, got %d", len(mod.Funcs))
	}
	body, ok := mod.Funcs[0].Body.(*ir.Case)
	if !ok {
		t.Fatalf("expected a Case body, got %T", mod.Funcs[0].Body)
	}
	if len(body.Alts) != 2 {
		t.Fatalf("expected 2 alternatives, got %d", len(body.Alts))
	}
	if body.Alts[0].Pat.Con.Text != "[]" || len(body.Alts[0].Pat.Fields) != 0 {
		t.Fatalf("expected nil-pattern first alt, got %+v", body.Alts[0].Pat)
	}
	if body.Alts[1].Pat.Con.Text != ":" || len(body.Alts[1].Pat.Fields) != 2 {
		t.Fatalf("expected cons-pattern second alt with 2 fields, got %+v", body.Alts[1].Pat)
	}

	rhs, ok := body.Alts[1].Body.(*ir.App)
	if !ok {
		t.Fatalf("expected the cons alt's body to be an application, got %T", body.Alts[1].Body)
	}
	plusFn, ok := rhs.Fun.(*ir.App)
	if !ok {
		t.Fatalf("expected a curried (+ 1 (length xs')), got %T", rhs.Fun)
	}
	head, ok := plusFn.Fun.(*ir.Var)
	if !ok || head.Name.Text != "+" {
		t.Fatalf("expected the infix + to desugar to a Var(\"+\") head, got %+v", plusFn.Fun)
	}
}

func TestParseDataDeclWithRecursiveFields(t *testing.T) {
	mod := parseOK(t, `module Main where {
  data Tree a = Leaf | Node a (Tree a) (Tree a);
}`)
	if len(mod.TypeDecls) != 1 {
		t.Fatalf("expected one type decl, got %d", len(mod.TypeDecls))
	}
	dd, ok := mod.TypeDecls[0].(*ir.DataDecl)
	if !ok {
		t.Fatalf("expected a DataDecl, got %T", mod.TypeDecls[0])
	}
	if len(dd.Cons) != 2 || dd.Cons[1].Ident.Name.Text != "Node" || len(dd.Cons[1].Fields) != 3 {
		t.Fatalf("expected Node with 3 fields, got %+v", dd.Cons)
	}
}

func TestParseListAndPairLiteralSugar(t *testing.T) {
	mod := parseOK(t, `module Main where {
  pairOfList :: (Integer, [Integer]);
  pairOfList = (1, [2, 3]);
}`)
	app, ok := mod.Funcs[0].Body.(*ir.App)
	if !ok {
		t.Fatalf("expected a pair application, got %T", mod.Funcs[0].Body)
	}
	inner, ok := app.Fun.(*ir.App)
	if !ok {
		t.Fatalf("expected curried pair constructor, got %T", app.Fun)
	}
	if con, ok := inner.Fun.(*ir.Con); !ok || con.Name.Text != "(,)" {
		t.Fatalf("expected a (,) constructor head, got %+v", inner.Fun)
	}
}

func TestParseIfLambdaAndPartialPrimitives(t *testing.T) {
	mod := parseOK(t, `module Main where {
  choose :: Bool -> Integer;
  choose b = if b then 1 else undefined;
  apply :: (a -> a) -> a -> a;
  apply f x = f x;
  bad :: Integer;
  bad = error 0;
}`)
	ifExpr, ok := mod.Funcs[0].Body.(*ir.If)
	if !ok {
		t.Fatalf("expected an If, got %T", mod.Funcs[0].Body)
	}
	if _, ok := ifExpr.Else.(*ir.Undefined); !ok {
		t.Fatalf("expected undefined in the else branch, got %T", ifExpr.Else)
	}
	if len(mod.Funcs[1].ValueArgs) != 2 {
		t.Fatalf("expected apply to take 2 args, got %d", len(mod.Funcs[1].ValueArgs))
	}
	if _, ok := mod.Funcs[2].Body.(*ir.ErrorExpr); !ok {
		t.Fatalf("expected bad's body to be an ErrorExpr, got %T", mod.Funcs[2].Body)
	}
}
