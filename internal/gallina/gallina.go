// Package gallina is the target-language AST: Gallina terms and top-level
// sentences, plus a pretty-printer that renders a Module to Coq source
// text. It knows nothing about the source language; internal/convert and
// internal/lift build these values from an already-lifted IR.
package gallina

import (
	"fmt"
	"strings"
)

// Term is a Gallina expression.
type Term interface {
	isTerm()
	write(b *buffer)
}

type baseTerm struct{}

func (baseTerm) isTerm() {}

// Ident is a bare identifier reference.
type Ident struct {
	baseTerm
	Name string
}

func NewIdent(name string) *Ident { return &Ident{Name: name} }

func (t *Ident) write(b *buffer) { b.WriteString(t.Name) }

// Num is an integer numeral literal.
type Num struct {
	baseTerm
	Value int64
}

func NewNum(v int64) *Num { return &Num{Value: v} }

func (t *Num) write(b *buffer) { fmt.Fprintf(b, "%d", t.Value) }

// Str is a string literal (used for `error` messages).
type Str struct {
	baseTerm
	Value string
}

func NewStr(v string) *Str { return &Str{Value: v} }

func (t *Str) write(b *buffer) { fmt.Fprintf(b, "%q", t.Value) }

// App is a curried function application `f a1 a2 … an`.
type App struct {
	baseTerm
	Fun  Term
	Args []Term
}

func NewApp(fun Term, args ...Term) *App { return &App{Fun: fun, Args: args} }

func (t *App) write(b *buffer) {
	b.WriteString("(")
	t.Fun.write(b)
	for _, a := range t.Args {
		b.WriteString(" ")
		a.write(b)
	}
	b.WriteString(")")
}

// Arrow is a non-dependent function type `t1 -> t2`.
type Arrow struct {
	baseTerm
	From, To Term
}

func NewArrow(from, to Term) *Arrow { return &Arrow{From: from, To: to} }

func (t *Arrow) write(b *buffer) {
	b.WriteString("(")
	t.From.write(b)
	b.WriteString(" -> ")
	t.To.write(b)
	b.WriteString(")")
}

// Fun is a lambda abstraction `fun x1 … xn => body`.
type Fun struct {
	baseTerm
	Names []string
	Body  Term
}

func NewFun(names []string, body Term) *Fun { return &Fun{Names: names, Body: body} }

func (t *Fun) write(b *buffer) {
	b.WriteString("(fun ")
	b.WriteString(strings.Join(t.Names, " "))
	b.WriteString(" => ")
	t.Body.write(b)
	b.WriteString(")")
}

// MatchArm is one `| pattern => body` clause.
type MatchArm struct {
	Con  string
	Vars []string
	Body Term
}

// Match is `match scrutinee with arms end`.
type Match struct {
	baseTerm
	Scrutinee Term
	Arms      []MatchArm
}

func NewMatch(scrutinee Term, arms []MatchArm) *Match {
	return &Match{Scrutinee: scrutinee, Arms: arms}
}

func (t *Match) write(b *buffer) {
	b.WriteString("(match ")
	t.Scrutinee.write(b)
	b.WriteString(" with")
	for _, a := range t.Arms {
		b.WriteString(" | ")
		b.WriteString(a.Con)
		for _, v := range a.Vars {
			b.WriteString(" ")
			b.WriteString(v)
		}
		b.WriteString(" => ")
		a.Body.write(b)
	}
	b.WriteString(" end)")
}

// Raw is an escape hatch for fixed predefined-library terms (`pure`, `bind`,
// the Partial instance methods) that do not need further structure.
type Raw struct {
	baseTerm
	Text string
}

func NewRaw(text string) *Raw { return &Raw{Text: text} }

func (t *Raw) write(b *buffer) { b.WriteString(t.Text) }

// Pure wraps a term in the Base library's `pure`.
func Pure(t Term) Term { return NewApp(NewRaw("pure"), t) }

// Bind applies the Base library's `bind`.
func Bind(m Term, k Term) Term { return NewApp(NewRaw("bind"), m, k) }

// Binder is one parameter group of a Definition/Fixpoint/Inductive, e.g.
// `(x y : T)` or, when Implicit, `{a : Type}`.
type Binder struct {
	Names    []string
	Type     Term
	Implicit bool
}

func (bd Binder) write(b *buffer) {
	open, close := "(", ")"
	if bd.Implicit {
		open, close = "{", "}"
	}
	b.WriteString(open)
	b.WriteString(strings.Join(bd.Names, " "))
	if bd.Type != nil {
		b.WriteString(" : ")
		bd.Type.write(b)
	}
	b.WriteString(close)
}

func writeBinders(b *buffer, binders []Binder) {
	for _, bd := range binders {
		b.WriteString(" ")
		bd.write(b)
	}
}
