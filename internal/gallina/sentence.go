package gallina

import "fmt"

// Sentence is one top-level Gallina declaration.
type Sentence interface {
	write(b *buffer)
}

// Comment is a `(* ... *)` sentence. internal/convert does not emit any.
type Comment struct{ Text string }

func (s *Comment) write(b *buffer) {
	b.newline()
	fmt.Fprintf(b, "(* %s *)", s.Text)
}

// RequireImport is the preamble's `Require Import Name1 Name2.` sentence.
type RequireImport struct{ Names []string }

func (s *RequireImport) write(b *buffer) {
	b.newline()
	b.WriteString("Require Import")
	for _, n := range s.Names {
		b.WriteString(" ")
		b.WriteString(n)
	}
	b.WriteString(".")
}

// InductiveCon is one constructor of an Inductive sentence. Self is the
// fully-applied type this constructor returns (e.g. `List Shape Pos a`),
// appended as the final arrow target after Fields.
type InductiveCon struct {
	Name   string
	Fields []Term // field types, already lifted
	Self   Term
}

// InductiveBody is one mutually-recursive member of an Inductive block.
type InductiveBody struct {
	Name         string
	Binders      []Binder
	ResultType   Term // always `Type` for this compiler's first-order data
	Constructors []InductiveCon
}

// Inductive emits one or more mutually-recursive datatypes in a single
// `Inductive … with … .` block.
type Inductive struct{ Bodies []InductiveBody }

func (s *Inductive) write(b *buffer) {
	b.newline()
	for i, body := range s.Bodies {
		if i == 0 {
			b.WriteString("Inductive ")
		} else {
			b.newline()
			b.WriteString("with ")
		}
		b.WriteString(body.Name)
		writeBinders(b, body.Binders)
		b.WriteString(" : ")
		body.ResultType.write(b)
		b.WriteString(" :=")
		b.in()
		for _, c := range body.Constructors {
			b.newline()
			b.WriteString("| ")
			b.WriteString(c.Name)
			b.WriteString(" : ")
			for _, f := range c.Fields {
				f.write(b)
				b.WriteString(" -> ")
			}
			c.Self.write(b)
		}
		b.out()
	}
	b.WriteString(".")
}

// Definition is a non-recursive `Definition`.
type Definition struct {
	Name       string
	Binders    []Binder
	ReturnType Term
	Body       Term
}

func (s *Definition) write(b *buffer) {
	b.newline()
	b.WriteString("Definition ")
	b.WriteString(s.Name)
	writeBinders(b, s.Binders)
	if s.ReturnType != nil {
		b.WriteString(" : ")
		s.ReturnType.write(b)
	}
	b.WriteString(" :=")
	b.in()
	b.newline()
	s.Body.write(b)
	b.WriteString(".")
	b.out()
}

// FixBody is one member of a mutually-recursive Fixpoint block.
type FixBody struct {
	Name       string
	Binders    []Binder
	Struct     string // the decreasing binder's name, for `{struct x}`
	ReturnType Term
	Body       Term
}

// Fixpoint emits one or more mutually-recursive functions in a single
// `Fixpoint … with … .` block.
type Fixpoint struct{ Bodies []FixBody }

func (s *Fixpoint) write(b *buffer) {
	b.newline()
	for i, body := range s.Bodies {
		if i == 0 {
			b.WriteString("Fixpoint ")
		} else {
			b.newline()
			b.WriteString("with ")
		}
		b.WriteString(body.Name)
		writeBinders(b, body.Binders)
		fmt.Fprintf(b, " {struct %s}", body.Struct)
		if body.ReturnType != nil {
			b.WriteString(" : ")
			body.ReturnType.write(b)
		}
		b.WriteString(" :=")
		b.in()
		b.newline()
		body.Body.write(b)
		b.out()
	}
	b.WriteString(".")
}

// Arguments fixes a declaration's implicit-argument profile, e.g.
// `Arguments Cons {Shape Pos a}.`.
type Arguments struct {
	Name  string
	Specs []string // names to mark implicit; order matches declaration
}

func (s *Arguments) write(b *buffer) {
	b.newline()
	fmt.Fprintf(b, "Arguments %s {%s}.", s.Name, join(s.Specs))
}

func join(ss []string) string {
	out := ""
	for i, s := range ss {
		if i > 0 {
			out += " "
		}
		out += s
	}
	return out
}

// Section and Context bracket a group of sentences that share implicit
// parameters, used to thread `Shape`/`Pos` once per module instead of on
// every individual sentence when `internal/convert` chooses to.
type Section struct{ Name string }

func (s *Section) write(b *buffer) {
	b.newline()
	fmt.Fprintf(b, "Section %s.", s.Name)
}

type EndSection struct{ Name string }

func (s *EndSection) write(b *buffer) {
	b.newline()
	fmt.Fprintf(b, "End %s.", s.Name)
}

type Context struct{ Binders []Binder }

func (s *Context) write(b *buffer) {
	b.newline()
	b.WriteString("Context")
	writeBinders(b, s.Binders)
	b.WriteString(".")
}

// Module is the outermost `Module Name. … End Name.` wrapper for one
// compiled source module (or `Main` if the source module was anonymous).
type Module struct {
	Name      string
	Sentences []Sentence
}

// Render renders the module to Gallina source text.
func (m *Module) Render() string {
	var b buffer
	b.WriteString("Module ")
	b.WriteString(m.Name)
	b.WriteString(".")
	b.in()
	for _, s := range m.Sentences {
		s.write(&b)
	}
	b.out()
	b.newline()
	b.WriteString("End ")
	b.WriteString(m.Name)
	b.WriteString(".")
	b.newline()
	return b.String()
}
