// Package ir defines the intermediate representation consumed by the rest
// of the compiler: modules, declarations, expressions, types, and patterns,
// with source positions attached to every node.
package ir

import "fmt"

// Pos is a position in a source file.
type Pos struct {
	File   string
	Line   int
	Column int
}

func (p Pos) String() string {
	return fmt.Sprintf("%s:%d:%d", p.File, p.Line, p.Column)
}

// Span is a range in a source file.
type Span struct {
	Start Pos
	End   Pos
}

// Name is a possibly-qualified identifier or symbol. Qualified and
// unqualified forms refer to the same logical name for lookup purposes;
// Module is empty for an unqualified reference.
type Name struct {
	Module string // defining module, empty if not yet resolved
	Text   string // identifier or symbol text
	Symbol bool   // true if Text is a punctuation sequence rather than [A-Za-z_]...
}

// Unqualified returns a Name with no module qualifier.
func Unqualified(text string) Name {
	return Name{Text: text}
}

// Qualified returns a Name qualified by the given defining module.
func Qualified(module, text string) Name {
	return Name{Module: module, Text: text}
}

// String renders the name the way diagnostics quote it.
func (n Name) String() string {
	if n.Module == "" {
		return n.Text
	}
	return n.Module + "." + n.Text
}

// Key is the lookup key used by scopes: qualified and unqualified forms of
// the same logical name must map to the same Key.
func (n Name) Key() string {
	return n.Text
}

// DeclIdent is a binding occurrence of a name with its defining span.
type DeclIdent struct {
	Name Name
	Span Span
}

// Type is the sum type of first-order (kind *) types.
type Type interface {
	isType()
	Span() Span
}

type baseType struct{ span Span }

func (baseType) isType()     {}
func (b baseType) Span() Span { return b.span }

// TypeVar is a reference to a bound type variable.
type TypeVar struct {
	baseType
	Ident string
}

// TypeCon is a reference to a type constructor or type synonym by name.
type TypeCon struct {
	baseType
	Con Name
}

// TypeApp applies one type to another, e.g. `TypeCon "List" \`TypeApp\` TypeVar "a"`.
type TypeApp struct {
	baseType
	Fun Type
	Arg Type
}

// TypeFunc is a function type `T1 -> T2`.
type TypeFunc struct {
	baseType
	From Type
	To   Type
}

// NewTypeVar constructs a TypeVar at the given span.
func NewTypeVar(span Span, ident string) *TypeVar { return &TypeVar{baseType{span}, ident} }

// NewTypeCon constructs a TypeCon at the given span.
func NewTypeCon(span Span, con Name) *TypeCon { return &TypeCon{baseType{span}, con} }

// NewTypeApp constructs a TypeApp at the given span.
func NewTypeApp(span Span, fun, arg Type) *TypeApp { return &TypeApp{baseType{span}, fun, arg} }

// NewTypeFunc constructs a TypeFunc at the given span.
func NewTypeFunc(span Span, from, to Type) *TypeFunc { return &TypeFunc{baseType{span}, from, to} }

// AppliedArgs flattens a spine of TypeApp nodes rooted at a TypeCon, e.g.
// `(T a) b` -> (T, [a, b]). Returns ok=false if the head is not a TypeCon.
func AppliedArgs(t Type) (head Name, args []Type, ok bool) {
	var collect func(Type) []Type
	var tail Type = t
	var stack []Type
	for {
		app, isApp := tail.(*TypeApp)
		if !isApp {
			break
		}
		stack = append(stack, app.Arg)
		tail = app.Fun
	}
	con, isCon := tail.(*TypeCon)
	if !isCon {
		return Name{}, nil, false
	}
	collect = func(Type) []Type {
		out := make([]Type, len(stack))
		for i, a := range stack {
			out[len(stack)-1-i] = a
		}
		return out
	}
	return con.Con, collect(t), true
}

// TypeSchema is a prenex-quantified type: a list of bound type-variable
// identifiers plus a body.
type TypeSchema struct {
	Vars []string
	Body Type
}

// Pattern is the sum type of one-level-deep case patterns.
type Pattern interface {
	isPattern()
	Span() Span
}

type basePattern struct{ span Span }

func (basePattern) isPattern()     {}
func (b basePattern) Span() Span   { return b.span }

// VarPat binds a scrutinee (or sub-component) to a fresh variable.
type VarPat struct {
	basePattern
	Ident DeclIdent
}

// ConPat matches a constructor applied to a flat list of VarPats.
type ConPat struct {
	basePattern
	Con    Name
	Fields []*VarPat
}

// NewVarPat constructs a VarPat.
func NewVarPat(span Span, ident DeclIdent) *VarPat { return &VarPat{basePattern{span}, ident} }

// NewConPat constructs a ConPat.
func NewConPat(span Span, con Name, fields []*VarPat) *ConPat {
	return &ConPat{basePattern{span}, con, fields}
}

// Alt is one `case` alternative: a constructor pattern, its field binders,
// and the right-hand-side expression.
type Alt struct {
	Pat  *ConPat
	Body Expr
}

// Expr is the sum type of expressions.
type Expr interface {
	isExpr()
	Span() Span
}

type baseExpr struct{ span Span }

func (baseExpr) isExpr()      {}
func (b baseExpr) Span() Span { return b.span }

// Var is a reference to a function, data constructor, or bound variable.
type Var struct {
	baseExpr
	Name Name
}

// Con is a reference to a data constructor used as a value.
type Con struct {
	baseExpr
	Name Name
}

// App is function application `e1 e2`.
type App struct {
	baseExpr
	Fun Expr
	Arg Expr
}

// If is a conditional expression.
type If struct {
	baseExpr
	Cond Expr
	Then Expr
	Else Expr
}

// Case is pattern-match dispatch over one-level-deep alternatives.
type Case struct {
	baseExpr
	Scrutinee Expr
	Alts      []Alt
}

// Lambda is `\argPats -> body`; argPats are restricted to VarPat, since this
// compiler's accepted source subset has no nested patterns in lambda
// binders.
type Lambda struct {
	baseExpr
	Args []*VarPat
	Body Expr
}

// IntLiteral is an integer literal.
type IntLiteral struct {
	baseExpr
	Value int64
}

// Undefined is the predefined partial value `undefined`.
type Undefined struct {
	baseExpr
}

// ErrorExpr is `error msg`.
type ErrorExpr struct {
	baseExpr
	Message Expr
}

func NewVar(span Span, name Name) *Var { return &Var{baseExpr{span}, name} }
func NewCon(span Span, name Name) *Con { return &Con{baseExpr{span}, name} }
func NewApp(span Span, fun, arg Expr) *App { return &App{baseExpr{span}, fun, arg} }
func NewIf(span Span, c, t, e Expr) *If    { return &If{baseExpr{span}, c, t, e} }
func NewCase(span Span, scrut Expr, alts []Alt) *Case {
	return &Case{baseExpr{span}, scrut, alts}
}
func NewLambda(span Span, args []*VarPat, body Expr) *Lambda {
	return &Lambda{baseExpr{span}, args, body}
}
func NewIntLiteral(span Span, v int64) *IntLiteral { return &IntLiteral{baseExpr{span}, v} }
func NewUndefined(span Span) *Undefined            { return &Undefined{baseExpr{span}} }
func NewErrorExpr(span Span, msg Expr) *ErrorExpr  { return &ErrorExpr{baseExpr{span}, msg} }

// ConDecl is a single data-constructor declaration: name plus field types.
type ConDecl struct {
	Ident  DeclIdent
	Fields []Type
}

// TypeDecl is the sum type of type declarations.
type TypeDecl interface {
	isTypeDecl()
	TypeName() DeclIdent
	TypeArgs() []DeclIdent
}

// DataDecl declares an algebraic data type.
type DataDecl struct {
	Ident DeclIdent
	Args  []DeclIdent
	Cons  []ConDecl
}

func (*DataDecl) isTypeDecl()            {}
func (d *DataDecl) TypeName() DeclIdent   { return d.Ident }
func (d *DataDecl) TypeArgs() []DeclIdent { return d.Args }

// TypeSynDecl declares a type synonym.
type TypeSynDecl struct {
	Ident DeclIdent
	Args  []DeclIdent
	Body  Type
}

func (*TypeSynDecl) isTypeDecl()            {}
func (d *TypeSynDecl) TypeName() DeclIdent   { return d.Ident }
func (d *TypeSynDecl) TypeArgs() []DeclIdent { return d.Args }

// TypeSig maps a function name to its declared TypeSchema.
type TypeSig struct {
	Ident  DeclIdent
	Schema TypeSchema
}

// FuncDecl is a top-level function binding.
type FuncDecl struct {
	Ident      DeclIdent
	TypeArgs   []string // from its TypeSig, in schema order
	ValueArgs  []*VarPat
	Body       Expr
	ReturnType Type // not set by the parser or any later pass; convert takes the return type from the TypeSig
}

// Import is a reference to another module's exported interface.
type Import struct {
	Module string
	Span   Span
}

// Module is the top-level unit of compilation.
type Module struct {
	Name      string
	Imports   []Import
	TypeDecls []TypeDecl
	TypeSigs  []TypeSig
	Funcs     []FuncDecl
}

// FuncSig returns the TypeSig for a function name, if declared.
func (m *Module) FuncSig(name string) (TypeSchema, bool) {
	for _, s := range m.TypeSigs {
		if s.Ident.Name.Text == name {
			return s.Schema, true
		}
	}
	return TypeSchema{}, false
}
