// Package parser builds an internal/ir.Module directly from source text,
// for the restricted Haskell-98 subset internal/lexer tokenizes: no
// separate pre-resolution AST stage, since the accepted subset is narrow
// enough that a single recursive-descent pass can produce the
// renamer-ready tree directly.
package parser

import (
	"strconv"

	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/ir"
	"github.com/freecoq/fcc/internal/lexer"
)

// Parser consumes a token stream and builds an ir.Module, recording fatal
// diagnostics on Reporter as it goes rather than panicking; callers must
// check Reporter.Fatal() before trusting the returned Module.
type Parser struct {
	l        *lexer.Lexer
	cur      lexer.Token
	peek     lexer.Token
	Reporter *diagnostics.Reporter
	file     string
}

// New creates a Parser over src, tagging diagnostics with file.
func New(src, file string, reporter *diagnostics.Reporter) *Parser {
	p := &Parser{l: lexer.New(src, file), Reporter: reporter, file: file}
	p.next()
	p.next()
	return p
}

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) pos(t lexer.Token) ir.Pos {
	return ir.Pos{File: p.file, Line: t.Line, Column: t.Column}
}

func (p *Parser) spanFrom(start lexer.Token) ir.Span {
	return ir.Span{Start: p.pos(start), End: p.pos(p.cur)}
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.Reporter.Errorf(diagnostics.CodeParse, ir.Span{Start: p.pos(p.cur), End: p.pos(p.cur)}, format, args...)
}

func (p *Parser) expect(tt lexer.TokenType) lexer.Token {
	tok := p.cur
	if p.cur.Type != tt {
		p.errorf("expected %s, found %s %q", tt, p.cur.Type, p.cur.Literal)
		return tok
	}
	p.next()
	return tok
}

// Parse parses one source file into a Module.
func Parse(src, file string, reporter *diagnostics.Reporter) *ir.Module {
	p := New(src, file, reporter)
	return p.parseModule()
}

func (p *Parser) parseModule() *ir.Module {
	mod := &ir.Module{}

	p.expect(lexer.MODULE)
	name := p.expect(lexer.CONID)
	mod.Name = name.Literal
	p.expect(lexer.WHERE)
	p.expect(lexer.LBRACE)

	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		p.parseTopDecl(mod)
		if p.cur.Type == lexer.SEMI {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)

	for i := range mod.Funcs {
		if schema, ok := mod.FuncSig(mod.Funcs[i].Ident.Name.Text); ok {
			mod.Funcs[i].TypeArgs = schema.Vars
		}
	}
	return mod
}

func (p *Parser) parseTopDecl(mod *ir.Module) {
	switch p.cur.Type {
	case lexer.IMPORT:
		mod.Imports = append(mod.Imports, p.parseImport())
	case lexer.DATA:
		mod.TypeDecls = append(mod.TypeDecls, p.parseDataDecl())
	case lexer.TYPE:
		mod.TypeDecls = append(mod.TypeDecls, p.parseTypeSynDecl())
	case lexer.IDENT:
		if p.peek.Type == lexer.DCOLON {
			mod.TypeSigs = append(mod.TypeSigs, p.parseTypeSig())
		} else {
			mod.Funcs = append(mod.Funcs, p.parseFuncDecl())
		}
	default:
		p.errorf("expected a declaration, found %s %q", p.cur.Type, p.cur.Literal)
		p.next()
	}
}

func (p *Parser) parseImport() ir.Import {
	start := p.cur
	p.expect(lexer.IMPORT)
	name := p.expect(lexer.CONID)
	return ir.Import{Module: name.Literal, Span: p.spanFrom(start)}
}

// --- types ---

func (p *Parser) parseDataDecl() *ir.DataDecl {
	start := p.cur
	p.expect(lexer.DATA)
	nameTok := p.expect(lexer.CONID)
	var args []ir.DeclIdent
	for p.cur.Type == lexer.IDENT {
		args = append(args, ir.DeclIdent{Name: ir.Unqualified(p.cur.Literal), Span: p.spanFrom(p.cur)})
		p.next()
	}
	p.expect(lexer.EQUALS)

	var cons []ir.ConDecl
	cons = append(cons, p.parseConDecl())
	for p.cur.Type == lexer.PIPE {
		p.next()
		cons = append(cons, p.parseConDecl())
	}

	return &ir.DataDecl{
		Ident: ir.DeclIdent{Name: ir.Unqualified(nameTok.Literal), Span: p.spanFrom(start)},
		Args:  args,
		Cons:  cons,
	}
}

func (p *Parser) parseConDecl() ir.ConDecl {
	start := p.cur
	nameTok := p.expect(lexer.CONID)
	var fields []ir.Type
	for p.startsAType() {
		fields = append(fields, p.parseAType())
	}
	return ir.ConDecl{
		Ident:  ir.DeclIdent{Name: ir.Unqualified(nameTok.Literal), Span: p.spanFrom(start)},
		Fields: fields,
	}
}

func (p *Parser) parseTypeSynDecl() *ir.TypeSynDecl {
	start := p.cur
	p.expect(lexer.TYPE)
	nameTok := p.expect(lexer.CONID)
	var args []ir.DeclIdent
	for p.cur.Type == lexer.IDENT {
		args = append(args, ir.DeclIdent{Name: ir.Unqualified(p.cur.Literal), Span: p.spanFrom(p.cur)})
		p.next()
	}
	p.expect(lexer.EQUALS)
	body := p.parseType()
	return &ir.TypeSynDecl{
		Ident: ir.DeclIdent{Name: ir.Unqualified(nameTok.Literal), Span: p.spanFrom(start)},
		Args:  args,
		Body:  body,
	}
}

func (p *Parser) startsAType() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.CONID, lexer.LPAREN, lexer.LBRACKET:
		return true
	}
	return false
}

// parseType parses a full type: an arrow chain of applied types.
func (p *Parser) parseType() ir.Type {
	start := p.cur
	left := p.parseBType()
	if p.cur.Type == lexer.ARROW {
		p.next()
		right := p.parseType()
		return ir.NewTypeFunc(p.spanFrom(start), left, right)
	}
	return left
}

// parseBType parses a left-associative chain of atomic types: `Tree a`.
func (p *Parser) parseBType() ir.Type {
	start := p.cur
	t := p.parseAType()
	for p.startsAType() {
		arg := p.parseAType()
		t = ir.NewTypeApp(p.spanFrom(start), t, arg)
	}
	return t
}

func (p *Parser) parseAType() ir.Type {
	start := p.cur
	switch p.cur.Type {
	case lexer.IDENT:
		v := p.cur.Literal
		p.next()
		return ir.NewTypeVar(p.spanFrom(start), v)
	case lexer.CONID:
		name := p.cur.Literal
		p.next()
		return ir.NewTypeCon(p.spanFrom(start), ir.Unqualified(name))
	case lexer.LBRACKET:
		p.next()
		elem := p.parseType()
		p.expect(lexer.RBRACKET)
		return ir.NewTypeApp(p.spanFrom(start), ir.NewTypeCon(p.spanFrom(start), ir.Unqualified("[]")), elem)
	case lexer.LPAREN:
		p.next()
		first := p.parseType()
		if p.cur.Type == lexer.COMMA {
			p.next()
			second := p.parseType()
			p.expect(lexer.RPAREN)
			pairCon := ir.NewTypeCon(p.spanFrom(start), ir.Unqualified("(,)"))
			return ir.NewTypeApp(p.spanFrom(start), ir.NewTypeApp(p.spanFrom(start), pairCon, first), second)
		}
		p.expect(lexer.RPAREN)
		return first
	default:
		p.errorf("expected a type, found %s %q", p.cur.Type, p.cur.Literal)
		p.next()
		return ir.NewTypeCon(p.spanFrom(start), ir.Unqualified("Integer"))
	}
}

func (p *Parser) parseTypeSig() ir.TypeSig {
	start := p.cur
	nameTok := p.expect(lexer.IDENT)
	p.expect(lexer.DCOLON)
	body := p.parseType()
	return ir.TypeSig{
		Ident:  ir.DeclIdent{Name: ir.Unqualified(nameTok.Literal), Span: p.spanFrom(start)},
		Schema: ir.TypeSchema{Vars: collectTypeVars(body), Body: body},
	}
}

// collectTypeVars returns the type variables of t, in first-occurrence
// order, implementing this subset's implicit prenex quantification.
func collectTypeVars(t ir.Type) []string {
	var order []string
	seen := map[string]bool{}
	var walk func(ir.Type)
	walk = func(t ir.Type) {
		switch n := t.(type) {
		case *ir.TypeVar:
			if !seen[n.Ident] {
				seen[n.Ident] = true
				order = append(order, n.Ident)
			}
		case *ir.TypeApp:
			walk(n.Fun)
			walk(n.Arg)
		case *ir.TypeFunc:
			walk(n.From)
			walk(n.To)
		}
	}
	walk(t)
	return order
}

// --- functions ---

func (p *Parser) parseFuncDecl() ir.FuncDecl {
	start := p.cur
	nameTok := p.expect(lexer.IDENT)
	var args []*ir.VarPat
	for p.cur.Type == lexer.IDENT || p.cur.Type == lexer.UNDERSCORE {
		args = append(args, p.parseFieldAtom())
	}
	p.expect(lexer.EQUALS)
	body := p.parseExpr()
	return ir.FuncDecl{
		Ident:     ir.DeclIdent{Name: ir.Unqualified(nameTok.Literal), Span: p.spanFrom(start)},
		ValueArgs: args,
		Body:      body,
	}
}

// --- expressions ---

func (p *Parser) parseExpr() ir.Expr {
	switch p.cur.Type {
	case lexer.IF:
		return p.parseIf()
	case lexer.CASE:
		return p.parseCase()
	case lexer.BACKSLASH:
		return p.parseLambda()
	default:
		return p.parseOpExpr(0)
	}
}

func (p *Parser) parseIf() ir.Expr {
	start := p.cur
	p.expect(lexer.IF)
	cond := p.parseExpr()
	p.expect(lexer.THEN)
	then := p.parseExpr()
	p.expect(lexer.ELSE)
	els := p.parseExpr()
	return ir.NewIf(p.spanFrom(start), cond, then, els)
}

func (p *Parser) parseLambda() ir.Expr {
	start := p.cur
	p.expect(lexer.BACKSLASH)
	var args []*ir.VarPat
	for p.cur.Type == lexer.IDENT || p.cur.Type == lexer.UNDERSCORE {
		args = append(args, p.parseFieldAtom())
	}
	p.expect(lexer.ARROW)
	body := p.parseExpr()
	return ir.NewLambda(p.spanFrom(start), args, body)
}

func (p *Parser) parseCase() ir.Expr {
	start := p.cur
	p.expect(lexer.CASE)
	scrut := p.parseExpr()
	p.expect(lexer.OF)
	p.expect(lexer.LBRACE)
	var alts []ir.Alt
	for p.cur.Type != lexer.RBRACE && p.cur.Type != lexer.EOF {
		alts = append(alts, p.parseAlt())
		if p.cur.Type == lexer.SEMI {
			p.next()
			continue
		}
		break
	}
	p.expect(lexer.RBRACE)
	return ir.NewCase(p.spanFrom(start), scrut, alts)
}

func (p *Parser) parseAlt() ir.Alt {
	pat := p.parsePattern()
	p.expect(lexer.ARROW)
	body := p.parseExpr()
	return ir.Alt{Pat: pat, Body: body}
}

// operator precedence, lowest to highest; CONS and CARET are right
// associative, every other operator in the fixed set is left associative.
func precedence(t lexer.TokenType) int {
	switch t {
	case lexer.OROR:
		return 1
	case lexer.ANDAND:
		return 2
	case lexer.EQEQ, lexer.NEQ:
		return 3
	case lexer.LT, lexer.LE, lexer.GT, lexer.GE:
		return 4
	case lexer.CONS:
		return 5
	case lexer.PLUS, lexer.MINUS:
		return 6
	case lexer.STAR:
		return 7
	case lexer.CARET:
		return 8
	default:
		return 0
	}
}

func rightAssoc(t lexer.TokenType) bool {
	return t == lexer.CONS || t == lexer.CARET
}

func (p *Parser) parseOpExpr(minPrec int) ir.Expr {
	start := p.cur
	left := p.parseApp()
	for p.cur.IsOperator() && precedence(p.cur.Type) >= minPrec {
		op := p.cur
		opPrec := precedence(op.Type)
		p.next()
		nextMin := opPrec + 1
		if rightAssoc(op.Type) {
			nextMin = opPrec
		}
		right := p.parseOpExpr(nextMin)
		left = combineOp(p.spanFrom(start), op, left, right)
	}
	return left
}

func combineOp(span ir.Span, op lexer.Token, l, r ir.Expr) ir.Expr {
	var head ir.Expr
	if op.Type == lexer.CONS {
		head = ir.NewCon(span, ir.Unqualified(":"))
	} else {
		head = ir.NewVar(span, ir.Unqualified(op.Literal))
	}
	return ir.NewApp(span, ir.NewApp(span, head, l), r)
}

func (p *Parser) startsAExpr() bool {
	switch p.cur.Type {
	case lexer.IDENT, lexer.CONID, lexer.INT, lexer.LPAREN, lexer.LBRACKET, lexer.UNDEFINED, lexer.ERROR:
		return true
	}
	return false
}

func (p *Parser) parseApp() ir.Expr {
	start := p.cur
	fn := p.parseAExpr()
	for p.startsAExpr() {
		arg := p.parseAExpr()
		fn = ir.NewApp(p.spanFrom(start), fn, arg)
	}
	return fn
}

func (p *Parser) parseAExpr() ir.Expr {
	start := p.cur
	switch p.cur.Type {
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		return ir.NewVar(p.spanFrom(start), ir.Unqualified(name))
	case lexer.CONID:
		name := p.cur.Literal
		p.next()
		return ir.NewCon(p.spanFrom(start), ir.Unqualified(name))
	case lexer.INT:
		lit := p.cur.Literal
		p.next()
		v, err := strconv.ParseInt(lit, 10, 64)
		if err != nil {
			p.errorf("invalid integer literal %q", lit)
		}
		return ir.NewIntLiteral(p.spanFrom(start), v)
	case lexer.UNDEFINED:
		p.next()
		return ir.NewUndefined(p.spanFrom(start))
	case lexer.ERROR:
		p.next()
		msg := p.parseAExpr()
		return ir.NewErrorExpr(p.spanFrom(start), msg)
	case lexer.LPAREN:
		p.next()
		first := p.parseExpr()
		if p.cur.Type == lexer.COMMA {
			p.next()
			second := p.parseExpr()
			p.expect(lexer.RPAREN)
			pairCon := ir.NewCon(p.spanFrom(start), ir.Unqualified("(,)"))
			return ir.NewApp(p.spanFrom(start), ir.NewApp(p.spanFrom(start), pairCon, first), second)
		}
		p.expect(lexer.RPAREN)
		return first
	case lexer.LBRACKET:
		p.next()
		var elems []ir.Expr
		if p.cur.Type != lexer.RBRACKET {
			elems = append(elems, p.parseExpr())
			for p.cur.Type == lexer.COMMA {
				p.next()
				elems = append(elems, p.parseExpr())
			}
		}
		p.expect(lexer.RBRACKET)
		list := ir.Expr(ir.NewCon(p.spanFrom(start), ir.Unqualified("[]")))
		for i := len(elems) - 1; i >= 0; i-- {
			cons := ir.NewCon(p.spanFrom(start), ir.Unqualified(":"))
			list = ir.NewApp(p.spanFrom(start), ir.NewApp(p.spanFrom(start), cons, elems[i]), list)
		}
		return list
	default:
		p.errorf("expected an expression, found %s %q", p.cur.Type, p.cur.Literal)
		p.next()
		return ir.NewUndefined(p.spanFrom(start))
	}
}

// --- patterns: flat, one constructor deep, fields restricted to plain
// variables or wildcards, matching this compiler's accepted case shape ---

func (p *Parser) parseFieldAtom() *ir.VarPat {
	start := p.cur
	switch p.cur.Type {
	case lexer.UNDERSCORE:
		p.next()
		return ir.NewVarPat(p.spanFrom(start), ir.DeclIdent{Name: ir.Unqualified("_"), Span: p.spanFrom(start)})
	case lexer.IDENT:
		name := p.cur.Literal
		p.next()
		return ir.NewVarPat(p.spanFrom(start), ir.DeclIdent{Name: ir.Unqualified(name), Span: p.spanFrom(start)})
	default:
		p.errorf("expected a variable pattern, found %s %q", p.cur.Type, p.cur.Literal)
		p.next()
		return ir.NewVarPat(p.spanFrom(start), ir.DeclIdent{Name: ir.Unqualified("_"), Span: p.spanFrom(start)})
	}
}

func (p *Parser) parsePattern() *ir.ConPat {
	start := p.cur
	switch p.cur.Type {
	case lexer.LBRACKET:
		p.next()
		p.expect(lexer.RBRACKET)
		return ir.NewConPat(p.spanFrom(start), ir.Unqualified("[]"), nil)
	case lexer.CONID:
		name := p.cur.Literal
		p.next()
		var fields []*ir.VarPat
		for p.cur.Type == lexer.IDENT || p.cur.Type == lexer.UNDERSCORE {
			fields = append(fields, p.parseFieldAtom())
		}
		return ir.NewConPat(p.spanFrom(start), ir.Unqualified(name), fields)
	case lexer.LPAREN:
		p.next()
		if p.cur.Type == lexer.CONID {
			name := p.cur.Literal
			p.next()
			var fields []*ir.VarPat
			for p.cur.Type == lexer.IDENT || p.cur.Type == lexer.UNDERSCORE {
				fields = append(fields, p.parseFieldAtom())
			}
			p.expect(lexer.RPAREN)
			return ir.NewConPat(p.spanFrom(start), ir.Unqualified(name), fields)
		}
		first := p.parseFieldAtom()
		switch p.cur.Type {
		case lexer.CONS:
			p.next()
			second := p.parseFieldAtom()
			p.expect(lexer.RPAREN)
			return ir.NewConPat(p.spanFrom(start), ir.Unqualified(":"), []*ir.VarPat{first, second})
		case lexer.COMMA:
			p.next()
			second := p.parseFieldAtom()
			p.expect(lexer.RPAREN)
			return ir.NewConPat(p.spanFrom(start), ir.Unqualified("(,)"), []*ir.VarPat{first, second})
		default:
			p.errorf("expected : or , in parenthesized pattern, found %s %q", p.cur.Type, p.cur.Literal)
			p.expect(lexer.RPAREN)
			return ir.NewConPat(p.spanFrom(start), ir.Unqualified(":"), []*ir.VarPat{first, first})
		}
	case lexer.IDENT, lexer.UNDERSCORE:
		first := p.parseFieldAtom()
		if p.cur.Type == lexer.CONS {
			p.next()
			second := p.parseFieldAtom()
			return ir.NewConPat(p.spanFrom(start), ir.Unqualified(":"), []*ir.VarPat{first, second})
		}
		p.errorf("a case alternative must match a constructor; bare variable patterns are not supported outside %q", ":")
		return ir.NewConPat(p.spanFrom(start), ir.Unqualified(":"), []*ir.VarPat{first, first})
	default:
		p.errorf("expected a pattern, found %s %q", p.cur.Type, p.cur.Literal)
		p.next()
		return ir.NewConPat(p.spanFrom(start), ir.Unqualified("[]"), nil)
	}
}
