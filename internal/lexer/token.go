// Package lexer tokenizes the accepted Haskell-98 subset: modules, imports,
// algebraic data declarations, type synonyms, type signatures, and
// function bindings built from if/case/lambda/application over a fixed
// thirteen-operator set, using the explicit-braces-and-semicolons layout
// alternative the Haskell report permits in place of indentation-sensitive
// layout.
package lexer

import "fmt"

// TokenType identifies a lexical token kind.
type TokenType int

const (
	ILLEGAL TokenType = iota
	EOF

	IDENT // lowercase-leading identifier
	CONID // uppercase-leading identifier (types, constructors, modules)
	INT   // integer literal

	MODULE
	WHERE
	IMPORT
	DATA
	TYPE
	CASE
	OF
	IF
	THEN
	ELSE
	UNDEFINED
	ERROR

	LPAREN
	RPAREN
	LBRACKET
	RBRACKET
	LBRACE
	RBRACE
	COMMA
	SEMI
	EQUALS
	DCOLON
	ARROW
	BACKSLASH
	PIPE
	UNDERSCORE

	// The fixed infix-operator set this compiler recognizes (mirrors
	// internal/builtins.Operators); anything else lexes as ILLEGAL.
	CARET
	STAR
	PLUS
	MINUS
	CONS
	EQEQ
	NEQ
	LT
	LE
	GT
	GE
	ANDAND
	OROR
)

var names = map[TokenType]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", CONID: "CONID", INT: "INT",
	MODULE: "module", WHERE: "where", IMPORT: "import", DATA: "data", TYPE: "type",
	CASE: "case", OF: "of", IF: "if", THEN: "then", ELSE: "else",
	UNDEFINED: "undefined", ERROR: "error",
	LPAREN: "(", RPAREN: ")", LBRACKET: "[", RBRACKET: "]", LBRACE: "{", RBRACE: "}",
	COMMA: ",", SEMI: ";", EQUALS: "=", DCOLON: "::", ARROW: "->", BACKSLASH: "\\",
	PIPE: "|", UNDERSCORE: "_",
	CARET: "^", STAR: "*", PLUS: "+", MINUS: "-", CONS: ":",
	EQEQ: "==", NEQ: "/=", LT: "<", LE: "<=", GT: ">", GE: ">=",
	ANDAND: "&&", OROR: "||",
}

func (t TokenType) String() string {
	if s, ok := names[t]; ok {
		return s
	}
	return fmt.Sprintf("TokenType(%d)", t)
}

var keywords = map[string]TokenType{
	"module": MODULE, "where": WHERE, "import": IMPORT, "data": DATA, "type": TYPE,
	"case": CASE, "of": OF, "if": IF, "then": THEN, "else": ELSE,
	"undefined": UNDEFINED, "error": ERROR,
}

// Token is one lexical token with its source position.
type Token struct {
	Type    TokenType
	Literal string
	File    string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("%s(%q)@%d:%d", t.Type, t.Literal, t.Line, t.Column)
}

// IsOperator reports whether t is one of the fixed infix operators.
func (t Token) IsOperator() bool {
	switch t.Type {
	case CARET, STAR, PLUS, MINUS, CONS, EQEQ, NEQ, LT, LE, GT, GE, ANDAND, OROR:
		return true
	}
	return false
}
