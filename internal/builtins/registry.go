// Package builtins holds the fixed set of predefined Haskell identifiers
// this compiler always knows, independent of any environment file: Bool,
// Integer, list, pair, undefined, error, and a fixed infix-operator set
// (^ * + - : == /= < <= > >= && ||). An environment file loaded via
// internal/config extends this base registry; it never replaces it.
package builtins

// TypeMeta describes a predefined type constructor.
type TypeMeta struct {
	HaskellName string
	CoqName     string
	Arity       int
}

// ConMeta describes a predefined data constructor.
type ConMeta struct {
	HaskellName  string
	CoqName      string
	CoqSmartName string
	Arity        int
	ResultType   string // HaskellName of the type this constructor belongs to
}

// FuncMeta describes a predefined function.
type FuncMeta struct {
	HaskellName string
	CoqName     string
	Arity       int
	Partial     bool
}

// Types is the base type registry, keyed by Haskell name.
var Types = make(map[string]*TypeMeta)

// Constructors is the base constructor registry, keyed by Haskell name.
var Constructors = make(map[string]*ConMeta)

// Functions is the base function registry, keyed by Haskell name.
var Functions = make(map[string]*FuncMeta)

// Operators is the fixed infix-operator set this compiler accepts; there is
// no user-defined fixity declaration, so anything outside this set is
// rejected by the front end: the lexer turns unknown operator characters
// into ILLEGAL tokens and the parser reports them as a parse error (PAR001).
var Operators = map[string]bool{
	"^": true, "*": true, "+": true, "-": true, ":": true,
	"==": true, "/=": true, "<": true, "<=": true, ">": true, ">=": true,
	"&&": true, "||": true,
}

func init() {
	registerTypes()
	registerConstructors()
	registerFunctions()
}

func registerTypes() {
	Types["Bool"] = &TypeMeta{HaskellName: "Bool", CoqName: "boolT", Arity: 0}
	Types["Integer"] = &TypeMeta{HaskellName: "Integer", CoqName: "intT", Arity: 0}
	Types["[]"] = &TypeMeta{HaskellName: "[]", CoqName: "listT", Arity: 1}
	Types["(,)"] = &TypeMeta{HaskellName: "(,)", CoqName: "pairT", Arity: 2}
}

func registerConstructors() {
	Constructors["True"] = &ConMeta{HaskellName: "True", CoqName: "TrueC", CoqSmartName: "pureTrue", Arity: 0, ResultType: "Bool"}
	Constructors["False"] = &ConMeta{HaskellName: "False", CoqName: "FalseC", CoqSmartName: "pureFalse", Arity: 0, ResultType: "Bool"}
	Constructors["[]"] = &ConMeta{HaskellName: "[]", CoqName: "nilC", CoqSmartName: "pureNil", Arity: 0, ResultType: "[]"}
	Constructors[":"] = &ConMeta{HaskellName: ":", CoqName: "consC", CoqSmartName: "pureCons", Arity: 2, ResultType: "[]"}
	Constructors["(,)"] = &ConMeta{HaskellName: "(,)", CoqName: "pairC", CoqSmartName: "purePair", Arity: 2, ResultType: "(,)"}
}

func registerFunctions() {
	Functions["undefined"] = &FuncMeta{HaskellName: "undefined", CoqName: "partialUndefined", Arity: 0, Partial: true}
	Functions["error"] = &FuncMeta{HaskellName: "error", CoqName: "partialError", Arity: 1, Partial: true}
	for op, coqName := range map[string]string{
		"^": "powInt", "*": "mulInt", "+": "addInt", "-": "subInt",
		"==": "eqInt", "/=": "neqInt", "<": "ltInt", "<=": "leInt",
		">": "gtInt", ">=": "geInt", "&&": "andB", "||": "orB",
	} {
		Functions[op] = &FuncMeta{HaskellName: op, CoqName: coqName, Arity: 2, Partial: false}
	}
}

// IsType reports whether name is a predefined type.
func IsType(name string) bool { _, ok := Types[name]; return ok }

// IsConstructor reports whether name is a predefined data constructor.
func IsConstructor(name string) bool { _, ok := Constructors[name]; return ok }

// IsFunction reports whether name is a predefined function.
func IsFunction(name string) bool { _, ok := Functions[name]; return ok }

// IsOperator reports whether an operator symbol is in the fixed set above.
func IsOperator(sym string) bool { return Operators[sym] }
