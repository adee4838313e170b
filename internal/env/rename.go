package env

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// gallinaKeywords are reserved and can never be produced as a target
// identifier.
var gallinaKeywords = map[string]bool{
	"Definition": true, "Fixpoint": true, "Inductive": true, "Module": true,
	"End": true, "Require": true, "Import": true, "Arguments": true,
	"Section": true, "Context": true, "Theorem": true, "Proof": true,
	"Qed": true, "match": true, "with": true, "end": true, "fun": true,
	"let": true, "in": true, "if": true, "then": true, "else": true,
	"forall": true, "exists": true, "Type": true, "Prop": true, "Set": true,
	"fix": true, "cofix": true, "struct": true, "as": true, "return": true,
}

// symbolNames maps fixed operator symbols to a pronounceable fragment used
// when sanitizing them into valid Gallina identifiers.
var symbolNames = map[string]string{
	"^": "pow", "*": "mul", "+": "add", "-": "sub", ":": "cons",
	"==": "eq", "/=": "neq", "<": "lt", "<=": "le", ">": "gt", ">=": "ge",
	"&&": "and", "||": "or",
}

// sanitize converts a source identifier or symbol into a candidate Gallina
// identifier: NFC-normalize Unicode, translate punctuation via symbolNames
// (falling back to a generic fragment character-by-character for anything
// unforeseen), and ensure the result starts with a letter or underscore.
//
// Returns ok=false if no valid identifier could be produced at all, which
// is a fatal error at the call site.
func sanitize(text string, isSymbol bool) (string, bool) {
	normalized := string(norm.NFC.Bytes([]byte(text)))

	var candidate string
	if isSymbol {
		if name, ok := symbolNames[normalized]; ok {
			candidate = name
		} else {
			var b strings.Builder
			for _, r := range normalized {
				if frag, ok := symbolFragment(r); ok {
					b.WriteString(frag)
				}
			}
			candidate = b.String()
		}
	} else {
		var b strings.Builder
		for _, r := range normalized {
			switch {
			case r == '_' || r == '\'':
				b.WriteRune('_')
			case unicode.IsLetter(r) || unicode.IsDigit(r):
				b.WriteRune(r)
			}
		}
		candidate = b.String()
	}

	if candidate == "" {
		return "", false
	}
	if !(unicode.IsLetter(rune(candidate[0])) || candidate[0] == '_') {
		candidate = "op_" + candidate
	}
	return candidate, true
}

func symbolFragment(r rune) (string, bool) {
	switch r {
	case '+':
		return "plus", true
	case '-':
		return "minus", true
	case '*':
		return "star", true
	case '/':
		return "slash", true
	case '<':
		return "lt", true
	case '>':
		return "gt", true
	case '=':
		return "eq", true
	case '!':
		return "bang", true
	case '&':
		return "amp", true
	case '|':
		return "bar", true
	case '^':
		return "caret", true
	case '.':
		return "dot", true
	case ':':
		return "colon", true
	case '$':
		return "dollar", true
	case '%':
		return "pct", true
	case '~':
		return "tilde", true
	case '?':
		return "qmark", true
	default:
		return "", false
	}
}

// uniquify appends a deterministic disambiguation suffix until candidate is
// absent from taken, registering the chosen identifier before returning it.
// For identical input sequences the same suffixes are chosen, since taken
// only grows by this same process in declaration order.
func uniquify(candidate string, taken map[string]bool) string {
	if gallinaKeywords[candidate] {
		candidate += "_"
	}
	if !taken[candidate] {
		taken[candidate] = true
		return candidate
	}
	for n := 2; ; n++ {
		attempt := fmt.Sprintf("%s_%d", candidate, n)
		if !taken[attempt] {
			taken[attempt] = true
			return attempt
		}
	}
}
