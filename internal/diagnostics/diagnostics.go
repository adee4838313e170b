// Package diagnostics is the generic message reporter shared by every pass:
// it collects diagnostics with a source span, a severity, and a message, and
// signals whether a fatal error was reported.
package diagnostics

import (
	"fmt"
	"sort"

	"github.com/freecoq/fcc/internal/ir"
)

// Severity is the level of a diagnostic.
type Severity int

const (
	Info Severity = iota
	Warning
	Error
)

func (s Severity) String() string {
	switch s {
	case Info:
		return "info"
	case Warning:
		return "warning"
	default:
		return "error"
	}
}

// Code values are phase-prefixed: the first three letters identify the pass
// that raised the diagnostic, the trailing digits disambiguate within it.
const (
	CodeDuplicateDecl    = "RNM001" // duplicate top-level declaration in a scope
	CodeBadSanitization  = "RNM002" // name sanitization produced no valid identifier
	CodeUnknownIdent     = "RES001" // unknown identifier at a resolvable site
	CodeAmbiguousRef     = "RES002" // ambiguous reference (multiple imports)
	CodeMissingSig       = "SIG001" // missing type signature
	CodeNoDecreasingArg  = "TRM001" // cannot determine a decreasing argument
	CodeSynonymCycle     = "TSY001" // mutually recursive type-synonym cycle
	CodeRecursiveProperty = "QCK001" // recursive QuickCheck-style property
	CodeParse            = "PAR001" // front-end parse error, propagated
)

// Report is one diagnostic: a source span, a severity, a code, and a
// human-readable message naming the entity kind involved.
type Report struct {
	Code     string
	Severity Severity
	Span     ir.Span
	Message  string
}

func (r Report) String() string {
	return fmt.Sprintf("%s: %s [%s] %s", r.Span.Start, r.Severity, r.Code, r.Message)
}

// Reporter accumulates diagnostics produced during a single computation
// (one module's compilation). A fatal report short-circuits further work in
// the current computation but the reporter itself never panics or aborts
// the process — the driver checks Fatal() and decides what to do.
type Reporter struct {
	reports []Report
	fatal   bool
}

// New creates an empty Reporter.
func New() *Reporter {
	return &Reporter{}
}

// Add records a diagnostic. Error-severity reports set the fatal flag.
func (r *Reporter) Add(rep Report) {
	r.reports = append(r.reports, rep)
	if rep.Severity == Error {
		r.fatal = true
	}
}

// Errorf records a fatal Error-severity diagnostic.
func (r *Reporter) Errorf(code string, span ir.Span, format string, args ...interface{}) {
	r.Add(Report{Code: code, Severity: Error, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Warnf records a non-fatal Warning-severity diagnostic.
func (r *Reporter) Warnf(code string, span ir.Span, format string, args ...interface{}) {
	r.Add(Report{Code: code, Severity: Warning, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Infof records an Info-severity diagnostic.
func (r *Reporter) Infof(code string, span ir.Span, format string, args ...interface{}) {
	r.Add(Report{Code: code, Severity: Info, Span: span, Message: fmt.Sprintf(format, args...)})
}

// Fatal reports whether any Error-severity diagnostic has been recorded.
func (r *Reporter) Fatal() bool {
	return r.fatal
}

// Reports returns all diagnostics recorded so far in source order (by the
// start of their spans, line then column); reports at the same position
// keep the order they were added in.
func (r *Reporter) Reports() []Report {
	out := append([]Report(nil), r.reports...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Span.Start, out[j].Span.Start
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	return out
}

// Reset clears accumulated diagnostics. Used between independent module
// compilations that share a Reporter instance.
func (r *Reporter) Reset() {
	r.reports = nil
	r.fatal = false
}
