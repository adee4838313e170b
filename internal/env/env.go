package env

import (
	"strconv"

	"github.com/freecoq/fcc/internal/builtins"
	"github.com/freecoq/fcc/internal/config"
	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/ir"
)

// Fixed prefixes for anonymous arguments, temporary bindings, and
// synthesized helper functions.
const (
	AnonArgPrefix = "arg"
	BindTmpPrefix = "tmp"
	HelperPrefix  = "helper"
)

// Env is the scoped renaming environment threaded through every pass. It is
// a process-local resource: Init loads predefined module interfaces, it is
// then used for the duration of one module's compilation, and released by
// simply discarding it.
type Env struct {
	types  *scopeStack
	values *scopeStack

	taken map[string]bool // every target identifier issued in this module
	fresh map[string]int  // next disambiguation counter per fresh-name prefix

	decArgIndex map[string]int // callee's own target identifier -> decreasing-arg index

	modules *moduleCache

	Reporter *diagnostics.Reporter
}

// New creates an Env ready for Init.
func New(reporter *diagnostics.Reporter) *Env {
	return &Env{
		types:       newScopeStack(),
		values:      newScopeStack(),
		taken:       map[string]bool{},
		fresh:       map[string]int{},
		decArgIndex: map[string]int{},
		modules:     newModuleCache(),
		Reporter:    reporter,
	}
}

// NewWithRegistry creates an Env backed by a module-interface registry
// shared across every file compiled in the same driver invocation, so a
// later file's imports resolve against an earlier file's already-exported
// interface without needing a single Env (and its single per-module taken
// pool) to span multiple modules.
func NewWithRegistry(reporter *diagnostics.Reporter, registry map[string]*ModuleInterface) *Env {
	e := New(reporter)
	if registry != nil {
		e.modules = &moduleCache{byName: registry}
	}
	return e
}

// ImportModule pulls a previously-compiled module's exported interface
// directly into this Env's top-level frames, bypassing RenameAndDefine:
// every entry already carries the final target identifier minted when its
// defining module was compiled, so re-renaming here would desynchronize
// this module's references from that already-emitted Gallina text.
func (e *Env) ImportModule(iface *ModuleInterface) {
	for k, v := range iface.Types {
		e.taken[v.TargetIdent()] = true
		e.types.define(k, v)
	}
	for k, v := range iface.Constructors {
		e.taken[v.TargetIdent()] = true
		e.values.define(k, v)
	}
	for k, v := range iface.Functions {
		e.taken[v.TargetIdent()] = true
		e.values.define(k, v)
	}
}

// Init loads the base builtins registry and, if non-nil, a project
// environment file into the module-level (outermost) frame of both scopes.
// Must run before any source module is processed.
func (e *Env) Init(projectEnv *config.Environment) {
	for _, t := range builtins.Types {
		e.defineTypeDirect(ir.Unqualified(t.HaskellName), NewDataEntry(ir.Unqualified(t.HaskellName), t.CoqName, t.Arity))
	}
	for _, c := range builtins.Constructors {
		argTypes := make([]ir.Type, c.Arity)
		e.defineValueDirect(ir.Unqualified(c.HaskellName), NewConEntry(ir.Unqualified(c.HaskellName), c.CoqName, c.CoqSmartName, c.Arity, argTypes, nil))
	}
	for _, f := range builtins.Functions {
		e.defineValueDirect(ir.Unqualified(f.HaskellName), NewFuncEntry(ir.Unqualified(f.HaskellName), f.CoqName, f.Arity, nil, nil, nil, f.Partial))
	}
	if projectEnv == nil {
		return
	}
	for _, t := range projectEnv.Types {
		e.defineTypeDirect(ir.Unqualified(t.HaskellName), NewDataEntry(ir.Unqualified(t.HaskellName), t.CoqName, t.Arity))
	}
	for _, c := range projectEnv.Constructors {
		argTypes := make([]ir.Type, c.Arity)
		e.defineValueDirect(ir.Unqualified(c.HaskellName), NewConEntry(ir.Unqualified(c.HaskellName), c.CoqName, c.CoqSmartName, c.Arity, argTypes, nil))
	}
	for _, f := range projectEnv.Functions {
		e.defineValueDirect(ir.Unqualified(f.HaskellName), NewFuncEntry(ir.Unqualified(f.HaskellName), f.CoqName, f.Arity, nil, nil, nil, f.Partial))
	}
}

// defineTypeDirect registers a predefined entry without going through
// Rename (its target identifier is already fixed by configuration).
func (e *Env) defineTypeDirect(name ir.Name, entry Entry) {
	e.taken[entry.TargetIdent()] = true
	e.types.define(name.Key(), entry)
}

func (e *Env) defineValueDirect(name ir.Name, entry Entry) {
	e.taken[entry.TargetIdent()] = true
	e.values.define(name.Key(), entry)
}

// DefineValueOverride rebinds name to entry in the current (innermost) value
// scope frame, shadowing whatever it resolved to in an outer frame. Used to
// redirect a mutually-recursive group's own member names to their extracted
// helper functions while lifting a helper body, without minting a new
// target identifier (entry already carries one).
func (e *Env) DefineValueOverride(name ir.Name, entry Entry) {
	e.values.define(name.Key(), entry)
}

// --- scope management: every local binding construct acquires a fresh
// scope and guarantees release on all exit paths ---

// PushTypeScope opens a new type-scope frame. Callers must defer PopTypeScope.
func (e *Env) PushTypeScope() { e.types.push() }

// PopTypeScope releases the innermost type-scope frame.
func (e *Env) PopTypeScope() { e.types.pop() }

// PushValueScope opens a new value-scope frame. Callers must defer PopValueScope.
func (e *Env) PushValueScope() { e.values.push() }

// PopValueScope releases the innermost value-scope frame.
func (e *Env) PopValueScope() { e.values.pop() }

// LookupType resolves a name in the type scope, walking outward through
// enclosing frames.
func (e *Env) LookupType(name ir.Name) (Entry, bool) {
	return e.types.lookup(name.Key())
}

// LookupValue resolves a name in the value scope, walking outward through
// enclosing frames.
func (e *Env) LookupValue(name ir.Name) (Entry, bool) {
	return e.values.lookup(name.Key())
}

// Fresh returns an identifier not currently bound in the target scope,
// deterministically suffixed from prefix, and registers it as taken.
func (e *Env) Fresh(prefix string) string {
	for {
		e.fresh[prefix]++
		n := e.fresh[prefix]
		candidate := prefix
		if n > 1 {
			candidate = fmtSuffix(prefix, n)
		}
		if gallinaKeywords[candidate] {
			continue
		}
		if !e.taken[candidate] {
			e.taken[candidate] = true
			return candidate
		}
	}
}

func fmtSuffix(prefix string, n int) string {
	return prefix + "_" + strconv.Itoa(n)
}

// RenameAndDefine picks a target identifier for source, sanitizing Haskell
// operator characters and disambiguating collisions, and defines the entry
// built by makeEntry(target) in
// the given scope's innermost frame. Duplicate top-level names within the
// same scope are a fatal error, not silently shadowed: callers in a fresh
// binding construct (lambda, case alt) want shadowing, so they should push a
// new frame first. RenameAndDefine itself does not detect duplicates (a
// second definition in the same frame replaces the first); the top-level
// declaration passes in internal/convert report them before calling this.
func (e *Env) RenameAndDefine(scope Scope, source ir.Name, span ir.Span, makeEntry func(target string) Entry) Entry {
	candidate, ok := sanitize(source.Text, source.Symbol)
	if !ok {
		e.Reporter.Errorf(diagnostics.CodeBadSanitization, span,
			"cannot sanitize %q into a valid Gallina identifier", source.Text)
		candidate = "bad_ident"
	}
	target := uniquify(candidate, e.taken)
	entry := makeEntry(target)
	if scope == TypeScope {
		e.types.define(source.Key(), entry)
	} else {
		e.values.define(source.Key(), entry)
	}
	return entry
}

// DefinedInCurrentType reports whether name is already bound in the
// innermost type-scope frame.
func (e *Env) DefinedInCurrentType(name ir.Name) bool {
	return e.types.definedInCurrent(name.Key())
}

// DefinedInCurrentValue reports whether name is already bound in the
// innermost value-scope frame.
func (e *Env) DefinedInCurrentValue(name ir.Name) bool {
	return e.values.definedInCurrent(name.Key())
}

// SetDecArgIndex records, for a recursive helper's own Gallina target
// identifier, the index (within that helper's own argument list, i.e. its
// FreeVars order) of its decreasing-argument binder. internal/lift consults
// this at every call site to know which argument must be bind-opened before
// the call, per the recursive-helper call handling rule: the decreasing-arg
// binder is declared at its bare, not-yet-lifted type, so every caller
// (including the helper calling itself) must first unwrap the already-
// monadic value it otherwise has in hand.
func (e *Env) SetDecArgIndex(targetIdent string, idx int) {
	e.decArgIndex[targetIdent] = idx
}

// DecArgIndex looks up a previously-recorded decreasing-argument index for a
// callee identified by its own Gallina target identifier.
func (e *Env) DecArgIndex(targetIdent string) (int, bool) {
	idx, ok := e.decArgIndex[targetIdent]
	return idx, ok
}

// RegisterModule adds a compiled module's interface to the shared cache so
// downstream modules can resolve imports against it.
func (e *Env) RegisterModule(iface *ModuleInterface) { e.modules.Register(iface) }

// LookupModule returns a previously-compiled module's interface.
func (e *Env) LookupModule(name string) (*ModuleInterface, bool) { return e.modules.Lookup(name) }
