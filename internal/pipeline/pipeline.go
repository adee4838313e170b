// Package pipeline sequences the front end, environment setup, conversion,
// and rendering passes over a batch of source files compiled together.
package pipeline

import (
	"github.com/freecoq/fcc/internal/config"
	"github.com/freecoq/fcc/internal/convert"
	"github.com/freecoq/fcc/internal/diagnostics"
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/ir"
	"github.com/freecoq/fcc/internal/parser"
)

// Config carries the options a driver collects from its command line.
type Config struct {
	// ProjectEnv, if non-nil, supplies extra predefined types, constructors,
	// and functions on top of the fixed builtin registry.
	ProjectEnv *config.Environment
}

// Source is one input file.
type Source struct {
	Code     string
	Filename string
}

// Result is one file's compilation outcome.
type Result struct {
	ModuleName string
	Gallina    string
	Reports    []diagnostics.Report
	Fatal      bool
}

// Run compiles sources in the order given, as one batch: each file's own
// module interface, once successfully converted, is registered so a later
// file's import declarations resolve against it. This mirrors the accepted
// subset's unrestricted-import rule (no selective or hiding lists):
// importing a module always brings its whole interface into scope.
//
// A file whose own compilation fails still lets later files in the batch
// run, so a driver can surface every file's diagnostics in one pass; but a
// failed file's interface is never registered, so anything importing it
// fails import resolution in turn rather than silently seeing a partial
// interface.
func Run(cfg Config, sources []Source) ([]Result, bool) {
	registry := map[string]*env.ModuleInterface{}
	results := make([]Result, 0, len(sources))
	anyFatal := false

	for _, src := range sources {
		res, iface := compileOne(cfg, src, registry)
		if res.Fatal {
			anyFatal = true
		} else {
			registry[res.ModuleName] = iface
		}
		results = append(results, res)
	}
	return results, anyFatal
}

func compileOne(cfg Config, src Source, registry map[string]*env.ModuleInterface) (Result, *env.ModuleInterface) {
	reporter := diagnostics.New()
	e := env.NewWithRegistry(reporter, registry)
	e.Init(cfg.ProjectEnv)

	mod := parser.Parse(src.Code, src.Filename, reporter)
	if reporter.Fatal() {
		return Result{ModuleName: mod.Name, Reports: reporter.Reports(), Fatal: true}, nil
	}

	resolveImports(mod, e, reporter)
	if reporter.Fatal() {
		return Result{ModuleName: mod.Name, Reports: reporter.Reports(), Fatal: true}, nil
	}

	gmod := convert.Convert(mod, e)
	if reporter.Fatal() {
		return Result{ModuleName: mod.Name, Reports: reporter.Reports(), Fatal: true}, nil
	}

	return Result{
		ModuleName: gmod.Name,
		Gallina:    gmod.Render(),
		Reports:    reporter.Reports(),
		Fatal:      false,
	}, exportInterface(mod, e)
}

// resolveImports brings every imported module's exported interface into e,
// failing with a diagnostic for any module name the registry doesn't know
// (either never compiled in this batch, or compiled but fatally erroring).
func resolveImports(mod *ir.Module, e *env.Env, reporter *diagnostics.Reporter) {
	for _, imp := range mod.Imports {
		iface, ok := e.LookupModule(imp.Module)
		if !ok {
			reporter.Errorf(diagnostics.CodeUnknownIdent, imp.Span,
				"unknown imported module %q", imp.Module)
			continue
		}
		e.ImportModule(iface)
	}
}

// exportInterface collects the environment entries bound to this module's
// own top-level declarations (not the builtins or imports also visible in
// e), for registration so a later file can import this one.
func exportInterface(mod *ir.Module, e *env.Env) *env.ModuleInterface {
	iface := env.NewModuleInterface(mod.Name)
	for _, td := range mod.TypeDecls {
		name := td.TypeName().Name
		if entry, ok := e.LookupType(name); ok {
			iface.Export(name.Key(), entry)
		}
		if dd, ok := td.(*ir.DataDecl); ok {
			for _, c := range dd.Cons {
				if entry, ok := e.LookupValue(c.Ident.Name); ok {
					iface.Export(c.Ident.Name.Key(), entry)
				}
			}
		}
	}
	for _, f := range mod.Funcs {
		if entry, ok := e.LookupValue(f.Ident.Name); ok {
			iface.Export(f.Ident.Name.Key(), entry)
		}
	}
	return iface
}
