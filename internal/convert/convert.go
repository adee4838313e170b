// Package convert assembles the lowered Gallina sentences for one module:
// a preamble of Require Import sentences, then type declarations in
// dependency order, then function declarations in dependency order, all
// inside a single Gallina Module.
package convert

import (
	"github.com/freecoq/fcc/internal/env"
	"github.com/freecoq/fcc/internal/gallina"
	"github.com/freecoq/fcc/internal/ir"
)

// BaseLibraryName is the Require Import target that provides `Free Shape
// Pos`, `pure`/`bind`, the `Partial` typeclass, and the lifted predefined
// types every emitted module depends on.
const BaseLibraryName = "Base"

// Convert lowers a resolved module to a Gallina Module ready for rendering.
// Fatal diagnostics recorded on e.Reporter during conversion mean the
// returned Module is incomplete; callers must check e.Reporter.Fatal()
// before writing anything out.
func Convert(mod *ir.Module, e *env.Env) *gallina.Module {
	name := mod.Name
	if name == "" {
		name = "Main"
	}

	var sentences []gallina.Sentence
	sentences = append(sentences, preamble(mod)...)
	sentences = append(sentences, Types(mod, e)...)
	sentences = append(sentences, Funcs(mod, e)...)

	return &gallina.Module{Name: name, Sentences: sentences}
}

// preamble builds the module's Require Import sentences: the base library
// first, then every imported module by name.
func preamble(mod *ir.Module) []gallina.Sentence {
	names := []string{BaseLibraryName}
	for _, imp := range mod.Imports {
		names = append(names, imp.Module)
	}
	return []gallina.Sentence{&gallina.RequireImport{Names: names}}
}
