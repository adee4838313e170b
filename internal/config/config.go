// Package config loads the environment file that enumerates predefined
// entries available to every compiled module: a table-of-tables of types,
// constructors, and functions, entered into the environment before any
// source module is processed.
package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// SchemaVersion is the schema identifier this loader accepts, following a
// "<namespace>/v<major>[.<minor>]" convention.
const SchemaVersion = "fcc.env/v1"

// TypeEntry describes one predefined type constructor or synonym.
type TypeEntry struct {
	HaskellName string `yaml:"haskell-name"`
	CoqName     string `yaml:"coq-name"`
	Arity       int    `yaml:"arity"`
}

// ConstructorEntry describes one predefined data constructor.
type ConstructorEntry struct {
	HaskellName string `yaml:"haskell-name"`
	HaskellType string `yaml:"haskell-type"`
	CoqName     string `yaml:"coq-name"`
	CoqSmartName string `yaml:"coq-smart-name"`
	Arity       int    `yaml:"arity"`
}

// FunctionEntry describes one predefined function.
type FunctionEntry struct {
	HaskellName string `yaml:"haskell-name"`
	HaskellType string `yaml:"haskell-type"`
	CoqName     string `yaml:"coq-name"`
	Arity       int    `yaml:"arity"`
	Partial     bool   `yaml:"partial"`
}

// Environment is the parsed table-of-tables environment file.
type Environment struct {
	Schema       string             `yaml:"schema"`
	Types        []TypeEntry        `yaml:"types"`
	Constructors []ConstructorEntry `yaml:"constructors"`
	Functions    []FunctionEntry    `yaml:"functions"`
}

// Accepts reports whether a document's declared schema is compatible with
// SchemaVersion, allowing forward-compatible minor versions.
func Accepts(got string) bool {
	if got == SchemaVersion {
		return true
	}
	return strings.HasPrefix(got, SchemaVersion+".")
}

// Load reads and validates an environment file from disk.
func Load(path string) (*Environment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	return Parse(data)
}

// Parse validates and decodes environment file bytes.
func Parse(data []byte) (*Environment, error) {
	var env Environment
	if err := yaml.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("config: parsing environment file: %w", err)
	}
	if env.Schema == "" {
		return nil, fmt.Errorf("config: environment file missing required %q field", "schema")
	}
	if !Accepts(env.Schema) {
		return nil, fmt.Errorf("config: unsupported schema %q, expected %s", env.Schema, SchemaVersion)
	}
	for i, t := range env.Types {
		if t.HaskellName == "" || t.CoqName == "" {
			return nil, fmt.Errorf("config: types[%d] missing haskell-name or coq-name", i)
		}
	}
	for i, c := range env.Constructors {
		if c.HaskellName == "" || c.CoqName == "" {
			return nil, fmt.Errorf("config: constructors[%d] missing haskell-name or coq-name", i)
		}
	}
	for i, f := range env.Functions {
		if f.HaskellName == "" || f.CoqName == "" {
			return nil, fmt.Errorf("config: functions[%d] missing haskell-name or coq-name", i)
		}
	}
	return &env, nil
}

// Merge layers another Environment's entries on top of this one. Entries in
// other take precedence for identically-named haskell-name keys, matching
// the policy that a project's environment file extends (and may override)
// the base registry rather than replacing it wholesale.
func (e *Environment) Merge(other *Environment) *Environment {
	out := &Environment{Schema: e.Schema}
	typeIdx := map[string]int{}
	for _, t := range e.Types {
		typeIdx[t.HaskellName] = len(out.Types)
		out.Types = append(out.Types, t)
	}
	for _, t := range other.Types {
		if i, ok := typeIdx[t.HaskellName]; ok {
			out.Types[i] = t
		} else {
			typeIdx[t.HaskellName] = len(out.Types)
			out.Types = append(out.Types, t)
		}
	}
	conIdx := map[string]int{}
	for _, c := range e.Constructors {
		conIdx[c.HaskellName] = len(out.Constructors)
		out.Constructors = append(out.Constructors, c)
	}
	for _, c := range other.Constructors {
		if i, ok := conIdx[c.HaskellName]; ok {
			out.Constructors[i] = c
		} else {
			conIdx[c.HaskellName] = len(out.Constructors)
			out.Constructors = append(out.Constructors, c)
		}
	}
	fnIdx := map[string]int{}
	for _, f := range e.Functions {
		fnIdx[f.HaskellName] = len(out.Functions)
		out.Functions = append(out.Functions, f)
	}
	for _, f := range other.Functions {
		if i, ok := fnIdx[f.HaskellName]; ok {
			out.Functions[i] = f
		} else {
			fnIdx[f.HaskellName] = len(out.Functions)
			out.Functions = append(out.Functions, f)
		}
	}
	return out
}
