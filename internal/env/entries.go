// Package env implements the scoped name-resolution/renaming environment:
// two independent scopes (type scope and value scope) mapping source names
// to tagged entry variants, each carrying a target Gallina identifier that
// is unique within its module.
package env

import "github.com/freecoq/fcc/internal/ir"

// Scope names the two independent scopes entries can be registered in.
type Scope int

const (
	TypeScope Scope = iota
	ValueScope
)

func (s Scope) String() string {
	if s == TypeScope {
		return "type"
	}
	return "value"
}

// Entry is the common interface of every environment entry variant.
type Entry interface {
	Scope() Scope
	SourceName() ir.Name
	TargetIdent() string
}

type entryBase struct {
	scope  Scope
	source ir.Name
	target string
}

func (e entryBase) Scope() Scope        { return e.scope }
func (e entryBase) SourceName() ir.Name { return e.source }
func (e entryBase) TargetIdent() string { return e.target }

// DataEntry is a data-type constructor entry in the type scope.
type DataEntry struct {
	entryBase
	Arity int
}

// TypeSynEntry is a type-synonym entry in the type scope.
type TypeSynEntry struct {
	entryBase
	Arity   int
	TypeArgs []string
	Body    ir.Type
}

// TypeVarEntry is a bound type-variable entry in the type scope.
type TypeVarEntry struct {
	entryBase
}

// ConEntry is a data-constructor entry in the value scope.
type ConEntry struct {
	entryBase
	Arity             int
	ArgTypes          []ir.Type
	ReturnType        ir.Type
	SmartTargetIdent  string
}

// FuncEntry is a function entry in the value scope.
type FuncEntry struct {
	entryBase
	Arity      int
	TypeArgs   []string
	ArgTypes   []ir.Type
	ReturnType ir.Type
	IsPartial  bool
}

// VarEntry is a regular or decreasing variable entry in the value scope.
type VarEntry struct {
	entryBase
	IsPureVar bool
}

func newBase(scope Scope, source ir.Name, target string) entryBase {
	return entryBase{scope: scope, source: source, target: target}
}

// NewDataEntry constructs a DataEntry.
func NewDataEntry(source ir.Name, target string, arity int) *DataEntry {
	return &DataEntry{newBase(TypeScope, source, target), arity}
}

// NewTypeSynEntry constructs a TypeSynEntry.
func NewTypeSynEntry(source ir.Name, target string, arity int, typeArgs []string, body ir.Type) *TypeSynEntry {
	return &TypeSynEntry{newBase(TypeScope, source, target), arity, typeArgs, body}
}

// NewTypeVarEntry constructs a TypeVarEntry.
func NewTypeVarEntry(source ir.Name, target string) *TypeVarEntry {
	return &TypeVarEntry{newBase(TypeScope, source, target)}
}

// NewConEntry constructs a ConEntry.
func NewConEntry(source ir.Name, target, smartTarget string, arity int, argTypes []ir.Type, returnType ir.Type) *ConEntry {
	return &ConEntry{newBase(ValueScope, source, target), arity, argTypes, returnType, smartTarget}
}

// NewFuncEntry constructs a FuncEntry.
func NewFuncEntry(source ir.Name, target string, arity int, typeArgs []string, argTypes []ir.Type, returnType ir.Type, isPartial bool) *FuncEntry {
	return &FuncEntry{newBase(ValueScope, source, target), arity, typeArgs, argTypes, returnType, isPartial}
}

// NewVarEntry constructs a VarEntry.
func NewVarEntry(source ir.Name, target string, isPureVar bool) *VarEntry {
	return &VarEntry{newBase(ValueScope, source, target), isPureVar}
}
