package symbols

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// Template is a generic type or value definition (spec.md §3). expandTemplate
// memoizes by argument tuple into VariantCache; the first call creates the
// Variant and a forward-declared leaf Sym before resolving it, so
// self-referential templates terminate (spec.md §4.4).
type Template struct {
	ID       TemplateId
	Name     string
	Parent   SymId
	DeclNode ast.Node
	Params   []*ast.TemplateParam
	ParamSig typesystem.FuncSigId // interned (param constraint types) signature

	// VariantCache maps a hashed argument tuple to the memoized Variant.
	// Keyed by hash(args) with a slice of candidates to handle hash
	// collisions via value.DeepEqual, matching expandTemplate's
	// "type-aware deep equality" memoization contract.
	VariantCache map[uint64][]VariantId
}

// FuncTemplate is a generic function (spec.md §3). Parameter-role tagging
// (sema_tparam / sema_infer_tparam) is computed once, at resolution.
type FuncTemplate struct {
	ID           TemplateId
	Name         string
	Parent       SymId
	Params       []*ast.Param
	Body         []ast.Statement
	VariantCache map[uint64][]VariantId
}

// VariantKind distinguishes what a Variant's Leaf field means.
type VariantKind int

const (
	VariantSym VariantKind = iota
	VariantFunc
	VariantCtVal
)

// Variant is one memoized expansion of a Template/FuncTemplate for a
// specific argument tuple (spec.md §3). Variant owns a retained reference
// to each argument value for the compilation lifetime.
type Variant struct {
	ID       VariantId
	Kind     VariantKind
	Template TemplateId
	Args     []value.Value

	LeafSym  SymId  // set when Kind == VariantSym
	LeafFunc FuncId // set when Kind == VariantFunc
	CtVal    value.Value // set when Kind == VariantCtVal

	// UUID correlates this Variant back to diagnostics/trace output: a
	// per-Expander counter label ("variant-%08x") minted on first expansion.
	UUID string
}

// HashArgs computes a simple order-sensitive hash of an argument tuple for
// VariantCache bucketing. Collisions are resolved by value.DeepEqual in
// FindVariant/the template package, so this need not be collision-free.
func HashArgs(args []value.Value) uint64 {
	var h uint64 = 14695981039346656037 // FNV-1a offset basis
	const prime = 1099511628211
	mix := func(x uint64) {
		h ^= x
		h *= prime
	}
	for _, a := range args {
		mix(uint64(a.Tag))
		switch a.Tag {
		case value.TagType:
			mix(uint64(a.TypeVal))
		case value.TagInt:
			mix(uint64(a.Int))
		case value.TagBool:
			if a.Bool {
				mix(1)
			}
		case value.TagString:
			for _, r := range a.Str {
				mix(uint64(r))
			}
		case value.TagFunc:
			mix(uint64(a.FuncSym))
		}
	}
	return h
}
