package symbols

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/typesystem"
)

// Kind enumerates what a Sym represents (spec.md §3).
type Kind int

const (
	KindChunk Kind = iota
	KindPlaceholder
	KindUserVar
	KindHostVar
	KindContextVar
	KindFunc
	KindFuncSym // overload set
	KindTemplate
	KindFuncTemplate
	KindObjectType
	KindStructType
	KindEnumType
	KindEnumMember
	KindTraitType
	KindHostObjType
	KindType
	KindDistinctType
	KindField
	KindTypeAlias
	KindUseAlias
	KindModuleAlias
)

// Sym is one declared name (spec.md §3). Reserved first with name+parent
// only; resolution later fills TypeId and cross-refs. Placeholders are
// never replaced behind a reader's back — the one exception is
// DistinctType re-materialization, which is tracked via Replaces.
type Sym struct {
	ID     SymId
	Name   string
	Kind   Kind
	Parent SymId // NullSym for chunk-level

	// OwningChunk is the chunk this Sym's identity belongs to, used by the
	// visibility rule (spec.md §4.2).
	OwningChunk SymId
	Exported    bool

	// Module is this Sym's root module path, compared against the current
	// module by the visibility rule.
	Module string

	// VariantBack, when non-zero, points back to the Variant that produced
	// this Sym via template expansion (spec.md §3 Sym "optional variant
	// back-ref").
	VariantBack VariantId

	Resolved bool

	Type typesystem.TypeId // for vars/fields/type aliases

	// PendingCtFlags carries ct_ref/ct_infer propagation computed by the
	// Template Expander before Type is known (spec.md §4.4 step 2);
	// ExpandTemplate ORs these into the Type once ResolveLeaf assigns one.
	PendingCtFlags typesystem.Flags

	// FuncHead/FuncNext form the overload-set singly linked list for
	// KindFuncSym (spec.md §4.2 "FuncSym... aggregate into a linked list").
	FuncHead FuncId
	FuncNext SymId // next FuncSym with the same parent+name, if shadowed (rare)

	// Replaces is set when resolution replaced this Sym's identity (only
	// legal for KindDistinctType per spec.md §9): lookups must re-check
	// Replaces and follow it.
	Replaces SymId

	DefinitionNode ast.Node
	DefinitionFile string
}

// Func is a concrete function (spec.md §3).
type FuncKind int

const (
	FuncUser FuncKind = iota
	FuncHost
	FuncUserLambda
	FuncTrait
	FuncTemplateInstance
)

type Func struct {
	ID       FuncId
	Kind     FuncKind
	Parent   SymId
	Sig      typesystem.FuncSigId
	BodyNode ast.Node
	IRStart  int // index into the emitter's instruction stream

	// Variant is set when this Func was produced by expandCtFuncTemplate
	// instantiation.
	Variant VariantId

	// Next chains to the following Func in the same overload set
	// (spec.md §3: "next (overload chain)").
	Next FuncId

	Params []ast.Param // retained for Matcher arity/role inspection
}
