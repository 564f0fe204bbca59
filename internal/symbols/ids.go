// Package symbols is the Symbol Graph (spec.md §4.2): per-chunk trees of
// declared Syms, a cross-module sym_cache, and a stack of scoped
// ResolveContexts carrying compile-time parameter bindings.
//
// Follows a declare-then-resolve shape (a prelude singleton, per-parent
// name maps) but generalized from maps-of-Symbol-values to an arena of
// SymId-addressed Syms, per spec.md §9's "forward-declared symbols for
// cycles... arena
// with stable identity" mandate: a placeholder Sym referenced before
// resolution must remain the same Sym after resolution, which a map
// keyed by name and overwritten on resolve cannot guarantee once other
// code has already captured the old value.
package symbols

// SymId is a stable handle into the Graph's Sym arena.
type SymId int

// NullSym is the reserved zero handle.
const NullSym SymId = 0

// TemplateId, VariantId, FuncId are the analogous handles for Templates,
// Variants, and Funcs (spec.md §3).
type TemplateId int
type VariantId int
type FuncId int

const (
	NullTemplate TemplateId = 0
	NullVariant  VariantId  = 0
	NullFunc     FuncId     = 0
)
