// Package resolver implements name and type-spec resolution (spec.md
// §4.3): walking type-spec AST and identifier references against locals,
// statics, context vars, compile-time params, and Self. Use-all imports
// are not searched.
//
// Follows a name-resolution-walks-parent-scopes shape with an explicit
// declare/resolve split and visibility checks, generalized from
// scope-chain maps to the Symbol Graph arena (internal/symbols).
package resolver

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// LocalScope is the minimal contract the Resolver needs onto the IR
// Emitter's procedure-local variables, kept as an interface (rather than
// importing internal/emitter directly) so the Emitter can in turn depend
// on the Resolver without a cycle — the same "abstract handle, not
// concrete type" approach spec.md §9 prescribes for the CTE/VM boundary.
type LocalScope interface {
	LookupLocal(name string) (typeId typesystem.TypeId, found bool)
}

// TemplateExpander is the subset of the Template Expander the Resolver
// calls into for the implicit sugar forms and built-in template names
// (spec.md §6), again kept abstract to avoid a resolver<->template import
// cycle (the Expander needs the Resolver to resolve nested type specs).
type TemplateExpander interface {
	ExpandTypeTemplate(name string, args []typesystem.TypeId) (symbols.SymId, error)
}

// Resolver holds the shared, long-lived state every resolution call reads
// (spec.md §9: "wrap [Type Store, interning maps, sym cache] in a Compiler
// context that owns all long-lived allocations; never reach for ambient
// globals").
type Resolver struct {
	Graph    *symbols.Graph
	Types    *typesystem.Store
	Contexts *symbols.ContextStack
	Expander TemplateExpander

	// CurrentChunk and CurrentModule drive the visibility rule
	// (spec.md §4.2).
	CurrentChunk  symbols.SymId
	CurrentModule string

	Locals LocalScope // nil outside a function body

	// Self is the enclosing type symbol, bound while resolving a method
	// body, so identifier resolution can answer `Self` (spec.md §4.3).
	Self symbols.SymId
}

func New(g *symbols.Graph, t *typesystem.Store, ctx *symbols.ContextStack) *Resolver {
	return &Resolver{Graph: g, Types: t, Contexts: ctx}
}

// ResolveSym is the legacy declaration-header path (spec.md §4.3
// resolveSym). It checks visibility only: it returns id unchanged, or
// NotExported when visibility fails. It does not check the arity of
// function refs.
func (r *Resolver) ResolveSym(id symbols.SymId, tok token.Token) (symbols.SymId, *diagnostics.DiagnosticError) {
	sym := r.Graph.Sym(id)
	if !r.Graph.IsVisible(id, r.CurrentModule) {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeNotExported, tok, sym.Name)
	}
	return id, nil
}

// resolveName looks a bare identifier up against, in order: locals,
// bound compile-time parameters (walking HasParentCtx ancestors), Self,
// then the static symbols declared directly under CurrentChunk (spec.md
// §4.3). Use-all imports are not searched.
func (r *Resolver) resolveName(name string, tok token.Token) (ident identResult, err *diagnostics.DiagnosticError) {
	if r.Locals != nil {
		if t, ok := r.Locals.LookupLocal(name); ok {
			return identResult{kind: identLocal, typeId: t}, nil
		}
	}

	if v, ok := r.Contexts.Lookup(name); ok {
		return identResult{kind: identCtParam, ctValue: v}, nil
	}

	if name == "Self" && r.Self != symbols.NullSym {
		return identResult{kind: identSelf, sym: r.Self}, nil
	}

	if id, ok := r.Graph.CacheLookup(r.CurrentChunk, name); ok {
		return identResult{kind: identStatic, sym: id}, nil
	}

	if id, ok := r.Graph.Lookup(r.CurrentChunk, name); ok {
		if !r.Graph.IsVisible(id, r.CurrentModule) {
			return ident, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeNotExported, tok, name)
		}
		r.Graph.CacheStore(r.CurrentChunk, name, id)
		return identResult{kind: identStatic, sym: id}, nil
	}

	return ident, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, tok, name)
}

type identKind int

const (
	identLocal identKind = iota
	identCtParam
	identSelf
	identStatic
)

type identResult struct {
	kind    identKind
	typeId  typesystem.TypeId
	sym     symbols.SymId
	ctValue value.Value
}

// ResolveIdentifier is the public entry point for resolving an
// *ast.Identifier to either a local's type, a bound ct-value, Self, or a
// static Sym.
func (r *Resolver) ResolveIdentifier(n *ast.Identifier) (identResult, *diagnostics.DiagnosticError) {
	return r.resolveName(n.Name, n.Tok())
}

// ResolveStaticSym resolves a bare name against the cross-module sym_cache
// and the current chunk's static symbols only (no locals, no use-all, no
// ct-params) — the piece of resolveName the Emitter needs to turn a call
// expression's callee identifier into a FuncSym, without reaching into
// identResult's unexported fields.
func (r *Resolver) ResolveStaticSym(name string, tok token.Token) (symbols.SymId, *diagnostics.DiagnosticError) {
	if id, ok := r.Graph.CacheLookup(r.CurrentChunk, name); ok {
		return id, nil
	}
	id, ok := r.Graph.Lookup(r.CurrentChunk, name)
	if !ok {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, tok, name)
	}
	if !r.Graph.IsVisible(id, r.CurrentModule) {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeNotExported, tok, name)
	}
	r.Graph.CacheStore(r.CurrentChunk, name, id)
	return id, nil
}

// ResolveCtIdentifier resolves a bare name in compile-time-expression
// position (spec.md §4.4 resolveCtValue): a bound ct-parameter, a type
// symbol folding to a Type value, or a non-overloaded function symbol
// folding to a Func value. Kept here rather than exposing identResult's
// unexported fields, since internal/template calls this without importing
// the resolver's private identifier-resolution machinery.
func (r *Resolver) ResolveCtIdentifier(name string, tok token.Token) (value.Value, *diagnostics.DiagnosticError) {
	if v, ok := r.Contexts.Lookup(name); ok {
		return v.Retain(), nil
	}

	var id symbols.SymId
	var ok bool
	if id, ok = r.Graph.CacheLookup(r.CurrentChunk, name); !ok {
		id, ok = r.Graph.Lookup(r.CurrentChunk, name)
		if !ok {
			return value.Value{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, tok, name)
		}
		if !r.Graph.IsVisible(id, r.CurrentModule) {
			return value.Value{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeNotExported, tok, name)
		}
		r.Graph.CacheStore(r.CurrentChunk, name, id)
	}

	sym := r.Graph.Sym(id)
	switch sym.Kind {
	case symbols.KindFuncSym:
		candidates := r.Graph.FuncSymCandidates(id)
		if len(candidates) != 1 {
			return value.Value{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeAmbiguousSymbol, tok, name)
		}
		return value.NewFunc(int(id)), nil
	default:
		if isTypeSymKind(sym.Kind) {
			return value.NewType(sym.Type), nil
		}
	}
	return value.Value{}, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeExpectedCompileTimeArg, tok)
}

// GetResolvedDistinctSym chains through dotted-name parents (spec.md §4.3
// "name path → chain getResolvedDistinctSym through parents, treating
// missing intermediates as an error"), following Replaces redirects at
// every hop so a re-materialized distinct type is always observed.
func (r *Resolver) GetResolvedDistinctSym(path []string, tok token.Token) (symbols.SymId, *diagnostics.DiagnosticError) {
	if len(path) == 0 {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, tok, "")
	}

	ident, err := r.resolveName(path[0], tok)
	if err != nil {
		return symbols.NullSym, err
	}
	if ident.kind != identStatic && ident.kind != identSelf {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, tok, path[0])
	}
	cur := ident.sym

	for _, part := range path[1:] {
		next, ok := r.Graph.Lookup(cur, part)
		if !ok {
			return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeSymNotFound, tok, part)
		}
		if !r.Graph.IsVisible(next, r.CurrentModule) {
			return symbols.NullSym, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeNotExported, tok, part)
		}
		cur = r.Graph.Sym(next).ID
	}
	return r.Graph.Sym(cur).ID, nil
}
