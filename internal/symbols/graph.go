package symbols

import "github.com/funvibe/funxy/internal/typesystem"

// Graph is the Symbol Graph (spec.md §4.2): an arena owning every Sym,
// Func, Template, FuncTemplate, and Variant for one compilation, plus the
// per-parent name maps and the cross-chunk sym_cache.
type Graph struct {
	syms          []Sym
	funcs         []Func
	templates     []Template
	funcTemplates []FuncTemplate
	variants      []Variant

	// children maps parent -> name -> SymId, the per-parent declaration
	// map spec.md §4.2 describes ("Names live in per-parent maps").
	children map[SymId]map[string]SymId

	// symCache memoizes name -> symbol lookups scoped to the compiling
	// chunk (spec.md §4.2 "sym_cache").
	symCache map[symCacheKey]SymId

	// typeSyms maps a type-kind Sym's assigned TypeId back to the Sym that
	// declared it, so method/field lookup (AccessExpr resolution) can find
	// a type's children without the Type Store itself holding a back-ref
	// (typesystem stays free of a symbols import, per spec.md §9's
	// "structural half only" boundary for the Type Store).
	typeSyms map[typesystem.TypeId]SymId
}

type symCacheKey struct {
	chunk SymId
	name  string
}

// NewGraph creates an empty Graph with slot 0 reserved as NullSym.
func NewGraph() *Graph {
	g := &Graph{
		children: make(map[SymId]map[string]SymId),
		symCache: make(map[symCacheKey]SymId),
		typeSyms: make(map[typesystem.TypeId]SymId),
	}
	g.syms = append(g.syms, Sym{ID: NullSym, Kind: KindPlaceholder})
	g.funcs = append(g.funcs, Func{ID: NullFunc})
	g.templates = append(g.templates, Template{ID: NullTemplate})
	g.funcTemplates = append(g.funcTemplates, FuncTemplate{ID: NullTemplate})
	g.variants = append(g.variants, Variant{ID: NullVariant})
	return g
}

// Sym returns the current (possibly Replaces-redirected) Sym at id.
func (g *Graph) Sym(id SymId) Sym {
	s := g.syms[id]
	for s.Replaces != NullSym {
		s = g.syms[s.Replaces]
	}
	return s
}

// rawSym returns the Sym exactly at id, ignoring Replaces — used by
// resolution code that is itself establishing the redirect.
func (g *Graph) rawSym(id SymId) Sym { return g.syms[id] }

func (g *Graph) setSym(s Sym) { g.syms[s.ID] = s }

// Declare reserves a new Sym identity with name+parent only (spec.md §4.2
// "declare"). Cycles are permitted: the returned id is visible immediately,
// before Resolve ever runs.
func (g *Graph) Declare(parent SymId, name string, kind Kind, chunk SymId) SymId {
	id := SymId(len(g.syms))
	g.syms = append(g.syms, Sym{
		ID:          id,
		Name:        name,
		Kind:        kind,
		Parent:      parent,
		OwningChunk: chunk,
	})
	g.bindChild(parent, name, id)
	return id
}

func (g *Graph) bindChild(parent SymId, name string, id SymId) {
	m, ok := g.children[parent]
	if !ok {
		m = make(map[string]SymId)
		g.children[parent] = m
	}
	m[name] = id
}

// Lookup finds a direct child of parent by name.
func (g *Graph) Lookup(parent SymId, name string) (SymId, bool) {
	m, ok := g.children[parent]
	if !ok {
		return NullSym, false
	}
	id, ok := m[name]
	return id, ok
}

// Resolve fills in a previously-declared Sym's payload. The identity (id)
// never changes; this is an in-place update so existing references to id
// observe the resolved state, satisfying the forward-reference invariant
// (spec.md §3 Sym lifecycle).
func (g *Graph) Resolve(id SymId, fill func(*Sym)) {
	s := g.syms[id]
	fill(&s)
	s.Resolved = true
	g.syms[id] = s

	switch s.Kind {
	case KindObjectType, KindStructType, KindEnumType, KindTraitType, KindHostObjType, KindDistinctType, KindType:
		if s.Type != 0 {
			g.typeSyms[s.Type] = id
		}
	}
}

// TypeSym returns the Sym that declared t, if t is a type-kind Sym's
// assigned TypeId (used to resolve `target.member` against a struct/
// object/trait's method and field children).
func (g *Graph) TypeSym(t typesystem.TypeId) (SymId, bool) {
	id, ok := g.typeSyms[t]
	return id, ok
}

// ReplaceWithDistinct re-materializes a Sym as a new one (the one
// exception spec.md §9 calls out for distinct types). The old id's Replaces
// field is set so every lookup site transparently follows it; old.Parent's
// child map entry is repointed too.
func (g *Graph) ReplaceWithDistinct(old SymId, newID SymId) {
	s := g.syms[old]
	s.Replaces = newID
	g.syms[old] = s
	if m, ok := g.children[s.Parent]; ok {
		m[s.Name] = newID
	}
}

// CacheLookup / CacheStore implement sym_cache (spec.md §4.2), scoped to
// the compiling chunk.
func (g *Graph) CacheLookup(chunk SymId, name string) (SymId, bool) {
	id, ok := g.symCache[symCacheKey{chunk, name}]
	return id, ok
}

func (g *Graph) CacheStore(chunk SymId, name string, id SymId) {
	g.symCache[symCacheKey{chunk, name}] = id
}

// IsVisible implements spec.md §4.2's visibility rule: a symbol is visible
// from module m iff it is exported or its root module equals m.
func (g *Graph) IsVisible(id SymId, fromModule string) bool {
	s := g.Sym(id)
	if s.Exported {
		return true
	}
	return s.Module == fromModule
}

// DeclareFunc reserves a concrete Func and aggregates it into the
// parent+name FuncSym overload set (spec.md §4.2: "multiple Funcs with the
// same parent and base name aggregate into a FuncSym linked list"). Callers
// never see individual Funcs until the Matcher picks one; Resolve must
// still be called on the returned Func's containing Sym structures as
// usual for the body/signature.
func (g *Graph) DeclareFunc(parent SymId, name string, chunk SymId, kind FuncKind) (funcSymID SymId, fn FuncId) {
	fn = FuncId(len(g.funcs))
	g.funcs = append(g.funcs, Func{ID: fn, Kind: kind, Parent: parent})

	existing, ok := g.Lookup(parent, name)
	if ok && g.Sym(existing).Kind == KindFuncSym {
		funcSymID = existing
		head := g.rawSym(existing)
		// append fn at the tail of the overload chain, preserving
		// declaration order (spec.md §4.5 iterates candidates in
		// declaration order).
		if head.FuncHead == NullFunc {
			head.FuncHead = fn
		} else {
			cur := head.FuncHead
			for g.funcs[cur].Next != NullFunc {
				cur = g.funcs[cur].Next
			}
			g.funcs[cur].Next = fn
		}
		g.syms[existing] = head
		return funcSymID, fn
	}

	funcSymID = g.Declare(parent, name, KindFuncSym, chunk)
	s := g.syms[funcSymID]
	s.FuncHead = fn
	g.syms[funcSymID] = s
	return funcSymID, fn
}

// FuncSymCandidates returns every Func in a FuncSym's overload chain, in
// declaration order.
func (g *Graph) FuncSymCandidates(funcSymID SymId) []FuncId {
	s := g.Sym(funcSymID)
	var out []FuncId
	for cur := s.FuncHead; cur != NullFunc; cur = g.funcs[cur].Next {
		out = append(out, cur)
	}
	return out
}

// Func returns the Func at id.
func (g *Graph) Func(id FuncId) Func { return g.funcs[id] }

// SetFunc overwrites the Func at id.
func (g *Graph) SetFunc(f Func) { g.funcs[f.ID] = f }
