package symbols

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/value"
)

// DeclareTemplate reserves a type-level Template (spec.md §4.7: "templates
// are reserved but not instantiated" during the Reserve pass).
func (g *Graph) DeclareTemplate(parent SymId, name string, decl ast.Node, params []*ast.TemplateParam) TemplateId {
	id := TemplateId(len(g.templates))
	g.templates = append(g.templates, Template{
		ID:           id,
		Name:         name,
		Parent:       parent,
		DeclNode:     decl,
		Params:       params,
		VariantCache: make(map[uint64][]VariantId),
	})
	return id
}

// Template returns the Template at id.
func (g *Graph) Template(id TemplateId) *Template { return &g.templates[id] }

// DeclareFuncTemplate reserves a generic function (spec.md §3 FuncTemplate).
func (g *Graph) DeclareFuncTemplate(parent SymId, name string, params []*ast.Param, body []ast.Statement) TemplateId {
	id := TemplateId(len(g.funcTemplates))
	g.funcTemplates = append(g.funcTemplates, FuncTemplate{
		ID:           id,
		Name:         name,
		Parent:       parent,
		Params:       params,
		Body:         body,
		VariantCache: make(map[uint64][]VariantId),
	})
	return id
}

// FuncTemplate returns the FuncTemplate at id.
func (g *Graph) FuncTemplate(id TemplateId) *FuncTemplate { return &g.funcTemplates[id] }

// NewVariant reserves a fresh Variant, retaining each argument value, and
// returns its id. The caller is responsible for inserting it into the
// owning Template/FuncTemplate's VariantCache *before* resolving the leaf,
// so self-referential templates terminate (spec.md §4.4 step 4), then
// filling LeafSym/LeafFunc/CtVal via SetVariant once the leaf exists.
func (g *Graph) NewVariant(kind VariantKind, tmpl TemplateId, args []value.Value, uuid string) VariantId {
	id := VariantId(len(g.variants))
	retained := make([]value.Value, len(args))
	for i, a := range args {
		retained[i] = a.Retain()
	}
	g.variants = append(g.variants, Variant{
		ID:       id,
		Kind:     kind,
		Template: tmpl,
		Args:     retained,
		UUID:     uuid,
	})
	return id
}

// Variant returns the Variant at id.
func (g *Graph) Variant(id VariantId) Variant { return g.variants[id] }

// SetVariant overwrites the Variant at id (used once the leaf Sym/Func/
// value is known).
func (g *Graph) SetVariant(v Variant) { g.variants[v.ID] = v }

// FindVariant looks up args (by type-aware deep equality, spec.md §4.4) in
// tmpl's cache, resolving hash collisions by walking the bucket.
func (g *Graph) FindVariant(cache map[uint64][]VariantId, args []value.Value) (VariantId, bool) {
	h := HashArgs(args)
	for _, candidate := range cache[h] {
		if variantArgsEqual(g.variants[candidate].Args, args) {
			return candidate, true
		}
	}
	return NullVariant, false
}

func variantArgsEqual(a, b []value.Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !value.DeepEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}
