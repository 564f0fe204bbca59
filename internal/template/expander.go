package template

import (
	"fmt"

	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/config"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/resolver"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// LeafResolver resolves a freshly-reserved template-variant leaf Sym's
// body (fields, variants, underlying type...) against the template's
// declaration AST with args bound into a new ResolveContext frame. It is
// supplied by internal/compiler's Declaration Pipeline, which owns the
// per-AST-kind resolution logic (object/struct/enum/distinct) — kept out
// of this package so the Expander stays generic over what a template
// expands to (spec.md §4.4 describes the memoization/termination
// machinery, not the per-kind body resolution).
type LeafResolver func(r *resolver.Resolver, leaf symbols.SymId, tmpl *symbols.Template, args []value.Value) (replacedWith symbols.SymId, err *diagnostics.DiagnosticError)

// CtFuncResolver resolves and emits IR for a freshly-instantiated
// compile-time function's body, leaving fn ready for the VM to call once
// its (out-of-scope) bytecode lowering has run. Also supplied by
// internal/compiler.
type CtFuncResolver func(r *resolver.Resolver, fn symbols.FuncId, tmpl *symbols.FuncTemplate, args []value.Value) *diagnostics.DiagnosticError

// Expander owns template/CTE expansion.
type Expander struct {
	Graph    *symbols.Graph
	Types    *typesystem.Store
	Resolver *resolver.Resolver
	Eval     Evaluator

	MaxDepth int
	depth    int

	// builtinTypeSyms memoizes the ephemeral KindType Sym each built-in
	// template wrapper TypeId is exposed through, since
	// resolver.TemplateExpander.ExpandTypeTemplate must always answer with
	// a SymId even for templates that are "just" a TypeId constructor.
	builtinTypeSyms map[typesystem.TypeId]symbols.SymId

	// byName indexes user-declared templates/func-templates by name,
	// populated by the Declaration Pipeline's reserve pass.
	byName     map[string]symbols.TemplateId
	funcByName map[string]symbols.TemplateId

	ResolveLeaf   LeafResolver
	ResolveCtFunc CtFuncResolver

	nextUUID int
}

func New(g *symbols.Graph, t *typesystem.Store, r *resolver.Resolver, ev Evaluator) *Expander {
	return &Expander{
		Graph:           g,
		Types:           t,
		Resolver:        r,
		Eval:            ev,
		MaxDepth:        config.DefaultMaxTemplateDepth,
		builtinTypeSyms: make(map[typesystem.TypeId]symbols.SymId),
		byName:          make(map[string]symbols.TemplateId),
		funcByName:      make(map[string]symbols.TemplateId),
	}
}

// RegisterTemplate indexes a user-declared type template by name (called
// by the Declaration Pipeline's reserve pass).
func (e *Expander) RegisterTemplate(name string, id symbols.TemplateId) { e.byName[name] = id }

// RegisterFuncTemplate indexes a user-declared function template by name.
func (e *Expander) RegisterFuncTemplate(name string, id symbols.TemplateId) {
	e.funcByName[name] = id
}

func (e *Expander) mintUUID() string {
	e.nextUUID++
	return fmt.Sprintf("variant-%08x", e.nextUUID)
}

// ExpandTypeTemplate implements resolver.TemplateExpander: resolve a
// `Name[args...]` type application to the Sym backing its expansion.
// Built-in template names (spec.md §6) are dispatched directly to the
// Type Store's constructors; everything else goes through the general
// memoized expandTemplate path.
func (e *Expander) ExpandTypeTemplate(name string, args []typesystem.TypeId) (symbols.SymId, error) {
	if id, ok := e.builtinDispatch(name, args); ok {
		return e.wrapBuiltinType(id), nil
	}

	tmplID, ok := e.byName[name]
	if !ok {
		return symbols.NullSym, fmt.Errorf("no such template: %s", name)
	}

	vals := make([]value.Value, len(args))
	for i, a := range args {
		vals[i] = value.NewType(a)
	}
	leaf, derr := e.ExpandTemplate(tmplID, vals, token.Token{})
	if derr != nil {
		return symbols.NullSym, derr
	}
	return leaf, nil
}

func (e *Expander) builtinDispatch(name string, args []typesystem.TypeId) (typesystem.TypeId, bool) {
	switch name {
	case config.TemplatePointer:
		return e.Types.GetPointerType(args[0]), true
	case config.TemplateRef:
		return e.Types.GetRefType(args[0]), true
	case config.TemplatePtrSlice:
		return e.Types.GetPtrSliceType(args[0]), true
	case config.TemplateRefSlice:
		return e.Types.GetRefSliceType(args[0]), true
	case config.TemplateOption:
		return e.Types.GetOptionType(args[0]), true
	case config.TemplateArray:
		return typesystem.NullType, false // requires a non-type length arg, handled by ArrayTypeSpec directly
	case config.TemplateList:
		return e.Types.GetRefSliceType(args[0]), true // List[T] is sugar for a growable RefSlice[T] at this layer
	case config.TemplateFuture:
		return e.Types.GetOptionType(args[0]), true // Future[T] folds to Option[T] pre-scheduling; the VM resolves awaiting
	default:
		return typesystem.NullType, false
	}
}

func (e *Expander) wrapBuiltinType(t typesystem.TypeId) symbols.SymId {
	if id, ok := e.builtinTypeSyms[t]; ok {
		return id
	}
	id := e.Graph.Declare(symbols.NullSym, e.Types.Get(t).Name, symbols.KindType, symbols.NullSym)
	e.Graph.Resolve(id, func(s *symbols.Sym) {
		s.Type = t
		s.Exported = true
	})
	e.builtinTypeSyms[t] = id
	return id
}

// ExpandTemplate is the general memoized expansion entry point
// (spec.md §4.4): hashed lookup in the template's variant_cache; on a
// miss, retain args, flag ct_infer/ct_ref propagation, reserve a leaf sym,
// insert the variant *before* resolving the leaf (so self-referential
// templates terminate), resolve, then update on distinct re-materialization.
func (e *Expander) ExpandTemplate(tmplID symbols.TemplateId, args []value.Value, tok token.Token) (symbols.SymId, *diagnostics.DiagnosticError) {
	tmpl := e.Graph.Template(tmplID)

	if existing, ok := e.Graph.FindVariant(tmpl.VariantCache, args); ok {
		return e.Graph.Sym(e.Graph.Variant(existing).LeafSym).ID, nil
	}

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.MaxDepth {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeCircularExpansion, tok, tmpl.Name)
	}

	if len(args) != len(tmpl.Params) {
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeArgCountMismatch, tok, len(tmpl.Params), len(args))
	}

	variantID := e.Graph.NewVariant(symbols.VariantSym, tmplID, args, e.mintUUID())

	leafKind := leafKindFor(tmpl.DeclNode)
	leaf := e.Graph.Declare(tmpl.Parent, variantName(tmpl.Name, args), leafKind, e.Resolver.CurrentChunk)
	pending := pendingCtFlags(e.Types, args)
	e.Graph.Resolve(leaf, func(s *symbols.Sym) {
		s.VariantBack = variantID
		s.PendingCtFlags = pending
	})

	v := e.Graph.Variant(variantID)
	v.LeafSym = leaf
	e.Graph.SetVariant(v)

	h := symbols.HashArgs(args)
	tmpl.VariantCache[h] = append(tmpl.VariantCache[h], variantID)

	if e.ResolveLeaf != nil {
		replaced, err := e.ResolveLeaf(e.Resolver, leaf, tmpl, args)
		if err != nil {
			return symbols.NullSym, err
		}
		if replaced != symbols.NullSym && replaced != leaf {
			e.Graph.ReplaceWithDistinct(leaf, replaced)
			v := e.Graph.Variant(variantID)
			v.LeafSym = replaced
			e.Graph.SetVariant(v)
			leaf = replaced
		}
	}

	if s := e.Graph.Sym(leaf); s.Type != typesystem.NullType && (pending.CtRef || pending.CtInfer) {
		t := e.Types.Get(s.Type)
		t.Flags.CtRef = t.Flags.CtRef || pending.CtRef
		t.Flags.CtInfer = t.Flags.CtInfer || pending.CtInfer
		e.Types.Set(s.Type, t)
	}

	return e.Graph.Sym(leaf).ID, nil
}

func leafKindFor(decl ast.Node) symbols.Kind {
	switch decl.(type) {
	case *ast.StructDecl:
		return symbols.KindStructType
	case *ast.EnumDecl:
		return symbols.KindEnumType
	case *ast.DistinctDecl:
		return symbols.KindDistinctType
	default:
		return symbols.KindObjectType
	}
}

func variantName(base string, args []value.Value) string {
	out := base + "["
	for i, a := range args {
		if i > 0 {
			out += ","
		}
		out += fmt.Sprintf("%v", a.Tag)
	}
	return out + "]"
}

// pendingCtFlags computes the ct_ref/ct_infer propagation spec.md §4.4
// step 2 describes ("scan arg list: set ct_infer/ct_ref flags on the new
// type if any arg is itself such"). The leaf doesn't have a Type yet in
// the general case (ResolveLeaf assigns one); callers OR this into the
// Type once it exists.
func pendingCtFlags(types *typesystem.Store, args []value.Value) typesystem.Flags {
	var flags typesystem.Flags
	for _, a := range args {
		if a.Tag != value.TagType {
			continue
		}
		t := types.Get(a.TypeVal)
		flags.CtRef = flags.CtRef || t.Flags.CtRef
		flags.CtInfer = flags.CtInfer || t.Flags.CtInfer
	}
	return flags
}
