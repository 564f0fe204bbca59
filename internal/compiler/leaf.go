package compiler

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/resolver"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// resolveTemplateLeaf is the Declaration Pipeline's template.LeafResolver
// (spec.md §4.4 step 3): given a freshly-reserved leaf Sym and the bound
// argument tuple, resolve the template's declaration body the same way
// AnalyzeHeaders resolves an ordinary ObjectDecl/StructDecl/EnumDecl/
// DistinctDecl, except against a ResolveContext frame binding each
// template parameter name to its argument value so field/variant type
// specs can reference them.
func (c *Compiler) resolveTemplateLeaf(r *resolver.Resolver, leaf symbols.SymId, tmpl *symbols.Template, args []value.Value) (symbols.SymId, *diagnostics.DiagnosticError) {
	decl, ok := tmpl.DeclNode.(*ast.TemplateDecl)
	if !ok || decl.TypeBody == nil {
		return symbols.NullSym, nil
	}

	ctParams := make(map[string]value.Value, len(tmpl.Params))
	for i, p := range tmpl.Params {
		if i < len(args) {
			ctParams[p.Name] = args[i]
		}
	}
	r.Contexts.Push(&symbols.ResolveContext{CtParams: ctParams, Origin: symbols.OriginSym})
	defer r.Contexts.Pop()

	switch body := decl.TypeBody.(type) {
	case *ast.ObjectDecl:
		return leaf, c.resolveVariantFields(leaf, typesystem.KindObject, decl.Name, body.Fields)
	case *ast.StructDecl:
		return leaf, c.resolveVariantFields(leaf, typesystem.KindStruct, decl.Name, body.Fields)
	case *ast.EnumDecl:
		return leaf, c.resolveVariantEnum(leaf, decl.Name, body)
	case *ast.DistinctDecl:
		return leaf, c.resolveVariantDistinct(leaf, decl.Name, body)
	default:
		return symbols.NullSym, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeUnsupportedNode, decl.Tok(), "template body")
	}
}

func (c *Compiler) resolveVariantFields(leaf symbols.SymId, tkind typesystem.Kind, name string, fields []*ast.Field) *diagnostics.DiagnosticError {
	out := make([]typesystem.Field, len(fields))
	for i, f := range fields {
		t, err := c.Resolver.ResolveTypeSpecNode(f.Type)
		if err != nil {
			return err
		}
		out[i] = typesystem.Field{Name: f.Name, Type: t}
	}
	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: tkind, Name: name, Fields: out})
	c.Graph.Resolve(leaf, func(s *symbols.Sym) { s.Type = id })
	return nil
}

func (c *Compiler) resolveVariantEnum(leaf symbols.SymId, name string, d *ast.EnumDecl) *diagnostics.DiagnosticError {
	variants := make([]typesystem.EnumVariant, len(d.Variants))
	for i, v := range d.Variants {
		payload := typesystem.NullType
		if v.Payload != nil {
			t, err := c.Resolver.ResolveTypeSpecNode(v.Payload)
			if err != nil {
				return err
			}
			payload = t
		}
		variants[i] = typesystem.EnumVariant{Name: v.Name, Payload: payload}
	}
	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: typesystem.KindEnum, Name: name, Variants: variants, Choice: d.Choice})
	c.Graph.Resolve(leaf, func(s *symbols.Sym) { s.Type = id })
	return nil
}

func (c *Compiler) resolveVariantDistinct(leaf symbols.SymId, name string, d *ast.DistinctDecl) *diagnostics.DiagnosticError {
	under, err := c.Resolver.ResolveTypeSpecNode(d.Underlying)
	if err != nil {
		return err
	}
	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: typesystem.KindDistinct, Name: name, Elem: under})
	c.Graph.Resolve(leaf, func(s *symbols.Sym) { s.Type = id })
	return nil
}

// resolveCtFuncLeaf is the Declaration Pipeline's template.CtFuncResolver
// (spec.md §4.4 expandCtFuncTemplate): resolves the instantiated function's
// signature and lowers its body to IR exactly as an ordinary FuncDecl body
// is in AnalyzeBodies, leaving fn ready for ExpandCtFuncTemplate's
// subsequent Eval.CallFunc.
func (c *Compiler) resolveCtFuncLeaf(r *resolver.Resolver, fn symbols.FuncId, tmpl *symbols.FuncTemplate, args []value.Value) *diagnostics.DiagnosticError {
	sig, err := c.paramSig(tmpl.Params, nil)
	if err != nil {
		return err
	}
	f := c.Graph.Func(fn)
	f.Sig = sig
	f.Params = paramsOf(tmpl.Params)
	c.Graph.SetFunc(f)

	sigInfo := c.Types.Sig(sig)
	proc := c.Emitter.EnterProcedure()
	names := make([]string, len(tmpl.Params))
	for i, p := range tmpl.Params {
		names[i] = p.Name
	}
	stmts, berr := c.Emitter.EmitFuncBody(proc, names, sigInfo.Params, tmpl.Body)
	c.Emitter.LeaveProcedure()
	if berr != nil {
		return berr
	}
	c.FuncBodies[fn] = stmts
	return nil
}
