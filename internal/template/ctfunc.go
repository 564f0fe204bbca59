package template

import (
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/value"
)

// ExpandCtFuncTemplate is expandCtFuncTemplate (spec.md §4.4): same
// memoization as ExpandTemplate, but the leaf is a compile-time function.
// The caller-supplied ResolveCtFunc performs sema and IR emission for the
// freshly-instantiated function body (bytecode generation from that IR is
// the VM's concern, out of scope here); once fn is callable, the VM is
// invoked through callFunc and the returned Value is retained as the
// variant's materialized value.
func (e *Expander) ExpandCtFuncTemplate(tmplID symbols.TemplateId, args []value.Value, tok token.Token) (value.Value, *diagnostics.DiagnosticError) {
	tmpl := e.Graph.FuncTemplate(tmplID)

	if existing, ok := e.Graph.FindVariant(tmpl.VariantCache, args); ok {
		return e.Graph.Variant(existing).CtVal.Retain(), nil
	}

	e.depth++
	defer func() { e.depth-- }()
	if e.depth > e.MaxDepth {
		return value.Value{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeCircularExpansion, tok, tmpl.Name)
	}
	if len(args) != len(tmpl.Params) {
		return value.Value{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeArgCountMismatch, tok, len(tmpl.Params), len(args))
	}

	variantID := e.Graph.NewVariant(symbols.VariantCtVal, tmplID, args, e.mintUUID())
	h := symbols.HashArgs(args)
	tmpl.VariantCache[h] = append(tmpl.VariantCache[h], variantID)

	var fn symbols.FuncId
	if e.ResolveCtFunc != nil {
		fnDecl, derr := e.reserveCtFuncLeaf(tmplID, variantID)
		if derr != nil {
			return value.Value{}, derr
		}
		fn = fnDecl
		if derr := e.ResolveCtFunc(e.Resolver, fn, tmpl, args); derr != nil {
			return value.Value{}, derr
		}
	}

	if e.Eval == nil {
		return value.Value{}, diagnostics.Internal(tok, "no Evaluator wired for compile-time call")
	}
	result, err := e.Eval.CallFunc(int(fn), args)
	if err != nil {
		return value.Value{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeCtEvalFailed, tok, tmpl.Name, err.Error())
	}

	v := e.Graph.Variant(variantID)
	v.CtVal = result.Retain()
	v.LeafFunc = fn
	e.Graph.SetVariant(v)

	return result, nil
}

func (e *Expander) reserveCtFuncLeaf(tmplID symbols.TemplateId, variantID symbols.VariantId) (symbols.FuncId, *diagnostics.DiagnosticError) {
	tmpl := e.Graph.FuncTemplate(tmplID)
	_, fn := e.Graph.DeclareFunc(tmpl.Parent, tmpl.Name, e.Resolver.CurrentChunk, symbols.FuncTemplateInstance)
	f := e.Graph.Func(fn)
	f.Variant = variantID
	e.Graph.SetFunc(f)
	return fn, nil
}
