package resolver

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// ResolveTypeSpecNode walks type-spec AST into a TypeId (spec.md §4.3).
func (r *Resolver) ResolveTypeSpecNode(n ast.TypeSpec) (typesystem.TypeId, *diagnostics.DiagnosticError) {
	switch t := n.(type) {
	case nil, *ast.NilTypeSpec:
		return r.Types.DynType(), nil

	case *ast.NamedTypeSpec:
		sym, err := r.GetResolvedDistinctSym(t.Path, t.Tok())
		if err != nil {
			return typesystem.NullType, err
		}
		s := r.Graph.Sym(sym)
		if s.Type == typesystem.NullType && isTypeSymKind(s.Kind) {
			return typesystem.NullType, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeUnsupported, t.Tok(), "type symbol not yet resolved: "+s.Name)
		}
		return s.Type, nil

	case *ast.SugarTypeSpec:
		elem, err := r.ResolveTypeSpecNode(t.Elem)
		if err != nil {
			return typesystem.NullType, err
		}
		switch t.Kind {
		case ast.SugarPointer:
			return r.Types.GetPointerType(elem), nil
		case ast.SugarRef:
			return r.Types.GetRefType(elem), nil
		case ast.SugarPtrSlice:
			return r.Types.GetPtrSliceType(elem), nil
		case ast.SugarRefSlice:
			return r.Types.GetRefSliceType(elem), nil
		case ast.SugarOption:
			return r.Types.GetOptionType(elem), nil
		}
		return typesystem.NullType, diagnostics.Internal(t.Tok(), "unknown sugar kind")

	case *ast.ArrayTypeSpec:
		elem, err := r.ResolveTypeSpecNode(t.Elem)
		if err != nil {
			return typesystem.NullType, err
		}
		n, cerr := r.resolveArrayLen(t.N)
		if cerr != nil {
			return typesystem.NullType, cerr
		}
		return r.Types.GetArrayType(n, elem), nil

	case *ast.FuncTypeSpec:
		params := make([]typesystem.TypeId, len(t.Params))
		for i, p := range t.Params {
			pt, err := r.ResolveTypeSpecNode(p)
			if err != nil {
				return typesystem.NullType, err
			}
			params[i] = pt
		}
		ret, err := r.ResolveTypeSpecNode(t.Return)
		if err != nil {
			return typesystem.NullType, err
		}
		sig := r.Types.EnsureFuncSig(params, ret)
		if t.Marker == ast.FuncUnionMarker {
			return r.Types.GetFuncUnionType(sig), nil
		}
		return r.Types.GetFuncPtrType(sig), nil

	case *ast.TemplateApplySpec:
		return r.resolveTemplateApply(t)

	default:
		return typesystem.NullType, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeUnsupportedNode, n.Tok(), "type spec")
	}
}

func isTypeSymKind(k symbols.Kind) bool {
	switch k {
	case symbols.KindObjectType, symbols.KindStructType, symbols.KindEnumType,
		symbols.KindTraitType, symbols.KindHostObjType, symbols.KindType,
		symbols.KindDistinctType:
		return true
	}
	return false
}

// resolveArrayLen evaluates an [N]T length expression as a compile-time
// integer. Handles an int literal or an identifier bound to an Int
// ct-parameter; richer compile-time folding goes through the Template
// Expander's resolveCtValue.
func (r *Resolver) resolveArrayLen(n ast.Expression) (int, *diagnostics.DiagnosticError) {
	if lit, ok := n.(*ast.IntLiteral); ok {
		return int(lit.Value), nil
	}
	if ident, ok := n.(*ast.Identifier); ok {
		if v, ok := r.Contexts.Lookup(ident.Name); ok && v.Tag == value.TagInt {
			return int(v.Int), nil
		}
	}
	return 0, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeExpectedCompileTimeArg, n.Tok())
}

func (r *Resolver) resolveTemplateApply(t *ast.TemplateApplySpec) (typesystem.TypeId, *diagnostics.DiagnosticError) {
	if r.Expander == nil {
		return typesystem.NullType, diagnostics.Internal(t.Tok(), "no template expander wired")
	}
	args := make([]typesystem.TypeId, 0, len(t.Args))
	for _, a := range t.Args {
		spec, ok := a.(ast.TypeSpec)
		if !ok {
			return typesystem.NullType, diagnostics.New(diagnostics.PhaseResolve, diagnostics.CodeUnsupportedNode, t.Tok(), "non-type template argument in type position")
		}
		id, err := r.ResolveTypeSpecNode(spec)
		if err != nil {
			return typesystem.NullType, err
		}
		args = append(args, id)
	}
	sym, err := r.Expander.ExpandTypeTemplate(t.Name, args)
	if err != nil {
		return typesystem.NullType, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeSymNotFound, t.Tok(), t.Name)
	}
	return r.Graph.Sym(sym).Type, nil
}
