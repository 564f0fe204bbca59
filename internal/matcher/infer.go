package matcher

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// inferCtArgs is spec.md §4.5's structural inference: walk the parameter's
// declared type-spec pattern against the argument's resolved type,
// binding ct-parameter names into the current ResolveContext the first
// time they're seen and demanding equality on every subsequent reference.
func (m *Matcher) inferCtArgs(pattern ast.TypeSpec, argT typesystem.TypeId, tok token.Token) *diagnostics.DiagnosticError {
	switch p := pattern.(type) {
	case nil, *ast.NilTypeSpec:
		return nil

	case *ast.NamedTypeSpec:
		if len(p.Path) == 1 {
			return m.bindOrCheckCtParam(p.Path[0], argT, tok)
		}
		sym, err := m.Resolver.GetResolvedDistinctSym(p.Path, tok)
		if err != nil {
			return err
		}
		declared := m.Graph.Sym(sym).Type
		if !m.Types.IsTypeSymCompat(argT, declared) {
			return diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, m.Types.Get(declared).Name, m.Types.Get(argT).Name)
		}
		return nil

	case *ast.SugarTypeSpec:
		at := m.Types.Get(argT)
		var wantKind typesystem.Kind
		switch p.Kind {
		case ast.SugarPointer:
			wantKind = typesystem.KindPointer
		case ast.SugarRef:
			wantKind = typesystem.KindRef
		case ast.SugarPtrSlice:
			wantKind = typesystem.KindPtrSlice
		case ast.SugarRefSlice:
			wantKind = typesystem.KindRefSlice
		case ast.SugarOption:
			wantKind = typesystem.KindOption
		}
		if at.Kind != wantKind {
			return diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, sugarName(p.Kind), at.Kind.String())
		}
		return m.inferCtArgs(p.Elem, at.Elem, tok)

	case *ast.ArrayTypeSpec:
		at := m.Types.Get(argT)
		if at.Kind != typesystem.KindArray {
			return diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, "array", at.Kind.String())
		}
		if lit, ok := p.N.(*ast.IntLiteral); ok && int(lit.Value) != at.Len {
			return diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, "array length mismatch", "")
		}
		if ident, ok := p.N.(*ast.Identifier); ok {
			if berr := m.bindOrCheckCtIntParam(ident.Name, int64(at.Len), tok); berr != nil {
				return berr
			}
		}
		return m.inferCtArgs(p.Elem, at.Elem, tok)

	case *ast.TemplateApplySpec:
		at := m.Types.Get(argT)
		// expectTypeFromTemplate (spec.md §4.5): a one-argument
		// application whose argument is a type spec is inferred against
		// the observed type's Elem. The observed type is not checked to
		// be an expansion of the named template, and applications with
		// any other argument count bind nothing.
		if len(p.Args) == 1 {
			if spec, ok := p.Args[0].(ast.TypeSpec); ok {
				return m.inferCtArgs(spec, at.Elem, tok)
			}
		}
		return nil

	default:
		return nil
	}
}

func (m *Matcher) bindOrCheckCtParam(name string, argT typesystem.TypeId, tok token.Token) *diagnostics.DiagnosticError {
	if existing, ok := m.Resolver.Contexts.LookupInTop(name); ok {
		if existing.Tag != value.TagType || existing.TypeVal != argT {
			return diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, m.Types.Get(existing.TypeVal).Name, m.Types.Get(argT).Name)
		}
		return nil
	}
	m.Resolver.Contexts.Bind(name, value.NewType(argT))
	return nil
}

func (m *Matcher) bindOrCheckCtIntParam(name string, n int64, tok token.Token) *diagnostics.DiagnosticError {
	if existing, ok := m.Resolver.Contexts.LookupInTop(name); ok {
		if existing.Tag != value.TagInt || existing.Int != n {
			return diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, "array length mismatch", "")
		}
		return nil
	}
	m.Resolver.Contexts.Bind(name, value.NewInt(n))
	return nil
}

func sugarName(k ast.SugarKind) string {
	switch k {
	case ast.SugarPointer:
		return "pointer"
	case ast.SugarRef:
		return "ref"
	case ast.SugarPtrSlice:
		return "ptr_slice"
	case ast.SugarRefSlice:
		return "ref_slice"
	case ast.SugarOption:
		return "option"
	default:
		return "sugar"
	}
}
