package template

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/value"
)

// ResolveCtValue is resolveCtValue (spec.md §4.4): folds a simple
// compile-time expression directly, without going through the VM.
// Literals fold to themselves; identifiers resolve against bound
// ct-parameters, type symbols, or non-overloaded function symbols;
// pointer/ref/array type expressions fold to a Type value; `void` folds
// to the void value. `comptime <ident>` has two modes governed by flags
// on the current ResolveContext (see resolveComptimeIdent below).
func (e *Expander) ResolveCtValue(n ast.Node, tok token.Token) (value.Value, *diagnostics.DiagnosticError) {
	switch t := n.(type) {
	case nil:
		return value.NewVoid(), nil

	case *ast.VoidExpr:
		return value.NewVoid(), nil

	case *ast.IntLiteral:
		return value.NewInt(t.Value), nil

	case *ast.FloatLiteral:
		return value.NewFloat(t.Value), nil

	case *ast.BoolLiteral:
		return value.NewBool(t.Value), nil

	case *ast.StringLiteral:
		return value.NewString(t.Value), nil

	case *ast.Identifier:
		return e.Resolver.ResolveCtIdentifier(t.Name, tok)

	case *ast.ComptimeExpr:
		return e.resolveComptimeExpr(t, tok)

	case *ast.PtrExpr:
		inner, err := e.ResolveCtValue(t.Operand, tok)
		if err != nil {
			return value.Value{}, err
		}
		if inner.Tag != value.TagType {
			return value.Value{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeExpectedCompileTimeArg, tok)
		}
		return value.NewType(e.Types.GetPointerType(inner.TypeVal)), nil

	case *ast.RefExpr:
		inner, err := e.ResolveCtValue(t.Operand, tok)
		if err != nil {
			return value.Value{}, err
		}
		if inner.Tag != value.TagType {
			return value.Value{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeExpectedCompileTimeArg, tok)
		}
		return value.NewType(e.Types.GetRefType(inner.TypeVal)), nil

	case ast.TypeSpec:
		id, rerr := e.Resolver.ResolveTypeSpecNode(t)
		if rerr != nil {
			return value.Value{}, rerr
		}
		return value.NewType(id), nil

	default:
		return value.Value{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeExpectedCompileTimeArg, tok)
	}
}

// resolveComptimeExpr implements the two `comptime <ident>` modes
// (spec.md §4.4): when the current ResolveContext has
// ParseCtInferredParams set, a bare identifier operand declares a new
// ct-inferred parameter (bound to a placeholder the Matcher fills in
// later); otherwise (ExpandCtInferredParams, or no special mode) the
// identifier — or any other inner expression — resolves normally.
func (e *Expander) resolveComptimeExpr(c *ast.ComptimeExpr, tok token.Token) (value.Value, *diagnostics.DiagnosticError) {
	if ident, ok := c.Inner.(*ast.Identifier); ok {
		if top := e.Resolver.Contexts.Top(); top != nil && top.ParseCtInferredParams {
			sentinel := value.NewCtPending()
			e.Resolver.Contexts.DeclareInferredParam(ident.Name, sentinel)
			return sentinel, nil
		}
	}
	return e.ResolveCtValue(c.Inner, tok)
}
