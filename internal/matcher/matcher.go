// Package matcher implements overload resolution and template-argument
// inference (spec.md §4.5): given a call site's argument AST nodes plus a
// constraint (target return type, or "must be compile-time"), select one
// Func or fail with a full formatted candidate list, and produce either a
// runtime call or a folded compile-time value.
//
// Follows an overload-set-iteration-with-merged-diagnostic shape,
// generalized to operate over the Symbol Graph's FuncSym chain instead of
// a scope-local candidate slice.
package matcher

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/resolver"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/template"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// ArgSlot is an opaque IR handle the Emitter hands back for a resolved
// runtime argument expression; the Matcher never inspects it, only
// collects and forwards it into the call node it builds.
type ArgSlot interface{}

// ExprResolver is the subset of the IR Emitter the Matcher calls to
// resolve a call argument as an ordinary runtime expression, target-typed
// when a parameter type is known. Kept abstract so matcher doesn't import
// emitter (emitter already imports resolver; matcher sits beside it).
type ExprResolver interface {
	ResolveExpr(n ast.Expression, target typesystem.TypeId) (ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError)
}

// Evaluator is the subset of the CTE VM boundary a compile-time call needs
// once argument matching succeeds (spec.md §4.5: "it calls the
// instantiated function via the VM and packages the result").
type Evaluator interface {
	CallFunc(fn int, args []value.Value) (value.Value, error)
}

// Matcher owns overload resolution.
type Matcher struct {
	Graph    *symbols.Graph
	Types    *typesystem.Store
	Resolver *resolver.Resolver
	Template *template.Expander
	Exprs    ExprResolver
	Eval     Evaluator
}

func New(g *symbols.Graph, t *typesystem.Store, r *resolver.Resolver, tmpl *template.Expander, exprs ExprResolver, ev Evaluator) *Matcher {
	return &Matcher{Graph: g, Types: t, Resolver: r, Template: tmpl, Exprs: exprs, Eval: ev}
}

// Result is what a successful match produces: either a runtime call
// (ArgSlots/ReturnType/DynCall) or a folded compile-time value (CtVal).
type Result struct {
	Func       symbols.FuncId
	ArgSlots   []ArgSlot
	ReturnType typesystem.TypeId
	DynCall    bool

	IsCt  bool
	CtVal value.Value
}

// MatchFuncSym is matchFuncSym (spec.md §4.5): single-candidate overload
// sets delegate straight to matchFunc; multi-candidate sets iterate in
// declaration order via matchOverloadedFunc, returning the first success
// or a merged IncompatCall diagnostic carrying every candidate's signature.
func (m *Matcher) MatchFuncSym(funcSymID symbols.SymId, argNodes []ast.Expression, cstr typesystem.TypeId, ctCall bool, tok token.Token) (Result, *diagnostics.DiagnosticError) {
	candidates := m.Graph.FuncSymCandidates(funcSymID)
	name := m.Graph.Sym(funcSymID).Name
	if len(candidates) == 0 {
		return Result{}, diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeSymNotFound, tok, name)
	}

	if len(candidates) == 1 {
		res, err := m.matchFunc(candidates[0], argNodes, cstr, ctCall, tok)
		if err != nil {
			return Result{}, err
		}
		return res, nil
	}

	for _, fn := range candidates {
		res, err := m.matchOverloadedFunc(fn, argNodes, cstr, ctCall, tok)
		if err == nil {
			return res, nil
		}
	}

	candStrs := make([]string, 0, len(candidates))
	for _, fn := range candidates {
		f := m.Graph.Func(fn)
		candStrs = append(candStrs, m.Types.FormatSig(name, f.Sig))
	}
	return Result{}, diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatCall, tok, name, "").WithCandidates(candStrs)
}

// matchFunc handles the single-candidate case: its diagnostic surfaces
// directly, unmerged (spec.md §4.5 step 1).
func (m *Matcher) matchFunc(fn symbols.FuncId, argNodes []ast.Expression, cstr typesystem.TypeId, ctCall bool, tok token.Token) (Result, *diagnostics.DiagnosticError) {
	return m.matchAgainst(fn, argNodes, cstr, ctCall, tok, false)
}

// matchOverloadedFunc is the per-candidate attempt inside an overload set
// (spec.md §4.5 step 2); failures here are swallowed by the caller and
// merged into one IncompatCall diagnostic.
func (m *Matcher) matchOverloadedFunc(fn symbols.FuncId, argNodes []ast.Expression, cstr typesystem.TypeId, ctCall bool, tok token.Token) (Result, *diagnostics.DiagnosticError) {
	return m.matchAgainst(fn, argNodes, cstr, ctCall, tok, true)
}

func (m *Matcher) matchAgainst(fn symbols.FuncId, argNodes []ast.Expression, cstr typesystem.TypeId, ctCall bool, tok token.Token, withinOverloadSet bool) (Result, *diagnostics.DiagnosticError) {
	f := m.Graph.Func(fn)
	sig := m.Types.Sig(f.Sig)

	if len(argNodes) != len(sig.Params) {
		return Result{}, diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatCall, tok, m.Graph.Sym(f.Parent).Name, "")
	}

	m.Resolver.Contexts.Push(&symbols.ResolveContext{Origin: symbols.OriginFunc, HasParentCtx: true})
	defer m.Resolver.Contexts.Pop()

	slots := make([]ArgSlot, len(argNodes))
	ctVals := make([]value.Value, len(argNodes))
	dynAccepted := false

	for i, argNode := range argNodes {
		paramType := sig.Params[i]
		role := ast.ParamOrdinary
		if i < len(f.Params) {
			role = f.Params[i].Sema
		}

		switch {
		case role == ast.ParamTemplate || ctCall:
			v, err := m.matchTemplateArg(argNode, paramType, tok)
			if err != nil {
				return Result{}, err
			}
			ctVals[i] = v

		case role == ast.ParamInferTemplate:
			slot, argT, err := m.Exprs.ResolveExpr(argNode, typesystem.NullType)
			if err != nil {
				return Result{}, err
			}
			if i < len(f.Params) {
				if ierr := m.inferCtArgs(f.Params[i].Type, argT, tok); ierr != nil {
					return Result{}, ierr
				}
			}
			slots[i] = slot

		default:
			slot, argT, err := m.matchArg(argNode, paramType, tok)
			if err != nil {
				return Result{}, err
			}
			if argT == m.Types.DynType() || argT == m.Types.AnyType() {
				dynAccepted = true
			}
			slots[i] = slot
		}
	}

	if !m.isValidReturnType(sig.Return, cstr) {
		return Result{}, diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, m.Types.Get(cstr).Name, m.Types.Get(sig.Return).Name)
	}

	if ctCall {
		if m.Eval == nil {
			return Result{}, diagnostics.Internal(tok, "no Evaluator wired for compile-time call")
		}
		result, err := m.Eval.CallFunc(int(fn), ctVals)
		if err != nil {
			return Result{}, diagnostics.New(diagnostics.PhaseTemplate, diagnostics.CodeCtEvalFailed, tok, m.Graph.Sym(f.Parent).Name, err.Error())
		}
		return Result{Func: fn, IsCt: true, CtVal: result, ReturnType: sig.Return}, nil
	}

	return Result{
		Func:       fn,
		ArgSlots:   slots,
		ReturnType: sig.Return,
		DynCall:    withinOverloadSet && dynAccepted,
	}, nil
}

// matchArg is the "otherwise" row of spec.md §4.5's per-argument table:
// resolve with the target type, accept on IsTypeSymCompat or Dyn/Any.
func (m *Matcher) matchArg(n ast.Expression, paramType typesystem.TypeId, tok token.Token) (ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	slot, argT, err := m.Exprs.ResolveExpr(n, paramType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	if argT == m.Types.DynType() || argT == m.Types.AnyType() {
		return slot, argT, nil
	}
	if !m.Types.IsTypeSymCompat(argT, paramType) {
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, m.Types.Get(paramType).Name, m.Types.Get(argT).Name)
	}
	return slot, argT, nil
}

// matchTemplateArg is the template-parameter row of spec.md §4.5's table:
// the argument must fold via resolveCtValue, then type-checks against the
// parameter's declared constraint.
func (m *Matcher) matchTemplateArg(n ast.Expression, paramType typesystem.TypeId, tok token.Token) (value.Value, *diagnostics.DiagnosticError) {
	v, err := m.Template.ResolveCtValue(n, tok)
	if err != nil {
		return value.Value{}, err
	}
	if v.Tag == value.TagType && paramType != typesystem.NullType {
		if !m.Types.IsTypeSymCompat(v.TypeVal, paramType) {
			return value.Value{}, diagnostics.New(diagnostics.PhaseMatch, diagnostics.CodeIncompatType, tok, m.Types.Get(paramType).Name, m.Types.Get(v.TypeVal).Name)
		}
	}
	return v, nil
}

// isValidReturnType implements spec.md §4.5's post-match return-type check:
// no constraint always passes; otherwise the function's return type must
// be compatible with the caller's target.
func (m *Matcher) isValidReturnType(ret, cstr typesystem.TypeId) bool {
	if cstr == typesystem.NullType {
		return true
	}
	return m.Types.IsTypeSymCompat(ret, cstr)
}
