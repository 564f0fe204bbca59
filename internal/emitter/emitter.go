package emitter

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/matcher"
	"github.com/funvibe/funxy/internal/resolver"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/template"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// Emitter lowers resolved AST into the IR node tree (spec.md §4.6),
// delegating identifier/type lookups to the Resolver and call resolution to
// the Matcher. One Emitter is shared across a whole chunk's compilation;
// EnterProcedure/LeaveProcedure track which function body is currently
// being lowered.
type Emitter struct {
	Graph    *symbols.Graph
	Types    *typesystem.Store
	Resolver *resolver.Resolver
	Matcher  *matcher.Matcher
	Template *template.Expander

	cur *Procedure
}

func New(g *symbols.Graph, t *typesystem.Store, r *resolver.Resolver, m *matcher.Matcher, tmpl *template.Expander) *Emitter {
	return &Emitter{Graph: g, Types: t, Resolver: r, Matcher: m, Template: tmpl}
}

// EnterProcedure pushes a new Procedure (a function/lambda body), wiring it
// as both the Emitter's current frame and the Resolver's local-scope view.
func (e *Emitter) EnterProcedure() *Procedure {
	p := &Procedure{Parent: e.cur}
	e.cur = p
	e.Resolver.Locals = p
	return p
}

// LeaveProcedure pops back to the enclosing Procedure (nil at chunk level),
// restoring the Resolver's local-scope view.
func (e *Emitter) LeaveProcedure() *Procedure {
	done := e.cur
	e.cur = e.cur.Parent
	if e.cur != nil {
		e.Resolver.Locals = e.cur
	} else {
		e.Resolver.Locals = nil
	}
	return done
}

// ResolveExpr implements matcher.ExprResolver: lower n to an IR node, typed
// against target when a parameter/return constraint is known (NullType for
// none). The returned ArgSlot is always an IRExpr, opaque to the Matcher.
func (e *Emitter) ResolveExpr(n ast.Expression, target typesystem.TypeId) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	switch t := n.(type) {
	case nil:
		// A nil argNode is how resolveCall/callMethod represents the
		// receiver slot of a method call: Matcher still walks it through
		// matchArg's IsTypeSymCompat check, so honor target rather than
		// defaulting to Dyn. The caller replaces this placeholder with the
		// real receiver IR immediately after matching succeeds.
		ty := target
		if ty == typesystem.NullType {
			ty = e.Types.DynType()
		}
		return &LiteralExpr{base: base{ty}, Value: value.NewVoid()}, ty, nil

	case *ast.VoidExpr:
		return &LiteralExpr{base: base{e.Types.DynType()}, Value: value.NewVoid()}, e.Types.DynType(), nil

	case *ast.IntLiteral:
		ty := e.intLiteralType(target)
		return &LiteralExpr{base: base{ty}, Value: value.NewInt(t.Value)}, ty, nil

	case *ast.FloatLiteral:
		ty := e.primByName("Float")
		return &LiteralExpr{base: base{ty}, Value: value.NewFloat(t.Value)}, ty, nil

	case *ast.BoolLiteral:
		ty := e.primByName("Bool")
		return &LiteralExpr{base: base{ty}, Value: value.NewBool(t.Value)}, ty, nil

	case *ast.StringLiteral:
		ty := e.primByName("String")
		return &LiteralExpr{base: base{ty}, Value: value.NewString(t.Value)}, ty, nil

	case *ast.Identifier:
		return e.resolveIdentifier(t)

	case *ast.SelfExpr:
		if e.Resolver.Self == symbols.NullSym {
			return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, t.Tok(), "Self")
		}
		ty := e.Graph.Sym(e.Resolver.Self).Type
		return &SelfRefExpr{base{ty}}, ty, nil

	case *ast.AccessExpr:
		return e.resolveAccess(t)

	case *ast.AssignExpr:
		return e.resolveAssign(t)

	case *ast.CallExpr:
		return e.resolveCall(t, target)

	case *ast.BinExpr:
		return e.resolveBin(t)

	case *ast.UnaryExpr:
		return e.resolveUnary(t)

	case *ast.ArrayExprNode:
		return e.resolveArray(t, target)

	case *ast.InitLit:
		return e.resolveInit(t, target)

	case *ast.InitExpr:
		return e.resolveInitNamed(t)

	case *ast.UnwrapExpr:
		inner, innerT, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		elem, ok := e.Types.DerefOption(innerT)
		if !ok {
			elem = innerT
		}
		return &UnwrapExpr{base{elem}, inner.(IRExpr)}, elem, nil

	case *ast.UnwrapOrExpr:
		inner, innerT, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		elem, ok := e.Types.DerefOption(innerT)
		if !ok {
			elem = innerT
		}
		def, _, err := e.ResolveExpr(t.Default, elem)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &UnwrapOrExpr{base{elem}, inner.(IRExpr), def.(IRExpr)}, elem, nil

	case *ast.UnwrapChoiceExpr:
		inner, innerT, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &UnwrapChoiceExpr{base{innerT}, inner.(IRExpr), t.Variant}, innerT, nil

	case *ast.CastExpr:
		inner, _, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		to, terr := e.Resolver.ResolveTypeSpecNode(t.Target)
		if terr != nil {
			return nil, typesystem.NullType, terr
		}
		return &CastExpr{base{to}, inner.(IRExpr)}, to, nil

	case *ast.RangeExpr:
		lo, loT, err := e.ResolveExpr(t.Lo, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		hi, _, err := e.ResolveExpr(t.Hi, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &RangeExpr{base{loT}, lo.(IRExpr), hi.(IRExpr)}, loT, nil

	case *ast.DerefExpr:
		inner, innerT, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		elem := e.Types.Get(innerT).Elem
		return &DerefExpr{base{elem}, inner.(IRExpr)}, elem, nil

	case *ast.RefExpr:
		inner, innerT, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		ty := e.Types.GetRefType(innerT)
		return &RefExpr{base{ty}, inner.(IRExpr)}, ty, nil

	case *ast.PtrExpr:
		inner, innerT, err := e.ResolveExpr(t.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		ty := e.Types.GetPointerType(innerT)
		return &PtrExpr{base{ty}, inner.(IRExpr)}, ty, nil

	case *ast.ComptimeExpr:
		v, err := e.Template.ResolveCtValue(t, t.Tok())
		if err != nil {
			return nil, typesystem.NullType, err
		}
		ty := e.ctValueType(v)
		return &LiteralExpr{base{ty}, v}, ty, nil

	case *ast.IfExprNode:
		return e.resolveIfExpr(t, target)

	case *ast.SwitchExprNode:
		return e.resolveSwitchExpr(t, target)

	case *ast.TryExprNode:
		inner, innerT, err := e.ResolveExpr(t.Operand, target)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &TryExpr{base{innerT}, inner.(IRExpr)}, innerT, nil

	case *ast.CoinitExpr:
		call, callT, err := e.resolveCall(t.Call, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &CoinitExpr{base{callT}, call.(IRExpr).(*CallExpr)}, callT, nil

	case *ast.CoyieldExpr:
		val, valT, err := e.ResolveExpr(t.Value, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &CoyieldExpr{base{valT}, val.(IRExpr)}, valT, nil

	case *ast.CoresumeExpr:
		co, _, err := e.ResolveExpr(t.Coroutine, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		arg, argT, err := e.ResolveExpr(t.Arg, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &CoresumeExpr{base{argT}, co.(IRExpr), arg.(IRExpr)}, argT, nil

	case *ast.LambdaExpr:
		return e.resolveLambda(t.Params, []ast.Statement{&ast.ExprStmt{X: t.Body}}, t.Tok())

	case *ast.LambdaMulti:
		return e.resolveLambda(t.Params, t.Body, t.Tok())

	default:
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeUnsupportedNode, n.Tok(), "expression")
	}
}

func (e *Emitter) primByName(name string) typesystem.TypeId {
	for id := typesystem.TypeId(1); int(id) < e.Types.Len(); id++ {
		t := e.Types.Get(id)
		if t.Kind == typesystem.KindPrimitive && t.Name == name {
			return id
		}
	}
	return e.Types.DynType()
}

// intLiteralType prefers the caller's target when it's a primitive integer
// type (so `1` typed against a narrower host integer keeps that type),
// falling back to the default Int primitive otherwise.
func (e *Emitter) intLiteralType(target typesystem.TypeId) typesystem.TypeId {
	if target != typesystem.NullType && e.Types.Get(target).Kind == typesystem.KindPrimitive {
		return target
	}
	return e.primByName("Int")
}

func (e *Emitter) ctValueType(v value.Value) typesystem.TypeId {
	switch v.Tag {
	case value.TagType:
		return e.primByName("Type")
	case value.TagInt:
		return e.primByName("Int")
	case value.TagFloat:
		return e.primByName("Float")
	case value.TagBool:
		return e.primByName("Bool")
	case value.TagString:
		return e.primByName("String")
	default:
		return e.Types.DynType()
	}
}

// resolveIdentifier implements the identifier half of spec.md §4.3's
// resolveName, directly against Resolver state rather than through
// identResult (unexported outside the resolver package), then lowers each
// outcome to its IR node.
func (e *Emitter) resolveIdentifier(n *ast.Identifier) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	if e.cur != nil {
		if t, ok := e.cur.LookupLocal(n.Name); ok {
			if idx, ct, ok := e.cur.captureIndex(n.Name); ok {
				return &CaptureRefExpr{base{ct}, idx}, ct, nil
			}
			_, slot, _ := e.cur.lookupOwn(n.Name)
			return &LocalRefExpr{base{t}, slot}, t, nil
		}
	}

	if v, ok := e.Resolver.Contexts.Lookup(n.Name); ok {
		ty := e.ctValueType(v)
		return &LiteralExpr{base{ty}, v.Retain()}, ty, nil
	}

	if n.Name == "Self" && e.Resolver.Self != symbols.NullSym {
		ty := e.Graph.Sym(e.Resolver.Self).Type
		return &SelfRefExpr{base{ty}}, ty, nil
	}

	sym, err := e.Resolver.ResolveStaticSym(n.Name, n.Tok())
	if err != nil {
		return nil, typesystem.NullType, err
	}
	s := e.Graph.Sym(sym)
	return &StaticRefExpr{base{s.Type}, sym}, s.Type, nil
}

// resolveAccess implements `target.member` (spec.md §4.6): if the target's
// type is a type-kind Sym (via Graph.TypeSym), look member up among its
// declared children — a KindField reads a struct/object field, a
// KindFuncSym is left for resolveCall to dispatch as a method call.
func (e *Emitter) resolveAccess(n *ast.AccessExpr) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	target, targetT, err := e.ResolveExpr(n.Target, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	ownerSym, ok := e.Graph.TypeSym(targetT)
	if !ok {
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, n.Tok(), n.Member)
	}
	child, ok := e.Graph.Lookup(ownerSym, n.Member)
	if !ok {
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, n.Tok(), n.Member)
	}
	s := e.Graph.Sym(child)
	return &FieldExpr{base{s.Type}, target.(IRExpr), n.Member}, s.Type, nil
}

// resolveAssign lowers `target = value` (ast.AssignExpr): the target is
// resolved exactly like an ordinary read (through ResolveExpr), and its
// resulting IR node becomes the lvalue every backend (bytecode generation
// is out of scope here) would dispatch on by concrete type.
func (e *Emitter) resolveAssign(n *ast.AssignExpr) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	lhs, lhsT, err := e.ResolveExpr(n.Target, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	switch lhs.(type) {
	case *LocalRefExpr, *CaptureRefExpr, *StaticRefExpr, *FieldExpr:
	default:
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeExpectedAddressable, n.Tok())
	}
	rhs, _, err := e.ResolveExpr(n.Value, lhsT)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &AssignExpr{base{lhsT}, lhs.(IRExpr), rhs.(IRExpr)}, lhsT, nil
}

// resolveMethodFuncSym resolves `target.method` for a call site, returning
// the receiver IR, the receiver's type, and the FuncSym Sym the call should
// match against.
func (e *Emitter) resolveMethodFuncSym(n *ast.AccessExpr) (IRExpr, typesystem.TypeId, symbols.SymId, *diagnostics.DiagnosticError) {
	target, targetT, err := e.ResolveExpr(n.Target, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, symbols.NullSym, err
	}
	ownerSym, ok := e.Graph.TypeSym(targetT)
	if !ok {
		return nil, typesystem.NullType, symbols.NullSym, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, n.Tok(), n.Member)
	}
	child, ok := e.Graph.Lookup(ownerSym, n.Member)
	if !ok {
		return nil, typesystem.NullType, symbols.NullSym, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, n.Tok(), n.Member)
	}
	return target.(IRExpr), targetT, child, nil
}

// callMethod resolves a no-syntax method call against an already-lowered
// receiver (used by the for_iter desugaring's hidden `.next()` call, which
// has no ast.AccessExpr of its own to resolve).
func (e *Emitter) callMethod(recv IRExpr, recvType typesystem.TypeId, member string, tok token.Token) (*CallExpr, typesystem.TypeId, *diagnostics.DiagnosticError) {
	ownerSym, ok := e.Graph.TypeSym(recvType)
	if !ok {
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, tok, member)
	}
	funcSymID, ok := e.Graph.Lookup(ownerSym, member)
	if !ok {
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeSymNotFound, tok, member)
	}
	result, err := e.Matcher.MatchFuncSym(funcSymID, []ast.Expression{nil}, typesystem.NullType, false, tok)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	args := []IRExpr{recv}
	call := &CallExpr{base: base{result.ReturnType}, Func: result.Func, FuncSym: funcSymID, Args: args, DynCall: result.DynCall}
	return call, result.ReturnType, nil
}

// resolveCall implements spec.md §4.5's call-site entry point: resolve the
// callee to a FuncSym (plain identifier, or `target.method`), then delegate
// argument matching to the Matcher. A receiver for a method call is
// prepended to the argument list as its first Func parameter (spec.md
// glossary: methods desugar to a leading Self/receiver parameter).
func (e *Emitter) resolveCall(n *ast.CallExpr, cstr typesystem.TypeId) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	var funcSymID symbols.SymId
	var receiver IRExpr
	argNodes := n.Args

	switch callee := n.Callee.(type) {
	case *ast.Identifier:
		sym, err := e.Resolver.ResolveStaticSym(callee.Name, callee.Tok())
		if err != nil {
			return nil, typesystem.NullType, err
		}
		funcSymID = sym

	case *ast.AccessExpr:
		recv, _, sym, err := e.resolveMethodFuncSym(callee)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		receiver = recv
		funcSymID = sym

	default:
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeUnsupportedNode, n.Tok(), "call target")
	}

	if n.ReturnCst != nil {
		rc, err := e.Resolver.ResolveTypeSpecNode(n.ReturnCst)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		cstr = rc
	}

	if receiver != nil {
		argNodes = append([]ast.Expression{nil}, argNodes...)
	}

	result, err := e.Matcher.MatchFuncSym(funcSymID, argNodes, cstr, n.CtCall, n.Tok())
	if err != nil {
		return nil, typesystem.NullType, err
	}

	if result.IsCt {
		return &LiteralExpr{base{result.ReturnType}, result.CtVal}, result.ReturnType, nil
	}

	args := make([]IRExpr, len(result.ArgSlots))
	for i, s := range result.ArgSlots {
		if i == 0 && receiver != nil {
			args[i] = receiver
			continue
		}
		args[i] = s.(IRExpr)
	}

	call := &CallExpr{
		base:    base{result.ReturnType},
		Func:    result.Func,
		FuncSym: funcSymID,
		Args:    args,
		DynCall: result.DynCall,
	}
	return call, result.ReturnType, nil
}

func (e *Emitter) resolveBin(n *ast.BinExpr) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	left, leftT, err := e.ResolveExpr(n.Left, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	right, _, err := e.ResolveExpr(n.Right, leftT)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	resT := leftT
	switch n.Op {
	case ast.OpEq, ast.OpNe, ast.OpLt, ast.OpLe, ast.OpGt, ast.OpGe, ast.OpAnd, ast.OpOr:
		resT = e.primByName("Bool")
	}
	return &BinExpr{base{resT}, n.Op, left.(IRExpr), right.(IRExpr)}, resT, nil
}

func (e *Emitter) resolveUnary(n *ast.UnaryExpr) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	operand, operandT, err := e.ResolveExpr(n.Operand, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	resT := operandT
	if n.Op == ast.OpNot {
		resT = e.primByName("Bool")
	}
	return &UnaryExpr{base{resT}, n.Op, operand.(IRExpr)}, resT, nil
}

func (e *Emitter) resolveArray(n *ast.ArrayExprNode, target typesystem.TypeId) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	elemTarget := typesystem.NullType
	if target != typesystem.NullType {
		elemTarget = e.Types.Get(target).Elem
	}
	elems := make([]IRExpr, len(n.Elements))
	var elemT typesystem.TypeId
	for i, el := range n.Elements {
		ir, t, err := e.ResolveExpr(el, elemTarget)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		elems[i] = ir.(IRExpr)
		elemT = t
	}
	ty := e.Types.GetArrayType(len(elems), elemT)
	return &ArrayExpr{base{ty}, elems}, ty, nil
}

func (e *Emitter) resolveInitNamed(n *ast.InitExpr) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	sym, err := e.Resolver.ResolveStaticSym(n.TypeName, n.Tok())
	if err != nil {
		return nil, typesystem.NullType, err
	}
	ty := e.Graph.Sym(sym).Type
	fields := make(map[string]IRExpr, len(n.Fields))
	for _, f := range n.Fields {
		fieldT := typesystem.NullType
		if child, ok := e.Graph.Lookup(sym, f.Field); ok {
			fieldT = e.Graph.Sym(child).Type
		}
		ir, _, ferr := e.ResolveExpr(f.Value, fieldT)
		if ferr != nil {
			return nil, typesystem.NullType, ferr
		}
		fields[f.Field] = ir.(IRExpr)
	}
	return &InitExpr{base{ty}, fields}, ty, nil
}

func (e *Emitter) resolveInit(n *ast.InitLit, target typesystem.TypeId) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	ownerSym, _ := e.Graph.TypeSym(target)
	fields := make(map[string]IRExpr, len(n.Fields))
	for _, f := range n.Fields {
		fieldT := typesystem.NullType
		if ownerSym != symbols.NullSym {
			if child, ok := e.Graph.Lookup(ownerSym, f.Field); ok {
				fieldT = e.Graph.Sym(child).Type
			}
		}
		ir, _, ferr := e.ResolveExpr(f.Value, fieldT)
		if ferr != nil {
			return nil, typesystem.NullType, ferr
		}
		fields[f.Field] = ir.(IRExpr)
	}
	return &InitExpr{base{target}, fields}, target, nil
}

func (e *Emitter) resolveIfExpr(n *ast.IfExprNode, target typesystem.TypeId) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	cond, _, err := e.ResolveExpr(n.Cond, e.primByName("Bool"))
	if err != nil {
		return nil, typesystem.NullType, err
	}
	then, thenT, err := e.ResolveExpr(n.Then, target)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	els, _, err := e.ResolveExpr(n.Else, thenT)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &IfExpr{base{thenT}, cond.(IRExpr), then.(IRExpr), els.(IRExpr)}, thenT, nil
}

func (e *Emitter) resolveSwitchExpr(n *ast.SwitchExprNode, target typesystem.TypeId) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	subject, subjT, err := e.ResolveExpr(n.Subject, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	cases := make([]SwitchExprCase, len(n.Cases))
	var resT typesystem.TypeId
	for i, c := range n.Cases {
		var pat IRExpr
		if c.Pattern != nil {
			p, _, perr := e.ResolveExpr(c.Pattern, subjT)
			if perr != nil {
				return nil, typesystem.NullType, perr
			}
			pat = p.(IRExpr)
		}
		body, bodyT, berr := e.ResolveExpr(c.Body, target)
		if berr != nil {
			return nil, typesystem.NullType, berr
		}
		cases[i] = SwitchExprCase{Pattern: pat, Body: body.(IRExpr)}
		resT = bodyT
	}
	return &SwitchExpr{base{resT}, subject.(IRExpr), cases}, resT, nil
}

// EmitFuncBody lowers a top-level function or method body as a fresh
// top-level Procedure (Parent nil, unlike resolveLambda's nested one),
// binding each declared parameter type ahead of time rather than
// re-resolving it from a TypeSpec, since the Declaration Pipeline's Headers/
// Instances passes already settled every parameter's TypeId by the time
// Bodies runs. The caller is responsible for EnterProcedure/LeaveProcedure
// bracketing so it can bind Resolver.Self around the call for a method.
func (e *Emitter) EmitFuncBody(proc *Procedure, paramNames []string, paramTypes []typesystem.TypeId, body []ast.Statement) ([]IRStmt, *diagnostics.DiagnosticError) {
	for i, name := range paramNames {
		proc.DeclareLocal(name, paramTypes[i])
	}
	stmts, _, err := e.emitBlock(body)
	if err != nil {
		return nil, err
	}
	proc.Body = stmts
	return stmts, nil
}

// resolveLambda lowers a lambda body as a nested Procedure; its Captures are
// appended by Procedure.LookupLocal while the body's identifiers are
// resolved (spec.md §4.6).
func (e *Emitter) resolveLambda(params []*ast.Param, body []ast.Statement, tok token.Token) (matcher.ArgSlot, typesystem.TypeId, *diagnostics.DiagnosticError) {
	proc := e.EnterProcedure()
	paramTypes := make([]typesystem.TypeId, len(params))
	for i, p := range params {
		t, err := e.Resolver.ResolveTypeSpecNode(p.Type)
		if err != nil {
			e.LeaveProcedure()
			return nil, typesystem.NullType, err
		}
		proc.DeclareLocal(p.Name, t)
		paramTypes[i] = t
	}

	stmts, retT, err := e.emitBlock(body)
	if err != nil {
		e.LeaveProcedure()
		return nil, typesystem.NullType, err
	}
	proc.Body = stmts
	e.LeaveProcedure()

	sig := e.Types.EnsureFuncSig(paramTypes, retT)
	ty := e.Types.GetFuncPtrType(sig)
	return &LambdaExpr{base{ty}, proc}, ty, nil
}
