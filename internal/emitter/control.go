package emitter

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// emitBlock lowers a statement list inside a fresh lexical Block, returning
// the IR statements plus the inferred type of the block's last ReturnStmt
// (Dyn if none was seen), used to type a lambda's FuncSig.
func (e *Emitter) emitBlock(stmts []ast.Statement) ([]IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	e.cur.BeginScope()
	defer e.cur.EndScope()

	out := make([]IRStmt, 0, len(stmts))
	retT := e.Types.DynType()
	for _, s := range stmts {
		ir, t, err := e.emitStmt(s)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		if t != typesystem.NullType {
			retT = t
		}
		if ir != nil {
			out = append(out, ir)
		}
	}
	return out, retT, nil
}

// emitStmt lowers one statement, returning its IR node and — for a
// ReturnStmt only — the type of the returned value (NullType otherwise),
// which emitBlock folds up into the enclosing Procedure's inferred return
// type.
func (e *Emitter) emitStmt(s ast.Statement) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	switch n := s.(type) {
	case *ast.ExprStmt:
		ir, _, err := e.ResolveExpr(n.X, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &ExprStmt{X: ir.(IRExpr)}, typesystem.NullType, nil

	case *ast.BlockStmt:
		stmts, _, err := e.emitBlock(n.Statements)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &BlockStmt{Stmts: stmts}, typesystem.NullType, nil

	case *ast.VarDeclStmt:
		declT, terr := e.Resolver.ResolveTypeSpecNode(n.Type)
		if terr != nil {
			return nil, typesystem.NullType, terr
		}
		var init IRExpr
		if n.Initializer != nil {
			v, vt, err := e.ResolveExpr(n.Initializer, declT)
			if err != nil {
				return nil, typesystem.NullType, err
			}
			init = v.(IRExpr)
			if declT == e.Types.DynType() {
				declT = vt
			}
		}
		decl := e.cur.DeclareLocal(n.Name, declT)
		decl.Init = init
		return decl, typesystem.NullType, nil

	case *ast.ComptimeStmt:
		// Declaration-position `comptime <ident>` just needs the binding
		// side effect (spec.md §4.4's parse_ct_inferred_params mode); it
		// contributes no IR node of its own.
		if _, err := e.Template.ResolveCtValue(&ast.ComptimeExpr{Inner: &ast.Identifier{Name: n.Name}}, n.Tok()); err != nil {
			return nil, typesystem.NullType, err
		}
		return nil, typesystem.NullType, nil

	case *ast.IfStmt:
		return e.emitIfStmt(n)

	case *ast.IfUnwrapStmt:
		return e.emitIfUnwrapStmt(n)

	case *ast.WhileCondStmt:
		return e.emitWhileCondStmt(n)

	case *ast.WhileInfStmt:
		return e.emitWhileInfStmt(n)

	case *ast.WhileOptStmt:
		return e.emitWhileOptStmt(n)

	case *ast.ForIterStmt:
		return e.emitForIterStmt(n)

	case *ast.ForRangeStmt:
		return e.emitForRangeStmt(n)

	case *ast.SwitchStmtNode:
		return e.emitSwitchStmt(n)

	case *ast.TryStmtNode:
		ir, _, err := e.ResolveExpr(n.Operand, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &TryStmt{Operand: ir.(IRExpr)}, typesystem.NullType, nil

	case *ast.ReturnStmt:
		if n.Value == nil {
			return &ReturnStmt{}, typesystem.NullType, nil
		}
		ir, t, err := e.ResolveExpr(n.Value, typesystem.NullType)
		if err != nil {
			return nil, typesystem.NullType, err
		}
		return &ReturnStmt{Value: ir.(IRExpr)}, t, nil

	case *ast.BreakStmt:
		return &BreakStmt{}, typesystem.NullType, nil

	case *ast.ContinueStmt:
		return &ContinueStmt{}, typesystem.NullType, nil

	default:
		return nil, typesystem.NullType, diagnostics.New(diagnostics.PhaseEmit, diagnostics.CodeUnsupportedNode, s.Tok(), "statement")
	}
}

func (e *Emitter) emitStmtList(stmts []ast.Statement) ([]IRStmt, *diagnostics.DiagnosticError) {
	out, _, err := e.emitBlock(stmts)
	return out, err
}

func (e *Emitter) emitIfStmt(n *ast.IfStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	cond, _, err := e.ResolveExpr(n.Cond, e.primByName("Bool"))
	if err != nil {
		return nil, typesystem.NullType, err
	}
	then, err := e.emitStmtList(n.Then)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	els, err := e.emitStmtList(n.Else)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &IfStmt{Cond: cond.(IRExpr), Then: then, Else: els}, typesystem.NullType, nil
}

// emitIfUnwrapStmt lowers `if x := opt { ... } else { ... }`: the Then
// branch gets its own Block with Binding declared as a local narrowed to
// the Option's element type (spec.md §4.6).
func (e *Emitter) emitIfUnwrapStmt(n *ast.IfUnwrapStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	operand, operandT, err := e.ResolveExpr(n.Operand, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	elem, ok := e.Types.DerefOption(operandT)
	if !ok {
		elem = operandT
	}

	e.cur.BeginScope()
	decl := e.cur.DeclareLocal(n.Binding, elem)
	then, err := e.emitStmtList(n.Then)
	e.cur.EndScope()
	if err != nil {
		return nil, typesystem.NullType, err
	}

	els, err := e.emitStmtList(n.Else)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &IfUnwrapStmt{Operand: operand.(IRExpr), BindSlot: decl.Slot, Then: then, Else: els}, typesystem.NullType, nil
}

func (e *Emitter) emitWhileCondStmt(n *ast.WhileCondStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	cond, _, err := e.ResolveExpr(n.Cond, e.primByName("Bool"))
	if err != nil {
		return nil, typesystem.NullType, err
	}
	e.cur.PushLoopSave()
	body, err := e.emitStmtList(n.Body)
	e.cur.PopLoopSave(assignedNames(n.Body))
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &WhileCondStmt{Cond: cond.(IRExpr), Body: body}, typesystem.NullType, nil
}

func (e *Emitter) emitWhileInfStmt(n *ast.WhileInfStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	e.cur.PushLoopSave()
	body, err := e.emitStmtList(n.Body)
	e.cur.PopLoopSave(assignedNames(n.Body))
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &WhileInfStmt{Body: body}, typesystem.NullType, nil
}

func (e *Emitter) emitWhileOptStmt(n *ast.WhileOptStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	operand, operandT, err := e.ResolveExpr(n.Operand, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	elem, ok := e.Types.DerefOption(operandT)
	if !ok {
		elem = operandT
	}

	e.cur.BeginScope()
	decl := e.cur.DeclareLocal(n.Binding, elem)
	e.cur.PushLoopSave()
	body, err := e.emitStmtList(n.Body)
	e.cur.PopLoopSave(assignedNames(n.Body))
	e.cur.EndScope()
	if err != nil {
		return nil, typesystem.NullType, err
	}
	return &WhileOptStmt{Operand: operand.(IRExpr), BindSlot: decl.Slot, Body: body}, typesystem.NullType, nil
}

// emitForIterStmt desugars `for_iter` (spec.md §4.6): a hidden iterator
// local bound to the lowered Iterable, a hidden counter local starting at
// 0, and (if IndexVar/ValueVar are used) their own locals, all alive for
// the loop's lifetime. The hidden counter increment is lowered as the
// first statement of Body, ahead of the user's own statements.
func (e *Emitter) emitForIterStmt(n *ast.ForIterStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	iterable, iterableT, err := e.ResolveExpr(n.Iterable, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}

	var count IRExpr
	if n.Count != nil {
		c, _, cerr := e.ResolveExpr(n.Count, e.primByName("Int"))
		if cerr != nil {
			return nil, typesystem.NullType, cerr
		}
		count = c.(IRExpr)
	}

	e.cur.BeginScope()
	iterDecl := e.cur.DeclareLocal("$iter", iterableT)
	iterDecl.Init = iterable.(IRExpr)
	counterDecl := e.cur.DeclareLocal("$count", e.primByName("Int"))
	counterDecl.Init = &LiteralExpr{base{e.primByName("Int")}, intValue(0)}

	next, nextT, nerr := e.callMethod(&LocalRefExpr{base{iterableT}, iterDecl.Slot}, iterableT, "next", n.Tok())
	if nerr != nil {
		e.cur.EndScope()
		return nil, typesystem.NullType, nerr
	}
	valueT, ok := e.Types.DerefOption(nextT)
	if !ok {
		valueT = nextT
	}

	indexSlot := -1
	if n.IndexVar != "" {
		indexDecl := e.cur.DeclareLocal(n.IndexVar, e.primByName("Int"))
		indexSlot = indexDecl.Slot
	}
	valueDecl := e.cur.DeclareLocal(n.ValueVar, valueT)

	e.cur.PushLoopSave()
	body, berr := e.emitStmtList(n.Body)
	e.cur.PopLoopSave(assignedNames(n.Body))
	e.cur.EndScope()
	if berr != nil {
		return nil, typesystem.NullType, berr
	}

	counterIncr := &ExprStmt{X: &AssignExpr{
		base:   base{e.primByName("Int")},
		Target: &LocalRefExpr{base{e.primByName("Int")}, counterDecl.Slot},
		Value: &BinExpr{
			base: base{e.primByName("Int")},
			Op:   ast.OpAdd,
			Left: &LocalRefExpr{base{e.primByName("Int")}, counterDecl.Slot},
			Right: &LiteralExpr{base{e.primByName("Int")}, intValue(1)},
		},
	}}
	body = []IRStmt{counterIncr, &IfUnwrapStmt{
		Operand:  next,
		BindSlot: valueDecl.Slot,
		Then:     body,
		Else:     []IRStmt{&BreakStmt{}},
	}}

	return &ForIterStmt{
		IterSlot:    iterDecl.Slot,
		CounterSlot: counterDecl.Slot,
		IndexSlot:   indexSlot,
		ValueSlot:   valueDecl.Slot,
		Count:       count,
		Body:        body,
	}, typesystem.NullType, nil
}

func (e *Emitter) emitForRangeStmt(n *ast.ForRangeStmt) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	rng, _, err := e.ResolveExpr(n.Range, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	r := rng.(*RangeExpr)

	e.cur.BeginScope()
	decl := e.cur.DeclareLocal(n.Var, e.primByName("Int"))
	e.cur.PushLoopSave()
	body, berr := e.emitStmtList(n.Body)
	e.cur.PopLoopSave(assignedNames(n.Body))
	e.cur.EndScope()
	if berr != nil {
		return nil, typesystem.NullType, berr
	}
	return &ForRangeStmt{VarSlot: decl.Slot, Lo: r.Lo, Hi: r.Hi, Body: body}, typesystem.NullType, nil
}

func (e *Emitter) emitSwitchStmt(n *ast.SwitchStmtNode) (IRStmt, typesystem.TypeId, *diagnostics.DiagnosticError) {
	subject, subjT, err := e.ResolveExpr(n.Subject, typesystem.NullType)
	if err != nil {
		return nil, typesystem.NullType, err
	}
	cases := make([]SwitchStmtCase, len(n.Cases))
	for i, c := range n.Cases {
		var pat IRExpr
		if c.Pattern != nil {
			p, _, perr := e.ResolveExpr(c.Pattern, subjT)
			if perr != nil {
				return nil, typesystem.NullType, perr
			}
			pat = p.(IRExpr)
		}
		body, berr := e.emitStmtList(c.Body)
		if berr != nil {
			return nil, typesystem.NullType, berr
		}
		cases[i] = SwitchStmtCase{Pattern: pat, Body: body}
	}
	return &SwitchStmt{Subject: subject.(IRExpr), Cases: cases}, typesystem.NullType, nil
}

// assignedNames collects the target names of every top-level AssignExpr
// statement in a loop body, the set PopLoopSave needs to decide which
// locals keep their narrowed type and which revert (spec.md §4.6).
func assignedNames(stmts []ast.Statement) map[string]bool {
	out := make(map[string]bool)
	for _, s := range stmts {
		es, ok := s.(*ast.ExprStmt)
		if !ok {
			continue
		}
		as, ok := es.X.(*ast.AssignExpr)
		if !ok {
			continue
		}
		if ident, ok := as.Target.(*ast.Identifier); ok {
			out[ident.Name] = true
		}
	}
	return out
}

func intValue(n int64) value.Value { return value.NewInt(n) }
