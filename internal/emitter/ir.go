// Package emitter implements IR emission (spec.md §4.6): pushing typed
// expression/statement nodes while maintaining a stack of Procedures (for
// lambdas/nested declarations), each with a stack of lexical Blocks,
// curNumLocals/maxLocals, a preLoopVarSaveStack, and capture lifting.
//
// Bytecode generation from this IR and a VM's execution loop are out of
// scope (spec.md §1): the node types here are a typed tree, not bytes —
// lowering that tree straight to opcodes is a step this package stops
// short of.
//
// Follows an addLocal/resolveLocal/resolveUpvalue/addUpvalue scoping idiom,
// generalized from a fixed-size array + slot-index scheme to Go slices
// addressed by our typesystem.TypeId-carrying LocalVar.
package emitter

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// IRExpr is a typed expression IR node.
type IRExpr interface {
	irExprNode()
	Type() typesystem.TypeId
}

// IRStmt is a statement IR node.
type IRStmt interface{ irStmtNode() }

type base struct{ T typesystem.TypeId }

func (b base) Type() typesystem.TypeId { return b.T }

// LiteralExpr carries a CTE-folded or literal Value straight through.
type LiteralExpr struct {
	base
	Value value.Value
}

func (*LiteralExpr) irExprNode() {}

// LocalRefExpr reads a slot in the current Procedure's frame.
type LocalRefExpr struct {
	base
	Slot int
}

func (*LocalRefExpr) irExprNode() {}

// CaptureRefExpr reads a lifted variable through the closure's capture list.
type CaptureRefExpr struct {
	base
	Index int
}

func (*CaptureRefExpr) irExprNode() {}

// StaticRefExpr reads a resolved static Sym (a top-level var or a
// single-candidate function reference used as a value).
type StaticRefExpr struct {
	base
	Sym symbols.SymId
}

func (*StaticRefExpr) irExprNode() {}

// SelfRefExpr reads the enclosing type value inside a method body.
type SelfRefExpr struct{ base }

func (*SelfRefExpr) irExprNode() {}

// CallExpr is a resolved call: either a static dispatch to Func, or a
// dynamic (DynCall) late-bound dispatch the emitter lowers against the
// whole FuncSym overload set (spec.md §4.5 "dynamic-call fallback").
type CallExpr struct {
	base
	Func    symbols.FuncId
	FuncSym symbols.SymId // the overload set the callee was matched from; a DynCall dispatch searches it
	Args    []IRExpr
	DynCall bool
}

func (*CallExpr) irExprNode() {}

// BinExpr is a resolved binary operation.
type BinExpr struct {
	base
	Op          ast.BinOp
	Left, Right IRExpr
}

func (*BinExpr) irExprNode() {}

// UnaryExpr is a resolved unary operation.
type UnaryExpr struct {
	base
	Op      ast.UnaryOp
	Operand IRExpr
}

func (*UnaryExpr) irExprNode() {}

// AssignExpr is `target = value`; Target is always one of LocalRefExpr,
// CaptureRefExpr, StaticRefExpr, or FieldExpr, produced by resolving the
// same lvalue through ResolveExpr as an ordinary read (spec.md glossary).
type AssignExpr struct {
	base
	Target IRExpr
	Value  IRExpr
}

func (*AssignExpr) irExprNode() {}

// FieldExpr is `target.member` resolved to a concrete struct/object field.
type FieldExpr struct {
	base
	Target IRExpr
	Field  string
}

func (*FieldExpr) irExprNode() {}

// ArrayExpr is a resolved array/list literal.
type ArrayExpr struct {
	base
	Elements []IRExpr
}

func (*ArrayExpr) irExprNode() {}

// InitExpr is a resolved `Type{...}` / `{...}` struct initializer.
type InitExpr struct {
	base
	Fields map[string]IRExpr
}

func (*InitExpr) irExprNode() {}

// UnwrapExpr is `expr!`.
type UnwrapExpr struct {
	base
	Operand IRExpr
}

func (*UnwrapExpr) irExprNode() {}

// UnwrapOrExpr is `expr ?? default`.
type UnwrapOrExpr struct {
	base
	Operand, Default IRExpr
}

func (*UnwrapOrExpr) irExprNode() {}

// UnwrapChoiceExpr is `expr as .Variant`.
type UnwrapChoiceExpr struct {
	base
	Operand IRExpr
	Variant string
}

func (*UnwrapChoiceExpr) irExprNode() {}

// CastExpr is `expr as T`.
type CastExpr struct {
	base
	Operand IRExpr
}

func (*CastExpr) irExprNode() {}

// DerefExpr / RefExpr / PtrExpr mirror the AST sugar forms once resolved.
type DerefExpr struct {
	base
	Operand IRExpr
}

func (*DerefExpr) irExprNode() {}

type RefExpr struct {
	base
	Operand IRExpr
}

func (*RefExpr) irExprNode() {}

type PtrExpr struct {
	base
	Operand IRExpr
}

func (*PtrExpr) irExprNode() {}

// RangeExpr is `lo..hi`, used both standalone and as a for_range bound.
type RangeExpr struct {
	base
	Lo, Hi IRExpr
}

func (*RangeExpr) irExprNode() {}

// CoinitExpr / CoyieldExpr / CoresumeExpr mirror the coroutine AST forms.
type CoinitExpr struct {
	base
	Call *CallExpr
}

func (*CoinitExpr) irExprNode() {}

type CoyieldExpr struct {
	base
	Value IRExpr
}

func (*CoyieldExpr) irExprNode() {}

type CoresumeExpr struct {
	base
	Coroutine, Arg IRExpr
}

func (*CoresumeExpr) irExprNode() {}

// IfExpr / SwitchExpr / TryExpr are the expression-position forms.
type IfExpr struct {
	base
	Cond       IRExpr
	Then, Else IRExpr
}

func (*IfExpr) irExprNode() {}

type SwitchExprCase struct {
	Pattern IRExpr // nil for default
	Body    IRExpr
}

type SwitchExpr struct {
	base
	Subject IRExpr
	Cases   []SwitchExprCase
}

func (*SwitchExpr) irExprNode() {}

type TryExpr struct {
	base
	Operand IRExpr
}

func (*TryExpr) irExprNode() {}

// LambdaExpr references a fully-lowered nested Procedure; the child's
// Captures are recorded on it while its body is being emitted.
type LambdaExpr struct {
	base
	Proc *Procedure
}

func (*LambdaExpr) irExprNode() {}

// --- statements ---

type ExprStmt struct{ X IRExpr }

func (*ExprStmt) irStmtNode() {}

// VarDeclStmt declares a local. Boxed is patched to true after the fact if
// a later-emitted nested Procedure captures this slot (spec.md §4.6: "the
// parent's declare-local IR node is patched in place to request boxing").
type VarDeclStmt struct {
	Slot  int
	Init  IRExpr
	Boxed bool
}

func (*VarDeclStmt) irStmtNode() {}

type BlockStmt struct{ Stmts []IRStmt }

func (*BlockStmt) irStmtNode() {}

type IfStmt struct {
	Cond       IRExpr
	Then, Else []IRStmt
}

func (*IfStmt) irStmtNode() {}

type IfUnwrapStmt struct {
	Operand    IRExpr
	BindSlot   int
	Then, Else []IRStmt
}

func (*IfUnwrapStmt) irStmtNode() {}

type WhileCondStmt struct {
	Cond IRExpr
	Body []IRStmt
}

func (*WhileCondStmt) irStmtNode() {}

type WhileInfStmt struct{ Body []IRStmt }

func (*WhileInfStmt) irStmtNode() {}

type WhileOptStmt struct {
	Operand  IRExpr
	BindSlot int
	Body     []IRStmt
}

func (*WhileOptStmt) irStmtNode() {}

// ForIterStmt is the desugared form of `for_iter` (spec.md §4.6): a hidden
// iterator local, a hidden counter local, and a loop body that if-unwraps
// the result of calling `.next()` on the iterator each pass.
type ForIterStmt struct {
	IterSlot    int
	CounterSlot int
	IndexSlot   int // -1 if unused
	ValueSlot   int
	Count       IRExpr // optional bound, nil if absent
	Body        []IRStmt
}

func (*ForIterStmt) irStmtNode() {}

type ForRangeStmt struct {
	VarSlot  int
	Lo, Hi   IRExpr
	Body     []IRStmt
}

func (*ForRangeStmt) irStmtNode() {}

type SwitchStmtCase struct {
	Pattern IRExpr // nil for default
	Body    []IRStmt
}

type SwitchStmt struct {
	Subject IRExpr
	Cases   []SwitchStmtCase
}

func (*SwitchStmt) irStmtNode() {}

type TryStmt struct{ Operand IRExpr }

func (*TryStmt) irStmtNode() {}

type ReturnStmt struct{ Value IRExpr } // nil Value for bare return

func (*ReturnStmt) irStmtNode() {}

type BreakStmt struct{}

func (*BreakStmt) irStmtNode() {}

type ContinueStmt struct{}

func (*ContinueStmt) irStmtNode() {}
