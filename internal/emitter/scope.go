package emitter

import "github.com/funvibe/funxy/internal/typesystem"

// LocalVar is one procedure-local variable (spec.md §3/§4.6).
type LocalVar struct {
	Name     string
	Slot     int
	Depth    int
	Type     typesystem.TypeId
	Captured bool

	// DeclNode is the VarDeclStmt this local was declared by, patched to
	// Boxed = true the moment a nested Procedure captures it (spec.md
	// §4.6: "the parent's declare-local IR node is patched in place to
	// request boxing").
	DeclNode *VarDeclStmt
}

// Capture is one entry in a Procedure's capture list: a variable lifted
// from an enclosing Procedure's locals (FromParentLocal) or forwarded
// through the enclosing Procedure's own capture list (a capture of a
// capture, for doubly-nested lambdas), mirroring compiler_scope.go's
// resolveUpvalue/addUpvalue pair.
type Capture struct {
	Name            string
	Index           int
	FromParentLocal bool
	ParentSlot      int // enclosing Procedure's local slot, or its capture index
	Type            typesystem.TypeId
}

// Block is one lexical scope within a Procedure.
type Block struct {
	Depth           int
	SavedLocalCount int
}

// Procedure is one function/lambda body being emitted (spec.md §4.6).
type Procedure struct {
	Parent *Procedure

	Locals     []LocalVar
	blocks     []*Block
	ScopeDepth int

	CurNumLocals int
	MaxLocals    int

	Captures []Capture

	// PreLoopVarSaveStack restores narrowed types when a loop body never
	// assigns the variable (spec.md §4.6).
	PreLoopVarSaveStack []map[string]typesystem.TypeId

	Body []IRStmt
}

// BeginScope opens a lexical block.
func (p *Procedure) BeginScope() {
	p.ScopeDepth++
	p.blocks = append(p.blocks, &Block{Depth: p.ScopeDepth, SavedLocalCount: len(p.Locals)})
}

// EndScope closes the innermost block, dropping locals declared inside it
// and reclaiming their frame slots (compiler_scope.go's endScope, minus
// the bytecode POP/CLOSE_UPVALUE emission that belongs to the out-of-scope
// VM backend).
func (p *Procedure) EndScope() {
	n := len(p.blocks)
	if n == 0 {
		return
	}
	b := p.blocks[n-1]
	p.blocks = p.blocks[:n-1]
	p.ScopeDepth--

	dropped := len(p.Locals) - b.SavedLocalCount
	p.Locals = p.Locals[:b.SavedLocalCount]
	p.CurNumLocals -= dropped
}

// DeclareLocal reserves a new frame slot and returns the VarDeclStmt that
// declares it, so the caller can fill in Init.
func (p *Procedure) DeclareLocal(name string, t typesystem.TypeId) *VarDeclStmt {
	slot := p.CurNumLocals
	decl := &VarDeclStmt{Slot: slot}
	p.Locals = append(p.Locals, LocalVar{Name: name, Slot: slot, Depth: p.ScopeDepth, Type: t, DeclNode: decl})
	p.CurNumLocals++
	if p.CurNumLocals > p.MaxLocals {
		p.MaxLocals = p.CurNumLocals
	}
	return decl
}

func (p *Procedure) lookupOwn(name string) (typesystem.TypeId, int, bool) {
	for i := len(p.Locals) - 1; i >= 0; i-- {
		if p.Locals[i].Name == name {
			return p.Locals[i].Type, i, true
		}
	}
	return typesystem.NullType, -1, false
}

func (p *Procedure) captureIndex(name string) (int, typesystem.TypeId, bool) {
	for _, c := range p.Captures {
		if c.Name == name {
			return c.Index, c.Type, true
		}
	}
	return -1, typesystem.NullType, false
}

// LookupLocal implements resolver.LocalScope: search this Procedure's own
// locals first, then walk enclosing Procedures, lifting (capturing) the
// variable into every intermediate closure's capture list along the way —
// compiler_scope.go's resolveLocal/resolveUpvalue combined into one call,
// since our Resolver only needs (type, found) and the capture side effect
// happens transparently as a byproduct of a successful outer lookup.
func (p *Procedure) LookupLocal(name string) (typesystem.TypeId, bool) {
	if t, _, ok := p.lookupOwn(name); ok {
		return t, true
	}
	if p.Parent == nil {
		return typesystem.NullType, false
	}
	if idx, t, ok := p.captureIndex(name); ok {
		_ = idx
		return t, true
	}
	if t, ok := p.Parent.LookupLocal(name); ok {
		p.capture(name, t)
		return t, true
	}
	return typesystem.NullType, false
}

// capture lifts name from p.Parent into p's capture list: directly, if
// it's one of the parent's own locals (marking it Captured and patching
// its DeclNode to request boxing), or transitively through the parent's
// own capture list for doubly-nested lambdas.
func (p *Procedure) capture(name string, t typesystem.TypeId) int {
	if idx, _, ok := p.captureIndex(name); ok {
		return idx
	}
	idx := len(p.Captures)
	if _, slot, ok := p.Parent.lookupOwn(name); ok {
		p.Parent.Locals[slot].Captured = true
		if decl := p.Parent.Locals[slot].DeclNode; decl != nil {
			decl.Boxed = true
		}
		p.Captures = append(p.Captures, Capture{Name: name, Index: idx, FromParentLocal: true, ParentSlot: p.Parent.Locals[slot].Slot, Type: t})
		return idx
	}
	if parentIdx, _, ok := p.Parent.captureIndex(name); ok {
		p.Captures = append(p.Captures, Capture{Name: name, Index: idx, FromParentLocal: false, ParentSlot: parentIdx, Type: t})
		return idx
	}
	return -1
}

// PushLoopSave snapshots every local's current (possibly narrowed) type
// before entering a loop body.
func (p *Procedure) PushLoopSave() {
	snap := make(map[string]typesystem.TypeId, len(p.Locals))
	for _, l := range p.Locals {
		snap[l.Name] = l.Type
	}
	p.PreLoopVarSaveStack = append(p.PreLoopVarSaveStack, snap)
}

// PopLoopSave restores the pre-loop type for every local not named in
// assigned (spec.md §4.6: "restoring narrowed types when a loop body
// never assigns the variable").
func (p *Procedure) PopLoopSave(assigned map[string]bool) {
	n := len(p.PreLoopVarSaveStack)
	if n == 0 {
		return
	}
	snap := p.PreLoopVarSaveStack[n-1]
	p.PreLoopVarSaveStack = p.PreLoopVarSaveStack[:n-1]
	for i := range p.Locals {
		if assigned[p.Locals[i].Name] {
			continue
		}
		if orig, ok := snap[p.Locals[i].Name]; ok {
			p.Locals[i].Type = orig
		}
	}
}
