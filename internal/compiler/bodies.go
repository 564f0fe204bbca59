package compiler

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/symbols"
)

// AnalyzeBodies is the Declaration Pipeline's fourth pass (spec.md §4.7:
// "Bodies=full resolution + static-init dependency ordering + IR
// emission"): every FuncDecl with a body gets its own Procedure and its
// statements lowered to IR, stored in c.FuncBodies keyed by the Func arena
// id AnalyzeNaming reserved. Static-init ordering itself runs separately,
// in orderStaticInit, once every function body (and so every reference a
// static initializer's lambda might make) has been resolved.
func (c *Compiler) AnalyzeBodies(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch d := stmt.(type) {
		case *ast.FuncDecl:
			c.emitFuncDecl(d)
		case *ast.ObjectDecl:
			for _, m := range d.Methods {
				c.emitMethodDecl(d.Name, m)
			}
		case *ast.TraitDecl:
			for _, m := range d.Methods {
				if m.Body != nil {
					c.emitMethodDecl(d.Name, m)
				}
			}
		}
	}
}

func (c *Compiler) emitFuncDecl(d *ast.FuncDecl) {
	if d.Body == nil || d.IsHost {
		return
	}
	fn, ok := c.declFuncs[d]
	if !ok {
		return
	}
	c.emitBody(fn, d.Params, d.Body, symbols.NullSym)
}

func (c *Compiler) emitMethodDecl(ownerName string, m *ast.FuncDecl) {
	if m.Body == nil || m.IsHost {
		return
	}
	fn, ok := c.declFuncs[m]
	if !ok {
		return
	}
	owner, ok := c.Graph.Lookup(c.Chunk, ownerName)
	if !ok {
		owner = symbols.NullSym
	}
	c.emitBody(fn, m.Params, m.Body, owner)
}

// emitBody lowers one function/method body into IR, storing the result in
// c.FuncBodies. self is NullSym for a plain function.
func (c *Compiler) emitBody(fn symbols.FuncId, params []*ast.Param, body []ast.Statement, self symbols.SymId) {
	f := c.Graph.Func(fn)
	sig := c.Types.Sig(f.Sig)

	prevSelf := c.Resolver.Self
	c.Resolver.Self = self

	proc := c.Emitter.EnterProcedure()
	names := make([]string, len(params))
	for i, p := range params {
		names[i] = p.Name
	}
	stmts, err := c.Emitter.EmitFuncBody(proc, names, sig.Params, body)
	c.Emitter.LeaveProcedure()
	c.Resolver.Self = prevSelf

	if err != nil {
		c.report(err)
		return
	}
	c.FuncBodies[fn] = stmts
}
