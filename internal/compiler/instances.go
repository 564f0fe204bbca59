package compiler

import (
	"github.com/funvibe/funxy/internal/ast"
)

// AnalyzeInstances is the Declaration Pipeline's third pass (spec.md §4.7).
// A conventional analogous pass resolves trait-instance dictionaries once
// every type in the module has a header; this AST's closest analog is
// method-signature resolution: an ObjectDecl/TraitDecl's own Header pass
// (AnalyzeHeaders) only resolves its *field* list, deliberately deferring
// its methods' signatures to here, because a method may reference `Self`
// or another type declared later in the same chunk — both of which are
// only guaranteed to have a Type once every declaration's Headers pass has
// finished, not just its own.
func (c *Compiler) AnalyzeInstances(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		switch d := stmt.(type) {
		case *ast.ObjectDecl:
			c.resolveMethodSigs(d.Name, d.Methods)
		case *ast.TraitDecl:
			c.resolveMethodSigs(d.Name, d.Methods)
		}
	}
}

func (c *Compiler) resolveMethodSigs(ownerName string, methods []*ast.FuncDecl) {
	owner, ok := c.Graph.Lookup(c.Chunk, ownerName)
	if !ok {
		return
	}
	prevSelf := c.Resolver.Self
	c.Resolver.Self = owner
	for _, m := range methods {
		fn, ok := c.declFuncs[m]
		if !ok {
			continue
		}
		sig, err := c.paramSig(m.Params, m.Return)
		if err != nil {
			c.report(err)
			continue
		}
		f := c.Graph.Func(fn)
		f.Sig = sig
		c.Graph.SetFunc(f)
	}
	c.Resolver.Self = prevSelf
}
