package compiler

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/emitter"
)

// color marks a static var's state during the DFS topological sort
// (spec.md §4.7: "a back-edge to a variable currently being resolved is a
// CircularInit error").
type color int

const (
	white color = iota
	gray
	black
)

// orderStaticInit implements the Declaration Pipeline's static variable
// dependency ordering (spec.md §4.7): every top-level StaticDecl's
// initializer expression is scanned for references to sibling statics,
// forming a dependency graph; each var is then resolved in reverse
// topological order (dependencies first) so that by the time a var's own
// initializer is lowered to IR, every static it reads already has a
// resolved IRExpr in c.StaticInit. A var reachable from itself through
// this graph is CircularInit, reported at the identifier reference that
// closes the cycle; neither var in the cycle gets a StaticInit entry.
//
// Follows a reverse-topological, module-level var-init ordering walk
// that runs before top-level statements are handed to codegen.
func (c *Compiler) orderStaticInit() {
	colors := make(map[string]color, len(c.staticDecls))
	byName := make(map[string]*ast.StaticDecl, len(c.staticDecls))
	for _, d := range c.staticDecls {
		byName[d.Name] = d
	}

	var visit func(name string) bool
	visit = func(name string) bool {
		d, ok := byName[name]
		if !ok {
			return true
		}
		switch colors[name] {
		case black:
			return true
		case gray:
			return false
		}
		colors[name] = gray

		ok = true
		for _, ref := range freeStaticRefs(d.Initializer, byName) {
			dep := ref.Name
			if dep == name {
				continue
			}
			if colors[dep] == gray {
				c.report(diagnostics.New(diagnostics.PhaseInit, diagnostics.CodeCircularInit, ref.Tok(), name))
				ok = false
				break
			}
			if !visit(dep) {
				ok = false
				break
			}
		}
		colors[name] = black
		if !ok {
			return false
		}

		sym := c.staticSym[name]
		if d.Initializer == nil {
			c.StaticOrder = append(c.StaticOrder, sym)
			return true
		}
		target := c.Graph.Sym(sym).Type
		slot, _, err := c.Emitter.ResolveExpr(d.Initializer, target)
		if err != nil {
			c.report(err)
			return true
		}
		c.StaticInit[sym] = slot.(emitter.IRExpr)
		c.StaticOrder = append(c.StaticOrder, sym)
		return true
	}

	for _, d := range c.staticDecls {
		if colors[d.Name] == white {
			visit(d.Name)
		}
	}
}

// freeStaticRefs collects every identifier in expr that names a sibling
// static var, walking into lambda bodies (spec.md §4.7: initializer
// dependency scanning "including into lambda bodies").
func freeStaticRefs(expr ast.Expression, statics map[string]*ast.StaticDecl) []*ast.Identifier {
	var out []*ast.Identifier
	var walk func(ast.Expression)
	walkStmts := func(stmts []ast.Statement) {
		for _, s := range stmts {
			switch n := s.(type) {
			case *ast.ExprStmt:
				walk(n.X)
			case *ast.ReturnStmt:
				walk(n.Value)
			case *ast.VarDeclStmt:
				walk(n.Initializer)
			}
		}
	}
	walk = func(e ast.Expression) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			if _, ok := statics[n.Name]; ok {
				out = append(out, n)
			}
		case *ast.AccessExpr:
			walk(n.Target)
		case *ast.ArrayExprNode:
			for _, el := range n.Elements {
				walk(el)
			}
		case *ast.CallExpr:
			walk(n.Callee)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.InitExpr:
			for _, f := range n.Fields {
				walk(f.Value)
			}
			for _, it := range n.Items {
				walk(it)
			}
		case *ast.InitLit:
			for _, f := range n.Fields {
				walk(f.Value)
			}
		case *ast.AssignExpr:
			walk(n.Target)
			walk(n.Value)
		case *ast.BinExpr:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryExpr:
			walk(n.Operand)
		case *ast.UnwrapExpr:
			walk(n.Operand)
		case *ast.UnwrapOrExpr:
			walk(n.Operand)
			walk(n.Default)
		case *ast.UnwrapChoiceExpr:
			walk(n.Operand)
		case *ast.ComptimeExpr:
			walk(n.Inner)
		case *ast.CastExpr:
			walk(n.Operand)
		case *ast.SwitchExprNode:
			walk(n.Subject)
			for _, cs := range n.Cases {
				walk(cs.Pattern)
				walk(cs.Body)
			}
		case *ast.TryExprNode:
			walk(n.Operand)
		case *ast.IfExprNode:
			walk(n.Cond)
			walk(n.Then)
			walk(n.Else)
		case *ast.RangeExpr:
			walk(n.Lo)
			walk(n.Hi)
		case *ast.DerefExpr:
			walk(n.Operand)
		case *ast.RefExpr:
			walk(n.Operand)
		case *ast.PtrExpr:
			walk(n.Operand)
		case *ast.CoinitExpr:
			walk(n.Call)
		case *ast.CoyieldExpr:
			walk(n.Value)
		case *ast.CoresumeExpr:
			walk(n.Coroutine)
			walk(n.Arg)
		case *ast.LambdaExpr:
			walk(n.Body)
		case *ast.LambdaMulti:
			walkStmts(n.Body)
		}
	}
	walk(expr)
	return out
}
