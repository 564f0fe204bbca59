package compiler

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/symbols"
)

// AnalyzeNaming is the Reserve half of the Declaration Pipeline (spec.md
// §4.7: "Naming=identity only"): every top-level declaration gets a Sym
// (or, for functions, a slot in its name's overload set) before anything
// about its signature or body is resolved, so forward references among
// sibling declarations — A's header referring to B declared later in the
// same chunk — see a real SymId immediately.
func (c *Compiler) AnalyzeNaming(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		c.nameDecl(c.Chunk, stmt)
	}
}

func (c *Compiler) nameDecl(parent symbols.SymId, stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.FuncDecl:
		kind := symbols.FuncUser
		if d.IsHost {
			kind = symbols.FuncHost
		}
		_, fn := c.Graph.DeclareFunc(parent, d.Name, c.Chunk, kind)
		f := c.Graph.Func(fn)
		f.BodyNode = d
		f.Params = paramsOf(d.Params)
		c.Graph.SetFunc(f)
		c.declFuncs[d] = fn

	case *ast.TemplateDecl:
		if d.IsFunc {
			id := c.Graph.DeclareFuncTemplate(parent, d.Name, d.FuncBody.Params, d.FuncBody.Body)
			c.Expander.RegisterFuncTemplate(d.Name, id)
			c.tmplIds[d] = id
		} else {
			id := c.Graph.DeclareTemplate(parent, d.Name, d, d.Params)
			c.Expander.RegisterTemplate(d.Name, id)
			c.tmplIds[d] = id
		}

	case *ast.ObjectDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindObjectType, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })
		c.nameMethods(sym, d.Methods)

	case *ast.StructDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindStructType, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })

	case *ast.CustomDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindHostObjType, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })

	case *ast.EnumDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindEnumType, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })

	case *ast.TraitDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindTraitType, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })
		c.nameMethods(sym, d.Methods)

	case *ast.DistinctDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindDistinctType, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })

	case *ast.StaticDecl:
		kind := symbols.KindUserVar
		if d.IsHost {
			kind = symbols.KindHostVar
		}
		sym := c.Graph.Declare(parent, d.Name, kind, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })
		c.staticDecls = append(c.staticDecls, d)
		c.staticSym[d.Name] = sym

	case *ast.ContextDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindContextVar, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })

	case *ast.TypeAliasDecl:
		sym := c.Graph.Declare(parent, d.Name, symbols.KindTypeAlias, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d; s.Exported = true })

	case *ast.UseAlias:
		name := d.Alias
		if name == "" {
			name = d.Name
		}
		if name == "" {
			// use-all (`use mod.*`): nothing to name yet; the resolver
			// does not search use-all imports — only explicit
			// `as Alias` / single-name uses get a Sym.
			return
		}
		sym := c.Graph.Declare(parent, name, symbols.KindUseAlias, c.Chunk)
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.DefinitionNode = d })

	case *ast.ImportStmt:
		// Cross-chunk module loading is out of scope for a single-chunk
		// compile (spec.md §1); recorded only as parsed AST, never
		// Declared.
	}
}

// nameMethods reserves each method FuncDecl as a Func under owner's
// overload sets and remembers owner so AnalyzeInstances can bind Self
// before resolving the method's signature.
func (c *Compiler) nameMethods(owner symbols.SymId, methods []*ast.FuncDecl) {
	for _, m := range methods {
		kind := symbols.FuncUser
		if m.IsHost {
			kind = symbols.FuncHost
		}
		_, fn := c.Graph.DeclareFunc(owner, m.Name, c.Chunk, kind)
		f := c.Graph.Func(fn)
		f.BodyNode = m
		f.Params = paramsOf(m.Params)
		c.Graph.SetFunc(f)
		c.methodOwners[m] = owner
		c.declFuncs[m] = fn
	}
}

func paramsOf(params []*ast.Param) []ast.Param {
	out := make([]ast.Param, len(params))
	for i, p := range params {
		out[i] = *p
	}
	return out
}
