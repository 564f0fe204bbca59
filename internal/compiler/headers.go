package compiler

import (
	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/token"
	"github.com/funvibe/funxy/internal/typesystem"
)

// AnalyzeHeaders is the Declaration Pipeline's second pass (spec.md §4.7:
// "Headers=signatures/field lists/template param lists (still no
// bodies)"): every Sym AnalyzeNaming reserved gets its FuncSig, Type, or
// ParamSig filled in, so that any declaration appearing later in the
// chunk can already see a fully-typed header for one appearing earlier —
// or vice versa, since both passes walk every declaration regardless of
// order.
func (c *Compiler) AnalyzeHeaders(prog *ast.Program) {
	for _, stmt := range prog.Statements {
		c.headerDecl(stmt)
	}
}

func (c *Compiler) headerDecl(stmt ast.Statement) {
	switch d := stmt.(type) {
	case *ast.FuncDecl:
		c.resolveFuncHeader(d)

	case *ast.TemplateDecl:
		c.resolveTemplateParamSig(d)

	case *ast.ObjectDecl:
		c.resolveFieldType(d.Name, typesystem.KindObject, d.Fields)

	case *ast.StructDecl:
		c.resolveFieldType(d.Name, typesystem.KindStruct, d.Fields)

	case *ast.EnumDecl:
		c.resolveEnumType(d)

	case *ast.TraitDecl:
		sym, _ := c.Graph.Lookup(c.Chunk, d.Name)
		t := c.Types.PushType()
		c.Types.Set(t, typesystem.Type{Kind: typesystem.KindTrait, Name: d.Name})
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = t })

	case *ast.DistinctDecl:
		c.resolveDistinctType(d)

	case *ast.CustomDecl:
		c.resolveHostObjType(d)

	case *ast.StaticDecl:
		c.resolveStaticHeader(d)

	case *ast.ContextDecl:
		sym, _ := c.Graph.Lookup(c.Chunk, d.Name)
		t, err := c.Resolver.ResolveTypeSpecNode(d.Type)
		if err != nil {
			c.report(err)
			return
		}
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = t })

	case *ast.TypeAliasDecl:
		sym, _ := c.Graph.Lookup(c.Chunk, d.Name)
		t, err := c.Resolver.ResolveTypeSpecNode(d.Type)
		if err != nil {
			c.report(err)
			return
		}
		c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = t })

	case *ast.UseAlias:
		c.resolveUseAlias(d)
	}
}

// resolveFuncHeader interns a FuncDecl's signature and attaches it to the
// Func arena slot AnalyzeNaming reserved. A `host`-qualified func has no
// body of its own (bodies.go skips it); its signature instead gets handed
// to func_loader so a real embedding can validate and hand back a callable
// handle before any caller resolves a call against it.
func (c *Compiler) resolveFuncHeader(d *ast.FuncDecl) {
	fn, ok := c.declFuncs[d]
	if !ok {
		return
	}
	sig, err := c.paramSig(d.Params, d.Return)
	if err != nil {
		c.report(err)
		return
	}
	f := c.Graph.Func(fn)
	f.Sig = sig
	c.Graph.SetFunc(f)

	if d.IsHost {
		c.loadHostFunc(fn, d.Name, sig, d.Tok())
	}
}

// loadHostFunc dispatches the func_loader hook (spec.md §6) for a
// host-qualified function once its signature is known.
func (c *Compiler) loadHostFunc(fn symbols.FuncId, name string, sig typesystem.FuncSigId, tok token.Token) {
	if c.Hosts == nil {
		return
	}
	handle, err := c.Hosts.LoadFunc(FuncLoaderInfo{Module: c.Module, Name: name, Sig: sig})
	if err != nil {
		c.report(diagnostics.New(diagnostics.PhaseHost, diagnostics.CodeLoaderFailed, tok, name, err.Error()))
		return
	}
	c.HostFuncHandles[fn] = handle
}

func (c *Compiler) paramSig(params []*ast.Param, ret ast.TypeSpec) (typesystem.FuncSigId, *diagnostics.DiagnosticError) {
	ptypes := make([]typesystem.TypeId, len(params))
	for i, p := range params {
		t, err := c.Resolver.ResolveTypeSpecNode(p.Type)
		if err != nil {
			return 0, err
		}
		ptypes[i] = t
	}
	retT, err := c.Resolver.ResolveTypeSpecNode(ret)
	if err != nil {
		return 0, err
	}
	return c.Types.EnsureFuncSig(ptypes, retT), nil
}

// resolveTemplateParamSig interns a type Template's parameter-constraint
// list as a FuncSig (Template.ParamSig, spec.md §3), treating a
// constraint-less parameter as Dyn.
func (c *Compiler) resolveTemplateParamSig(d *ast.TemplateDecl) {
	id, ok := c.tmplIds[d]
	if !ok || d.IsFunc {
		return
	}
	tmpl := c.Graph.Template(id)
	ptypes := make([]typesystem.TypeId, len(d.Params))
	for i, p := range d.Params {
		if p.Constraint == nil {
			ptypes[i] = c.Types.DynType()
			continue
		}
		t, err := c.Resolver.ResolveTypeSpecNode(p.Constraint)
		if err != nil {
			c.report(err)
			ptypes[i] = c.Types.DynType()
			continue
		}
		ptypes[i] = t
	}
	tmpl.ParamSig = c.Types.EnsureFuncSig(ptypes, c.Types.DynType())
}

func (c *Compiler) resolveFieldType(name string, tkind typesystem.Kind, fields []*ast.Field) {
	sym, ok := c.Graph.Lookup(c.Chunk, name)
	if !ok {
		return
	}
	out := make([]typesystem.Field, len(fields))
	for i, f := range fields {
		t, err := c.Resolver.ResolveTypeSpecNode(f.Type)
		if err != nil {
			c.report(err)
			t = c.Types.DynType()
		}
		out[i] = typesystem.Field{Name: f.Name, Type: t}
	}
	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: tkind, Name: name, Fields: out})
	c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = id })
}

func (c *Compiler) resolveEnumType(d *ast.EnumDecl) {
	sym, ok := c.Graph.Lookup(c.Chunk, d.Name)
	if !ok {
		return
	}
	variants := make([]typesystem.EnumVariant, len(d.Variants))
	for i, v := range d.Variants {
		payload := typesystem.NullType
		if v.Payload != nil {
			t, err := c.Resolver.ResolveTypeSpecNode(v.Payload)
			if err != nil {
				c.report(err)
			} else {
				payload = t
			}
		}
		variants[i] = typesystem.EnumVariant{Name: v.Name, Payload: payload}
	}
	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: typesystem.KindEnum, Name: d.Name, Variants: variants, Choice: d.Choice})
	c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = id })

	// Each unit/payload variant is also its own child Sym (spec.md §3:
	// "EnumMember"), so `Color.Red` / `.Red` resolve as a member access.
	for _, v := range d.Variants {
		member := c.Graph.Declare(sym, v.Name, symbols.KindEnumMember, c.Chunk)
		c.Graph.Resolve(member, func(s *symbols.Sym) { s.Type = id; s.Exported = true })
	}
}

func (c *Compiler) resolveDistinctType(d *ast.DistinctDecl) {
	sym, ok := c.Graph.Lookup(c.Chunk, d.Name)
	if !ok {
		return
	}
	under, err := c.Resolver.ResolveTypeSpecNode(d.Underlying)
	if err != nil {
		c.report(err)
		under = c.Types.DynType()
	}
	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: typesystem.KindDistinct, Name: d.Name, Elem: under})
	c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = id })
}

// resolveHostObjType dispatches the type_loader hook (spec.md §6) for a
// host_object/core_custom declaration. With no HostCatalog wired, the type
// still gets a usable (if unbacked) host-object TypeId rather than leaving
// the Sym unresolved, so a chunk that never actually instantiates it still
// compiles.
func (c *Compiler) resolveHostObjType(d *ast.CustomDecl) {
	sym, ok := c.Graph.Lookup(c.Chunk, d.Name)
	if !ok {
		return
	}
	flags := typesystem.Flags{LoadAllMethods: d.LoadAllMethods}

	if c.Hosts != nil {
		res, err := c.Hosts.LoadType(TypeLoaderInfo{Module: c.Module, Name: d.Name})
		if err != nil {
			c.report(diagnostics.New(diagnostics.PhaseHost, diagnostics.CodeLoaderFailed, d.Tok(), d.Name, err.Error()))
		} else {
			switch res.Kind {
			case TypeLoaderDecl:
				c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = res.Payload })
				return
			case TypeLoaderCoreCustom:
				flags.LoadAllMethods = true
			case TypeLoaderCreate:
				flags.CustomPre = true
			}
		}
	}

	id := c.Types.PushType()
	c.Types.Set(id, typesystem.Type{Kind: typesystem.KindHostObject, Name: d.Name, Flags: flags})
	c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = id })
}

func (c *Compiler) resolveStaticHeader(d *ast.StaticDecl) {
	sym, ok := c.staticSym[d.Name]
	if !ok {
		return
	}
	t, err := c.Resolver.ResolveTypeSpecNode(d.Type)
	if err != nil {
		c.report(err)
		t = c.Types.DynType()
	}
	c.Graph.Resolve(sym, func(s *symbols.Sym) { s.Type = t })

	if d.IsHost {
		c.loadHostVar(sym, d.Name, d.Tok())
	}
}

// loadHostVar dispatches the var_loader hook (spec.md §6) for a
// host-qualified static once its declared type is known. hostVarIdx counts
// the same-named host statics this Compiler has already loaded, so idx
// tells them apart within one chunk; each chunk's Compiler starts its
// count at 0.
func (c *Compiler) loadHostVar(sym symbols.SymId, name string, tok token.Token) {
	if c.Hosts == nil {
		return
	}
	idx := c.hostVarIdx[name]
	c.hostVarIdx[name] = idx + 1

	v, err := c.Hosts.LoadVar(VarLoaderInfo{Module: c.Module, Name: name, Idx: idx})
	if err != nil {
		c.report(diagnostics.New(diagnostics.PhaseHost, diagnostics.CodeLoaderFailed, tok, name, err.Error()))
		return
	}
	c.HostStaticValues[sym] = v
}

// resolveUseAlias resolves an explicit `use mod.Name as Alias` (or bare
// `use mod.Name`) target and mirrors its Type onto the alias Sym. Use-all
// imports (`use mod.*`) have no Sym to resolve (see AnalyzeNaming).
func (c *Compiler) resolveUseAlias(d *ast.UseAlias) {
	if d.Name == "" {
		return
	}
	name := d.Alias
	if name == "" {
		name = d.Name
	}
	sym, ok := c.Graph.Lookup(c.Chunk, name)
	if !ok {
		return
	}
	path := append(append([]string{}, d.ModulePath...), d.Name)
	target, err := c.Resolver.GetResolvedDistinctSym(path, d.Tok())
	if err != nil {
		c.report(err)
		return
	}
	targetSym := c.Graph.Sym(target)
	c.Graph.Resolve(sym, func(s *symbols.Sym) {
		s.Type = targetSym.Type
		s.FuncHead = targetSym.FuncHead
	})
}
