// Package compiler implements the Declaration Pipeline (spec.md §4.7): the
// Compiler context owns the Type Store, Symbol Graph, ContextStack, and the
// Resolver/Matcher/Expander/Emitter quartet, and drives them through four
// passes over one chunk's top-level declarations — AnalyzeNaming,
// AnalyzeHeaders, AnalyzeInstances, AnalyzeBodies — followed by static
// variable dependency ordering.
//
// The four-pass schedule and the up-front registration of primitive types
// before any user declaration is processed follow the same shape as a
// conventional multi-pass semantic analyzer.
package compiler

import (
	"github.com/google/uuid"

	"github.com/funvibe/funxy/internal/ast"
	"github.com/funvibe/funxy/internal/diagnostics"
	"github.com/funvibe/funxy/internal/emitter"
	"github.com/funvibe/funxy/internal/matcher"
	"github.com/funvibe/funxy/internal/resolver"
	"github.com/funvibe/funxy/internal/symbols"
	"github.com/funvibe/funxy/internal/template"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

// Evaluator is the VM-call boundary a Compiler needs for compile-time
// function calls (spec.md §4.4 expandCtFuncTemplate) and for the Matcher's
// own IsCt folding path. Bytecode generation and the execution loop are out
// of scope (spec.md §1); this interface is the "abstract handle, not a
// concrete VM type" spec.md §9 mandates for the boundary — a real embedding
// wires its own VM in, and tests can supply a stub.
type Evaluator interface {
	CallFunc(fn int, args []value.Value) (value.Value, error)
}

// primitiveNames are the always-present base types every chunk's Resolver
// can name (spec.md §3 "Type": primitive kind), pushed once per Compiler
// since typesystem.NewStore only pre-interns Dyn/Any itself (spec.md §9
// keeps the Type Store free of any notion of "the language's primitive
// names" — that naming is this package's concern, not the arena's).
var primitiveNames = []string{"Int", "Float", "Bool", "String", "Void", "Type"}

// Compiler is one chunk's compile context (spec.md §9: "wrap [the Type
// Store, interning maps, sym cache] in a Compiler context that owns all
// long-lived allocations; never reach for ambient globals"). Multiple
// Compilers compiling different chunks of the same program share Types and
// Graph by construction via SharedState.
type Compiler struct {
	ChunkID uuid.UUID

	Types    *typesystem.Store
	Graph    *symbols.Graph
	Contexts *symbols.ContextStack
	Resolver *resolver.Resolver
	Matcher  *matcher.Matcher
	Expander *template.Expander
	Emitter  *emitter.Emitter

	// Hosts is the Host Catalog boundary (spec.md §6); nil is legal for
	// chunks that declare no host_object/core_custom/host var/host func.
	Hosts HostCatalog

	// Chunk is this compile's own chunk-level Sym, the parent every
	// top-level declaration is Declared under and the OwningChunk every
	// one of them records (spec.md §4.2 visibility rule).
	Chunk  symbols.SymId
	Module string
	File   string

	// Reports accumulates every diagnostic raised while compiling this
	// chunk (spec.md §4.9): passes do not stop at the first error, so a
	// single compile surfaces as many independent problems as it can.
	Reports []*diagnostics.DiagnosticError

	// FuncBodies holds each resolved function's emitted IR, keyed by the
	// Func arena id (symbols.Func itself only carries IRStart, a
	// bytecode-era offset left unused at this layer).
	FuncBodies map[symbols.FuncId][]emitter.IRStmt

	// methodOwners records, for every method FuncDecl reserved during
	// AnalyzeNaming, the owning type Sym its Self should bind to during
	// AnalyzeInstances/AnalyzeBodies.
	methodOwners map[*ast.FuncDecl]symbols.SymId

	// declFuncs/tmplIds let AnalyzeHeaders and AnalyzeBodies find the
	// arena id AnalyzeNaming reserved for a given AST node directly,
	// without re-deriving it through a name lookup that could land on the
	// wrong overload-set member.
	declFuncs map[*ast.FuncDecl]symbols.FuncId
	tmplIds   map[*ast.TemplateDecl]symbols.TemplateId

	// staticDecls is every top-level StaticDecl in declaration order,
	// collected during AnalyzeNaming for the static-init ordering pass
	// (spec.md §4.7).
	staticDecls []*ast.StaticDecl
	staticSym   map[string]symbols.SymId

	// StaticOrder and StaticInit are the static-init pass's output: the
	// reverse-topological emission order and each var's resolved
	// initializer IR, keyed by Sym.
	StaticOrder []symbols.SymId
	StaticInit  map[symbols.SymId]emitter.IRExpr

	// HostFuncHandles/HostStaticValues hold what the Host Catalog (spec.md
	// §6) returned for `host`-qualified funcs and statics: func_loader's
	// opaque handle and var_loader's materialized Value, keyed by the Func/
	// Sym arena ids AnalyzeNaming reserved for them. Populated during
	// Headers/Bodies; empty for a chunk with no Hosts wired or no host
	// declarations.
	HostFuncHandles  map[symbols.FuncId]int
	HostStaticValues map[symbols.SymId]value.Value

	// hostVarIdx tracks how many host statics named name have already been
	// loaded in this chunk, feeding VarLoaderInfo.Idx.
	hostVarIdx map[string]int
}

// SharedState lets several Compilers (one per chunk) compile against one
// program's Type Store and Symbol Graph, matching spec.md §4.2's "the
// Symbol Graph spans a whole program, a chunk is one subtree of it".
type SharedState struct {
	Types    *typesystem.Store
	Graph    *symbols.Graph
	Contexts *symbols.ContextStack
}

// NewSharedState allocates a fresh, empty Type Store and Symbol Graph with
// the primitive types pre-registered, ready to host one or more chunks.
func NewSharedState() *SharedState {
	s := &SharedState{
		Types:    typesystem.NewStore(),
		Graph:    symbols.NewGraph(),
		Contexts: symbols.NewContextStack(),
	}
	registerPrimitives(s.Types, s.Graph)
	return s
}

func registerPrimitives(types *typesystem.Store, graph *symbols.Graph) {
	for _, name := range primitiveNames {
		t := types.PushType()
		types.Set(t, typesystem.Type{Kind: typesystem.KindPrimitive, Name: name})
		sym := graph.Declare(symbols.NullSym, name, symbols.KindType, symbols.NullSym)
		graph.Resolve(sym, func(s *symbols.Sym) {
			s.Type = t
			s.Exported = true
		})
	}
}

// New constructs a Compiler for one chunk, wiring the Resolver/Matcher/
// Expander/Emitter quartet together. eval may be nil for chunks that never
// reach a compile-time function call or an overloaded dyn_call fold; a nil
// Evaluator surfaces as CodeCtEvalFailed/Internal only if actually invoked.
func New(shared *SharedState, module, file string, eval Evaluator) *Compiler {
	chunk := shared.Graph.Declare(symbols.NullSym, file, symbols.KindChunk, symbols.NullSym)
	shared.Graph.Resolve(chunk, func(s *symbols.Sym) {
		s.Module = module
		s.OwningChunk = chunk
		s.Exported = true
	})

	res := resolver.New(shared.Graph, shared.Types, shared.Contexts)
	res.CurrentChunk = chunk
	res.CurrentModule = module

	em := emitter.New(shared.Graph, shared.Types, res, nil, nil)
	exp := template.New(shared.Graph, shared.Types, res, eval)
	mat := matcher.New(shared.Graph, shared.Types, res, exp, em, eval)
	em.Matcher = mat
	em.Template = exp
	res.Expander = exp

	c := &Compiler{
		ChunkID:      uuid.New(),
		Types:        shared.Types,
		Graph:        shared.Graph,
		Contexts:     shared.Contexts,
		Resolver:     res,
		Matcher:      mat,
		Expander:     exp,
		Emitter:      em,
		Chunk:        chunk,
		Module:       module,
		File:         file,
		FuncBodies:   make(map[symbols.FuncId][]emitter.IRStmt),
		methodOwners: make(map[*ast.FuncDecl]symbols.SymId),
		declFuncs:    make(map[*ast.FuncDecl]symbols.FuncId),
		tmplIds:      make(map[*ast.TemplateDecl]symbols.TemplateId),
		staticSym:        make(map[string]symbols.SymId),
		StaticInit:       make(map[symbols.SymId]emitter.IRExpr),
		HostFuncHandles:  make(map[symbols.FuncId]int),
		HostStaticValues: make(map[symbols.SymId]value.Value),
		hostVarIdx:       make(map[string]int),
	}
	exp.ResolveLeaf = c.resolveTemplateLeaf
	exp.ResolveCtFunc = c.resolveCtFuncLeaf
	return c
}

// report annotates a diagnostic with this chunk's correlators and
// accumulates it, returning it unchanged for callers that also want to
// propagate it up the call stack immediately.
func (c *Compiler) report(err *diagnostics.DiagnosticError) *diagnostics.DiagnosticError {
	if err == nil {
		return nil
	}
	err.ChunkID = c.ChunkID.String()
	if err.File == "" {
		err.File = c.File
	}
	c.Reports = append(c.Reports, err)
	return err
}

// CompileProgram runs the full Declaration Pipeline over one parsed chunk
// (spec.md §4.7): Naming, Headers, Instances, Bodies, then static-init
// ordering. Every pass continues past a failing declaration so that one
// compile surfaces every independent problem it can (spec.md §4.9); check
// len(c.Reports) == 0 for success.
func (c *Compiler) CompileProgram(prog *ast.Program) {
	c.AnalyzeNaming(prog)
	c.AnalyzeHeaders(prog)
	c.AnalyzeInstances(prog)
	c.AnalyzeBodies(prog)
	c.orderStaticInit()
}
