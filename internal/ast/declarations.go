package ast

// Param is one function/lambda parameter.
type Param struct {
	Name     string
	Type     TypeSpec
	Sema     ParamRole
	Default  Expression // optional default value
}

// ParamRole classifies a parameter for the Matcher (spec.md §4.5):
// sema_tparam (compile-time-only template parameter) vs
// sema_infer_tparam (inferred from a structural type pattern) vs ordinary.
type ParamRole int

const (
	ParamOrdinary ParamRole = iota
	ParamTemplate
	ParamInferTemplate
)

// TemplateParam is one entry in a Template's parameter list (spec.md §3).
type TemplateParam struct {
	Name string
	// Constraint, if non-nil, is the declared type the bound compile-time
	// value must be compatible with.
	Constraint TypeSpec
}

// FuncDecl is a concrete (non-generic) function declaration.
type FuncDecl struct {
	base
	Name       string
	Params     []*Param
	Return     TypeSpec
	Body       []Statement
	IsHost     bool // host-provided body, resolved via func_loader
}

func (*FuncDecl) stmtNode() {}

// TemplateDecl is a generic type or function definition (spec.md §3
// "Template"). IsFunc distinguishes a FuncTemplate from a type Template.
type TemplateDecl struct {
	base
	Name     string
	Params   []*TemplateParam
	IsFunc   bool
	FuncBody *FuncDecl  // set when IsFunc
	TypeBody Statement  // set when !IsFunc: one of ObjectDecl/StructDecl/EnumDecl/DistinctDecl
}

func (*TemplateDecl) stmtNode() {}

// Field is one member of an object/struct.
type Field struct {
	Name string
	Type TypeSpec
}

type ObjectDecl struct {
	base
	Name    string
	Fields  []*Field
	Methods []*FuncDecl
}

func (*ObjectDecl) stmtNode() {}

type StructDecl struct {
	base
	Name   string
	Fields []*Field
}

func (*StructDecl) stmtNode() {}

// CustomDecl is a host_object / core_custom declaration resolved via
// type_loader (spec.md §6).
type CustomDecl struct {
	base
	Name           string
	LoadAllMethods bool
}

func (*CustomDecl) stmtNode() {}

type EnumVariant struct {
	Name    string
	Payload TypeSpec // nil for a unit variant
}

// EnumDecl is `enum`/`choice enum` (spec.md §3: kind enum, flag `choice`).
type EnumDecl struct {
	base
	Name     string
	Choice   bool
	Variants []*EnumVariant
}

func (*EnumDecl) stmtNode() {}

// TraitDecl declares a trait (interface) with required method signatures.
type TraitDecl struct {
	base
	Name    string
	Methods []*FuncDecl // bodies optional: non-nil Body is a default method
}

func (*TraitDecl) stmtNode() {}

// DistinctDecl wraps another type nominally (spec.md glossary "Distinct
// type"). Resolved in place: its reserved Sym keeps its identity and is
// given a fresh KindDistinct TypeId.
type DistinctDecl struct {
	base
	Name       string
	Underlying TypeSpec
}

func (*DistinctDecl) stmtNode() {}

// StaticDecl is a top-level `var`/`static` declaration participating in
// static-init dependency ordering (spec.md §4.7).
type StaticDecl struct {
	base
	Name        string
	Type        TypeSpec
	Initializer Expression
	IsHost      bool // host-provided initial value, resolved via var_loader
}

func (*StaticDecl) stmtNode() {}

// ContextDecl declares a context variable resolved implicitly up the
// ResolveContext stack.
type ContextDecl struct {
	base
	Name string
	Type TypeSpec
}

func (*ContextDecl) stmtNode() {}

type TypeAliasDecl struct {
	base
	Name string
	Type TypeSpec
}

func (*TypeAliasDecl) stmtNode() {}

// UseAlias is `use mod.Name as Alias` / `use mod.*`.
type UseAlias struct {
	base
	ModulePath []string
	Name       string // empty for use-all
	Alias      string
}

func (*UseAlias) stmtNode() {}

type ImportStmt struct {
	base
	Path  []string
	Alias string
}

func (*ImportStmt) stmtNode() {}
