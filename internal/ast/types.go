package ast

// NamedTypeSpec is a dotted name path, e.g. `mod.Foo` or a bare `Foo`
// (resolveTypeSpecNode's "name path" case, spec.md §4.3).
type NamedTypeSpec struct {
	base
	Path []string
}

func (*NamedTypeSpec) typeSpecNode() {}

// NilTypeSpec is the absence of an annotation, resolved to Dyn.
type NilTypeSpec struct{ base }

func (*NilTypeSpec) typeSpecNode() {}

// SugarKind names one of the implicit-template sugar forms (spec.md §6).
type SugarKind int

const (
	SugarPointer SugarKind = iota
	SugarRef
	SugarPtrSlice
	SugarRefSlice
	SugarOption
)

// SugarTypeSpec is `*T`, `ref T`, `[*]T`, `[]T`, or `?T`.
type SugarTypeSpec struct {
	base
	Kind SugarKind
	Elem TypeSpec
}

func (*SugarTypeSpec) typeSpecNode() {}

// ArrayTypeSpec is `[N]T`.
type ArrayTypeSpec struct {
	base
	N    Expression // compile-time-evaluated length
	Elem TypeSpec
}

func (*ArrayTypeSpec) typeSpecNode() {}

// FuncTypeSpecMarker distinguishes `func(...)R` syntactic forms.
type FuncTypeSpecMarker int

const (
	FuncPtrMarker FuncTypeSpecMarker = iota
	FuncUnionMarker
)

// FuncTypeSpec is `func (T, ...) R`.
type FuncTypeSpec struct {
	base
	Marker  FuncTypeSpecMarker
	Params  []TypeSpec
	Return  TypeSpec
}

func (*FuncTypeSpec) typeSpecNode() {}

// TemplateApplySpec is `T[A, B, ...]`, a type-level template application
// appearing in a type annotation (e.g. `List[Int]`).
type TemplateApplySpec struct {
	base
	Name string
	Args []Node // each either a TypeSpec or a compile-time Expression
}

func (*TemplateApplySpec) typeSpecNode() {}
