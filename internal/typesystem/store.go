// Package typesystem is the Type Store (spec.md §4.1): an arena of
// interned Types and FuncSigs addressed by stable TypeId/FuncSigId handles.
// Nothing is ever freed once pushed; identity survives for the whole
// compilation, matching spec.md §9's "arena with stable identity" mandate
// for this one data structure: this arena replaces a recursive
// Type-interface tree, because templates/variants need handles that
// outlive any single resolution frame and compare by identity, not by
// structural walk.
package typesystem

// TypeId is a handle into the Store. Zero is reserved null (spec.md §3).
type TypeId int

const NullType TypeId = 0

// Kind enumerates what a Type's payload holds (spec.md §3).
type Kind int

const (
	KindDummy Kind = iota
	KindPrimitive
	KindObject
	KindStruct
	KindEnum
	KindTrait
	KindHostObject
	KindArray
	KindPtrSlice
	KindRefSlice
	KindPointer
	KindRef
	KindFuncPtr
	KindFuncUnion
	KindFuncSym
	KindOption
	KindDistinct
	KindCtRef
	KindCtInfer
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindObject:
		return "object"
	case KindStruct:
		return "struct"
	case KindEnum:
		return "enum"
	case KindTrait:
		return "trait"
	case KindHostObject:
		return "host_object"
	case KindArray:
		return "array"
	case KindPtrSlice:
		return "ptr_slice"
	case KindRefSlice:
		return "ref_slice"
	case KindPointer:
		return "pointer"
	case KindRef:
		return "ref"
	case KindFuncPtr:
		return "func_ptr"
	case KindFuncUnion:
		return "func_union"
	case KindFuncSym:
		return "func_sym"
	case KindOption:
		return "option"
	case KindDistinct:
		return "distinct"
	case KindCtRef:
		return "ct_ref"
	case KindCtInfer:
		return "ct_infer"
	default:
		return "dummy"
	}
}

// Flags are independent boolean properties a Type may carry (spec.md §3).
type Flags struct {
	CtRef          bool // sentinel for an unresolved compile-time parameter position
	CtInfer        bool // sentinel during template-argument inference
	CustomPre      bool // host_object requests a custom pre-hook
	LoadAllMethods bool // core_custom: load every host method eagerly
}

// Field is one struct/object member.
type Field struct {
	Name string
	Type TypeId
}

// Variant is one enum member.
type EnumVariant struct {
	Name    string
	Payload TypeId // NullType for a unit variant
}

// Type is one arena slot. Only the fields relevant to Kind are populated;
// callers must switch on Kind before reading kind-specific payload fields,
// following the same Kind-qualified tagged-struct convention symbols.Sym
// uses.
type Type struct {
	ID    TypeId
	Kind  Kind
	Flags Flags

	// object/struct
	Name   string
	Fields []Field

	// enum
	Variants []EnumVariant
	Choice   bool

	// array/pointer/ref/option/distinct: single element type
	Elem TypeId

	// array
	Len int

	// func_ptr/func_union/func_sym
	Sig FuncSigId

	// ct_ref
	ParamIndex int
}

// CompactType threads dyn-ness alongside a static TypeId through IR
// (spec.md §4.1 "CompactType").
type CompactType struct {
	ID      TypeId
	Dynamic bool
}

// Store is the Type Store. The zero value is not usable; use NewStore.
type Store struct {
	types []Type

	ctRefCache map[int]TypeId

	// builtinCache tracks TypeIds already materialized for a given
	// (template name, arg tuple) so getPointerType et al. are idempotent,
	// mirroring expandTemplate's memoization for the handful of built-in
	// templates the Store itself expands eagerly.
	builtinCache map[builtinKey]TypeId

	sigs    []FuncSig
	sigByKey map[sigKey]FuncSigId

	dynType TypeId
	anyType TypeId
}

type builtinKey struct {
	template string
	arg      TypeId
	n        int
}

// NewStore creates a Store with slot 0 reserved as NullType and the Dyn/Any
// top types pre-interned.
func NewStore() *Store {
	s := &Store{
		ctRefCache:   make(map[int]TypeId),
		builtinCache: make(map[builtinKey]TypeId),
		sigByKey:     make(map[sigKey]FuncSigId),
	}
	s.types = append(s.types, Type{ID: NullType, Kind: KindDummy})
	s.dynType = s.pushPrimitive("Dyn")
	s.anyType = s.pushPrimitive("Any")
	return s
}

func (s *Store) pushPrimitive(name string) TypeId {
	id := s.PushType()
	s.types[id].Kind = KindPrimitive
	s.types[id].Name = name
	return id
}

// DynType / AnyType return the pre-interned top types.
func (s *Store) DynType() TypeId { return s.dynType }
func (s *Store) AnyType() TypeId { return s.anyType }

// PushType appends a fresh slot and returns its handle.
func (s *Store) PushType() TypeId {
	id := TypeId(len(s.types))
	s.types = append(s.types, Type{ID: id})
	return id
}

// Get returns a copy of the type at id. Callers mutate through Set.
func (s *Store) Get(id TypeId) Type {
	if int(id) < 0 || int(id) >= len(s.types) {
		return Type{ID: NullType, Kind: KindDummy}
	}
	return s.types[id]
}

// Set overwrites the slot at id, preserving its ID field.
func (s *Store) Set(id TypeId, t Type) {
	t.ID = id
	s.types[id] = t
}

// Len reports how many slots are in use (testable property support: arena
// growth bookkeeping for Template memoization, spec.md §8 property 2).
func (s *Store) Len() int { return len(s.types) }
