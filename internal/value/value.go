// Package value is the compile-time Value representation (spec.md §3): a
// tagged, reference-counted value produced by CTE, bound into
// ResolveContexts, and retained inside Variant argument vectors.
//
// Uses the same tagged-value-with-retain/release idiom a VM's runtime
// Value would use, one layer down; this package is the compile-time-only
// analog the resolver/template/matcher packages share without importing
// a VM.
package value

import "github.com/funvibe/funxy/internal/typesystem"

// Tag names which field of a Value is populated.
type Tag int

const (
	TagVoid Tag = iota
	TagType
	TagInt
	TagFloat
	TagBool
	TagString
	TagFunc
	TagObject

	// TagCtPending marks a `comptime <ident>` parameter declared in
	// parse_ct_inferred_params mode (spec.md §4.4): a placeholder bound into
	// the current ResolveContext before the Matcher has inferred its real
	// value from the call site's arguments.
	TagCtPending
)

// Value is ref-counted: every push onto a value stack is matched by a
// release on every exit path, success or error (spec.md §5).
type Value struct {
	Tag   Tag
	refs  *int

	TypeVal typesystem.TypeId
	Int     int64
	Float   float64
	Bool    bool
	Str     string
	FuncSym int // symbols.SymId of a resolved single-func reference

	// Object holds field values for a compile-time-folded object/struct
	// instance (spec.md §3 Value: "object instance").
	Object map[string]Value
}

func newCounted(v Value) Value {
	n := 1
	v.refs = &n
	return v
}

// NewVoid / NewType / NewInt / NewFloat / NewBool / NewString / NewFunc
// construct a freshly-retained Value (refcount 1).
func NewVoid() Value                       { return newCounted(Value{Tag: TagVoid}) }
func NewType(t typesystem.TypeId) Value    { return newCounted(Value{Tag: TagType, TypeVal: t}) }
func NewInt(i int64) Value                 { return newCounted(Value{Tag: TagInt, Int: i}) }
func NewFloat(f float64) Value             { return newCounted(Value{Tag: TagFloat, Float: f}) }
func NewBool(b bool) Value                 { return newCounted(Value{Tag: TagBool, Bool: b}) }
func NewString(s string) Value             { return newCounted(Value{Tag: TagString, Str: s}) }
func NewFunc(symId int) Value              { return newCounted(Value{Tag: TagFunc, FuncSym: symId}) }
func NewObject(fields map[string]Value) Value {
	return newCounted(Value{Tag: TagObject, Object: fields})
}

// NewCtPending constructs an unbound ct-inferred-parameter placeholder
// (spec.md §4.4). It is replaced in the ResolveContext once the Matcher
// infers a concrete value from the call site.
func NewCtPending() Value { return newCounted(Value{Tag: TagCtPending}) }

// Retain increments the refcount and returns the same logical value (the
// receiver and the returned copy share the counter).
func (v Value) Retain() Value {
	if v.refs != nil {
		*v.refs++
	}
	return v
}

// Release decrements the refcount. It is safe to call on a zero Value.
func (v Value) Release() {
	if v.refs == nil {
		return
	}
	*v.refs--
}

// RefCount reports the current reference count, used by tests asserting
// value-stack conservation (spec.md §8 property 3).
func (v Value) RefCount() int {
	if v.refs == nil {
		return 0
	}
	return *v.refs
}

// DeepEqual implements the type-aware deep equality spec.md §4.4 uses to
// hash Variant argument tuples: two Values are equal iff same Tag and
// equal payload, recursing into Object fields.
func DeepEqual(a, b Value) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagVoid:
		return true
	case TagType:
		return a.TypeVal == b.TypeVal
	case TagInt:
		return a.Int == b.Int
	case TagFloat:
		return a.Float == b.Float
	case TagBool:
		return a.Bool == b.Bool
	case TagString:
		return a.Str == b.Str
	case TagFunc:
		return a.FuncSym == b.FuncSym
	case TagObject:
		if len(a.Object) != len(b.Object) {
			return false
		}
		for k, av := range a.Object {
			bv, ok := b.Object[k]
			if !ok || !DeepEqual(av, bv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
