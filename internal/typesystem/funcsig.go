package typesystem

import "fmt"

// FuncSigId is a handle into the Store's interned signature table.
type FuncSigId int

// FuncSig is an interned function signature (spec.md §3): identity is
// (params, ret).
type FuncSig struct {
	ID               FuncSigId
	Params           []TypeId
	Return           TypeId
	ReqCallTypeCheck bool // any param type != Dyn and != Any
	CtDep            bool // any param refers to a ct_ref type
}

type sigKey struct {
	params string
	ret    TypeId
}

func keyOf(params []TypeId, ret TypeId) sigKey {
	k := sigKey{ret: ret}
	for _, p := range params {
		k.params += fmt.Sprintf("%d,", p)
	}
	return k
}

// EnsureFuncSig interns (params, ret), returning the existing id if this
// exact signature was seen before (spec.md §8 property 1: identity iff
// params and ret are equal).
func (s *Store) EnsureFuncSig(params []TypeId, ret TypeId) FuncSigId {
	k := keyOf(params, ret)
	if id, ok := s.sigByKey[k]; ok {
		return id
	}

	cp := make([]TypeId, len(params))
	copy(cp, params)

	sig := FuncSig{
		ID:     FuncSigId(len(s.sigs)),
		Params: cp,
		Return: ret,
	}
	sig.ReqCallTypeCheck = anyRequiresCheck(s, cp)
	sig.CtDep = anyCtDep(s, cp)

	s.sigs = append(s.sigs, sig)
	s.sigByKey[k] = sig.ID
	return sig.ID
}

func anyRequiresCheck(s *Store, params []TypeId) bool {
	for _, p := range params {
		if p != s.dynType && p != s.anyType {
			return true
		}
	}
	return false
}

func anyCtDep(s *Store, params []TypeId) bool {
	for _, p := range params {
		if s.Get(p).Kind == KindCtRef {
			return true
		}
	}
	return false
}

// Sig returns the interned signature for id.
func (s *Store) Sig(id FuncSigId) FuncSig {
	if int(id) < 0 || int(id) >= len(s.sigs) {
		return FuncSig{}
	}
	return s.sigs[id]
}

// FormatSig renders a FuncSigId in the canonical `func name(T, T) R` form
// used by overload-mismatch diagnostics (spec.md §6).
func (s *Store) FormatSig(name string, id FuncSigId) string {
	sig := s.Sig(id)
	out := "func " + name + "("
	for i, p := range sig.Params {
		if i > 0 {
			out += ", "
		}
		out += s.Get(p).Name
	}
	out += ") " + s.Get(sig.Return).Name
	return out
}

// EnsureCtRefType returns the (memoized) sentinel type for compile-time
// parameter position idx (spec.md §4.1).
func (s *Store) EnsureCtRefType(idx int) TypeId {
	if id, ok := s.ctRefCache[idx]; ok {
		return id
	}
	id := s.PushType()
	s.Set(id, Type{Kind: KindCtRef, Flags: Flags{CtRef: true}, ParamIndex: idx})
	s.ctRefCache[idx] = id
	return id
}

// IsTypeSymCompat implements spec.md §4.1's compatibility rule:
// a == b, or b is Any/Dyn. The nominal-subtype leg (implementsOrSubtypes)
// accepts no pair, so those two cases are the only ones that pass.
func (s *Store) IsTypeSymCompat(a, b TypeId) bool {
	if a == b {
		return true
	}
	if b == s.anyType || b == s.dynType {
		return true
	}
	return s.implementsOrSubtypes(a, b)
}

// implementsOrSubtypes is the nominal-subtype leg of IsTypeSymCompat. It
// returns false for every pair: a distinct type is never implicitly
// compatible with its underlying type, and no trait conformance or
// subtype relation is recorded anywhere for it to consult.
func (s *Store) implementsOrSubtypes(a, b TypeId) bool {
	at := s.Get(a)
	if at.Kind == KindDistinct && at.Elem == b {
		return false // distinct identity is independent of structure
	}
	return false
}

// DerefOption returns elemType, true if t is an Option[elem].
func (s *Store) DerefOption(t TypeId) (TypeId, bool) {
	tt := s.Get(t)
	if tt.Kind == KindOption {
		return tt.Elem, true
	}
	return NullType, false
}
