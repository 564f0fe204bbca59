package typesystem

// The following are the structural halves of the built-in templates named
// in spec.md §6 (Pointer[T], Ref[T], PtrSlice[T], RefSlice[T], Array[N,T]):
// each wraps a single element TypeId and is idempotent per (kind, elem[, n])
// tuple, mirroring expandTemplate's variant memoization (spec.md §4.4) but
// specialized to avoid a Store -> template package import cycle. The
// Template Expander's Pointer/Ref/PtrSlice/RefSlice/Array template bodies
// are implemented purely in terms of these constructors, so there is
// exactly one wrapper TypeId per distinct element, whichever path created
// it first.

func (s *Store) getWrapped(kind Kind, elem TypeId, n int) TypeId {
	key := builtinKey{template: kind.String(), arg: elem, n: n}
	if id, ok := s.builtinCache[key]; ok {
		return id
	}
	id := s.PushType()
	s.Set(id, Type{Kind: kind, Elem: elem, Len: n})
	s.builtinCache[key] = id
	return id
}

// GetPointerType returns (memoized) `Pointer[elem]`.
func (s *Store) GetPointerType(elem TypeId) TypeId { return s.getWrapped(KindPointer, elem, 0) }

// GetRefType returns (memoized) `Ref[elem]`.
func (s *Store) GetRefType(elem TypeId) TypeId { return s.getWrapped(KindRef, elem, 0) }

// GetPtrSliceType returns (memoized) `PtrSlice[elem]`, i.e. `[*]elem`.
func (s *Store) GetPtrSliceType(elem TypeId) TypeId {
	return s.getWrapped(KindPtrSlice, elem, 0)
}

// GetRefSliceType returns (memoized) `RefSlice[elem]`, i.e. `[]elem`.
func (s *Store) GetRefSliceType(elem TypeId) TypeId {
	return s.getWrapped(KindRefSlice, elem, 0)
}

// GetArrayType returns (memoized) `Array[n, elem]`, i.e. `[n]elem`.
func (s *Store) GetArrayType(n int, elem TypeId) TypeId {
	return s.getWrapped(KindArray, elem, n)
}

// GetOptionType returns (memoized) `Option[elem]`.
func (s *Store) GetOptionType(elem TypeId) TypeId { return s.getWrapped(KindOption, elem, 0) }

// GetFuncPtrType wraps an interned FuncSig as a concrete callable pointer
// type (`func (T) R` used as a value).
func (s *Store) GetFuncPtrType(sig FuncSigId) TypeId {
	key := builtinKey{template: "FuncPtr", arg: NullType, n: int(sig)}
	if id, ok := s.builtinCache[key]; ok {
		return id
	}
	id := s.PushType()
	s.Set(id, Type{Kind: KindFuncPtr, Sig: sig})
	s.builtinCache[key] = id
	return id
}

// GetFuncUnionType wraps an interned FuncSig as a late-bound function
// pointer that may point at one of several compatible candidates.
func (s *Store) GetFuncUnionType(sig FuncSigId) TypeId {
	key := builtinKey{template: "FuncUnion", arg: NullType, n: int(sig)}
	if id, ok := s.builtinCache[key]; ok {
		return id
	}
	id := s.PushType()
	s.Set(id, Type{Kind: KindFuncUnion, Sig: sig})
	s.builtinCache[key] = id
	return id
}

// GetFuncSymType wraps an interned FuncSig as a reference to an entire
// overload set compatible with that signature (spec.md §4.5). The emitter's
// DynCall lowering does not call it; it records the overload set on
// CallExpr.FuncSym instead.
func (s *Store) GetFuncSymType(sig FuncSigId) TypeId {
	key := builtinKey{template: "FuncSym", arg: NullType, n: int(sig)}
	if id, ok := s.builtinCache[key]; ok {
		return id
	}
	id := s.PushType()
	s.Set(id, Type{Kind: KindFuncSym, Sig: sig})
	s.builtinCache[key] = id
	return id
}
