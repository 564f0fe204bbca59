package compiler

import "github.com/funvibe/funxy/internal/typesystem"
import "github.com/funvibe/funxy/internal/value"

// TypeLoaderKind names one of the four shapes a type_loader response can
// take (spec.md §6).
type TypeLoaderKind string

const (
	// TypeLoaderDecl re-exports an already-known type under a new name.
	TypeLoaderDecl TypeLoaderKind = "decl"
	// TypeLoaderHostObj materializes a host_object: an opaque type whose
	// methods are resolved lazily, one at a time, via func_loader.
	TypeLoaderHostObj TypeLoaderKind = "hostobj"
	// TypeLoaderCoreCustom is a host_object that additionally requests
	// every one of its methods be loaded up front.
	TypeLoaderCoreCustom TypeLoaderKind = "core_custom"
	// TypeLoaderCreate is a host_object that further requests a custom
	// pre-construction hook run before `Type{...}` initializer evaluation.
	TypeLoaderCreate TypeLoaderKind = "create"
)

// TypeLoaderInfo is the argument shape of the type_loader hook (spec.md §6:
// "type_loader(info: {mod, name})").
type TypeLoaderInfo struct {
	Module string
	Name   string
}

// TypeLoaderResult is type_loader's return shape. Payload is only
// meaningful for TypeLoaderDecl, where it names the TypeId being aliased.
type TypeLoaderResult struct {
	Kind    TypeLoaderKind
	Payload typesystem.TypeId
}

// FuncLoaderInfo is func_loader's argument shape (spec.md §6:
// "func_loader(info: {mod, name, sigId})"): Sig lets the loader validate
// (or reject, via CodeLoaderMismatch) the signature the declaration site
// expects before handing back a callable.
type FuncLoaderInfo struct {
	Module string
	Name   string
	Sig    typesystem.FuncSigId
}

// VarLoaderInfo is var_loader's argument shape (spec.md §6: "var_loader(info:
// {mod, name, idx})"). Idx disambiguates multiple host vars sharing a name
// across overload-like host declarations; type checking against the
// declared static's annotation is the compiler's job, not the loader's.
type VarLoaderInfo struct {
	Module string
	Name   string
	Idx    int
}

// HostCatalog is the Declaration Pipeline's external interface to the three
// host hooks (spec.md §6). internal/hostcatalog implements this against a
// SQLite-backed catalog; tests can supply any stub. Kept abstract so this
// package never imports a storage driver directly.
type HostCatalog interface {
	LoadType(info TypeLoaderInfo) (TypeLoaderResult, error)
	LoadFunc(info FuncLoaderInfo) (funcHandle int, err error)
	LoadVar(info VarLoaderInfo) (value.Value, error)
}
