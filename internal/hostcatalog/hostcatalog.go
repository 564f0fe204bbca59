// Package hostcatalog is a SQLite-backed implementation of
// internal/compiler.HostCatalog (spec.md §6): instead of Go closures
// supplying type_loader/func_loader/var_loader answers at embed time, host
// declarations are authored as rows in a small catalog database and queried
// through database/sql, so a host module's surface can be inspected and
// edited without recompiling the embedding.
package hostcatalog

import (
	"database/sql"
	"fmt"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/funvibe/funxy/internal/compiler"
	"github.com/funvibe/funxy/internal/typesystem"
	"github.com/funvibe/funxy/internal/value"
)

const schema = `
CREATE TABLE IF NOT EXISTS host_types (
	module      TEXT NOT NULL,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL,
	decl_target TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (module, name)
);

CREATE TABLE IF NOT EXISTS host_funcs (
	module      TEXT NOT NULL,
	name        TEXT NOT NULL,
	param_types TEXT NOT NULL DEFAULT '',
	return_type TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (module, name)
);

CREATE TABLE IF NOT EXISTS host_vars (
	module TEXT NOT NULL,
	name   TEXT NOT NULL,
	idx    INTEGER NOT NULL,
	kind   TEXT NOT NULL,
	repr   TEXT NOT NULL DEFAULT '',
	PRIMARY KEY (module, name, idx)
);
`

// Catalog implements compiler.HostCatalog against a SQLite database opened
// with database/sql. Type/signature names in the catalog are resolved
// against a caller-supplied name table (RegisterType) rather than the
// Symbol Graph, so this package never needs to import internal/symbols:
// the Declaration Pipeline is the only thing that walks scopes.
type Catalog struct {
	db    *sql.DB
	types *typesystem.Store

	named map[string]typesystem.TypeId

	nextFuncHandle int
}

// Open creates (or attaches to) a SQLite-backed catalog at dsn — e.g.
// "file:host.db?cache=shared" or "file::memory:?cache=shared" for an
// ephemeral one — and ensures its schema exists. types is the live Type
// Store whose primitive TypeIds RegisterType binds catalog rows against.
func Open(dsn string, types *typesystem.Store) (*Catalog, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("hostcatalog: open %s: %w", dsn, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("hostcatalog: schema: %w", err)
	}
	return &Catalog{db: db, types: types, named: make(map[string]typesystem.TypeId)}, nil
}

// Close releases the underlying database handle.
func (c *Catalog) Close() error { return c.db.Close() }

// RegisterType binds name (as used in decl_target columns and host_funcs'
// param_types/return_type columns) to an already-interned TypeId — every
// primitive name (Int, Float, Bool, String, Void, Type) and every
// host_object the catalog itself has already loaded via LoadType.
func (c *Catalog) RegisterType(name string, id typesystem.TypeId) {
	c.named[name] = id
}

// DeclareType inserts or replaces a host_types row (spec.md §6 type_loader
// shapes): kind is one of "hostobj", "core_custom", "create", "decl".
// declTarget is only meaningful for kind "decl" and must already be known
// to RegisterType by the time LoadType runs.
func (c *Catalog) DeclareType(module, name string, kind compiler.TypeLoaderKind, declTarget string) error {
	_, err := c.db.Exec(
		`INSERT INTO host_types(module, name, kind, decl_target) VALUES (?, ?, ?, ?)
		 ON CONFLICT(module, name) DO UPDATE SET kind=excluded.kind, decl_target=excluded.decl_target`,
		module, name, string(kind), declTarget)
	if err != nil {
		return fmt.Errorf("hostcatalog: declare type %s.%s: %w", module, name, err)
	}
	return nil
}

// DeclareFunc inserts or replaces a host_funcs row. paramTypes/returnType
// are names resolved through RegisterType when LoadFunc validates the
// declaration site's expected signature.
func (c *Catalog) DeclareFunc(module, name string, paramTypes []string, returnType string) error {
	_, err := c.db.Exec(
		`INSERT INTO host_funcs(module, name, param_types, return_type) VALUES (?, ?, ?, ?)
		 ON CONFLICT(module, name) DO UPDATE SET param_types=excluded.param_types, return_type=excluded.return_type`,
		module, name, strings.Join(paramTypes, ","), returnType)
	if err != nil {
		return fmt.Errorf("hostcatalog: declare func %s.%s: %w", module, name, err)
	}
	return nil
}

// DeclareVar inserts or replaces a host_vars row. kind is one of
// "int"/"float"/"bool"/"string"/"void"; repr is the literal textual
// representation (ignored for "void").
func (c *Catalog) DeclareVar(module, name string, idx int, kind, repr string) error {
	_, err := c.db.Exec(
		`INSERT INTO host_vars(module, name, idx, kind, repr) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(module, name, idx) DO UPDATE SET kind=excluded.kind, repr=excluded.repr`,
		module, name, idx, kind, repr)
	if err != nil {
		return fmt.Errorf("hostcatalog: declare var %s.%s#%d: %w", module, name, idx, err)
	}
	return nil
}

// LoadType implements compiler.HostCatalog (spec.md §6 type_loader).
func (c *Catalog) LoadType(info compiler.TypeLoaderInfo) (compiler.TypeLoaderResult, error) {
	var kind, declTarget string
	err := c.db.QueryRow(
		`SELECT kind, decl_target FROM host_types WHERE module = ? AND name = ?`,
		info.Module, info.Name,
	).Scan(&kind, &declTarget)
	if err == sql.ErrNoRows {
		return compiler.TypeLoaderResult{}, fmt.Errorf("no host_types row for %s.%s", info.Module, info.Name)
	}
	if err != nil {
		return compiler.TypeLoaderResult{}, fmt.Errorf("hostcatalog: query type %s.%s: %w", info.Module, info.Name, err)
	}

	tk := compiler.TypeLoaderKind(kind)
	if tk != compiler.TypeLoaderDecl {
		return compiler.TypeLoaderResult{Kind: tk}, nil
	}

	target, ok := c.named[declTarget]
	if !ok {
		return compiler.TypeLoaderResult{}, fmt.Errorf("hostcatalog: decl target %q for %s.%s is not registered", declTarget, info.Module, info.Name)
	}
	return compiler.TypeLoaderResult{Kind: tk, Payload: target}, nil
}

// LoadFunc implements compiler.HostCatalog (spec.md §6 func_loader):
// validates the declaration site's already-resolved signature against the
// catalog's recorded shape before handing back a handle. The handle is a
// monotonically increasing index into this Catalog's own call table, not a
// VM bytecode offset — invoking it is a host embedding's concern, out of
// scope here (spec.md §1).
func (c *Catalog) LoadFunc(info compiler.FuncLoaderInfo) (int, error) {
	var paramTypesCSV, returnType string
	err := c.db.QueryRow(
		`SELECT param_types, return_type FROM host_funcs WHERE module = ? AND name = ?`,
		info.Module, info.Name,
	).Scan(&paramTypesCSV, &returnType)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("no host_funcs row for %s.%s", info.Module, info.Name)
	}
	if err != nil {
		return 0, fmt.Errorf("hostcatalog: query func %s.%s: %w", info.Module, info.Name, err)
	}

	var wantParams []string
	if paramTypesCSV != "" {
		wantParams = strings.Split(paramTypesCSV, ",")
	}
	got := c.types.Sig(info.Sig)
	if len(got.Params) != len(wantParams) {
		return 0, fmt.Errorf("hostcatalog: %s.%s: catalog declares %d parameter(s), call site expects %d",
			info.Module, info.Name, len(wantParams), len(got.Params))
	}
	for i, want := range wantParams {
		wantID, ok := c.named[want]
		if !ok {
			return 0, fmt.Errorf("hostcatalog: %s.%s: unregistered param type %q", info.Module, info.Name, want)
		}
		if got.Params[i] != wantID && got.Params[i] != c.types.DynType() && got.Params[i] != c.types.AnyType() {
			return 0, fmt.Errorf("hostcatalog: %s.%s: parameter %d mismatch", info.Module, info.Name, i)
		}
	}
	if wantRet, ok := c.named[returnType]; ok {
		if got.Return != wantRet && got.Return != c.types.DynType() && got.Return != c.types.AnyType() {
			return 0, fmt.Errorf("hostcatalog: %s.%s: return type mismatch", info.Module, info.Name)
		}
	}

	c.nextFuncHandle++
	return c.nextFuncHandle, nil
}

// LoadVar implements compiler.HostCatalog (spec.md §6 var_loader).
func (c *Catalog) LoadVar(info compiler.VarLoaderInfo) (value.Value, error) {
	var kind, repr string
	err := c.db.QueryRow(
		`SELECT kind, repr FROM host_vars WHERE module = ? AND name = ? AND idx = ?`,
		info.Module, info.Name, info.Idx,
	).Scan(&kind, &repr)
	if err == sql.ErrNoRows {
		return value.Value{}, fmt.Errorf("no host_vars row for %s.%s#%d", info.Module, info.Name, info.Idx)
	}
	if err != nil {
		return value.Value{}, fmt.Errorf("hostcatalog: query var %s.%s#%d: %w", info.Module, info.Name, info.Idx, err)
	}

	switch kind {
	case "int":
		var i int64
		if _, err := fmt.Sscanf(repr, "%d", &i); err != nil {
			return value.Value{}, fmt.Errorf("hostcatalog: var %s.%s: bad int repr %q", info.Module, info.Name, repr)
		}
		return value.NewInt(i), nil
	case "float":
		var f float64
		if _, err := fmt.Sscanf(repr, "%g", &f); err != nil {
			return value.Value{}, fmt.Errorf("hostcatalog: var %s.%s: bad float repr %q", info.Module, info.Name, repr)
		}
		return value.NewFloat(f), nil
	case "bool":
		return value.NewBool(repr == "true"), nil
	case "string":
		return value.NewString(repr), nil
	case "void":
		return value.NewVoid(), nil
	default:
		return value.Value{}, fmt.Errorf("hostcatalog: var %s.%s: unknown kind %q", info.Module, info.Name, kind)
	}
}
