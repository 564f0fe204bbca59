package hostcatalog

import (
	"fmt"
	"testing"

	"github.com/funvibe/funxy/internal/compiler"
	"github.com/funvibe/funxy/internal/typesystem"
)

func newTestStore(t *testing.T) (*typesystem.Store, map[string]typesystem.TypeId) {
	t.Helper()
	types := typesystem.NewStore()
	named := make(map[string]typesystem.TypeId)
	for _, name := range []string{"Int", "Float", "Bool", "String", "Void"} {
		id := types.PushType()
		types.Set(id, typesystem.Type{Kind: typesystem.KindPrimitive, Name: name})
		named[name] = id
	}
	return types, named
}

func openTestCatalog(t *testing.T) (*Catalog, map[string]typesystem.TypeId) {
	t.Helper()
	types, named := newTestStore(t)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	cat, err := Open(dsn, types)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { cat.Close() })
	for name, id := range named {
		cat.RegisterType(name, id)
	}
	return cat, named
}

func TestLoadTypeDecl(t *testing.T) {
	cat, named := openTestCatalog(t)

	if err := cat.DeclareType("os", "Handle", compiler.TypeLoaderHostObj, ""); err != nil {
		t.Fatalf("DeclareType: %v", err)
	}
	if err := cat.DeclareType("os", "FD", compiler.TypeLoaderDecl, "Int"); err != nil {
		t.Fatalf("DeclareType: %v", err)
	}

	res, err := cat.LoadType(compiler.TypeLoaderInfo{Module: "os", Name: "FD"})
	if err != nil {
		t.Fatalf("LoadType: %v", err)
	}
	if res.Kind != compiler.TypeLoaderDecl {
		t.Fatalf("Kind = %v, want decl", res.Kind)
	}
	if res.Payload != named["Int"] {
		t.Fatalf("Payload = %v, want Int's TypeId %v", res.Payload, named["Int"])
	}

	res2, err := cat.LoadType(compiler.TypeLoaderInfo{Module: "os", Name: "Handle"})
	if err != nil {
		t.Fatalf("LoadType: %v", err)
	}
	if res2.Kind != compiler.TypeLoaderHostObj {
		t.Fatalf("Kind = %v, want hostobj", res2.Kind)
	}
}

func TestLoadTypeMissing(t *testing.T) {
	cat, _ := openTestCatalog(t)
	if _, err := cat.LoadType(compiler.TypeLoaderInfo{Module: "os", Name: "Nope"}); err == nil {
		t.Fatal("expected error for unregistered type")
	}
}

func TestLoadFuncMatch(t *testing.T) {
	cat, _ := openTestCatalog(t)

	if err := cat.DeclareFunc("os", "readFile", []string{"String"}, "String"); err != nil {
		t.Fatalf("DeclareFunc: %v", err)
	}

	sig := sigFromNamed(t, cat)
	handle, err := cat.LoadFunc(compiler.FuncLoaderInfo{Module: "os", Name: "readFile", Sig: sig})
	if err != nil {
		t.Fatalf("LoadFunc: %v", err)
	}
	if handle == 0 {
		t.Fatal("expected a nonzero handle")
	}

	handle2, err := cat.LoadFunc(compiler.FuncLoaderInfo{Module: "os", Name: "readFile", Sig: sig})
	if err != nil {
		t.Fatalf("LoadFunc (2nd): %v", err)
	}
	if handle2 == handle {
		t.Fatalf("expected distinct handles per load, got %d twice", handle)
	}
}

func sigFromNamed(t *testing.T, cat *Catalog) typesystem.FuncSigId {
	t.Helper()
	return cat.types.EnsureFuncSig([]typesystem.TypeId{cat.named["String"]}, cat.named["String"])
}

func TestLoadFuncArityMismatch(t *testing.T) {
	cat, _ := openTestCatalog(t)
	if err := cat.DeclareFunc("os", "readFile", []string{"String"}, "String"); err != nil {
		t.Fatalf("DeclareFunc: %v", err)
	}

	badSig := cat.types.EnsureFuncSig(nil, cat.named["String"])
	if _, err := cat.LoadFunc(compiler.FuncLoaderInfo{Module: "os", Name: "readFile", Sig: badSig}); err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestLoadVarKinds(t *testing.T) {
	cat, _ := openTestCatalog(t)

	if err := cat.DeclareVar("env", "MAX_RETRIES", 0, "int", "3"); err != nil {
		t.Fatalf("DeclareVar: %v", err)
	}
	if err := cat.DeclareVar("env", "DEBUG", 0, "bool", "true"); err != nil {
		t.Fatalf("DeclareVar: %v", err)
	}
	if err := cat.DeclareVar("env", "NAME", 0, "string", "funxy"); err != nil {
		t.Fatalf("DeclareVar: %v", err)
	}

	iv, err := cat.LoadVar(compiler.VarLoaderInfo{Module: "env", Name: "MAX_RETRIES"})
	if err != nil || iv.Int != 3 {
		t.Fatalf("LoadVar(int) = %+v, %v", iv, err)
	}

	bv, err := cat.LoadVar(compiler.VarLoaderInfo{Module: "env", Name: "DEBUG"})
	if err != nil || !bv.Bool {
		t.Fatalf("LoadVar(bool) = %+v, %v", bv, err)
	}

	sv, err := cat.LoadVar(compiler.VarLoaderInfo{Module: "env", Name: "NAME"})
	if err != nil || sv.Str != "funxy" {
		t.Fatalf("LoadVar(string) = %+v, %v", sv, err)
	}
}

func TestLoadVarMissing(t *testing.T) {
	cat, _ := openTestCatalog(t)
	if _, err := cat.LoadVar(compiler.VarLoaderInfo{Module: "env", Name: "NOPE"}); err == nil {
		t.Fatal("expected error for unregistered var")
	}
}
