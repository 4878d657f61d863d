package modimport

import (
	"testing"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/infer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

func providerExports() *Exports {
	ex := newExports("geo")
	ex.Funcs["distance"] = ty.Mono(ty.Fun{Params: []ty.Ty{ty.Int, ty.Int}, Ret: ty.Int})
	ex.Structs["Point"] = &registry.StructDef{Name: "Point", Fields: []registry.FieldDef{{Name: "x", Type: ty.Int}}}
	ex.Private["helper"] = true
	return ex
}

func TestApplyImportsFromModuleCopiesScheme(t *testing.T) {
	catalog := Catalog{"geo": providerExports()}
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()

	ApplyImports(c, env, catalog, []*ast.ImportDecl{{Path: "geo", Symbols: []string{"distance", "Point"}}})

	if len(c.Errors) != 0 {
		t.Fatalf("expected no errors, got %v", c.Errors)
	}
	if _, ok := env.Lookup("distance"); !ok {
		t.Error("expected distance to be bound in env")
	}
	if _, ok := c.Types.Structs["Point"]; !ok {
		t.Error("expected Point to be registered in the type registry")
	}
}

func TestApplyImportsUnknownModuleReportsIMP001(t *testing.T) {
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()

	ApplyImports(c, env, Catalog{}, []*ast.ImportDecl{{Path: "missing", Symbols: []string{"x"}}})

	if len(c.Errors) != 1 || c.Errors[0].Code != "IMP001" {
		t.Fatalf("expected a single IMP001 error, got %v", c.Errors)
	}
}

func TestApplyImportsPrivateNameReportsIMP003(t *testing.T) {
	catalog := Catalog{"geo": providerExports()}
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()

	ApplyImports(c, env, catalog, []*ast.ImportDecl{{Path: "geo", Symbols: []string{"helper"}}})

	if len(c.Errors) != 1 || c.Errors[0].Code != "IMP003" {
		t.Fatalf("expected a single IMP003 error, got %v", c.Errors)
	}
}

func TestApplyImportsUnknownNameReportsIMP002(t *testing.T) {
	catalog := Catalog{"geo": providerExports()}
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()

	ApplyImports(c, env, catalog, []*ast.ImportDecl{{Path: "geo", Symbols: []string{"nonexistent"}}})

	if len(c.Errors) != 1 || c.Errors[0].Code != "IMP002" {
		t.Fatalf("expected a single IMP002 error, got %v", c.Errors)
	}
}

func TestApplyImportsWholeModuleRegistersNamespace(t *testing.T) {
	catalog := Catalog{"geo": providerExports()}
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()

	ApplyImports(c, env, catalog, []*ast.ImportDecl{{Path: "geo", Symbols: nil}})

	members, ok := c.Namespaces["geo"]
	if !ok {
		t.Fatal("expected geo namespace to be registered")
	}
	if _, ok := members["distance"]; !ok {
		t.Error("expected distance to be a member of the geo namespace")
	}
}

func TestBuildExportsSkipsUnexportedFunc(t *testing.T) {
	public := &ast.FuncDecl{Name: "pub", IsExport: true, Body: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}}
	private := &ast.FuncDecl{Name: "priv", IsExport: false, Body: &ast.Literal{Kind: ast.IntLit, Value: int64(2)}}

	env := tyenv.New()
	env.Insert("pub", ty.Mono(ty.Fun{Params: nil, Ret: ty.Int}))
	env.Insert("priv", ty.Mono(ty.Fun{Params: nil, Ret: ty.Int}))

	file := &ast.File{Decls: []ast.Node{public, private}}
	ex := BuildExports("m", file, env, registry.NewTypeRegistry())

	if _, ok := ex.Funcs["pub"]; !ok {
		t.Error("expected pub to be exported")
	}
	if !ex.Private["priv"] {
		t.Error("expected priv to be recorded as private")
	}
	if _, ok := ex.Funcs["priv"]; ok {
		t.Error("priv should not be in the exported Funcs map")
	}
}
