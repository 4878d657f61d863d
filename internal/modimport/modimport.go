// Package modimport implements cross-module import resolution (spec.md
// §4.7): the checker accepts an import context of other modules' exported
// schemes/type defs, their private names (for better diagnostics), and
// applies `import M` / `from M import x, y` against it. Grounded on the
// teacher's internal/iface (a module's compiled public interface: exported
// names plus enough private-name bookkeeping to produce a good "not
// exported" error) and internal/link (the pass that resolves one module's
// imports against another's interface before linking).
package modimport

import (
	"fmt"
	"strings"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/builtins"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/infer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// Exports is one module's compiled public interface: its exported function
// schemes and type definitions, plus the names it declared but did not
// export (kept around so an import of a private name can name it in its
// diagnostic instead of reporting it as simply nonexistent).
type Exports struct {
	Path    string
	Funcs   map[string]*ty.Scheme
	Structs map[string]*registry.StructDef
	Sums    map[string]*registry.SumDef
	Aliases map[string]*registry.AliasDef
	Private map[string]bool
}

func newExports(path string) *Exports {
	return &Exports{
		Path: path, Funcs: map[string]*ty.Scheme{}, Structs: map[string]*registry.StructDef{},
		Sums: map[string]*registry.SumDef{}, Aliases: map[string]*registry.AliasDef{}, Private: map[string]bool{},
	}
}

// has reports whether name is declared anywhere in the module, exported
// or not (used to distinguish ImportNameNotFound from PrivateItem).
func (e *Exports) has(name string) bool {
	if e.Private[name] {
		return true
	}
	_, ok := e.Funcs[name]
	if ok {
		return true
	}
	if _, ok := e.Structs[name]; ok {
		return true
	}
	if _, ok := e.Sums[name]; ok {
		return true
	}
	_, ok = e.Aliases[name]
	return ok
}

// names lists every exported name, for the "available exports" half of an
// ImportNameNotFound diagnostic (spec §4.7).
func (e *Exports) names() []string {
	var out []string
	for n := range e.Funcs {
		out = append(out, n)
	}
	for n := range e.Structs {
		out = append(out, n)
	}
	for n := range e.Sums {
		out = append(out, n)
	}
	for n := range e.Aliases {
		out = append(out, n)
	}
	return out
}

// Catalog is every other module's compiled interface, keyed by the import
// path a `from M import ...`/`import M` names.
type Catalog map[string]*Exports

// BuildExports compiles one already-checked file's public interface: every
// exported FuncDecl's scheme (looked up in the env it was checked against)
// and every exported TypeDecl's registered struct/sum/alias definition
// (looked up in the registry it was registered into). Declarations that
// exist but weren't exported are recorded in Private for diagnostics.
func BuildExports(path string, file *ast.File, env *tyenv.Env, types *registry.TypeRegistry) *Exports {
	ex := newExports(path)
	for _, d := range file.Decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			if n.IsExport {
				if scheme, ok := env.Lookup(n.Name); ok {
					ex.Funcs[n.Name] = scheme
					continue
				}
			}
			ex.Private[n.Name] = true

		case *ast.TypeDecl:
			if n.Exported {
				if sd, ok := types.Structs[n.Name]; ok {
					ex.Structs[n.Name] = sd
					continue
				}
				if sd, ok := types.Sums[n.Name]; ok {
					ex.Sums[n.Name] = sd
					continue
				}
				if ad, ok := types.Aliases[n.Name]; ok {
					ex.Aliases[n.Name] = ad
					continue
				}
			}
			ex.Private[n.Name] = true
		}
	}
	return ex
}

// ApplyImports resolves file's import declarations against catalog,
// installing bindings into env/c as each import form requires (spec §4.7):
// `import M` registers M as a namespace resolved later by field access
// (internal/infer's inferNamespaceCall/inferFieldAccess); `from M import
// x, y` copies the named schemes/type definitions directly into scope. A
// path that misses catalog falls back to internal/builtins's static
// module table (spec §4.7, §6.3) before reporting IMP001/IMP002 — a
// user-defined module with the same path as a built-in one shadows it,
// since the catalog is always tried first.
func ApplyImports(c *infer.Ctx, env *tyenv.Env, catalog Catalog, imports []*ast.ImportDecl) {
	for _, imp := range imports {
		span := ast.Span{Start: imp.Pos, End: imp.Pos}
		mod, ok := catalog[imp.Path]
		if !ok {
			applyBuiltinImport(c, env, imp, span)
			continue
		}

		if len(imp.Symbols) == 0 {
			c.RegisterNamespace(namespaceName(imp.Path), mod.Funcs)
			continue
		}

		for _, sym := range imp.Symbols {
			if mod.Private[sym] {
				c.Error(errors.IMP003, fmt.Sprintf("%s is not exported from module %q", sym, imp.Path), span)
				continue
			}
			switch {
			case importScheme(env, mod, sym):
			case importStruct(c, mod, sym):
			case importSum(c, mod, sym):
			case importAlias(c, mod, sym):
			default:
				c.Error(errors.IMP002, fmt.Sprintf(
					"module %q has no exported name %q (available: %v)", imp.Path, sym, mod.names()), span)
			}
		}
	}
}

// applyBuiltinImport handles an import path that missed the user-module
// catalog by trying it against internal/builtins, under both the raw path
// and its final "/"-segment (so `import String` and `import std/String`
// resolve the same built-in). Reports IMP001/IMP002 only if neither the
// catalog nor the built-in table knows the name.
func applyBuiltinImport(c *infer.Ctx, env *tyenv.Env, imp *ast.ImportDecl, span ast.Span) {
	name := namespaceName(imp.Path)
	members, ok := builtins.Modules[imp.Path]
	if !ok {
		members, ok = builtins.Modules[name]
	}
	if !ok {
		c.Error(errors.IMP001, fmt.Sprintf("module %q not found", imp.Path), span)
		return
	}

	if len(imp.Symbols) == 0 {
		c.RegisterNamespace(name, members)
		return
	}

	for _, sym := range imp.Symbols {
		scheme, ok := members[sym]
		if !ok {
			c.Error(errors.IMP002, fmt.Sprintf(
				"module %q has no exported name %q (available: %v)", imp.Path, sym, builtins.Names(name)), span)
			continue
		}
		env.Insert(sym, scheme)
	}
}

func importScheme(env *tyenv.Env, mod *Exports, sym string) bool {
	scheme, ok := mod.Funcs[sym]
	if !ok {
		return false
	}
	env.Insert(sym, scheme)
	return true
}

// importStruct copies a struct definition into scope; importing a struct
// also registers its constructor/record info (spec §4.7), which here is
// simply the same StructDef the rest of the checker already consults for
// field/constructor resolution.
func importStruct(c *infer.Ctx, mod *Exports, sym string) bool {
	sd, ok := mod.Structs[sym]
	if !ok {
		return false
	}
	c.Types.Structs[sym] = sd
	return true
}

// importSum copies a sum type and, implicitly, all of its variant
// constructors (spec §4.7): registry.TypeRegistry.VariantOwner scans every
// registered SumDef, so installing the definition is all that's needed for
// `Variant(args)` construction to resolve.
func importSum(c *infer.Ctx, mod *Exports, sym string) bool {
	sd, ok := mod.Sums[sym]
	if !ok {
		return false
	}
	c.Types.Sums[sym] = sd
	return true
}

func importAlias(c *infer.Ctx, mod *Exports, sym string) bool {
	ad, ok := mod.Aliases[sym]
	if !ok {
		return false
	}
	c.Types.Aliases[sym] = ad
	return true
}

// namespaceName derives the bare identifier `import M` binds from an
// import path, taking the final "/"-separated segment (e.g. "collections/
// list" binds as `list`).
func namespaceName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}
