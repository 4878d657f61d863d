package infer

import (
	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// TyParams maps a declaration's generic parameter names to the types
// standing in for them while the declaration is checked (every caller
// binds each name to a Con sentinel of the same name).
type TyParams map[string]ty.Ty

// ResolveAnnotation converts a surface-syntax type annotation into a ty.Ty,
// substituting tp for any bare type-variable name it binds (spec §3.1's
// Con/App/Fun/Tuple shapes mirror the surface grammar directly).
func (c *Ctx) ResolveAnnotation(t ast.Type, tp TyParams) ty.Ty {
	if t == nil {
		return c.FreshVar()
	}
	switch n := t.(type) {
	case *ast.SimpleType:
		if v, ok := tp[n.Name]; ok {
			return v
		}
		return builtinCon(n.Name)
	case *ast.TypeVar:
		if v, ok := tp[n.Name]; ok {
			return v
		}
		return c.FreshVar()
	case *ast.FuncType:
		params := make([]ty.Ty, len(n.Params))
		for i, p := range n.Params {
			params[i] = c.ResolveAnnotation(p, tp)
		}
		return ty.Fun{Params: params, Ret: c.ResolveAnnotation(n.Return, tp)}
	case *ast.ListType:
		return ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{c.ResolveAnnotation(n.Element, tp)}}
	case *ast.TupleType:
		elems := make([]ty.Ty, len(n.Elements))
		for i, e := range n.Elements {
			elems[i] = c.ResolveAnnotation(e, tp)
		}
		return ty.Tuple{Elems: elems}
	case *ast.RecordType:
		// Anonymous record type annotation: structurally irrelevant to
		// mesh's nominal struct system, represented as a Tuple of its
		// field types in declaration order for unification purposes.
		elems := make([]ty.Ty, len(n.Fields))
		for i, f := range n.Fields {
			elems[i] = c.ResolveAnnotation(f.Type, tp)
		}
		return ty.Tuple{Elems: elems}
	default:
		return c.FreshVar()
	}
}

func builtinCon(name string) ty.Ty {
	switch name {
	case "Int":
		return ty.Int
	case "Float":
		return ty.Float
	case "Bool":
		return ty.Bool
	case "String":
		return ty.String
	case "Unit":
		return ty.Unit
	default:
		return ty.Con{Name: name}
	}
}

// ResolveGenericApp resolves a named type applied to argument annotations,
// e.g. `Option<Int>`, into App{Con{"Option"}, [Int]}. Used where the
// surface grammar writes a parameterised type head directly (struct/sum
// field types, annotations) rather than through FuncType/ListType sugar.
func (c *Ctx) ResolveGenericApp(name string, args []ast.Type, tp TyParams) ty.Ty {
	if len(args) == 0 {
		return builtinCon(name)
	}
	resolved := make([]ty.Ty, len(args))
	for i, a := range args {
		resolved[i] = c.ResolveAnnotation(a, tp)
	}
	return ty.App{Base: ty.Con{Name: name}, Args: resolved}
}
