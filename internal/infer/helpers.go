package infer

import (
	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// spanOf builds a zero-width Span from a node's single Position, since most
// AST nodes in this grammar carry only a Pos, not a full Span.
func spanOf(n ast.Node) ast.Span {
	p := n.Position()
	return ast.Span{Start: p, End: p}
}

func literalType(l *ast.Literal) ty.Ty {
	switch l.Kind {
	case ast.IntLit:
		return ty.Int
	case ast.FloatLit:
		return ty.Float
	case ast.StringLit:
		return ty.String
	case ast.BoolLit:
		return ty.Bool
	default:
		return ty.Unit
	}
}

// headAndArgs splits a resolved type into its head constructor and
// instantiation arguments: Con{N} -> (Con{N}, nil); App{Con{N}, args} ->
// (Con{N}, args); anything else returns itself with no args.
func headAndArgs(t ty.Ty) (ty.Ty, []ty.Ty) {
	switch n := t.(type) {
	case ty.App:
		return n.Base, n.Args
	default:
		return t, nil
	}
}

// instArgsByName pairs a definition's generic parameter names against the
// instantiation arguments supplied at a use site, for substCon.
func instArgsByName(params []string, args []ty.Ty) map[string]ty.Ty {
	sub := make(map[string]ty.Ty, len(params))
	for i, p := range params {
		if i < len(args) {
			sub[p] = args[i]
		}
	}
	return sub
}

// substCon replaces every Con whose Name matches a key of sub with the
// mapped type. Struct/sum/alias definitions reference their own generic
// parameters as bare Con{Name: paramName} (registry package convention);
// this is how a definition's stored field types become concrete at each
// use site, mirroring substVars for inference variables (ctx.go).
func substCon(t ty.Ty, sub map[string]ty.Ty) ty.Ty {
	switch n := t.(type) {
	case ty.Con:
		if r, ok := sub[n.Name]; ok {
			return r
		}
		return n
	case ty.App:
		args := make([]ty.Ty, len(n.Args))
		for i, a := range n.Args {
			args[i] = substCon(a, sub)
		}
		return ty.App{Base: substCon(n.Base, sub), Args: args}
	case ty.Fun:
		params := make([]ty.Ty, len(n.Params))
		for i, p := range n.Params {
			params[i] = substCon(p, sub)
		}
		return ty.Fun{Params: params, Ret: substCon(n.Ret, sub)}
	case ty.Tuple:
		elems := make([]ty.Ty, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = substCon(e, sub)
		}
		return ty.Tuple{Elems: elems}
	default:
		return t
	}
}

func fieldType(def *registry.StructDef, name string) ty.Ty {
	for _, f := range def.Fields {
		if f.Name == name {
			return f.Type
		}
	}
	return nil
}

// lookupVariant finds the sum type that declares variant name.
func (c *Ctx) lookupVariant(name string) (*registry.SumDef, registry.Variant, bool) {
	sum, ok := c.Types.VariantOwner(name)
	if !ok {
		return nil, registry.Variant{}, false
	}
	v, _ := sum.VariantOf(name)
	return sum, v, true
}
