package infer

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// InferFuncDecl checks one top-level function declaration that is not part
// of a multi-clause group (those go to clauses.Check), or a service's init
// function: its params/return annotate a Fun type, its where-clauses are
// recorded for call-site re-checking, and its body is unified against the
// declared or inferred return type (spec §4.4, §4.8).
func (c *Ctx) InferFuncDecl(env *tyenv.Env, decl *ast.FuncDecl) ty.Ty {
	tp := make(TyParams, len(decl.TypeParams))
	for _, p := range decl.TypeParams {
		tp[p] = ty.Con{Name: p}
	}

	inner := env.Push()
	paramTys := make([]ty.Ty, len(decl.Params))
	paramTyVars := make([]string, len(decl.Params))
	for i, p := range decl.Params {
		pt := c.ResolveAnnotation(p.Type, tp)
		paramTys[i] = pt
		inner.Insert(p.Name, ty.Mono(pt))
		if tv, ok := p.Type.(*ast.TypeVar); ok {
			paramTyVars[i] = tv.Name
		} else if sv, ok := p.Type.(*ast.SimpleType); ok {
			if _, isParam := tp[sv.Name]; isParam {
				paramTyVars[i] = sv.Name
			}
		}
	}

	var where []WhereEntry
	for _, w := range decl.Where {
		where = append(where, WhereEntry{TypeParam: w.TypeParam, Trait: w.Trait})
	}
	c.RecordFuncConstraints(&FuncConstraints{Name: decl.Name, Where: where, ParamTyVars: paramTyVars})

	retTy := c.ResolveAnnotation(decl.ReturnType, tp)
	c.PushReturn(retTy)
	bodyTy := c.InferExpr(inner, decl.Body)
	c.Unify(bodyTy, retTy, Origin{Kind: "return", Span: spanOf(decl)})
	c.PopReturn()

	fnTy := ty.Fun{Params: paramTys, Ret: retTy}
	env.Insert(decl.Name, c.Generalize(fnTy))
	return fnTy
}

// RegisterTypeDecl adds decl's struct/sum/alias definition to the type
// registry (spec §3.3, §4.10). Generic parameters are bound to
// Con{Name: param} sentinels rather than fresh inference variables, since
// the registry stores a definition's own field types symbolically for
// later per-use-site instantiation (helpers.go's substCon).
func (c *Ctx) RegisterTypeDecl(decl *ast.TypeDecl) {
	tp := make(TyParams, len(decl.TypeParams))
	for _, p := range decl.TypeParams {
		tp[p] = ty.Con{Name: p}
	}

	switch def := decl.Definition.(type) {
	case *ast.AlgebraicType:
		sum := &registry.SumDef{Name: decl.Name, Params: decl.TypeParams, Deriving: def.Deriving}
		for i, ctor := range def.Constructors {
			v := registry.Variant{Name: ctor.Name, Tag: i}
			if len(ctor.NamedFields) > 0 {
				for _, f := range ctor.NamedFields {
					v.NamedFields = append(v.NamedFields, registry.FieldDef{
						Name: f.Name, Type: c.ResolveAnnotation(f.Type, tp),
					})
				}
			} else {
				for _, f := range ctor.Fields {
					v.Fields = append(v.Fields, c.ResolveAnnotation(f, tp))
				}
			}
			sum.Variants = append(sum.Variants, v)
		}
		c.Types.Sums[decl.Name] = sum

	case *ast.RecordType:
		sd := &registry.StructDef{Name: decl.Name, Params: decl.TypeParams, Deriving: def.Deriving}
		for _, f := range def.Fields {
			sd.Fields = append(sd.Fields, registry.FieldDef{Name: f.Name, Type: c.ResolveAnnotation(f.Type, tp)})
		}
		c.Types.Structs[decl.Name] = sd

	case *ast.TypeAlias:
		c.Types.Aliases[decl.Name] = &registry.AliasDef{
			Name: decl.Name, Params: decl.TypeParams, Target: c.ResolveAnnotation(def.Target, tp),
		}

	default:
		c.Error(ErrCodeInternal, fmt.Sprintf("unhandled type definition %T", def), spanOf(decl))
	}
}

// RegisterTypeClass adds a trait's method signatures to the trait registry
// (spec §3.3). The trait's own type parameter is bound to itself as a
// sentinel, mirroring struct/sum registration.
func (c *Ctx) RegisterTypeClass(decl *ast.TypeClass) {
	tp := TyParams{decl.TypeParam: ty.Con{Name: decl.TypeParam}}
	methods := make(map[string]registry.TraitMethod, len(decl.Methods))
	for _, m := range decl.Methods {
		var ret ty.Ty
		if m.ReturnType != nil {
			ret = c.ResolveAnnotation(m.ReturnType, tp)
		}
		methods[m.Name] = registry.TraitMethod{
			Name: m.Name, Arity: len(m.Params), SelfParam: m.IsSelf,
			ReturnType: ret, HasDefault: m.Default != nil,
		}
	}
	c.Traits.RegisterTrait(&registry.TraitDef{Name: decl.Name, Methods: methods, AssocTypes: decl.AssocTypes})
}

// RegisterInstance adds `impl Trait for Type` to the trait registry,
// rejecting a second impl for the same (trait, head constructor) pair
// (spec §3.3 "Coherence invariant"), then checks each method body against
// the trait's declared signature.
func (c *Ctx) RegisterInstance(env *tyenv.Env, decl *ast.Instance) {
	headName, ok := instanceHeadName(decl.Type)
	if !ok {
		c.Error(ErrCodeInternal, "instance target has no simple head name", spanOf(decl))
		return
	}

	tp := TyParams{}
	var implArgs []string
	for _, arg := range decl.TypeArgs {
		if tv, ok := arg.(*ast.TypeVar); ok {
			tp[tv.Name] = ty.Con{Name: tv.Name}
			implArgs = append(implArgs, tv.Name)
		}
	}

	implTy := c.ResolveGenericApp(headName, decl.TypeArgs, tp)

	assoc := map[string]ty.Ty{}
	for name, t := range decl.AssocBindings {
		assoc[name] = c.ResolveAnnotation(t, tp)
	}

	def, ok := c.Traits.Traits[decl.ClassName]
	if !ok {
		c.Error(errors.TR001, fmt.Sprintf("unknown trait %s", decl.ClassName), spanOf(decl))
		return
	}

	// The trait's own type parameter stands for the implementing type at
	// each method's use site (e.g. Eq's `self: T` becomes `self: Pair<A,B>`).
	methodTys := map[string]ty.Ty{}
	for name, sig := range def.Methods {
		params := make([]ty.Ty, 0, sig.Arity)
		if sig.SelfParam {
			params = append(params, implTy)
		}
		for i := len(params); i < sig.Arity; i++ {
			params = append(params, c.FreshVar())
		}
		ret := sig.ReturnType
		if ret == nil {
			ret = c.FreshVar()
		}
		methodTys[name] = ty.Fun{Params: params, Ret: ret}
	}

	impl := &registry.Impl{TraitName: decl.ClassName, ImplType: implTy, ImplTypeArgs: implArgs, Methods: methodTys, AssocBindings: assoc}
	if err := c.Traits.RegisterImpl(impl); err != nil {
		c.Error(errors.TR004, err.Error(), spanOf(decl))
		return
	}

	for name, bodyExpr := range decl.Methods {
		bodyTy := c.InferExpr(env, bodyExpr)
		if declared, ok := methodTys[name]; ok {
			if fn, isFn := bodyTy.(ty.Fun); isFn {
				c.Unify(fn.Ret, declared.(ty.Fun).Ret, Origin{Kind: "impl-method", Span: spanOf(bodyExpr)})
			}
		}
	}
}

func instanceHeadName(t ast.Type) (string, bool) {
	switch n := t.(type) {
	case *ast.SimpleType:
		return n.Name, true
	case *ast.TypeVar:
		return n.Name, true
	default:
		return "", false
	}
}
