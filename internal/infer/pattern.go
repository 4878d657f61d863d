package infer

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// BindPattern unifies p's implied shape with scrutinee and inserts every
// name p binds into env, returning the set of bound names
// (OrPatternBindingMismatch checking uses BindingSet instead). Errors are
// accumulated on c rather than raised, so the walk can keep going and
// report every problem in one pass (spec §4.5's translation happens
// separately in internal/exhaustiveness; this is the inference-time
// unification half of pattern handling, spec §4.8 "Case").
func (c *Ctx) BindPattern(env *tyenv.Env, p ast.Pattern, scrutinee ty.Ty) map[string]bool {
	bound := map[string]bool{}
	c.bindPattern(env, p, scrutinee, bound)
	return bound
}

func (c *Ctx) bindPattern(env *tyenv.Env, p ast.Pattern, scrutinee ty.Ty, bound map[string]bool) {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		// matches anything, binds nothing

	case *ast.Identifier:
		env.Insert(n.Name, ty.Mono(scrutinee))
		bound[n.Name] = true

	case *ast.Literal:
		c.Unify(scrutinee, literalType(n), Origin{Kind: "pattern-literal", Span: spanOf(n)})

	case *ast.TuplePattern:
		elemTys := make([]ty.Ty, len(n.Elements))
		for i := range n.Elements {
			elemTys[i] = c.FreshVar()
		}
		c.Unify(scrutinee, ty.Tuple{Elems: elemTys}, Origin{Kind: "pattern-tuple", Span: spanOf(n)})
		for i, elemP := range n.Elements {
			c.bindPattern(env, elemP, elemTys[i], bound)
		}

	case *ast.ListPattern:
		elemTy := c.FreshVar()
		c.Unify(scrutinee, ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{elemTy}},
			Origin{Kind: "pattern-list", Span: spanOf(n)})
		for _, elemP := range n.Elements {
			c.bindPattern(env, elemP, elemTy, bound)
		}
		if n.Rest != nil {
			c.bindPattern(env, n.Rest, ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{elemTy}}, bound)
		}

	case *ast.ConsPattern:
		elemTy := c.FreshVar()
		listTy := ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{elemTy}}
		c.Unify(scrutinee, listTy, Origin{Kind: "pattern-cons", Span: spanOf(n)})
		c.bindPattern(env, n.Head, elemTy, bound)
		c.bindPattern(env, n.Tail, listTy, bound)

	case *ast.RecordPattern:
		c.bindRecordPattern(env, n, scrutinee, bound)

	case *ast.ConstructorPattern:
		c.bindConstructorPattern(env, n, scrutinee, bound)

	case *ast.OrPattern:
		// Every alternative is bound into the same env and set; the caller
		// (Match arm handling) is responsible for raising
		// OrPatternBindingMismatch if the sets disagree, since only it
		// has a span to report against both alternatives.
		for _, alt := range n.Alternatives {
			c.bindPattern(env, alt, scrutinee, bound)
		}

	case *ast.AsPattern:
		c.bindPattern(env, n.Inner, scrutinee, bound)
		env.Insert(n.Name, ty.Mono(scrutinee))
		bound[n.Name] = true

	default:
		c.Error(ErrCodeInternal, fmt.Sprintf("unhandled pattern node %T", p), spanOf(p))
	}
}

// ErrCodeInternal is used for pattern/expr shapes the walk has no rule for;
// this should never happen against a conforming AST (spec §6.1).
const ErrCodeInternal = "MIR001"

// BindingSet extracts the bound names of a pattern without unifying a
// scrutinee, used by OrPattern alternatives comparison.
func BindingSet(p ast.Pattern) map[string]bool {
	out := map[string]bool{}
	collectNames(p, out)
	return out
}

func collectNames(p ast.Pattern, out map[string]bool) {
	switch n := p.(type) {
	case *ast.Identifier:
		out[n.Name] = true
	case *ast.AsPattern:
		out[n.Name] = true
		collectNames(n.Inner, out)
	case *ast.TuplePattern:
		for _, e := range n.Elements {
			collectNames(e, out)
		}
	case *ast.ListPattern:
		for _, e := range n.Elements {
			collectNames(e, out)
		}
		if n.Rest != nil {
			collectNames(n.Rest, out)
		}
	case *ast.ConsPattern:
		collectNames(n.Head, out)
		collectNames(n.Tail, out)
	case *ast.RecordPattern:
		for _, f := range n.Fields {
			collectNames(f.Pattern, out)
		}
	case *ast.ConstructorPattern:
		for _, sub := range n.Patterns {
			collectNames(sub, out)
		}
	case *ast.OrPattern:
		if len(n.Alternatives) > 0 {
			collectNames(n.Alternatives[0], out)
		}
	}
}

func (c *Ctx) bindRecordPattern(env *tyenv.Env, n *ast.RecordPattern, scrutinee ty.Ty, bound map[string]bool) {
	resolved := c.Resolve(scrutinee)
	head, args := headAndArgs(resolved)
	if con, ok := head.(ty.Con); ok {
		if def, ok := c.Types.Structs[con.Name]; ok {
			sub := instArgsByName(def.Params, args)
			for _, fp := range n.Fields {
				fieldTy := fieldType(def, fp.Name)
				if fieldTy == nil {
					c.Error(errors.TC004, fmt.Sprintf("struct %s has no field %s", con.Name, fp.Name), spanOf(n))
					continue
				}
				c.bindPattern(env, fp.Pattern, substCon(fieldTy, sub), bound)
			}
			return
		}
	}
	// Two-name destructuring of a Map<K,V> loop binder reuses RecordPattern
	// syntax (spec §4.8 "For-in"); fall back to binding each field pattern
	// against fresh variables when the scrutinee isn't (yet) a known struct.
	for _, fp := range n.Fields {
		c.bindPattern(env, fp.Pattern, c.FreshVar(), bound)
	}
}

func (c *Ctx) bindConstructorPattern(env *tyenv.Env, n *ast.ConstructorPattern, scrutinee ty.Ty, bound map[string]bool) {
	sum, variant, ok := c.lookupVariant(n.Name)
	if !ok {
		c.Error(errors.TC006, fmt.Sprintf("unknown variant %s", n.Name), spanOf(n))
		for _, sub := range n.Patterns {
			c.bindPattern(env, sub, c.FreshVar(), bound)
		}
		return
	}
	args := make([]ty.Ty, len(sum.Params))
	for i := range args {
		args[i] = c.FreshVar()
	}
	sumTy := ty.Ty(ty.Con{Name: sum.Name})
	if len(args) > 0 {
		sumTy = ty.App{Base: ty.Con{Name: sum.Name}, Args: args}
	}
	c.Unify(scrutinee, sumTy, Origin{Kind: "pattern-constructor", Span: spanOf(n)})
	sub := instArgsByName(sum.Params, args)
	fieldTys := variant.Fields
	if len(fieldTys) == 0 && len(variant.NamedFields) > 0 {
		fieldTys = make([]ty.Ty, len(variant.NamedFields))
		for i, f := range variant.NamedFields {
			fieldTys[i] = f.Type
		}
	}
	if len(n.Patterns) != len(fieldTys) {
		c.Error(errors.TC002, fmt.Sprintf("variant %s expects %d field(s), got %d", n.Name, len(fieldTys), len(n.Patterns)), spanOf(n))
	}
	for i, sub2 := range n.Patterns {
		if i >= len(fieldTys) {
			break
		}
		c.bindPattern(env, sub2, substCon(fieldTys[i], sub), bound)
	}
}
