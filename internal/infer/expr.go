package infer

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/exhaustiveness"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// InferExpr synthesises e's type (spec §4.8). Every case accumulates
// diagnostics on c rather than stopping at the first problem; callers that
// need to bail out check c.Errors themselves.
func (c *Ctx) InferExpr(env *tyenv.Env, e ast.Expr) ty.Ty {
	switch n := e.(type) {
	case *ast.Literal:
		return literalType(n)

	case *ast.Identifier:
		scheme, ok := env.Lookup(n.Name)
		if !ok {
			c.Error(errors.TC003, fmt.Sprintf("unbound variable %s", n.Name), spanOf(n))
			return c.FreshVar()
		}
		return c.Instantiate(scheme)

	case *ast.BinaryOp:
		return c.inferBinOp(env, n)

	case *ast.UnaryOp:
		return c.inferUnaryOp(env, n)

	case *ast.Lambda:
		return c.inferLambda(env, n.Params, n.Body, spanOf(n))

	case *ast.FuncLit:
		return c.inferFuncLit(env, n)

	case *ast.FuncCall:
		return c.inferCall(env, n)

	case *ast.Let:
		return c.inferLet(env, n.Name, n.Type, n.Value, n.Body, spanOf(n))

	case *ast.LetRec:
		return c.inferLetRec(env, n)

	case *ast.Block:
		return c.inferBlock(env, n)

	case *ast.If:
		cond := c.InferExpr(env, n.Condition)
		c.Unify(cond, ty.Bool, Origin{Kind: "if-condition", Span: spanOf(n)})
		thenTy := c.InferExpr(env, n.Then)
		elseTy := c.InferExpr(env, n.Else)
		c.Unify(thenTy, elseTy, Origin{Kind: "if-branch", Span: spanOf(n)})
		return thenTy

	case *ast.Match:
		return c.inferMatch(env, n)

	case *ast.List:
		elemTy := c.FreshVar()
		for _, el := range n.Elements {
			t := c.InferExpr(env, el)
			c.Unify(t, elemTy, Origin{Kind: "list-element", Span: spanOf(el)})
		}
		return ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{elemTy}}

	case *ast.Tuple:
		elems := make([]ty.Ty, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = c.InferExpr(env, el)
		}
		return ty.Tuple{Elems: elems}

	case *ast.Record:
		return c.inferRecordLiteral(env, n)

	case *ast.RecordAccess:
		return c.inferFieldAccess(env, n)

	case *ast.RecordUpdate:
		return c.inferRecordUpdate(env, n)

	case *ast.Pipe:
		return c.inferPipe(env, n)

	case *ast.Try:
		return c.inferTry(env, n)

	case *ast.Return:
		if n.Value != nil {
			c.InferExpr(env, n.Value)
		}
		return ty.Never{}

	case *ast.Panic:
		if n.Message != nil {
			c.InferExpr(env, n.Message)
		}
		return ty.Never{}

	case *ast.While:
		cond := c.InferExpr(env, n.Cond)
		c.Unify(cond, ty.Bool, Origin{Kind: "while-condition", Span: spanOf(n)})
		c.EnterLoop()
		c.InferExpr(env, n.Body)
		c.ExitLoop()
		return ty.Unit

	case *ast.For:
		return c.inferFor(env, n)

	case *ast.Break:
		if !c.InLoop() {
			c.Error(errors.CF001, "break outside loop", spanOf(n))
		}
		return ty.Never{}

	case *ast.Continue:
		if !c.InLoop() {
			c.Error(errors.CF002, "continue outside loop", spanOf(n))
		}
		return ty.Never{}

	case *ast.Spawn:
		return c.inferSpawn(env, n)

	case *ast.ActorSend:
		return c.inferActorSend(env, n)

	case *ast.Receive:
		return c.inferReceive(env, n)

	case *ast.SelfRef:
		return c.inferSelf(env, n)

	case *ast.Link:
		if n.Target != nil {
			t := c.InferExpr(env, n.Target)
			c.Unify(t, ty.App{Base: ty.Con{Name: "Pid"}, Args: []ty.Ty{c.FreshVar()}},
				Origin{Kind: "link-target", Span: spanOf(n)})
		}
		return ty.Unit

	case *ast.QuasiQuote:
		for _, interp := range n.Interpolations {
			c.InferExpr(env, interp.Expr)
		}
		return ty.String

	case *ast.Error:
		return c.FreshVar()

	default:
		c.Error(ErrCodeInternal, fmt.Sprintf("unhandled expression node %T", e), spanOf(e))
		return c.FreshVar()
	}
}

func (c *Ctx) inferBinOp(env *tyenv.Env, n *ast.BinaryOp) ty.Ty {
	lt := c.InferExpr(env, n.Left)
	rt := c.InferExpr(env, n.Right)

	switch n.Op {
	case "&&", "||":
		c.Unify(lt, ty.Bool, Origin{Kind: "binop", Span: spanOf(n)})
		c.Unify(rt, ty.Bool, Origin{Kind: "binop", Span: spanOf(n)})
		return ty.Bool
	}

	trait, isComparison, ok := registry.OperatorTrait(n.Op)
	if !ok {
		c.Error(ErrCodeInternal, fmt.Sprintf("unknown operator %s", n.Op), spanOf(n))
		return c.FreshVar()
	}
	c.Unify(lt, rt, Origin{Kind: "binop", Span: spanOf(n)})
	if isComparison {
		c.checkTraitSatisfied(trait, lt, spanOf(n))
		return ty.Bool
	}
	c.checkTraitSatisfied(trait, lt, spanOf(n))
	if impl, ok := c.Traits.ImplFor(trait, c.Resolve(lt)); ok {
		if out, ok := impl.AssocBindings["Output"]; ok {
			return out
		}
	}
	return lt
}

func (c *Ctx) inferUnaryOp(env *tyenv.Env, n *ast.UnaryOp) ty.Ty {
	t := c.InferExpr(env, n.Expr)
	if n.Op == "!" {
		c.Unify(t, ty.Bool, Origin{Kind: "unop", Span: spanOf(n)})
		return ty.Bool
	}
	trait, _, _ := registry.OperatorTrait(n.Op)
	c.checkTraitSatisfied(trait, t, spanOf(n))
	return t
}

// checkTraitSatisfied raises TraitNotSatisfied only once the operand has
// resolved to a concrete head; a still-open variable defers the check
// (spec §4.4 "Operator dispatch").
func (c *Ctx) checkTraitSatisfied(trait string, operand ty.Ty, span ast.Span) {
	if trait == "" {
		return
	}
	resolved := c.Resolve(operand)
	if _, isVar := resolved.(ty.Var); isVar {
		return
	}
	if !c.Traits.HasImpl(trait, resolved) {
		c.Error(errors.TR003, fmt.Sprintf("%s does not implement %s", resolved, trait), span)
	}
}

func (c *Ctx) inferLambda(env *tyenv.Env, params []*ast.Param, body ast.Expr, span ast.Span) ty.Ty {
	inner := env.Push()
	paramTys := make([]ty.Ty, len(params))
	for i, p := range params {
		var pt ty.Ty
		if p.Type != nil {
			pt = c.ResolveAnnotation(p.Type, nil)
		} else {
			pt = c.FreshVar()
		}
		paramTys[i] = pt
		inner.Insert(p.Name, ty.Mono(pt))
	}
	saved := c.EnterClosure()
	bodyTy := c.InferExpr(inner, body)
	c.ExitClosure(saved)
	return ty.Fun{Params: paramTys, Ret: bodyTy}
}

func (c *Ctx) inferFuncLit(env *tyenv.Env, n *ast.FuncLit) ty.Ty {
	fnTy := c.inferLambda(env, n.Params, n.Body, spanOf(n))
	if n.ReturnType != nil {
		ret := c.ResolveAnnotation(n.ReturnType, nil)
		c.Unify(fnTy.(ty.Fun).Ret, ret, Origin{Kind: "annotation", Span: spanOf(n)})
	}
	return fnTy
}

func (c *Ctx) inferLet(env *tyenv.Env, name string, annot ast.Type, value, body ast.Expr, span ast.Span) ty.Ty {
	c.EnterLevel()
	valTy := c.InferExpr(env, value)
	if annot != nil {
		declared := c.ResolveAnnotation(annot, nil)
		c.Unify(valTy, declared, Origin{Kind: "annotation", Span: span})
		valTy = declared
	}
	c.LeaveLevel()
	scheme := c.Generalize(valTy)
	env.Insert(name, scheme)
	if body == nil {
		return ty.Unit
	}
	return c.InferExpr(env, body)
}

func (c *Ctx) inferLetRec(env *tyenv.Env, n *ast.LetRec) ty.Ty {
	placeholder := c.FreshVar()
	env.Insert(n.Name, ty.Mono(placeholder))
	c.EnterLevel()
	valTy := c.InferExpr(env, n.Value)
	c.Unify(placeholder, valTy, Origin{Kind: "letrec", Span: spanOf(n)})
	if n.Type != nil {
		declared := c.ResolveAnnotation(n.Type, nil)
		c.Unify(valTy, declared, Origin{Kind: "annotation", Span: spanOf(n)})
	}
	c.LeaveLevel()
	scheme := c.Generalize(valTy)
	env.Insert(n.Name, scheme)
	if n.Body == nil {
		return ty.Unit
	}
	return c.InferExpr(env, n.Body)
}

func (c *Ctx) inferBlock(env *tyenv.Env, n *ast.Block) ty.Ty {
	inner := env.Push()
	var last ty.Ty = ty.Unit
	for _, item := range n.Exprs {
		last = c.InferExpr(inner, item)
	}
	return last
}

func (c *Ctx) inferMatch(env *tyenv.Env, n *ast.Match) ty.Ty {
	scrutTy := c.InferExpr(env, n.Expr)
	resultTy := c.FreshVar()

	for _, arm := range n.Cases {
		armSpan := caseSpan(arm)
		armEnv := env.Push()
		if or, isOr := arm.Pattern.(*ast.OrPattern); isOr && len(or.Alternatives) > 1 {
			first := BindingSet(or.Alternatives[0])
			for _, alt := range or.Alternatives[1:] {
				if !sameNames(first, BindingSet(alt)) {
					c.Error(errors.PAT004, "or-pattern alternatives bind different names", armSpan)
					break
				}
			}
		}
		c.BindPattern(armEnv, arm.Pattern, scrutTy)
		if arm.Guard != nil {
			guardTy := c.InferExpr(armEnv, arm.Guard)
			c.Unify(guardTy, ty.Bool, Origin{Kind: "guard", Span: armSpan})
			checkGuardSublanguage(c, arm.Guard)
		}
		bodyTy := c.InferExpr(armEnv, arm.Body)
		c.Unify(bodyTy, resultTy, Origin{Kind: "match-arm", Span: armSpan})
	}

	scrut := c.Resolve(scrutTy)
	if result := exhaustiveness.Check(c.Types, scrut, n.Cases); result != nil {
		if len(result.Missing) > 0 {
			c.Warning(errors.PAT001, fmt.Sprintf("non-exhaustive match: missing %v", result.Missing), spanOf(n))
		}
		for _, idx := range result.RedundantArms {
			c.Warning(errors.PAT002, fmt.Sprintf("arm %d is redundant", idx), caseSpan(n.Cases[idx]))
		}
	}
	return resultTy
}

func caseSpan(c *ast.Case) ast.Span { return ast.Span{Start: c.Pos, End: c.Pos} }

func sameNames(a, b map[string]bool) bool {
	if len(a) != len(b) {
		return false
	}
	for k := range a {
		if !b[k] {
			return false
		}
	}
	return true
}

// checkGuardSublanguage rejects guard expressions outside the restricted
// grammar spec §4.8 allows: literals, name refs, comparisons, boolean
// combinators, `not`, and calls. A call is accepted when its callee is a
// bare identifier; the name itself is not checked against the built-ins,
// and a qualified `Module.fn(...)` callee is rejected.
func checkGuardSublanguage(c *Ctx, e ast.Expr) {
	switch n := e.(type) {
	case *ast.Literal, *ast.Identifier:
	case *ast.BinaryOp:
		checkGuardSublanguage(c, n.Left)
		checkGuardSublanguage(c, n.Right)
	case *ast.UnaryOp:
		checkGuardSublanguage(c, n.Expr)
	case *ast.FuncCall:
		if _, ok := n.Func.(*ast.Identifier); !ok {
			c.Error(errors.PAT003, "guard calls must name a built-in function", spanOf(e))
			return
		}
		for _, a := range n.Args {
			checkGuardSublanguage(c, a)
		}
	default:
		c.Error(errors.PAT003, fmt.Sprintf("%T is not allowed in a guard expression", e), spanOf(e))
	}
}
