package infer

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// InferActorDecl checks an actor declaration: its state params become the
// closure environment for the body, which is inferred with the actor's
// message type in scope (spec §4.9). The body's own type is not
// constrained.
func (c *Ctx) InferActorDecl(env *tyenv.Env, decl *ast.ActorDecl) {
	inner := env.Push()
	for _, p := range decl.StateParams {
		pt := c.ResolveAnnotation(p.Type, nil)
		inner.Insert(p.Name, ty.Mono(pt))
	}

	msgTy, ok := c.ActorMsgOf[decl.Name]
	if !ok {
		msgTy = c.FreshVar()
		c.ActorMsgOf[decl.Name] = msgTy
	}
	scoped := BindActorScope(inner, msgTy)
	c.InferExpr(scoped, decl.Body)
}

// InferServiceDecl checks a service's init function and call/cast handlers
// (spec §4.9). Each call handler's body must evaluate to a
// (new_state, reply) pair; each cast handler's body must evaluate to the
// new state alone.
func (c *Ctx) InferServiceDecl(env *tyenv.Env, decl *ast.ServiceDecl) {
	var stateTy ty.Ty = c.FreshVar()
	if decl.Init != nil {
		initTy := c.InferFuncDecl(env, decl.Init)
		if fn, ok := initTy.(ty.Fun); ok {
			stateTy = fn.Ret
		}
	}

	for _, ch := range decl.CallHandlers {
		inner := env.Push()
		inner.Insert("state", ty.Mono(stateTy))
		for _, p := range ch.Params {
			inner.Insert(p.Name, ty.Mono(c.ResolveAnnotation(p.Type, nil)))
		}
		replyTy := c.ResolveAnnotation(ch.ReplyType, nil)
		bodyTy := c.InferExpr(inner, ch.Body)
		c.Unify(bodyTy, ty.Tuple{Elems: []ty.Ty{stateTy, replyTy}},
			Origin{Kind: "call-handler", Span: spanOf(ch.Body)})
	}

	for _, ch := range decl.CastHandlers {
		inner := env.Push()
		inner.Insert("state", ty.Mono(stateTy))
		for _, p := range ch.Params {
			inner.Insert(p.Name, ty.Mono(c.ResolveAnnotation(p.Type, nil)))
		}
		bodyTy := c.InferExpr(inner, ch.Body)
		c.Unify(bodyTy, stateTy, Origin{Kind: "cast-handler", Span: spanOf(ch.Body)})
	}
}

var validStrategies = map[string]bool{"one_for_one": true, "one_for_all": true, "rest_for_one": true, "simple_one_for_one": true}
var validRestarts = map[string]bool{"permanent": true, "transient": true, "temporary": true}
var validChildTypes = map[string]bool{"worker": true, "supervisor": true}

// InferSupervisorDecl validates a supervisor's strategy, restart/shutdown
// fields, and that each child's Start expression is a spawn (spec §4.9).
func (c *Ctx) InferSupervisorDecl(env *tyenv.Env, decl *ast.SupervisorDecl) {
	if !validStrategies[decl.Strategy] {
		c.Error(errors.SUP001, fmt.Sprintf("invalid supervisor strategy %q", decl.Strategy), spanOf(decl))
	}

	seen := map[string]bool{}
	for _, child := range decl.Children {
		if seen[child.Name] {
			c.Error(errors.SUP005, fmt.Sprintf("duplicate child name %q", child.Name), spanOf(decl))
		}
		seen[child.Name] = true

		if !containsSpawn(child.Start) {
			c.Error(errors.SUP002, fmt.Sprintf("child %q's start expression must contain a spawn", child.Name), spanOf(decl))
		}
		c.InferExpr(env, child.Start)

		if child.Restart != "" && !validRestarts[child.Restart] {
			c.Error(errors.SUP003, fmt.Sprintf("invalid restart type %q", child.Restart), spanOf(decl))
		}
		if child.Type != "" && !validChildTypes[child.Type] {
			c.Error(errors.SUP004, fmt.Sprintf("invalid child type %q", child.Type), spanOf(decl))
		}
		if child.Shutdown != nil {
			switch sv := child.Shutdown.(type) {
			case *ast.Literal:
				if sv.Kind != ast.IntLit {
					c.Error(errors.SUP004, "shutdown value must be a positive integer or brutal_kill", spanOf(decl))
				}
			case *ast.Identifier:
				if sv.Name != "brutal_kill" {
					c.Error(errors.SUP004, "shutdown value must be a positive integer or brutal_kill", spanOf(decl))
				}
			default:
				c.Error(errors.SUP004, "shutdown value must be a positive integer or brutal_kill", spanOf(decl))
			}
		}
	}
}

// containsSpawn reports whether e syntactically contains a Spawn
// subexpression, as required of a child spec's Start field (spec §4.9).
func containsSpawn(e ast.Expr) bool {
	switch n := e.(type) {
	case *ast.Spawn:
		return true
	case *ast.Block:
		for _, sub := range n.Exprs {
			if containsSpawn(sub) {
				return true
			}
		}
		return false
	case *ast.Let:
		return containsSpawn(n.Value) || (n.Body != nil && containsSpawn(n.Body))
	case *ast.FuncCall:
		return containsSpawn(n.Func)
	default:
		return false
	}
}
