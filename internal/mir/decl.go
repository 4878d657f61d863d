package mir

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// This file covers the declaration-level lowering that lower.go's
// expression-level spawn/send/receive primitives don't: actor, service and
// supervisor declarations each become one or more top-level Functions plus,
// for services, a contiguous message-tag layout (spec §4.9, §4.12).

// LowerActorDecl lowers an actor declaration to a single recursive Function
// whose parameters are the actor's state fields. The actor body is expected
// to end in a receive expression whose arms each produce the next state by
// calling the actor function again in tail position, mirroring the
// hand-written recursive-loop pattern actors desugar to at the MIR level.
func (l *Lowerer) LowerActorDecl(decl *ast.ActorDecl, stateTys []ty.Ty) *Function {
	sc := newScope(nil)
	paramNames := make([]string, len(decl.StateParams))
	paramTypes := make([]MirType, len(decl.StateParams))
	for i, p := range decl.StateParams {
		paramNames[i] = p.Name
		if i < len(stateTys) {
			sc.bind(p.Name, stateTys[i])
			paramTypes[i] = l.resolve(stateTys[i])
		} else {
			paramTypes[i] = TUnit{}
		}
	}

	prevFn, prevArity := l.tailFn, l.tailArity
	l.tailFn, l.tailArity = decl.Name, len(decl.StateParams)
	body := l.lowerExprTail(decl.Body, sc, true)
	l.tailFn, l.tailArity = prevFn, prevArity

	fn := &Function{
		Name:       decl.Name,
		ParamNames: paramNames,
		ParamTypes: paramTypes,
		Ret:        TUnit{},
		Body:       body,
		IsTailLoop: containsTailCall(body, decl.Name),
	}
	l.funcs = append(l.funcs, fn)
	return fn
}

// ServiceSignature carries the checker-resolved types a ServiceDecl's
// handlers need but can't recover from the AST alone (handlers are
// listed with surface Param/ReplyType nodes only).
type ServiceSignature struct {
	StateTy     ty.Ty
	InitParams  []ty.Ty
	CallParams  [][]ty.Ty
	CallReplies []ty.Ty
	CastParams  [][]ty.Ty
}

// LowerServiceDecl lowers a service declaration into its init function plus
// one helper Function per call/cast handler, named
// __service_<Name>_call_<Handler> or __service_<Name>_cast_<Handler>
// (spec Scenario S6), and registers a contiguous message-tag sum so codegen
// can dispatch an incoming call/cast by tag (spec §4.12 "message layout").
func (l *Lowerer) LowerServiceDecl(decl *ast.ServiceDecl, sig ServiceSignature) []*Function {
	var fns []*Function

	if decl.Init != nil {
		initName := fmt.Sprintf("__service_%s_init", decl.Name)
		initDecl := *decl.Init
		initDecl.Name = initName
		fns = append(fns, l.LowerFuncDecl(&initDecl, sig.InitParams, sig.StateTy))
	}

	variants := make([]VariantLayout, 0, len(decl.CallHandlers)+len(decl.CastHandlers))
	tag := 0

	for i, h := range decl.CallHandlers {
		name := fmt.Sprintf("__service_%s_call_%s", decl.Name, h.Name)
		paramTys := []ty.Ty{sig.StateTy}
		paramNames := []string{"state"}
		for j, p := range h.Params {
			paramNames = append(paramNames, p.Name)
			if i < len(sig.CallParams) && j < len(sig.CallParams[i]) {
				paramTys = append(paramTys, sig.CallParams[i][j])
			} else {
				paramTys = append(paramTys, ty.Var{})
			}
		}
		replyTy := ty.Unit
		if i < len(sig.CallReplies) {
			replyTy = sig.CallReplies[i]
		}
		retTy := ty.Tuple{Elems: []ty.Ty{sig.StateTy, replyTy}}

		sc := newScope(nil)
		for k, pn := range paramNames {
			if k < len(paramTys) {
				sc.bind(pn, paramTys[k])
			}
		}
		prevFn, prevArity := l.tailFn, l.tailArity
		l.tailFn, l.tailArity = name, len(paramNames)
		body := l.lowerExprTail(h.Body, sc, true)
		l.tailFn, l.tailArity = prevFn, prevArity

		paramTypes := make([]MirType, len(paramTys))
		for k, t := range paramTys {
			paramTypes[k] = l.resolve(t)
		}
		fn := &Function{
			Name:       name,
			ParamNames: paramNames,
			ParamTypes: paramTypes,
			Ret:        l.resolve(retTy),
			Body:       body,
			IsTailLoop: containsTailCall(body, name),
		}
		fns = append(fns, fn)
		l.funcs = append(l.funcs, fn)

		variants = append(variants, VariantLayout{Name: "Call_" + h.Name, Tag: tag, Args: paramTypes[1:]})
		tag++
	}

	for i, h := range decl.CastHandlers {
		name := fmt.Sprintf("__service_%s_cast_%s", decl.Name, h.Name)
		paramTys := []ty.Ty{sig.StateTy}
		paramNames := []string{"state"}
		for j, p := range h.Params {
			paramNames = append(paramNames, p.Name)
			if i < len(sig.CastParams) && j < len(sig.CastParams[i]) {
				paramTys = append(paramTys, sig.CastParams[i][j])
			} else {
				paramTys = append(paramTys, ty.Var{})
			}
		}

		sc := newScope(nil)
		for k, pn := range paramNames {
			if k < len(paramTys) {
				sc.bind(pn, paramTys[k])
			}
		}
		prevFn, prevArity := l.tailFn, l.tailArity
		l.tailFn, l.tailArity = name, len(paramNames)
		body := l.lowerExprTail(h.Body, sc, true)
		l.tailFn, l.tailArity = prevFn, prevArity

		paramTypes := make([]MirType, len(paramTys))
		for k, t := range paramTys {
			paramTypes[k] = l.resolve(t)
		}
		fn := &Function{
			Name:       name,
			ParamNames: paramNames,
			ParamTypes: paramTypes,
			Ret:        l.resolve(sig.StateTy),
			Body:       body,
			IsTailLoop: containsTailCall(body, name),
		}
		fns = append(fns, fn)
		l.funcs = append(l.funcs, fn)

		variants = append(variants, VariantLayout{Name: "Cast_" + h.Name, Tag: tag, Args: paramTypes[1:]})
		tag++
	}

	l.sums["__service_"+decl.Name+"_msg"] = &SumLayout{
		Name:     "__service_" + decl.Name + "_msg",
		Variants: variants,
	}

	return fns
}

// LowerSupervisorDecl lowers a supervisor declaration into a zero-arg start
// function whose body is a single SupervisorStart call (spec §4.9, §6.2);
// child start expressions are lowered in the supervisor's own (empty) scope
// since a ChildSpec's Start must be a self-contained Spawn expression.
func (l *Lowerer) LowerSupervisorDecl(decl *ast.SupervisorDecl) *Function {
	sc := newScope(nil)
	children := make([]ChildSpec, len(decl.Children))
	for i, c := range decl.Children {
		var shutdown MirExpr
		if c.Shutdown != nil {
			shutdown = l.lowerExpr(c.Shutdown, sc)
		}
		children[i] = ChildSpec{
			Name:     c.Name,
			Start:    l.lowerExpr(c.Start, sc),
			Restart:  c.Restart,
			Shutdown: shutdown,
			Kind:     c.Type,
		}
	}

	start := &SupervisorStart{
		base:        base{Ty: TPtr{}},
		Name:        decl.Name,
		Strategy:    decl.Strategy,
		MaxRestarts: decl.MaxRestarts,
		MaxSeconds:  decl.MaxSeconds,
		Children:    children,
	}

	fnName := fmt.Sprintf("__supervisor_%s_start", decl.Name)
	fn := &Function{
		Name:       fnName,
		ParamNames: nil,
		ParamTypes: nil,
		Ret:        TPtr{},
		Body:       start,
	}
	l.funcs = append(l.funcs, fn)
	return fn
}
