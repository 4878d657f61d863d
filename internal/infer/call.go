package infer

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// inferCall handles ordinary applications and the UFCS-style method-call
// fallback: `recv.method(args)` where method isn't a struct field resolves
// against the trait registry instead (spec §4.4 "Method call resolution").
func (c *Ctx) inferCall(env *tyenv.Env, n *ast.FuncCall) ty.Ty {
	if ra, ok := n.Func.(*ast.RecordAccess); ok {
		if resultTy, handled := c.inferNamespaceCall(env, ra, n.Args, spanOf(n)); handled {
			return resultTy
		}
		if resultTy, handled := c.tryMethodCall(env, ra, n.Args, spanOf(n)); handled {
			return resultTy
		}
	}

	fnTy := c.InferExpr(env, n.Func)
	argTys := make([]ty.Ty, len(n.Args))
	for i, a := range n.Args {
		argTys[i] = c.InferExpr(env, a)
	}
	retTy := c.FreshVar()
	c.Unify(fnTy, ty.Fun{Params: argTys, Ret: retTy}, Origin{Kind: "call", Span: spanOf(n)})

	if callee, ok := n.Func.(*ast.Identifier); ok {
		c.checkWhereClauses(callee.Name, argTys, spanOf(n))
	}
	return retTy
}

// inferNamespaceCall resolves `M.x(args)` against a registered `import M`
// namespace (spec §4.7), returning handled=false when Record isn't a bare
// identifier naming a namespace, so the caller falls through to ordinary
// method-call/application handling (a local variable named the same as a
// module is not shadowed by this check since it's tried first, but a
// receiver expression more complex than a bare identifier never is one).
func (c *Ctx) inferNamespaceCall(env *tyenv.Env, ra *ast.RecordAccess, args []ast.Expr, span ast.Span) (ty.Ty, bool) {
	id, ok := ra.Record.(*ast.Identifier)
	if !ok {
		return nil, false
	}
	members, ok := c.Namespaces[id.Name]
	if !ok {
		return nil, false
	}
	if _, bound := env.Lookup(id.Name); bound {
		return nil, false
	}

	scheme, ok := members[ra.Field]
	if !ok {
		c.Error(errors.IMP002, fmt.Sprintf("module %s has no exported name %s", id.Name, ra.Field), span)
		return c.FreshVar(), true
	}
	fnTy := c.Instantiate(scheme)
	argTys := make([]ty.Ty, len(args))
	for i, a := range args {
		argTys[i] = c.InferExpr(env, a)
	}
	retTy := c.FreshVar()
	c.Unify(fnTy, ty.Fun{Params: argTys, Ret: retTy}, Origin{Kind: "namespace-call", Span: span})
	return retTy, true
}

// tryMethodCall attempts to resolve `ra.Field(args)` as a trait method call.
// It returns handled=false when Field names a plain struct field (an
// ordinary value being called, e.g. a closure stored in a field) so the
// caller falls back to normal application.
func (c *Ctx) tryMethodCall(env *tyenv.Env, ra *ast.RecordAccess, args []ast.Expr, span ast.Span) (ty.Ty, bool) {
	recvTy := c.InferExpr(env, ra.Record)
	resolved := c.Resolve(recvTy)
	head, _ := headAndArgs(resolved)
	if con, ok := head.(ty.Con); ok {
		if def, ok := c.Types.Structs[con.Name]; ok {
			if fieldType(def, ra.Field) != nil {
				return nil, false
			}
		}
	}

	owners := c.Traits.MethodOwners(ra.Field, resolved)
	if len(owners) == 0 {
		c.Error(errors.TR001, fmt.Sprintf("no method %s on %s", ra.Field, resolved), span)
		return c.FreshVar(), true
	}
	if len(owners) > 1 {
		c.Error(errors.TR002, fmt.Sprintf("method %s is ambiguous between multiple traits", ra.Field), span)
	}
	trait := owners[0]
	impl, _ := c.Traits.ImplFor(trait.Name, resolved)

	argTys := make([]ty.Ty, len(args))
	for i, a := range args {
		argTys[i] = c.InferExpr(env, a)
	}

	if impl == nil {
		retTy := c.FreshVar()
		return retTy, true
	}
	_, implArgs := headAndArgs(resolved)
	sub := instArgsByName(impl.ImplTypeArgs, implArgs)
	methodTy := substCon(impl.Methods[ra.Field], sub)
	retTy := c.FreshVar()
	full := append([]ty.Ty{resolved}, argTys...)
	c.Unify(methodTy, ty.Fun{Params: full, Ret: retTy}, Origin{Kind: "method-call", Span: span})
	return retTy, true
}

// checkWhereClauses re-checks any argument passed into a type-parameter
// position that carries a trait bound on the callee (spec §4.4 "Where-clause
// enforcement"); this only fires for functions whose constraints were
// recorded via RecordFuncConstraints during decl checking.
func (c *Ctx) checkWhereClauses(calleeName string, argTys []ty.Ty, span ast.Span) {
	fc, ok := c.FuncConstraintsOf(calleeName)
	if !ok {
		return
	}
	for i, tv := range fc.ParamTyVars {
		if tv == "" || i >= len(argTys) {
			continue
		}
		for _, w := range fc.Where {
			if w.TypeParam == tv {
				c.checkTraitSatisfied(w.Trait, argTys[i], span)
			}
		}
	}
}

// inferPipe desugars `lhs |> rhs` into a call of rhs with lhs appended as
// its final argument, extending rhs's existing argument list when rhs is
// itself already a call (spec §4.8 "Pipe").
func (c *Ctx) inferPipe(env *tyenv.Env, n *ast.Pipe) ty.Ty {
	if call, ok := n.Rhs.(*ast.FuncCall); ok {
		synthetic := &ast.FuncCall{Func: call.Func, Args: append(append([]ast.Expr{}, call.Args...), n.Lhs), Pos: n.Pos}
		return c.inferCall(env, synthetic)
	}
	synthetic := &ast.FuncCall{Func: n.Rhs, Args: []ast.Expr{n.Lhs}, Pos: n.Pos}
	return c.inferCall(env, synthetic)
}

// inferTry handles `operand?`: operand must resolve to Result<T,E> or
// Option<T>, and the enclosing function's declared return type must carry
// the same error/absent case (spec §4.8 "Try").
func (c *Ctx) inferTry(env *tyenv.Env, n *ast.Try) ty.Ty {
	operandTy := c.InferExpr(env, n.Operand)
	resolved := c.Resolve(operandTy)
	head, args := headAndArgs(resolved)
	con, ok := head.(ty.Con)
	if !ok {
		c.Error(errors.CF003, fmt.Sprintf("%s is not Result or Option", resolved), spanOf(n))
		return c.FreshVar()
	}

	switch con.Name {
	case "Result":
		if len(args) != 2 {
			c.Error(errors.CF003, "Result must be applied to two type arguments", spanOf(n))
			return c.FreshVar()
		}
		okTy, errTy := args[0], args[1]
		if ret, has := c.CurrentReturn(); has {
			retHead, retArgs := headAndArgs(c.Resolve(ret))
			if rc, ok := retHead.(ty.Con); !ok || rc.Name != "Result" || len(retArgs) != 2 {
				c.Error(errors.CF004, "enclosing function must return Result to use ? on a Result", spanOf(n))
			} else {
				c.Unify(errTy, retArgs[1], Origin{Kind: "try-error", Span: spanOf(n)})
			}
		}
		return okTy
	case "Option":
		if len(args) != 1 {
			c.Error(errors.CF003, "Option must be applied to one type argument", spanOf(n))
			return c.FreshVar()
		}
		inner := args[0]
		if ret, has := c.CurrentReturn(); has {
			retHead, _ := headAndArgs(c.Resolve(ret))
			if rc, ok := retHead.(ty.Con); !ok || rc.Name != "Option" {
				c.Error(errors.CF004, "enclosing function must return Option to use ? on an Option", spanOf(n))
			}
		}
		return inner
	default:
		c.Error(errors.CF003, fmt.Sprintf("%s is not Result or Option", resolved), spanOf(n))
		return c.FreshVar()
	}
}

// inferFor type-checks every for-in shape (spec §4.8 "For-in"); the loop's
// overall type is always List<body-type> since for-in is a comprehension.
func (c *Ctx) inferFor(env *tyenv.Env, n *ast.For) ty.Ty {
	iterTy := c.InferExpr(env, n.Iterable)
	inner := env.Push()

	switch n.Kind {
	case ast.ForRange:
		c.Unify(iterTy, ty.Con{Name: "Range"}, Origin{Kind: "for-range", Span: spanOf(n)})
		inner.Insert(n.Binder, ty.Mono(ty.Int))
	case ast.ForList:
		elemTy := c.FreshVar()
		c.Unify(iterTy, ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{elemTy}}, Origin{Kind: "for-list", Span: spanOf(n)})
		inner.Insert(n.Binder, ty.Mono(elemTy))
	case ast.ForSet:
		elemTy := c.FreshVar()
		c.Unify(iterTy, ty.App{Base: ty.Con{Name: "Set"}, Args: []ty.Ty{elemTy}}, Origin{Kind: "for-set", Span: spanOf(n)})
		inner.Insert(n.Binder, ty.Mono(elemTy))
	case ast.ForMap:
		keyTy, valTy := c.FreshVar(), c.FreshVar()
		c.Unify(iterTy, ty.App{Base: ty.Con{Name: "Map"}, Args: []ty.Ty{keyTy, valTy}}, Origin{Kind: "for-map", Span: spanOf(n)})
		inner.Insert(n.Binder, ty.Mono(keyTy))
		inner.Insert(n.Binder2, ty.Mono(valTy))
	case ast.ForIterator:
		elemTy := c.FreshVar()
		c.Unify(iterTy, ty.App{Base: ty.Con{Name: "Iterator"}, Args: []ty.Ty{elemTy}}, Origin{Kind: "for-iterator", Span: spanOf(n)})
		inner.Insert(n.Binder, ty.Mono(elemTy))
	}

	if n.Filter != nil {
		filterTy := c.InferExpr(inner, n.Filter)
		c.Unify(filterTy, ty.Bool, Origin{Kind: "for-filter", Span: spanOf(n)})
	}

	c.EnterLoop()
	bodyTy := c.InferExpr(inner, n.Body)
	c.ExitLoop()
	return ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{bodyTy}}
}

func (c *Ctx) inferSpawn(env *tyenv.Env, n *ast.Spawn) ty.Ty {
	fnTy := c.InferExpr(env, n.Func)
	argTys := make([]ty.Ty, len(n.Args))
	for i, a := range n.Args {
		argTys[i] = c.InferExpr(env, a)
	}
	retTy := c.FreshVar()
	c.Unify(fnTy, ty.Fun{Params: argTys, Ret: retTy}, Origin{Kind: "spawn", Span: spanOf(n)})

	msgTy := c.FreshVar()
	if id, ok := n.Func.(*ast.Identifier); ok {
		if m, ok := c.ActorMsgOf[id.Name]; ok {
			msgTy = m
		}
	}
	if n.Priority != nil {
		c.InferExpr(env, n.Priority)
	}
	if n.Terminate != nil {
		c.InferExpr(env, n.Terminate)
	}
	return ty.App{Base: ty.Con{Name: "Pid"}, Args: []ty.Ty{msgTy}}
}

func (c *Ctx) inferActorSend(env *tyenv.Env, n *ast.ActorSend) ty.Ty {
	targetTy := c.InferExpr(env, n.Target)
	msgTy := c.InferExpr(env, n.Message)
	c.Unify(targetTy, ty.App{Base: ty.Con{Name: "Pid"}, Args: []ty.Ty{msgTy}},
		Origin{Kind: "actor-send", Span: spanOf(n)})
	return ty.Unit
}

func (c *Ctx) inferReceive(env *tyenv.Env, n *ast.Receive) ty.Ty {
	msgTy, ok := env.ActorMsgType()
	if !ok {
		c.Error(errors.ACT003, "receive used outside an actor body", spanOf(n))
		msgTy = c.FreshVar()
	}
	resultTy := c.FreshVar()
	for _, arm := range n.Arms {
		armEnv := env.Push()
		c.BindPattern(armEnv, arm.Pattern, msgTy)
		if arm.Guard != nil {
			g := c.InferExpr(armEnv, arm.Guard)
			c.Unify(g, ty.Bool, Origin{Kind: "guard", Span: caseSpan(arm)})
			checkGuardSublanguage(c, arm.Guard)
		}
		bodyTy := c.InferExpr(armEnv, arm.Body)
		c.Unify(bodyTy, resultTy, Origin{Kind: "receive-arm", Span: caseSpan(arm)})
	}
	if n.After != nil {
		timeoutTy := c.InferExpr(env, n.After.TimeoutMs)
		c.Unify(timeoutTy, ty.Int, Origin{Kind: "receive-after", Span: spanOf(n)})
		bodyTy := c.InferExpr(env, n.After.Body)
		c.Unify(bodyTy, resultTy, Origin{Kind: "receive-after", Span: spanOf(n)})
	}
	return resultTy
}

func (c *Ctx) inferSelf(env *tyenv.Env, n *ast.SelfRef) ty.Ty {
	msgTy, ok := env.ActorMsgType()
	if !ok {
		c.Error(errors.ACT004, "self() used outside an actor body", spanOf(n))
		msgTy = c.FreshVar()
	}
	return ty.App{Base: ty.Con{Name: "Pid"}, Args: []ty.Ty{msgTy}}
}

func (c *Ctx) inferRecordLiteral(env *tyenv.Env, n *ast.Record) ty.Ty {
	def, ok := c.Types.Structs[n.TypeName]
	if !ok {
		c.Error(errors.TC004, fmt.Sprintf("unknown struct %s", n.TypeName), spanOf(n))
		for _, f := range n.Fields {
			c.InferExpr(env, f.Value)
		}
		return c.FreshVar()
	}
	args := make([]ty.Ty, len(def.Params))
	for i := range args {
		args[i] = c.FreshVar()
	}
	sub := instArgsByName(def.Params, args)

	seen := map[string]bool{}
	for _, f := range n.Fields {
		seen[f.Name] = true
		fieldTy := fieldType(def, f.Name)
		if fieldTy == nil {
			c.Error(errors.TC004, fmt.Sprintf("struct %s has no field %s", n.TypeName, f.Name), spanOf(f.Value))
			c.InferExpr(env, f.Value)
			continue
		}
		valTy := c.InferExpr(env, f.Value)
		c.Unify(valTy, substCon(fieldTy, sub), Origin{Kind: "struct-field", Span: spanOf(f.Value)})
	}
	for _, fd := range def.Fields {
		if !seen[fd.Name] {
			c.Error(errors.TC004, fmt.Sprintf("missing field %s in %s literal", fd.Name, n.TypeName), spanOf(n))
		}
	}

	if len(args) == 0 {
		return ty.Con{Name: n.TypeName}
	}
	return ty.App{Base: ty.Con{Name: n.TypeName}, Args: args}
}

func (c *Ctx) inferFieldAccess(env *tyenv.Env, n *ast.RecordAccess) ty.Ty {
	if id, ok := n.Record.(*ast.Identifier); ok {
		if members, ok := c.Namespaces[id.Name]; ok {
			if _, bound := env.Lookup(id.Name); !bound {
				scheme, ok := members[n.Field]
				if !ok {
					c.Error(errors.IMP002, fmt.Sprintf("module %s has no exported name %s", id.Name, n.Field), spanOf(n))
					return c.FreshVar()
				}
				return c.Instantiate(scheme)
			}
		}
	}

	recvTy := c.InferExpr(env, n.Record)
	resolved := c.Resolve(recvTy)
	head, args := headAndArgs(resolved)
	con, ok := head.(ty.Con)
	if !ok {
		c.Error(errors.TC004, fmt.Sprintf("%s has no field %s", resolved, n.Field), spanOf(n))
		return c.FreshVar()
	}
	def, ok := c.Types.Structs[con.Name]
	if !ok {
		c.Error(errors.TC004, fmt.Sprintf("%s has no field %s", resolved, n.Field), spanOf(n))
		return c.FreshVar()
	}
	fieldTy := fieldType(def, n.Field)
	if fieldTy == nil {
		c.Error(errors.TC004, fmt.Sprintf("struct %s has no field %s", con.Name, n.Field), spanOf(n))
		return c.FreshVar()
	}
	sub := instArgsByName(def.Params, args)
	return substCon(fieldTy, sub)
}

func (c *Ctx) inferRecordUpdate(env *tyenv.Env, n *ast.RecordUpdate) ty.Ty {
	baseTy := c.InferExpr(env, n.Base)
	resolved := c.Resolve(baseTy)
	head, args := headAndArgs(resolved)
	con, ok := head.(ty.Con)
	if !ok {
		c.Error(errors.TC004, fmt.Sprintf("%s is not a struct", resolved), spanOf(n))
		for _, f := range n.Fields {
			c.InferExpr(env, f.Value)
		}
		return baseTy
	}
	def, ok := c.Types.Structs[con.Name]
	if !ok {
		c.Error(errors.TC004, fmt.Sprintf("%s is not a struct", resolved), spanOf(n))
		for _, f := range n.Fields {
			c.InferExpr(env, f.Value)
		}
		return baseTy
	}
	sub := instArgsByName(def.Params, args)
	for _, f := range n.Fields {
		fieldTy := fieldType(def, f.Name)
		if fieldTy == nil {
			c.Error(errors.TC004, fmt.Sprintf("struct %s has no field %s", con.Name, f.Name), spanOf(f.Value))
			c.InferExpr(env, f.Value)
			continue
		}
		valTy := c.InferExpr(env, f.Value)
		c.Unify(valTy, substCon(fieldTy, sub), Origin{Kind: "struct-update", Span: spanOf(f.Value)})
	}
	return baseTy
}
