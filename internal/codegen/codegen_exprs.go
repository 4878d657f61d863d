package codegen

import (
	"fmt"
	"strings"

	"github.com/snowdamiz/mesh-lang-sub001/internal/abi"
	"github.com/snowdamiz/mesh-lang-sub001/internal/mir"
)

func unopInstr(op string) string {
	switch op {
	case "-":
		return "neg"
	case "!", "not":
		return "not"
	}
	return "unop_" + op
}

func binopInstr(op string) string {
	switch op {
	case "+":
		return "add"
	case "-":
		return "sub"
	case "*":
		return "mul"
	case "/":
		return "div"
	case "%":
		return "rem"
	case "==":
		return "eq"
	case "!=":
		return "ne"
	case "<":
		return "lt"
	case ">":
		return "gt"
	case "<=":
		return "le"
	case ">=":
		return "ge"
	}
	return "op_" + op
}

func quoteAll(ss []string) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = fmt.Sprintf("%q", s)
	}
	return out
}

// emitBinOp implements short-circuit evaluation for && and || (spec §4.13
// "Short-circuit boolean operators"): the right-hand side is only evaluated
// on the branch where the left-hand side doesn't already decide the result.
// Every other operator compiles straight to a single instruction.
func (c *Codegen) emitBinOp(n *mir.BinOp, counts map[string]int) string {
	if n.Op == "&&" || n.Op == "||" {
		lhs := c.emitExpr(n.Left, counts)
		resultSlot := c.freshTmp() + ".sc"
		c.emit("  %s = alloca Bool", resultSlot)

		rhsLabel := c.freshLabel("sc_rhs")
		shortLabel := c.freshLabel("sc_short")
		joinLabel := c.freshLabel("sc_join")

		if n.Op == "&&" {
			c.emit("  br i1 %s, label %%%s, label %%%s", lhs, rhsLabel, shortLabel)
		} else {
			c.emit("  br i1 %s, label %%%s, label %%%s", lhs, shortLabel, rhsLabel)
		}

		c.emit("%s:", shortLabel)
		c.emit("  store Bool %s, %s", lhs, resultSlot)
		c.emit("  br label %%%s", joinLabel)

		c.emit("%s:", rhsLabel)
		rhs := c.emitExpr(n.Right, counts)
		c.emit("  store Bool %s, %s", rhs, resultSlot)
		c.emit("  br label %%%s", joinLabel)

		c.emit("%s:", joinLabel)
		reg := c.freshTmp()
		c.emit("  %s = load %s", reg, resultSlot)
		return reg
	}

	l := c.emitExpr(n.Left, counts)
	r := c.emitExpr(n.Right, counts)
	reg := c.freshTmp()
	c.emit("  %s = %s %s %s, %s", reg, binopInstr(n.Op), n.Type(), l, r)
	return reg
}

func (c *Codegen) emitArgs(args []mir.MirExpr, counts map[string]int) []string {
	out := make([]string, len(args))
	for i, a := range args {
		out[i] = c.emitExpr(a, counts)
	}
	return out
}

// emitCall inserts intrinsic-boundary coercions when the callee is a
// declared mesh_* ABI entry point (spec §4.13 "Coercions at intrinsic
// boundaries"): a primitive argument is boxed to Ptr before the call if the
// ABI signature expects Ptr, and the Ptr result is unboxed after the call
// if the MIR call-site type is a primitive. A reduction check always
// follows a call (spec §4.13 "Reduction check").
func (c *Codegen) emitCall(n *mir.Call, counts map[string]int) string {
	args := c.emitArgs(n.Args, counts)

	if sig, ok := abi.Lookup(n.Func); ok {
		for i, a := range args {
			if i < len(sig.Params) {
				args[i] = c.coerceArg(a, n.Args[i].Type(), sig.Params[i])
			}
		}
		reg := c.freshTmp()
		c.emit("  %s = call %s @%s(%s)", reg, sig.Ret, n.Func, strings.Join(args, ", "))
		c.reductionCheck()
		return c.coerceResult(reg, sig.Ret, n.Type())
	}

	reg := c.freshTmp()
	c.emit("  %s = call %s @%s(%s)", reg, n.Type(), n.Func, strings.Join(args, ", "))
	c.reductionCheck()
	return reg
}

// coerceArg boxes a primitive argument to Ptr when the callee expects Ptr
// but the MIR value is a scalar, by calling the matching mesh_box_*
// intrinsic for Int, Float, Bool and String. No zext, bitcast or ptrtoint
// instruction is emitted; other types are passed through unchanged.
func (c *Codegen) coerceArg(value string, from mir.MirType, want mir.MirType) string {
	if _, wantsPtr := want.(mir.TPtr); !wantsPtr {
		return value
	}
	switch from.(type) {
	case mir.TInt:
		return c.callBox("mesh_box_int", value)
	case mir.TFloat:
		return c.callBox("mesh_box_float", value)
	case mir.TBool:
		return c.callBox("mesh_box_bool", value)
	case mir.TString:
		return c.callBox("mesh_box_string", value)
	default:
		return value // already a pointer-shaped representation
	}
}

// coerceResult unboxes a Ptr-returning intrinsic's result back to the
// call-site's declared scalar MIR type, if any, by calling the matching
// mesh_unbox_* intrinsic for Int, Float, Bool and String. No trunc,
// bitcast or inttoptr instruction is emitted; a non-Ptr result is returned
// unchanged.
func (c *Codegen) coerceResult(value string, from mir.MirType, want mir.MirType) string {
	if _, fromPtr := from.(mir.TPtr); !fromPtr {
		return value
	}
	switch want.(type) {
	case mir.TInt:
		return c.callBox("mesh_unbox_int", value)
	case mir.TFloat:
		return c.callBox("mesh_unbox_float", value)
	case mir.TBool:
		return c.callBox("mesh_unbox_bool", value)
	case mir.TString:
		return c.callBox("mesh_unbox_string", value)
	default:
		return value
	}
}

func (c *Codegen) callBox(name, value string) string {
	reg := c.freshTmp()
	c.emit("  %s = call Ptr @%s(%s)", reg, name, value)
	return reg
}

// emitIf merges the two branches' values through a stack slot rather than
// an SSA phi node, per the alloca+mem2reg pattern's stated rationale
// (spec §4.13: "structured control flow (if, match, while, for) merges
// values through the slot").
func (c *Codegen) emitIf(n *mir.If, counts map[string]int) string {
	cond := c.emitExpr(n.Cond, counts)
	slot := c.freshTmp() + ".if"
	c.emit("  %s = alloca %s", slot, n.Type())

	thenLabel := c.freshLabel("if_then")
	elseLabel := c.freshLabel("if_else")
	joinLabel := c.freshLabel("if_join")
	c.emit("  br i1 %s, label %%%s, label %%%s", cond, thenLabel, elseLabel)

	c.emit("%s:", thenLabel)
	thenV := c.emitExpr(n.Then, counts)
	c.emit("  store %s %s, %s", n.Type(), thenV, slot)
	c.emit("  br label %%%s", joinLabel)

	c.emit("%s:", elseLabel)
	elseV := c.emitExpr(n.Else, counts)
	c.emit("  store %s %s, %s", n.Type(), elseV, slot)
	c.emit("  br label %%%s", joinLabel)

	c.emit("%s:", joinLabel)
	reg := c.freshTmp()
	c.emit("  %s = load %s", reg, slot)
	return reg
}

func (c *Codegen) emitMatch(n *mir.Match, counts map[string]int) string {
	scrut := c.emitExpr(n.Scrutinee, counts)
	slot := c.freshTmp() + ".match"
	c.emit("  %s = alloca %s", slot, n.Type())
	joinLabel := c.freshLabel("match_join")
	c.emitTree(n.Tree, scrut, slot, n.Type(), joinLabel, counts)
	c.emit("%s:", joinLabel)
	reg := c.freshTmp()
	c.emit("  %s = load %s", reg, slot)
	return reg
}

// resolvePath follows a SwitchNode's field-index path from the match's root
// scrutinee down to the sub-value the switch actually dispatches on, one
// getfield per path element (spec §4.12: nested constructor/tuple
// sub-patterns specialize into deeper columns of the same scrutinee).
func (c *Codegen) resolvePath(root string, path []int) string {
	v := root
	for _, idx := range path {
		reg := c.freshTmp()
		c.emit("  %s = getfield %s, %d", reg, v, idx)
		v = reg
	}
	return v
}

// emitTree walks a compiled decision tree, dispatching on the scrutinee's
// runtime tag/value and storing each reached leaf's body into slot before
// jumping to join (spec §4.12 "scrutinee loaded into a named place,
// decisions branch on variant tags, primitive equality, or literal value").
// A leaf's as-pattern/identifier bindings are bound to their matched
// sub-values before its guard (if any) and body are emitted; a failing
// guard falls through to a non-exhaustive-match panic since the tree compiler
// already folded guard-bearing rows' alternatives into sibling arms.
func (c *Codegen) emitTree(t mir.DecisionTree, scrut, slot string, ty mir.MirType, join string, counts map[string]int) {
	switch n := t.(type) {
	case *mir.LeafNode:
		for _, b := range n.Bindings {
			c.bind(b, scrut, counts)
		}
		if n.Guard != nil {
			g := c.emitExpr(n.Guard, counts)
			okLabel := c.freshLabel("guard_ok")
			failLabel := c.freshLabel("guard_fail")
			c.emit("  br i1 %s, label %%%s, label %%%s", g, okLabel, failLabel)
			c.emit("%s:", failLabel)
			c.emit("  panic_no_match")
			c.emit("  br label %%%s", join)
			c.emit("%s:", okLabel)
		}
		v := c.emitExpr(n.Body, counts)
		c.emit("  store %s %s, %s", ty, v, slot)
		c.emit("  br label %%%s", join)
	case *mir.FailNode:
		c.emit("  panic_no_match")
		c.emit("  br label %%%s", join)
	case *mir.SwitchNode:
		disc := c.resolvePath(scrut, n.Path)
		defLabel := c.freshLabel("case_default")
		c.emit("  switch %s {", disc)
		type pending struct {
			sub   mir.DecisionTree
			label string
		}
		var subs []pending
		for key, sub := range n.Cases {
			caseLabel := c.freshLabel("case")
			c.emit("    %v -> %%%s", key, caseLabel)
			subs = append(subs, pending{sub, caseLabel})
		}
		c.emit("    default -> %%%s", defLabel)
		c.emit("  }")
		for _, p := range subs {
			c.emit("%s:", p.label)
			c.emitTree(p.sub, scrut, slot, ty, join, counts)
		}
		c.emit("%s:", defLabel)
		if n.Default != nil {
			c.emitTree(n.Default, scrut, slot, ty, join, counts)
		} else {
			c.emit("  panic_no_match")
			c.emit("  br label %%%s", join)
		}
	}
}

// emitPanic lowers an explicit panic to the runtime's noreturn mesh_panic
// intrinsic followed by an unreachable terminator (spec §4.13 "Panic").
func (c *Codegen) emitPanic(n *mir.Panic, counts map[string]int) string {
	msg := c.emitExpr(n.Message, counts)
	msgLen := c.freshTmp()
	c.emit("  %s = call Int @mesh_string_length(%s)", msgLen, msg)
	c.emit("  call void @mesh_panic(%s, %s, %q, %d, %d) noreturn", msg, msgLen, n.File, len(n.File), n.Line)
	c.emit("  unreachable")
	return "unreachable"
}

func (c *Codegen) emitWhile(n *mir.While, counts map[string]int) string {
	header := c.freshLabel("while_header")
	body := c.freshLabel("while_body")
	exit := c.freshLabel("while_exit")
	c.loopHeader = append(c.loopHeader, header)
	c.loopExit = append(c.loopExit, exit)

	c.emit("  br label %%%s", header)
	c.emit("%s:", header)
	cond := c.emitExpr(n.Cond, counts)
	c.emit("  br i1 %s, label %%%s, label %%%s", cond, body, exit)

	c.emit("%s:", body)
	c.emitExpr(n.Body, counts)
	c.reductionCheck()
	c.emit("  br label %%%s", header)

	c.emit("%s:", exit)

	c.loopHeader = c.loopHeader[:len(c.loopHeader)-1]
	c.loopExit = c.loopExit[:len(c.loopExit)-1]
	return "unit"
}

// emitFor lowers a for-in comprehension to the matching iterator
// intrinsic family plus a growable-list builder, with a reduction check at
// the loop's back-edge like every other loop form (spec §4.12, §4.13).
func (c *Codegen) emitFor(n *mir.For, counts map[string]int) string {
	iterable := c.emitExpr(n.Iterable, counts)
	newFn := iterFamilyFn(n.Kind)
	iter := c.freshTmp()
	c.emit("  %s = call Ptr @%s(%s)", iter, newFn, iterable)

	builder := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_list_builder_new()", builder)

	header := c.freshLabel("for_header")
	body := c.freshLabel("for_body")
	exit := c.freshLabel("for_exit")
	c.loopHeader = append(c.loopHeader, header)
	c.loopExit = append(c.loopExit, exit)

	c.emit("  br label %%%s", header)
	c.emit("%s:", header)
	next := c.freshTmp()
	c.emit("  %s = call Ptr @%s(%s)", next, iterNextFn(n.Kind), iter)
	isNone := c.freshTmp()
	c.emit("  %s = option_is_none %s", isNone, next)
	c.emit("  br i1 %s, label %%%s, label %%%s", isNone, exit, body)

	c.emit("%s:", body)
	c.regs[n.Binder] = next
	if n.Filter != nil {
		keep := c.emitExpr(n.Filter, counts)
		skipLabel := c.freshLabel("for_skip")
		keepLabel := c.freshLabel("for_keep")
		c.emit("  br i1 %s, label %%%s, label %%%s", keep, keepLabel, skipLabel)
		c.emit("%s:", keepLabel)
		v := c.emitExpr(n.Body, counts)
		c.emit("  call void @mesh_list_builder_push(Ptr %s, Ptr %s)", builder, v)
		c.emit("  br label %%%s", skipLabel)
		c.emit("%s:", skipLabel)
	} else {
		v := c.emitExpr(n.Body, counts)
		c.emit("  call void @mesh_list_builder_push(Ptr %s, Ptr %s)", builder, v)
	}
	c.reductionCheck()
	c.emit("  br label %%%s", header)

	c.emit("%s:", exit)
	c.loopHeader = c.loopHeader[:len(c.loopHeader)-1]
	c.loopExit = c.loopExit[:len(c.loopExit)-1]
	return builder
}

func iterFamilyFn(k mir.ForKind) string {
	switch k {
	case mir.ForMap:
		return "mesh_map_iter_new"
	case mir.ForSet:
		return "mesh_set_iter_new"
	case mir.ForRange:
		return "mesh_range_iter_new"
	default:
		return "mesh_list_iter_new"
	}
}

func iterNextFn(k mir.ForKind) string {
	switch k {
	case mir.ForMap:
		return "mesh_map_iter_next"
	case mir.ForSet:
		return "mesh_set_iter_next"
	case mir.ForRange:
		return "mesh_range_iter_next"
	default:
		return "mesh_list_iter_next"
	}
}

func (c *Codegen) emitStructLit(n *mir.StructLit, counts map[string]int) string {
	reg := c.freshTmp()
	c.emit("  %s = alloca %s", reg, n.Type())
	for i, name := range n.FieldOrder {
		v := c.emitExpr(n.Fields[name], counts)
		c.emit("  setfield %s, %d, %s ; .%s", reg, i, v, name)
	}
	return reg
}

func (c *Codegen) emitListLit(n *mir.ListLit, counts map[string]int) string {
	boxed := make([]string, len(n.Elements))
	for i, el := range n.Elements {
		v := c.emitExpr(el, counts)
		boxed[i] = c.coerceArg(v, el.Type(), mir.TPtr{})
	}
	reg := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_list_from_array(Ptr [%s], %d)", reg, strings.Join(boxed, ", "), len(boxed))
	return reg
}

func (c *Codegen) emitTupleLit(n *mir.TupleLit, counts map[string]int) string {
	reg := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_tuple_new(%d)", reg, len(n.Elements))
	for i, el := range n.Elements {
		v := c.emitExpr(el, counts)
		boxed := c.coerceArg(v, el.Type(), mir.TPtr{})
		c.emit("  settuple %s, %d, %s", reg, i, boxed)
	}
	return reg
}

// emitVariantConstruct lays out a sum-type value's runtime tag plus fields.
// For a service's synthesised message sum (named __service_<svc>_msg by
// internal/mir's declaration-level lowering) the layout instead follows the
// wire message format (spec §4.13 "Message layout": 16-byte header, then
// `[u64 type_tag][u64 caller_pid][args...]` for a service call/cast).
func (c *Codegen) emitVariantConstruct(n *mir.VariantConstruct, counts map[string]int) string {
	if strings.HasPrefix(n.SumName, "__service_") && strings.HasSuffix(n.SumName, "_msg") {
		args := c.emitArgs(n.Args, counts)
		size := fmt.Sprintf("%d", 16+8*len(args))
		buf := c.freshTmp()
		c.emit("  %s = call Ptr @mesh_gc_alloc_actor(%s, 8)", buf, size)
		c.emit("  store_header %s, tag=%d, caller_pid=self", buf, n.Tag)
		for i, a := range args {
			boxed := c.coerceArg(a, n.Args[i].Type(), mir.TPtr{})
			c.emit("  store_payload %s, %d, %s", buf, i, boxed)
		}
		return buf
	}

	reg := c.freshTmp()
	c.emit("  %s = alloca %s ; tag=%d", reg, n.Type(), n.Tag)
	c.emit("  setfield %s, -1, %d ; tag", reg, n.Tag)
	for i, a := range n.Args {
		v := c.emitExpr(a, counts)
		c.emit("  setfield %s, %d, %s ; %s.%s arg%d", reg, i, v, n.SumName, n.VariantName, i)
	}
	return reg
}

// emitActorSpawn packs the spawn arguments into a GC-allocated i64 buffer —
// never the caller's stack, since the actor keeps running after the caller
// returns (spec §4.12 "Actor spawn lowering"). Each argument goes through
// coerceArg, so Int, Float, Bool and String values are boxed to Ptr with
// mesh_box_* before being stored; they are not cast to i64.
func (c *Codegen) emitActorSpawn(n *mir.ActorSpawn, counts map[string]int) string {
	args := c.emitArgs(n.Args, counts)
	buf := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_gc_alloc_actor(%d, 8)", buf, 8*len(args))
	for i, a := range args {
		i64 := c.coerceArg(a, n.Args[i].Type(), mir.TPtr{})
		c.emit("  store_i64 %s, %d, %s", buf, i, i64)
	}
	prio := "0"
	if n.Priority != nil {
		prio = c.emitExpr(n.Priority, counts)
	}
	reg := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_actor_spawn(@%s, Ptr %s, %d, %s)", reg, n.Func, buf, len(args), prio)
	if n.Terminate != nil {
		term := c.emitExpr(n.Terminate, counts)
		c.emit("  call void @mesh_actor_set_terminate(Ptr %s, Ptr %s)", reg, term)
	}
	return reg
}

func (c *Codegen) emitActorSend(n *mir.ActorSend, counts map[string]int) string {
	target := c.emitExpr(n.Target, counts)
	msg := c.emitExpr(n.Message, counts)
	boxed := c.coerceArg(msg, n.Message.Type(), mir.TPtr{})
	c.emit("  call void @mesh_actor_send(Ptr %s, Ptr %s, 8)", target, boxed)
	return "unit"
}

// emitActorReceive splits the post-receive block into timeout_bb/msg_bb on
// a null-pointer check when an after-clause is present (spec §5
// "Cancellation": "Receive timeouts return a null message pointer; codegen
// splits the post-receive basic block into timeout_bb and msg_bb with a
// null check").
func (c *Codegen) emitActorReceive(n *mir.ActorReceive, counts map[string]int) string {
	timeout := "-1"
	if n.AfterMs != nil {
		timeout = c.emitExpr(n.AfterMs, counts)
	}
	msg := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_actor_receive(%s)", msg, timeout)

	slot := c.freshTmp() + ".recv"
	c.emit("  %s = alloca %s", slot, n.Type())
	join := c.freshLabel("recv_join")

	if n.AfterMs != nil {
		isNull := c.freshTmp()
		c.emit("  %s = is_null %s", isNull, msg)
		timeoutBB := c.freshLabel("timeout_bb")
		msgBB := c.freshLabel("msg_bb")
		c.emit("  br i1 %s, label %%%s, label %%%s", isNull, timeoutBB, msgBB)

		c.emit("%s:", timeoutBB)
		v := c.emitExpr(n.AfterBody, counts)
		c.emit("  store %s %s, %s", n.Type(), v, slot)
		c.emit("  br label %%%s", join)

		c.emit("%s:", msgBB)
		c.emitTree(n.Tree, msg, slot, n.Type(), join, counts)
	} else {
		c.emitTree(n.Tree, msg, slot, n.Type(), join, counts)
	}

	c.emit("%s:", join)
	reg := c.freshTmp()
	c.emit("  %s = load %s", reg, slot)
	return reg
}

// emitSupervisorStart packs the supervisor's strategy/budget/children into
// the binary config buffer the runtime ABI expects (spec §6.2
// "mesh_supervisor_start... accepts a binary config buffer").
func (c *Codegen) emitSupervisorStart(n *mir.SupervisorStart, counts map[string]int) string {
	size := fmt.Sprintf("%d", 1+4+8+4+len(n.Children)*32)
	buf := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_gc_alloc_actor(%s, 8)", buf, size)
	c.emit("  store_u8 %s, 0, %d ; strategy", buf, strategyByte(n.Strategy))
	c.emit("  store_u32 %s, 1, %d ; max_restarts", buf, n.MaxRestarts)
	c.emit("  store_u64 %s, 5, %d ; max_seconds", buf, n.MaxSeconds)
	c.emit("  store_u32 %s, 13, %d ; child_count", buf, len(n.Children))
	for i, ch := range n.Children {
		startFn := c.emitExpr(ch.Start, counts)
		c.emit("  store_child %s, %d, %q, %s, %q, %s", buf, i, ch.Name, startFn, ch.Restart, childKindByte(ch.Kind))
	}
	reg := c.freshTmp()
	c.emit("  %s = call Ptr @mesh_supervisor_start(Ptr %s, %s)", reg, buf, size)
	return reg
}

func strategyByte(s string) int {
	switch s {
	case "one_for_one":
		return 0
	case "one_for_all":
		return 1
	case "rest_for_one":
		return 2
	case "simple_one_for_one":
		return 3
	}
	return 0
}

func childKindByte(k string) string {
	if k == "supervisor" {
		return "1"
	}
	return "0"
}
