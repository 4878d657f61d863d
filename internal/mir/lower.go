package mir

import (
	"fmt"
	"strconv"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// StructLayout and SumLayout are the monomorphised aggregate layouts
// codegen consumes (spec §4.12 "plus monomorphised struct and sum type
// layouts accumulated into codegen metadata").
type StructLayout struct {
	Name       string
	FieldOrder []string
	Fields     map[string]MirType
}

type VariantLayout struct {
	Name string
	Tag  int
	Args []MirType
}

type SumLayout struct {
	Name     string
	Variants []VariantLayout
}

// Function is a lowered top-level function: either a user-declared
// function/actor/handler, or one produced by closure conversion.
type Function struct {
	Name       string
	ParamNames []string
	ParamTypes []MirType
	Ret        MirType
	Body       MirExpr
	// IsTailLoop marks a function whose body contains TailCall nodes
	// targeting itself; codegen uses this to decide where to place
	// entry-block allocas (spec §4.13).
	IsTailLoop bool
	// EnvParam is set for a lifted closure body: the name its captured
	// environment pointer is bound to as an implicit first parameter
	// (spec §4.12 "Closure conversion").
	EnvParam string
}

// Module is the lowering output for one compilation unit: every lowered
// function plus the monomorphic layouts its bodies reference.
type Module struct {
	Functions []*Function
	Structs   map[string]*StructLayout
	Sums      map[string]*SumLayout
}

// scope is a chain of name -> concrete (monomorphic) type bindings, used
// to recover each subexpression's MirType during lowering now that
// unification has already settled every variable (spec §4.12 "Type
// resolution"). This mirrors the teacher's elaborate package's pattern of
// a second pass over the already-checked surface tree, except here the
// pass recovers concrete types instead of building an untyped ANF form.
type scope struct {
	vars   map[string]ty.Ty
	parent *scope
}

func newScope(parent *scope) *scope { return &scope{vars: map[string]ty.Ty{}, parent: parent} }

func (s *scope) lookup(name string) (ty.Ty, bool) {
	for cur := s; cur != nil; cur = cur.parent {
		if t, ok := cur.vars[name]; ok {
			return t, true
		}
	}
	return nil, false
}

func (s *scope) bind(name string, t ty.Ty) { s.vars[name] = t }

// Lowerer walks a type-checked program and produces a Module. Grounded on
// the teacher's internal/elaborate (a post-typecheck pass producing a
// lower representation) and internal/dtree (decision-tree compilation,
// see dtree.go).
type Lowerer struct {
	Types  *registry.TypeRegistry
	Traits *registry.TraitRegistry

	structs map[string]*StructLayout
	sums    map[string]*SumLayout
	funcs   []*Function

	// tailFn/tailArity identify the enclosing function whose self-calls in
	// tail position become TailCall nodes (spec §4.12 "Tail-call
	// elimination").
	tailFn    string
	tailArity int

	closureSeq int

	Errors []*errors.Report
}

func NewLowerer(types *registry.TypeRegistry, traits *registry.TraitRegistry) *Lowerer {
	return &Lowerer{
		Types:   types,
		Traits:  traits,
		structs: map[string]*StructLayout{},
		sums:    map[string]*SumLayout{},
	}
}

func (l *Lowerer) errorf(span ast.Pos, format string, args ...interface{}) {
	l.Errors = append(l.Errors, errors.NewReport(errors.MIR001, "lowering", fmt.Sprintf(format, args...)).
		At(ast.Span{Start: span, End: span}))
}

// Module returns the accumulated lowering output.
func (l *Lowerer) Module() *Module {
	return &Module{Functions: l.funcs, Structs: l.structs, Sums: l.sums}
}

func (l *Lowerer) resolve(t ty.Ty) MirType {
	mt, err := ResolveType(t, l.Types)
	if err != nil {
		l.errorf(ast.Pos{}, "%s", err.Error())
		return TUnit{}
	}
	return mt
}

// LowerFuncDecl lowers a single (non-multi-clause) function declaration
// given its checker-inferred parameter/return types.
func (l *Lowerer) LowerFuncDecl(decl *ast.FuncDecl, paramTys []ty.Ty, retTy ty.Ty) *Function {
	sc := newScope(nil)
	for i, p := range decl.Params {
		sc.bind(p.Name, paramTys[i])
	}

	prevFn, prevArity := l.tailFn, l.tailArity
	l.tailFn, l.tailArity = decl.Name, len(decl.Params)
	body := l.lowerExprTail(decl.Body, sc, true)
	l.tailFn, l.tailArity = prevFn, prevArity

	paramNames := make([]string, len(decl.Params))
	paramTypes := make([]MirType, len(decl.Params))
	for i, p := range decl.Params {
		paramNames[i] = p.Name
		paramTypes[i] = l.resolve(paramTys[i])
	}

	fn := &Function{
		Name:       decl.Name,
		ParamNames: paramNames,
		ParamTypes: paramTypes,
		Ret:        l.resolve(retTy),
		Body:       body,
		IsTailLoop: containsTailCall(body, decl.Name),
	}
	l.funcs = append(l.funcs, fn)
	return fn
}

// LowerClauseGroup lowers a multi-clause function group to a single
// implicit match over its parameter tuple (spec §4.12 "Multi-clause
// lowering"): `case (param1, ..., paramN) of clause_tuple_pattern ->
// clause_body`, sharing one parameter list across all clauses.
func (l *Lowerer) LowerClauseGroup(name string, clauses []*ast.FuncDecl, paramTys []ty.Ty, retTy ty.Ty) *Function {
	arity := len(paramTys)
	paramNames := make([]string, arity)
	for i := range paramNames {
		paramNames[i] = fmt.Sprintf("__arg%d", i)
	}

	prevFn, prevArity := l.tailFn, l.tailArity
	l.tailFn, l.tailArity = name, arity

	var rows [][]MirPattern
	var guards, bodies []MirExpr
	for _, clause := range clauses {
		sc := newScope(nil)
		row := make([]MirPattern, arity)
		for i, p := range clause.Params {
			lowered := lowerPattern(paramAsPattern(p), l.Types)
			if len(lowered) == 0 {
				lowered = []MirPattern{PWildcard{}}
			}
			row[i] = lowered[0]
			bindPatternScope(row[i], paramTys[i], sc)
		}
		rows = append(rows, row)
		if clause.Guard != nil {
			guards = append(guards, l.lowerExpr(clause.Guard, sc))
		} else {
			guards = append(guards, nil)
		}
		bodies = append(bodies, l.lowerExpr(clause.Body, sc))
	}
	l.tailFn, l.tailArity = prevFn, prevArity

	tree := CompileMatch(rows, guards, bodies)
	scrutinees := make([]MirExpr, arity)
	for i := range scrutinees {
		scrutinees[i] = &VarRef{base: base{Ty: l.resolve(paramTys[i])}, Name: paramNames[i]}
	}
	var scrutinee MirExpr
	if arity == 1 {
		scrutinee = scrutinees[0]
	} else {
		elemTys := make([]MirType, arity)
		for i, s := range scrutinees {
			elemTys[i] = s.Type()
		}
		scrutinee = &TupleLit{base: base{Ty: TTuple{Elems: elemTys}}, Elements: scrutinees}
	}

	body := &Match{base: base{Ty: l.resolve(retTy)}, Scrutinee: scrutinee, Tree: tree}
	paramTypes := make([]MirType, arity)
	for i, t := range paramTys {
		paramTypes[i] = l.resolve(t)
	}
	fn := &Function{
		Name:       name,
		ParamNames: paramNames,
		ParamTypes: paramTypes,
		Ret:        l.resolve(retTy),
		Body:       body,
		IsTailLoop: containsTailCall(body, name),
	}
	l.funcs = append(l.funcs, fn)
	return fn
}

// paramAsPattern recovers the clause parameter's dispatch pattern from its
// literal-text-recovered AST form (see internal/clauses.paramPattern; the
// same recovery is repeated here since the parser's Param carries only a
// name/type, not a pattern slot).
func paramAsPattern(p *ast.Param) ast.Pattern {
	if p.Name == "_" {
		return &ast.WildcardPattern{Pos: p.Pos}
	}
	if iv, err := strconv.ParseInt(p.Name, 10, 64); err == nil {
		return &ast.Literal{Kind: ast.IntLit, Value: iv, Pos: p.Pos}
	}
	if fv, err := strconv.ParseFloat(p.Name, 64); err == nil {
		return &ast.Literal{Kind: ast.FloatLit, Value: fv, Pos: p.Pos}
	}
	if p.Name == "true" || p.Name == "false" {
		return &ast.Literal{Kind: ast.BoolLit, Value: p.Name == "true", Pos: p.Pos}
	}
	return &ast.Identifier{Name: p.Name, Pos: p.Pos}
}

func bindPatternScope(p MirPattern, t ty.Ty, sc *scope) {
	switch n := p.(type) {
	case PWildcard:
		if n.Binder != "" {
			sc.bind(n.Binder, t)
		}
	case asBound:
		sc.bind(n.Name, t)
		bindPatternScope(n.Inner, t, sc)
	}
}

// containsTailCall reports whether body contains a TailCall node (emitted
// only for self-calls found in tail position during lowering).
func containsTailCall(e MirExpr, name string) bool {
	switch n := e.(type) {
	case *TailCall:
		return n.Func == name
	case *If:
		return containsTailCall(n.Then, name) || containsTailCall(n.Else, name)
	case *Let:
		return containsTailCall(n.Body, name)
	case *Block:
		if len(n.Exprs) == 0 {
			return false
		}
		return containsTailCall(n.Exprs[len(n.Exprs)-1], name)
	case *Match:
		return treeHasTailCall(n.Tree, name)
	}
	return false
}

func treeHasTailCall(t DecisionTree, name string) bool {
	switch n := t.(type) {
	case *LeafNode:
		return containsTailCall(n.Body, name)
	case *SwitchNode:
		for _, sub := range n.Cases {
			if treeHasTailCall(sub, name) {
				return true
			}
		}
		if n.Default != nil && treeHasTailCall(n.Default, name) {
			return true
		}
	}
	return false
}

// lowerExpr is the main recursive descent, mirroring the rule set of
// internal/infer's inference walk (spec §4.8) now specialised to produce
// a concretely-typed MirExpr instead of a unification constraint.
func (l *Lowerer) lowerExpr(e ast.Expr, sc *scope) MirExpr {
	return l.lowerExprTail(e, sc, false)
}

// lowerExprTail lowers e, treating it as being in tail position when
// tail is true so a self-recursive FuncCall becomes a TailCall
// (spec §4.12 "Tail-call elimination").
func (l *Lowerer) lowerExprTail(e ast.Expr, sc *scope, tail bool) MirExpr {
	switch n := e.(type) {
	case *ast.Literal:
		return l.lowerLiteral(n)

	case *ast.Identifier:
		t, ok := sc.lookup(n.Name)
		if !ok {
			l.errorf(n.Pos, "unbound identifier %s reached lowering", n.Name)
			return &VarRef{base: base{Ty: TUnit{}}, Name: n.Name}
		}
		return &VarRef{base: base{Ty: l.resolve(t)}, Name: n.Name}

	case *ast.BinaryOp:
		return l.lowerBinaryOp(n, sc)

	case *ast.UnaryOp:
		operand := l.lowerExpr(n.Expr, sc)
		rt := operand.Type()
		if n.Op == "!" {
			rt = TBool{}
		}
		return &UnOp{base: base{Ty: rt}, Op: n.Op, Operand: operand}

	case *ast.FuncCall:
		return l.lowerFuncCall(n, sc, tail)

	case *ast.Pipe:
		return l.lowerExprTail(desugarPipe(n), sc, tail)

	case *ast.Let:
		value := l.lowerExpr(n.Value, sc)
		child := newScope(sc)
		valTy := mirTypeAsTy(value.Type())
		child.bind(n.Name, valTy)
		body := l.lowerExprTail(n.Body, child, tail)
		return &Let{base: base{Ty: body.Type()}, Name: n.Name, Value: value, Body: body}

	case *ast.LetRec:
		child := newScope(sc)
		// The binder is visible while lowering its own value so a
		// self-referential closure can find its own name.
		valuePlaceholder := l.lowerExpr(n.Value, child)
		child.bind(n.Name, mirTypeAsTy(valuePlaceholder.Type()))
		body := l.lowerExprTail(n.Body, child, tail)
		return &Let{base: base{Ty: body.Type()}, Name: n.Name, Value: valuePlaceholder, Body: body}

	case *ast.Block:
		return l.lowerBlock(n, sc, tail)

	case *ast.If:
		cond := l.lowerExpr(n.Condition, sc)
		then := l.lowerExprTail(n.Then, sc, tail)
		els := l.lowerExprTail(n.Else, sc, tail)
		return &If{base: base{Ty: then.Type()}, Cond: cond, Then: then, Else: els}

	case *ast.Match:
		return l.lowerMatch(n, sc)

	case *ast.List:
		elems := make([]MirExpr, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = l.lowerExpr(el, sc)
		}
		return &ListLit{base: base{Ty: TPtr{}}, Elements: elems}

	case *ast.Tuple:
		elems := make([]MirExpr, len(n.Elements))
		tys := make([]MirType, len(n.Elements))
		for i, el := range n.Elements {
			elems[i] = l.lowerExpr(el, sc)
			tys[i] = elems[i].Type()
		}
		return &TupleLit{base: base{Ty: TTuple{Elems: tys}}, Elements: elems}

	case *ast.Record:
		return l.lowerRecord(n, sc)

	case *ast.RecordAccess:
		return l.lowerFieldAccess(n, sc)

	case *ast.RecordUpdate:
		return l.lowerRecordUpdate(n, sc)

	case *ast.Lambda:
		return l.lowerClosure(n.Params, n.Body, sc)

	case *ast.FuncLit:
		return l.lowerClosure(n.Params, n.Body, sc)

	case *ast.Try:
		return l.lowerTry(n, sc)

	case *ast.Return:
		var v MirExpr
		if n.Value != nil {
			v = l.lowerExpr(n.Value, sc)
		} else {
			v = &UnitLit{base: base{Ty: TUnit{}}}
		}
		return &Return{base: base{Ty: TNever{}}, Value: v}

	case *ast.Panic:
		msg := l.lowerExpr(n.Message, sc)
		return &Panic{base: base{Ty: TNever{}}, Message: msg, File: n.Pos.File, Line: n.Pos.Line}

	case *ast.While:
		cond := l.lowerExpr(n.Cond, sc)
		body := l.lowerExpr(n.Body, sc)
		return &While{base: base{Ty: TUnit{}}, Cond: cond, Body: body}

	case *ast.Break:
		return &Break{base: base{Ty: TNever{}}}

	case *ast.Continue:
		return &Continue{base: base{Ty: TNever{}}}

	case *ast.For:
		return l.lowerFor(n, sc)

	case *ast.Spawn:
		return l.lowerSpawn(n, sc)

	case *ast.ActorSend:
		target := l.lowerExpr(n.Target, sc)
		msg := l.lowerExpr(n.Message, sc)
		return &ActorSend{base: base{Ty: TUnit{}}, Target: target, Message: msg}

	case *ast.Receive:
		return l.lowerReceive(n, sc)

	case *ast.SelfRef:
		return &SelfExpr{base: base{Ty: TPtr{}}}

	case *ast.Link:
		target := l.lowerExpr(n.Target, sc)
		return &LinkExpr{base: base{Ty: TUnit{}}, Target: target}

	default:
		l.errorf(e.Position(), "no lowering rule for %T", e)
		return &UnitLit{base: base{Ty: TUnit{}}}
	}
}

func (l *Lowerer) lowerLiteral(n *ast.Literal) MirExpr {
	switch n.Kind {
	case ast.IntLit:
		return &IntLit{base: base{Ty: TInt{}}, Value: toInt64(n.Value)}
	case ast.FloatLit:
		return &FloatLit{base: base{Ty: TFloat{}}, Value: toFloat64(n.Value)}
	case ast.BoolLit:
		b, _ := n.Value.(bool)
		return &BoolLit{base: base{Ty: TBool{}}, Value: b}
	case ast.StringLit:
		s, _ := n.Value.(string)
		return &StringLit{base: base{Ty: TString{}}, Value: s}
	default:
		return &UnitLit{base: base{Ty: TUnit{}}}
	}
}

func toInt64(v interface{}) int64 {
	switch n := v.(type) {
	case int64:
		return n
	case int:
		return int64(n)
	default:
		return 0
	}
}

func toFloat64(v interface{}) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	default:
		return 0
	}
}

func (l *Lowerer) lowerBinaryOp(n *ast.BinaryOp, sc *scope) MirExpr {
	left := l.lowerExpr(n.Left, sc)
	right := l.lowerExpr(n.Right, sc)
	resultTy := left.Type()
	if _, isCmp, ok := registry.OperatorTrait(n.Op); ok && isCmp {
		resultTy = TBool{}
	} else if ok {
		// Arithmetic: the impl's declared Output associated type, if any,
		// otherwise the operand type itself (spec §4.4).
		if impl, has := l.Traits.ImplFor(mustTrait(n.Op), mirTypeAsTy(left.Type())); has {
			if out, hasOut := impl.AssocBindings["Output"]; hasOut {
				resultTy = l.resolve(out)
			}
		}
	}
	return &BinOp{base: base{Ty: resultTy}, Op: n.Op, Left: left, Right: right}
}

func mustTrait(op string) string {
	t, _, _ := registry.OperatorTrait(op)
	return t
}

// mirTypeAsTy lifts a resolved MirType back into the checker's Ty grammar
// far enough to drive trait-impl lookup (head-constructor matching only;
// used solely to key ImplFor, never re-unified).
func mirTypeAsTy(t MirType) ty.Ty {
	switch n := t.(type) {
	case TInt:
		return ty.Int
	case TFloat:
		return ty.Float
	case TBool:
		return ty.Bool
	case TString:
		return ty.String
	case TUnit:
		return ty.Unit
	case TStruct:
		return ty.Con{Name: n.Name}
	case TSum:
		return ty.Con{Name: n.Name}
	default:
		return ty.Con{Name: t.String()}
	}
}

func desugarPipe(p *ast.Pipe) ast.Expr {
	if call, ok := p.Rhs.(*ast.FuncCall); ok {
		args := append([]ast.Expr{p.Lhs}, call.Args...)
		return &ast.FuncCall{Func: call.Func, Args: args, Pos: p.Pos}
	}
	return &ast.FuncCall{Func: p.Rhs, Args: []ast.Expr{p.Lhs}, Pos: p.Pos}
}

func (l *Lowerer) lowerFuncCall(n *ast.FuncCall, sc *scope, tail bool) MirExpr {
	if id, ok := n.Func.(*ast.Identifier); ok {
		args := make([]MirExpr, len(n.Args))
		for i, a := range n.Args {
			args[i] = l.lowerExpr(a, sc)
		}
		if sum, hasVariant := l.Types.VariantOwner(id.Name); hasVariant {
			v, _ := sum.VariantOf(id.Name)
			return &VariantConstruct{base: base{Ty: TSum{Name: sum.Name}}, SumName: sum.Name,
				VariantName: id.Name, Tag: v.Tag, Args: args}
		}
		if tail && id.Name == l.tailFn && len(args) == l.tailArity {
			return &TailCall{base: base{Ty: TNever{}}, Func: id.Name, Args: args}
		}
		if _, isLocal := sc.lookup(id.Name); isLocal {
			return &ClosureCall{base: base{Ty: l.resolve(ty.Var{})}, Closure: &VarRef{base: base{Ty: TPtr{}}, Name: id.Name}, Args: args}
		}
		retTy := l.funcReturnType(id.Name)
		return &Call{base: base{Ty: retTy}, Func: id.Name, Args: args}
	}

	// Method-style / namespaced call, or a call through a non-identifier
	// expression (field access, paren'd lambda, ...): evaluate callee as a
	// closure value.
	callee := l.lowerExpr(n.Func, sc)
	args := make([]MirExpr, len(n.Args))
	for i, a := range n.Args {
		args[i] = l.lowerExpr(a, sc)
	}
	var retTy MirType = TUnit{}
	if fp, ok := callee.Type().(TFnPtr); ok {
		retTy = fp.Ret
	} else if cl, ok := callee.Type().(TClosure); ok {
		retTy = cl.Ret
	}
	return &ClosureCall{base: base{Ty: retTy}, Closure: callee, Args: args}
}

// funcReturnType looks up a previously lowered function's return type so a
// direct call's MirType can be recovered without re-deriving the whole
// scheme; functions not yet lowered (forward references, spec §4.1 two-pass
// registration) default to Unit, and the Call node's type is not updated
// afterwards.
func (l *Lowerer) funcReturnType(name string) MirType {
	for _, fn := range l.funcs {
		if fn.Name == name {
			return fn.Ret
		}
	}
	return TUnit{}
}

func (l *Lowerer) lowerBlock(n *ast.Block, sc *scope, tail bool) MirExpr {
	if len(n.Exprs) == 0 {
		return &UnitLit{base: base{Ty: TUnit{}}}
	}
	exprs := make([]MirExpr, len(n.Exprs))
	for i, e := range n.Exprs {
		if i == len(n.Exprs)-1 {
			exprs[i] = l.lowerExprTail(e, sc, tail)
		} else {
			exprs[i] = l.lowerExpr(e, sc)
		}
	}
	return &Block{base: base{Ty: exprs[len(exprs)-1].Type()}, Exprs: exprs}
}

func (l *Lowerer) lowerMatch(n *ast.Match, sc *scope) MirExpr {
	scrutinee := l.lowerExpr(n.Expr, sc)
	var rows [][]MirPattern
	var guards, bodies []MirExpr
	for _, c := range n.Cases {
		lowered := lowerPattern(c.Pattern, l.Types)
		if len(lowered) == 0 {
			lowered = []MirPattern{PWildcard{}}
		}
		for _, alt := range lowered {
			child := newScope(sc)
			bindPatternScope(alt, mirTypeAsTy(scrutinee.Type()), child)
			rows = append(rows, []MirPattern{alt})
			if c.Guard != nil {
				guards = append(guards, l.lowerExpr(c.Guard, child))
			} else {
				guards = append(guards, nil)
			}
			bodies = append(bodies, l.lowerExpr(c.Body, child))
		}
	}
	tree := CompileMatch(rows, guards, bodies)
	var resultTy MirType = TUnit{}
	if len(bodies) > 0 {
		resultTy = bodies[0].Type()
	}
	return &Match{base: base{Ty: resultTy}, Scrutinee: scrutinee, Tree: tree}
}

func (l *Lowerer) lowerRecord(n *ast.Record, sc *scope) MirExpr {
	fields := map[string]MirExpr{}
	order := make([]string, len(n.Fields))
	for i, f := range n.Fields {
		fields[f.Name] = l.lowerExpr(f.Value, sc)
		order[i] = f.Name
	}
	l.ensureStructLayout(n.TypeName, fields, order)
	return &StructLit{base: base{Ty: TStruct{Name: n.TypeName}}, Name: n.TypeName, Fields: fields, FieldOrder: order}
}

func (l *Lowerer) ensureStructLayout(name string, fields map[string]MirExpr, order []string) {
	if _, ok := l.structs[name]; ok {
		return
	}
	layout := &StructLayout{Name: name, Fields: map[string]MirType{}, FieldOrder: order}
	for fname, val := range fields {
		layout.Fields[fname] = val.Type()
	}
	l.structs[name] = layout
}

func (l *Lowerer) lowerFieldAccess(n *ast.RecordAccess, sc *scope) MirExpr {
	rec := l.lowerExpr(n.Record, sc)
	idx := 0
	if sd, ok := l.Types.Structs[structName(rec.Type())]; ok {
		for i, f := range sd.Fields {
			if f.Name == n.Field {
				idx = i
				return &FieldAccess{base: base{Ty: l.resolve(f.Type)}, Record: rec, Field: n.Field, Index: idx}
			}
		}
	}
	return &FieldAccess{base: base{Ty: TUnit{}}, Record: rec, Field: n.Field, Index: idx}
}

func structName(t MirType) string {
	if s, ok := t.(TStruct); ok {
		return s.Name
	}
	return ""
}

func (l *Lowerer) lowerRecordUpdate(n *ast.RecordUpdate, sc *scope) MirExpr {
	base_ := l.lowerExpr(n.Base, sc)
	name := structName(base_.Type())
	fields := map[string]MirExpr{}
	order := []string{}
	if sd, ok := l.Types.Structs[name]; ok {
		for _, f := range sd.Fields {
			order = append(order, f.Name)
			fields[f.Name] = &FieldAccess{base: base{Ty: l.resolve(f.Type)}, Record: base_, Field: f.Name}
		}
	}
	for _, f := range n.Fields {
		fields[f.Name] = l.lowerExpr(f.Value, sc)
	}
	return &StructLit{base: base{Ty: TStruct{Name: name}}, Name: name, Fields: fields, FieldOrder: order}
}

// lowerClosure performs closure conversion (spec §4.12): free variables
// referenced in body but not bound by params become Captures, body is
// lifted into a fresh top-level Function taking the environment pointer as
// an implicit first parameter, and the call site gets a MakeClosure.
func (l *Lowerer) lowerClosure(params []*ast.Param, body ast.Expr, sc *scope) MirExpr {
	l.closureSeq++
	fnName := fmt.Sprintf("__closure_%d", l.closureSeq)

	child := newScope(sc)
	bound := map[string]bool{}
	paramNames := make([]string, len(params))
	paramTypes := make([]MirType, len(params))
	for i, p := range params {
		t := ty.Ty(ty.Con{Name: "Ptr"})
		if p.Type != nil {
			// Annotated closure parameters keep their surface type name as
			// a nominal lookup; unannotated ones default to an opaque Ptr
			// since the checker's concrete inference result isn't visible
			// to this second pass (see package doc).
			t = namedTypeGuess(p.Type)
		}
		child.bind(p.Name, t)
		bound[p.Name] = true
		paramNames[i] = p.Name
		paramTypes[i] = l.resolve(t)
	}

	captures := freeVars(body, bound)

	prevFn, prevArity := l.tailFn, l.tailArity
	l.tailFn, l.tailArity = "", 0
	lowered := l.lowerExpr(body, child)
	l.tailFn, l.tailArity = prevFn, prevArity

	fn := &Function{
		Name:       fnName,
		ParamNames: append([]string{"__env"}, paramNames...),
		ParamTypes: append([]MirType{TPtr{}}, paramTypes...),
		Ret:        lowered.Type(),
		Body:       lowered,
		EnvParam:   "__env",
	}
	l.funcs = append(l.funcs, fn)

	return &MakeClosure{
		base:     base{Ty: TClosure{Params: paramTypes, Ret: lowered.Type()}},
		FnName:   fnName,
		Captures: captures,
	}
}

// namedTypeGuess resolves a surface type annotation to a best-effort Ty for
// capture/parameter typing during closure conversion.
func namedTypeGuess(t ast.Type) ty.Ty {
	if st, ok := t.(*ast.SimpleType); ok {
		switch st.Name {
		case "Int":
			return ty.Int
		case "Float":
			return ty.Float
		case "Bool":
			return ty.Bool
		case "String":
			return ty.String
		default:
			return ty.Con{Name: st.Name}
		}
	}
	return ty.Var{}
}

// freeVars collects identifier names referenced in e that are not in
// bound, for closure capture lists (spec §4.12).
func freeVars(e ast.Expr, bound map[string]bool) []string {
	seen := map[string]bool{}
	var out []string
	var walk func(ast.Expr)
	record := func(name string) {
		if bound[name] || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	walk = func(e ast.Expr) {
		if e == nil {
			return
		}
		switch n := e.(type) {
		case *ast.Identifier:
			record(n.Name)
		case *ast.BinaryOp:
			walk(n.Left)
			walk(n.Right)
		case *ast.UnaryOp:
			walk(n.Expr)
		case *ast.FuncCall:
			walk(n.Func)
			for _, a := range n.Args {
				walk(a)
			}
		case *ast.If:
			walk(n.Condition)
			walk(n.Then)
			walk(n.Else)
		case *ast.Let:
			walk(n.Value)
			walk(n.Body)
		case *ast.Block:
			for _, sub := range n.Exprs {
				walk(sub)
			}
		case *ast.RecordAccess:
			walk(n.Record)
		case *ast.Tuple:
			for _, sub := range n.Elements {
				walk(sub)
			}
		case *ast.List:
			for _, sub := range n.Elements {
				walk(sub)
			}
		}
	}
	walk(e)
	return out
}

func (l *Lowerer) lowerTry(n *ast.Try, sc *scope) MirExpr {
	// Desugars to a match on the Result/Option operand: the Ok/Some case
	// unwraps to its inner value; the Err/None case returns early,
	// propagating the outer value unchanged (spec §4.8 "Try").
	operand := l.lowerExpr(n.Operand, sc)
	innerName := "__try_val"
	okPat := PConstructor{Variant: "Ok", Tag: 0, Args: []MirPattern{PWildcard{Binder: innerName}}}
	somePat := PConstructor{Variant: "Some", Tag: 0, Args: []MirPattern{PWildcard{Binder: innerName}}}
	errPat := PWildcard{Binder: "__try_err"}
	okBody := &VarRef{base: base{Ty: TPtr{}}, Name: innerName}
	errBody := &Return{base: base{Ty: TNever{}}, Value: &VarRef{base: base{Ty: TPtr{}}, Name: "__try_err"}}
	tree := CompileMatch(
		[][]MirPattern{{okPat}, {somePat}, {errPat}},
		[]MirExpr{nil, nil, nil},
		[]MirExpr{okBody, okBody, errBody},
	)
	return &Match{base: base{Ty: TPtr{}}, Scrutinee: operand, Tree: tree}
}

func (l *Lowerer) lowerFor(n *ast.For, sc *scope) MirExpr {
	iterable := l.lowerExpr(n.Iterable, sc)
	child := newScope(sc)
	child.bind(n.Binder, ty.Var{})
	if n.Binder2 != "" {
		child.bind(n.Binder2, ty.Var{})
	}
	var filter MirExpr
	if n.Filter != nil {
		filter = l.lowerExpr(n.Filter, child)
	}
	body := l.lowerExpr(n.Body, child)
	kind := ForKind(n.Kind)
	return &For{
		base: base{Ty: TPtr{}}, Kind: kind, Binder: n.Binder, Binder2: n.Binder2,
		Iterable: iterable, Filter: filter, Body: body,
	}
}

func (l *Lowerer) lowerSpawn(n *ast.Spawn, sc *scope) MirExpr {
	funcName := ""
	if id, ok := n.Func.(*ast.Identifier); ok {
		funcName = id.Name
	}
	args := make([]MirExpr, len(n.Args))
	for i, a := range n.Args {
		args[i] = l.lowerExpr(a, sc)
	}
	var priority, terminate MirExpr
	if n.Priority != nil {
		priority = l.lowerExpr(n.Priority, sc)
	}
	if n.Terminate != nil {
		terminate = l.lowerExpr(n.Terminate, sc)
	}
	return &ActorSpawn{base: base{Ty: TPtr{}}, Func: funcName, Args: args, Priority: priority, Terminate: terminate}
}

func (l *Lowerer) lowerReceive(n *ast.Receive, sc *scope) MirExpr {
	var rows [][]MirPattern
	var guards, bodies []MirExpr
	for _, arm := range n.Arms {
		lowered := lowerPattern(arm.Pattern, l.Types)
		if len(lowered) == 0 {
			lowered = []MirPattern{PWildcard{}}
		}
		for _, alt := range lowered {
			child := newScope(sc)
			bindPatternScope(alt, ty.Var{}, child)
			rows = append(rows, []MirPattern{alt})
			if arm.Guard != nil {
				guards = append(guards, l.lowerExpr(arm.Guard, child))
			} else {
				guards = append(guards, nil)
			}
			bodies = append(bodies, l.lowerExpr(arm.Body, child))
		}
	}
	tree := CompileMatch(rows, guards, bodies)
	var resultTy MirType = TUnit{}
	if len(bodies) > 0 {
		resultTy = bodies[0].Type()
	}
	recv := &ActorReceive{base: base{Ty: resultTy}, Tree: tree}
	if n.After != nil {
		recv.AfterMs = l.lowerExpr(n.After.TimeoutMs, sc)
		recv.AfterBody = l.lowerExpr(n.After.Body, sc)
	}
	return recv
}
