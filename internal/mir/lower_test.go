package mir

import (
	"testing"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

func newLowerer() *Lowerer {
	return NewLowerer(registry.NewTypeRegistry(), registry.NewTraitRegistry())
}

func TestLowerFuncDeclLiteralBody(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "answer",
		Params: nil,
		Body:   &ast.Literal{Kind: ast.IntLit, Value: int64(42)},
	}
	fn := l.LowerFuncDecl(decl, nil, ty.Int)
	if len(l.Errors) != 0 {
		t.Fatalf("unexpected lowering errors: %v", l.Errors)
	}
	lit, ok := fn.Body.(*IntLit)
	if !ok || lit.Value != 42 {
		t.Fatalf("expected IntLit(42) body, got %#v", fn.Body)
	}
	if _, ok := fn.Ret.(TInt); !ok {
		t.Errorf("expected Int return type, got %#v", fn.Ret)
	}
}

func TestLowerFuncDeclIdentityParam(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "id",
		Params: []*ast.Param{{Name: "x"}},
		Body:   &ast.Identifier{Name: "x"},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Int)
	ref, ok := fn.Body.(*VarRef)
	if !ok || ref.Name != "x" {
		t.Fatalf("expected VarRef(x) body, got %#v", fn.Body)
	}
}

func TestLowerBinaryOpComparisonIsBool(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name: "isPos",
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.BinaryOp{
			Op:    ">",
			Left:  &ast.Identifier{Name: "x"},
			Right: &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Bool)
	bin, ok := fn.Body.(*BinOp)
	if !ok {
		t.Fatalf("expected BinOp body, got %#v", fn.Body)
	}
	if _, ok := bin.Type().(TBool); !ok {
		t.Errorf("expected comparison to yield Bool, got %#v", bin.Type())
	}
}

func TestLowerBinaryOpArithmeticDefaultsToOperandType(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name: "addOne",
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.BinaryOp{
			Op:    "+",
			Left:  &ast.Identifier{Name: "x"},
			Right: &ast.Literal{Kind: ast.IntLit, Value: int64(1)},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Int)
	bin, ok := fn.Body.(*BinOp)
	if !ok {
		t.Fatalf("expected BinOp body, got %#v", fn.Body)
	}
	if _, ok := bin.Type().(TInt); !ok {
		t.Errorf("expected arithmetic op to default to operand type Int, got %#v", bin.Type())
	}
}

func TestLowerIfBranchesShareType(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "clampZero",
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.If{
			Condition: &ast.BinaryOp{Op: "<", Left: &ast.Identifier{Name: "x"}, Right: &ast.Literal{Kind: ast.IntLit, Value: int64(0)}},
			Then:      &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
			Else:      &ast.Identifier{Name: "x"},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Int)
	if _, ok := fn.Body.(*If); !ok {
		t.Fatalf("expected If body, got %#v", fn.Body)
	}
}

func TestLowerLetBindsValueTypeForBody(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "twice",
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.Let{
			Name:  "y",
			Value: &ast.Identifier{Name: "x"},
			Body:  &ast.Identifier{Name: "y"},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Int)
	let, ok := fn.Body.(*Let)
	if !ok || let.Name != "y" {
		t.Fatalf("expected Let(y=...), got %#v", fn.Body)
	}
	ref, ok := let.Body.(*VarRef)
	if !ok || ref.Name != "y" {
		t.Fatalf("expected let body to reference y, got %#v", let.Body)
	}
}

// TestTailCallDetectedInTailPosition exercises the self-recursive
// tail-call rewrite: a direct call to the enclosing function's own name,
// in tail position with matching arity, becomes a TailCall rather than a
// plain Call.
func TestTailCallDetectedInTailPosition(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "loop",
		Params: []*ast.Param{{Name: "n"}},
		Body: &ast.If{
			Condition: &ast.BinaryOp{Op: "<=", Left: &ast.Identifier{Name: "n"}, Right: &ast.Literal{Kind: ast.IntLit, Value: int64(0)}},
			Then:      &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
			Else: &ast.FuncCall{
				Func: &ast.Identifier{Name: "loop"},
				Args: []ast.Expr{&ast.BinaryOp{Op: "-", Left: &ast.Identifier{Name: "n"}, Right: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}}},
			},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Int)
	ifNode, ok := fn.Body.(*If)
	if !ok {
		t.Fatalf("expected If body, got %#v", fn.Body)
	}
	tc, ok := ifNode.Else.(*TailCall)
	if !ok {
		t.Fatalf("expected else-branch recursive call to lower to TailCall, got %#v", ifNode.Else)
	}
	if tc.Func != "loop" || len(tc.Args) != 1 {
		t.Errorf("unexpected TailCall shape: %#v", tc)
	}
	if !fn.IsTailLoop {
		t.Errorf("expected IsTailLoop to be true for a function with a self tail call")
	}
}

func TestLowerClauseGroupCompilesToMatchOverParamTuple(t *testing.T) {
	l := newLowerer()
	zero := &ast.FuncDecl{
		Name:   "fact",
		Params: []*ast.Param{{Name: "0"}},
		Body:   &ast.Literal{Kind: ast.IntLit, Value: int64(1)},
	}
	n := &ast.FuncDecl{
		Name:   "fact",
		Params: []*ast.Param{{Name: "n"}},
		Body:   &ast.Identifier{Name: "n"},
	}
	fn := l.LowerClauseGroup("fact", []*ast.FuncDecl{zero, n}, []ty.Ty{ty.Int}, ty.Int)
	m, ok := fn.Body.(*Match)
	if !ok {
		t.Fatalf("expected Match body for a clause group, got %#v", fn.Body)
	}
	if m.Tree == nil {
		t.Fatalf("expected a compiled decision tree")
	}
	if len(fn.ParamNames) != 1 {
		t.Fatalf("expected 1 shared parameter, got %d", len(fn.ParamNames))
	}
}

func TestLowerClosureLiftsBodyAndCapturesFreeVars(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "adder",
		Params: []*ast.Param{{Name: "x"}},
		Body: &ast.Lambda{
			Params: []*ast.Param{{Name: "y"}},
			Body:   &ast.BinaryOp{Op: "+", Left: &ast.Identifier{Name: "x"}, Right: &ast.Identifier{Name: "y"}},
		},
	}
	before := len(l.funcs)
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.Fun{Params: []ty.Ty{ty.Int}, Ret: ty.Int})
	mc, ok := fn.Body.(*MakeClosure)
	if !ok {
		t.Fatalf("expected MakeClosure body, got %#v", fn.Body)
	}
	if len(mc.Captures) != 1 || mc.Captures[0] != "x" {
		t.Errorf("expected capture list [x], got %v", mc.Captures)
	}
	if len(l.funcs) != before+2 {
		t.Fatalf("expected the lifted closure body plus adder itself to be registered as functions, got %d new", len(l.funcs)-before)
	}
}

func TestLowerRecordConstructsStructLitAndLayout(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "makePoint",
		Params: nil,
		Body: &ast.Record{
			TypeName: "Point",
			Fields: []*ast.Field{
				{Name: "x", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)}},
				{Name: "y", Value: &ast.Literal{Kind: ast.IntLit, Value: int64(2)}},
			},
		},
	}
	fn := l.LowerFuncDecl(decl, nil, ty.Con{Name: "Point"})
	sl, ok := fn.Body.(*StructLit)
	if !ok || sl.Name != "Point" {
		t.Fatalf("expected StructLit(Point), got %#v", fn.Body)
	}
	if _, ok := l.structs["Point"]; !ok {
		t.Errorf("expected Point to be registered in the module's struct layouts")
	}
}

func TestLowerMatchWithOrPatternExpandsRows(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "classify",
		Params: []*ast.Param{{Name: "n"}},
		Body: &ast.Match{
			Expr: &ast.Identifier{Name: "n"},
			Cases: []*ast.Case{
				{
					Pattern: &ast.OrPattern{Alternatives: []ast.Pattern{
						&ast.Literal{Kind: ast.IntLit, Value: int64(1)},
						&ast.Literal{Kind: ast.IntLit, Value: int64(2)},
					}},
					Body: &ast.Literal{Kind: ast.StringLit, Value: "small"},
				},
				{
					Pattern: &ast.WildcardPattern{},
					Body:    &ast.Literal{Kind: ast.StringLit, Value: "other"},
				},
			},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Int}, ty.String)
	m, ok := fn.Body.(*Match)
	if !ok {
		t.Fatalf("expected Match body, got %#v", fn.Body)
	}
	sw, ok := m.Tree.(*SwitchNode)
	if !ok {
		t.Fatalf("expected SwitchNode root for literal match, got %T", m.Tree)
	}
	if len(sw.Cases) != 2 {
		t.Fatalf("expected the or-pattern to expand into 2 literal cases, got %d", len(sw.Cases))
	}
}
