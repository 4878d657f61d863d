package codegen

import (
	"strings"
	"testing"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/mir"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

func newLowerer() *mir.Lowerer {
	return mir.NewLowerer(registry.NewTypeRegistry(), registry.NewTraitRegistry())
}

func moduleOf(fns ...*mir.Function) *mir.Module {
	return &mir.Module{Functions: fns, Structs: map[string]*mir.StructLayout{}, Sums: map[string]*mir.SumLayout{}}
}

func TestEmitModuleSingleReturn(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{Name: "answer", Body: &ast.Literal{Kind: ast.IntLit, Value: int64(42)}}
	fn := l.LowerFuncDecl(decl, nil, ty.Int)

	out, err := New().EmitModule(moduleOf(fn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "define Int @answer()") {
		t.Errorf("expected a define for answer, got:\n%s", out)
	}
	if !strings.Contains(out, "ret Int 42") {
		t.Errorf("expected a literal return, got:\n%s", out)
	}
}

// TestEmitBinOpShortCircuitsAnd verifies that the right-hand operand of &&
// is only reachable from inside a conditional branch, not emitted straight
// after the left operand (spec §4.13 "Short-circuit boolean operators").
func TestEmitBinOpShortCircuitsAnd(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "both",
		Params: []*ast.Param{{Name: "a"}},
		Body: &ast.BinaryOp{
			Op:   "&&",
			Left: &ast.Identifier{Name: "a"},
			Right: &ast.FuncCall{
				Func: &ast.Identifier{Name: "sideEffect"},
			},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.Bool}, ty.Bool)

	out, err := New().EmitModule(moduleOf(fn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "br i1") {
		t.Fatalf("expected a conditional branch on the left operand, got:\n%s", out)
	}
	brIdx := strings.Index(out, "br i1")
	callIdx := strings.Index(out, "@sideEffect")
	if callIdx == -1 || callIdx < brIdx {
		t.Errorf("expected the right-hand call to be reachable only after the branch, got:\n%s", out)
	}
	if !strings.Contains(out, "sc_rhs") || !strings.Contains(out, "sc_join") {
		t.Errorf("expected distinct rhs/join blocks for short-circuit evaluation, got:\n%s", out)
	}
}

// TestEmitCallCoercesPrimitiveArgAtPtrBoundary verifies the ABI-boundary
// coercion: an Int argument passed where the declared intrinsic expects a
// Ptr gets boxed first (spec §4.13 "Coercions at intrinsic boundaries").
func TestEmitCallCoercesPrimitiveArgAtPtrBoundary(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name:   "appendOne",
		Params: []*ast.Param{{Name: "xs"}},
		Body: &ast.FuncCall{
			Func: &ast.Identifier{Name: "mesh_list_append"},
			Args: []ast.Expr{
				&ast.Identifier{Name: "xs"},
				&ast.Literal{Kind: ast.IntLit, Value: int64(7)},
			},
		},
	}
	fn := l.LowerFuncDecl(decl, []ty.Ty{ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{ty.Int}}}, ty.Unit)

	out, err := New().EmitModule(moduleOf(fn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "mesh_box_int") {
		t.Errorf("expected the Int literal argument to be boxed at the Ptr-typed ABI boundary, got:\n%s", out)
	}
	if !strings.Contains(out, "mesh_reduction_check") {
		t.Errorf("expected a reduction check after the call, got:\n%s", out)
	}
}

func TestEmitPanicIsNoreturn(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name: "boom",
		Body: &ast.Panic{Message: &ast.Literal{Kind: ast.StringLit, Value: "boom"}},
	}
	fn := l.LowerFuncDecl(decl, nil, ty.Unit)

	out, err := New().EmitModule(moduleOf(fn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "call void @mesh_panic(") || !strings.Contains(out, "noreturn") {
		t.Errorf("expected a noreturn mesh_panic call, got:\n%s", out)
	}
	if !strings.Contains(out, "unreachable") {
		t.Errorf("expected an unreachable terminator after the panic call, got:\n%s", out)
	}
}

func TestEmitWhileInsertsReductionCheckAtBackEdge(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name: "spin",
		Body: &ast.While{
			Cond: &ast.Literal{Kind: ast.BoolLit, Value: true},
			Body: &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
		},
	}
	fn := l.LowerFuncDecl(decl, nil, ty.Unit)

	out, err := New().EmitModule(moduleOf(fn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(out, "mesh_reduction_check") != 1 {
		t.Errorf("expected exactly one reduction check at the loop back-edge, got:\n%s", out)
	}
}

func TestEmitVariantConstructUsesMessageLayoutForServiceSum(t *testing.T) {
	c := New()
	n := &mir.VariantConstruct{
		SumName: "__service_counter_msg",
		Tag:     1,
		Args:    []mir.MirExpr{},
	}
	c.emitVariantConstruct(n, map[string]int{})
	out := c.buf.String()
	if !strings.Contains(out, "mesh_gc_alloc_actor") {
		t.Errorf("expected the service message to be GC-allocated, got:\n%s", out)
	}
	if !strings.Contains(out, "tag=1") {
		t.Errorf("expected the message header to carry the variant's tag, got:\n%s", out)
	}
}

func TestEmitVariantConstructOrdinarySum(t *testing.T) {
	c := New()
	n := &mir.VariantConstruct{SumName: "Option_Int", VariantName: "Some", Tag: 1, Args: []mir.MirExpr{}}
	reg := c.emitVariantConstruct(n, map[string]int{})
	if reg == "" {
		t.Fatal("expected a register for the constructed value")
	}
	out := c.buf.String()
	if !strings.Contains(out, "tag=1") {
		t.Errorf("expected the ordinary variant's tag to be recorded, got:\n%s", out)
	}
	if strings.Contains(out, "mesh_gc_alloc_actor") {
		t.Errorf("ordinary sums must not use the service message-layout path, got:\n%s", out)
	}
}

// TestMem2RegPromotesSingleBindingToRegister checks that a name bound
// exactly once never gets an alloca slot (spec §4.13 alloca+mem2reg).
func TestMem2RegPromotesSingleBindingToRegister(t *testing.T) {
	l := newLowerer()
	decl := &ast.FuncDecl{
		Name: "once",
		Body: &ast.Let{
			Name:  "x",
			Value: &ast.Literal{Kind: ast.IntLit, Value: int64(1)},
			Body:  &ast.Identifier{Name: "x"},
		},
	}
	fn := l.LowerFuncDecl(decl, nil, ty.Int)

	out, err := New().EmitModule(moduleOf(fn))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(out, "x.addr") {
		t.Errorf("expected a once-bound name to stay in a register, not get an alloca slot, got:\n%s", out)
	}
}
