package mir

import (
	"testing"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

func TestLowerActorDeclProducesRecursiveFunction(t *testing.T) {
	l := newLowerer()
	decl := &ast.ActorDecl{
		Name:        "counter",
		StateParams: []*ast.Param{{Name: "n"}},
		Body: &ast.FuncCall{
			Func: &ast.Identifier{Name: "counter"},
			Args: []ast.Expr{&ast.Identifier{Name: "n"}},
		},
	}
	fn := l.LowerActorDecl(decl, []ty.Ty{ty.Int})
	if fn.Name != "counter" {
		t.Fatalf("expected function named counter, got %s", fn.Name)
	}
	if _, ok := fn.Body.(*TailCall); !ok {
		t.Fatalf("expected self-call in actor body to become a TailCall, got %#v", fn.Body)
	}
	if !fn.IsTailLoop {
		t.Errorf("expected actor function to be marked as a tail loop")
	}
}

func TestLowerServiceDeclProducesNamedHandlersAndContiguousTags(t *testing.T) {
	l := newLowerer()
	decl := &ast.ServiceDecl{
		Name: "counter",
		Init: &ast.FuncDecl{
			Name: "init",
			Body: &ast.Literal{Kind: ast.IntLit, Value: int64(0)},
		},
		CallHandlers: []*ast.CallHandler{
			{
				Name: "get",
				Body: &ast.Tuple{Elements: []ast.Expr{
					&ast.Identifier{Name: "state"},
					&ast.Identifier{Name: "state"},
				}},
			},
		},
		CastHandlers: []*ast.CastHandler{
			{
				Name:   "incr",
				Params: []*ast.Param{{Name: "by"}},
				Body: &ast.BinaryOp{
					Op:    "+",
					Left:  &ast.Identifier{Name: "state"},
					Right: &ast.Identifier{Name: "by"},
				},
			},
		},
	}
	sig := ServiceSignature{
		StateTy:     ty.Int,
		CallReplies: []ty.Ty{ty.Int},
		CastParams:  [][]ty.Ty{{ty.Int}},
	}
	fns := l.LowerServiceDecl(decl, sig)

	names := map[string]bool{}
	for _, fn := range fns {
		names[fn.Name] = true
	}
	for _, want := range []string{"__service_counter_init", "__service_counter_call_get", "__service_counter_cast_incr"} {
		if !names[want] {
			t.Errorf("expected a lowered function named %s, got %v", want, names)
		}
	}

	sum, ok := l.sums["__service_counter_msg"]
	if !ok {
		t.Fatalf("expected a registered __service_counter_msg sum layout")
	}
	if len(sum.Variants) != 2 {
		t.Fatalf("expected 2 message variants, got %d", len(sum.Variants))
	}
	for i, v := range sum.Variants {
		if v.Tag != i {
			t.Errorf("expected contiguous tags starting at 0, variant %d has tag %d", i, v.Tag)
		}
	}
}

func TestLowerSupervisorDeclProducesStartFunction(t *testing.T) {
	l := newLowerer()
	decl := &ast.SupervisorDecl{
		Name:        "app_sup",
		Strategy:    "one_for_one",
		MaxRestarts: 3,
		MaxSeconds:  5,
		Children: []*ast.ChildSpec{
			{
				Name:    "worker1",
				Start:   &ast.Spawn{Func: &ast.Identifier{Name: "worker"}},
				Restart: "permanent",
				Type:    "worker",
			},
		},
	}
	fn := l.LowerSupervisorDecl(decl)
	if fn.Name != "__supervisor_app_sup_start" {
		t.Fatalf("unexpected function name: %s", fn.Name)
	}
	start, ok := fn.Body.(*SupervisorStart)
	if !ok {
		t.Fatalf("expected SupervisorStart body, got %#v", fn.Body)
	}
	if start.Strategy != "one_for_one" || len(start.Children) != 1 {
		t.Errorf("unexpected supervisor layout: %#v", start)
	}
}
