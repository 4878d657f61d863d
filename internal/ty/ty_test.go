package ty

import "testing"

func TestResolveFollowsChain(t *testing.T) {
	a := NewArena()
	v1 := a.Fresh(0)
	v2 := a.Fresh(0)
	if err := Unify(a, v1, v2); err != nil {
		t.Fatalf("unify vars: %v", err)
	}
	if err := Unify(a, v2, Int); err != nil {
		t.Fatalf("unify with Int: %v", err)
	}
	if got := a.Resolve(v1); got.String() != "Int" {
		t.Errorf("resolve v1 = %s, want Int", got)
	}
}

func TestOccursCheckRejectsCycle(t *testing.T) {
	a := NewArena()
	v := a.Fresh(0)
	fn := Fun{Params: []Ty{v}, Ret: Int}
	if err := Unify(a, v, fn); err == nil {
		t.Fatal("expected occurs-check error, got nil")
	} else if _, ok := err.(*OccursError); !ok {
		t.Errorf("expected *OccursError, got %T: %v", err, err)
	}
}

func TestLevelLoweringOnLink(t *testing.T) {
	a := NewArena()
	outer := a.Fresh(0)
	inner := a.Fresh(5)
	if err := Unify(a, outer, App{Base: Con{Name: "List"}, Args: []Ty{inner}}); err != nil {
		t.Fatalf("unify: %v", err)
	}
	if got := a.Level(inner.ID); got != 0 {
		t.Errorf("inner level = %d, want 0 (clamped to outer's level)", got)
	}
}

func TestUnifyArityMismatch(t *testing.T) {
	a := NewArena()
	f1 := Fun{Params: []Ty{Int}, Ret: Int}
	f2 := Fun{Params: []Ty{Int, Int}, Ret: Int}
	if err := Unify(a, f1, f2); err == nil {
		t.Fatal("expected arity mismatch error")
	}
}

func TestNeverUnifiesWithAnything(t *testing.T) {
	a := NewArena()
	if err := Unify(a, Never{}, Fun{Params: []Ty{Int}, Ret: String}); err != nil {
		t.Errorf("Never should unify with anything: %v", err)
	}
}

func TestConMismatch(t *testing.T) {
	a := NewArena()
	if err := Unify(a, Int, Bool); err == nil {
		t.Fatal("expected constructor mismatch")
	}
}
