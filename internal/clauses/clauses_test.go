package clauses

import (
	"testing"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/infer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

func intParam(name string) *ast.Param {
	return &ast.Param{Name: name, Type: &ast.SimpleType{Name: "Int"}}
}

func litBody(v int64) ast.Expr {
	return &ast.Literal{Kind: ast.IntLit, Value: v}
}

func TestScanGroupsConsecutiveSameNameArity(t *testing.T) {
	zero := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("0")}, Body: litBody(1)}
	n := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("n")}, Body: litBody(2)}
	other := &ast.FuncDecl{Name: "double", Params: []*ast.Param{intParam("x")}, Body: litBody(3)}

	groups, memberOf := Scan([]ast.Node{zero, n, other})
	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}
	if len(groups[0].Clauses) != 2 {
		t.Errorf("expected first group to have 2 clauses, got %d", len(groups[0].Clauses))
	}
	if memberOf[zero] != groups[0] || memberOf[n] != groups[0] {
		t.Errorf("expected zero and n to share a group")
	}
	if memberOf[other] == groups[0] {
		t.Errorf("expected double to be in its own group")
	}
}

func TestScanBreaksOnInterveningDecl(t *testing.T) {
	zero := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("0")}, Body: litBody(1)}
	mid := &ast.TypeDecl{Name: "Unrelated"}
	n := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("n")}, Body: litBody(2)}

	groups, _ := Scan([]ast.Node{zero, mid, n})
	if len(groups) != 2 {
		t.Fatalf("expected fact/1 to split into 2 groups across the intervening decl, got %d", len(groups))
	}
}

func TestIsMultiClauseSingleExprForm(t *testing.T) {
	solo := &ast.FuncDecl{Name: "id", Params: []*ast.Param{intParam("x")}, Body: litBody(1)}
	groups, _ := Scan([]ast.Node{solo})
	if !IsMultiClause(groups[0]) {
		t.Error("a single `= expr` clause should still count as a one-clause multi-clause group")
	}
}

func TestIsMultiClauseSingleDoEndIsNotGrouped(t *testing.T) {
	solo := &ast.FuncDecl{Name: "id", Params: []*ast.Param{intParam("x")}, Body: &ast.Block{Exprs: []ast.Expr{litBody(1)}}}
	groups, _ := Scan([]ast.Node{solo})
	if IsMultiClause(groups[0]) {
		t.Error("a single do...end function should not be treated as a multi-clause group")
	}
}

func TestCheckNonConsecutiveReportsCLS001(t *testing.T) {
	zero := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("0")}, Body: litBody(1)}
	mid := &ast.TypeDecl{Name: "Unrelated"}
	n := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("n")}, Body: litBody(2)}

	groups, _ := Scan([]ast.Node{zero, mid, n})
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	CheckNonConsecutive(c, groups)

	if len(c.Errors) != 1 {
		t.Fatalf("expected exactly one CLS001 error, got %d", len(c.Errors))
	}
}

func TestCheckExhaustiveTwoClauseGroup(t *testing.T) {
	zero := &ast.FuncDecl{
		Name: "fact", Params: []*ast.Param{intParam("0")}, Body: litBody(1),
		ReturnType: &ast.SimpleType{Name: "Int"},
	}
	n := &ast.FuncDecl{Name: "fact", Params: []*ast.Param{intParam("n")}, Body: litBody(2)}

	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()
	g := &Group{Name: "fact", Arity: 1, Clauses: []*ast.FuncDecl{zero, n}}

	Check(c, env, g)

	if len(c.Errors) != 0 {
		t.Errorf("expected no errors, got %v", c.Errors)
	}
	if len(c.Warnings) != 0 {
		t.Errorf("expected the catch-all last clause to make this exhaustive, got warnings %v", c.Warnings)
	}

	scheme, ok := env.Lookup("fact")
	if !ok {
		t.Fatal("expected fact to be bound in env after Check")
	}
	fn, ok := scheme.Type.(ty.Fun)
	if !ok {
		t.Fatalf("expected fact's scheme type to be a Fun, got %T", scheme.Type)
	}
	if len(fn.Params) != 1 {
		t.Errorf("expected arity 1, got %d", len(fn.Params))
	}
}

func TestCheckCatchAllNotLastReportsCLS003(t *testing.T) {
	wild := &ast.FuncDecl{Name: "f", Params: []*ast.Param{intParam("n")}, Body: litBody(1)}
	zero := &ast.FuncDecl{Name: "f", Params: []*ast.Param{intParam("0")}, Body: litBody(2)}

	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()
	g := &Group{Name: "f", Arity: 1, Clauses: []*ast.FuncDecl{wild, zero}}

	Check(c, env, g)

	found := false
	for _, e := range c.Errors {
		if e.Code == "CLS003" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a CLS003 error for a catch-all clause before the last, got %v", c.Errors)
	}
}

func TestCheckAnnotationOnNonFirstClauseWarnsCLS002(t *testing.T) {
	zero := &ast.FuncDecl{Name: "f", Params: []*ast.Param{intParam("0")}, Body: litBody(1)}
	n := &ast.FuncDecl{
		Name: "f", Params: []*ast.Param{intParam("n")}, Body: litBody(2),
		ReturnType: &ast.SimpleType{Name: "Int"},
	}

	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	env := tyenv.New()
	g := &Group{Name: "f", Arity: 1, Clauses: []*ast.FuncDecl{zero, n}}

	Check(c, env, g)

	found := false
	for _, w := range c.Warnings {
		if w.Code == "CLS002" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a CLS002 warning for a return-type annotation on the second clause, got %v", c.Warnings)
	}
}
