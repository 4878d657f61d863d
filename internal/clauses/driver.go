package clauses

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/infer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// CheckFile runs the full two-pass check of one parsed file (spec §4.2,
// §4.6): pass one registers every type/trait/instance declaration so
// forward references resolve regardless of source order, and pass two
// checks each function/actor/service/supervisor body against the now-
// complete registries, grouping consecutive same-name/arity function
// clauses before checking them. It returns the accumulated diagnostics
// rather than a bool, following internal/infer's accumulate-don't-fail-
// fast rule.
func CheckFile(env *tyenv.Env, file *ast.File) (*infer.Ctx, []*errors.Report, []*errors.Report) {
	c := infer.New(registry.NewTypeRegistry(), registry.NewTraitRegistry())
	CheckDecls(c, env, file.Decls)
	return c, c.Errors, c.Warnings
}

// CheckDecls runs the register-then-check passes over an arbitrary decl
// list, so both a *ast.File and a *ast.Module (whose Decls field has the
// same []ast.Node shape) can share one driver.
func CheckDecls(c *infer.Ctx, env *tyenv.Env, decls []ast.Node) {
	for _, d := range decls {
		if td, ok := d.(*ast.TypeDecl); ok {
			c.RegisterTypeDecl(td)
		}
	}
	for _, d := range decls {
		if tc, ok := d.(*ast.TypeClass); ok {
			c.RegisterTypeClass(tc)
		}
	}
	for _, d := range decls {
		if inst, ok := d.(*ast.Instance); ok {
			c.RegisterInstance(env, inst)
		}
	}

	groups, memberOf := Scan(decls)
	CheckNonConsecutive(c, groups)
	checkedGroup := map[*Group]bool{}

	for _, d := range decls {
		switch n := d.(type) {
		case *ast.FuncDecl:
			g := memberOf[n]
			if g != nil && IsMultiClause(g) {
				if !checkedGroup[g] {
					Check(c, env, g)
					checkedGroup[g] = true
				}
				continue
			}
			c.InferFuncDecl(env, n)
		case *ast.ActorDecl:
			c.InferActorDecl(env, n)
		case *ast.ServiceDecl:
			c.InferServiceDecl(env, n)
		case *ast.SupervisorDecl:
			c.InferSupervisorDecl(env, n)
		case *ast.TypeDecl, *ast.TypeClass, *ast.Instance:
			// already handled above
		default:
			c.Error(infer.ErrCodeInternal, fmt.Sprintf("unhandled top-level declaration %T", n), spanOfDecl0(d))
		}
	}
}

func spanOfDecl0(n ast.Node) ast.Span {
	p := n.Position()
	return ast.Span{Start: p, End: p}
}
