// Package clauses implements multi-clause function grouping (spec.md
// §4.6): consecutive top-level function definitions sharing a name and
// arity are grouped and checked as one implicit match over their
// parameter tuple. Grounded on the teacher's internal/elaborate/scc.go
// (which groups and orders declarations in a single source-order scan)
// for the grouping shape, with the actual per-group type-checking built
// against internal/infer's Ctx/BindPattern/exhaustiveness machinery.
package clauses

import (
	"fmt"
	"strconv"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/exhaustiveness"
	"github.com/snowdamiz/mesh-lang-sub001/internal/infer"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// Group is a run of consecutive *ast.FuncDecl nodes sharing a name and
// arity. A single FuncDecl using the `= expr` body form still forms a
// Group of one clause (spec §4.6 item 2); a `do ... end` function is never
// grouped at all and is checked directly by infer.InferFuncDecl.
type Group struct {
	Name    string
	Arity   int
	Clauses []*ast.FuncDecl
}

// Scan walks decls in source order and partitions consecutive same-name/
// same-arity FuncDecl runs into Groups. memberOf maps every clause to its
// Group so a driver can recognise (and skip re-checking) continuation
// clauses. A run of length one whose sole clause uses `do ... end` is
// still returned as a Group; IsMultiClause tells the caller to route it to
// ordinary single-function checking instead.
func Scan(decls []ast.Node) (groups []*Group, memberOf map[*ast.FuncDecl]*Group) {
	memberOf = make(map[*ast.FuncDecl]*Group)
	n := len(decls)
	for i := 0; i < n; {
		fd, ok := decls[i].(*ast.FuncDecl)
		if !ok {
			i++
			continue
		}
		g := &Group{Name: fd.Name, Arity: len(fd.Params), Clauses: []*ast.FuncDecl{fd}}
		memberOf[fd] = g
		j := i + 1
		for j < n {
			next, ok := decls[j].(*ast.FuncDecl)
			if !ok || next.Name != fd.Name || len(next.Params) != g.Arity {
				break
			}
			g.Clauses = append(g.Clauses, next)
			memberOf[next] = g
			j++
		}
		groups = append(groups, g)
		i = j
	}
	return groups, memberOf
}

// IsMultiClause reports whether g should be checked as a multi-clause
// group (more than one clause, or a single `= expr`-form clause) rather
// than as an ordinary function (spec §4.6 item 2).
func IsMultiClause(g *Group) bool {
	return len(g.Clauses) > 1 || !usesDoEnd(g.Clauses[0])
}

// usesDoEnd reports whether decl's body came from the `do ... end` block
// form. This checker has no surface syntax of its own to inspect, so it
// infers the form from shape: a block body with more than one statement,
// or an explicit Block node at all, is treated as `do ... end`; a bare
// expression body is the single-clause `= expr` form.
func usesDoEnd(decl *ast.FuncDecl) bool {
	_, isBlock := decl.Body.(*ast.Block)
	return isBlock
}

// CheckNonConsecutive reports NonConsecutiveClauses for any two groups
// that share a name/arity but are not the same Group value, i.e. another
// declaration interrupted what should have been one run of clauses
// (spec §4.6 item 3).
func CheckNonConsecutive(c *infer.Ctx, groups []*Group) {
	firstOf := map[string]*Group{}
	for _, g := range groups {
		key := fmt.Sprintf("%s/%d", g.Name, g.Arity)
		if prev, ok := firstOf[key]; ok {
			c.Error(errors.CLS001, fmt.Sprintf(
				"clauses of %s/%d are not consecutive: first seen at %v, again at %v",
				g.Name, g.Arity, spanOfDecl(prev.Clauses[0]), spanOfDecl(g.Clauses[0])),
				spanOfDecl(g.Clauses[0]))
			continue
		}
		firstOf[key] = g
	}
}

// Check type-checks one multi-clause group: a shared parameter type per
// position and a shared body type across all clauses (unified against the
// declared return type, if the first clause names one), each clause's
// parameter list treated as one implicit match arm over the parameter
// tuple, and exhaustiveness/redundancy checked the same way a `match`
// expression is (spec §4.6 item 6).
func Check(c *infer.Ctx, env *tyenv.Env, g *Group) {
	first := g.Clauses[0]
	for _, extra := range g.Clauses[1:] {
		if len(extra.TypeParams) > 0 || extra.ReturnType != nil || len(extra.Where) > 0 || extra.IsExport {
			c.Warning(errors.CLS002, fmt.Sprintf(
				"only the first clause of %s/%d may carry visibility, generics, a return type, or a where-clause",
				g.Name, g.Arity), spanOfDecl(extra))
		}
	}

	for i, clause := range g.Clauses {
		if i == len(g.Clauses)-1 {
			break
		}
		if isCatchAllClause(clause) {
			c.Error(errors.CLS003, fmt.Sprintf(
				"catch-all clause of %s/%d must be last", g.Name, g.Arity), spanOfDecl(clause))
		}
	}

	tp := make(infer.TyParams, len(first.TypeParams))
	for _, p := range first.TypeParams {
		tp[p] = ty.Con{Name: p}
	}

	paramTys := make([]ty.Ty, g.Arity)
	for i := range paramTys {
		paramTys[i] = c.FreshVar()
	}
	if first.Params != nil {
		for i, p := range first.Params {
			if p.Type != nil {
				c.Unify(paramTys[i], c.ResolveAnnotation(p.Type, tp),
					infer.Origin{Kind: "clause-param", Span: spanOfDecl(first)})
			}
		}
	}

	retTy := c.FreshVar()
	if first.ReturnType != nil {
		retTy = c.ResolveAnnotation(first.ReturnType, tp)
	}

	var cases []*ast.Case
	for _, clause := range g.Clauses {
		inner := env.Push()
		patterns := make([]ast.Pattern, g.Arity)
		for i, p := range clause.Params {
			pat := paramPattern(p)
			patterns[i] = pat
			c.BindPattern(inner, pat, paramTys[i])
		}

		if clause.Guard != nil {
			guardTy := c.InferExpr(inner, clause.Guard)
			c.Unify(guardTy, ty.Bool, infer.Origin{Kind: "clause-guard", Span: spanOfDecl(clause)})
		}

		c.PushReturn(retTy)
		bodyTy := c.InferExpr(inner, clause.Body)
		c.PopReturn()
		c.Unify(bodyTy, retTy, infer.Origin{Kind: "clause-body", Span: spanOfDecl(clause)})

		var pat ast.Pattern = patterns[0]
		if g.Arity != 1 {
			pat = &ast.TuplePattern{Elements: patterns, Pos: clause.Pos}
		}
		cases = append(cases, &ast.Case{Pattern: pat, Guard: clause.Guard, Body: clause.Body, Pos: clause.Pos})
	}

	var scrutinee ty.Ty
	if g.Arity == 1 {
		scrutinee = paramTys[0]
	} else {
		scrutinee = ty.Tuple{Elems: paramTys}
	}
	if result := exhaustiveness.Check(c.Types, c.Resolve(scrutinee), cases); result != nil {
		if len(result.Missing) > 0 {
			c.Warning(errors.PAT001, fmt.Sprintf(
				"non-exhaustive clauses for %s/%d: missing %v", g.Name, g.Arity, result.Missing),
				spanOfDecl(first))
		}
		for _, idx := range result.RedundantArms {
			c.Warning(errors.PAT002, fmt.Sprintf("clause %d of %s/%d is redundant", idx, g.Name, g.Arity),
				spanOfDecl(g.Clauses[idx]))
		}
	}

	fnTy := ty.Fun{Params: paramTys, Ret: retTy}
	env.Insert(g.Name, c.Generalize(fnTy))
}

// isCatchAllClause reports whether every parameter of decl is a wildcard
// or plain binding and it carries no guard (spec §4.6 item 5).
func isCatchAllClause(decl *ast.FuncDecl) bool {
	if decl.Guard != nil {
		return false
	}
	for _, p := range decl.Params {
		switch paramPattern(p).(type) {
		case *ast.WildcardPattern, *ast.Identifier:
			continue
		default:
			return false
		}
	}
	return true
}

// paramPattern recovers the clause's intended parameter pattern from its
// Param.Name: "_" is a wildcard, a name that parses as an int/float/bool
// literal is a literal pattern (how a clause like `factorial(0) = 1`
// distinguishes itself from the general case), and anything else is an
// ordinary binding.
func paramPattern(p *ast.Param) ast.Pattern {
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

func spanOfDecl(d *ast.FuncDecl) ast.Span { return ast.Span{Start: d.Pos, End: d.Pos} }
