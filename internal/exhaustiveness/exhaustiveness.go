// Package exhaustiveness checks a match/case/receive arm list against its
// scrutinee's type for missing and redundant patterns (spec.md §4.5).
// Grounded on the teacher's internal/dtree decision-tree builder, which
// already tracks variant coverage while compiling match arms to a decision
// tree; this package performs the same coverage bookkeeping as a
// standalone pre-pass so the inference walk can warn before lowering ever
// runs.
package exhaustiveness

import (
	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// Result reports the outcome of checking one match expression.
type Result struct {
	Missing       []string // human-readable description of uncovered cases, e.g. "None", "false"
	RedundantArms []int    // indices into the original Cases slice
}

// Check inspects cases against scrutinee's resolved type. Returns nil when
// there is nothing to report (exhaustive, no redundant arms).
func Check(types *registry.TypeRegistry, scrutinee ty.Ty, cases []*ast.Case) *Result {
	kind, sum := classify(types, scrutinee)

	var coveredTrue, coveredFalse, coveredAll bool
	covered := map[string]bool{}
	var redundant []int

	for i, arm := range cases {
		if coveredAll {
			redundant = append(redundant, i)
			continue
		}
		reachedAll, names, isBool, boolVal := coverage(arm.Pattern)
		guarded := arm.Guard != nil

		switch {
		case reachedAll && !guarded:
			coveredAll = true
		case isBool && !guarded:
			if boolVal {
				coveredTrue = true
			} else {
				coveredFalse = true
			}
		case len(names) > 0 && !guarded:
			for _, n := range names {
				covered[n] = true
			}
		}
	}

	var missing []string
	switch kind {
	case kindBool:
		if !coveredAll {
			if !coveredTrue {
				missing = append(missing, "true")
			}
			if !coveredFalse {
				missing = append(missing, "false")
			}
		}
	case kindSum:
		if !coveredAll {
			for _, v := range sum.Variants {
				if !covered[v.Name] {
					missing = append(missing, v.Name)
				}
			}
		}
	case kindInfinite:
		if !coveredAll {
			missing = append(missing, "_")
		}
	}

	if len(missing) == 0 && len(redundant) == 0 {
		return nil
	}
	return &Result{Missing: missing, RedundantArms: redundant}
}

type typeKind int

const (
	kindInfinite typeKind = iota
	kindBool
	kindSum
)

func classify(types *registry.TypeRegistry, t ty.Ty) (typeKind, *registry.SumDef) {
	var head ty.Ty = t
	if app, ok := t.(ty.App); ok {
		head = app.Base
	}
	con, ok := head.(ty.Con)
	if !ok {
		return kindInfinite, nil
	}
	if con.Name == "Bool" {
		return kindBool, nil
	}
	if sum, ok := types.Sums[con.Name]; ok {
		return kindSum, sum
	}
	return kindInfinite, nil
}

// coverage reports what a single top-level pattern covers: whether it is
// irrefutable (matches everything), the sum-type variant names it names
// (possibly several, via an or-pattern), or a boolean literal value.
func coverage(p ast.Pattern) (isAll bool, variants []string, isBool bool, boolVal bool) {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return true, nil, false, false
	case *ast.Identifier:
		return true, nil, false, false
	case *ast.AsPattern:
		return coverage(n.Inner)
	case *ast.Literal:
		if n.Kind == ast.BoolLit {
			if b, ok := n.Value.(bool); ok {
				return false, nil, true, b
			}
		}
		return false, nil, false, false
	case *ast.ConstructorPattern:
		return false, []string{n.Name}, false, false
	case *ast.OrPattern:
		var names []string
		for _, alt := range n.Alternatives {
			all, vs, _, _ := coverage(alt)
			if all {
				return true, nil, false, false
			}
			names = append(names, vs...)
		}
		return false, names, false, false
	default:
		return false, nil, false, false
	}
}
