package mir

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
)

// MirPattern is the lowered pattern grammar consumed by the decision-tree
// compiler (spec §4.5 "abstract pattern", §4.12 "pattern match compilation").
// Or-patterns have already been expanded into multiple rows by the time a
// MirPattern exists, per spec §4.12.
type MirPattern interface {
	mirPattern()
	String() string
}

type PWildcard struct{ Binder string } // Binder is "" for a bare `_`

func (PWildcard) mirPattern()       {}
func (p PWildcard) String() string { if p.Binder == "" { return "_" }; return p.Binder }

type PLiteral struct{ Value interface{} }

func (PLiteral) mirPattern()       {}
func (p PLiteral) String() string { return fmt.Sprintf("%v", p.Value) }

// PConstructor matches a sum-type variant by tag and recurses into its
// positional sub-patterns.
type PConstructor struct {
	SumName string
	Variant string
	Tag     int
	Args    []MirPattern
}

func (PConstructor) mirPattern() {}
func (p PConstructor) String() string { return fmt.Sprintf("%s(%v)", p.Variant, p.Args) }

// PTuple matches every element of a fixed-arity tuple.
type PTuple struct{ Elems []MirPattern }

func (PTuple) mirPattern()       {}
func (p PTuple) String() string { return fmt.Sprintf("(%v)", p.Elems) }

// lowerPattern translates a surface pattern to MirPattern, expanding
// or-patterns into a flat list of alternatives the caller turns into
// separate matrix rows sharing one guard/body (spec §4.12: "Or-patterns are
// expanded into multiple edges at the same node").
func lowerPattern(p ast.Pattern, types *registry.TypeRegistry) []MirPattern {
	switch n := p.(type) {
	case *ast.WildcardPattern:
		return []MirPattern{PWildcard{}}
	case *ast.Identifier:
		return []MirPattern{PWildcard{Binder: n.Name}}
	case *ast.AsPattern:
		var out []MirPattern
		for _, alt := range lowerPattern(n.Inner, types) {
			out = append(out, asBound{Inner: alt, Name: n.Name})
		}
		return out
	case *ast.Literal:
		return []MirPattern{PLiteral{Value: n.Value}}
	case *ast.ConstructorPattern:
		sum, _ := types.VariantOwner(n.Name)
		tag := -1
		if sum != nil {
			if v, ok := sum.VariantOf(n.Name); ok {
				tag = v.Tag
			}
		}
		args := make([]MirPattern, len(n.Patterns))
		for i, sub := range n.Patterns {
			lowered := lowerPattern(sub, types)
			if len(lowered) > 0 {
				args[i] = lowered[0]
			} else {
				args[i] = PWildcard{}
			}
		}
		sumName := ""
		if sum != nil {
			sumName = sum.Name
		}
		return []MirPattern{PConstructor{SumName: sumName, Variant: n.Name, Tag: tag, Args: args}}
	case *ast.TuplePattern:
		elems := make([]MirPattern, len(n.Elements))
		for i, sub := range n.Elements {
			lowered := lowerPattern(sub, types)
			if len(lowered) > 0 {
				elems[i] = lowered[0]
			} else {
				elems[i] = PWildcard{}
			}
		}
		return []MirPattern{PTuple{Elems: elems}}
	case *ast.OrPattern:
		var out []MirPattern
		for _, alt := range n.Alternatives {
			out = append(out, lowerPattern(alt, types)...)
		}
		return out
	default:
		// Lists and cons-patterns are conservatively treated as wildcards
		// for exhaustiveness (spec §4.5); the decision tree falls back to a
		// length check compiled separately by codegen from the surface
		// pattern kind, so this keeps the tree itself total.
		return []MirPattern{PWildcard{}}
	}
}

// asPattern binds an additional name while delegating matching to Inner
// (spec §4.12 "as-patterns bind an additional local").
type asBound struct {
	Inner MirPattern
	Name  string
}

func (asBound) mirPattern()       {}
func (a asBound) String() string { return fmt.Sprintf("%s as %s", a.Inner, a.Name) }

// DecisionTree is a compiled pattern-match plan (spec §4.12). Grounded
// directly on the teacher's internal/dtree package, retargeted from
// core.CoreExpr/CorePattern to MirExpr/MirPattern.
type DecisionTree interface {
	isDecisionTree()
	String() string
}

type LeafNode struct {
	ArmIndex int
	Bindings []string // as-pattern / identifier binder names reaching this leaf
	Guard    MirExpr
	Body     MirExpr
}

func (*LeafNode) isDecisionTree() {}
func (l *LeafNode) String() string { return fmt.Sprintf("Leaf(arm=%d)", l.ArmIndex) }

type FailNode struct{}

func (*FailNode) isDecisionTree()  {}
func (*FailNode) String() string   { return "Fail" }

// SwitchNode dispatches on the runtime discriminator at Path: a variant tag
// or a literal value. Default covers wildcard/identifier rows.
type SwitchNode struct {
	Path    []int
	Cases   map[interface{}]DecisionTree
	Default DecisionTree
}

func (*SwitchNode) isDecisionTree() {}
func (s *SwitchNode) String() string {
	return fmt.Sprintf("Switch(path=%v, cases=%d)", s.Path, len(s.Cases))
}

// matchRow is one row of the compilation matrix: parallel pattern columns
// (scrutinee tuple positions, or a single column for a plain match) plus
// the row's guard/body and accumulated binder names.
type matchRow struct {
	patterns []MirPattern
	armIndex int
	guard    MirExpr
	body     MirExpr
	bindings []string
}

// CompileMatch builds a decision tree from case arms already lowered to
// MirExpr bodies/guards. rows[i] holds the pattern(s) of arm i, one per
// scrutinee column (a plain match has one column; multi-clause lowering
// and tuple scrutinees have one column per tuple position).
func CompileMatch(rows [][]MirPattern, guards, bodies []MirExpr) DecisionTree {
	matrix := make([]matchRow, len(bodies))
	for i, row := range rows {
		matrix[i] = matchRow{patterns: row, armIndex: i, guard: guards[i], body: bodies[i]}
	}
	return compileMatrix(matrix, nil)
}

func compileMatrix(matrix []matchRow, path []int) DecisionTree {
	if len(matrix) == 0 {
		return &FailNode{}
	}
	if isDefaultRow(matrix[0]) {
		return leafFrom(matrix[0])
	}
	if len(matrix[0].patterns) == 0 {
		return leafFrom(matrix[0])
	}
	return buildSwitch(matrix, path, 0)
}

func leafFrom(row matchRow) *LeafNode {
	return &LeafNode{ArmIndex: row.armIndex, Guard: row.guard, Body: row.body, Bindings: row.bindings}
}

func isDefaultRow(row matchRow) bool {
	for _, p := range row.patterns {
		switch p.(type) {
		case PWildcard:
		case asBound:
		default:
			return false
		}
	}
	return true
}

func buildSwitch(matrix []matchRow, path []int, col int) DecisionTree {
	cases := map[interface{}][]matchRow{}
	arity := map[interface{}]int{}
	var defaults []matchRow

	for _, row := range matrix {
		switch p := unwrap(row.patterns[col]).(type) {
		case PLiteral:
			cases[p.Value] = append(cases[p.Value], bindRow(row, col))
			arity[p.Value] = 0
		case PConstructor:
			cases[p.Variant] = append(cases[p.Variant], bindRow(row, col))
			arity[p.Variant] = len(p.Args)
		default:
			defaults = append(defaults, bindRow(row, col))
		}
	}

	if len(cases) == 0 {
		if len(defaults) == 0 {
			return &FailNode{}
		}
		return compileMatrix(specialize(defaults, col, 0), append(path, col))
	}

	sw := &SwitchNode{Path: append(append([]int{}, path...), col), Cases: map[interface{}]DecisionTree{}}
	for key, rows := range cases {
		// A wildcard/default row at this column also covers this case (it
		// matches any constructor/literal), so it is carried into the
		// case's specialized matrix after the matched rows — matched rows
		// still win by source order (spec §4.5 redundancy ordering).
		merged := append(append([]matchRow{}, rows...), defaults...)
		sw.Cases[key] = compileMatrix(specialize(merged, col, arity[key]), append(path, col))
	}
	if len(defaults) > 0 {
		sw.Default = compileMatrix(specialize(defaults, col, 0), append(path, col))
	} else {
		sw.Default = &FailNode{}
	}
	return sw
}

// bindRow records any as-pattern/identifier binder name found in column col
// before the column is specialised away.
func bindRow(row matchRow, col int) matchRow {
	out := row
	out.bindings = append(append([]string{}, row.bindings...), binderNames(row.patterns[col])...)
	return out
}

func binderNames(p MirPattern) []string {
	switch n := p.(type) {
	case PWildcard:
		if n.Binder != "" {
			return []string{n.Binder}
		}
	case asBound:
		return append([]string{n.Name}, binderNames(n.Inner)...)
	}
	return nil
}

func unwrap(p MirPattern) MirPattern {
	if a, ok := p.(asBound); ok {
		return unwrap(a.Inner)
	}
	return p
}

// specialize removes the matched/default column at col, expanding a
// matched constructor's or tuple's own sub-patterns in its place. A
// wildcard/identifier row (including a default row merged into a
// constructor's case) is widened to arity fresh wildcards so every row in
// the resulting matrix keeps the same column count (spec §4.12 pattern
// specialization, mirroring the teacher's dtree.specializeRows).
func specialize(rows []matchRow, col int, arity int) []matchRow {
	out := make([]matchRow, 0, len(rows))
	for _, row := range rows {
		newPatterns := make([]MirPattern, 0, len(row.patterns)+arity)
		for i, p := range row.patterns {
			if i != col {
				newPatterns = append(newPatterns, p)
				continue
			}
			switch u := unwrap(p).(type) {
			case PConstructor:
				newPatterns = append(newPatterns, u.Args...)
			case PTuple:
				newPatterns = append(newPatterns, u.Elems...)
			default:
				for n := 0; n < arity; n++ {
					newPatterns = append(newPatterns, PWildcard{})
				}
			}
		}
		out = append(out, matchRow{patterns: newPatterns, armIndex: row.armIndex, guard: row.guard, body: row.body, bindings: row.bindings})
	}
	return out
}
