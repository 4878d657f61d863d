// Package ty defines the type representation used by the mesh type checker
// (spec.md §3.1): inference variables resolved through a union-find arena,
// concrete constructors, parameterised applications, function arrows,
// tuples, and the bottom type.
//
// The representation follows the teacher's Type interface shape
// (internal/types/types.go: String/Equals), but the variable case is a bare
// id into an external arena rather than a self-contained node, per spec
// §9's design note: "Do not embed the parent link in the Ty value;
// Ty::Var(id) stores only the id."
package ty

import (
	"fmt"
	"strings"
)

// Ty is a type as seen by the inferencer, before MIR lowering.
type Ty interface {
	fmt.Stringer
	tyNode()
}

// Var is an inference unknown. Its level and union-find link live in the
// companion Arena (see arena.go), never in the Var value itself.
type Var struct {
	ID int
}

func (Var) tyNode() {}
func (v Var) String() string { return fmt.Sprintf("?%d", v.ID) }

// Con is a nullary constructor: Int, Float, Bool, String, Unit, Pid, a
// user struct/sum name, or a runtime-opaque handle (Router, PgConn, ...).
// Module is an optional source-module prefix used only for diagnostic
// printing and namespacing across modules (spec §3.1).
type Con struct {
	Name   string
	Module string
}

func (Con) tyNode() {}
func (c Con) String() string {
	if c.Module != "" {
		return c.Module + "." + c.Name
	}
	return c.Name
}

// App is a parameterised type: Option<T>, Result<T,E>, List<T>, Map<K,V>,
// Pid<M>, or a user Foo<A,B>.
type App struct {
	Base Ty
	Args []Ty
}

func (App) tyNode() {}
func (a App) String() string {
	parts := make([]string, len(a.Args))
	for i, arg := range a.Args {
		parts[i] = arg.String()
	}
	return fmt.Sprintf("%s<%s>", a.Base.String(), strings.Join(parts, ", "))
}

// Fun is an arrow type.
type Fun struct {
	Params []Ty
	Ret    Ty
}

func (Fun) tyNode() {}
func (f Fun) String() string {
	parts := make([]string, len(f.Params))
	for i, p := range f.Params {
		parts[i] = p.String()
	}
	return fmt.Sprintf("(%s) -> %s", strings.Join(parts, ", "), f.Ret.String())
}

// Tuple groups elements positionally. An empty Tuple is Unit.
type Tuple struct {
	Elems []Ty
}

func (Tuple) tyNode() {}
func (t Tuple) String() string {
	if len(t.Elems) == 0 {
		return "Unit"
	}
	parts := make([]string, len(t.Elems))
	for i, e := range t.Elems {
		parts[i] = e.String()
	}
	return fmt.Sprintf("(%s)", strings.Join(parts, ", "))
}

// Never is the bottom type: return, panic, infinite loop.
type Never struct{}

func (Never) tyNode()        {}
func (Never) String() string { return "Never" }

// Well-known constructors, built once and reused (cheaper than re-allocating
// a Con literal at every call site, and gives callers a stable value to
// compare String()s against in tests).
var (
	Int    Ty = Con{Name: "Int"}
	Float  Ty = Con{Name: "Float"}
	Bool   Ty = Con{Name: "Bool"}
	String Ty = Con{Name: "String"}
	Unit   Ty = Tuple{}
)

// Scheme is a generalised type: forall v1..vn. Ty. The quantified variables
// are those whose level exceeded the current level at the point of
// generalisation (spec §3.1).
type Scheme struct {
	Vars []int
	Type Ty
}

func (s *Scheme) String() string {
	if len(s.Vars) == 0 {
		return s.Type.String()
	}
	names := make([]string, len(s.Vars))
	for i, v := range s.Vars {
		names[i] = fmt.Sprintf("?%d", v)
	}
	return fmt.Sprintf("forall %s. %s", strings.Join(names, " "), s.Type.String())
}

// Mono wraps a concrete type with no quantifiers — a convenience for
// binding built-ins and struct/constructor fields that never generalise
// beyond what's already free in them.
func Mono(t Ty) *Scheme { return &Scheme{Type: t} }
