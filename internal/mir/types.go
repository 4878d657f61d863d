// Package mir implements the lowering from a type-checked surface AST to
// the mid-level IR the backend code generator consumes (spec.md §3.2, §4.12):
// monomorphised types, closure conversion, decision-tree pattern match
// compilation, multi-clause lowering, tail-call elimination, and the
// service/actor/supervisor runtime protocols.
//
// Grounded on the teacher's internal/elaborate (a second pass over the
// already-checked surface AST producing a lower, ANF-shaped representation)
// and internal/core (the closed grammar of that lower representation,
// struct-per-variant with a private marker method). Where the teacher's
// Core stays untyped ANF for a dynamically-typed evaluator, MirExpr carries
// a concrete MirType on every node, since the spec's backend needs it for
// SSA construction and intrinsic coercions.
package mir

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// MirType is a monomorphic, concrete type with no inference variables
// (spec §3.2). Every generic instantiation has already been resolved and
// name-mangled into a concrete struct/sum name by the time a MirType
// exists.
type MirType interface {
	fmt.Stringer
	mirType()
}

type (
	TInt    struct{}
	TFloat  struct{}
	TBool   struct{}
	TString struct{}
	TUnit   struct{}
	TPtr    struct{}
	TNever  struct{}
)

func (TInt) mirType()    {}
func (TFloat) mirType()  {}
func (TBool) mirType()   {}
func (TString) mirType() {}
func (TUnit) mirType()   {}
func (TPtr) mirType()    {}
func (TNever) mirType()  {}

func (TInt) String() string    { return "Int" }
func (TFloat) String() string  { return "Float" }
func (TBool) String() string   { return "Bool" }
func (TString) String() string { return "String" }
func (TUnit) String() string   { return "Unit" }
func (TPtr) String() string    { return "Ptr" }
func (TNever) String() string  { return "Never" }

// TStruct names a monomorphised struct layout, e.g. "Point" or
// "Box_Int" for an instantiation of a generic struct.
type TStruct struct{ Name string }

func (TStruct) mirType()        {}
func (t TStruct) String() string { return t.Name }

// TSum names a monomorphised sum type layout.
type TSum struct{ Name string }

func (TSum) mirType()        {}
func (t TSum) String() string { return t.Name }

// TTuple is a fixed-arity tuple of monomorphic element types. A zero-arity
// tuple is collapsed to TUnit by ResolveType, per spec §3.2.
type TTuple struct{ Elems []MirType }

func (TTuple) mirType() {}
func (t TTuple) String() string {
	s := "("
	for i, e := range t.Elems {
		if i > 0 {
			s += ", "
		}
		s += e.String()
	}
	return s + ")"
}

// TFnPtr is a direct, known-named function reference: no environment
// pointer, callable by address alone.
type TFnPtr struct {
	Params []MirType
	Ret    MirType
}

func (TFnPtr) mirType() {}
func (t TFnPtr) String() string { return fmt.Sprintf("fn(%v) -> %s", t.Params, t.Ret) }

// TClosure is a function value that escaped as first-class data: after
// closure conversion it is represented at runtime as a {fn_ptr, env_ptr}
// pair (spec §4.12).
type TClosure struct {
	Params []MirType
	Ret    MirType
}

func (TClosure) mirType() {}
func (t TClosure) String() string { return fmt.Sprintf("closure(%v) -> %s", t.Params, t.Ret) }

// mangle produces the name-mangled monomorphic identifier for a generic
// instantiation, e.g. Option<Int> -> Option_Int (spec §3.2).
func mangle(base string, args []MirType) string {
	name := base
	for _, a := range args {
		name += "_" + mangleOne(a)
	}
	return name
}

func mangleOne(t MirType) string {
	switch n := t.(type) {
	case TStruct:
		return n.Name
	case TSum:
		return n.Name
	default:
		return t.String()
	}
}

// ResolveType monomorphises a checker-level Ty into a concrete MirType
// (spec §4.12 "Type resolution"). A bare ty.Var reaching this function is
// a programmer error: every variable should have been resolved (or
// defaulted) before lowering begins.
func ResolveType(t ty.Ty, types *registry.TypeRegistry) (MirType, error) {
	switch n := t.(type) {
	case ty.Var:
		return nil, fmt.Errorf("mir: unresolved type variable ?%d reached lowering", n.ID)

	case ty.Con:
		switch n.Name {
		case "Int":
			return TInt{}, nil
		case "Float":
			return TFloat{}, nil
		case "Bool":
			return TBool{}, nil
		case "String":
			return TString{}, nil
		case "Unit":
			return TUnit{}, nil
		}
		if _, ok := types.Structs[n.Name]; ok {
			return TStruct{Name: n.Name}, nil
		}
		if _, ok := types.Sums[n.Name]; ok {
			return TSum{Name: n.Name}, nil
		}
		// Runtime-opaque handle (Router, PgConn, Pid with no type arg, ...):
		// represented as an opaque pointer at the MIR level.
		return TPtr{}, nil

	case ty.App:
		argTypes := make([]MirType, len(n.Args))
		for i, a := range n.Args {
			mt, err := ResolveType(a, types)
			if err != nil {
				return nil, err
			}
			argTypes[i] = mt
		}
		base, ok := n.Base.(ty.Con)
		if !ok {
			return nil, fmt.Errorf("mir: application of non-constructor base %s", n.Base)
		}
		if base.Name == "Pid" {
			return TPtr{}, nil
		}
		if sd, ok := types.Structs[base.Name]; ok {
			return TStruct{Name: mangle(sd.Name, argTypes)}, nil
		}
		if sumd, ok := types.Sums[base.Name]; ok {
			return TSum{Name: mangle(sumd.Name, argTypes)}, nil
		}
		// Built-in parameterised containers (Option, Result, List, Map, Set)
		// are runtime-managed and represented uniformly as a pointer; their
		// element types only matter for the uniform-representation coercions
		// codegen inserts at the boundary (spec §4.13).
		return TPtr{}, nil

	case ty.Fun:
		params := make([]MirType, len(n.Params))
		for i, p := range n.Params {
			mt, err := ResolveType(p, types)
			if err != nil {
				return nil, err
			}
			params[i] = mt
		}
		ret, err := ResolveType(n.Ret, types)
		if err != nil {
			return nil, err
		}
		// Whether this becomes FnPtr or Closure is decided by the caller
		// (the lowerer knows, from closure conversion, whether the value is
		// a bare named function or a value that captured free variables);
		// ResolveType defaults to FnPtr for a direct type-position use and
		// callers needing Closure construct it explicitly.
		return TFnPtr{Params: params, Ret: ret}, nil

	case ty.Tuple:
		if len(n.Elems) == 0 {
			return TUnit{}, nil
		}
		elems := make([]MirType, len(n.Elems))
		for i, e := range n.Elems {
			mt, err := ResolveType(e, types)
			if err != nil {
				return nil, err
			}
			elems[i] = mt
		}
		return TTuple{Elems: elems}, nil

	case ty.Never:
		return TNever{}, nil
	}
	return nil, fmt.Errorf("mir: unresolved type %T reached lowering", t)
}
