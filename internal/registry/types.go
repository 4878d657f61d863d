// Package registry holds the two name-keyed tables the checker consults
// throughout inference: the TypeRegistry (spec §3.3, struct/sum/alias defs)
// and the TraitRegistry (spec §3.3/§4.4, trait defs + impls with coherence
// checking). Grounded on the teacher's internal/iface (module interface
// table shape: name-keyed maps of *Info structs) and internal/types/
// instances.go (InstanceEnv's coherence-checked Add/Lookup).
package registry

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// StructDef is a registered struct definition. Field order is stable and
// matches source (spec §3.3 invariant).
type StructDef struct {
	Name     string
	Params   []string // generic parameter names
	Fields   []FieldDef
	Deriving []string
}

type FieldDef struct {
	Name string
	Type ty.Ty
}

// Variant is one constructor of a sum type, with either positional or
// named fields. Tag is the variant's runtime discriminant, contiguous from
// 0 in declaration order (spec §3.3 invariant).
type Variant struct {
	Name        string
	Tag         int
	Fields      []ty.Ty    // positional
	NamedFields []FieldDef // named
}

// SumDef is a registered sum type definition.
type SumDef struct {
	Name     string
	Params   []string
	Variants []Variant
	Deriving []string
}

// VariantOf returns the variant named n, if any.
func (s *SumDef) VariantOf(n string) (Variant, bool) {
	for _, v := range s.Variants {
		if v.Name == n {
			return v, true
		}
	}
	return Variant{}, false
}

// AliasDef is a registered `type Foo<A> = ...` alias.
type AliasDef struct {
	Name   string
	Params []string
	Target ty.Ty
}

// TypeRegistry is name -> struct/sum/alias definition (spec §3.3).
type TypeRegistry struct {
	Structs map[string]*StructDef
	Sums    map[string]*SumDef
	Aliases map[string]*AliasDef
}

func NewTypeRegistry() *TypeRegistry {
	return &TypeRegistry{
		Structs: make(map[string]*StructDef),
		Sums:    make(map[string]*SumDef),
		Aliases: make(map[string]*AliasDef),
	}
}

// IsStruct reports whether name is a registered struct.
func (r *TypeRegistry) IsStruct(name string) bool {
	_, ok := r.Structs[name]
	return ok
}

// IsSum reports whether name is a registered sum type.
func (r *TypeRegistry) IsSum(name string) bool {
	_, ok := r.Sums[name]
	return ok
}

// VariantOwner returns the sum type that declares variant name, if any.
// Used to resolve bare `Variant(args)` construction (spec §4.11).
func (r *TypeRegistry) VariantOwner(variant string) (*SumDef, bool) {
	for _, sum := range r.Sums {
		if _, ok := sum.VariantOf(variant); ok {
			return sum, true
		}
	}
	return nil, false
}
