package registry

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
)

// TraitMethod is one method signature of a trait definition.
type TraitMethod struct {
	Name       string
	Arity      int
	SelfParam  bool
	ReturnType ty.Ty // nil if unspecified
	HasDefault bool
}

// TraitDef is a registered trait (spec §3.3).
type TraitDef struct {
	Name       string
	Methods    map[string]TraitMethod
	AssocTypes []string
}

// Impl is one `impl Trait for Type` record.
type Impl struct {
	TraitName     string
	ImplType      ty.Ty // the parameterised type, e.g. App{Con{"Pair"}, [A,B]}
	ImplTypeArgs  []string
	Methods       map[string]ty.Ty // method name -> declared function type
	AssocBindings map[string]ty.Ty
}

// headConstructor extracts the concrete head constructor name used as the
// coherence key: Con{"Foo"} and App{Con{"Foo"}, ...} both key on "Foo".
func headConstructor(t ty.Ty) (string, bool) {
	switch n := t.(type) {
	case ty.Con:
		return n.Name, true
	case ty.App:
		return headConstructor(n.Base)
	default:
		return "", false
	}
}

// TraitRegistry stores trait definitions and their impls, enforcing
// coherence: at most one impl per (trait, concrete head constructor) pair
// (spec §3.3/§4.4).
type TraitRegistry struct {
	Traits map[string]*TraitDef
	impls  map[string][]*Impl // trait name -> impls
	byHead map[string]*Impl   // "Trait:Head" -> impl, for O(1) coherence checks
}

func NewTraitRegistry() *TraitRegistry {
	return &TraitRegistry{
		Traits: make(map[string]*TraitDef),
		impls:  make(map[string][]*Impl),
		byHead: make(map[string]*Impl),
	}
}

// RegisterTrait stores a trait's methods and associated-type names.
func (r *TraitRegistry) RegisterTrait(def *TraitDef) {
	r.Traits[def.Name] = def
}

// CoherenceError reports a duplicate (trait, head) impl registration
// (spec §3.3 "Coherence invariant").
type CoherenceError struct {
	TraitName string
	Head      string
}

func (e *CoherenceError) Error() string {
	return fmt.Sprintf("duplicate impl of trait %q for type %q", e.TraitName, e.Head)
}

// RegisterImpl checks for a colliding (trait_name, head constructor) pair
// and rejects duplicates; on success the impl is both appended to the
// trait's impl list and indexed for method resolution.
func (r *TraitRegistry) RegisterImpl(impl *Impl) error {
	head, ok := headConstructor(impl.ImplType)
	if !ok {
		return fmt.Errorf("impl type %s has no concrete head constructor", impl.ImplType)
	}
	key := impl.TraitName + ":" + head
	if _, exists := r.byHead[key]; exists {
		return &CoherenceError{TraitName: impl.TraitName, Head: head}
	}
	r.byHead[key] = impl
	r.impls[impl.TraitName] = append(r.impls[impl.TraitName], impl)
	return nil
}

// ImplFor returns the impl of trait for the concrete head constructor of
// receiver, if one is registered. Unlike method resolution (which
// instantiates the impl's own generic parameters), this is a direct lookup
// used by operator dispatch once the operand's head is concrete (spec
// §4.4 "Operator dispatch").
func (r *TraitRegistry) ImplFor(traitName string, receiver ty.Ty) (*Impl, bool) {
	head, ok := headConstructor(receiver)
	if !ok {
		return nil, false
	}
	impl, ok := r.byHead[traitName+":"+head]
	return impl, ok
}

// HasImpl reports whether some registered impl of traitName applies to the
// concrete type t (spec §4.4 "Where-clause enforcement").
func (r *TraitRegistry) HasImpl(traitName string, t ty.Ty) bool {
	_, ok := r.ImplFor(traitName, t)
	return ok
}

// MethodOwners returns every trait that declares method name and whose
// registered impl list contains one applicable to receiver's head
// constructor — used to detect AmbiguousMethod (spec §4.4 "Method call
// resolution").
func (r *TraitRegistry) MethodOwners(method string, receiver ty.Ty) []*TraitDef {
	head, ok := headConstructor(receiver)
	if !ok {
		return nil
	}
	var owners []*TraitDef
	for traitName, def := range r.Traits {
		if _, has := def.Methods[method]; !has {
			continue
		}
		if _, implemented := r.byHead[traitName+":"+head]; implemented {
			owners = append(owners, def)
		}
	}
	return owners
}

// Operator trait names, per spec §4.4 "Operator dispatch".
const (
	TraitAdd = "Add"
	TraitSub = "Sub"
	TraitMul = "Mul"
	TraitDiv = "Div"
	TraitMod = "Mod"
	TraitEq  = "Eq"
	TraitOrd = "Ord"
	TraitNot = "Not"
	TraitNeg = "Neg"
)

// OperatorTrait maps a binary/unary operator token to the trait method
// resolution desugars it to.
func OperatorTrait(op string) (trait string, isComparison bool, ok bool) {
	switch op {
	case "+":
		return TraitAdd, false, true
	case "-":
		return TraitSub, false, true
	case "*":
		return TraitMul, false, true
	case "/":
		return TraitDiv, false, true
	case "%":
		return TraitMod, false, true
	case "==", "!=":
		return TraitEq, true, true
	case "<", ">", "<=", ">=":
		return TraitOrd, true, true
	case "!":
		return TraitNot, false, true
	default:
		return "", false, false
	}
}
