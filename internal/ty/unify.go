package ty

import "fmt"

// MismatchError is the low-level shape-mismatch error Unify returns; the
// infer package wraps it with a ConstraintOrigin before surfacing it as a
// diagnostic (spec §4.3: "Every failure carries the origin").
type MismatchError struct {
	A, B Ty
	Why  string
}

func (e *MismatchError) Error() string {
	if e.Why != "" {
		return fmt.Sprintf("cannot unify %s with %s: %s", e.A, e.B, e.Why)
	}
	return fmt.Sprintf("cannot unify %s with %s", e.A, e.B)
}

// OccursError is raised when unifying a variable with a type that contains
// it (after substitution), which would create a cyclic type.
type OccursError struct {
	Var Var
	In  Ty
}

func (e *OccursError) Error() string {
	return fmt.Sprintf("occurs check failed: %s occurs in %s", e.Var, e.In)
}

// Unify performs standard first-order unification against the given arena,
// implementing spec §4.3's three twists: union-find with path compression,
// an occurs check, and level lowering on link. Never unifies with anything.
func Unify(a *Arena, x, y Ty) error {
	x = resolveShallow(a, x)
	y = resolveShallow(a, y)

	if xv, ok := x.(Var); ok {
		return unifyVar(a, xv, y)
	}
	if yv, ok := y.(Var); ok {
		return unifyVar(a, yv, x)
	}

	if _, ok := x.(Never); ok {
		return nil
	}
	if _, ok := y.(Never); ok {
		return nil
	}

	switch xn := x.(type) {
	case Con:
		yn, ok := y.(Con)
		if !ok || xn.Name != yn.Name {
			return &MismatchError{A: x, B: y}
		}
		return nil

	case App:
		yn, ok := y.(App)
		if !ok {
			return &MismatchError{A: x, B: y}
		}
		if err := Unify(a, xn.Base, yn.Base); err != nil {
			return err
		}
		if len(xn.Args) != len(yn.Args) {
			return &MismatchError{A: x, B: y, Why: "arity mismatch"}
		}
		for i := range xn.Args {
			if err := Unify(a, xn.Args[i], yn.Args[i]); err != nil {
				return err
			}
		}
		return nil

	case Fun:
		yn, ok := y.(Fun)
		if !ok {
			return &MismatchError{A: x, B: y}
		}
		if len(xn.Params) != len(yn.Params) {
			return &MismatchError{A: x, B: y, Why: "arity mismatch"}
		}
		for i := range xn.Params {
			if err := Unify(a, xn.Params[i], yn.Params[i]); err != nil {
				return err
			}
		}
		return Unify(a, xn.Ret, yn.Ret)

	case Tuple:
		yn, ok := y.(Tuple)
		if !ok {
			return &MismatchError{A: x, B: y}
		}
		if len(xn.Elems) != len(yn.Elems) {
			return &MismatchError{A: x, B: y, Why: "arity mismatch"}
		}
		for i := range xn.Elems {
			if err := Unify(a, xn.Elems[i], yn.Elems[i]); err != nil {
				return err
			}
		}
		return nil

	default:
		return &MismatchError{A: x, B: y}
	}
}

func unifyVar(a *Arena, v Var, t Ty) error {
	if tv, ok := t.(Var); ok {
		if a.find(v.ID) == a.find(tv.ID) {
			return nil
		}
		a.union(v.ID, tv.ID)
		return nil
	}
	if occurs(a, v, t) {
		return &OccursError{Var: v, In: t}
	}
	a.setLink(v.ID, t)
	return nil
}

// resolveShallow follows a variable's link one (transitive) hop without
// resolving the rest of the type, so Unify always dispatches on the
// outermost concrete shape.
func resolveShallow(a *Arena, t Ty) Ty {
	v, ok := t.(Var)
	if !ok {
		return t
	}
	root := a.find(v.ID)
	if linked, ok := a.Resolved(root); ok {
		return resolveShallow(a, linked)
	}
	return Var{ID: root}
}

func occurs(a *Arena, v Var, t Ty) bool {
	switch n := resolveShallow(a, t).(type) {
	case Var:
		return a.find(n.ID) == a.find(v.ID)
	case App:
		if occurs(a, v, n.Base) {
			return true
		}
		for _, arg := range n.Args {
			if occurs(a, v, arg) {
				return true
			}
		}
		return false
	case Fun:
		for _, p := range n.Params {
			if occurs(a, v, p) {
				return true
			}
		}
		return occurs(a, v, n.Ret)
	case Tuple:
		for _, e := range n.Elems {
			if occurs(a, v, e) {
				return true
			}
		}
		return false
	default:
		return false
	}
}
