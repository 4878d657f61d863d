// Package infer implements the type inference walk (spec.md §4.2, §4.8):
// an Algorithm J–style inferencer that synthesises a type for every
// expression, accumulating structured diagnostics rather than failing on
// the first error. Grounded on the teacher's internal/types package (the
// shape of an inference context owning level counters and a fresh-variable
// allocator) but rebuilt around the union-find internal/ty.Arena instead of
// the teacher's substitution-map unifier.
package infer

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/ast"
	"github.com/snowdamiz/mesh-lang-sub001/internal/builtins"
	"github.com/snowdamiz/mesh-lang-sub001/internal/errors"
	"github.com/snowdamiz/mesh-lang-sub001/internal/registry"
	"github.com/snowdamiz/mesh-lang-sub001/internal/ty"
	"github.com/snowdamiz/mesh-lang-sub001/internal/tyenv"
)

// WhereEntry is one `T: Trait` constraint recorded against a function
// (spec §4.4 "Where-clause enforcement").
type WhereEntry struct {
	TypeParam string
	Trait     string
}

// FuncConstraints remembers, per checked function, which parameter
// positions are bound to which type-parameter name and that parameter's
// where-clause obligations, so higher-order call sites can re-check a
// passed-in function against its own constraints.
type FuncConstraints struct {
	Name        string
	Where       []WhereEntry
	ParamTyVars []string // type-param name bound to each parameter position ("" if none)
}

// Ctx is the inference context: union-find arena, level counter, the two
// name-keyed registries, diagnostic accumulators, and the small amount of
// control-flow state the walk needs for try/return/break/continue
// (spec §4.2).
type Ctx struct {
	Arena  *ty.Arena
	Types  *registry.TypeRegistry
	Traits *registry.TraitRegistry

	level int

	Errors   []*errors.Report
	Warnings []*errors.Report

	returnStack []ty.Ty // enclosing function's declared/inferred return type, for `?` and `return`
	loopDepth   int     // for break/continue scope checking; reset on closure entry

	tailFn string // name of the function whose tail-call loop header is active (consulted by lowering, spec §4.9)

	whereByFunc map[string]*FuncConstraints

	ActorMsgOf map[string]ty.Ty // actor/service name -> its message type M, for self-recursive binding

	// Namespaces holds `import M`-style module bindings: module name to
	// its exported member name -> scheme table, populated by
	// internal/modimport.RegisterNamespace before a file using bare
	// `M.x` qualified references is checked (spec §4.7).
	Namespaces map[string]map[string]*ty.Scheme
}

// New returns a fresh Ctx wired to shared registries. Every built-in
// module (spec §6.3) is pre-seeded into Namespaces so bare `Module.method`
// field access resolves without requiring an explicit `import` — only a
// user module that shadows a built-in name needs RegisterNamespace to
// overwrite the entry modimport installs later.
func New(types *registry.TypeRegistry, traits *registry.TraitRegistry) *Ctx {
	c := &Ctx{
		Arena:       ty.NewArena(),
		Types:       types,
		Traits:      traits,
		whereByFunc: make(map[string]*FuncConstraints),
		ActorMsgOf:  make(map[string]ty.Ty),
		Namespaces:  make(map[string]map[string]*ty.Scheme),
	}
	for module, members := range builtins.Modules {
		c.Namespaces[module] = members
	}
	return c
}

// RegisterNamespace installs members as the resolvable exports of the
// `import M` namespace M (spec §4.7). Called by internal/modimport, kept
// here so the expression walk (call.go) can consult it without importing
// back up into modimport.
func (c *Ctx) RegisterNamespace(name string, members map[string]*ty.Scheme) {
	c.Namespaces[name] = members
}

// FreshVar allocates a variable at the current level.
func (c *Ctx) FreshVar() ty.Ty { return c.Arena.Fresh(c.level) }

// EnterLevel opens a new generalisation level.
func (c *Ctx) EnterLevel() { c.level++ }

// LeaveLevel closes the current generalisation level.
func (c *Ctx) LeaveLevel() { c.level-- }

// Level returns the current generalisation level.
func (c *Ctx) Level() int { return c.level }

// Instantiate replaces a scheme's quantified variables with fresh ones at
// the current level.
func (c *Ctx) Instantiate(s *ty.Scheme) ty.Ty {
	if s == nil || len(s.Vars) == 0 {
		if s == nil {
			return c.FreshVar()
		}
		return s.Type
	}
	sub := make(map[int]ty.Ty, len(s.Vars))
	for _, v := range s.Vars {
		sub[v] = c.FreshVar()
	}
	return substVars(s.Type, sub)
}

func substVars(t ty.Ty, sub map[int]ty.Ty) ty.Ty {
	switch n := t.(type) {
	case ty.Var:
		if r, ok := sub[n.ID]; ok {
			return r
		}
		return n
	case ty.App:
		args := make([]ty.Ty, len(n.Args))
		for i, a := range n.Args {
			args[i] = substVars(a, sub)
		}
		return ty.App{Base: substVars(n.Base, sub), Args: args}
	case ty.Fun:
		params := make([]ty.Ty, len(n.Params))
		for i, p := range n.Params {
			params[i] = substVars(p, sub)
		}
		return ty.Fun{Params: params, Ret: substVars(n.Ret, sub)}
	case ty.Tuple:
		elems := make([]ty.Ty, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = substVars(e, sub)
		}
		return ty.Tuple{Elems: elems}
	default:
		return t
	}
}

// Generalize builds the scheme whose quantifiers are t's free variables at
// a level strictly greater than the current level (spec §4.2).
func (c *Ctx) Generalize(t ty.Ty) *ty.Scheme {
	free := map[int]bool{}
	c.Arena.FreeVars(t, c.level, free)
	vars := make([]int, 0, len(free))
	for v := range free {
		vars = append(vars, v)
	}
	return &ty.Scheme{Vars: vars, Type: c.Arena.Resolve(t)}
}

// Resolve applies the union-find substitution recursively.
func (c *Ctx) Resolve(t ty.Ty) ty.Ty { return c.Arena.Resolve(t) }

// Origin describes where a unification was requested, so a mismatch error
// can explain itself (spec §4.3: "Every failure carries the origin").
type Origin struct {
	Kind string // "binop", "call-arg", "annotation", "if-branch", "builtin", ...
	Span ast.Span
	Note string
}

// Unify unifies a and b, recording a TC001 Mismatch or TC005 OccursCheck
// report (tagged with origin) on failure. Returns the error so callers can
// short-circuit follow-on checks that would only cascade.
func (c *Ctx) Unify(a, b ty.Ty, origin Origin) error {
	err := ty.Unify(c.Arena, a, b)
	if err == nil {
		return nil
	}
	switch e := err.(type) {
	case *ty.OccursError:
		c.addError(errors.NewReport(errors.TC005, "typecheck",
			fmt.Sprintf("infinite type: %s occurs in %s (%s)", e.Var, e.In, origin.Kind)).At(origin.Span))
	default:
		rep := errors.NewReport(errors.TC001, "typecheck",
			fmt.Sprintf("cannot unify %s with %s (%s)", c.Resolve(a), c.Resolve(b), origin.Kind)).At(origin.Span)
		if origin.Note != "" {
			rep = rep.WithData("note", origin.Note)
		}
		c.addError(rep)
	}
	return err
}

func (c *Ctx) addError(r *errors.Report)   { c.Errors = append(c.Errors, r) }
func (c *Ctx) addWarning(r *errors.Report) { c.Warnings = append(c.Warnings, r) }

func phaseOf(code string) string {
	if info, ok := errors.Lookup(code); ok {
		return info.Phase
	}
	return "typecheck"
}

// Error reports a diagnostic directly under the given code/message, for
// checks that aren't unification failures (unbound names, arity, and so
// on).
func (c *Ctx) Error(code, msg string, span ast.Span) {
	c.addError(errors.NewReport(code, phaseOf(code), msg).At(span))
}

// Warning reports a non-fatal diagnostic (NonExhaustiveMatch, RedundantArm,
// NonFirstClauseAnnotation).
func (c *Ctx) Warning(code, msg string, span ast.Span) {
	c.addWarning(errors.NewReport(code, phaseOf(code), msg).At(span))
}

// --- return-type stack (spec §4.2, consulted by Return/Try) ---

func (c *Ctx) PushReturn(t ty.Ty) { c.returnStack = append(c.returnStack, t) }
func (c *Ctx) PopReturn()         { c.returnStack = c.returnStack[:len(c.returnStack)-1] }
func (c *Ctx) CurrentReturn() (ty.Ty, bool) {
	if len(c.returnStack) == 0 {
		return nil, false
	}
	return c.returnStack[len(c.returnStack)-1], true
}

// --- loop depth (spec §4.2, consulted by Break/Continue) ---

func (c *Ctx) EnterLoop() { c.loopDepth++ }
func (c *Ctx) ExitLoop()  { c.loopDepth-- }
func (c *Ctx) InLoop() bool { return c.loopDepth > 0 }

// EnterClosure saves and resets the loop depth so break/continue cannot
// cross a closure boundary (spec §4.8 "Closure"); ExitClosure restores it.
func (c *Ctx) EnterClosure() int {
	saved := c.loopDepth
	c.loopDepth = 0
	return saved
}
func (c *Ctx) ExitClosure(saved int) { c.loopDepth = saved }

// --- tail-call loop header (spec §4.2, consulted by MIR lowering) ---

func (c *Ctx) EnterTailFn(name string) (prev string) {
	prev = c.tailFn
	c.tailFn = name
	return prev
}
func (c *Ctx) ExitTailFn(prev string) { c.tailFn = prev }
func (c *Ctx) TailFn() string         { return c.tailFn }

// --- actor message type (tyenv's __actor_msg_type__ hook) ---

// BindActorScope installs msgTy as the enclosing actor's message type in a
// fresh child scope, for self()/receive to query (spec §4.1).
func BindActorScope(parent *tyenv.Env, msgTy ty.Ty) *tyenv.Env {
	child := parent.Push()
	child.BindActorMsgType(msgTy)
	return child
}

// --- where-clause bookkeeping (spec §4.4) ---

func (c *Ctx) RecordFuncConstraints(fc *FuncConstraints) { c.whereByFunc[fc.Name] = fc }
func (c *Ctx) FuncConstraintsOf(name string) (*FuncConstraints, bool) {
	fc, ok := c.whereByFunc[name]
	return fc, ok
}
