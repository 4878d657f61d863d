package ast

import (
	"fmt"
	"strings"
)

// This file extends the base grammar (ast.go) with the node kinds that are
// specific to mesh: pattern exhaustiveness needs Or/As patterns, traits need
// where-clauses and associated types, and actors/services/supervisors need
// their own declaration and expression forms (spec.md §4.9, §6.1).

// OrPattern matches if any alternative matches. All alternatives must bind
// the same set of names (spec §4.5 / OrPatternBindingMismatch).
type OrPattern struct {
	Alternatives []Pattern
	Pos          Pos
}

func (o *OrPattern) String() string {
	alts := make([]string, len(o.Alternatives))
	for i, a := range o.Alternatives {
		alts[i] = a.String()
	}
	return strings.Join(alts, " | ")
}
func (o *OrPattern) Position() Pos { return o.Pos }
func (o *OrPattern) patternNode()  {}

// AsPattern binds Name to whatever Inner matches, in addition to Inner's own
// bindings.
type AsPattern struct {
	Inner Pattern
	Name  string
	Pos   Pos
}

func (a *AsPattern) String() string { return fmt.Sprintf("%s as %s", a.Inner, a.Name) }
func (a *AsPattern) Position() Pos  { return a.Pos }
func (a *AsPattern) patternNode()   {}

// WhereConstraint is one `T: Trait` entry of a function's where-clause
// (spec §4.4 "Where-clause enforcement").
type WhereConstraint struct {
	TypeParam string
	Trait     string
	Pos       Pos
}

// Pipe desugars `lhs |> rhs` (spec §4.8).
type Pipe struct {
	Lhs Expr
	Rhs Expr
	Pos Pos
}

func (p *Pipe) String() string { return fmt.Sprintf("%s |> %s", p.Lhs, p.Rhs) }
func (p *Pipe) Position() Pos  { return p.Pos }
func (p *Pipe) exprNode()      {}

// Try desugars `e?` (spec §4.8 "Try").
type Try struct {
	Operand Expr
	Pos     Pos
}

func (t *Try) String() string { return fmt.Sprintf("%s?", t.Operand) }
func (t *Try) Position() Pos  { return t.Pos }
func (t *Try) exprNode()      {}

// Return is an explicit early return; its type is Never.
type Return struct {
	Value Expr // nil means return unit
	Pos   Pos
}

func (r *Return) String() string { return fmt.Sprintf("return %s", r.Value) }
func (r *Return) Position() Pos  { return r.Pos }
func (r *Return) exprNode()      {}

// Panic is the explicit panic(msg) form lowered to MIR's Panic node
// (spec §4.13).
type Panic struct {
	Message Expr
	Pos     Pos
}

func (p *Panic) String() string { return fmt.Sprintf("panic(%s)", p.Message) }
func (p *Panic) Position() Pos  { return p.Pos }
func (p *Panic) exprNode()      {}

// While is a condition-guarded loop; its type is Unit.
type While struct {
	Cond Expr
	Body Expr
	Pos  Pos
}

func (w *While) String() string { return fmt.Sprintf("while %s do %s", w.Cond, w.Body) }
func (w *While) Position() Pos  { return w.Pos }
func (w *While) exprNode()      {}

// ForKind distinguishes the iterable shape a for-in loop binds over
// (spec §4.8 "For-in").
type ForKind int

const (
	ForRange ForKind = iota
	ForList
	ForMap
	ForSet
	ForIterator
)

// For is a comprehension-style for-in loop. For ForMap, Binder holds the key
// name and Binder2 the value name (the two-name destructuring spec §4.8
// requires); for other kinds only Binder is used. Filter is the optional
// guard clause evaluated per-iteration; the loop's overall type is
// `List<body type>`.
type For struct {
	Kind     ForKind
	Binder   string
	Binder2  string // only used when Kind == ForMap
	Iterable Expr
	Filter   Expr // optional
	Body     Expr
	Pos      Pos
}

func (f *For) String() string { return fmt.Sprintf("for %s in %s do %s", f.Binder, f.Iterable, f.Body) }
func (f *For) Position() Pos  { return f.Pos }
func (f *For) exprNode()      {}

// Break and Continue are only valid inside a loop construct within the same
// function body (spec §3.4 invariant (c)); their type is Never.
type Break struct{ Pos Pos }

func (b *Break) String() string { return "break" }
func (b *Break) Position() Pos  { return b.Pos }
func (b *Break) exprNode()      {}

type Continue struct{ Pos Pos }

func (c *Continue) String() string { return "continue" }
func (c *Continue) Position() Pos  { return c.Pos }
func (c *Continue) exprNode()      {}

// --- Actors (spec §4.9) ---

// ActorDecl is `actor name(state params) do ... receive do ... end ... end`.
type ActorDecl struct {
	Name        string
	StateParams []*Param
	Body        Expr // a Block; must contain exactly the actor's receive loop
	Pos         Pos
	Span        Span
}

func (a *ActorDecl) String() string { return fmt.Sprintf("actor %s", a.Name) }
func (a *ActorDecl) Position() Pos  { return a.Pos }
func (a *ActorDecl) stmtNode()      {}

// Spawn lowers to MIR's ActorSpawn (spec §4.12).
type Spawn struct {
	Func      Expr // the actor function being spawned
	Args      []Expr
	Priority  Expr // optional
	Terminate Expr // optional terminate callback
	Pos       Pos
}

func (s *Spawn) String() string { return fmt.Sprintf("spawn(%s, ...)", s.Func) }
func (s *Spawn) Position() Pos  { return s.Pos }
func (s *Spawn) exprNode()      {}

// ActorSend is `send(target, msg)`.
type ActorSend struct {
	Target  Expr
	Message Expr
	Pos     Pos
}

func (s *ActorSend) String() string { return fmt.Sprintf("send(%s, %s)", s.Target, s.Message) }
func (s *ActorSend) Position() Pos  { return s.Pos }
func (s *ActorSend) exprNode()      {}

// Receive is the actor mailbox primitive; After is optional timeout handling.
type Receive struct {
	Arms  []*Case
	After *AfterClause // optional
	Pos   Pos
}

type AfterClause struct {
	TimeoutMs Expr
	Body      Expr
	Pos       Pos
}

func (r *Receive) String() string { return fmt.Sprintf("receive (%d arms)", len(r.Arms)) }
func (r *Receive) Position() Pos  { return r.Pos }
func (r *Receive) exprNode()      {}

// SelfRef is `self()`; only valid lexically inside an actor body.
type SelfRef struct{ Pos Pos }

func (s *SelfRef) String() string { return "self()" }
func (s *SelfRef) Position() Pos  { return s.Pos }
func (s *SelfRef) exprNode()      {}

// Link is `link(pid)`.
type Link struct {
	Target Expr
	Pos    Pos
}

func (l *Link) String() string { return fmt.Sprintf("link(%s)", l.Target) }
func (l *Link) Position() Pos  { return l.Pos }
func (l *Link) exprNode()      {}

// --- Services (spec §4.9) ---

// ServiceDecl is a typed RPC actor with explicit state.
type ServiceDecl struct {
	Name         string
	Init         *FuncDecl // zero-arg-or-more function producing initial state
	CallHandlers []*CallHandler
	CastHandlers []*CastHandler
	Pos          Pos
	Span         Span
}

func (s *ServiceDecl) String() string { return fmt.Sprintf("service %s", s.Name) }
func (s *ServiceDecl) Position() Pos  { return s.Pos }
func (s *ServiceDecl) stmtNode()      {}

// CallHandler is `call Name(params) :: ReplyTy do body end`; body must
// evaluate to `(new_state, reply)`.
type CallHandler struct {
	Name      string
	Params    []*Param
	ReplyType Type
	Body      Expr
	Pos       Pos
}

// CastHandler is `cast Name(params) do body end`; body must evaluate to the
// new state.
type CastHandler struct {
	Name   string
	Params []*Param
	Body   Expr
	Pos    Pos
}

// --- Supervisors (spec §4.9) ---

// SupervisorDecl validates strategy/budget/children at compile time.
type SupervisorDecl struct {
	Name        string
	Strategy    string // one_for_one | one_for_all | rest_for_one | simple_one_for_one
	MaxRestarts int
	MaxSeconds  int
	Children    []*ChildSpec
	Pos         Pos
	Span        Span
}

func (s *SupervisorDecl) String() string { return fmt.Sprintf("supervisor %s", s.Name) }
func (s *SupervisorDecl) Position() Pos  { return s.Pos }
func (s *SupervisorDecl) stmtNode()      {}

// ChildSpec is one `child { ... }` entry.
type ChildSpec struct {
	Name     string
	Start    Expr   // must syntactically contain a Spawn subexpression
	Restart  string // permanent | transient | temporary
	Shutdown Expr   // positive int literal, or the identifier brutal_kill
	Type     string // worker | supervisor
	Pos      Pos
}
