// Package tyenv implements the type environment of spec.md §4.1: a stack of
// scopes mapping identifier to scheme. Modeled on the teacher's
// internal/types/env.go scope-chain, but storing *ty.Scheme (an inference
// scheme over the arena-backed ty.Ty) rather than a teacher-style
// Type/Scheme pair, since unification state now lives in a shared
// *ty.Arena instead of being threaded through as a substitution map.
package tyenv

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// Env is a single scope frame; Push/Pop build a chain via parent.
type Env struct {
	bindings map[string]*ty.Scheme
	parent   *Env
}

// New returns a fresh top-level (builtin) scope.
func New() *Env {
	return &Env{bindings: make(map[string]*ty.Scheme)}
}

// Push opens a new child scope.
func (e *Env) Push() *Env {
	return &Env{bindings: make(map[string]*ty.Scheme), parent: e}
}

// Insert adds or shadows a binding in the top (innermost) frame.
func (e *Env) Insert(name string, s *ty.Scheme) {
	e.bindings[name] = s
}

// Lookup searches innermost-outward.
func (e *Env) Lookup(name string) (*ty.Scheme, bool) {
	for env := e; env != nil; env = env.parent {
		if s, ok := env.bindings[name]; ok {
			return s, true
		}
	}
	return nil, false
}

// ActorMsgTypeKey is the distinguished environment key carrying the message
// type of the enclosing actor, queried by self() and receive (spec §4.1).
const ActorMsgTypeKey = "__actor_msg_type__"

// ActorMsgType reports the message type bound by the nearest enclosing
// actor/service scope, if any.
func (e *Env) ActorMsgType() (ty.Ty, bool) {
	s, ok := e.Lookup(ActorMsgTypeKey)
	if !ok {
		return nil, false
	}
	return s.Type, true
}

// BindActorMsgType installs the message type for an actor body scope.
func (e *Env) BindActorMsgType(t ty.Ty) {
	e.Insert(ActorMsgTypeKey, ty.Mono(t))
}
