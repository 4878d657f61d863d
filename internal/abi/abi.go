// Package abi declares the runtime intrinsic boundary codegen emits calls
// against: every mesh_* symbol named in the runtime ABI (spec §6.2), with
// enough type information for codegen to insert the boxing/unboxing
// coercions the boundary requires (spec §4.13 "Coercions at intrinsic
// boundaries"). The runtime that implements these symbols lives outside
// this repository; abi is the compiler-side contract against it, grounded
// on the teacher's internal/effects (a fixed effect/capability surface
// enumerated the same declarative way) and internal/runtime (host-call
// names the AILANG evaluator dispatches to).
package abi

import "github.com/snowdamiz/mesh-lang-sub001/internal/mir"

// Intrinsic describes one mesh_* runtime entry point: its name, parameter
// types and return type as codegen needs to type-check and coerce a call
// site against it.
type Intrinsic struct {
	Name   string
	Params []mir.MirType
	Ret    mir.MirType
	Family string // logical grouping, for diagnostics and docs only
}

var (
	tInt    mir.MirType = mir.TInt{}
	tFloat  mir.MirType = mir.TFloat{}
	tBool   mir.MirType = mir.TBool{}
	tString mir.MirType = mir.TString{}
	tUnit   mir.MirType = mir.TUnit{}
	tPtr    mir.MirType = mir.TPtr{}
)

// table is built once in init() from the per-family registrars below so
// that adding a new family never risks silently shadowing an existing
// intrinsic name (reg panics on a duplicate).
var table = map[string]*Intrinsic{}

func reg(name string, family string, params []mir.MirType, ret mir.MirType) {
	if _, exists := table[name]; exists {
		panic("abi: duplicate intrinsic " + name)
	}
	table[name] = &Intrinsic{Name: name, Params: params, Ret: ret, Family: family}
}

func init() {
	registerMemoryAndStringFamily()
	registerPanicPrintFamily()
	registerActorFamily()
	registerServiceFamily()
	registerSupervisorFamily()
	registerTimerFamily()
	registerJobFamily()
	registerListFamily()
	registerMapFamily()
	registerSetFamily()
	registerQueueFamily()
	registerRangeFamily()
	registerTupleFamily()
	registerIteratorFamily()
	registerCoercionFamily()
}

// Lookup returns the declared intrinsic signature for name, if any.
func Lookup(name string) (*Intrinsic, bool) {
	i, ok := table[name]
	return i, ok
}

// All returns every declared intrinsic, sorted by name, for tooling that
// wants to print or iterate the whole ABI surface (e.g. a --list-abi flag).
func All() []*Intrinsic {
	out := make([]*Intrinsic, 0, len(table))
	for _, i := range table {
		out = append(out, i)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1].Name > out[j].Name; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}

// registerMemoryAndStringFamily is spec §6.2 "Memory & strings".
func registerMemoryAndStringFamily() {
	reg("mesh_gc_alloc_actor", "memory", []mir.MirType{tInt, tInt}, tPtr)
	reg("mesh_string_new", "string", []mir.MirType{tPtr, tInt}, tString)
	reg("mesh_string_concat", "string", []mir.MirType{tString, tString}, tString)
	reg("mesh_string_eq", "string", []mir.MirType{tString, tString}, tBool)
	reg("mesh_string_length", "string", []mir.MirType{tString}, tInt)
	reg("mesh_string_slice", "string", []mir.MirType{tString, tInt, tInt}, tString)
	reg("mesh_string_contains", "string", []mir.MirType{tString, tString}, tBool)
	reg("mesh_string_starts_with", "string", []mir.MirType{tString, tString}, tBool)
	reg("mesh_string_ends_with", "string", []mir.MirType{tString, tString}, tBool)
	reg("mesh_string_trim", "string", []mir.MirType{tString}, tString)
	reg("mesh_string_to_upper", "string", []mir.MirType{tString}, tString)
	reg("mesh_string_to_lower", "string", []mir.MirType{tString}, tString)
	reg("mesh_string_replace", "string", []mir.MirType{tString, tString, tString}, tString)
	reg("mesh_string_split", "string", []mir.MirType{tString, tString}, tPtr)
	reg("mesh_string_join", "string", []mir.MirType{tPtr, tString}, tString)
	reg("mesh_string_to_int", "string", []mir.MirType{tString}, tPtr)
	reg("mesh_string_to_float", "string", []mir.MirType{tString}, tPtr)
	reg("mesh_int_to_string", "string", []mir.MirType{tInt}, tString)
	reg("mesh_float_to_string", "string", []mir.MirType{tFloat}, tString)
	reg("mesh_bool_to_string", "string", []mir.MirType{tBool}, tString)
}

// registerPanicPrintFamily is spec §6.2 "Panic/print".
func registerPanicPrintFamily() {
	reg("mesh_panic", "panic", []mir.MirType{tPtr, tInt, tPtr, tInt, tInt}, mir.TNever{})
	reg("mesh_print", "panic", []mir.MirType{tString}, tUnit)
	reg("mesh_println", "panic", []mir.MirType{tString}, tUnit)
	reg("mesh_io_eprintln", "panic", []mir.MirType{tString}, tUnit)
	reg("mesh_io_read_line", "panic", nil, tString)
}

// registerActorFamily is spec §6.2 "Actor primitives".
func registerActorFamily() {
	reg("mesh_actor_spawn", "actor", []mir.MirType{tPtr, tPtr, tInt, tInt}, tPtr)
	reg("mesh_actor_send", "actor", []mir.MirType{tPtr, tPtr, tInt}, tUnit)
	reg("mesh_actor_receive", "actor", []mir.MirType{tInt}, tPtr)
	reg("mesh_actor_self", "actor", nil, tPtr)
	reg("mesh_actor_link", "actor", []mir.MirType{tPtr}, tUnit)
	reg("mesh_reduction_check", "actor", nil, tUnit)
	reg("mesh_actor_set_terminate", "actor", []mir.MirType{tPtr, tPtr}, tUnit)
	reg("mesh_actor_exit", "actor", []mir.MirType{tPtr, tString}, tUnit)
	reg("mesh_actor_trap_exit", "actor", nil, tUnit)
}

// registerServiceFamily is spec §6.2 "Services".
func registerServiceFamily() {
	reg("mesh_service_call", "service", []mir.MirType{tPtr, tInt, tPtr, tInt}, tPtr)
	reg("mesh_service_reply", "service", []mir.MirType{tPtr, tPtr, tInt}, tUnit)
}

// registerSupervisorFamily is spec §6.2 "Supervisor".
func registerSupervisorFamily() {
	reg("mesh_supervisor_start", "supervisor", []mir.MirType{tPtr, tInt}, tPtr)
}

// registerTimerFamily is spec §6.2 "Timers".
func registerTimerFamily() {
	reg("mesh_timer_sleep", "timer", []mir.MirType{tInt}, tUnit)
	reg("mesh_timer_send_after", "timer", []mir.MirType{tPtr, tInt, tPtr, tInt}, tPtr)
}

// registerJobFamily is spec §6.2 "Jobs".
func registerJobFamily() {
	reg("mesh_job_async", "job", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_job_await", "job", []mir.MirType{tPtr}, tPtr)
	reg("mesh_job_await_timeout", "job", []mir.MirType{tPtr, tInt}, tPtr)
	reg("mesh_job_map", "job", []mir.MirType{tPtr, tPtr}, tPtr)
}

// collectionOps is the common suffix set spec §6.2 lists for
// mesh_list_* and asks to be mirrored ("analogous families") onto the
// other collection intrinsic families.
func collectionOps(prefix string, ops map[string][]mir.MirType, rets map[string]mir.MirType, family string) {
	for op, params := range ops {
		reg(prefix+op, family, params, rets[op])
	}
}

func registerListFamily() {
	ops := map[string][]mir.MirType{
		"_new": nil, "_length": {tPtr}, "_append": {tPtr, tPtr}, "_head": {tPtr},
		"_tail": {tPtr}, "_get": {tPtr, tInt}, "_concat": {tPtr, tPtr},
		"_reverse": {tPtr}, "_map": {tPtr, tPtr}, "_filter": {tPtr, tPtr},
		"_reduce": {tPtr, tPtr, tPtr}, "_from_array": {tPtr, tInt},
		"_builder_new": nil, "_builder_push": {tPtr, tPtr}, "_sort": {tPtr, tPtr},
		"_find": {tPtr, tPtr}, "_any": {tPtr, tPtr}, "_all": {tPtr, tPtr},
		"_contains": {tPtr, tPtr}, "_zip": {tPtr, tPtr}, "_flat_map": {tPtr, tPtr},
		"_flatten": {tPtr}, "_enumerate": {tPtr}, "_take": {tPtr, tInt},
		"_drop": {tPtr, tInt}, "_last": {tPtr}, "_nth": {tPtr, tInt},
	}
	rets := map[string]mir.MirType{
		"_new": tPtr, "_length": tInt, "_append": tPtr, "_head": tPtr, "_tail": tPtr,
		"_get": tPtr, "_concat": tPtr, "_reverse": tPtr, "_map": tPtr, "_filter": tPtr,
		"_reduce": tPtr, "_from_array": tPtr, "_builder_new": tPtr, "_builder_push": tPtr,
		"_sort": tPtr, "_find": tPtr, "_any": tBool, "_all": tBool, "_contains": tBool,
		"_zip": tPtr, "_flat_map": tPtr, "_flatten": tPtr, "_enumerate": tPtr,
		"_take": tPtr, "_drop": tPtr, "_last": tPtr, "_nth": tPtr,
	}
	collectionOps("mesh_list", ops, rets, "list")
}

func registerMapFamily() {
	reg("mesh_map_new", "map", nil, tPtr)
	reg("mesh_map_length", "map", []mir.MirType{tPtr}, tInt)
	reg("mesh_map_get", "map", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_map_put", "map", []mir.MirType{tPtr, tPtr, tPtr}, tPtr)
	reg("mesh_map_remove", "map", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_map_contains", "map", []mir.MirType{tPtr, tPtr}, tBool)
	reg("mesh_map_keys", "map", []mir.MirType{tPtr}, tPtr)
	reg("mesh_map_values", "map", []mir.MirType{tPtr}, tPtr)
	reg("mesh_map_merge", "map", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_map_map", "map", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_map_filter", "map", []mir.MirType{tPtr, tPtr}, tPtr)
}

func registerSetFamily() {
	reg("mesh_set_new", "set", nil, tPtr)
	reg("mesh_set_length", "set", []mir.MirType{tPtr}, tInt)
	reg("mesh_set_add", "set", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_set_remove", "set", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_set_contains", "set", []mir.MirType{tPtr, tPtr}, tBool)
	reg("mesh_set_union", "set", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_set_intersect", "set", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_set_diff", "set", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_set_to_list", "set", []mir.MirType{tPtr}, tPtr)
}

func registerQueueFamily() {
	reg("mesh_queue_new", "queue", nil, tPtr)
	reg("mesh_queue_length", "queue", []mir.MirType{tPtr}, tInt)
	reg("mesh_queue_push", "queue", []mir.MirType{tPtr, tPtr}, tPtr)
	reg("mesh_queue_pop", "queue", []mir.MirType{tPtr}, tPtr)
	reg("mesh_queue_peek", "queue", []mir.MirType{tPtr}, tPtr)
}

func registerRangeFamily() {
	reg("mesh_range_new", "range", []mir.MirType{tInt, tInt}, tPtr)
	reg("mesh_range_length", "range", []mir.MirType{tPtr}, tInt)
	reg("mesh_range_iter_new", "range", []mir.MirType{tPtr}, tPtr)
	reg("mesh_range_iter_next", "range", []mir.MirType{tPtr}, tPtr)
}

func registerTupleFamily() {
	reg("mesh_tuple_new", "tuple", []mir.MirType{tInt}, tPtr)
	reg("mesh_tuple_get", "tuple", []mir.MirType{tPtr, tInt}, tPtr)
	reg("mesh_tuple_length", "tuple", []mir.MirType{tPtr}, tInt)
}

// registerIteratorFamily is spec §6.2 "Iterators": per-collection
// iter_new/_next returning a MeshOption-shaped pointer, plus the shared
// combinator and terminal/collector surface.
func registerIteratorFamily() {
	for _, coll := range []string{"list", "map", "set"} {
		reg("mesh_"+coll+"_iter_new", "iterator", []mir.MirType{tPtr}, tPtr)
		reg("mesh_"+coll+"_iter_next", "iterator", []mir.MirType{tPtr}, tPtr)
	}
	for _, comb := range []string{"map", "filter", "take", "skip", "enumerate", "zip"} {
		reg("mesh_iter_"+comb, "iterator", []mir.MirType{tPtr, tPtr}, tPtr)
	}
	for _, term := range []string{"count", "sum", "any", "all", "find", "reduce"} {
		reg("mesh_iter_"+term, "iterator", []mir.MirType{tPtr, tPtr}, tPtr)
	}
	for _, coll := range []string{"list", "map", "set", "string"} {
		reg("mesh_"+coll+"_collect", "iterator", []mir.MirType{tPtr}, tPtr)
	}
}

// registerCoercionFamily declares the box/unbox pairs codegen inserts at an
// intrinsic call boundary whenever a primitive value crosses into the
// runtime's uniform i64 collection-slot representation and back
// (spec §4.13 "Uniform list element representation" / "Coercions at
// intrinsic boundaries").
func registerCoercionFamily() {
	prims := []struct {
		name string
		t    mir.MirType
	}{
		{"int", tInt}, {"float", tFloat}, {"bool", tBool}, {"string", tString},
	}
	for _, p := range prims {
		reg("mesh_box_"+p.name, "coercion", []mir.MirType{p.t}, tPtr)
		reg("mesh_unbox_"+p.name, "coercion", []mir.MirType{tPtr}, p.t)
	}
}
