// Package builtins is the static built-in module table (spec.md §6.3): a
// module name -> method name -> scheme map consulted both by
// `from Module import x` and by bare `Module.method` field access.
// Modules cover String, List, Map, Set, Tuple, Range, Queue, IO, File, Env,
// JSON, Request, HTTP, Job, Math, Int, Float, Timer, Sqlite, Pg, Pool, Node,
// Process, Global, Ws, and Iter.
//
// Every method scheme here mirrors the checker-level signature of the
// runtime intrinsic internal/abi declares for it, so a builtin call's
// surface-level type and its eventual codegen-time ABI coercion always
// agree on arity and direction. Grounded on the teacher's
// internal/builtins/registry.go (a flat name -> metadata table built by one
// register*Meta() function per family) and internal/link/builtin_module.go
// (the module-shaped lookup surface `from M import x` needs), retargeted
// from untyped call metadata to full ty.Scheme values.
package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// Modules is module name -> method name -> scheme. Built once at init time
// by the per-module register functions in the other files of this package.
var Modules = map[string]map[string]*ty.Scheme{}

// synthVar allocates the next reserved synthetic type variable id for a
// polymorphic builtin scheme. IDs count down from -1 so they can never
// collide with a real arena-allocated variable id, which is always >= 0
// (spec §6.3: "synthetic type variables reserved outside the user's
// variable id range").
var synthCounter = 0

func synthVar() ty.Ty {
	synthCounter--
	return ty.Var{ID: synthCounter}
}

// mono builds a non-generic method scheme.
func mono(params []ty.Ty, ret ty.Ty) *ty.Scheme {
	return ty.Mono(ty.Fun{Params: params, Ret: ret})
}

// poly builds a scheme generalised over the type variables build returns
// alongside the function type; build is handed fresh synthetic variables
// to thread through its params/ret.
func poly(n int, build func(vars []ty.Ty) ([]ty.Ty, ty.Ty)) *ty.Scheme {
	vars := make([]ty.Ty, n)
	ids := make([]int, n)
	for i := range vars {
		v := synthVar()
		vars[i] = v
		ids[i] = v.(ty.Var).ID
	}
	params, ret := build(vars)
	return &ty.Scheme{Vars: ids, Type: ty.Fun{Params: params, Ret: ret}}
}

func listOf(elem ty.Ty) ty.Ty  { return ty.App{Base: ty.Con{Name: "List"}, Args: []ty.Ty{elem}} }
func mapOf(k, v ty.Ty) ty.Ty   { return ty.App{Base: ty.Con{Name: "Map"}, Args: []ty.Ty{k, v}} }
func setOf(elem ty.Ty) ty.Ty   { return ty.App{Base: ty.Con{Name: "Set"}, Args: []ty.Ty{elem}} }
func queueOf(elem ty.Ty) ty.Ty { return ty.App{Base: ty.Con{Name: "Queue"}, Args: []ty.Ty{elem}} }
func rangeTy() ty.Ty           { return ty.Con{Name: "Range"} }
func optionOf(elem ty.Ty) ty.Ty {
	return ty.App{Base: ty.Con{Name: "Option"}, Args: []ty.Ty{elem}}
}
func resultOf(ok, errTy ty.Ty) ty.Ty {
	return ty.App{Base: ty.Con{Name: "Result"}, Args: []ty.Ty{ok, errTy}}
}
func fn(params []ty.Ty, ret ty.Ty) ty.Ty { return ty.Fun{Params: params, Ret: ret} }
func tupleOf(elems ...ty.Ty) ty.Ty        { return ty.Tuple{Elems: elems} }
func opaque(name string) ty.Ty            { return ty.Con{Name: name} }

func register(module string, methods map[string]*ty.Scheme) {
	Modules[module] = methods
}

func init() {
	registerStringModule()
	registerListModule()
	registerMapModule()
	registerSetModule()
	registerTupleModule()
	registerRangeModule()
	registerQueueModule()
	registerIterModule()
	registerIOModule()
	registerFileModule()
	registerEnvModule()
	registerJSONModule()
	registerRequestHTTPModules()
	registerJobModule()
	registerMathIntFloatModules()
	registerTimerModule()
	registerSqlitePgPoolModules()
	registerNodeProcessGlobalModules()
	registerWsModule()
}

// Lookup resolves Module.method against the built-in table.
func Lookup(module, method string) (*ty.Scheme, bool) {
	members, ok := Modules[module]
	if !ok {
		return nil, false
	}
	s, ok := members[method]
	return s, ok
}

// Has reports whether module names a registered built-in module (spec §6.3
// lists "JSON"/"Json" as synonyms, both registered directly).
func Has(module string) bool {
	_, ok := Modules[module]
	return ok
}

// Names lists every method name exported by module, for diagnostics.
func Names(module string) []string {
	members := Modules[module]
	out := make([]string, 0, len(members))
	for name := range members {
		out = append(out, name)
	}
	return out
}
