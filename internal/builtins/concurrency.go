package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

func jobOf(t ty.Ty) ty.Ty { return ty.App{Base: ty.Con{Name: "Job"}, Args: []ty.Ty{t}} }

// registerJobModule mirrors internal/abi's registerJobFamily
// (mesh_job_async/_await/_await_timeout/_map), generalised over the
// job's result type.
func registerJobModule() {
	register("Job", map[string]*ty.Scheme{
		"async": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{fn(nil, v[0])}, jobOf(v[0])
		}),
		"await": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{jobOf(v[0])}, resultOf(v[0], ty.String)
		}),
		"await_timeout": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{jobOf(v[0]), ty.Int}, resultOf(v[0], ty.String)
		}),
		"map": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{jobOf(v[0]), fn([]ty.Ty{v[0]}, v[1])}, jobOf(v[1])
		}),
	})
}

// registerTimerModule mirrors internal/abi's registerTimerFamily
// (mesh_timer_sleep/mesh_timer_send_after).
func registerTimerModule() {
	register("Timer", map[string]*ty.Scheme{
		"sleep": mono([]ty.Ty{ty.Int}, ty.Unit),
		"send_after": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{opaque("Pid"), ty.Int, v[0]}, opaque("Pid")
		}),
	})
}

// registerNodeProcessGlobalModules covers the distribution surface spec
// §6.2 names directly (mesh_node_*, mesh_process_*, mesh_global_*),
// grounded on the actor primitives' Pid-handle shape in
// registerActorFamily since cluster-distributed processes are addressed
// the same way local actors are.
func registerNodeProcessGlobalModules() {
	pid := opaque("Pid")
	node := opaque("Node")

	register("Node", map[string]*ty.Scheme{
		"self":    mono(nil, node),
		"connect": mono([]ty.Ty{ty.String}, resultOf(node, ty.String)),
		"list":    mono(nil, listOf(node)),
		"name":    mono([]ty.Ty{node}, ty.String),
	})

	register("Process", map[string]*ty.Scheme{
		"whereis":  mono([]ty.Ty{ty.String}, optionOf(pid)),
		"register": mono([]ty.Ty{ty.String, pid}, ty.Unit),
		"alive":    mono([]ty.Ty{pid}, ty.Bool),
	})

	register("Global", map[string]*ty.Scheme{
		"register": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{ty.String, v[0]}, ty.Unit
		}),
		"whereis": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{ty.String}, optionOf(v[0])
		}),
	})
}
