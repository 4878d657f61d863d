package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// registerListModule mirrors internal/abi's mesh_list_* family
// (registerListFamily's collectionOps suffix set), generalised over a
// synthetic element variable per method since List<T> is polymorphic in T
// while the ABI itself only ever sees the uniform Ptr element slot.
func registerListModule() {
	methods := map[string]*ty.Scheme{
		"new": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return nil, listOf(v[0])
		}),
		"length": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0])}, ty.Int
		}),
		"append": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), v[0]}, listOf(v[0])
		}),
		"head": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0])}, optionOf(v[0])
		}),
		"tail": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0])}, listOf(v[0])
		}),
		"get": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), ty.Int}, optionOf(v[0])
		}),
		"concat": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), listOf(v[0])}, listOf(v[0])
		}),
		"reverse": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0])}, listOf(v[0])
		}),
		"map": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0]}, v[1])}, listOf(v[1])
		}),
		"filter": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, listOf(v[0])
		}),
		"reduce": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), v[1], fn([]ty.Ty{v[1], v[0]}, v[1])}, v[1]
		}),
		"sort": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0], v[0]}, ty.Int)}, listOf(v[0])
		}),
		"find": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, optionOf(v[0])
		}),
		"any": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, ty.Bool
		}),
		"all": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, ty.Bool
		}),
		"contains": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), v[0]}, ty.Bool
		}),
		"zip": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), listOf(v[1])}, listOf(tupleOf(v[0], v[1]))
		}),
		"flat_map": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), fn([]ty.Ty{v[0]}, listOf(v[1]))}, listOf(v[1])
		}),
		"flatten": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(listOf(v[0]))}, listOf(v[0])
		}),
		"enumerate": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0])}, listOf(tupleOf(ty.Int, v[0]))
		}),
		"take": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), ty.Int}, listOf(v[0])
		}),
		"drop": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), ty.Int}, listOf(v[0])
		}),
		"last": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0])}, optionOf(v[0])
		}),
		"nth": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{listOf(v[0]), ty.Int}, optionOf(v[0])
		}),
	}
	register("List", methods)
}

// registerMapModule mirrors registerMapFamily.
func registerMapModule() {
	register("Map", map[string]*ty.Scheme{
		"new": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return nil, mapOf(v[0], v[1])
		}),
		"length": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1])}, ty.Int
		}),
		"get": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), v[0]}, optionOf(v[1])
		}),
		"put": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), v[0], v[1]}, mapOf(v[0], v[1])
		}),
		"remove": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), v[0]}, mapOf(v[0], v[1])
		}),
		"contains": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), v[0]}, ty.Bool
		}),
		"keys": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1])}, listOf(v[0])
		}),
		"values": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1])}, listOf(v[1])
		}),
		"merge": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), mapOf(v[0], v[1])}, mapOf(v[0], v[1])
		}),
		"map": poly(3, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), fn([]ty.Ty{v[0], v[1]}, v[2])}, mapOf(v[0], v[2])
		}),
		"filter": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{mapOf(v[0], v[1]), fn([]ty.Ty{v[0], v[1]}, ty.Bool)}, mapOf(v[0], v[1])
		}),
	})
}

// registerSetModule mirrors registerSetFamily.
func registerSetModule() {
	register("Set", map[string]*ty.Scheme{
		"new": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return nil, setOf(v[0])
		}),
		"length": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0])}, ty.Int
		}),
		"add": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0]), v[0]}, setOf(v[0])
		}),
		"remove": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0]), v[0]}, setOf(v[0])
		}),
		"contains": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0]), v[0]}, ty.Bool
		}),
		"union": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0]), setOf(v[0])}, setOf(v[0])
		}),
		"intersect": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0]), setOf(v[0])}, setOf(v[0])
		}),
		"diff": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0]), setOf(v[0])}, setOf(v[0])
		}),
		"to_list": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{setOf(v[0])}, listOf(v[0])
		}),
	})
}

// registerQueueModule mirrors registerQueueFamily.
func registerQueueModule() {
	register("Queue", map[string]*ty.Scheme{
		"new": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return nil, queueOf(v[0])
		}),
		"length": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{queueOf(v[0])}, ty.Int
		}),
		"push": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{queueOf(v[0]), v[0]}, queueOf(v[0])
		}),
		"pop": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{queueOf(v[0])}, optionOf(tupleOf(v[0], queueOf(v[0])))
		}),
		"peek": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{queueOf(v[0])}, optionOf(v[0])
		}),
	})
}

// registerRangeModule mirrors registerRangeFamily; Range is non-generic
// (always a range of Int), matching mesh_range_new(i64,i64).
func registerRangeModule() {
	register("Range", map[string]*ty.Scheme{
		"new":    mono([]ty.Ty{ty.Int, ty.Int}, rangeTy()),
		"length": mono([]ty.Ty{rangeTy()}, ty.Int),
	})
}

// registerTupleModule mirrors registerTupleFamily's new/get/length; tuple
// arity and element types are fixed by the surface syntax, so these schemes
// operate on the already-resolved opaque Ptr representation.
func registerTupleModule() {
	register("Tuple", map[string]*ty.Scheme{
		"new":    mono([]ty.Ty{ty.Int}, opaque("Tuple")),
		"get":    mono([]ty.Ty{opaque("Tuple"), ty.Int}, opaque("Dyn")),
		"length": mono([]ty.Ty{opaque("Tuple")}, ty.Int),
	})
}

// registerIterModule mirrors registerIteratorFamily: the combinator and
// terminal surface shared by every collection's iterator (spec §6.2
// "Iterators"). Iter.next returns Option<T> over the MeshOption wire shape
// abi.go's mesh_{list,map,set}_iter_next intrinsics describe.
func registerIterModule() {
	iterOf := func(t ty.Ty) ty.Ty { return ty.App{Base: ty.Con{Name: "Iter"}, Args: []ty.Ty{t}} }
	register("Iter", map[string]*ty.Scheme{
		"next": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0])}, optionOf(v[0])
		}),
		"map": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), fn([]ty.Ty{v[0]}, v[1])}, iterOf(v[1])
		}),
		"filter": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, iterOf(v[0])
		}),
		"take": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), ty.Int}, iterOf(v[0])
		}),
		"skip": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), ty.Int}, iterOf(v[0])
		}),
		"enumerate": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0])}, iterOf(tupleOf(ty.Int, v[0]))
		}),
		"zip": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), iterOf(v[1])}, iterOf(tupleOf(v[0], v[1]))
		}),
		"count": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0])}, ty.Int
		}),
		"sum": mono([]ty.Ty{iterOf(ty.Int)}, ty.Int),
		"any": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, ty.Bool
		}),
		"all": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, ty.Bool
		}),
		"find": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), fn([]ty.Ty{v[0]}, ty.Bool)}, optionOf(v[0])
		}),
		"reduce": poly(2, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0]), v[1], fn([]ty.Ty{v[1], v[0]}, v[1])}, v[1]
		}),
		"collect_list": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0])}, listOf(v[0])
		}),
		"collect_set": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{iterOf(v[0])}, setOf(v[0])
		}),
	})
}
