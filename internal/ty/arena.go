package ty

// Arena owns every inference variable's union-find slot and generalisation
// level, keyed by integer id (spec §9: "Implement with an arena of variable
// descriptors keyed by integer id; path compression mutates the arena but
// never invalidates outstanding TyVar ids.").
type Arena struct {
	parent []int // parent[i] == i means i is its own representative
	level  []int
	link   []Ty // non-nil once the variable has been unified with a concrete type or another variable
}

// NewArena returns an empty variable arena.
func NewArena() *Arena {
	return &Arena{}
}

// Fresh allocates a new variable at the given level.
func (a *Arena) Fresh(level int) Var {
	id := len(a.parent)
	a.parent = append(a.parent, id)
	a.level = append(a.level, level)
	a.link = append(a.link, nil)
	return Var{ID: id}
}

// Level returns the current level recorded for variable id after path
// compression.
func (a *Arena) Level(id int) int {
	return a.level[a.find(id)]
}

// find returns the representative of id's union-find set, compressing the
// path as it walks up.
func (a *Arena) find(id int) int {
	root := id
	for a.parent[root] != root {
		root = a.parent[root]
	}
	for a.parent[id] != root {
		next := a.parent[id]
		a.parent[id] = root
		id = next
	}
	return root
}

// Resolved returns the type linked to variable id, if any, and whether one
// exists. It does not recurse into that type's own free variables — callers
// should use Resolve for that.
func (a *Arena) Resolved(id int) (Ty, bool) {
	root := a.find(id)
	if a.link[root] == nil {
		return nil, false
	}
	return a.link[root], true
}

// link the variable rooted at id to target, lowering the level of every
// variable free in target that exceeds id's level (spec §4.3 "Level
// lowering" / §9).
func (a *Arena) setLink(id int, target Ty) {
	root := a.find(id)
	lvl := a.level[root]
	a.lowerLevels(target, lvl)
	a.link[root] = target
}

// union links two distinct, still-unresolved variables, keeping the lower
// level as the representative's level so generalisation stays sound.
func (a *Arena) union(idA, idB int) {
	rootA, rootB := a.find(idA), a.find(idB)
	if rootA == rootB {
		return
	}
	if a.level[rootA] > a.level[rootB] {
		rootA, rootB = rootB, rootA
	}
	a.parent[rootB] = rootA
	if a.level[rootB] < a.level[rootA] {
		a.level[rootA] = a.level[rootB]
	}
}

// lowerLevels walks t's free variables and clamps any whose level exceeds
// maxLevel down to it.
func (a *Arena) lowerLevels(t Ty, maxLevel int) {
	switch n := t.(type) {
	case Var:
		root := a.find(n.ID)
		if a.link[root] != nil {
			a.lowerLevels(a.link[root], maxLevel)
			return
		}
		if a.level[root] > maxLevel {
			a.level[root] = maxLevel
		}
	case App:
		a.lowerLevels(n.Base, maxLevel)
		for _, arg := range n.Args {
			a.lowerLevels(arg, maxLevel)
		}
	case Fun:
		for _, p := range n.Params {
			a.lowerLevels(p, maxLevel)
		}
		a.lowerLevels(n.Ret, maxLevel)
	case Tuple:
		for _, e := range n.Elems {
			a.lowerLevels(e, maxLevel)
		}
	}
}

// Resolve applies the union-find substitution recursively, producing a type
// with no remaining resolved variables (unresolved variables are left as
// Var).
func (a *Arena) Resolve(t Ty) Ty {
	switch n := t.(type) {
	case Var:
		root := a.find(n.ID)
		if a.link[root] != nil {
			resolved := a.Resolve(a.link[root])
			a.link[root] = resolved // path-compress the resolution too
			return resolved
		}
		return Var{ID: root}
	case App:
		args := make([]Ty, len(n.Args))
		for i, arg := range n.Args {
			args[i] = a.Resolve(arg)
		}
		return App{Base: a.Resolve(n.Base), Args: args}
	case Fun:
		params := make([]Ty, len(n.Params))
		for i, p := range n.Params {
			params[i] = a.Resolve(p)
		}
		return Fun{Params: params, Ret: a.Resolve(n.Ret)}
	case Tuple:
		elems := make([]Ty, len(n.Elems))
		for i, e := range n.Elems {
			elems[i] = a.Resolve(e)
		}
		return Tuple{Elems: elems}
	default:
		return t
	}
}

// FreeVars collects the free variable ids of t (after resolving through the
// arena), above the given level threshold, into out. Used by generalize.
func (a *Arena) FreeVars(t Ty, aboveLevel int, out map[int]bool) {
	switch n := a.Resolve(t).(type) {
	case Var:
		if a.find(n.ID) == n.ID && a.level[n.ID] > aboveLevel {
			out[n.ID] = true
		} else if a.level[a.find(n.ID)] > aboveLevel {
			out[a.find(n.ID)] = true
		}
	case App:
		a.FreeVars(n.Base, aboveLevel, out)
		for _, arg := range n.Args {
			a.FreeVars(arg, aboveLevel, out)
		}
	case Fun:
		for _, p := range n.Params {
			a.FreeVars(p, aboveLevel, out)
		}
		a.FreeVars(n.Ret, aboveLevel, out)
	case Tuple:
		for _, e := range n.Elems {
			a.FreeVars(e, aboveLevel, out)
		}
	}
}
