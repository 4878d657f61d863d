package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// registerStringModule mirrors the mesh_string_* family in
// internal/abi/abi.go's registerMemoryAndStringFamily one-for-one: every
// String.method below has the exact param/return shape of the mesh_*
// intrinsic codegen will eventually lower it to.
func registerStringModule() {
	intErr := resultOf(ty.Int, ty.String)
	floatErr := resultOf(ty.Float, ty.String)
	register("String", map[string]*ty.Scheme{
		"length":      mono([]ty.Ty{ty.String}, ty.Int),
		"concat":      mono([]ty.Ty{ty.String, ty.String}, ty.String),
		"eq":          mono([]ty.Ty{ty.String, ty.String}, ty.Bool),
		"slice":       mono([]ty.Ty{ty.String, ty.Int, ty.Int}, ty.String),
		"contains":    mono([]ty.Ty{ty.String, ty.String}, ty.Bool),
		"starts_with": mono([]ty.Ty{ty.String, ty.String}, ty.Bool),
		"ends_with":   mono([]ty.Ty{ty.String, ty.String}, ty.Bool),
		"trim":        mono([]ty.Ty{ty.String}, ty.String),
		"to_upper":    mono([]ty.Ty{ty.String}, ty.String),
		"to_lower":    mono([]ty.Ty{ty.String}, ty.String),
		"replace":     mono([]ty.Ty{ty.String, ty.String, ty.String}, ty.String),
		"split":       mono([]ty.Ty{ty.String, ty.String}, listOf(ty.String)),
		"join":        mono([]ty.Ty{listOf(ty.String), ty.String}, ty.String),
		"to_int":      mono([]ty.Ty{ty.String}, intErr),
		"to_float":    mono([]ty.Ty{ty.String}, floatErr),
		"of_int":      mono([]ty.Ty{ty.Int}, ty.String),
		"of_float":    mono([]ty.Ty{ty.Float}, ty.String),
		"of_bool":     mono([]ty.Ty{ty.Bool}, ty.String),
	})
}
