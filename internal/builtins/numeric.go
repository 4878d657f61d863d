package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// registerMathIntFloatModules grounds the numeric builtin surface on the
// mesh_int_to_string/mesh_float_to_string/mesh_string_to_int/
// mesh_string_to_float conversions internal/abi's
// registerMemoryAndStringFamily already declares, plus the pure-arithmetic
// helpers a Math module needs beyond what BinOp already covers.
func registerMathIntFloatModules() {
	register("Math", map[string]*ty.Scheme{
		"abs":   mono([]ty.Ty{ty.Float}, ty.Float),
		"sqrt":  mono([]ty.Ty{ty.Float}, ty.Float),
		"pow":   mono([]ty.Ty{ty.Float, ty.Float}, ty.Float),
		"floor": mono([]ty.Ty{ty.Float}, ty.Float),
		"ceil":  mono([]ty.Ty{ty.Float}, ty.Float),
		"round": mono([]ty.Ty{ty.Float}, ty.Float),
		"min":   mono([]ty.Ty{ty.Float, ty.Float}, ty.Float),
		"max":   mono([]ty.Ty{ty.Float, ty.Float}, ty.Float),
	})

	register("Int", map[string]*ty.Scheme{
		"to_string": mono([]ty.Ty{ty.Int}, ty.String),
		"to_float":  mono([]ty.Ty{ty.Int}, ty.Float),
		"of_string": mono([]ty.Ty{ty.String}, resultOf(ty.Int, ty.String)),
		"abs":       mono([]ty.Ty{ty.Int}, ty.Int),
		"min":       mono([]ty.Ty{ty.Int, ty.Int}, ty.Int),
		"max":       mono([]ty.Ty{ty.Int, ty.Int}, ty.Int),
	})

	register("Float", map[string]*ty.Scheme{
		"to_string": mono([]ty.Ty{ty.Float}, ty.String),
		"to_int":    mono([]ty.Ty{ty.Float}, ty.Int),
		"of_string": mono([]ty.Ty{ty.String}, resultOf(ty.Float, ty.String)),
		"is_nan":    mono([]ty.Ty{ty.Float}, ty.Bool),
	})
}
