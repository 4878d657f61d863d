package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// jsonValue is the opaque untyped-tree representation JSON.parse produces
// before a derive(Json) decoder narrows it to a concrete struct/sum type
// (spec §7 testable property "Round-trip of derived Json").
func jsonValue() ty.Ty { return ty.Con{Name: "JsonValue"} }

// registerJSONModule registers both spelling synonyms "JSON" and "Json"
// spec §6.3 lists side by side, pointing at one shared method table so a
// lookup of either resolves identically (grounded on the teacher's
// internal/builtins/json_decode.go decode/encode split, retargeted from an
// untyped interface{} tree to the statically-typed JsonValue handle).
func registerJSONModule() {
	methods := map[string]*ty.Scheme{
		"parse":    mono([]ty.Ty{ty.String}, resultOf(jsonValue(), ty.String)),
		"stringify": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{v[0]}, ty.String
		}),
		"decode": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{jsonValue()}, resultOf(v[0], ty.String)
		}),
		"encode": poly(1, func(v []ty.Ty) ([]ty.Ty, ty.Ty) {
			return []ty.Ty{v[0]}, jsonValue()
		}),
	}
	register("JSON", methods)
	register("Json", methods)
}
