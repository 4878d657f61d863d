package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// registerIOModule mirrors internal/abi's registerPanicPrintFamily
// (mesh_print/mesh_println/mesh_io_eprintln/mesh_io_read_line).
func registerIOModule() {
	register("IO", map[string]*ty.Scheme{
		"print":     mono([]ty.Ty{ty.String}, ty.Unit),
		"println":   mono([]ty.Ty{ty.String}, ty.Unit),
		"eprintln":  mono([]ty.Ty{ty.String}, ty.Unit),
		"read_line": mono(nil, ty.String),
	})
}

// registerFileModule and registerEnvModule have no abi.go-declared
// counterpart (file/env access is a syscall-shaped host call, not a
// collection/actor primitive) but are still declared with the exact
// shapes the spec requires module-builtins to carry (spec §6.2: "Declared
// with their exact shapes at module initialisation; the codegen never
// fabricates intrinsic signatures") — grounded on the teacher's
// internal/eval/builtins.go IO-capability surface (readFile/writeFile
// exposed as Result-returning host calls).
func registerFileModule() {
	strErr := resultOf(ty.String, ty.String)
	unitErr := resultOf(ty.Unit, ty.String)
	boolErr := resultOf(ty.Bool, ty.String)
	register("File", map[string]*ty.Scheme{
		"read":   mono([]ty.Ty{ty.String}, strErr),
		"write":  mono([]ty.Ty{ty.String, ty.String}, unitErr),
		"append": mono([]ty.Ty{ty.String, ty.String}, unitErr),
		"exists": mono([]ty.Ty{ty.String}, ty.Bool),
		"remove": mono([]ty.Ty{ty.String}, unitErr),
		"mkdir":  mono([]ty.Ty{ty.String}, unitErr),
		"is_dir": mono([]ty.Ty{ty.String}, boolErr),
	})
}

func registerEnvModule() {
	register("Env", map[string]*ty.Scheme{
		"get":  mono([]ty.Ty{ty.String}, optionOf(ty.String)),
		"set":  mono([]ty.Ty{ty.String, ty.String}, ty.Unit),
		"args": mono(nil, listOf(ty.String)),
	})
}
