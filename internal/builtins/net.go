package builtins

import "github.com/snowdamiz/mesh-lang-sub001/internal/ty"

// Request/HTTP/Ws are declared with fixed, module-specific shapes rather
// than derived from a generic ABI family (spec §6.2: "JSON, HTTP,
// WebSocket, ... Declared with their exact shapes at module
// initialisation"), grounded on the teacher's internal/effects capability
// descriptors (a fixed named-operation surface per effect) for the
// request/response/socket handle shape.
func registerRequestHTTPModules() {
	request := opaque("Request")
	response := opaque("Response")
	register("Request", map[string]*ty.Scheme{
		"method":  mono([]ty.Ty{request}, ty.String),
		"path":    mono([]ty.Ty{request}, ty.String),
		"header":  mono([]ty.Ty{request, ty.String}, optionOf(ty.String)),
		"body":    mono([]ty.Ty{request}, ty.String),
		"query":   mono([]ty.Ty{request, ty.String}, optionOf(ty.String)),
	})
	register("HTTP", map[string]*ty.Scheme{
		"get":      mono([]ty.Ty{ty.String}, resultOf(response, ty.String)),
		"post":     mono([]ty.Ty{ty.String, ty.String}, resultOf(response, ty.String)),
		"put":      mono([]ty.Ty{ty.String, ty.String}, resultOf(response, ty.String)),
		"delete":   mono([]ty.Ty{ty.String}, resultOf(response, ty.String)),
		"status":   mono([]ty.Ty{response}, ty.Int),
		"text":     mono([]ty.Ty{response}, ty.String),
		"json":     mono([]ty.Ty{response}, resultOf(jsonValue(), ty.String)),
		"respond":  mono([]ty.Ty{ty.Int, ty.String}, response),
		"listen":   mono([]ty.Ty{ty.Int, fn([]ty.Ty{request}, response)}, resultOf(ty.Unit, ty.String)),
	})
}

// registerWsModule mirrors the WebSocket surface spec §6.2 names
// alongside HTTP ("JSON, HTTP, WebSocket, ...").
func registerWsModule() {
	conn := opaque("WsConn")
	register("Ws", map[string]*ty.Scheme{
		"connect": mono([]ty.Ty{ty.String}, resultOf(conn, ty.String)),
		"send":    mono([]ty.Ty{conn, ty.String}, resultOf(ty.Unit, ty.String)),
		"recv":    mono([]ty.Ty{conn}, resultOf(ty.String, ty.String)),
		"close":   mono([]ty.Ty{conn}, ty.Unit),
	})
}
