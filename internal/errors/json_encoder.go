package errors

import (
	"fmt"

	"github.com/snowdamiz/mesh-lang-sub001/internal/schema"
)

// SchemaVersion is the schema tag stamped on every Report and Encoded value
// (spec §6.4: diagnostics are machine-readable, versioned JSON).
const SchemaVersion = "mesh.error/v1"

// Fix represents a suggested fix with a confidence score.
type Fix struct {
	Suggestion string  `json:"suggestion"`
	Confidence float64 `json:"confidence"`
}

// Encoded is a structured diagnostic shaped for tools that want a flatter
// envelope than Report (a fix suggestion and a free-form source span string
// rather than an *ast.Span).
type Encoded struct {
	Schema     string      `json:"schema"`
	Phase      string      `json:"phase"`
	Code       string      `json:"code"`
	Message    string      `json:"message"`
	Fix        Fix         `json:"fix"`
	Context    interface{} `json:"context,omitempty"`
	SourceSpan string      `json:"source_span,omitempty"`
	Meta       interface{} `json:"meta,omitempty"`
}

func newEncoded(phase, code, msg string, ctx interface{}) Encoded {
	return Encoded{
		Schema:  SchemaVersion,
		Phase:   phase,
		Code:    code,
		Message: msg,
		Fix:     Fix{},
		Context: ctx,
	}
}

// NewTypecheckEncoded builds a typecheck-phase diagnostic (TC###/TR###).
func NewTypecheckEncoded(code, msg string, ctx interface{}) Encoded {
	return newEncoded("typecheck", code, msg, ctx)
}

// NewPatternEncoded builds a pattern-matching diagnostic (PAT###).
func NewPatternEncoded(code, msg string, ctx interface{}) Encoded {
	return newEncoded("pattern", code, msg, ctx)
}

// NewMirEncoded builds a MIR-lowering diagnostic (MIR###).
func NewMirEncoded(code, msg string, ctx interface{}) Encoded {
	return newEncoded("mir", code, msg, ctx)
}

// NewCodegenEncoded builds a backend code generation diagnostic (CG###).
func NewCodegenEncoded(code, msg string, ctx interface{}) Encoded {
	return newEncoded("codegen", code, msg, ctx)
}

// WithFix adds a fix suggestion to the diagnostic.
func (e Encoded) WithFix(suggestion string, confidence float64) Encoded {
	e.Fix = Fix{Suggestion: suggestion, Confidence: confidence}
	return e
}

// WithSourceSpan adds a "file:line:col" source location.
func (e Encoded) WithSourceSpan(span string) Encoded {
	e.SourceSpan = span
	return e
}

// WithMeta attaches free-form metadata to the diagnostic.
func (e Encoded) WithMeta(meta interface{}) Encoded {
	e.Meta = meta
	return e
}

// ToJSON renders the diagnostic as deterministic JSON (sorted keys, no HTML
// escaping) so golden-file comparisons are stable across runs.
func (e Encoded) ToJSON() ([]byte, error) {
	data, err := schema.MarshalDeterministic(e)
	if err != nil {
		fallback := Encoded{Schema: SchemaVersion, Message: "encoding failed",
			Meta: map[string]string{"original_error": err.Error()}}
		return schema.MarshalDeterministic(fallback)
	}
	return schema.FormatJSON(data)
}

// SafeEncodeError encodes any error as a best-effort Encoded diagnostic,
// never panicking even when err carries no structured Report.
func SafeEncodeError(err error, phase string) []byte {
	if err == nil {
		return nil
	}
	if rep, ok := AsReport(err); ok {
		out, _ := rep.ToJSON(false)
		return []byte(out)
	}
	encoded := newEncoded(phase, "ERR000", err.Error(), nil)
	data, _ := encoded.ToJSON()
	return data
}

// FormatSourceSpan formats a file position as "file:line:col".
func FormatSourceSpan(file string, line, col int) string {
	return fmt.Sprintf("%s:%d:%d", file, line, col)
}
