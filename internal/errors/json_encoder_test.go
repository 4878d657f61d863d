package errors

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/snowdamiz/mesh-lang-sub001/internal/schema"
)

func TestNewTypecheckEncoded(t *testing.T) {
	err := NewTypecheckEncoded(TC001, "Type mismatch", nil)

	if err.Schema != schema.ErrorV1 {
		t.Errorf("Expected schema %s, got %s", schema.ErrorV1, err.Schema)
	}
	if err.Phase != "typecheck" {
		t.Errorf("Expected phase typecheck, got %s", err.Phase)
	}
	if err.Code != TC001 {
		t.Errorf("Expected code %s, got %s", TC001, err.Code)
	}
}

func TestWithFix(t *testing.T) {
	err := NewTypecheckEncoded(TC006, "Unknown variant", nil)
	err = err.WithFix("Check the variant name", 0.9)

	if err.Fix.Suggestion != "Check the variant name" {
		t.Errorf("Expected fix suggestion, got %s", err.Fix.Suggestion)
	}
	if err.Fix.Confidence != 0.9 {
		t.Errorf("Expected confidence 0.9, got %f", err.Fix.Confidence)
	}
}

func TestWithSourceSpan(t *testing.T) {
	err := NewMirEncoded(MIR001, "Invalid lowering", nil)
	err = err.WithSourceSpan("main.mesh:10:5")

	if err.SourceSpan != "main.mesh:10:5" {
		t.Errorf("Expected source span main.mesh:10:5, got %s", err.SourceSpan)
	}
}

func TestWithMeta(t *testing.T) {
	meta := map[string]string{
		"hint":     "Check the registered impls",
		"severity": "error",
	}

	err := NewCodegenEncoded(CG002, "Verification failed", nil)
	err = err.WithMeta(meta)

	if err.Meta == nil {
		t.Error("Expected meta to be set")
	}
}

func TestToJSON(t *testing.T) {
	ctx := map[string]any{
		"expected": "Int",
		"actual":   "String",
	}

	err := NewTypecheckEncoded(TC001, "Type mismatch", ctx).
		WithFix("Add an explicit type annotation", 0.85).
		WithSourceSpan("test.mesh:5:10")

	jsonData, jsonErr := err.ToJSON()
	if jsonErr != nil {
		t.Fatalf("ToJSON failed: %v", jsonErr)
	}

	var result map[string]interface{}
	if parseErr := json.Unmarshal(jsonData, &result); parseErr != nil {
		t.Fatalf("Failed to parse JSON: %v", parseErr)
	}

	if result["schema"] != schema.ErrorV1 {
		t.Errorf("Expected schema %s, got %v", schema.ErrorV1, result["schema"])
	}
	if result["phase"] != "typecheck" {
		t.Errorf("Expected phase typecheck, got %v", result["phase"])
	}
	if result["code"] != TC001 {
		t.Errorf("Expected code %s, got %v", TC001, result["code"])
	}
	if _, ok := result["fix"]; !ok {
		t.Error("Fix field should always be present")
	}
}

func TestSafeEncodeError(t *testing.T) {
	result := SafeEncodeError(nil, "typecheck")
	if result != nil {
		t.Error("Expected nil for nil error")
	}

	testErr := &testError{msg: "test error"}
	result = SafeEncodeError(testErr, "codegen")

	var parsed map[string]interface{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}

	if parsed["phase"] != "codegen" {
		t.Errorf("Expected phase codegen, got %v", parsed["phase"])
	}
	if !strings.Contains(parsed["message"].(string), "test error") {
		t.Errorf("Expected message to contain 'test error', got %v", parsed["message"])
	}
}

func TestSafeEncodeErrorWithReport(t *testing.T) {
	rep := NewReport(TC003, "typecheck", "unbound variable x")
	result := SafeEncodeError(WrapReport(rep), "typecheck")

	var parsed map[string]interface{}
	if err := json.Unmarshal(result, &parsed); err != nil {
		t.Fatalf("Failed to parse result: %v", err)
	}
	if parsed["code"] != TC003 {
		t.Errorf("Expected code %s, got %v", TC003, parsed["code"])
	}
}

func TestFormatSourceSpan(t *testing.T) {
	tests := []struct {
		file     string
		line     int
		col      int
		expected string
	}{
		{"main.mesh", 10, 5, "main.mesh:10:5"},
		{"test.mesh", 1, 1, "test.mesh:1:1"},
		{"/path/to/file.mesh", 100, 25, "/path/to/file.mesh:100:25"},
	}

	for _, tt := range tests {
		result := FormatSourceSpan(tt.file, tt.line, tt.col)
		if result != tt.expected {
			t.Errorf("FormatSourceSpan(%s, %d, %d) = %s, want %s",
				tt.file, tt.line, tt.col, result, tt.expected)
		}
	}
}

func TestErrorCodePrefixes(t *testing.T) {
	typecheckCodes := []string{TC001, TC002, TC003, TC004, TC005, TC006}
	for _, code := range typecheckCodes {
		if !strings.HasPrefix(code, "TC") {
			t.Errorf("Typecheck code %s should start with TC", code)
		}
	}

	mirCodes := []string{MIR001, MIR002}
	for _, code := range mirCodes {
		if !strings.HasPrefix(code, "MIR") {
			t.Errorf("MIR code %s should start with MIR", code)
		}
	}

	codegenCodes := []string{CG001, CG002}
	for _, code := range codegenCodes {
		if !strings.HasPrefix(code, "CG") {
			t.Errorf("Codegen code %s should start with CG", code)
		}
	}

	actorCodes := []string{ACT001, ACT002, ACT003, ACT004}
	for _, code := range actorCodes {
		if !strings.HasPrefix(code, "ACT") {
			t.Errorf("Actor code %s should start with ACT", code)
		}
	}
}

// Helper type for testing
type testError struct {
	msg string
}

func (e *testError) Error() string {
	return e.msg
}
