package errors

import (
	"testing"
)

func TestErrorCodeTaxonomy(t *testing.T) {
	tests := []struct {
		name     string
		code     string
		phase    string
		category string
	}{
		{"TC001", TC001, "typecheck", "unify"},
		{"TC003", TC003, "typecheck", "scope"},
		{"TC006", TC006, "typecheck", "variant"},

		{"TR001", TR001, "trait", "method"},
		{"TR004", TR004, "trait", "coherence"},

		{"PAT001", PAT001, "pattern", "exhaustiveness"},
		{"PAT004", PAT004, "pattern", "binding"},

		{"CLS001", CLS001, "clauses", "grouping"},

		{"ACT001", ACT001, "actor", "type"},
		{"ACT004", ACT004, "actor", "scope"},

		{"SUP003", SUP003, "supervisor", "child"},

		{"CF001", CF001, "control-flow", "loop"},

		{"MIR001", MIR001, "mir", "internal"},
		{"CG002", CG002, "codegen", "verify"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, exists := Lookup(tt.code)
			if !exists {
				t.Errorf("Error code %s not found in registry", tt.code)
				return
			}
			if info.Code != tt.code {
				t.Errorf("Code mismatch: got %s, want %s", info.Code, tt.code)
			}
			if info.Phase != tt.phase {
				t.Errorf("Phase mismatch for %s: got %s, want %s", tt.code, info.Phase, tt.phase)
			}
			if info.Category != tt.category {
				t.Errorf("Category mismatch for %s: got %s, want %s", tt.code, info.Category, tt.category)
			}
		})
	}
}

func TestErrorTypeCheckers(t *testing.T) {
	tests := []struct {
		name        string
		code        string
		isTypecheck bool
		isCodegen   bool
	}{
		{"Typecheck error", TC001, true, false},
		{"Trait error", TR001, false, false},
		{"Pattern error", PAT001, false, false},
		{"Codegen error", CG001, false, true},
		{"Mir error", MIR001, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsTypecheckError(tt.code); got != tt.isTypecheck {
				t.Errorf("IsTypecheckError(%s) = %v, want %v", tt.code, got, tt.isTypecheck)
			}
			if got := IsCodegenError(tt.code); got != tt.isCodegen {
				t.Errorf("IsCodegenError(%s) = %v, want %v", tt.code, got, tt.isCodegen)
			}
		})
	}
}

func TestAllErrorCodesInRegistry(t *testing.T) {
	allCodes := []string{
		TC001, TC002, TC003, TC004, TC005, TC006,
		TR001, TR002, TR003, TR004,
		PAT001, PAT002, PAT003, PAT004,
		CLS001, CLS002, CLS003,
		DER001, DER002, DER003, DER004,
		IMP001, IMP002, IMP003,
		ACT001, ACT002, ACT003, ACT004,
		SUP001, SUP002, SUP003, SUP004, SUP005,
		CF001, CF002, CF003, CF004,
		MIR001, MIR002,
		CG001, CG002,
	}

	for _, code := range allCodes {
		t.Run(code, func(t *testing.T) {
			if _, exists := Lookup(code); !exists {
				t.Errorf("Error code %s is defined but not in registry", code)
			}
		})
	}

	if len(Registry) < len(allCodes) {
		t.Errorf("Registry has %d codes, expected at least %d", len(Registry), len(allCodes))
	}
}

func TestErrorInfoConsistency(t *testing.T) {
	validPhases := map[string]bool{
		"typecheck": true, "trait": true, "pattern": true, "clauses": true,
		"derive": true, "import": true, "actor": true, "supervisor": true,
		"control-flow": true, "mir": true, "codegen": true,
	}

	for code, info := range Registry {
		if info.Code != code {
			t.Errorf("Code mismatch in registry: key=%s, info.Code=%s", code, info.Code)
		}
		if len(code) < 4 || len(code) > 6 {
			t.Errorf("Invalid code format: %s", code)
		}
		if !validPhases[info.Phase] {
			t.Errorf("Invalid phase for %s: %s", code, info.Phase)
		}
		if info.Description == "" {
			t.Errorf("Empty description for %s", code)
		}
	}
}
