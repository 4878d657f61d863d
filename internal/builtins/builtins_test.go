package builtins

import "testing"

func TestAllSpecModulesRegistered(t *testing.T) {
	for _, name := range []string{
		"String", "List", "Map", "Set", "Tuple", "Range", "Queue", "IO",
		"File", "Env", "JSON", "Json", "Request", "HTTP", "Job", "Math",
		"Int", "Float", "Timer", "Sqlite", "Pg", "Pool", "Node", "Process",
		"Global", "Ws", "Iter",
	} {
		if !Has(name) {
			t.Errorf("expected built-in module %s to be registered", name)
		}
	}
}

func TestLookupKnownMethods(t *testing.T) {
	cases := []struct{ module, method string }{
		{"String", "length"}, {"List", "map"}, {"Map", "get"},
		{"Set", "union"}, {"Queue", "pop"}, {"Range", "new"},
		{"Tuple", "get"}, {"Iter", "collect_list"}, {"IO", "println"},
		{"File", "read"}, {"Env", "get"}, {"JSON", "parse"},
		{"Json", "decode"}, {"HTTP", "get"}, {"Request", "header"},
		{"Ws", "connect"}, {"Job", "await"}, {"Timer", "sleep"},
		{"Math", "sqrt"}, {"Int", "to_string"}, {"Float", "of_string"},
		{"Sqlite", "query"}, {"Pg", "exec"}, {"Pool", "acquire"},
		{"Node", "self"}, {"Process", "whereis"}, {"Global", "register"},
	}
	for _, c := range cases {
		scheme, ok := Lookup(c.module, c.method)
		if !ok {
			t.Errorf("expected %s.%s to resolve", c.module, c.method)
			continue
		}
		if scheme.Type == nil {
			t.Errorf("expected %s.%s to have a non-nil type", c.module, c.method)
		}
	}
}

func TestLookupUnknownModuleMisses(t *testing.T) {
	if _, ok := Lookup("NoSuchModule", "x"); ok {
		t.Errorf("expected an unregistered module to miss")
	}
}

func TestLookupUnknownMethodMisses(t *testing.T) {
	if _, ok := Lookup("String", "no_such_method"); ok {
		t.Errorf("expected an unregistered method to miss")
	}
}

func TestJSONAndJsonShareTheSameMethodTable(t *testing.T) {
	a, aok := Lookup("JSON", "parse")
	b, bok := Lookup("Json", "parse")
	if !aok || !bok {
		t.Fatal("expected both JSON and Json spellings to resolve parse")
	}
	if a.Type.String() != b.Type.String() {
		t.Errorf("expected JSON and Json spellings to agree, got %s vs %s", a.Type, b.Type)
	}
}

// TestPolymorphicSchemesUseReservedSyntheticVars checks that every
// quantified variable id a polymorphic scheme declares falls outside the
// user's non-negative arena range (spec §6.3 "synthetic type variables
// reserved outside the user's variable id range").
func TestPolymorphicSchemesUseReservedSyntheticVars(t *testing.T) {
	scheme, ok := Lookup("List", "map")
	if !ok {
		t.Fatal("expected List.map to resolve")
	}
	if len(scheme.Vars) == 0 {
		t.Fatal("expected List.map to be polymorphic")
	}
	for _, id := range scheme.Vars {
		if id >= 0 {
			t.Errorf("expected synthetic var id to be negative, got %d", id)
		}
	}
}

func TestNamesListsEveryMethod(t *testing.T) {
	names := Names("Math")
	if len(names) == 0 {
		t.Fatal("expected Math to expose at least one method name")
	}
	seen := map[string]bool{}
	for _, n := range names {
		seen[n] = true
	}
	if !seen["sqrt"] {
		t.Errorf("expected Names(\"Math\") to include sqrt, got %v", names)
	}
	for method := range Modules["Math"] {
		if !seen[method] {
			t.Errorf("expected Names(\"Math\") to include %s, got %v", method, names)
		}
	}
}
