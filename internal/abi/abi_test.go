package abi

import "testing"

func TestLookupKnownIntrinsics(t *testing.T) {
	for _, name := range []string{
		"mesh_actor_spawn", "mesh_service_call", "mesh_reduction_check",
		"mesh_supervisor_start", "mesh_list_map", "mesh_map_get",
		"mesh_set_union", "mesh_string_concat", "mesh_list_iter_next",
		"mesh_iter_reduce", "mesh_box_int", "mesh_unbox_int",
		"mesh_panic", "mesh_queue_pop", "mesh_range_iter_new",
	} {
		if _, ok := Lookup(name); !ok {
			t.Errorf("expected %s to be declared in the ABI table", name)
		}
	}
}

func TestLookupUnknownIntrinsicMisses(t *testing.T) {
	if _, ok := Lookup("mesh_does_not_exist"); ok {
		t.Errorf("expected an undeclared intrinsic to miss")
	}
}

func TestAllHasSubstantialCoverage(t *testing.T) {
	all := All()
	if len(all) < 100 {
		t.Errorf("expected at least 100 declared intrinsics, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Name >= all[i].Name {
			t.Fatalf("expected All() to be sorted, got %s before %s", all[i-1].Name, all[i].Name)
		}
	}
}

func TestBoxUnboxPairsExistForEveryPrimitive(t *testing.T) {
	for _, prim := range []string{"int", "float", "bool", "string"} {
		if _, ok := Lookup("mesh_box_" + prim); !ok {
			t.Errorf("missing mesh_box_%s", prim)
		}
		if _, ok := Lookup("mesh_unbox_" + prim); !ok {
			t.Errorf("missing mesh_unbox_%s", prim)
		}
	}
}
