package dag

import (
	"testing"
)

func TestGraph_AddStageAndDep(t *testing.T) {
	g := New()

	g.AddStage("a")
	g.AddStage("b")
	g.AddStage("c")

	if g.Len() != 3 {
		t.Errorf("expected 3 stages, got %d", g.Len())
	}

	if err := g.AddDep("b", "a"); err != nil {
		t.Errorf("failed to add dep: %v", err)
	}
	if err := g.AddDep("c", "b"); err != nil {
		t.Errorf("failed to add dep: %v", err)
	}

	deps := g.Deps("c")
	if len(deps) != 1 || deps[0] != "b" {
		t.Errorf("expected c to depend on b, got %v", deps)
	}

	dependents := g.Dependents("a")
	if len(dependents) != 1 || dependents[0] != "b" {
		t.Errorf("expected a used by b, got %v", dependents)
	}
}

func TestGraph_AddDep_UnknownStage(t *testing.T) {
	g := New()
	g.AddStage("a")

	if err := g.AddDep("a", "nonexistent"); err == nil {
		t.Error("expected error for unknown dependency")
	}
	if err := g.AddDep("nonexistent", "a"); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestGraph_AddDep_SelfLoop(t *testing.T) {
	g := New()
	g.AddStage("a")

	if err := g.AddDep("a", "a"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_Order(t *testing.T) {
	g := New()
	g.AddStage("c")
	g.AddStage("a")
	g.AddStage("b")
	_ = g.AddDep("b", "a")
	_ = g.AddDep("c", "b")

	order, err := g.Order()
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}

	pos := make(map[string]int, len(order))
	for i, name := range order {
		pos[name] = i
	}
	if pos["a"] > pos["b"] || pos["b"] > pos["c"] {
		t.Errorf("order violates dependencies: %v", order)
	}
}

func TestGraph_Order_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := New()
		g.AddStage("z")
		g.AddStage("m")
		g.AddStage("a")
		return g
	}

	first, err := build().Order()
	if err != nil {
		t.Fatalf("order failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := build().Order()
		if err != nil {
			t.Fatalf("order failed: %v", err)
		}
		for j := range first {
			if first[j] != next[j] {
				t.Fatalf("order not deterministic: %v vs %v", first, next)
			}
		}
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := New()
	g.AddStage("a")
	g.AddStage("b")
	_ = g.AddDep("b", "a")

	if cyclic, _ := g.HasCycle(); cyclic {
		t.Error("acyclic graph reported a cycle")
	}

	_ = g.AddDep("a", "b")
	cyclic, path := g.HasCycle()
	if !cyclic {
		t.Error("cycle not detected")
	}
	if len(path) == 0 {
		t.Error("expected a cycle path")
	}

	if _, err := g.Order(); err == nil {
		t.Error("expected order to fail on a cyclic graph")
	}
}

func TestGraph_Levels(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddStage(name)
	}
	// a and b are roots; c needs both; d needs c.
	_ = g.AddDep("c", "a")
	_ = g.AddDep("c", "b")
	_ = g.AddDep("d", "c")

	levels, err := g.Levels()
	if err != nil {
		t.Fatalf("levels failed: %v", err)
	}

	if len(levels) != 3 {
		t.Fatalf("expected 3 levels, got %d: %v", len(levels), levels)
	}
	if len(levels[0]) != 2 {
		t.Errorf("expected 2 root stages, got %v", levels[0])
	}
	if len(levels[1]) != 1 || levels[1][0] != "c" {
		t.Errorf("expected level 1 to be [c], got %v", levels[1])
	}
	if len(levels[2]) != 1 || levels[2][0] != "d" {
		t.Errorf("expected level 2 to be [d], got %v", levels[2])
	}
}

func TestGraph_Downstream(t *testing.T) {
	g := New()
	for _, name := range []string{"a", "b", "c", "d"} {
		g.AddStage(name)
	}
	_ = g.AddDep("b", "a")
	_ = g.AddDep("c", "b")

	// Downstream includes the named stages themselves.
	down := g.Downstream([]string{"a"})
	if len(down) != 3 {
		t.Fatalf("expected 3 stages, got %v", down)
	}
	if !containsString(down, "a") || !containsString(down, "b") || !containsString(down, "c") {
		t.Errorf("expected a, b and c, got %v", down)
	}
	if containsString(down, "d") {
		t.Errorf("d is unrelated, got %v", down)
	}
}
