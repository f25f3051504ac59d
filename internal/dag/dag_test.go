package dag

import (
	"testing"
)

func TestGraph_AddNodeAndEdge(t *testing.T) {
	g := NewGraph()

	g.AddNode("system")
	g.AddNode("identity")
	g.AddNode("organization")

	if g.NodeCount() != 3 {
		t.Errorf("expected 3 nodes, got %d", g.NodeCount())
	}

	// identity depends on system
	if err := g.AddEdge("system", "identity"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}
	// organization depends on identity
	if err := g.AddEdge("identity", "organization"); err != nil {
		t.Errorf("failed to add edge: %v", err)
	}

	deps := g.Dependencies("organization")
	if len(deps) != 1 || deps[0] != "identity" {
		t.Errorf("expected [identity], got %v", deps)
	}
}

func TestGraph_AddNode_Duplicate(t *testing.T) {
	g := NewGraph()
	g.AddNode("system")
	g.AddNode("system")

	if g.NodeCount() != 1 {
		t.Errorf("expected 1 node, got %d", g.NodeCount())
	}
}

func TestGraph_AddEdge_InvalidNodes(t *testing.T) {
	g := NewGraph()
	g.AddNode("system")

	if err := g.AddEdge("system", "nonexistent"); err == nil {
		t.Error("expected error for unregistered child node")
	}
	if err := g.AddEdge("nonexistent", "system"); err == nil {
		t.Error("expected error for unregistered parent node")
	}
}

func TestGraph_AddEdge_SelfLoop(t *testing.T) {
	g := NewGraph()
	g.AddNode("system")

	if err := g.AddEdge("system", "system"); err == nil {
		t.Error("expected error for self-loop")
	}
}

func TestGraph_HasCycle(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	g.AddNode("c")
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "c")

	if cyclic, _ := g.HasCycle(); cyclic {
		t.Error("acyclic graph reported as cyclic")
	}

	_ = g.AddEdge("c", "a")
	cyclic, path := g.HasCycle()
	if !cyclic {
		t.Fatal("expected cycle")
	}
	if len(path) < 3 {
		t.Errorf("expected cycle path naming the modules, got %v", path)
	}
	if path[0] != path[len(path)-1] {
		t.Errorf("cycle path should close on itself, got %v", path)
	}
}

func TestGraph_TopologicalSort(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"crm", "organization", "identity", "system", "sales"} {
		g.AddNode(id)
	}
	_ = g.AddEdge("system", "identity")
	_ = g.AddEdge("identity", "organization")
	_ = g.AddEdge("identity", "crm")
	_ = g.AddEdge("organization", "crm")
	_ = g.AddEdge("crm", "sales")

	order, err := g.TopologicalSort()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	if len(order) != 5 {
		t.Fatalf("expected 5 nodes, got %d", len(order))
	}

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	for _, pair := range [][2]string{
		{"system", "identity"},
		{"identity", "organization"},
		{"identity", "crm"},
		{"organization", "crm"},
		{"crm", "sales"},
	} {
		if pos[pair[0]] > pos[pair[1]] {
			t.Errorf("%s must sort before %s, got %v", pair[0], pair[1], order)
		}
	}
}

func TestGraph_TopologicalSort_Deterministic(t *testing.T) {
	build := func() *Graph {
		g := NewGraph()
		for _, id := range []string{"leave", "payroll", "attendance", "hr_core"} {
			g.AddNode(id)
		}
		_ = g.AddEdge("hr_core", "leave")
		_ = g.AddEdge("hr_core", "payroll")
		_ = g.AddEdge("hr_core", "attendance")
		return g
	}

	first, err := build().TopologicalSort()
	if err != nil {
		t.Fatalf("sort failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		next, err := build().TopologicalSort()
		if err != nil {
			t.Fatalf("sort failed: %v", err)
		}
		for j := range first {
			if first[j] != next[j] {
				t.Fatalf("ordering not deterministic: %v vs %v", first, next)
			}
		}
	}
}

func TestGraph_TopologicalSort_Cyclic(t *testing.T) {
	g := NewGraph()
	g.AddNode("a")
	g.AddNode("b")
	_ = g.AddEdge("a", "b")
	_ = g.AddEdge("b", "a")

	if _, err := g.TopologicalSort(); err == nil {
		t.Error("expected error for cyclic graph")
	}
}

func TestGraph_TransitiveDependencies(t *testing.T) {
	g := NewGraph()
	for _, id := range []string{"system", "identity", "organization", "crm", "sales"} {
		g.AddNode(id)
	}
	_ = g.AddEdge("system", "identity")
	_ = g.AddEdge("identity", "organization")
	_ = g.AddEdge("identity", "crm")
	_ = g.AddEdge("organization", "crm")
	_ = g.AddEdge("crm", "sales")

	got := g.TransitiveDependencies("sales")
	want := []string{"crm", "identity", "organization", "system"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}

	if deps := g.TransitiveDependencies("system"); len(deps) != 0 {
		t.Errorf("root should have no upstream, got %v", deps)
	}
}

func TestGraph_Roots(t *testing.T) {
	g := NewGraph()
	g.AddNode("system")
	g.AddNode("identity")
	g.AddNode("reporting")
	_ = g.AddEdge("system", "identity")

	roots := g.Roots()
	if len(roots) != 2 || roots[0] != "reporting" || roots[1] != "system" {
		t.Errorf("expected sorted roots [reporting system], got %v", roots)
	}
}
