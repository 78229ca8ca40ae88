package partitioner

import "testing"

func TestBuildDependencyGraphOnlyForwardEdges(t *testing.T) {
	shared := loc("0xaa")
	txs := []Transaction{
		{Index: 0, WriteHints: []Location{shared}},
		{Index: 1, ReadHints: []Location{shared}},
		{Index: 2, WriteHints: []Location{loc("0x02")}},
	}

	g := BuildDependencyGraph(txs)
	deps0 := g.Dependents(0)
	if _, ok := deps0[1]; !ok || len(deps0) != 1 {
		t.Fatalf("got dependents(0)=%v, want {1}", deps0)
	}
	if deps := g.Dependents(1); len(deps) != 0 {
		t.Fatalf("got dependents(1)=%v, want empty (edges are forward-only)", deps)
	}
	if deps := g.Dependents(2); len(deps) != 0 {
		t.Fatalf("got dependents(2)=%v, want empty", deps)
	}
}

func TestDependencyGraphIndependentNodes(t *testing.T) {
	shared := loc("0xaa")
	txs := []Transaction{
		{Index: 0, WriteHints: []Location{shared}},
		{Index: 1, ReadHints: []Location{shared}},
		{Index: 2, WriteHints: []Location{loc("0x02")}},
	}

	g := BuildDependencyGraph(txs)
	indep := g.IndependentNodes()
	want := map[int]bool{1: true, 2: true}
	if len(indep) != len(want) {
		t.Fatalf("got %v, want 2 independent nodes", indep)
	}
	for _, n := range indep {
		if !want[n] {
			t.Fatalf("unexpected independent node %d", n)
		}
	}
}

func TestDependencyGraphNodesPreservesOrder(t *testing.T) {
	txs := []Transaction{{Index: 0}, {Index: 1}, {Index: 2}}
	g := BuildDependencyGraph(txs)
	nodes := g.Nodes()
	for i, n := range nodes {
		if n != i {
			t.Fatalf("got nodes %v, want ascending 0..n-1", nodes)
		}
	}
}

func TestDependencyGraphMultipleReadersSameWriter(t *testing.T) {
	shared := loc("0xaa")
	txs := []Transaction{
		{Index: 0, WriteHints: []Location{shared}},
		{Index: 1, ReadHints: []Location{shared}},
		{Index: 2, ReadHints: []Location{shared}},
	}
	g := BuildDependencyGraph(txs)
	deps := g.Dependents(0)
	if len(deps) != 2 {
		t.Fatalf("got dependents(0)=%v, want {1,2}", deps)
	}
	if _, ok := deps[1]; !ok {
		t.Fatal("missing edge 0->1")
	}
	if _, ok := deps[2]; !ok {
		t.Fatal("missing edge 0->2")
	}
}
