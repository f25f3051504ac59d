// Package dag provides the directed acyclic graph over schema modules.
// It supports cycle detection with path reporting and deterministic
// topological sorting, which is what turns declared module dependencies
// into a verifiable execution order.
package dag

import (
	"fmt"
	"sort"
)

// Graph is a directed acyclic graph of module names. Edges point from a
// dependency to its dependents.
type Graph struct {
	nodes   map[string]bool
	edges   map[string][]string // dependency -> dependents
	parents map[string][]string // dependent -> dependencies
}

// NewGraph creates an empty graph.
func NewGraph() *Graph {
	return &Graph{
		nodes:   make(map[string]bool),
		edges:   make(map[string][]string),
		parents: make(map[string][]string),
	}
}

// AddNode adds a node to the graph. Adding an existing node is a no-op.
func (g *Graph) AddNode(id string) {
	if !g.nodes[id] {
		g.nodes[id] = true
		g.edges[id] = []string{}
		g.parents[id] = []string{}
	}
}

// AddEdge records that child depends on parent. Both nodes must already
// exist; self-loops are rejected.
func (g *Graph) AddEdge(parentID, childID string) error {
	if !g.nodes[parentID] {
		return fmt.Errorf("dependency %q is not a registered module", parentID)
	}
	if !g.nodes[childID] {
		return fmt.Errorf("module %q is not registered", childID)
	}
	if parentID == childID {
		return fmt.Errorf("module %q depends on itself", parentID)
	}
	if !contains(g.edges[parentID], childID) {
		g.edges[parentID] = append(g.edges[parentID], childID)
	}
	if !contains(g.parents[childID], parentID) {
		g.parents[childID] = append(g.parents[childID], parentID)
	}
	return nil
}

// Dependencies returns the declared dependencies of a node.
func (g *Graph) Dependencies(id string) []string {
	return g.parents[id]
}

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int {
	return len(g.nodes)
}

// HasCycle reports whether the graph contains a cycle, returning the cycle
// path when one exists so the error can name the offending modules.
func (g *Graph) HasCycle() (bool, []string) {
	visited := make(map[string]bool)
	onStack := make(map[string]bool)
	cameFrom := make(map[string]string)

	var cyclePath []string

	var dfs func(id string) bool
	dfs = func(id string) bool {
		visited[id] = true
		onStack[id] = true

		for _, childID := range g.edges[id] {
			if !visited[childID] {
				cameFrom[childID] = id
				if dfs(childID) {
					return true
				}
			} else if onStack[childID] {
				cyclePath = []string{childID}
				for curr := id; curr != childID; curr = cameFrom[curr] {
					cyclePath = append([]string{curr}, cyclePath...)
				}
				cyclePath = append([]string{childID}, cyclePath...)
				return true
			}
		}

		onStack[id] = false
		return false
	}

	for id := range g.nodes {
		if !visited[id] {
			if dfs(id) {
				return true, cyclePath
			}
		}
	}
	return false, nil
}

// TopologicalSort returns node IDs with every dependency before its
// dependents. The order is deterministic so two processes reconciling the
// same database issue DDL in the same sequence. A cyclic graph is an
// error.
func (g *Graph) TopologicalSort() ([]string, error) {
	if cyclic, path := g.HasCycle(); cyclic {
		return nil, fmt.Errorf("dependency cycle: %v", path)
	}

	visited := make(map[string]bool)
	var result []string

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true
		deps := append([]string(nil), g.parents[id]...)
		sort.Strings(deps)
		for _, dep := range deps {
			visit(dep)
		}
		result = append(result, id)
	}

	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		visit(id)
	}
	return result, nil
}

// TransitiveDependencies returns every node reachable upstream of id,
// sorted. The orchestrator uses it to validate that foreign keys only
// point at tables owned by the module itself or something it runs after.
func (g *Graph) TransitiveDependencies(id string) []string {
	upstream := make(map[string]bool)

	var mark func(nodeID string)
	mark = func(nodeID string) {
		for _, dep := range g.parents[nodeID] {
			if !upstream[dep] {
				upstream[dep] = true
				mark(dep)
			}
		}
	}
	mark(id)

	result := make([]string, 0, len(upstream))
	for dep := range upstream {
		result = append(result, dep)
	}
	sort.Strings(result)
	return result
}

// Roots returns nodes with no dependencies, sorted.
func (g *Graph) Roots() []string {
	var roots []string
	for id := range g.nodes {
		if len(g.parents[id]) == 0 {
			roots = append(roots, id)
		}
	}
	sort.Strings(roots)
	return roots
}

func contains(slice []string, str string) bool {
	for _, s := range slice {
		if s == str {
			return true
		}
	}
	return false
}
