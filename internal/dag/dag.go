// SPDX-License-Identifier: MPL-2.0

// Package dag provides directed acyclic graph operations for topological
// sorting and cycle detection. The build planner uses it to order module
// compilation bottom-up and to reject corrupted cyclic module graphs before
// any build identity is materialized.
package dag

import (
	"fmt"
	"strings"
)

type (
	// CycleError indicates that the graph contains a cycle, preventing topological ordering.
	CycleError[N comparable] struct {
		// Cycle contains the nodes involved in the cycle (not necessarily all of them,
		// but enough to identify the problem).
		Cycle []N
	}

	// Graph is a directed graph for topological sorting. Nodes are identified
	// by comparable keys, typically module references or build identities.
	// Edges represent "must build before" relationships: an edge from A to B
	// means A must be compiled before B.
	Graph[N comparable] struct {
		// adjacency maps each node to its outgoing neighbors (nodes that depend on it).
		adjacency map[N][]N
		// nodes tracks all nodes in insertion order for deterministic output.
		nodes []N
		// nodeSet provides O(1) lookup for node existence.
		nodeSet map[N]bool
	}
)

func (e *CycleError[N]) Error() string {
	parts := make([]string, len(e.Cycle))
	for i, n := range e.Cycle {
		parts[i] = fmt.Sprint(n)
	}
	return fmt.Sprintf("dependency cycle detected: %s", strings.Join(parts, " -> "))
}

// New creates an empty Graph.
func New[N comparable]() *Graph[N] {
	return &Graph[N]{
		adjacency: make(map[N][]N),
		nodeSet:   make(map[N]bool),
	}
}

// AddNode adds a node to the graph. If the node already exists, this is a no-op.
func (g *Graph[N]) AddNode(node N) {
	if g.nodeSet[node] {
		return
	}
	g.nodeSet[node] = true
	g.nodes = append(g.nodes, node)
}

// AddEdge adds a directed edge from -> to, meaning "from" must be built before "to".
// Both nodes are implicitly added if they don't exist.
func (g *Graph[N]) AddEdge(from, to N) {
	g.AddNode(from)
	g.AddNode(to)
	g.adjacency[from] = append(g.adjacency[from], to)
}

// Len reports the number of nodes in the graph.
func (g *Graph[N]) Len() int {
	return len(g.nodes)
}

// TopologicalSort returns a valid build order using Kahn's algorithm.
// Returns CycleError if the graph contains a cycle.
// The returned order is deterministic: nodes at the same topological level
// appear in the order they were first added to the graph.
func (g *Graph[N]) TopologicalSort() ([]N, error) {
	if len(g.nodes) == 0 {
		return nil, nil
	}

	// Compute in-degrees.
	inDegree := make(map[N]int, len(g.nodes))
	for _, node := range g.nodes {
		inDegree[node] = 0
	}
	for _, neighbors := range g.adjacency {
		for _, neighbor := range neighbors {
			inDegree[neighbor]++
		}
	}

	// Seed the queue with nodes that have no incoming edges, in insertion order.
	queue := make([]N, 0)
	for _, node := range g.nodes {
		if inDegree[node] == 0 {
			queue = append(queue, node)
		}
	}

	var result []N
	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		result = append(result, node)

		for _, neighbor := range g.adjacency[node] {
			inDegree[neighbor]--
			if inDegree[neighbor] == 0 {
				queue = append(queue, neighbor)
			}
		}
	}

	if len(result) != len(g.nodes) {
		// Remaining nodes with non-zero in-degree form the cycle.
		var cycleNodes []N
		for _, node := range g.nodes {
			if inDegree[node] > 0 {
				cycleNodes = append(cycleNodes, node)
			}
		}
		return nil, &CycleError[N]{Cycle: cycleNodes}
	}

	return result, nil
}
