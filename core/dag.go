package core

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pulselab/portpulse/schema"
)

// Node is one derivation step in the execution graph. Nodes declare the
// layer they live in and the nodes they consume; execution order is a
// topological sort validated against the layer ordering.
type Node struct {
	Name      string
	Layer     schema.Layer
	DependsOn []string
	Run       func(*runState) error
}

// Graph is the declared derivation DAG for one company.
type Graph struct {
	nodes map[string]*Node
	order []string // insertion order for deterministic traversal
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{nodes: make(map[string]*Node)}
}

// Add registers a node. Duplicate names are a programming error.
func (g *Graph) Add(node *Node) error {
	if _, dup := g.nodes[node.Name]; dup {
		return fmt.Errorf("duplicate node %q", node.Name)
	}
	g.nodes[node.Name] = node
	g.order = append(g.order, node.Name)
	return nil
}

// Adjacency returns the dependency edges as a map from node name to the
// names it depends on. The invariant battery consumes this shape.
func (g *Graph) Adjacency() map[string][]string {
	adj := make(map[string][]string, len(g.nodes))
	for name, node := range g.nodes {
		deps := make([]string, len(node.DependsOn))
		copy(deps, node.DependsOn)
		adj[name] = deps
	}
	return adj
}

// Sort returns the execution order: a deterministic topological sort of
// the declared dependencies, validated so no node depends on a node in
// a higher layer. A cycle fails with the exact path.
func (g *Graph) Sort() ([]*Node, error) {
	if err := g.validateLayers(); err != nil {
		return nil, err
	}

	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(g.nodes))
	var sorted []*Node
	var stack []string

	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case done:
			return nil
		case visiting:
			return fmt.Errorf("dependency cycle: %s", cyclePath(stack, name))
		}
		node, ok := g.nodes[name]
		if !ok {
			return fmt.Errorf("node %q depends on unknown node", name)
		}
		state[name] = visiting
		stack = append(stack, name)

		deps := make([]string, len(node.DependsOn))
		copy(deps, node.DependsOn)
		sort.Strings(deps)
		for _, dep := range deps {
			if err := visit(dep); err != nil {
				return err
			}
		}

		stack = stack[:len(stack)-1]
		state[name] = done
		sorted = append(sorted, node)
		return nil
	}

	for _, name := range g.order {
		if err := visit(name); err != nil {
			return nil, err
		}
	}
	return sorted, nil
}

// validateLayers confirms every edge points downward or sideways in the
// layer ordering: a derive node may read raw, never the reverse.
func (g *Graph) validateLayers() error {
	for _, name := range g.order {
		node := g.nodes[name]
		rank, ok := schema.LayerRank[node.Layer]
		if !ok {
			return fmt.Errorf("node %q has unknown layer %q", name, node.Layer)
		}
		for _, dep := range node.DependsOn {
			depNode, ok := g.nodes[dep]
			if !ok {
				return fmt.Errorf("node %q depends on unknown node %q", name, dep)
			}
			depRank, ok := schema.LayerRank[depNode.Layer]
			if !ok {
				return fmt.Errorf("node %q has unknown layer %q", dep, depNode.Layer)
			}
			if depRank > rank {
				return fmt.Errorf("node %q (layer %s) cannot depend on %q (layer %s): layers only flow downward",
					name, node.Layer, dep, depNode.Layer)
			}
		}
	}
	return nil
}

// cyclePath renders the portion of the recursion stack that forms the
// cycle, ending where it started.
func cyclePath(stack []string, repeat string) string {
	start := 0
	for i, name := range stack {
		if name == repeat {
			start = i
			break
		}
	}
	parts := append([]string{}, stack[start:]...)
	parts = append(parts, repeat)
	return strings.Join(parts, " -> ")
}
