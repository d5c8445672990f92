// Package dag provides a small dependency graph with explicit edges and
// deterministic level ordering.
package dag

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrDuplicateNode = errors.New("duplicate node")
	ErrUnknownNode   = errors.New("unknown node")
	ErrCycle         = errors.New("dependency cycle")
)

type node[T any] struct {
	id    string
	value T
	deps  []string
}

// Graph is a directed acyclic graph of values keyed by ID.
// Edges point from a node to the nodes it depends on.
type Graph[T any] struct {
	nodes map[string]*node[T]
	order []string
}

// New returns an empty graph.
func New[T any]() *Graph[T] {
	return &Graph[T]{nodes: map[string]*node[T]{}}
}

// Add inserts a node. Dependencies may reference nodes added later; they are
// checked by Levels.
func (g *Graph[T]) Add(id string, value T, deps ...string) error {
	if id == "" {
		return fmt.Errorf("node id is empty")
	}
	if _, ok := g.nodes[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, id)
	}
	g.nodes[id] = &node[T]{id: id, value: value, deps: dedupe(deps)}
	g.order = append(g.order, id)
	return nil
}

// Get returns the value stored under id.
func (g *Graph[T]) Get(id string) (T, bool) {
	n, ok := g.nodes[id]
	if !ok {
		var zero T
		return zero, false
	}
	return n.value, true
}

// Has reports whether id exists.
func (g *Graph[T]) Has(id string) bool {
	_, ok := g.nodes[id]
	return ok
}

// DependsOn returns the direct dependencies of id.
func (g *Graph[T]) DependsOn(id string) []string {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return append([]string(nil), n.deps...)
}

// IDs returns node IDs in insertion order.
func (g *Graph[T]) IDs() []string { return append([]string(nil), g.order...) }

// Len returns the number of nodes.
func (g *Graph[T]) Len() int { return len(g.order) }

// Levels groups nodes so that every node's dependencies are in earlier levels.
// Nodes within a level keep insertion order.
func (g *Graph[T]) Levels() ([][]string, error) {
	indeg := make(map[string]int, len(g.nodes))
	dependents := make(map[string][]string, len(g.nodes))
	for _, id := range g.order {
		n := g.nodes[id]
		for _, dep := range n.deps {
			if _, ok := g.nodes[dep]; !ok {
				return nil, fmt.Errorf("%w: %s depends on %s", ErrUnknownNode, id, dep)
			}
			dependents[dep] = append(dependents[dep], id)
		}
		indeg[id] = len(n.deps)
	}

	var levels [][]string
	done := 0
	var current []string
	for _, id := range g.order {
		if indeg[id] == 0 {
			current = append(current, id)
		}
	}
	for len(current) > 0 {
		levels = append(levels, current)
		done += len(current)
		ready := map[string]bool{}
		for _, id := range current {
			for _, d := range dependents[id] {
				indeg[d]--
				if indeg[d] == 0 {
					ready[d] = true
				}
			}
		}
		var next []string
		for _, id := range g.order {
			if ready[id] {
				next = append(next, id)
			}
		}
		current = next
	}
	if done != len(g.order) {
		var stuck []string
		for _, id := range g.order {
			if indeg[id] > 0 {
				stuck = append(stuck, id)
			}
		}
		return nil, fmt.Errorf("%w among %s", ErrCycle, strings.Join(stuck, ", "))
	}
	return levels, nil
}

// ReverseLevels returns Levels in teardown order.
func (g *Graph[T]) ReverseLevels() ([][]string, error) {
	levels, err := g.Levels()
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(levels)-1; i < j; i, j = i+1, j-1 {
		levels[i], levels[j] = levels[j], levels[i]
	}
	return levels, nil
}

func dedupe(in []string) []string {
	seen := make(map[string]bool, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
