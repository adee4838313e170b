// Package depgraph builds the type- and value-level dependency graphs of a
// module and computes an ordered sequence of strongly connected components,
// each flagged non-recursive or recursive.
package depgraph

import "github.com/freecoq/fcc/internal/ir"

// Vertex is one declaration's identity in a dependency graph: its source
// name (the graph's lookup key) plus the span used for deterministic
// tie-breaking.
type Vertex struct {
	Name string
	Span ir.Span
}

// Graph is a directed graph whose vertices are declarations and whose edges
// point from a declaration to each other declaration whose name it
// references.
type Graph struct {
	order   []string // insertion order of AddNode calls
	spans   map[string]ir.Span
	edges   map[string][]string
	nodeSet map[string]bool
}

// New creates an empty Graph.
func New() *Graph {
	return &Graph{
		spans:   map[string]ir.Span{},
		edges:   map[string][]string{},
		nodeSet: map[string]bool{},
	}
}

// AddNode registers a declaration vertex. Re-adding an existing name is a
// no-op.
func (g *Graph) AddNode(v Vertex) {
	if g.nodeSet[v.Name] {
		return
	}
	g.nodeSet[v.Name] = true
	g.order = append(g.order, v.Name)
	g.spans[v.Name] = v.Span
	g.edges[v.Name] = nil
}

// AddEdge records a dependency from caller on callee. Edges to names that
// are not themselves graph vertices (external/imported references) are
// simply not added — SCC computation only concerns declarations in this
// module.
func (g *Graph) AddEdge(caller, callee string) {
	if !g.nodeSet[caller] || !g.nodeSet[callee] {
		return
	}
	g.edges[caller] = append(g.edges[caller], callee)
}

// HasSelfEdge reports whether a vertex has an edge to itself (used to
// distinguish a size-1 non-recursive SCC from a size-1 self-recursive one).
func (g *Graph) HasSelfEdge(name string) bool {
	for _, e := range g.edges[name] {
		if e == name {
			return true
		}
	}
	return false
}
