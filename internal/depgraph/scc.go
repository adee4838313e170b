package depgraph

import "sort"

// SCC is one strongly connected component, labelled non-recursive (a
// singleton with no self-edge) or recursive (every other case, including
// singleton self-recursive functions).
type SCC struct {
	Members   []string // source names, in deterministic declaration order
	Recursive bool
}

// orderedNodes returns the graph's vertices sorted by source position, with
// insertion order as a final tiebreak. Sorting up front, rather than only
// at component membership time, makes the DFS root-selection order
// deterministic too.
func (g *Graph) orderedNodes() []string {
	nodes := append([]string(nil), g.order...)
	sort.SliceStable(nodes, func(i, j int) bool {
		a, b := g.spans[nodes[i]], g.spans[nodes[j]]
		if a.Start.Line != b.Start.Line {
			return a.Start.Line < b.Start.Line
		}
		return a.Start.Column < b.Start.Column
	})
	return nodes
}

// SCCs computes strongly connected components with Tarjan's algorithm and
// classifies each as recursive or not. The returned slice is already in
// reverse-topological order over the condensation (every component
// precedes those that depend on it): the post-order in which Tarjan's
// algorithm closes components is dependency-first, so no separate reversal
// step is needed.
func (g *Graph) SCCs() []SCC {
	index := 0
	var stack []string
	indices := map[string]int{}
	lowlink := map[string]int{}
	onStack := map[string]bool{}
	var rawSCCs [][]string

	var strongconnect func(string)
	strongconnect = func(v string) {
		indices[v] = index
		lowlink[v] = index
		index++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.edges[v] {
			if _, seen := indices[w]; !seen {
				strongconnect(w)
				if lowlink[w] < lowlink[v] {
					lowlink[v] = lowlink[w]
				}
			} else if onStack[w] {
				if indices[w] < lowlink[v] {
					lowlink[v] = indices[w]
				}
			}
		}

		if lowlink[v] == indices[v] {
			var comp []string
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			rawSCCs = append(rawSCCs, comp)
		}
	}

	for _, v := range g.orderedNodes() {
		if _, seen := indices[v]; !seen {
			strongconnect(v)
		}
	}

	out := make([]SCC, 0, len(rawSCCs))
	for _, comp := range rawSCCs {
		// comp is in Tarjan pop order (reverse of discovery); present
		// members in source-position order for determinism.
		members := append([]string(nil), comp...)
		sort.SliceStable(members, func(i, j int) bool {
			a, b := g.spans[members[i]], g.spans[members[j]]
			if a.Start.Line != b.Start.Line {
				return a.Start.Line < b.Start.Line
			}
			return a.Start.Column < b.Start.Column
		})

		recursive := len(members) > 1
		if len(members) == 1 && g.HasSelfEdge(members[0]) {
			recursive = true
		}
		out = append(out, SCC{Members: members, Recursive: recursive})
	}
	return out
}
