package lineage

// FindCycles reports dependency cycles in the graph. Containment edges are
// structural and excluded. Each cycle is returned once as the node IDs along
// it; the traversal is a plain DFS with back-edge detection, which is enough
// for a warning on graphs of this size.
func FindCycles(g *Graph) [][]string {
	adjacency := map[string][]string{}
	for _, e := range g.Edges {
		if e.Kind == EdgeContains {
			continue
		}
		adjacency[e.From] = append(adjacency[e.From], e.To)
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := map[string]int{}
	var stack []string
	var cycles [][]string

	var visit func(id string)
	visit = func(id string) {
		state[id] = inStack
		stack = append(stack, id)
		for _, next := range adjacency[id] {
			switch state[next] {
			case unvisited:
				visit(next)
			case inStack:
				for i, sid := range stack {
					if sid == next {
						cycle := make([]string, len(stack)-i)
						copy(cycle, stack[i:])
						cycles = append(cycles, cycle)
						break
					}
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[id] = done
	}

	for _, n := range g.Nodes() {
		if state[n.ID] == unvisited {
			visit(n.ID)
		}
	}
	return cycles
}
