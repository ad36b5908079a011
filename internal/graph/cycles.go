package graph

// Cycles returns one witness cycle for every strongly connected component
// that contains a cycle, including self-loops. Each witness starts and ends
// with the same name. The result is deterministic: components are found by
// visiting tasks in name order and following edges in declaration order.
func (g *Graph) Cycles() [][]string {
	// Tarjan's algorithm.
	index := make(map[string]int)
	low := make(map[string]int)
	onStack := make(map[string]bool)
	var stack []string
	next := 0
	var components [][]string

	var strongConnect func(v string)
	strongConnect = func(v string) {
		index[v] = next
		low[v] = next
		next++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range g.nodes[v].deps {
			if _, seen := index[w]; !seen {
				strongConnect(w)
				low[v] = min(low[v], low[w])
			} else if onStack[w] {
				low[v] = min(low[v], index[w])
			}
		}

		if low[v] != index[v] {
			return
		}
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
		if len(comp) > 1 || g.hasSelfLoop(v) {
			components = append(components, comp)
		}
	}

	for _, k := range g.sortedKeys() {
		if _, seen := index[k]; !seen {
			strongConnect(k)
		}
	}

	cycles := make([][]string, 0, len(components))
	for _, comp := range components {
		cycles = append(cycles, g.witness(comp))
	}
	return cycles
}

func (g *Graph) hasSelfLoop(v string) bool {
	_, ok := g.nodes[v].depSet[v]
	return ok
}

// witness walks a strongly connected component from its smallest member
// until it returns there, producing a concrete cycle for error messages.
func (g *Graph) witness(comp []string) []string {
	members := make(map[string]bool, len(comp))
	start := comp[0]
	for _, c := range comp {
		members[c] = true
		if c < start {
			start = c
		}
	}

	// Breadth-first search back to start inside the component gives the
	// shortest cycle through start.
	parent := map[string]string{}
	queue := []string{start}
	visited := map[string]bool{}
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, w := range g.nodes[v].deps {
			if !members[w] {
				continue
			}
			if w == start {
				path := []string{start}
				for at := v; at != start; at = parent[at] {
					path = append(path, at)
				}
				// path is start, v, parent(v)... reversed apart from the head.
				for i, j := 1, len(path)-1; i < j; i, j = i+1, j-1 {
					path[i], path[j] = path[j], path[i]
				}
				return append(path, start)
			}
			if !visited[w] {
				visited[w] = true
				parent[w] = v
				queue = append(queue, w)
			}
		}
	}
	return append(comp, comp[0])
}
