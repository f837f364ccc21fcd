package graph

import (
	"sort"

	"github.com/walkr-io/walkr/internal/report"
)

// findCycles runs Tarjan's strongly-connected-component algorithm over the
// resolved module-dependency edges. A component with more than one module,
// or a single module importing itself, is a circular dependency. Nodes and
// adjacency lists are iterated in sorted order so the result is independent
// of discovery order.
func findCycles(modules []*report.ModuleNode, edges []report.ImportEdge) [][]string {
	adj := make(map[string][]string, len(modules))
	selfEdge := make(map[string]bool)
	for _, m := range modules {
		adj[m.Name] = nil
	}
	for _, e := range edges {
		if e.Resolution != report.Resolved {
			continue
		}
		if e.From == e.To {
			selfEdge[e.From] = true
			continue
		}
		adj[e.From] = append(adj[e.From], e.To)
	}
	for name := range adj {
		sort.Strings(adj[name])
	}

	t := &tarjan{
		adj:     adj,
		index:   make(map[string]int, len(adj)),
		lowlink: make(map[string]int, len(adj)),
		onStack: make(map[string]bool, len(adj)),
	}
	names := make([]string, 0, len(adj))
	for name := range adj {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, visited := t.index[name]; !visited {
			t.strongconnect(name)
		}
	}

	var cycles [][]string
	for _, comp := range t.components {
		if len(comp) > 1 || selfEdge[comp[0]] {
			sort.Strings(comp)
			cycles = append(cycles, comp)
		}
	}
	sort.Slice(cycles, func(i, j int) bool { return cycles[i][0] < cycles[j][0] })
	return cycles
}

type tarjan struct {
	adj        map[string][]string
	counter    int
	index      map[string]int
	lowlink    map[string]int
	onStack    map[string]bool
	stack      []string
	components [][]string
}

func (t *tarjan) strongconnect(v string) {
	t.index[v] = t.counter
	t.lowlink[v] = t.counter
	t.counter++
	t.stack = append(t.stack, v)
	t.onStack[v] = true

	for _, w := range t.adj[v] {
		if _, visited := t.index[w]; !visited {
			t.strongconnect(w)
			t.lowlink[v] = min(t.lowlink[v], t.lowlink[w])
		} else if t.onStack[w] {
			t.lowlink[v] = min(t.lowlink[v], t.index[w])
		}
	}

	if t.lowlink[v] == t.index[v] {
		var comp []string
		for {
			w := t.stack[len(t.stack)-1]
			t.stack = t.stack[:len(t.stack)-1]
			t.onStack[w] = false
			comp = append(comp, w)
			if w == v {
				break
			}
		}
		t.components = append(t.components, comp)
	}
}
