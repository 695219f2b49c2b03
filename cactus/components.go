package cactus

import (
	"fmt"
	"sort"
)

// DiscoveryTimes returns the depth-first discovery time of every cactus
// vertex, starting from vertex 0 and following incident edges in creation
// order. Unreachable vertices are explored afterwards in id order.
func (g *Graph) DiscoveryTimes() []int {
	disc := make([]int, len(g.vertices))
	for i := range disc {
		disc[i] = -1
	}
	timer := 0
	var visit func(v *Vertex)
	visit = func(v *Vertex) {
		stack := []*Vertex{v}
		for len(stack) > 0 {
			u := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if disc[u.id] >= 0 {
				continue
			}
			disc[u.id] = timer
			timer++
			// Push neighbours in reverse so the first edge is explored first.
			for i := len(u.edges) - 1; i >= 0; i-- {
				if w := u.edges[i].to; disc[w.id] < 0 {
					stack = append(stack, w)
				}
			}
		}
	}
	for _, v := range g.vertices {
		if disc[v.id] < 0 {
			visit(v)
		}
	}
	return disc
}

// SortedBiConnectedComponents returns the bi-connected components of the
// cactus graph as oriented cycles of edges, sorted by the discovery time of
// their starting vertex. In a cactus every bi-connected component is a
// simple cycle; each is reported walking away from its earliest-discovered
// vertex along its smallest-index edge.
func (g *Graph) SortedBiConnectedComponents() ([][]*Edge, error) {
	disc := g.DiscoveryTimes()
	groups := g.biConnectedEdgeGroups()

	var out [][]*Edge
	for _, group := range groups {
		cycle, err := orientCycle(group, disc)
		if err != nil {
			return nil, err
		}
		out = append(out, cycle)
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := disc[out[i][0].from.id], disc[out[j][0].from.id]
		if di != dj {
			return di < dj
		}
		return out[i][0].index < out[j][0].index
	})
	return out, nil
}

// biConnectedEdgeGroups partitions the canonical edges into bi-connected
// components with the classic articulation-point edge-stack search.
func (g *Graph) biConnectedEdgeGroups() [][]*Edge {
	n := len(g.vertices)
	disc := make([]int, n)
	low := make([]int, n)
	for i := range disc {
		disc[i] = -1
	}
	timer := 0
	var edgeStack []*Edge
	var groups [][]*Edge
	used := make([]bool, len(g.edges))

	pop := func(until *Edge) {
		var group []*Edge
		for len(edgeStack) > 0 {
			top := edgeStack[len(edgeStack)-1]
			edgeStack = edgeStack[:len(edgeStack)-1]
			group = append(group, top)
			if top == until {
				break
			}
		}
		if len(group) > 0 {
			groups = append(groups, group)
		}
	}

	var dfs func(v *Vertex)
	dfs = func(v *Vertex) {
		disc[v.id] = timer
		low[v.id] = timer
		timer++
		for _, e := range v.edges {
			ce := e.Canonical()
			if e.from == e.to {
				// A self loop is its own component.
				if !used[ce.index] {
					used[ce.index] = true
					groups = append(groups, []*Edge{ce})
				}
				continue
			}
			if used[ce.index] {
				continue
			}
			w := e.to
			if disc[w.id] < 0 {
				used[ce.index] = true
				edgeStack = append(edgeStack, ce)
				dfs(w)
				if low[w.id] < low[v.id] {
					low[v.id] = low[w.id]
				}
				if low[w.id] >= disc[v.id] {
					pop(ce)
				}
			} else if disc[w.id] < disc[v.id] {
				used[ce.index] = true
				edgeStack = append(edgeStack, ce)
				if disc[w.id] < low[v.id] {
					low[v.id] = disc[w.id]
				}
			}
		}
	}
	for _, v := range g.vertices {
		if disc[v.id] < 0 {
			dfs(v)
			pop(nil)
		}
	}
	return groups
}

// orientCycle orders a bi-connected component as a cycle starting at its
// earliest-discovered vertex and walking its smallest-index incident edge.
func orientCycle(group []*Edge, disc []int) ([]*Edge, error) {
	if len(group) == 1 && group[0].from == group[0].to {
		return group, nil
	}
	// Incident component edges per vertex.
	incident := make(map[*Vertex][]*Edge)
	for _, e := range group {
		incident[e.from] = append(incident[e.from], e)
		incident[e.to] = append(incident[e.to], e.twin)
	}
	var start *Vertex
	for v := range incident {
		if len(incident[v]) != 2 {
			return nil, fmt.Errorf("%w: component vertex with %d incident edges", ErrNotCactus, len(incident[v]))
		}
		if start == nil || disc[v.id] < disc[start.id] {
			start = v
		}
	}
	first := incident[start][0]
	if second := incident[start][1]; second.index < first.index {
		first = second
	}
	cycle := []*Edge{first}
	usedPair := map[int]bool{first.index: true}
	at := first.to
	for at != start {
		var next *Edge
		for _, e := range incident[at] {
			if !usedPair[e.index] {
				next = e
				break
			}
		}
		if next == nil {
			return nil, fmt.Errorf("%w: open cycle", ErrNotCactus)
		}
		usedPair[next.index] = true
		cycle = append(cycle, next)
		at = next.to
	}
	if len(cycle) != len(group) {
		return nil, fmt.Errorf("%w: component is not a single cycle", ErrNotCactus)
	}
	return cycle, nil
}

// CheckOnly2EdgeConnected verifies every bi-connected component is a cycle
// of length at least two (self loops excepted); run after CirculariseStems.
func (g *Graph) CheckOnly2EdgeConnected() error {
	comps, err := g.SortedBiConnectedComponents()
	if err != nil {
		return err
	}
	for _, comp := range comps {
		if len(comp) < 2 && !(comp[0].from == comp[0].to) {
			return fmt.Errorf("%w: bridge survives circularisation", ErrNotCactus)
		}
	}
	return nil
}
