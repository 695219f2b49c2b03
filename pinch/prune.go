package pinch

import (
	"math"

	"github.com/ostreida/pinchnet/event"
	"github.com/ostreida/pinchnet/flower"
)

// RemoveOverAlignedEdges removes every black edge whose block degree exceeds
// maxDegree or whose tree coverage against net falls below minTreeCoverage
// (stub and cap edges are never removed), then removes any further non-stub
// edges reachable within extensionSteps grey hops of a removed edge.
// A non-positive maxDegree is treated as unbounded.
func (g *Graph) RemoveOverAlignedEdges(minTreeCoverage float64, maxDegree, extensionSteps int, net *flower.Net) {
	if maxDegree <= 0 {
		maxDegree = math.MaxInt
	}
	condemned := make(map[*Edge]struct{})
	var frontier []*Vertex

	for _, v := range g.Vertices() {
		if v.BlackDegree() == 0 {
			continue
		}
		first := v.FirstBlackEdge()
		if g.IsStubOrCap(first) {
			continue
		}
		over := v.BlackDegree() > maxDegree
		under := minTreeCoverage > 0 && g.TreeCoverage(v, net) < minTreeCoverage
		if over || under {
			for _, e := range v.black {
				condemned[e.PositiveOrientation()] = struct{}{}
			}
			frontier = append(frontier, v)
		}
	}

	// Extend by breadth-first grey traversal around the removed edges.
	visited := make(map[*Vertex]int)
	for _, v := range frontier {
		visited[v] = 0
	}
	for len(frontier) > 0 {
		v := frontier[0]
		frontier = frontier[1:]
		depth := visited[v]
		if depth >= extensionSteps {
			continue
		}
		for _, nb := range g.GreyNeighbours(v) {
			if _, seen := visited[nb]; seen {
				continue
			}
			visited[nb] = depth + 1
			frontier = append(frontier, nb)
			for _, e := range nb.black {
				if !g.IsStubOrCap(e) {
					condemned[e.PositiveOrientation()] = struct{}{}
				}
			}
		}
	}

	for e := range condemned {
		g.RemoveEdgePair(e)
	}
}

// RemoveTrivialGreyComponents deletes every grey-connected component that
// holds no black edge. The source vertex is always kept.
func (g *Graph) RemoveTrivialGreyComponents(tags map[*Vertex]int) {
	seen := make(map[*Vertex]bool)
	for _, start := range g.Vertices() {
		if seen[start] {
			continue
		}
		component := []*Vertex{start}
		seen[start] = true
		hasBlack := false
		for i := 0; i < len(component); i++ {
			v := component[i]
			if v.BlackDegree() > 0 || v == g.Source() {
				hasBlack = true
			}
			for _, nb := range g.GreyNeighbours(v) {
				if !seen[nb] {
					seen[nb] = true
					component = append(component, nb)
				}
			}
		}
		if hasBlack {
			continue
		}
		for _, v := range component {
			if tags != nil {
				delete(tags, v)
			}
			g.removeVertex(v)
		}
	}
}

// LinkStubComponentsToSink grey-connects the dead-end vertices of every
// connected component (black and grey edges both traversed) that does not
// already reach the source, so the subsequent cactus construction sees a
// single rooted graph.
func (g *Graph) LinkStubComponentsToSink() {
	for _, component := range g.components(nil) {
		reachesSource := false
		for _, v := range component {
			if v == g.Source() {
				reachesSource = true
				break
			}
		}
		if reachesSource {
			continue
		}
		for _, v := range component {
			if v.deadEnd {
				g.ConnectGrey(g.Source(), v)
			}
		}
	}
}

// RecursiveComponents partitions the live vertices into components connected
// by grey edges and by the given anchor black edges (either orientation).
// Components are ordered by their smallest vertex id.
func (g *Graph) RecursiveComponents(anchors []*Edge) [][]*Vertex {
	anchorSet := make(map[*Edge]struct{}, len(anchors))
	for _, e := range anchors {
		anchorSet[e.PositiveOrientation()] = struct{}{}
	}
	return g.components(anchorSet)
}

// components runs the flood fill behind RecursiveComponents and
// LinkStubComponentsToSink. A nil filter crosses every black edge; otherwise
// only anchor edges are crossed. Grey edges are always crossed.
func (g *Graph) components(anchors map[*Edge]struct{}) [][]*Vertex {
	var out [][]*Vertex
	seen := make(map[*Vertex]bool)
	for _, start := range g.Vertices() {
		if seen[start] {
			continue
		}
		component := []*Vertex{start}
		seen[start] = true
		for i := 0; i < len(component); i++ {
			v := component[i]
			for _, nb := range g.GreyNeighbours(v) {
				if !seen[nb] {
					seen[nb] = true
					component = append(component, nb)
				}
			}
			for _, e := range v.black {
				if anchors != nil {
					if _, ok := anchors[e.PositiveOrientation()]; !ok {
						continue
					}
				}
				if !seen[e.to] {
					seen[e.to] = true
					component = append(component, e.to)
				}
			}
		}
		out = append(out, component)
	}
	return out
}

// TreeCoverage scores the block at v: the fraction of the net's event tree
// branch length covered by the events of the block's segments.
func (g *Graph) TreeCoverage(v *Vertex, net *flower.Net) float64 {
	tree := net.EventTree()
	if tree == nil {
		return 0
	}
	events := make([]*event.Event, 0, len(v.black))
	for _, e := range v.black {
		if ev := g.contigs[e.seg.Contig].Event; ev != nil {
			events = append(events, ev)
		}
	}
	return tree.Coverage(events)
}
