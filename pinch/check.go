package pinch

import (
	"fmt"
	"io"
	"sort"

	"github.com/ostreida/pinchnet/flower"
)

// AnchorEdges returns one representative black edge per block that anchors
// the adjacency-component partition of the next pass: non-stub blocks of
// length at least one whose tree coverage meets the threshold.
func (g *Graph) AnchorEdges(minTreeCoverage float64, net *flower.Net) []*Edge {
	var anchors []*Edge
	seen := make(map[*Edge]struct{})
	for _, v := range g.Vertices() {
		e := v.FirstBlackEdge()
		if e == nil || g.IsStubOrCap(e) {
			continue
		}
		pe := e.PositiveOrientation()
		if _, ok := seen[pe]; ok {
			continue
		}
		seen[pe] = struct{}{}
		if g.TreeCoverage(v, net) >= minTreeCoverage {
			anchors = append(anchors, pe)
		}
	}
	return anchors
}

// Check validates the graph contracts: twin pairing, endpoint bookkeeping,
// grey symmetry and registry consistency. It returns ErrInvariant-wrapped
// errors rather than proceeding on a broken graph.
func (g *Graph) Check() error {
	for _, v := range g.Vertices() {
		for _, e := range v.black {
			if e.from != v {
				return fmt.Errorf("%w: black edge anchored at wrong vertex %d", ErrInvariant, v.id)
			}
			if e.twin == nil || e.twin.twin != e || e.twin == e {
				return fmt.Errorf("%w: broken twin pairing at vertex %d", ErrInvariant, v.id)
			}
			if e.twin.from != e.to || e.twin.to != e.from {
				return fmt.Errorf("%w: twin endpoints disagree at vertex %d", ErrInvariant, v.id)
			}
			if e.seg.Reverse() != e.twin.seg {
				return fmt.Errorf("%w: twin segment disagrees at vertex %d", ErrInvariant, v.id)
			}
		}
		for id := range v.grey {
			nb := g.Vertex(id)
			if nb == nil {
				return fmt.Errorf("%w: grey edge to removed vertex %d", ErrInvariant, id)
			}
			if _, ok := nb.grey[v.id]; !ok {
				return fmt.Errorf("%w: asymmetric grey edge %d-%d", ErrInvariant, v.id, id)
			}
		}
	}
	for contig, edges := range g.registry {
		for i, e := range edges {
			if e.seg.Contig != contig || !e.seg.IsPositive() {
				return fmt.Errorf("%w: misfiled edge on contig %d", ErrInvariant, contig)
			}
			if i > 0 && edges[i-1].seg.End >= e.seg.Start {
				return fmt.Errorf("%w: overlapping edges on contig %d", ErrInvariant, contig)
			}
		}
	}
	return nil
}

// CheckDegree verifies every block respects the degree cap.
func (g *Graph) CheckDegree(maxDegree int) error {
	for _, v := range g.Vertices() {
		if v.BlackDegree() > maxDegree {
			return fmt.Errorf("%w: vertex %d has degree %d > %d", ErrInvariant, v.id, v.BlackDegree(), maxDegree)
		}
	}
	return nil
}

// WriteDOT emits a Graphviz snapshot of the graph: black edges solid,
// labelled with their segments; grey edges dashed.
func (g *Graph) WriteDOT(w io.Writer) error {
	if _, err := fmt.Fprintln(w, "graph pinch {"); err != nil {
		return err
	}
	for _, v := range g.Vertices() {
		shape := "circle"
		if v.deadEnd {
			shape = "doublecircle"
		}
		if _, err := fmt.Fprintf(w, "\tn%d [shape=%s];\n", v.id, shape); err != nil {
			return err
		}
	}
	var blacks []*Edge
	for _, edges := range g.registry {
		blacks = append(blacks, edges...)
	}
	sort.Slice(blacks, func(i, j int) bool {
		if blacks[i].seg.Contig != blacks[j].seg.Contig {
			return blacks[i].seg.Contig < blacks[j].seg.Contig
		}
		return blacks[i].seg.Start < blacks[j].seg.Start
	})
	for _, e := range blacks {
		if _, err := fmt.Fprintf(w, "\tn%d -- n%d [label=\"%d:%d-%d\"];\n",
			e.from.id, e.to.id, e.seg.Contig, e.seg.Start, e.seg.End); err != nil {
			return err
		}
	}
	for _, v := range g.Vertices() {
		for _, nb := range g.GreyNeighbours(v) {
			if nb.id > v.id {
				if _, err := fmt.Fprintf(w, "\tn%d -- n%d [style=dashed];\n", v.id, nb.id); err != nil {
					return err
				}
			}
		}
	}
	_, err := fmt.Fprintln(w, "}")
	return err
}
