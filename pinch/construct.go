package pinch

import (
	"fmt"

	"github.com/ostreida/pinchnet/flower"
)

// FromFlower builds the initial pinch graph of a net. Every end contributes
// an outer (dead-end) and an inner vertex; attached ends grey-connect their
// outer vertex to the source. Every forward-strand cap contributes a thread:
// a one-base left cap edge, a sequence edge covering the interior (omitted
// when empty), and a one-base right cap edge at the cap's adjacency, wired
// by grey edges. The three contigs of a thread are allocated consecutively
// so thread walks can step across contig boundaries.
func FromFlower(net *flower.Net) (*Graph, error) {
	g := NewGraph()

	outer := make(map[string]*Vertex)
	inner := make(map[string]*Vertex)
	for _, end := range net.Ends() {
		vo := g.NewVertex()
		vo.deadEnd = true
		vi := g.NewVertex()
		if end.IsAttached() {
			g.ConnectGrey(g.Source(), vo)
		}
		outer[end.Name()] = vo
		inner[end.Name()] = vi
	}

	for _, end := range net.Ends() {
		for _, cap := range end.Caps() {
			if !cap.Strand() {
				continue
			}
			// A thread is walked once, from its forward-strand left cap to
			// the right cap it is adjacent to.
			adj := cap.Adjacency()
			if adj == nil {
				return nil, fmt.Errorf("%w: cap %q of end %q has no adjacency", ErrInvariant, cap.Name(), end.Name())
			}
			seq := cap.Sequence()

			// Left cap edge.
			i := cap.Coordinate() + 1
			leftContig := g.addContig(Contig{
				Kind:    CapContig,
				Name:    end.Name() + "." + cap.Name(),
				EndName: end.Name(),
				CapName: cap.Name(),
				Seq:     seq,
				Event:   cap.Event(),
			})
			leftCap, err := g.AddEdgePair(Segment{Contig: leftContig, Start: i, End: i},
				outer[end.Name()], inner[end.Name()])
			if err != nil {
				return nil, err
			}

			// Sequence edge. The contig entry is appended even when the
			// interior is empty, keeping thread contigs consecutive.
			length := adj.Coordinate() - cap.Coordinate() - 1
			if length < 0 {
				return nil, fmt.Errorf("%w: cap %q adjacency precedes it", ErrInvariant, cap.Name())
			}
			var seqName string
			if seq != nil {
				seqName = seq.Name()
			}
			seqContig := g.addContig(Contig{
				Kind:  SequenceContig,
				Name:  seqName,
				Seq:   seq,
				Event: cap.Event(),
			})
			var middle *Edge
			if length > 0 {
				vm1 := g.NewVertex()
				vm2 := g.NewVertex()
				middle, err = g.AddEdgePair(Segment{Contig: seqContig, Start: i + 1, End: i + length}, vm1, vm2)
				if err != nil {
					return nil, err
				}
			}

			// Right cap edge at the adjacency's end.
			adjEnd := adj.PositiveOrientation().End()
			j := adj.Coordinate() + 1
			rightContig := g.addContig(Contig{
				Kind:    CapContig,
				Name:    adjEnd.Name() + "." + adj.Name(),
				EndName: adjEnd.Name(),
				CapName: adj.Name(),
				Seq:     seq,
				Event:   adj.Event(),
			})
			rightCap, err := g.AddEdgePair(Segment{Contig: rightContig, Start: j, End: j},
				inner[adjEnd.Name()], outer[adjEnd.Name()])
			if err != nil {
				return nil, err
			}

			// Grey wiring along the thread.
			if middle != nil {
				g.ConnectGrey(leftCap.To(), middle.From())
				g.ConnectGrey(middle.To(), rightCap.From())
			} else {
				g.ConnectGrey(leftCap.To(), rightCap.From())
			}
		}
	}

	return g, nil
}

// EndVertices returns, for each end of the net the graph was built from, the
// outer vertex holding the end's cap edges. Keyed by end name; recomputed
// from the cap contig records so it stays valid across merges.
func (g *Graph) EndVertices() map[string]*Vertex {
	out := make(map[string]*Vertex)
	for i, c := range g.contigs {
		if c.Kind != CapContig {
			continue
		}
		for _, e := range g.registry[i] {
			// The dead-end side of a cap edge is the end's outer vertex.
			if e.from.deadEnd {
				out[c.EndName] = e.from
			} else if e.to.deadEnd {
				out[c.EndName] = e.to
			}
		}
	}
	return out
}
