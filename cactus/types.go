package cactus

import (
	"errors"

	"github.com/ostreida/pinchnet/pinch"
)

// Sentinel errors for cactus construction.
var (
	// ErrNotCactus indicates the contracted graph violated the cactus
	// property (an edge on more than one cycle).
	ErrNotCactus = errors.New("cactus: graph is not a cactus")

	// ErrEmptyGraph indicates construction from a graph with no vertices.
	ErrEmptyGraph = errors.New("cactus: empty pinch graph")
)

// Vertex is a cactus vertex: one three-edge-connected class of adjacency
// components, carrying the pinch vertices it contracted.
type Vertex struct {
	id            int
	pinchVertices []*pinch.Vertex
	edges         []*Edge
}

// ID returns the cactus vertex id; vertex 0 contains the pinch source.
func (v *Vertex) ID() int { return v.id }

// PinchVertices returns the contracted pinch vertices in id order.
func (v *Vertex) PinchVertices() []*pinch.Vertex { return v.pinchVertices }

// Edges returns the incident edge orientations leaving this vertex.
func (v *Vertex) Edges() []*Edge { return v.edges }

// Edge is one orientation of a cactus edge: an underlying block (or a
// phantom stem twin added by CirculariseStems) between two cactus vertices.
type Edge struct {
	index      int // pair index in creation order
	canon      bool
	from       *Vertex
	to         *Vertex
	twin       *Edge
	pinchEdges []*pinch.Edge
	stem       bool
}

// Index returns the creation-order index of the edge pair.
func (e *Edge) Index() int { return e.index }

// Canonical returns the creation orientation of the edge pair.
func (e *Edge) Canonical() *Edge {
	if e.canon {
		return e
	}
	return e.twin
}

// From returns the tail vertex of this orientation.
func (e *Edge) From() *Vertex { return e.from }

// To returns the head vertex of this orientation.
func (e *Edge) To() *Vertex { return e.to }

// Twin returns the antiparallel orientation.
func (e *Edge) Twin() *Edge { return e.twin }

// IsStem reports whether the edge is a phantom added to circularise a
// bridge; stem edges carry no blocks.
func (e *Edge) IsStem() bool { return e.stem }

// PinchEdges returns the underlying black edges of the block, oriented with
// this cactus edge.
func (e *Edge) PinchEdges() []*pinch.Edge { return e.pinchEdges }

// FirstPinchEdge returns the first underlying black edge, or nil for stems.
func (e *Edge) FirstPinchEdge() *pinch.Edge {
	if len(e.pinchEdges) == 0 {
		return nil
	}
	return e.pinchEdges[0]
}

// Length returns the base length of the underlying block (zero for stems).
func (e *Edge) Length() int {
	if len(e.pinchEdges) == 0 {
		return 0
	}
	return e.pinchEdges[0].Length()
}

// Graph is the cactus graph.
type Graph struct {
	vertices []*Vertex
	edges    []*Edge // canonical orientations in creation order
}

// Vertices returns the cactus vertices in id order.
func (g *Graph) Vertices() []*Vertex { return g.vertices }

// VertexNumber returns the number of cactus vertices.
func (g *Graph) VertexNumber() int { return len(g.vertices) }

// Edges returns the canonical edge orientations in creation order.
func (g *Graph) Edges() []*Edge { return g.edges }

// newVertex appends a vertex to the graph.
func (g *Graph) newVertex() *Vertex {
	v := &Vertex{id: len(g.vertices)}
	g.vertices = append(g.vertices, v)
	return v
}

// addEdgePair wires an edge pair between from and to.
func (g *Graph) addEdgePair(from, to *Vertex, pinchEdges []*pinch.Edge, stem bool) *Edge {
	e := &Edge{index: len(g.edges), canon: true, from: from, to: to, pinchEdges: pinchEdges, stem: stem}
	r := &Edge{index: len(g.edges), from: to, to: from, stem: stem}
	if len(pinchEdges) > 0 {
		r.pinchEdges = make([]*pinch.Edge, len(pinchEdges))
		for i, pe := range pinchEdges {
			r.pinchEdges[i] = pe.Twin()
		}
	}
	e.twin, r.twin = r, e
	from.edges = append(from.edges, e)
	to.edges = append(to.edges, r)
	g.edges = append(g.edges, e)
	return e
}
