package pinch

import (
	"fmt"
	"sort"
)

// Graph is the pinch graph: a vertex arena, paired black edges registered
// per contig, and grey adjacency edges. Vertex 0 is the distinguished
// source/sink vertex.
type Graph struct {
	vertices []*Vertex // arena; removed slots are nil
	contigs  []Contig
	registry map[int][]*Edge // contig -> forward edges sorted by start
	seqIndex map[string]int  // sequence name -> sequence contig index
}

// NewGraph creates a graph holding only the source vertex.
func NewGraph() *Graph {
	g := &Graph{
		registry: make(map[int][]*Edge),
		seqIndex: make(map[string]int),
	}
	g.NewVertex() // id 0: the source/sink
	return g
}

// Source returns the distinguished source/sink vertex.
func (g *Graph) Source() *Vertex { return g.vertices[0] }

// NewVertex appends a vertex to the arena.
func (g *Graph) NewVertex() *Vertex {
	v := &Vertex{id: len(g.vertices), grey: make(map[int]struct{})}
	g.vertices = append(g.vertices, v)
	return v
}

// Vertex returns the vertex with the given id, or nil if removed.
func (g *Graph) Vertex(id int) *Vertex {
	if id < 0 || id >= len(g.vertices) {
		return nil
	}
	return g.vertices[id]
}

// VertexNumber returns the number of live vertices.
func (g *Graph) VertexNumber() int {
	n := 0
	for _, v := range g.vertices {
		if v != nil {
			n++
		}
	}
	return n
}

// Vertices returns the live vertices in id order.
func (g *Graph) Vertices() []*Vertex {
	out := make([]*Vertex, 0, len(g.vertices))
	for _, v := range g.vertices {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

// EdgeNumber returns the number of black edge pairs.
func (g *Graph) EdgeNumber() int {
	n := 0
	for _, edges := range g.registry {
		n += len(edges)
	}
	return n
}

// Contig returns the contig record for the given index.
func (g *Graph) Contig(i int) Contig { return g.contigs[i] }

// ContigNumber returns the number of contigs.
func (g *Graph) ContigNumber() int { return len(g.contigs) }

// SequenceContig returns the contig index backing the named sequence.
func (g *Graph) SequenceContig(name string) (int, bool) {
	i, ok := g.seqIndex[name]
	return i, ok
}

// addContig appends a contig record and returns its index.
func (g *Graph) addContig(c Contig) int {
	g.contigs = append(g.contigs, c)
	i := len(g.contigs) - 1
	if c.Kind == SequenceContig && c.Seq != nil {
		g.seqIndex[c.Seq.Name()] = i
	}
	return i
}

// ConnectGrey installs the undirected grey edge between a and b. Self loops
// are dropped.
func (g *Graph) ConnectGrey(a, b *Vertex) {
	if a == b {
		return
	}
	a.grey[b.id] = struct{}{}
	b.grey[a.id] = struct{}{}
}

// disconnectGrey removes the grey edge between a and b, if present.
func (g *Graph) disconnectGrey(a, b *Vertex) {
	delete(a.grey, b.id)
	delete(b.grey, a.id)
}

// GreyNeighbours returns v's grey neighbours sorted by id.
func (g *Graph) GreyNeighbours(v *Vertex) []*Vertex {
	ids := make([]int, 0, len(v.grey))
	for id := range v.grey {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	out := make([]*Vertex, 0, len(ids))
	for _, id := range ids {
		if nb := g.vertices[id]; nb != nil {
			out = append(out, nb)
		}
	}
	return out
}

// AddEdgePair creates the black edge pair carrying seg (which must be a
// forward segment) between from and to, registers the forward orientation,
// and returns it.
func (g *Graph) AddEdgePair(seg Segment, from, to *Vertex) (*Edge, error) {
	if !seg.IsPositive() || seg.Length() < 1 {
		return nil, fmt.Errorf("%w: segment %+v", ErrBadSegment, seg)
	}
	e := &Edge{seg: seg, from: from, to: to}
	r := &Edge{seg: seg.Reverse(), from: to, to: from}
	e.twin, r.twin = r, e
	from.black = append(from.black, e)
	to.black = append(to.black, r)
	g.registryInsert(e)
	return e, nil
}

// RemoveEdgePair deletes both orientations of the edge from the graph.
func (g *Graph) RemoveEdgePair(e *Edge) {
	e = e.PositiveOrientation()
	removeBlack(e.from, e)
	removeBlack(e.to, e.twin)
	g.registryDelete(e)
}

func removeBlack(v *Vertex, e *Edge) {
	for i, other := range v.black {
		if other == e {
			v.black = append(v.black[:i], v.black[i+1:]...)
			return
		}
	}
}

// registryInsert places a forward edge into its contig's sorted slice.
func (g *Graph) registryInsert(e *Edge) {
	edges := g.registry[e.seg.Contig]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].seg.Start >= e.seg.Start })
	edges = append(edges, nil)
	copy(edges[i+1:], edges[i:])
	edges[i] = e
	g.registry[e.seg.Contig] = edges
}

// registryDelete removes a forward edge from its contig's sorted slice.
func (g *Graph) registryDelete(e *Edge) {
	edges := g.registry[e.seg.Contig]
	for i, other := range edges {
		if other == e {
			g.registry[e.seg.Contig] = append(edges[:i], edges[i+1:]...)
			return
		}
	}
}

// EdgeContaining returns the forward edge covering position pos (1-based) on
// the contig.
func (g *Graph) EdgeContaining(contig, pos int) (*Edge, error) {
	edges := g.registry[contig]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].seg.End >= pos })
	if i < len(edges) && edges[i].seg.Start <= pos {
		return edges[i], nil
	}
	return nil, fmt.Errorf("%w: contig %d position %d", ErrNoEdge, contig, pos)
}

// ContigEdges returns the forward edges of the contig sorted by start.
// The returned slice must not be modified.
func (g *Graph) ContigEdges(contig int) []*Edge { return g.registry[contig] }

// NextEdge returns the edge following e along its thread, honouring
// orientation: walking off the end of a contig continues onto the adjacent
// contig of the same thread (contigs of one thread are allocated
// consecutively). Returns nil at the end of the thread.
func (g *Graph) NextEdge(e *Edge) *Edge {
	if e.seg.IsPositive() {
		edges := g.registry[e.seg.Contig]
		i := sort.Search(len(edges), func(i int) bool { return edges[i].seg.Start > e.seg.End })
		if i < len(edges) {
			return edges[i]
		}
		// Walk onto the following contigs of the thread; a zero-length
		// sequence contig may be empty.
		for c := e.seg.Contig; g.sameThread(c, c+1); c++ {
			if next := g.registry[c+1]; len(next) > 0 {
				return next[0]
			}
		}
		return nil
	}
	// Reverse orientation: step leftwards on the forward registry and flip.
	fwd := e.twin
	edges := g.registry[fwd.seg.Contig]
	i := sort.Search(len(edges), func(i int) bool { return edges[i].seg.Start >= fwd.seg.Start })
	if i > 0 {
		return edges[i-1].twin
	}
	for c := fwd.seg.Contig; c > 0 && g.sameThread(c-1, c); c-- {
		if prev := g.registry[c-1]; len(prev) > 0 {
			return prev[len(prev)-1].twin
		}
	}
	return nil
}

// sameThread reports whether two consecutive contig indices belong to the
// same thread (cap, sequence, cap triple).
func (g *Graph) sameThread(a, b int) bool {
	if a < 0 || b >= len(g.contigs) {
		return false
	}
	// Threads are laid out capL (kind cap), sequence, capR (kind cap): a
	// sequence contig glues to the caps either side; two cap contigs never
	// share a thread boundary.
	return g.contigs[a].Kind == SequenceContig || g.contigs[b].Kind == SequenceContig
}

// IsStubOrCap reports whether the edge is a cap or stub edge rather than a
// sequence edge.
func (g *Graph) IsStubOrCap(e *Edge) bool {
	return g.contigs[e.seg.Contig].Kind == CapContig
}

// SplitEdge splits the forward orientation of e at offset (0 < offset <
// length): the left part keeps offset bases. The two fresh interior vertices
// are grey-connected and inherit the tags of the old endpoints through tags
// (which may be nil). Returns the left and right forward edges.
func (g *Graph) SplitEdge(e *Edge, offset int, tags map[*Vertex]int) (*Edge, *Edge, error) {
	e = e.PositiveOrientation()
	if offset <= 0 || offset >= e.Length() {
		return nil, nil, fmt.Errorf("%w: offset %d of %d", ErrBadSplit, offset, e.Length())
	}
	seg := e.seg
	from, to := e.from, e.to
	g.RemoveEdgePair(e)

	v1 := g.NewVertex()
	v2 := g.NewVertex()
	g.ConnectGrey(v1, v2)
	if tags != nil {
		tags[v1] = tags[from]
		tags[v2] = tags[to]
	}
	left, err := g.AddEdgePair(Segment{Contig: seg.Contig, Start: seg.Start, End: seg.Start + offset - 1}, from, v1)
	if err != nil {
		return nil, nil, err
	}
	right, err := g.AddEdgePair(Segment{Contig: seg.Contig, Start: seg.Start + offset, End: seg.End}, v2, to)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// MergeVertices folds b into a: black edges re-anchor, grey neighbours
// transfer, and b leaves the arena. Tags for b are dropped. Merging a vertex
// with itself is a no-op. Returns a.
func (g *Graph) MergeVertices(a, b *Vertex, tags map[*Vertex]int) *Vertex {
	if a == b {
		return a
	}
	for _, e := range b.black {
		e.from = a
		e.twin.to = a
		a.black = append(a.black, e)
	}
	b.black = nil
	for id := range b.grey {
		nb := g.vertices[id]
		delete(nb.grey, b.id)
		g.ConnectGrey(a, nb)
	}
	b.grey = nil
	if b.deadEnd {
		a.deadEnd = true
	}
	if tags != nil {
		delete(tags, b)
	}
	g.vertices[b.id] = nil
	return a
}

// removeVertex deletes an isolated vertex from the arena.
func (g *Graph) removeVertex(v *Vertex) {
	for id := range v.grey {
		if nb := g.vertices[id]; nb != nil {
			delete(nb.grey, v.id)
		}
	}
	g.vertices[v.id] = nil
}
