package pinch

import (
	"errors"

	"github.com/ostreida/pinchnet/event"
	"github.com/ostreida/pinchnet/flower"
)

// Sentinel errors for pinch graph operations.
var (
	// ErrBadSplit indicates a split offset outside the edge range. This is an
	// invariant violation: callers must pre-validate offsets.
	ErrBadSplit = errors.New("pinch: split offset outside edge range")

	// ErrNoEdge indicates no edge covers a requested contig position.
	ErrNoEdge = errors.New("pinch: no edge at position")

	// ErrBadSegment indicates a malformed or mismatched segment pair.
	ErrBadSegment = errors.New("pinch: bad segment pair")

	// ErrInvariant indicates a graph contract was broken.
	ErrInvariant = errors.New("pinch: invariant violation")
)

// Segment addresses a run of bases on an oriented contig. Coordinates are
// signed and 1-based: Start >= 1 reads the forward strand from Start to End;
// the antiparallel twin is (-End, -Start).
type Segment struct {
	Contig int
	Start  int
	End    int
}

// Length returns the number of bases covered.
func (s Segment) Length() int { return s.End - s.Start + 1 }

// Reverse returns the antiparallel twin of the segment.
func (s Segment) Reverse() Segment { return Segment{Contig: s.Contig, Start: -s.End, End: -s.Start} }

// IsPositive reports whether the segment reads the forward strand.
func (s Segment) IsPositive() bool { return s.Start >= 1 }

// ContigKind distinguishes cap contigs (single-base end markers) from
// sequence contigs.
type ContigKind uint8

const (
	// CapContig is the one-base contig backing a cap or stub edge.
	CapContig ContigKind = iota
	// SequenceContig backs the interior of a thread.
	SequenceContig
)

// Contig describes one contig of the graph: the thread-local coordinate
// strip a set of edges addresses. Cap contigs carry the end and cap names
// they were built from; sequence contigs carry the backing sequence.
type Contig struct {
	Kind    ContigKind
	Name    string
	EndName string
	CapName string
	Seq     *flower.Sequence
	Event   *event.Event
}

// Vertex is a node of the pinch graph. Its black edges form the block the
// vertex bounds; grey neighbours are the thread adjacencies.
type Vertex struct {
	id      int
	black   []*Edge
	grey    map[int]struct{}
	deadEnd bool
}

// ID returns the arena index of the vertex, stable for its lifetime.
func (v *Vertex) ID() int { return v.id }

// BlackDegree returns the number of black edges leaving the vertex: the
// degree of the block it bounds.
func (v *Vertex) BlackDegree() int { return len(v.black) }

// BlackEdges returns the black edges leaving the vertex, in insertion order.
// The returned slice must not be modified.
func (v *Vertex) BlackEdges() []*Edge { return v.black }

// FirstBlackEdge returns the first black edge at the vertex, or nil.
func (v *Vertex) FirstBlackEdge() *Edge {
	if len(v.black) == 0 {
		return nil
	}
	return v.black[0]
}

// IsDeadEnd reports whether the vertex is the outer endpoint of an end.
func (v *Vertex) IsDeadEnd() bool { return v.deadEnd }

// Edge is one orientation of a black edge. Its twin is the antiparallel
// orientation; the pair is allocated together and destroyed together.
type Edge struct {
	seg  Segment
	from *Vertex
	to   *Vertex
	twin *Edge
}

// Segment returns the oriented segment the edge carries.
func (e *Edge) Segment() Segment { return e.seg }

// From returns the tail vertex of this orientation.
func (e *Edge) From() *Vertex { return e.from }

// To returns the head vertex of this orientation.
func (e *Edge) To() *Vertex { return e.to }

// Twin returns the antiparallel orientation of the edge.
func (e *Edge) Twin() *Edge { return e.twin }

// Length returns the number of bases the edge covers.
func (e *Edge) Length() int { return e.seg.Length() }

// PositiveOrientation returns the forward-strand orientation of the edge.
func (e *Edge) PositiveOrientation() *Edge {
	if e.seg.IsPositive() {
		return e
	}
	return e.twin
}
