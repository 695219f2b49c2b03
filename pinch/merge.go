package pinch

import "fmt"

// MergeFilter decides whether an aligned segment pair enters the graph.
// Implementations may mutate the segments (trimming) before returning; a
// false return discards the pair silently.
type MergeFilter interface {
	Filter(a, b *Segment) bool
}

// MergeFilterFunc adapts a function to the MergeFilter capability.
type MergeFilterFunc func(a, b *Segment) bool

// Filter calls the function.
func (f MergeFilterFunc) Filter(a, b *Segment) bool { return f(a, b) }

// MergeFiltered passes the pair through the filter and folds it into the
// graph when accepted. A nil filter accepts everything unchanged.
func (g *Graph) MergeFiltered(a, b Segment, filter MergeFilter, tags map[*Vertex]int) error {
	if filter != nil && !filter.Filter(&a, &b) {
		return nil
	}
	return g.MergeSegments(a, b, tags)
}

// MergeSegments folds the aligned pair (a, b) into the graph: both sides are
// split at the necessary offsets, then tiled and merged edge by edge. Tags
// gate the merges: an edge pair whose endpoint tags disagree is skipped (the
// alignment is discarded for that tile), preserving the adjacency-component
// partition. Self-tiles (an edge aligned to itself or its twin) are skipped.
func (g *Graph) MergeSegments(a, b Segment, tags map[*Vertex]int) error {
	if a.Length() != b.Length() || a.Length() < 1 {
		return fmt.Errorf("%w: lengths %d and %d", ErrBadSegment, a.Length(), b.Length())
	}
	rem := a.Length()
	p1, p2 := a.Start, b.Start
	for rem > 0 {
		// Ensure edge boundaries at both cursors. Resolving the second side
		// may split the first side's edge when the pair self-overlaps, so the
		// first side is resolved again once both boundaries exist.
		if _, err := g.edgeStartingAt(a.Contig, p1, tags); err != nil {
			return err
		}
		e2, err := g.edgeStartingAt(b.Contig, p2, tags)
		if err != nil {
			return err
		}
		e1, err := g.edgeStartingAt(a.Contig, p1, tags)
		if err != nil {
			return err
		}
		tile := min3(e1.Length(), e2.Length(), rem)
		if e1, err = g.splitOrientedPrefix(e1, tile, tags); err != nil {
			return err
		}
		// Splitting the first side replaces the shared edge when the tiles
		// coincide; the second side is re-resolved before its own trim.
		if e2, err = g.edgeStartingAt(b.Contig, p2, tags); err != nil {
			return err
		}
		if e2, err = g.splitOrientedPrefix(e2, tile, tags); err != nil {
			return err
		}
		if e1 != e2 && e1 != e2.twin {
			g.mergeEdgePair(e1, e2, tags)
		}
		p1 += tile
		p2 += tile
		rem -= tile
	}
	return nil
}

// edgeStartingAt returns the oriented edge whose oriented segment begins
// exactly at the signed position, splitting a covering edge when needed.
func (g *Graph) edgeStartingAt(contig, pos int, tags map[*Vertex]int) (*Edge, error) {
	if pos > 0 {
		e, err := g.EdgeContaining(contig, pos)
		if err != nil {
			return nil, err
		}
		if e.seg.Start < pos {
			_, right, err := g.SplitEdge(e, pos-e.seg.Start, tags)
			if err != nil {
				return nil, err
			}
			return right, nil
		}
		return e, nil
	}
	// Reverse strand: the oriented edge starting at pos is the twin of the
	// forward edge ending at -pos.
	x := -pos
	e, err := g.EdgeContaining(contig, x)
	if err != nil {
		return nil, err
	}
	if e.seg.End > x {
		left, _, err := g.SplitEdge(e, x-e.seg.Start+1, tags)
		if err != nil {
			return nil, err
		}
		return left.twin, nil
	}
	return e.twin, nil
}

// splitOrientedPrefix trims the oriented edge down to its first n bases,
// splitting the underlying forward edge when it is longer.
func (g *Graph) splitOrientedPrefix(e *Edge, n int, tags map[*Vertex]int) (*Edge, error) {
	if e.Length() == n {
		return e, nil
	}
	if e.seg.IsPositive() {
		left, _, err := g.SplitEdge(e, n, tags)
		return left, err
	}
	fwd := e.twin
	_, right, err := g.SplitEdge(fwd, fwd.Length()-n, tags)
	if err != nil {
		return nil, err
	}
	return right.twin, nil
}

// mergeEdgePair merges two equal-length oriented edges into one block,
// folding their endpoint vertices together. The merge is refused silently
// when the endpoint tags disagree.
func (g *Graph) mergeEdgePair(e1, e2 *Edge, tags map[*Vertex]int) {
	if tags != nil {
		t1f, ok1 := tags[e1.from]
		t2f, ok2 := tags[e2.from]
		t1t, ok3 := tags[e1.to]
		t2t, ok4 := tags[e2.to]
		if !ok1 || !ok2 || !ok3 || !ok4 || t1f != t2f || t1t != t2t {
			return
		}
	}
	g.MergeVertices(e1.from, e2.from, tags)
	// The first merge may have folded e2's head away; re-read the endpoints.
	if e1.to != e2.to {
		g.MergeVertices(e1.to, e2.to, tags)
	}
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
