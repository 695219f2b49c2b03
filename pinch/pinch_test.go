package pinch_test

import (
	"bytes"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostreida/pinchnet/event"
	"github.com/ostreida/pinchnet/flower"
	"github.com/ostreida/pinchnet/pinch"
)

// buildNet assembles a net with one thread per named sequence: two stub
// ends flanking the bases, a forward left cap at coordinate start-1 and a
// reverse right cap at start+length, adjacent to each other. Each sequence
// hangs off its own leaf event with branch length 1.
func buildNet(t *testing.T, seqs map[string]string) *flower.Net {
	t.Helper()
	store := flower.NewMemStore()
	tree := event.NewTree("ROOT")
	n, err := flower.NewNet("top", store)
	require.NoError(t, err)
	n.SetEventTree(tree)

	names := make([]string, 0, len(seqs))
	for name := range seqs {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		ev, err := tree.AddEvent(name, "ROOT", 1)
		require.NoError(t, err)
		seq, err := flower.NewSequence(name, 1, seqs[name], ">"+name, ev, store)
		require.NoError(t, err)

		le, err := flower.NewEnd("E"+name+"L", flower.StubEnd, n)
		require.NoError(t, err)
		re, err := flower.NewEnd("E"+name+"R", flower.StubEnd, n)
		require.NoError(t, err)
		lc, err := le.NewCap(name, ev, seq, 0, true)
		require.NoError(t, err)
		rc, err := re.NewCap(name, ev, seq, seq.Length()+1, false)
		require.NoError(t, err)
		lc.MakeAdjacent(rc)
	}
	return n
}

// seqSegment returns the pinch segment covering bases [s, e] (1-based,
// inclusive) of the named sequence, on the forward strand.
func seqSegment(t *testing.T, g *pinch.Graph, name string, s, e int) pinch.Segment {
	t.Helper()
	contig, ok := g.SequenceContig(name)
	require.True(t, ok, "no contig for sequence %q", name)
	return pinch.Segment{Contig: contig, Start: s + 1, End: e + 1}
}

// TestFromFlower_Shape verifies the initial graph of one 10-base thread:
// source + four end vertices + two interior vertices, three edge pairs.
func TestFromFlower_Shape(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)
	require.NoError(t, g.Check())

	assert.Equal(t, 7, g.VertexNumber())
	assert.Equal(t, 3, g.EdgeNumber())
	assert.Equal(t, 3, g.ContigNumber())

	// Twin pairing holds for every edge.
	for _, v := range g.Vertices() {
		for _, e := range v.BlackEdges() {
			assert.Same(t, e, e.Twin().Twin())
			assert.NotSame(t, e, e.Twin())
		}
	}
}

// TestNextEdge_WalksThread follows a thread from its left cap edge across
// the sequence edge to the right cap edge, and back in reverse.
func TestNextEdge_WalksThread(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	ends := g.EndVertices()
	left := ends["EAL"]
	require.NotNil(t, left)
	capEdge := left.FirstBlackEdge()
	require.NotNil(t, capEdge)

	mid := g.NextEdge(capEdge)
	require.NotNil(t, mid)
	assert.Equal(t, 10, mid.Length())

	rightCap := g.NextEdge(mid)
	require.NotNil(t, rightCap)
	assert.True(t, g.IsStubOrCap(rightCap))
	assert.Nil(t, g.NextEdge(rightCap))

	// The reverse walk retraces the thread.
	back := g.NextEdge(rightCap.Twin())
	require.NotNil(t, back)
	assert.Same(t, mid.Twin(), back)
	assert.Same(t, capEdge.Twin(), g.NextEdge(back))
}

// TestMergeSegments_Forward folds a full-length forward alignment of two
// identical threads into a single degree-2 block with tree coverage 1.
func TestMergeSegments_Forward(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10),
		seqSegment(t, g, "B", 1, 10), nil))
	require.NoError(t, g.Check())

	contigA, _ := g.SequenceContig("A")
	edges := g.ContigEdges(contigA)
	require.Len(t, edges, 1)
	assert.Equal(t, 2, edges[0].From().BlackDegree())
	assert.Equal(t, 2, edges[0].To().BlackDegree())
	assert.InDelta(t, 1.0, g.TreeCoverage(edges[0].From(), n), 1e-12)
}

// TestMergeSegments_Reverse folds a reverse-strand alignment: A forward
// against B reverse-complement.
func TestMergeSegments_Reverse(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "CAGTGCCAGT"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	segB := seqSegment(t, g, "B", 1, 10)
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10),
		segB.Reverse(), nil))
	require.NoError(t, g.Check())

	contigA, _ := g.SequenceContig("A")
	edges := g.ContigEdges(contigA)
	require.Len(t, edges, 1)
	assert.Equal(t, 2, edges[0].From().BlackDegree())
}

// TestMergeSegments_PartialSplits folds a mid-thread alignment and checks
// the split boundaries it induces on both contigs.
func TestMergeSegments_PartialSplits(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 3, 7),
		seqSegment(t, g, "B", 3, 7), nil))
	require.NoError(t, g.Check())

	contigA, _ := g.SequenceContig("A")
	edges := g.ContigEdges(contigA)
	require.Len(t, edges, 3)
	assert.Equal(t, 2, edges[0].Length()) // bases 1-2
	assert.Equal(t, 5, edges[1].Length()) // bases 3-7, the merged block
	assert.Equal(t, 3, edges[2].Length()) // bases 8-10
	assert.Equal(t, 2, edges[1].From().BlackDegree())
	assert.Equal(t, 1, edges[0].From().BlackDegree())
}

// TestMergeSegments_TagRefusal verifies the adjacency-component gate: with
// the two threads in distinct components, the merge is silently discarded.
func TestMergeSegments_TagRefusal(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	// Tag each recursive component with its own index; the threads are not
	// linked, so A and B land in different components.
	tags := make(map[*pinch.Vertex]int)
	for i, component := range g.RecursiveComponents(nil) {
		for _, v := range component {
			tags[v] = i
		}
	}
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10),
		seqSegment(t, g, "B", 1, 10), tags))
	require.NoError(t, g.Check())

	contigA, _ := g.SequenceContig("A")
	edges := g.ContigEdges(contigA)
	require.Len(t, edges, 1)
	assert.Equal(t, 1, edges[0].From().BlackDegree()) // unmerged

	// Every live vertex still carries a tag (invariant 2).
	assert.Equal(t, g.VertexNumber(), len(tags))
}

// TestRemoveOverAlignedEdges_Degree merges three copies into a degree-3
// block and prunes it with a degree cap of 2; the orphaned interior
// vertices then vanish as a trivial grey component.
func TestRemoveOverAlignedEdges_Degree(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "ACTGGCACTG", "C": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10), seqSegment(t, g, "B", 1, 10), nil))
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10), seqSegment(t, g, "C", 1, 10), nil))

	contigA, _ := g.SequenceContig("A")
	require.Equal(t, 3, g.ContigEdges(contigA)[0].From().BlackDegree())

	g.RemoveOverAlignedEdges(0, 2, 0, n)
	require.NoError(t, g.Check())
	require.NoError(t, g.CheckDegree(2))
	assert.Empty(t, g.ContigEdges(contigA))

	g.RemoveTrivialGreyComponents(nil)
	require.NoError(t, g.Check())
	// Only cap edges remain.
	for _, v := range g.Vertices() {
		for _, e := range v.BlackEdges() {
			assert.True(t, g.IsStubOrCap(e))
		}
	}
}

// TestRemoveOverAlignedEdges_TreeCoverage prunes blocks below the coverage
// floor: a block over two of three leaves covers 2/3 of the tree.
func TestRemoveOverAlignedEdges_TreeCoverage(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "ACTGGCACTG", "C": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10), seqSegment(t, g, "B", 1, 10), nil))

	contigA, _ := g.SequenceContig("A")
	block := g.ContigEdges(contigA)[0].From()
	assert.InDelta(t, 2.0/3.0, g.TreeCoverage(block, n), 1e-12)

	// Floor above the block's coverage: removed.
	g.RemoveOverAlignedEdges(0.9, 0, 0, n)
	assert.Empty(t, g.ContigEdges(contigA))
}

// TestRemoveOverAlignedEdges_Extension removes neighbouring blocks within
// the grey-hop radius of a pruned block.
func TestRemoveOverAlignedEdges_Extension(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTGACTG", "B": "ACTGGCACTGACTG", "C": "ACTGGCACTGACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	// Bases 1-7 of A/B/C form a degree-3 block; bases 8-14 of A/B a
	// degree-2 block right next to it.
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 7), seqSegment(t, g, "B", 1, 7), nil))
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 7), seqSegment(t, g, "C", 1, 7), nil))
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 8, 14), seqSegment(t, g, "B", 8, 14), nil))

	contigA, _ := g.SequenceContig("A")
	require.Len(t, g.ContigEdges(contigA), 2)

	// Without extension the degree-2 neighbour survives.
	g2 := rebuildTwoBlockFixture(t, n)
	g2.RemoveOverAlignedEdges(0, 2, 0, n)
	contigA2, _ := g2.SequenceContig("A")
	assert.Len(t, g2.ContigEdges(contigA2), 1)

	// With one grey hop it is dragged out too.
	g.RemoveOverAlignedEdges(0, 2, 1, n)
	assert.Empty(t, g.ContigEdges(contigA))
}

// rebuildTwoBlockFixture reconstructs the merged two-block fixture of the
// extension test; pinch graphs are not copyable.
func rebuildTwoBlockFixture(t *testing.T, n *flower.Net) *pinch.Graph {
	t.Helper()
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)
	merge := func(s, e int, other string) {
		require.NoError(t, g.MergeSegments(
			seqSegment(t, g, "A", s, e), seqSegment(t, g, other, s, e), nil))
	}
	merge(1, 7, "B")
	merge(1, 7, "C")
	merge(8, 14, "B")
	return g
}

// TestLinkStubComponentsToSink connects detached stub components to the
// source vertex.
func TestLinkStubComponentsToSink(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)

	g.LinkStubComponentsToSink()
	require.NoError(t, g.Check())

	// A full flood from the source now reaches every vertex.
	reached := make(map[int]bool)
	queue := []*pinch.Vertex{g.Source()}
	reached[g.Source().ID()] = true
	for len(queue) > 0 {
		v := queue[0]
		queue = queue[1:]
		for _, nb := range g.GreyNeighbours(v) {
			if !reached[nb.ID()] {
				reached[nb.ID()] = true
				queue = append(queue, nb)
			}
		}
		for _, e := range v.BlackEdges() {
			if !reached[e.To().ID()] {
				reached[e.To().ID()] = true
				queue = append(queue, e.To())
			}
		}
	}
	assert.Equal(t, g.VertexNumber(), len(reached))
}

// TestAnchorEdges selects only covered non-stub blocks.
func TestAnchorEdges(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG", "B": "ACTGGCACTG", "C": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)
	require.NoError(t, g.MergeSegments(
		seqSegment(t, g, "A", 1, 10), seqSegment(t, g, "B", 1, 10), nil))

	// The A/B block covers 2/3 of the tree; the unmerged C edge 1/3.
	assert.Len(t, g.AnchorEdges(0.5, n), 1)
	assert.Len(t, g.AnchorEdges(0.2, n), 2)
	assert.Empty(t, g.AnchorEdges(0.9, n))
}

// TestSplitEdge_BadOffset rejects offsets outside the edge.
func TestSplitEdge_BadOffset(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)
	contigA, _ := g.SequenceContig("A")
	e := g.ContigEdges(contigA)[0]
	_, _, err = g.SplitEdge(e, 0, nil)
	assert.ErrorIs(t, err, pinch.ErrBadSplit)
	_, _, err = g.SplitEdge(e, 10, nil)
	assert.ErrorIs(t, err, pinch.ErrBadSplit)
}

// TestWriteDOT smoke-tests the debug snapshot.
func TestWriteDOT(t *testing.T) {
	n := buildNet(t, map[string]string{"A": "ACTGGCACTG"})
	g, err := pinch.FromFlower(n)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, g.WriteDOT(&buf))
	assert.Contains(t, buf.String(), "graph pinch {")
	assert.Contains(t, buf.String(), "style=dashed")
}
