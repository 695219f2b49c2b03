package flower_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostreida/pinchnet/event"
	"github.com/ostreida/pinchnet/flower"
)

// testNet builds a net over a two-leaf event tree with two 10-base sequences.
func testNet(t *testing.T) (*flower.Net, *flower.Sequence, *flower.Sequence) {
	t.Helper()
	store := flower.NewMemStore()
	tree := event.NewTree("ROOT")
	_, err := tree.AddEvent("a", "ROOT", 1)
	require.NoError(t, err)
	_, err = tree.AddEvent("b", "ROOT", 1)
	require.NoError(t, err)

	n, err := flower.NewNet("top", store)
	require.NoError(t, err)
	n.SetEventTree(tree)

	sa, err := flower.NewSequence("A", 1, "ACTGGCACTG", ">A", tree.Event("a"), store)
	require.NoError(t, err)
	sb, err := flower.NewSequence("B", 1, "ACTGGCACTG", ">B", tree.Event("b"), store)
	require.NoError(t, err)
	return n, sa, sb
}

// TestBlock_ConstructAndInstances covers the reverse-entity pattern on blocks:
// both orientations share contents, ends swap and flip, instances sort by name.
func TestBlock_ConstructAndInstances(t *testing.T) {
	n, sa, sb := testNet(t)

	b, err := flower.ConstructBlock(10, n)
	require.NoError(t, err)
	assert.True(t, b.Orientation())
	assert.Same(t, b, b.Reverse().Reverse())
	assert.Same(t, b, b.PositiveOrientation())

	// The reverse orientation swaps and flips the ends.
	assert.Equal(t, b.LeftEnd().Name(), b.Reverse().RightEnd().Name())
	assert.False(t, b.Reverse().LeftEnd().Orientation())

	// Block ends live in the block's net (invariant 4).
	assert.Same(t, n, b.LeftEnd().Net())
	assert.Same(t, n, b.RightEnd().Net())
	assert.True(t, b.LeftEnd().IsBlockEnd())

	s1, err := b.NewSegment("i2", nil, sa, 0, true)
	require.NoError(t, err)
	s2, err := b.NewSegment("i1", nil, sb, 0, true)
	require.NoError(t, err)
	assert.Equal(t, 2, b.InstanceNumber())

	// Instances are sorted by name.
	got := b.Instances()
	assert.Same(t, s2, got[0])
	assert.Same(t, s1, got[1])

	// Duplicate instance names are rejected.
	_, err = b.NewSegment("i1", nil, sa, 0, true)
	assert.ErrorIs(t, err, flower.ErrDuplicateName)

	// Boundary caps carry the segment coordinates.
	assert.Equal(t, 0, s1.Cap5().Coordinate())
	assert.Equal(t, 9, s1.Cap3().Coordinate())
	assert.Same(t, s1.PositiveOrientation(), s1.Cap5().Segment())

	// Reversed segments swap their caps.
	assert.Equal(t, s1.Cap5().Name(), s1.Reverse().Cap3().Name())
	assert.False(t, s1.Reverse().Strand())

	// The segments drag their sequences into the net.
	assert.Equal(t, 2, n.SequenceNumber())
}

// TestCap_AdjacencyReciprocal verifies invariant 5: MakeAdjacent is
// reciprocal and replacement detaches the previous partner.
func TestCap_AdjacencyReciprocal(t *testing.T) {
	n, sa, _ := testNet(t)
	e1, err := flower.NewEnd("e1", flower.StubEnd, n)
	require.NoError(t, err)
	e2, err := flower.NewEnd("e2", flower.StubEnd, n)
	require.NoError(t, err)

	c1, err := e1.NewCap("c1", sa.Event(), sa, 0, true)
	require.NoError(t, err)
	c2, err := e2.NewCap("c2", sa.Event(), sa, 9, true)
	require.NoError(t, err)
	c3, err := e2.NewCap("c3", sa.Event(), sa, 9, true)
	require.NoError(t, err)

	c1.MakeAdjacent(c2)
	assert.Same(t, c2, c1.Adjacency())
	assert.Same(t, c1, c2.Adjacency())

	// Re-linking c1 to c3 detaches c2.
	c1.MakeAdjacent(c3)
	assert.Same(t, c3, c1.Adjacency())
	assert.Same(t, c1, c3.Adjacency())
	assert.Nil(t, c2.Adjacency())
}

// TestBlock_Split splits a 10-base two-instance block at offset 4 and checks
// lengths, abutting inner caps and carried-over outer adjacencies.
func TestBlock_Split(t *testing.T) {
	n, sa, sb := testNet(t)

	b, err := flower.ConstructBlock(10, n)
	require.NoError(t, err)
	s1, err := b.NewSegment("i1", nil, sa, 0, true)
	require.NoError(t, err)
	_, err = b.NewSegment("i2", nil, sb, 0, true)
	require.NoError(t, err)

	// Give i1 an outer adjacency to survive the split.
	stub, err := flower.NewEnd("stub", flower.StubEnd, n)
	require.NoError(t, err)
	outer, err := stub.NewCap("o", sa.Event(), sa, 0, true)
	require.NoError(t, err)
	outer.MakeAdjacent(s1.Cap5())

	left, right, err := b.Split(4)
	require.NoError(t, err)
	assert.Equal(t, 4, left.Length())
	assert.Equal(t, 6, right.Length())
	assert.Equal(t, 2, left.InstanceNumber())
	assert.Equal(t, 2, right.InstanceNumber())

	// The original block is gone from the net.
	assert.Nil(t, n.Block(b.Name()))

	li := left.Instance("i1")
	ri := right.Instance("i1")
	require.NotNil(t, li)
	require.NotNil(t, ri)
	assert.Equal(t, 0, li.Start())
	assert.Equal(t, 4, ri.Start())

	// Inner boundary caps abut; the outer adjacency carried over.
	assert.Same(t, ri.Cap5().PositiveOrientation(), li.Cap3().Adjacency())
	assert.Same(t, li.Cap5().PositiveOrientation(), outer.Adjacency())

	// Split point outside the block is rejected.
	_, _, err = left.Split(4)
	assert.ErrorIs(t, err, flower.ErrBadRange)
}

// TestGroup_EndMembership verifies each end sits in exactly one group after
// migration between groups.
func TestGroup_EndMembership(t *testing.T) {
	n, _, _ := testNet(t)
	e1, err := flower.NewEnd("e1", flower.StubEnd, n)
	require.NoError(t, err)
	e2, err := flower.NewEnd("e2", flower.StubEnd, n)
	require.NoError(t, err)

	g1, err := flower.NewGroup("g1", n)
	require.NoError(t, err)
	g2, err := flower.NewGroup("g2", n)
	require.NoError(t, err)

	require.NoError(t, g1.AddEnd(e1))
	require.NoError(t, g1.AddEnd(e2))
	assert.Equal(t, 2, g1.EndNumber())

	// Moving e2 out of g1 detaches it there.
	require.NoError(t, g2.AddEnd(e2))
	assert.Equal(t, 1, g1.EndNumber())
	assert.Same(t, g2, e2.Group())
	assert.Same(t, g1, e1.Group())
}

// TestConstructGroup wires a nested net by name through the store.
func TestConstructGroup(t *testing.T) {
	n, _, _ := testNet(t)
	g, nested, err := flower.ConstructGroup(n)
	require.NoError(t, err)
	assert.Same(t, nested, g.NestedNet())
	assert.Same(t, n, nested.Parent())
	assert.Same(t, n.EventTree(), nested.EventTree())
	assert.Equal(t, nested.Name(), g.NestedNetName())
}

// TestChain_Links verifies links stay within one net and preserve order.
func TestChain_Links(t *testing.T) {
	n, _, _ := testNet(t)
	chain := flower.NewChain(n)

	var links []*flower.Link
	for i := 0; i < 3; i++ {
		left, err := flower.NewEnd(n.Store().UniqueName(), flower.BlockEnd, n)
		require.NoError(t, err)
		right, err := flower.NewEnd(n.Store().UniqueName(), flower.BlockEnd, n)
		require.NoError(t, err)
		g, _, err := flower.ConstructGroup(n)
		require.NoError(t, err)
		l, err := chain.NewLink(left, right, g)
		require.NoError(t, err)
		links = append(links, l)
	}
	assert.Equal(t, 3, chain.Length())
	assert.Same(t, links[1], links[0].Next())
	assert.Same(t, links[0], links[1].Prev())
	assert.Nil(t, links[2].Next())
	assert.Same(t, chain, links[0].Group().Link().Chain())

	// A link may not span nets.
	other, err := flower.NewNet("other", n.Store())
	require.NoError(t, err)
	e, err := flower.NewEnd("x", flower.BlockEnd, other)
	require.NoError(t, err)
	g, _, err := flower.ConstructGroup(n)
	require.NoError(t, err)
	_, err = chain.NewLink(e, e, g)
	assert.ErrorIs(t, err, flower.ErrInvariant)
}
