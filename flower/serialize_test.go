package flower_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostreida/pinchnet/event"
	"github.com/ostreida/pinchnet/flower"
)

// buildSerializableNet assembles a net exercising every serialised entity
// kind: event tree, sequences, stub end with adjacent caps, a two-instance
// block, a chain with one link and a nested group.
func buildSerializableNet(t *testing.T) *flower.Net {
	t.Helper()
	store := flower.NewMemStore()
	tree := event.NewTree("ROOT")
	_, err := tree.AddEvent("a", "ROOT", 1.5)
	require.NoError(t, err)
	_, err = tree.AddEvent("b", "ROOT", 0.5)
	require.NoError(t, err)

	n, err := flower.NewNet("top", store)
	require.NoError(t, err)
	n.SetEventTree(tree)

	sa, err := flower.NewSequence("A", 1, "ACTGGCACTG", ">A", tree.Event("a"), store)
	require.NoError(t, err)
	sb, err := flower.NewSequence("B", 1, "ACTGGCACTG", ">B", tree.Event("b"), store)
	require.NoError(t, err)

	left, err := flower.NewEnd("le", flower.BlockEnd, n)
	require.NoError(t, err)
	right, err := flower.NewEnd("re", flower.BlockEnd, n)
	require.NoError(t, err)
	blk, err := flower.NewBlock("blk", 10, left, right, n)
	require.NoError(t, err)
	s1, err := blk.NewSegment("i1", nil, sa, 0, true)
	require.NoError(t, err)
	_, err = blk.NewSegment("i2", nil, sb, 0, false)
	require.NoError(t, err)

	stub, err := flower.NewEnd("stub", flower.StubEnd, n)
	require.NoError(t, err)
	sc, err := stub.NewCap("s1", tree.Event("a"), sa, 0, true)
	require.NoError(t, err)
	sc.MakeAdjacent(s1.Cap5())

	g, err := flower.NewGroup("grp", n)
	require.NoError(t, err)
	require.NoError(t, g.AddEnd(stub))
	require.NoError(t, g.AddEnd(left))
	require.NoError(t, g.AddEnd(right))

	chain := flower.NewChain(n)
	_, err = chain.NewLink(left, right, g)
	require.NoError(t, err)
	return n
}

// TestNet_RoundTrip serialises a net and re-hydrates it into a fresh store,
// comparing the observable structure: names, kinds, adjacencies, blocks,
// chains and rebuilt faces.
func TestNet_RoundTrip(t *testing.T) {
	n := buildSerializableNet(t)
	n.ReconstructFaces()

	var buf bytes.Buffer
	enc := flower.NewBinaryEncoder(&buf)
	require.NoError(t, n.WriteBinary(enc))

	store2 := flower.NewMemStore()
	dec := flower.NewBinaryDecoder(buf.Bytes())
	n2, err := flower.LoadNet(dec, store2)
	require.NoError(t, err)

	assert.Equal(t, n.Name(), n2.Name())
	assert.Equal(t, n.EndNumber(), n2.EndNumber())
	assert.Equal(t, n.BlockNumber(), n2.BlockNumber())
	assert.Equal(t, n.GroupNumber(), n2.GroupNumber())
	assert.Equal(t, n.ChainNumber(), n2.ChainNumber())
	assert.Equal(t, n.SequenceNumber(), n2.SequenceNumber())
	assert.Equal(t, n.FaceNumber(), n2.FaceNumber())

	// Event tree survived.
	require.NotNil(t, n2.EventTree())
	assert.Equal(t, "ROOT", n2.EventTree().Root().Name())
	assert.InDelta(t, n.EventTree().TotalLength(), n2.EventTree().TotalLength(), 1e-12)

	// End names and kinds match pairwise (both sides sort by name).
	ends1, ends2 := n.Ends(), n2.Ends()
	require.Equal(t, len(ends1), len(ends2))
	for i := range ends1 {
		assert.Equal(t, ends1[i].Name(), ends2[i].Name())
		assert.Equal(t, ends1[i].Kind(), ends2[i].Kind())
		assert.Equal(t, ends1[i].CapNumber(), ends2[i].CapNumber())
	}

	// The block re-hydrated with its segments in the fixed element order.
	blk := n2.Block("blk")
	require.NotNil(t, blk)
	assert.Equal(t, 10, blk.Length())
	assert.Equal(t, "le", blk.LeftEnd().Name())
	assert.Equal(t, "re", blk.RightEnd().Name())
	assert.Equal(t, 2, blk.InstanceNumber())
	i2 := blk.Instance("i2")
	require.NotNil(t, i2)
	assert.False(t, i2.Strand())
	assert.Equal(t, "B", i2.Sequence().Name())

	// The stub cap's adjacency was reconnected (and is reciprocal).
	sc := n2.End("stub").Cap("s1")
	require.NotNil(t, sc)
	adj := sc.Adjacency()
	require.NotNil(t, adj)
	assert.Equal(t, "i1", adj.Name())
	assert.Same(t, sc, adj.Adjacency())

	// Chain link endpoints survive by name.
	link := n2.Chains()[0].Link(0)
	require.NotNil(t, link)
	assert.Equal(t, "le", link.Left().Name())
	assert.Equal(t, "re", link.Right().Name())
	assert.Equal(t, "grp", link.Group().Name())
}

// TestLoadNet_Corrupt rejects streams that do not open with a net tag.
func TestLoadNet_Corrupt(t *testing.T) {
	dec := flower.NewBinaryDecoder([]byte{0xFF, 0x00})
	_, err := flower.LoadNet(dec, flower.NewMemStore())
	assert.ErrorIs(t, err, flower.ErrCorruptStream)
}

// TestBinaryCodec_Primitives round-trips the primitive encoders.
func TestBinaryCodec_Primitives(t *testing.T) {
	var buf bytes.Buffer
	enc := flower.NewBinaryEncoder(&buf)
	enc.Tag(flower.CodeBlock)
	enc.Int(-42)
	enc.Float(3.25)
	enc.String("hello")
	enc.Name("world")
	require.NoError(t, enc.Err())

	dec := flower.NewBinaryDecoder(buf.Bytes())
	assert.Equal(t, flower.CodeBlock, dec.PeekTag())
	assert.Equal(t, flower.CodeBlock, dec.Tag())
	assert.Equal(t, -42, dec.Int())
	assert.InDelta(t, 3.25, dec.Float(), 0)
	assert.Equal(t, "hello", dec.String())
	assert.Equal(t, "world", dec.Name())
	require.NoError(t, dec.Err())
	assert.Equal(t, flower.ElementCode(0), dec.PeekTag()) // end of stream
}
