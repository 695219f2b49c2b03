package align_test

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostreida/pinchnet/align"
)

// TestParseCigar_RoundTrip parses a gapped record and writes it back.
func TestParseCigar_RoundTrip(t *testing.T) {
	line := "cigar: q 0 10 + t 5 16 + 100 M 4 I 1 M 6"
	pa, err := align.ParseCigar(line)
	require.NoError(t, err)
	assert.Equal(t, "q", pa.Contig1)
	assert.Equal(t, 0, pa.Start1)
	assert.Equal(t, 10, pa.End1)
	assert.True(t, pa.Strand1)
	assert.Equal(t, "t", pa.Contig2)
	assert.Equal(t, 5, pa.Start2)
	assert.Equal(t, 16, pa.End2)
	assert.InDelta(t, 100, pa.Score, 0)
	require.Len(t, pa.Operations, 3)

	var buf strings.Builder
	require.NoError(t, align.WriteCigar(&buf, pa))
	assert.Equal(t, line+"\n", buf.String())
}

// TestParseCigar_Malformed rejects truncated and inconsistent records.
func TestParseCigar_Malformed(t *testing.T) {
	for _, line := range []string{
		"cigar: q 0 10 +",                            // truncated
		"notcigar q 0 10 + t 0 10 + 1 M 10",          // wrong keyword
		"cigar: q 0 10 ? t 0 10 + 1 M 10",            // bad strand
		"cigar: q 0 10 + t 0 10 + 1 M",               // odd op list
		"cigar: q 0 10 + t 0 10 + 1 M 9",             // span mismatch
		"cigar: q 0 10 + t 0 10 + 1 X 10",            // unknown op
		"cigar: q zero 10 + t 0 10 + 1 M 10",         // bad coordinate
	} {
		_, err := align.ParseCigar(line)
		assert.ErrorIs(t, err, align.ErrMalformed, "line %q", line)
	}
}

// TestCigarReader_SkipsNoise streams only the cigar lines.
func TestCigarReader_SkipsNoise(t *testing.T) {
	input := "# lastz header\n" +
		"cigar: q 0 5 + t 0 5 + 10 M 5\n" +
		"\n" +
		"cigar: q 0 3 + t 2 5 + 7 M 3\n"
	r := align.NewCigarReader(strings.NewReader(input))

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 5, first.End1)

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 3, second.End1)

	_, err = r.Next()
	assert.Equal(t, io.EOF, err)
}

// TestMatchedPairs_Gapped walks a gapped forward alignment.
func TestMatchedPairs_Gapped(t *testing.T) {
	pa, err := align.ParseCigar("cigar: q 0 10 + t 5 16 + 100 M 4 I 1 M 6")
	require.NoError(t, err)
	pairs := pa.MatchedPairs()
	require.Len(t, pairs, 2)
	assert.Equal(t, align.MatchedPair{Start1: 0, Strand1: true, Start2: 5, Strand2: true, Length: 4}, pairs[0])
	assert.Equal(t, align.MatchedPair{Start1: 4, Strand1: true, Start2: 10, Strand2: true, Length: 6}, pairs[1])
}

// TestMatchedPairs_Reverse walks a reverse-strand second side: the cursor
// descends from its high start coordinate.
func TestMatchedPairs_Reverse(t *testing.T) {
	pa, err := align.ParseCigar("cigar: q 0 10 + t 10 0 - 50 M 10")
	require.NoError(t, err)
	pairs := pa.MatchedPairs()
	require.Len(t, pairs, 1)
	assert.Equal(t, 10, pairs[0].Start2)
	assert.False(t, pairs[0].Strand2)
	assert.Equal(t, 10, pairs[0].Length)
}

// TestSortByScore orders descending, stably.
func TestSortByScore(t *testing.T) {
	a := &align.PairwiseAlignment{Score: 10}
	b := &align.PairwiseAlignment{Score: 30}
	c := &align.PairwiseAlignment{Score: 10}
	list := []*align.PairwiseAlignment{a, b, c}
	align.SortByScore(list)
	assert.Equal(t, []*align.PairwiseAlignment{b, a, c}, list)
}

// TestConvertCoordinates inverts the fasta_chunk header encoding on both
// sides and passes plain names through.
func TestConvertCoordinates(t *testing.T) {
	pa, err := align.ParseCigar("cigar: q|100|1000 50 60 + t|200|500 0 10 + 9 M 10")
	require.NoError(t, err)
	require.NoError(t, align.ConvertCoordinates(pa))
	assert.Equal(t, "q", pa.Contig1)
	assert.Equal(t, 150, pa.Start1)
	assert.Equal(t, 160, pa.End1)
	assert.Equal(t, "t", pa.Contig2)
	assert.Equal(t, 200, pa.Start2)
	assert.Equal(t, 210, pa.End2)

	plain, err := align.ParseCigar("cigar: q 0 5 + t 0 5 + 1 M 5")
	require.NoError(t, err)
	require.NoError(t, align.ConvertCoordinates(plain))
	assert.Equal(t, "q", plain.Contig1)
	assert.Equal(t, 0, plain.Start1)
}
