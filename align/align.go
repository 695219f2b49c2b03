package align

import (
	"errors"
	"fmt"
	"sort"
)

// Sentinel errors for alignment handling.
var (
	// ErrMalformed indicates an unparsable cigar record; fatal for the
	// current record only.
	ErrMalformed = errors.New("align: malformed cigar")

	// ErrSubprocess indicates the external aligner failed.
	ErrSubprocess = errors.New("align: aligner subprocess failed")
)

// Op is one cigar operation kind.
type Op byte

const (
	// OpMatch advances both sides (aligned bases, matching or not).
	OpMatch Op = 'M'
	// OpDelete advances the first side only.
	OpDelete Op = 'D'
	// OpInsert advances the second side only.
	OpInsert Op = 'I'
)

// Operation is one run of a cigar.
type Operation struct {
	Op     Op
	Length int
}

// PairwiseAlignment is one local alignment between two contigs, as read
// from a cigar line. Strand true is '+'; on the '-' strand Start > End and
// the walk descends.
type PairwiseAlignment struct {
	Contig1 string
	Start1  int
	End1    int
	Strand1 bool

	Contig2 string
	Start2  int
	End2    int
	Strand2 bool

	Score      float64
	Operations []Operation
}

// MatchedPair is one gapless matched stretch of an alignment: Length bases
// starting at Start1/Start2 (0-based; a false strand descends from its
// start).
type MatchedPair struct {
	Start1  int
	Strand1 bool
	Start2  int
	Strand2 bool
	Length  int
}

// MatchedPairs decomposes the alignment into its gapless matched stretches
// by walking the cigar operations.
func (pa *PairwiseAlignment) MatchedPairs() []MatchedPair {
	var out []MatchedPair
	p1, p2 := pa.Start1, pa.Start2
	step1, step2 := 1, 1
	if !pa.Strand1 {
		step1 = -1
	}
	if !pa.Strand2 {
		step2 = -1
	}
	for _, op := range pa.Operations {
		switch op.Op {
		case OpMatch:
			out = append(out, MatchedPair{
				Start1: p1, Strand1: pa.Strand1,
				Start2: p2, Strand2: pa.Strand2,
				Length: op.Length,
			})
			p1 += step1 * op.Length
			p2 += step2 * op.Length
		case OpDelete:
			p1 += step1 * op.Length
		case OpInsert:
			p2 += step2 * op.Length
		}
	}
	return out
}

// Check validates that the cigar operations span exactly the coordinate
// ranges of the record.
func (pa *PairwiseAlignment) Check() error {
	span1, span2 := 0, 0
	for _, op := range pa.Operations {
		if op.Length < 0 {
			return fmt.Errorf("%w: negative operation length", ErrMalformed)
		}
		switch op.Op {
		case OpMatch:
			span1 += op.Length
			span2 += op.Length
		case OpDelete:
			span1 += op.Length
		case OpInsert:
			span2 += op.Length
		default:
			return fmt.Errorf("%w: unknown operation %q", ErrMalformed, op.Op)
		}
	}
	if got := abs(pa.End1 - pa.Start1); got != span1 {
		return fmt.Errorf("%w: side 1 spans %d, operations cover %d", ErrMalformed, got, span1)
	}
	if got := abs(pa.End2 - pa.Start2); got != span2 {
		return fmt.Errorf("%w: side 2 spans %d, operations cover %d", ErrMalformed, got, span2)
	}
	return nil
}

// SortByScore orders alignments by descending score, stably.
func SortByScore(alignments []*PairwiseAlignment) {
	sort.SliceStable(alignments, func(i, j int) bool {
		return alignments[i].Score > alignments[j].Score
	})
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
