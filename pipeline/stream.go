package pipeline

import (
	"io"

	"github.com/ostreida/pinchnet/align"
)

// AlignmentStream yields pairwise alignments in application order. The
// pipeline calls Reset at the start of every pass and then drains the stream
// with Next until io.EOF.
type AlignmentStream interface {
	Next() (*align.PairwiseAlignment, error)
	Reset() error
}

// SliceStream serves alignments from memory, sorted as given.
type SliceStream struct {
	alignments []*align.PairwiseAlignment
	pos        int
}

// NewSliceStream wraps the given alignments.
func NewSliceStream(alignments []*align.PairwiseAlignment) *SliceStream {
	return &SliceStream{alignments: alignments}
}

// Next returns the next alignment, or io.EOF when drained.
func (s *SliceStream) Next() (*align.PairwiseAlignment, error) {
	if s.pos >= len(s.alignments) {
		return nil, io.EOF
	}
	pa := s.alignments[s.pos]
	s.pos++
	return pa, nil
}

// Reset rewinds to the first alignment.
func (s *SliceStream) Reset() error {
	s.pos = 0
	return nil
}
