package flower

import (
	"fmt"
	"strings"

	"github.com/ostreida/pinchnet/event"
)

// Sequence is an immutable named stretch of bases attached to an event.
// Coordinates are expressed in the sequence's own coordinate system: the first
// base sits at Start, the last at Start+Length-1.
type Sequence struct {
	name   string
	start  int
	length int
	bases  string
	event  *event.Event
	header string
}

// NewSequence creates a sequence and registers it with the store.
func NewSequence(name string, start int, bases, header string, ev *event.Event, store Store) (*Sequence, error) {
	s := &Sequence{
		name:   name,
		start:  start,
		length: len(bases),
		bases:  bases,
		event:  ev,
		header: header,
	}
	if err := store.AddSequence(s); err != nil {
		return nil, err
	}
	return s, nil
}

// Name returns the unique sequence name.
func (s *Sequence) Name() string { return s.name }

// Start returns the coordinate of the first base.
func (s *Sequence) Start() int { return s.start }

// Length returns the number of bases.
func (s *Sequence) Length() int { return s.length }

// Event returns the event the sequence belongs to.
func (s *Sequence) Event() *event.Event { return s.event }

// Header returns the original fasta header, if any.
func (s *Sequence) Header() string { return s.header }

// Slice returns length bases beginning at coordinate start. With forward set
// the literal substring is returned; otherwise its reverse complement.
// A zero-length range yields the empty string on either strand.
func (s *Sequence) Slice(start, length int, forward bool) (string, error) {
	if length == 0 {
		return "", nil
	}
	if length < 0 || start < s.start || start+length > s.start+s.length {
		return "", fmt.Errorf("%w: [%d,%d) of %q", ErrBadRange, start, start+length, s.name)
	}
	sub := s.bases[start-s.start : start-s.start+length]
	if forward {
		return sub, nil
	}
	return reverseComplement(sub), nil
}

// ContainsRepeatBases reports whether any base in the given string is soft
// masked (lower case) or an N. Gap characters are ignored.
func ContainsRepeatBases(bases string) bool {
	for _, c := range bases {
		if c == '-' {
			continue
		}
		if (c >= 'a' && c <= 'z') || c == 'N' {
			return true
		}
	}
	return false
}

// reverseComplement complements A/C/G/T (either case, N fixed) and reverses.
func reverseComplement(bases string) string {
	var b strings.Builder
	b.Grow(len(bases))
	for i := len(bases) - 1; i >= 0; i-- {
		b.WriteByte(complement(bases[i]))
	}
	return b.String()
}

func complement(c byte) byte {
	switch c {
	case 'A':
		return 'T'
	case 'T':
		return 'A'
	case 'C':
		return 'G'
	case 'G':
		return 'C'
	case 'a':
		return 't'
	case 't':
		return 'a'
	case 'c':
		return 'g'
	case 'g':
		return 'c'
	default:
		return c
	}
}
