package flower

import (
	"fmt"
	"sort"

	"github.com/ostreida/pinchnet/event"
)

// EndKind distinguishes the three kinds of End.
type EndKind uint8

const (
	// StubEnd is a free contig terminus.
	StubEnd EndKind = iota
	// AttachedEnd is a contig terminus anchored to the sink ("cap" end).
	AttachedEnd
	// BlockEnd is one of the two boundaries of a Block.
	BlockEnd
)

// String returns the kind name.
func (k EndKind) String() string {
	switch k {
	case StubEnd:
		return "stub"
	case AttachedEnd:
		return "attached"
	case BlockEnd:
		return "block"
	default:
		return "unknown"
	}
}

// endContents is the single backing record shared by the two orientations of
// an End.
type endContents struct {
	name  string
	kind  EndKind
	net   *Net
	block *Block
	group *Group
	caps  map[string]*Cap
	root  *Cap
	fwd   *End
	rev   *End
}

// End is an equivalence class of strand-directed sequence endpoints. The
// reverse orientation shares the same contents.
type End struct {
	c        *endContents
	reversed bool
}

// NewEnd creates an end of the given kind in net.
func NewEnd(name string, kind EndKind, net *Net) (*End, error) {
	if net.End(name) != nil {
		return nil, fmt.Errorf("%w: end %q in net %q", ErrDuplicateName, name, net.Name())
	}
	c := &endContents{
		name: name,
		kind: kind,
		net:  net,
		caps: make(map[string]*Cap),
	}
	c.fwd = &End{c: c}
	c.rev = &End{c: c, reversed: true}
	net.addEnd(c.fwd)
	return c.fwd, nil
}

// CopyConstruct copies the end and its caps (scalar attributes and intra-end
// parent links, not adjacencies) into dest, returning the copy. If dest
// already holds an end of that name the existing end is returned unchanged.
func (e *End) CopyConstruct(dest *Net) (*End, error) {
	if existing := dest.End(e.Name()); existing != nil {
		return existing, nil
	}
	cp, err := NewEnd(e.Name(), e.Kind(), dest)
	if err != nil {
		return nil, err
	}
	for _, cap := range e.Caps() {
		if _, err = cp.NewCap(cap.Name(), cap.Event(), cap.Sequence(), cap.Coordinate(), cap.Strand()); err != nil {
			return nil, err
		}
	}
	// Re-establish the cap tree among the copies.
	for _, cap := range e.Caps() {
		if p := cap.Parent(); p != nil && p.End().Name() == e.Name() {
			cp.Cap(p.Name()).MakeParentOf(cp.Cap(cap.Name()))
		}
	}
	return cp, nil
}

// Name returns the end name, shared by both orientations.
func (e *End) Name() string { return e.c.name }

// Kind returns the end kind.
func (e *End) Kind() EndKind { return e.c.kind }

// IsStub reports whether the end is a free contig terminus.
func (e *End) IsStub() bool { return e.c.kind == StubEnd }

// IsAttached reports whether the end is anchored to the sink.
func (e *End) IsAttached() bool { return e.c.kind == AttachedEnd }

// IsBlockEnd reports whether the end bounds a block.
func (e *End) IsBlockEnd() bool { return e.c.kind == BlockEnd }

// Net returns the net the end lives in.
func (e *End) Net() *Net { return e.c.net }

// Orientation reports whether this is the forward orientation.
func (e *End) Orientation() bool { return !e.reversed }

// Reverse returns the opposite orientation of the end.
func (e *End) Reverse() *End {
	if e.reversed {
		return e.c.fwd
	}
	return e.c.rev
}

// PositiveOrientation returns the forward orientation of the end.
func (e *End) PositiveOrientation() *End { return e.c.fwd }

// Block returns the block the end bounds, or nil for stub/attached ends.
func (e *End) Block() *Block { return e.c.block }

// Group returns the group the end belongs to, or nil if unassigned.
func (e *End) Group() *Group { return e.c.group }

// Cap returns the cap with the given name, or nil.
func (e *End) Cap(name string) *Cap {
	cap := e.c.caps[name]
	if cap == nil {
		return nil
	}
	if e.reversed {
		return cap.Reverse()
	}
	return cap
}

// CapNumber returns the number of caps on the end.
func (e *End) CapNumber() int { return len(e.c.caps) }

// Caps returns the end's caps sorted by name, oriented with the end.
func (e *End) Caps() []*Cap {
	out := make([]*Cap, 0, len(e.c.caps))
	for _, cap := range e.c.caps {
		if e.reversed {
			cap = cap.Reverse()
		}
		out = append(out, cap)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// RootCap returns the root instance of the end, if one was designated.
func (e *End) RootCap() *Cap { return e.c.root }

// SetRootCap designates the root instance; a nil cap clears it.
func (e *End) SetRootCap(c *Cap) { e.c.root = c }

// Destruct removes the end and its caps from the net. The end must not bound
// a block or belong to a group.
func (e *End) Destruct() error {
	if e.c.block != nil || e.c.group != nil {
		return fmt.Errorf("%w: end %q still owned", ErrInvariant, e.Name())
	}
	e.c.net.removeEnd(e.c.fwd)
	return nil
}

func (e *End) setBlock(b *Block) { e.c.block = b }
func (e *End) setGroup(g *Group) { e.c.group = g }

// capContents is the single backing record shared by the two orientations of
// a Cap.
type capContents struct {
	name       string
	end        *End
	event      *event.Event
	seq        *Sequence
	coordinate int
	strand     bool
	adjacency  *Cap
	parent     *Cap
	children   []*Cap
	segment    *Segment
	fwd        *Cap
	rev        *Cap
}

// Cap is one instance of an End: a strand-directed sequence endpoint carrying
// event, coordinate and adjacency. The reverse orientation shares contents.
type Cap struct {
	c        *capContents
	reversed bool
}

// NewCap creates a cap on the end. The coordinate refers to the sequence's
// coordinate system; seq may be nil for caps without coordinates.
func (e *End) NewCap(name string, ev *event.Event, seq *Sequence, coordinate int, strand bool) (*Cap, error) {
	if _, ok := e.c.caps[name]; ok {
		return nil, fmt.Errorf("%w: cap %q on end %q", ErrDuplicateName, name, e.Name())
	}
	c := &capContents{
		name:       name,
		end:        e.PositiveOrientation(),
		event:      ev,
		seq:        seq,
		coordinate: coordinate,
		strand:     strand,
	}
	c.fwd = &Cap{c: c}
	c.rev = &Cap{c: c, reversed: true}
	e.c.caps[name] = c.fwd
	if seq != nil {
		e.Net().AddSequence(seq)
	}
	return c.fwd, nil
}

// Name returns the cap name, unique within its end.
func (c *Cap) Name() string { return c.c.name }

// End returns the end the cap belongs to, oriented with the cap.
func (c *Cap) End() *End {
	if c.reversed {
		return c.c.end.Reverse()
	}
	return c.c.end
}

// Event returns the cap's event.
func (c *Cap) Event() *event.Event { return c.c.event }

// Sequence returns the cap's sequence, possibly nil.
func (c *Cap) Sequence() *Sequence { return c.c.seq }

// Coordinate returns the cap's coordinate in its sequence.
func (c *Cap) Coordinate() int { return c.c.coordinate }

// Strand reports the strand of this orientation of the cap.
func (c *Cap) Strand() bool { return c.c.strand != c.reversed }

// Segment returns the block instance the cap terminates, or nil.
func (c *Cap) Segment() *Segment { return c.c.segment }

// Orientation reports whether this is the forward orientation.
func (c *Cap) Orientation() bool { return !c.reversed }

// Reverse returns the opposite orientation of the cap.
func (c *Cap) Reverse() *Cap {
	if c.reversed {
		return c.c.fwd
	}
	return c.c.rev
}

// PositiveOrientation returns the forward orientation of the cap.
func (c *Cap) PositiveOrientation() *Cap { return c.c.fwd }

// Adjacency returns the cap adjacent along the sequence, or nil. The relation
// is symmetric: a.Adjacency() == b implies b.Adjacency() == a.
func (c *Cap) Adjacency() *Cap { return c.c.adjacency }

// MakeAdjacent installs the reciprocal adjacency between c and other,
// replacing any previous adjacency on either side.
func (c *Cap) MakeAdjacent(other *Cap) {
	if prev := c.c.adjacency; prev != nil {
		prev.c.adjacency = nil
	}
	if prev := other.c.adjacency; prev != nil {
		prev.c.adjacency = nil
	}
	c.c.adjacency = other
	other.c.adjacency = c
}

// Parent returns the cap's parent in the cap tree, or nil at a root.
func (c *Cap) Parent() *Cap { return c.c.parent }

// Children returns the cap's children in insertion order.
func (c *Cap) Children() []*Cap { return c.c.children }

// MakeParentOf links child under c in the cap tree.
func (c *Cap) MakeParentOf(child *Cap) {
	child.c.parent = c.c.fwd
	c.c.children = append(c.c.children, child.c.fwd)
}

// TopCap returns the attached ancestor the cap lifts to: the nearest strict
// ancestor that carries an adjacency, or the root of the cap tree when no
// intermediate ancestor is attached. A cap without a parent lifts nowhere and
// yields nil.
func (c *Cap) TopCap() *Cap {
	for p := c.Parent(); p != nil; p = p.Parent() {
		if p.Adjacency() != nil || p.Parent() == nil {
			return p
		}
	}
	return nil
}

func (c *Cap) setSegment(s *Segment) { c.c.segment = s }
