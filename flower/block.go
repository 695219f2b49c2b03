package flower

import (
	"fmt"
	"sort"

	"github.com/ostreida/pinchnet/event"
)

// blockContents is the single backing record shared by the two orientations
// of a Block.
type blockContents struct {
	name     string
	length   int
	net      *Net
	left     *End
	right    *End
	segments map[string]*Segment
	fwd      *Block
	rev      *Block
}

// Block is a homologous segment class. It owns two Ends and a set of
// Segments (its instances), indexed by name. The reverse orientation shares
// contents; on it left and right ends swap and flip.
type Block struct {
	c        *blockContents
	reversed bool
}

// NewBlock creates a block bounded by the two ends, which must both live in
// net and not yet bound a block. The ends become block ends.
func NewBlock(name string, length int, left, right *End, net *Net) (*Block, error) {
	if net.Block(name) != nil {
		return nil, fmt.Errorf("%w: block %q in net %q", ErrDuplicateName, name, net.Name())
	}
	if left.Net() != net || right.Net() != net {
		return nil, fmt.Errorf("%w: block %q ends not in net %q", ErrInvariant, name, net.Name())
	}
	c := &blockContents{
		name:     name,
		length:   length,
		net:      net,
		left:     left.PositiveOrientation(),
		right:    right.PositiveOrientation(),
		segments: make(map[string]*Segment),
	}
	c.fwd = &Block{c: c}
	c.rev = &Block{c: c, reversed: true}
	left.setBlock(c.fwd)
	right.setBlock(c.fwd)
	left.c.kind = BlockEnd
	right.c.kind = BlockEnd
	net.addBlock(c.fwd)
	return c.fwd, nil
}

// ConstructBlock creates a block of the given length together with its two
// ends, all named through the store's unique-name allocator.
func ConstructBlock(length int, net *Net) (*Block, error) {
	left, err := NewEnd(net.store.UniqueName(), BlockEnd, net)
	if err != nil {
		return nil, err
	}
	right, err := NewEnd(net.store.UniqueName(), BlockEnd, net)
	if err != nil {
		return nil, err
	}
	return NewBlock(net.store.UniqueName(), length, left, right, net)
}

// Name returns the block name, shared by both orientations.
func (b *Block) Name() string { return b.c.name }

// Length returns the number of bases in the block.
func (b *Block) Length() int { return b.c.length }

// Net returns the net the block lives in.
func (b *Block) Net() *Net { return b.c.net }

// Orientation reports whether this is the forward orientation.
func (b *Block) Orientation() bool { return !b.reversed }

// Reverse returns the opposite orientation of the block.
func (b *Block) Reverse() *Block {
	if b.reversed {
		return b.c.fwd
	}
	return b.c.rev
}

// PositiveOrientation returns the forward orientation of the block.
func (b *Block) PositiveOrientation() *Block { return b.c.fwd }

// LeftEnd returns the block's left end in this orientation.
func (b *Block) LeftEnd() *End {
	if b.reversed {
		return b.c.right.Reverse()
	}
	return b.c.left
}

// RightEnd returns the block's right end in this orientation.
func (b *Block) RightEnd() *End {
	if b.reversed {
		return b.c.left.Reverse()
	}
	return b.c.right
}

// InstanceNumber returns the number of segments in the block.
func (b *Block) InstanceNumber() int { return len(b.c.segments) }

// Instance returns the segment with the given name oriented with the block,
// or nil.
func (b *Block) Instance(name string) *Segment {
	s := b.c.segments[name]
	if s == nil {
		return nil
	}
	if b.reversed {
		return s.Reverse()
	}
	return s
}

// Instances returns the block's segments sorted by name, oriented with the
// block.
func (b *Block) Instances() []*Segment {
	out := make([]*Segment, 0, len(b.c.segments))
	for _, s := range b.c.segments {
		if b.reversed {
			s = s.Reverse()
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// First returns the segment with the smallest name, or nil for an empty block.
func (b *Block) First() *Segment {
	all := b.Instances()
	if len(all) == 0 {
		return nil
	}
	return all[0]
}

// RootSegment returns the designated root instance, or nil. Roots are
// optional; consumers must branch on presence.
func (b *Block) RootSegment() *Segment {
	cap := b.LeftEnd().RootCap()
	if cap == nil {
		return nil
	}
	return cap.Segment()
}

// SetRootSegment designates the root instance of the block, installing the
// root caps on both ends. A nil segment clears the root.
func (b *Block) SetRootSegment(s *Segment) {
	pb := b.PositiveOrientation()
	if s == nil {
		pb.LeftEnd().SetRootCap(nil)
		pb.RightEnd().SetRootCap(nil)
		return
	}
	s = s.PositiveOrientation()
	pb.LeftEnd().SetRootCap(s.Cap5())
	pb.RightEnd().SetRootCap(s.Cap3())
}

// Chain returns the chain the block participates in through either end's
// group link, or nil.
func (b *Block) Chain() *Chain {
	for _, end := range []*End{b.LeftEnd(), b.RightEnd()} {
		if g := end.Group(); g != nil && g.Link() != nil {
			return g.Link().Chain()
		}
	}
	return nil
}

// Destruct removes the block and its segments from the net. The two ends
// survive as stub ends.
func (b *Block) Destruct() {
	c := b.c
	for _, s := range c.fwd.Instances() {
		s.Destruct()
	}
	c.left.setBlock(nil)
	c.right.setBlock(nil)
	c.left.c.kind = StubEnd
	c.right.c.kind = StubEnd
	c.net.removeBlock(c.fwd)
}

func (b *Block) addInstance(s *Segment)    { b.c.segments[s.Name()] = s.PositiveOrientation() }
func (b *Block) removeInstance(s *Segment) { delete(b.c.segments, s.Name()) }

// segmentContents is the single backing record shared by the two orientations
// of a Segment.
type segmentContents struct {
	name     string
	block    *Block
	start    int
	strand   bool
	seq      *Sequence
	event    *event.Event
	cap5     *Cap
	cap3     *Cap
	parent   *Segment
	children []*Segment
	fwd      *Segment
	rev      *Segment
}

// Segment is one occurrence of a Block on a contig. Its two caps live on the
// block's left and right ends and carry the segment's boundary coordinates.
type Segment struct {
	c        *segmentContents
	reversed bool
}

// NewSegment creates a segment of the block with the given name, 0-based
// start coordinate and strand, together with its two boundary caps. seq may
// be nil for event-only instances; ev must be non-nil in that case.
func (b *Block) NewSegment(name string, ev *event.Event, seq *Sequence, start int, strand bool) (*Segment, error) {
	if b.c.segments[name] != nil {
		return nil, fmt.Errorf("%w: segment %q in block %q", ErrDuplicateName, name, b.Name())
	}
	if seq != nil && ev == nil {
		ev = seq.Event()
	}
	pb := b.PositiveOrientation()
	cap5, err := pb.LeftEnd().NewCap(name, ev, seq, start, strand)
	if err != nil {
		return nil, err
	}
	// The 3' cap sits length-1 bases downstream in reading direction.
	end3 := start + b.Length() - 1
	if !strand {
		end3 = start - b.Length() + 1
	}
	cap3, err := pb.RightEnd().NewCap(name, ev, seq, end3, strand)
	if err != nil {
		return nil, err
	}
	c := &segmentContents{
		name:   name,
		block:  pb,
		start:  start,
		strand: strand,
		seq:    seq,
		event:  ev,
		cap5:   cap5,
		cap3:   cap3,
	}
	c.fwd = &Segment{c: c}
	c.rev = &Segment{c: c, reversed: true}
	cap5.setSegment(c.fwd)
	cap3.setSegment(c.fwd)
	pb.addInstance(c.fwd)
	if seq != nil {
		b.Net().AddSequence(seq)
	}
	return c.fwd, nil
}

// Name returns the segment name, unique within its block.
func (s *Segment) Name() string { return s.c.name }

// Block returns the block the segment instantiates, oriented with the segment.
func (s *Segment) Block() *Block {
	if s.reversed {
		return s.c.block.Reverse()
	}
	return s.c.block
}

// Start returns the 0-based start coordinate on the sequence.
func (s *Segment) Start() int { return s.c.start }

// Strand reports the strand of this orientation of the segment.
func (s *Segment) Strand() bool { return s.c.strand != s.reversed }

// Length returns the block length.
func (s *Segment) Length() int { return s.c.block.Length() }

// Sequence returns the underlying sequence, possibly nil.
func (s *Segment) Sequence() *Sequence { return s.c.seq }

// Event returns the segment's event.
func (s *Segment) Event() *event.Event { return s.c.event }

// Cap5 returns the 5' boundary cap in this orientation.
func (s *Segment) Cap5() *Cap {
	if s.reversed {
		return s.c.cap3.Reverse()
	}
	return s.c.cap5
}

// Cap3 returns the 3' boundary cap in this orientation.
func (s *Segment) Cap3() *Cap {
	if s.reversed {
		return s.c.cap5.Reverse()
	}
	return s.c.cap3
}

// Orientation reports whether this is the forward orientation.
func (s *Segment) Orientation() bool { return !s.reversed }

// Reverse returns the opposite orientation of the segment.
func (s *Segment) Reverse() *Segment {
	if s.reversed {
		return s.c.fwd
	}
	return s.c.rev
}

// PositiveOrientation returns the forward orientation of the segment.
func (s *Segment) PositiveOrientation() *Segment { return s.c.fwd }

// Parent returns the segment's parent in the instance tree, or nil.
func (s *Segment) Parent() *Segment { return s.c.parent }

// Children returns the segment's children in insertion order.
func (s *Segment) Children() []*Segment { return s.c.children }

// MakeParentOf links child under s in the instance tree, mirroring the link
// on the boundary caps.
func (s *Segment) MakeParentOf(child *Segment) {
	child.c.parent = s.c.fwd
	s.c.children = append(s.c.children, child.c.fwd)
	s.c.cap5.MakeParentOf(child.c.cap5)
	s.c.cap3.MakeParentOf(child.c.cap3)
}

// Destruct removes the segment and its caps from the block.
func (s *Segment) Destruct() {
	c := s.c
	c.block.removeInstance(c.fwd)
	delete(c.block.LeftEnd().c.caps, c.name)
	delete(c.block.RightEnd().c.caps, c.name)
}
