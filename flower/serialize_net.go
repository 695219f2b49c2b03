package flower

import (
	"fmt"

	"github.com/ostreida/pinchnet/event"
)

// WriteBinary serialises the net and everything it owns: event tree,
// sequence references, ends with their free caps, blocks with their segments,
// groups, chains and finally the cap adjacency/parent links. Faces are not
// written; they are rebuilt from scratch on load.
func (n *Net) WriteBinary(enc Encoder) error {
	enc.Tag(CodeNet)
	enc.Name(n.name)
	if n.parent != nil {
		enc.String(n.parent.Name())
	} else {
		enc.String("")
	}
	n.writeEventTree(enc)
	for _, s := range n.Sequences() {
		s.writeBinary(enc)
	}
	for _, e := range n.Ends() {
		e.writeBinary(enc)
	}
	for _, b := range n.Blocks() {
		b.WriteBinary(enc)
	}
	for _, g := range n.Groups() {
		g.writeBinary(enc)
	}
	for _, c := range n.Chains() {
		c.writeBinary(enc)
	}
	n.writeCapLinks(enc)
	return enc.Err()
}

func (n *Net) writeEventTree(enc Encoder) {
	if n.tree == nil {
		enc.Int(0)
		return
	}
	// Pre-order over the tree yields parents before children.
	var events []*event.Event
	var walk func(e *event.Event)
	walk = func(e *event.Event) {
		events = append(events, e)
		for _, child := range e.Children() {
			walk(child)
		}
	}
	walk(n.tree.Root())
	enc.Int(len(events))
	for _, e := range events {
		enc.Tag(CodeEvent)
		enc.Name(e.Name())
		if e.Parent() != nil {
			enc.String(e.Parent().Name())
		} else {
			enc.String("")
		}
		enc.Float(e.BranchLength())
	}
}

func (s *Sequence) writeBinary(enc Encoder) {
	enc.Tag(CodeSequence)
	enc.Name(s.name)
	enc.Int(s.start)
	enc.String(s.bases)
	enc.String(s.header)
	if s.event != nil {
		enc.String(s.event.Name())
	} else {
		enc.String("")
	}
}

func (e *End) writeBinary(enc Encoder) {
	enc.Tag(CodeEnd)
	enc.Name(e.Name())
	enc.Int(int(e.Kind()))
	if e.RootCap() != nil {
		enc.String(e.RootCap().Name())
	} else {
		enc.String("")
	}
	// Free caps only: segment boundary caps are rebuilt by their block.
	for _, c := range e.Caps() {
		if c.Segment() == nil {
			c.writeBinary(enc)
		}
	}
}

func (c *Cap) writeBinary(enc Encoder) {
	enc.Tag(CodeCap)
	enc.Name(c.Name())
	if c.Event() != nil {
		enc.String(c.Event().Name())
	} else {
		enc.String("")
	}
	if c.Sequence() != nil {
		enc.String(c.Sequence().Name())
	} else {
		enc.String("")
	}
	enc.Int(c.Coordinate())
	enc.Int(boolToInt(c.Strand()))
}

// WriteBinary serialises the block in the fixed element order: tag, name,
// length, left-end name, right-end name, then the segments until the next
// non-segment tag.
func (b *Block) WriteBinary(enc Encoder) error {
	pb := b.PositiveOrientation()
	enc.Tag(CodeBlock)
	enc.Name(pb.Name())
	enc.Int(pb.Length())
	enc.Name(pb.LeftEnd().Name())
	enc.Name(pb.RightEnd().Name())
	for _, s := range pb.Instances() {
		s.writeBinary(enc)
	}
	return enc.Err()
}

func (s *Segment) writeBinary(enc Encoder) {
	enc.Tag(CodeSegment)
	enc.Name(s.Name())
	enc.Int(s.Start())
	enc.Int(boolToInt(s.Strand()))
	if s.Sequence() != nil {
		enc.String(s.Sequence().Name())
	} else {
		enc.String("")
	}
	if s.Event() != nil {
		enc.String(s.Event().Name())
	} else {
		enc.String("")
	}
}

func (g *Group) writeBinary(enc Encoder) {
	enc.Tag(CodeGroup)
	enc.Name(g.Name())
	enc.String(g.NestedNetName())
	ends := g.Ends()
	enc.Int(len(ends))
	for _, e := range ends {
		enc.Name(e.Name())
	}
}

func (c *Chain) writeBinary(enc Encoder) {
	enc.Tag(CodeChain)
	enc.Name(c.Name())
	enc.Int(len(c.links))
	for _, l := range c.links {
		enc.Tag(CodeLink)
		enc.Name(l.Left().Name())
		enc.Name(l.Right().Name())
		enc.Name(l.Group().Name())
	}
}

// writeCapLinks records the adjacency and parent link of every cap that has
// one, as (endName, capName) address pairs.
func (n *Net) writeCapLinks(enc Encoder) {
	for _, c := range n.Caps() {
		adj, parent := c.Adjacency(), c.Parent()
		if adj == nil && parent == nil {
			continue
		}
		enc.Tag(CodeAdjacency)
		enc.Name(c.End().Name())
		enc.Name(c.Name())
		if adj != nil {
			enc.Name(adj.PositiveOrientation().End().Name())
			enc.Name(adj.Name())
		} else {
			enc.Name("")
			enc.Name("")
		}
		if parent != nil {
			enc.Name(parent.End().Name())
			enc.Name(parent.Name())
		} else {
			enc.Name("")
			enc.Name("")
		}
	}
}

// LoadNet re-hydrates one net from the decoder into the store and rebuilds
// its faces. Entities reappear under their serialised names; nested nets are
// resolved lazily by name. The parent link is set only when the parent net is
// already in the store: a net loaded before its parent has no parent.
func LoadNet(dec Decoder, store Store) (*Net, error) {
	if dec.Tag() != CodeNet {
		return nil, fmt.Errorf("%w: expected net tag", ErrCorruptStream)
	}
	name := dec.Name()
	parentName := dec.String()
	n, err := NewNet(name, store)
	if err != nil {
		return nil, err
	}
	if parentName != "" {
		if parent := store.Net(parentName); parent != nil {
			n.SetParent(parent)
		}
	}
	if err = n.loadEventTree(dec); err != nil {
		return nil, err
	}

	type pendingRoot struct {
		end  *End
		name string
	}
	var roots []pendingRoot

	for done := false; !done; {
		switch dec.PeekTag() {
		case CodeSequence:
			if err = n.loadSequence(dec); err != nil {
				return nil, err
			}
		case CodeEnd:
			end, rootName, err := n.loadEnd(dec)
			if err != nil {
				return nil, err
			}
			if rootName != "" {
				roots = append(roots, pendingRoot{end: end, name: rootName})
			}
		case CodeBlock:
			if _, err = LoadBlock(dec, n); err != nil {
				return nil, err
			}
		case CodeGroup:
			if err = n.loadGroup(dec); err != nil {
				return nil, err
			}
		case CodeChain:
			if err = n.loadChain(dec); err != nil {
				return nil, err
			}
		case CodeAdjacency:
			if err = n.loadCapLink(dec); err != nil {
				return nil, err
			}
		default:
			done = true // next net or end of stream
		}
	}
	for _, pr := range roots {
		if c := pr.end.Cap(pr.name); c != nil {
			pr.end.SetRootCap(c)
		}
	}
	if err = dec.Err(); err != nil {
		return nil, err
	}
	n.ReconstructFaces()
	return n, nil
}

func (n *Net) loadEventTree(dec Decoder) error {
	count := dec.Int()
	if count == 0 {
		return nil
	}
	var tree *event.Tree
	for i := 0; i < count; i++ {
		if dec.Tag() != CodeEvent {
			return fmt.Errorf("%w: expected event tag", ErrCorruptStream)
		}
		name := dec.Name()
		parentName := dec.String()
		branch := dec.Float()
		if parentName == "" {
			tree = event.NewTree(name)
			continue
		}
		if tree == nil {
			return fmt.Errorf("%w: event %q before root", ErrCorruptStream, name)
		}
		if _, err := tree.AddEvent(name, parentName, branch); err != nil {
			return err
		}
	}
	n.tree = tree
	return nil
}

func (n *Net) loadSequence(dec Decoder) error {
	dec.Tag()
	name := dec.Name()
	start := dec.Int()
	bases := dec.String()
	header := dec.String()
	eventName := dec.String()
	var ev *event.Event
	if n.tree != nil {
		ev = n.tree.Event(eventName)
	}
	s := n.store.Sequence(name)
	if s == nil {
		var err error
		if s, err = NewSequence(name, start, bases, header, ev, n.store); err != nil {
			return err
		}
	}
	n.AddSequence(s)
	return nil
}

func (n *Net) loadEnd(dec Decoder) (*End, string, error) {
	dec.Tag()
	name := dec.Name()
	kind := EndKind(dec.Int())
	rootName := dec.String()
	end, err := NewEnd(name, kind, n)
	if err != nil {
		return nil, "", err
	}
	for dec.PeekTag() == CodeCap {
		if err = end.loadCap(dec); err != nil {
			return nil, "", err
		}
	}
	return end, rootName, nil
}

func (e *End) loadCap(dec Decoder) error {
	dec.Tag()
	name := dec.Name()
	eventName := dec.String()
	seqName := dec.String()
	coordinate := dec.Int()
	strand := dec.Int() == 1
	n := e.Net()
	var ev *event.Event
	if n.tree != nil {
		ev = n.tree.Event(eventName)
	}
	var seq *Sequence
	if seqName != "" {
		seq = n.store.Sequence(seqName)
	}
	_, err := e.NewCap(name, ev, seq, coordinate, strand)
	return err
}

// LoadBlock re-hydrates one block, inverting Block.WriteBinary. The two ends
// must already exist in the net.
func LoadBlock(dec Decoder, n *Net) (*Block, error) {
	if dec.Tag() != CodeBlock {
		return nil, fmt.Errorf("%w: expected block tag", ErrCorruptStream)
	}
	name := dec.Name()
	length := dec.Int()
	left := n.End(dec.Name())
	right := n.End(dec.Name())
	if left == nil || right == nil {
		return nil, fmt.Errorf("%w: block %q ends", ErrNotFound, name)
	}
	b, err := NewBlock(name, length, left, right, n)
	if err != nil {
		return nil, err
	}
	for dec.PeekTag() == CodeSegment {
		if err = b.loadSegment(dec); err != nil {
			return nil, err
		}
	}
	return b, nil
}

func (b *Block) loadSegment(dec Decoder) error {
	dec.Tag()
	name := dec.Name()
	start := dec.Int()
	strand := dec.Int() == 1
	seqName := dec.String()
	eventName := dec.String()
	n := b.Net()
	var seq *Sequence
	if seqName != "" {
		seq = n.store.Sequence(seqName)
	}
	var ev *event.Event
	if n.tree != nil {
		ev = n.tree.Event(eventName)
	}
	_, err := b.NewSegment(name, ev, seq, start, strand)
	return err
}

func (n *Net) loadGroup(dec Decoder) error {
	dec.Tag()
	name := dec.Name()
	nested := dec.String()
	count := dec.Int()
	g, err := NewGroup(name, n)
	if err != nil {
		return err
	}
	g.SetNestedNetName(nested)
	for i := 0; i < count; i++ {
		endName := dec.Name()
		end := n.End(endName)
		if end == nil {
			return fmt.Errorf("%w: group %q end %q", ErrNotFound, name, endName)
		}
		if err = g.AddEnd(end); err != nil {
			return err
		}
	}
	return nil
}

func (n *Net) loadChain(dec Decoder) error {
	dec.Tag()
	name := dec.Name()
	count := dec.Int()
	c := &Chain{name: name, net: n}
	n.addChain(c)
	for i := 0; i < count; i++ {
		if dec.Tag() != CodeLink {
			return fmt.Errorf("%w: expected link tag in chain %q", ErrCorruptStream, name)
		}
		left := n.End(dec.Name())
		right := n.End(dec.Name())
		group := n.Group(dec.Name())
		if left == nil || right == nil || group == nil {
			return fmt.Errorf("%w: chain %q link %d", ErrNotFound, name, i)
		}
		if _, err := c.NewLink(left, right, group); err != nil {
			return err
		}
	}
	return nil
}

func (n *Net) loadCapLink(dec Decoder) error {
	dec.Tag()
	c := n.capByAddress(dec.Name(), dec.Name())
	adjEnd, adjName := dec.Name(), dec.Name()
	parentEnd, parentName := dec.Name(), dec.Name()
	if c == nil {
		return fmt.Errorf("%w: cap link subject", ErrNotFound)
	}
	if adjEnd != "" {
		adj := n.capByAddress(adjEnd, adjName)
		if adj == nil {
			return fmt.Errorf("%w: cap link adjacency", ErrNotFound)
		}
		c.MakeAdjacent(adj)
	}
	if parentEnd != "" {
		parent := n.capByAddress(parentEnd, parentName)
		if parent == nil {
			return fmt.Errorf("%w: cap link parent", ErrNotFound)
		}
		parent.MakeParentOf(c)
	}
	return nil
}

func (n *Net) capByAddress(endName, capName string) *Cap {
	end := n.End(endName)
	if end == nil {
		return nil
	}
	return end.Cap(capName)
}
