package flower

import (
	"sort"

	"github.com/ostreida/pinchnet/event"
)

// Net is one node of the hierarchical decomposition. It owns its Ends,
// Blocks, Chains, Groups, Faces and Sequence references, carries the event
// tree it is scored against, and links upward to its parent net.
type Net struct {
	name      string
	store     Store
	parent    *Net
	tree      *event.Tree
	ends      map[string]*End
	blocks    map[string]*Block
	groups    map[string]*Group
	chains    []*Chain
	faces     []*Face
	sequences map[string]*Sequence
}

// NewNet creates an empty net and registers it with the store.
func NewNet(name string, store Store) (*Net, error) {
	n := &Net{
		name:      name,
		store:     store,
		ends:      make(map[string]*End),
		blocks:    make(map[string]*Block),
		groups:    make(map[string]*Group),
		sequences: make(map[string]*Sequence),
	}
	if err := store.AddNet(n); err != nil {
		return nil, err
	}
	return n, nil
}

// Name returns the unique net name.
func (n *Net) Name() string { return n.name }

// Store returns the store the net is registered with.
func (n *Net) Store() Store { return n.store }

// Parent returns the enclosing net, or nil at the top of the hierarchy.
func (n *Net) Parent() *Net { return n.parent }

// SetParent links the net below parent.
func (n *Net) SetParent(parent *Net) { n.parent = parent }

// EventTree returns the event tree the net is scored against, possibly nil.
func (n *Net) EventTree() *event.Tree { return n.tree }

// SetEventTree installs the event tree.
func (n *Net) SetEventTree(t *event.Tree) { n.tree = t }

// CopyEventTreePhylogeny projects the parent net's event tree onto child for
// the ends that bridge both levels. Trees are immutable here, so the
// projection is a shared reference; a child keeps an already-installed tree.
func CopyEventTreePhylogeny(parent, child *Net) {
	if child.tree == nil && parent != nil {
		child.tree = parent.tree
	}
}

// End returns the end with the given name, or nil.
func (n *Net) End(name string) *End { return n.ends[name] }

// EndNumber returns the number of ends in the net.
func (n *Net) EndNumber() int { return len(n.ends) }

// Ends returns the net's ends sorted by name.
func (n *Net) Ends() []*End {
	out := make([]*End, 0, len(n.ends))
	for _, e := range n.ends {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Caps returns every cap of every end, ordered by end name then cap name.
func (n *Net) Caps() []*Cap {
	var out []*Cap
	for _, e := range n.Ends() {
		out = append(out, e.Caps()...)
	}
	return out
}

// Block returns the block with the given name, or nil.
func (n *Net) Block(name string) *Block { return n.blocks[name] }

// BlockNumber returns the number of blocks in the net.
func (n *Net) BlockNumber() int { return len(n.blocks) }

// Blocks returns the net's blocks sorted by name.
func (n *Net) Blocks() []*Block {
	out := make([]*Block, 0, len(n.blocks))
	for _, b := range n.blocks {
		out = append(out, b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Group returns the group with the given name, or nil.
func (n *Net) Group(name string) *Group { return n.groups[name] }

// GroupNumber returns the number of groups in the net.
func (n *Net) GroupNumber() int { return len(n.groups) }

// Groups returns the net's groups sorted by name.
func (n *Net) Groups() []*Group {
	out := make([]*Group, 0, len(n.groups))
	for _, g := range n.groups {
		out = append(out, g)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// ChainNumber returns the number of chains in the net.
func (n *Net) ChainNumber() int { return len(n.chains) }

// Chains returns the net's chains in construction order.
func (n *Net) Chains() []*Chain { return n.chains }

// FaceNumber returns the number of faces attached to the net.
func (n *Net) FaceNumber() int { return len(n.faces) }

// Faces returns the net's faces in construction order.
func (n *Net) Faces() []*Face { return n.faces }

// Sequence returns the sequence reference with the given name, or nil.
func (n *Net) Sequence(name string) *Sequence { return n.sequences[name] }

// SequenceNumber returns the number of sequences referenced by the net.
func (n *Net) SequenceNumber() int { return len(n.sequences) }

// Sequences returns the referenced sequences sorted by name.
func (n *Net) Sequences() []*Sequence {
	out := make([]*Sequence, 0, len(n.sequences))
	for _, s := range n.sequences {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// AddSequence attaches a sequence reference to the net. Re-adding the same
// sequence is a no-op.
func (n *Net) AddSequence(s *Sequence) { n.sequences[s.Name()] = s }

// addEnd/addBlock/addGroup/addChain/addFace are called by the entity
// factories; owners register themselves exactly once.

func (n *Net) addEnd(e *End)     { n.ends[e.Name()] = e }
func (n *Net) removeEnd(e *End)  { delete(n.ends, e.Name()) }
func (n *Net) addBlock(b *Block) { n.blocks[b.Name()] = b }
func (n *Net) removeBlock(b *Block) {
	delete(n.blocks, b.Name())
}
func (n *Net) addGroup(g *Group)   { n.groups[g.Name()] = g }
func (n *Net) removeGroup(g *Group) { delete(n.groups, g.Name()) }
func (n *Net) addChain(c *Chain)   { n.chains = append(n.chains, c) }
func (n *Net) addFace(f *Face)     { n.faces = append(n.faces, f) }
