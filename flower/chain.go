package flower

import (
	"fmt"
	"sort"
)

// Chain is an ordered cycle of Links inside a single net. Each Link pairs the
// two ends that flank one group along the cycle.
type Chain struct {
	name  string
	net   *Net
	links []*Link
}

// NewChain creates an empty chain in net, named through the store.
func NewChain(net *Net) *Chain {
	c := &Chain{name: net.store.UniqueName(), net: net}
	net.addChain(c)
	return c
}

// Name returns the chain name.
func (c *Chain) Name() string { return c.name }

// Net returns the net the chain lives in.
func (c *Chain) Net() *Net { return c.net }

// Length returns the number of links.
func (c *Chain) Length() int { return len(c.links) }

// Link returns the i-th link, or nil when out of range.
func (c *Chain) Link(i int) *Link {
	if i < 0 || i >= len(c.links) {
		return nil
	}
	return c.links[i]
}

// Links returns the links in cycle order.
func (c *Chain) Links() []*Link { return c.links }

// NewLink appends a link joining left and right around group. All three must
// live in the chain's net.
func (c *Chain) NewLink(left, right *End, group *Group) (*Link, error) {
	if left.Net() != c.net || right.Net() != c.net || group.Net() != c.net {
		return nil, fmt.Errorf("%w: link parts of chain %q span nets", ErrInvariant, c.name)
	}
	l := &Link{chain: c, index: len(c.links), left: left, right: right, group: group}
	c.links = append(c.links, l)
	group.link = l
	return l, nil
}

// Link is one element of a chain: the pair of ends flanking a group.
type Link struct {
	chain *Chain
	index int
	left  *End
	right *End
	group *Group
}

// Chain returns the owning chain.
func (l *Link) Chain() *Chain { return l.chain }

// Left returns the left flanking end.
func (l *Link) Left() *End { return l.left }

// Right returns the right flanking end.
func (l *Link) Right() *End { return l.right }

// Group returns the group between the flanking ends.
func (l *Link) Group() *Group { return l.group }

// Next returns the following link in the chain, or nil at the last link.
func (l *Link) Next() *Link { return l.chain.Link(l.index + 1) }

// Prev returns the preceding link in the chain, or nil at the first link.
func (l *Link) Prev() *Link { return l.chain.Link(l.index - 1) }

// Group is an adjacency component: a set of ends of one net, optionally
// pointing at a nested net one level down. The nested net is referenced by
// name and resolved through the store.
type Group struct {
	name      string
	net       *Net
	ends      map[string]*End
	nestedNet string
	link      *Link
}

// NewGroup creates an empty group in net.
func NewGroup(name string, net *Net) (*Group, error) {
	if net.Group(name) != nil {
		return nil, fmt.Errorf("%w: group %q in net %q", ErrDuplicateName, name, net.Name())
	}
	g := &Group{name: name, net: net, ends: make(map[string]*End)}
	net.addGroup(g)
	return g, nil
}

// ConstructGroup creates a group around a fresh nested net, both named
// through the store, and parents the nested net under net.
func ConstructGroup(net *Net) (*Group, *Net, error) {
	nested, err := NewNet(net.store.UniqueName(), net.store)
	if err != nil {
		return nil, nil, err
	}
	nested.SetParent(net)
	CopyEventTreePhylogeny(net, nested)
	g, err := NewGroup(net.store.UniqueName(), net)
	if err != nil {
		return nil, nil, err
	}
	g.nestedNet = nested.Name()
	return g, nested, nil
}

// Name returns the group name.
func (g *Group) Name() string { return g.name }

// Net returns the net the group lives in.
func (g *Group) Net() *Net { return g.net }

// Link returns the chain link the group sits in, or nil for terminal groups.
func (g *Group) Link() *Link { return g.link }

// NestedNetName returns the name of the nested net, or "" for leaf groups.
func (g *Group) NestedNetName() string { return g.nestedNet }

// SetNestedNetName points the group at a nested net by name.
func (g *Group) SetNestedNetName(name string) { g.nestedNet = name }

// NestedNet resolves the nested net through the store, or nil.
func (g *Group) NestedNet() *Net {
	if g.nestedNet == "" {
		return nil
	}
	return g.net.store.Net(g.nestedNet)
}

// EndNumber returns the number of ends in the group.
func (g *Group) EndNumber() int { return len(g.ends) }

// Ends returns the group's ends sorted by name.
func (g *Group) Ends() []*End {
	out := make([]*End, 0, len(g.ends))
	for _, e := range g.ends {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// AddEnd moves an end of the group's net into the group, detaching it from
// any previous group.
func (g *Group) AddEnd(e *End) error {
	if e.Net() != g.net {
		return fmt.Errorf("%w: end %q not in net %q", ErrInvariant, e.Name(), g.net.Name())
	}
	if prev := e.Group(); prev != nil {
		delete(prev.ends, e.Name())
	}
	g.ends[e.Name()] = e.PositiveOrientation()
	e.setGroup(g)
	return nil
}
