package pipeline

import (
	"fmt"
	"sort"

	"github.com/ostreida/pinchnet/cactus"
	"github.com/ostreida/pinchnet/flower"
	"github.com/ostreida/pinchnet/pinch"
)

// netBuilder carries the shared state of one materialisation pass.
type netBuilder struct {
	parent *flower.Net
	store  flower.Store
	cg     *cactus.Graph
	pg     *pinch.Graph

	vertexName   map[*pinch.Vertex]string // pinch vertex -> end name
	nameVertex   map[string]*pinch.Vertex
	instanceName map[*pinch.Edge]string // forward pinch edge -> cap/segment name

	mergedID map[int]int            // cactus vertex id -> merged id
	nets     map[int]*flower.Net    // merged id -> net
	built    map[string]*flower.Net // guards recursion over the hierarchy
}

// buildNet materialises the chosen decomposition as a fresh net hierarchy
// and returns its root. The parent net supplies sequences and the event
// tree; the hierarchy itself is built from the cactus and pinch graphs.
func buildNet(parent *flower.Net, cg *cactus.Graph, pg *pinch.Graph,
	components [][]*cactus.Edge, chosen []*cactus.Edge) (*flower.Net, error) {

	b := &netBuilder{
		parent:       parent,
		store:        parent.Store(),
		cg:           cg,
		pg:           pg,
		vertexName:   make(map[*pinch.Vertex]string),
		nameVertex:   make(map[string]*pinch.Vertex),
		instanceName: make(map[*pinch.Edge]string),
		mergedID:     make(map[int]int),
		nets:         make(map[int]*flower.Net),
	}
	b.assignNames()

	chosenSet := make(map[*cactus.Edge]struct{}, len(chosen))
	for _, e := range chosen {
		chosenSet[e.Canonical()] = struct{}{}
	}

	// 1. Collapse dissolved blocks: every non-chosen, non-stub block edge
	// merges its endpoints, the earlier-discovered vertex winning. The
	// trimmed components keep only the edges to materialise, in cycle order.
	disc := b.cg.DiscoveryTimes()
	for v := range b.cg.Vertices() {
		b.mergedID[v] = v
	}
	trimmed := make([][]*cactus.Edge, 0, len(components))
	for _, component := range components {
		var keep []*cactus.Edge
		for _, e := range component {
			if e.IsStem() {
				continue
			}
			_, isChosen := chosenSet[e.Canonical()]
			if e.IsStubOrCap(b.pg) || isChosen {
				keep = append(keep, e)
				continue
			}
			b.mergeVertexIDs(e, disc)
		}
		if len(keep) > 0 {
			trimmed = append(trimmed, keep)
		}
	}

	// 2. Materialise blocks and ends per component, lazily creating the
	// component's net at its first edge's merged tail vertex.
	for _, component := range trimmed {
		net, err := b.netFor(component[0].From().ID())
		if err != nil {
			return nil, err
		}
		for _, e := range component {
			if e.IsStubOrCap(b.pg) {
				if _, err = b.materialiseEnd(e, net); err != nil {
					return nil, err
				}
			} else {
				if _, err = b.materialiseBlock(e, net); err != nil {
					return nil, err
				}
			}
		}
	}

	// 3. Chains: when the cactus holds more than one component, each
	// component with a block becomes a chain of links between consecutive
	// materialised edges; a single-block cycle closes on itself.
	if len(trimmed) > 1 {
		for _, component := range trimmed {
			if err := b.buildChain(component); err != nil {
				return nil, err
			}
		}
	}

	root := b.nets[b.mergedID[0]]
	if root == nil {
		var err error
		if root, err = b.netFor(0); err != nil {
			return nil, err
		}
	}
	root.SetParent(parent)
	flower.CopyEventTreePhylogeny(parent, root)

	// 4. Enveloping ends, stub propagation, adjacencies, groups, sequences
	// and phylogeny projections over the finished skeleton.
	b.built = make(map[string]*flower.Net)
	if err := b.addEnvelopingEnds(root); err != nil {
		return nil, err
	}
	if _, err := b.propagateStubEnds(root, map[string]bool{}); err != nil {
		return nil, err
	}
	if err := b.addAdjacencies(root, map[string]bool{}); err != nil {
		return nil, err
	}
	if err := b.addGroups(root, map[string]bool{}); err != nil {
		return nil, err
	}
	b.copyPhylogenies(root, map[string]bool{})
	return root, nil
}

// assignNames gives every pinch vertex an end name and every forward black
// edge an instance name, in deterministic order.
func (b *netBuilder) assignNames() {
	for _, v := range b.pg.Vertices() {
		name := b.store.UniqueName()
		b.vertexName[v] = name
		b.nameVertex[name] = v
	}
	for ci := 0; ci < b.pg.ContigNumber(); ci++ {
		for _, e := range b.pg.ContigEdges(ci) {
			b.instanceName[e] = b.store.UniqueName()
		}
	}
}

// iName returns the shared instance name of either orientation of an edge.
func (b *netBuilder) iName(e *pinch.Edge) string {
	return b.instanceName[e.PositiveOrientation()]
}

// mergeVertexIDs folds the endpoint classes of a dissolved edge together,
// the class of the earlier-discovered vertex winning.
func (b *netBuilder) mergeVertexIDs(e *cactus.Edge, disc []int) {
	from, to := e.From().ID(), e.To().ID()
	if from == to {
		return
	}
	winner, loser := from, to
	if disc[from] > disc[to] {
		winner, loser = to, from
	}
	winID, loseID := b.mergedID[winner], b.mergedID[loser]
	if winID == loseID {
		return
	}
	for v, id := range b.mergedID {
		if id == loseID {
			b.mergedID[v] = winID
		}
	}
}

// netFor returns the net of the merged class of the cactus vertex, creating
// it through the store on first use.
func (b *netBuilder) netFor(cactusVertex int) (*flower.Net, error) {
	id := b.mergedID[cactusVertex]
	if n := b.nets[id]; n != nil {
		return n, nil
	}
	n, err := flower.NewNet(b.store.UniqueName(), b.store)
	if err != nil {
		return nil, err
	}
	flower.CopyEventTreePhylogeny(b.parent, n)
	b.nets[id] = n
	return n, nil
}

// endOrientation returns the orientation of a stub/cap cactus edge whose
// pinch edges run from the end's inner (non-dead-end) vertex.
func endOrientation(e *cactus.Edge) *cactus.Edge {
	pe := e.FirstPinchEdge()
	if pe != nil && pe.From().IsDeadEnd() {
		return e.Twin()
	}
	return e
}

// materialiseEnd creates the stub end of a cap cactus edge with one cap per
// instance. Segment signs decode to strand and 0-based coordinates.
func (b *netBuilder) materialiseEnd(ce *cactus.Edge, net *flower.Net) (*flower.End, error) {
	ce = endOrientation(ce)
	first := ce.FirstPinchEdge()
	endName := b.vertexName[first.From()]
	if existing := net.End(endName); existing != nil {
		return existing, nil
	}
	end, err := flower.NewEnd(endName, flower.StubEnd, net)
	if err != nil {
		return nil, err
	}
	for _, pe := range ce.PinchEdges() {
		contig := b.pg.Contig(pe.Segment().Contig)
		seg := pe.Segment()
		coord, strand := decodeCoordinate(seg)
		if _, err = end.NewCap(b.iName(pe), contig.Event, contig.Seq, coord, strand); err != nil {
			return nil, err
		}
	}
	return end, nil
}

// materialiseBlock creates a block with its two ends and one segment per
// instance.
func (b *netBuilder) materialiseBlock(ce *cactus.Edge, net *flower.Net) (*flower.Block, error) {
	first := ce.FirstPinchEdge()
	leftName := b.vertexName[first.From()]
	rightName := b.vertexName[first.To()]
	left := net.End(leftName)
	var err error
	if left == nil {
		if left, err = flower.NewEnd(leftName, flower.BlockEnd, net); err != nil {
			return nil, err
		}
	}
	right := net.End(rightName)
	if right == nil {
		if right, err = flower.NewEnd(rightName, flower.BlockEnd, net); err != nil {
			return nil, err
		}
	}
	block, err := flower.NewBlock(b.store.UniqueName(), ce.Length(), left, right, net)
	if err != nil {
		return nil, err
	}
	for _, pe := range ce.PinchEdges() {
		contig := b.pg.Contig(pe.Segment().Contig)
		coord, strand := decodeCoordinate(pe.Segment())
		if _, err = block.NewSegment(b.iName(pe), contig.Event, contig.Seq, coord, strand); err != nil {
			return nil, err
		}
	}
	return block, nil
}

// decodeCoordinate turns a signed pinch segment start into strand and
// 0-based coordinate: positive start is the forward strand; the absolute
// value minus one is the coordinate.
func decodeCoordinate(s pinch.Segment) (int, bool) {
	if s.IsPositive() {
		return s.Start - 1, true
	}
	return -s.Start - 1, false
}

// edgeEndName returns the name of the end at the tail of a materialised
// cactus edge orientation.
func (b *netBuilder) edgeEndName(e *cactus.Edge, pg *pinch.Graph) string {
	if e.IsStubOrCap(pg) {
		e = endOrientation(e)
	}
	return b.vertexName[e.FirstPinchEdge().From()]
}

// buildChain builds the chain of one component: links join consecutive
// materialised edges around the cycle, each link owning a group wired to the
// nested net of the merged vertex between them. A single-block component
// closes on itself with one link.
func (b *netBuilder) buildChain(component []*cactus.Edge) error {
	hasBlock := false
	for _, e := range component {
		if !e.IsStubOrCap(b.pg) {
			hasBlock = true
			break
		}
	}
	if !hasBlock {
		return nil
	}
	parent, err := b.netFor(component[0].From().ID())
	if err != nil {
		return err
	}
	chain := flower.NewChain(parent)

	link := func(leftEdge, rightEdge *cactus.Edge, between int) error {
		left := parent.End(b.edgeEndName(leftEdge.Twin(), b.pg))
		right := parent.End(b.edgeEndName(rightEdge, b.pg))
		if left == nil || right == nil {
			return fmt.Errorf("%w: chain link ends missing", flower.ErrNotFound)
		}
		group, err := b.linkGroup(parent, between)
		if err != nil {
			return err
		}
		if err = group.AddEnd(left); err != nil {
			return err
		}
		if err = group.AddEnd(right); err != nil {
			return err
		}
		_, err = chain.NewLink(left, right, group)
		return err
	}

	if len(component) == 1 {
		e := component[0]
		return link(e, e, e.To().ID())
	}
	for j := 1; j < len(component); j++ {
		if err := link(component[j-1], component[j], component[j-1].To().ID()); err != nil {
			return err
		}
	}
	return nil
}

// linkGroup creates the group of a chain link around the nested net of the
// merged vertex between two materialised edges. When that net would be the
// parent itself (a self-closing cycle) a fresh nested net is created.
func (b *netBuilder) linkGroup(parent *flower.Net, betweenVertex int) (*flower.Group, error) {
	nested := b.nets[b.mergedID[betweenVertex]]
	if nested == nil || nested == parent {
		group, _, err := flower.ConstructGroup(parent)
		return group, err
	}
	group, err := flower.NewGroup(b.store.UniqueName(), parent)
	if err != nil {
		return nil, err
	}
	group.SetNestedNetName(nested.Name())
	nested.SetParent(parent)
	return group, nil
}

// addEnvelopingEnds copies every chain link's flanking ends into the link's
// nested net, recursively down the hierarchy.
func (b *netBuilder) addEnvelopingEnds(n *flower.Net) error {
	if b.built[n.Name()] != nil {
		return nil
	}
	b.built[n.Name()] = n
	for _, chain := range n.Chains() {
		for _, l := range chain.Links() {
			nested := l.Group().NestedNet()
			if nested == nil {
				continue
			}
			if _, err := l.Left().CopyConstruct(nested); err != nil {
				return err
			}
			if _, err := l.Right().CopyConstruct(nested); err != nil {
				return err
			}
			if err := b.addEnvelopingEnds(nested); err != nil {
				return err
			}
		}
	}
	return nil
}

// propagateStubEnds copies stub ends of every nested net upward into the
// enclosing nets, returning the net's stub ends.
func (b *netBuilder) propagateStubEnds(n *flower.Net, seen map[string]bool) ([]*flower.End, error) {
	if seen[n.Name()] {
		return nil, nil
	}
	seen[n.Name()] = true
	for _, g := range n.Groups() {
		nested := g.NestedNet()
		if nested == nil {
			continue
		}
		stubs, err := b.propagateStubEnds(nested, seen)
		if err != nil {
			return nil, err
		}
		for _, stub := range stubs {
			if _, err = stub.CopyConstruct(n); err != nil {
				return nil, err
			}
		}
	}
	var stubs []*flower.End
	for _, end := range n.Ends() {
		if end.IsStub() {
			stubs = append(stubs, end)
		}
	}
	return stubs, nil
}

// addAdjacencies installs cap adjacencies in every net of the hierarchy: for
// each cap of each end, the partner is found by walking the pinch thread
// until the next end materialised in the same net.
func (b *netBuilder) addAdjacencies(n *flower.Net, seen map[string]bool) error {
	if seen[n.Name()] {
		return nil
	}
	seen[n.Name()] = true
	for _, end := range n.Ends() {
		v := b.nameVertex[end.Name()]
		if v == nil {
			continue
		}
		for _, e := range v.BlackEdges() {
			cap := end.Cap(b.iName(e))
			if cap == nil {
				continue
			}
			partnerEdge := b.otherEnd(n, e.Twin())
			if partnerEdge == nil {
				continue
			}
			partnerEnd := n.End(b.vertexName[partnerEdge.From()])
			partnerCap := partnerEnd.Cap(b.iName(partnerEdge))
			if partnerCap == nil {
				return fmt.Errorf("%w: missing partner cap for %q", flower.ErrInvariant, cap.Name())
			}
			cap.MakeAdjacent(partnerCap)
		}
	}
	for _, g := range n.Groups() {
		if nested := g.NestedNet(); nested != nil {
			if err := b.addAdjacencies(nested, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// otherEnd walks the thread from the oriented edge until the next edge whose
// tail vertex is an end of the net.
func (b *netBuilder) otherEnd(n *flower.Net, from *pinch.Edge) *pinch.Edge {
	for e := b.pg.NextEdge(from); e != nil; e = b.pg.NextEdge(e) {
		if n.End(b.vertexName[e.From()]) != nil {
			return e
		}
	}
	return nil
}

// addGroups synthesises a group for every end lacking one: ends reachable
// through cap adjacencies share a group; a flood joining an end that already
// has a group migrates into it, otherwise a fresh group with a fresh nested
// net is created.
func (b *netBuilder) addGroups(n *flower.Net, seen map[string]bool) error {
	if seen[n.Name()] {
		return nil
	}
	seen[n.Name()] = true
	for _, end := range n.Ends() {
		if end.Group() != nil {
			continue
		}
		member := b.adjacencyClosure(end)
		var group *flower.Group
		for _, e := range member {
			if e.Group() != nil {
				group = e.Group()
				break
			}
		}
		if group == nil {
			var err error
			if group, _, err = flower.ConstructGroup(n); err != nil {
				return err
			}
		}
		for _, e := range member {
			if e.Group() == nil {
				if err := group.AddEnd(e); err != nil {
					return err
				}
			}
		}
	}
	for _, g := range n.Groups() {
		if nested := g.NestedNet(); nested != nil {
			if err := b.addGroups(nested, seen); err != nil {
				return err
			}
		}
	}
	return nil
}

// adjacencyClosure floods from the end across cap adjacencies within its
// net, returning the reachable ends sorted by name.
func (b *netBuilder) adjacencyClosure(end *flower.End) []*flower.End {
	n := end.Net()
	seen := map[string]*flower.End{end.Name(): end}
	queue := []*flower.End{end}
	for len(queue) > 0 {
		e := queue[0]
		queue = queue[1:]
		for _, cap := range e.Caps() {
			adj := cap.Adjacency()
			if adj == nil {
				continue
			}
			other := n.End(adj.PositiveOrientation().End().Name())
			if other == nil || seen[other.Name()] != nil {
				continue
			}
			seen[other.Name()] = other
			queue = append(queue, other)
		}
	}
	out := make([]*flower.End, 0, len(seen))
	for _, e := range seen {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// copyPhylogenies projects the event tree onto every net of the hierarchy.
func (b *netBuilder) copyPhylogenies(n *flower.Net, seen map[string]bool) {
	if seen[n.Name()] {
		return
	}
	seen[n.Name()] = true
	for _, g := range n.Groups() {
		if nested := g.NestedNet(); nested != nil {
			flower.CopyEventTreePhylogeny(n, nested)
			b.copyPhylogenies(nested, seen)
		}
	}
}
