package flower

// liftedEdge records, for a top cap, one lifted edge landing on it: the
// destination top cap and the bottom cap the edge lifts from.
type liftedEdge struct {
	destination *Cap
	bottom      *Cap
}

// ReconstructFaces destroys any faces attached to the net and rebuilds them
// from the cap adjacencies: a face is materialised for every non-trivial
// module of the lifted-edge/adjacency graph over the net's caps.
//
// A cap seeds a face when it has two or more lifted edges, or a single lifted
// edge whose destination disagrees with the cap's own adjacency (a minor
// lifted edge). Trivial modules never satisfy either condition and are not
// materialised.
func (n *Net) ReconstructFaces() {
	n.DestructFaces()
	lifted := n.computeLiftedEdges()
	for _, c := range n.Caps() {
		les, ok := lifted[c]
		if !ok {
			continue
		}
		if len(les) >= 2 || minorLiftedEdgeDestination(c, les) != nil {
			n.buildFaceFrom(c, lifted)
		}
	}
}

// DestructFaces removes every face from the net.
func (n *Net) DestructFaces() { n.faces = nil }

// computeLiftedEdges builds the lifted-edge table: for every cap c with an
// adjacency, the record (topCap(positiveOrientation(adjacency)), c) is
// appended under topCap(c). Caps lifting past the root contribute nothing.
func (n *Net) computeLiftedEdges() map[*Cap][]liftedEdge {
	lifted := make(map[*Cap][]liftedEdge)
	for _, c := range n.Caps() {
		adj := c.Adjacency()
		if adj == nil {
			continue
		}
		top := c.TopCap()
		if top == nil {
			continue // lifts to the root
		}
		dest := adj.PositiveOrientation().TopCap()
		lifted[top] = append(lifted[top], liftedEdge{destination: dest, bottom: c})
	}
	return lifted
}

// minorLiftedEdgeDestination returns the destination of the unique lifted
// edge out of a top cap that disagrees with the cap's own adjacency, or nil
// when every lifted edge is ancestral.
func minorLiftedEdgeDestination(c *Cap, les []liftedEdge) *Cap {
	var ancestral *Cap
	if adj := c.Adjacency(); adj != nil {
		ancestral = adj.PositiveOrientation()
	}
	for _, le := range les {
		if le.destination != nil && le.destination != ancestral {
			return le.destination
		}
	}
	return nil
}

// buildFaceFrom collects the module reachable from start along lifted-edge
// destinations and direct adjacencies, consuming the visited caps' entries in
// the lifted table, and materialises it as a face. The traversal is an
// explicit-stack pre-order walk; removal from the table guards against
// re-entry.
func (n *Net) buildFaceFrom(start *Cap, lifted map[*Cap][]liftedEdge) *Face {
	removed := make(map[*Cap][]liftedEdge)
	var tops []*Cap
	seen := make(map[*Cap]bool)
	stack := []*Cap{start}
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if c == nil || seen[c] {
			continue
		}
		seen[c] = true
		tops = append(tops, c)
		les := lifted[c]
		delete(lifted, c)
		removed[c] = les
		// Push the adjacency below the lifted destinations so the walk
		// follows lifted edges first, then the direct adjacency.
		if adj := c.Adjacency(); adj != nil {
			stack = append(stack, adj)
		}
		for i := len(les) - 1; i >= 0; i-- {
			stack = append(stack, les[i].destination)
		}
	}

	face := newFace(n)
	for _, top := range tops {
		fe := &FaceEnd{top: top}
		for _, le := range removed[top] {
			fe.bottoms = append(fe.bottoms, le.bottom)
			var derived *Cap
			if adj := le.bottom.Adjacency(); adj != nil {
				ancestor := adj.PositiveOrientation().TopCap()
				if top.Adjacency() != ancestor {
					derived = ancestor
				}
			}
			fe.derived = append(fe.derived, derived)
		}
		face.ends = append(face.ends, fe)
	}
	return face
}
