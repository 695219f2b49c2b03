package flower

// FaceEnd is one column of a face: a top cap, the bottom caps whose lifted
// edges land on it, and per bottom cap the derived destination (nil where the
// lift agrees with the top cap's own adjacency).
type FaceEnd struct {
	top     *Cap
	bottoms []*Cap
	derived []*Cap
}

// TopNode returns the top cap of the column.
func (fe *FaceEnd) TopNode() *Cap { return fe.top }

// BottomNodeNumber returns the number of bottom caps.
func (fe *FaceEnd) BottomNodeNumber() int { return len(fe.bottoms) }

// BottomNode returns the i-th bottom cap.
func (fe *FaceEnd) BottomNode(i int) *Cap { return fe.bottoms[i] }

// BottomNodes returns the bottom caps in insertion order.
func (fe *FaceEnd) BottomNodes() []*Cap { return fe.bottoms }

// DerivedDestination returns the derived destination of the i-th bottom cap,
// or nil where the lift is not derived.
func (fe *FaceEnd) DerivedDestination(i int) *Cap { return fe.derived[i] }

// Face records one ambiguous-ancestry module of a net: an array of face ends,
// one per top cap of the module.
type Face struct {
	name string
	net  *Net
	ends []*FaceEnd
}

// newFace creates an empty face attached to net, named through the store.
func newFace(net *Net) *Face {
	f := &Face{name: net.store.UniqueName(), net: net}
	net.addFace(f)
	return f
}

// Name returns the face name.
func (f *Face) Name() string { return f.name }

// Net returns the net the face is attached to.
func (f *Face) Net() *Net { return f.net }

// Cardinal returns the number of top caps in the module.
func (f *Face) Cardinal() int { return len(f.ends) }

// FaceEnd returns the i-th column, or nil when out of range.
func (f *Face) FaceEnd(i int) *FaceEnd {
	if i < 0 || i >= len(f.ends) {
		return nil
	}
	return f.ends[i]
}

// FaceEndForCap returns the column whose top node is the given cap, or nil.
func (f *Face) FaceEndForCap(c *Cap) *FaceEnd {
	for _, fe := range f.ends {
		if fe.top == c {
			return fe
		}
	}
	return nil
}
