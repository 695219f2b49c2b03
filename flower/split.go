package flower

import "fmt"

// Split divides the block into two abutting blocks at splitPoint
// (0 < splitPoint < length). Every segment is rebuilt as a pair of abutting
// segments whose inner caps are made adjacent; outer adjacencies carry over.
// When the block has a designated root instance the instance tree is rebuilt
// below it; roots are optional and their absence flattens the result.
// The original block is destroyed.
func (b *Block) Split(splitPoint int) (*Block, *Block, error) {
	if splitPoint <= 0 || splitPoint >= b.Length() {
		return nil, nil, fmt.Errorf("%w: split point %d in block of length %d", ErrBadRange, splitPoint, b.Length())
	}
	left, err := ConstructBlock(splitPoint, b.Net())
	if err != nil {
		return nil, nil, err
	}
	right, err := ConstructBlock(b.Length()-splitPoint, b.Net())
	if err != nil {
		return nil, nil, err
	}

	if root := b.RootSegment(); root != nil {
		if err = splitInstanceTree(root, nil, nil, left, right); err != nil {
			return nil, nil, err
		}
	} else {
		for _, s := range b.Instances() {
			if _, _, err = splitSegment(s, left, right); err != nil {
				return nil, nil, err
			}
		}
	}
	b.Destruct()
	return left, right, nil
}

// splitSegment rebuilds one segment as two abutting segments in the new
// blocks and transfers the outer adjacencies.
func splitSegment(s *Segment, left, right *Block) (*Segment, *Segment, error) {
	ls, err := left.NewSegment(s.Name(), s.Event(), s.Sequence(), s.Start(), s.Strand())
	if err != nil {
		return nil, nil, err
	}
	rightStart := s.Start() + left.Length()
	if !s.Strand() {
		rightStart = s.Start() - left.Length()
	}
	rs, err := right.NewSegment(s.Name(), s.Event(), s.Sequence(), rightStart, s.Strand())
	if err != nil {
		return nil, nil, err
	}
	// Inner boundary: the two halves abut.
	ls.Cap3().MakeAdjacent(rs.Cap5())
	// Outer boundaries: carry the original adjacencies over.
	if adj := s.Cap5().Adjacency(); adj != nil {
		adj.MakeAdjacent(ls.Cap5())
	}
	if adj := s.Cap3().Adjacency(); adj != nil {
		adj.MakeAdjacent(rs.Cap3())
	}
	return ls, rs, nil
}

// splitInstanceTree splits the instance tree rooted at s, keeping parent and
// child halves linked. A nil parent pair designates s's halves as the roots
// of the new blocks.
func splitInstanceTree(s, parentLeft, parentRight *Segment, left, right *Block) error {
	ls, rs, err := splitSegment(s, left, right)
	if err != nil {
		return err
	}
	if parentLeft != nil {
		parentLeft.MakeParentOf(ls)
		parentRight.MakeParentOf(rs)
	} else {
		left.SetRootSegment(ls)
		right.SetRootSegment(rs)
	}
	for _, child := range s.Children() {
		if err = splitInstanceTree(child, ls, rs, left, right); err != nil {
			return err
		}
	}
	return nil
}
