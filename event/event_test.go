package event_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ostreida/pinchnet/event"
)

// buildTree constructs the reference tree used across the tests:
//
//	ROOT
//	 ├─ anc (1.0)
//	 │   ├─ a (0.5)
//	 │   └─ b (0.5)
//	 └─ c (2.0)
func buildTree(t *testing.T) *event.Tree {
	t.Helper()
	tree := event.NewTree("ROOT")
	_, err := tree.AddEvent("anc", "ROOT", 1.0)
	require.NoError(t, err)
	_, err = tree.AddEvent("a", "anc", 0.5)
	require.NoError(t, err)
	_, err = tree.AddEvent("b", "anc", 0.5)
	require.NoError(t, err)
	_, err = tree.AddEvent("c", "ROOT", 2.0)
	require.NoError(t, err)
	return tree
}

// TestAddEvent_Errors verifies duplicate names, missing parents and negative
// branch lengths are rejected with their sentinel errors.
func TestAddEvent_Errors(t *testing.T) {
	tree := buildTree(t)

	_, err := tree.AddEvent("a", "ROOT", 1)
	assert.ErrorIs(t, err, event.ErrDuplicateEvent)

	_, err = tree.AddEvent("x", "nope", 1)
	assert.ErrorIs(t, err, event.ErrEventNotFound)

	_, err = tree.AddEvent("x", "ROOT", -1)
	assert.ErrorIs(t, err, event.ErrNegativeBranch)
}

// TestCommonAncestor covers sibling, self and cross-subtree lookups.
func TestCommonAncestor(t *testing.T) {
	tree := buildTree(t)
	a, b, c := tree.Event("a"), tree.Event("b"), tree.Event("c")
	anc, root := tree.Event("anc"), tree.Root()

	assert.Same(t, anc, tree.CommonAncestor(a, b))  // siblings meet at their parent
	assert.Same(t, root, tree.CommonAncestor(a, c)) // cross-subtree meets at root
	assert.Same(t, a, tree.CommonAncestor(a, a))    // an event is its own ancestor
	assert.Same(t, anc, tree.CommonAncestor(anc, b))
	assert.Nil(t, tree.CommonAncestor(nil, a))
}

// TestCoverage checks the induced-subtree fraction for several event subsets.
func TestCoverage(t *testing.T) {
	tree := buildTree(t)
	a, b, c := tree.Event("a"), tree.Event("b"), tree.Event("c")

	// Total branch length: 1.0 + 0.5 + 0.5 + 2.0 = 4.0.
	assert.InDelta(t, 4.0, tree.TotalLength(), 1e-12)

	// a alone induces a(0.5) + anc(1.0) = 1.5.
	assert.InDelta(t, 1.5/4.0, tree.Coverage([]*event.Event{a}), 1e-12)

	// a and b share the anc branch: 0.5 + 0.5 + 1.0 = 2.0.
	assert.InDelta(t, 2.0/4.0, tree.Coverage([]*event.Event{a, b}), 1e-12)

	// All leaves cover the whole tree.
	assert.InDelta(t, 1.0, tree.Coverage([]*event.Event{a, b, c}), 1e-12)

	// Duplicates do not double-count.
	assert.InDelta(t, 1.5/4.0, tree.Coverage([]*event.Event{a, a, a}), 1e-12)

	// The root alone induces nothing.
	assert.Zero(t, tree.Coverage([]*event.Event{tree.Root()}))
}
