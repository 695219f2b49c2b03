// Package event models the phylogenetic event tree that underpins a net
// hierarchy: a rooted tree of speciation/duplication events with branch
// lengths.
//
// The tree answers the two questions the rest of the system asks of it:
//
//   - CommonAncestor(a, b): the lowest event that is an ancestor of both.
//   - Coverage(events): the fraction of the total branch length spanned by
//     the subtree induced by a set of events, used to score blocks
//     ("tree coverage").
//
// Events are created through Tree.AddEvent and are immutable afterwards.
// The zero Tree is not usable; construct with NewTree.
package event
