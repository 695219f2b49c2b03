// Package pipeline drives the core transformation: a stream of pairwise
// alignments is folded into a net's pinch graph over a fixed number of
// pinch/undo passes, the pinched graph is contracted to a cactus, a block
// subset is chosen, and the chosen blocks are materialised as the net
// hierarchy of ends, blocks, chains, groups and faces.
//
// Run is the single entry point. Parameters arrive in a Params record
// (loadable from YAML); the alignment stream is a capability interface the
// caller implements, reset at the start of every pass. Everything is
// synchronous and single-threaded; determinism follows from input order and
// parameters.
package pipeline
