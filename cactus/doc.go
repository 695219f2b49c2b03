// Package cactus builds the cactus graph of a pinched graph: grey adjacency
// components collapse to nodes, three-edge-connected classes of the resulting
// block multigraph contract to cactus vertices, and the surviving block edges
// arrange themselves into cycles. Stem (bridge) edges are circularised with a
// phantom twin so that every bi-connected component is a cycle of length at
// least two, and the bi-connected components — the candidate chains — are
// reported in depth-first discovery order.
//
// The three-edge-connected classes are computed by partition refinement over
// all one- and two-edge cut sets, which is O(E² · (V+E)). The graphs reaching
// this stage are block multigraphs already contracted over adjacency
// components, so E is small relative to the pinch graph it came from.
//
// The package also hosts the block chooser: the tree-coverage, block-length
// and chain-length filter applied to the candidate chains before the net is
// materialised.
package cactus
