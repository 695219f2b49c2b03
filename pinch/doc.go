// Package pinch implements the working graph of the alignment-folding stage:
// sequence threads decomposed into paired black edges (segments) joined by
// grey adjacency edges, with operations to split edges at arbitrary offsets
// and to merge aligned edges into blocks.
//
// Representation. Vertices live in an arena indexed by id; black edges are
// allocated in orientation pairs (an edge and its reverse twin are distinct
// objects sharing no state beyond the twin link), so twin(twin(e)) == e holds
// by construction. Signed segment coordinates encode strand: a start >= 1 is
// the forward strand, a negative start addresses the reverse complement.
// A per-contig registry keeps the forward edges sorted by start coordinate
// for containment and thread-walking queries.
//
// The package also carries the consistency passes run between pinch rounds:
// over-alignment pruning (degree cap, tree-coverage floor, grey-radius
// extension), trivial grey component removal, and the stub-to-sink linking
// that precedes cactus construction.
//
// All operations are single-threaded; the graph is mutated by one caller at
// a time.
package pinch
