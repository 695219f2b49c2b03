// Package flower implements the hierarchical entity model of the net
// decomposition: Net, End, Cap, Block, Segment, Chain, Link, Group, Face and
// Sequence, together with the store capabilities (unique-name allocation,
// by-name lookup, binary write/load) the pipeline builds them through.
//
// A Net (historically "flower") is one node of the recursive decomposition.
// It owns Ends (equivalence classes of strand-directed sequence endpoints),
// Blocks (homologous segment classes bounded by two Ends), Chains (ordered
// cycles of Links), Groups (adjacency components, optionally pointing at a
// nested Net) and Faces (ambiguous-ancestry modules rebuilt on demand by
// Net.ReconstructFaces).
//
// Entities with a strand mirror (End, Cap, Block, Segment) are modelled as a
// pair (shared contents, orientation flag): a single backing record serves
// both orientations and Reverse flips between them in O(1) without a second
// heap object.
//
// Creation goes through factories that register the entity with its Net and,
// where a fresh name is needed, with the Store. Nested nets are referenced by
// name and resolved through the Store, never by pointer, so a re-hydrated
// hierarchy behaves identically to the one that was written out.
//
// Errors:
//
//   - ErrDuplicateName  - an entity with that name already exists in the owner.
//   - ErrNotFound       - a by-name lookup failed.
//   - ErrBadRange       - a sequence sub-range lies outside the sequence.
//   - ErrInvariant      - an entity-graph contract was broken.
//   - ErrCorruptStream  - a binary load saw an unexpected element tag.
package flower
