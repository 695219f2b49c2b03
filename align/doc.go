// Package align models pairwise local alignments as consumed by the pinch
// loop: the cigar records emitted by lastz, their decomposition into matched
// segment pairs, and the subprocess runner that produces them.
//
// Coordinates are 0-based and half-open on the forward strand; a reverse
// strand interval runs from its high coordinate down to its low one, so
// Start > End on the '-' strand, exactly as lastz prints them.
package align
