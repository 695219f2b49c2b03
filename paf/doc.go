// Package paf reads, checks and writes PAF records and undoes the
// fasta_chunk coordinate encoding: a chunked record whose names carry
// "name|chunkStart|originalLength" headers is rewritten into the original
// sequence coordinates with the stripped names.
package paf
