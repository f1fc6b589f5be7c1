// Package flat provides an exact inner-product vector index.
//
// Every search scans all stored vectors, so results are exact and ties are
// broken by insertion order. The index lives in memory and is persisted as
// two files that are always written and read as one unit:
//
//   - pages.vec: little-endian float32 matrix with a small header
//   - pages.meta.json: the page references, in the same order
package flat
