// Package blob provides a segmented, read-only byte buffer and positional
// cursors over it.
//
// # Overview
//
// A Blob is an ordered chain of byte segments as produced by a network
// transport. Consumers address bytes through a Position (segment index,
// offset within segment) instead of flattening the chain; parsing code can
// walk headers and payloads across segment seams without materializing a
// contiguous copy.
//
// API surface (internal)
//
//	b := blob.FromBytes(wire, 4096)           // split into fixed segments
//	pos, _ := blob.FindOffset(b, blob.Start(), 24)
//	var hdr [8]byte
//	_ = blob.ReadBytes(hdr[:], b, pos, len(hdr))
//
//	it, _ := blob.NewIterator(b, blob.Start(), b.Length())
//	_ = it.Advance(24)                        // O(1) amortized, crosses seams
//
// Positions are cheap value types; the unset sentinel is blob.NoPosition.
// The Blob itself is never mutated by readers; builders grow one with
// AppendSegment before handing it off.
package blob
