// Package rope provides an immutable UTF-8 text rope with incremental
// Unicode segmentation, built on the generic counted B-tree in btree.
//
// Text is stored in chunks of 511 to 1023 bytes. Each chunk carries the
// grapheme segmentation state at its start and end, so character counts
// and character boundary queries never rescan the document: an edit
// recomputes segmentation only around its seams and the repair cascade is
// bounded by cluster length, not document length.
//
// The rope package provides:
//
//   - Value-semantic ropes with O(1) copies and O(log n) edits
//   - Five addressing units: bytes, UTF-16 code units, Unicode scalars,
//     characters (extended grapheme clusters), and lines
//   - Index navigation that always lands on valid boundaries, never inside
//     an encoded scalar or a grapheme cluster
//   - Zero-copy subropes and structural sharing across edits
//   - Streaming construction with UTF-8 validation via Builder
//   - Iterators over chunks, bytes, scalars, characters, lines, and
//     UAX #29 word segments
//
// Basic usage:
//
//	r := rope.FromString("hello\nworld\n")
//	r = r.Insert(6, "big ")
//	lines := r.Count(rope.Lines)
//	text := r.Line(1)
//
// All byte offsets address the UTF-8 encoding. Offsets handed to editing
// operations are rounded down to scalar boundaries; reading a character at
// an offset inside a cluster panics rather than returning a torn result.
//
// Ropes are values. Concurrent reads of distinct values are safe without
// locking; mutating operations return new ropes sharing untouched chunks
// with their sources.
package rope
