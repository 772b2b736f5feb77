// Package buffer provides a thread-safe document layer on top of the rope
// and spans engines. A Buffer binds one rope to a revision counter, an undo
// history, and a set of named spans overlays that are spliced on every edit.
//
// The buffer package provides:
//
//   - Thread-safe read/write access via sync.RWMutex
//   - Validated edits with sentinel errors instead of engine panics
//   - Undo/redo with bounded depth and change grouping
//   - Named Spans[uint32] overlays kept aligned with the text across edits
//   - Read-only snapshots pinning one revision for concurrent readers
//   - Coordinate conversion between byte offsets and line/column positions,
//     including UTF-16 columns for LSP-style consumers
//   - Line ending detection; content is stored LF-normalized and converted
//     back on WriteTo
//
// Basic usage:
//
//	buf, _ := buffer.New("Hello, World!")
//
//	// Insert text
//	buf.Insert(7, "Beautiful ") // "Hello, Beautiful World!"
//
//	// Undo it again
//	buf.Undo()
//
//	// Get a snapshot for concurrent reading
//	snap := buf.Snapshot()
//	go func() {
//	    text := snap.Text()
//	    // Process text...
//	}()
//
// Coordinates:
//
// All offsets are byte offsets into the LF-normalized content, shared with
// the rope and spans packages. Point carries a byte column, PointUTF16 a
// UTF-16 code unit column. Edit offsets that land inside an encoded scalar
// are rounded down to the scalar start, matching the rope's edit semantics;
// the EditResult reports the range actually touched.
//
// Overlays hold positions, not content: an edit splices every overlay so
// annotations outside the edited range keep their place, while the edited
// range itself becomes uncovered until a producer re-annotates it. Undo and
// redo move overlay positions the same way; they do not restore overlay
// contents.
//
// Thread Safety:
//
// All Buffer methods are thread-safe. Read operations acquire a read lock,
// write operations an exclusive write lock. Snapshots share the rope's
// immutable structure, so taking one is cheap and the result needs no
// locking at all.
package buffer
