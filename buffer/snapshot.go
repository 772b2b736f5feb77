package buffer

import (
	"io"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/weft/rope"
	"github.com/dshills/weft/spans"
)

// Snapshot is a read-only view of a buffer at one revision. It shares the
// rope's immutable structure with the buffer, so taking one is cheap, and
// it never changes even as the buffer moves on. Safe for concurrent use
// without locking.
type Snapshot struct {
	id         uuid.UUID
	revision   Revision
	rope       rope.Rope
	taken      time.Time
	lineEnding LineEnding
	tabWidth   int
	overlays   map[string]spans.Spans[uint32]
}

// Snapshot returns a read-only snapshot of the current buffer state.
func (b *Buffer) Snapshot() *Snapshot {
	b.mu.RLock()
	defer b.mu.RUnlock()

	overlays := make(map[string]spans.Spans[uint32], len(b.overlays))
	for name, ov := range b.overlays {
		overlays[name] = ov
	}
	return &Snapshot{
		id:         b.id,
		revision:   b.revision,
		rope:       b.rope,
		taken:      time.Now(),
		lineEnding: b.lineEnding,
		tabWidth:   b.tabWidth,
		overlays:   overlays,
	}
}

// ID returns the identity of the buffer the snapshot was taken from.
func (s *Snapshot) ID() uuid.UUID {
	return s.id
}

// Revision returns the revision the snapshot pins.
func (s *Snapshot) Revision() Revision {
	return s.revision
}

// Taken returns when the snapshot was taken.
func (s *Snapshot) Taken() time.Time {
	return s.taken
}

// Rope returns the snapshot content as a rope value.
func (s *Snapshot) Rope() rope.Rope {
	return s.rope
}

// Text returns the full snapshot content as a string.
func (s *Snapshot) Text() string {
	return s.rope.String()
}

// TextRange returns text in the given byte range.
func (s *Snapshot) TextRange(start, end int) string {
	return s.rope.Slice(start, end)
}

// Len returns the total byte length of the snapshot.
func (s *Snapshot) Len() int {
	return s.rope.Len()
}

// IsEmpty returns true if the snapshot is empty.
func (s *Snapshot) IsEmpty() bool {
	return s.rope.IsEmpty()
}

// LineCount returns the number of lines.
func (s *Snapshot) LineCount() int {
	return s.rope.Count(rope.Lines)
}

// LineText returns the text of a specific line, without its newline.
func (s *Snapshot) LineText(line int) string {
	start, end := lineContentRange(s.rope, line)
	return s.rope.Slice(start, end)
}

// LineRange returns the byte range [start, end) of a line, including its
// newline.
func (s *Snapshot) LineRange(line int) (int, int) {
	return s.rope.LineRange(line)
}

// Overlay returns the named overlay as of the snapshot's revision.
func (s *Snapshot) Overlay(name string) (spans.Spans[uint32], bool) {
	sp, ok := s.overlays[name]
	return sp, ok
}

// OverlayNames returns the overlay names captured by the snapshot, sorted.
func (s *Snapshot) OverlayNames() []string {
	names := make([]string, 0, len(s.overlays))
	for name := range s.overlays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// OffsetToPoint converts a byte offset to line/column.
func (s *Snapshot) OffsetToPoint(offset int) Point {
	return offsetToPoint(s.rope, offset)
}

// PointToOffset converts line/column to a byte offset.
func (s *Snapshot) PointToOffset(p Point) int {
	return pointToOffset(s.rope, p)
}

// OffsetToPointUTF16 converts a byte offset to a line/UTF-16 column.
func (s *Snapshot) OffsetToPointUTF16(offset int) PointUTF16 {
	return offsetToPointUTF16(s.rope, offset)
}

// PointUTF16ToOffset converts a line/UTF-16 column to a byte offset.
func (s *Snapshot) PointUTF16ToOffset(p PointUTF16) int {
	return pointUTF16ToOffset(s.rope, p)
}

// LineEnding returns the snapshot's line ending style.
func (s *Snapshot) LineEnding() LineEnding {
	return s.lineEnding
}

// TabWidth returns the snapshot's tab width.
func (s *Snapshot) TabWidth() int {
	return s.tabWidth
}

// WriteTo writes the snapshot content to w in its line ending style.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	return writeWithEnding(w, s.rope, s.lineEnding)
}
