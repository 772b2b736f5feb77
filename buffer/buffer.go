package buffer

import (
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/dshills/weft/rope"
	"github.com/dshills/weft/spans"
)

// Errors returned by buffer operations. Invalid UTF-8 replacement text is
// reported as rope.ErrInvalidUTF8.
var (
	ErrOffsetOutOfRange = errors.New("offset out of range")
	ErrRangeInvalid     = errors.New("invalid range")
	ErrEditsOverlap     = errors.New("edits overlap")
	ErrStaleRevision    = errors.New("stale revision")
	ErrOverlayLength    = errors.New("overlay length does not match buffer")
)

// LineEnding specifies the line ending style.
type LineEnding uint8

const (
	LineEndingLF   LineEnding = iota // Unix: \n
	LineEndingCRLF                   // Windows: \r\n
	LineEndingCR                     // Old Mac: \r
)

// String returns the string representation of the line ending.
func (le LineEnding) String() string {
	switch le {
	case LineEndingCRLF:
		return "\\r\\n"
	case LineEndingCR:
		return "\\r"
	default:
		return "\\n"
	}
}

// Sequence returns the actual line ending characters.
func (le LineEnding) Sequence() string {
	switch le {
	case LineEndingCRLF:
		return "\r\n"
	case LineEndingCR:
		return "\r"
	default:
		return "\n"
	}
}

// Buffer binds a rope to a revision counter, an undo history, and named
// spans overlays. All methods are thread-safe.
//
// Content is stored LF-normalized regardless of the buffer's line ending
// style; the style is applied when writing the buffer back out.
type Buffer struct {
	mu            sync.RWMutex
	id            uuid.UUID
	rope          rope.Rope
	revision      Revision
	lineEnding    LineEnding
	lineEndingSet bool
	tabWidth      int
	overlays      map[string]spans.Spans[uint32]
	hist          history
}

// New creates a buffer with the given content. The line ending style is
// detected from the content unless WithLineEnding overrides it. Returns
// rope.ErrInvalidUTF8 if the content is not valid UTF-8.
func New(text string, opts ...Option) (*Buffer, error) {
	if !utf8.ValidString(text) {
		return nil, rope.ErrInvalidUTF8
	}

	b := &Buffer{
		id:       uuid.New(),
		revision: 1,
		tabWidth: 4,
		overlays: make(map[string]spans.Spans[uint32]),
		hist:     history{depth: DefaultHistoryDepth},
	}
	for _, opt := range opts {
		opt(b)
	}
	if !b.lineEndingSet {
		b.lineEnding = DetectLineEnding(text)
	}
	b.rope = rope.FromString(normalizeToLF(text))
	return b, nil
}

// NewFromReader creates a buffer from an io.Reader. The content is read in
// full before normalization so a CRLF split across reads stays one ending.
func NewFromReader(r io.Reader, opts ...Option) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return New(string(data), opts...)
}

// normalizeToLF converts CRLF and lone CR line endings to LF.
func normalizeToLF(s string) string {
	if !strings.ContainsRune(s, '\r') {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}

// Read Operations

// ID returns the buffer's identity. It is fixed at construction.
func (b *Buffer) ID() uuid.UUID {
	return b.id
}

// Revision returns the current revision. Every successful mutation
// increases it by one.
func (b *Buffer) Revision() Revision {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.revision
}

// Rope returns the current content as a rope value. The rope is immutable,
// so the caller can keep reading it while the buffer moves on.
func (b *Buffer) Rope() rope.Rope {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope
}

// Text returns the full buffer content as a string, LF-normalized.
// For large buffers, prefer Rope or Snapshot and iterate.
func (b *Buffer) Text() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.String()
}

// TextRange returns text in the given byte range.
func (b *Buffer) TextRange(start, end int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Slice(start, end)
}

// Len returns the total byte length of the buffer.
func (b *Buffer) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Len()
}

// IsEmpty returns true if the buffer is empty.
func (b *Buffer) IsEmpty() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.IsEmpty()
}

// LineCount returns the number of lines. Text ending in a newline has a
// final empty line.
func (b *Buffer) LineCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.Count(rope.Lines)
}

// LineText returns the text of a specific line, without its newline.
func (b *Buffer) LineText(line int) string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end := lineContentRange(b.rope, line)
	return b.rope.Slice(start, end)
}

// LineLen returns the length of a specific line in bytes, without its
// newline.
func (b *Buffer) LineLen(line int) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	start, end := lineContentRange(b.rope, line)
	return end - start
}

// LineRange returns the byte range [start, end) of a line, including its
// newline.
func (b *Buffer) LineRange(line int) (int, int) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.rope.LineRange(line)
}

// Coordinate Conversion

// OffsetToPoint converts a byte offset to line/column. Offsets outside the
// buffer clamp to its ends.
func (b *Buffer) OffsetToPoint(offset int) Point {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offsetToPoint(b.rope, offset)
}

// PointToOffset converts line/column to a byte offset. The line clamps to
// the buffer, the column to the line.
func (b *Buffer) PointToOffset(p Point) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return pointToOffset(b.rope, p)
}

// OffsetToPointUTF16 converts a byte offset to a line/UTF-16 column.
func (b *Buffer) OffsetToPointUTF16(offset int) PointUTF16 {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return offsetToPointUTF16(b.rope, offset)
}

// PointUTF16ToOffset converts a line/UTF-16 column to a byte offset.
func (b *Buffer) PointUTF16ToOffset(p PointUTF16) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return pointUTF16ToOffset(b.rope, p)
}

// Write Operations

// Insert inserts text at the given offset and returns the offset just past
// the inserted text.
func (b *Buffer) Insert(offset int, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if offset < 0 || offset > b.rope.Len() {
		return 0, ErrOffsetOutOfRange
	}
	res, err := b.applyEditLocked(NewInsert(offset, text))
	if err != nil {
		return 0, err
	}
	return res.NewRange.End, nil
}

// Delete removes text in the given range.
func (b *Buffer) Delete(start, end int) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	_, err := b.applyEditLocked(NewDelete(start, end))
	return err
}

// Replace replaces text in the given range and returns the offset just past
// the replacement text.
func (b *Buffer) Replace(start, end int, text string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	res, err := b.applyEditLocked(NewEdit(Range{Start: start, End: end}, text))
	if err != nil {
		return 0, err
	}
	return res.NewRange.End, nil
}

// ApplyEdit applies a single edit. Offsets inside an encoded scalar round
// down to the scalar start; the result reports the range actually replaced.
func (b *Buffer) ApplyEdit(edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyEditLocked(edit)
}

// ApplyEditAt is ApplyEdit gated on the buffer still being at the given
// revision. Returns ErrStaleRevision otherwise.
func (b *Buffer) ApplyEditAt(base Revision, edit Edit) (EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if base != b.revision {
		return EditResult{}, ErrStaleRevision
	}
	return b.applyEditLocked(edit)
}

// ApplyEdits applies a batch of edits atomically: either every edit is
// validated against the current content and applied, or none is. Edits are
// applied from the highest offset down, so each range refers to the content
// as it was before the batch. Results are returned in input order and the
// whole batch forms a single undo step.
func (b *Buffer) ApplyEdits(edits []Edit) ([]EditResult, error) {
	if len(edits) == 0 {
		return nil, nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.applyEditsLocked(edits)
}

// ApplyEditsAt is ApplyEdits gated on the buffer still being at the given
// revision. Returns ErrStaleRevision otherwise.
func (b *Buffer) ApplyEditsAt(base Revision, edits []Edit) ([]EditResult, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if base != b.revision {
		return nil, ErrStaleRevision
	}
	if len(edits) == 0 {
		return nil, nil
	}
	return b.applyEditsLocked(edits)
}

func (b *Buffer) applyEditLocked(edit Edit) (EditResult, error) {
	if edit.Range.Start < 0 || edit.Range.Start > edit.Range.End || edit.Range.End > b.rope.Len() {
		return EditResult{}, ErrRangeInvalid
	}
	if !utf8.ValidString(edit.NewText) {
		return EditResult{}, rope.ErrInvalidUTF8
	}

	res, ch := b.spliceLocked(edit)
	if ch != nil {
		b.revision++
		b.hist.record([]Change{*ch})
	}
	res.Revision = b.revision
	return res, nil
}

func (b *Buffer) applyEditsLocked(edits []Edit) ([]EditResult, error) {
	length := b.rope.Len()
	for _, e := range edits {
		if e.Range.Start < 0 || e.Range.Start > e.Range.End || e.Range.End > length {
			return nil, ErrRangeInvalid
		}
		if !utf8.ValidString(e.NewText) {
			return nil, rope.ErrInvalidUTF8
		}
	}

	// Highest offset first, so applying one edit cannot shift the ranges of
	// the edits still to come. At equal starts a deletion or replacement
	// goes before insertions, and tied insertions apply in reverse input
	// order, which leaves the first input edit first in the text.
	order := make([]int, len(edits))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(x, y int) bool {
		ex, ey := edits[order[x]], edits[order[y]]
		if ex.Range.Start != ey.Range.Start {
			return ex.Range.Start > ey.Range.Start
		}
		if ex.Range.IsEmpty() != ey.Range.IsEmpty() {
			return !ex.Range.IsEmpty()
		}
		return order[x] > order[y]
	})
	for k := 1; k < len(order); k++ {
		if edits[order[k]].Range.End > edits[order[k-1]].Range.Start {
			return nil, ErrEditsOverlap
		}
	}

	results := make([]EditResult, len(edits))
	var changes []Change
	for _, i := range order {
		res, ch := b.spliceLocked(edits[i])
		results[i] = res
		if ch != nil {
			changes = append(changes, *ch)
		}
	}
	if len(changes) > 0 {
		b.revision++
		b.hist.record(changes)
	}
	for i := range results {
		results[i].Revision = b.revision
	}
	return results, nil
}

// spliceLocked performs one validated edit against the rope and every
// overlay. A degenerate edit (empty floored range, empty text) changes
// nothing and returns a nil change.
func (b *Buffer) spliceLocked(edit Edit) (EditResult, *Change) {
	start := floorScalar(b.rope, edit.Range.Start)
	end := floorScalar(b.rope, edit.Range.End)
	text := normalizeToLF(edit.NewText)
	old := b.rope.Slice(start, end)

	res := EditResult{
		OldRange: Range{Start: start, End: end},
		NewRange: Range{Start: start, End: start + len(text)},
		OldText:  old,
		Delta:    len(text) - (end - start),
	}
	if old == "" && text == "" {
		return res, nil
	}

	b.rope = b.rope.Replace(start, end, text)
	b.spliceOverlaysLocked(start, end, len(text))
	ch := changeFor(Range{Start: start, End: end}, old, text)
	return res, &ch
}

// applyChangeLocked reapplies a recorded change. Change ranges are already
// scalar-floored and valid in the state they apply to.
func (b *Buffer) applyChangeLocked(c Change) {
	b.rope = b.rope.Replace(c.Range.Start, c.Range.End, c.NewText)
	b.spliceOverlaysLocked(c.Range.Start, c.Range.End, len(c.NewText))
}

// Overlays

// SetOverlay registers a named overlay. Its domain length must match the
// buffer length; from then on every edit splices it along with the text.
func (b *Buffer) SetOverlay(name string, sp spans.Spans[uint32]) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if sp.Len() != b.rope.Len() {
		return ErrOverlayLength
	}
	b.overlays[name] = sp
	return nil
}

// Overlay returns the named overlay.
func (b *Buffer) Overlay(name string) (spans.Spans[uint32], bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	sp, ok := b.overlays[name]
	return sp, ok
}

// RemoveOverlay drops the named overlay.
func (b *Buffer) RemoveOverlay(name string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.overlays, name)
}

// OverlayNames returns the registered overlay names, sorted.
func (b *Buffer) OverlayNames() []string {
	b.mu.RLock()
	defer b.mu.RUnlock()

	names := make([]string, 0, len(b.overlays))
	for name := range b.overlays {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (b *Buffer) spliceOverlaysLocked(start, end, newLen int) {
	for name, ov := range b.overlays {
		b.overlays[name] = ov.Splice(start, end, newLen)
	}
}

// Buffer State

// LineEnding returns the buffer's line ending style.
func (b *Buffer) LineEnding() LineEnding {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lineEnding
}

// SetLineEnding sets the buffer's line ending style. Content stays
// LF-normalized; the style applies on WriteTo.
func (b *Buffer) SetLineEnding(le LineEnding) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lineEnding = le
}

// TabWidth returns the buffer's tab width.
func (b *Buffer) TabWidth() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.tabWidth
}

// SetTabWidth sets the buffer's tab width.
func (b *Buffer) SetTabWidth(width int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if width > 0 {
		b.tabWidth = width
	}
}

// WriteTo writes the buffer content to w in the buffer's line ending style.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	b.mu.RLock()
	r := b.rope
	le := b.lineEnding
	b.mu.RUnlock()
	return writeWithEnding(w, r, le)
}

func writeWithEnding(w io.Writer, r rope.Rope, le LineEnding) (int64, error) {
	if le == LineEndingLF {
		return r.WriteTo(w)
	}
	seq := le.Sequence()
	var total int64
	it := r.Chunks()
	for it.Next() {
		n, err := io.WriteString(w, strings.ReplaceAll(it.Text(), "\n", seq))
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
