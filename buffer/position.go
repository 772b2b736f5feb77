package buffer

import (
	"fmt"
	"unicode/utf8"

	"github.com/dshills/weft/rope"
)

// Point represents a line and column position.
// Both Line and Column are 0-indexed.
// Column is measured in bytes from the start of the line.
type Point struct {
	Line   int // 0-indexed line number
	Column int // 0-indexed column (byte offset within line)
}

// String returns a human-readable representation of the point.
func (p Point) String() string {
	return fmt.Sprintf("(%d:%d)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p Point) Compare(other Point) int {
	if p.Line != other.Line {
		if p.Line < other.Line {
			return -1
		}
		return 1
	}
	if p.Column != other.Column {
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p Point) Before(other Point) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p Point) After(other Point) bool {
	return p.Compare(other) > 0
}

// PointUTF16 represents a line and column position where the column is
// measured in UTF-16 code units, the convention of the LSP protocol and
// most editor frontends.
type PointUTF16 struct {
	Line   int // 0-indexed line number
	Column int // 0-indexed column in UTF-16 code units
}

// String returns a human-readable representation of the point.
func (p PointUTF16) String() string {
	return fmt.Sprintf("(%d:%d utf16)", p.Line, p.Column)
}

// Compare returns -1 if p < other, 0 if p == other, 1 if p > other.
func (p PointUTF16) Compare(other PointUTF16) int {
	if p.Line != other.Line {
		if p.Line < other.Line {
			return -1
		}
		return 1
	}
	if p.Column != other.Column {
		if p.Column < other.Column {
			return -1
		}
		return 1
	}
	return 0
}

// Before returns true if p comes before other.
func (p PointUTF16) Before(other PointUTF16) bool {
	return p.Compare(other) < 0
}

// After returns true if p comes after other.
func (p PointUTF16) After(other PointUTF16) bool {
	return p.Compare(other) > 0
}

// Revision identifies a buffer content state. It increases by one on every
// mutation, so callers can detect staleness with a plain comparison.
type Revision uint64

// Conversion helpers shared by Buffer and Snapshot. All of them clamp
// rather than fail: positions arrive from UI layers and are best-effort.

func clampOffset(r rope.Rope, offset int) int {
	if offset < 0 {
		return 0
	}
	if offset > r.Len() {
		return r.Len()
	}
	return offset
}

// floorScalar rounds offset down to the nearest scalar boundary.
func floorScalar(r rope.Rope, offset int) int {
	for offset > 0 && offset < r.Len() && !utf8.RuneStart(r.ByteAt(offset)) {
		offset--
	}
	return offset
}

// lineContentRange returns the byte range of line i without its trailing
// newline.
func lineContentRange(r rope.Rope, line int) (int, int) {
	start, end := r.LineRange(line)
	if line < r.Count(rope.Lines)-1 {
		end--
	}
	return start, end
}

func offsetToPoint(r rope.Rope, offset int) Point {
	offset = clampOffset(r, offset)
	line := r.LineIndex(offset)
	start, _ := r.LineRange(line)
	return Point{Line: line, Column: offset - start}
}

func pointToOffset(r rope.Rope, p Point) int {
	line := clampLine(r, p.Line)
	start, end := lineContentRange(r, line)
	if p.Column < 0 {
		return start
	}
	if p.Column >= end-start {
		return end
	}
	return start + p.Column
}

func offsetToPointUTF16(r rope.Rope, offset int) PointUTF16 {
	offset = floorScalar(r, clampOffset(r, offset))
	line := r.LineIndex(offset)
	start, _ := r.LineRange(line)
	return PointUTF16{Line: line, Column: utf16Column(r.Slice(start, offset))}
}

func pointUTF16ToOffset(r rope.Rope, p PointUTF16) int {
	line := clampLine(r, p.Line)
	start, end := lineContentRange(r, line)
	return start + byteColumnFromUTF16(r.Slice(start, end), p.Column)
}

func clampLine(r rope.Rope, line int) int {
	if line < 0 {
		return 0
	}
	if last := r.Count(rope.Lines) - 1; line > last {
		return last
	}
	return line
}

// utf16Column counts UTF-16 code units in a string.
func utf16Column(s string) int {
	col := 0
	for _, r := range s {
		if r >= 0x10000 {
			col += 2 // surrogate pair
		} else {
			col++
		}
	}
	return col
}

// byteColumnFromUTF16 converts a UTF-16 column to a byte offset within a
// line. Columns past the end of the line clamp to the line length; a column
// landing between the halves of a surrogate pair rounds down to the scalar
// start.
func byteColumnFromUTF16(line string, utf16Col int) int {
	col := 0
	offset := 0
	for _, r := range line {
		w := 1
		if r >= 0x10000 {
			w = 2
		}
		if col+w > utf16Col {
			break
		}
		col += w
		offset += utf8.RuneLen(r)
	}
	return offset
}
