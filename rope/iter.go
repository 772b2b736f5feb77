package rope

import (
	"unicode/utf8"

	"github.com/dshills/weft/btree"
)

// ChunkIterator walks the chunks of a rope in order.
type ChunkIterator struct {
	cursor  *btree.Cursor[Chunk, TextSummary]
	started bool
}

// Chunks returns an iterator over the rope's chunks.
func (r Rope) Chunks() *ChunkIterator {
	return &ChunkIterator{cursor: btree.NewCursor(r.t)}
}

// Next advances to the next chunk.
// Returns true if there is a chunk, false when iteration is complete.
func (it *ChunkIterator) Next() bool {
	if !it.started {
		it.started = true
		it.cursor.Seek(0)
		return it.cursor.Valid()
	}
	return it.cursor.NextLeaf()
}

// Chunk returns the current chunk.
func (it *ChunkIterator) Chunk() Chunk {
	return it.cursor.Leaf()
}

// Text returns the text of the current chunk.
func (it *ChunkIterator) Text() string {
	return it.cursor.Leaf().text
}

// Start returns the byte offset of the start of the current chunk.
func (it *ChunkIterator) Start() int {
	return it.cursor.LeafStart()
}

// ByteIterator walks the bytes of a rope in order.
type ByteIterator struct {
	chunks  *ChunkIterator
	text    string
	idx     int
	start   int
	started bool
}

// Bytes returns an iterator over the rope's bytes.
func (r Rope) Bytes() *ByteIterator {
	return &ByteIterator{chunks: r.Chunks()}
}

// Next advances to the next byte.
// Returns true if there is a byte, false when iteration is complete.
func (it *ByteIterator) Next() bool {
	if !it.started {
		it.started = true
		if !it.chunks.Next() {
			return false
		}
		it.text = it.chunks.Text()
		it.start = it.chunks.Start()
		it.idx = 0
		return true
	}
	it.idx++
	if it.idx >= len(it.text) {
		if !it.chunks.Next() {
			return false
		}
		it.text = it.chunks.Text()
		it.start = it.chunks.Start()
		it.idx = 0
	}
	return true
}

// Byte returns the current byte.
func (it *ByteIterator) Byte() byte {
	return it.text[it.idx]
}

// Offset returns the byte offset of the current byte.
func (it *ByteIterator) Offset() int {
	return it.start + it.idx
}

// ScalarIterator walks the Unicode scalars of a rope in order. Chunks never
// split an encoded scalar, so each scalar decodes within one chunk.
type ScalarIterator struct {
	chunks  *ChunkIterator
	text    string
	idx     int
	start   int
	cur     rune
	size    int
	started bool
}

// Scalars returns an iterator over the rope's Unicode scalars.
func (r Rope) Scalars() *ScalarIterator {
	return &ScalarIterator{chunks: r.Chunks()}
}

// Next advances to the next scalar.
// Returns true if there is a scalar, false when iteration is complete.
func (it *ScalarIterator) Next() bool {
	if !it.started {
		it.started = true
		if !it.chunks.Next() {
			return false
		}
		it.text = it.chunks.Text()
		it.start = it.chunks.Start()
		it.idx = 0
	} else {
		it.idx += it.size
		if it.idx >= len(it.text) {
			if !it.chunks.Next() {
				return false
			}
			it.text = it.chunks.Text()
			it.start = it.chunks.Start()
			it.idx = 0
		}
	}
	it.cur, it.size = utf8.DecodeRuneInString(it.text[it.idx:])
	return true
}

// Scalar returns the current scalar.
func (it *ScalarIterator) Scalar() rune {
	return it.cur
}

// Size returns the byte size of the current scalar.
func (it *ScalarIterator) Size() int {
	return it.size
}

// Offset returns the byte offset of the current scalar.
func (it *ScalarIterator) Offset() int {
	return it.start + it.idx
}

// CharIterator walks the characters (extended grapheme clusters) of a rope
// in order. A character may span chunks.
type CharIterator struct {
	r       Rope
	cursor  *btree.Cursor[Chunk, TextSummary]
	start   int
	end     int
	text    string
	started bool
}

// Chars returns an iterator over the rope's characters.
func (r Rope) Chars() *CharIterator {
	return &CharIterator{r: r, cursor: btree.NewCursor(r.t)}
}

// Next advances to the next character.
// Returns true if there is a character, false when iteration is complete.
func (it *CharIterator) Next() bool {
	if !it.started {
		it.started = true
		it.start = 0
	} else {
		it.start = it.end
	}
	if it.start >= it.r.Len() {
		return false
	}
	end, ok := it.cursor.NextBoundary(charMetric, it.start)
	if !ok {
		return false
	}
	it.end = end
	it.text = it.r.Slice(it.start, it.end)
	return true
}

// Char returns the current character.
func (it *CharIterator) Char() string {
	return it.text
}

// Start returns the byte offset of the start of the current character.
func (it *CharIterator) Start() int {
	return it.start
}

// End returns the byte offset one past the current character.
func (it *CharIterator) End() int {
	return it.end
}

// LineIterator walks the lines of a rope in order. Every line except the
// last includes its trailing newline; an empty rope has a single empty line.
type LineIterator struct {
	r       Rope
	line    int
	count   int
	started bool
}

// Lines returns an iterator over the rope's lines.
func (r Rope) Lines() *LineIterator {
	return &LineIterator{r: r, count: r.Count(Lines)}
}

// Next advances to the next line.
// Returns true if there is a line, false when iteration is complete.
func (it *LineIterator) Next() bool {
	if !it.started {
		it.started = true
	} else {
		it.line++
	}
	return it.line < it.count
}

// Line returns the current line number.
func (it *LineIterator) Line() int {
	return it.line
}

// Text returns the text of the current line, including its newline.
func (it *LineIterator) Text() string {
	return it.r.Line(it.line)
}

// Range returns the byte range [start, end) of the current line.
func (it *LineIterator) Range() (int, int) {
	return it.r.LineRange(it.line)
}
