package rope

import (
	"errors"
	"io"
	"unicode/utf8"

	"github.com/dshills/weft/btree"
)

// ErrInvalidUTF8 is reported when builder input is not valid UTF-8.
var ErrInvalidUTF8 = errors.New("invalid UTF-8")

// Builder builds a rope incrementally from streamed writes. The zero value
// is ready to use. Writes may end mid-scalar; the incomplete tail is held
// back until the following write completes it. Validation errors are
// sticky: once input is rejected every later call, including Build,
// reports the first error.
type Builder struct {
	tb    btree.Builder[Chunk, TextSummary]
	brk   GraphemeBreaker
	buf   []byte
	total int
	err   error
}

// WriteString appends s to the rope being built.
func (b *Builder) WriteString(s string) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	b.buf = append(b.buf, s...)
	b.total += len(s)
	if len(b.buf) >= 2*MaxChunkSize {
		b.flush(false)
	}
	return len(s), b.err
}

// Write implements io.Writer.
func (b *Builder) Write(p []byte) (int, error) {
	return b.WriteString(string(p))
}

// WriteByte appends a single byte, which may be part of a multi-byte
// scalar completed by later writes.
func (b *Builder) WriteByte(c byte) error {
	if b.err != nil {
		return b.err
	}
	b.buf = append(b.buf, c)
	b.total++
	if len(b.buf) >= 2*MaxChunkSize {
		b.flush(false)
	}
	return b.err
}

// WriteRune appends a single scalar.
func (b *Builder) WriteRune(r rune) (int, error) {
	if b.err != nil {
		return 0, b.err
	}
	if !utf8.ValidRune(r) {
		b.err = ErrInvalidUTF8
		return 0, b.err
	}
	n := len(b.buf)
	b.buf = utf8.AppendRune(b.buf, r)
	n = len(b.buf) - n
	b.total += n
	if len(b.buf) >= 2*MaxChunkSize {
		b.flush(false)
	}
	return n, b.err
}

// ReadFrom implements io.ReaderFrom. Reading stops at the first read or
// validation error.
func (b *Builder) ReadFrom(r io.Reader) (int64, error) {
	if b.err != nil {
		return 0, b.err
	}
	buf := make([]byte, 64*1024)
	var total int64
	for {
		n, err := r.Read(buf)
		if n > 0 {
			total += int64(n)
			if _, werr := b.Write(buf[:n]); werr != nil {
				return total, werr
			}
		}
		if err == io.EOF {
			return total, nil
		}
		if err != nil {
			return total, err
		}
	}
}

// Len returns the total number of bytes written.
func (b *Builder) Len() int {
	return b.total
}

// Reset clears the builder for reuse.
func (b *Builder) Reset() {
	*b = Builder{}
}

// Build returns the accumulated rope and resets the builder.
// Input that ends with an incomplete scalar is invalid.
func (b *Builder) Build() (Rope, error) {
	b.flush(true)
	if b.err != nil {
		err := b.err
		b.Reset()
		return Rope{}, err
	}
	r := Rope{t: b.tb.Build()}
	b.Reset()
	return r, nil
}

// flush validates the buffered bytes and emits full-size chunks, keeping
// the remainder buffered. Unless final, a trailing incomplete scalar is
// held back for the next write before validation.
func (b *Builder) flush(final bool) {
	if b.err != nil || len(b.buf) == 0 {
		return
	}
	s := string(b.buf)
	tail := len(s)
	if !final {
		for i := 0; i < utf8.UTFMax && tail > 0; i++ {
			tail--
			if utf8.RuneStart(s[tail]) {
				break
			}
		}
		if utf8.FullRuneInString(s[tail:]) {
			tail = len(s)
		}
	}
	if !utf8.ValidString(s[:tail]) {
		b.err = ErrInvalidUTF8
		return
	}
	v := s[:tail]
	for len(v) > MaxChunkSize {
		cut := chunkCut(v)
		c := makeChunk(v[:cut], b.brk)
		b.tb.Push(c)
		b.brk = c.end
		v = v[cut:]
	}
	if final && len(v) > 0 {
		c := makeChunk(v, b.brk)
		b.tb.Push(c)
		v = ""
	}
	b.buf = b.buf[:0]
	b.buf = append(b.buf, v...)
	b.buf = append(b.buf, s[tail:]...)
}
