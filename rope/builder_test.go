package rope

import (
	"errors"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"
)

func TestBuilderBasic(t *testing.T) {
	var b Builder
	if _, err := b.WriteString("hello"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.WriteString(" world"); err != nil {
		t.Fatal(err)
	}
	if got := b.Len(); got != 11 {
		t.Errorf("Len() = %d, want 11", got)
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "hello world" {
		t.Errorf("got %q", got)
	}
}

func TestBuilderWriteKinds(t *testing.T) {
	var b Builder
	b.WriteString("a")
	b.Write([]byte("b"))
	b.WriteByte('c')
	if n, err := b.WriteRune('世'); err != nil || n != 3 {
		t.Fatalf("WriteRune = (%d, %v), want (3, nil)", n, err)
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "abc世" {
		t.Errorf("got %q", got)
	}
}

func TestBuilderSplitScalarAcrossWrites(t *testing.T) {
	enc := []byte("世界") // e4 b8 96 e7 95 8c
	var b Builder
	for _, c := range enc {
		if err := b.WriteByte(c); err != nil {
			t.Fatal(err)
		}
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "世界" {
		t.Errorf("got %q", got)
	}
	if got := r.Count(Scalars); got != 2 {
		t.Errorf("Count(Scalars) = %d, want 2", got)
	}
}

func TestBuilderHoldsBackIncompleteScalar(t *testing.T) {
	// The first write crosses the flush threshold ending one byte into a
	// three-byte scalar; the partial byte must wait for the rest.
	head := strings.Repeat("a", 2045)
	var b Builder
	if _, err := b.WriteString(head + "\xe4"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.WriteString("\xb8\x96"); err != nil {
		t.Fatal(err)
	}
	if got := b.Len(); got != 2048 {
		t.Errorf("Len() = %d, want 2048", got)
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	want := head + "世"
	if !r.Equals(FromString(want)) {
		t.Error("built rope differs from FromString of the same text")
	}
}

func TestBuilderInvalidAtFlush(t *testing.T) {
	var b Builder
	_, err := b.WriteString(strings.Repeat("a", 2045) + "\xff")
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("err = %v, want ErrInvalidUTF8", err)
	}
	if _, err := b.WriteString("more"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("sticky err = %v, want ErrInvalidUTF8", err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Build err = %v, want ErrInvalidUTF8", err)
	}
}

func TestBuilderIncompleteTailAtBuild(t *testing.T) {
	var b Builder
	if _, err := b.WriteString("ok\xe4\xb8"); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Build(); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("Build err = %v, want ErrInvalidUTF8", err)
	}
}

func TestBuilderWriteRuneInvalid(t *testing.T) {
	var b Builder
	if _, err := b.WriteRune(0xD800); !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("err = %v, want ErrInvalidUTF8", err)
	}
	if _, err := b.WriteString("ok"); !errors.Is(err, ErrInvalidUTF8) {
		t.Errorf("sticky err = %v, want ErrInvalidUTF8", err)
	}

	b.Reset()
	if _, err := b.WriteString("ok"); err != nil {
		t.Fatal(err)
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != "ok" {
		t.Errorf("got %q", got)
	}
}

func TestBuilderReuseAfterBuild(t *testing.T) {
	var b Builder
	b.WriteString("one")
	r1, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	b.WriteString("two")
	r2, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if r1.String() != "one" || r2.String() != "two" {
		t.Errorf("got %q, %q", r1.String(), r2.String())
	}
}

func TestBuilderLargeStream(t *testing.T) {
	text := strings.Repeat("héllo wörld 🌍\n", 1000)
	var b Builder
	for i := 0; i < len(text); i += 7 {
		end := i + 7
		if end > len(text) {
			end = len(text)
		}
		if _, err := b.Write([]byte(text[i:end])); err != nil {
			t.Fatal(err)
		}
	}
	if got := b.Len(); got != len(text) {
		t.Errorf("Len() = %d, want %d", got, len(text))
	}
	r, err := b.Build()
	if err != nil {
		t.Fatal(err)
	}
	if !r.Equals(FromString(text)) {
		t.Fatal("built rope differs from FromString of the same text")
	}
	if got, want := r.Count(Scalars), utf8.RuneCountInString(text); got != want {
		t.Errorf("Count(Scalars) = %d, want %d", got, want)
	}
	if got, want := r.Count(Lines), 1001; got != want {
		t.Errorf("Count(Lines) = %d, want %d", got, want)
	}
}

func TestFromReaderOneByteAtATime(t *testing.T) {
	text := "日本語 one byte at a time\n"
	r, err := FromReader(iotest.OneByteReader(strings.NewReader(text)))
	if err != nil {
		t.Fatal(err)
	}
	if got := r.String(); got != text {
		t.Errorf("got %q", got)
	}
}

func TestFromReaderError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := FromReader(iotest.ErrReader(boom)); !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
}
