package main

import (
	"regexp"
	"testing"

	"github.com/dshills/weft/buffer"
	"github.com/dshills/weft/spans"
)

func snapOf(t *testing.T, text string) *buffer.Snapshot {
	t.Helper()
	b, err := buffer.New(text)
	if err != nil {
		t.Fatalf("New(%q): %v", text, err)
	}
	return b.Snapshot()
}

func TestFindMatches(t *testing.T) {
	snap := snapOf(t, "foo bar\nfoo baz\n")

	got := findMatches(snap, regexp.MustCompile(`foo`))
	want := []spans.Range{{Start: 0, End: 3}, {Start: 8, End: 11}}
	if len(got) != len(want) {
		t.Fatalf("got %d matches %v, want %v", len(got), got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("match %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestFindMatchesAnchors(t *testing.T) {
	snap := snapOf(t, "bar\nfoo bar\n")

	// $ anchors at the end of each line, not the end of the document.
	got := findMatches(snap, regexp.MustCompile(`bar$`))
	want := []spans.Range{{Start: 0, End: 3}, {Start: 8, End: 11}}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("got %v, want %v", got, want)
	}

	got = findMatches(snap, regexp.MustCompile(`^bar`))
	if len(got) != 1 || got[0] != (spans.Range{Start: 0, End: 3}) {
		t.Fatalf("got %v, want just [0:3)", got)
	}
}

func TestFindMatchesNeverCrossLines(t *testing.T) {
	snap := snapOf(t, "ab\ncd\n")
	if got := findMatches(snap, regexp.MustCompile(`b\ncd`)); len(got) != 0 {
		t.Fatalf("pattern spanning a newline matched: %v", got)
	}
}

func TestFindMatchesDropsZeroWidth(t *testing.T) {
	snap := snapOf(t, "abc\n")
	if got := findMatches(snap, regexp.MustCompile(`x*`)); len(got) != 0 {
		t.Fatalf("zero-width matches survived: %v", got)
	}
}

func TestMatchSpans(t *testing.T) {
	sp := matchSpans(10, []spans.Range{{Start: 1, End: 3}, {Start: 3, End: 5}, {Start: 7, End: 8}})
	if sp.Len() != 10 {
		t.Fatalf("Len() = %d, want 10", sp.Len())
	}
	got := sp.Collect()
	want := []spans.Span[uint32]{
		{Range: spans.Range{Start: 1, End: 5}, Data: 1},
		{Range: spans.Range{Start: 7, End: 8}, Data: 1},
	}
	if len(got) != len(want) {
		t.Fatalf("spans %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMatchSpansEmpty(t *testing.T) {
	sp := matchSpans(5, nil)
	if sp.Len() != 5 || sp.Count() != 0 {
		t.Fatalf("Len() = %d, Count() = %d, want 5 and 0", sp.Len(), sp.Count())
	}
}

func TestCombineHighlights(t *testing.T) {
	matches := matchSpans(12, []spans.Range{{Start: 0, End: 3}, {Start: 8, End: 11}})
	current := currentSpans(12, spans.Range{Start: 8, End: 11})

	hl := combineHighlights(matches, current)

	checks := []struct {
		off  int
		role uint32
		ok   bool
	}{
		{0, roleMatch, true},
		{2, roleMatch, true},
		{3, 0, false},
		{8, roleCurrentMatch, true},
		{10, roleCurrentMatch, true},
		{11, 0, false},
	}
	for _, c := range checks {
		role, ok := hl.DataAt(c.off)
		if ok != c.ok || (ok && role != c.role) {
			t.Errorf("DataAt(%d) = (%d, %v), want (%d, %v)", c.off, role, ok, c.role, c.ok)
		}
	}
}

func TestNextPrevMatch(t *testing.T) {
	matches := []spans.Range{{Start: 2, End: 4}, {Start: 10, End: 12}, {Start: 20, End: 22}}

	if i := nextMatch(matches, 0); i != 0 {
		t.Errorf("nextMatch from 0 = %d, want 0", i)
	}
	if i := nextMatch(matches, 3); i != 1 {
		t.Errorf("nextMatch from 3 = %d, want 1", i)
	}
	if i := nextMatch(matches, 21); i != 0 {
		t.Errorf("nextMatch wraps to 0, got %d", i)
	}
	if i := prevMatch(matches, 21); i != 2 {
		t.Errorf("prevMatch from 21 = %d, want 2", i)
	}
	if i := prevMatch(matches, 10); i != 0 {
		t.Errorf("prevMatch from 10 = %d, want 0", i)
	}
	if i := prevMatch(matches, 2); i != 2 {
		t.Errorf("prevMatch wraps to 2, got %d", i)
	}
	if i := nextMatch(nil, 0); i != -1 {
		t.Errorf("nextMatch on empty = %d, want -1", i)
	}
	if i := prevMatch(nil, 0); i != -1 {
		t.Errorf("prevMatch on empty = %d, want -1", i)
	}
}
