package main

import (
	"regexp"

	"github.com/dshills/weft/buffer"
	"github.com/dshills/weft/spans"
)

// Overlay names the viewer installs on the buffer. The buffer splices
// them across follow-mode edits, so stale matches keep their positions
// until the next search pass recomputes them.
const (
	overlayMatches = "search"
	overlayCurrent = "search.current"
)

// findMatches runs the pattern over the snapshot line by line and returns
// the match ranges in document order as absolute byte ranges. The trailing
// newline is stripped before matching so ^ and $ anchor per line; matches
// never cross line boundaries and zero-width matches are dropped.
func findMatches(snap *buffer.Snapshot, re *regexp.Regexp) []spans.Range {
	var out []spans.Range
	lines := snap.Rope().Lines()
	for lines.Next() {
		text := lines.Text()
		if n := len(text); n > 0 && text[n-1] == '\n' {
			text = text[:n-1]
		}
		if text == "" {
			continue
		}
		start, _ := lines.Range()
		for _, m := range re.FindAllStringIndex(text, -1) {
			if m[0] == m[1] {
				continue
			}
			out = append(out, spans.Range{Start: start + m[0], End: start + m[1]})
		}
	}
	return out
}

// matchSpans builds the match overlay: every match covered with data 1.
// Touching matches merge, which is fine for styling; navigation works off
// the match slice, not the overlay.
func matchSpans(length int, matches []spans.Range) spans.Spans[uint32] {
	var b spans.Builder[uint32]
	at := 0
	for _, m := range matches {
		b.Add(m.Start, m.End, 1)
		at = m.End
	}
	if at < length {
		b.Skip(length - at)
	}
	return b.Build()
}

// currentSpans builds the current-match overlay covering just one range.
func currentSpans(length int, m spans.Range) spans.Spans[uint32] {
	var b spans.Builder[uint32]
	b.Add(m.Start, m.End, 1)
	if m.End < length {
		b.Skip(length - m.End)
	}
	return b.Build()
}

// Highlight roles produced by combining the two search overlays.
const (
	roleMatch        uint32 = 1
	roleCurrentMatch uint32 = 2
)

// combineHighlights merges the match and current-match overlays into one
// role map for the renderer. The current match wins where both cover.
func combineHighlights(matches, current spans.Spans[uint32]) spans.Spans[uint32] {
	return spans.Merge(matches, current, func(m, c *uint32) *uint32 {
		role := roleMatch
		if c != nil {
			role = roleCurrentMatch
		}
		return &role
	})
}

// nextMatch returns the index of the first match starting at or after
// offset, wrapping to the first match. Returns -1 when there are none.
func nextMatch(matches []spans.Range, offset int) int {
	if len(matches) == 0 {
		return -1
	}
	for i, m := range matches {
		if m.Start >= offset {
			return i
		}
	}
	return 0
}

// prevMatch returns the index of the last match starting before offset,
// wrapping to the last match. Returns -1 when there are none.
func prevMatch(matches []spans.Range, offset int) int {
	if len(matches) == 0 {
		return -1
	}
	for i := len(matches) - 1; i >= 0; i-- {
		if matches[i].Start < offset {
			return i
		}
	}
	return len(matches) - 1
}
