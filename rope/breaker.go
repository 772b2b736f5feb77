package rope

import "github.com/rivo/uniseg"

// GraphemeBreaker carries grapheme segmentation state across chunk seams.
// The zero value is the start-of-text state.
//
// Grapheme cluster boundaries are left-determined: appending text never
// changes boundaries that precede it. The breaker therefore only needs the
// text after the last known boundary, the open cluster, as context. Scanning
// resumes from that boundary, which UAX #29 defines as a valid restart
// point, so regional-indicator parity and emoji joining sequences carry
// across seams without a full rescan.
type GraphemeBreaker struct {
	pending string
}

// Equal reports whether two breaker states are interchangeable. The
// comparison is conservative: equal states always compare equal, while
// distinct states that would behave identically on all future input may
// compare unequal, which costs a rescan but never a wrong boundary.
func (b GraphemeBreaker) Equal(other GraphemeBreaker) bool {
	return b.pending == other.pending
}

// scanText feeds s to the breaker and calls fn with the offset in s of each
// position where a grapheme cluster starts, in increasing order. It returns
// the state carried past the end of s. When fn returns false the scan stops
// early and the returned state is not meaningful.
//
// The final cluster is never terminated by the end of s, because more text
// may follow; its start is still reported, and its bytes become the carried
// context of the returned state.
func (b GraphemeBreaker) scanText(s string, fn func(start int) bool) GraphemeBreaker {
	if s == "" {
		return b
	}
	t := s
	if b.pending != "" {
		t = b.pending + s
	}
	skip := len(t) - len(s)

	state := -1
	off := 0
	lastStart := 0
	for off < len(t) {
		cluster, _, _, next := uniseg.FirstGraphemeClusterInString(t[off:], state)
		if off >= skip && fn != nil {
			if !fn(off - skip) {
				return GraphemeBreaker{}
			}
		}
		lastStart = off
		off += len(cluster)
		state = next
	}
	return GraphemeBreaker{pending: t[lastStart:]}
}
