package spans

import (
	"math/rand"
	"testing"
)

func TestMergePartialOverlap(t *testing.T) {
	var ba Builder[int]
	ba.Add(0, 3, 1)
	ba.Skip(3)
	a := ba.Build()

	var bb Builder[int]
	bb.Add(2, 3, 2)
	bb.Skip(3)
	b := bb.Build()

	out := Merge(a, b, func(l, r *int) *int {
		v := 3
		if r != nil {
			v = 4
		}
		return &v
	})

	if out.Len() != 6 {
		t.Fatalf("Len() = %d, want 6", out.Len())
	}
	assertSpans(t, out, []Span[int]{
		{Range: Range{0, 2}, Data: 3},
		{Range: Range{2, 3}, Data: 4},
	})
}

func TestMergePointwise(t *testing.T) {
	const n = 3000
	rng := rand.New(rand.NewSource(7))
	a := randomSpans(rng, n)
	b := randomSpans(rng, n)

	out := Merge(a, b, func(l, r *int) *int {
		v := 0
		if l != nil {
			v += *l
		}
		if r != nil {
			v += *r
		}
		return &v
	})

	for x := 0; x < n; x++ {
		la, oka := a.DataAt(x)
		rb, okb := b.DataAt(x)
		got, ok := out.DataAt(x)
		if !oka && !okb {
			if ok {
				t.Fatalf("offset %d: merged has %d where both sides are absent", x, got)
			}
			continue
		}
		want := la + rb
		if !ok || got != want {
			t.Fatalf("offset %d: merged = (%d, %v), want (%d, true)", x, got, ok, want)
		}
	}

	spans := out.Collect()
	for i := 1; i < len(spans); i++ {
		if spans[i-1].Range.End == spans[i].Range.Start && spans[i-1].Data == spans[i].Data {
			t.Errorf("spans %v and %v touch with equal data", spans[i-1], spans[i])
		}
	}
}

func randomSpans(rng *rand.Rand, length int) Spans[int] {
	var b Builder[int]
	at := 0
	for at < length {
		w := rng.Intn(9) + 1
		if at+w > length {
			w = length - at
		}
		if rng.Intn(3) == 0 {
			b.Skip(w)
		} else {
			b.Add(at, at+w, rng.Intn(4)+1)
		}
		at += w
	}
	return b.Build()
}

func TestMergeNilDropsOutput(t *testing.T) {
	var ba Builder[int]
	ba.Add(0, 6, 2)
	ba.Skip(2)
	a := ba.Build()

	var bb Builder[int]
	bb.Skip(3)
	bb.Add(3, 8, 5)
	b := bb.Build()

	out := Merge(a, b, func(l, r *int) *int {
		if l == nil || r == nil {
			return nil
		}
		v := *l * *r
		return &v
	})

	assertSpans(t, out, []Span[int]{{Range: Range{3, 6}, Data: 10}})
	if out.Len() != 8 {
		t.Errorf("Len() = %d, want 8", out.Len())
	}
}

func TestMergeCoalescesEqualOutputs(t *testing.T) {
	var ba Builder[int]
	ba.Add(0, 3, 1)
	ba.Add(3, 6, 2)
	a := ba.Build()

	out := Merge(a, New[int](6), func(l, r *int) *int {
		v := 9
		return &v
	})

	if out.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", out.Count())
	}
	assertSpans(t, out, []Span[int]{{Range: Range{0, 6}, Data: 9}})
}

func TestMergeSkipsUncoveredIntervals(t *testing.T) {
	called := false
	out := Merge(New[int](10), New[int](10), func(l, r *int) *int {
		called = true
		v := 1
		return &v
	})
	if called {
		t.Error("transform ran on an interval uncovered on both sides")
	}
	if out.Count() != 0 || out.Len() != 10 {
		t.Errorf("got %v with length %d", out, out.Len())
	}
}

func TestMergeDomainMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Merge(New[int](5), New[int](6), func(l, r *int) *int { return nil })
}

func TestMergeEmptyDomain(t *testing.T) {
	out := Merge(New[int](0), New[int](0), func(l, r *int) *int { return nil })
	if out.Len() != 0 || out.Count() != 0 {
		t.Errorf("got %v with length %d", out, out.Len())
	}
}
