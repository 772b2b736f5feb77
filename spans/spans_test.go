package spans

import (
	"testing"
)

func assertSpans[T comparable](t *testing.T, s Spans[T], want []Span[T]) {
	t.Helper()
	got := s.Collect()
	if len(got) != len(want) {
		t.Fatalf("got %d spans %v, want %d %v", len(got), got, len(want), want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("span %d: got %v, want %v", i, got[i], want[i])
		}
	}
}

func TestBuilderMergesAdjacentEqual(t *testing.T) {
	t.Run("equal data merges", func(t *testing.T) {
		var b Builder[int]
		b.Add(0, 3, 1)
		b.Add(3, 6, 1)
		s := b.Build()
		if s.Count() != 1 {
			t.Fatalf("Count() = %d, want 1", s.Count())
		}
		assertSpans(t, s, []Span[int]{{Range: Range{0, 6}, Data: 1}})
	})

	t.Run("different data stays split", func(t *testing.T) {
		var b Builder[int]
		b.Add(0, 3, 1)
		b.Add(3, 6, 2)
		s := b.Build()
		assertSpans(t, s, []Span[int]{
			{Range: Range{0, 3}, Data: 1},
			{Range: Range{3, 6}, Data: 2},
		})
	})

	t.Run("gap prevents merging", func(t *testing.T) {
		var b Builder[int]
		b.Add(0, 3, 1)
		b.Add(4, 6, 1)
		s := b.Build()
		if s.Count() != 2 {
			t.Fatalf("Count() = %d, want 2", s.Count())
		}
	})
}

func TestBuilderGapsAndSkip(t *testing.T) {
	var b Builder[string]
	b.Skip(2)
	b.Add(2, 5, "a")
	b.Add(8, 10, "b")
	b.Skip(4)
	s := b.Build()

	if s.Len() != 14 {
		t.Fatalf("Len() = %d, want 14", s.Len())
	}
	assertSpans(t, s, []Span[string]{
		{Range: Range{2, 5}, Data: "a"},
		{Range: Range{8, 10}, Data: "b"},
	})
	if got := s.Covered(); got != (Range{2, 10}) {
		t.Errorf("Covered() = %v, want [2, 10)", got)
	}
}

func TestBuilderPanics(t *testing.T) {
	tests := []struct {
		name string
		op   func(b *Builder[int])
	}{
		{"regressing span", func(b *Builder[int]) { b.Add(5, 8, 1); b.Add(3, 4, 2) }},
		{"overlapping span", func(b *Builder[int]) { b.Add(0, 5, 1); b.Add(4, 8, 2) }},
		{"span behind skip", func(b *Builder[int]) { b.Skip(10); b.Add(5, 8, 1) }},
		{"negative span", func(b *Builder[int]) { b.Add(5, 3, 1) }},
		{"negative skip", func(b *Builder[int]) { b.Skip(-1) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			var b Builder[int]
			tt.op(&b)
		})
	}
}

func TestBuilderEmptyRangeIgnored(t *testing.T) {
	var b Builder[int]
	b.Add(0, 2, 1)
	b.Add(2, 2, 9)
	b.Add(2, 4, 1)
	s := b.Build()
	assertSpans(t, s, []Span[int]{{Range: Range{0, 4}, Data: 1}})
}

func TestNew(t *testing.T) {
	s := New[int](10)
	if s.Len() != 10 {
		t.Errorf("Len() = %d, want 10", s.Len())
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
	if _, ok := s.DataAt(5); ok {
		t.Error("DataAt(5) should be absent")
	}

	if got := New[int](0).Len(); got != 0 {
		t.Errorf("New(0).Len() = %d, want 0", got)
	}
}

func TestSpanAt(t *testing.T) {
	var b Builder[string]
	b.Add(2, 5, "a")
	b.Add(5, 9, "b")
	b.Add(12, 14, "c")
	b.Skip(2)
	s := b.Build()

	tests := []struct {
		offset int
		want   string
		ok     bool
	}{
		{0, "", false},
		{1, "", false},
		{2, "a", true},
		{4, "a", true},
		{5, "b", true},
		{8, "b", true},
		{9, "", false},
		{11, "", false},
		{12, "c", true},
		{13, "c", true},
		{14, "", false},
		{15, "", false},
		{16, "", false},
	}

	for _, tt := range tests {
		data, ok := s.DataAt(tt.offset)
		if ok != tt.ok || data != tt.want {
			t.Errorf("DataAt(%d) = (%q, %v), want (%q, %v)", tt.offset, data, ok, tt.want, tt.ok)
		}
	}

	t.Run("span ranges", func(t *testing.T) {
		sp, ok := s.SpanAt(4)
		if !ok || sp.Range != (Range{2, 5}) || sp.Data != "a" {
			t.Errorf("SpanAt(4) = (%v, %v)", sp, ok)
		}
		sp, ok = s.SpanAt(13)
		if !ok || sp.Range != (Range{12, 14}) {
			t.Errorf("SpanAt(13) = (%v, %v)", sp, ok)
		}
	})

	t.Run("out of range panics", func(t *testing.T) {
		for _, offset := range []int{-1, 17} {
			func() {
				defer func() {
					if recover() == nil {
						t.Errorf("SpanAt(%d) did not panic", offset)
					}
				}()
				s.SpanAt(offset)
			}()
		}
	})
}

func TestCollapseToOneSpan(t *testing.T) {
	// 128 two-wide spans sharing one value merge into a single span held
	// in a single root leaf.
	var b Builder[int]
	for i := 0; i < 128; i++ {
		b.Add(i*2, i*2+2, 7)
	}
	s := b.Build()

	if s.Len() != 256 {
		t.Fatalf("Len() = %d, want 256", s.Len())
	}
	if s.Count() != 1 {
		t.Fatalf("Count() = %d, want 1", s.Count())
	}
	if s.Height() != 0 {
		t.Errorf("Height() = %d, want 0", s.Height())
	}
	assertSpans(t, s, []Span[int]{{Range: Range{0, 256}, Data: 7}})
}

func TestLargeBuild(t *testing.T) {
	const n = 10000
	var b Builder[int]
	for i := 0; i < n; i++ {
		start := i * 5
		b.Add(start, start+3, i%17)
	}
	s := b.Build()

	if s.Len() != n*5-2 {
		t.Fatalf("Len() = %d, want %d", s.Len(), n*5-2)
	}
	if s.Count() != n {
		t.Fatalf("Count() = %d, want %d", s.Count(), n)
	}
	if s.Height() == 0 {
		t.Error("expected a multi-level tree")
	}

	for _, i := range []int{0, 1, 16, 17, 4999, 9999} {
		start := i * 5
		if data, ok := s.DataAt(start + 1); !ok || data != i%17 {
			t.Errorf("DataAt(%d) = (%d, %v), want (%d, true)", start+1, data, ok, i%17)
		}
		if _, ok := s.DataAt(start + 3); i < n-1 && ok {
			t.Errorf("DataAt(%d) should be a gap", start+3)
		}
	}

	got := s.Collect()
	if len(got) != n {
		t.Fatalf("collected %d spans", len(got))
	}
	for i, sp := range got {
		want := Span[int]{Range: Range{i * 5, i*5 + 3}, Data: i % 17}
		if sp != want {
			t.Fatalf("span %d: got %v, want %v", i, sp, want)
		}
	}
}

func TestIteratorEmpty(t *testing.T) {
	var s Spans[int]
	if s.Iter().Next() {
		t.Error("zero value should have no spans")
	}
	if New[int](25).Iter().Next() {
		t.Error("gap-only map should have no spans")
	}
}

func TestPushSliced(t *testing.T) {
	var src Builder[int]
	src.Add(0, 10, 1)
	src.Add(15, 20, 2)
	src.Add(20, 30, 3)
	src.Skip(5)
	source := src.Build() // domain 35

	t.Run("whole map", func(t *testing.T) {
		var b Builder[int]
		b.PushSliced(source, 0, 35)
		assertSpans(t, b.Build(), source.Collect())
	})

	t.Run("clipped window", func(t *testing.T) {
		var b Builder[int]
		b.PushSliced(source, 5, 25)
		s := b.Build()
		if s.Len() != 20 {
			t.Fatalf("Len() = %d, want 20", s.Len())
		}
		assertSpans(t, s, []Span[int]{
			{Range: Range{0, 5}, Data: 1},
			{Range: Range{10, 15}, Data: 2},
			{Range: Range{15, 20}, Data: 3},
		})
	})

	t.Run("after local spans", func(t *testing.T) {
		var b Builder[int]
		b.Add(0, 4, 9)
		b.PushSliced(source, 15, 30)
		s := b.Build()
		assertSpans(t, s, []Span[int]{
			{Range: Range{0, 4}, Data: 9},
			{Range: Range{4, 9}, Data: 2},
			{Range: Range{9, 19}, Data: 3},
		})
	})

	t.Run("merges boundary span with tail", func(t *testing.T) {
		var b Builder[int]
		b.Add(0, 4, 1)
		b.PushSliced(source, 5, 25)
		s := b.Build()
		got := s.Collect()
		if got[0] != (Span[int]{Range: Range{0, 9}, Data: 1}) {
			t.Errorf("first span = %v, want [0, 9): 1", got[0])
		}
		if s.Count() != 3 {
			t.Errorf("Count() = %d, want 3", s.Count())
		}
	})

	t.Run("add after splice merges with spliced tail", func(t *testing.T) {
		var b Builder[int]
		b.PushSliced(source, 15, 30)
		b.Add(15, 22, 3)
		s := b.Build()
		got := s.Collect()
		last := got[len(got)-1]
		if last != (Span[int]{Range: Range{5, 22}, Data: 3}) {
			t.Errorf("last span = %v, want [5, 22): 3", last)
		}
	})

	t.Run("gap only window", func(t *testing.T) {
		var b Builder[int]
		b.Add(0, 2, 5)
		b.PushSliced(source, 30, 35)
		s := b.Build()
		if s.Len() != 7 {
			t.Fatalf("Len() = %d, want 7", s.Len())
		}
		if s.Count() != 1 {
			t.Errorf("Count() = %d, want 1", s.Count())
		}
	})

	t.Run("bad range panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("expected panic")
			}
		}()
		var b Builder[int]
		b.PushSliced(source, 10, 40)
	})
}

func TestSplice(t *testing.T) {
	build := func(spans []Span[string], length int) Spans[string] {
		var b Builder[string]
		for _, sp := range spans {
			b.Add(sp.Range.Start, sp.Range.End, sp.Data)
		}
		if length > 0 {
			b.Skip(length - b.at)
		}
		return b.Build()
	}

	t.Run("delete joins equal spans", func(t *testing.T) {
		s := build([]Span[string]{
			{Range: Range{0, 7}, Data: "x"},
			{Range: Range{8, 12}, Data: "x"},
		}, 12)
		out := s.Splice(5, 10, 0)
		if out.Len() != 7 {
			t.Fatalf("Len() = %d, want 7", out.Len())
		}
		assertSpans(t, out, []Span[string]{{Range: Range{0, 7}, Data: "x"}})
	})

	t.Run("delete keeps unequal spans apart", func(t *testing.T) {
		s := build([]Span[string]{
			{Range: Range{0, 7}, Data: "x"},
			{Range: Range{8, 12}, Data: "y"},
		}, 12)
		out := s.Splice(5, 10, 0)
		assertSpans(t, out, []Span[string]{
			{Range: Range{0, 5}, Data: "x"},
			{Range: Range{5, 7}, Data: "y"},
		})
	})

	t.Run("insertion splits a span with a gap", func(t *testing.T) {
		s := build([]Span[string]{{Range: Range{2, 6}, Data: "x"}}, 8)
		out := s.Splice(4, 4, 10)
		if out.Len() != 18 {
			t.Fatalf("Len() = %d, want 18", out.Len())
		}
		assertSpans(t, out, []Span[string]{
			{Range: Range{2, 4}, Data: "x"},
			{Range: Range{14, 16}, Data: "x"},
		})
	})

	t.Run("replace everything", func(t *testing.T) {
		s := build([]Span[string]{{Range: Range{0, 4}, Data: "x"}}, 4)
		out := s.Splice(0, 4, 9)
		if out.Len() != 9 || out.Count() != 0 {
			t.Errorf("got %v with length %d", out, out.Len())
		}
	})

	t.Run("edits at the edges", func(t *testing.T) {
		s := build([]Span[string]{{Range: Range{0, 10}, Data: "x"}}, 10)
		out := s.Splice(0, 3, 0)
		assertSpans(t, out, []Span[string]{{Range: Range{0, 7}, Data: "x"}})
		out = s.Splice(7, 10, 5)
		if out.Len() != 12 {
			t.Fatalf("Len() = %d, want 12", out.Len())
		}
		assertSpans(t, out, []Span[string]{{Range: Range{0, 7}, Data: "x"}})
	})

	t.Run("bad arguments panic", func(t *testing.T) {
		s := build([]Span[string]{{Range: Range{0, 4}, Data: "x"}}, 4)
		tests := []struct {
			name string
			op   func()
		}{
			{"inverted range", func() { s.Splice(3, 1, 0) }},
			{"past the end", func() { s.Splice(0, 5, 0) }},
			{"negative len", func() { s.Splice(0, 1, -1) }},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				defer func() {
					if recover() == nil {
						t.Error("expected panic")
					}
				}()
				tt.op()
			})
		}
	})
}

func TestSpliceLargeReusesStructure(t *testing.T) {
	var b Builder[int]
	for i := 0; i < 5000; i++ {
		b.Add(i*4, i*4+2, i%9)
	}
	s := b.Build()

	out := s.Splice(9000, 9100, 40)
	if out.Len() != s.Len()-60 {
		t.Fatalf("Len() = %d, want %d", out.Len(), s.Len()-60)
	}

	// Everything before the edit is untouched.
	for _, off := range []int{0, 100, 8996} {
		want, wantOK := s.DataAt(off)
		got, ok := out.DataAt(off)
		if ok != wantOK || got != want {
			t.Errorf("DataAt(%d) = (%d, %v), want (%d, %v)", off, got, ok, want, wantOK)
		}
	}
	// The gap is uncovered.
	for _, off := range []int{9000, 9020, 9039} {
		if _, ok := out.DataAt(off); ok {
			t.Errorf("DataAt(%d) should be a gap", off)
		}
	}
	// Positions after the edit shift left by 60.
	for _, off := range []int{9100, 12000, s.Len() - 1} {
		want, wantOK := s.DataAt(off)
		got, ok := out.DataAt(off - 60)
		if ok != wantOK || got != want {
			t.Errorf("DataAt(%d) = (%d, %v), want (%d, %v)", off-60, got, ok, want, wantOK)
		}
	}
}

func TestString(t *testing.T) {
	var b Builder[int]
	b.Add(0, 3, 1)
	b.Add(5, 6, 2)
	s := b.Build()
	if got, want := s.String(), "{[0, 3): 1, [5, 6): 2}"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
