package main

import (
	"testing"
	"unicode/utf8"
)

func TestDiffEdit(t *testing.T) {
	tests := []struct {
		name      string
		old, next string
		start     int
		end       int
		text      string
	}{
		{"identical", "abc", "abc", 3, 3, ""},
		{"append", "abc", "abcd", 3, 3, "d"},
		{"prepend", "abc", "xabc", 0, 0, "x"},
		{"delete middle", "hello world", "hello rld", 6, 8, ""},
		{"replace middle", "one two three", "one TWO three", 4, 7, "TWO"},
		{"delete all", "ab", "", 0, 2, ""},
		{"insert all", "", "ab", 0, 0, "ab"},
		{"grow repeated", "aa", "aaa", 2, 2, "a"},
		{"shared lead byte", "aéb", "aèb", 1, 3, "è"},
		{"shared emoji prefix", "\U0001F44Dx", "\U0001F44Ex", 0, 4, "\U0001F44E"},
		{"suffix into multibyte", "xé", "é", 0, 1, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, text := diffEdit(tt.old, tt.next)
			if start != tt.start || end != tt.end || text != tt.text {
				t.Fatalf("diffEdit(%q, %q) = (%d, %d, %q), want (%d, %d, %q)",
					tt.old, tt.next, start, end, text, tt.start, tt.end, tt.text)
			}
		})
	}
}

// The diff must reproduce next exactly when applied to old, with a
// replacement string that stands alone as valid UTF-8.
func TestDiffEditReconstructs(t *testing.T) {
	pairs := [][2]string{
		{"", ""},
		{"", "hello"},
		{"hello", ""},
		{"hello world", "hello brave world"},
		{"line one\nline two\n", "line one\nline 2\n"},
		{"café", "cafès"},
		{"\U0001F600\U0001F600", "\U0001F600\U0001F601\U0001F600"},
		{"tail log\n", "tail log\nmore log\n"},
		{"ábc", "àbc"},
	}
	for _, p := range pairs {
		old, next := p[0], p[1]
		start, end, text := diffEdit(old, next)
		if start < 0 || end < start || end > len(old) {
			t.Fatalf("diffEdit(%q, %q): range [%d, %d) invalid", old, next, start, end)
		}
		if !utf8.ValidString(text) {
			t.Fatalf("diffEdit(%q, %q): replacement %q is not valid UTF-8", old, next, text)
		}
		got := old[:start] + text + old[end:]
		if got != next {
			t.Fatalf("diffEdit(%q, %q): applying [%d, %d)=%q gives %q", old, next, start, end, text, got)
		}
	}
}

func TestNewlinesToLF(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"plain\n", "plain\n"},
		{"a\r\nb\r\n", "a\nb\n"},
		{"a\rb", "a\nb"},
		{"mixed\r\nand\rand\n", "mixed\nand\nand\n"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := newlinesToLF(tt.in); got != tt.want {
			t.Errorf("newlinesToLF(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
