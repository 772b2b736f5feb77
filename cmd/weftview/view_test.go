package main

import (
	"testing"

	"github.com/dshills/weft/buffer"
)

func TestGutterWidth(t *testing.T) {
	tests := []struct {
		lines, want int
	}{
		{1, 3},
		{9, 3},
		{10, 4},
		{9999, 6},
	}
	for _, tt := range tests {
		if got := gutterWidth(tt.lines); got != tt.want {
			t.Errorf("gutterWidth(%d) = %d, want %d", tt.lines, got, tt.want)
		}
	}
}

func TestClusterWidth(t *testing.T) {
	v := &viewer{tabWidth: 4}
	tests := []struct {
		cluster string
		col     int
		want    int
	}{
		{"a", 0, 1},
		{"\t", 0, 4},
		{"\t", 1, 3},
		{"\t", 3, 1},
		{"\t", 4, 4},
		{"\U0001F600", 0, 2},
		{"世", 0, 2},
	}
	for _, tt := range tests {
		if got := v.clusterWidth(tt.cluster, tt.col); got != tt.want {
			t.Errorf("clusterWidth(%q, %d) = %d, want %d", tt.cluster, tt.col, got, tt.want)
		}
	}
}

func TestDisplayCol(t *testing.T) {
	b, err := buffer.New("a\tb\n世x\n")
	if err != nil {
		t.Fatal(err)
	}
	snap := b.Snapshot()
	v := &viewer{tabWidth: 4}

	// Line 0 is "a<tab>b": a at col 0, tab spans cols 1-3, b at col 4.
	tests := []struct {
		line, offset, want int
	}{
		{0, 0, 0},
		{0, 1, 1},
		{0, 2, 4},
		{1, 4, 0},
		{1, 7, 2},
	}
	for _, tt := range tests {
		if got := v.displayCol(snap, tt.line, tt.offset); got != tt.want {
			t.Errorf("displayCol(line %d, offset %d) = %d, want %d", tt.line, tt.offset, got, tt.want)
		}
	}
}
