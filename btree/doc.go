// Package btree provides a generic counted B-tree for storing ordered
// sequences with aggregated statistics.
//
// The tree is parameterized over a leaf payload type and a summary type.
// Leaf nodes hold contiguous runs of the sequence measured in base units;
// internal nodes hold 4-8 children plus the combined summary of everything
// beneath them. Derived coordinate systems (lines over bytes, clusters over
// bytes, span counts over extents) are expressed as Metric values and
// resolved against the cached summaries during descent.
//
// Key features:
//   - O(log n) positional queries in any registered metric
//   - Zero-copy range slicing; untouched leaves are shared between trees
//   - Incremental bulk construction through Builder with cross-leaf fixup
//   - Immutable nodes; trees are values and copies are O(1)
//
// Basic usage:
//
//	var b btree.Builder[chunk, textSummary]
//	for _, c := range chunks {
//		b.Push(c)
//	}
//	t := b.Build()
//	n := t.Measure(lineMetric{})
//
// Trees built here never mutate shared state, so distinct values may be
// read concurrently without locking. Mutating operations construct new
// trees that share all unmodified nodes with their sources.
package btree
