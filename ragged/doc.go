// Package ragged packs groups of differing length into flat buffers
// with O(1) group indexing for parallel kernels.
//
// A ragged array is "a list of variable-length lists" stored arena
// style: one flat value buffer, a widths buffer giving each group's
// element count, a derived starts buffer (exclusive prefix sum of
// widths), and a derived inverse buffer mapping every flat element
// back to its group. Kernels index "the i-th group" as a pointer
// offset from starts — no search, no pointer chasing, no branch on
// group length.
//
// starts and inverse are derived, never supplied: the only constructor
// takes (vals, widths) and computes the rest, so the indices cannot
// disagree with the widths. Arrays are immutable after construction;
// respawning or resetting groups is done by building a new Array,
// which is what makes unsynchronized concurrent reads safe.
package ragged
