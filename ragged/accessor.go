package ragged

import (
	"fmt"

	"github.com/gogpu/swarmstep/tensor"
)

// MaxRank caps the rank an Accessor can describe. The deepest value
// buffer in the simulation is rank 3 (wall segments: [N, 2, 2]); one
// spare axis leaves headroom without making the accessor heavier.
const MaxRank = 4

// Accessor is a lightweight, copyable handle for O(1) group indexing
// from inside parallel kernel bodies. It borrows the buffers of the
// Array that produced it (no ownership, no back-validation) and caches
// the per-axis sizes and strides of the value buffer.
//
// The index buffers are exported so kernels can read them directly:
// Widths for loop bounds, Starts for offsets, Inverse for per-element
// group lookup.
//
// At performs no bounds check and no allocation: an out-of-range group
// id is undefined behavior by design, and the caller's loop bound must
// guarantee 0 <= g < Groups(). All reads are safe to perform from any
// number of goroutines concurrently because the underlying Array is
// immutable.
type Accessor[T tensor.Elem] struct {
	vals []T

	// Widths holds the element count of each group.
	Widths []int32

	// Starts holds the flat offset of each group's first element.
	Starts []int32

	// Inverse maps each flat element index to its group.
	Inverse []int32

	rank    int
	sizes   [MaxRank]int32
	strides [MaxRank]int32
}

// Groups returns M, the number of groups.
func (a Accessor[T]) Groups() int { return len(a.Widths) }

// Size returns the group count for d == 0 and the value buffer's
// extent along axis d-1 otherwise, mirroring Array.Size through one
// level of group indirection. The d == 1 case reads the element count
// directly: the cached leading size is the poisoned sentinel.
func (a Accessor[T]) Size(d int) int {
	switch d {
	case 0:
		return len(a.Widths)
	case 1:
		return len(a.Inverse)
	default:
		return int(a.sizes[d-1])
	}
}

// Width returns the element count of group g.
func (a Accessor[T]) Width(g int) int32 { return a.Widths[g] }

// GroupOf returns the group that flat element i belongs to.
func (a Accessor[T]) GroupOf(i int) int32 { return a.Inverse[i] }

// At returns a fixed-rank view over group g's contiguous sub-range of
// the value buffer: base + starts[g]*stride(0), with sizes and strides
// of axes 1..rank-1 taken directly from the value buffer. O(1), no
// branch on the group's width. g must satisfy 0 <= g < Groups().
func (a Accessor[T]) At(g int) Group[T] {
	stride0 := a.strides[0]
	lo := a.Starts[g] * stride0
	hi := lo + a.Widths[g]*stride0
	return Group[T]{
		data:    a.vals[lo:hi],
		rank:    a.rank,
		sizes:   a.sizes,
		strides: a.strides,
	}
}

// Group is a fixed-rank view over one group's elements. The zero-width
// case is a valid, zero-length view.
type Group[T tensor.Elem] struct {
	data    []T
	rank    int
	sizes   [MaxRank]int32
	strides [MaxRank]int32
}

// Data returns the group's elements as a flat slice sharing the
// Array's storage.
func (g Group[T]) Data() []T { return g.data }

// Len returns the number of rows in the group (its width).
func (g Group[T]) Len() int {
	if g.strides[0] == 0 {
		return 0
	}
	return len(g.data) / int(g.strides[0])
}

// Size returns the extent of axis d within the group.
//
// Size(0) is a trap: the cached leading size is poisoned with -1 at
// accessor construction because the per-group row count varies and the
// cache cannot represent it. Reading it would silently miscount, so it
// panics instead; use Len or the accessor's Width.
func (g Group[T]) Size(d int) int {
	if d == 0 {
		panic(fmt.Sprintf(
			"ragged: group Size(0) read (cached sentinel %d); leading size is width-dependent, use Len or Width",
			g.sizes[0]))
	}
	return int(g.sizes[d])
}

// Row returns the flat elements of row i: data[i*stride0:(i+1)*stride0].
// No bounds check, same contract as Accessor.At.
func (g Group[T]) Row(i int) []T {
	s := int(g.strides[0])
	return g.data[i*s : (i+1)*s]
}
