package ragged

import (
	"fmt"

	"github.com/gogpu/swarmstep/tensor"
)

// Array packs a collection of variable-length groups into one flat
// value buffer plus three derived index buffers:
//
//   - widths:  widths[g] is the element count of group g
//   - starts:  starts[g] is the flat offset of group g's first element
//   - inverse: inverse[i] is the group that flat element i belongs to
//
// starts and inverse are always derived from widths at construction —
// there is deliberately no constructor that accepts them, so they can
// never disagree with widths. An Array is immutable after construction;
// changing group membership means constructing a new Array. That makes
// concurrent kernel reads safe without any coordination: no reader can
// observe partial or torn index state.
type Array[T tensor.Elem] struct {
	vals    tensor.View[T]
	widths  tensor.View[int32]
	starts  tensor.View[int32]
	inverse tensor.View[int32]
}

// New constructs an Array from a flat value view and a rank-1 widths
// view, deriving starts and inverse. The cross-structure invariants
// are validated and any violation fails with an error wrapping
// tensor.ErrValidation — fatal to the caller, never retried, since it
// indicates a usage bug rather than a transient condition.
func New[T tensor.Elem](vals tensor.View[T], widths tensor.View[int32]) (*Array[T], error) {
	if !vals.Valid() || !widths.Valid() {
		return nil, fmt.Errorf("%w: ragged: nil vals or widths view", tensor.ErrValidation)
	}
	if vals.Rank() < 1 {
		return nil, fmt.Errorf("%w: ragged: vals must have rank >= 1", tensor.ErrValidation)
	}
	if widths.Rank() != 1 {
		return nil, fmt.Errorf("%w: ragged: widths must have rank 1, got %d",
			tensor.ErrValidation, widths.Rank())
	}

	w := widths.Data()
	var total int32
	for g, width := range w {
		if width < 0 {
			return nil, fmt.Errorf("%w: ragged: widths[%d] = %d is negative",
				tensor.ErrValidation, g, width)
		}
		total += width
	}
	if int(total) != vals.Size(0) {
		return nil, fmt.Errorf("%w: ragged: sum(widths) = %d but vals has %d rows",
			tensor.ErrValidation, total, vals.Size(0))
	}

	starts, err := tensor.FromSlice(Starts(w), len(w))
	if err != nil {
		return nil, err
	}
	inverse, err := tensor.FromSlice(Inverse(w), int(total))
	if err != nil {
		return nil, err
	}

	return &Array[T]{vals: vals, widths: widths, starts: starts, inverse: inverse}, nil
}

// FromSlices is a convenience constructor for host-produced data: it
// adopts vals with the given trailing element shape (the leading axis
// is derived from the widths sum) and builds the Array.
func FromSlices[T tensor.Elem](vals []T, widths []int32, elemShape ...int) (*Array[T], error) {
	wview, err := tensor.FromSlice(widths, len(widths))
	if err != nil {
		return nil, err
	}
	var total int32
	for _, w := range widths {
		total += w
	}
	shape := append([]int{int(total)}, elemShape...)
	vview, err := tensor.FromSlice(vals, shape...)
	if err != nil {
		return nil, err
	}
	return New(vview, wview)
}

// Groups returns M, the number of groups.
func (r *Array[T]) Groups() int { return r.widths.Size(0) }

// Size returns the group count for axis 0, and the trailing shape of
// the value buffer for every other axis.
func (r *Array[T]) Size(axis int) int {
	if axis == 0 {
		return r.Groups()
	}
	return r.vals.Size(axis)
}

// Vals returns the flat value view.
func (r *Array[T]) Vals() tensor.View[T] { return r.vals }

// Widths returns the per-group width view.
func (r *Array[T]) Widths() tensor.View[int32] { return r.widths }

// StartsView returns the derived per-group start offset view.
func (r *Array[T]) StartsView() tensor.View[int32] { return r.starts }

// InverseView returns the derived per-element group mapping view.
func (r *Array[T]) InverseView() tensor.View[int32] { return r.inverse }

// Accessor derives a kernel-callable handle for O(1) group indexing.
// The accessor borrows the Array's buffers and is valid only for the
// Array's lifetime.
func (r *Array[T]) Accessor() Accessor[T] {
	a := Accessor[T]{
		vals:    r.vals.Data(),
		Widths:  r.widths.Data(),
		Starts:  r.starts.Data(),
		Inverse: r.inverse.Data(),
		rank:    r.vals.Rank(),
	}
	for d := 0; d < a.rank; d++ {
		a.sizes[d] = int32(r.vals.Size(d))
		a.strides[d] = int32(r.vals.Stride(d))
	}
	// The cached leading size would be the flat row count, which is
	// meaningless for a single group. Poison it so any code that reads
	// it through a group view crashes instead of silently miscounting.
	a.sizes[0] = -1
	return a
}
