package tensor

import (
	"fmt"
	"unsafe"
)

// View is a validated, typed window onto a Buffer.
//
// Construction checks four invariants and fails fast when any is
// violated: the buffer resides on the expected device, is contiguous,
// stores exactly the element type T, and has exactly the declared rank.
// A View that exists is therefore always safe to hand to a kernel.
//
// View is a value type; copying it aliases the same buffer. It exposes
// no mutation of shape or layout — it is a validated alias, not an
// owner of allocation policy.
type View[T Elem] struct {
	buf  *Buffer
	rank int
}

// New validates buf against the expected device, contiguity, element
// type T, and the given rank, returning a typed view on success.
// Any failure wraps ErrValidation and is fatal to the caller.
func New[T Elem](buf *Buffer, rank int) (View[T], error) {
	if buf == nil {
		return View[T]{}, fmt.Errorf("%w: nil buffer", ErrValidation)
	}
	if want := Default(); buf.dev != want {
		return View[T]{}, fmt.Errorf("%w: buffer on %s/%s, want %s/%s",
			ErrWrongDevice, buf.dev.Kind, buf.dev.Name, want.Kind, want.Name)
	}
	if !buf.Contiguous() {
		return View[T]{}, fmt.Errorf("%w: shape %v strides %v",
			ErrNotContiguous, buf.shape, buf.strides)
	}
	if want := DTypeOf[T](); buf.dtype != want {
		return View[T]{}, fmt.Errorf("%w: buffer holds %s, view wants %s",
			ErrDTypeMismatch, buf.dtype, want)
	}
	if buf.Rank() != rank {
		return View[T]{}, fmt.Errorf("%w: buffer has %d dims, view wants %d",
			ErrRankMismatch, buf.Rank(), rank)
	}
	return View[T]{buf: buf, rank: rank}, nil
}

// Empty allocates an uninitialized view of the given shape on the
// default device. Allocation through the factories always satisfies
// the validation invariants, so no error is possible beyond a bad
// shape, which panics: a negative extent is a programming bug.
func Empty[T Elem](shape ...int) View[T] {
	buf, err := NewBuffer(DTypeOf[T](), shape...)
	if err != nil {
		panic(err)
	}
	return View[T]{buf: buf, rank: len(shape)}
}

// Zeros allocates a zero-filled view of the given shape.
func Zeros[T Elem](shape ...int) View[T] {
	// Go allocation is already zeroed.
	return Empty[T](shape...)
}

// Ones allocates a view of the given shape filled with the one value
// of T (true for bool).
func Ones[T Elem](shape ...int) View[T] {
	return Full(one[T](), shape...)
}

// Full allocates a view of the given shape with every element set to v.
func Full[T Elem](v T, shape ...int) View[T] {
	view := Empty[T](shape...)
	data := view.Data()
	for i := range data {
		data[i] = v
	}
	return view
}

// FromSlice adopts a host slice as a rank-D view with the given shape.
// The slice length must equal the product of the extents.
func FromSlice[T Elem](vals []T, shape ...int) (View[T], error) {
	n := numElems(shape)
	if len(vals) != n {
		return View[T]{}, fmt.Errorf("%w: %d values, shape %v needs %d",
			ErrBadShape, len(vals), shape, n)
	}
	view := Empty[T](shape...)
	copy(view.Data(), vals)
	return view, nil
}

// Rank returns the number of dimensions.
func (v View[T]) Rank() int { return v.rank }

// Size returns the extent of the given axis.
func (v View[T]) Size(axis int) int { return v.buf.Size(axis) }

// Stride returns the element stride of the given axis.
func (v View[T]) Stride(axis int) int { return v.buf.Stride(axis) }

// Shape returns a copy of the full shape.
func (v View[T]) Shape() []int { return v.buf.Shape() }

// NumElem returns the total element count.
func (v View[T]) NumElem() int { return v.buf.NumElem() }

// Buffer returns the underlying raw buffer.
func (v View[T]) Buffer() *Buffer { return v.buf }

// Valid reports whether the view wraps a buffer. The zero View is not
// valid and must never be dereferenced.
func (v View[T]) Valid() bool { return v.buf != nil }

// Data returns the host-visible elements as a typed slice sharing the
// buffer's memory. The reinterpretation is safe because construction
// proved the dtype matches T and the layout is contiguous.
func (v View[T]) Data() []T {
	n := v.buf.NumElem()
	if n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(unsafe.Pointer(unsafe.SliceData(v.buf.data))), n)
}
