package tensor

import "fmt"

// Buffer is a raw storage handle: a flat byte region plus the element
// type, shape, strides, and device tag needed to interpret it.
//
// A Buffer carries no type-level guarantees; those are added by View,
// which validates a Buffer at construction time. Kernels never receive
// a bare Buffer.
//
// Strides are expressed in elements, not bytes, and describe row-major
// layout when the buffer is contiguous.
type Buffer struct {
	data    []byte
	dtype   DType
	shape   []int
	strides []int
	dev     Device
}

// contiguousStrides computes row-major element strides for a shape.
func contiguousStrides(shape []int) []int {
	strides := make([]int, len(shape))
	acc := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= shape[i]
	}
	return strides
}

func numElems(shape []int) int {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return n
}

// NewBuffer allocates a zeroed contiguous buffer on the default device.
func NewBuffer(dt DType, shape ...int) (*Buffer, error) {
	return NewBufferOn(Default(), dt, shape...)
}

// NewBufferOn allocates a zeroed contiguous buffer on the given device.
func NewBufferOn(dev Device, dt DType, shape ...int) (*Buffer, error) {
	if dt.Size() == 0 {
		return nil, fmt.Errorf("%w: cannot allocate %s buffer", ErrBadShape, dt)
	}
	for _, s := range shape {
		if s < 0 {
			return nil, fmt.Errorf("%w: negative extent %d in %v", ErrBadShape, s, shape)
		}
	}
	shp := append([]int(nil), shape...)
	return &Buffer{
		data:    make([]byte, numElems(shp)*dt.Size()),
		dtype:   dt,
		shape:   shp,
		strides: contiguousStrides(shp),
		dev:     dev,
	}, nil
}

// FromBytes adopts an existing byte region as a contiguous buffer.
// The data length must equal the element count implied by the shape
// times the element size.
func FromBytes(dev Device, dt DType, data []byte, shape ...int) (*Buffer, error) {
	if dt.Size() == 0 {
		return nil, fmt.Errorf("%w: cannot adopt %s buffer", ErrBadShape, dt)
	}
	shp := append([]int(nil), shape...)
	want := numElems(shp) * dt.Size()
	if len(data) != want {
		return nil, fmt.Errorf("%w: have %d bytes, shape %v needs %d",
			ErrBadShape, len(data), shp, want)
	}
	return &Buffer{
		data:    data,
		dtype:   dt,
		shape:   shp,
		strides: contiguousStrides(shp),
		dev:     dev,
	}, nil
}

// WithStrides returns a copy of the buffer with explicit strides.
// This is the only way to produce a non-contiguous buffer; it exists
// for interop with external producers and for exercising the
// contiguity validation path.
func (b *Buffer) WithStrides(strides ...int) *Buffer {
	nb := *b
	nb.strides = append([]int(nil), strides...)
	return &nb
}

// DType returns the element type.
func (b *Buffer) DType() DType { return b.dtype }

// Device returns the device tag.
func (b *Buffer) Device() Device { return b.dev }

// Rank returns the number of dimensions.
func (b *Buffer) Rank() int { return len(b.shape) }

// Size returns the extent of the given axis.
func (b *Buffer) Size(axis int) int { return b.shape[axis] }

// Shape returns a copy of the full shape.
func (b *Buffer) Shape() []int { return append([]int(nil), b.shape...) }

// Stride returns the element stride of the given axis.
func (b *Buffer) Stride(axis int) int { return b.strides[axis] }

// NumElem returns the total element count.
func (b *Buffer) NumElem() int { return numElems(b.shape) }

// Bytes returns the raw backing bytes. Mutating them mutates the
// buffer; backends use this for device upload and readback.
func (b *Buffer) Bytes() []byte { return b.data }

// Contiguous reports whether the strides describe a dense row-major
// layout for the shape.
func (b *Buffer) Contiguous() bool {
	acc := 1
	for i := len(b.shape) - 1; i >= 0; i-- {
		if b.shape[i] > 1 && b.strides[i] != acc {
			return false
		}
		acc *= b.shape[i]
	}
	return true
}
