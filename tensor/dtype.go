package tensor

import "fmt"

// DType identifies the element type stored in a Buffer.
//
// A View's type parameter must resolve to exactly the buffer's DType;
// there are no implicit conversions anywhere in the package.
type DType uint8

const (
	// DTypeInvalid is the zero value, representing no element type.
	DTypeInvalid DType = iota

	// DTypeFloat32 is a 32-bit IEEE 754 float.
	DTypeFloat32

	// DTypeInt32 is a 32-bit signed integer.
	DTypeInt32

	// DTypeUint32 is a 32-bit unsigned integer.
	DTypeUint32

	// DTypeUint8 is an 8-bit unsigned integer.
	DTypeUint8

	// DTypeBool is a single-byte boolean flag.
	DTypeBool
)

// Size returns the element size in bytes, or 0 for DTypeInvalid.
func (d DType) Size() int {
	switch d {
	case DTypeFloat32, DTypeInt32, DTypeUint32:
		return 4
	case DTypeUint8, DTypeBool:
		return 1
	default:
		return 0
	}
}

// String returns the human-readable name of the element type.
func (d DType) String() string {
	switch d {
	case DTypeFloat32:
		return "float32"
	case DTypeInt32:
		return "int32"
	case DTypeUint32:
		return "uint32"
	case DTypeUint8:
		return "uint8"
	case DTypeBool:
		return "bool"
	default:
		return fmt.Sprintf("invalid(%d)", uint8(d))
	}
}

// Elem constrains the element types a View can expose. The set matches
// the DType enumeration one to one.
type Elem interface {
	float32 | int32 | uint32 | uint8 | bool
}

// DTypeOf returns the DType corresponding to the Go element type T.
func DTypeOf[T Elem]() DType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return DTypeFloat32
	case int32:
		return DTypeInt32
	case uint32:
		return DTypeUint32
	case uint8:
		return DTypeUint8
	case bool:
		return DTypeBool
	default:
		return DTypeInvalid
	}
}

// one returns the multiplicative identity for T (true for bool).
// Used by the Ones factory.
func one[T Elem]() T {
	var v T
	switch p := any(&v).(type) {
	case *float32:
		*p = 1
	case *int32:
		*p = 1
	case *uint32:
		*p = 1
	case *uint8:
		*p = 1
	case *bool:
		*p = true
	}
	return v
}
