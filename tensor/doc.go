// Package tensor provides validated, typed views over raw buffers.
//
// # Overview
//
// The simulation keeps all state in flat, contiguous, device-resident
// buffers so that thousands of kernel threads can index it with pure
// pointer arithmetic. A raw buffer is just bytes plus metadata; before
// any kernel sees it, it is wrapped in a View, whose constructor proves
// the four invariants a kernel relies on: correct device, contiguity,
// exact element type, exact rank.
//
// Construction failures wrap ErrValidation and are fatal by design. A
// half-validated buffer handed to a parallel kernel means out-of-bounds
// reads, so the package fails fast and loud instead.
//
// # Quick start
//
//	positions := tensor.Zeros[float32](envs, drones, 2)
//	view, err := tensor.New[float32](buf, 3)
//	if err != nil {
//	    // programming bug: wrong device, layout, dtype, or rank
//	}
//
// Views are values: copy them freely, share them across goroutines.
// Nothing in this package mutates a buffer's shape or layout after
// construction.
package tensor
