package tensor

import "sync/atomic"

// DeviceKind distinguishes the execution domains a buffer can live in.
type DeviceKind uint8

const (
	// DeviceCPU is host memory, directly addressable by Go code.
	DeviceCPU DeviceKind = iota

	// DeviceGPU is device memory managed by a GPU backend. Buffers tagged
	// GPU keep a host-visible mirror; the backend owns the upload schedule.
	DeviceGPU
)

// String returns the kind name.
func (k DeviceKind) String() string {
	switch k {
	case DeviceCPU:
		return "cpu"
	case DeviceGPU:
		return "gpu"
	default:
		return "unknown"
	}
}

// Device tags a buffer with the execution domain that owns it.
// View construction fails when a buffer's device does not match the
// process-wide default, so a kernel can never be handed a buffer that
// lives somewhere it cannot address.
type Device struct {
	Kind DeviceKind
	Name string
}

// Host is the default host-memory device.
var Host = Device{Kind: DeviceCPU, Name: "host"}

// defaultDevice stores the device new buffers are allocated on and
// views are validated against. Accessed atomically so backends can
// switch it concurrently with allocation from other goroutines.
var defaultDevice atomic.Pointer[Device]

func init() {
	d := Host
	defaultDevice.Store(&d)
}

// SetDefault switches the process-wide default device. Backends call
// this once during initialization; it is not meant to be toggled
// per-operation.
func SetDefault(d Device) {
	defaultDevice.Store(&d)
}

// Default returns the current process-wide default device.
func Default() Device {
	return *defaultDevice.Load()
}
