package native

import (
	"unsafe"

	"github.com/gogpu/swarmstep"
)

// f32Bytes reinterprets a float32 slice as its backing bytes. The GPU
// consumes the host's native little-endian layout directly.
func f32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func i32Bytes(v []int32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func u32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func structToBytes(ptr unsafe.Pointer, size uintptr) []byte {
	return unsafe.Slice((*byte)(ptr), size)
}

// stateStride is the float count per drone in the packed state buffer:
// angle, angular momentum, pos.x, pos.y, mom.x, mom.y.
const stateStride = 6

// packState interleaves the four drone views into the kernel state
// layout.
func packState(d *swarmstep.Drones) []float32 {
	n := d.Envs() * d.PerEnv()
	angles := d.Angles.Data()
	angmom := d.AngMomenta.Data()
	positions := d.Positions.Data()
	momenta := d.Momenta.Data()

	out := make([]float32, n*stateStride)
	for i := range n {
		o := i * stateStride
		out[o] = angles[i]
		out[o+1] = angmom[i]
		out[o+2] = positions[2*i]
		out[o+3] = positions[2*i+1]
		out[o+4] = momenta[2*i]
		out[o+5] = momenta[2*i+1]
	}
	return out
}

// unpackState scatters a packed state buffer back into the drone views.
func unpackState(d *swarmstep.Drones, state []float32) {
	n := d.Envs() * d.PerEnv()
	angles := d.Angles.Data()
	angmom := d.AngMomenta.Data()
	positions := d.Positions.Data()
	momenta := d.Momenta.Data()

	for i := range n {
		o := i * stateStride
		angles[i] = state[o]
		angmom[i] = state[o+1]
		positions[2*i] = state[o+2]
		positions[2*i+1] = state[o+3]
		momenta[2*i] = state[o+4]
		momenta[2*i+1] = state[o+5]
	}
}

// packCommands interleaves the three movement views: mesial, lateral,
// yaw per drone.
func packCommands(m *swarmstep.Movement) []int32 {
	n := m.Mesial.Size(0) * m.Mesial.Size(1)
	mesial := m.Mesial.Data()
	lateral := m.Lateral.Data()
	yaw := m.Yaw.Data()

	out := make([]int32, n*3)
	for i := range n {
		out[3*i] = mesial[i]
		out[3*i+1] = lateral[i]
		out[3*i+2] = yaw[i]
	}
	return out
}

// zoneStride is the float count per respawn zone in the packed zone
// buffer: center.x, center.y, radius, lower.x, lower.y, upper.x,
// upper.y.
const zoneStride = 7

// packZones flattens the four parallel respawn raggeds into one buffer
// the kernel indexes with the shared starts.
func packZones(r *swarmstep.Respawns) []float32 {
	centers := r.Centers.Accessor()
	radii := r.Radii.Accessor()
	lowers := r.Lowers.Accessor()
	uppers := r.Uppers.Accessor()

	total := len(centers.Inverse)
	out := make([]float32, 0, total*zoneStride)
	for e := range centers.Groups() {
		cg, rg := centers.At(e), radii.At(e)
		lg, ug := lowers.At(e), uppers.At(e)
		for z := range cg.Len() {
			c, lo, hi := cg.Row(z), lg.Row(z), ug.Row(z)
			out = append(out, c[0], c[1], rg.Row(z)[0], lo[0], lo[1], hi[0], hi[1])
		}
	}
	return out
}

// expandFlags widens uint8 reset flags to the u32 the kernel reads.
func expandFlags(flags []uint8) []uint32 {
	out := make([]uint32, len(flags))
	for i, f := range flags {
		out[i] = uint32(f)
	}
	return out
}
