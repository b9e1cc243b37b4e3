// Package swarmstep is the data-layout core of a batched, GPU-resident
// drone simulation.
//
// # Overview
//
// Many independent environments — drones moving through scenes built
// from lights, wall segments, and textures — are stepped in parallel,
// but each environment has a different number of lights, walls, and
// textures. swarmstep packs those variable-length per-environment
// collections into flat, contiguous, device-resident buffers with O(1)
// random access from massively parallel kernels:
//
//   - tensor: validated typed views over raw buffers (device,
//     contiguity, element type, rank checked at construction).
//   - ragged: the ragged array — flat values + derived starts/inverse
//     index buffers — and the kernel-side accessor protocol.
//   - this package: the domain aggregates (Scene, Respawns, Drones,
//     Movement, Render) that bundle the primitives, the process-wide
//     configuration, and the Stepper interface that external
//     simulation kernels implement.
//
// # Quick start
//
//	swarmstep.Configure(swarmstep.Config{Restitution: 0.5, DroneCount: 2, FOV: 130})
//	swarmstep.RegisterStepper(cpu.New())
//
//	scene, err := swarmstep.NewScene(lights, lightWidths, lines, lineWidths,
//	    textures, texWidths, frame)
//	...
//	st := swarmstep.ActiveStepper()
//	st.Physics(movement, scene, drones)
//	frame, err := st.Render(drones, scene)
//
// # Immutability
//
// Layout is immutable after construction: widths, starts, inverse, and
// shapes never change on a live structure, so concurrent kernel reads
// need no locks. Changing group membership means constructing a new
// ragged array. The one sanctioned mutation is element values inside
// the Drones views, which the physics and respawn steps advance in
// place.
package swarmstep
