package swarmstep

import (
	"fmt"

	"github.com/gogpu/swarmstep/tensor"
)

// ResWidth is the horizontal resolution of a rendered observation, in
// rays per drone.
const ResWidth = 64

// Render is the observation bundle produced by the render step. All
// views are [E, A, W] — per environment, per drone, per ray:
//
//   - Indices:   flat index of the wall segment each ray hit, -1 for miss
//   - Locations: texel coordinate of the hit along the segment
//   - Dots:      cosine of the ray's incidence angle at the hit
//   - Distances: distance from the drone to the hit
//   - Screen:    shaded intensity, the drone's actual observation
type Render struct {
	Indices   tensor.View[int32]
	Locations tensor.View[float32]
	Dots      tensor.View[float32]
	Distances tensor.View[float32]
	Screen    tensor.View[float32]
}

// NewRender validates ranks and the shared [E, A, W] shape of a render
// bundle.
func NewRender(indices tensor.View[int32], locations, dots, distances, screen tensor.View[float32]) (*Render, error) {
	if err := wantRank("render indices", indices, 3); err != nil {
		return nil, err
	}
	e, a, w := indices.Size(0), indices.Size(1), indices.Size(2)
	for _, f := range []struct {
		name string
		v    tensor.View[float32]
	}{
		{"locations", locations},
		{"dots", dots},
		{"distances", distances},
		{"screen", screen},
	} {
		if err := wantRank("render "+f.name, f.v, 3); err != nil {
			return nil, err
		}
		if f.v.Size(0) != e || f.v.Size(1) != a || f.v.Size(2) != w {
			return nil, fmt.Errorf("%w: render %s is [%d,%d,%d], indices are [%d,%d,%d]",
				ErrConsistency, f.name, f.v.Size(0), f.v.Size(1), f.v.Size(2), e, a, w)
		}
	}
	return &Render{
		Indices:   indices,
		Locations: locations,
		Dots:      dots,
		Distances: distances,
		Screen:    screen,
	}, nil
}

// EmptyRender allocates a render bundle for a drone bundle, with miss
// sentinels in the index view.
func EmptyRender(d *Drones) (*Render, error) {
	e, a := d.Envs(), d.PerEnv()
	return NewRender(
		tensor.Full[int32](-1, e, a, ResWidth),
		tensor.Zeros[float32](e, a, ResWidth),
		tensor.Zeros[float32](e, a, ResWidth),
		tensor.Zeros[float32](e, a, ResWidth),
		tensor.Zeros[float32](e, a, ResWidth),
	)
}
