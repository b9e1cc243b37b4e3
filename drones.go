package swarmstep

import (
	"fmt"

	"github.com/gogpu/swarmstep/tensor"
)

// Drones bundles the mutable per-drone state. There is no raggedness
// here: every environment has exactly DroneCount drones, so all four
// views share the same [envs, drones] leading dimensions.
//
//   - Angles:     [E, A] heading in degrees
//   - Positions:  [E, A, 2] position in scene coordinates
//   - AngMomenta: [E, A] angular momentum
//   - Momenta:    [E, A, 2] linear momentum
//
// Drones is the one bundle external kernels mutate in place (physics
// and respawn advance it); the views themselves stay fixed, only their
// element values change.
type Drones struct {
	Angles     tensor.View[float32]
	Positions  tensor.View[float32]
	AngMomenta tensor.View[float32]
	Momenta    tensor.View[float32]
}

// NewDrones validates ranks and the shared leading dimensions. A
// mismatch fails with ErrConsistency.
func NewDrones(angles, positions, angmomenta, momenta tensor.View[float32]) (*Drones, error) {
	if err := wantRank("drone angles", angles, 2); err != nil {
		return nil, err
	}
	if err := wantRank("drone positions", positions, 3); err != nil {
		return nil, err
	}
	if err := wantRank("drone angular momenta", angmomenta, 2); err != nil {
		return nil, err
	}
	if err := wantRank("drone momenta", momenta, 3); err != nil {
		return nil, err
	}

	e, a := angles.Size(0), angles.Size(1)
	for _, f := range []struct {
		name string
		e, a int
	}{
		{"positions", positions.Size(0), positions.Size(1)},
		{"angular momenta", angmomenta.Size(0), angmomenta.Size(1)},
		{"momenta", momenta.Size(0), momenta.Size(1)},
	} {
		if f.e != e || f.a != a {
			return nil, fmt.Errorf("%w: drone %s is [%d, %d, ...], angles are [%d, %d]",
				ErrConsistency, f.name, f.e, f.a, e, a)
		}
	}
	if positions.Size(2) != 2 || momenta.Size(2) != 2 {
		return nil, fmt.Errorf("%w: drone positions/momenta must have 2 spatial components",
			ErrConsistency)
	}

	return &Drones{
		Angles:     angles,
		Positions:  positions,
		AngMomenta: angmomenta,
		Momenta:    momenta,
	}, nil
}

// EmptyDrones allocates a zeroed drone bundle for envs environments
// with the configured drones per environment.
func EmptyDrones(envs int) (*Drones, error) {
	a := CurrentConfig().DroneCount
	return NewDrones(
		tensor.Zeros[float32](envs, a),
		tensor.Zeros[float32](envs, a, 2),
		tensor.Zeros[float32](envs, a),
		tensor.Zeros[float32](envs, a, 2),
	)
}

// Envs returns the number of environments.
func (d *Drones) Envs() int { return d.Angles.Size(0) }

// PerEnv returns the number of drones per environment.
func (d *Drones) PerEnv() int { return d.Angles.Size(1) }
