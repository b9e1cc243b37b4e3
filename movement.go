package swarmstep

import (
	"fmt"

	"github.com/gogpu/swarmstep/tensor"
)

// Movement is the per-drone control command consumed by the physics
// step: three [E, A] integer views holding discretized impulses along
// the drone's forward axis (mesial), its side axis (lateral), and
// around its heading (yaw). Values are typically in {-1, 0, +1}.
type Movement struct {
	Mesial  tensor.View[int32]
	Lateral tensor.View[int32]
	Yaw     tensor.View[int32]
}

// NewMovement validates ranks and the shared [envs, drones] shape.
func NewMovement(mesial, lateral, yaw tensor.View[int32]) (*Movement, error) {
	if err := wantRank("movement mesial", mesial, 2); err != nil {
		return nil, err
	}
	if err := wantRank("movement lateral", lateral, 2); err != nil {
		return nil, err
	}
	if err := wantRank("movement yaw", yaw, 2); err != nil {
		return nil, err
	}
	e, a := mesial.Size(0), mesial.Size(1)
	if lateral.Size(0) != e || lateral.Size(1) != a ||
		yaw.Size(0) != e || yaw.Size(1) != a {
		return nil, fmt.Errorf("%w: movement shapes mesial=[%d,%d] lateral=[%d,%d] yaw=[%d,%d]",
			ErrConsistency, e, a, lateral.Size(0), lateral.Size(1), yaw.Size(0), yaw.Size(1))
	}
	return &Movement{Mesial: mesial, Lateral: lateral, Yaw: yaw}, nil
}

// ZeroMovement allocates an all-zero command for a drone bundle.
func ZeroMovement(d *Drones) (*Movement, error) {
	e, a := d.Envs(), d.PerEnv()
	return NewMovement(
		tensor.Zeros[int32](e, a),
		tensor.Zeros[int32](e, a),
		tensor.Zeros[int32](e, a),
	)
}
