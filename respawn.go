package swarmstep

import (
	"fmt"

	"github.com/gogpu/swarmstep/ragged"
	"github.com/gogpu/swarmstep/tensor"
)

// Respawns holds the per-environment respawn zones drones are placed
// into on reset: four parallel ragged arrays sharing one widths vector.
//
//   - Centers: [N, 1, 2] zone center points
//   - Radii:   [N, 1] zone radii
//   - Lowers:  [N, 2] lower corner of the zone's bounding box
//   - Uppers:  [N, 2] upper corner of the zone's bounding box
type Respawns struct {
	Centers *ragged.Array[float32]
	Radii   *ragged.Array[float32]
	Lowers  *ragged.Array[float32]
	Uppers  *ragged.Array[float32]
}

// NewRespawns bundles four prebuilt ragged arrays, enforcing the
// shared-group-count invariant. A mismatch fails with ErrConsistency
// before any accessor is derivable from the bundle.
func NewRespawns(centers, radii, lowers, uppers *ragged.Array[float32]) (*Respawns, error) {
	if centers == nil || radii == nil || lowers == nil || uppers == nil {
		return nil, fmt.Errorf("%w: respawns built from nil array", ErrConsistency)
	}
	n := centers.Groups()
	if radii.Groups() != n || lowers.Groups() != n || uppers.Groups() != n {
		return nil, fmt.Errorf("%w: respawn group counts centers=%d radii=%d lowers=%d uppers=%d",
			ErrConsistency, n, radii.Groups(), lowers.Groups(), uppers.Groups())
	}
	return &Respawns{Centers: centers, Radii: radii, Lowers: lowers, Uppers: uppers}, nil
}

// BuildRespawns constructs the four ragged arrays from raw value views
// and a single shared widths view, then bundles them. Because one
// widths view feeds all four, the shared-group-count invariant holds
// by construction; value-length mismatches still surface as validation
// errors from the ragged constructors.
func BuildRespawns(
	centers, radii, lowers, uppers tensor.View[float32],
	widths tensor.View[int32],
) (*Respawns, error) {
	if err := wantRank("respawn centers", centers, 3); err != nil {
		return nil, err
	}
	if err := wantRank("respawn radii", radii, 2); err != nil {
		return nil, err
	}
	if err := wantRank("respawn lowers", lowers, 2); err != nil {
		return nil, err
	}
	if err := wantRank("respawn uppers", uppers, 2); err != nil {
		return nil, err
	}

	centersR, err := ragged.New(centers, widths)
	if err != nil {
		return nil, fmt.Errorf("respawn centers: %w", err)
	}
	radiiR, err := ragged.New(radii, widths)
	if err != nil {
		return nil, fmt.Errorf("respawn radii: %w", err)
	}
	lowersR, err := ragged.New(lowers, widths)
	if err != nil {
		return nil, fmt.Errorf("respawn lowers: %w", err)
	}
	uppersR, err := ragged.New(uppers, widths)
	if err != nil {
		return nil, fmt.Errorf("respawn uppers: %w", err)
	}

	return NewRespawns(centersR, radiiR, lowersR, uppersR)
}

// Envs returns the number of environments covered by the bundle.
func (r *Respawns) Envs() int { return r.Centers.Groups() }
