package cpu

import (
	"fmt"
	"math/rand/v2"

	"github.com/gogpu/swarmstep"
	"github.com/gogpu/swarmstep/tensor"
)

// Respawn re-places every drone of every environment whose reset flag
// is nonzero. Environments with a zero flag are left untouched, byte
// for byte. Placement draws a zone uniformly, then samples inside the
// zone's bounding box until the point falls within the zone radius of
// its center; momenta are zeroed and a fresh heading is drawn.
func (s *Stepper) Respawn(reset tensor.View[uint8], respawns *swarmstep.Respawns, drones *swarmstep.Drones) error {
	if respawns == nil || drones == nil {
		return fmt.Errorf("cpu: respawn on nil bundle")
	}
	if !reset.Valid() || reset.Rank() != 1 {
		return fmt.Errorf("cpu: reset flags must be a rank-1 view")
	}
	envs := drones.Envs()
	if reset.Size(0) != envs || respawns.Envs() != envs {
		return fmt.Errorf("cpu: reset=%d respawns=%d drones=%d environments",
			reset.Size(0), respawns.Envs(), envs)
	}

	centers := respawns.Centers.Accessor()
	radii := respawns.Radii.Accessor()
	lowers := respawns.Lowers.Accessor()
	uppers := respawns.Uppers.Accessor()

	flags := reset.Data()
	perEnv := drones.PerEnv()
	angles := drones.Angles.Data()
	positions := drones.Positions.Data()
	angmom := drones.AngMomenta.Data()
	momenta := drones.Momenta.Data()

	var placed int
	s.random(func(rng *rand.Rand) {
		for e := range envs {
			if flags[e] == 0 {
				continue
			}
			nz := int(centers.Width(e))
			for a := range perEnv {
				var p vec
				var th float32
				if nz > 0 {
					z := rng.IntN(nz)
					c := centers.At(e).Row(z)
					r := radii.At(e).Row(z)[0]
					lo := lowers.At(e).Row(z)
					hi := uppers.At(e).Row(z)
					p = sampleZone(rng, vec{c[0], c[1]}, r, vec{lo[0], lo[1]}, vec{hi[0], hi[1]})
				}
				th = rng.Float32() * 360

				i := e*perEnv + a
				angles[i] = th
				angmom[i] = 0
				positions[2*i] = p.x
				positions[2*i+1] = p.y
				momenta[2*i] = 0
				momenta[2*i+1] = 0
				placed++
			}
		}
	})
	if placed > 0 {
		s.log().Debug("respawn complete", "drones", placed)
	}
	return nil
}

// sampleZone draws a point inside the box [lo, hi] that also lies
// within radius r of c, falling back to the center after a bounded
// number of rejections.
func sampleZone(rng *rand.Rand, c vec, r float32, lo, hi vec) vec {
	for range 16 {
		p := vec{
			lo.x + rng.Float32()*(hi.x-lo.x),
			lo.y + rng.Float32()*(hi.y-lo.y),
		}
		if p.sub(c).len() <= r {
			return p
		}
	}
	return c
}
