package cpu

import (
	"fmt"
	"math"

	"github.com/gogpu/swarmstep"
)

// Integration constants. The step is fixed-rate; callers that want a
// different simulated speed scale their command magnitudes.
const (
	stepDT    = 1.0 / 60
	thrust    = 5.0   // linear acceleration per unit command
	torque    = 180.0 // angular acceleration per unit command, deg/s^2
	linDrag   = 0.98  // momentum kept per step
	angDrag   = 0.9
	collideEps = 1e-3
)

// Physics advances the drones one fixed step under the given movement
// command. Commands apply impulses in the drone's own frame (mesial
// along the heading, lateral perpendicular to it, yaw around it), drag
// bleeds momentum, and drones bounce off wall segments keeping the
// configured restitution fraction of their normal velocity.
func (s *Stepper) Physics(movement *swarmstep.Movement, scene *swarmstep.Scene, drones *swarmstep.Drones) error {
	if movement == nil || scene == nil || drones == nil {
		return fmt.Errorf("cpu: physics on nil bundle")
	}
	envs, perEnv := drones.Envs(), drones.PerEnv()
	if scene.Envs() != envs {
		return fmt.Errorf("cpu: scene has %d environments, drones have %d", scene.Envs(), envs)
	}
	if movement.Mesial.Size(0) != envs || movement.Mesial.Size(1) != perEnv {
		return fmt.Errorf("cpu: movement is [%d, %d], drones are [%d, %d]",
			movement.Mesial.Size(0), movement.Mesial.Size(1), envs, perEnv)
	}

	restitution := swarmstep.CurrentConfig().Restitution
	lines := scene.Lines.Accessor()

	mesial := movement.Mesial.Data()
	lateral := movement.Lateral.Data()
	yaw := movement.Yaw.Data()
	angles := drones.Angles.Data()
	positions := drones.Positions.Data()
	angmom := drones.AngMomenta.Data()
	momenta := drones.Momenta.Data()

	s.pool.For(envs, func(e int) {
		walls := lines.At(e).Data()
		for a := range perEnv {
			i := e*perEnv + a

			fwd := heading(angles[i])
			side := vec{-fwd.y, fwd.x}
			mom := vec{momenta[2*i], momenta[2*i+1]}
			mom = mom.add(fwd.scale(float32(mesial[i]) * thrust * stepDT))
			mom = mom.add(side.scale(float32(lateral[i]) * thrust * stepDT))
			mom = mom.scale(linDrag)

			am := (angmom[i] + float32(yaw[i])*torque*stepDT) * angDrag

			pos := vec{positions[2*i], positions[2*i+1]}
			pos, mom = sweep(pos, mom, walls, restitution)

			angles[i] = wrapDeg(angles[i] + am*stepDT)
			angmom[i] = am
			positions[2*i], positions[2*i+1] = pos.x, pos.y
			momenta[2*i], momenta[2*i+1] = mom.x, mom.y
		}
	})
	return nil
}

// sweep moves a drone by one step of its momentum, bouncing off the
// nearest wall it crosses. Up to a few bounces are resolved per step so
// a corner hit cannot push the drone through the far wall.
func sweep(pos, mom vec, walls []float32, restitution float32) (vec, vec) {
	remaining := float32(stepDT)
	for range 4 {
		delta := mom.scale(remaining)
		next := pos.add(delta)

		bestT := float32(math.Inf(1))
		bestWall := -1
		for w := 0; w*4 < len(walls); w++ {
			seg := walls[w*4 : w*4+4]
			t, hit := segSegment(pos, next, vec{seg[0], seg[1]}, vec{seg[2], seg[3]})
			if hit && t < bestT {
				bestT = t
				bestWall = w
			}
		}
		if bestWall < 0 {
			return next, mom
		}

		seg := walls[bestWall*4 : bestWall*4+4]
		n := normal(vec{seg[0], seg[1]}, vec{seg[2], seg[3]})
		if n.dot(mom) > 0 {
			n = n.scale(-1)
		}

		// Stop just short of the wall, then reflect the normal
		// component of the momentum scaled by restitution.
		stopT := bestT - collideEps
		if stopT < 0 {
			stopT = 0
		}
		pos = pos.add(delta.scale(stopT))
		mom = mom.sub(n.scale((1 + restitution) * n.dot(mom)))
		remaining *= 1 - bestT
		if remaining <= 0 {
			return pos, mom
		}
	}
	return pos, mom
}

// wrapDeg folds an angle into [0, 360).
func wrapDeg(deg float32) float32 {
	m := float32(math.Mod(float64(deg), 360))
	if m < 0 {
		m += 360
	}
	return m
}
