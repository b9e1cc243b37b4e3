package cpu

import (
	"fmt"

	"github.com/gogpu/swarmstep"
)

// Render casts one fan of rays per drone and shades what they hit.
//
// Each drone gets ResWidth rays spread across the configured field of
// view, centered on its heading. Rays hit either a wall segment of the
// drone's environment or another drone's silhouette; the nearest hit
// wins. Wall hits are shaded from the baked illumination at the texel
// under the hit point and the texture color there; silhouette hits are
// shaded flat. The returned index view holds the wall index for wall
// hits, wallCount + b*F + f for silhouette segment f of drone b, and -1
// for a miss.
func (s *Stepper) Render(drones *swarmstep.Drones, scene *swarmstep.Scene) (*swarmstep.Render, error) {
	if drones == nil || scene == nil {
		return nil, fmt.Errorf("cpu: render on nil bundle")
	}
	envs, perEnv := drones.Envs(), drones.PerEnv()
	if scene.Envs() != envs {
		return nil, fmt.Errorf("cpu: scene has %d environments, drones have %d", scene.Envs(), envs)
	}

	out, err := swarmstep.EmptyRender(drones)
	if err != nil {
		return nil, err
	}

	const w = swarmstep.ResWidth
	fov := swarmstep.CurrentConfig().FOV
	lines := scene.Lines.Accessor()
	textures := scene.Textures.Accessor()
	baked := scene.Baked.Accessor()
	frame := scene.Frame.Data() // [F*4], silhouette segments in drone frame

	angles := drones.Angles.Data()
	positions := drones.Positions.Data()
	indices := out.Indices.Data()
	locations := out.Locations.Data()
	dots := out.Dots.Data()
	distances := out.Distances.Data()
	screen := out.Screen.Data()

	s.pool.For(envs, func(e int) {
		walls := lines.At(e).Data()
		arc := newArcWalls(walls)
		texColors := textures.At(e).Data()
		illum := baked.At(e).Data()
		texW := len(illum)
		wallCount := len(walls) / 4

		// Silhouette segments of every drone in this environment,
		// transformed into world space once per render.
		sil := silhouettes(frame, angles, positions, e, perEnv)

		for a := range perEnv {
			di := e*perEnv + a
			pos := vec{positions[2*di], positions[2*di+1]}

			for r := range w {
				off := fov * ((float32(r)+0.5)/w - 0.5)
				dir := heading(angles[di] + off)

				best := rayShot{t: -1}
				bestIdx := -1
				var bestSeg [4]float32
				for wi := range wallCount {
					seg := walls[wi*4 : wi*4+4]
					shot := raySegment(pos, dir, vec{seg[0], seg[1]}, vec{seg[2], seg[3]})
					if shot.hit && (best.t < 0 || shot.t < best.t) {
						best = shot
						bestIdx = wi
						copy(bestSeg[:], seg)
					}
				}
				wallHit := bestIdx >= 0
				for b := range perEnv {
					if b == a {
						continue
					}
					for f := 0; f*4 < len(frame); f++ {
						seg := sil[(b*len(frame)/4+f)*4:]
						shot := raySegment(pos, dir, vec{seg[0], seg[1]}, vec{seg[2], seg[3]})
						if shot.hit && shot.t > collideEps && (best.t < 0 || shot.t < best.t) {
							best = shot
							bestIdx = wallCount + b*(len(frame)/4) + f
							copy(bestSeg[:], seg[:4])
							wallHit = false
						}
					}
				}
				if bestIdx < 0 {
					continue
				}

				o := di*w + r
				n := normal(vec{bestSeg[0], bestSeg[1]}, vec{bestSeg[2], bestSeg[3]})
				cos := n.dot(dir)
				if cos < 0 {
					cos = -cos
				}
				indices[o] = int32(bestIdx)
				dots[o] = cos
				distances[o] = best.t

				if wallHit {
					texCoord := arc.arcAt(bestIdx, best.u) / arc.total * float32(texW)
					ti := int(texCoord)
					if ti >= texW {
						ti = texW - 1
					}
					locations[o] = texCoord
					screen[o] = illum[ti] * luminance(texColors[ti*3:ti*3+3]) * cos / (1 + best.t)
				} else {
					locations[o] = best.u
					screen[o] = cos / (1 + best.t)
				}
			}
		}
	})
	return out, nil
}

// silhouettes transforms the shared drone silhouette segments into
// world space for every drone of environment e. The result is a flat
// [A*F*4] buffer in the same endpoint layout as wall segments.
func silhouettes(frame, angles, positions []float32, e, perEnv int) []float32 {
	fSegs := len(frame) / 4
	out := make([]float32, perEnv*len(frame))
	for b := range perEnv {
		di := e*perEnv + b
		fwd := heading(angles[di])
		pos := vec{positions[2*di], positions[2*di+1]}
		for f := range fSegs {
			seg := frame[f*4 : f*4+4]
			for pt := range 2 {
				local := vec{seg[pt*2], seg[pt*2+1]}
				world := vec{
					local.x*fwd.x - local.y*fwd.y,
					local.x*fwd.y + local.y*fwd.x,
				}.add(pos)
				o := (b*fSegs + f) * 4
				out[o+pt*2] = world.x
				out[o+pt*2+1] = world.y
			}
		}
	}
	return out
}

// luminance averages a texel's color channels.
func luminance(rgb []float32) float32 {
	return (rgb[0] + rgb[1] + rgb[2]) / 3
}
