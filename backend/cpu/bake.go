package cpu

import (
	"fmt"
	"math"

	"github.com/gogpu/swarmstep"
)

// Bake precomputes per-texel illumination from the scene's lights.
//
// Texels are spread evenly along each environment's wall chain by
// arclength; the render step uses the same parameterization, so texel k
// shades the same world position it was baked at. Each light
// contributes intensity attenuated by distance to the dims-dimensional
// falloff power, and walls occlude each other: a texel only sees a
// light when the segment between them crosses no other wall.
func (s *Stepper) Bake(scene *swarmstep.Scene, dims int) error {
	if scene == nil {
		return fmt.Errorf("cpu: bake on nil scene")
	}
	if dims < 1 || dims > 3 {
		return fmt.Errorf("cpu: bake dims %d outside [1, 3]", dims)
	}

	lights := scene.Lights.Accessor()
	lines := scene.Lines.Accessor()
	baked := scene.Baked.Accessor()
	falloff := float64(dims - 1)

	s.pool.For(scene.Envs(), func(e int) {
		walls := lines.At(e).Data()
		arc := newArcWalls(walls)
		out := baked.At(e).Data()
		lg := lights.At(e)

		w := len(out)
		for k := range out {
			sArc := (float32(k) + 0.5) / float32(w) * arc.total
			wallIdx, _ := arc.locate(sArc)
			p := arc.point(walls, sArc)

			var illum float32
			for li := range lg.Len() {
				row := lg.Row(li)
				lpos := vec{row[0], row[1]}
				if occluded(p, lpos, walls, wallIdx) {
					continue
				}
				d := float64(lpos.sub(p).len())
				illum += row[2] / float32(1+math.Pow(d, falloff))
			}
			out[k] = illum
		}
	})
	s.log().Debug("bake complete", "envs", scene.Envs(), "dims", dims)
	return nil
}

// occluded reports whether any wall other than skip blocks the segment
// p-l. The endpoints sit on geometry, so intersections at the very ends
// of the segment are ignored.
func occluded(p, l vec, walls []float32, skip int) bool {
	const eps = 1e-4
	for i := 0; i*4 < len(walls); i++ {
		if i == skip {
			continue
		}
		w := walls[i*4 : i*4+4]
		t, hit := segSegment(p, l, vec{w[0], w[1]}, vec{w[2], w[3]})
		if hit && t > eps && t < 1-eps {
			return true
		}
	}
	return false
}
