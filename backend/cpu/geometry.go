package cpu

import "math"

// vec is a 2D point or direction.
type vec struct{ x, y float32 }

func (v vec) add(o vec) vec      { return vec{v.x + o.x, v.y + o.y} }
func (v vec) sub(o vec) vec      { return vec{v.x - o.x, v.y - o.y} }
func (v vec) scale(s float32) vec { return vec{v.x * s, v.y * s} }
func (v vec) dot(o vec) float32  { return v.x*o.x + v.y*o.y }
func (v vec) len() float32       { return float32(math.Hypot(float64(v.x), float64(v.y))) }

// heading converts an angle in degrees to a unit direction.
func heading(deg float32) vec {
	r := float64(deg) * math.Pi / 180
	return vec{float32(math.Cos(r)), float32(math.Sin(r))}
}

// normal returns a unit normal of the segment a-b. Orientation is
// arbitrary; callers that reflect must flip it against the incoming
// direction.
func normal(a, b vec) vec {
	d := b.sub(a)
	l := d.len()
	if l == 0 {
		return vec{0, 0}
	}
	return vec{-d.y / l, d.x / l}
}

// rayShot is an intersection of a ray with a segment.
type rayShot struct {
	t   float32 // distance along the ray, in ray-direction units
	u   float32 // parameter along the segment, in [0, 1]
	hit bool
}

// raySegment intersects the ray origin+t*dir (t >= 0) with the segment
// a-b. dir need not be normalized; t is in units of |dir|.
func raySegment(origin, dir, a, b vec) rayShot {
	s := b.sub(a)
	denom := dir.x*s.y - dir.y*s.x
	if denom == 0 {
		return rayShot{}
	}
	ao := a.sub(origin)
	t := (ao.x*s.y - ao.y*s.x) / denom
	u := (ao.x*dir.y - ao.y*dir.x) / denom
	if t < 0 || u < 0 || u > 1 {
		return rayShot{}
	}
	return rayShot{t: t, u: u, hit: true}
}

// segSegment reports whether the segment p-q crosses the segment a-b,
// and at which parameter t along p-q.
func segSegment(p, q, a, b vec) (float32, bool) {
	d := q.sub(p)
	shot := raySegment(p, d, a, b)
	if !shot.hit || shot.t > 1 {
		return 0, false
	}
	return shot.t, true
}

// arcWalls is the arclength parameterization of one environment's wall
// chain: per-wall lengths and the running total before each wall. Texel
// coordinates live on this chain, so baking and rendering agree on
// where texel k sits in the world.
type arcWalls struct {
	lens  []float32
	cum   []float32 // cum[i] is total length before wall i
	total float32
}

// newArcWalls parameterizes the walls of one environment. walls is the
// flat [W*4] segment buffer (x1, y1, x2, y2 per wall).
func newArcWalls(walls []float32) arcWalls {
	n := len(walls) / 4
	a := arcWalls{
		lens: make([]float32, n),
		cum:  make([]float32, n),
	}
	for i := range n {
		w := walls[i*4 : i*4+4]
		l := vec{w[2], w[3]}.sub(vec{w[0], w[1]}).len()
		a.lens[i] = l
		a.cum[i] = a.total
		a.total += l
	}
	return a
}

// locate maps an arclength s to (wall index, parameter along that
// wall). Zero-length walls are skipped.
func (a arcWalls) locate(s float32) (int, float32) {
	last := -1
	for i, l := range a.lens {
		if l == 0 {
			continue
		}
		last = i
		if s <= a.cum[i]+l {
			u := (s - a.cum[i]) / l
			if u < 0 {
				u = 0
			}
			return i, u
		}
	}
	return last, 1
}

// point maps an arclength s in [0, total) to a world position on the
// chain. walls is the same buffer newArcWalls saw.
func (a arcWalls) point(walls []float32, s float32) vec {
	i, u := a.locate(s)
	if i < 0 {
		return vec{}
	}
	w := walls[i*4 : i*4+4]
	p0 := vec{w[0], w[1]}
	p1 := vec{w[2], w[3]}
	return p0.add(p1.sub(p0).scale(u))
}

// arcAt returns the arclength of parameter u on wall i.
func (a arcWalls) arcAt(i int, u float32) float32 {
	return a.cum[i] + u*a.lens[i]
}
