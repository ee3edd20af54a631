package geometry

import "math"

// vec is a 2D point or direction used by the planar routines.
type vec struct {
	X, Y float64
}

func (a vec) add(b vec) vec       { return vec{a.X + b.X, a.Y + b.Y} }
func (a vec) sub(b vec) vec       { return vec{a.X - b.X, a.Y - b.Y} }
func (a vec) scale(k float64) vec { return vec{a.X * k, a.Y * k} }
func (a vec) dot(b vec) float64   { return a.X*b.X + a.Y*b.Y }
func (a vec) cross(b vec) float64 { return a.X*b.Y - a.Y*b.X }
func (a vec) length() float64     { return math.Hypot(a.X, a.Y) }

// orient is twice the signed area of triangle abc: positive when c lies left
// of the directed line ab.
func orient(a, b, c vec) float64 {
	return b.sub(a).cross(c.sub(a))
}

// signedArea returns the shoelace area of an open ring (no closing point).
// Positive for counterclockwise rings.
func signedArea(r []vec) float64 {
	n := len(r)
	if n < 3 {
		return 0
	}
	var a float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += r[i].X*r[j].Y - r[j].X*r[i].Y
	}
	return a / 2
}

func reversed(r []vec) []vec {
	out := make([]vec, len(r))
	for i, v := range r {
		out[len(r)-1-i] = v
	}
	return out
}

// onSegment reports whether p, known to be collinear with ab, lies within the
// closed segment ab.
func onSegment(a, b, p vec) bool {
	return math.Min(a.X, b.X) <= p.X && p.X <= math.Max(a.X, b.X) &&
		math.Min(a.Y, b.Y) <= p.Y && p.Y <= math.Max(a.Y, b.Y)
}

// properCross reports whether segments ab and cd cross at a single point that
// is interior to both.
func properCross(a, b, c, d vec) bool {
	d1 := orient(c, d, a)
	d2 := orient(c, d, b)
	d3 := orient(a, b, c)
	d4 := orient(a, b, d)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

// crossingPoint returns the intersection of the lines through ab and cd along
// with the parameters of that point on each segment.
func crossingPoint(a, b, c, d vec) (p vec, t, u float64) {
	r := b.sub(a)
	s := d.sub(c)
	den := r.cross(s)
	t = c.sub(a).cross(s) / den
	u = c.sub(a).cross(r) / den
	return a.add(r.scale(t)), t, u
}

// pointInRing tests p against an open ring using ray casting. Points on the
// boundary give an arbitrary answer; callers filter those with onRingBoundary.
func pointInRing(r []vec, p vec) bool {
	n := len(r)
	if n < 3 {
		return false
	}
	inside := false
	j := n - 1
	for i := 0; i < n; i++ {
		vi, vj := r[i], r[j]
		if (vi.Y > p.Y) != (vj.Y > p.Y) &&
			p.X < (vj.X-vi.X)*(p.Y-vi.Y)/(vj.Y-vi.Y)+vi.X {
			inside = !inside
		}
		j = i
	}
	return inside
}

func onRingBoundary(r []vec, p vec) bool {
	n := len(r)
	for i := 0; i < n; i++ {
		a, b := r[i], r[(i+1)%n]
		if orient(a, b, p) == 0 && onSegment(a, b, p) {
			return true
		}
	}
	return false
}

// ringInsideRing reports whether inner lies inside outer, deciding on the first
// vertex of inner that is not on the boundary of outer. Rings are assumed not
// to cross.
func ringInsideRing(inner, outer []vec) bool {
	for _, v := range inner {
		if onRingBoundary(outer, v) {
			continue
		}
		return pointInRing(outer, v)
	}
	return true
}
