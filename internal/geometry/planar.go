package geometry

import (
	"math"

	"github.com/ctessum/polyclip-go"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// PlanarEngineName is the registry name of the pure-Go engine.
const PlanarEngineName = "planar"

// rectExtension lengthens edge rectangles past their endpoints, relative to
// the offset distance, so rectangle ends never run along a neighbouring edge.
const rectExtension = 1e-6

// Planar is a pure-Go Engine over planar (projected) coordinates. Boolean
// operations are delegated to polyclip-go.
//
// InwardOffset computes the exact Minkowski erosion: every point of the
// polygon within distance d of its boundary lies in the d-rectangle of some
// edge or in the d-disc of some reflex vertex. Those shapes are cascade-unioned
// into one boundary band and removed with a single difference. Discs are approximated with 4*QuadSegments vertices.
type Planar struct {
	quadSegments int
}

var _ Engine = (*Planar)(nil)

// NewPlanar returns a planar engine.
func NewPlanar(opts Options) *Planar {
	opts = opts.withDefaults()
	return &Planar{quadSegments: opts.QuadSegments}
}

// Area implements Engine.
func (e *Planar) Area(g *geom.MultiPolygon) float64 {
	return Area(g)
}

// IsValid implements Engine using the OGC rules of Validate.
func (e *Planar) IsValid(g *geom.MultiPolygon) bool {
	return Validate(g) == nil
}

// InwardOffset implements Engine.
func (e *Planar) InwardOffset(g *geom.MultiPolygon, distance float64) (*geom.MultiPolygon, error) {
	if g == nil {
		return nil, eris.New("geometry: offset nil geometry")
	}
	if math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, eris.Errorf("geometry: invalid offset distance %v", distance)
	}
	if distance <= 0 || IsEmpty(g) {
		return g.Clone(), nil
	}

	parts := normalizeParts(partsOf(g))
	var band []polyclip.Polygon
	for _, rings := range parts {
		for _, r := range rings {
			n := len(r)
			for i := 0; i < n; i++ {
				prev, a, b := r[(i-1+n)%n], r[i], r[(i+1)%n]
				band = append(band, edgeRect(a, b, distance))
				if orient(prev, a, b) < 0 {
					band = append(band, disc(a, distance, e.quadSegments))
				}
			}
		}
	}
	removed := cascadeUnion(band)
	if len(removed) == 0 {
		return fromClip(toClip(parts), g.SRID())
	}
	return fromClip(toClip(parts).Construct(polyclip.DIFFERENCE, removed), g.SRID())
}

// Repair implements Engine. Every ring is noded at its self-intersections and
// split into simple loops; the loops of a ring are combined even-odd, holes are
// subtracted from their shell and parts are unioned.
func (e *Planar) Repair(g *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	if g == nil {
		return nil, eris.New("geometry: repair nil geometry")
	}

	var acc polyclip.Polygon
	for _, rings := range partsOf(g) {
		if len(rings) == 0 {
			continue
		}
		region := evenOdd(nodeRing(dropCollinear(rings[0])))
		if len(region) == 0 {
			continue
		}
		holeRegions := make([]polyclip.Polygon, 0, len(rings)-1)
		for _, h := range rings[1:] {
			holeRegions = append(holeRegions, evenOdd(nodeRing(dropCollinear(h))))
		}
		if holes := cascadeUnion(holeRegions); len(holes) > 0 {
			region = region.Construct(polyclip.DIFFERENCE, holes)
		}
		acc = union(acc, region)
	}
	return fromClip(acc, g.SRID())
}

// normalizeParts drops collinear vertices and degenerate rings, then orients
// shells counterclockwise and holes clockwise so the interior is always on
// the left of each edge.
func normalizeParts(parts [][][]vec) [][][]vec {
	out := make([][][]vec, 0, len(parts))
	for _, rings := range parts {
		if len(rings) == 0 {
			continue
		}
		shell := dropCollinear(rings[0])
		if shell == nil {
			continue
		}
		norm := [][]vec{orientRing(shell, true)}
		for _, h := range rings[1:] {
			if h = dropCollinear(h); h != nil {
				norm = append(norm, orientRing(h, false))
			}
		}
		out = append(out, norm)
	}
	return out
}

func orientRing(r []vec, ccw bool) []vec {
	if (signedArea(r) > 0) != ccw {
		return reversed(r)
	}
	return r
}

// dropCollinear removes vertices that lie on the line through their
// neighbours, which also removes spikes. Returns nil when fewer than three
// vertices remain.
func dropCollinear(r []vec) []vec {
	out := append([]vec(nil), r...)
	for changed := true; changed && len(out) >= 3; {
		changed = false
		for i := 0; i < len(out) && len(out) >= 3; i++ {
			n := len(out)
			prev, next := out[(i-1+n)%n], out[(i+1)%n]
			if prev == out[i] || orient(prev, out[i], next) == 0 {
				out = append(out[:i], out[i+1:]...)
				changed = true
				i--
			}
		}
	}
	if len(out) < 3 {
		return nil
	}
	return out
}

// edgeRect is the rectangle of half-width d around segment ab.
func edgeRect(a, b vec, d float64) polyclip.Polygon {
	dir := b.sub(a)
	u := dir.scale(1 / dir.length())
	n := vec{-u.Y, u.X}.scale(d)

	ext := d * rectExtension
	if m := 1e-9 * math.Max(1, math.Max(math.Abs(a.X), math.Abs(a.Y))); ext < m {
		ext = m
	}
	a0, b0 := a.sub(u.scale(ext)), b.add(u.scale(ext))

	return polyclip.Polygon{{
		polyclip.Point(a0.add(n)),
		polyclip.Point(a0.sub(n)),
		polyclip.Point(b0.sub(n)),
		polyclip.Point(b0.add(n)),
	}}
}

// disc approximates the circle of radius r around c. Vertices sit half a step
// off the axes so they never land on an axis-aligned edge rectangle.
func disc(c vec, r float64, quadSegments int) polyclip.Polygon {
	n := 4 * quadSegments
	step := 2 * math.Pi / float64(n)
	cont := make(polyclip.Contour, n)
	for k := 0; k < n; k++ {
		theta := step * (float64(k) + 0.5)
		cont[k] = polyclip.Point{X: c.X + r*math.Cos(theta), Y: c.Y + r*math.Sin(theta)}
	}
	return polyclip.Polygon{cont}
}

// cascadeUnion unions ps pairwise in rounds, so each shape takes part in
// O(log n) operations on inputs of similar size.
func cascadeUnion(ps []polyclip.Polygon) polyclip.Polygon {
	if len(ps) == 0 {
		return nil
	}
	level := append([]polyclip.Polygon(nil), ps...)
	for len(level) > 1 {
		next := make([]polyclip.Polygon, 0, (len(level)+1)/2)
		for i := 0; i < len(level); i += 2 {
			if i+1 == len(level) {
				next = append(next, level[i])
				continue
			}
			next = append(next, union(level[i], level[i+1]))
		}
		level = next
	}
	return level[0]
}

func union(a, b polyclip.Polygon) polyclip.Polygon {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	return a.Construct(polyclip.UNION, b)
}

// evenOdd combines simple loops with the even-odd rule.
func evenOdd(loops [][]vec) polyclip.Polygon {
	var acc polyclip.Polygon
	for _, l := range loops {
		if signedArea(l) == 0 {
			continue
		}
		p := polyclip.Polygon{contour(l)}
		if len(acc) == 0 {
			acc = p
			continue
		}
		acc = acc.Construct(polyclip.XOR, p)
	}
	return acc
}

func contour(r []vec) polyclip.Contour {
	c := make(polyclip.Contour, len(r))
	for i, v := range r {
		c[i] = polyclip.Point(v)
	}
	return c
}

func toClip(parts [][][]vec) polyclip.Polygon {
	var p polyclip.Polygon
	for _, rings := range parts {
		for _, r := range rings {
			p = append(p, contour(r))
		}
	}
	return p
}

// fromClip turns polyclip contours back into shells and holes. Contours are
// split into simple loops first, then nested by containment: loops at even
// depth are shells, loops at odd depth are holes of their nearest container.
func fromClip(p polyclip.Polygon, srid int) (*geom.MultiPolygon, error) {
	var loops [][]vec
	for _, c := range p {
		ring := make([]vec, 0, len(c))
		for _, pt := range c {
			v := vec(pt)
			if len(ring) > 0 && ring[len(ring)-1] == v {
				continue
			}
			ring = append(ring, v)
		}
		for len(ring) > 1 && ring[len(ring)-1] == ring[0] {
			ring = ring[:len(ring)-1]
		}
		for _, l := range splitLoops(ring) {
			if l = dropCollinear(l); l != nil && signedArea(l) != 0 {
				loops = append(loops, l)
			}
		}
	}
	return buildMultiPolygon(nestLoops(loops), srid)
}

func nestLoops(loops [][]vec) [][][]vec {
	n := len(loops)
	areas := make([]float64, n)
	for i, l := range loops {
		areas[i] = math.Abs(signedArea(l))
	}

	depth := make([]int, n)
	parent := make([]int, n)
	for i := range loops {
		parent[i] = -1
		for j := range loops {
			if i == j || areas[j] <= areas[i] {
				continue
			}
			if ringInsideRing(loops[i], loops[j]) {
				depth[i]++
				if parent[i] == -1 || areas[j] < areas[parent[i]] {
					parent[i] = j
				}
			}
		}
	}

	partOf := make(map[int]int)
	var parts [][][]vec
	for i, l := range loops {
		if depth[i]%2 == 0 {
			partOf[i] = len(parts)
			parts = append(parts, [][]vec{orientRing(l, true)})
		}
	}
	for i, l := range loops {
		if depth[i]%2 == 1 {
			if pi, ok := partOf[parent[i]]; ok {
				parts[pi] = append(parts[pi], orientRing(l, false))
			}
		}
	}
	return parts
}
