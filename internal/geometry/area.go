package geometry

import (
	"math"

	"github.com/twpayne/go-geom"
)

// Area returns the planar area of g: for each part, the absolute shoelace area
// of the shell minus the absolute areas of its holes. Never negative.
func Area(g *geom.MultiPolygon) float64 {
	if g == nil {
		return 0
	}
	var total float64
	for i := 0; i < g.NumPolygons(); i++ {
		total += PolygonArea(g.Polygon(i))
	}
	return total
}

// PolygonArea returns the planar area of a single polygon, clamped at zero.
func PolygonArea(p *geom.Polygon) float64 {
	if p == nil || p.NumLinearRings() == 0 {
		return 0
	}
	a := math.Abs(signedArea(ringVecs(p.LinearRing(0))))
	for i := 1; i < p.NumLinearRings(); i++ {
		a -= math.Abs(signedArea(ringVecs(p.LinearRing(i))))
	}
	return math.Max(a, 0)
}

// IsEmpty reports whether g is nil or has no parts with coordinates.
func IsEmpty(g *geom.MultiPolygon) bool {
	if g == nil {
		return true
	}
	for i := 0; i < g.NumPolygons(); i++ {
		if g.Polygon(i).NumLinearRings() > 0 {
			return false
		}
	}
	return true
}

// Extent returns the width and height of the bounding box of g.
func Extent(g *geom.MultiPolygon) (width, height float64) {
	if IsEmpty(g) {
		return 0, 0
	}
	b := g.Bounds()
	return b.Max(0) - b.Min(0), b.Max(1) - b.Min(1)
}
