package geometry

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"
)

// FromPolygon wraps p as a single-part MultiPolygon with the same SRID.
func FromPolygon(p *geom.Polygon) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(p.Layout()).SetSRID(p.SRID())
	if p.NumLinearRings() == 0 {
		return mp, nil
	}
	if err := mp.Push(p); err != nil {
		return nil, eris.Wrap(err, "geometry: wrap polygon")
	}
	return mp, nil
}

// ToMultiPolygon converts a Polygon or MultiPolygon into a MultiPolygon.
func ToMultiPolygon(g geom.T) (*geom.MultiPolygon, error) {
	switch t := g.(type) {
	case *geom.MultiPolygon:
		return t, nil
	case *geom.Polygon:
		return FromPolygon(t)
	case nil:
		return nil, eris.New("geometry: nil geometry")
	default:
		return nil, eris.Errorf("geometry: unsupported geometry type %T", g)
	}
}

// ParseWKT decodes a POLYGON or MULTIPOLYGON WKT string.
func ParseWKT(s string) (*geom.MultiPolygon, error) {
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return nil, eris.Wrap(err, "geometry: parse WKT")
	}
	return ToMultiPolygon(g)
}

// FormatWKT encodes g as WKT.
func FormatWKT(g *geom.MultiPolygon) (string, error) {
	if g == nil {
		return "", eris.New("geometry: format nil geometry")
	}
	s, err := wkt.Marshal(g)
	if err != nil {
		return "", eris.Wrap(err, "geometry: format WKT")
	}
	return s, nil
}

// ringVecs returns the XY coordinates of a ring without the closing point and
// without consecutive duplicates.
func ringVecs(lr *geom.LinearRing) []vec {
	flat := lr.FlatCoords()
	stride := lr.Stride()
	out := make([]vec, 0, len(flat)/stride)
	for i := 0; i+1 < len(flat); i += stride {
		v := vec{flat[i], flat[i+1]}
		if len(out) > 0 && out[len(out)-1] == v {
			continue
		}
		out = append(out, v)
	}
	for len(out) > 1 && out[len(out)-1] == out[0] {
		out = out[:len(out)-1]
	}
	return out
}

// partsOf extracts every part of g as a list of open rings, shell first.
func partsOf(g *geom.MultiPolygon) [][][]vec {
	parts := make([][][]vec, 0, g.NumPolygons())
	for i := 0; i < g.NumPolygons(); i++ {
		p := g.Polygon(i)
		rings := make([][]vec, 0, p.NumLinearRings())
		for j := 0; j < p.NumLinearRings(); j++ {
			rings = append(rings, ringVecs(p.LinearRing(j)))
		}
		parts = append(parts, rings)
	}
	return parts
}

// buildMultiPolygon closes every ring and assembles an XY MultiPolygon.
func buildMultiPolygon(parts [][][]vec, srid int) (*geom.MultiPolygon, error) {
	mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)
	for _, rings := range parts {
		if len(rings) == 0 {
			continue
		}
		var flat []float64
		ends := make([]int, 0, len(rings))
		for _, r := range rings {
			for _, v := range r {
				flat = append(flat, v.X, v.Y)
			}
			flat = append(flat, r[0].X, r[0].Y)
			ends = append(ends, len(flat))
		}
		if err := mp.Push(geom.NewPolygonFlat(geom.XY, flat, ends)); err != nil {
			return nil, eris.Wrap(err, "geometry: assemble multipolygon")
		}
	}
	return mp, nil
}
