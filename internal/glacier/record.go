// Package glacier holds the glacier outline record passed through erosion.
package glacier

import (
	"maps"
	"strconv"

	"github.com/twpayne/go-geom"

	"github.com/sells-group/glacier-retreat/internal/geometry"
)

// Record is one glacier outline plus attributes the erosion core carries
// through without interpreting.
type Record struct {
	ID         string             `json:"id"`
	Geometry   *geom.MultiPolygon `json:"-"`
	Attributes map[string]any     `json:"attributes,omitempty"`
}

// ParseRecord builds a record from WKT.
func ParseRecord(id, wkt string, attrs map[string]any) (Record, error) {
	mp, err := geometry.ParseWKT(wkt)
	if err != nil {
		return Record{}, err
	}
	return Record{ID: id, Geometry: mp, Attributes: attrs}, nil
}

// Area returns the planar area of the record's geometry.
func (r Record) Area() float64 {
	return geometry.Area(r.Geometry)
}

// Clone returns a deep copy: geometry coordinates and the top-level
// attribute map are copied, attribute values are shared.
func (r Record) Clone() Record {
	out := Record{ID: r.ID, Attributes: maps.Clone(r.Attributes)}
	if r.Geometry != nil {
		out.Geometry = r.Geometry.Clone()
	}
	return out
}

// Label identifies the record in logs and errors.
func (r Record) Label(index int) string {
	if r.ID != "" {
		return r.ID
	}
	return "#" + strconv.Itoa(index)
}
