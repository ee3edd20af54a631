package geometry

import (
	sfgeom "github.com/peterstace/simplefeatures/geom"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
)

// ValidationError reports a MultiPolygon that breaks OGC simple-features
// validity.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return "geometry: invalid multipolygon: " + e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks g against the OGC validity rules: closed simple rings, holes
// inside their shell, connected interiors and parts that meet only at points.
// A nil or empty MultiPolygon is valid.
func Validate(g *geom.MultiPolygon) error {
	if IsEmpty(g) {
		return nil
	}
	b, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return eris.Wrap(err, "geometry: encode for validation")
	}
	sg, err := sfgeom.UnmarshalWKB(b, sfgeom.NoValidate{})
	if err == nil {
		err = sg.Validate()
	}
	if err != nil {
		return &ValidationError{Err: err}
	}
	return nil
}
