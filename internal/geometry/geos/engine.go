//go:build geos

package geos

import (
	"sync"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkb"
	gogeos "github.com/twpayne/go-geos"

	"github.com/sells-group/glacier-retreat/internal/geometry"
)

// EngineName is the registry name of the GEOS engine.
const EngineName = "geos"

func init() {
	geometry.Register(EngineName, func(opts geometry.Options) (geometry.Engine, error) {
		return New(opts), nil
	})
}

// Engine implements geometry.Engine with GEOS. A GEOS context must not be
// shared between goroutines, so every call borrows one from a pool and all
// intermediate geometries stay inside that context.
type Engine struct {
	quadSegments int
	contexts     sync.Pool
}

var _ geometry.Engine = (*Engine)(nil)

// New returns a GEOS engine.
func New(opts geometry.Options) *Engine {
	qs := opts.QuadSegments
	if qs <= 0 {
		qs = geometry.DefaultQuadSegments
	}
	return &Engine{
		quadSegments: qs,
		contexts: sync.Pool{
			New: func() any { return gogeos.NewContext() },
		},
	}
}

// Area implements geometry.Engine.
func (e *Engine) Area(g *geom.MultiPolygon) float64 {
	var area float64
	err := e.with(g, func(ctx *gogeos.Context, gg *gogeos.Geom) (*gogeos.Geom, error) {
		area = gg.Area()
		return nil, nil
	}, nil)
	if err != nil {
		return geometry.Area(g)
	}
	return area
}

// IsValid implements geometry.Engine.
func (e *Engine) IsValid(g *geom.MultiPolygon) bool {
	valid := false
	err := e.with(g, func(ctx *gogeos.Context, gg *gogeos.Geom) (*gogeos.Geom, error) {
		valid = gg.IsValid()
		return nil, nil
	}, nil)
	return err == nil && valid
}

// InwardOffset implements geometry.Engine with a negative buffer.
func (e *Engine) InwardOffset(g *geom.MultiPolygon, distance float64) (*geom.MultiPolygon, error) {
	if g == nil {
		return nil, eris.New("geos: offset nil geometry")
	}
	if distance <= 0 || geometry.IsEmpty(g) {
		return g.Clone(), nil
	}
	var out *geom.MultiPolygon
	err := e.with(g, func(ctx *gogeos.Context, gg *gogeos.Geom) (*gogeos.Geom, error) {
		return gg.Buffer(-distance, e.quadSegments), nil
	}, &out)
	if err != nil {
		return nil, eris.Wrapf(err, "geos: buffer %g", -distance)
	}
	return out, nil
}

// Repair implements geometry.Engine with MakeValid, keeping polygonal output.
func (e *Engine) Repair(g *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	if g == nil {
		return nil, eris.New("geos: repair nil geometry")
	}
	var out *geom.MultiPolygon
	err := e.with(g, func(ctx *gogeos.Context, gg *gogeos.Geom) (*gogeos.Geom, error) {
		return gg.MakeValid(), nil
	}, &out)
	if err != nil {
		return nil, eris.Wrap(err, "geos: make valid")
	}
	return out, nil
}

// with converts g into a pooled context, runs fn and, when out is non-nil,
// converts the returned geometry back. GEOS reports failures by panicking
// with a *gogeos.Error; those are turned into errors here.
func (e *Engine) with(g *geom.MultiPolygon, fn func(*gogeos.Context, *gogeos.Geom) (*gogeos.Geom, error), out **geom.MultiPolygon) (err error) {
	if g == nil {
		return eris.New("geos: nil geometry")
	}
	data, err := wkb.Marshal(g, wkb.NDR)
	if err != nil {
		return eris.Wrap(err, "geos: encode WKB")
	}

	ctx := e.contexts.Get().(*gogeos.Context)
	defer e.contexts.Put(ctx)
	defer func() {
		if r := recover(); r != nil {
			err = eris.Errorf("geos: %v", r)
		}
	}()

	gg, err := ctx.NewGeomFromWKB(data)
	if err != nil {
		return eris.Wrap(err, "geos: decode WKB")
	}

	res, err := fn(ctx, gg)
	if err != nil || out == nil {
		return err
	}
	if res == nil {
		return eris.New("geos: operation returned no geometry")
	}

	mp, err := polygonal(res.ToWKB(), g.SRID())
	if err != nil {
		return err
	}
	*out = mp
	return nil
}

// polygonal decodes WKB and keeps only its polygonal parts. MakeValid can
// return collections that mix collapsed lines and points with polygons.
func polygonal(data []byte, srid int) (*geom.MultiPolygon, error) {
	t, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, eris.Wrap(err, "geos: decode result WKB")
	}

	mp := geom.NewMultiPolygon(geom.XY).SetSRID(srid)
	var push func(geom.T) error
	push = func(t geom.T) error {
		switch g := t.(type) {
		case *geom.Polygon:
			if g.Empty() {
				return nil
			}
			return mp.Push(xy(g))
		case *geom.MultiPolygon:
			for i := 0; i < g.NumPolygons(); i++ {
				if err := push(g.Polygon(i)); err != nil {
					return err
				}
			}
		case *geom.GeometryCollection:
			for _, c := range g.Geoms() {
				if err := push(c); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := push(t); err != nil {
		return nil, eris.Wrap(err, "geos: collect polygons")
	}
	return mp, nil
}

// xy drops any Z or M ordinates.
func xy(p *geom.Polygon) *geom.Polygon {
	if p.Layout() == geom.XY {
		return p
	}
	stride := p.Stride()
	flat := p.FlatCoords()
	out := make([]float64, 0, len(flat)/stride*2)
	ends := make([]int, 0, p.NumLinearRings())
	start := 0
	for _, end := range p.Ends() {
		for i := start; i < end; i += stride {
			out = append(out, flat[i], flat[i+1])
		}
		ends = append(ends, len(out))
		start = end
	}
	return geom.NewPolygonFlat(geom.XY, out, ends)
}
