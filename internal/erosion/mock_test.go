package erosion

import (
	"math"

	"github.com/stretchr/testify/mock"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/glacier-retreat/internal/geometry"
)

// mockEngine is a testify mock of geometry.Engine.
type mockEngine struct {
	mock.Mock
}

func (m *mockEngine) Area(g *geom.MultiPolygon) float64 {
	args := m.Called(g)
	return args.Get(0).(float64)
}

func (m *mockEngine) InwardOffset(g *geom.MultiPolygon, distance float64) (*geom.MultiPolygon, error) {
	args := m.Called(g, distance)
	mp, _ := args.Get(0).(*geom.MultiPolygon)
	return mp, args.Error(1)
}

func (m *mockEngine) Repair(g *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	args := m.Called(g)
	mp, _ := args.Get(0).(*geom.MultiPolygon)
	return mp, args.Error(1)
}

func (m *mockEngine) IsValid(g *geom.MultiPolygon) bool {
	args := m.Called(g)
	return args.Bool(0)
}

// rectEngine erodes axis-aligned rectangles exactly by shrinking their
// bounds. With spike set, every eroded shell carries a zero-area spike at
// its first vertex, which validation rejects and repair removes.
type rectEngine struct {
	spike bool
}

func (rectEngine) Area(g *geom.MultiPolygon) float64 {
	return geometry.Area(g)
}

func (e rectEngine) InwardOffset(g *geom.MultiPolygon, d float64) (*geom.MultiPolygon, error) {
	b := g.Bounds()
	x0, y0 := b.Min(0)+d, b.Min(1)+d
	x1, y1 := b.Max(0)-d, b.Max(1)-d
	if x1 <= x0 || y1 <= y0 {
		return geom.NewMultiPolygon(geom.XY), nil
	}
	shell := []geom.Coord{{x0, y0}, {x1, y0}, {x1, y1}, {x0, y1}, {x0, y0}}
	if e.spike {
		shell = append([]geom.Coord{{x0, y0}, {x0 - 1, y0 - 1}}, shell...)
	}
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{{shell}}), nil
}

func (rectEngine) Repair(g *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	return geometry.NewPlanar(geometry.Options{}).Repair(g)
}

func (rectEngine) IsValid(g *geom.MultiPolygon) bool {
	return geometry.Validate(g) == nil
}

// jumpEngine keeps a 10x10 square intact below offset 3 and drops it to a
// square of area 50 from offset 3 on, so no offset produces an area between.
type jumpEngine struct{}

func (jumpEngine) Area(g *geom.MultiPolygon) float64 {
	return geometry.Area(g)
}

func (jumpEngine) InwardOffset(_ *geom.MultiPolygon, d float64) (*geom.MultiPolygon, error) {
	side := 10.0
	if d >= 3 {
		side = math.Sqrt(50)
	}
	return geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{{{0, 0}, {side, 0}, {side, side}, {0, side}, {0, 0}}},
	}), nil
}

func (jumpEngine) Repair(g *geom.MultiPolygon) (*geom.MultiPolygon, error) {
	return g, nil
}

func (jumpEngine) IsValid(g *geom.MultiPolygon) bool {
	return geometry.Validate(g) == nil
}
