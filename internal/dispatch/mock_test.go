package dispatch

import (
	"context"

	"github.com/stretchr/testify/mock"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/glacier-retreat/internal/erosion"
	"github.com/sells-group/glacier-retreat/internal/geometry"
	"github.com/sells-group/glacier-retreat/internal/glacier"
)

// mockSolver is a testify mock of Solver.
type mockSolver struct {
	mock.Mock
}

func (m *mockSolver) Area(g *geom.MultiPolygon) float64 {
	return geometry.Area(g)
}

func (m *mockSolver) Solve(ctx context.Context, index int, rec glacier.Record, targetArea float64) (*erosion.Result, error) {
	args := m.Called(ctx, index, rec.ID, targetArea)
	res, _ := args.Get(0).(*erosion.Result)
	return res, args.Error(1)
}
