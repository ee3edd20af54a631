package dispatch

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/glacier-retreat/internal/erosion"
	"github.com/sells-group/glacier-retreat/internal/geometry"
	"github.com/sells-group/glacier-retreat/internal/glacier"
)

func rectRecord(id string, w, h float64) glacier.Record {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{{{0, 0}, {w, 0}, {w, h}, {0, h}, {0, 0}}},
	})
	return glacier.Record{ID: id, Geometry: mp, Attributes: map[string]any{"id": id}}
}

func lRecord(id string, s float64) glacier.Record {
	mp := geom.NewMultiPolygon(geom.XY).MustSetCoords([][][]geom.Coord{
		{{{0, 0}, {10 * s, 0}, {10 * s, 4 * s}, {4 * s, 4 * s}, {4 * s, 10 * s}, {0, 10 * s}, {0, 0}}},
	})
	return glacier.Record{ID: id, Geometry: mp}
}

func testRecords() []glacier.Record {
	return []glacier.Record{
		rectRecord("a", 10, 10),
		rectRecord("b", 20, 5),
		lRecord("c", 1),
		{ID: "empty", Geometry: geom.NewMultiPolygon(geom.XY)},
		rectRecord("d", 3, 30),
		lRecord("e", 2.5),
	}
}

func planarSolver(t *testing.T) *erosion.Solver {
	t.Helper()
	s, err := erosion.NewSolver(geometry.NewPlanar(geometry.Options{}), erosion.Options{})
	require.NoError(t, err)
	return s
}

func TestRun_SequentialMatchesParallel(t *testing.T) {
	t.Parallel()

	records := testRecords()
	reductions := []float64{25, 40, 10, 50, 60, 33}
	solver := planarSolver(t)

	seq, err := NewRunner(solver, 1).Run(context.Background(), records, reductions)
	require.NoError(t, err)
	par, err := NewRunner(solver, 8).Run(context.Background(), records, reductions)
	require.NoError(t, err)

	require.Len(t, seq.Outcomes, len(records))
	require.Len(t, par.Outcomes, len(records))
	assert.NotEqual(t, seq.RunID, par.RunID)

	for i := range records {
		s, p := seq.Outcomes[i], par.Outcomes[i]
		require.NoError(t, s.Err)
		require.NoError(t, p.Err)
		assert.Equal(t, i, p.Index)
		assert.Equal(t, records[i].ID, p.RecordID)
		assert.Equal(t, i, p.Result.Index)
		assert.Equal(t, s.Result.Status, p.Result.Status)
		assert.Equal(t, s.Result.Offset, p.Result.Offset)
		assert.Equal(t, s.Result.AchievedArea, p.Result.AchievedArea)
		assert.Equal(t, s.Result.Geometry.FlatCoords(), p.Result.Geometry.FlatCoords())
	}
}

func TestRun_ConvergesEveryRecord(t *testing.T) {
	t.Parallel()

	records := testRecords()
	batch, err := NewRunner(planarSolver(t), 4).RunUniform(context.Background(), records, 30)
	require.NoError(t, err)

	for i, o := range batch.Outcomes {
		res := o.Result
		require.NotNil(t, res, "record %d", i)
		if records[i].ID == "empty" {
			assert.Equal(t, erosion.InvalidInput, res.Status)
			continue
		}
		assert.Equal(t, erosion.Converged, res.Status, "record %s", records[i].ID)
		assert.InDelta(t, res.TargetArea, res.AchievedArea, erosion.DefaultTolerance)
		assert.NoError(t, geometry.Validate(res.Geometry))
	}

	assert.Equal(t, len(records), batch.Summary.Total)
	assert.Equal(t, len(records)-1, batch.Summary.Converged())
	assert.Equal(t, 1, batch.Summary.Statuses[erosion.InvalidInput])
	assert.Zero(t, batch.Summary.Failed)
	assert.Less(t, batch.Summary.MaxAbsReductionError, 0.1)
}

func TestRun_FailureDoesNotAbortSiblings(t *testing.T) {
	t.Parallel()

	records := []glacier.Record{rectRecord("ok-1", 10, 10), rectRecord("bad", 10, 10), rectRecord("ok-2", 10, 10)}

	m := new(mockSolver)
	m.On("Solve", mock.Anything, 0, "ok-1", 75.0).Return(&erosion.Result{Index: 0, Status: erosion.Converged, InitialArea: 100, TargetArea: 75, AchievedArea: 75}, nil)
	m.On("Solve", mock.Anything, 1, "bad", 75.0).Return(nil, &erosion.TopologyError{Index: 1, RecordID: "bad", Err: errors.New("boom")})
	m.On("Solve", mock.Anything, 2, "ok-2", 75.0).Return(&erosion.Result{Index: 2, Status: erosion.Converged, InitialArea: 100, TargetArea: 75, AchievedArea: 75}, nil)

	batch, err := NewRunner(m, 2).RunUniform(context.Background(), records, 25)
	require.NoError(t, err)

	assert.NotNil(t, batch.Outcomes[0].Result)
	assert.ErrorIs(t, batch.Outcomes[1].Err, erosion.ErrTopologyDefect)
	assert.Nil(t, batch.Outcomes[1].Result)
	assert.NotNil(t, batch.Outcomes[2].Result)

	failures := batch.Failures()
	require.Len(t, failures, 1)
	assert.Equal(t, "bad", failures[0].RecordID)
	assert.Equal(t, 1, batch.Summary.Failed)
	assert.Equal(t, 2, batch.Summary.Converged())
	m.AssertExpectations(t)
}

type panicSolver struct{}

func (panicSolver) Area(g *geom.MultiPolygon) float64 { return geometry.Area(g) }

func (panicSolver) Solve(_ context.Context, index int, rec glacier.Record, _ float64) (*erosion.Result, error) {
	if rec.ID == "boom" {
		panic("engine exploded")
	}
	return &erosion.Result{Index: index, RecordID: rec.ID, Status: erosion.Unchanged}, nil
}

func TestRun_PanicIsolated(t *testing.T) {
	t.Parallel()

	records := []glacier.Record{rectRecord("a", 1, 1), rectRecord("boom", 1, 1), rectRecord("c", 1, 1)}
	batch, err := NewRunner(panicSolver{}, 3).RunUniform(context.Background(), records, 10)
	require.NoError(t, err)

	assert.NoError(t, batch.Outcomes[0].Err)
	require.Error(t, batch.Outcomes[1].Err)
	assert.Contains(t, batch.Outcomes[1].Err.Error(), "engine exploded")
	assert.NoError(t, batch.Outcomes[2].Err)
}

func TestRun_LengthMismatch(t *testing.T) {
	t.Parallel()

	_, err := NewRunner(planarSolver(t), 2).Run(context.Background(), testRecords(), []float64{10})
	assert.Error(t, err)
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()

	batch, err := NewRunner(planarSolver(t), 2).Run(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, batch.Outcomes)
	assert.Zero(t, batch.Summary.Total)
}

// countingSolver cancels the run after the first solve.
type countingSolver struct {
	cancel context.CancelFunc
	calls  atomic.Int32
}

func (c *countingSolver) Area(g *geom.MultiPolygon) float64 { return geometry.Area(g) }

func (c *countingSolver) Solve(_ context.Context, index int, rec glacier.Record, target float64) (*erosion.Result, error) {
	c.calls.Add(1)
	c.cancel()
	return &erosion.Result{Index: index, RecordID: rec.ID, TargetArea: target, Status: erosion.Converged}, nil
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records := make([]glacier.Record, 20)
	for i := range records {
		records[i] = rectRecord(fmt.Sprintf("r%d", i), 10, 10)
	}
	solver := &countingSolver{cancel: cancel}

	batch, err := NewRunner(solver, 1).RunUniform(ctx, records, 25)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, batch)

	assert.Equal(t, int32(1), solver.calls.Load())
	assert.NotNil(t, batch.Outcomes[0].Result)
	for _, o := range batch.Outcomes[1:] {
		assert.ErrorIs(t, o.Err, context.Canceled)
	}
	assert.Equal(t, len(records)-1, batch.Summary.Failed)
}

func TestNewRunner_DefaultWorkers(t *testing.T) {
	t.Parallel()

	assert.Greater(t, NewRunner(planarSolver(t), 0).Workers(), 0)
	assert.Equal(t, 3, NewRunner(planarSolver(t), 3).Workers())
}
