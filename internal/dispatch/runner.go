// Package dispatch fans erosion solves out over a bounded worker pool and
// collects the outcomes back in input order.
package dispatch

import (
	"context"
	"runtime"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/glacier-retreat/internal/erosion"
	"github.com/sells-group/glacier-retreat/internal/glacier"
	"github.com/sells-group/glacier-retreat/internal/planner"
)

// Solver is the per-record erosion capability the runner drives.
type Solver interface {
	Area(g *geom.MultiPolygon) float64
	Solve(ctx context.Context, index int, rec glacier.Record, targetArea float64) (*erosion.Result, error)
}

// Outcome is the result or the error for one input index.
type Outcome struct {
	Index    int             `json:"index"`
	RecordID string          `json:"record_id,omitempty"`
	Result   *erosion.Result `json:"result,omitempty"`
	Err      error           `json:"-"`
}

// Batch is the index-aligned output of one run.
type Batch struct {
	RunID    uuid.UUID `json:"run_id"`
	Outcomes []Outcome `json:"outcomes"`
	Summary  Summary   `json:"summary"`
}

// Failures returns the outcomes that carry an error.
func (b *Batch) Failures() []Outcome {
	var out []Outcome
	for _, o := range b.Outcomes {
		if o.Err != nil {
			out = append(out, o)
		}
	}
	return out
}

// Runner solves a batch of records concurrently.
type Runner struct {
	solver  Solver
	workers int
}

// NewRunner builds a runner. workers <= 0 uses GOMAXPROCS.
func NewRunner(solver Solver, workers int) *Runner {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Runner{solver: solver, workers: workers}
}

// Workers returns the pool size.
func (r *Runner) Workers() int {
	return r.workers
}

// RunUniform applies one reduction percentage to every record.
func (r *Runner) RunUniform(ctx context.Context, records []glacier.Record, reductionPct float64) (*Batch, error) {
	reductions := make([]float64, len(records))
	for i := range reductions {
		reductions[i] = reductionPct
	}
	return r.Run(ctx, records, reductions)
}

// Run solves records[i] towards reductions[i] percent of its own area.
// A failing record is reported in its outcome and never stops the others.
// When ctx is cancelled, records that had not started carry the context
// error and Run returns the partial batch with that error.
func (r *Runner) Run(ctx context.Context, records []glacier.Record, reductions []float64) (*Batch, error) {
	if len(records) != len(reductions) {
		return nil, eris.Errorf("dispatch: %d records but %d reductions", len(records), len(reductions))
	}

	batch := &Batch{
		RunID:    uuid.New(),
		Outcomes: make([]Outcome, len(records)),
	}
	log := zap.L().With(zap.String("run_id", batch.RunID.String()))
	log.Info("dispatch: starting batch",
		zap.Int("records", len(records)),
		zap.Int("workers", r.workers),
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)

	for i, rec := range records {
		g.Go(func() error {
			batch.Outcomes[i] = r.solveOne(gctx, i, rec, reductions[i])
			return nil // per-record failures live in the outcome
		})
	}
	_ = g.Wait()

	batch.Summary = Summarize(batch.Outcomes)
	batch.Summary.Elapsed = time.Since(start)
	batch.Summary.Log(log)

	if err := ctx.Err(); err != nil {
		return batch, eris.Wrap(err, "dispatch: batch cancelled")
	}
	return batch, nil
}

func (r *Runner) solveOne(ctx context.Context, index int, rec glacier.Record, reductionPct float64) (out Outcome) {
	out = Outcome{Index: index, RecordID: rec.ID}
	defer func() {
		if p := recover(); p != nil {
			out.Result = nil
			out.Err = eris.Errorf("dispatch: record %s panicked: %v", rec.Label(index), p)
		}
	}()

	if err := ctx.Err(); err != nil {
		out.Err = eris.Wrapf(err, "dispatch: record %s not started", rec.Label(index))
		return out
	}

	target := planner.TargetArea(r.solver.Area(rec.Geometry), reductionPct)
	res, err := r.solver.Solve(ctx, index, rec, target)
	if err != nil {
		zap.L().Warn("dispatch: record failed",
			zap.Int("index", index),
			zap.String("record", rec.Label(index)),
			zap.Error(err),
		)
		out.Err = err
		return out
	}
	out.Result = res
	return out
}
