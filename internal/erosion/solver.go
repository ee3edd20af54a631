// Package erosion shrinks glacier outlines to a target area by searching for
// the inward offset distance whose eroded area lands within tolerance.
package erosion

import (
	"context"
	"errors"
	"maps"
	"math"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/glacier-retreat/internal/geometry"
	"github.com/sells-group/glacier-retreat/internal/glacier"
	"github.com/sells-group/glacier-retreat/internal/planner"
)

// bracketEpsilon is the relative width at which a bisection bracket is
// considered collapsed.
const bracketEpsilon = 1e-12

// collapseMargin pushes the initial bisection bound just past the half-width
// of the bounding box so opposite edges never meet exactly.
const collapseMargin = 1e-6

// errIterationLimit stops the search when the evaluation cap is reached.
var errIterationLimit = errors.New("erosion: iteration limit reached")

// Solver erodes one record at a time. It holds no per-solve state and is safe
// for concurrent use as long as its engine is.
type Solver struct {
	engine geometry.Engine
	opts   Options
}

// NewSolver builds a solver over engine. Zero-valued options take defaults.
func NewSolver(engine geometry.Engine, opts Options) (*Solver, error) {
	if engine == nil {
		return nil, eris.New("erosion: nil geometry engine")
	}
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return &Solver{engine: engine, opts: opts}, nil
}

// Options returns the effective options.
func (s *Solver) Options() Options {
	return s.opts
}

// Area returns the area of g in scaled comparison units.
func (s *Solver) Area(g *geom.MultiPolygon) float64 {
	if g == nil {
		return 0
	}
	return s.engine.Area(g) * s.opts.AreaScale
}

// SolveReduction erodes rec by reductionPct percent of its own area.
func (s *Solver) SolveReduction(ctx context.Context, index int, rec glacier.Record, reductionPct float64) (*Result, error) {
	return s.Solve(ctx, index, rec, planner.TargetArea(s.Area(rec.Geometry), reductionPct))
}

// sample is one evaluated offset.
type sample struct {
	offset   float64
	area     float64
	geom     *geom.MultiPolygon
	repaired bool
}

// search carries the state of one Solve call.
type search struct {
	s      *Solver
	ctx    context.Context
	index  int
	label  string
	input  *geom.MultiPolygon
	target float64

	origin     sample
	iterations int
	repairs    int
	best       sample
	haveBest   bool
}

// Solve erodes rec until its area is within tolerance of targetArea.
// targetArea is in scaled units. The record is never mutated.
//
// Non-convergence is reported through Result.Status. An error is returned
// only for context cancellation, engine failures (*SolveError) and failed
// repairs (*TopologyError).
func (s *Solver) Solve(ctx context.Context, index int, rec glacier.Record, targetArea float64) (*Result, error) {
	res := &Result{
		Index:      index,
		RecordID:   rec.ID,
		Attributes: maps.Clone(rec.Attributes),
		TargetArea: targetArea,
	}
	label := rec.Label(index)

	if math.IsNaN(targetArea) {
		return nil, eris.Errorf("erosion: record %s: target area is NaN", label)
	}

	if rec.Geometry == nil || geometry.IsEmpty(rec.Geometry) {
		if rec.Geometry != nil {
			res.Geometry = rec.Geometry.Clone()
		}
		res.Status = InvalidInput
		zap.L().Debug("erosion: empty input geometry", zap.String("record", label), zap.Int("index", index))
		return res, nil
	}

	initial := s.Area(rec.Geometry)
	res.InitialArea = initial
	res.AchievedArea = initial
	if !(initial > 0) {
		res.Geometry = rec.Geometry.Clone()
		res.Status = InvalidInput
		zap.L().Debug("erosion: input geometry has no area",
			zap.String("record", label),
			zap.Int("index", index),
			zap.Float64("area", initial),
		)
		return res, nil
	}

	res.Geometry = rec.Geometry.Clone()
	switch {
	case initial <= targetArea:
		res.Status = Unchanged
		return res, nil
	case initial-targetArea <= s.opts.Tolerance:
		res.Status = Converged
		return res, nil
	}

	sr := &search{
		s:      s,
		ctx:    ctx,
		index:  index,
		label:  label,
		input:  rec.Geometry,
		target: targetArea,
		origin: sample{area: initial, geom: res.Geometry},
	}

	var (
		smp    sample
		status Status
		err    error
	)
	if s.opts.Strategy == Linear {
		smp, status, err = sr.linear()
	} else {
		smp, status, err = sr.bisect()
	}
	switch {
	case errors.Is(err, errIterationLimit):
		smp, status = sr.origin, IterationLimit
		if sr.haveBest {
			smp = sr.best
		}
	case err != nil:
		return nil, err
	}

	res.Geometry = smp.geom
	res.AchievedArea = smp.area
	res.Offset = smp.offset
	res.RepairApplied = smp.repaired
	res.Iterations = sr.iterations
	res.Repairs = sr.repairs
	res.Status = status

	fields := []zap.Field{
		zap.String("record", label),
		zap.Int("index", index),
		zap.Float64("initial_area", initial),
		zap.Float64("target_area", targetArea),
		zap.Float64("achieved_area", smp.area),
		zap.Float64("offset", smp.offset),
		zap.Int("iterations", sr.iterations),
		zap.Bool("repair_applied", smp.repaired),
	}
	if status == Converged {
		zap.L().Debug("erosion: converged", fields...)
	} else {
		zap.L().Warn("erosion: did not converge", append(fields, zap.String("status", status.String()))...)
	}
	return res, nil
}

// linear steps the offset by Step until the area enters the band. A step
// that jumps below the band hands the last bracket to bisection.
func (sr *search) linear() (sample, Status, error) {
	prev := sr.origin
	for k := 1; ; k++ {
		smp, err := sr.eval(float64(k) * sr.s.opts.Step)
		if err != nil {
			return sample{}, 0, err
		}
		switch {
		case sr.inBand(smp):
			return smp, Converged, nil
		case smp.area < sr.target:
			return sr.refine(prev, smp)
		case smp.area == 0:
			return smp, NonConvergent, nil
		}
		prev = smp
	}
}

// bisect starts from the half-width of the bounding box, where any polygon
// has collapsed, and widens only if the engine says otherwise.
func (sr *search) bisect() (sample, Status, error) {
	w, h := geometry.Extent(sr.input)
	lo := sr.origin
	hi, err := sr.eval(math.Min(w, h) / 2 * (1 + collapseMargin))
	if err != nil {
		return sample{}, 0, err
	}
	for hi.area > sr.target && !sr.inBand(hi) {
		if hi.area == 0 {
			return hi, NonConvergent, nil
		}
		lo = hi
		if hi, err = sr.eval(hi.offset * 2); err != nil {
			return sample{}, 0, err
		}
	}
	if sr.inBand(hi) {
		return hi, Converged, nil
	}
	return sr.refine(lo, hi)
}

// refine bisects between lo (area above the band) and hi (area below it).
// When the bracket collapses without entering the band the area jumps across
// it, and the lower-side sample is reported.
func (sr *search) refine(lo, hi sample) (sample, Status, error) {
	for {
		mid := lo.offset + (hi.offset-lo.offset)/2
		if hi.offset-lo.offset <= bracketEpsilon*math.Max(1, hi.offset) || mid <= lo.offset || mid >= hi.offset {
			return hi, NonConvergent, nil
		}
		smp, err := sr.eval(mid)
		if err != nil {
			return sample{}, 0, err
		}
		switch {
		case sr.inBand(smp):
			return smp, Converged, nil
		case smp.area > sr.target:
			lo = smp
		default:
			hi = smp
		}
	}
}

func (sr *search) inBand(smp sample) bool {
	return math.Abs(smp.area-sr.target) <= sr.s.opts.Tolerance
}

// eval erodes the input by offset, repairing invalid output before it is
// measured.
func (sr *search) eval(offset float64) (sample, error) {
	if err := sr.ctx.Err(); err != nil {
		return sample{}, eris.Wrapf(err, "erosion: record %s cancelled at offset %g", sr.label, offset)
	}
	if sr.iterations >= sr.s.opts.MaxIterations {
		return sample{}, errIterationLimit
	}
	sr.iterations++

	e := sr.s.engine
	eroded, err := e.InwardOffset(sr.input, offset)
	if err != nil {
		return sample{}, &SolveError{
			Index:    sr.index,
			RecordID: sr.label,
			Offset:   offset,
			Area:     sr.origin.area,
			Err:      err,
		}
	}

	smp := sample{offset: offset, geom: eroded}
	if !geometry.IsEmpty(eroded) && !e.IsValid(eroded) {
		fixed, err := e.Repair(eroded)
		if err == nil && !e.IsValid(fixed) {
			err = eris.New("repaired geometry is still invalid")
		}
		if err != nil {
			return sample{}, &TopologyError{
				Index:    sr.index,
				RecordID: sr.label,
				Offset:   offset,
				Area:     e.Area(eroded) * sr.s.opts.AreaScale,
				Err:      err,
			}
		}
		smp.geom = fixed
		smp.repaired = true
		sr.repairs++
	}
	smp.area = e.Area(smp.geom) * sr.s.opts.AreaScale

	if !sr.haveBest || math.Abs(smp.area-sr.target) < math.Abs(sr.best.area-sr.target) {
		sr.best, sr.haveBest = smp, true
	}
	return smp, nil
}
