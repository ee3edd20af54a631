package dispatch

import (
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/glacier-retreat/internal/erosion"
)

// Summary aggregates a batch.
type Summary struct {
	Total    int                    `json:"total"`
	Statuses map[erosion.Status]int `json:"statuses"`
	Failed   int                    `json:"failed"`
	Repaired int                    `json:"repaired"`

	InitialArea  float64 `json:"initial_area"`
	TargetArea   float64 `json:"target_area"`
	AchievedArea float64 `json:"achieved_area"`

	// MeanAbsReductionError and MaxAbsReductionError are in percentage
	// points over records with a positive initial area.
	MeanAbsReductionError float64 `json:"mean_abs_reduction_error"`
	MaxAbsReductionError  float64 `json:"max_abs_reduction_error"`

	Elapsed time.Duration `json:"elapsed"`
}

// Converged counts records that met their target.
func (s Summary) Converged() int {
	return s.Statuses[erosion.Converged] + s.Statuses[erosion.Unchanged]
}

// Summarize aggregates outcomes.
func Summarize(outcomes []Outcome) Summary {
	s := Summary{Total: len(outcomes), Statuses: make(map[erosion.Status]int)}

	var measured int
	var errSum float64
	for _, o := range outcomes {
		if o.Err != nil || o.Result == nil {
			s.Failed++
			continue
		}
		res := o.Result
		s.Statuses[res.Status]++
		if res.RepairApplied {
			s.Repaired++
		}
		s.InitialArea += res.InitialArea
		s.TargetArea += res.TargetArea
		s.AchievedArea += res.AchievedArea

		if res.InitialArea > 0 {
			e := math.Abs(res.ReductionError())
			errSum += e
			measured++
			s.MaxAbsReductionError = math.Max(s.MaxAbsReductionError, e)
		}
	}
	if measured > 0 {
		s.MeanAbsReductionError = errSum / float64(measured)
	}
	return s
}

// Log writes the summary at info level, or warn when any record failed or
// missed its target.
func (s Summary) Log(log *zap.Logger) {
	fields := []zap.Field{
		zap.Int("total", s.Total),
		zap.Int("converged", s.Converged()),
		zap.Int("non_convergent", s.Statuses[erosion.NonConvergent]+s.Statuses[erosion.IterationLimit]),
		zap.Int("invalid_input", s.Statuses[erosion.InvalidInput]),
		zap.Int("failed", s.Failed),
		zap.Int("repaired", s.Repaired),
		zap.Float64("mean_abs_reduction_error", s.MeanAbsReductionError),
		zap.Float64("max_abs_reduction_error", s.MaxAbsReductionError),
		zap.Duration("elapsed", s.Elapsed),
	}
	if s.Failed > 0 || s.Converged()+s.Statuses[erosion.InvalidInput] < s.Total {
		log.Warn("dispatch: batch complete with issues", fields...)
		return
	}
	log.Info("dispatch: batch complete", fields...)
}
