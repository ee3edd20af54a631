package erosion

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/glacier-retreat/internal/planner"
)

// Status is the outcome class of one solve.
type Status int

const (
	// Unchanged means no erosion was needed: the area already met the target.
	Unchanged Status = iota + 1
	// Converged means the achieved area is within tolerance of the target.
	Converged
	// InvalidInput means the input was empty or had no area. The geometry is
	// returned as given.
	InvalidInput
	// NonConvergent means the search ran out of room without entering the
	// tolerance band, typically because the polygon collapsed.
	NonConvergent
	// IterationLimit means the evaluation cap was hit before convergence.
	IterationLimit
)

var statusNames = map[Status]string{
	Unchanged:      "unchanged",
	Converged:      "converged",
	InvalidInput:   "invalid_input",
	NonConvergent:  "non_convergent",
	IterationLimit: "iteration_limit",
}

// String returns the status name.
func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return "unknown"
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a status name.
func (s *Status) UnmarshalText(b []byte) error {
	for k, v := range statusNames {
		if v == string(b) {
			*s = k
			return nil
		}
	}
	return eris.Errorf("erosion: unknown status %q", string(b))
}

// OK reports whether the result meets its target: unchanged or converged.
func (s Status) OK() bool {
	return s == Unchanged || s == Converged
}

// Result is the outcome of eroding one record.
type Result struct {
	Index      int                `json:"index"`
	RecordID   string             `json:"record_id,omitempty"`
	Attributes map[string]any     `json:"attributes,omitempty"`
	Geometry   *geom.MultiPolygon `json:"-"`

	InitialArea  float64 `json:"initial_area"`
	TargetArea   float64 `json:"target_area"`
	AchievedArea float64 `json:"achieved_area"`

	Offset        float64 `json:"offset"`
	Iterations    int     `json:"iterations"`
	RepairApplied bool    `json:"repair_applied"`
	// Repairs counts repaired evaluations over the whole search.
	Repairs int    `json:"repairs"`
	Status  Status `json:"status"`
}

// TargetReductionPct is the requested reduction in percent of InitialArea.
func (r *Result) TargetReductionPct() float64 {
	return planner.ReductionPct(r.InitialArea, r.TargetArea)
}

// ActualReductionPct is the achieved reduction in percent of InitialArea.
func (r *Result) ActualReductionPct() float64 {
	return planner.ReductionPct(r.InitialArea, r.AchievedArea)
}

// ReductionError is actual minus target reduction, in percentage points.
func (r *Result) ReductionError() float64 {
	return r.ActualReductionPct() - r.TargetReductionPct()
}
