package erosion

import (
	"math"

	"github.com/rotisserie/eris"
)

// Search defaults.
const (
	DefaultTolerance     = 0.01
	DefaultAreaScale     = 1.0
	DefaultStep          = 0.001
	DefaultMaxIterations = 10000
)

// Strategy selects how the solver searches for the offset distance.
type Strategy int

const (
	// Bisect brackets the offset between zero and half the smaller side of
	// the bounding box and halves the bracket until the area is in band.
	Bisect Strategy = iota + 1
	// Linear grows the offset by a fixed step. Once a step overshoots the
	// band the last bracket is refined by bisection.
	Linear
)

// String returns the strategy name.
func (s Strategy) String() string {
	switch s {
	case Bisect:
		return "bisect"
	case Linear:
		return "linear"
	default:
		return "unknown"
	}
}

// ParseStrategy converts a string into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "bisect", "binary", "":
		return Bisect, nil
	case "linear", "step":
		return Linear, nil
	default:
		return 0, eris.Errorf("unknown strategy: %q (valid: bisect, linear)", s)
	}
}

// Options tunes the offset search.
type Options struct {
	// Tolerance is the accepted absolute distance between achieved and
	// target area, in scaled units. Zero selects the default.
	Tolerance float64
	// AreaScale converts engine area units into comparison units, e.g.
	// 1e-6 for m² to km².
	AreaScale float64
	// Step is the linear offset increment in geometry distance units.
	Step float64
	// MaxIterations caps offset evaluations per record.
	MaxIterations int
	Strategy      Strategy
}

// DefaultOptions returns the default search options.
func DefaultOptions() Options {
	return Options{
		Tolerance:     DefaultTolerance,
		AreaScale:     DefaultAreaScale,
		Step:          DefaultStep,
		MaxIterations: DefaultMaxIterations,
		Strategy:      Bisect,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Tolerance == 0 {
		o.Tolerance = d.Tolerance
	}
	if o.AreaScale == 0 {
		o.AreaScale = d.AreaScale
	}
	if o.Step == 0 {
		o.Step = d.Step
	}
	if o.MaxIterations == 0 {
		o.MaxIterations = d.MaxIterations
	}
	if o.Strategy == 0 {
		o.Strategy = d.Strategy
	}
	return o
}

// Validate rejects options the search cannot run with.
func (o Options) Validate() error {
	switch {
	case o.Tolerance < 0 || !finite(o.Tolerance):
		return eris.Errorf("erosion: tolerance must be a finite non-negative number, got %v", o.Tolerance)
	case o.AreaScale <= 0 || !finite(o.AreaScale):
		return eris.Errorf("erosion: area scale must be positive, got %v", o.AreaScale)
	case o.Step <= 0 || !finite(o.Step):
		return eris.Errorf("erosion: step must be positive, got %v", o.Step)
	case o.MaxIterations < 1:
		return eris.Errorf("erosion: max iterations must be at least 1, got %d", o.MaxIterations)
	case o.Strategy != Bisect && o.Strategy != Linear:
		return eris.Errorf("erosion: unknown strategy %d", int(o.Strategy))
	}
	return nil
}

func finite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
