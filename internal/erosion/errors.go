package erosion

import (
	"errors"
	"fmt"
)

// ErrTopologyDefect matches a TopologyError with errors.Is.
var ErrTopologyDefect = errors.New("erosion: topology defect")

// TopologyError reports an eroded geometry that repair could not make valid.
// It is fatal for that record only.
type TopologyError struct {
	Index    int
	RecordID string
	Offset   float64
	Area     float64
	Err      error
}

func (e *TopologyError) Error() string {
	return fmt.Sprintf("erosion: record %s (index %d): repair failed at offset %g, area %g: %v",
		e.RecordID, e.Index, e.Offset, e.Area, e.Err)
}

func (e *TopologyError) Unwrap() error {
	return e.Err
}

// Is matches ErrTopologyDefect.
func (e *TopologyError) Is(target error) bool {
	return target == ErrTopologyDefect
}

// SolveError reports a geometry engine failure during the search.
type SolveError struct {
	Index    int
	RecordID string
	Offset   float64
	Area     float64
	Err      error
}

func (e *SolveError) Error() string {
	return fmt.Sprintf("erosion: record %s (index %d): offset %g failed, last area %g: %v",
		e.RecordID, e.Index, e.Offset, e.Area, e.Err)
}

func (e *SolveError) Unwrap() error {
	return e.Err
}
