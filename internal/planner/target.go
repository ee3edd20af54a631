// Package planner converts projected glacier area reductions into target
// areas and holds the scenario/year reduction tables they come from.
package planner

// TargetArea returns the area left after removing reductionPct percent of
// currentArea. Percentages outside [0, 100] are not clamped: negative values
// grow the target and values above 100 make it negative.
func TargetArea(currentArea, reductionPct float64) float64 {
	return currentArea * (1 - reductionPct/100)
}

// TargetAreas applies one reduction percentage to every area.
func TargetAreas(areas []float64, reductionPct float64) []float64 {
	out := make([]float64, len(areas))
	for i, a := range areas {
		out[i] = TargetArea(a, reductionPct)
	}
	return out
}

// ReductionPct is the inverse of TargetArea: the percentage by which
// achievedArea falls short of initialArea. Zero when initialArea is zero.
func ReductionPct(initialArea, achievedArea float64) float64 {
	if initialArea == 0 {
		return 0
	}
	return (initialArea - achievedArea) / initialArea * 100
}
