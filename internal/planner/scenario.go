package planner

import (
	"errors"
	"os"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ErrUnknownScenario is returned when a scenario or year is not in the table.
var ErrUnknownScenario = errors.New("planner: unknown scenario")

// ScenarioTarget is the projected reduction for one scenario and year.
type ScenarioTarget struct {
	Scenario     string  `yaml:"scenario" json:"scenario"`
	Year         int     `yaml:"year" json:"year"`
	ReductionPct float64 `yaml:"reduction_pct" json:"reduction_pct"`
}

// ScenarioTable maps scenario name -> year -> reduction percentage.
type ScenarioTable struct {
	Scenarios map[string]map[int]float64 `yaml:"scenarios"`
}

// DefaultScenarios returns the SSP2-4.5 and SSP5-8.5 glacier area reduction
// projections.
func DefaultScenarios() *ScenarioTable {
	return &ScenarioTable{
		Scenarios: map[string]map[int]float64{
			"ssp245": {2024: 23.26, 2050: 34.08, 2075: 52.43, 2100: 60.31},
			"ssp585": {2024: 23.08, 2050: 33.81, 2075: 58.25, 2100: 78.96},
		},
	}
}

// LoadScenarios reads a scenario table from a YAML file.
func LoadScenarios(path string) (*ScenarioTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "planner: read scenarios %s", path)
	}
	return ParseScenarios(data)
}

// ParseScenarios decodes a YAML scenario table.
func ParseScenarios(data []byte) (*ScenarioTable, error) {
	var t ScenarioTable
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, eris.Wrap(err, "planner: parse scenarios")
	}
	if len(t.Scenarios) == 0 {
		return nil, eris.New("planner: scenario table is empty")
	}
	return &t, nil
}

// Lookup returns the reduction for a scenario and year.
func (t *ScenarioTable) Lookup(scenario string, year int) (ScenarioTarget, error) {
	years, ok := t.Scenarios[scenario]
	if !ok {
		return ScenarioTarget{}, eris.Wrapf(ErrUnknownScenario, "scenario %q", scenario)
	}
	pct, ok := years[year]
	if !ok {
		return ScenarioTarget{}, eris.Wrapf(ErrUnknownScenario, "scenario %q has no year %d", scenario, year)
	}
	return ScenarioTarget{Scenario: scenario, Year: year, ReductionPct: pct}, nil
}

// Names returns the scenario names in sorted order.
func (t *ScenarioTable) Names() []string {
	names := make([]string, 0, len(t.Scenarios))
	for name := range t.Scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Years returns the years of a scenario in ascending order.
func (t *ScenarioTable) Years(scenario string) []int {
	years := make([]int, 0, len(t.Scenarios[scenario]))
	for y := range t.Scenarios[scenario] {
		years = append(years, y)
	}
	sort.Ints(years)
	return years
}

// Targets flattens the table into scenario/year order.
func (t *ScenarioTable) Targets() []ScenarioTarget {
	var out []ScenarioTarget
	for _, name := range t.Names() {
		for _, y := range t.Years(name) {
			out = append(out, ScenarioTarget{Scenario: name, Year: y, ReductionPct: t.Scenarios[name][y]})
		}
	}
	return out
}
