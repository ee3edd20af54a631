package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/glacier-retreat/internal/config"
	"github.com/sells-group/glacier-retreat/internal/planner"
)

// addReductionFlags registers the flags that pick a reduction percentage.
func addReductionFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Float64("reduction", 0, "reduction percentage of each glacier's area")
	f.String("scenario", "", "scenario name from the scenario table (e.g. ssp245)")
	f.Int("year", 0, "projection year, used with --scenario")
	cmd.MarkFlagsMutuallyExclusive("reduction", "scenario")
	cmd.MarkFlagsRequiredTogether("scenario", "year")
	cmd.MarkFlagsOneRequired("reduction", "scenario")
}

// loadScenarios returns the configured scenario table, or the built-in one.
func loadScenarios(c *config.Config) (*planner.ScenarioTable, error) {
	if c == nil || c.Scenarios.Path == "" {
		return planner.DefaultScenarios(), nil
	}
	return planner.LoadScenarios(c.Scenarios.Path)
}

// reductionRequest is a percentage given directly or through a scenario.
type reductionRequest struct {
	Pct      float64
	Scenario string
	Year     int
}

func reductionFromFlags(cmd *cobra.Command) (reductionRequest, error) {
	var req reductionRequest
	var err error
	if req.Pct, err = cmd.Flags().GetFloat64("reduction"); err != nil {
		return req, eris.Wrap(err, "read --reduction")
	}
	if req.Scenario, err = cmd.Flags().GetString("scenario"); err != nil {
		return req, eris.Wrap(err, "read --scenario")
	}
	if req.Year, err = cmd.Flags().GetInt("year"); err != nil {
		return req, eris.Wrap(err, "read --year")
	}
	return req, nil
}

// resolve returns the percentage to apply and the scenario target it came
// from, if any.
func (r reductionRequest) resolve(c *config.Config) (float64, *planner.ScenarioTarget, error) {
	if r.Scenario == "" {
		return r.Pct, nil, nil
	}
	table, err := loadScenarios(c)
	if err != nil {
		return 0, nil, err
	}
	target, err := table.Lookup(r.Scenario, r.Year)
	if err != nil {
		return 0, nil, err
	}
	return target.ReductionPct, &target, nil
}
