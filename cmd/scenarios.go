package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/sells-group/glacier-retreat/internal/planner"
)

var scenariosCmd = &cobra.Command{
	Use:   "scenarios",
	Short: "List scenario reduction projections",
	Long:  "List the scenario/year reduction percentages from scenarios.path, or the built-in SSP projections when unset.",
	RunE: func(cmd *cobra.Command, _ []string) error {
		table, err := loadScenarios(cfg)
		if err != nil {
			return err
		}
		formatScenarios(cmd.OutOrStdout(), table)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scenariosCmd)
}

func formatScenarios(w io.Writer, table *planner.ScenarioTable) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "SCENARIO\tYEAR\tREDUCTION %")
	for _, t := range table.Targets() {
		fmt.Fprintf(tw, "%s\t%d\t%.2f\n", t.Scenario, t.Year, t.ReductionPct)
	}
	tw.Flush()
}
