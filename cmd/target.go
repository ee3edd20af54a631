package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/sells-group/glacier-retreat/internal/planner"
)

var targetCmd = &cobra.Command{
	Use:   "target",
	Short: "Compute target areas for a reduction",
	Long: `Print the area left after applying a reduction percentage to each --area,
one per line. The percentage is given directly or looked up from a scenario
and year. Percentages outside 0-100 are applied as given.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		areas, _ := cmd.Flags().GetFloat64Slice("area")
		req, err := reductionFromFlags(cmd)
		if err != nil {
			return err
		}
		pct, _, err := req.resolve(cfg)
		if err != nil {
			return err
		}
		return writeTargets(cmd.OutOrStdout(), areas, pct)
	},
}

func writeTargets(w io.Writer, areas []float64, pct float64) error {
	for _, a := range planner.TargetAreas(areas, pct) {
		if _, err := fmt.Fprintf(w, "%g\n", a); err != nil {
			return err
		}
	}
	return nil
}

func init() {
	targetCmd.Flags().Float64Slice("area", nil, "current area (repeatable or comma-separated)")
	_ = targetCmd.MarkFlagRequired("area")
	addReductionFlags(targetCmd)

	rootCmd.AddCommand(targetCmd)
}
