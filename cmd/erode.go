package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/glacier-retreat/internal/config"
	"github.com/sells-group/glacier-retreat/internal/dispatch"
	"github.com/sells-group/glacier-retreat/internal/erosion"
	"github.com/sells-group/glacier-retreat/internal/geometry"
	"github.com/sells-group/glacier-retreat/internal/glacier"
	"github.com/sells-group/glacier-retreat/internal/planner"
)

var erodeCmd = &cobra.Command{
	Use:   "erode",
	Short: "Erode WKT polygons to a projected area",
	Long: `Erode one or more WKT polygons by a uniform inward offset until each
reaches the area left by the requested reduction. Results are written to
stdout as JSON, one report per input in input order.

Areas are compared after multiplying by erosion.area_scale (default 1e-6,
square metres to square kilometres), so the tolerance is in scaled units.

Examples:
  # Shrink a 10x10 square by a quarter, comparing raw units
  GLACIER_EROSION_AREA_SCALE=1 glacier-retreat erode \
    --wkt 'POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))' --reduction 25

  # Use the SSP5-8.5 projection for 2100
  glacier-retreat erode --wkt "$(cat outline.wkt)" --scenario ssp585 --year 2100`,
	RunE: runErode,
}

func init() {
	f := erodeCmd.Flags()
	f.StringArray("wkt", nil, "POLYGON or MULTIPOLYGON WKT (repeatable)")
	f.StringArray("id", nil, "record id for the matching --wkt (repeatable)")
	addReductionFlags(erodeCmd)
	_ = erodeCmd.MarkFlagRequired("wkt")

	rootCmd.AddCommand(erodeCmd)
}

func runErode(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cfg.Validate(); err != nil {
		return err
	}

	wkts, _ := cmd.Flags().GetStringArray("wkt")
	ids, _ := cmd.Flags().GetStringArray("id")
	req, err := reductionFromFlags(cmd)
	if err != nil {
		return err
	}

	records, err := parseRecords(wkts, ids)
	if err != nil {
		return err
	}
	return erode(ctx, cfg, records, req, cmd.OutOrStdout())
}

// parseRecords builds records from WKT, naming them by ids where given.
func parseRecords(wkts, ids []string) ([]glacier.Record, error) {
	if len(ids) > len(wkts) {
		return nil, eris.Errorf("erode: %d ids for %d polygons", len(ids), len(wkts))
	}
	records := make([]glacier.Record, len(wkts))
	for i, s := range wkts {
		id := fmt.Sprintf("wkt-%d", i)
		if i < len(ids) {
			id = ids[i]
		}
		rec, err := glacier.ParseRecord(id, s, nil)
		if err != nil {
			return nil, eris.Wrapf(err, "erode: polygon %d", i)
		}
		records[i] = rec
	}
	return records, nil
}

// erodeReport is the JSON document written by erode.
type erodeReport struct {
	RunID        uuid.UUID               `json:"run_id"`
	Scenario     *planner.ScenarioTarget `json:"scenario,omitempty"`
	ReductionPct float64                 `json:"reduction_pct"`
	Engine       string                  `json:"engine"`
	Records      []recordReport          `json:"records"`
	Summary      dispatch.Summary        `json:"summary"`
}

// recordReport is one glacier's line in the report.
type recordReport struct {
	Index              int            `json:"index"`
	ID                 string         `json:"id"`
	Status             erosion.Status `json:"status,omitempty"`
	OK                 bool           `json:"ok"`
	InitialArea        float64        `json:"initial_area"`
	TargetArea         float64        `json:"target_area"`
	AchievedArea       float64        `json:"achieved_area"`
	TargetReductionPct float64        `json:"target_reduction_pct"`
	ActualReductionPct float64        `json:"actual_reduction_pct"`
	Offset             float64        `json:"offset"`
	Iterations         int            `json:"iterations"`
	RepairApplied      bool           `json:"repair_applied"`
	WKT                string         `json:"wkt,omitempty"`
	Error              string         `json:"error,omitempty"`
}

func erode(ctx context.Context, c *config.Config, records []glacier.Record, req reductionRequest, w io.Writer) error {
	pct, scenario, err := req.resolve(c)
	if err != nil {
		return err
	}

	engine, err := geometry.Open(c.Engine.Name, c.EngineOptions())
	if err != nil {
		return err
	}
	opts, err := c.ErosionOptions()
	if err != nil {
		return err
	}
	solver, err := erosion.NewSolver(engine, opts)
	if err != nil {
		return err
	}

	runner := dispatch.NewRunner(solver, c.Dispatch.Workers)
	zap.L().Info("erode: starting",
		zap.Int("records", len(records)),
		zap.Float64("reduction_pct", pct),
		zap.String("engine", c.Engine.Name),
		zap.String("strategy", opts.Strategy.String()),
		zap.Int("workers", runner.Workers()),
	)

	batch, err := runner.RunUniform(ctx, records, pct)
	if err != nil {
		return err
	}

	report := erodeReport{
		RunID:        batch.RunID,
		Scenario:     scenario,
		ReductionPct: pct,
		Engine:       c.Engine.Name,
		Records:      make([]recordReport, len(batch.Outcomes)),
		Summary:      batch.Summary,
	}
	for i, o := range batch.Outcomes {
		report.Records[i], err = newRecordReport(o)
		if err != nil {
			return err
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return eris.Wrap(err, "erode: encode report")
	}

	if failed := batch.Failures(); len(failed) > 0 {
		return eris.Errorf("erode: %d of %d records failed, first %s: %v",
			len(failed), len(batch.Outcomes), failed[0].RecordID, failed[0].Err)
	}
	return nil
}

func newRecordReport(o dispatch.Outcome) (recordReport, error) {
	r := recordReport{Index: o.Index, ID: o.RecordID}
	if o.Err != nil {
		r.Error = o.Err.Error()
		return r, nil
	}
	res := o.Result
	r.Status = res.Status
	r.OK = res.Status.OK()
	r.InitialArea = res.InitialArea
	r.TargetArea = res.TargetArea
	r.AchievedArea = res.AchievedArea
	r.TargetReductionPct = res.TargetReductionPct()
	r.ActualReductionPct = res.ActualReductionPct()
	r.Offset = res.Offset
	r.Iterations = res.Iterations
	r.RepairApplied = res.RepairApplied
	if res.Geometry != nil {
		s, err := geometry.FormatWKT(res.Geometry)
		if err != nil {
			return r, eris.Wrapf(err, "erode: record %s", o.RecordID)
		}
		r.WKT = s
	}
	return r, nil
}
