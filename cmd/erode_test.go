package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/twpayne/go-geom"

	"github.com/sells-group/glacier-retreat/internal/config"
	"github.com/sells-group/glacier-retreat/internal/geometry"
)

const squareWKT = "POLYGON ((0 0, 10 0, 10 10, 0 10, 0 0))"

func testConfig() *config.Config {
	c := &config.Config{}
	c.Engine.Name = geometry.PlanarEngineName
	c.Engine.QuadSegments = 8
	c.Erosion.Tolerance = 0.01
	c.Erosion.AreaScale = 1
	c.Erosion.Step = 0.001
	c.Erosion.MaxIterations = 10000
	c.Erosion.Strategy = "bisect"
	c.Dispatch.Workers = 2
	return c
}

func decodeReport(t *testing.T, buf *bytes.Buffer) erodeReport {
	t.Helper()
	var report erodeReport
	require.NoError(t, json.Unmarshal(buf.Bytes(), &report))
	return report
}

func TestErode_Reduction(t *testing.T) {
	records, err := parseRecords([]string{squareWKT, "POLYGON ((0 0, 20 0, 20 5, 0 5, 0 0))"}, []string{"sq"})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, erode(context.Background(), testConfig(), records, reductionRequest{Pct: 25}, &buf))

	report := decodeReport(t, &buf)
	require.Len(t, report.Records, 2)
	assert.Equal(t, "sq", report.Records[0].ID)
	assert.Equal(t, "wkt-1", report.Records[1].ID)
	assert.InDelta(t, 25.0, report.ReductionPct, 1e-12)
	assert.Nil(t, report.Scenario)
	assert.Equal(t, 2, report.Summary.Total)

	for _, r := range report.Records {
		assert.True(t, r.OK, r.Status.String())
		assert.InDelta(t, 75.0, r.AchievedArea, 0.01)
		assert.InDelta(t, 25.0, r.TargetReductionPct, 1e-9)
		assert.Empty(t, r.Error)

		g, err := geometry.ParseWKT(r.WKT)
		require.NoError(t, err)
		assert.InDelta(t, 75.0, geometry.Area(g), 0.01)
	}
}

// wideFailEngine is the planar engine except that it refuses to offset any
// geometry wider than 15 units.
type wideFailEngine struct {
	*geometry.Planar
}

func (e wideFailEngine) InwardOffset(g *geom.MultiPolygon, d float64) (*geom.MultiPolygon, error) {
	if w, _ := geometry.Extent(g); w > 15 {
		return nil, eris.New("offset refused")
	}
	return e.Planar.InwardOffset(g, d)
}

func init() {
	geometry.Register("wide-fail", func(opts geometry.Options) (geometry.Engine, error) {
		return wideFailEngine{geometry.NewPlanar(opts)}, nil
	})
}

func TestErode_FailedRecordsReturnError(t *testing.T) {
	c := testConfig()
	c.Engine.Name = "wide-fail"

	records, err := parseRecords([]string{squareWKT, "POLYGON ((0 0, 20 0, 20 5, 0 5, 0 0))"}, []string{"ok", "wide"})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = erode(context.Background(), c, records, reductionRequest{Pct: 25}, &buf)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 records failed")
	assert.Contains(t, err.Error(), "wide")

	report := decodeReport(t, &buf)
	require.Len(t, report.Records, 2)
	assert.True(t, report.Records[0].OK)
	assert.Empty(t, report.Records[0].Error)
	assert.False(t, report.Records[1].OK)
	assert.Contains(t, report.Records[1].Error, "offset refused")
}

func TestErode_Scenario(t *testing.T) {
	records, err := parseRecords([]string{squareWKT}, nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	req := reductionRequest{Scenario: "ssp585", Year: 2100}
	require.NoError(t, erode(context.Background(), testConfig(), records, req, &buf))

	report := decodeReport(t, &buf)
	require.NotNil(t, report.Scenario)
	assert.Equal(t, "ssp585", report.Scenario.Scenario)
	assert.InDelta(t, 78.96, report.ReductionPct, 1e-12)
	assert.InDelta(t, 21.04, report.Records[0].AchievedArea, 0.01)
}

func TestErode_ScenarioFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "scenarios.yaml")
	require.NoError(t, os.WriteFile(path, []byte("scenarios:\n  custom:\n    2030: 50\n"), 0644))

	c := testConfig()
	c.Scenarios.Path = path

	pct, target, err := reductionRequest{Scenario: "custom", Year: 2030}.resolve(c)
	require.NoError(t, err)
	assert.InDelta(t, 50.0, pct, 1e-12)
	assert.Equal(t, 2030, target.Year)

	_, _, err = reductionRequest{Scenario: "ssp245", Year: 2050}.resolve(c)
	assert.Error(t, err)
}

func TestErode_UnknownEngine(t *testing.T) {
	c := testConfig()
	c.Engine.Name = "nope"

	records, err := parseRecords([]string{squareWKT}, nil)
	require.NoError(t, err)
	err = erode(context.Background(), c, records, reductionRequest{Pct: 10}, &bytes.Buffer{})
	assert.Error(t, err)
}

func TestParseRecords_Errors(t *testing.T) {
	_, err := parseRecords([]string{"LINESTRING (0 0, 1 1)"}, nil)
	assert.Error(t, err)

	_, err = parseRecords([]string{squareWKT}, []string{"a", "b"})
	assert.Error(t, err)
}

func TestFormatScenarios(t *testing.T) {
	table, err := loadScenarios(nil)
	require.NoError(t, err)

	var buf bytes.Buffer
	formatScenarios(&buf, table)
	out := buf.String()
	assert.Contains(t, out, "SCENARIO")
	assert.Contains(t, out, "ssp245")
	assert.Contains(t, out, "78.96")
}

func TestTargetCommand(t *testing.T) {
	t.Setenv("GLACIER_LOG_LEVEL", "error")
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"target", "--area", "200", "--reduction", "25"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, "150\n", buf.String())
}

func TestWriteTargets(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, writeTargets(&buf, []float64{200, 40, 0}, 25))
	assert.Equal(t, "150\n30\n0\n", buf.String())
}
