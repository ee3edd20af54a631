package main

import (
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/glacier-retreat/internal/config"
	_ "github.com/sells-group/glacier-retreat/internal/geometry/geos" // registers the geos engine in -tags geos builds
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "glacier-retreat",
	Short: "Erode glacier outlines to projected areas",
	Long: `glacier-retreat projects glacier outlines forward under an area-loss scenario.

Each outline is shrunk by one uniform inward offset, found by search, so that
its remaining area matches the scenario's reduction for the requested year.
Settings come from ./config.yaml and GLACIER_* environment variables; the
--log-level and --log-format flags override the log section.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		c, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		cfg = c
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, _ []string) {
		_ = zap.L().Sync()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.String("log-level", "", "override log.level (debug, info, warn, error)")
	pf.String("log-format", "", "override log.format (json, console)")
}

// loadConfig reads configuration, applies flag overrides and installs the
// logger for cmd.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	c, err := config.Load()
	if err != nil {
		return nil, eris.Wrap(err, "glacier-retreat: load config")
	}
	if v, _ := cmd.Flags().GetString("log-level"); v != "" {
		c.Log.Level = v
	}
	if v, _ := cmd.Flags().GetString("log-format"); v != "" {
		c.Log.Format = v
	}
	if err := config.InitLogger(c.Log, cmd.Name()); err != nil {
		return nil, eris.Wrap(err, "glacier-retreat: init logger")
	}
	return c, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
