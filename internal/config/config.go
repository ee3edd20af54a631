package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/glacier-retreat/internal/erosion"
	"github.com/sells-group/glacier-retreat/internal/geometry"
)

// Config holds the full application configuration.
type Config struct {
	Engine    EngineConfig    `yaml:"engine" mapstructure:"engine"`
	Erosion   ErosionConfig   `yaml:"erosion" mapstructure:"erosion"`
	Dispatch  DispatchConfig  `yaml:"dispatch" mapstructure:"dispatch"`
	Scenarios ScenariosConfig `yaml:"scenarios" mapstructure:"scenarios"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// EngineConfig selects the geometry engine.
type EngineConfig struct {
	Name         string `yaml:"name" mapstructure:"name"`
	QuadSegments int    `yaml:"quad_segments" mapstructure:"quad_segments"`
}

// ErosionConfig tunes the offset search.
type ErosionConfig struct {
	Tolerance     float64 `yaml:"tolerance" mapstructure:"tolerance"`
	AreaScale     float64 `yaml:"area_scale" mapstructure:"area_scale"`
	Step          float64 `yaml:"step" mapstructure:"step"`
	MaxIterations int     `yaml:"max_iterations" mapstructure:"max_iterations"`
	Strategy      string  `yaml:"strategy" mapstructure:"strategy"`
}

// DispatchConfig configures the worker pool. Zero workers means GOMAXPROCS.
type DispatchConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ScenariosConfig points at an optional scenario table. Empty uses the
// built-in SSP projections.
type ScenariosConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("GLACIER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("engine.name", geometry.PlanarEngineName)
	v.SetDefault("engine.quad_segments", geometry.DefaultQuadSegments)
	v.SetDefault("erosion.tolerance", erosion.DefaultTolerance)
	v.SetDefault("erosion.area_scale", 1e-6)
	v.SetDefault("erosion.step", erosion.DefaultStep)
	v.SetDefault("erosion.max_iterations", erosion.DefaultMaxIterations)
	v.SetDefault("erosion.strategy", erosion.Bisect.String())
	v.SetDefault("dispatch.workers", 0)
	v.SetDefault("scenarios.path", "")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the values the solver and runner depend on.
func (c *Config) Validate() error {
	var problems []string
	if c.Engine.Name == "" {
		problems = append(problems, "engine.name is required")
	}
	if c.Engine.QuadSegments < 1 {
		problems = append(problems, "engine.quad_segments must be > 0")
	}
	if c.Dispatch.Workers < 0 {
		problems = append(problems, "dispatch.workers must be >= 0")
	}
	if _, err := erosion.ParseStrategy(c.Erosion.Strategy); err != nil {
		problems = append(problems, "erosion.strategy must be bisect or linear")
	}
	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}

	opts, err := c.ErosionOptions()
	if err != nil {
		return err
	}
	if err := opts.Validate(); err != nil {
		return eris.Wrap(err, "config: erosion")
	}
	return nil
}

// ErosionOptions converts the erosion section into solver options.
func (c *Config) ErosionOptions() (erosion.Options, error) {
	strategy, err := erosion.ParseStrategy(c.Erosion.Strategy)
	if err != nil {
		return erosion.Options{}, eris.Wrap(err, "config: erosion.strategy")
	}
	return erosion.Options{
		Tolerance:     c.Erosion.Tolerance,
		AreaScale:     c.Erosion.AreaScale,
		Step:          c.Erosion.Step,
		MaxIterations: c.Erosion.MaxIterations,
		Strategy:      strategy,
	}, nil
}

// EngineOptions converts the engine section into engine options.
func (c *Config) EngineOptions() geometry.Options {
	return geometry.Options{QuadSegments: c.Engine.QuadSegments}
}

// InitLogger installs the global zap logger. Format is "json" or "console";
// command, when set, is attached to every entry.
func InitLogger(cfg LogConfig, command string) error {
	var zapCfg zap.Config
	switch cfg.Format {
	case "console":
		zapCfg = zap.NewDevelopmentConfig()
	case "json", "":
		zapCfg = zap.NewProductionConfig()
	default:
		return eris.Errorf("config: unknown log format %q", cfg.Format)
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)
	zapCfg.DisableStacktrace = true
	if command != "" {
		zapCfg.InitialFields = map[string]any{"command": command}
	}

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
