package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/KaramelBytes/cmpds-cli/internal/dataset"
	"github.com/KaramelBytes/cmpds-cli/internal/report"
	"github.com/KaramelBytes/cmpds-cli/internal/stats"
	"github.com/KaramelBytes/cmpds-cli/internal/utils"
)

// Values of log_format.
const (
	LogFormatText = "text"
	LogFormatJSON = "json"
)

// Global configuration structure.
type Global struct {
	Confidence   float64 `mapstructure:"confidence" yaml:"confidence"`
	SNDThreshold int     `mapstructure:"snd_threshold" yaml:"snd_threshold"`

	// Critical-value solver
	Tolerance      float64 `mapstructure:"tolerance" yaml:"tolerance"`
	LowerBound     float64 `mapstructure:"lower_bound" yaml:"lower_bound"`
	UpperBound     float64 `mapstructure:"upper_bound" yaml:"upper_bound"`
	MaxIterations  int     `mapstructure:"max_iterations" yaml:"max_iterations"`
	Integration    string  `mapstructure:"integration" yaml:"integration"`
	Intervals      int     `mapstructure:"intervals" yaml:"intervals"`
	LegendrePoints int     `mapstructure:"legendre_points" yaml:"legendre_points"`

	// Dataset ingestion
	MinValue float64 `mapstructure:"min_value" yaml:"min_value"`

	Format       string `mapstructure:"format" yaml:"format"`
	BatchWorkers int    `mapstructure:"batch_workers" yaml:"batch_workers"`

	// Diagnostics on stderr: text or json
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Dir returns ~/.cmpds.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".cmpds"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.cmpds/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("CMPDS")
	v.AutomaticEnv()

	v.SetDefault("confidence", stats.DefaultConfidence)
	v.SetDefault("snd_threshold", stats.DefaultSNDThreshold)
	v.SetDefault("tolerance", stats.DefaultTolerance)
	v.SetDefault("lower_bound", stats.DefaultLowerBound)
	v.SetDefault("upper_bound", stats.DefaultUpperBound)
	v.SetDefault("max_iterations", stats.DefaultMaxIterations)
	v.SetDefault("integration", stats.RuleSimpson)
	v.SetDefault("intervals", stats.DefaultIntervals)
	v.SetDefault("legendre_points", stats.DefaultLegendrePoints)
	v.SetDefault("min_value", dataset.DefaultMinValue)
	v.SetDefault("format", string(report.FormatText))
	v.SetDefault("batch_workers", 4)
	v.SetDefault("log_format", LogFormatText)
	return v
}

// Defaults returns the built-in configuration without reading files or env.
func Defaults() *Global {
	return &Global{
		Confidence:     stats.DefaultConfidence,
		SNDThreshold:   stats.DefaultSNDThreshold,
		Tolerance:      stats.DefaultTolerance,
		LowerBound:     stats.DefaultLowerBound,
		UpperBound:     stats.DefaultUpperBound,
		MaxIterations:  stats.DefaultMaxIterations,
		Integration:    stats.RuleSimpson,
		Intervals:      stats.DefaultIntervals,
		LegendrePoints: stats.DefaultLegendrePoints,
		MinValue:       dataset.DefaultMinValue,
		Format:         string(report.FormatText),
		BatchWorkers:   4,
		LogFormat:      LogFormatText,
	}
}

// Load loads configuration from file, env, and defaults.
// Precedence: flags (cfgFile) > env > config file > defaults.
// A missing ~/.cmpds/config.yaml is ignored; a missing cfgFile is an error
// that satisfies errors.Is(err, fs.ErrNotExist).
func Load(cfgFile string) (*Global, error) {
	v := newViper()
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		implicitMissing := cfgFile == "" && (errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist))
		if !implicitMissing {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &c, nil
}

func (c *Global) legendre() bool {
	switch strings.ToLower(strings.TrimSpace(c.Integration)) {
	case stats.RuleLegendre, "gauss-legendre":
		return true
	}
	return false
}

// IntegrationSize returns the interval or point count for the configured rule.
func (c *Global) IntegrationSize() int {
	if c.legendre() {
		return c.LegendrePoints
	}
	return c.Intervals
}

// SetIntegrationSize sets the interval or point count for the configured rule.
func (c *Global) SetIntegrationSize(n int) {
	if c.legendre() {
		c.LegendrePoints = n
		return
	}
	c.Intervals = n
}

// CompareOptions converts the configuration into comparison options.
func (c *Global) CompareOptions() (stats.Options, error) {
	in, err := stats.NewIntegrator(c.Integration, c.IntegrationSize())
	if err != nil {
		return stats.Options{}, err
	}
	return stats.Options{
		Confidence:    c.Confidence,
		SNDThreshold:  c.SNDThreshold,
		Tolerance:     c.Tolerance,
		LowerBound:    c.LowerBound,
		UpperBound:    c.UpperBound,
		MaxIterations: c.MaxIterations,
		Integrator:    in,
	}, nil
}

// Validate rejects values no comparison could run with.
func (c *Global) Validate() error {
	opt, err := c.CompareOptions()
	if err != nil {
		return err
	}
	if err := opt.Validate(); err != nil {
		return err
	}
	if c.MinValue <= 0 {
		return &stats.ParameterError{Name: "min_value", Value: c.MinValue, Reason: "must be positive"}
	}
	if _, err := report.ParseFormat(c.Format); err != nil {
		return err
	}
	if c.BatchWorkers < 1 {
		return &stats.ParameterError{Name: "batch_workers", Value: c.BatchWorkers, Reason: "must be at least 1"}
	}
	if _, err := c.JSONLogs(); err != nil {
		return err
	}
	return nil
}

// JSONLogs reports whether log_format selects the JSON handler.
func (c *Global) JSONLogs() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(c.LogFormat)) {
	case LogFormatText, "":
		return false, nil
	case LogFormatJSON:
		return true, nil
	}
	return false, &stats.ParameterError{Name: "log_format", Value: c.LogFormat, Reason: "must be text or json"}
}
