package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Global configuration structure.
type Global struct {
	// Cleaning and profiling
	MissingThreshold     float64 `mapstructure:"missing_threshold" yaml:"missing_threshold"`
	SampleRows           int     `mapstructure:"sample_rows" yaml:"sample_rows"`
	TopValues            int     `mapstructure:"top_values" yaml:"top_values"`
	OutlierIQRMultiplier float64 `mapstructure:"outlier_iqr_multiplier" yaml:"outlier_iqr_multiplier"`
	RandomSeed           uint64  `mapstructure:"random_seed" yaml:"random_seed"`
	MaxRows              int     `mapstructure:"max_rows" yaml:"max_rows"`

	// Output
	OutputFormat  string `mapstructure:"output_format" yaml:"output_format"`
	OutputDir     string `mapstructure:"output_dir" yaml:"output_dir"`
	ReportType    string `mapstructure:"report_type" yaml:"report_type"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins"`

	// Logging
	LogLevel  string `mapstructure:"log_level" yaml:"log_level"`
	LogFormat string `mapstructure:"log_format" yaml:"log_format"`
}

// Defaults returns the built-in configuration.
func Defaults() *Global {
	return &Global{
		MissingThreshold:     0.7,
		SampleRows:           10,
		TopValues:            10,
		OutlierIQRMultiplier: 1.5,
		RandomSeed:           42,
		OutputFormat:         "markdown",
		ReportType:           "product_level_evaluation",
		HistogramBins:        30,
		LogLevel:             "info",
		LogFormat:            "console",
	}
}

// defaultMap mirrors Defaults keyed by config key.
func defaultMap() map[string]any {
	d := Defaults()
	return map[string]any{
		"missing_threshold":      d.MissingThreshold,
		"sample_rows":            d.SampleRows,
		"top_values":             d.TopValues,
		"outlier_iqr_multiplier": d.OutlierIQRMultiplier,
		"random_seed":            d.RandomSeed,
		"max_rows":               d.MaxRows,
		"output_format":          d.OutputFormat,
		"output_dir":             d.OutputDir,
		"report_type":            d.ReportType,
		"histogram_bins":         d.HistogramBins,
		"log_level":              d.LogLevel,
		"log_format":             d.LogFormat,
	}
}

// Keys lists the configuration keys in sorted order.
func Keys() []string {
	m := defaultMap()
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// DefaultPath is ~/.tabprofile/config.yaml.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".tabprofile", "config.yaml"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.tabprofile/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	path := cfgFile
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return err
		}
		path = p
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir config dir: %w", err)
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. Flags are applied by the caller.
func Load(cfgFile string) (*Global, error) {
	// .env in the working directory never overrides the real environment
	if _, err := os.Stat(".env"); err == nil {
		_ = godotenv.Load(".env")
	}
	v := viper.New()
	v.SetEnvPrefix("TABPROFILE")
	v.AutomaticEnv()
	for k, d := range defaultMap() {
		v.SetDefault(k, d)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("resolve home dir: %w", err)
		}
		v.AddConfigPath(filepath.Join(home, ".tabprofile"))
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		// optional read
		_ = v.ReadInConfig()
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the profiler cannot work with.
func (c *Global) Validate() error {
	switch {
	case c.MissingThreshold <= 0 || c.MissingThreshold > 1:
		return fmt.Errorf("missing_threshold must be in (0, 1], got %g", c.MissingThreshold)
	case c.SampleRows < 0:
		return fmt.Errorf("sample_rows must not be negative, got %d", c.SampleRows)
	case c.TopValues < 0:
		return fmt.Errorf("top_values must not be negative, got %d", c.TopValues)
	case c.OutlierIQRMultiplier <= 0:
		return fmt.Errorf("outlier_iqr_multiplier must be positive, got %g", c.OutlierIQRMultiplier)
	case c.MaxRows < 0:
		return fmt.Errorf("max_rows must not be negative, got %d", c.MaxRows)
	case c.HistogramBins < 0:
		return fmt.Errorf("histogram_bins must not be negative, got %d", c.HistogramBins)
	}
	return nil
}

// Set assigns a value by key, parsing it to the field's type.
func (c *Global) Set(key, value string) error {
	var err error
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "missing_threshold":
		c.MissingThreshold, err = strconv.ParseFloat(value, 64)
	case "sample_rows":
		c.SampleRows, err = strconv.Atoi(value)
	case "top_values":
		c.TopValues, err = strconv.Atoi(value)
	case "outlier_iqr_multiplier":
		c.OutlierIQRMultiplier, err = strconv.ParseFloat(value, 64)
	case "random_seed":
		c.RandomSeed, err = strconv.ParseUint(value, 10, 64)
	case "max_rows":
		c.MaxRows, err = strconv.Atoi(value)
	case "output_format":
		c.OutputFormat = value
	case "output_dir":
		c.OutputDir = value
	case "report_type":
		c.ReportType = value
	case "histogram_bins":
		c.HistogramBins, err = strconv.Atoi(value)
	case "log_level":
		c.LogLevel = value
	case "log_format":
		c.LogFormat = value
	default:
		return fmt.Errorf("unknown key: %s (available: %s)", key, strings.Join(Keys(), ", "))
	}
	if err != nil {
		return fmt.Errorf("invalid value for %s: %w", key, err)
	}
	return c.Validate()
}
