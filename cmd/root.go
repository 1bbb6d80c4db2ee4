package cmd

import (
	"fmt"
	"os"

	cfgpkg "github.com/KaramelBytes/tabprofile/internal/config"
	"github.com/KaramelBytes/tabprofile/internal/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var (
	// Global flags
	cfgFile       string
	debug         bool
	flagLogLevel  string
	flagLogFormat string

	// Loaded configuration
	cfg *cfgpkg.Global
	log = zerolog.Nop()
)

var rootCmd = &cobra.Command{
	Use:   "tabprofile",
	Short: "Profile tabular samples: statistics, data quality and charts",
	Long: `tabprofile reads a CSV/TSV/XLSX sample, cleans it (drops sparse columns, fills gaps,
removes duplicate rows) and reports numeric and categorical profiles, completeness,
format consistency and accuracy flags. Reports are written as Markdown, JSON or YAML;
chart data can be rendered to PNG.`,
	SilenceUsage: true,
}

// Execute is the entry point called by main.main()
func Execute() {
	// Initialize configuration before executing commands
	cobra.OnInitialize(loadConfig)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "✗ Error:", err)
		os.Exit(1)
	}
}

func init() {
	// Persistent global flags available to all subcommands
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.tabprofile/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging (same as --log-level debug)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "log level: debug|info|warn|error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&flagLogFormat, "log-format", "", "log format: console|json (overrides config)")
}

func loadConfig() {
	c, err := cfgpkg.Load(cfgFile)
	if err != nil {
		// Non-fatal: fall back to defaults so read-only commands still work
		fmt.Fprintf(os.Stderr, "⚠ Warning: failed to load config: %v\n", err)
		c = cfgpkg.Defaults()
	}
	cfg = c

	level, format := cfg.LogLevel, cfg.LogFormat
	if flagLogLevel != "" {
		level = flagLogLevel
	}
	if debug {
		level = "debug"
	}
	if flagLogFormat != "" {
		format = flagLogFormat
	}
	log = logging.New(level, format, os.Stderr)
	log.Debug().Str("config", cfgFile).Str("level", level).Msg("configuration loaded")
}

// currentConfig returns the loaded configuration, or defaults when commands
// run without OnInitialize (tests).
func currentConfig() *cfgpkg.Global {
	if cfg == nil {
		cfg = cfgpkg.Defaults()
	}
	return cfg
}
