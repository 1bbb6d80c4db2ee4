package cmd

import (
	"fmt"
	"strings"

	"github.com/KaramelBytes/tabprofile/internal/analysis"
	"github.com/KaramelBytes/tabprofile/internal/loader"
	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/spf13/pflag"
)

// inputFlags are the reading and profiling flags shared by every command
// that loads a table.
type inputFlags struct {
	delimiter  string
	decimal    string
	thousands  string
	sheetName  string
	sheetIndex int
	maxRows    int
	sampleRows int
	threshold  float64
}

func (f *inputFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.delimiter, "delimiter", "", "CSV delimiter: ',' | ';' | 'tab' (sniffed if omitted)")
	fs.StringVar(&f.decimal, "decimal", "", "decimal separator for numbers: '.'|'comma'")
	fs.StringVar(&f.thousands, "thousands", "", "thousands separator for numbers: ','|'.'|'space'")
	fs.StringVar(&f.sheetName, "sheet-name", "", "XLSX: sheet name to analyze")
	fs.IntVar(&f.sheetIndex, "sheet-index", 1, "XLSX: 1-based sheet index (used if --sheet-name not provided)")
	fs.IntVar(&f.maxRows, "max-rows", 0, "maximum rows to read (0 = config max_rows)")
	fs.IntVar(&f.sampleRows, "sample-rows", 0, "rows per sample view, at most 10 (0 = config sample_rows)")
	fs.Float64Var(&f.threshold, "threshold", 0, "minimum non-missing fraction for a column to be kept (0 = config missing_threshold)")
}

func (f *inputFlags) reset() {
	*f = inputFlags{sheetIndex: 1}
}

func (f *inputFlags) loaderOptions() (loader.Options, error) {
	c := currentConfig()
	opt := loader.Options{
		SheetName:  f.sheetName,
		SheetIndex: f.sheetIndex,
		MaxRows:    c.MaxRows,
		Logger:     &log,
	}
	if f.maxRows > 0 {
		opt.MaxRows = f.maxRows
	}
	switch f.delimiter {
	case "":
	case ",":
		opt.Delimiter = ','
	case "\t", "tab":
		opt.Delimiter = '\t'
	case ";":
		opt.Delimiter = ';'
	case "|", "pipe":
		opt.Delimiter = '|'
	default:
		return opt, fmt.Errorf("unsupported --delimiter: %s", f.delimiter)
	}
	// Locale separators
	switch strings.ToLower(strings.TrimSpace(f.decimal)) {
	case ",", "comma":
		opt.DecimalSeparator = ','
	case ".", "dot":
		opt.DecimalSeparator = '.'
	case "":
	default:
		return opt, fmt.Errorf("unsupported --decimal: %s (use '.'|'comma')", f.decimal)
	}
	switch strings.ToLower(strings.TrimSpace(f.thousands)) {
	case ",":
		opt.ThousandsSeparator = ','
	case ".":
		opt.ThousandsSeparator = '.'
	case "space", " ":
		opt.ThousandsSeparator = ' '
	case "":
	default:
		return opt, fmt.Errorf("unsupported --thousands: %s (use ','|'.'|'space')", f.thousands)
	}
	if opt.DecimalSeparator != 0 && opt.DecimalSeparator == opt.ThousandsSeparator {
		return opt, fmt.Errorf("--decimal and --thousands must differ")
	}
	return opt, nil
}

func (f *inputFlags) analysisOptions() (analysis.Options, error) {
	c := currentConfig()
	opt := analysis.Options{
		MissingThreshold: c.MissingThreshold,
		SampleRows:       c.SampleRows,
		TopValues:        c.TopValues,
		IQRMultiplier:    c.OutlierIQRMultiplier,
		Seed:             c.RandomSeed,
		Logger:           &log,
	}
	if f.threshold != 0 {
		if f.threshold < 0 || f.threshold > 1 {
			return opt, fmt.Errorf("--threshold must be in (0, 1], got %g", f.threshold)
		}
		opt.MissingThreshold = f.threshold
	}
	if f.sampleRows > 0 {
		opt.SampleRows = f.sampleRows
	}
	return opt, nil
}

// profileFile loads, cleans and profiles one file.
func profileFile(path string, f *inputFlags) (*table.Cleaned, *analysis.Report, error) {
	lopt, err := f.loaderOptions()
	if err != nil {
		return nil, nil, err
	}
	aopt, err := f.analysisOptions()
	if err != nil {
		return nil, nil, err
	}
	t, err := loader.Load(path, lopt)
	if err != nil {
		return nil, nil, err
	}
	c, rep, err := analysis.Profile(t, aopt)
	if err != nil {
		return nil, nil, err
	}
	log.Info().
		Str("file", t.Name).
		Int("rows", rep.Basic.Rows).
		Int("columns", rep.Basic.Columns).
		Int("warnings", len(rep.Warnings)).
		Msg("profiled")
	return c, rep, nil
}
