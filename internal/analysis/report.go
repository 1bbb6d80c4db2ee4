package analysis

import (
	"fmt"
	"math"
	"math/rand/v2"
	"path/filepath"
	"sort"
	"time"

	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// MaxSampleRows caps every sample view.
const MaxSampleRows = 10

// Options controls the analysis pipeline.
type Options struct {
	// MissingThreshold is the minimum non-missing fraction a column needs to
	// survive cleaning. 0 means table.DefaultMissingThreshold.
	MissingThreshold float64
	// SampleRows sizes the head, tail and random views (capped at MaxSampleRows).
	SampleRows int
	// TopValues caps categorical frequency lists.
	TopValues int
	// IQRMultiplier widens or narrows the Tukey fences for outlier counts.
	IQRMultiplier float64
	// Seed makes the random sample view reproducible.
	Seed uint64
	// Logger receives debug and warning events. nil disables logging.
	Logger *zerolog.Logger
}

// DefaultOptions returns the standard profiling settings.
func DefaultOptions() Options {
	return Options{
		MissingThreshold: table.DefaultMissingThreshold,
		SampleRows:       MaxSampleRows,
		TopValues:        DefaultTopValues,
		IQRMultiplier:    DefaultIQRMultiplier,
		Seed:             42,
	}
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// ColumnType pairs a column with its declared storage type.
type ColumnType struct {
	Name string `json:"name" yaml:"name"`
	Type string `json:"type" yaml:"type"`
}

// BasicInfo describes the cleaned table.
type BasicInfo struct {
	Rows              int          `json:"rows" yaml:"rows"`
	Columns           int          `json:"columns" yaml:"columns"`
	OriginalRows      int          `json:"original_rows" yaml:"original_rows"`
	MemoryBytes       int64        `json:"memory_bytes" yaml:"memory_bytes"`
	MemoryMB          float64      `json:"memory_mb" yaml:"memory_mb"`
	ColumnTypes       []ColumnType `json:"column_types" yaml:"column_types"`
	Dropped           []string     `json:"dropped_columns" yaml:"dropped_columns"`
	DuplicatesRemoved int          `json:"duplicates_removed" yaml:"duplicates_removed"`
}

// NumericResult is the profile of one numeric column, or the reason it is
// unavailable.
type NumericResult struct {
	Column      string          `json:"column" yaml:"column"`
	Profile     *NumericProfile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Unavailable string          `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// CategoricalResult is the profile of one categorical column, or the reason
// it is unavailable.
type CategoricalResult struct {
	Column      string              `json:"column" yaml:"column"`
	Profile     *CategoricalProfile `json:"profile,omitempty" yaml:"profile,omitempty"`
	Unavailable string              `json:"unavailable,omitempty" yaml:"unavailable,omitempty"`
}

// Sample is a small slice of rows. Cells are float64, string or nil.
type Sample struct {
	Columns []string `json:"columns" yaml:"columns"`
	Rows    [][]any  `json:"rows" yaml:"rows"`
}

// SampleViews holds the head, tail and random subsets of the cleaned table.
type SampleViews struct {
	Head   Sample `json:"head" yaml:"head"`
	Tail   Sample `json:"tail" yaml:"tail"`
	Random Sample `json:"random" yaml:"random"`
}

// Report is the complete profile of one table.
type Report struct {
	ID          string              `json:"id" yaml:"id"`
	Name        string              `json:"name" yaml:"name"`
	GeneratedAt time.Time           `json:"generated_at" yaml:"generated_at"`
	Basic       BasicInfo           `json:"basic_info" yaml:"basic_info"`
	Numeric     []NumericResult     `json:"numeric" yaml:"numeric"`
	Categorical []CategoricalResult `json:"categorical" yaml:"categorical"`
	Quality     QualityMetrics      `json:"quality" yaml:"quality"`
	Samples     SampleViews         `json:"samples" yaml:"samples"`
	Overview    Overview            `json:"overview" yaml:"overview"`
	Warnings    []string            `json:"warnings" yaml:"warnings"`
}

// Analyze cleans the table and profiles the result. A ValidationError from
// cleaning aborts the analysis; column-level failures do not.
func Analyze(t *table.Table, opt Options) (*Report, error) {
	_, rep, err := Profile(t, opt)
	return rep, err
}

// Profile is Analyze that also returns the cleaned table, for callers that
// build charts from the same data.
func Profile(t *table.Table, opt Options) (*table.Cleaned, *Report, error) {
	log := opt.logger()
	c, err := table.Clean(t, table.CleanOptions{MissingThreshold: opt.MissingThreshold})
	if err != nil {
		return nil, nil, fmt.Errorf("clean %s: %w", tableName(t), err)
	}
	log.Debug().
		Int("rows", c.Table.Rows()).
		Int("columns", len(c.Table.Columns)).
		Strs("dropped", c.Dropped).
		Int("duplicates", c.DuplicatesRemoved).
		Msg("table cleaned")
	return c, AnalyzeCleaned(c, opt), nil
}

// AnalyzeCleaned profiles an already cleaned table.
func AnalyzeCleaned(c *table.Cleaned, opt Options) *Report {
	log := opt.logger()
	tb := c.Table
	rep := &Report{
		ID:          uuid.NewString(),
		Name:        tb.Name,
		GeneratedAt: time.Now().UTC(),
		Basic:       basicInfo(c),
		Numeric:     []NumericResult{},
		Categorical: []CategoricalResult{},
		Warnings:    []string{},
	}

	numeric, categorical := table.Classify(tb)
	for _, name := range numeric {
		col, _ := tb.Column(name)
		res := NumericResult{Column: name}
		p, err := ProfileNumeric(name, col.Floats())
		if err != nil {
			log.Warn().Err(err).Str("column", name).Msg("numeric profile unavailable")
			res.Unavailable = err.Error()
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("numeric profile unavailable: %v", err))
		} else {
			res.Profile = &p
		}
		rep.Numeric = append(rep.Numeric, res)
	}
	for _, name := range categorical {
		col, _ := tb.Column(name)
		res := CategoricalResult{Column: name}
		p, err := ProfileCategorical(name, col.Values, opt.TopValues)
		if err != nil {
			log.Warn().Err(err).Str("column", name).Msg("categorical profile unavailable")
			res.Unavailable = err.Error()
			rep.Warnings = append(rep.Warnings, fmt.Sprintf("categorical profile unavailable: %v", err))
		} else {
			res.Profile = &p
		}
		rep.Categorical = append(rep.Categorical, res)
	}

	rep.Quality = AnalyzeQuality(c, opt.IQRMultiplier)
	rep.Samples = sampleViews(tb, opt.SampleRows, opt.Seed)
	rep.Warnings = append(cleaningWarnings(c), rep.Warnings...)
	rep.Overview = Summarize(rep)
	log.Debug().
		Int("numeric", len(rep.Numeric)).
		Int("categorical", len(rep.Categorical)).
		Float64("completeness", rep.Overview.OverallCompleteness).
		Msg("profile complete")
	return rep
}

func basicInfo(c *table.Cleaned) BasicInfo {
	tb := c.Table
	b := BasicInfo{
		Rows:              tb.Rows(),
		Columns:           len(tb.Columns),
		OriginalRows:      c.OriginalRows,
		MemoryBytes:       table.MemoryBytes(tb),
		ColumnTypes:       make([]ColumnType, len(tb.Columns)),
		Dropped:           append([]string{}, c.Dropped...),
		DuplicatesRemoved: c.DuplicatesRemoved,
	}
	b.MemoryMB = bytesToMB(b.MemoryBytes)
	for i := range tb.Columns {
		b.ColumnTypes[i] = ColumnType{Name: tb.Columns[i].Name, Type: table.DeclaredType(&tb.Columns[i])}
	}
	return b
}

// bytesToMB converts to mebibytes rounded to two decimals.
func bytesToMB(n int64) float64 {
	return math.Round(float64(n)/1048576*100) / 100
}

func cleaningWarnings(c *table.Cleaned) []string {
	out := []string{}
	for _, name := range c.Dropped {
		out = append(out, fmt.Sprintf("dropped column %q: fewer than %.0f%% of rows present", name, c.Threshold*100))
	}
	for _, f := range c.Filled {
		if f.Numeric {
			out = append(out, fmt.Sprintf("column %q: %d missing value(s) filled with 0; numeric statistics are biased toward zero", f.Column, f.Count))
		} else {
			out = append(out, fmt.Sprintf("column %q: %d missing value(s) filled with empty string; counted as a category", f.Column, f.Count))
		}
	}
	if c.DuplicatesRemoved > 0 {
		out = append(out, fmt.Sprintf("removed %d duplicate row(s)", c.DuplicatesRemoved))
	}
	return out
}

func sampleViews(tb *table.Table, n int, seed uint64) SampleViews {
	if n <= 0 || n > MaxSampleRows {
		n = MaxSampleRows
	}
	rows := tb.Rows()
	if n > rows {
		n = rows
	}
	head := make([]int, n)
	tail := make([]int, n)
	for i := 0; i < n; i++ {
		head[i] = i
		tail[i] = rows - n + i
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	random := rng.Perm(rows)[:n]
	sort.Ints(random)
	return SampleViews{
		Head:   sampleOf(tb, head),
		Tail:   sampleOf(tb, tail),
		Random: sampleOf(tb, random),
	}
}

// sampleOf copies rows idx. Text columns keep the source spelling of every
// cell, numeric columns carry float64.
func sampleOf(tb *table.Table, idx []int) Sample {
	s := Sample{Columns: tb.Names(), Rows: make([][]any, len(idx))}
	numeric := make([]bool, len(tb.Columns))
	for j := range tb.Columns {
		numeric[j] = table.IsNumeric(&tb.Columns[j])
	}
	for k, i := range idx {
		row := make([]any, len(tb.Columns))
		for j := range tb.Columns {
			v := tb.Columns[j].Values[i]
			if numeric[j] || v.IsMissing() {
				row[j] = v.Native()
			} else {
				row[j] = v.String()
			}
		}
		s.Rows[k] = row
	}
	return s
}

func tableName(t *table.Table) string {
	if t == nil || t.Name == "" {
		return "table"
	}
	return filepath.Base(t.Name)
}
