// Package charts prepares plot-ready data from a cleaned table and its
// report, and renders it to PNG files.
package charts

import (
	"errors"
	"fmt"

	"github.com/KaramelBytes/tabprofile/internal/analysis"
	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/rs/zerolog"
)

const (
	DefaultBins        = 30
	DefaultQualityBins = 20
	DefaultMaxSeries   = 5
)

// ErrNoData marks a chart that cannot be drawn from the table's columns.
var ErrNoData = errors.New("not enough data for chart")

// Options controls chart preparation.
type Options struct {
	// Bins is the histogram bin count. 0 means DefaultBins.
	Bins int
	// MaxSeries caps the lines of trend and time series charts.
	MaxSeries int
	Logger    *zerolog.Logger
}

func (o Options) withDefaults() Options {
	if o.Bins <= 0 {
		o.Bins = DefaultBins
	}
	if o.MaxSeries <= 0 {
		o.MaxSeries = DefaultMaxSeries
	}
	return o
}

func (o Options) logger() zerolog.Logger {
	if o.Logger == nil {
		return zerolog.Nop()
	}
	return *o.Logger
}

// Bin is one histogram bucket [Lo, Hi).
type Bin struct {
	Lo    float64 `json:"lo" yaml:"lo"`
	Hi    float64 `json:"hi" yaml:"hi"`
	Count float64 `json:"count" yaml:"count"`
}

// Histogram is the binned distribution of one column. With Density set,
// counts are normalised so the bars integrate to 1.
type Histogram struct {
	Column  string  `json:"column" yaml:"column"`
	Bins    []Bin   `json:"bins" yaml:"bins"`
	Mean    float64 `json:"mean" yaml:"mean"`
	Density bool    `json:"density,omitempty" yaml:"density,omitempty"`
}

// Matrix is a labelled grid, used for correlations and missingness.
type Matrix struct {
	Rows   []string    `json:"rows" yaml:"rows"`
	Cols   []string    `json:"cols" yaml:"cols"`
	Values [][]float64 `json:"values" yaml:"values"`
}

// Box is a five-number summary with the values beyond the fences.
type Box struct {
	Label    string    `json:"label" yaml:"label"`
	Min      float64   `json:"min" yaml:"min"`
	Q1       float64   `json:"q1" yaml:"q1"`
	Median   float64   `json:"median" yaml:"median"`
	Q3       float64   `json:"q3" yaml:"q3"`
	Max      float64   `json:"max" yaml:"max"`
	Mean     float64   `json:"mean" yaml:"mean"`
	Outliers []float64 `json:"outliers" yaml:"outliers"`

	values []float64
}

// Series is one line of a trend chart. X holds Unix seconds when the chart
// has a time axis, row positions otherwise.
type Series struct {
	Name string    `json:"name" yaml:"name"`
	X    []float64 `json:"x" yaml:"x"`
	Y    []float64 `json:"y" yaml:"y"`
}

// Violin is a kernel density estimate of one column.
type Violin struct {
	Label   string    `json:"label" yaml:"label"`
	Y       []float64 `json:"y" yaml:"y"`
	Density []float64 `json:"density" yaml:"density"`
	Mean    float64   `json:"mean" yaml:"mean"`
}

// Stack is a cross tabulation: Counts[g][c] counts rows with Groups[g] and
// Categories[c].
type Stack struct {
	Categories []string `json:"categories" yaml:"categories"`
	Groups     []string `json:"groups" yaml:"groups"`
	Counts     [][]int  `json:"counts" yaml:"counts"`
}

// Chart is the prepared data of one chart. Exactly the fields its Kind uses
// are set.
type Chart struct {
	Kind       Kind        `json:"kind" yaml:"kind"`
	Title      string      `json:"title" yaml:"title"`
	XLabel     string      `json:"x_label,omitempty" yaml:"x_label,omitempty"`
	YLabel     string      `json:"y_label,omitempty" yaml:"y_label,omitempty"`
	Histograms []Histogram `json:"histograms,omitempty" yaml:"histograms,omitempty"`
	Matrix     *Matrix     `json:"matrix,omitempty" yaml:"matrix,omitempty"`
	Boxes      []Box       `json:"boxes,omitempty" yaml:"boxes,omitempty"`
	Series     []Series    `json:"series,omitempty" yaml:"series,omitempty"`
	TimeAxis   bool        `json:"time_axis,omitempty" yaml:"time_axis,omitempty"`
	Violins    []Violin    `json:"violins,omitempty" yaml:"violins,omitempty"`
	Stack      *Stack      `json:"stack,omitempty" yaml:"stack,omitempty"`
}

// Result is the outcome for one requested kind.
type Result struct {
	Kind  Kind
	Chart *Chart
	Err   error
}

// input is what every builder sees.
type input struct {
	c           *table.Cleaned
	rep         *analysis.Report
	opt         Options
	numeric     []string
	categorical []string
}

type builder func(in *input) (*Chart, error)

var builders = [kindCount]builder{
	SampleDistribution:       buildSampleDistribution,
	VariableCorrelation:      buildCorrelation,
	QualityScoreDistribution: buildQualityScores,
	MissingValueHeatmap:      buildMissingHeatmap,
	VariableDistribution:     buildVariableDistribution,
	OutlierDetection:         buildOutlierDetection,
	TrendAnalysis:            buildTrend,
	BoxPlot:                  buildBoxPlot,
	GroupComparison:          buildGroupComparison,
	TimeSeries:               buildTimeSeries,
	StackedBar:               buildStackedBar,
	ViolinPlot:               buildViolins,
}

// Build prepares every requested chart. One failing chart does not stop the
// others; each Result carries either a Chart or the error.
func Build(c *table.Cleaned, rep *analysis.Report, kinds []Kind, opt Options) []Result {
	opt = opt.withDefaults()
	log := opt.logger()
	in := &input{c: c, rep: rep, opt: opt}
	in.numeric, in.categorical = table.Classify(c.Table)

	out := make([]Result, 0, len(kinds))
	for _, k := range kinds {
		res := Result{Kind: k}
		if k < 0 || k >= kindCount {
			res.Err = fmt.Errorf("unknown chart kind %d", int(k))
		} else {
			res.Chart, res.Err = builders[k](in)
			if res.Chart != nil {
				res.Chart.Kind = k
			}
		}
		if res.Err != nil {
			log.Warn().Err(res.Err).Str("chart", k.String()).Msg("chart skipped")
		} else {
			log.Debug().Str("chart", k.String()).Msg("chart prepared")
		}
		out = append(out, res)
	}
	return out
}

func (in *input) column(name string) *table.Column {
	col, _ := in.c.Table.Column(name)
	return col
}

func noData(kind Kind, reason string) error {
	return fmt.Errorf("%s: %w: %s", kind, ErrNoData, reason)
}

func firstN(names []string, n int) []string {
	if len(names) > n {
		return names[:n]
	}
	return names
}
