package charts

import (
	"fmt"
	"strings"
)

// Kind identifies one chart type.
type Kind int

const (
	SampleDistribution Kind = iota
	VariableCorrelation
	QualityScoreDistribution
	MissingValueHeatmap
	VariableDistribution
	OutlierDetection
	TrendAnalysis
	BoxPlot
	GroupComparison
	TimeSeries
	StackedBar
	ViolinPlot
	kindCount
)

var kindNames = [kindCount]string{
	SampleDistribution:       "sample_distribution",
	VariableCorrelation:      "variable_correlation",
	QualityScoreDistribution: "quality_score_distribution",
	MissingValueHeatmap:      "missing_value_heatmap",
	VariableDistribution:     "variable_distribution",
	OutlierDetection:         "outlier_detection",
	TrendAnalysis:            "trend_analysis",
	BoxPlot:                  "box_plot",
	GroupComparison:          "group_comparison",
	TimeSeries:               "time_series",
	StackedBar:               "stacked_bar",
	ViolinPlot:               "violin_plot",
}

func (k Kind) String() string {
	if k < 0 || k >= kindCount {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	if k < 0 || k >= kindCount {
		return nil, fmt.Errorf("unknown chart kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(b []byte) error {
	v, err := ParseKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}

// ParseKind maps a chart name such as "box_plot" to its Kind.
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for k := Kind(0); k < kindCount; k++ {
		if kindNames[k] == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unsupported chart kind %q (available: %s)", s, strings.Join(kindNames[:], ", "))
}

// ParseKinds parses a comma separated list, skipping blanks.
func ParseKinds(s string) ([]Kind, error) {
	var out []Kind
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		k, err := ParseKind(part)
		if err != nil {
			return nil, err
		}
		out = append(out, k)
	}
	return out, nil
}

// AllKinds lists every chart kind in declaration order.
func AllKinds() []Kind {
	out := make([]Kind, kindCount)
	for i := range out {
		out[i] = Kind(i)
	}
	return out
}

// Report types select a default chart set.
const (
	ProductLevelEvaluation  = "product_level_evaluation"
	VariableLevelEvaluation = "variable_level_evaluation"
	ComparativeAnalysis     = "comparative_analysis"
)

var defaultKinds = map[string][]Kind{
	ProductLevelEvaluation:  {SampleDistribution, VariableCorrelation, QualityScoreDistribution, MissingValueHeatmap},
	VariableLevelEvaluation: {VariableDistribution, OutlierDetection, TrendAnalysis, BoxPlot},
	ComparativeAnalysis:     {GroupComparison, TimeSeries, StackedBar, ViolinPlot},
}

// DefaultKinds returns the chart set of a report type. Unknown types get a
// single sample distribution.
func DefaultKinds(reportType string) []Kind {
	if ks, ok := defaultKinds[strings.ToLower(strings.TrimSpace(reportType))]; ok {
		return append([]Kind(nil), ks...)
	}
	return []Kind{SampleDistribution}
}
