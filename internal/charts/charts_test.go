package charts

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/KaramelBytes/tabprofile/internal/analysis"
	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sales(t *testing.T) (*table.Cleaned, *analysis.Report) {
	t.Helper()
	tb := table.New("sales.csv", []string{"group", "region", "date", "value", "score", "note"}, [][]string{
		{"a", "north", "2024-01-03", "3", "6", "x"},
		{"a", "south", "2024-01-01", "1", "2", ""},
		{"b", "north", "2024-01-02", "2", "4", "y"},
		{"b", "south", "2024-01-05", "5", "10", "z"},
		{"a", "north", "2024-01-04", "4", "8", "w"},
	})
	c, err := table.Clean(tb, table.CleanOptions{})
	require.NoError(t, err)
	return c, analysis.AnalyzeCleaned(c, analysis.DefaultOptions())
}

func byKind(results []Result) map[Kind]Result {
	out := make(map[Kind]Result, len(results))
	for _, r := range results {
		out[r.Kind] = r
	}
	return out
}

func TestDefaultKinds(t *testing.T) {
	assert.Equal(t, []Kind{SampleDistribution, VariableCorrelation, QualityScoreDistribution, MissingValueHeatmap}, DefaultKinds(ProductLevelEvaluation))
	assert.Equal(t, []Kind{VariableDistribution, OutlierDetection, TrendAnalysis, BoxPlot}, DefaultKinds("Variable_Level_Evaluation"))
	assert.Equal(t, []Kind{GroupComparison, TimeSeries, StackedBar, ViolinPlot}, DefaultKinds(ComparativeAnalysis))
	assert.Equal(t, []Kind{SampleDistribution}, DefaultKinds("quarterly"))
}

func TestParseKinds(t *testing.T) {
	ks, err := ParseKinds("box_plot, violin_plot,,")
	require.NoError(t, err)
	assert.Equal(t, []Kind{BoxPlot, ViolinPlot}, ks)

	_, err = ParseKinds("box_plot,pie")
	assert.ErrorContains(t, err, `"pie"`)

	b, err := json.Marshal(struct{ K Kind }{StackedBar})
	require.NoError(t, err)
	assert.JSONEq(t, `{"K":"stacked_bar"}`, string(b))
	assert.Len(t, AllKinds(), 12)
}

func TestBuildAllKinds(t *testing.T) {
	c, rep := sales(t)
	results := Build(c, rep, AllKinds(), Options{Bins: 4})
	require.Len(t, results, 12)
	for i, r := range results {
		assert.Equal(t, Kind(i), r.Kind)
		assert.NoError(t, r.Err, r.Kind.String())
		require.NotNil(t, r.Chart, r.Kind.String())
		assert.Equal(t, r.Kind, r.Chart.Kind)
	}
}

func TestHistogramCounts(t *testing.T) {
	h := histogram("v", []float64{1, 2, 2, 3, 10}, 3, false)
	require.Len(t, h.Bins, 3)
	assert.Equal(t, []float64{4, 0, 1}, []float64{h.Bins[0].Count, h.Bins[1].Count, h.Bins[2].Count})
	assert.Equal(t, 1.0, h.Bins[0].Lo)
	assert.Equal(t, 10.0, h.Bins[2].Hi)
	assert.InDelta(t, 3.6, h.Mean, 1e-12)

	d := histogram("v", []float64{1, 2, 2, 3, 10}, 3, true)
	var area float64
	for _, b := range d.Bins {
		area += b.Count * (b.Hi - b.Lo)
	}
	assert.InDelta(t, 1.0, area, 1e-9)

	flat := histogram("flat", []float64{7, 7, 7}, 5, false)
	var total float64
	for _, b := range flat.Bins {
		total += b.Count
	}
	assert.Equal(t, 3.0, total)
}

func TestCorrelationMatrix(t *testing.T) {
	c, rep := sales(t)
	r := Build(c, rep, []Kind{VariableCorrelation}, Options{})[0]
	require.NoError(t, r.Err)
	m := r.Chart.Matrix
	assert.Equal(t, []string{"value", "score"}, m.Cols)
	assert.InDelta(t, 1.0, m.Values[0][1], 1e-12)
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
}

func TestMissingHeatmapUsesMask(t *testing.T) {
	c, rep := sales(t)
	r := Build(c, rep, []Kind{MissingValueHeatmap}, Options{})[0]
	require.NoError(t, r.Err)
	var ones float64
	for _, row := range r.Chart.Matrix.Values {
		for _, v := range row {
			ones += v
		}
	}
	assert.Equal(t, float64(rep.Overview.TotalNulls), ones)
	assert.Equal(t, 1.0, r.Chart.Matrix.Values[1][5])
}

func TestTrendUsesDateColumn(t *testing.T) {
	c, rep := sales(t)
	r := Build(c, rep, []Kind{TrendAnalysis}, Options{})[0]
	require.NoError(t, r.Err)
	assert.True(t, r.Chart.TimeAxis)
	assert.Equal(t, "date", r.Chart.XLabel)
	require.Len(t, r.Chart.Series, 2)
	assert.Equal(t, []float64{1, 2, 3, 4, 5}, r.Chart.Series[0].Y)
	assert.IsIncreasing(t, r.Chart.Series[0].X)
}

func TestGroupComparisonAndStack(t *testing.T) {
	c, rep := sales(t)
	res := byKind(Build(c, rep, []Kind{GroupComparison, StackedBar}, Options{}))

	g := res[GroupComparison]
	require.NoError(t, g.Err)
	require.Len(t, g.Chart.Boxes, 2)
	assert.Equal(t, "a", g.Chart.Boxes[0].Label)
	assert.Equal(t, 3.0, g.Chart.Boxes[0].Median)

	s := res[StackedBar]
	require.NoError(t, s.Err)
	assert.Equal(t, []string{"a", "b"}, s.Chart.Stack.Categories)
	assert.Equal(t, []string{"north", "south"}, s.Chart.Stack.Groups)
	assert.Equal(t, [][]int{{2, 1}, {1, 1}}, s.Chart.Stack.Counts)
}

func TestBoxOfFlagsOutliers(t *testing.T) {
	b, ok := boxOf("v", []float64{1, 2, 3, 4, 100})
	require.True(t, ok)
	assert.Equal(t, []float64{100}, b.Outliers)
	assert.Equal(t, 1.0, b.Min)
	assert.Equal(t, 4.0, b.Max)
}

func TestFailuresAreReportedPerChart(t *testing.T) {
	tb := table.New("nums.csv", []string{"a", "b"}, [][]string{{"1", "2"}, {"2", "5"}, {"3", "1"}})
	c, err := table.Clean(tb, table.CleanOptions{})
	require.NoError(t, err)
	res := byKind(Build(c, nil, []Kind{StackedBar, BoxPlot, GroupComparison, QualityScoreDistribution}, Options{}))

	assert.ErrorIs(t, res[StackedBar].Err, ErrNoData)
	assert.Nil(t, res[StackedBar].Chart)
	assert.ErrorIs(t, res[GroupComparison].Err, ErrNoData)
	assert.NoError(t, res[BoxPlot].Err)
	assert.NoError(t, res[QualityScoreDistribution].Err)
}

func TestSaveAllWritesPNG(t *testing.T) {
	c, rep := sales(t)
	results := Build(c, rep, AllKinds(), Options{Bins: 4})
	dir := t.TempDir()
	paths, err := SaveAll(results, dir, ProductLevelEvaluation)
	require.NoError(t, err)
	for _, r := range results {
		require.NoError(t, r.Err, r.Kind.String())
		p, ok := paths[r.Kind]
		require.True(t, ok, r.Kind.String())
		info, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, info.Size())
	}
	assert.FileExists(t, dir+"/box_plot_product_level_evaluation.png")
}
