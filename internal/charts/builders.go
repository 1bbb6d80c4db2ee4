package charts

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/tabprofile/internal/analysis"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"
)

const (
	sampleDistributionColumns   = 4
	variableDistributionColumns = 6
	outlierDetectionColumns     = 4
	violinGridPoints            = 50
)

func buildSampleDistribution(in *input) (*Chart, error) {
	if len(in.numeric) == 0 {
		return nil, noData(SampleDistribution, "no numeric columns")
	}
	ch := &Chart{Title: "Sample distribution", XLabel: "value", YLabel: "frequency"}
	for _, name := range firstN(in.numeric, sampleDistributionColumns) {
		ch.Histograms = append(ch.Histograms, histogram(name, in.column(name).Floats(), in.opt.Bins, false))
	}
	return ch, nil
}

func buildVariableDistribution(in *input) (*Chart, error) {
	if len(in.numeric) == 0 {
		return nil, noData(VariableDistribution, "no numeric columns")
	}
	ch := &Chart{Title: "Variable distribution", XLabel: "value", YLabel: "density"}
	for _, name := range firstN(in.numeric, variableDistributionColumns) {
		ch.Histograms = append(ch.Histograms, histogram(name, in.column(name).Floats(), in.opt.Bins, true))
	}
	return ch, nil
}

// buildCorrelation fills a Pearson matrix. Pairs involving a constant
// column have no defined correlation and are reported as 0.
func buildCorrelation(in *input) (*Chart, error) {
	if len(in.numeric) < 2 {
		return nil, noData(VariableCorrelation, "need at least two numeric columns")
	}
	n := len(in.numeric)
	cols := make([][]float64, n)
	for i, name := range in.numeric {
		cols[i] = in.column(name).Floats()
	}
	m := &Matrix{Rows: in.numeric, Cols: in.numeric, Values: make([][]float64, n)}
	for i := range m.Values {
		m.Values[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		m.Values[i][i] = 1
		for j := i + 1; j < n; j++ {
			x, y := pairwise(cols[i], cols[j])
			r := 0.0
			if len(x) > 1 {
				r = stat.Correlation(x, y, nil)
			}
			if math.IsNaN(r) || math.IsInf(r, 0) {
				r = 0
			}
			m.Values[i][j], m.Values[j][i] = r, r
		}
	}
	return &Chart{Title: "Variable correlation", Matrix: m}, nil
}

// pairwise keeps the positions where both x and y are finite.
func pairwise(x, y []float64) ([]float64, []float64) {
	a := make([]float64, 0, len(x))
	b := make([]float64, 0, len(y))
	for i := range x {
		if i >= len(y) || !isFinite(x[i]) || !isFinite(y[i]) {
			continue
		}
		a = append(a, x[i])
		b = append(b, y[i])
	}
	return a, b
}

func buildQualityScores(in *input) (*Chart, error) {
	var scores []analysis.QualityScore
	if in.rep != nil {
		scores = in.rep.Quality.Scores
	} else {
		scores = analysis.AnalyzeQuality(in.c, 0).Scores
	}
	if len(scores) == 0 {
		return nil, noData(QualityScoreDistribution, "no quality scores")
	}
	xs := make([]float64, len(scores))
	for i, s := range scores {
		xs[i] = s.Score
	}
	h := histogram("quality_score", xs, DefaultQualityBins, false)
	return &Chart{Title: "Quality score distribution", XLabel: "quality score", YLabel: "columns", Histograms: []Histogram{h}}, nil
}

// buildMissingHeatmap marks originally missing cells with 1. The cleaned
// table has no gaps left, so the pre-fill mask is the source.
func buildMissingHeatmap(in *input) (*Chart, error) {
	tb := in.c.Table
	rows := tb.Rows()
	if rows == 0 || len(tb.Columns) == 0 {
		return nil, noData(MissingValueHeatmap, "empty table")
	}
	m := &Matrix{Rows: make([]string, rows), Cols: tb.Names(), Values: make([][]float64, rows)}
	for r := 0; r < rows; r++ {
		m.Rows[r] = strconv.Itoa(r + 1)
		m.Values[r] = make([]float64, len(tb.Columns))
		for j := range tb.Columns {
			if j < len(in.c.Missing) && r < len(in.c.Missing[j]) && in.c.Missing[j][r] {
				m.Values[r][j] = 1
			}
		}
	}
	return &Chart{Title: "Missing value heatmap", XLabel: "column", YLabel: "row", Matrix: m}, nil
}

func buildOutlierDetection(in *input) (*Chart, error) {
	if len(in.numeric) == 0 {
		return nil, noData(OutlierDetection, "no numeric columns")
	}
	ch := &Chart{Title: "Outlier detection", YLabel: "value"}
	for _, name := range firstN(in.numeric, outlierDetectionColumns) {
		if b, ok := boxOf(name, in.column(name).Floats()); ok {
			ch.Boxes = append(ch.Boxes, b)
		}
	}
	return ch, nil
}

func buildBoxPlot(in *input) (*Chart, error) {
	if len(in.numeric) == 0 {
		return nil, noData(BoxPlot, "no numeric columns")
	}
	ch := &Chart{Title: "Box plot", XLabel: "column", YLabel: "value"}
	for _, name := range in.numeric {
		if b, ok := boxOf(name, in.column(name).Floats()); ok {
			ch.Boxes = append(ch.Boxes, b)
		}
	}
	return ch, nil
}

// buildGroupComparison splits the first numeric column by the values of the
// first categorical column, in order of first appearance.
func buildGroupComparison(in *input) (*Chart, error) {
	if len(in.numeric) == 0 || len(in.categorical) == 0 {
		return nil, noData(GroupComparison, "need a numeric and a categorical column")
	}
	catName, numName := in.categorical[0], in.numeric[0]
	cats := in.column(catName).Strings()
	nums := in.column(numName).Floats()

	var order []string
	groups := map[string][]float64{}
	for i, c := range cats {
		if _, ok := groups[c]; !ok {
			order = append(order, c)
		}
		groups[c] = append(groups[c], nums[i])
	}
	ch := &Chart{Title: numName + " by " + catName, XLabel: catName, YLabel: numName}
	for _, c := range order {
		if b, ok := boxOf(c, groups[c]); ok {
			ch.Boxes = append(ch.Boxes, b)
		}
	}
	return ch, nil
}

func buildTrend(in *input) (*Chart, error) {
	return trend(in, TrendAnalysis, "Variable trend")
}

func buildTimeSeries(in *input) (*Chart, error) {
	return trend(in, TimeSeries, "Time series")
}

// trend plots up to MaxSeries numeric columns against the first date-like
// column when every one of its values parses as a timestamp, and against
// the row position otherwise.
func trend(in *input, kind Kind, title string) (*Chart, error) {
	if len(in.numeric) == 0 {
		return nil, noData(kind, "no numeric columns")
	}
	rows := in.c.Table.Rows()
	order := make([]int, rows)
	xs := make([]float64, rows)
	for i := range order {
		order[i] = i
		xs[i] = float64(i)
	}
	ch := &Chart{Title: title, XLabel: "row", YLabel: "value"}
	if name, stamps, ok := timeColumn(in); ok {
		sort.SliceStable(order, func(a, b int) bool { return stamps[order[a]].Before(stamps[order[b]]) })
		for k, i := range order {
			xs[k] = float64(stamps[i].Unix())
		}
		ch.TimeAxis = true
		ch.XLabel = name
	}
	for _, name := range firstN(in.numeric, in.opt.MaxSeries) {
		vals := in.column(name).Floats()
		s := Series{Name: name, X: append([]float64(nil), xs...), Y: make([]float64, rows)}
		for k, i := range order {
			s.Y[k] = vals[i]
		}
		ch.Series = append(ch.Series, s)
	}
	return ch, nil
}

var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02",
	"01/02/2006",
}

func timeColumn(in *input) (string, []time.Time, bool) {
	for _, col := range in.c.Table.Columns {
		lower := strings.ToLower(col.Name)
		if !strings.Contains(lower, "date") && !strings.Contains(lower, "time") {
			continue
		}
		// Only the first date-like column is considered.
		stamps := make([]time.Time, len(col.Values))
		for i, s := range col.Strings() {
			t, ok := parseTime(s)
			if !ok {
				return "", nil, false
			}
			stamps[i] = t
		}
		return col.Name, stamps, len(stamps) > 0
	}
	return "", nil, false
}

func parseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// buildStackedBar cross-tabulates the first two categorical columns.
func buildStackedBar(in *input) (*Chart, error) {
	if len(in.categorical) < 2 {
		return nil, noData(StackedBar, "need at least two categorical columns")
	}
	first, second := in.categorical[0], in.categorical[1]
	a := in.column(first).Strings()
	b := in.column(second).Strings()

	st := &Stack{}
	catIdx := map[string]int{}
	grpIdx := map[string]int{}
	for i := range a {
		ci, ok := catIdx[a[i]]
		if !ok {
			ci = len(st.Categories)
			catIdx[a[i]] = ci
			st.Categories = append(st.Categories, a[i])
			for g := range st.Counts {
				st.Counts[g] = append(st.Counts[g], 0)
			}
		}
		gi, ok := grpIdx[b[i]]
		if !ok {
			gi = len(st.Groups)
			grpIdx[b[i]] = gi
			st.Groups = append(st.Groups, b[i])
			st.Counts = append(st.Counts, make([]int, len(st.Categories)))
		}
		st.Counts[gi][ci]++
	}
	return &Chart{Title: first + " vs " + second, XLabel: first, YLabel: "count", Stack: st}, nil
}

func buildViolins(in *input) (*Chart, error) {
	if len(in.numeric) == 0 {
		return nil, noData(ViolinPlot, "no numeric columns")
	}
	ch := &Chart{Title: "Violin plot", XLabel: "column", YLabel: "value"}
	for _, name := range in.numeric {
		if v, ok := violinOf(name, in.column(name).Floats()); ok {
			ch.Violins = append(ch.Violins, v)
		}
	}
	return ch, nil
}

func histogram(name string, values []float64, bins int, density bool) Histogram {
	xs := finiteSorted(values)
	h := Histogram{Column: name, Density: density, Bins: []Bin{}}
	if len(xs) == 0 {
		return h
	}
	h.Mean = stat.Mean(xs, nil)
	lo, hi := xs[0], xs[len(xs)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}
	dividers := floats.Span(make([]float64, bins+1), lo, hi)
	// stat.Histogram treats the last divider as exclusive.
	dividers[bins] = math.Nextafter(hi, math.Inf(1))
	counts := stat.Histogram(nil, dividers, xs, nil)
	width := (hi - lo) / float64(bins)
	h.Bins = make([]Bin, bins)
	for i, c := range counts {
		if density {
			c /= float64(len(xs)) * width
		}
		h.Bins[i] = Bin{Lo: dividers[i], Hi: dividers[i+1], Count: c}
	}
	h.Bins[bins-1].Hi = hi
	return h
}

// boxOf summarises values with whiskers at the most extreme values inside
// the 1.5 IQR fences.
func boxOf(label string, values []float64) (Box, bool) {
	xs := finiteSorted(values)
	p, err := analysis.ProfileNumeric(label, xs)
	if err != nil {
		return Box{}, false
	}
	lo, hi, _ := analysis.OutlierBounds(xs, analysis.DefaultIQRMultiplier)
	b := Box{Label: label, Q1: p.Q25, Median: p.Median, Q3: p.Q75, Mean: p.Mean, Outliers: []float64{}, values: xs}
	b.Min, b.Max = p.Q25, p.Q75
	for _, v := range xs {
		if v < lo || v > hi {
			b.Outliers = append(b.Outliers, v)
			continue
		}
		b.Min = math.Min(b.Min, v)
		b.Max = math.Max(b.Max, v)
	}
	return b, true
}

// violinOf evaluates a Gaussian kernel density estimate with Scott's
// bandwidth on an even grid spanning three bandwidths past the data.
func violinOf(label string, values []float64) (Violin, bool) {
	xs := finiteSorted(values)
	if len(xs) == 0 {
		return Violin{}, false
	}
	v := Violin{Label: label, Mean: stat.Mean(xs, nil)}
	sd := 0.0
	if len(xs) > 1 {
		sd = stat.StdDev(xs, nil)
	}
	bw := 1.06 * sd * math.Pow(float64(len(xs)), -0.2)
	if bw <= 0 || !isFinite(bw) {
		bw = 1
	}
	lo, hi := xs[0]-3*bw, xs[len(xs)-1]+3*bw
	v.Y = floats.Span(make([]float64, violinGridPoints), lo, hi)
	v.Density = make([]float64, len(v.Y))
	for i, y := range v.Y {
		var sum float64
		for _, x := range xs {
			sum += distuv.Normal{Mu: x, Sigma: bw}.Prob(y)
		}
		v.Density[i] = sum / float64(len(xs))
	}
	return v, true
}

func finiteSorted(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if isFinite(v) {
			out = append(out, v)
		}
	}
	sort.Float64s(out)
	return out
}

func isFinite(f float64) bool { return !math.IsNaN(f) && !math.IsInf(f, 0) }
