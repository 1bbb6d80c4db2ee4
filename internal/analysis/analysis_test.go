package analysis

import (
	"math"
	"math/rand/v2"
	"strconv"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ageEmail() *table.Table {
	return &table.Table{Name: "people.csv", Columns: []table.Column{
		{Name: "age", Values: []table.Value{table.Num(25), table.Num(30), table.Missing()}},
		{Name: "email", Values: []table.Value{table.Text("a@b.com"), table.Text("bad"), table.Text("c@d.com")}},
	}}
}

func TestAnalyzeAgeEmail(t *testing.T) {
	rep, err := Analyze(ageEmail(), DefaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 3, rep.Basic.Rows)
	assert.Equal(t, 2, rep.Basic.Columns)
	require.Len(t, rep.Numeric, 1)
	require.NotNil(t, rep.Numeric[0].Profile)
	assert.Equal(t, 3, rep.Numeric[0].Profile.Count)
	assert.InDelta(t, 55.0/3, rep.Numeric[0].Profile.Mean, 1e-9)

	require.Len(t, rep.Quality.Completeness, 2)
	assert.Equal(t, "age", rep.Quality.Completeness[0].Column)
	assert.InDelta(t, 2.0/3, rep.Quality.Completeness[0].Rate, 1e-12)
	assert.Equal(t, 1, rep.Quality.Completeness[0].Missing)
	assert.InDelta(t, 1.0, rep.Quality.Completeness[1].Rate, 1e-12)

	require.Len(t, rep.Quality.FormatConsistency, 1)
	email := rep.Quality.FormatConsistency[0].Patterns["email"]
	assert.Equal(t, 2, email.Matches)
	assert.Equal(t, 3, email.Total)
	assert.InDelta(t, 2.0/3, email.Rate, 1e-12)

	require.Len(t, rep.Quality.Accuracy, 1)
	assert.Equal(t, 1, rep.Quality.Accuracy[0].Zero)

	assert.Equal(t, 1, rep.Overview.TotalNulls)
	assert.InDelta(t, (2.0/3+1)/2, rep.Overview.OverallCompleteness, 1e-12)
	assert.NotEmpty(t, rep.ID)
	assert.Contains(t, strings.Join(rep.Warnings, "\n"), "biased toward zero")
}

func TestProfileNumericQuartilesAndOutliers(t *testing.T) {
	xs := []float64{1, 2, 3, 4, 100}
	p, err := ProfileNumeric("v", xs)
	require.NoError(t, err)
	assert.Equal(t, 2.0, p.Q25)
	assert.Equal(t, 3.0, p.Median)
	assert.Equal(t, 4.0, p.Q75)
	assert.Greater(t, p.Skewness, 0.0)

	lo, hi, ok := OutlierBounds(xs, DefaultIQRMultiplier)
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
	assert.Equal(t, 7.0, hi)
	assert.Equal(t, 1, CountOutliers(xs, DefaultIQRMultiplier))
}

func TestProfileNumericSkipsNaN(t *testing.T) {
	p, err := ProfileNumeric("v", []float64{math.NaN(), 2, 4, math.NaN()})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Count)
	assert.Equal(t, 3.0, p.Mean)
}

func TestProfileNumericDegenerateFallsBackToZero(t *testing.T) {
	p, err := ProfileNumeric("flat", []float64{5, 5, 5, 5, 5})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Std)
	assert.Equal(t, 0.0, p.Skewness)
	assert.Equal(t, 0.0, p.Kurtosis)

	p, err = ProfileNumeric("pair", []float64{1, 9})
	require.NoError(t, err)
	assert.Equal(t, 0.0, p.Skewness)
	assert.Equal(t, 0.0, p.Kurtosis)

	_, err = ProfileNumeric("empty", []float64{math.NaN()})
	var ce *table.ComputationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "empty", ce.Column)
	assert.ErrorIs(t, err, table.ErrComputation)
}

func TestNumericOrderInvariant(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 11))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.IntN(40)
		xs := make([]float64, n)
		for i := range xs {
			xs[i] = rng.NormFloat64()*10 + float64(rng.IntN(3))*50
		}
		p, err := ProfileNumeric("x", xs)
		require.NoError(t, err)
		assert.LessOrEqual(t, p.Min, p.Q25)
		assert.LessOrEqual(t, p.Q25, p.Median)
		assert.LessOrEqual(t, p.Median, p.Q75)
		assert.LessOrEqual(t, p.Q75, p.Max)
		assert.LessOrEqual(t, CountOutliers(xs, 3.0), CountOutliers(xs, 1.5))

		shuffled := append([]float64(nil), xs...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		assert.Equal(t, CountOutliers(xs, 1.5), CountOutliers(shuffled, 1.5))
	}
}

func TestProfileCategoricalTopValues(t *testing.T) {
	var vals []table.Value
	// 12 distinct values; "k" and "b" tie at 3, "k" appears first.
	for _, s := range strings.Split("k b k c d e f g h i j l b k b a a", " ") {
		vals = append(vals, table.Text(s))
	}
	vals = append(vals, table.Missing())

	p, err := ProfileCategorical("letters", vals, 0)
	require.NoError(t, err)
	assert.Equal(t, 17, p.Count)
	assert.Equal(t, 12, p.Unique)
	assert.Equal(t, "k", p.Top)
	assert.Equal(t, 3, p.TopFreq)
	require.Len(t, p.Frequencies, DefaultTopValues)
	assert.Equal(t, "b", p.Frequencies[1].Value)
	assert.Equal(t, "a", p.Frequencies[2].Value)

	sum := 0
	for i, f := range p.Frequencies {
		sum += f.Count
		if i > 0 {
			assert.GreaterOrEqual(t, p.Frequencies[i-1].Count, f.Count)
		}
	}
	assert.LessOrEqual(t, sum, p.Count)

	_, err = ProfileCategorical("none", []table.Value{table.Missing()}, 5)
	assert.ErrorIs(t, err, table.ErrComputation)
}

func TestCategoricalCountsFilledEmptyString(t *testing.T) {
	tb := table.New("notes.csv", []string{"id", "note"}, [][]string{
		{"1", "x"}, {"2", ""}, {"3", "x"}, {"4", "y"},
	})
	rep, err := Analyze(tb, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Categorical, 1)
	p := rep.Categorical[0].Profile
	require.NotNil(t, p)
	assert.Equal(t, 3, p.Unique)
	assert.Contains(t, p.Frequencies, CategoryCount{Value: "", Count: 1})
}

func TestCompletenessIgnoresRowOrderAndFill(t *testing.T) {
	rows := [][]string{{"1", "a"}, {"", "b"}, {"3", ""}, {"4", "d"}, {"5", "e"}}
	rev := make([][]string, len(rows))
	for i := range rows {
		rev[len(rows)-1-i] = rows[i]
	}
	a, err := Analyze(table.New("a", []string{"n", "s"}, rows), DefaultOptions())
	require.NoError(t, err)
	b, err := Analyze(table.New("b", []string{"n", "s"}, rev), DefaultOptions())
	require.NoError(t, err)
	for j := range a.Quality.Completeness {
		assert.Equal(t, a.Quality.Completeness[j].Rate, b.Quality.Completeness[j].Rate)
		assert.InDelta(t, 0.8, a.Quality.Completeness[j].Rate, 1e-12)
	}
}

func TestAnalyzeRejectsEmptyTable(t *testing.T) {
	_, err := Analyze(table.New("empty", []string{"a", "b"}, nil), DefaultOptions())
	assert.ErrorIs(t, err, table.ErrValidation)
}

func TestEmptyColumnGroupsGiveEmptySections(t *testing.T) {
	tb := table.New("nums", []string{"a", "b"}, [][]string{{"1", "2"}, {"3", "4"}})
	rep, err := Analyze(tb, DefaultOptions())
	require.NoError(t, err)
	assert.NotNil(t, rep.Categorical)
	assert.Empty(t, rep.Categorical)
	assert.NotNil(t, rep.Quality.FormatConsistency)
	assert.Empty(t, rep.Quality.FormatConsistency)
	assert.Len(t, rep.Quality.Accuracy, 2)
}

func TestUnavailableColumnDoesNotAbort(t *testing.T) {
	c := &table.Cleaned{
		Table: &table.Table{Name: "broken", Columns: []table.Column{
			{Name: "ok", Values: []table.Value{table.Num(1), table.Num(2)}},
			{Name: "hollow", Values: []table.Value{table.Missing(), table.Missing()}},
		}},
		Missing:      [][]bool{{false, false}, {true, true}},
		OriginalRows: 2,
	}
	rep := AnalyzeCleaned(c, DefaultOptions())
	require.Len(t, rep.Numeric, 2)
	assert.NotNil(t, rep.Numeric[0].Profile)
	assert.Nil(t, rep.Numeric[1].Profile)
	assert.Contains(t, rep.Numeric[1].Unavailable, "no non-missing numeric values")
	assert.Equal(t, 1, rep.Overview.UnavailableColumns)
	assert.InDelta(t, 0.5, rep.Overview.OverallCompleteness, 1e-12)
}

func TestSampleViewsCapAndSeed(t *testing.T) {
	rows := make([][]string, 25)
	for i := range rows {
		rows[i] = []string{strconv.Itoa(i), "v" + strconv.Itoa(i)}
	}
	tb := table.New("big", []string{"i", "s"}, rows)
	opt := DefaultOptions()
	opt.SampleRows = 50
	a, err := Analyze(tb, opt)
	require.NoError(t, err)
	b, err := Analyze(tb, opt)
	require.NoError(t, err)

	assert.Len(t, a.Samples.Head.Rows, MaxSampleRows)
	assert.Len(t, a.Samples.Tail.Rows, MaxSampleRows)
	assert.Len(t, a.Samples.Random.Rows, MaxSampleRows)
	assert.Equal(t, float64(0), a.Samples.Head.Rows[0][0])
	assert.Equal(t, float64(24), a.Samples.Tail.Rows[MaxSampleRows-1][0])
	assert.Equal(t, a.Samples.Random, b.Samples.Random)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestQualityScore(t *testing.T) {
	rep, err := Analyze(ageEmail(), DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Quality.Scores, 2)
	// age: completeness 2/3, distinct {25,30,0} over 3 rows.
	assert.InDelta(t, (2.0/3*0.6+1*0.4)*100, rep.Quality.Scores[0].Score, 1e-9)
	assert.InDelta(t, (rep.Quality.Scores[0].Score+rep.Quality.Scores[1].Score)/2, rep.Overview.MeanQualityScore, 1e-9)
}

func TestBytesToMB(t *testing.T) {
	assert.Equal(t, 1.0, bytesToMB(1048576))
	assert.Equal(t, 0.0, bytesToMB(67))
	assert.Equal(t, 2.5, bytesToMB(2621440))
}

func TestMarkdownSections(t *testing.T) {
	rep, err := Analyze(ageEmail(), DefaultOptions())
	require.NoError(t, err)
	md := rep.Markdown()
	for _, want := range []string{"[DATASET SUMMARY]", "File: people.csv", "[SCHEMA]", "[NUMERIC PROFILES]", "[CATEGORICAL PROFILES]", "[FORMAT CONSISTENCY]", "email 66.7% (2/3)", "[HEAD ROWS]", "[NOTES]"} {
		assert.Contains(t, md, want)
	}
}

func TestNumericLookingCellsInTextColumn(t *testing.T) {
	tb := table.New("contacts.csv", []string{"id", "phone"}, [][]string{
		{"1", "01380013800"},
		{"2", "unknown"},
		{"3", "138-0013-8000"},
		{"4", "01380013800"},
	})
	rep, err := Analyze(tb, DefaultOptions())
	require.NoError(t, err)

	require.Len(t, rep.Quality.FormatConsistency, 1)
	phone := rep.Quality.FormatConsistency[0].Patterns["phone"]
	assert.Equal(t, 3, phone.Matches)
	assert.Equal(t, 4, phone.Total)

	require.Len(t, rep.Categorical, 1)
	p := rep.Categorical[0].Profile
	require.NotNil(t, p)
	assert.Equal(t, "01380013800", p.Top)
	assert.Equal(t, 2, p.TopFreq)
	assert.Equal(t, "01380013800", rep.Samples.Head.Rows[0][1])
}

func TestRepeatedHeadersProfiledSeparately(t *testing.T) {
	tb := table.New("dup.csv", []string{"a", "a"}, [][]string{{"1", "100"}, {"2", "200"}, {"3", "300"}})
	rep, err := Analyze(tb, DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Numeric, 2)
	assert.Equal(t, "a", rep.Numeric[0].Column)
	assert.Equal(t, "a.1", rep.Numeric[1].Column)
	assert.InDelta(t, 2.0, rep.Numeric[0].Profile.Mean, 1e-12)
	assert.InDelta(t, 200.0, rep.Numeric[1].Profile.Mean, 1e-12)
	require.Len(t, rep.Quality.Accuracy, 2)
	assert.Equal(t, "a.1", rep.Quality.Accuracy[1].Column)
}

func TestProfileReturnsCleanedTable(t *testing.T) {
	c, rep, err := Profile(ageEmail(), DefaultOptions())
	require.NoError(t, err)
	require.NotNil(t, c)
	assert.Equal(t, rep.Basic.Rows, c.Table.Rows())
	assert.Equal(t, []bool{false, false, true}, c.Missing[0])

	_, _, err = Profile(table.New("empty.csv", []string{"a", "b"}, nil), DefaultOptions())
	assert.ErrorIs(t, err, table.ErrValidation)
}

func TestTruncateRunesKeepsCharactersWhole(t *testing.T) {
	long := strings.Repeat("数据", 50)
	got := truncateRunes(long, 80)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, 80, utf8.RuneCountInString(got))
	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, "短", truncateRunes("短", 80))
}
