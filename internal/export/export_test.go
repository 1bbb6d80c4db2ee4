package export

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/KaramelBytes/tabprofile/internal/analysis"
	"github.com/KaramelBytes/tabprofile/internal/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleReport(t *testing.T) *analysis.Report {
	t.Helper()
	tb := table.New("orders.csv", []string{"id", "amount", "email", "sparse"}, [][]string{
		{"1", "12.5", "a@b.com", "x"},
		{"2", "-3", "bad", ""},
		{"3", "", "c@d.com", ""},
		{"3", "", "c@d.com", ""},
		{"4", "1000.25", "d@e.org", ""},
		{"5", "0.1", "e@f.net", ""},
	})
	rep, err := analysis.Analyze(tb, analysis.DefaultOptions())
	require.NoError(t, err)
	require.NotEmpty(t, rep.Basic.Dropped)
	return rep
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"": Markdown, "MD": Markdown, "json": JSON, "yml": YAML, "yaml": YAML} {
		got, err := ParseFormat(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
	assert.Equal(t, "yaml", YAML.Ext())
	assert.Equal(t, "md", Markdown.Ext())
}

func TestRoundTrip(t *testing.T) {
	rep := sampleReport(t)
	for _, f := range []Format{JSON, YAML} {
		t.Run(string(f), func(t *testing.T) {
			b, err := Encode(rep, f)
			require.NoError(t, err)
			got, err := Decode(b, f)
			require.NoError(t, err)

			assert.Equal(t, rep.ID, got.ID)
			assert.True(t, rep.GeneratedAt.Equal(got.GeneratedAt))
			assert.Equal(t, rep.Basic, got.Basic)
			assert.Equal(t, rep.Quality, got.Quality)
			assert.Equal(t, rep.Samples, got.Samples)
			assert.Equal(t, rep.Warnings, got.Warnings)
			assert.InDelta(t, rep.Overview.OverallCompleteness, got.Overview.OverallCompleteness, 1e-9)
			assert.InDelta(t, rep.Overview.MeanQualityScore, got.Overview.MeanQualityScore, 1e-9)

			require.Len(t, got.Numeric, len(rep.Numeric))
			for i, n := range rep.Numeric {
				want, have := n.Profile, got.Numeric[i].Profile
				require.NotNil(t, have)
				assert.Equal(t, want.Count, have.Count)
				for _, pair := range [][2]float64{
					{want.Mean, have.Mean}, {want.Median, have.Median}, {want.Std, have.Std},
					{want.Min, have.Min}, {want.Max, have.Max}, {want.Q25, have.Q25},
					{want.Q75, have.Q75}, {want.Skewness, have.Skewness}, {want.Kurtosis, have.Kurtosis},
				} {
					assert.InDelta(t, pair[0], pair[1], 1e-9)
				}
			}
			assert.Equal(t, rep.Categorical, got.Categorical)
		})
	}
}

func TestEncodeNativeNumbers(t *testing.T) {
	rep := sampleReport(t)
	b, err := Encode(rep, JSON)
	require.NoError(t, err)
	s := string(b)
	assert.Contains(t, s, `"rows": 5`)
	assert.Contains(t, s, `"basic_info"`)
	assert.NotContains(t, s, "NaN")
}

func TestInfiniteCellsEncode(t *testing.T) {
	tb := table.New("inf.csv", []string{"v", "label"}, [][]string{
		{"1", "a"},
		{"inf", "b"},
		{"3", "c"},
		{"-Infinity", "d"},
	})
	rep, err := analysis.Analyze(tb, analysis.DefaultOptions())
	require.NoError(t, err)
	require.Len(t, rep.Numeric, 1)
	require.NotNil(t, rep.Numeric[0].Profile)
	assert.Equal(t, 3.0, rep.Numeric[0].Profile.Max)

	for _, f := range []Format{JSON, YAML} {
		b, err := Encode(rep, f)
		require.NoError(t, err, f)
		got, err := Decode(b, f)
		require.NoError(t, err, f)
		assert.Equal(t, rep.Samples, got.Samples, f)
		assert.Equal(t, 2, got.Quality.Completeness[0].Missing, f)
	}
}

func TestTextColumnSamplesKeepSpelling(t *testing.T) {
	tb := table.New("phones.csv", []string{"n", "phone"}, [][]string{
		{"1", "01380013800"},
		{"2", "unknown"},
		{"3", "1.50"},
	})
	rep, err := analysis.Analyze(tb, analysis.DefaultOptions())
	require.NoError(t, err)
	b, err := Encode(rep, YAML)
	require.NoError(t, err)
	got, err := Decode(b, YAML)
	require.NoError(t, err)
	assert.Equal(t, []any{1.0, "01380013800"}, got.Samples.Head.Rows[0])
	assert.Equal(t, "1.50", got.Samples.Head.Rows[2][1])
}

func TestDecodeMarkdownRejected(t *testing.T) {
	_, err := Decode([]byte("[DATASET SUMMARY]"), Markdown)
	assert.ErrorIs(t, err, ErrNotDecodable)
}

func TestWriteFile(t *testing.T) {
	rep := sampleReport(t)
	path := filepath.Join(t.TempDir(), "out", "orders.profile.md")
	require.NoError(t, WriteFile(rep, Markdown, path))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(b), "[DATASET SUMMARY]"))
}
