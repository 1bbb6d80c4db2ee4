package analysis

import (
	"regexp"

	"github.com/KaramelBytes/tabprofile/internal/table"
)

// Pattern is one of the fixed structural formats scanned in text columns.
type Pattern int

const (
	PatternEmail Pattern = iota
	PatternPhone
	PatternDate
	patternCount
)

var patterns = [patternCount]struct {
	name string
	re   *regexp.Regexp
}{
	PatternEmail: {"email", regexp.MustCompile(`^[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}$`)},
	PatternPhone: {"phone", regexp.MustCompile(`^(?:\d{11}|\d{3}-\d{4}-\d{4})$`)},
	PatternDate:  {"date", regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)},
}

func (p Pattern) String() string {
	if p < 0 || p >= patternCount {
		return "unknown"
	}
	return patterns[p].name
}

// Match reports whether the whole string has the pattern's shape.
func (p Pattern) Match(s string) bool {
	if p < 0 || p >= patternCount {
		return false
	}
	return patterns[p].re.MatchString(s)
}

// AllPatterns lists every pattern in a stable order.
func AllPatterns() []Pattern {
	out := make([]Pattern, 0, patternCount)
	for p := Pattern(0); p < patternCount; p++ {
		out = append(out, p)
	}
	return out
}

// Completeness is the share of originally present cells in a column.
type Completeness struct {
	Column  string  `json:"column" yaml:"column"`
	Rate    float64 `json:"rate" yaml:"rate"`
	Missing int     `json:"missing" yaml:"missing"`
	Total   int     `json:"total" yaml:"total"`
}

// FormatMatch is the result of scanning one column for one pattern.
type FormatMatch struct {
	Rate    float64 `json:"rate" yaml:"rate"`
	Matches int     `json:"matches" yaml:"matches"`
	Total   int     `json:"total" yaml:"total"`
}

// FormatConsistency holds the match results of a text column keyed by
// pattern name.
type FormatConsistency struct {
	Column   string                 `json:"column" yaml:"column"`
	Patterns map[string]FormatMatch `json:"patterns" yaml:"patterns"`
}

// Accuracy flags suspicious numeric values in a column.
type Accuracy struct {
	Column   string `json:"column" yaml:"column"`
	Negative int    `json:"negative" yaml:"negative"`
	Zero     int    `json:"zero" yaml:"zero"`
	Outliers int    `json:"outliers" yaml:"outliers"`
}

// QualityScore blends completeness and uniqueness into a 0-100 score.
type QualityScore struct {
	Column       string  `json:"column" yaml:"column"`
	Completeness float64 `json:"completeness" yaml:"completeness"`
	Uniqueness   float64 `json:"uniqueness" yaml:"uniqueness"`
	Score        float64 `json:"score" yaml:"score"`
}

// QualityMetrics is the data-quality section of a Report.
type QualityMetrics struct {
	Completeness      []Completeness      `json:"completeness" yaml:"completeness"`
	FormatConsistency []FormatConsistency `json:"format_consistency" yaml:"format_consistency"`
	Accuracy          []Accuracy          `json:"accuracy" yaml:"accuracy"`
	Scores            []QualityScore      `json:"scores" yaml:"scores"`
}

// AnalyzeQuality measures completeness from the pre-fill mask, scans text
// columns for the fixed formats and counts negative, zero and outlying
// numeric values. Missing column groups give empty sections, never errors.
//
// Zero counts run on the cleaned values, so zero-filled gaps are counted as
// zeros; the completeness section tells the two apart.
func AnalyzeQuality(c *table.Cleaned, iqrMultiplier float64) QualityMetrics {
	if iqrMultiplier <= 0 {
		iqrMultiplier = DefaultIQRMultiplier
	}
	q := QualityMetrics{
		Completeness:      []Completeness{},
		FormatConsistency: []FormatConsistency{},
		Accuracy:          []Accuracy{},
		Scores:            []QualityScore{},
	}
	rows := c.Table.Rows()
	for j := range c.Table.Columns {
		col := &c.Table.Columns[j]
		missing := c.MissingCount(j)
		rate := 0.0
		if rows > 0 {
			rate = 1 - float64(missing)/float64(rows)
		}
		q.Completeness = append(q.Completeness, Completeness{Column: col.Name, Rate: rate, Missing: missing, Total: rows})
		q.Scores = append(q.Scores, scoreColumn(col, rate, rows))

		if table.IsNumeric(col) {
			q.Accuracy = append(q.Accuracy, accuracy(col, iqrMultiplier))
		} else {
			q.FormatConsistency = append(q.FormatConsistency, formatConsistency(col))
		}
	}
	return q
}

func formatConsistency(col *table.Column) FormatConsistency {
	out := FormatConsistency{Column: col.Name, Patterns: make(map[string]FormatMatch, patternCount)}
	values := col.Strings()
	for _, p := range AllPatterns() {
		m := FormatMatch{Total: len(values)}
		for _, s := range values {
			if p.Match(s) {
				m.Matches++
			}
		}
		if m.Total > 0 {
			m.Rate = float64(m.Matches) / float64(m.Total)
		}
		out.Patterns[p.String()] = m
	}
	return out
}

func accuracy(col *table.Column, k float64) Accuracy {
	a := Accuracy{Column: col.Name}
	xs := col.Floats()
	for _, v := range xs {
		switch {
		case v < 0:
			a.Negative++
		case v == 0:
			a.Zero++
		}
	}
	a.Outliers = CountOutliers(xs, k)
	return a
}

func scoreColumn(col *table.Column, completeness float64, rows int) QualityScore {
	distinct := make(map[string]struct{})
	numeric := table.IsNumeric(col)
	for _, v := range col.Values {
		if v.IsMissing() {
			continue
		}
		if numeric {
			distinct[v.Canonical()] = struct{}{}
		} else {
			distinct[v.String()] = struct{}{}
		}
	}
	uniq := 0.0
	if rows > 0 {
		uniq = float64(len(distinct)) / float64(rows)
	}
	return QualityScore{
		Column:       col.Name,
		Completeness: completeness,
		Uniqueness:   uniq,
		Score:        (completeness*0.6 + uniq*0.4) * 100,
	}
}
