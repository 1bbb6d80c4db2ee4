package analysis

// Overview is the headline section of a Report.
type Overview struct {
	Rows                int     `json:"rows" yaml:"rows"`
	Columns             int     `json:"columns" yaml:"columns"`
	NumericColumns      int     `json:"numeric_columns" yaml:"numeric_columns"`
	CategoricalColumns  int     `json:"categorical_columns" yaml:"categorical_columns"`
	OverallCompleteness float64 `json:"overall_completeness" yaml:"overall_completeness"`
	TotalNulls          int     `json:"total_nulls" yaml:"total_nulls"`
	MemoryMB            float64 `json:"memory_mb" yaml:"memory_mb"`
	MeanQualityScore    float64 `json:"mean_quality_score" yaml:"mean_quality_score"`
	UnavailableColumns  int     `json:"unavailable_columns" yaml:"unavailable_columns"`
}

// Summarize composes the overview from the other sections of r.
//
// OverallCompleteness is the unweighted mean of the per-column rates. Every
// column counts the same, so one empty column among many complete ones
// still pulls the figure down visibly.
func Summarize(r *Report) Overview {
	o := Overview{
		Rows:               r.Basic.Rows,
		Columns:            r.Basic.Columns,
		NumericColumns:     len(r.Numeric),
		CategoricalColumns: len(r.Categorical),
		MemoryMB:           r.Basic.MemoryMB,
	}
	if n := len(r.Quality.Completeness); n > 0 {
		var sum float64
		for _, c := range r.Quality.Completeness {
			sum += c.Rate
			o.TotalNulls += c.Missing
		}
		o.OverallCompleteness = sum / float64(n)
	}
	if n := len(r.Quality.Scores); n > 0 {
		var sum float64
		for _, s := range r.Quality.Scores {
			sum += s.Score
		}
		o.MeanQualityScore = sum / float64(n)
	}
	for _, c := range r.Numeric {
		if c.Profile == nil {
			o.UnavailableColumns++
		}
	}
	for _, c := range r.Categorical {
		if c.Profile == nil {
			o.UnavailableColumns++
		}
	}
	return o
}
