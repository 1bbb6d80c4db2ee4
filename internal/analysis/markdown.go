package analysis

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Markdown renders a compact report suitable for prompts or standalone docs.
func (r *Report) Markdown() string {
	var b strings.Builder
	b.WriteString("[DATASET SUMMARY]\n")
	if r.Name != "" {
		b.WriteString(fmt.Sprintf("File: %s\n", r.Name))
	}
	if r.Basic.OriginalRows > r.Basic.Rows {
		b.WriteString(fmt.Sprintf("Rows: %d (from %d before cleaning)\n", r.Basic.Rows, r.Basic.OriginalRows))
	} else {
		b.WriteString(fmt.Sprintf("Rows: %d\n", r.Basic.Rows))
	}
	b.WriteString(fmt.Sprintf("Columns: %d (numeric %d, categorical %d)\n", r.Basic.Columns, r.Overview.NumericColumns, r.Overview.CategoricalColumns))
	b.WriteString(fmt.Sprintf("Memory: %.2f MB\n", r.Basic.MemoryMB))
	b.WriteString(fmt.Sprintf("Completeness: %.1f%% (nulls %d)\n", r.Overview.OverallCompleteness*100, r.Overview.TotalNulls))
	b.WriteString(fmt.Sprintf("Quality score: %.1f\n\n", r.Overview.MeanQualityScore))

	b.WriteString("[SCHEMA]\n")
	for i, ct := range r.Basic.ColumnTypes {
		line := fmt.Sprintf("- %s: %s", safeName(ct.Name), ct.Type)
		if i < len(r.Quality.Completeness) {
			c := r.Quality.Completeness[i]
			line += fmt.Sprintf(" (missing %d, complete %.1f%%)", c.Missing, c.Rate*100)
		}
		b.WriteString(line + "\n")
	}

	if len(r.Numeric) > 0 {
		b.WriteString("\n[NUMERIC PROFILES]\n")
		acc := make(map[string]Accuracy, len(r.Quality.Accuracy))
		for _, a := range r.Quality.Accuracy {
			acc[a.Column] = a
		}
		for _, n := range r.Numeric {
			if n.Profile == nil {
				b.WriteString(fmt.Sprintf("- %s: unavailable (%s)\n", safeName(n.Column), n.Unavailable))
				continue
			}
			p := n.Profile
			b.WriteString(fmt.Sprintf("- %s: mean %.4g, median %.4g, std %.4g, min %.4g, q25 %.4g, q75 %.4g, max %.4g, skew %.3f, kurt %.3f",
				safeName(n.Column), p.Mean, p.Median, p.Std, p.Min, p.Q25, p.Q75, p.Max, p.Skewness, p.Kurtosis))
			if a, ok := acc[n.Column]; ok {
				b.WriteString(fmt.Sprintf("; negative %d, zero %d, outliers %d", a.Negative, a.Zero, a.Outliers))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Categorical) > 0 {
		b.WriteString("\n[CATEGORICAL PROFILES]\n")
		for _, c := range r.Categorical {
			if c.Profile == nil {
				b.WriteString(fmt.Sprintf("- %s: unavailable (%s)\n", safeName(c.Column), c.Unavailable))
				continue
			}
			b.WriteString(fmt.Sprintf("- %s: unique=%d, top: ", safeName(c.Column), c.Profile.Unique))
			for i, kv := range c.Profile.Frequencies {
				if i > 0 {
					b.WriteString(", ")
				}
				b.WriteString(fmt.Sprintf("%s(%d)", safeVal(kv.Value), kv.Count))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Quality.FormatConsistency) > 0 {
		b.WriteString("\n[FORMAT CONSISTENCY]\n")
		for _, f := range r.Quality.FormatConsistency {
			b.WriteString(fmt.Sprintf("- %s:", safeName(f.Column)))
			for _, p := range AllPatterns() {
				m := f.Patterns[p.String()]
				b.WriteString(fmt.Sprintf(" %s %.1f%% (%d/%d)", p, m.Rate*100, m.Matches, m.Total))
			}
			b.WriteString("\n")
		}
	}

	if len(r.Samples.Head.Rows) > 0 {
		b.WriteString("\n[HEAD ROWS]\n")
		writeSample(&b, r.Samples.Head)
	}
	if len(r.Warnings) > 0 {
		b.WriteString("\n[NOTES]\n")
		for _, w := range r.Warnings {
			b.WriteString("- ")
			b.WriteString(w)
			b.WriteString("\n")
		}
	}
	return b.String()
}

func writeSample(b *strings.Builder, s Sample) {
	b.WriteString("| ")
	for i, c := range s.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString(safeName(c))
	}
	b.WriteString(" |\n| ")
	for i := range s.Columns {
		if i > 0 {
			b.WriteString(" | ")
		}
		b.WriteString("---")
	}
	b.WriteString(" |\n")
	for _, row := range s.Rows {
		b.WriteString("| ")
		for i := range s.Columns {
			if i > 0 {
				b.WriteString(" | ")
			}
			val := ""
			if i < len(row) && row[i] != nil {
				val = fmt.Sprint(row[i])
			}
			val = truncateRunes(val, 80)
			b.WriteString(safeVal(val))
		}
		b.WriteString(" |\n")
	}
}

// truncateRunes shortens s to at most max runes, ending in "...".
func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	r := []rune(s)
	return string(r[:max-3]) + "..."
}

func safeName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "(unnamed)"
	}
	return s
}

func safeVal(s string) string { return strings.ReplaceAll(strings.ReplaceAll(s, "\n", " "), "|", "/") }
