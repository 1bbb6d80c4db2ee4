package analysis

import (
	"sort"

	"github.com/KaramelBytes/tabprofile/internal/table"
)

// DefaultTopValues caps the frequency list of a categorical profile.
const DefaultTopValues = 10

// CategoryCount is one entry of a frequency list.
type CategoryCount struct {
	Value string `json:"value" yaml:"value"`
	Count int    `json:"count" yaml:"count"`
}

// CategoricalProfile summarizes one text column. The empty string left by
// gap-filling is an ordinary category, so sparse text columns show an
// inflated "" frequency.
type CategoricalProfile struct {
	Count       int             `json:"count" yaml:"count"`
	Unique      int             `json:"unique" yaml:"unique"`
	Top         string          `json:"top" yaml:"top"`
	TopFreq     int             `json:"top_freq" yaml:"top_freq"`
	Frequencies []CategoryCount `json:"frequencies" yaml:"frequencies"`
}

// ProfileCategorical counts the non-missing values of a column. Ties in
// count are broken by first occurrence. topN <= 0 means DefaultTopValues.
func ProfileCategorical(column string, values []table.Value, topN int) (CategoricalProfile, error) {
	if topN <= 0 {
		topN = DefaultTopValues
	}
	counts := make(map[string]int)
	var order []string
	total := 0
	for _, v := range values {
		if v.IsMissing() {
			continue
		}
		s := v.String()
		if _, ok := counts[s]; !ok {
			order = append(order, s)
		}
		counts[s]++
		total++
	}
	if total == 0 {
		return CategoricalProfile{}, &table.ComputationError{Column: column, Reason: "no non-missing values"}
	}
	freq := make([]CategoryCount, len(order))
	for i, s := range order {
		freq[i] = CategoryCount{Value: s, Count: counts[s]}
	}
	// order is first-occurrence order, so a stable sort keeps the tie-break.
	sort.SliceStable(freq, func(i, j int) bool { return freq[i].Count > freq[j].Count })

	p := CategoricalProfile{
		Count:   total,
		Unique:  len(order),
		Top:     freq[0].Value,
		TopFreq: freq[0].Count,
	}
	if len(freq) > topN {
		freq = freq[:topN]
	}
	p.Frequencies = freq
	return p, nil
}
