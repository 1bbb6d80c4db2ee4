package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultMissingThreshold is the minimum non-missing fraction a column needs
// to survive cleaning.
const DefaultMissingThreshold = 0.7

// CleanOptions controls TableCleaner behaviour.
type CleanOptions struct {
	// MissingThreshold is a fraction of the row count. Columns with fewer
	// non-missing cells than floor(MissingThreshold*rows) are dropped. 0 means
	// default.
	MissingThreshold float64
}

// FillNote records how many cells of a column were gap-filled.
type FillNote struct {
	Column  string `json:"column" yaml:"column"`
	Count   int    `json:"count" yaml:"count"`
	Numeric bool   `json:"numeric" yaml:"numeric"`
}

// Cleaned is the output of Clean. Missing is aligned with Table.Columns and
// holds the pre-fill missingness of every surviving cell, so consumers can
// tell a filled gap from a genuine 0 or "".
type Cleaned struct {
	Table             *Table
	Missing           [][]bool
	Dropped           []string
	Filled            []FillNote
	OriginalRows      int
	DuplicatesRemoved int
	// Threshold is the non-missing fraction that was applied.
	Threshold float64
}

// MissingCount returns the number of originally missing cells in column j.
func (c *Cleaned) MissingCount(j int) int {
	n := 0
	for _, m := range c.Missing[j] {
		if m {
			n++
		}
	}
	return n
}

// Clean drops sparse columns, fills the remaining gaps and removes exact
// duplicate rows, in that order.
//
// Filling is a policy, not imputation: numeric gaps become 0 and every other
// gap becomes "". Zero-fill is lossy and pulls numeric statistics toward
// zero; the Filled notes let callers surface that.
func Clean(t *Table, opt CleanOptions) (*Cleaned, error) {
	if t == nil {
		return nil, &ValidationError{Reason: "no table"}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	ratio := opt.MissingThreshold
	if ratio <= 0 {
		ratio = DefaultMissingThreshold
	}
	rows := t.Rows()
	// Truncated, so 2 of 3 present cells survive the 0.7 default.
	threshold := int(math.Floor(ratio * float64(rows)))

	// Hand-built tables may repeat names; lookups by name need them unique.
	names := UniqueNames(t.Names())
	out := &Cleaned{Table: &Table{Name: t.Name}, OriginalRows: rows, Threshold: ratio}
	for j, col := range t.Columns {
		col.Name = names[j]
		if col.NonMissing() < threshold {
			out.Dropped = append(out.Dropped, col.Name)
			continue
		}
		numeric := IsNumeric(&col)
		mask := make([]bool, rows)
		vals := make([]Value, rows)
		filled := 0
		for i, v := range col.Values {
			if !v.IsMissing() {
				vals[i] = v
				continue
			}
			mask[i] = true
			filled++
			if numeric {
				vals[i] = Value{Kind: KindNumber, Num: 0, Int: true}
			} else {
				vals[i] = Text("")
			}
		}
		if filled > 0 {
			out.Filled = append(out.Filled, FillNote{Column: col.Name, Count: filled, Numeric: numeric})
		}
		out.Table.Columns = append(out.Table.Columns, Column{Name: col.Name, Values: vals})
		out.Missing = append(out.Missing, mask)
	}

	out.dedupe()

	if out.Table.Rows() == 0 {
		return nil, &ValidationError{Reason: "table is empty after cleaning"}
	}
	if len(out.Table.Columns) < 2 {
		return nil, &ValidationError{Reason: fmt.Sprintf("%d column(s) left after cleaning, need at least 2", len(out.Table.Columns))}
	}
	return out, nil
}

// dedupe keeps the first occurrence of every distinct row, preserving order.
func (c *Cleaned) dedupe() {
	rows := c.Table.Rows()
	if rows == 0 || len(c.Table.Columns) == 0 {
		return
	}
	numeric := make([]bool, len(c.Table.Columns))
	for j := range c.Table.Columns {
		numeric[j] = IsNumeric(&c.Table.Columns[j])
	}
	seen := make(map[string]struct{}, rows)
	keep := make([]int, 0, rows)
	var b strings.Builder
	for i := 0; i < rows; i++ {
		b.Reset()
		for j := range c.Table.Columns {
			v := c.Table.Columns[j].Values[i]
			// numeric columns compare by value, text columns by spelling
			s := v.String()
			if numeric[j] {
				s = v.Canonical()
			}
			b.WriteByte(byte('0' + v.Kind))
			b.WriteString(strconv.Itoa(len(s)))
			b.WriteByte(':')
			b.WriteString(s)
		}
		key := b.String()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		keep = append(keep, i)
	}
	if len(keep) == rows {
		return
	}
	c.DuplicatesRemoved = rows - len(keep)
	for j := range c.Table.Columns {
		vals := make([]Value, len(keep))
		mask := make([]bool, len(keep))
		for k, i := range keep {
			vals[k] = c.Table.Columns[j].Values[i]
			mask[k] = c.Missing[j][i]
		}
		c.Table.Columns[j].Values = vals
		c.Missing[j] = mask
	}
}
