package table

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ValueKind tags the logical type carried by a Value.
type ValueKind int

const (
	KindMissing ValueKind = iota
	KindNumber
	KindText
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindText:
		return "text"
	default:
		return "missing"
	}
}

// Value is a single table cell.
type Value struct {
	Kind ValueKind
	Num  float64
	// Str is the text of a Text cell, or the source spelling of a Number
	// parsed from text ("01380013800", "1.50").
	Str string
	// Int records that the number was written without a fractional part.
	Int bool
}

// Num builds a numeric cell. NaN and ±Inf become missing cells.
func Num(f float64) Value {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return Missing()
	}
	return Value{Kind: KindNumber, Num: f, Int: f == math.Trunc(f)}
}

// Text builds a text cell.
func Text(s string) Value { return Value{Kind: KindText, Str: s} }

// Missing builds a missing cell.
func Missing() Value { return Value{Kind: KindMissing} }

// IsMissing reports whether the cell carries no value.
func (v Value) IsMissing() bool { return v.Kind == KindMissing }

// String renders the cell as it was written in the source. Numbers built
// with Num have no source text and render in shortest form.
func (v Value) String() string {
	switch v.Kind {
	case KindNumber:
		if v.Str != "" {
			return v.Str
		}
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	case KindText:
		return v.Str
	default:
		return ""
	}
}

// Canonical renders numbers in shortest form, so 1, 1.0 and 1e0 compare
// equal. Other cells render as String does.
func (v Value) Canonical() string {
	if v.Kind == KindNumber {
		return strconv.FormatFloat(v.Num, 'f', -1, 64)
	}
	return v.String()
}

// Native returns the cell as a plain Go scalar: float64, string or nil.
func (v Value) Native() any {
	switch v.Kind {
	case KindNumber:
		return v.Num
	case KindText:
		return v.Str
	default:
		return nil
	}
}

var missingMarkers = map[string]struct{}{
	"": {}, "na": {}, "n/a": {}, "nan": {}, "-nan": {}, "null": {}, "none": {}, "#n/a": {},
}

// IsMissingMarker reports whether s is one of the recognised NA spellings.
func IsMissingMarker(s string) bool {
	_, ok := missingMarkers[strings.ToLower(strings.TrimSpace(s))]
	return ok
}

// ParseCell converts a raw string cell into a Value.
func ParseCell(s string) Value {
	raw := strings.TrimSpace(s)
	if IsMissingMarker(raw) {
		return Missing()
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return Value{Kind: KindNumber, Num: float64(i), Str: raw, Int: true}
	}
	if f, err := strconv.ParseFloat(raw, 64); err == nil {
		// inf, Infinity and nan spellings carry no usable value
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return Missing()
		}
		return Value{Kind: KindNumber, Num: f, Str: raw}
	}
	return Text(raw)
}

// Column is a named, ordered sequence of cells.
type Column struct {
	Name   string
	Values []Value
}

// Table is an ordered set of equally sized columns.
type Table struct {
	Name    string
	Columns []Column
}

// New builds a table from a header and string rows. Short rows are padded
// with missing cells; extra cells are ignored. Repeated header names get
// ".1", ".2", ... suffixes.
func New(name string, header []string, rows [][]string) *Table {
	names := UniqueNames(header)
	t := &Table{Name: name, Columns: make([]Column, len(header))}
	for j := range header {
		t.Columns[j] = Column{Name: names[j], Values: make([]Value, len(rows))}
	}
	for i, row := range rows {
		for j := range header {
			if j < len(row) {
				t.Columns[j].Values[i] = ParseCell(row[j])
			} else {
				t.Columns[j].Values[i] = Missing()
			}
		}
	}
	return t
}

// UniqueNames trims header names and renames repeats to "name.1",
// "name.2", ... skipping suffixes already taken by another header.
func UniqueNames(header []string) []string {
	out := make([]string, len(header))
	taken := make(map[string]struct{}, len(header))
	for _, h := range header {
		taken[strings.TrimSpace(h)] = struct{}{}
	}
	last := make(map[string]int, len(header))
	for j, h := range header {
		name := strings.TrimSpace(h)
		n, dup := last[name]
		if !dup {
			last[name] = 0
			out[j] = name
			continue
		}
		cand := name
		for {
			n++
			cand = fmt.Sprintf("%s.%d", name, n)
			if _, ok := taken[cand]; !ok {
				break
			}
		}
		taken[cand] = struct{}{}
		last[name] = n
		out[j] = cand
	}
	return out
}

// Rows returns the row count. Columns are assumed to be aligned.
func (t *Table) Rows() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// Column looks up a column by name.
func (t *Table) Column(name string) (*Column, bool) {
	for i := range t.Columns {
		if t.Columns[i].Name == name {
			return &t.Columns[i], true
		}
	}
	return nil, false
}

// Names lists the column names in order.
func (t *Table) Names() []string {
	out := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		out[i] = c.Name
	}
	return out
}

// Validate checks that every column has the same length.
func (t *Table) Validate() error {
	n := t.Rows()
	for _, c := range t.Columns {
		if len(c.Values) != n {
			return &ValidationError{Reason: fmt.Sprintf("column %q has %d rows, want %d", c.Name, len(c.Values), n)}
		}
	}
	return nil
}

// Row returns row i as cells in column order.
func (t *Table) Row(i int) []Value {
	out := make([]Value, len(t.Columns))
	for j := range t.Columns {
		out[j] = t.Columns[j].Values[i]
	}
	return out
}

// Floats returns the numeric cells of a column with NaN in place of
// missing or non-numeric cells.
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.Values))
	for i, v := range c.Values {
		if v.Kind == KindNumber {
			out[i] = v.Num
		} else {
			out[i] = math.NaN()
		}
	}
	return out
}

// Strings returns every cell rendered as a string; missing cells are "".
func (c *Column) Strings() []string {
	out := make([]string, len(c.Values))
	for i, v := range c.Values {
		out[i] = v.String()
	}
	return out
}

// NonMissing counts cells that carry a value.
func (c *Column) NonMissing() int {
	n := 0
	for _, v := range c.Values {
		if !v.IsMissing() {
			n++
		}
	}
	return n
}
