package table

// IsNumeric reports whether every non-missing cell of the column is a number.
// A column with no values at all counts as numeric.
func IsNumeric(c *Column) bool {
	for _, v := range c.Values {
		if v.Kind == KindText {
			return false
		}
	}
	return true
}

// Classify partitions column names into numeric and categorical groups,
// preserving table order within each group. Either group may be empty.
func Classify(t *Table) (numeric, categorical []string) {
	numeric = []string{}
	categorical = []string{}
	for i := range t.Columns {
		if IsNumeric(&t.Columns[i]) {
			numeric = append(numeric, t.Columns[i].Name)
		} else {
			categorical = append(categorical, t.Columns[i].Name)
		}
	}
	return numeric, categorical
}

// DeclaredType names the storage type of a column: integer, float or text.
func DeclaredType(c *Column) string {
	if !IsNumeric(c) {
		return "text"
	}
	for _, v := range c.Values {
		if v.Kind == KindNumber && !v.Int {
			return "float"
		}
	}
	return "integer"
}

// MemoryBytes estimates the in-memory footprint of the table: 8 bytes per
// numeric cell, and a 16 byte header plus payload per text cell.
func MemoryBytes(t *Table) int64 {
	var n int64
	for i := range t.Columns {
		numeric := IsNumeric(&t.Columns[i])
		for _, v := range t.Columns[i].Values {
			if numeric {
				n += 8
				continue
			}
			n += 16 + int64(len(v.Str))
		}
	}
	return n
}
