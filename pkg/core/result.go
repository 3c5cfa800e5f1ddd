// Package core defines the leaf domain types shared by all funnelboard
// components: tabular query results and warehouse source configuration.
//
// The Golden Rule: pkg/core imports stdlib only (see arch_test.go).
package core

// Value is a single result cell. It is always one of:
// nil, int64, float64, or string.
type Value = any

// ResultSet is a tabular query result: an ordered list of column names and
// row-major values of uniform width. A ResultSet is immutable once produced
// by a warehouse adapter; reshaping code must copy before mutating.
type ResultSet struct {
	Columns []string
	Rows    [][]Value
}

// ColumnIndex returns the index of the named column, or -1 if absent.
func (rs ResultSet) ColumnIndex(name string) int {
	for i, c := range rs.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// NumRows returns the number of rows.
func (rs ResultSet) NumRows() int {
	return len(rs.Rows)
}

// FloatAt returns the numeric value at (row, col) as a float64.
// The second return is false for nil cells and non-numeric values.
func (rs ResultSet) FloatAt(row, col int) (float64, bool) {
	if row < 0 || row >= len(rs.Rows) || col < 0 || col >= len(rs.Columns) {
		return 0, false
	}
	return AsFloat(rs.Rows[row][col])
}

// StringAt returns the string value at (row, col), or "" for non-strings.
func (rs ResultSet) StringAt(row, col int) string {
	if row < 0 || row >= len(rs.Rows) || col < 0 || col >= len(rs.Columns) {
		return ""
	}
	s, _ := rs.Rows[row][col].(string)
	return s
}

// SumFloat sums the named column, skipping nil cells.
// Returns false if the column is absent.
func (rs ResultSet) SumFloat(name string) (float64, bool) {
	idx := rs.ColumnIndex(name)
	if idx < 0 {
		return 0, false
	}
	var sum float64
	for _, row := range rs.Rows {
		if v, ok := AsFloat(row[idx]); ok {
			sum += v
		}
	}
	return sum, true
}

// Clone returns a deep copy of the ResultSet. Reshaping code uses this to
// honor the immutability of adapter-produced results.
func (rs ResultSet) Clone() ResultSet {
	out := ResultSet{
		Columns: append([]string(nil), rs.Columns...),
		Rows:    make([][]Value, len(rs.Rows)),
	}
	for i, row := range rs.Rows {
		out.Rows[i] = append([]Value(nil), row...)
	}
	return out
}

// AsFloat converts a cell to float64. nil and non-numeric cells return false.
func AsFloat(v Value) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}
