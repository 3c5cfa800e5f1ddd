// Package views reshapes warehouse ResultSets into the derived shapes the
// dashboard widgets bind to: renamed columns, filtered rows, melted series,
// and pivoted matrices.
//
// Every transform is pure and deterministic: it copies rather than mutating
// its input, performs no I/O, and fails only on a missing required column,
// which means the catalog and binder have drifted apart.
package views

import (
	"fmt"

	"github.com/meridian-data/funnelboard/pkg/core"
)

// ContractError reports a column the catalog's SQL did not produce. It is a
// programmer error, not a runtime-recoverable condition: callers should fail
// the whole render loudly rather than show an incomplete view.
type ContractError struct {
	Transform string
	Column    string
}

func (e *ContractError) Error() string {
	return fmt.Sprintf("views: %s requires column %q which the result does not contain", e.Transform, e.Column)
}

// Rename relabels columns via a lookup table, preserving order. Columns
// absent from the mapping keep their name; mapping keys absent from the
// result are ignored (a rename is cosmetic, not a contract).
func Rename(rs core.ResultSet, mapping map[string]string) core.ResultSet {
	out := rs.Clone()
	for i, c := range out.Columns {
		if label, ok := mapping[c]; ok {
			out.Columns[i] = label
		}
	}
	return out
}

// Select projects the result onto the named columns, in the given order.
func Select(rs core.ResultSet, columns ...string) (core.ResultSet, error) {
	idx := make([]int, len(columns))
	for i, c := range columns {
		j := rs.ColumnIndex(c)
		if j < 0 {
			return core.ResultSet{}, &ContractError{Transform: "select", Column: c}
		}
		idx[i] = j
	}

	out := core.ResultSet{
		Columns: append([]string(nil), columns...),
		Rows:    make([][]core.Value, len(rs.Rows)),
	}
	for r, row := range rs.Rows {
		projected := make([]core.Value, len(idx))
		for i, j := range idx {
			projected[i] = row[j]
		}
		out.Rows[r] = projected
	}
	return out, nil
}

// FilterRows drops rows whose value in column matches any excluded label.
// Used to keep "No Score" off charts while leaving it in the paired table.
func FilterRows(rs core.ResultSet, column string, exclude ...string) (core.ResultSet, error) {
	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return core.ResultSet{}, &ContractError{Transform: "filter", Column: column}
	}

	excluded := make(map[string]bool, len(exclude))
	for _, label := range exclude {
		excluded[label] = true
	}

	out := core.ResultSet{Columns: append([]string(nil), rs.Columns...)}
	for _, row := range rs.Rows {
		if label, ok := row[idx].(string); ok && excluded[label] {
			continue
		}
		out.Rows = append(out.Rows, append([]core.Value(nil), row...))
	}
	return out, nil
}

// Reorder sorts rows by a fixed label order on the named column, ignoring
// any warehouse-returned order. Rows with labels outside the order list are
// appended last in their original relative order.
func Reorder(rs core.ResultSet, column string, order []string) (core.ResultSet, error) {
	idx := rs.ColumnIndex(column)
	if idx < 0 {
		return core.ResultSet{}, &ContractError{Transform: "reorder", Column: column}
	}

	rank := make(map[string]int, len(order))
	for i, label := range order {
		rank[label] = i
	}

	out := core.ResultSet{Columns: append([]string(nil), rs.Columns...)}
	out.Rows = make([][]core.Value, 0, len(rs.Rows))

	for _, label := range order {
		for _, row := range rs.Rows {
			if l, ok := row[idx].(string); ok && l == label {
				out.Rows = append(out.Rows, append([]core.Value(nil), row...))
			}
		}
	}
	for _, row := range rs.Rows {
		label, ok := row[idx].(string)
		if !ok {
			out.Rows = append(out.Rows, append([]core.Value(nil), row...))
			continue
		}
		if _, known := rank[label]; !known {
			out.Rows = append(out.Rows, append([]core.Value(nil), row...))
		}
	}
	return out, nil
}

// Melt converts wide rate columns into long form: one row per (id, series)
// pair with a categorical series column and a single value column. Series
// names label the former columns in grouped-bar legends.
func Melt(rs core.ResultSet, idColumn string, valueColumns []string, seriesNames []string, seriesColumn, valueColumn string) (core.ResultSet, error) {
	if len(valueColumns) != len(seriesNames) {
		return core.ResultSet{}, fmt.Errorf("views: melt needs one series name per value column, got %d and %d",
			len(seriesNames), len(valueColumns))
	}

	idIdx := rs.ColumnIndex(idColumn)
	if idIdx < 0 {
		return core.ResultSet{}, &ContractError{Transform: "melt", Column: idColumn}
	}
	valIdx := make([]int, len(valueColumns))
	for i, c := range valueColumns {
		j := rs.ColumnIndex(c)
		if j < 0 {
			return core.ResultSet{}, &ContractError{Transform: "melt", Column: c}
		}
		valIdx[i] = j
	}

	out := core.ResultSet{Columns: []string{idColumn, seriesColumn, valueColumn}}
	for _, row := range rs.Rows {
		for i, j := range valIdx {
			out.Rows = append(out.Rows, []core.Value{row[idIdx], seriesNames[i], row[j]})
		}
	}
	return out, nil
}

// Matrix is a pivoted 2-D view: Cells[r][c] is the value for RowLabels[r] ×
// ColLabels[c], or nil where the unpivoted result has no such pair.
type Matrix struct {
	RowLabels []string
	ColLabels []string
	Cells     [][]core.Value
}

// At returns the cell for a label pair; nil for unknown labels or absent
// pairs (absent pairs render blank, never zero).
func (m Matrix) At(rowLabel, colLabel string) core.Value {
	for r, rl := range m.RowLabels {
		if rl != rowLabel {
			continue
		}
		for c, cl := range m.ColLabels {
			if cl == colLabel {
				return m.Cells[r][c]
			}
		}
	}
	return nil
}

// Pivot reshapes (row, col, value) triples into a Matrix with the given
// explicit axis orders rather than the pivot's natural sort. Triples whose
// labels fall outside the axis orders are dropped.
func Pivot(rs core.ResultSet, rowColumn, colColumn, valueColumn string, rowOrder, colOrder []string) (Matrix, error) {
	rIdx := rs.ColumnIndex(rowColumn)
	if rIdx < 0 {
		return Matrix{}, &ContractError{Transform: "pivot", Column: rowColumn}
	}
	cIdx := rs.ColumnIndex(colColumn)
	if cIdx < 0 {
		return Matrix{}, &ContractError{Transform: "pivot", Column: colColumn}
	}
	vIdx := rs.ColumnIndex(valueColumn)
	if vIdx < 0 {
		return Matrix{}, &ContractError{Transform: "pivot", Column: valueColumn}
	}

	rowRank := make(map[string]int, len(rowOrder))
	for i, l := range rowOrder {
		rowRank[l] = i
	}
	colRank := make(map[string]int, len(colOrder))
	for i, l := range colOrder {
		colRank[l] = i
	}

	m := Matrix{
		RowLabels: append([]string(nil), rowOrder...),
		ColLabels: append([]string(nil), colOrder...),
		Cells:     make([][]core.Value, len(rowOrder)),
	}
	for r := range m.Cells {
		m.Cells[r] = make([]core.Value, len(colOrder))
	}

	for _, row := range rs.Rows {
		rl, _ := row[rIdx].(string)
		cl, _ := row[cIdx].(string)
		r, okR := rowRank[rl]
		c, okC := colRank[cl]
		if !okR || !okC {
			continue
		}
		m.Cells[r][c] = row[vIdx]
	}
	return m, nil
}
