// Package datatable manages DATA/READ/RESTORE literal tables (spec §3,
// "Data table"; §4.8 DATA/READ/RESTORE).
package datatable

import "github.com/basic1rv32/toolchain/internal/ir"

// Row is one DATA statement's literal list, tagged with the source line it
// appeared on so RESTORE <n> can find its start.
type Row struct {
	LineNum int32
	Values  []ir.TypedValue
}

// Table is the ordered DATA rows for one namespace plus the current read
// cursor (row index, value index within row).
type Table struct {
	Rows    []Row
	rowIdx  int
	valIdx  int
}

// New creates an empty table.
func New() *Table { return &Table{} }

// AddRow appends a DATA row.
func (t *Table) AddRow(lineNum int32, values []ir.TypedValue) {
	t.Rows = append(t.Rows, Row{LineNum: lineNum, Values: values})
}

// Restore resets the cursor. lineNum == 0 resets to the very first value;
// otherwise the cursor moves to the first row whose LineNum >= lineNum
// (spec §4.7: "RST,ns[,lbl] | DATA cursor read / reset").
func (t *Table) Restore(lineNum int32) bool {
	if lineNum == 0 {
		t.rowIdx, t.valIdx = 0, 0
		return true
	}
	for i, r := range t.Rows {
		if r.LineNum >= lineNum {
			t.rowIdx, t.valIdx = i, 0
			return true
		}
	}
	return false
}

// Next returns the next literal under the read cursor and advances it.
// ok is false when the table is exhausted.
func (t *Table) Next() (ir.TypedValue, bool) {
	for t.rowIdx < len(t.Rows) {
		row := t.Rows[t.rowIdx]
		if t.valIdx < len(row.Values) {
			v := row.Values[t.valIdx]
			t.valIdx++
			return v, true
		}
		t.rowIdx++
		t.valIdx = 0
	}
	return ir.TypedValue{}, false
}

// Len returns the total literal count across every row.
func (t *Table) Len() int {
	n := 0
	for _, r := range t.Rows {
		n += len(r.Values)
	}
	return n
}
