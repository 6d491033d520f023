// Package shaper turns raw recordsets into titled, sortable and formatted
// tables. Nothing here mutates the recordsets it is given.
package shaper

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

// NoDataTitle is used when a call returned no rows at all.
const NoDataTitle = "No data"

// ToTables titles every recordset of the call in order. When the non-empty
// count matches the descriptor's labels, the labels go to the non-empty sets
// in order; otherwise each set gets a generic "(Result N)" title where N is
// its 1-based position in the call's output. Empty sets keep their place
// and are flagged Empty.
func ToTables(result *domain.RecordsetResult, d domain.ReportDescriptor) []domain.Table {
	var sets []domain.Recordset
	if result != nil {
		sets = result.Recordsets
	}

	nonEmpty := 0
	for _, rs := range sets {
		if rs.Len() > 0 {
			nonEmpty++
		}
	}

	if nonEmpty == 0 {
		title := strings.TrimSpace(d.Label)
		if title == "" {
			title = NoDataTitle
		}
		return []domain.Table{{Title: title, Index: 0, Empty: true}}
	}

	labelled := len(d.ResultSetLabels) == nonEmpty
	tables := make([]domain.Table, 0, len(sets))
	n := 0
	for idx, rs := range sets {
		title := genericTitle(d.Label, idx)
		if rs.Len() == 0 {
			tables = append(tables, domain.Table{Title: title, Index: idx, Columns: columnsOf(rs), Empty: true})
			continue
		}
		if labelled {
			title = d.ResultSetLabels[n]
		}
		n++
		cols := columnsOf(rs)
		tables = append(tables, domain.Table{
			Title:   title,
			Index:   idx,
			Columns: cols,
			Headers: FormatColumnNames(cols),
			Rows:    rs.Rows,
			Display: DisplayRows(cols, rs.Rows),
		})
	}
	return tables
}

// DisplayRows renders rows cell by cell with FormatCell. The rows are
// read only.
func DisplayRows(columns []string, rows []domain.Row) [][]string {
	out := make([][]string, len(rows))
	for i, row := range rows {
		cells := make([]string, len(columns))
		for j, col := range columns {
			cells[j] = FormatCell(col, row[col])
		}
		out[i] = cells
	}
	return out
}

func genericTitle(label string, idx int) string {
	return strings.TrimSpace(fmt.Sprintf("%s (Result %d)", label, idx+1))
}

// columnsOf prefers the recordset's declared column order and falls back
// to the sorted keys of the first row.
func columnsOf(rs domain.Recordset) []string {
	if len(rs.Columns) > 0 {
		return slices.Clone(rs.Columns)
	}
	if rs.Len() == 0 {
		return nil
	}
	cols := make([]string, 0, len(rs.Rows[0]))
	for k := range rs.Rows[0] {
		cols = append(cols, k)
	}
	sort.Strings(cols)
	return cols
}

// SortTable returns a copy of t with its rows ordered by state.
func SortTable(t domain.Table, state SortState) domain.Table {
	t.Rows = SortRows(t.Rows, state)
	if t.Display != nil {
		t.Display = DisplayRows(t.Columns, t.Rows)
	}
	return t
}
