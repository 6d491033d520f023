package shaper

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func descriptor(labels ...string) domain.ReportDescriptor {
	return domain.ReportDescriptor{Key: "purchase_report", Label: "Purchase Report", Procedure: "proc_summary_purchase1", ResultSetLabels: labels}
}

func TestToTablesUsesLabelsWhenCountMatches(t *testing.T) {
	sellers := domain.NewRecordset([]string{"SELLER_NAME", "PURCHASEVALUE"}, []any{"ACME", 1200.0})
	brands := domain.NewRecordset([]string{"BRAND", "PURCHASEVALUE"}, []any{"SONY", 900.0})
	res := &domain.RecordsetResult{Recordsets: []domain.Recordset{sellers, {Columns: []string{"X"}}, brands}}

	tables := ToTables(res, descriptor("Seller Summary", "Brand Summary"))
	require.Len(t, tables, 3)
	assert.Equal(t, "Seller Summary", tables[0].Title)
	assert.Equal(t, []string{"SELLER_NAME", "PURCHASEVALUE"}, tables[0].Columns)
	assert.Equal(t, []string{"Seller", "Purchase Value"}, tables[0].Headers)
	assert.True(t, tables[1].Empty)
	assert.Equal(t, 1, tables[1].Index)
	assert.Equal(t, "Brand Summary", tables[2].Title)
	assert.Equal(t, 2, tables[2].Index)
}

func TestToTablesKeepsEmptySetsInPlace(t *testing.T) {
	res := &domain.RecordsetResult{Recordsets: []domain.Recordset{
		domain.NewRecordset([]string{"A"}, []any{1}),
		{Columns: []string{"B"}},
		domain.NewRecordset([]string{"C"}, []any{3}),
	}}
	stock := domain.ReportDescriptor{
		Key:             "stock_report",
		Label:           "Stock",
		ResultSetLabels: []string{"Detailed Stock", "Summary Stock", "Brand Summary"},
	}

	tables := ToTables(res, stock)
	require.Len(t, tables, 3)
	for i, table := range tables {
		assert.Equal(t, i, table.Index)
	}
	assert.Equal(t, "Stock (Result 1)", tables[0].Title)
	assert.False(t, tables[0].Empty)
	assert.Equal(t, "Stock (Result 2)", tables[1].Title)
	assert.True(t, tables[1].Empty)
	assert.Empty(t, tables[1].Rows)
	assert.Equal(t, "Stock (Result 3)", tables[2].Title)
	assert.False(t, tables[2].Empty)
}

func TestToTablesAddsDisplayCells(t *testing.T) {
	day := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)
	rs := domain.NewRecordset([]string{"PAYMENT_DATE", "PARTY_NAME", "AMOUNT"},
		[]any{day, "ACME", 125000.5},
		[]any{nil, "GRAND TOTAL", 320.0},
	)
	res := &domain.RecordsetResult{Recordsets: []domain.Recordset{rs}}

	tables := ToTables(res, descriptor("Payments"))
	require.Len(t, tables, 1)
	assert.Equal(t, [][]string{
		{"7 March 2024", "ACME", "₹1,25,000.50"},
		{"", "GRAND TOTAL", "320"},
	}, tables[0].Display)
	assert.Equal(t, 125000.5, tables[0].Rows[0]["AMOUNT"], "raw rows stay unformatted")
	assert.Equal(t, day, tables[0].Rows[0]["PAYMENT_DATE"])

	sorted := SortTable(tables[0], SortState{Column: "AMOUNT", Direction: Ascending})
	assert.Equal(t, []string{"", "GRAND TOTAL", "320"}, sorted.Display[0])
	assert.Equal(t, "7 March 2024", tables[0].Display[0][0], "sorting copies the table")

	body, err := json.Marshal(tables[0])
	require.NoError(t, err)
	assert.Contains(t, string(body), `"AMOUNT":125000.5`)
	assert.Contains(t, string(body), `"display":[["7 March 2024","ACME","₹1,25,000.50"]`)
}

func TestToTablesFallsBackToGenericTitles(t *testing.T) {
	rs := domain.NewRecordset([]string{"A"}, []any{1})
	res := &domain.RecordsetResult{Recordsets: []domain.Recordset{rs, {}, rs, rs}}

	tables := ToTables(res, descriptor("Seller Summary", "Brand Summary"))
	require.Len(t, tables, 4)
	assert.Equal(t, "Purchase Report (Result 1)", tables[0].Title)
	assert.Equal(t, "Purchase Report (Result 2)", tables[1].Title)
	assert.True(t, tables[1].Empty)
	assert.Equal(t, "Purchase Report (Result 3)", tables[2].Title)
	assert.Equal(t, "Purchase Report (Result 4)", tables[3].Title)
}

func TestToTablesNoData(t *testing.T) {
	tables := ToTables(&domain.RecordsetResult{}, domain.ReportDescriptor{})
	require.Len(t, tables, 1)
	assert.True(t, tables[0].Empty)
	assert.Equal(t, NoDataTitle, tables[0].Title)
}

func TestToTablesColumnsFromFirstRowWhenUndeclared(t *testing.T) {
	res := &domain.RecordsetResult{Recordsets: []domain.Recordset{{Rows: []domain.Row{{"B": 1, "A": 2}}}}}
	tables := ToTables(res, descriptor("Only"))
	assert.Equal(t, []string{"A", "B"}, tables[0].Columns)
}

func TestSortStateCycle(t *testing.T) {
	var s SortState
	s = s.Next("AMOUNT")
	assert.Equal(t, SortState{Column: "AMOUNT", Direction: Ascending}, s)
	s = s.Next("AMOUNT")
	assert.Equal(t, Descending, s.Direction)
	s = s.Next("AMOUNT")
	assert.Equal(t, SortState{}, s)

	s = SortState{Column: "AMOUNT", Direction: Descending}.Next("BRAND")
	assert.Equal(t, SortState{Column: "BRAND", Direction: Ascending}, s)
}

func amounts(rows []domain.Row) []any {
	out := make([]any, len(rows))
	for i, r := range rows {
		out[i] = r["AMOUNT"]
	}
	return out
}

func TestSortRowsNumericCycle(t *testing.T) {
	rows := domain.NewRecordset([]string{"PARTY", "AMOUNT"},
		[]any{"A", 30.0},
		[]any{"B", "4"},
		[]any{"C", int64(200)},
		[]any{"D", 15.5},
	).Rows
	original := amounts(rows)

	var state SortState
	state = state.Next("AMOUNT")
	asc := SortRows(rows, state)
	assert.Equal(t, []any{"4", 15.5, 30.0, int64(200)}, amounts(asc))

	state = state.Next("AMOUNT")
	desc := SortRows(rows, state)
	reversed := amounts(asc)
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	assert.Equal(t, reversed, amounts(desc))

	state = state.Next("AMOUNT")
	assert.Equal(t, original, amounts(SortRows(rows, state)))
	assert.Equal(t, original, amounts(rows), "input must not be reordered")
}

func TestSortRowsNullsFirst(t *testing.T) {
	rows := domain.NewRecordset([]string{"AMOUNT"}, []any{5}, []any{nil}, []any{1}).Rows
	delete(rows[2], "AMOUNT")

	asc := SortRows(rows, SortState{Column: "AMOUNT", Direction: Ascending})
	assert.Nil(t, asc[0]["AMOUNT"])
	assert.Nil(t, asc[1]["AMOUNT"])
	assert.Equal(t, 5, asc[2]["AMOUNT"])

	desc := SortRows(rows, SortState{Column: "AMOUNT", Direction: Descending})
	assert.Nil(t, desc[0]["AMOUNT"])
}

func TestSortRowsStringFallback(t *testing.T) {
	rows := domain.NewRecordset([]string{"AMOUNT"}, []any{"10"}, []any{"9"}, []any{"n/a"}).Rows
	asc := SortRows(rows, SortState{Column: "AMOUNT", Direction: Ascending})
	assert.Equal(t, []any{"10", "9", "n/a"}, amounts(asc))
}

func TestFormatCell(t *testing.T) {
	day := time.Date(2024, time.March, 7, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name   string
		column string
		value  any
		want   string
	}{
		{"date value", "PAYMENT_DATE", day, "7 March 2024"},
		{"date string", "EXPANSE_DATE", "2024-03-07T00:00:00.000Z", "7 March 2024"},
		{"bad date string", "REMINDERDATE", "soon", "soon"},
		{"currency", "AMOUNT", 1234567.891, "₹12,34,567.89"},
		{"small number", "AMOUNT", 999.5, "999.5"},
		{"exactly 1000", "AMOUNT", 1000, "1000"},
		{"code column", "EMP_CODE", 100234, "100234"},
		{"id column", "INVOICE_ID", 5000.0, "5000"},
		{"srno column", "SRNO", int64(4500), "4500"},
		{"numeric text untouched", "AMOUNT", "5000", "5000"},
		{"nil", "AMOUNT", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatCell(tt.column, tt.value))
		})
	}
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "₹1,001.00", FormatCurrency(1001))
	assert.Equal(t, "₹1,00,000.50", FormatCurrency(100000.5))
	assert.Equal(t, "₹12,34,56,789.00", FormatCurrency(123456789))
}

func TestFormatColumnName(t *testing.T) {
	assert.Equal(t, "Sr. No.", FormatColumnName("SRNO"))
	assert.Equal(t, "Customer", FormatColumnName("TO_PARTY"))
	assert.Equal(t, "Invoice No", FormatColumnName("INVOICE_NO"))
	assert.Equal(t, "Entry Time", FormatColumnName("entryTime"))
	assert.Equal(t, "Brand", FormatColumnName("BRAND"))
}
