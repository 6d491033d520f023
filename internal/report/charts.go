package report

import (
	"cmp"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

const grandTotalLabel = "GRAND TOTAL"

// ProjectCharts runs the chart projection registered for key. Unknown keys
// project nothing.
func (r *Registry) ProjectCharts(key string, result *domain.RecordsetResult) domain.Charts {
	d, ok := r.byKey[key]
	if !ok || result == nil {
		return domain.Charts{}
	}
	return d.ProjectCharts(result)
}

// IsGrandTotal reports whether a label marks a grand total row. Procedures
// spell it "GRAND TOTAL", "GRAND TOTAL :" or "Grand Total ".
func IsGrandTotal(v any) bool {
	s, ok := v.(string)
	if !ok {
		return false
	}
	s = strings.TrimSpace(s)
	s = strings.TrimSpace(strings.TrimSuffix(s, ":"))
	return strings.EqualFold(s, grandTotalLabel)
}

func projectNothing(*domain.RecordsetResult) domain.Charts {
	return domain.Charts{}
}

// seriesSpec picks one label column and value columns from a recordset.
type seriesSpec struct {
	name      string
	headers   []string
	label     []string
	values    []string
	skipLabel func(row domain.Row) bool
}

func (s seriesSpec) build(rs domain.Recordset) domain.ChartSeries {
	series := domain.ChartSeries{
		Name:    s.name,
		Title:   seriesTitle(s.name),
		Headers: slices.Clone(s.headers),
		Data:    make([]domain.ChartPoint, 0, rs.Len()),
	}
	for _, row := range rs.Rows {
		if rowIsGrandTotal(row, s.label...) {
			continue
		}
		if s.skipLabel != nil && s.skipLabel(row) {
			continue
		}
		point := domain.ChartPoint{
			Label:  labelOf(row, s.label...),
			Values: make([]float64, len(s.values)),
		}
		for i, col := range s.values {
			point.Values[i] = numberOf(row[col])
		}
		series.Data = append(series.Data, point)
	}
	return series
}

func enough(result *domain.RecordsetResult, min int) bool {
	return len(result.NonEmpty()) >= min && len(result.Recordsets) >= min
}

func projectSales(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 4) {
		return domain.Charts{}
	}
	customers, brands := result.Recordsets[2], result.Recordsets[3]
	return domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "customerUnitsData", headers: []string{"Customer", "Units"}, label: []string{"TO_PARTY"}, values: []string{"UNITS"}}.build(customers),
		seriesSpec{name: "customerRevenueData", headers: []string{"Customer", "Revenue"}, label: []string{"TO_PARTY"}, values: []string{"GROSSVALUE"}}.build(customers),
		seriesSpec{name: "brandUnitsData", headers: []string{"Brand", "Units"}, label: []string{"BRAND"}, values: []string{"UNITS"}}.build(brands),
		seriesSpec{name: "brandRevenueData", headers: []string{"Brand", "Revenue"}, label: []string{"BRAND"}, values: []string{"GROSSVALUE"}}.build(brands),
	}}
}

func projectPurchase(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 2) {
		return domain.Charts{}
	}
	return domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "sellerPurchaseData", headers: []string{"Seller", "Purchase Value", "Total Value"}, label: []string{"SELLER_NAME"}, values: []string{"PURCHASEVALUE", "TOTALVALUE"}}.build(result.Recordsets[0]),
		seriesSpec{name: "brandPurchaseData", headers: []string{"Brand", "Purchase Value", "Total Value"}, label: []string{"BRAND"}, values: []string{"PURCHASEVALUE", "TOTALVALUE"}}.build(result.Recordsets[1]),
	}}
}

func projectStock(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 3) {
		return domain.Charts{}
	}
	brands := result.Recordsets[2]
	return domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "brandStockQtyData", headers: []string{"Brand", "Stock Quantity"}, label: []string{"BRAND"}, values: []string{"STOCK_QTY"}}.build(brands),
		seriesSpec{name: "brandStockValueData", headers: []string{"Brand", "Stock Value"}, label: []string{"BRAND"}, values: []string{"STOCK_VAL"}}.build(brands),
	}}
}

func projectPayment(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 2) {
		return domain.Charts{}
	}
	detailed, parties := result.Recordsets[0], result.Recordsets[1]
	charts := domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "partyPaymentData", headers: []string{"Party", "Payment Amount"}, label: []string{"PARTY_NAME"}, values: []string{"AMOUNT"}}.build(parties),
		seriesSpec{
			name:    "paymentTrendData",
			headers: []string{"Date", "Payment Amount"},
			label:   []string{"PAYMENT_DATE"},
			values:  []string{"AMOUNT"},
			skipLabel: func(row domain.Row) bool {
				return row["PAYMENT_DATE"] == nil || IsGrandTotal(row["PARTY_NAME"])
			},
		}.build(detailed),
	}}
	if gt, ok := findGrandTotal(parties, "PARTY_NAME"); ok {
		charts.Summaries = append(charts.Summaries, summary("totalPayments", "Total Payments Received", gt, "AMOUNT"))
	}
	return charts
}

func projectPending(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 1) {
		return domain.Charts{}
	}
	rs := result.Recordsets[0]
	charts := domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{
			name:    "pendingPaymentData",
			headers: []string{"Party", "Sale Amount", "Payment Received", "Pending Payment"},
			label:   []string{"PARTY_NAME"},
			values:  []string{"SALEAMOUNT", "PAYMENTRECIEVED", "PENDING_PAYMENT"},
		}.build(rs),
	}}
	if gt, ok := findGrandTotal(rs, "PARTY_NAME"); ok {
		charts.Summaries = append(charts.Summaries, summary("totalPending", "Total Pending Payment", gt, "PENDING_PAYMENT"))
	}
	return charts
}

func projectOrders(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 3) {
		return domain.Charts{}
	}
	values := []string{"ORDERUNIT", "TOTAL_VALUE"}
	return domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "ordersByMonthData", headers: []string{"Month", "Order Units", "Total Value"}, label: []string{"ORDERMONTH"}, values: values}.build(result.Recordsets[0]),
		seriesSpec{name: "ordersByClientData", headers: []string{"Client", "Order Units", "Total Value"}, label: []string{"CLIENT_NAME"}, values: values}.build(result.Recordsets[1]),
		seriesSpec{name: "ordersByBrandData", headers: []string{"Brand", "Order Units", "Total Value"}, label: []string{"BRAND"}, values: values}.build(result.Recordsets[2]),
	}}
}

func projectPettyExpense(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 2) {
		return domain.Charts{}
	}
	label := []string{"EXPENSE_TYPE", "CATEGORY", "DESCRIPTION"}
	return domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "expenseItemsData", headers: []string{"Item", "Total Value"}, label: label, values: []string{"TOTAL_VALUE"}}.build(result.Recordsets[0]),
		seriesSpec{name: "expenseSummaryData", headers: []string{"Item", "Total Value"}, label: label, values: []string{"TOTAL_VALUE"}}.build(result.Recordsets[1]),
	}}
}

func projectCreditors(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 1) {
		return domain.Charts{}
	}
	rs := result.Recordsets[0]
	charts := domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{
			name:    "creditorsData",
			headers: []string{"Seller", "Purchase Total", "Credit", "Closing Balance"},
			label:   []string{"SELLER_NAME"},
			values:  []string{"PURCHASE_TOTAL", "CREDIT", "CLOSING_BALANCE"},
		}.build(rs),
	}}
	if gt, ok := findGrandTotal(rs, "SELLER_NAME"); ok {
		charts.Summaries = append(charts.Summaries,
			summary("totalPurchase", "Total Purchase", gt, "PURCHASE_TOTAL"),
			summary("totalCredit", "Total Credit", gt, "CREDIT"),
			summary("closingBalance", "Closing Balance", gt, "CLOSING_BALANCE"),
		)
	}
	return charts
}

func projectDebitors(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 1) {
		return domain.Charts{}
	}
	rs := result.Recordsets[0]
	charts := domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{
			name:    "debitorsData",
			headers: []string{"Customer", "GST Total", "Credit", "Closing Balance"},
			label:   []string{"TO_PARTY"},
			values:  []string{"GST_TOTAL", "CREDIT", "CLOSING_BALANCE"},
		}.build(rs),
	}}
	if gt, ok := findGrandTotal(rs, "TO_PARTY"); ok {
		charts.Summaries = append(charts.Summaries,
			summary("totalGST", "Total GST", gt, "GST_TOTAL"),
			summary("totalCredit", "Total Credit", gt, "CREDIT"),
			summary("closingBalance", "Closing Balance", gt, "CLOSING_BALANCE"),
		)
	}
	return charts
}

func projectAttendance(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 1) {
		return domain.Charts{}
	}
	return domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "attendanceData", headers: []string{"Employee", "Days Present", "Work Hours"}, label: []string{"EMP_NAME", "EMP_CODE"}, values: []string{"DAYS_PRESENT", "WORK_HOUR"}}.build(result.Recordsets[0]),
	}}
}

func projectDailyActivity(result *domain.RecordsetResult) domain.Charts {
	if !enough(result, 3) {
		return domain.Charts{}
	}
	activities, attendance, expenses := result.Recordsets[0], result.Recordsets[1], result.Recordsets[2]
	nullDate := func(col string) func(domain.Row) bool {
		return func(row domain.Row) bool { return row[col] == nil }
	}
	charts := domain.Charts{Series: []domain.ChartSeries{
		seriesSpec{name: "businessActivityData", headers: []string{"Process", "Units", "Gross Value", "Total Value"}, label: []string{"PROCESSNAME"}, values: []string{"UNIT", "GROSSVALUE", "TOTALVALUE"}}.build(activities),
		seriesSpec{name: "attendanceTrendData", headers: []string{"Date", "Attendance"}, label: []string{"DATE_OF_ATTENDANCE"}, values: []string{"ATTENDANCE"}, skipLabel: nullDate("DATE_OF_ATTENDANCE")}.build(attendance),
		seriesSpec{name: "expenseTrendData", headers: []string{"Date", "Total Value"}, label: []string{"EXPANSE_DATE"}, values: []string{"TOTAL_VALUE"}, skipLabel: nullDate("EXPANSE_DATE")}.build(expenses),
	}}
	// The row without a date carries the period total.
	if row, ok := findRow(attendance, nullDate("DATE_OF_ATTENDANCE")); ok {
		charts.Summaries = append(charts.Summaries, summary("totalAttendance", "Total Attendance", row, "ATTENDANCE"))
	}
	if row, ok := findRow(expenses, nullDate("EXPANSE_DATE")); ok {
		charts.Summaries = append(charts.Summaries, summary("totalExpenses", "Total Expenses", row, "TOTAL_VALUE"))
	}
	return charts
}

const maxPaymentModes = 10

func collectionProjector(prefix string) domain.ChartProjector {
	name := func(suffix string) string {
		if prefix == "" {
			return suffix
		}
		return prefix + strings.ToUpper(suffix[:1]) + suffix[1:]
	}
	return func(result *domain.RecordsetResult) domain.Charts {
		if !enough(result, 3) {
			return domain.Charts{}
		}
		summaryRows, byMode := result.Recordsets[1], result.Recordsets[2]

		perPerson := seriesSpec{
			name:    name("summaryData"),
			headers: []string{"Collected By", "Invoices", "Amount"},
			label:   []string{"COLLECTIONBY"},
			values:  []string{"INVOICECOUNT", "AMOUNT"},
		}.build(summaryRows)
		slices.SortStableFunc(perPerson.Data, func(a, b domain.ChartPoint) int {
			return cmp.Compare(b.Values[1], a.Values[1])
		})

		modes := domain.ChartSeries{
			Name:    name("byModeData"),
			Headers: []string{"Payment Mode", "Amount", "Invoices"},
		}
		modes.Title = seriesTitle(modes.Name)
		index := map[string]int{}
		for _, row := range byMode.Rows {
			if row["COLLECTIONBY"] == nil || IsGrandTotal(row["COLLECTIONBY"]) {
				continue
			}
			mode := labelOf(row, "PAYMENT_MODE")
			i, seen := index[mode]
			if !seen {
				i = len(modes.Data)
				index[mode] = i
				modes.Data = append(modes.Data, domain.ChartPoint{Label: mode, Values: make([]float64, 2)})
			}
			modes.Data[i].Values[0] += numberOf(row["AMOUNT"])
			modes.Data[i].Values[1] += numberOf(row["INVOICECOUNT"])
		}
		slices.SortStableFunc(modes.Data, func(a, b domain.ChartPoint) int {
			return cmp.Compare(b.Values[0], a.Values[0])
		})
		if len(modes.Data) > maxPaymentModes {
			modes.Data = modes.Data[:maxPaymentModes]
		}

		charts := domain.Charts{Series: []domain.ChartSeries{perPerson, modes}}
		if gt, ok := findGrandTotal(summaryRows, "COLLECTIONBY"); ok {
			charts.Summaries = append(charts.Summaries,
				summary(name("totalAmount"), "Total Collection", gt, "AMOUNT"),
				summary(name("totalInvoices"), "Total Invoices", gt, "INVOICECOUNT"),
			)
		}
		return charts
	}
}

func rowIsGrandTotal(row domain.Row, cols ...string) bool {
	for _, col := range cols {
		if IsGrandTotal(row[col]) {
			return true
		}
	}
	return false
}

func findGrandTotal(rs domain.Recordset, col string) (domain.Row, bool) {
	return findRow(rs, func(row domain.Row) bool { return IsGrandTotal(row[col]) })
}

func findRow(rs domain.Recordset, match func(domain.Row) bool) (domain.Row, bool) {
	for _, row := range rs.Rows {
		if match(row) {
			return row, true
		}
	}
	return nil, false
}

func summary(name, label string, row domain.Row, col string) domain.SummaryFigure {
	return domain.SummaryFigure{Name: name, Label: label, Value: numberOf(row[col])}
}

// labelOf returns the first non-empty value among cols, or "Unknown".
func labelOf(row domain.Row, cols ...string) string {
	for _, col := range cols {
		switch v := row[col].(type) {
		case nil:
			continue
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case time.Time:
			return v.Format(domain.DateLayout)
		default:
			return fmt.Sprint(v)
		}
	}
	return "Unknown"
}

// numberOf coerces a cell to float64; anything unparseable is 0.
func numberOf(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int32:
		return float64(n)
	case int64:
		return float64(n)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		return f
	case []byte:
		f, err := strconv.ParseFloat(strings.TrimSpace(string(n)), 64)
		if err != nil {
			return 0
		}
		return f
	case bool:
		if n {
			return 1
		}
	}
	return 0
}

// seriesTitle turns "customerUnitsData" into "Customer Units Chart".
func seriesTitle(name string) string {
	name = strings.TrimSuffix(name, "Data")
	var b strings.Builder
	for i, r := range name {
		if i == 0 {
			b.WriteRune(unicode.ToUpper(r))
			continue
		}
		if unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	b.WriteString(" Chart")
	return b.String()
}
