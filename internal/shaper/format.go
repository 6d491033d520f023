package shaper

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CurrencySymbol prefixes formatted money values.
const CurrencySymbol = "₹"

const displayDateLayout = "2 January 2006"

var (
	identifierColumn = regexp.MustCompile(`(?i)code|id|srno`)

	dateInputLayouts = []string{
		time.RFC3339Nano,
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05",
		"2006-01-02",
	}

	columnNames = map[string]string{
		"SRNO":             "Sr. No.",
		"TO_PARTY":         "Customer",
		"CLIENTUNIQUE":     "Client",
		"CLIENT_NAME":      "Client Name",
		"PARTY_NAME":       "Party Name",
		"SELLER_NAME":      "Seller",
		"EMP_CODE":         "Emp Code",
		"EMP_NAME":         "Employee Name",
		"TEMP_ID_CARD_NO":  "ID Card No",
		"TEMPIDCARDNO":     "ID Card No",
		"EMPSTATUS":        "Status",
		"EMP_STATUS":       "Status",
		"DAYS_PRESENT":     "Days Present",
		"WORK_HOUR":        "Work Hours",
		"GROSSVALUE":       "Gross Value",
		"PURCHASEVALUE":    "Purchase Value",
		"TOTALVALUE":       "Total Value",
		"TOTAL_VALUE":      "Total Value",
		"SALEAMOUNT":       "Sale Amount",
		"PAYMENTRECIEVED":  "Payment Received",
		"PENDING_PAYMENT":  "Pending Payment",
		"STOCK_QTY":        "Stock Quantity",
		"STOCK_VAL":        "Stock Value",
		"ORDERUNIT":        "Order Units",
		"ORDERMONTH":       "Order Month",
		"GROSS_AMOUNT":     "Gross Amount",
		"TOTALGST":         "Total GST",
		"GST_TOTAL":        "GST Total",
		"RETURN_TOTAL":     "Return Total",
		"CLOSING_BALANCE":  "Closing Balance",
		"EXPANSE_DATE":     "Expense Date",
		"EXPENSE_TYPE":     "Expense Type",
		"PAYMENT_DATE":     "Payment Date",
		"PURCHASE_TOTAL":   "Purchase Total",
		"BASIC_SALARY":     "Basic Salary",
		"SAL_BASIS":        "Salary Basis",
		"PERDAY":           "Per Day",
		"PERHOUR":          "Per Hour",
		"SALARY_VALUE":     "Salary Value",
		"SALARY_PAID":      "Salary Paid",
		"OLD_ADVANCE":      "Old Advance",
		"SALARY_DUE":       "Salary Due",
		"BALANCE_PAYABLE":  "Balance Payable",
		"COLLECTIONBY":     "Collected By",
		"INVOICECOUNT":     "Invoice Count",
		"TODONO":           "To-Do No",
		"STATUSCODE":       "Status Code",
		"CONTACTNO":        "Contact No",
		"REMINDERDATE":     "Reminder Date",
		"ACTIONABLEPERSON": "Actionable Person",
	}
)

// FormatColumnName turns a database column name into a table header.
func FormatColumnName(name string) string {
	if label, ok := columnNames[name]; ok {
		return label
	}
	words := splitWords(name)
	if len(words) == 0 {
		return name
	}
	title := cases.Title(language.English)
	for i, w := range words {
		words[i] = title.String(w)
	}
	return strings.Join(words, " ")
}

// FormatColumnNames maps FormatColumnName over cols.
func FormatColumnNames(cols []string) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = FormatColumnName(c)
	}
	return out
}

// splitWords breaks on underscores, spaces and lower-to-upper case changes.
func splitWords(s string) []string {
	var (
		words []string
		cur   []rune
	)
	flush := func() {
		if len(cur) > 0 {
			words = append(words, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case r == '_' || unicode.IsSpace(r):
			flush()
		case unicode.IsUpper(r) && unicode.IsLower(prev):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return words
}

// FormatCell renders a cell for display. Date columns render as
// "D Month YYYY"; numbers above 1000 outside code/id/srno columns render as
// currency with Indian digit grouping. The value itself is not modified.
func FormatCell(column string, value any) string {
	if value == nil {
		return ""
	}

	if strings.Contains(strings.ToLower(column), "date") {
		if t, ok := asTime(value); ok {
			return t.Format(displayDateLayout)
		}
	}

	if isNumberType(value) {
		f, _ := asNumber(value)
		if f > 1000 && !identifierColumn.MatchString(column) {
			return FormatCurrency(f)
		}
		return formatPlainNumber(value)
	}

	switch v := value.(type) {
	case string:
		return v
	case time.Time:
		return v.Format(time.RFC3339)
	case bool:
		return strconv.FormatBool(v)
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}

// FormatCurrency renders f as "₹1,23,456.70".
func FormatCurrency(f float64) string {
	fixed := decimal.NewFromFloat(f).StringFixed(2)
	neg := strings.HasPrefix(fixed, "-")
	fixed = strings.TrimPrefix(fixed, "-")

	intPart, frac, _ := strings.Cut(fixed, ".")
	grouped := groupIndian(intPart)
	if neg {
		return "-" + CurrencySymbol + grouped + "." + frac
	}
	return CurrencySymbol + grouped + "." + frac
}

// groupIndian groups the last three digits, then pairs: 12345678 -> 1,23,45,678.
func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	if head != "" {
		parts = append([]string{head}, parts...)
	}
	return strings.Join(parts, ",") + "," + tail
}

func isNumberType(v any) bool {
	switch v.(type) {
	case float64, float32, int, int8, int16, int32, int64, uint8, uint16, uint32, uint64:
		return true
	}
	return false
}

func formatPlainNumber(v any) string {
	switch n := v.(type) {
	case float64:
		return strconv.FormatFloat(n, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(n), 'f', -1, 32)
	default:
		return fmt.Sprint(n)
	}
}

func asTime(v any) (time.Time, bool) {
	switch t := v.(type) {
	case time.Time:
		return t, !t.IsZero()
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range dateInputLayouts {
			if parsed, err := time.Parse(layout, s); err == nil {
				return parsed, true
			}
		}
	}
	return time.Time{}, false
}
