package report

import (
	"fmt"
	"slices"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

// Report keys.
const (
	SalesReport           = "sales_report"
	PurchaseReport        = "purchase_report"
	StockReport           = "stock_report"
	PaymentReport         = "payment_report"
	PendingReport         = "pending_report"
	OrderReport           = "order_report"
	PettyExpenseReport    = "petty_expense_report"
	CreditorsReport       = "creditors_report"
	DebitorsReport        = "debitors_report"
	HRReport              = "hr_report"
	DailyActivityReport   = "daily_activity_report"
	CollectionReport      = "collection_report"
	CollectionBrandReport = "collection_brand_report"
	TodoReport            = "todo_report"
)

var dateRangeOnly = []domain.FilterKind{domain.FilterDateRange}

func builtinDescriptors() []domain.ReportDescriptor {
	return []domain.ReportDescriptor{
		{
			Key:             SalesReport,
			Label:           "Sales Report",
			Procedure:       "proc_CHutilizedatewise_reportf2",
			ResultSetLabels: []string{"Detailed Transactions", "Invoice Summary", "Customer Summary", "Brand Summary"},
			Filters:         []domain.FilterKind{domain.FilterDateRange, domain.FilterBrand, domain.FilterCustomer},
			BuildParams:     salesParams,
			ProjectCharts:   projectSales,
		},
		{
			Key:             PurchaseReport,
			Label:           "Purchase Report",
			Procedure:       "proc_summary_purchase1",
			ResultSetLabels: []string{"Seller Summary", "Brand Summary"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("fromdate", "todate"),
			ProjectCharts:   projectPurchase,
		},
		{
			Key:             StockReport,
			Label:           "Current Stock Report",
			Procedure:       "proc_CHgetstockfordisbushCurrent",
			ResultSetLabels: []string{"Detailed Stock", "Summary Stock", "Brand Summary"},
			Filters:         []domain.FilterKind{domain.FilterNone},
			BuildParams:     noParams,
			ProjectCharts:   projectStock,
		},
		{
			Key:             PaymentReport,
			Label:           "Payment Received Report",
			Procedure:       "proc_paymentreceived_datewise_data",
			ResultSetLabels: []string{"Detailed Payments", "Party Summary"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("fromdate", "todate"),
			ProjectCharts:   projectPayment,
		},
		{
			Key:             PendingReport,
			Label:           "Pending Payment Report",
			Procedure:       "proc_getpendingpaymentpartywise",
			ResultSetLabels: []string{"Pending Payments Summary"},
			Filters:         []domain.FilterKind{domain.FilterNone},
			BuildParams:     noParams,
			ProjectCharts:   projectPending,
		},
		{
			Key:             OrderReport,
			Label:           "Order Report",
			Procedure:       "proc_gettotalordertill",
			ResultSetLabels: []string{"Orders by Month", "Orders by Client", "Orders by Brand"},
			Filters:         []domain.FilterKind{domain.FilterNone},
			BuildParams:     noParams,
			ProjectCharts:   projectOrders,
		},
		{
			Key:             PettyExpenseReport,
			Label:           "Petty Expense Report",
			Procedure:       "proc_pettyexpanse_report",
			ResultSetLabels: []string{"Detailed", "Summary"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("from_date", "to_date"),
			ProjectCharts:   projectPettyExpense,
		},
		{
			Key:             CreditorsReport,
			Label:           "Sundry Creditors Report",
			Procedure:       "proc_CREDITORS_report",
			ResultSetLabels: []string{"Creditors"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("from_date", "to_date"),
			ProjectCharts:   projectCreditors,
		},
		{
			Key:             DebitorsReport,
			Label:           "Sundry Debitors Report",
			Procedure:       "proc_DEBITORS_report",
			ResultSetLabels: []string{"Debitors"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("from_date", "to_date"),
			ProjectCharts:   projectDebitors,
		},
		{
			Key:             HRReport,
			Label:           "HR Attendance Report",
			Procedure:       "proc_attend_report_datepivot",
			ResultSetLabels: []string{"Attendance"},
			Filters:         []domain.FilterKind{domain.FilterMonthYear},
			BuildParams:     monthYearParams,
			ProjectCharts:   projectAttendance,
		},
		{
			Key:             DailyActivityReport,
			Label:           "Daily Activity Report",
			Procedure:       "proc_getdailysummary",
			ResultSetLabels: []string{"Business Activities", "Attendance", "Expenses"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("fdate", "tdate"),
			ProjectCharts:   projectDailyActivity,
		},
		// The collection and to-do procedure names are not in the legacy
		// report map. Confirm them against the database before deploying.
		{
			Key:             CollectionReport,
			Label:           "Collection by Person Report",
			Procedure:       "proc_collection_report",
			ResultSetLabels: []string{"Collection Details", "Collection Summary", "Collection by Mode & Date"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("from_date", "to_date"),
			ProjectCharts:   collectionProjector("collection"),
		},
		{
			Key:             CollectionBrandReport,
			Label:           "Collection by Brand Wise Report",
			Procedure:       "proc_collection_brand_report",
			ResultSetLabels: []string{"Brand Collection Details", "Brand Collection Summary", "Brand Collection by Mode & Date"},
			Filters:         dateRangeOnly,
			BuildParams:     dateRangeParams("from_date", "to_date"),
			ProjectCharts:   collectionProjector("brandCollection"),
		},
		{
			Key:             TodoReport,
			Label:           "To-Do Report",
			Procedure:       "proc_gettodolist",
			ResultSetLabels: []string{"To-Do List"},
			Filters:         []domain.FilterKind{domain.FilterNone},
			BuildParams:     noParams,
			ProjectCharts:   projectNothing,
		},
	}
}

// Registry resolves report keys to descriptors.
type Registry struct {
	byKey map[string]domain.ReportDescriptor
	order []string
}

// NewRegistry builds a registry from descriptors. Keys must be unique and
// every descriptor needs a procedure.
func NewRegistry(descriptors ...domain.ReportDescriptor) (*Registry, error) {
	r := &Registry{byKey: make(map[string]domain.ReportDescriptor, len(descriptors))}
	for _, d := range descriptors {
		if d.Key == "" {
			return nil, fmt.Errorf("report descriptor without key")
		}
		if _, exists := r.byKey[d.Key]; exists {
			return nil, fmt.Errorf("duplicate report key %q", d.Key)
		}
		if d.Procedure == "" {
			return nil, fmt.Errorf("report %q has no procedure", d.Key)
		}
		if d.BuildParams == nil {
			d.BuildParams = noParams
		}
		if d.ProjectCharts == nil {
			d.ProjectCharts = projectNothing
		}
		r.byKey[d.Key] = d
		r.order = append(r.order, d.Key)
	}
	return r, nil
}

// Default returns the registry of built-in reports.
func Default() *Registry {
	r, err := NewRegistry(builtinDescriptors()...)
	if err != nil {
		panic(err)
	}
	return r
}

// Lookup returns the descriptor for key or a ValidationError wrapping
// domain.ErrUnsupportedReport.
func (r *Registry) Lookup(key string) (domain.ReportDescriptor, error) {
	d, ok := r.byKey[key]
	if !ok {
		return domain.ReportDescriptor{}, &domain.ValidationError{
			Field:   "report",
			Message: fmt.Sprintf("unsupported report: %s", key),
			Err:     domain.ErrUnsupportedReport,
		}
	}
	d.ResultSetLabels = slices.Clone(d.ResultSetLabels)
	d.Filters = slices.Clone(d.Filters)
	return d, nil
}

// Keys lists report keys in registration order.
func (r *Registry) Keys() []string {
	return slices.Clone(r.order)
}

// All returns every descriptor in registration order.
func (r *Registry) All() []domain.ReportDescriptor {
	out := make([]domain.ReportDescriptor, 0, len(r.order))
	for _, key := range r.order {
		d, _ := r.Lookup(key)
		out = append(out, d)
	}
	return out
}
