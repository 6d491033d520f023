package report

import (
	"errors"
	"testing"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, time.March, 7, 15, 4, 5, 0, time.UTC)

func TestRegistryLookup(t *testing.T) {
	reg := Default()

	expected := []string{
		SalesReport, PurchaseReport, StockReport, PaymentReport, PendingReport, OrderReport,
		PettyExpenseReport, CreditorsReport, DebitorsReport, HRReport, DailyActivityReport,
		CollectionReport, CollectionBrandReport, TodoReport,
	}
	assert.Equal(t, expected, reg.Keys())

	for _, key := range expected {
		d, err := reg.Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, key, d.Key)
		assert.NotEmpty(t, d.Procedure, key)
		assert.NotEmpty(t, d.ResultSetLabels, key)
	}

	d, err := reg.Lookup(SalesReport)
	require.NoError(t, err)
	assert.Equal(t, "proc_CHutilizedatewise_reportf2", d.Procedure)
	assert.Equal(t, []string{"Detailed Transactions", "Invoice Summary", "Customer Summary", "Brand Summary"}, d.ResultSetLabels)
}

func TestRegistryProcedureNames(t *testing.T) {
	reg := Default()
	for key, want := range map[string]string{
		CollectionReport:      "proc_collection_report",
		CollectionBrandReport: "proc_collection_brand_report",
		TodoReport:            "proc_gettodolist",
	} {
		d, err := reg.Lookup(key)
		require.NoError(t, err, key)
		assert.Equal(t, want, d.Procedure, key)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	_, err := Default().Lookup("profit_report")
	require.Error(t, err)

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "unsupported report: profit_report", verr.Message)
	assert.True(t, errors.Is(err, domain.ErrUnsupportedReport))
}

func TestRegistryLookupReturnsCopies(t *testing.T) {
	reg := Default()
	d, err := reg.Lookup(PurchaseReport)
	require.NoError(t, err)
	d.ResultSetLabels[0] = "changed"

	again, err := reg.Lookup(PurchaseReport)
	require.NoError(t, err)
	assert.Equal(t, "Seller Summary", again.ResultSetLabels[0])
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(
		domain.ReportDescriptor{Key: "a", Procedure: "proc_a"},
		domain.ReportDescriptor{Key: "a", Procedure: "proc_b"},
	)
	assert.Error(t, err)

	_, err = NewRegistry(domain.ReportDescriptor{Key: "b"})
	assert.Error(t, err)
}

func TestBuildParamsNoFilterReports(t *testing.T) {
	reg := Default()
	for _, key := range []string{StockReport, PendingReport, OrderReport, TodoReport} {
		params := reg.BuildParams(key, domain.FilterState{Brand: "SONY"}, fixedNow)
		assert.NotNil(t, params, key)
		assert.Empty(t, params, key)
	}
}

func TestBuildParamsDateRangeDefaultsToToday(t *testing.T) {
	reg := Default()
	tests := []struct {
		key      string
		from, to string
	}{
		{SalesReport, "from_date", "to_date"},
		{PurchaseReport, "fromdate", "todate"},
		{PaymentReport, "fromdate", "todate"},
		{PettyExpenseReport, "from_date", "to_date"},
		{CreditorsReport, "from_date", "to_date"},
		{DebitorsReport, "from_date", "to_date"},
		{DailyActivityReport, "fdate", "tdate"},
		{CollectionReport, "from_date", "to_date"},
		{CollectionBrandReport, "from_date", "to_date"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			params := reg.BuildParams(tt.key, domain.FilterState{}, fixedNow)
			assert.Equal(t, "2024-03-07", params[tt.from])
			assert.Equal(t, "2024-03-07", params[tt.to])
		})
	}
}

func TestBuildParamsUsesGivenDates(t *testing.T) {
	from := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)

	params := Default().BuildParams(DailyActivityReport, domain.FilterState{FromDate: &from, ToDate: &to}, fixedNow)
	assert.Equal(t, domain.Params{"fdate": "2024-01-01", "tdate": "2024-01-31"}, params)
}

func TestBuildParamsSalesSentinel(t *testing.T) {
	reg := Default()

	params := reg.BuildParams(SalesReport, domain.FilterState{}, fixedNow)
	assert.Equal(t, "fffff", params["BRAND1"])
	assert.Equal(t, "fffff", params["ToParty1"])

	params = reg.BuildParams(SalesReport, domain.FilterState{Brand: "  "}, fixedNow)
	assert.Equal(t, "fffff", params["BRAND1"])

	params = reg.BuildParams(SalesReport, domain.FilterState{Brand: "SAMSUNG", Customer: "RAVI TRADERS"}, fixedNow)
	assert.Equal(t, "SAMSUNG", params["BRAND1"])
	assert.Equal(t, "RAVI TRADERS", params["ToParty1"])
	assert.Len(t, params, 4)
}

func TestBuildParamsUnknownKeyFallsBackToSales(t *testing.T) {
	params := Default().BuildParams("mystery", domain.FilterState{}, fixedNow)
	assert.Equal(t, domain.Params{
		"from_date": "2024-03-07",
		"to_date":   "2024-03-07",
		"BRAND1":    "fffff",
		"ToParty1":  "fffff",
	}, params)
}

func TestBuildParamsHR(t *testing.T) {
	reg := Default()

	params := reg.BuildParams(HRReport, domain.FilterState{}, fixedNow)
	assert.Equal(t, domain.Params{"month1": 3, "year1": 2024}, params)

	month, year := 11, 2023
	params = reg.BuildParams(HRReport, domain.FilterState{Month: &month, Year: &year}, fixedNow)
	assert.Equal(t, 11, params["month1"])
	assert.Equal(t, 2023, params["year1"])
}
