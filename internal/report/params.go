package report

import (
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

// NoFilterSentinel is what the sales procedure reads as "no brand/customer
// filter". It must be passed verbatim.
const NoFilterSentinel = "fffff"

// BuildParams returns the procedure parameters for key. Keys outside the
// registry get the sales parameter shape.
func (r *Registry) BuildParams(key string, filter domain.FilterState, now time.Time) domain.Params {
	d, ok := r.byKey[key]
	if !ok {
		return salesParams(filter, now)
	}
	return d.BuildParams(filter, now)
}

func noParams(domain.FilterState, time.Time) domain.Params {
	return domain.Params{}
}

func dateRangeParams(fromName, toName string) domain.ParamBuilder {
	return func(filter domain.FilterState, now time.Time) domain.Params {
		return domain.Params{
			fromName: dateOrToday(filter.FromDate, now),
			toName:   dateOrToday(filter.ToDate, now),
		}
	}
}

func salesParams(filter domain.FilterState, now time.Time) domain.Params {
	params := dateRangeParams("from_date", "to_date")(filter, now)
	params["BRAND1"] = sentinelIfEmpty(filter.Brand)
	params["ToParty1"] = sentinelIfEmpty(filter.Customer)
	return params
}

func monthYearParams(filter domain.FilterState, now time.Time) domain.Params {
	month := int(now.Month())
	if filter.Month != nil {
		month = *filter.Month
	}
	year := now.Year()
	if filter.Year != nil {
		year = *filter.Year
	}
	return domain.Params{"month1": month, "year1": year}
}

func dateOrToday(t *time.Time, now time.Time) string {
	if t == nil || t.IsZero() {
		return now.Format(domain.DateLayout)
	}
	return t.Format(domain.DateLayout)
}

func sentinelIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return NoFilterSentinel
	}
	return value
}
