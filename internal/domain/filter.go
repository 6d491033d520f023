package domain

import (
	"fmt"
	"strings"
	"time"
)

// DateLayout is the wire format for report dates.
const DateLayout = "2006-01-02"

// FilterInput is the JSON/CLI shape of a FilterState.
type FilterInput struct {
	FromDate string `json:"fromDate" form:"fromDate"`
	ToDate   string `json:"toDate" form:"toDate"`
	Month    int    `json:"month" form:"month"`
	Year     int    `json:"year" form:"year"`
	Brand    string `json:"brand" form:"brand"`
	Customer string `json:"customer" form:"customer"`
}

// ToState parses dates and validates month/year ranges. Zero values mean
// "not set".
func (in FilterInput) ToState() (FilterState, error) {
	var fs FilterState

	from, err := parseDate("fromDate", in.FromDate)
	if err != nil {
		return fs, err
	}
	to, err := parseDate("toDate", in.ToDate)
	if err != nil {
		return fs, err
	}
	if from != nil && to != nil && to.Before(*from) {
		return fs, NewValidationError("toDate", "toDate must not be before fromDate")
	}
	fs.FromDate, fs.ToDate = from, to

	if in.Month != 0 {
		if in.Month < 1 || in.Month > 12 {
			return fs, NewValidationError("month", fmt.Sprintf("month must be between 1 and 12, got %d", in.Month))
		}
		m := in.Month
		fs.Month = &m
	}
	if in.Year != 0 {
		if in.Year < 1900 || in.Year > 9999 {
			return fs, NewValidationError("year", fmt.Sprintf("invalid year %d", in.Year))
		}
		y := in.Year
		fs.Year = &y
	}

	fs.Brand = strings.TrimSpace(in.Brand)
	fs.Customer = strings.TrimSpace(in.Customer)
	return fs, nil
}

func parseDate(field, value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	// Accept full ISO timestamps from browsers and keep only the date.
	if len(value) > len(DateLayout) && value[len(DateLayout)] == 'T' {
		value = value[:len(DateLayout)]
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return nil, &ValidationError{Field: field, Message: fmt.Sprintf("%s must be formatted as YYYY-MM-DD", field), Err: err}
	}
	return &t, nil
}
