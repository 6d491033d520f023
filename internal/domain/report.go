package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// FilterKind names one kind of user filter a report accepts.
type FilterKind string

const (
	FilterDateRange FilterKind = "dateRange"
	FilterBrand     FilterKind = "brand"
	FilterCustomer  FilterKind = "customer"
	FilterMonthYear FilterKind = "monthYear"
	FilterNone      FilterKind = "none"
)

// FilterState is the raw filter input for one report run.
type FilterState struct {
	FromDate *time.Time
	ToDate   *time.Time
	Month    *int
	Year     *int
	Brand    string
	Customer string
}

// Params is a named parameter set for a procedure or raw query.
type Params map[string]any

// ParamBuilder turns filters into the procedure's parameter set.
type ParamBuilder func(filter FilterState, now time.Time) Params

// ChartProjector derives chart series from a report's recordsets.
type ChartProjector func(result *RecordsetResult) Charts

// ReportDescriptor describes one report. Descriptors are created at
// startup and never mutated.
type ReportDescriptor struct {
	Key             string
	Label           string
	Procedure       string
	ResultSetLabels []string
	Filters         []FilterKind
	BuildParams     ParamBuilder   `json:"-"`
	ProjectCharts   ChartProjector `json:"-"`
}

// NeedsFilter reports whether the descriptor accepts the given filter.
func (d ReportDescriptor) NeedsFilter(kind FilterKind) bool {
	for _, k := range d.Filters {
		if k == kind {
			return true
		}
	}
	return false
}

// IgnoredFilters lists the filters set in f that d does not take.
func (d ReportDescriptor) IgnoredFilters(f FilterState) []FilterKind {
	var ignored []FilterKind
	check := func(kind FilterKind, set bool) {
		if set && !d.NeedsFilter(kind) {
			ignored = append(ignored, kind)
		}
	}
	check(FilterDateRange, f.FromDate != nil || f.ToDate != nil)
	check(FilterBrand, strings.TrimSpace(f.Brand) != "")
	check(FilterCustomer, strings.TrimSpace(f.Customer) != "")
	check(FilterMonthYear, f.Month != nil || f.Year != nil)
	return ignored
}

// ProcedureCall is a single request to the gateway.
type ProcedureCall struct {
	Procedure string `json:"procedure"`
	Params    Params `json:"params"`
}

// Row maps column name to scalar value.
type Row map[string]any

// Recordset is one ordered result set. Columns keeps the order the
// database returned them in.
type Recordset struct {
	Columns []string
	Rows    []Row
}

// NewRecordset builds a recordset from positional values.
func NewRecordset(columns []string, values ...[]any) Recordset {
	rs := Recordset{Columns: columns, Rows: make([]Row, 0, len(values))}
	for _, vals := range values {
		row := make(Row, len(columns))
		for i, col := range columns {
			if i < len(vals) {
				row[col] = vals[i]
			} else {
				row[col] = nil
			}
		}
		rs.Rows = append(rs.Rows, row)
	}
	return rs
}

// Len returns the number of rows.
func (r Recordset) Len() int { return len(r.Rows) }

// MarshalJSON encodes the recordset as an array of objects whose keys
// follow column order.
func (r Recordset) MarshalJSON() ([]byte, error) {
	return marshalRows(r.Columns, r.Rows)
}

// UnmarshalJSON accepts an array of objects. Column order is taken from
// the first object as written.
func (r *Recordset) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	r.Columns = nil
	r.Rows = make([]Row, 0, len(raw))
	for i, item := range raw {
		if i == 0 {
			cols, err := objectKeys(item)
			if err != nil {
				return err
			}
			r.Columns = cols
		}
		var row Row
		if err := json.Unmarshal(item, &row); err != nil {
			return err
		}
		r.Rows = append(r.Rows, row)
	}
	return nil
}

func marshalRows(columns []string, rows []Row) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, row := range rows {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			key, err := json.Marshal(col)
			if err != nil {
				return nil, err
			}
			val, err := json.Marshal(row[col])
			if err != nil {
				return nil, err
			}
			buf.Write(key)
			buf.WriteByte(':')
			buf.Write(val)
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return buf.Bytes(), nil
}

func objectKeys(data []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	var keys []string
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, _ := tok.(string)
		keys = append(keys, key)
		var skip json.RawMessage
		if err := dec.Decode(&skip); err != nil {
			return nil, err
		}
	}
	return keys, nil
}

// RecordsetResult is everything one call returned.
type RecordsetResult struct {
	Recordsets   []Recordset `json:"recordsets"`
	RowsAffected []int64     `json:"rowsAffected"`
}

// NonEmpty returns the recordsets that carry at least one row, in order.
func (r *RecordsetResult) NonEmpty() []Recordset {
	if r == nil {
		return nil
	}
	out := make([]Recordset, 0, len(r.Recordsets))
	for _, rs := range r.Recordsets {
		if rs.Len() > 0 {
			out = append(out, rs)
		}
	}
	return out
}

// Table is a titled recordset ready for display. Display holds the
// formatted cells of Rows, column aligned; Rows stay raw.
type Table struct {
	Title   string     `json:"title"`
	Index   int        `json:"index"`
	Columns []string   `json:"columns"`
	Headers []string   `json:"headers"`
	Rows    []Row      `json:"-"`
	Display [][]string `json:"display,omitempty"`
	Empty   bool       `json:"empty"`
}

// MarshalJSON keeps row keys in column order.
func (t Table) MarshalJSON() ([]byte, error) {
	type alias Table
	rows, err := marshalRows(t.Columns, t.Rows)
	if err != nil {
		return nil, err
	}
	return json.Marshal(struct {
		alias
		Rows json.RawMessage `json:"rows"`
	}{alias: alias(t), Rows: rows})
}

// ChartPoint is one labelled entry of a series; Values line up with the
// series headers after the first.
type ChartPoint struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
}

// ChartSeries is a named, chart-ready projection of recordset rows.
type ChartSeries struct {
	Name    string       `json:"name"`
	Title   string       `json:"title"`
	Headers []string     `json:"headers"`
	Data    []ChartPoint `json:"data"`
}

// SummaryFigure is a single headline number, usually a grand total.
type SummaryFigure struct {
	Name  string  `json:"name"`
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Charts groups the series and summary figures of one report run.
type Charts struct {
	Series    []ChartSeries   `json:"series"`
	Summaries []SummaryFigure `json:"summaries"`
}

// Empty reports whether nothing was projected.
func (c Charts) Empty() bool {
	return len(c.Series) == 0 && len(c.Summaries) == 0
}
