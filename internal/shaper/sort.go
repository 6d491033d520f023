package shaper

import (
	"cmp"
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// Direction is the sort direction of a column.
type Direction int

const (
	Unsorted Direction = iota
	Ascending
	Descending
)

func (d Direction) String() string {
	switch d {
	case Ascending:
		return "asc"
	case Descending:
		return "desc"
	default:
		return "none"
	}
}

// ParseDirection accepts "asc", "desc" and anything else as unsorted.
func ParseDirection(s string) Direction {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "asc", "ascending":
		return Ascending
	case "desc", "descending":
		return Descending
	default:
		return Unsorted
	}
}

// SortState is the sort applied to one table.
type SortState struct {
	Column    string
	Direction Direction
}

// Next is the state after the user activates column: a new column starts
// ascending; the same column cycles asc -> desc -> unsorted.
func (s SortState) Next(column string) SortState {
	if s.Column != column || s.Direction == Unsorted {
		return SortState{Column: column, Direction: Ascending}
	}
	if s.Direction == Ascending {
		return SortState{Column: column, Direction: Descending}
	}
	return SortState{}
}

var numericText = regexp.MustCompile(`^-?\d+(\.\d+)?$`)

// SortRows returns rows ordered by state. Null or missing values come
// first in either direction; the remaining rows in descending order are
// the exact reverse of ascending. The input slice is left untouched.
func SortRows(rows []domain.Row, state SortState) []domain.Row {
	out := slices.Clone(rows)
	if state.Direction == Unsorted || state.Column == "" || len(out) < 2 {
		return out
	}
	col := state.Column

	nulls := make([]domain.Row, 0)
	values := make([]domain.Row, 0, len(out))
	for _, row := range out {
		if row[col] == nil {
			nulls = append(nulls, row)
		} else {
			values = append(values, row)
		}
	}

	if columnIsNumeric(values, col) {
		slices.SortStableFunc(values, func(a, b domain.Row) int {
			x, _ := asNumber(a[col])
			y, _ := asNumber(b[col])
			return cmp.Compare(x, y)
		})
	} else {
		c := collate.New(language.English)
		slices.SortStableFunc(values, func(a, b domain.Row) int {
			return c.CompareString(asSortText(a[col]), asSortText(b[col]))
		})
	}

	if state.Direction == Descending {
		slices.Reverse(values)
	}
	return append(nulls, values...)
}

func columnIsNumeric(rows []domain.Row, col string) bool {
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		if _, ok := asNumber(row[col]); !ok {
			return false
		}
	}
	return true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case string:
		s := strings.TrimSpace(n)
		if !numericText.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		return f, err == nil
	}
	return 0, false
}

func asSortText(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case time.Time:
		return s.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v)
	}
}
