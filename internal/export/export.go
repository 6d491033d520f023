package export

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
)

// Kind selects which parts of a report run are exported.
type Kind string

const (
	KindTables Kind = "tables"
	KindCharts Kind = "charts"
	KindBoth   Kind = "both"
)

// Format is the output file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

const (
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	contentTypeCSV  = "text/csv; charset=utf-8"

	// ErrNoData is the message of the ExportError raised for empty exports.
	ErrNoData = "No data available for export"
)

// ParseKind validates a requested export kind. Empty means both.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindBoth, nil
	case KindTables, KindCharts, KindBoth:
		return k, nil
	}
	return "", domain.NewValidationError("type", fmt.Sprintf("unsupported export type: %s", s))
}

// ParseFormat validates a requested export format. Empty means xlsx.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "":
		return FormatXLSX, nil
	case FormatXLSX, FormatCSV:
		return f, nil
	}
	return "", domain.NewValidationError("format", fmt.Sprintf("unsupported export format: %s", s))
}

// Request is one export job.
type Request struct {
	Kind               Kind
	Format             Format
	ReportTitle        string
	Tables             []domain.Table
	Charts             domain.Charts
	IncludeChartImages bool
}

// Artifact is a finished export file.
type Artifact struct {
	Filename    string
	ContentType string
	Data        []byte
}

// section is one sheet of the workbook, or one block of the csv file.
type section struct {
	name    string
	headers []string
	rows    [][]any
	chart   bool
}

// Serializer renders report runs as files.
type Serializer struct {
	now func() time.Time
}

// NewSerializer returns a Serializer stamping files with the current date.
func NewSerializer() *Serializer {
	return &Serializer{now: time.Now}
}

// WithClock replaces the clock used for filenames.
func (s *Serializer) WithClock(now func() time.Time) *Serializer {
	s.now = now
	return s
}

// Export serializes req. A request with no rows in any selected part fails
// with *domain.ExportError before anything is produced.
func (s *Serializer) Export(ctx context.Context, req Request) (*Artifact, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	kind, err := ParseKind(string(req.Kind))
	if err != nil {
		return nil, err
	}
	format, err := ParseFormat(string(req.Format))
	if err != nil {
		return nil, err
	}

	sections := collectSections(kind, req.Tables, req.Charts)
	if len(sections) == 0 {
		return nil, &domain.ExportError{Message: ErrNoData}
	}

	artifact := &Artifact{Filename: filename(req.ReportTitle, s.now(), format)}
	switch format {
	case FormatCSV:
		artifact.ContentType = contentTypeCSV
		artifact.Data, err = writeCSV(sections)
	default:
		artifact.ContentType = contentTypeXLSX
		artifact.Data, err = writeXLSX(sections, req.IncludeChartImages)
	}
	if err != nil {
		return nil, &domain.ExportError{Message: "Failed to build export file", Err: err}
	}
	return artifact, nil
}

func collectSections(kind Kind, tables []domain.Table, charts domain.Charts) []section {
	var out []section
	if kind == KindTables || kind == KindBoth {
		for _, t := range tables {
			if t.Empty || len(t.Rows) == 0 {
				continue
			}
			out = append(out, tableSection(t))
		}
	}
	if kind == KindCharts || kind == KindBoth {
		for _, series := range charts.Series {
			if len(series.Data) == 0 {
				continue
			}
			out = append(out, chartSection(series))
		}
		if len(out) > 0 && len(charts.Summaries) > 0 {
			out = append(out, summarySection(charts.Summaries))
		}
	}
	return out
}

func tableSection(t domain.Table) section {
	headers := t.Headers
	if len(headers) != len(t.Columns) {
		headers = t.Columns
	}
	rows := make([][]any, 0, len(t.Rows))
	for _, r := range t.Rows {
		values := make([]any, len(t.Columns))
		for i, col := range t.Columns {
			values[i] = r[col]
		}
		rows = append(rows, values)
	}
	return section{name: t.Title, headers: headers, rows: rows}
}

func chartSection(series domain.ChartSeries) section {
	rows := make([][]any, 0, len(series.Data))
	for _, p := range series.Data {
		values := make([]any, 0, len(p.Values)+1)
		values = append(values, p.Label)
		for _, v := range p.Values {
			values = append(values, v)
		}
		rows = append(rows, values)
	}
	name := series.Title
	if name == "" {
		name = series.Name
	}
	return section{name: name, headers: series.Headers, rows: rows, chart: true}
}

func summarySection(summaries []domain.SummaryFigure) section {
	rows := make([][]any, 0, len(summaries))
	for _, s := range summaries {
		rows = append(rows, []any{s.Label, s.Value})
	}
	return section{name: "Summary", headers: []string{"Figure", "Value"}, rows: rows}
}

func filename(title string, now time.Time, format Format) string {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Report"
	}
	title = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '-'
		}
		return r
	}, title)
	return fmt.Sprintf("%s_%s.%s", title, now.Format(domain.DateLayout), format)
}
