package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/electroitzone/report-dashboard/backend-go/internal/cache"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/export"
	"github.com/electroitzone/report-dashboard/backend-go/internal/report"
	"github.com/electroitzone/report-dashboard/backend-go/internal/repository"
	"github.com/electroitzone/report-dashboard/backend-go/internal/shaper"
	"github.com/electroitzone/report-dashboard/backend-go/internal/storage"
	"github.com/rs/zerolog/log"
)

const (
	defaultDropdownProcedure = "proc_drp_sale_report"
	todoTransactionsQuery    = "SELECT * FROM tb_TODO_TRANSACTION WHERE TODONO = @todono ORDER BY ENTRYTIME DESC"
)

// RunResult is one executed report, raw and shaped. IgnoredFilters lists
// filters the caller set that the report does not take.
type RunResult struct {
	Report         string              `json:"report"`
	Label          string              `json:"label"`
	Procedure      string              `json:"procedure"`
	Params         domain.Params       `json:"params"`
	Recordsets     []domain.Recordset  `json:"recordsets"`
	RowsAffected   []int64             `json:"rowsAffected"`
	Tables         []domain.Table      `json:"tables"`
	Charts         domain.Charts       `json:"charts"`
	IgnoredFilters []domain.FilterKind `json:"ignoredFilters,omitempty"`
}

// RunOptions tune how a report run is shaped.
type RunOptions struct {
	Sort shaper.SortState
}

// ExportOptions describe the file to produce for a report run.
type ExportOptions struct {
	Kind          export.Kind
	Format        export.Format
	IncludeCharts bool
	Upload        bool
}

// ExportResult carries the artifact and, when uploaded, where it went.
type ExportResult struct {
	Artifact *export.Artifact
	Object   *storage.ObjectInfo
}

// ReportService runs registered reports against the gateway.
type ReportService struct {
	gateway   repository.ProcedureGateway
	registry  *report.Registry
	cache     cache.DropdownCache
	exporter  *export.Serializer
	store     storage.ObjectStorage
	prefix    string
	urlExpiry time.Duration
	dropdown  string
	now       func() time.Time
}

// ReportServiceOption customises a ReportService.
type ReportServiceOption func(*ReportService)

// WithDropdownCache caches dropdown lookups.
func WithDropdownCache(c cache.DropdownCache) ReportServiceOption {
	return func(s *ReportService) { s.cache = c }
}

// WithExportStorage enables uploading exports under prefix.
func WithExportStorage(store storage.ObjectStorage, prefix string, urlExpiry time.Duration) ReportServiceOption {
	return func(s *ReportService) {
		s.store = store
		s.prefix = prefix
		s.urlExpiry = urlExpiry
	}
}

// WithDropdownProcedure overrides the procedure listing brands and customers.
func WithDropdownProcedure(name string) ReportServiceOption {
	return func(s *ReportService) {
		if name = strings.TrimSpace(name); name != "" {
			s.dropdown = name
		}
	}
}

// WithClock replaces time.Now, used for date defaults and file names.
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) { s.now = now }
}

func NewReportService(gateway repository.ProcedureGateway, registry *report.Registry, opts ...ReportServiceOption) *ReportService {
	s := &ReportService{
		gateway:  gateway,
		registry: registry,
		cache:    cache.NewNoopDropdownCache(),
		dropdown: defaultDropdownProcedure,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.exporter = export.NewSerializer().WithClock(s.now)
	return s
}

// Reports lists every registered report.
func (s *ReportService) Reports() []domain.ReportDescriptor {
	return s.registry.All()
}

// Run executes the report's procedure with parameters built from filter
// and shapes the result into tables and charts.
func (s *ReportService) Run(ctx context.Context, key string, filter domain.FilterState, opts RunOptions) (*RunResult, error) {
	d, err := s.registry.Lookup(key)
	if err != nil {
		return nil, err
	}

	params := s.registry.BuildParams(key, filter, s.now())
	res, err := s.gateway.Execute(ctx, d.Procedure, params)
	if err != nil {
		return nil, err
	}

	tables := shaper.ToTables(res, d)
	if opts.Sort.Direction != shaper.Unsorted && opts.Sort.Column != "" {
		for i, t := range tables {
			if hasColumn(t.Columns, opts.Sort.Column) {
				tables[i] = shaper.SortTable(t, opts.Sort)
			}
		}
	}

	ignored := d.IgnoredFilters(filter)
	log.Info().
		Str("report", key).
		Str("procedure", d.Procedure).
		Int("recordsets", len(res.Recordsets)).
		Interface("ignored_filters", ignored).
		Msg("report executed")

	return &RunResult{
		Report:       d.Key,
		Label:        d.Label,
		Procedure:    d.Procedure,
		Params:       params,
		Recordsets:   res.Recordsets,
		RowsAffected: res.RowsAffected,
		Tables:       tables,
		Charts:       s.registry.ProjectCharts(key, res),

		IgnoredFilters: ignored,
	}, nil
}

// Export runs the report and serializes it. With Upload set the file is
// stored and a presigned link returned alongside it.
func (s *ReportService) Export(ctx context.Context, key string, filter domain.FilterState, opts ExportOptions) (*ExportResult, error) {
	kind, err := export.ParseKind(string(opts.Kind))
	if err != nil {
		return nil, err
	}
	format, err := export.ParseFormat(string(opts.Format))
	if err != nil {
		return nil, err
	}
	if opts.Upload && s.store == nil {
		return nil, domain.NewValidationError("upload", "export storage is not configured")
	}

	run, err := s.Run(ctx, key, filter, RunOptions{})
	if err != nil {
		return nil, err
	}

	artifact, err := s.exporter.Export(ctx, export.Request{
		Kind:               kind,
		Format:             format,
		ReportTitle:        run.Label,
		Tables:             run.Tables,
		Charts:             run.Charts,
		IncludeChartImages: opts.IncludeCharts,
	})
	if err != nil {
		return nil, err
	}

	result := &ExportResult{Artifact: artifact}
	if !opts.Upload {
		return result, nil
	}

	objectKey := storage.ObjectKey(s.prefix, artifact.Filename, s.now())
	if err := s.store.UploadObject(ctx, objectKey, artifact.Data, artifact.ContentType); err != nil {
		return nil, &domain.ExportError{Message: "Failed to upload export", Err: err}
	}
	url, err := s.store.PresignedURL(ctx, objectKey, s.urlExpiry)
	if err != nil {
		return nil, &domain.ExportError{Message: "Failed to sign export link", Err: err}
	}
	result.Object = &storage.ObjectInfo{Key: objectKey, Size: int64(len(artifact.Data)), URL: url}

	log.Info().Str("report", key).Str("object", objectKey).Msg("export uploaded")
	return result, nil
}

// Dropdowns returns the brand and customer filter options.
func (s *ReportService) Dropdowns(ctx context.Context) (*domain.Dropdowns, error) {
	if cached, ok, err := s.cache.GetDropdowns(ctx, s.dropdown); err != nil {
		log.Warn().Err(err).Msg("dropdown cache read failed")
	} else if ok {
		return cached, nil
	}

	return s.loadDropdowns(ctx)
}

// RefreshDropdowns clears cached options and reloads them from the
// database. A failed clear is logged and the reload still happens.
func (s *ReportService) RefreshDropdowns(ctx context.Context) (*domain.Dropdowns, error) {
	if err := s.cache.InvalidateAll(ctx); err != nil {
		log.Warn().Err(err).Msg("dropdown cache clear failed")
	}
	return s.loadDropdowns(ctx)
}

func (s *ReportService) loadDropdowns(ctx context.Context) (*domain.Dropdowns, error) {
	res, err := s.gateway.Execute(ctx, s.dropdown, domain.Params{})
	if err != nil {
		return nil, err
	}

	dropdowns := &domain.Dropdowns{Brands: []string{}, Customers: []string{}}
	if len(res.Recordsets) > 0 {
		dropdowns.Brands = distinctValues(res.Recordsets[0], "BRAND")
	}
	if len(res.Recordsets) > 1 {
		dropdowns.Customers = distinctValues(res.Recordsets[1], "CLIENTUNIQUE")
	}

	if err := s.cache.SetDropdowns(ctx, s.dropdown, dropdowns); err != nil {
		log.Warn().Err(err).Msg("dropdown cache write failed")
	}
	return dropdowns, nil
}

// TodoTransactions lists the history of one to-do item, newest first.
func (s *ReportService) TodoTransactions(ctx context.Context, todoNo string) (*domain.RecordsetResult, error) {
	todoNo = strings.TrimSpace(todoNo)
	if todoNo == "" {
		return nil, domain.NewValidationError("todono", "todono is required")
	}
	return s.gateway.ExecuteRaw(ctx, todoTransactionsQuery, domain.Params{"todono": todoNo})
}

func distinctValues(rs domain.Recordset, column string) []string {
	seen := make(map[string]struct{}, rs.Len())
	out := make([]string, 0, rs.Len())
	for _, row := range rs.Rows {
		v, ok := row[column]
		if !ok || v == nil {
			continue
		}
		text := strings.TrimSpace(fmt.Sprint(v))
		if text == "" {
			continue
		}
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}
	return out
}

func hasColumn(columns []string, name string) bool {
	for _, c := range columns {
		if c == name {
			return true
		}
	}
	return false
}
