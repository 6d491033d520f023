package handlers

import (
	"mime"
	"net/http"
	"strconv"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/export"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/electroitzone/report-dashboard/backend-go/internal/shaper"
	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	service   *service.ReportService
	storeName string
}

func NewReportHandler(service *service.ReportService, storeName string) *ReportHandler {
	return &ReportHandler{service: service, storeName: storeName}
}

type reportSummary struct {
	Key             string              `json:"key"`
	Label           string              `json:"label"`
	Procedure       string              `json:"procedure"`
	Filters         []domain.FilterKind `json:"filters"`
	ResultSetLabels []string            `json:"resultSetLabels"`
}

type runRequest struct {
	domain.FilterInput
	SortColumn    string `json:"sortColumn"`
	SortDirection string `json:"sortDirection"`
}

type exportRequest struct {
	Filters       domain.FilterInput `json:"filters"`
	Kind          string             `json:"kind"`
	Format        string             `json:"format"`
	IncludeCharts bool               `json:"includeCharts"`
	Upload        bool               `json:"upload"`
}

func (h *ReportHandler) ListReports(c *gin.Context) {
	descriptors := h.service.Reports()
	out := make([]reportSummary, 0, len(descriptors))
	for _, d := range descriptors {
		out = append(out, reportSummary{
			Key:             d.Key,
			Label:           d.Label,
			Procedure:       d.Procedure,
			Filters:         d.Filters,
			ResultSetLabels: d.ResultSetLabels,
		})
	}
	c.JSON(http.StatusOK, gin.H{"reports": out})
}

// RunReport executes a report with the filters in the body.
func (h *ReportHandler) RunReport(c *gin.Context) {
	var req runRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.storeName, err)
		return
	}
	filter, err := req.ToState()
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}

	opts := service.RunOptions{}
	if req.SortColumn != "" {
		opts.Sort = shaper.SortState{Column: req.SortColumn, Direction: shaper.ParseDirection(req.SortDirection)}
	}

	res, err := h.service.Run(c.Request.Context(), c.Param("key"), filter, opts)
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// ExportReport runs a report and returns the file, or a download link when
// the file was uploaded.
func (h *ReportHandler) ExportReport(c *gin.Context) {
	var req exportRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.storeName, err)
		return
	}
	filter, err := req.Filters.ToState()
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}

	res, err := h.service.Export(c.Request.Context(), c.Param("key"), filter, service.ExportOptions{
		Kind:          export.Kind(req.Kind),
		Format:        export.Format(req.Format),
		IncludeCharts: req.IncludeCharts,
		Upload:        req.Upload,
	})
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}

	if res.Object != nil {
		c.JSON(http.StatusOK, gin.H{
			"url":      res.Object.URL,
			"key":      res.Object.Key,
			"filename": res.Artifact.Filename,
			"size":     res.Object.Size,
		})
		return
	}

	disposition := mime.FormatMediaType("attachment", map[string]string{"filename": res.Artifact.Filename})
	c.Header("Content-Disposition", disposition)
	c.Data(http.StatusOK, res.Artifact.ContentType, res.Artifact.Data)
}

// GetDropdowns serves cached filter options; ?refresh=true reloads them.
func (h *ReportHandler) GetDropdowns(c *gin.Context) {
	load := h.service.Dropdowns
	if refresh, _ := strconv.ParseBool(c.Query("refresh")); refresh {
		load = h.service.RefreshDropdowns
	}
	dropdowns, err := load(c.Request.Context())
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}
	c.JSON(http.StatusOK, dropdowns)
}

func (h *ReportHandler) GetTodoTransactions(c *gin.Context) {
	res, err := h.service.TodoTransactions(c.Request.Context(), c.Param("todono"))
	if err != nil {
		respondError(c, h.storeName, err)
		return
	}
	c.JSON(http.StatusOK, res)
}
