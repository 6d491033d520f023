package handlers

import (
	"net/http"

	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/electroitzone/report-dashboard/backend-go/internal/service"
	"github.com/gin-gonic/gin"
)

type StoreHandler struct {
	service *service.StoreService
}

func NewStoreHandler(service *service.StoreService) *StoreHandler {
	return &StoreHandler{service: service}
}

// Health answers liveness probes.
func (h *StoreHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true, "uptime": h.service.Uptime().Seconds()})
}

// GetStore reports the configured database and connection status.
func (h *StoreHandler) GetStore(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Info())
}

func (h *StoreHandler) GetDashboard(c *gin.Context) {
	info, err := h.service.Dashboard(c.Request.Context())
	if err != nil {
		respondError(c, h.service.StoreName(), err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"database":   info.Database,
		"tableCount": info.TableCount,
		"status":     h.service.Info().Status,
	})
}

type queryRequest struct {
	Query  string        `json:"query"`
	Params domain.Params `json:"params"`
}

// Exec runs a stored procedure by name.
func (h *StoreHandler) Exec(c *gin.Context) {
	var call domain.ProcedureCall
	if err := bindOptionalJSON(c, &call); err != nil {
		respondError(c, h.service.StoreName(), err)
		return
	}

	res, err := h.service.Exec(c.Request.Context(), call)
	if err != nil {
		respondError(c, h.service.StoreName(), err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Query runs raw SQL.
func (h *StoreHandler) Query(c *gin.Context) {
	var req queryRequest
	if err := bindOptionalJSON(c, &req); err != nil {
		respondError(c, h.service.StoreName(), err)
		return
	}

	res, err := h.service.Query(c.Request.Context(), req.Query, req.Params)
	if err != nil {
		respondError(c, h.service.StoreName(), err)
		return
	}
	c.JSON(http.StatusOK, res)
}
