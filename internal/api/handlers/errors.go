package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/electroitzone/report-dashboard/backend-go/internal/api/middleware"
	"github.com/electroitzone/report-dashboard/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// respondError maps domain errors to status codes and JSON bodies.
func respondError(c *gin.Context, storeName string, err error) {
	var (
		validation *domain.ValidationError
		execution  *domain.ProcedureExecutionError
		exportErr  *domain.ExportError
		tooLarge   *http.MaxBytesError
	)

	switch {
	case errors.As(err, &validation):
		errorResponse(c, http.StatusBadRequest, validation.Message)
	case errors.Is(err, domain.ErrNotConnected):
		errorResponse(c, http.StatusServiceUnavailable, storeName+" database is not connected")
	case errors.Is(err, domain.ErrUnauthorized):
		errorResponse(c, http.StatusUnauthorized, "Invalid username or password")
	case errors.As(err, &execution):
		log.Error().
			Str("request_id", middleware.GetRequestID(c)).
			Str("details", execution.Details).
			Msg(execution.Message)
		c.JSON(http.StatusInternalServerError, gin.H{"error": execution.Message, "details": execution.Details})
	case errors.As(err, &exportErr):
		errorResponse(c, http.StatusUnprocessableEntity, exportErr.Message)
	case errors.As(err, &tooLarge):
		errorResponse(c, http.StatusRequestEntityTooLarge, "Request body too large")
	default:
		log.Error().Err(err).Str("request_id", middleware.GetRequestID(c)).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error", "details": err.Error()})
	}
}

func errorResponse(c *gin.Context, statusCode int, message string) {
	log.Warn().
		Str("request_id", middleware.GetRequestID(c)).
		Int("status", statusCode).
		Msg(message)
	c.JSON(statusCode, gin.H{"error": message})
}

// bindOptionalJSON decodes the body into dst; an empty body is allowed.
func bindOptionalJSON(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return err
		}
		return &domain.ValidationError{Field: "body", Message: "invalid JSON body", Err: err}
	}
	return nil
}
