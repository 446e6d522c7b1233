package ingest

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/domain/extraction"
	"github.com/labfeed/labfeed/internal/platform/auth"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/reports/:id/ingest", h.IngestReport)
}

// IngestReport accepts an extraction document and replaces the report's
// normalized result set. Error mapping follows the core's taxonomy:
// structural problems are the caller's to fix (422), a rolled-back replace is
// retryable (503).
func (h *Handler) IngestReport(c echo.Context) error {
	reportID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report id")
	}
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}

	var doc extraction.Document
	if err := c.Bind(&doc); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid JSON body")
	}

	summary, err := h.svc.Ingest(c.Request().Context(), scope, reportID, &doc)
	if err != nil {
		var structural *StructuralError
		var persistence *PersistenceError
		switch {
		case errors.Is(err, ErrReportNotFound):
			return echo.NewHTTPError(http.StatusNotFound, "report not found")
		case errors.As(err, &structural):
			return echo.NewHTTPError(http.StatusUnprocessableEntity, structural.Cause.Error())
		case errors.As(err, &persistence):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "ingestion failed, safe to retry")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, summary)
}
