package audit

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/domain/report"
	"github.com/labfeed/labfeed/internal/platform/auth"
	"github.com/labfeed/labfeed/pkg/pagination"
)

type Handler struct {
	repo    Repository
	reports report.Repository
}

func NewHandler(repo Repository, reports report.Repository) *Handler {
	return &Handler{repo: repo, reports: reports}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/:id/audit", h.ListByReport)
}

func (h *Handler) ListByReport(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}
	rp, err := h.reports.GetForScope(c.Request().Context(), scope, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if rp == nil {
		return echo.NewHTTPError(http.StatusNotFound, "report not found")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.repo.ListByReport(c.Request().Context(), id, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}
