package result

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/domain/report"
	"github.com/labfeed/labfeed/internal/platform/auth"
)

type Handler struct {
	repo    Repository
	reports report.Repository
}

func NewHandler(repo Repository, reports report.Repository) *Handler {
	return &Handler{repo: repo, reports: reports}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/reports/:id/results", h.ListByReport)
	api.GET("/patients/:id/series", h.Series)
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
	items, err := h.repo.ListByReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Result{}
	}
	return c.JSON(http.StatusOK, items)
}

func (h *Handler) Series(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid patient id")
	}
	code := c.QueryParam("code")
	if code == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "code query parameter is required")
	}
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}
	points, err := h.repo.Series(c.Request().Context(), scope, id, code)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if points == nil {
		points = []*SeriesPoint{}
	}
	return c.JSON(http.StatusOK, points)
}
