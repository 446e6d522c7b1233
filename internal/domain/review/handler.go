package review

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/domain/report"
	"github.com/labfeed/labfeed/internal/platform/auth"
	"github.com/labfeed/labfeed/pkg/pagination"
)

type Handler struct {
	svc     *Service
	reports report.Repository
}

func NewHandler(svc *Service, reports report.Repository) *Handler {
	return &Handler{svc: svc, reports: reports}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/review-tasks", h.ListOpenTasks)
	api.GET("/reports/:id/review-tasks", h.ListByReport)
	api.PATCH("/review-tasks/:id", h.UpdateTask, auth.RequireRole("reviewer"))
}

func (h *Handler) ListOpenTasks(c echo.Context) error {
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.svc.ListOpen(c.Request().Context(), scope, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
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
	items, err := h.svc.ListByReport(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if items == nil {
		items = []*Task{}
	}
	return c.JSON(http.StatusOK, items)
}

type updateTaskRequest struct {
	Status string `json:"status"`
}

func (h *Handler) UpdateTask(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	t, err := h.svc.UpdateStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, t)
}
