package mapping

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/labfeed/labfeed/internal/platform/auth"
	"github.com/labfeed/labfeed/pkg/pagination"
)

// Handler exposes the resolver to the mapping UI. Resolve and Confirm are the
// only two operations the surrounding CRUD layer may call into this package;
// nothing else writes dictionary rows.
type Handler struct {
	resolver *Resolver
	entries  EntryRepository
}

func NewHandler(resolver *Resolver, entries EntryRepository) *Handler {
	return &Handler{resolver: resolver, entries: entries}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/mappings/resolve", h.ResolveCode)
	api.POST("/mappings/confirm", h.ConfirmMapping)
	api.GET("/mappings", h.ListMappings)
	api.DELETE("/mappings/:id", h.DeleteMapping)
}

func (h *Handler) ResolveCode(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}

	res := h.resolver.Resolve(c.Request().Context(), scope, name, c.QueryParam("code"), c.QueryParam("unit"))
	return c.JSON(http.StatusOK, res)
}

type confirmRequest struct {
	SourceName string `json:"source_name"`
	ShortCode  string `json:"short_code"`
	Confidence string `json:"confidence"`
}

func (h *Handler) ConfirmMapping(c echo.Context) error {
	var req confirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	ctx := c.Request().Context()
	scope, err := auth.ScopeFromContext(ctx)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}

	entry, err := h.resolver.Confirm(ctx, scope, auth.ScopeKindFromContext(ctx), req.SourceName, req.ShortCode, req.Confidence)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	}
	return c.JSON(http.StatusOK, entry)
}

func (h *Handler) ListMappings(c echo.Context) error {
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}
	pg := pagination.FromContext(c)
	items, total, err := h.entries.ListByScope(c.Request().Context(), scope, pg.Limit, pg.Offset)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, pagination.NewResponse(items, total, pg.Limit, pg.Offset))
}

func (h *Handler) DeleteMapping(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}
	scope, err := auth.ScopeFromContext(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "missing scope")
	}
	if err := h.entries.Delete(c.Request().Context(), scope, id); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
