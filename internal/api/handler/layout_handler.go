package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
	"github.com/universeos/dashboard/internal/core/service"
)

// Auditor receives audit events after successful mutations. Enqueueing must
// not block the request path beyond channel capacity.
type Auditor interface {
	Enqueue(event ports.LayoutEvent)
}

// LayoutHandler exposes the layout collection and its mutations.
type LayoutHandler struct {
	manager ports.LayoutManager
	catalog *service.Catalog
	auditor Auditor
}

func NewLayoutHandler(manager ports.LayoutManager, catalog *service.Catalog, auditor Auditor) *LayoutHandler {
	return &LayoutHandler{manager: manager, catalog: catalog, auditor: auditor}
}

// List returns the caller's layouts, most-recently-used first.
//
// @Summary      List layouts
// @Tags         layouts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  listLayoutsResponse
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/layouts [get]
func (h *LayoutHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	layouts, err := h.manager.LoadLayouts(c.Request().Context(), sess.UserID)
	if err != nil {
		return err
	}
	if layouts == nil {
		layouts = []domain.Layout{}
	}
	return c.JSON(http.StatusOK, listLayoutsResponse{Layouts: layouts})
}

// Active returns the caller's active layout, synthesizing the default when
// none exist yet.
//
// @Summary      Active layout
// @Tags         layouts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  domain.Layout
// @Failure      401  {object}  map[string]string
// @Failure      502  {object}  map[string]string
// @Router       /v1/layouts/active [get]
func (h *LayoutHandler) Active(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	layout, err := h.manager.ResolveActiveLayout(c.Request().Context(), sess.UserID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, layout)
}

// AddWidget appends a placement of the requested catalog type and persists
// the result.
//
// @Summary      Add a widget
// @Tags         layouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string            true  "Layout id"
// @Param        body  body      addWidgetRequest  true  "Widget type"
// @Success      200   {object}  domain.Layout
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      404   {object}  map[string]string
// @Router       /v1/layouts/{id}/widgets [post]
func (h *LayoutHandler) AddWidget(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req addWidgetRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	desc, ok := h.catalog.Descriptor(req.Type)
	if !ok {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown widget type")
	}
	for _, p := range desc.RequiredPermissions {
		if !sess.HasPermission(p) {
			return domain.ErrForbidden
		}
	}

	layout, err := h.findLayout(c, sess)
	if err != nil {
		return err
	}

	next := h.manager.AddWidget(layout, req.Type)
	saved, err := h.manager.Save(c.Request().Context(), next)
	if err != nil {
		return err
	}

	h.audit(saved, sess, "widget added")
	return c.JSON(http.StatusOK, saved)
}

// RemoveWidget deletes a placement and persists the result. A missing
// placement id is treated as already gone.
//
// @Summary      Remove a widget
// @Tags         layouts
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Layout id"
// @Param        widget_id  path      string  true  "Placement id"
// @Success      200        {object}  domain.Layout
// @Failure      401        {object}  map[string]string
// @Failure      404        {object}  map[string]string
// @Router       /v1/layouts/{id}/widgets/{widget_id} [delete]
func (h *LayoutHandler) RemoveWidget(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	layout, err := h.findLayout(c, sess)
	if err != nil {
		return err
	}

	next := h.manager.RemoveWidget(layout, c.Param("widget_id"))
	saved, err := h.manager.Save(c.Request().Context(), next)
	if err != nil {
		return err
	}

	h.audit(saved, sess, "widget removed")
	return c.JSON(http.StatusOK, saved)
}

// Save replaces the layout's client-owned fields and persists it.
//
// @Summary      Save a layout
// @Tags         layouts
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Layout id"
// @Param        body  body      saveLayoutRequest  true  "Layout contents"
// @Success      200   {object}  domain.Layout
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Failure      502   {object}  map[string]string
// @Router       /v1/layouts/{id} [put]
func (h *LayoutHandler) Save(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req saveLayoutRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	layout, err := h.findLayout(c, sess)
	if err != nil {
		return err
	}
	// Stale writers lose; a zero version opts out of the check.
	if req.Version != 0 && req.Version != layout.Version {
		return domain.ErrVersionConflict
	}

	saved, err := h.manager.Save(c.Request().Context(), req.toDomain(layout))
	if err != nil {
		return err
	}

	h.audit(saved, sess, "layout saved")
	return c.JSON(http.StatusOK, saved)
}

// Recommendations returns recommendation strings for the caller's context.
//
// @Summary      Recommendations
// @Tags         layouts
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  recommendationsResponse
// @Failure      502  {object}  map[string]string
// @Router       /v1/recommendations [get]
func (h *LayoutHandler) Recommendations(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	reqContext := map[string]string{"user_id": sess.UserID, "role": sess.Role}
	for k, v := range c.QueryParams() {
		if len(v) > 0 {
			reqContext[k] = v[0]
		}
	}

	recs, err := h.manager.Recommendations(c.Request().Context(), reqContext)
	if err != nil {
		return err
	}
	if recs == nil {
		recs = []string{}
	}
	return c.JSON(http.StatusOK, recommendationsResponse{Recommendations: recs})
}

// WidgetData returns the data series backing one placement.
//
// @Summary      Widget data
// @Tags         layouts
// @Produce      json
// @Security     BearerAuth
// @Param        id         path      string  true  "Layout id"
// @Param        widget_id  path      string  true  "Placement id"
// @Success      200        {object}  ports.WidgetData
// @Failure      404        {object}  map[string]string
// @Failure      502        {object}  map[string]string
// @Router       /v1/layouts/{id}/widgets/{widget_id}/data [get]
func (h *LayoutHandler) WidgetData(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	layout, err := h.findLayout(c, sess)
	if err != nil {
		return err
	}

	widgetID := c.Param("widget_id")
	for _, w := range layout.Widgets {
		if w.ID == widgetID {
			data, err := h.manager.WidgetData(c.Request().Context(), w)
			if err != nil {
				return err
			}
			return c.JSON(http.StatusOK, data)
		}
	}
	return echo.NewHTTPError(http.StatusNotFound, "widget not found")
}

// findLayout loads the caller's layouts and picks the one addressed by the
// path. The synthesized default layout is addressable before it has ever
// been saved.
func (h *LayoutHandler) findLayout(c echo.Context, sess *domain.Session) (domain.Layout, error) {
	id := c.Param("id")
	ctx := c.Request().Context()

	layouts, err := h.manager.LoadLayouts(ctx, sess.UserID)
	if err != nil {
		return domain.Layout{}, err
	}
	if len(layouts) == 0 && id == service.DefaultLayoutID {
		return h.manager.ResolveActiveLayout(ctx, sess.UserID)
	}
	for _, l := range layouts {
		if l.ID != id {
			continue
		}
		if l.OwnerID != sess.UserID && sess.Role != domain.RoleAdmin {
			return domain.Layout{}, domain.ErrForbidden
		}
		return l, nil
	}
	return domain.Layout{}, domain.ErrLayoutNotFound
}

func (h *LayoutHandler) audit(layout domain.Layout, sess *domain.Session, action string) {
	if h.auditor == nil {
		return
	}
	h.auditor.Enqueue(ports.LayoutEvent{
		LayoutID:    layout.ID,
		UserID:      sess.UserID,
		Version:     layout.Version,
		Action:      action,
		Description: auditDescription(action, layout.Name),
		Timestamp:   nowUTC(),
	})
}
