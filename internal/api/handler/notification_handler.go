package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

// CenterProvider hands out the notification center for a user, creating it
// on first use.
type CenterProvider interface {
	For(userID string) ports.NotificationCenter
}

// NotificationHandler exposes the per-user notification cache.
type NotificationHandler struct {
	centers CenterProvider
}

func NewNotificationHandler(centers CenterProvider) *NotificationHandler {
	return &NotificationHandler{centers: centers}
}

type notificationsResponse struct {
	Notifications []domain.Notification `json:"notifications"`
	UnreadCount   int                   `json:"unread_count"`
}

// List returns the cached feed and the derived unread count.
//
// @Summary      List notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  notificationsResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/notifications [get]
func (h *NotificationHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	center := h.centers.For(sess.UserID)
	items := center.Notifications()
	if items == nil {
		items = []domain.Notification{}
	}
	return c.JSON(http.StatusOK, notificationsResponse{
		Notifications: items,
		UnreadCount:   center.UnreadCount(),
	})
}

// MarkRead marks one entry as read. Unknown ids are no-ops.
//
// @Summary      Mark a notification read
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification id"
// @Success      204  "marked"
// @Failure      401  {object}  map[string]string
// @Router       /v1/notifications/{id}/read [post]
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	h.centers.For(sess.UserID).MarkAsRead(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// Clear removes one entry. Unknown ids are no-ops.
//
// @Summary      Clear a notification
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Param        id  path  string  true  "Notification id"
// @Success      204  "cleared"
// @Failure      401  {object}  map[string]string
// @Router       /v1/notifications/{id} [delete]
func (h *NotificationHandler) Clear(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	h.centers.For(sess.UserID).Clear(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// ClearAll empties the cache.
//
// @Summary      Clear all notifications
// @Tags         notifications
// @Produce      json
// @Security     BearerAuth
// @Success      204  "cleared"
// @Failure      401  {object}  map[string]string
// @Router       /v1/notifications [delete]
func (h *NotificationHandler) ClearAll(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	h.centers.For(sess.UserID).ClearAll()
	return c.NoContent(http.StatusNoContent)
}

type pauseRequest struct {
	Paused bool `json:"paused"`
}

// SetPaused suspends or resumes the caller's poll loop.
//
// @Summary      Pause or resume polling
// @Tags         notifications
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body  pauseRequest  true  "Pause state"
// @Success      204  "updated"
// @Failure      400  {object}  map[string]string
// @Router       /v1/notifications/polling [put]
func (h *NotificationHandler) SetPaused(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	var req pauseRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	h.centers.For(sess.UserID).SetPaused(req.Paused)
	return c.NoContent(http.StatusNoContent)
}
