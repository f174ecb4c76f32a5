package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
)

// ctxSession reconstructs the caller's identity from the claims injected by
// the Auth middleware. Role presence proves the middleware ran; a token
// without a user id is structurally valid but operationally unusable, so it
// is rejected with 401.
func ctxSession(c echo.Context) (*domain.Session, error) {
	role, _ := c.Get("role").(string)
	if role == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "missing authentication claims")
	}

	userID, _ := c.Get("user_id").(string)
	if userID == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "token missing user identity")
	}

	username, _ := c.Get("username").(string)
	perms, _ := c.Get("permissions").([]string)

	return &domain.Session{
		UserID:      userID,
		Username:    username,
		Role:        role,
		Permissions: perms,
	}, nil
}
