package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

// Revoker invalidates issued tokens ahead of their natural expiry.
type Revoker interface {
	Revoke(ctx context.Context, token string, ttl time.Duration) error
}

// SessionHandler exposes login, logout, and profile operations.
type SessionHandler struct {
	store    ports.SessionStore
	revoker  Revoker
	tokenTTL time.Duration
}

func NewSessionHandler(store ports.SessionStore, revoker Revoker, tokenTTL time.Duration) *SessionHandler {
	return &SessionHandler{store: store, revoker: revoker, tokenTTL: tokenTTL}
}

type loginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type sessionResponse struct {
	Token   string          `json:"token,omitempty"`
	Session *domain.Session `json:"session"`
}

// Login authenticates the operator and returns a session token.
//
// @Summary      Login
// @Tags         session
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /auth/login [post]
func (h *SessionHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	token, sess, err := h.store.Authenticate(c.Request().Context(), ports.Credentials{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{Token: token, Session: sess})
}

// Logout ends the session and revokes the presented token.
//
// @Summary      Logout
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      204  "logged out"
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [delete]
func (h *SessionHandler) Logout(c echo.Context) error {
	if err := h.store.Logout(c.Request().Context()); err != nil {
		return err
	}

	// Best effort: a failed revocation still leaves the token bounded by
	// its TTL.
	if h.revoker != nil {
		if token, _ := c.Get("token").(string); token != "" {
			_ = h.revoker.Revoke(c.Request().Context(), token, h.tokenTTL)
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// Current returns the active session.
//
// @Summary      Current session
// @Tags         session
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  sessionResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/session [get]
func (h *SessionHandler) Current(c echo.Context) error {
	sess, ok := h.store.Current()
	if !ok {
		return domain.ErrNoSession
	}
	return c.JSON(http.StatusOK, sessionResponse{Session: sess})
}

type profileUpdateRequest struct {
	Username         *string  `json:"username,omitempty"`
	Email            *string  `json:"email,omitempty" validate:"omitempty,email"`
	TwoFactorEnabled *bool    `json:"two_factor_enabled,omitempty"`
	SecurityScore    *int     `json:"security_score,omitempty" validate:"omitempty,min=0,max=100"`
	Permissions      []string `json:"permissions,omitempty"`
}

// UpdateProfile merges the provided fields into the active session.
//
// @Summary      Update profile
// @Tags         session
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      profileUpdateRequest  true  "Fields to update; omitted fields are unchanged"
// @Success      200   {object}  sessionResponse
// @Failure      400   {object}  map[string]string
// @Failure      401   {object}  map[string]string
// @Router       /v1/session/profile [patch]
func (h *SessionHandler) UpdateProfile(c echo.Context) error {
	var req profileUpdateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	sess, err := h.store.UpdateProfile(c.Request().Context(), ports.ProfileUpdate{
		Username:         req.Username,
		Email:            req.Email,
		TwoFactorEnabled: req.TwoFactorEnabled,
		SecurityScore:    req.SecurityScore,
		Permissions:      req.Permissions,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, sessionResponse{Session: sess})
}
