package handler

import (
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

// ConfigHandler exposes the global configuration mapping.
type ConfigHandler struct {
	store ports.ConfigStore
}

func NewConfigHandler(store ports.ConfigStore) *ConfigHandler {
	return &ConfigHandler{store: store}
}

// Snapshot returns the full configuration mapping.
//
// @Summary      Configuration snapshot
// @Tags         config
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]any
// @Failure      401  {object}  map[string]string
// @Router       /v1/config [get]
func (h *ConfigHandler) Snapshot(c echo.Context) error {
	return c.JSON(http.StatusOK, h.store.Snapshot())
}

// Get returns a single setting value.
//
// @Summary      Get one setting
// @Tags         config
// @Produce      json
// @Security     BearerAuth
// @Param        name  path      string  true  "Setting name"
// @Success      200   {object}  map[string]any
// @Failure      404   {object}  map[string]string
// @Router       /v1/config/{name} [get]
func (h *ConfigHandler) Get(c echo.Context) error {
	name := c.Param("name")
	value, ok := h.store.Lookup(name)
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "setting not found")
	}
	return c.JSON(http.StatusOK, map[string]domain.SettingValue{name: value})
}

// Set updates one setting. The value is any JSON scalar: bool, number, or
// string.
//
// @Summary      Set one setting
// @Tags         config
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        name  path  string  true  "Setting name"
// @Param        body  body  object  true  "JSON scalar value, e.g. {\"value\": true}"
// @Success      204   "updated"
// @Failure      400   {object}  map[string]string
// @Failure      403   {object}  map[string]string
// @Router       /v1/config/{name} [put]
func (h *ConfigHandler) Set(c echo.Context) error {
	var req struct {
		Value json.RawMessage `json:"value"`
	}
	if err := c.Bind(&req); err != nil || len(req.Value) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	var value domain.SettingValue
	if err := json.Unmarshal(req.Value, &value); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "value must be a bool, number, or string")
	}

	h.store.Set(c.Request().Context(), c.Param("name"), value)
	return c.NoContent(http.StatusNoContent)
}

type featureFlagResponse struct {
	Flag    string `json:"flag"`
	Enabled bool   `json:"enabled"`
}

// FeatureFlag reports whether a feature flag is enabled under either naming
// convention.
//
// @Summary      Feature flag state
// @Tags         config
// @Produce      json
// @Security     BearerAuth
// @Param        flag  path      string  true  "Flag name without the feature_ prefix"
// @Success      200   {object}  featureFlagResponse
// @Router       /v1/config/flags/{flag} [get]
func (h *ConfigHandler) FeatureFlag(c echo.Context) error {
	flag := c.Param("flag")
	return c.JSON(http.StatusOK, featureFlagResponse{
		Flag:    flag,
		Enabled: h.store.GetFeatureFlag(flag),
	})
}
