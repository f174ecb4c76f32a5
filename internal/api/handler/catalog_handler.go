package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/service"
)

// CatalogHandler exposes the widget catalog filtered by the caller's
// permissions.
type CatalogHandler struct {
	catalog *service.Catalog
}

func NewCatalogHandler(catalog *service.Catalog) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

type catalogResponse struct {
	Widgets []domain.WidgetDescriptor `json:"widgets"`
}

// List returns the widget types the caller may place.
//
// @Summary      Widget catalog
// @Tags         catalog
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  catalogResponse
// @Failure      401  {object}  map[string]string
// @Router       /v1/catalog [get]
func (h *CatalogHandler) List(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}

	widgets := h.catalog.Descriptors(sess)
	if widgets == nil {
		widgets = []domain.WidgetDescriptor{}
	}
	return c.JSON(http.StatusOK, catalogResponse{Widgets: widgets})
}
