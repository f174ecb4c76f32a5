package handler

import (
	"time"

	"github.com/universeos/dashboard/internal/core/domain"
)

type addWidgetRequest struct {
	Type string `json:"type" validate:"required"`
}

type gridRectRequest struct {
	X int `json:"x" validate:"min=0"`
	Y int `json:"y" validate:"min=0"`
	W int `json:"w" validate:"required,gt=0"`
	H int `json:"h" validate:"required,gt=0"`
}

type widgetPlacementRequest struct {
	ID                  string            `json:"id" validate:"required"`
	Type                string            `json:"type" validate:"required"`
	Title               string            `json:"title"`
	Grid                gridRectRequest   `json:"grid" validate:"required"`
	DataSources         []string          `json:"data_sources"`
	RefreshIntervalSecs int               `json:"refresh_interval_secs" validate:"min=0"`
	Filters             map[string]string `json:"filters"`
	VisualizationType   string            `json:"visualization_type"`
	DisplayOptions      map[string]string `json:"display_options"`
	RequiredPermissions []string          `json:"required_permissions"`
	TelemetryEnabled    bool              `json:"telemetry_enabled"`
}

type saveLayoutRequest struct {
	Name       string                   `json:"name" validate:"required"`
	Widgets    []widgetPlacementRequest `json:"widgets" validate:"required,dive"`
	SharedWith []string                 `json:"shared_with"`
	// Version is the version the client last read. A non-zero value that no
	// longer matches the stored layout rejects the save with a conflict.
	Version int `json:"version" validate:"min=0"`
}

type listLayoutsResponse struct {
	Layouts []domain.Layout `json:"layouts"`
}

type recommendationsResponse struct {
	Recommendations []string `json:"recommendations"`
}

// toDomain merges the request into the stored layout, keeping server-owned
// fields (owner, acl, change log) from the existing value.
func (r saveLayoutRequest) toDomain(existing domain.Layout) domain.Layout {
	next := existing.Clone()
	next.Name = r.Name
	next.SharedWith = append([]string(nil), r.SharedWith...)
	next.Widgets = make([]domain.WidgetPlacement, 0, len(r.Widgets))
	for _, w := range r.Widgets {
		next.Widgets = append(next.Widgets, domain.WidgetPlacement{
			ID:    w.ID,
			Type:  w.Type,
			Title: w.Title,
			Grid: domain.GridRect{
				X: w.Grid.X,
				Y: w.Grid.Y,
				W: w.Grid.W,
				H: w.Grid.H,
			},
			DataSources:         w.DataSources,
			RefreshIntervalSecs: w.RefreshIntervalSecs,
			Filters:             w.Filters,
			VisualizationType:   w.VisualizationType,
			DisplayOptions:      w.DisplayOptions,
			RequiredPermissions: w.RequiredPermissions,
			TelemetryEnabled:    w.TelemetryEnabled,
		})
	}
	return next
}

func auditDescription(action, detail string) string {
	if detail == "" {
		return action
	}
	return action + ": " + detail
}

func nowUTC() time.Time {
	return time.Now().UTC()
}
