package service

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/universeos/dashboard/internal/api/metrics"
	"github.com/universeos/dashboard/internal/core/domain"
	"github.com/universeos/dashboard/internal/core/ports"
)

// DefaultLayoutID is the id of the synthesized layout returned when the
// gateway reports no layouts for an owner.
const DefaultLayoutID = "default"

var defaultGrid = domain.GridRect{X: 0, Y: 0, W: 4, H: 2}

// LayoutService implements ports.LayoutManager. Layout values are treated as
// immutable per call: every mutation clones and returns a new value.
type LayoutService struct {
	gateway ports.Gateway
	catalog *Catalog
	log     zerolog.Logger

	// widgetSeq feeds the collision-free placement id generator.
	widgetSeq atomic.Uint64

	now func() time.Time
}

func NewLayoutService(gateway ports.Gateway, catalog *Catalog, log zerolog.Logger) *LayoutService {
	return &LayoutService{
		gateway: gateway,
		catalog: catalog,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// LoadLayouts delegates to the gateway. Failures propagate as
// *domain.GatewayError; an empty result is not a failure.
func (s *LayoutService) LoadLayouts(ctx context.Context, ownerID string) ([]domain.Layout, error) {
	layouts, err := s.gateway.FetchLayouts(ctx, ownerID)
	if err != nil {
		metrics.LayoutLoadsTotal.WithLabelValues("error").Inc()
		return nil, &domain.GatewayError{Op: "fetch_layouts", Err: err}
	}
	metrics.LayoutLoadsTotal.WithLabelValues("ok").Inc()
	return layouts, nil
}

// ResolveActiveLayout returns the owner's most-recently-used layout, relying
// on the gateway's ordering contract. An empty-but-successful response
// yields the deterministic default layout; the default is never persisted
// here. A load failure is surfaced, never silently replaced by the default.
func (s *LayoutService) ResolveActiveLayout(ctx context.Context, ownerID string) (domain.Layout, error) {
	layouts, err := s.LoadLayouts(ctx, ownerID)
	if err != nil {
		return domain.Layout{}, err
	}
	if len(layouts) > 0 {
		return layouts[0], nil
	}
	s.log.Info().Str("owner_id", ownerID).Msg("no stored layouts, synthesizing default")
	return s.defaultLayout(ownerID), nil
}

func (s *LayoutService) defaultLayout(ownerID string) domain.Layout {
	return domain.Layout{
		ID:      DefaultLayoutID,
		Name:    "Default Dashboard",
		OwnerID: ownerID,
		Version: 1,
		Widgets: []domain.WidgetPlacement{
			{
				ID: "w1", Type: "AIRecommendationPanel", Title: "AI Insights",
				Grid:              domain.GridRect{X: 0, Y: 0, W: 4, H: 2},
				VisualizationType: "text", TelemetryEnabled: true,
			},
			{
				ID: "w2", Type: "QuantumStatusMonitor", Title: "Quantum Grid",
				Grid:              domain.GridRect{X: 4, Y: 0, W: 4, H: 2},
				VisualizationType: "text", TelemetryEnabled: true,
			},
			{
				ID: "w3", Type: "BlockchainStatus", Title: "Ledger",
				Grid:              domain.GridRect{X: 8, Y: 0, W: 4, H: 2},
				VisualizationType: "text", TelemetryEnabled: true,
			},
		},
		LastModified: s.now(),
	}
}

// AddWidget appends a new placement of the given type and returns the
// updated layout; the input layout is not mutated. The placement id combines
// a process-wide monotonic counter with the layout's widget count, so ids
// are unique within the layout for any call sequence.
func (s *LayoutService) AddWidget(layout domain.Layout, widgetType string) domain.Layout {
	next := layout.Clone()

	title := widgetType + " Widget"
	if d, ok := s.catalog.Descriptor(widgetType); ok {
		title = d.Title
	}

	placement := domain.WidgetPlacement{
		ID:                  fmt.Sprintf("w-%d-%d", s.widgetSeq.Add(1), len(layout.Widgets)),
		Type:                widgetType,
		Title:               title,
		Grid:                defaultGrid,
		RefreshIntervalSecs: 60,
		VisualizationType:   "default",
		TelemetryEnabled:    true,
	}
	next.Widgets = append(next.Widgets, placement)
	return next
}

// RemoveWidget returns a layout without the given placement. When the id is
// absent the returned layout is equivalent to the input, a no-op rather than an
// error.
func (s *LayoutService) RemoveWidget(layout domain.Layout, id string) domain.Layout {
	next := layout.Clone()
	if !next.HasWidget(id) {
		return next
	}
	widgets := next.Widgets[:0]
	for _, w := range next.Widgets {
		if w.ID != id {
			widgets = append(widgets, w)
		}
	}
	next.Widgets = widgets
	return next
}

// Save persists the layout via the gateway. On success the returned layout
// carries version+1, last-modified at save completion time, and a change-log
// entry; on failure the caller's layout is untouched and the gateway error
// is surfaced. Grid-rectangle overlap is deliberately not validated.
func (s *LayoutService) Save(ctx context.Context, layout domain.Layout) (domain.Layout, error) {
	next := layout.Clone()
	next.Version = layout.Version + 1
	next.ChangeLog = append(next.ChangeLog, domain.ChangeLogEntry{
		UserID:      layout.OwnerID,
		Timestamp:   s.now(),
		Description: "layout saved",
	})

	if _, err := s.gateway.SaveLayout(ctx, next); err != nil {
		metrics.LayoutSavesTotal.WithLabelValues("error").Inc()
		s.log.Error().Err(err).Str("layout_id", layout.ID).Msg("layout save failed")
		return domain.Layout{}, &domain.GatewayError{Op: "save_layout", Err: err}
	}

	next.LastModified = s.now()
	metrics.LayoutSavesTotal.WithLabelValues("ok").Inc()
	s.log.Info().Str("layout_id", next.ID).Int("version", next.Version).Msg("layout saved")
	return next, nil
}

// Recommendations fetches opaque recommendation strings from the gateway.
func (s *LayoutService) Recommendations(ctx context.Context, reqContext map[string]string) ([]string, error) {
	items, err := s.gateway.FetchRecommendations(ctx, reqContext)
	if err != nil {
		return nil, &domain.GatewayError{Op: "fetch_recommendations", Err: err}
	}
	return items, nil
}

// WidgetData fetches the data series backing one placement.
func (s *LayoutService) WidgetData(ctx context.Context, placement domain.WidgetPlacement) (*ports.WidgetData, error) {
	data, err := s.gateway.FetchWidgetData(ctx, placement.ID, placement.DataSources, placement.Filters)
	if err != nil {
		return nil, &domain.GatewayError{Op: "fetch_widget_data", Err: err}
	}
	return data, nil
}
