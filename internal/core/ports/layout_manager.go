package ports

import (
	"context"

	"github.com/universeos/dashboard/internal/core/domain"
)

// LayoutManager owns the mutable collection of widget placements for a
// dashboard. All mutating operations are value-semantic: callers receive an
// updated layout, the input is never modified in place.
type LayoutManager interface {
	// LoadLayouts returns the owner's layouts from the gateway. Transport
	// failures surface as *domain.GatewayError, never swallowed and never
	// substituted with a default.
	LoadLayouts(ctx context.Context, ownerID string) ([]domain.Layout, error)

	// ResolveActiveLayout returns the first (most-recently-used) layout, or
	// a deterministic default when the gateway reports none. The default is
	// never persisted automatically.
	ResolveActiveLayout(ctx context.Context, ownerID string) (domain.Layout, error)

	// AddWidget appends a new placement of the given catalog type with an id
	// guaranteed unique within the layout.
	AddWidget(layout domain.Layout, widgetType string) domain.Layout

	// RemoveWidget returns a layout without the given placement. A miss is
	// a true no-op, not an error.
	RemoveWidget(layout domain.Layout, id string) domain.Layout

	// Save persists via the gateway. On success the returned layout's
	// version is incremented by exactly 1 and last-modified is the save
	// completion time; on failure the input is untouched and the error is
	// surfaced.
	Save(ctx context.Context, layout domain.Layout) (domain.Layout, error)

	// Recommendations fetches opaque recommendation strings.
	Recommendations(ctx context.Context, reqContext map[string]string) ([]string, error)

	// WidgetData fetches the data series for one placement.
	WidgetData(ctx context.Context, placement domain.WidgetPlacement) (*WidgetData, error)
}
