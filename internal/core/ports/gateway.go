package ports

import (
	"context"
	"time"

	"github.com/universeos/dashboard/internal/core/domain"
)

// DataPoint is one sample returned by a widget data fetch.
type DataPoint struct {
	X float64 `json:"x" bson:"x"`
	Y float64 `json:"y" bson:"y"`
	Z float64 `json:"z,omitempty" bson:"z,omitempty"`
}

// WidgetData is the payload returned for a single widget.
type WidgetData struct {
	WidgetID    string      `json:"widget_id"`
	Data        []DataPoint `json:"data"`
	LastUpdated time.Time   `json:"last_updated"`
}

// Gateway is the remote-call boundary the dashboard core consumes. All
// persistence and feed data flows through it; implementations own transport
// concerns such as timeouts, the core does not.
type Gateway interface {
	// FetchLayouts returns the owner's layouts ordered most-recently-used
	// first. An empty slice with a nil error is a valid response.
	FetchLayouts(ctx context.Context, ownerID string) ([]domain.Layout, error)

	// SaveLayout persists a layout and returns the stored value.
	SaveLayout(ctx context.Context, layout domain.Layout) (domain.Layout, error)

	// FetchNotifications returns the user's current feed page. The feed is
	// treated as cumulative by the caller; entries absent from a response
	// are not considered deleted.
	FetchNotifications(ctx context.Context, userID string) ([]domain.Notification, error)

	// FetchRecommendations returns opaque recommendation strings for the
	// given context.
	FetchRecommendations(ctx context.Context, reqContext map[string]string) ([]string, error)

	// FetchWidgetData returns the data series backing one widget.
	FetchWidgetData(ctx context.Context, widgetID string, sources []string, filters map[string]string) (*WidgetData, error)
}
