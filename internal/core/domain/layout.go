package domain

import (
	"errors"
	"fmt"
	"time"
)

var ErrLayoutNotFound = errors.New("layout not found")
var ErrForbidden = errors.New("access forbidden")
var ErrVersionConflict = errors.New("layout version conflict")

// GatewayError wraps any remote-call failure at the gateway boundary. The
// failed operation is preserved so callers can log or branch on it.
type GatewayError struct {
	Op  string
	Err error
}

func (e *GatewayError) Error() string {
	return fmt.Sprintf("gateway %s: %v", e.Op, e.Err)
}

func (e *GatewayError) Unwrap() error { return e.Err }

// GridRect is a widget's position and size on the dashboard grid.
// Overlap between rectangles is not validated anywhere; overlapping
// placements are permitted.
type GridRect struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// WidgetPlacement is one configured instance of a catalog type positioned on
// the grid. Placements are mutated only by replacement; there is no
// partial-field patch.
type WidgetPlacement struct {
	ID                  string            `json:"id" bson:"id"`
	Type                string            `json:"type" bson:"type"`
	Title               string            `json:"title" bson:"title"`
	Grid                GridRect          `json:"grid" bson:"grid"`
	DataSources         []string          `json:"data_sources" bson:"data_sources"`
	RefreshIntervalSecs int               `json:"refresh_interval_secs" bson:"refresh_interval_secs"`
	Filters             map[string]string `json:"filters" bson:"filters"`
	VisualizationType   string            `json:"visualization_type" bson:"visualization_type"`
	DisplayOptions      map[string]string `json:"display_options" bson:"display_options"`
	RequiredPermissions []string          `json:"required_permissions" bson:"required_permissions"`
	TelemetryEnabled    bool              `json:"telemetry_enabled" bson:"telemetry_enabled"`
}

// Clone returns a deep copy of the placement.
func (w WidgetPlacement) Clone() WidgetPlacement {
	clone := w
	clone.DataSources = append([]string(nil), w.DataSources...)
	clone.RequiredPermissions = append([]string(nil), w.RequiredPermissions...)
	clone.Filters = cloneStringMap(w.Filters)
	clone.DisplayOptions = cloneStringMap(w.DisplayOptions)
	return clone
}

// ChangeLogEntry records who changed a layout, when, and why.
type ChangeLogEntry struct {
	UserID      string    `json:"user_id" bson:"user_id"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
	Description string    `json:"description" bson:"description"`
}

// AccessControlEntry grants an entity a permission level on a layout.
type AccessControlEntry struct {
	EntityID        string `json:"entity_id" bson:"entity_id"`
	PermissionLevel string `json:"permission_level" bson:"permission_level"`
}

// PerformanceCounters carries coarse per-layout operational counters.
type PerformanceCounters struct {
	LoadTimeMs   int64 `json:"load_time_ms" bson:"load_time_ms"`
	APICalls     int64 `json:"api_calls" bson:"api_calls"`
	RenderErrors int64 `json:"render_errors" bson:"render_errors"`
}

// Layout is a named, versioned collection of widget placements owned by a
// user. The version counter increases by exactly 1 on every successful
// persisted save and never otherwise; placement ids are unique within a
// layout; placement order is preserved for display.
type Layout struct {
	ID           string               `json:"id" bson:"id"`
	Name         string               `json:"name" bson:"name"`
	OwnerID      string               `json:"owner_id" bson:"owner_id"`
	Widgets      []WidgetPlacement    `json:"widgets" bson:"widgets"`
	SharedWith   []string             `json:"shared_with" bson:"shared_with"`
	Version      int                  `json:"version" bson:"version"`
	ACL          []AccessControlEntry `json:"acl" bson:"acl"`
	ChangeLog    []ChangeLogEntry     `json:"change_log" bson:"change_log"`
	LastModified time.Time            `json:"last_modified" bson:"last_modified"`
	Performance  PerformanceCounters  `json:"performance" bson:"performance"`
}

// Clone returns a deep copy; layout mutations hand callers a new value
// instead of mutating in place.
func (l Layout) Clone() Layout {
	clone := l
	clone.Widgets = make([]WidgetPlacement, len(l.Widgets))
	for i, w := range l.Widgets {
		clone.Widgets[i] = w.Clone()
	}
	clone.SharedWith = append([]string(nil), l.SharedWith...)
	clone.ACL = append([]AccessControlEntry(nil), l.ACL...)
	clone.ChangeLog = append([]ChangeLogEntry(nil), l.ChangeLog...)
	return clone
}

// HasWidget reports whether a placement with the given id exists.
func (l Layout) HasWidget(id string) bool {
	for _, w := range l.Widgets {
		if w.ID == id {
			return true
		}
	}
	return false
}

func cloneStringMap(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	clone := make(map[string]string, len(m))
	for k, v := range m {
		clone[k] = v
	}
	return clone
}
