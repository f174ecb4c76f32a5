package ports

import (
	"context"
	"time"
)

// LayoutEvent is an audit record emitted after a successful layout mutation.
type LayoutEvent struct {
	LayoutID    string    `json:"layout_id" bson:"layout_id"`
	UserID      string    `json:"user_id" bson:"user_id"`
	Version     int       `json:"version" bson:"version"`
	Action      string    `json:"action" bson:"action"`
	Description string    `json:"description" bson:"description"`
	Timestamp   time.Time `json:"timestamp" bson:"timestamp"`
}

// LayoutEventSink persists audit records. Implementations must tolerate
// being called from multiple goroutines.
type LayoutEventSink interface {
	Record(ctx context.Context, event LayoutEvent) error
}
