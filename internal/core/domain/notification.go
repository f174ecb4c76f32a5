package domain

import "time"

// NotificationType tags the origin category of a notification.
type NotificationType string

const (
	NotificationAlert        NotificationType = "alert"
	NotificationInfo         NotificationType = "info"
	NotificationWarning      NotificationType = "warning"
	NotificationSuccess      NotificationType = "success"
	NotificationSystem       NotificationType = "system"
	NotificationAISuggestion NotificationType = "ai_suggestion"
)

// Notification is a single entry in a user's feed. Lifecycle:
// created unread, transitions to read via mark-as-read, and is removed
// from the local cache outright on clear (terminal, no way back).
type Notification struct {
	ID        string           `json:"id" bson:"_id"`
	UserID    string           `json:"user_id" bson:"user_id"`
	Type      NotificationType `json:"type" bson:"type"`
	Message   string           `json:"message" bson:"message"`
	Timestamp time.Time        `json:"timestamp" bson:"timestamp"`
	Read      bool             `json:"read" bson:"read"`
	Priority  int              `json:"priority" bson:"priority"`
	Source    string           `json:"source" bson:"source"`
	Visible   bool             `json:"visible" bson:"visible"`
	ActionURL string           `json:"action_url,omitempty" bson:"action_url,omitempty"`
}
